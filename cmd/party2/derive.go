package main

import (
	"encoding/hex"

	"github.com/spf13/cobra"

	"github.com/chain5j/mpc-party2/party2"
)

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derive a child key share",
	RunE:  runDerive,
}

var pubkeyCmd = &cobra.Command{
	Use:   "pubkey",
	Short: "Print the public key and address of a key share",
	Long: `Print the public key of the master share, or of its child at --coin and
--account when --derive is set, together with the Ethereum address.`,
	RunE: runPubkey,
}

func init() {
	for _, cmd := range []*cobra.Command{deriveCmd, pubkeyCmd} {
		cmd.Flags().StringP("share", "s", "party2_share.json", "key share file")
		addPathFlags(cmd)
	}
	pubkeyCmd.Flags().Bool("derive", false, "print the child key at --coin/--account")
}

func runDerive(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("share")
	share, err := readShare(file)
	if err != nil {
		return err
	}

	coin, account := pathFlags(cmd)
	derived, err := party2.DeriveKey(share.MasterKey, coin, account)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), derived)
}

type pubkeyOutput struct {
	X          string `json:"x"`
	Y          string `json:"y"`
	Compressed string `json:"compressed"`
	Address    string `json:"address"`
}

func runPubkey(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("share")
	share, err := readShare(file)
	if err != nil {
		return err
	}

	pub := share.MasterKey.PublicPoint()
	if d, _ := cmd.Flags().GetBool("derive"); d {
		coin, account := pathFlags(cmd)
		derived, err := party2.DeriveKey(share.MasterKey, coin, account)
		if err != nil {
			return err
		}
		pub = derived.PublicKey()
	}

	compressed, err := pub.Compress()
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), &pubkeyOutput{
		X:          pub.X.Text(16),
		Y:          pub.Y.Text(16),
		Compressed: hex.EncodeToString(compressed),
		Address:    pub.Address(),
	})
}
