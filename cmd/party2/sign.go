package main

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/chain5j/mpc-party2/kms"
	"github.com/chain5j/mpc-party2/party2"
)

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign a 32-byte digest with a child key",
	RunE:  runSign,
}

func init() {
	signCmd.Flags().StringP("share", "s", "party2_share.json", "key share file")
	signCmd.Flags().StringP("message", "m", "", "0x-prefixed hex digest to sign")
	addPathFlags(signCmd)
	_ = signCmd.MarkFlagRequired("message")
}

type signOutput struct {
	Signature *kms.SignatureRecid `json:"signature"`
	RSV       hexutil.Bytes       `json:"rsv"`
}

func runSign(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("share")
	share, err := readShare(file)
	if err != nil {
		return err
	}

	message, _ := cmd.Flags().GetString("message")
	digest, err := hexutil.Decode(message)
	if err != nil {
		return errors.Wrap(err, "message")
	}

	coin, account := pathFlags(cmd)
	derived, err := party2.DeriveKey(share.MasterKey, coin, account)
	if err != nil {
		return err
	}

	sig, err := party2.Sign(cmd.Context(), newClient(), new(big.Int).SetBytes(digest), derived.MasterKey, derived.Path(), share.ID)
	if err != nil {
		return errors.Wrap(err, "sign")
	}

	return printJSON(cmd.OutOrStdout(), &signOutput{Signature: sig, RSV: sig.Bytes()})
}
