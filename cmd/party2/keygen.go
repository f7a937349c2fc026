package main

import (

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/chain5j/mpc-party2/party2"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a key share with the counterparty",
	Long: `Run the key generation and chain code rounds with the counterparty and
write the resulting share, including its session id, to --out.`,
	RunE: runKeygen,
}

func init() {
	keygenCmd.Flags().StringP("out", "o", "party2_share.json", "output file of the key share")
}

func runKeygen(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")

	share, err := party2.GetMasterKey(cmd.Context(), newClient())
	if err != nil {
		return errors.Wrap(err, "keygen")
	}

	if err := writeShare(out, share); err != nil {
		return errors.Wrap(err, "write share")
	}

	pub := share.MasterKey.PublicPoint()
	log.Info().Str("id", share.ID).Str("file", out).Str("address", pub.Address()).Msg("key share created")
	return nil
}
