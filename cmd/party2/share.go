package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/chain5j/mpc-party2/party2"
)

func readShare(path string) (*party2.PrivateShare, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read share")
	}

	var share party2.PrivateShare
	if err := json.Unmarshal(raw, &share); err != nil {
		return nil, errors.Wrapf(err, "decode share %s", path)
	}
	if share.MasterKey == nil || share.ID == "" {
		return nil, errors.Errorf("share %s is incomplete", path)
	}
	return &share, nil
}

func writeShare(path string, share *party2.PrivateShare) error {
	raw, err := json.MarshalIndent(share, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func addPathFlags(cmd *cobra.Command) {
	cmd.Flags().Uint32("coin", 60, "coin type index")
	cmd.Flags().Uint32("account", 0, "account index")
}

func pathFlags(cmd *cobra.Command) (uint32, uint32) {
	coin, _ := cmd.Flags().GetUint32("coin")
	account, _ := cmd.Flags().GetUint32("account")
	return coin, account
}
