package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Generate and show the party2 configuration.

Configuration files use YAML. Command-line flags override config file values,
and environment variables with the PARTY2_ prefix override both defaults and
the file. For example: PARTY2_ENDPOINT=https://wallet.example.com

Examples:
  party2 config init
  party2 config init --output ./config.yaml
  party2 config show`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a sample configuration file",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().StringP("output", "o", "", "output path (default: $HOME/.party2/config.yaml)")
	configInitCmd.Flags().BoolP("force", "f", false, "overwrite an existing file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

const sampleConfig = `# party2 configuration file
# Command-line flags override these values

# Base URL of the counterparty
endpoint: "http://127.0.0.1:8000"

# Bearer token sent with every request
auth_token: ""

# Timeout of each request
timeout: 30s

# debug, info, warn or error
log_level: info

# Local counterparty (party2 simulate)
simulate:
  listen: "127.0.0.1:8000"
  paillier_bits: 2048
  session_ttl: 30m
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	if output == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "home directory")
		}
		output = filepath.Join(home, ".party2", "config.yaml")
	}

	if _, err := os.Stat(output); err == nil && !force {
		return errors.Errorf("%s already exists, use --force to overwrite", output)
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o700); err != nil {
		return errors.Wrap(err, "create config directory")
	}
	if err := os.WriteFile(output, []byte(sampleConfig), 0o600); err != nil {
		return errors.Wrap(err, "write config")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", output)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "# %s\n", used)
	}

	keys := viper.AllKeys()
	sort.Strings(keys)
	for _, key := range keys {
		value := viper.Get(key)
		if key == "auth_token" && viper.GetString(key) != "" {
			value = "********"
		}
		fmt.Fprintf(out, "%s: %v\n", key, value)
	}
	return nil
}
