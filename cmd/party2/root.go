package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chain5j/mpc-party2/transport"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "party2",
	Short: "Two-party ECDSA wallet client",
	Long: `party2 is the client side of a two-party ECDSA wallet.

It runs key generation and signing against a remote counterparty and derives
child keys locally.

Use 'party2 keygen' to create a key share.
Use 'party2 derive' and 'party2 pubkey' to inspect child keys.
Use 'party2 sign' to sign a digest.
Use 'party2 simulate' to run a local counterparty for testing.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath("$HOME/.party2")
			viper.AddConfigPath(".")
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}

		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return errors.Wrap(err, "read config")
			}
		}

		viper.SetEnvPrefix("PARTY2")
		viper.AutomaticEnv()

		return setupLogging(viper.GetString("log_level"))
	},
}

func setupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return errors.Wrap(err, "log level")
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	return nil
}

func newClient() *transport.Client {
	return transport.NewClient(transport.Config{
		Endpoint:  viper.GetString("endpoint"),
		AuthToken: viper.GetString("auth_token"),
		Timeout:   viper.GetDuration("timeout"),
	})
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.party2/config.yaml)")
	rootCmd.PersistentFlags().String("endpoint", "http://127.0.0.1:8000", "counterparty base URL")
	rootCmd.PersistentFlags().String("auth-token", "", "bearer token sent with every request")
	rootCmd.PersistentFlags().Duration("timeout", transport.DefaultTimeout, "timeout of each request")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	for key, flag := range map[string]string{
		"endpoint":   "endpoint",
		"auth_token": "auth-token",
		"timeout":    "timeout",
		"log_level":  "log-level",
	} {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(fmt.Sprintf("failed to bind %s flag: %v", flag, err))
		}
	}

	rootCmd.AddCommand(keygenCmd)
	rootCmd.AddCommand(deriveCmd)
	rootCmd.AddCommand(pubkeyCmd)
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(configCmd)
}
