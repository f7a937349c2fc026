package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chain5j/mpc-party2/party1sim"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a local counterparty",
	Long: `Serve the key generation and signing endpoints with an in-memory party one,
for trying out the client without a wallet backend. Metrics are served on
/metrics.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().String("listen", "127.0.0.1:8000", "listen address")
	simulateCmd.Flags().Int("paillier-bits", party1sim.DefaultPaillierBits, "Paillier modulus size")
	simulateCmd.Flags().Duration("session-ttl", party1sim.DefaultSessionTTL, "lifetime of idle sessions")

	for key, flag := range map[string]string{
		"simulate.listen":        "listen",
		"simulate.paillier_bits": "paillier-bits",
		"simulate.session_ttl":   "session-ttl",
	} {
		if err := viper.BindPFlag(key, simulateCmd.Flags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

func runSimulate(cmd *cobra.Command, args []string) error {
	srv := party1sim.New(
		party1sim.WithPaillierBits(viper.GetInt("simulate.paillier_bits")),
		party1sim.WithSessionTTL(viper.GetDuration("simulate.session_ttl")),
		party1sim.WithAuthToken(viper.GetString("auth_token")),
		party1sim.WithLogger(log.Logger),
	)

	addr := viper.GetString("simulate.listen")
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("listen", addr).Msg("counterparty started")
		errCh <- srv.Start(addr)
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		srv.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
