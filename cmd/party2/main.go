// Command party2 is the party two client of the two-party ECDSA wallet.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
