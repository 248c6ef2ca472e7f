package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "anp-authctl",
	Short: "ANP auth CLI - DIDWba headers and bearer tokens",
	Long: `anp-authctl issues and verifies the HTTP authentication artifacts of
the Agent Network Protocol: DIDWba Authorization headers and the
short-lived bearer tokens issued after a successful DIDWba handshake.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
