package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "anp-didctl",
	Short: "ANP DID CLI - did:wba identity management",
	Long: `anp-didctl manages did:wba identities for the Agent Network Protocol.

This tool supports:
- Resolving a did:wba identifier's document over HTTPS
- Building a did:wba identifier from a host/port/path
- Validating a DID document against the did:wba schema`,
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
