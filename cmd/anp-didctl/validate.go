package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anp-network/anp-go/did"
)

var validateCmd = &cobra.Command{
	Use:   "validate [FILE]",
	Short: "Validate a did:wba document file against the document invariants",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	var doc did.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse document: %w", err)
	}

	if err := doc.Validate(); err != nil {
		return fmt.Errorf("document invalid: %w", err)
	}

	fmt.Printf("OK: %s is a valid did:wba document (%d verification methods)\n", doc.ID, len(doc.VerificationMethod))
	return nil
}
