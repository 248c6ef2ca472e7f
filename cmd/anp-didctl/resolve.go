package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/anp-network/anp-go/did"
)

var (
	resolveTimeout time.Duration
	resolveOutput  string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [DID]",
	Short: "Resolve a did:wba identifier's document over HTTPS",
	Long: `Resolve fetches the .well-known/did.json document published at the
host derived from the given did:wba identifier, and validates it against
the did:wba document invariants before printing it.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().DurationVar(&resolveTimeout, "timeout", 10*time.Second, "Per-attempt HTTP timeout")
	resolveCmd.Flags().StringVarP(&resolveOutput, "output", "o", "", "Output file path (default: stdout)")
}

func runResolve(cmd *cobra.Command, args []string) error {
	agentDID := did.AgentDID(args[0])

	resolver := did.NewResolver(did.ResolverConfig{Timeout: resolveTimeout}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout*3)
	defer cancel()

	fmt.Printf("Resolving %s...\n", agentDID)
	doc, err := resolver.Resolve(ctx, agentDID)
	if err != nil {
		return fmt.Errorf("failed to resolve did: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	if resolveOutput != "" {
		if err := os.WriteFile(resolveOutput, data, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		fmt.Printf("Document saved to %s\n", resolveOutput)
		return nil
	}

	fmt.Println(string(data))
	return nil
}
