package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anp-network/anp-go/did"
)

var (
	buildHost string
	buildPort int
)

var buildCmd = &cobra.Command{
	Use:   "build [PATH...]",
	Short: "Build a did:wba identifier from a host, port, and path",
	RunE:  runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&buildHost, "host", "", "Agent host (required)")
	buildCmd.Flags().IntVar(&buildPort, "port", 0, "Agent port (0 means omit)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	if buildHost == "" {
		return fmt.Errorf("--host is required")
	}

	var port *int
	if buildPort != 0 {
		port = &buildPort
	}

	agentDID, err := did.Build(buildHost, port, args...)
	if err != nil {
		return fmt.Errorf("failed to build did:wba identifier: %w", err)
	}

	fmt.Println(string(agentDID))
	fmt.Println(did.WellKnownURL(buildHost, port, args))
	return nil
}
