package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/anp-network/anp-go/auth"
	"github.com/anp-network/anp-go/did"
	"github.com/anp-network/anp-go/internal/health"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "health":
		runHealthCheck()
	case "resolve":
		runResolveCheck()
	case "system":
		runSystemCheck()
	case "version", "--version", "-v":
		fmt.Printf("anp-verify version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("ANP System Verification Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  anp-verify <command> [did]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  health      - Run the DID cache, nonce window and bearer cache checks (plus resolve when a DID is given)")
	fmt.Println("  resolve     - Check did:wba resolution for a given DID")
	fmt.Println("  system      - Check process resources (memory, goroutines)")
	fmt.Println("  version     - Show version information")
	fmt.Println("  help        - Show this help message")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --json      - Output results in JSON format")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  anp-verify health did:wba:agent.example.com")
	fmt.Println("  anp-verify resolve did:wba:agent.example.com --json")
	fmt.Println("  anp-verify system")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  ANP_VERIFY_DID_CACHE_SOFT_CAP - Soft cap for the DID resolver cache check")
}

func targetDID() string {
	for _, arg := range os.Args[2:] {
		if arg != "--json" {
			return arg
		}
	}
	return ""
}

func buildChecker() *health.HealthChecker {
	checker := health.NewHealthChecker(5 * time.Second)

	resolver := did.NewResolver(did.ResolverConfig{}, nil)
	didCacheSoftCap := 1000
	if v, err := strconv.Atoi(os.Getenv("ANP_VERIFY_DID_CACHE_SOFT_CAP")); err == nil && v > 0 {
		didCacheSoftCap = v
	}
	checker.RegisterCheck("did-cache", health.DIDCacheHealthCheck(resolver, didCacheSoftCap))

	nonces := auth.NewNonceWindow(5*time.Minute, 10000)
	checker.RegisterCheck("nonce-window", health.NonceWindowHealthCheck(nonces, 10000))

	bearerCache := auth.NewBearerCache()
	checker.RegisterCheck("bearer-cache", health.BearerCacheHealthCheck(bearerCache, 1000))

	if target := targetDID(); target != "" {
		host, port, path, err := did.Parse(did.AgentDID(target))
		if err == nil {
			url := did.WellKnownURL(host, port, path)
			checker.RegisterCheck("resolve", health.ServiceHealthCheck(url, probeWellKnown))
		}
	}

	return checker
}

func probeWellKnown(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func runHealthCheck() {
	jsonOutput := hasJSONFlag()
	checker := buildChecker()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	sys := checker.GetSystemHealth(ctx)

	if jsonOutput {
		outputJSON(sys)
		if sys.Status != health.StatusHealthy {
			os.Exit(1)
		}
		return
	}

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Println("  ANP Health Check")
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Println()
	fmt.Printf("Timestamp:   %s\n", sys.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Println()

	for name, result := range sys.Checks {
		fmt.Printf("%s %-14s %s\n", getStatusSymbol(result.Status), name, result.Status)
		if result.Message != "" {
			fmt.Printf("    %s\n", result.Message)
		}
	}

	fmt.Println()
	fmt.Printf("%s Overall Status: %s\n", getStatusSymbol(sys.Status), sys.Status)
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Println()

	if sys.Status != health.StatusHealthy {
		os.Exit(1)
	}
}

func runResolveCheck() {
	jsonOutput := hasJSONFlag()
	target := targetDID()
	if target == "" {
		fmt.Println("usage: anp-verify resolve <did> [--json]")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resolver := did.NewResolver(did.ResolverConfig{}, nil)
	start := time.Now()
	doc, err := resolver.Resolve(ctx, did.AgentDID(target))
	latency := time.Since(start)

	type resolveStatus struct {
		DID       string        `json:"did"`
		Resolved  bool          `json:"resolved"`
		Latency   time.Duration `json:"latency"`
		Error     string        `json:"error,omitempty"`
		MethodIDs []string      `json:"verification_methods,omitempty"`
	}
	status := resolveStatus{DID: target, Latency: latency}
	if err != nil {
		status.Error = err.Error()
	} else {
		status.Resolved = true
		for _, vm := range doc.VerificationMethod {
			status.MethodIDs = append(status.MethodIDs, vm.ID)
		}
	}

	if jsonOutput {
		outputJSON(status)
		if !status.Resolved {
			os.Exit(1)
		}
		return
	}

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Println("  ANP DID Resolution Check")
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Println()
	fmt.Printf("DID:        %s\n", status.DID)
	fmt.Printf("Latency:    %s\n", status.Latency)
	fmt.Println()

	if status.Resolved {
		fmt.Println("✓ Status:     RESOLVED")
		for _, id := range status.MethodIDs {
			fmt.Printf("  Method:     %s\n", id)
		}
	} else {
		fmt.Println("✗ Status:     FAILED")
		fmt.Printf("  Error:      %s\n", status.Error)
	}

	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Println()

	if !status.Resolved {
		os.Exit(1)
	}
}

func runSystemCheck() {
	jsonOutput := hasJSONFlag()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	type systemStatus struct {
		Status     health.Status `json:"status"`
		AllocMB    uint64        `json:"alloc_mb"`
		SysMB      uint64        `json:"sys_mb"`
		Goroutines int           `json:"goroutines"`
		NumGC      uint32        `json:"num_gc"`
	}
	status := systemStatus{
		Status:     health.StatusHealthy,
		AllocMB:    m.Alloc / (1024 * 1024),
		SysMB:      m.Sys / (1024 * 1024),
		Goroutines: runtime.NumGoroutine(),
		NumGC:      m.NumGC,
	}
	if status.Goroutines > 10000 {
		status.Status = health.StatusDegraded
	}

	if jsonOutput {
		outputJSON(status)
		if status.Status != health.StatusHealthy {
			os.Exit(1)
		}
		return
	}

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Println("  ANP System Resource Check")
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Println()
	fmt.Printf("Memory:      %d MB allocated / %d MB from OS\n", status.AllocMB, status.SysMB)
	fmt.Printf("Goroutines:  %d\n", status.Goroutines)
	fmt.Printf("GC cycles:   %d\n", status.NumGC)
	fmt.Printf("\n%s Overall:    %s\n", getStatusSymbol(status.Status), status.Status)
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Println()

	if status.Status != health.StatusHealthy {
		os.Exit(1)
	}
}

func getStatusSymbol(status health.Status) string {
	switch status {
	case health.StatusHealthy:
		return "✓"
	case health.StatusDegraded:
		return "⚠"
	case health.StatusUnhealthy:
		return "✗"
	default:
		return "?"
	}
}

func hasJSONFlag() bool {
	for _, arg := range os.Args {
		if arg == "--json" {
			return true
		}
	}
	return false
}

func outputJSON(data interface{}) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(jsonData))
}
