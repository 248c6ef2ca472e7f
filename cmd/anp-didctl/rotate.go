package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	sagecrypto "github.com/anp-network/anp-go/crypto"
	"github.com/anp-network/anp-go/crypto/formats"
	"github.com/anp-network/anp-go/crypto/rotation"
	"github.com/anp-network/anp-go/crypto/storage"
	"github.com/anp-network/anp-go/did"
)

var (
	rotateKeyPath    string
	rotateKeyFormat  string
	rotateKeyID      string
	rotateOutput     string
	rotateController string
	rotateVMOut      string
)

var rotateCmd = &cobra.Command{
	Use:   "rotate-key",
	Short: "Rotate a verification-method key, producing a replacement key pair",
	Long: `Loads an existing key into memory, rotates it to a fresh key pair of
the same type, and prints the new key so it can be published as a
replacement verificationMethod entry in the agent's did:wba document.`,
	RunE: runRotate,
}

func init() {
	rootCmd.AddCommand(rotateCmd)

	rotateCmd.Flags().StringVar(&rotateKeyPath, "key", "", "Existing key file (required)")
	rotateCmd.Flags().StringVar(&rotateKeyFormat, "key-format", "jwk", "Key format (jwk, pem)")
	rotateCmd.Flags().StringVar(&rotateKeyID, "key-id", "verification-method-1", "Key id under which to track rotation history")
	rotateCmd.Flags().StringVarP(&rotateOutput, "output", "o", "", "Output file for the new key (default: stdout)")
	rotateCmd.Flags().StringVar(&rotateController, "controller", "", "did:wba of the controlling agent, for the emitted verificationMethod fragment")
	rotateCmd.Flags().StringVar(&rotateVMOut, "vm-output", "", "Output file for the new verificationMethod JSON fragment (default: stdout)")
}

func runRotate(cmd *cobra.Command, args []string) error {
	if rotateKeyPath == "" {
		return fmt.Errorf("--key is required")
	}

	data, err := os.ReadFile(rotateKeyPath)
	if err != nil {
		return fmt.Errorf("failed to read key file: %w", err)
	}

	var importer sagecrypto.KeyImporter
	var exporter sagecrypto.KeyExporter
	var keyFormat sagecrypto.KeyFormat
	switch rotateKeyFormat {
	case "jwk":
		importer, exporter, keyFormat = formats.NewJWKImporter(), formats.NewJWKExporter(), sagecrypto.KeyFormatJWK
	case "pem":
		importer, exporter, keyFormat = formats.NewPEMImporter(), formats.NewPEMExporter(), sagecrypto.KeyFormatPEM
	default:
		return fmt.Errorf("unsupported key format: %s", rotateKeyFormat)
	}

	keyPair, err := importer.Import(data, keyFormat)
	if err != nil {
		return fmt.Errorf("failed to import key: %w", err)
	}

	keyStorage := storage.NewMemoryKeyStorage()
	if err := keyStorage.Store(rotateKeyID, keyPair); err != nil {
		return fmt.Errorf("failed to stage key for rotation: %w", err)
	}

	rotator := rotation.NewKeyRotator(keyStorage)
	newKeyPair, err := rotator.Rotate(rotateKeyID)
	if err != nil {
		return fmt.Errorf("failed to rotate key: %w", err)
	}

	history, err := rotator.GetRotationHistory(rotateKeyID)
	if err == nil && len(history) > 0 {
		fmt.Printf("Rotated %s -> %s at %s\n", history[0].OldKeyID, history[0].NewKeyID, history[0].Timestamp.Format("2006-01-02T15:04:05Z07:00"))
	}

	out, err := exporter.Export(newKeyPair, keyFormat)
	if err != nil {
		return fmt.Errorf("failed to export new key: %w", err)
	}

	if rotateOutput == "" {
		fmt.Print(string(out))
	} else {
		if err := os.WriteFile(rotateOutput, out, 0600); err != nil {
			return fmt.Errorf("failed to write new key file: %w", err)
		}
		fmt.Printf("New key saved to %s\n", rotateOutput)
	}

	vm, err := did.EncodeVerificationMethod(newKeyPair, rotateKeyID, did.AgentDID(rotateController))
	if err != nil {
		return fmt.Errorf("failed to build verificationMethod fragment for rotated key: %w", err)
	}
	vmJSON, err := json.MarshalIndent(vm, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal verificationMethod fragment: %w", err)
	}

	if rotateVMOut == "" {
		fmt.Println(string(vmJSON))
		return nil
	}
	if err := os.WriteFile(rotateVMOut, vmJSON, 0644); err != nil {
		return fmt.Errorf("failed to write verificationMethod fragment: %w", err)
	}
	fmt.Printf("New verificationMethod fragment saved to %s\n", rotateVMOut)
	return nil
}
