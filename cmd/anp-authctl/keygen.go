package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	sagecrypto "github.com/anp-network/anp-go/crypto"
	"github.com/anp-network/anp-go/crypto/formats"
	"github.com/anp-network/anp-go/crypto/keys"
)

var (
	keygenType   string
	keygenFormat string
	keygenOutput string
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a key pair for use as a did:wba signing or agreement key",
	Long: `Supported key types: ed25519, secp256k1, x25519, rsa.
Supported output formats: jwk, pem (x25519 keys export as jwk only).`,
	RunE: runKeygen,
}

func init() {
	rootCmd.AddCommand(keygenCmd)

	keygenCmd.Flags().StringVarP(&keygenType, "type", "t", "ed25519", "Key type (ed25519, secp256k1, x25519, rsa)")
	keygenCmd.Flags().StringVarP(&keygenFormat, "format", "f", "jwk", "Output format (jwk, pem)")
	keygenCmd.Flags().StringVarP(&keygenOutput, "output", "o", "", "Output file (default: stdout)")
}

func runKeygen(cmd *cobra.Command, args []string) error {
	var keyType sagecrypto.KeyType
	switch keygenType {
	case "ed25519":
		keyType = sagecrypto.KeyTypeEd25519
	case "secp256k1":
		keyType = sagecrypto.KeyTypeSecp256k1
	case "x25519":
		keyType = sagecrypto.KeyTypeX25519
	case "rsa":
		keyType = sagecrypto.KeyTypeRSA
	default:
		return fmt.Errorf("unsupported key type: %s", keygenType)
	}

	keyPair, err := keys.GenerateKeyPair(keyType)
	if err != nil {
		return fmt.Errorf("failed to generate key pair: %w", err)
	}

	var exporter sagecrypto.KeyExporter
	var keyFormat sagecrypto.KeyFormat
	switch keygenFormat {
	case "jwk":
		exporter = formats.NewJWKExporter()
		keyFormat = sagecrypto.KeyFormatJWK
	case "pem":
		exporter = formats.NewPEMExporter()
		keyFormat = sagecrypto.KeyFormatPEM
	default:
		return fmt.Errorf("unsupported output format: %s", keygenFormat)
	}

	data, err := exporter.Export(keyPair, keyFormat)
	if err != nil {
		return fmt.Errorf("failed to export key pair: %w", err)
	}

	if keygenOutput == "" {
		fmt.Print(string(data))
		return nil
	}
	if err := os.WriteFile(keygenOutput, data, 0600); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	fmt.Printf("Key pair saved to %s (id %s)\n", keygenOutput, keyPair.ID())
	return nil
}
