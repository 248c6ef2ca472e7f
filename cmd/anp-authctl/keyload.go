package main

import (
	"fmt"
	"os"

	sagecrypto "github.com/anp-network/anp-go/crypto"
	"github.com/anp-network/anp-go/crypto/formats"
)

func loadKeyPair(path, format string) (sagecrypto.KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	var importer sagecrypto.KeyImporter
	var keyFormat sagecrypto.KeyFormat
	switch format {
	case "jwk":
		importer = formats.NewJWKImporter()
		keyFormat = sagecrypto.KeyFormatJWK
	case "pem":
		importer = formats.NewPEMImporter()
		keyFormat = sagecrypto.KeyFormatPEM
	default:
		return nil, fmt.Errorf("unsupported key format: %s", format)
	}

	return importer.Import(data, keyFormat)
}
