package service

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
)

// DecodePrivateKey decodes a base64 Ed25519 private key as stored in config.
func DecodePrivateKey(privateKeyBase64 string) (ed25519.PrivateKey, error) {
	if privateKeyBase64 == "" {
		return nil, fmt.Errorf("private key is empty")
	}

	privateKeyBytes, err := base64.StdEncoding.DecodeString(privateKeyBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}

	if len(privateKeyBytes) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key size: %d", len(privateKeyBytes))
	}

	return ed25519.PrivateKey(privateKeyBytes), nil
}

func DecodePublicKey(publicKeyBase64 string) (ed25519.PublicKey, error) {
	if publicKeyBase64 == "" {
		return nil, fmt.Errorf("public key is empty")
	}

	publicKeyBytes, err := base64.StdEncoding.DecodeString(publicKeyBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode public key: %w", err)
	}

	if len(publicKeyBytes) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid public key size: %d", len(publicKeyBytes))
	}

	return ed25519.PublicKey(publicKeyBytes), nil
}

// GenerateKeyPair returns a fresh base64 encoded Ed25519 key pair.
func GenerateKeyPair() (privateKeyBase64, publicKeyBase64 string, err error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate keys: %w", err)
	}
	return base64.StdEncoding.EncodeToString(priv), base64.StdEncoding.EncodeToString(pub), nil
}
