package main

import (
	"fmt"
	"os"

	"licensedesk/internal/service"
)

func main() {
	privBase64, pubBase64, err := service.GenerateKeyPair()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate keys: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nGenerated Ed25519 Keys:\n")
	fmt.Printf("----------------------------------------------------------------\n")
	fmt.Printf("ResponseSigningPrivateKey: %s\n", privBase64)
	fmt.Printf("ResponseSigningPublicKey:  %s\n", pubBase64)
	fmt.Printf("----------------------------------------------------------------\n")
	fmt.Printf("\nThe private key signs API responses and export manifests.\n")
	fmt.Printf("config.yaml:\n")
	fmt.Printf("  response_signing_private_key: %q\n", privBase64)
	fmt.Printf("  response_signing_public_key: %q\n", pubBase64)
	fmt.Printf("\nEnvironment Variables:\n")
	fmt.Printf("  RESPONSE_SIGNING_PRIVATE_KEY=%s\n", privBase64)
	fmt.Printf("  RESPONSE_SIGNING_PUBLIC_KEY=%s\n", pubBase64)
}
