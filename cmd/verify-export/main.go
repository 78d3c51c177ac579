package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"licensedesk/internal/export"
)

func main() {
	var publicKeyB64, tokenString, file string

	flag.StringVar(&publicKeyB64, "pubkey", "", "Base64 encoded public key (response_signing_public_key)")
	flag.StringVar(&tokenString, "token", "", "Manifest token (X-Export-Token header of the download)")
	flag.StringVar(&file, "file", "licenses.csv", "Downloaded export file")
	flag.Parse()

	if publicKeyB64 == "" || tokenString == "" {
		fmt.Println("Usage: verify-export -pubkey <...> -token <...> [-file licenses.csv]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	body, err := os.ReadFile(file)
	if err != nil {
		fmt.Printf("Failed to read export: %v\n", err)
		os.Exit(1)
	}

	manifest, err := export.VerifyManifest(publicKeyB64, tokenString, body)
	if err != nil {
		fmt.Printf("Export is NOT valid: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Export is valid")
	fmt.Printf("  rows:   %d\n", manifest.Rows)
	fmt.Printf("  sha256: %s\n", manifest.SHA256)
	if manifest.IssuedAt != nil {
		fmt.Printf("  issued: %s\n", manifest.IssuedAt.Time.UTC().Format(time.RFC3339))
	}
	keys := make([]string, 0, len(manifest.Filters))
	for k := range manifest.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  filter %s=%q\n", k, manifest.Filters[k])
	}
}
