package main

import (
	"fmt"
	"os"

	"gallery/internal/security"
)

func main() {
	var key string
	if len(os.Args) >= 2 {
		key = os.Args[1]
	} else {
		generated, err := security.GenerateAPIKey()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating key: %v\n", err)
			os.Exit(1)
		}
		key = generated
		fmt.Println("Generated a new API key. Store it now, it is not saved anywhere:")
		fmt.Println()
		fmt.Printf("  %s\n", key)
		fmt.Println()
	}

	hash, err := security.HashAPIKey(key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Add this to your environment variables:")
	fmt.Printf("export API_KEY_HASH='%s'\n", hash)
	fmt.Println()
	fmt.Println("Or to your config file:")
	fmt.Printf("api_key_hash: '%s'\n", hash)
	fmt.Println()
	fmt.Println("Usage: go run scripts/hash_api_key.go [key]")
}
