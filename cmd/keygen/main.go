package main

import (
	"fmt"
	"os"

	"github.com/arnavshah/housekeeping-api-go/pkg/auth"
	"github.com/arnavshah/housekeeping-api-go/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: keygen <tenant>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.APIMasterSecret == "" {
		fmt.Println("Error: API_MASTER_SECRET not found in .env")
		os.Exit(1)
	}

	tenant := os.Args[1]
	a := auth.FromConfig(cfg)
	fmt.Printf("Generated Key for %s:\n%s\n", tenant, a.GenerateHMACKey(tenant))
}
