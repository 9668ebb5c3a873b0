package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"inventory-api/internal/auth"
	"inventory-api/internal/config"
)

// tokengen mints bearer tokens for the local development verifier. Tokens
// from the real identity provider come from its own SDKs, not from here.
func main() {
	var (
		uid        = flag.String("uid", "dev-user", "Caller UID")
		email      = flag.String("email", "dev@example.com", "Caller email")
		expiryMins = flag.Int("expiry", 1440, "Token expiry in minutes (default: 24 hours)")
		secret     = flag.String("secret", "", "Signing secret (overrides AUTH_DEV_SECRET env var)")
	)
	flag.Parse()

	cfg := config.Load()
	if *secret != "" {
		cfg.Auth.DevSecret = *secret
	}
	if cfg.Auth.DevSecret == "" {
		log.Fatal("No signing secret: set AUTH_DEV_SECRET or pass -secret")
	}

	manager := auth.NewTokenManager(cfg.Auth.DevSecret, cfg.Auth.DevIssuer, cfg.Auth.DevAudience, time.Duration(*expiryMins)*time.Minute)

	token, err := manager.GenerateToken(*uid, *email)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}

	fmt.Printf("Bearer token generated successfully!\n\n")
	fmt.Printf("UID: %s\n", *uid)
	fmt.Printf("Email: %s\n", *email)
	fmt.Printf("Expiry: %d minutes\n", *expiryMins)
	fmt.Printf("\nToken:\n%s\n\n", token)

	fmt.Printf("Usage example:\n")
	fmt.Printf("curl -H \"Authorization: Bearer %s\" -X DELETE http://localhost:8080/api/items/1\n", token)
}
