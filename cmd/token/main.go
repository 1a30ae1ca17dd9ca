// Package main issues a bearer token for a registrar, signed with the
// configured security.jwt_signing_key. Requests made with the token are
// audited under its username.
//
// Import Path: landledger.io/registry/cmd/token
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"landledger.io/registry/internal/api/middleware"
	"landledger.io/registry/internal/app"
	"landledger.io/registry/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "token error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	subject := flag.String("subject", "", "registrar id (sub claim)")
	username := flag.String("username", "", "name written to audit entries; defaults to subject")
	flag.Parse()
	if *subject == "" {
		return fmt.Errorf("-subject is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	jwtCfg := app.JWTConfig(cfg)
	if !jwtCfg.Enabled() {
		return fmt.Errorf("security.jwt_signing_key is not set")
	}

	token, expiresAt, err := middleware.GenerateToken(jwtCfg, *subject, *username)
	if err != nil {
		return err
	}
	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires at %s\n", expiresAt.UTC().Format(time.RFC3339))
	return nil
}
