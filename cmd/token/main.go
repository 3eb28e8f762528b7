// Command token issues a bearer token for local testing against a server
// running with JWT_SECRET_KEY set. It reads the same configuration as the
// server.
//
//	go run ./cmd/token -user alice
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/pkg/logging"
)

func main() {
	userID := flag.String("user", "", "user ID to embed in the token")
	flag.Parse()

	logging.Setup(slog.LevelWarn)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Auth.SecretKey == "" {
		slog.Error("JWT_SECRET_KEY is not set; the server trusts the X-User-Id header instead")
		os.Exit(1)
	}
	if *userID == "" {
		flag.Usage()
		os.Exit(2)
	}

	token, err := auth.NewJWTManager(cfg.Auth.SecretKey, cfg.Auth.Issuer, cfg.Auth.TokenTTL()).Generate(*userID)
	if err != nil {
		slog.Error("Failed to generate token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
