// Package main is the entry point for the guestbook server.
//
// The main package stays minimal — its job is to:
// 1. Read configuration (a .env file if present, then environment variables)
// 2. Create dependencies (the logger)
// 3. Hand everything to internal/server and start it
//
// All actual logic lives in imported packages. This separation keeps the app
// testable and its components reusable.
package main

import (
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sakif/guestbook/internal/repository/s3kv"
	"github.com/sakif/guestbook/internal/server"
)

func main() {
	// Load .env first so local development doesn't need exported variables.
	// Absence of the file is normal in production — the real environment wins.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables from OS")
	}

	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
		port = p
	}

	// Template and static directories are relative to the project root,
	// which is the working directory under `go run ./cmd/server`.
	templateDir, _ := filepath.Abs("web/templates")
	staticDir, _ := filepath.Abs("web/static")

	// DATA_PATH overrides where the flat JSON entries file lives.
	// Example: DATA_PATH=/var/lib/guestbook/entries.json
	dataPath := "data/entries.json"
	if envPath := os.Getenv("DATA_PATH"); envPath != "" {
		dataPath = envPath
	}

	cfg := server.Config{
		Port:        port,
		TemplateDir: templateDir,
		StaticDir:   staticDir,
		DataPath:    dataPath,
		Remote:      remoteConfig(logger),
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// remoteConfig decides whether the remote object-store backend is in play.
//
// SELECTION RULE:
// The remote store is used only when the deployment EXPLICITLY opts in with
// REMOTE_STORE=1 AND both credential variables are present. A half-configured
// remote store is not an error — the guestbook logs why and runs on the file
// backend, which is the same thing that happens when the remote store fails
// at runtime.
func remoteConfig(logger *slog.Logger) *s3kv.Config {
	if v := os.Getenv("REMOTE_STORE"); v != "1" && v != "true" {
		return nil
	}

	accessKey := os.Getenv("S3_ACCESS_KEY_ID")
	secretKey := os.Getenv("S3_SECRET_ACCESS_KEY")
	if accessKey == "" || secretKey == "" {
		logger.Warn("REMOTE_STORE set but credentials incomplete, using file backend")
		return nil
	}

	cfg := &s3kv.Config{
		AccessKeyID:     accessKey,
		SecretAccessKey: secretKey,
		Bucket:          "guestbook",
		Region:          "us-east-1",
		BaseEndpoint:    os.Getenv("S3_ENDPOINT"), // empty means real AWS
	}
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		cfg.Bucket = bucket
	}
	if region := os.Getenv("S3_REGION"); region != "" {
		cfg.Region = region
	}
	return cfg
}
