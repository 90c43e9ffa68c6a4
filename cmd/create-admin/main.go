// Package main provisions the initial staff account. Credentials come from
// flags, then ADMIN_* environment variables, then development defaults.
// Rerunning against an existing username resets that account's password,
// clears its TOTP enrollment, and ensures it has staff access, so it also
// serves as the recovery path for a locked-out admin.
package main

import (
	"flag"
	"log/slog"
	"os"

	"healthline/internal/config"
	"healthline/internal/database"
	"healthline/internal/store"
)

func main() {
	username := flag.String("username", "", "admin username (default: ADMIN_USERNAME or \"admin\")")
	email := flag.String("email", "", "admin email (default: ADMIN_EMAIL or \"admin@example.com\")")
	password := flag.String("password", "", "admin password (default: ADMIN_PASSWORD or \"admin123456\")")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	resolve := func(flagVal, envKey, fallback string) string {
		if flagVal != "" {
			return flagVal
		}
		if v := os.Getenv(envKey); v != "" {
			return v
		}
		return fallback
	}

	user := resolve(*username, "ADMIN_USERNAME", "admin")
	mail := resolve(*email, "ADMIN_EMAIL", "admin@example.com")
	pass := resolve(*password, "ADMIN_PASSWORD", "admin123456")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	users := store.NewUserStore(db)

	existing, err := users.FindByUsername(user)
	if err != nil {
		slog.Error("user lookup failed", "error", err)
		os.Exit(1)
	}

	if existing != nil {
		if err := users.SetPassword(existing.ID, pass); err != nil {
			slog.Error("password reset failed", "error", err)
			os.Exit(1)
		}
		// A lost authenticator must not keep the recovered account out.
		if existing.TOTPEnabled {
			if err := users.DisableTOTP(existing.ID); err != nil {
				slog.Error("disable 2fa failed", "error", err)
				os.Exit(1)
			}
			slog.Info("two-factor enrollment cleared", "username", user)
		}
		if !existing.IsStaff {
			if _, err := users.ToggleStaff(existing.ID); err != nil {
				slog.Error("grant staff failed", "error", err)
				os.Exit(1)
			}
		}
		slog.Info("existing account updated", "username", user)
		return
	}

	if _, err := users.Create(user, mail, pass, "", "", true); err != nil {
		slog.Error("create admin failed", "error", err)
		os.Exit(1)
	}

	slog.Info("admin account created", "username", user, "email", mail)
}
