// Package main is the entry point for the club registry backend.
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/pocketbase/pocketbase/tools/hook"

	"github.com/HamilaStartZup/TrappesBackEnd-repo/billing"
	"github.com/HamilaStartZup/TrappesBackEnd-repo/config"
	"github.com/HamilaStartZup/TrappesBackEnd-repo/google"
	"github.com/HamilaStartZup/TrappesBackEnd-repo/importer"
	"github.com/HamilaStartZup/TrappesBackEnd-repo/logging"
	_ "github.com/HamilaStartZup/TrappesBackEnd-repo/migrations"
	"github.com/HamilaStartZup/TrappesBackEnd-repo/notify"
	"github.com/HamilaStartZup/TrappesBackEnd-repo/roster"
)

func main() {
	// Initialize unified logging format
	// Format: 2026-01-06T14:05:52Z [club] LEVEL message key=value...
	logging.Init("club")

	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	app := pocketbase.New()

	var automigrate bool
	app.RootCmd.PersistentFlags().BoolVar(
		&automigrate,
		"automigrate",
		true,
		"enable/disable auto migrations",
	)
	_ = app.RootCmd.ParseFlags(os.Args[1:])

	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		TemplateLang: migratecmd.TemplateLangGo,
		Automigrate:  automigrate,
	})

	// ---------------------------------------------------------------
	// Register custom routes and services:
	// ---------------------------------------------------------------

	roster.RegisterHooks(app)

	app.OnServe().Bind(&hook.Handler[*core.ServeEvent]{
		Func: func(e *core.ServeEvent) error {
			slog.Info("Registering club API routes")

			mail := notify.NewService(app)

			importer.RegisterRoutes(e, app, cfg.Import)
			billing.RegisterRoutes(e, app, billing.NewStripeGateway(cfg.Stripe), mail)
			roster.RegisterRoutes(e, app, mail)
			google.RegisterRoutes(e, app)

			return e.Next()
		},
	})

	// Start the age refresh scheduler after the app is fully initialized
	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		sweeper := roster.NewAgeSweeper(app)
		if err := sweeper.Start(); err != nil {
			slog.Error("Failed to start age sweeper", "error", err)
		}
		return e.Next()
	})

	if err := app.Start(); err != nil {
		slog.Error("Failed to start application", "error", err)
		os.Exit(1)
	}
}
