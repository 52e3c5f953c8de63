package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"cycleiq/internal/auth"
	"cycleiq/internal/config"
	"cycleiq/internal/icu"
	"cycleiq/internal/service"
	"cycleiq/internal/store"
	"cycleiq/internal/strava"
	"cycleiq/internal/tui"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		fmt.Println("No config file found. Creating example config...")
		if err := config.CreateExample(); err != nil {
			return fmt.Errorf("creating example config: %w", err)
		}
		fmt.Println()
		fmt.Println("Please edit ~/.cycleiq/config.json and add your intervals.icu credentials.")
		fmt.Println("Your athlete id is in your profile URL; generate an API key under Settings, Developer.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Config validation failed: %v\n\n", err)
		fmt.Println("Please edit ~/.cycleiq/config.json")
		return nil
	}

	// Open database
	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	// Primary source and services
	client := icu.NewClient(cfg.Intervals.AthleteID, cfg.Intervals.APIKey)
	syncSvc := service.NewSyncService(client, db)
	querySvc := service.NewQueryService(db)

	// Optional Strava import source
	var importSvc *service.ImportService
	if cfg.HasStrava() {
		importSvc, err = setupStrava(ctx, db, cfg)
		if err != nil {
			return fmt.Errorf("setting up strava: %w", err)
		}
	}

	// Launch TUI
	app := tui.NewApp(querySvc, syncSvc, importSvc, cfg.Display.TrendDays)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}

// setupStrava connects the Strava account on first use, then builds the
// import service around a self-refreshing token source.
func setupStrava(ctx context.Context, db *store.DB, cfg *config.Config) (*service.ImportService, error) {
	oauthCfg := auth.NewOAuthConfig(auth.Config{
		ClientID:     cfg.Strava.ClientID,
		ClientSecret: cfg.Strava.ClientSecret,
		RedirectURL:  fmt.Sprintf("http://localhost:%d/callback", auth.CallbackPort),
	})

	tokenSource, err := auth.NewTokenSource(oauthCfg, db)
	if errors.Is(err, store.ErrNoAuth) {
		fmt.Println("Strava credentials configured but no account connected.")
		if err := auth.Connect(ctx, oauthCfg, db); err != nil {
			return nil, err
		}
		tokenSource, err = auth.NewTokenSource(oauthCfg, db)
		if err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	return service.NewImportService(strava.NewClient(tokenSource), db), nil
}
