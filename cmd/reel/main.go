package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mjpeters/reel/internal/catalog"
	"github.com/mjpeters/reel/internal/config"
	"github.com/mjpeters/reel/internal/coordinator"
	"github.com/mjpeters/reel/internal/gateway/jellyfin"
	"github.com/mjpeters/reel/internal/log"
	"github.com/mjpeters/reel/internal/store"
	"github.com/mjpeters/reel/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Parse()

	if showVersion {
		fmt.Printf("reel %s\n", Version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.Setup(&cfg.Logging)
	if err != nil {
		// Fall back to a null logger if file logging fails
		logger = log.Null()
	}
	slog.SetDefault(logger)

	logger.Info("starting reel", "version", Version)

	if !cfg.IsConfigured() {
		if err := runSetupFlow(cfg); err != nil {
			return err
		}
	}

	client := jellyfin.NewClient(cfg.Server.URL, cfg.Server.Token, cfg.Server.UserID, logger)
	session := jellyfin.NewSession(client, cfg.Server.Username, "", func(token, userID string) {
		if err := config.SaveToken(token, userID); err != nil {
			logger.Error("failed to persist refreshed token", "error", err)
		}
	})

	cache, err := store.New(config.DefaultCachePath(), cfg.Server.URL)
	if err != nil {
		logger.Warn("cache unavailable, running without it", "error", err)
		cache = nil
	}

	cat := catalog.New(client, logger)
	coord := newCoordinator(client, session, cat, cache, logger, coordinator.Options{
		PageSize:    cfg.Library.PageSize,
		RecentLimit: cfg.Library.RecentLimit,
	})
	defer func() {
		if cache != nil {
			cache.Close()
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := tui.NewModel(ctx, coord)
	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")
	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runSetupFlow prompts for server details and logs in
func runSetupFlow(cfg *config.Config) error {
	fmt.Println()
	fmt.Println("Welcome to reel!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Server URL (e.g., http://192.168.1.100:8096): ")
	serverURL, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	serverURL = strings.TrimRight(strings.TrimSpace(serverURL), "/")
	if serverURL == "" {
		return fmt.Errorf("server URL cannot be empty")
	}

	fmt.Print("Username: ")
	username, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}
	username = strings.TrimSpace(username)

	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Println("Authenticating...")
	auth, err := jellyfin.Authenticate(ctx, &http.Client{Timeout: 30 * time.Second}, serverURL, username, string(passwordBytes))
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	cfg.Server.URL = serverURL
	cfg.Server.Token = auth.AccessToken
	cfg.Server.UserID = auth.User.ID
	cfg.Server.Username = auth.User.Name

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Logged in as %s\n", auth.User.Name)
	fmt.Println()
	return nil
}

func newCoordinator(client *jellyfin.Client, session *jellyfin.Session, cat *catalog.Catalog, cache *store.Store, logger *slog.Logger, opts coordinator.Options) *coordinator.Coordinator {
	if cache == nil {
		return coordinator.New(client, session, cat, nil, logger, opts)
	}
	return coordinator.New(client, session, cat, cache, logger, opts)
}
