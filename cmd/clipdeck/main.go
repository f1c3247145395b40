package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"
	"golang.org/x/term"

	"github.com/clipdeck/clipdeck/internal/cloud"
	"github.com/clipdeck/clipdeck/internal/config"
	"github.com/clipdeck/clipdeck/internal/db"
	"github.com/clipdeck/clipdeck/internal/logging"
	"github.com/clipdeck/clipdeck/internal/pipeline"
	"github.com/clipdeck/clipdeck/internal/playback"
	"github.com/clipdeck/clipdeck/internal/player"
	"github.com/clipdeck/clipdeck/internal/preview"
	"github.com/clipdeck/clipdeck/internal/store"
	"github.com/clipdeck/clipdeck/internal/tui"
)

const (
	keyringService = "clipdeck"
	keyringUser    = "api-token"

	configKeyExportDir = "export_dir"
	recentListLimit    = 10
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	_ = godotenv.Load()

	exportDir := flag.String("export-dir", "", "directory for exported subtitle files (remembered between runs)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() > 1 {
		usage()
		return fmt.Errorf("at most one project id is accepted")
	}

	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.MkdirAll(cfg.MediaDir(), 0755); err != nil {
		return fmt.Errorf("failed to create media dir: %w", err)
	}

	// the TUI owns the terminal, so logs go to a file in the data dir
	logFile, err := logging.OpenLogFile(cfg.DataDir())
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	logger := logging.NewLogger(logFile, cfg.LogLevel())

	database, err := db.New(cfg.DBPath(), logging.WithComponent(logger, "db"))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := store.NewRepository(database.Conn())

	if flag.NArg() == 0 {
		return printRecentProjects(repo)
	}
	projectID, err := strconv.ParseInt(flag.Arg(0), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid project id %q", flag.Arg(0))
	}

	logger.Info("starting clipdeck",
		"version", config.Version,
		"build_time", config.BuildTime,
		"git_commit", config.GitCommit,
		"project_id", projectID,
		"data_dir", cfg.DataDir())

	token, err := ensureAPIToken()
	if err != nil {
		return fmt.Errorf("failed to obtain API token: %w", err)
	}
	logger.Info("api token resolved", "token", logging.SanitizeToken(token))

	client := cloud.NewHTTPClient(cfg.APIBaseURL(), token, logging.WithComponent(logger, "cloud"))
	cache := preview.NewCache(cfg.MediaDir(), client, logging.WithComponent(logger, "preview"))

	previewServer := preview.NewServer(preview.ServerConfig{
		Port:      cfg.PreviewPort(),
		Cache:     cache,
		Media:     playback.NewServer(logging.WithComponent(logger, "playback")),
		Logger:    logging.WithComponent(logger, "preview"),
		StartTime: startTime,
	})
	go func() {
		if err := previewServer.Start(); err != nil {
			logger.Error("preview server failed", "error", err)
		}
	}()

	launcher := player.NewLauncher(cfg.PlayerCmd(), logging.WithComponent(logger, "player"))
	if !launcher.Available() {
		logger.Warn("video player not found on PATH, preview disabled", "command", cfg.PlayerCmd())
	}

	supervisor := pipeline.NewSupervisor(client, cfg.StatusPollInterval(), cfg.RenderPollInterval(), logging.WithComponent(logger, "pipeline"))

	model := tui.New(tui.Options{
		ProjectID:  projectID,
		Client:     client,
		Repo:       repo,
		Supervisor: supervisor,
		Preview:    previewServer,
		Cache:      cache,
		Launcher:   launcher,
		ExportDir:  resolveExportDir(repo, *exportDir, logger),
		Logger:     logging.WithProjectID(logging.WithComponent(logger, "tui"), projectID),
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := previewServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("preview server shutdown error", "error", err)
	}
	logger.Info("clipdeck stopped")
	return nil
}

// printRecentProjects lists recently opened projects when clipdeck is
// invoked without a project id.
func printRecentProjects(repo store.Repository) error {
	recents, err := repo.ListRecentProjects(context.Background(), recentListLimit)
	if err != nil {
		return fmt.Errorf("failed to list recent projects: %w", err)
	}
	if len(recents) == 0 {
		fmt.Println("no recent projects; pass a project id to open one")
		return nil
	}
	fmt.Println("recent projects:")
	for _, p := range recents {
		fmt.Printf("  %6d  %-12s  %s  %s\n",
			p.ProjectID, p.Status, p.OpenedAt.Local().Format("2006-01-02 15:04"), p.Title)
	}
	return nil
}

// resolveExportDir uses the flag when given (and remembers it), the
// stored value otherwise, and the current directory as a last resort.
func resolveExportDir(repo store.Repository, flagValue string, logger *slog.Logger) string {
	ctx := context.Background()
	if flagValue != "" {
		if err := repo.SetConfig(ctx, configKeyExportDir, flagValue); err != nil {
			logger.Warn("failed to remember export dir", "error", err)
		}
		return flagValue
	}
	stored, err := repo.GetConfig(ctx, configKeyExportDir)
	if err != nil {
		logger.Warn("failed to read stored export dir", "error", err)
	}
	if stored == "" {
		return "."
	}
	return stored
}

// ensureAPIToken resolves the pipeline API token: environment first,
// then the system keyring, then an interactive prompt whose answer is
// stored in the keyring for next time.
func ensureAPIToken() (string, error) {
	if token := os.Getenv(config.EnvAPIToken); token != "" {
		return token, nil
	}

	token, err := keyring.Get(keyringService, keyringUser)
	if err == nil && token != "" {
		return token, nil
	}
	if err != nil && err != keyring.ErrNotFound {
		fmt.Fprintf(os.Stderr, "warning: keyring unavailable: %v\n", err)
	}

	fmt.Print("API token (stored in system keyring): ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	token = strings.TrimSpace(string(raw))
	if token == "" {
		return "", fmt.Errorf("an API token is required")
	}
	if err := keyring.Set(keyringService, keyringUser, token); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not store token in keyring: %v\n", err)
	}
	return token, nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: clipdeck [options] [project-id]\n\n")
	fmt.Fprintf(os.Stderr, "Without a project id, lists recently opened projects.\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
	fmt.Fprintf(os.Stderr, "  %s\tpipeline API base URL\n", config.EnvAPIBaseURL)
	fmt.Fprintf(os.Stderr, "  %s\tAPI token (skips the keyring)\n", config.EnvAPIToken)
	fmt.Fprintf(os.Stderr, "  %s\tloopback media port\n", config.EnvPreviewPort)
	fmt.Fprintf(os.Stderr, "  %s\texternal player command\n", config.EnvPlayerCmd)
}
