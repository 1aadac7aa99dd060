package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/anbar/internal/adapter"
	"github.com/mmcdole/anbar/internal/adapter/api"
	"github.com/mmcdole/anbar/internal/domain"
	"github.com/mmcdole/anbar/internal/search"
	"github.com/mmcdole/anbar/internal/service"
	"github.com/mmcdole/anbar/internal/store"
	"github.com/mmcdole/anbar/internal/tui"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                        \r"

type flags struct {
	version    bool
	setup      bool
	clearCache bool
	lowStock   bool
	all        bool
	query      string
}

func main() {
	var f flags
	flag.BoolVar(&f.version, "v", false, "print version")
	flag.BoolVar(&f.version, "version", false, "print version")
	flag.BoolVar(&f.setup, "setup", false, "configure the server URL and exit")
	flag.BoolVar(&f.clearCache, "clear-cache", false, "remove the local catalog cache and exit")
	flag.BoolVar(&f.lowStock, "low-stock", false, "print low stock items and exit")
	flag.BoolVar(&f.all, "all", false, "print the whole catalog and exit")
	flag.StringVar(&f.query, "q", "", "print items matching a query and exit")
	flag.Parse()

	if f.version {
		fmt.Printf("anbar %s\n", Version)
		return
	}

	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(f flags) error {
	// Load configuration
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting anbar", "version", Version)

	if f.clearCache {
		if err := adapter.ClearCache(cfg.Cache.Dir); err != nil {
			return err
		}
		fmt.Println("✓ Cache cleared")
		return nil
	}

	if f.setup {
		return runSetupFlow(cfg, logger)
	}

	client := api.NewClient(cfg.Server.URL, cfg.Server.BaseURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.Server.Timeout),
		api.WithRateLimit(cfg.Server.RateLimit, cfg.Server.Burst),
		api.WithInitData(api.FirstInitData(
			api.StaticInitData(cfg.Telegram.InitData),
			api.EnvInitData("ANBAR_TELEGRAM_INIT_DATA"),
		)),
	)

	catalogStore, err := store.NewCatalogStore(cfg.Cache.Dir, cfg.Server.URL)
	if err != nil {
		// The cache is an optimisation; run without persistence
		logger.Warn("catalog cache unavailable, using memory only", "error", err)
		catalogStore, _ = store.NewCatalogStore("", cfg.Server.URL)
	}
	defer catalogStore.Close()
	logger.Info("catalog cache ready", "persistent", catalogStore.Persistent())

	// Create services
	catalogSvc := service.NewCatalogService(client, catalogStore, service.CatalogOptions{
		ItemTTL:  cfg.Cache.ItemTTL,
		ItemSize: cfg.Cache.ItemSize,
		Logger:   logger,
	})
	searchSvc := service.NewSearchService(client, cfg.Search.RankResults, logger)

	// One-shot modes for scripts and pipes
	switch {
	case f.query != "":
		return printSearch(os.Stdout, searchSvc, f.query)
	case f.lowStock:
		return printLowStock(os.Stdout, catalogSvc)
	case f.all:
		return printAll(os.Stdout, os.Stderr, catalogSvc)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("stdout is not a terminal; use -q, -all or -low-stock for plain output")
	}

	orchestrator := search.NewOrchestrator(searchSvc.Search, search.Options{
		Debounce:       cfg.Search.Debounce,
		MinQueryLength: cfg.Search.MinQueryLength,
		Logger:         logger,
	})

	// Create launcher (uses configured viewer or system default)
	launcher := adapter.NewLauncher(cfg.Viewer.Command, cfg.Viewer.Args, logger)

	// Create TUI model
	model := tui.NewModel(tui.Options{
		Catalog:  catalogSvc,
		Search:   orchestrator,
		Launcher: launcher,
		APIBase:  client.BaseURL(),
		Logger:   logger,
	})

	// Run the TUI
	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI", "api", client.BaseURL())

	_, err = p.Run()
	// Quitting from the UI already closes it; a crash or signal may not have
	orchestrator.Close()
	if err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

func printSearch(w io.Writer, svc *service.SearchService, query string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	items, err := svc.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return printItems(w, items)
}

func printLowStock(w io.Writer, svc *service.CatalogService) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	items, err := svc.LowStock(ctx)
	if err != nil {
		return err
	}
	return printItems(w, items)
}

// printAll writes the full catalog to w and page progress to progress
func printAll(w, progress io.Writer, svc *service.CatalogService) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	items, err := svc.AllItems(ctx, func(loaded, total int) {
		fmt.Fprintf(progress, "\rLoading items %d/%d", loaded, total)
	})
	fmt.Fprint(progress, clearSpinnerLine)
	if err != nil {
		return err
	}
	return printItems(w, items)
}

func printItems(w io.Writer, items []domain.Item) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tNAME\tBRAND\tAVAILABLE")
	for _, item := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			item.ID, item.DisplayCode(), item.Name, item.BrandName, item.FormattedCount())
	}
	return tw.Flush()
}

// runSetupFlow asks for the server URL, checks it answers, and saves it
func runSetupFlow(cfg *adapter.Config, logger *slog.Logger) error {
	fmt.Println()
	fmt.Println("Welcome to Anbar!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Printf("Enter your server URL [%s]: ", cfg.Server.URL)
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		serverURL := strings.TrimRight(strings.TrimSpace(input), "/")
		if serverURL == "" {
			serverURL = cfg.Server.URL
		}
		if !strings.HasPrefix(serverURL, "http://") && !strings.HasPrefix(serverURL, "https://") {
			fmt.Println("Server URL must start with http:// or https://. Please try again.")
			continue
		}

		client := api.NewClient(serverURL, cfg.Server.BaseURL, api.WithLogger(logger), api.WithRetry(0, 0))

		fmt.Println()
		if err := pingWithSpinner(client); err != nil {
			fmt.Printf("\n✗ Could not reach the server: %v\n", err)
			fmt.Println("Please check the URL and try again.")
			fmt.Println()
			continue
		}

		cfg.Server.URL = serverURL
		break
	}

	if err := adapter.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run anbar again to start the application.")

	return nil
}

// pingWithSpinner pings the API while animating a spinner on the current line
func pingWithSpinner(client *api.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	resultCh := make(chan error, 1)
	go func() {
		resultCh <- client.Ping(ctx)
	}()

	frames := spinner.Dot.Frames
	frame := 0
	fmt.Printf("\r%s Connecting to %s...", frames[frame], client.BaseURL())

	ticker := time.NewTicker(spinner.Dot.FPS)
	defer ticker.Stop()

	for {
		select {
		case err := <-resultCh:
			fmt.Print(clearSpinnerLine)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Connected to %s\n", client.BaseURL())
			return nil

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Connecting to %s...", frames[frame%len(frames)], client.BaseURL())

		case <-ctx.Done():
			fmt.Print(clearSpinnerLine)
			return fmt.Errorf("connection timed out")
		}
	}
}
