package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"youtube-plugin/internal/config"
	"youtube-plugin/internal/host"
	"youtube-plugin/internal/plugin"
	"youtube-plugin/internal/youtube"
)

func main() {
	cfgPath := flag.String("config", config.DefaultPath(), "path to config.yml")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("youtube-plugin: %v", err)
	}

	handler, icons, err := buildHandler(cfg)
	if err != nil {
		log.Fatalf("youtube-plugin: %v", err)
	}
	if icons != nil {
		defer icons.Close()
	}

	mode, rest := pickMode(flag.Args())
	switch mode {
	case "serve":
		runServe(cfg, handler)
	case "connect":
		runConnect(cfg, handler, rest)
	default:
		runQuery(cfg, handler, rest)
	}
}

// pickMode splits the leading subcommand off the positional args. Anything
// that is not a known mode is treated as query text.
func pickMode(args []string) (string, []string) {
	if len(args) == 0 {
		return "query", nil
	}
	switch args[0] {
	case "query", "serve", "connect":
		return args[0], args[1:]
	}
	return "query", args
}

func buildHandler(cfg *config.Config) (*plugin.Handler, *plugin.IconFetcher, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	var provider youtube.Provider
	if cfg.APIKey != "" {
		provider = youtube.WithDetails(youtube.NewDataAPIClient(cfg.APIKey, cfg.SearchURL, timeout))
	} else {
		provider = youtube.NewScrapeClient(cfg.ResultsURL, cfg.UserAgent, timeout)
	}

	var icons *plugin.IconFetcher
	if cfg.DownloadIcons {
		var err error
		icons, err = plugin.NewIconFetcher(cfg.UserAgent, timeout)
		if err != nil {
			return nil, nil, err
		}
	}

	return plugin.NewHandler(provider, icons, cfg.MaxResults, cfg.ResultsURL), icons, nil
}

// runQuery is the script-extension contract: one query in argv, rows as JSON
// on stdout, exit code 0 even for zero rows. Hosts that pass the full typed
// string may include the trigger prefix; strip it before searching.
func runQuery(cfg *config.Config, h *plugin.Handler, args []string) {
	query := strings.TrimPrefix(strings.Join(args, " "), cfg.Trigger)

	items, err := h.Query(context.Background(), query, 0)
	if err != nil {
		log.Printf("youtube-plugin: %v", err)
		items = nil
	}
	if items == nil {
		items = []plugin.Item{}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(plugin.SearchResponse{Items: items}); err != nil {
		log.Fatalf("youtube-plugin: encode results: %v", err)
	}
}

func runServe(cfg *config.Config, h *plugin.Handler) {
	srv := plugin.NewServer(h)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/health", srv.HandleHealth)
	r.Get("/search", srv.HandleSearch)

	log.Printf("youtube-plugin listening on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("youtube-plugin: %v", err)
	}
}

func runConnect(cfg *config.Config, h *plugin.Handler, args []string) {
	hostURL := cfg.HostURL
	if len(args) > 0 {
		hostURL = args[0]
	}
	if hostURL == "" {
		log.Fatal("youtube-plugin: connect mode needs a host URL (argument or host_url in config)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := host.Dial(ctx, hostURL, h, plugin.NewActions())
	if err != nil {
		log.Fatalf("youtube-plugin: connect %s: %v", hostURL, err)
	}

	log.Printf("youtube-plugin connected to %s", hostURL)
	if err := conn.Run(ctx); err != nil {
		log.Fatalf("youtube-plugin: host connection: %v", err)
	}
}
