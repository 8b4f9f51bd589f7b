package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwojciec/serpdump"
	"github.com/fwojciec/serpdump/rod"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Search  serpdump.SearchService
	Gateway serpdump.ArtifactGateway

	// Metrics serves /metrics in serve mode. Optional.
	Metrics http.Handler
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Dir     string `short:"d" default:"." env:"SERPDUMP_DIR" help:"Directory holding the Results.* files"`
	Store   string `default:"fs" enum:"fs,sqlite" env:"SERPDUMP_STORE" help:"Artifact storage backend (fs, sqlite)"`
	DB      string `default:"serpdump.db" env:"SERPDUMP_DB" help:"SQLite database path for --store=sqlite"`
	Rules   string `env:"SERPDUMP_RULES" help:"YAML file with extra selector rule sets"`
	Verbose bool   `short:"v" help:"Log every fetch, extraction and store operation"`

	Search SearchCmd `cmd:"" help:"Search a keyword and save the results in every format"`
	Get    GetCmd    `cmd:"" help:"Print the saved results in one format"`
	Serve  ServeCmd  `cmd:"" help:"Serve search and downloads over HTTP"`
}

// FetchFlags configures how results pages are fetched.
type FetchFlags struct {
	Browser   bool          `short:"b" help:"Render the results page in headless Chrome"`
	Stealth   bool          `help:"Mask headless browser fingerprints (implies --browser)"`
	ChromeBin string        `name:"chrome-bin" env:"SERPDUMP_CHROME_BIN" help:"Chrome or Chromium binary (implies --browser)"`
	Headful   bool          `help:"Show the browser window (implies --browser)"`
	Timeout   time.Duration `short:"t" default:"10s" help:"Fetch timeout per page"`
	UserAgent string        `name:"user-agent" env:"SERPDUMP_USER_AGENT" help:"User-Agent sent with requests"`
	SearchURL string        `name:"search-url" env:"SERPDUMP_SEARCH_URL" hidden:"" help:"Results page endpoint"`
}

// UseBrowser reports whether pages are rendered in Chrome.
func (f *FetchFlags) UseBrowser() bool {
	return f.Browser || f.Stealth || f.Headful || f.ChromeBin != ""
}

// BrowserOptions returns the Chrome options selected by the flags.
func (f *FetchFlags) BrowserOptions() []rod.BrowserOption {
	var opts []rod.BrowserOption
	if f.ChromeBin != "" {
		opts = append(opts, rod.WithBin(f.ChromeBin))
	}
	if f.Headful {
		opts = append(opts, rod.WithHeadful())
	}
	return opts
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Keyword string `arg:"" help:"Keyword to search for"`

	FetchFlags `embed:""`
}

// GetCmd is the "get" subcommand.
type GetCmd struct {
	Format string `arg:"" help:"Format to print (json, xml, csv)"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `default:":8080" env:"SERPDUMP_ADDR" help:"Address to listen on"`

	FetchFlags `embed:""`
}
