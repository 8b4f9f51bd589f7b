package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/serpdump"
	"github.com/fwojciec/serpdump/csv"
	"github.com/fwojciec/serpdump/etree"
	"github.com/fwojciec/serpdump/export"
	"github.com/fwojciec/serpdump/fs"
	"github.com/fwojciec/serpdump/goquery"
	serphttp "github.com/fwojciec/serpdump/http"
	"github.com/fwojciec/serpdump/json"
	serpprom "github.com/fwojciec/serpdump/prometheus"
	"github.com/fwojciec/serpdump/rod"
	"github.com/fwojciec/serpdump/scrape"
	serpslog "github.com/fwojciec/serpdump/slog"
	"github.com/fwojciec/serpdump/sqlite"
	"github.com/fwojciec/serpdump/yaml"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// LoadDotEnv loads variables from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Main represents the program.
type Main struct {
	// Fetcher replaces the HTTP and browser fetchers. Set before calling
	// Run() for end-to-end testing.
	Fetcher serpdump.Fetcher

	// SQLite database used by --store=sqlite.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("serpdump"),
		kong.Description("Extract search results pages into JSON, XML and CSV"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'serpdump --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	store, err := m.openStore(cli)
	if err != nil {
		fmt.Fprintf(stderr, "Hint: Set SERPDUMP_DIR or SERPDUMP_DB to use a different location\n")
		return err
	}
	defer m.Close()
	store = serpslog.NewLoggingArtifactStore(store, deps.Logger)
	deps.Gateway = export.NewGateway(store)

	var flags *FetchFlags
	switch command := strings.Fields(kongCtx.Command())[0]; command {
	case "search":
		flags = &cli.Search.FetchFlags
	case "serve":
		flags = &cli.Serve.FetchFlags
	}

	if flags != nil {
		detector, err := newDetector(cli.Rules)
		if err != nil {
			return err
		}

		fetcher, err := m.newFetcher(flags, stderr)
		if err != nil {
			return err
		}
		defer fetcher.Close()

		var search serpdump.SearchService = &scrape.Scraper{
			Fetcher:   serpslog.NewLoggingFetcher(fetcher, deps.Logger),
			Extractor: serpslog.NewLoggingExtractor(goquery.NewExtractor(detector), deps.Logger),
			Exporter:  export.NewExporter(store, json.NewCodec(), etree.NewCodec(), csv.NewCodec()),
			SearchURL: flags.SearchURL,
		}
		search = serpslog.NewLoggingSearchService(search, deps.Logger)

		if flags == &cli.Serve.FetchFlags {
			metrics := serpprom.NewMetrics()
			search = serpprom.NewSearchService(search, metrics)
			deps.Metrics = metrics.Handler()
		}
		deps.Search = search
	}

	return kongCtx.Run(deps)
}

// openStore opens the artifact store selected by --store.
func (m *Main) openStore(cli *CLI) (serpdump.ArtifactStore, error) {
	switch cli.Store {
	case "sqlite":
		m.DB = sqlite.NewDB(cli.DB)
		if err := m.DB.Open(); err != nil {
			return nil, fmt.Errorf("failed to open database at %q: %w", cli.DB, err)
		}
		return sqlite.NewArtifactStore(m.DB), nil
	default:
		return fs.NewArtifactStore(cli.Dir), nil
	}
}

// newFetcher returns m.Fetcher when set, a browser fetcher when any browser
// flag is given, and a plain HTTP fetcher otherwise.
func (m *Main) newFetcher(flags *FetchFlags, stderr io.Writer) (serpdump.Fetcher, error) {
	if m.Fetcher != nil {
		return m.Fetcher, nil
	}

	userAgent := flags.UserAgent
	if userAgent == "" {
		userAgent = serphttp.DefaultUserAgent
	}

	if flags.UseBrowser() {
		opts := []rod.Option{
			rod.WithFetchTimeout(flags.Timeout),
			rod.WithUserAgent(userAgent),
			rod.WithBrowserOptions(flags.BrowserOptions()...),
		}
		if flags.Stealth {
			opts = append(opts, rod.WithStealth())
		}
		fetcher, err := rod.NewFetcher(opts...)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		return fetcher, nil
	}

	return serphttp.NewFetcher(
		serphttp.WithTimeout(flags.Timeout),
		serphttp.WithUserAgent(userAgent),
	), nil
}

// newDetector registers rule sets from the rules file ahead of the built-in
// ones. A file rule set with a built-in version replaces it.
func newDetector(path string) (*goquery.Detector, error) {
	detector := goquery.NewDetector()
	if path != "" {
		rules, err := yaml.LoadRuleSets(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load rules: %w", err)
		}
		for _, r := range rules {
			if err := goquery.ValidateRuleSet(r); err != nil {
				return nil, fmt.Errorf("failed to load rules: %w", err)
			}
			detector.Register(r)
		}
	}
	for _, r := range goquery.DefaultRuleSets() {
		if detector.Get(r.Version) == nil {
			detector.Register(r)
		}
	}
	return detector, nil
}
