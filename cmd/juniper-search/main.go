// Command juniper-search serves and queries a multi-translation Bible corpus.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/FocuswithJustin/JuniperSearch/core/bible"
	"github.com/FocuswithJustin/JuniperSearch/core/highlight"
	"github.com/FocuswithJustin/JuniperSearch/core/search"
	"github.com/FocuswithJustin/JuniperSearch/internal/loader"
	"github.com/FocuswithJustin/JuniperSearch/internal/logging"
	"github.com/FocuswithJustin/JuniperSearch/internal/sqlite"
	"github.com/FocuswithJustin/JuniperSearch/internal/store"
	"github.com/FocuswithJustin/JuniperSearch/internal/web"
)

const version = "0.1.0"

// Globals are flags shared by every command.
type Globals struct {
	Data      string `name:"data" short:"d" help:"Catalog directory (default: bundled sample)" env:"JUNIPER_DATA" type:"path"`
	Workers   int    `help:"Translations parsed in parallel (0 = one per CPU)" env:"JUNIPER_WORKERS"`
	LogLevel  string `name:"log-level" help:"Log level" default:"info" enum:"debug,info,warn,error" env:"JUNIPER_LOG_LEVEL"`
	LogFormat string `name:"log-format" help:"Log format" default:"json" enum:"json,text" env:"JUNIPER_LOG_FORMAT"`
}

// CLI defines the command-line interface for juniper-search.
var CLI struct {
	Globals

	Serve     ServeCmd     `cmd:"" help:"Start the search API and live-search server"`
	Search    SearchCmd    `cmd:"" help:"Search every translation for a term"`
	Read      ReadCmd      `cmd:"" help:"Print a chapter or verse, e.g. \"John 3:16\""`
	Documents DocumentsCmd `cmd:"" help:"List catalog documents"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

// initLogging configures the global logger. Commands that print results log
// to stderr so stdout stays clean.
func (g *Globals) initLogging(w io.Writer) error {
	level, err := logging.ParseLevel(g.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(g.LogFormat)
	if err != nil {
		return err
	}
	logging.InitLoggerTo(w, level, format)
	return nil
}

func (g *Globals) newLoader() *loader.Loader {
	return loader.NewDir(g.Data, loader.WithWorkers(g.Workers))
}

// openStore loads the catalog synchronously.
func (g *Globals) openStore(ctx context.Context) (*store.Store, error) {
	st := store.New()
	if err := st.Initialize(ctx, g.newLoader()); err != nil {
		return nil, err
	}
	return st, nil
}

// ServeCmd runs the HTTP and WebSocket server.
type ServeCmd struct {
	Port      int           `help:"HTTP server port" default:"8080" env:"JUNIPER_PORT,PORT"`
	Origins   []string      `help:"Allowed CORS/WebSocket origins (empty = all)" env:"JUNIPER_ALLOWED_ORIGINS" sep:","`
	RateLimit int           `name:"rate-limit" help:"Requests per minute per client IP (0 = off)" default:"0" env:"JUNIPER_RATE_LIMIT"`
	Burst     int           `help:"Rate limit burst size" default:"10" env:"JUNIPER_RATE_BURST"`
	CacheTTL  time.Duration `name:"cache-ttl" help:"Search cache lifetime (0 = off)" default:"10m" env:"JUNIPER_CACHE_TTL"`
	CacheSize int           `name:"cache-size" help:"Maximum cached search terms" default:"512" env:"JUNIPER_CACHE_SIZE"`
}

func (c *ServeCmd) config() web.Config {
	cfg := web.DefaultConfig()
	cfg.Port = c.Port
	cfg.AllowedOrigins = c.Origins
	cfg.RateLimitRequests = c.RateLimit
	cfg.RateLimitBurst = c.Burst
	cfg.SearchCacheTTL = c.CacheTTL
	cfg.SearchCacheSize = c.CacheSize
	return cfg
}

func (c *ServeCmd) Run() error {
	if err := CLI.initLogging(os.Stdout); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return web.Start(ctx, c.config(), store.New(), CLI.newLoader())
}

// SearchCmd prints matches grouped by translation.
type SearchCmd struct {
	Term    []string `arg:"" help:"Search term"`
	NoColor bool     `name:"no-color" help:"Disable highlighting" env:"NO_COLOR"`
}

func (c *SearchCmd) Run() error {
	if err := CLI.initLogging(os.Stderr); err != nil {
		return err
	}
	st, err := CLI.openStore(context.Background())
	if err != nil {
		return err
	}
	return c.run(os.Stdout, st)
}

func (c *SearchCmd) run(w io.Writer, st *store.Store) error {
	res := st.Search(strings.Join(c.Term, " "))
	sty := newStyles(w, c.NoColor)

	if len([]rune(res.Term)) < search.MinTermLength {
		fmt.Fprintf(w, "Search terms need at least %d characters.\n", search.MinTermLength)
		return nil
	}
	if res.TotalCount == 0 {
		fmt.Fprintf(w, "No matches for %q.\n", res.Term)
		return nil
	}

	if res.Truncated() {
		fmt.Fprintf(w, "%d+ matches for %q, showing the first %d\n", res.TotalCount, res.Term, len(res.Matches))
	} else {
		fmt.Fprintf(w, "%d matches for %q\n", res.TotalCount, res.Term)
	}

	for _, g := range res.Groups() {
		fmt.Fprintf(w, "\n%s (%d)\n", sty.heading.Render(string(g.Version)), g.Count)
		for _, v := range g.Verses {
			text := highlight.Render(highlight.Highlight(v.Text, res.Term), sty.mark)
			fmt.Fprintf(w, "  %s  %s\n", sty.reference.Render(v.Reference()), text)
		}
	}
	return nil
}

// ReadCmd prints one chapter or verse.
type ReadCmd struct {
	Reference []string `arg:"" help:"Reference such as \"John 3\" or \"1 John 4:8\""`
	Version   string   `short:"t" help:"Translation code (default: first loaded)" env:"JUNIPER_VERSION"`
	NoColor   bool     `name:"no-color" help:"Disable styling" env:"NO_COLOR"`
}

func (c *ReadCmd) Run() error {
	if err := CLI.initLogging(os.Stderr); err != nil {
		return err
	}
	st, err := CLI.openStore(context.Background())
	if err != nil {
		return err
	}
	return c.run(os.Stdout, st)
}

func (c *ReadCmd) run(w io.Writer, st *store.Store) error {
	ref, err := bible.ParseReference(strings.Join(c.Reference, " "))
	if err != nil {
		return err
	}

	ver := bible.Version(strings.ToUpper(strings.TrimSpace(c.Version)))
	if ver == "" {
		loaded := st.Translations()
		if len(loaded) == 0 {
			return fmt.Errorf("no translations loaded")
		}
		ver = loaded[0]
	}

	verses := st.Chapter(ver, ref.Book, ref.Chapter)
	sty := newStyles(w, c.NoColor)
	printed := 0
	for _, v := range verses {
		if ref.Verse > 0 && v.Verse != ref.Verse {
			continue
		}
		if printed == 0 {
			fmt.Fprintf(w, "%s (%s)\n", sty.heading.Render(ref.String()), ver)
		}
		fmt.Fprintf(w, "%s %s\n", sty.reference.Render(fmt.Sprintf("%3d", v.Verse)), v.Text)
		printed++
	}
	if printed == 0 {
		return fmt.Errorf("%s not found in %s", ref, ver)
	}

	count := st.ChapterCounter(ver)
	loc := bible.Location{Book: ref.Book, Chapter: ref.Chapter}
	var nav []string
	if prev, ok := bible.PrevChapter(loc, count); ok {
		nav = append(nav, fmt.Sprintf("prev: %s %d", prev.Book, prev.Chapter))
	}
	if next, ok := bible.NextChapter(loc, count); ok {
		nav = append(nav, fmt.Sprintf("next: %s %d", next.Book, next.Chapter))
	}
	if len(nav) > 0 {
		fmt.Fprintln(w, sty.muted.Render(strings.Join(nav, " | ")))
	}
	return nil
}

// DocumentsCmd lists catalog documents.
type DocumentsCmd struct {
	Sort string `help:"Sort order" default:"-created_date" enum:"-created_date,created_date"`
}

func (c *DocumentsCmd) Run() error {
	if err := CLI.initLogging(os.Stderr); err != nil {
		return err
	}
	st, err := CLI.openStore(context.Background())
	if err != nil {
		return err
	}
	return c.run(os.Stdout, st)
}

func (c *DocumentsCmd) run(w io.Writer, st *store.Store) error {
	docs := st.ListDocuments(c.Sort)
	fmt.Fprintf(w, "%d documents, %d available for download\n", len(docs), st.AvailableDocuments())
	for _, d := range docs {
		link := "not available"
		if d.Downloadable() {
			link = d.FileURL
		}
		size := d.FileSize
		if size == "" {
			size = "-"
		}
		fmt.Fprintf(w, "  %-6s %-32s %-14s %8s  %s\n", d.ID, d.Title, d.Category, size, link)
	}
	return nil
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	return c.run(os.Stdout)
}

func (c *VersionCmd) run(w io.Writer) error {
	info := sqlite.GetInfo()
	fmt.Fprintf(w, "juniper-search version %s\n", version)
	fmt.Fprintf(w, "sqlite driver: %s (%s, %s)\n", info.DriverName, info.DriverType, info.Package)
	return nil
}

type styles struct {
	heading   lipgloss.Style
	reference lipgloss.Style
	muted     lipgloss.Style
	match     lipgloss.Style
	plain     bool
}

func newStyles(w io.Writer, plain bool) styles {
	r := lipgloss.NewRenderer(w)
	if plain {
		return styles{heading: r.NewStyle(), reference: r.NewStyle(), muted: r.NewStyle(), match: r.NewStyle(), plain: true}
	}
	return styles{
		heading:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		reference: r.NewStyle().Foreground(lipgloss.Color("241")),
		muted:     r.NewStyle().Faint(true),
		match:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
	}
}

// mark renders a matched segment. Without color, matches are bracketed.
func (s styles) mark(text string) string {
	if s.plain {
		return "[" + text + "]"
	}
	return s.match.Render(text)
}

func main() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI,
		kong.Name("juniper-search"),
		kong.Description("Juniper Search - multi-translation Bible search"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
