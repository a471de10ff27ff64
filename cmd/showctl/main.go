// Command showctl drives the show import pipeline from a terminal: it
// downloads the template, exports shows, previews and commits CSV imports
// and checks titles as they are typed.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/JonMunkholm/showdesk/internal/config"
	"github.com/JonMunkholm/showdesk/internal/core"
	"github.com/JonMunkholm/showdesk/internal/logging"
	"github.com/JonMunkholm/showdesk/internal/showapi"
)

type templateCmd struct {
	Output string `arg:"-o,--output" help:"write to this file instead of stdout"`
}

type exportCmd struct {
	Output   string   `arg:"-o,--output" help:"write to this file instead of stdout"`
	Archived bool     `arg:"--archived" help:"export archived shows"`
	Search   string   `arg:"-q,--search" help:"only shows whose title, host, genre or contact contains this"`
	Filters  []string `arg:"-f,--filter,separate" help:"column filter, e.g. 'Show Type=in:Original,Partner'"`
	Sort     []string `arg:"-s,--sort,separate" help:"sort column, prefix with - for descending"`
}

type importCmd struct {
	File   string   `arg:"positional,required" help:"CSV file to import"`
	Set    []string `arg:"--set,separate" help:"override a row action, e.g. 3=skip"`
	Yes    bool     `arg:"-y,--yes" help:"commit without asking"`
	DryRun bool     `arg:"--dry-run" help:"show the preview and discard it"`
}

type checkTitleCmd struct {
	Delay time.Duration `arg:"--delay" default:"500ms" help:"quiet period before a title is checked"`
}

type args struct {
	Template   *templateCmd   `arg:"subcommand:template" help:"write the import template"`
	Export     *exportCmd     `arg:"subcommand:export" help:"export shows as CSV"`
	Import     *importCmd     `arg:"subcommand:import" help:"preview and commit a CSV import"`
	CheckTitle *checkTitleCmd `arg:"subcommand:check-title" help:"check titles read from stdin, one per line"`

	APIURL   string `arg:"--api-url" help:"show API base url (overrides SHOW_API_URL)"`
	LogLevel string `arg:"--log-level" default:"warn" help:"debug, info, warn or error"`
}

func (args) Description() string {
	return "showctl manages shows through the show API.\n" +
		"import exits 0 once the commit ran; rows the API rejected are listed, not retried.\n"
}

func main() {
	var a args
	p := arg.MustParse(&a)
	if p.Subcommand() == nil {
		p.Fail("missing subcommand")
	}

	_ = godotenv.Load()
	logging.Setup(a.LogLevel, "text")

	if err := run(a); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(a args) error {
	out := &cli{
		in:          os.Stdin,
		out:         os.Stdout,
		errOut:      os.Stderr,
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}

	// The template needs no backend.
	if a.Template != nil {
		return out.withOutput(a.Template.Output, out.runTemplate)
	}

	if a.APIURL != "" {
		os.Setenv("SHOW_API_URL", a.APIURL)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	api, err := showapi.NewFromConfig(cfg.API)
	if err != nil {
		return err
	}
	out.svc = core.NewService(api, cfg.Import)
	out.apiTimeout = cfg.API.Timeout

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case a.Export != nil:
		return out.withOutput(a.Export.Output, func() error { return out.runExport(ctx, a.Export) })
	case a.Import != nil:
		return out.runImport(ctx, a.Import)
	case a.CheckTitle != nil:
		return out.runCheckTitle(ctx, a.CheckTitle.Delay)
	}
	return nil
}

// withOutput points c.out at path for the duration of fn.
func (c *cli) withOutput(path string, fn func() error) error {
	if path == "" {
		return fn()
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	prev := c.out
	c.out = f
	defer func() { c.out = prev }()

	if err := fn(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
