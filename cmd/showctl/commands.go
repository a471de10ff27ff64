package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/JonMunkholm/showdesk/internal/core"
)

// cli carries the service and the terminal streams for one command.
type cli struct {
	svc         *core.Service
	in          io.Reader
	out         io.Writer // command output (CSV)
	errOut      io.Writer // messages for the user
	interactive bool      // stdin is a terminal
	apiTimeout  time.Duration
}

func (c *cli) runTemplate() error {
	return core.WriteTemplate(c.out)
}

func (c *cli) runExport(ctx context.Context, cmd *exportCmd) error {
	state, err := exportState(cmd)
	if err != nil {
		return err
	}
	n, err := c.svc.ExportShows(ctx, c.out, cmd.Archived, state)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.errOut, "Exported %s show(s)\n", humanize.Comma(int64(n)))
	return nil
}

// exportState builds the list state from --search, --filter and --sort.
func exportState(cmd *exportCmd) (core.ListState, error) {
	state := core.NewListState()
	if cmd.Search != "" {
		state = core.Reduce(state, core.ListAction{Kind: core.ListSetSearch, Search: cmd.Search})
	}

	for _, raw := range cmd.Filters {
		col, expr, ok := strings.Cut(raw, "=")
		op, value, ok2 := strings.Cut(expr, ":")
		if !ok || !ok2 {
			return state, fmt.Errorf("filter %q: want COLUMN=OP:VALUE", raw)
		}
		f, err := core.ValidateFilter(core.ColumnFilter{
			Column:   strings.TrimSpace(col),
			Operator: core.FilterOperator(op),
			Value:    value,
		})
		if err != nil {
			return state, err
		}
		state = core.Reduce(state, core.ListAction{Kind: core.ListAddFilter, Filter: f})
	}

	var sorts []core.SortSpec
	for _, s := range cmd.Sort {
		dir := "asc"
		if strings.HasPrefix(s, "-") {
			dir, s = "desc", s[1:]
		}
		if _, ok := core.SpecForHeader(s); !ok {
			return state, fmt.Errorf("unknown column %q", s)
		}
		sorts = append(sorts, core.SortSpec{Column: s, Dir: dir})
	}
	if len(sorts) > 0 {
		state = core.Reduce(state, core.ListAction{Kind: core.ListSetSort, Sorts: sorts})
	}
	return state, nil
}

// rowOverride is one --set ROW=ACTION.
type rowOverride struct {
	row    int
	action core.Action
}

func parseOverrides(sets []string) ([]rowOverride, error) {
	out := make([]rowOverride, 0, len(sets))
	for _, s := range sets {
		rowStr, actionStr, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("--set %q: want ROW=ACTION", s)
		}
		row, err := strconv.Atoi(strings.TrimSpace(rowStr))
		if err != nil || row < 1 {
			return nil, fmt.Errorf("--set %q: row must be a positive number", s)
		}
		action, err := core.ParseAction(actionStr)
		if err != nil {
			return nil, fmt.Errorf("--set %q: %w", s, err)
		}
		out = append(out, rowOverride{row: row, action: action})
	}
	return out, nil
}

func (c *cli) runImport(ctx context.Context, cmd *importCmd) error {
	overrides, err := parseOverrides(cmd.Set)
	if err != nil {
		return err
	}

	f, err := os.Open(cmd.File)
	if err != nil {
		return err
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil {
		fmt.Fprintf(c.errOut, "Analyzing %s (%s)\n", cmd.File, humanize.Bytes(uint64(info.Size())))
	}

	sess, err := c.svc.AnalyzeImport(ctx, cmd.File, f, core.AnalyzeOptions{})
	if err != nil {
		var verr *core.ValidationErrors
		if errors.As(err, &verr) {
			fmt.Fprintf(c.errOut, "File rejected, %d error(s):\n", len(verr.Errors))
			for _, e := range verr.Errors {
				fmt.Fprintln(c.errOut, "  "+e)
			}
			return errors.New("nothing was imported")
		}
		return errors.New(core.FormatUserError(err))
	}

	for _, o := range overrides {
		updated, err := c.svc.SetAction(sess.ID, o.row, o.action)
		if err != nil {
			_ = c.svc.DiscardSession(sess.ID)
			return fmt.Errorf("row %d: %s", o.row, core.FormatUserError(err))
		}
		sess = updated
	}

	c.printPreview(sess)

	if cmd.DryRun {
		_ = c.svc.DiscardSession(sess.ID)
		fmt.Fprintln(c.errOut, "Dry run, nothing was imported")
		return nil
	}

	if !cmd.Yes {
		if !c.interactive {
			_ = c.svc.DiscardSession(sess.ID)
			return errors.New("stdin is not a terminal; pass --yes to commit")
		}
		prompt := fmt.Sprintf("Create %d, update %d, skip %d. Commit? [y/N] ",
			sess.Summary.CreateRows, sess.Summary.UpdateRows, sess.Summary.SkipRows)
		if !confirm(c.in, c.errOut, prompt) {
			_ = c.svc.DiscardSession(sess.ID)
			fmt.Fprintln(c.errOut, "Import cancelled")
			return nil
		}
	}

	res, err := c.svc.CommitImport(ctx, sess.ID)
	if err != nil {
		return errors.New(core.FormatUserError(err))
	}

	// Rejected rows are part of a finished commit, not a failed run.
	fmt.Fprintln(c.errOut, res.Message)
	if res.Skipped > 0 {
		fmt.Fprintf(c.errOut, "%s row(s) skipped\n", humanize.Comma(int64(res.Skipped)))
	}
	if res.Failed > 0 {
		fmt.Fprintf(c.errOut, "%s row(s) failed:\n", humanize.Comma(int64(res.Failed)))
	}
	for _, e := range res.Errors {
		fmt.Fprintln(c.errOut, "  "+e)
	}
	return nil
}

func (c *cli) printPreview(sess *core.ImportSession) {
	tw := tabwriter.NewWriter(c.errOut, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tSHOW\tACTION\tMATCH\tCHANGES")
	for _, r := range sess.Rows {
		match := "-"
		if r.Duplicate {
			match = "existing"
			if r.IsArchived {
				match = "archived"
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.Row, r.Record.Title, r.Action, match, strings.Join(r.Changes, ", "))
	}
	tw.Flush()

	sum := sess.Summary
	fmt.Fprintf(c.errOut, "%s row(s): %d new, %d matching existing shows (%d archived)\n",
		humanize.Comma(int64(sum.TotalRows)), sum.TotalRows-sum.DuplicateRows, sum.DuplicateRows, sum.ArchivedMatches)
	for _, d := range sess.InFileDuplicates {
		fmt.Fprintf(c.errOut, "warning: %q appears on rows %s\n", d.Title, joinInts(d.Rows))
	}
	if len(sess.IgnoredHeaders) > 0 {
		fmt.Fprintf(c.errOut, "Ignored columns: %s\n", strings.Join(sess.IgnoredHeaders, ", "))
	}
}

// confirm asks a yes/no question; anything but y or yes is no.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// runCheckTitle checks each stdin line as a title once typing pauses.
// Only the latest title is answered; at EOF it waits for the last answer.
func (c *cli) runCheckTitle(ctx context.Context, delay time.Duration) error {
	var (
		mu       sync.Mutex
		answered string
		kick     = make(chan struct{}, 1)
	)

	d := core.NewTitleDebouncer(ctx, delay,
		func(ctx context.Context, title string) (*core.TitleCheck, error) {
			return c.svc.CheckTitle(ctx, title, "")
		},
		func(title string, res *core.TitleCheck, err error) {
			fmt.Fprintln(c.out, describeTitleCheck(title, res, err))
			mu.Lock()
			answered = title
			mu.Unlock()
			select {
			case kick <- struct{}{}:
			default:
			}
		})
	defer d.Close()

	last := ""
	sc := bufio.NewScanner(c.in)
	for sc.Scan() {
		last = strings.TrimSpace(sc.Text())
		d.Update(last)
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if last == "" {
		return nil
	}

	timeout := time.After(delay + c.apiTimeout + time.Second)
	for {
		select {
		case <-kick:
			mu.Lock()
			done := answered == last
			mu.Unlock()
			if done {
				return nil
			}
		case <-timeout:
			return fmt.Errorf("no answer for %q", last)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func describeTitleCheck(title string, res *core.TitleCheck, err error) string {
	switch {
	case err != nil:
		return fmt.Sprintf("%s: %s", title, core.FormatUserError(err))
	case res == nil || !res.IsDuplicate:
		return fmt.Sprintf("%s: available", title)
	case res.IsArchived:
		return fmt.Sprintf("%s: taken by an archived show, unarchive and edit it instead", title)
	default:
		return fmt.Sprintf("%s: taken, edit the existing show instead", title)
	}
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
