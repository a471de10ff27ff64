package core

import (
	"context"
	"strings"
	"sync"
	"time"
)

// DefaultTitleDebounce is the quiet period before a title is checked.
const DefaultTitleDebounce = 500 * time.Millisecond

// Suggested follow-ups when a title is already taken.
const (
	SuggestEditExisting     = "edit_existing"
	SuggestUnarchiveAndEdit = "unarchive_and_edit"
)

// TitleCheck is the answer to "is this title already used?".
type TitleCheck struct {
	Title        string      `json:"title"`
	IsDuplicate  bool        `json:"is_duplicate"`
	ExistingShow *ShowRecord `json:"existing_show,omitempty"`
	IsArchived   bool        `json:"is_archived,omitempty"`
	Suggestion   string      `json:"suggestion,omitempty"`
}

// TitleCheckFunc performs one title check.
type TitleCheckFunc func(ctx context.Context, title string) (*TitleCheck, error)

// TitleResultFunc receives a result that is still current.
type TitleResultFunc func(title string, res *TitleCheck, err error)

// TitleDebouncer runs a title check once input has been quiet for the delay.
// Every Update bumps a generation counter; a check's answer is delivered only
// if no newer Update arrived while it ran and the title is unchanged, so a
// slow early response never overwrites a later one. In-flight checks are not
// cancelled, their answers are dropped.
type TitleDebouncer struct {
	ctx      context.Context
	delay    time.Duration
	check    TitleCheckFunc
	onResult TitleResultFunc

	mu     sync.Mutex
	gen    uint64
	title  string
	timer  *time.Timer
	closed bool

	deliverMu sync.Mutex
}

// NewTitleDebouncer creates a debouncer. A non-positive delay uses
// DefaultTitleDebounce.
func NewTitleDebouncer(ctx context.Context, delay time.Duration, check TitleCheckFunc, onResult TitleResultFunc) *TitleDebouncer {
	if delay <= 0 {
		delay = DefaultTitleDebounce
	}
	return &TitleDebouncer{
		ctx:      ctx,
		delay:    delay,
		check:    check,
		onResult: onResult,
	}
}

// Update records the latest title input and restarts the quiet period.
// A blank title cancels any pending check without issuing a new one.
func (d *TitleDebouncer) Update(title string) {
	title = strings.TrimSpace(title)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.gen++
	d.title = title
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if title == "" {
		return
	}

	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen, title) })
}

// Generation returns the number of Update calls so far.
func (d *TitleDebouncer) Generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen
}

// Close stops pending checks and suppresses any answer still in flight.
func (d *TitleDebouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *TitleDebouncer) current(gen uint64, title string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.closed && gen == d.gen && title == d.title
}

func (d *TitleDebouncer) fire(gen uint64, title string) {
	if !d.current(gen, title) {
		return
	}

	res, err := d.check(d.ctx, title)

	d.deliverMu.Lock()
	defer d.deliverMu.Unlock()
	if !d.current(gen, title) {
		return
	}
	d.onResult(title, res, err)
}
