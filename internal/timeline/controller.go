package timeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

type Config struct {
	// Location is the reference time zone for day keys. Defaults to time.Local.
	Location *time.Location
	// SpanDays is the number of calendar days per fetch window. Defaults to 5.
	SpanDays int
	// PageSize is requested from the source for every window. Defaults to 500.
	PageSize int
	Query    Query
	Logger   *zerolog.Logger
}

func (cfg Config) withDefaults() Config {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.SpanDays <= 0 {
		cfg.SpanDays = defaultSpanDays
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Logger == nil {
		nop := zerolog.Nop()
		cfg.Logger = &nop
	}
	return cfg
}

// Request is a window fetch that has been issued but not yet applied.
type Request struct {
	session uint64
	window  Window
	filter  ListFilter
	dicts   Dictionaries
	loc     *time.Location
	// err rejects the request before it reaches the source.
	err error
}

func (r Request) Window() Window {
	return r.window
}

func (r Request) Filter() ListFilter {
	return r.filter
}

// Result is the outcome of running a Request. It carries no cache mutation
// until passed to Controller.Apply.
type Result struct {
	session  uint64
	window   Window
	buckets  []Bucket
	dangling int
	err      error
}

func (r Result) Window() Window {
	return r.window
}

func (r Result) Buckets() []Bucket {
	return r.buckets
}

func (r Result) Err() error {
	return r.err
}

// Change is delivered to OnChange listeners after every state transition.
type Change struct {
	Window Window
	Status Status
	Err    error
}

// Controller owns the timeline cache and the window arithmetic around it.
//
// Fetches are split into Begin*, Run and Apply so an event loop can run the
// read off-loop and apply the result on-loop. Load, FetchOlder and Jump do
// all three in sequence. Only one window operation is expected in flight at
// a time; callers gate on IsLoading.
type Controller struct {
	source Source
	cfg    Config
	log    zerolog.Logger

	mu        sync.Mutex
	query     Query
	dicts     Dictionaries
	cache     *Cache
	session   uint64
	closed    bool
	anchor    Day
	boundary  Day
	loaded    bool
	inFlight  int
	status    Status
	err       error
	listeners map[int]func(Change)
	nextID    int
}

func NewController(source Source, cfg Config) *Controller {
	cfg = cfg.withDefaults()
	return &Controller{
		source:    source,
		cfg:       cfg,
		log:       cfg.Logger.With().Str("component", "timeline").Logger(),
		query:     cfg.Query,
		cache:     NewCache(),
		listeners: make(map[int]func(Change)),
	}
}

func (c *Controller) Location() *time.Location {
	return c.cfg.Location
}

// SetDictionaries replaces the lookup tables used by subsequent fetches.
// Buckets already in the cache keep the joins they were built with.
func (c *Controller) SetDictionaries(d Dictionaries) {
	c.mu.Lock()
	c.dicts = d
	c.mu.Unlock()
}

// Reset tears down the cache and starts a new one for q. Completions of
// requests issued before the reset are discarded.
func (c *Controller) Reset(q Query) {
	c.mu.Lock()
	c.session++
	c.query = q
	c.cache = NewCache()
	c.anchor = ""
	c.boundary = ""
	c.loaded = false
	c.inFlight = 0
	c.status = StatusIdle
	c.err = nil
	c.mu.Unlock()

	c.log.Debug().Str("query", q.Key()).Msg("timeline reset")
	c.emit(Change{Status: StatusIdle})
}

// Close tears the timeline down. Pending completions are dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	c.session++
	c.closed = true
	c.inFlight = 0
	c.mu.Unlock()
}

// BeginLoad issues the initial window ending on anchor's day. An anchor
// outside years 0000-9999 yields a request that fails without a read.
func (c *Controller) BeginLoad(anchor time.Time) Request {
	c.mu.Lock()
	w, err := c.anchoredLocked(WindowInitial, anchor)
	req := c.beginLocked(w, err)
	c.mu.Unlock()

	c.emit(Change{Window: w, Status: StatusLoading})
	return req
}

// BeginOlder returns false when no window has been loaded yet.
func (c *Controller) BeginOlder() (Request, bool) {
	c.mu.Lock()
	if !c.loaded || c.boundary.IsZero() {
		c.mu.Unlock()
		return Request{}, false
	}
	w, err := olderWindow(c.boundary, c.cfg.SpanDays, c.cfg.Location)
	req := c.beginLocked(w, err)
	c.mu.Unlock()

	c.emit(Change{Window: w, Status: StatusLoading})
	return req, true
}

// BeginJump rejects targets outside years 0000-9999 the same way BeginLoad
// does.
func (c *Controller) BeginJump(target time.Time) Request {
	c.mu.Lock()
	w, err := c.anchoredLocked(WindowJump, target)
	req := c.beginLocked(w, err)
	c.mu.Unlock()

	c.emit(Change{Window: w, Status: StatusLoading})
	return req
}

func (c *Controller) anchoredLocked(kind WindowKind, at time.Time) (Window, error) {
	if err := checkYear(at.In(c.cfg.Location)); err != nil {
		return Window{Kind: kind}, err
	}
	return anchoredWindow(kind, DayOf(at, c.cfg.Location), c.cfg.SpanDays, c.cfg.Location)
}

func (c *Controller) beginLocked(w Window, err error) Request {
	c.inFlight++
	c.status = StatusLoading
	c.err = nil

	if err != nil {
		c.log.Warn().Err(err).Str("window", w.Kind.String()).Msg("timeline window rejected")
		return Request{
			session: c.session,
			window:  w,
			err:     fmt.Errorf("begin %s window: %w", w.Kind, err),
		}
	}

	c.log.Debug().
		Str("window", w.Kind.String()).
		Str("first", w.First.String()).
		Str("last", w.Last.String()).
		Msg("timeline window requested")

	return Request{
		session: c.session,
		window:  w,
		filter: ListFilter{
			Start:      w.Start,
			End:        w.End,
			AccountID:  c.query.AccountID,
			CategoryID: c.query.CategoryID,
			Type:       c.query.Type,
			GroupID:    c.query.GroupID,
			SortBy:     SortByDate,
			SortOrder:  SortOrderDesc,
			PageSize:   c.cfg.PageSize,
		},
		dicts: c.dicts,
		loc:   c.cfg.Location,
	}
}

// Run reads the window from the source, enriches and buckets it. It does not
// touch controller state and may run on any goroutine.
func (c *Controller) Run(ctx context.Context, req Request) Result {
	if req.err != nil {
		return Result{session: req.session, window: req.window, err: req.err}
	}
	page, err := c.source.ListTransactions(ctx, req.filter)
	if err != nil {
		return Result{
			session: req.session,
			window:  req.window,
			err:     &FetchError{Window: req.window, Err: err},
		}
	}

	enriched, dangling := ProjectAll(page.Items, req.dicts)
	return Result{
		session:  req.session,
		window:   req.window,
		buckets:  GroupByDay(enriched, req.window.Days(req.loc), req.loc),
		dangling: dangling,
	}
}

// Apply commits a result to the cache. It returns false when the result
// belongs to a torn-down session and was discarded.
func (c *Controller) Apply(res Result) bool {
	c.mu.Lock()
	if c.closed || res.session != c.session {
		c.mu.Unlock()
		c.log.Debug().Str("window", res.window.String()).Msg("discarding stale timeline completion")
		return false
	}
	if c.inFlight > 0 {
		c.inFlight--
	}

	if res.err != nil {
		c.status = StatusError
		c.err = res.err
		c.mu.Unlock()

		c.log.Error().Err(res.err).Str("window", res.window.String()).Msg("timeline window failed")
		c.emit(Change{Window: res.window, Status: StatusError, Err: res.err})
		return true
	}

	switch res.window.Kind {
	case WindowInitial:
		c.cache.Replace(res.buckets)
		c.anchor = res.window.Anchor
		c.boundary = res.window.First
		c.loaded = true
	case WindowOlder:
		c.cache.Merge(res.buckets)
		c.boundary = res.window.First
	case WindowJump:
		c.cache.Merge(res.buckets)
		c.anchor = res.window.Anchor
		if !c.loaded || res.window.First < c.boundary {
			c.boundary = res.window.First
		}
		c.loaded = true
	}

	if c.inFlight > 0 {
		c.status = StatusLoading
	} else {
		c.status = StatusReady
	}
	status := c.status
	c.mu.Unlock()

	if res.dangling > 0 {
		c.log.Warn().
			Int("dangling", res.dangling).
			Str("window", res.window.String()).
			Msg("transactions reference unknown accounts or categories")
	}
	c.log.Debug().
		Str("window", res.window.String()).
		Int("buckets", len(res.buckets)).
		Msg("timeline window applied")
	c.emit(Change{Window: res.window, Status: status})
	return true
}

// Load fetches the initial window ending on anchor's day and replaces the
// cache with it.
func (c *Controller) Load(ctx context.Context, anchor time.Time) error {
	req := c.BeginLoad(anchor)
	res := c.Run(ctx, req)
	c.Apply(res)
	return res.err
}

// FetchOlder extends the cache backwards by one window. It is a no-op before
// the first successful load.
func (c *Controller) FetchOlder(ctx context.Context) error {
	req, ok := c.BeginOlder()
	if !ok {
		return nil
	}
	res := c.Run(ctx, req)
	c.Apply(res)
	return res.err
}

// Jump fetches a window anchored on target and merges it into the cache.
func (c *Controller) Jump(ctx context.Context, target time.Time) error {
	req := c.BeginJump(target)
	res := c.Run(ctx, req)
	c.Apply(res)
	return res.err
}

func (c *Controller) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight > 0
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Controller) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

func (c *Controller) Anchor() Day {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.anchor
}

// Boundary is the earliest day covered by fetched windows.
func (c *Controller) Boundary() (Day, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.boundary, c.loaded
}

func (c *Controller) Buckets() []Bucket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Buckets()
}

func (c *Controller) Has(d Day) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Has(d)
}

func (c *Controller) TransactionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.TransactionCount()
}

// OnChange registers fn for state change notifications.
func (c *Controller) OnChange(fn func(Change)) (remove func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Controller) emit(change Change) {
	c.mu.Lock()
	fns := make([]func(Change), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}
