package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/lachiem1/ledgerline/internal/syncer"
	"github.com/lachiem1/ledgerline/internal/timeline"
)

type windowResultMsg struct {
	session int
	result  timeline.Result
}

type dictionariesMsg struct {
	dicts timeline.Dictionaries
	err   error
}

type syncEventMsg struct {
	event syncer.Event
}

// timelineScreen is the state of one open timeline. A new session starts each
// time the screen is entered; results from older sessions are dropped.
type timelineScreen struct {
	tl        *timeline.Timeline
	feed      *timeline.LayoutFeed
	ribbon    *dateRibbon
	removeTop func()
	session   int

	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	keys     timelineKeyMap
	jump     textinput.Model

	jumpActive bool
	cmdActive  bool

	regions       []timeline.Region
	pendingScroll timeline.Day
	pendingAnchor time.Time
	waitingDicts  bool
	loading       string
	failed        timeline.Window
	hasFailed     bool
}

func newTimelineScreen() timelineScreen {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#F47A60"))

	jump := textinput.New()
	jump.Prompt = "jump to: "
	jump.Placeholder = "YYYY-MM-DD"
	jump.CharLimit = 10
	jump.Width = 12

	return timelineScreen{
		viewport: viewport.New(80, 10),
		spinner:  sp,
		help:     help.New(),
		keys:     newTimelineKeyMap(),
		jump:     jump,
	}
}

func (m model) enterTimeline(anchor time.Time) (tea.Model, tea.Cmd) {
	m.leaveTimeline()

	loc := m.opts.Location
	tl := timeline.New(m.opts.Source, timeline.Config{
		Location: loc,
		PageSize: m.opts.PageSize,
		Query:    m.query,
		Logger:   m.opts.Logger,
	})
	tl.Controller().SetDictionaries(m.dicts)

	feed := timeline.NewLayoutFeed()
	ribbon := &dateRibbon{focus: timeline.DayOf(anchor, loc)}
	tl.Observe(feed)

	m.tls.tl = tl
	m.tls.feed = feed
	m.tls.ribbon = ribbon
	m.tls.removeTop = tl.OnTopDateChange(ribbon.setFocus)
	m.tls.session++
	m.tls.regions = nil
	m.tls.pendingScroll = ""
	m.tls.hasFailed = false
	m.tls.jumpActive = false
	m.tls.cmdActive = false
	m.tls.viewport.SetContent("")
	m.tls.viewport.GotoTop()

	m.screen = screenTimeline
	m.cmd.Blur()
	m.cmd.SetValue("")
	m.clearCommandSuggestions()
	m.commandText = ""
	m.resizeTimeline()

	cmds := []tea.Cmd{m.tls.spinner.Tick}
	if m.opts.Sync != nil {
		if err := m.opts.Sync.EnterDictionaries(context.Background()); err != nil {
			m.log.Warn().Err(err).Msg("enter dictionaries sync")
		}
	}

	if !m.dictsLoaded && m.opts.LoadDictionaries != nil {
		m.tls.waitingDicts = true
		m.tls.pendingAnchor = anchor
		m.tls.loading = "loading accounts and categories"
		cmds = append(cmds, loadDictionariesCmd(m.opts.LoadDictionaries))
		return m, tea.Batch(cmds...)
	}

	req := tl.Controller().BeginLoad(anchor)
	cmds = append(cmds, m.startWindow(req))
	return m, tea.Batch(cmds...)
}

// leaveTimeline tears the open timeline down and returns to the home screen.
func (m *model) leaveTimeline() {
	if m.tls.tl == nil {
		return
	}
	if m.tls.removeTop != nil {
		m.tls.removeTop()
		m.tls.removeTop = nil
	}
	m.tls.tl.Close()
	m.tls.tl = nil
	m.tls.feed = nil
	m.tls.regions = nil
	m.tls.waitingDicts = false
	m.tls.jumpActive = false
	m.tls.cmdActive = false
	m.tls.jump.Blur()
	if m.opts.Sync != nil {
		m.opts.Sync.LeaveView()
	}

	m.screen = screenHome
	m.cmd.SetValue("")
	m.cmd.Focus()
}

// startWindow records the request as in flight and returns the command that
// runs it off the event loop.
func (m *model) startWindow(req timeline.Request) tea.Cmd {
	m.tls.loading = "loading " + req.Window().String()
	m.tls.keys.setLoading(true)
	return runWindowCmd(m.tls.tl.Controller(), m.tls.session, req, nil)
}

func runWindowCmd(ctrl *timeline.Controller, session int, req timeline.Request, before func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if before != nil {
			// A failed invalidate leaves stale windows in place; the read still runs.
			_ = before(ctx)
		}
		return windowResultMsg{session: session, result: ctrl.Run(ctx, req)}
	}
}

func loadDictionariesCmd(load func(context.Context) (timeline.Dictionaries, error)) tea.Cmd {
	return func() tea.Msg {
		dicts, err := load(context.Background())
		return dictionariesMsg{dicts: dicts, err: err}
	}
}

func waitSyncEventCmd(ch <-chan syncer.Event) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return nil
		}
		return syncEventMsg{event: evt}
	}
}

func (m model) handleWindowResult(msg windowResultMsg) (tea.Model, tea.Cmd) {
	if m.tls.tl == nil || msg.session != m.tls.session {
		return m, nil
	}
	ctrl := m.tls.tl.Controller()
	if !ctrl.Apply(msg.result) {
		return m, nil
	}
	m.tls.keys.setLoading(ctrl.IsLoading())

	if err := msg.result.Err(); err != nil {
		m.tls.failed = msg.result.Window()
		m.tls.hasFailed = true
		m.tls.pendingScroll = ""
		m.log.Warn().Err(err).Msg("timeline window failed")
	} else {
		m.tls.hasFailed = false
	}

	m.rebuildTimeline()
	if !m.tls.pendingScroll.IsZero() {
		m.scrollToDay(m.tls.pendingScroll)
		m.tls.pendingScroll = ""
	}
	m.publishLayout()
	return m, nil
}

func (m model) handleDictionaries(msg dictionariesMsg) (tea.Model, tea.Cmd) {
	wasEmpty := len(m.dicts.Accounts) == 0 && len(m.dicts.Categories) == 0
	if msg.err != nil {
		m.log.Warn().Err(msg.err).Msg("load dictionaries")
	} else {
		m.dicts = msg.dicts
		m.dictsLoaded = true
	}

	if m.tls.tl == nil {
		return m, nil
	}
	ctrl := m.tls.tl.Controller()
	ctrl.SetDictionaries(m.dicts)

	if m.tls.waitingDicts {
		m.tls.waitingDicts = false
		cmd := m.startWindow(ctrl.BeginLoad(m.tls.pendingAnchor))
		return m, cmd
	}

	// The first snapshot after an empty store: reload so rows pick up names.
	hasNow := len(m.dicts.Accounts) > 0 || len(m.dicts.Categories) > 0
	if msg.err == nil && wasEmpty && hasNow && !ctrl.IsLoading() {
		anchor := m.opts.Now()
		if a := ctrl.Anchor(); !a.IsZero() {
			anchor = a.Start(m.opts.Location)
		}
		ctrl.Reset(m.query)
		m.rebuildTimeline()
		m.publishLayout()
		cmd := m.startWindow(ctrl.BeginLoad(anchor))
		return m, cmd
	}
	return m, nil
}

func (m model) handleSyncEvent(msg syncEventMsg) (tea.Model, tea.Cmd) {
	evt := msg.event
	next := waitSyncEventCmd(m.opts.SyncEvents)

	switch evt.Type {
	case syncer.EventSyncStarted:
		m.syncStatus = "syncing " + evt.Collection + "..."
	case syncer.EventSyncOK:
		m.syncStatus = evt.Collection + " synced at " + evt.At.In(m.opts.Location).Format("15:04:05")
		if m.opts.LoadDictionaries != nil {
			return m, tea.Batch(next, loadDictionariesCmd(m.opts.LoadDictionaries))
		}
	case syncer.EventSyncFailed:
		m.syncStatus = fmt.Sprintf("%s sync failed: %v", evt.Collection, evt.Err)
		if evt.RetryIn > 0 {
			m.syncStatus += fmt.Sprintf(" (retry in %s)", evt.RetryIn)
		}
	}
	return m, next
}

func (m model) updateTimelineKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.tls.jumpActive {
		switch msg.String() {
		case "ctrl+c":
			return m.quit()
		case "esc":
			m.tls.jumpActive = false
			m.tls.jump.Blur()
			m.tls.jump.SetValue("")
			return m, nil
		case "enter":
			value := strings.TrimSpace(m.tls.jump.Value())
			m.tls.jumpActive = false
			m.tls.jump.Blur()
			m.tls.jump.SetValue("")
			day, err := timeline.ParseDay(value)
			if err != nil {
				return m.withCommandFeedback("invalid date: " + value)
			}
			return m.jumpTo(day)
		}
		var cmd tea.Cmd
		m.tls.jump, cmd = m.tls.jump.Update(msg)
		return m, cmd
	}

	if m.tls.cmdActive {
		return m.updateCommandLine(msg)
	}

	keys := m.tls.keys
	switch {
	case key.Matches(msg, keys.Quit):
		return m.quit()
	case key.Matches(msg, keys.Back):
		m.leaveTimeline()
		return m, nil
	case key.Matches(msg, keys.Help):
		m.tls.help.ShowAll = !m.tls.help.ShowAll
		m.resizeTimeline()
		return m, nil
	case key.Matches(msg, keys.Command):
		m.tls.cmdActive = true
		m.cmd.SetValue("/")
		m.cmd.CursorEnd()
		m.refreshCommandSuggestions()
		cmd := m.cmd.Focus()
		return m, cmd
	case key.Matches(msg, keys.Older):
		return m.loadOlder()
	case key.Matches(msg, keys.Jump):
		m.tls.jumpActive = true
		m.tls.jump.SetValue("")
		cmd := m.tls.jump.Focus()
		return m, cmd
	case key.Matches(msg, keys.Today):
		return m.jumpTo(timeline.DayOf(m.opts.Now(), m.opts.Location))
	case key.Matches(msg, keys.Retry):
		return m.retryTimeline()
	}
	return m.updateTimelineViewport(msg)
}

func (m model) updateTimelineViewport(msg tea.Msg) (tea.Model, tea.Cmd) {
	before := m.tls.viewport.YOffset
	var cmd tea.Cmd
	m.tls.viewport, cmd = m.tls.viewport.Update(msg)
	if m.tls.viewport.YOffset != before {
		m.publishLayout()
	}
	return m, cmd
}

func (m model) busy() bool {
	return m.tls.tl == nil || m.tls.waitingDicts || m.tls.tl.Controller().IsLoading()
}

func (m model) loadOlder() (tea.Model, tea.Cmd) {
	if m.busy() {
		return m.withCommandFeedback("still loading, try again in a moment")
	}
	req, ok := m.tls.tl.Controller().BeginOlder()
	if !ok {
		return m.withCommandFeedback("nothing loaded yet")
	}
	cmd := m.startWindow(req)
	return m, cmd
}

// jumpTo scrolls to day when its bucket is rendered, and otherwise fetches
// the window ending on day and scrolls once it lands.
func (m model) jumpTo(day timeline.Day) (tea.Model, tea.Cmd) {
	if m.tls.tl == nil {
		return m.enterTimeline(day.Start(m.opts.Location))
	}
	if m.busy() {
		return m.withCommandFeedback("still loading, try again in a moment")
	}

	req, ok := m.tls.tl.Refresher().Plan(day.Start(m.opts.Location))
	if !ok {
		m.scrollToDay(day)
		m.publishLayout()
		return m, nil
	}
	m.tls.pendingScroll = day
	cmd := m.startWindow(req)
	return m, cmd
}

// retryTimeline re-issues the failed window, or refreshes from today when
// nothing failed.
func (m model) retryTimeline() (tea.Model, tea.Cmd) {
	if m.busy() {
		return m, nil
	}
	ctrl := m.tls.tl.Controller()
	if ctrl.Status() != timeline.StatusError || !m.tls.hasFailed {
		return m.refreshTimeline()
	}

	w := m.tls.failed
	if w.Kind != timeline.WindowOlder && w.Anchor.Start(m.opts.Location).IsZero() {
		return m.refreshTimeline()
	}
	switch w.Kind {
	case timeline.WindowOlder:
		if req, ok := ctrl.BeginOlder(); ok {
			cmd := m.startWindow(req)
			return m, cmd
		}
		cmd := m.startWindow(ctrl.BeginLoad(m.opts.Now()))
		return m, cmd
	case timeline.WindowJump:
		m.tls.pendingScroll = w.Anchor
		cmd := m.startWindow(ctrl.BeginJump(w.Anchor.Start(m.opts.Location)))
		return m, cmd
	default:
		cmd := m.startWindow(ctrl.BeginLoad(w.Anchor.Start(m.opts.Location)))
		return m, cmd
	}
}

func (m model) refreshTimeline() (tea.Model, tea.Cmd) {
	if m.busy() {
		return m, nil
	}
	ctrl := m.tls.tl.Controller()
	ctrl.Reset(m.query)
	m.tls.hasFailed = false
	m.rebuildTimeline()
	m.tls.viewport.GotoTop()
	m.publishLayout()

	if m.opts.Sync != nil {
		if err := m.opts.Sync.RefreshDictionaries(); err != nil {
			m.log.Debug().Err(err).Msg("refresh dictionaries")
		}
	}

	req := ctrl.BeginLoad(m.opts.Now())
	m.tls.loading = "refreshing " + req.Window().String()
	m.tls.keys.setLoading(true)
	return m, runWindowCmd(ctrl, m.tls.session, req, m.opts.Invalidate)
}

// applyQuery switches the timeline to q. An open timeline gets a fresh cache.
func (m model) applyQuery(q timeline.Query) (tea.Model, tea.Cmd) {
	m.query = q
	var cmds []tea.Cmd
	if m.opts.DB != nil {
		cmds = append(cmds, savePrefsCmd(m.opts.DB, q))
	}

	if m.tls.tl != nil && !m.tls.waitingDicts {
		ctrl := m.tls.tl.Controller()
		ctrl.Reset(q)
		m.tls.hasFailed = false
		m.tls.pendingScroll = ""
		m.rebuildTimeline()
		m.tls.viewport.GotoTop()
		m.publishLayout()
		cmds = append(cmds, m.startWindow(ctrl.BeginLoad(m.opts.Now())))
	}

	next, feedback := m.withCommandFeedback("filter: " + describeQuery(q, m.dicts))
	cmds = append(cmds, feedback)
	return next, tea.Batch(cmds...)
}

func (m *model) resizeTimeline() {
	w, h := m.layoutSize()
	helpHeight := lipgloss.Height(m.tls.help.View(m.tls.keys))
	// title, ribbon (2), gap, status, prompt row, help
	chrome := 6 + helpHeight
	m.tls.viewport.Width = w
	m.tls.viewport.Height = max(3, h-chrome)
	m.tls.help.Width = w
}

func (m *model) rebuildTimeline() {
	if m.tls.tl == nil {
		return
	}
	content, regions := renderBuckets(m.tls.tl.Controller().Buckets(), m.tls.viewport.Width, m.opts.Location)
	m.tls.viewport.SetContent(content)
	m.tls.regions = regions
}

// publishLayout hands the current bucket regions and scroll offset to the
// tracker, which moves the ribbon focus.
func (m *model) publishLayout() {
	if m.tls.feed == nil {
		return
	}
	regions := make([]timeline.Region, len(m.tls.regions))
	copy(regions, m.tls.regions)
	m.tls.feed.Publish(timeline.Layout{Regions: regions, Anchor: m.tls.viewport.YOffset})
}

func (m *model) scrollToDay(day timeline.Day) bool {
	for _, r := range m.tls.regions {
		if r.Day == day {
			m.tls.viewport.SetYOffset(r.Top)
			return true
		}
	}
	return false
}

func (m model) renderTimelineScreen(width int) string {
	title := lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")).Bold(true).Render("timeline")
	filter := lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")).Render("  " + describeQuery(m.query, m.dicts))
	header := title + filter

	focus := timeline.Day("")
	if m.tls.ribbon != nil {
		focus = m.tls.ribbon.focus
	}
	ribbon := renderRibbon(focus, width)
	if ribbon == "" {
		ribbon = "\n"
	}

	prompt := ""
	switch {
	case m.tls.jumpActive:
		prompt = m.tls.jump.View()
	case m.tls.cmdActive:
		prompt = m.renderCommandBox(min(width, 80))
	case strings.TrimSpace(m.commandText) != "":
		prompt = lipgloss.NewStyle().Foreground(lipgloss.Color("#D4CDE9")).Render(m.commandText)
	}

	lines := []string{
		header,
		ribbon,
		"",
		m.tls.viewport.View(),
		m.renderTimelineStatus(),
		prompt,
		m.tls.help.View(m.tls.keys),
	}
	return strings.Join(lines, "\n")
}

func (m model) renderTimelineStatus() string {
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	if m.tls.tl == nil {
		return ""
	}
	ctrl := m.tls.tl.Controller()

	switch {
	case m.tls.waitingDicts || ctrl.IsLoading():
		return m.tls.spinner.View() + " " + muted.Render(m.tls.loading)
	case ctrl.Status() == timeline.StatusError:
		msg := "fetch failed"
		if err := ctrl.Err(); err != nil {
			msg = err.Error()
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#F15B5B")).Bold(true).Render("error: "+msg) +
			muted.Render("  (r to retry)")
	case ctrl.Status() == timeline.StatusReady && ctrl.TransactionCount() == 0:
		return muted.Render("no transactions in loaded range")
	case ctrl.Status() == timeline.StatusReady:
		days := len(ctrl.Buckets())
		boundary, _ := ctrl.Boundary()
		return muted.Render(fmt.Sprintf("%d transactions · %d days · back to %s", ctrl.TransactionCount(), days, boundary))
	default:
		return ""
	}
}

var (
	dayHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")).Bold(true)
	dayTotalStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	emptyDayStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")).Italic(true)
	timeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	incomeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5CCB76")).Bold(true)
	expenseStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	danglingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F15B5B"))
)

// renderBuckets lays the buckets out top to bottom. Each region covers the
// day header, its rows and the blank separator below them.
func renderBuckets(buckets []timeline.Bucket, width int, loc *time.Location) (string, []timeline.Region) {
	lines := make([]string, 0, len(buckets)*4)
	regions := make([]timeline.Region, 0, len(buckets))

	for _, b := range buckets {
		top := len(lines)
		lines = append(lines, renderDayHeader(b, width))
		if len(b.Transactions) == 0 {
			lines = append(lines, emptyDayStyle.Render("  no transactions"))
		}
		for _, e := range b.Transactions {
			lines = append(lines, renderTransactionRow(e, width, loc))
		}
		lines = append(lines, "")
		regions = append(regions, timeline.Region{Day: b.Day, Top: top, Height: len(lines) - top})
	}
	return strings.Join(lines, "\n"), regions
}

func renderDayHeader(b timeline.Bucket, width int) string {
	label := string(b.Day)
	if t := b.Day.Start(time.UTC); !t.IsZero() {
		label = t.Format("Mon 02 Jan 2006")
	}

	total := decimal.Zero
	for _, e := range b.Transactions {
		total = total.Add(e.Transaction.Amount)
	}
	summary := fmt.Sprintf("%d · %s", len(b.Transactions), formatAmount(total, ""))
	if len(b.Transactions) == 0 {
		summary = ""
	}

	gap := max(2, width-lipgloss.Width(label)-lipgloss.Width(summary)-1)
	return dayHeaderStyle.Render(label) + strings.Repeat(" ", gap) + dayTotalStyle.Render(summary)
}

func renderTransactionRow(e timeline.Enriched, width int, loc *time.Location) string {
	tx := e.Transaction
	clock := timeStyle.Render(tx.CreatedAt.In(loc).Format("15:04"))

	category := "uncategorised"
	categoryStyle := timeStyle
	switch {
	case e.Category != nil:
		category = e.Category.Name
	case tx.CategoryID != "":
		category = "unknown category"
		categoryStyle = danglingStyle
	}
	account := ""
	if e.Account != nil {
		account = e.Account.DisplayName
	}

	amount := formatAmount(tx.Amount, tx.CurrencyCode)
	amountStyle := expenseStyle
	if tx.Amount.IsPositive() {
		amountStyle = incomeStyle
	}

	// time(5) + gaps(8) + category(20) + account(12) + amount(12)
	merchantWidth := max(12, width-59)
	row := fmt.Sprintf("  %s  %s  %s  %s  %s",
		clock,
		padRight(truncate(tx.DisplayText(), merchantWidth), merchantWidth),
		categoryStyle.Render(padRight(truncate(category, 20), 20)),
		timeStyle.Render(padRight(truncate(account, 12), 12)),
		amountStyle.Render(padLeft(amount, 12)),
	)
	return row
}

func formatAmount(d decimal.Decimal, currency string) string {
	sign := ""
	switch {
	case d.IsNegative():
		sign = "-"
	case d.IsPositive():
		sign = "+"
	}
	out := sign + "$" + d.Abs().StringFixed(2)
	if currency != "" && currency != "AUD" {
		out += " " + currency
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func padRight(s string, n int) string {
	if w := lipgloss.Width(s); w < n {
		return s + strings.Repeat(" ", n-w)
	}
	return s
}

func padLeft(s string, n int) string {
	if w := lipgloss.Width(s); w < n {
		return strings.Repeat(" ", n-w) + s
	}
	return s
}
