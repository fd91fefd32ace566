package tui

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/lachiem1/ledgerline/internal/auth"
	"github.com/lachiem1/ledgerline/internal/syncer"
	"github.com/lachiem1/ledgerline/internal/timeline"
	"github.com/lachiem1/ledgerline/internal/upapi"
)

type connectionState int

const (
	stateChecking connectionState = iota
	stateConnected
	stateDisconnected
	stateDemo
)

type checkConnectionMsg struct {
	connected bool
	err       error
}

type savePATMsg struct {
	err error
}

type deletePATMsg struct {
	err error
}

type wipeDBMsg struct {
	path string
	err  error
}

type clearCommandTextMsg struct {
	id int
}

type commandSpec struct {
	name        string
	args        string
	description string
}

type authDialogMode int

const (
	authDialogNone authDialogMode = iota
	authDialogConnect
	authDialogDisconnect
)

type screenMode int

const (
	screenHome screenMode = iota
	screenTimeline
)

// DictionarySync keeps the account and category snapshots fresh while the
// timeline is open.
type DictionarySync interface {
	EnterDictionaries(ctx context.Context) error
	RefreshDictionaries() error
	LeaveView()
}

type Options struct {
	Source           timeline.Source
	LoadDictionaries func(context.Context) (timeline.Dictionaries, error)
	// DB persists the last-used filter. Optional.
	DB         *sql.DB
	Sync       DictionarySync
	SyncEvents <-chan syncer.Event
	// Invalidate drops window sync state so a refresh reads from the API.
	Invalidate func(context.Context) error
	// WipeDB closes and deletes the local database.
	WipeDB   func() (path string, err error)
	Location *time.Location
	PageSize int
	Now      func() time.Time
	Logger   *zerolog.Logger
	// Demo hides the Up connection status and skips the startup ping.
	Demo bool
}

type model struct {
	opts Options
	log  zerolog.Logger

	width  int
	height int

	cmd textinput.Model
	pat textinput.Model

	status                  connectionState
	commandText             string
	commandTextID           int
	commandSuggestions      []commandSpec
	commandSuggestionIndex  int
	commandSuggestionOffset int

	showHelpOverlay bool
	authDialog      authDialogMode
	connectHint     string
	screen          screenMode

	query       timeline.Query
	dicts       timeline.Dictionaries
	dictsLoaded bool
	syncStatus  string
	dbWiped     bool

	tls timelineScreen

	quitting bool
}

func New(opts Options) tea.Model {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("component", "tui").Logger()
	}

	cmd := textinput.New()
	cmd.Prompt = "> "
	cmd.Placeholder = "/help"
	cmd.Width = 72
	cmd.Focus()

	pat := textinput.New()
	pat.Prompt = "PAT: "
	pat.Placeholder = "up:..."
	pat.EchoMode = textinput.EchoPassword
	pat.EchoCharacter = '•'

	status := stateChecking
	if opts.Demo {
		status = stateDemo
	}

	return model{
		opts:       opts,
		log:        log,
		cmd:        cmd,
		pat:        pat,
		status:     status,
		authDialog: authDialogNone,
		screen:     screenHome,
		tls:        newTimelineScreen(),
	}
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if !m.opts.Demo {
		cmds = append(cmds, checkConnectionCmd)
	}
	if m.opts.DB != nil {
		cmds = append(cmds, loadPrefsCmd(m.opts.DB))
	}
	if m.opts.SyncEvents != nil {
		cmds = append(cmds, waitSyncEventCmd(m.opts.SyncEvents))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.cmd.Width = max(40, msg.Width-36)
		m.pat.Width = max(24, msg.Width-40)
		if m.screen == screenTimeline {
			m.resizeTimeline()
			m.rebuildTimeline()
			m.publishLayout()
		}
		return m, nil

	case checkConnectionMsg:
		if m.opts.Demo {
			return m, nil
		}
		if msg.connected {
			m.status = stateConnected
		} else {
			m.status = stateDisconnected
			if msg.err != nil {
				m.log.Debug().Err(msg.err).Msg("connection check failed")
			}
		}
		return m, nil

	case savePATMsg:
		m.authDialog = authDialogNone
		m.pat.SetValue("")
		m.pat.Blur()
		if m.screen == screenHome {
			m.cmd.Focus()
		}
		if msg.err != nil {
			return m.withCommandFeedback("failed to save PAT: " + msg.err.Error())
		}
		next, cmd := m.withCommandFeedback("PAT saved to keychain. Restart ledgerline to sync with it.")
		return next, tea.Batch(cmd, checkConnectionCmd)

	case deletePATMsg:
		m.authDialog = authDialogNone
		m.pat.SetValue("")
		m.pat.Blur()
		if m.screen == screenHome {
			m.cmd.Focus()
		}
		if msg.err != nil {
			return m.withCommandFeedback("failed to remove PAT: " + msg.err.Error())
		}
		if !m.opts.Demo {
			m.status = stateDisconnected
		}
		return m.withCommandFeedback("PAT removed from keychain.")

	case wipeDBMsg:
		if msg.err != nil {
			return m.withCommandFeedback("db wipe failed: " + msg.err.Error())
		}
		m.dbWiped = true
		return m.withCommandFeedback("local database wiped: " + msg.path + ". Restart ledgerline to resync.")

	case clearCommandTextMsg:
		if msg.id == m.commandTextID {
			m.commandText = ""
		}
		return m, nil

	case prefsLoadedMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("load query prefs")
			return m, nil
		}
		if m.screen == screenHome {
			m.query = msg.query
		}
		return m, nil

	case prefsSavedMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("save query prefs")
			return m.withCommandFeedback("failed to save filter: " + msg.err.Error())
		}
		return m, nil

	case dictionariesMsg:
		return m.handleDictionaries(msg)

	case windowResultMsg:
		return m.handleWindowResult(msg)

	case syncEventMsg:
		return m.handleSyncEvent(msg)

	case spinner.TickMsg:
		if m.screen != screenTimeline {
			return m, nil
		}
		var cmd tea.Cmd
		m.tls.spinner, cmd = m.tls.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		if m.screen == screenTimeline {
			return m.updateTimelineViewport(msg)
		}
		return m, nil

	case tea.KeyMsg:
		if m.showHelpOverlay {
			switch msg.String() {
			case "esc":
				m.showHelpOverlay = false
				return m, nil
			case "ctrl+c", "q":
				return m.quit()
			}
			return m, nil
		}

		if m.authDialog != authDialogNone {
			switch msg.String() {
			case "esc":
				m.authDialog = authDialogNone
				m.pat.Blur()
				if m.screen == screenHome {
					m.cmd.Focus()
				}
				return m, nil
			case "enter":
				if m.authDialog == authDialogConnect {
					pat := strings.TrimSpace(m.pat.Value())
					if pat == "" {
						return m, nil
					}
					return m, savePATCmd(pat)
				}
				return m, deletePATCmd
			}
			if m.authDialog == authDialogDisconnect {
				return m, nil
			}
			var cmd tea.Cmd
			m.pat, cmd = m.pat.Update(msg)
			return m, cmd
		}

		if m.screen == screenTimeline {
			return m.updateTimelineKeys(msg)
		}
		return m.updateCommandLine(msg)
	}

	var cmd tea.Cmd
	switch {
	case m.authDialog == authDialogConnect:
		m.pat, cmd = m.pat.Update(msg)
	case m.screen == screenTimeline && m.tls.jumpActive:
		m.tls.jump, cmd = m.tls.jump.Update(msg)
	case m.screen == screenHome || m.tls.cmdActive:
		m.cmd, cmd = m.cmd.Update(msg)
	}
	return m, cmd
}

// updateCommandLine handles keys while the slash-command input has focus.
func (m model) updateCommandLine(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()
	case "esc":
		m.cmd.SetValue("")
		m.clearCommandSuggestions()
		if m.screen == screenTimeline {
			m.tls.cmdActive = false
			m.cmd.Blur()
		}
		return m, nil
	case "tab", "down":
		if m.shouldShowCommandSuggestions() {
			m.commandSuggestionIndex = (m.commandSuggestionIndex + 1) % len(m.commandSuggestions)
			m.adjustSuggestionWindow(2)
			return m, nil
		}
	case "shift+tab", "up":
		if m.shouldShowCommandSuggestions() {
			n := len(m.commandSuggestions)
			m.commandSuggestionIndex = (m.commandSuggestionIndex - 1 + n) % n
			m.adjustSuggestionWindow(2)
			return m, nil
		}
	case "enter":
		input := strings.TrimSpace(m.cmd.Value())
		if m.shouldShowCommandSuggestions() && !strings.Contains(input, " ") {
			spec := m.commandSuggestions[m.commandSuggestionIndex]
			if spec.args != "" && input != spec.name {
				m.cmd.SetValue(spec.name + " ")
				m.cmd.CursorEnd()
				m.clearCommandSuggestions()
				return m, nil
			}
			input = spec.name
		}
		if m.screen == screenTimeline {
			m.tls.cmdActive = false
			m.cmd.Blur()
		}
		return m.runSlashCommand(input)
	}

	if m.commandText != "" {
		switch msg.Type {
		case tea.KeyRunes, tea.KeySpace, tea.KeyBackspace, tea.KeyDelete:
			m.commandText = ""
		}
	}

	var cmd tea.Cmd
	m.cmd, cmd = m.cmd.Update(msg)
	m.refreshCommandSuggestions()
	return m, cmd
}

func (m model) runSlashCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return m, nil
	}
	name := strings.ToLower(fields[0])
	args := fields[1:]

	switch name {
	case "/help":
		m.showHelpOverlay = true
		m.commandText = ""
		m.cmd.SetValue("")
		m.clearCommandSuggestions()
		return m, nil
	case "/timeline":
		if m.dbWiped {
			return m.withCommandFeedback("local database was wiped; restart ledgerline first")
		}
		if m.screen == screenTimeline {
			m.cmd.SetValue("")
			return m, nil
		}
		return m.enterTimeline(m.opts.Now())
	case "/jump":
		if len(args) != 1 {
			return m.withCommandFeedback("usage: /jump YYYY-MM-DD")
		}
		day, err := timeline.ParseDay(args[0])
		if err != nil {
			return m.withCommandFeedback("invalid date: " + args[0])
		}
		m.cmd.SetValue("")
		m.clearCommandSuggestions()
		if m.tls.tl == nil {
			return m.enterTimeline(day.Start(m.opts.Location))
		}
		return m.jumpTo(day)
	case "/filter":
		q, err := parseFilterArgs(args, m.query, m.dicts)
		if err != nil {
			return m.withCommandFeedback(err.Error())
		}
		return m.applyQuery(q)
	case "/older":
		if m.tls.tl == nil {
			return m.withCommandFeedback("open /timeline first")
		}
		m.cmd.SetValue("")
		return m.loadOlder()
	case "/refresh":
		if m.tls.tl == nil {
			return m.withCommandFeedback("open /timeline first")
		}
		m.cmd.SetValue("")
		return m.refreshTimeline()
	case "/ping":
		if m.opts.Demo {
			return m.withCommandFeedback("demo mode does not talk to Up")
		}
		next, cmd := m.withCommandFeedback("checking connection...")
		return next, tea.Batch(cmd, checkConnectionCmd)
	case "/db-wipe", "/db":
		if m.opts.WipeDB == nil {
			return m.withCommandFeedback("no local database in this mode")
		}
		m.leaveTimeline()
		next, cmd := m.withCommandFeedback("wiping local database...")
		return next, tea.Batch(cmd, wipeDBCmd(m.opts.WipeDB))
	case "/disconnect":
		m.authDialog = authDialogDisconnect
		m.pat.SetValue("")
		m.pat.Blur()
		m.cmd.Blur()
		m.cmd.SetValue("")
		m.clearCommandSuggestions()
		return m, nil
	case "/connect":
		m.connectHint = "Enter your PAT to save it to keychain."
		if auth.HasStoredPAT() {
			m.connectHint = "A PAT already exists. Enter a new PAT to replace it."
		}
		m.authDialog = authDialogConnect
		m.pat.Focus()
		m.cmd.Blur()
		m.cmd.SetValue("")
		m.clearCommandSuggestions()
		return m, nil
	case "/quit", "/exit":
		return m.quit()
	default:
		return m.withCommandFeedback(fmt.Sprintf("Unknown command: %s", fields[0]))
	}
}

func (m model) withCommandFeedback(text string) (tea.Model, tea.Cmd) {
	m.commandText = text
	m.commandTextID++
	m.cmd.SetValue("")
	m.clearCommandSuggestions()
	id := m.commandTextID
	return m, tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return clearCommandTextMsg{id: id}
	})
}

func (m model) quit() (tea.Model, tea.Cmd) {
	m.leaveTimeline()
	m.quitting = true
	return m, tea.Quit
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	frame, contentStyle := frameStyles(m.width, m.height)
	layoutWidth, layoutHeight := m.layoutSize()

	var body string
	if m.screen == screenTimeline {
		body = m.renderTimelineScreen(layoutWidth)
	} else {
		body = m.renderHomeScreen(layoutWidth, layoutHeight)
	}

	if m.showHelpOverlay {
		centered := lipgloss.Place(layoutWidth, layoutHeight, lipgloss.Center, lipgloss.Center, renderHelpOverlay(layoutWidth))
		return frame.Render(contentStyle.Render(centered))
	}
	if m.authDialog != authDialogNone {
		centered := lipgloss.Place(layoutWidth, layoutHeight, lipgloss.Center, lipgloss.Center, m.renderAuthDialog(layoutWidth))
		return frame.Render(contentStyle.Render(centered))
	}
	return frame.Render(contentStyle.Render(body))
}

func frameStyles(width, height int) (lipgloss.Style, lipgloss.Style) {
	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#F47A60")).
		Padding(1, 1)
	// Keep top breathing room, but tighten bottom so the CLI sits one row above the frame border.
	contentStyle := lipgloss.NewStyle().Padding(1, 1, 0, 1)
	if width > 0 {
		frame = frame.Width(max(1, width-frame.GetHorizontalBorderSize()))
	}
	if height > 0 {
		frame = frame.Height(max(1, height-frame.GetVerticalBorderSize()))
	}
	return frame, contentStyle
}

// layoutSize is the area available to screen content inside the frame.
func (m model) layoutSize() (int, int) {
	frame, contentStyle := frameStyles(m.width, m.height)
	w := max(1, m.width-frame.GetHorizontalFrameSize()-contentStyle.GetHorizontalFrameSize())
	h := max(1, m.height-frame.GetVerticalFrameSize()-contentStyle.GetVerticalFrameSize())
	return w, h
}

func (m model) renderHomeScreen(layoutWidth, layoutHeight int) string {
	header := renderBlockTitle(layoutWidth)
	if m.width > 0 {
		header = lipgloss.PlaceHorizontal(layoutWidth, lipgloss.Center, header)
	}

	label := lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")).Bold(true)
	value := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))

	statusValue := lipgloss.NewStyle().Foreground(lipgloss.Color("#F15B5B")).Bold(true).Render("not connected")
	switch m.status {
	case stateConnected:
		statusValue = lipgloss.NewStyle().Foreground(lipgloss.Color("#5CCB76")).Bold(true).Render("connected")
	case stateChecking:
		statusValue = muted.Render("checking...")
	case stateDemo:
		statusValue = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD54A")).Bold(true).Render("demo data")
	}

	dictLine := muted.Render("not loaded")
	if m.dictsLoaded {
		dictLine = value.Render(fmt.Sprintf("%d accounts, %d categories", len(m.dicts.Accounts), len(m.dicts.Categories)))
	}
	syncLine := muted.Render("idle")
	if m.syncStatus != "" {
		syncLine = value.Render(m.syncStatus)
	}

	infoLines := []string{
		label.Render("status: ") + statusValue,
		label.Render("filter: ") + value.Render(describeQuery(m.query, m.dicts)),
		label.Render("dictionaries: ") + dictLine,
		label.Render("sync: ") + syncLine,
		"",
		muted.Render("/timeline to open the feed, /help for commands"),
	}
	panelWidth := min(max(40, layoutWidth-8), 72)
	infoPanel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#F47A60")).
		Padding(0, 1).
		Width(panelWidth).
		Render(strings.Join(infoLines, "\n"))
	infoPanel = lipgloss.PlaceHorizontal(layoutWidth, lipgloss.Center, infoPanel)

	messageArea := ""
	if strings.TrimSpace(m.commandText) != "" {
		messageArea = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6CBFE6")).
			Padding(0, 1).
			Foreground(lipgloss.Color("#D4CDE9")).
			Width(panelWidth).
			Render(m.commandText)
		messageArea = lipgloss.PlaceHorizontal(layoutWidth, lipgloss.Center, messageArea)
	}

	cmdBox := lipgloss.PlaceHorizontal(layoutWidth, lipgloss.Center, m.renderCommandBox(panelWidth+2))

	topLines := []string{header, "", infoPanel}
	if messageArea != "" {
		topLines = append(topLines, "", messageArea)
	}
	top := strings.Join(topLines, "\n")

	// The gap above the CLI absorbs spare height so the input hugs the bottom.
	gap := 1
	if m.height > 0 {
		gap = max(1, layoutHeight-lipgloss.Height(top)-lipgloss.Height(cmdBox))
	}
	return top + strings.Repeat("\n", gap) + cmdBox
}

func (m model) renderCommandBox(outerWidth int) string {
	innerWidth := max(8, outerWidth-4)
	input := m.cmd
	input.Width = max(6, innerWidth-2)

	lines := []string{}
	if m.shouldShowCommandSuggestions() {
		lines = append(lines, renderCommandSuggestionRows(innerWidth, m.commandSuggestions, m.commandSuggestionIndex, m.commandSuggestionOffset))
	}
	lines = append(lines, lipgloss.NewStyle().Width(innerWidth).Render(input.View()))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#6CBFE6")).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func checkConnectionCmd() tea.Msg {
	pat, err := auth.LoadPAT()
	if err != nil {
		return checkConnectionMsg{connected: false, err: err}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = upapi.New(pat).Ping(ctx)
	return checkConnectionMsg{connected: err == nil, err: err}
}

func savePATCmd(pat string) tea.Cmd {
	return func() tea.Msg {
		return savePATMsg{err: auth.SavePAT(pat)}
	}
}

func deletePATCmd() tea.Msg {
	return deletePATMsg{err: auth.RemovePAT()}
}

func wipeDBCmd(wipe func() (string, error)) tea.Cmd {
	return func() tea.Msg {
		path, err := wipe()
		return wipeDBMsg{path: path, err: err}
	}
}

func commandCatalog() []commandSpec {
	return []commandSpec{
		{name: "/help", description: "show command help overlay"},
		{name: "/timeline", description: "open the transaction timeline"},
		{name: "/jump", args: "YYYY-MM-DD", description: "jump the timeline to a date"},
		{name: "/filter", args: "key=value...", description: "account= category= type= group=, or clear"},
		{name: "/older", description: "load the next older window"},
		{name: "/refresh", description: "drop synced windows and reload from today"},
		{name: "/ping", description: "check Up API connectivity"},
		{name: "/connect", description: "open the PAT connect prompt"},
		{name: "/disconnect", description: "remove saved PAT from keychain"},
		{name: "/db-wipe", description: "wipe the local database"},
		{name: "/quit", description: "exit ledgerline"},
	}
}

func (m *model) refreshCommandSuggestions() {
	input := strings.TrimSpace(m.cmd.Value())
	if !strings.HasPrefix(input, "/") || strings.Contains(input, " ") {
		m.clearCommandSuggestions()
		return
	}

	prefix := strings.ToLower(input)
	all := commandCatalog()
	matches := make([]commandSpec, 0, len(all))
	for _, cmd := range all {
		if strings.HasPrefix(cmd.name, prefix) {
			matches = append(matches, cmd)
		}
	}
	if len(matches) == 0 {
		m.clearCommandSuggestions()
		return
	}

	m.commandSuggestions = matches
	if m.commandSuggestionIndex >= len(m.commandSuggestions) {
		m.commandSuggestionIndex = len(m.commandSuggestions) - 1
	}
	if m.commandSuggestionIndex < 0 {
		m.commandSuggestionIndex = 0
	}
	m.adjustSuggestionWindow(2)
}

func (m *model) clearCommandSuggestions() {
	m.commandSuggestions = nil
	m.commandSuggestionIndex = 0
	m.commandSuggestionOffset = 0
}

func (m model) shouldShowCommandSuggestions() bool {
	return strings.HasPrefix(strings.TrimSpace(m.cmd.Value()), "/") && len(m.commandSuggestions) > 0
}

func (m *model) adjustSuggestionWindow(visibleRows int) {
	if visibleRows < 1 {
		visibleRows = 1
	}
	if m.commandSuggestionIndex < m.commandSuggestionOffset {
		m.commandSuggestionOffset = m.commandSuggestionIndex
	}
	if m.commandSuggestionIndex >= m.commandSuggestionOffset+visibleRows {
		m.commandSuggestionOffset = m.commandSuggestionIndex - visibleRows + 1
	}
	maxOffset := max(0, len(m.commandSuggestions)-visibleRows)
	if m.commandSuggestionOffset > maxOffset {
		m.commandSuggestionOffset = maxOffset
	}
}

func renderCommandSuggestionRows(innerWidth int, matches []commandSpec, selectedIndex int, offset int) string {
	visibleRows := 2
	start := max(0, min(offset, max(0, len(matches)-1)))
	end := min(len(matches), start+visibleRows)

	rows := make([]string, 0, end-start)
	baseRow := lipgloss.NewStyle().
		Background(lipgloss.Color("#1B2330")).
		Width(innerWidth)
	selectedRow := lipgloss.NewStyle().
		Background(lipgloss.Color("#263249")).
		Width(innerWidth)
	for i := start; i < end; i++ {
		cmdStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#B9B4D0"))
		descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#8D88A8"))
		prefix := "  "
		rowStyle := baseRow
		if i == selectedIndex {
			prefix = "› "
			cmdStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD54A")).Bold(true)
			descStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#D4CDE9"))
			rowStyle = selectedRow
		}
		name := matches[i].name
		if matches[i].args != "" {
			name += " " + matches[i].args
		}
		row := prefix + cmdStyle.Render(name) + "  " + descStyle.Render(matches[i].description)
		rows = append(rows, rowStyle.Render(row))
	}

	return strings.Join(rows, "\n")
}

func renderHelpOverlay(maxWidth int) string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#5FA8FF")).
		Bold(true).
		Render("Command Help")

	catalog := commandCatalog()
	commands := make([]string, 0, len(catalog))
	for _, cmd := range catalog {
		name := cmd.name
		if cmd.args != "" {
			name += " " + cmd.args
		}
		commands = append(commands, fmt.Sprintf("%-24s %s", name, cmd.description))
	}
	timelineHelp := []string{
		"",
		"timeline keys:",
		"o older window   g jump to date   t today",
		"r retry or refresh   / command   esc back",
	}
	body := strings.Join(append(commands, timelineHelp...), "\n")
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFD54A")).
		Bold(true).
		Render("Esc to close")

	content := strings.Join([]string{title, "", body, "", footer}, "\n")
	panelWidth := max(36, min(maxWidth-6, 80))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#6CBFE6")).
		Padding(1, 2).
		Width(panelWidth).
		Render(content)
}

func (m model) renderAuthDialog(maxWidth int) string {
	panelWidth := max(44, min(maxWidth-6, 64))

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#6CBFE6")).
		Padding(1, 2).
		Width(panelWidth)

	switch m.authDialog {
	case authDialogConnect:
		hint := m.connectHint
		if strings.TrimSpace(hint) == "" {
			hint = "Enter your PAT to save it to keychain."
		}

		patInput := m.pat
		patInput.Width = max(18, panelWidth-8)

		content := strings.Join([]string{
			"Connect to Up",
			"",
			hint,
			"",
			patInput.View(),
			"",
			"Enter to save, Esc to cancel",
		}, "\n")
		return panel.Render(content)
	case authDialogDisconnect:
		content := strings.Join([]string{
			"Disconnect from Up",
			"",
			"This will remove your saved PAT from keychain.",
			"",
			"Enter to remove PAT, Esc to cancel",
		}, "\n")
		return panel.Render(content)
	default:
		return ""
	}
}
