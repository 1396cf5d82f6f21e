// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/commands"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/config"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/index"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/llm"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/model"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/storage"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/stream"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/ui/styles"
)

// inputHeight is the number of text rows in the input box.
const inputHeight = 2

// Connector builds a provider for a configuration. It is used when the
// config file changes on disk.
type Connector func(cfg *config.Config) (llm.Provider, error)

// Options wires the chat view to its collaborators. Store, Library,
// Connector and ConfigPath are optional.
type Options struct {
	Config     *config.Config
	ConfigPath string
	Provider   llm.Provider
	Connect    Connector
	Store      *storage.ConversationStore
	Library    *index.Library
	Theme      *styles.Theme
	Logger     *slog.Logger

	// Resume continues a saved conversation instead of starting a new one.
	Resume *storage.StoredConversation
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg      *config.Config
	cfgPath  string
	provider llm.Provider
	connect  Connector
	store    *storage.ConversationStore
	library  *index.Library
	theme    *styles.Theme
	log      *slog.Logger

	acc *stream.Accumulator

	// Components
	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model
	help     help.Model
	keys     KeyMap

	// Slash commands
	parser     *commands.Parser
	registry   *commands.Registry
	completer  *commands.Completer
	completion *commands.CompletionState

	// Example prompts
	prompts  []string
	selected int

	// Transient UI state
	notice     string
	noticeGen  int
	panel      string
	showHelp   bool
	cursorTick int

	reloads chan ConfigReloadedMsg

	width    int
	height   int
	ready    bool
	quitting bool
}

// New creates the chat model. The returned model owns an accumulator; call
// Close when the program exits.
func New(ctx context.Context, opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(cfg.UI.Theme)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)

	ta := textarea.New()
	ta.Placeholder = "Ask the Ghost Assistant..."
	ta.Prompt = ""
	ta.ShowLineNumbers = false
	ta.CharLimit = 4000
	ta.SetHeight(inputHeight)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter")
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = styles.LineSpinner.Spinner()
	sp.Style = theme.Spinner

	h := help.New()
	h.ShortSeparator = "  "

	registry := commands.NewRegistry()

	m := Model{
		ctx:        ctx,
		cancel:     cancel,
		cfg:        cfg,
		cfgPath:    opts.ConfigPath,
		provider:   opts.Provider,
		connect:    opts.Connect,
		store:      opts.Store,
		library:    opts.Library,
		theme:      theme,
		log:        logger.With("component", "tui"),
		viewport:   viewport.New(80, 20),
		input:      ta,
		spinner:    sp,
		help:       h,
		keys:       DefaultKeyMap(),
		registry:   registry,
		parser:     commands.NewParser(registry),
		completer:  commands.NewCompleter(registry),
		completion: commands.NewCompletionState(),
		prompts:    append([]string(nil), cfg.Assistant.ExamplePrompts...),
		selected:   -1,
		reloads:    make(chan ConfigReloadedMsg, 1),
	}
	m.completer.ConversationsFn = m.conversations

	transcript := model.NewTranscript()
	if opts.Resume != nil {
		transcript = opts.Resume.Transcript()
	}
	m.acc = m.newAccumulator(transcript)
	return m
}

func (m *Model) newAccumulator(t *model.Transcript) *stream.Accumulator {
	history := stream.HistoryFromEntries(t.Entries())
	return stream.New(t, m.provider, m.cfg.Session(history), stream.Options{
		IdleTimeout: m.cfg.IdleTimeout(),
		Logger:      m.log,
	})
}

// Close stops any reply in flight and the config watcher.
func (m Model) Close() {
	m.acc.Close()
	m.cancel()
}

// Transcript returns the conversation shown by the view.
func (m Model) Transcript() *model.Transcript {
	return m.acc.Transcript()
}

// Init starts the cursor blink and, when a config path is set, the watcher.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.cfgPath != "" {
		cmds = append(cmds, m.watchConfig(), waitForReload(m.reloads))
	}
	return tea.Batch(cmds...)
}

// watchConfig runs config.Watch for the lifetime of the model.
func (m Model) watchConfig() tea.Cmd {
	ctx, path, reloads, log := m.ctx, m.cfgPath, m.reloads, m.log
	return func() tea.Msg {
		err := config.Watch(ctx, path, config.DefaultWatchDebounce, func(cfg *config.Config, err error) {
			select {
			case reloads <- ConfigReloadedMsg{Config: cfg, Err: err}:
			default:
			}
		})
		if err != nil {
			log.Warn("config watch stopped", "path", path, "err", err)
		}
		return nil
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case StreamEventMsg:
		return m.handleStreamEvent(msg)

	case StreamClosedMsg:
		m.input.Focus()
		m.refresh()
		return m, nil

	case CursorBlinkMsg:
		if !m.acc.Busy() {
			return m, nil
		}
		m.cursorTick = msg.tick
		m.refresh()
		return m, blinkCursor(msg.tick)

	case spinner.TickMsg:
		if !m.acc.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case SavedMsg:
		return m.handleSaved(msg)

	case ExportedMsg:
		if msg.Err != nil {
			m.log.Error("export failed", "err", msg.Err)
			return m.flash("Export failed: " + msg.Err.Error())
		}
		return m.flash("Exported to " + msg.Path)

	case SourcesMsg:
		return m.handleSources(msg)

	case ConfigReloadedMsg:
		return m.handleConfigReload(msg)

	case NoticeMsg:
		return m.flash(msg.Text)

	case clearNoticeMsg:
		if msg.gen == m.noticeGen {
			m.notice = ""
			m.refresh()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat view.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	return m.render()
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true

	m.input.SetWidth(max(m.width-4, 10))
	m.help.Width = m.width
	m.viewport.Width = max(m.width, 1)
	m.refresh()
	m.viewport.GotoBottom()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m.quit()
		case key.Matches(msg, m.keys.PageUp):
			m.viewport.ViewUp()
		case key.Matches(msg, m.keys.PageDown):
			m.viewport.ViewDown()
		default:
			m.showHelp = false
			m.refresh()
			m.viewport.GotoBottom()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Cancel) && m.acc.Busy():
		m.acc.Cancel()
		return m, nil

	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		return m.toggleHelp()

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		return m, nil
	}

	// The input is disabled while a reply streams.
	if m.acc.Busy() {
		return m, nil
	}

	if msg.Type == tea.KeyEsc {
		m.completion.Clear()
		m.panel = ""
		m.refresh()
		return m, nil
	}

	if m.promptsVisible() && m.input.Value() == "" {
		switch {
		case key.Matches(msg, m.keys.PromptUp):
			m.movePrompt(-1)
			return m, nil
		case key.Matches(msg, m.keys.PromptDown):
			m.movePrompt(1)
			return m, nil
		case key.Matches(msg, m.keys.PromptPick):
			if n := int(msg.Runes[0] - '1'); n < len(m.prompts) {
				return m.submit(m.prompts[n])
			}
			return m, nil
		case key.Matches(msg, m.keys.Submit) && m.selected >= 0:
			return m.submit(m.prompts[m.selected])
		}
	}

	switch {
	case key.Matches(msg, m.keys.Complete):
		return m.complete()

	case key.Matches(msg, m.keys.Submit):
		if m.completion.Visible() && m.completion.OriginalInput == m.input.Value() {
			m.input.SetValue(m.completion.Accept())
			m.completion.Clear()
			m.refresh()
			return m, nil
		}
		return m.submit(m.input.Value())
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before && m.completion.Visible() {
		m.completion.Clear()
		m.refresh()
	}
	return m, cmd
}

// submit sends text to the provider or runs it as a slash command.
func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(text) == "" {
		return m, nil
	}
	m.completion.Clear()

	if commands.IsCommand(text) {
		m.input.Reset()
		return m.runCommand(text)
	}

	if !m.acc.Submit(m.ctx, text) {
		m.refresh()
		return m, nil
	}

	m.input.Reset()
	m.input.Blur()
	m.panel = ""
	m.selected = -1
	m.cursorTick = 0
	m.refresh()
	m.viewport.GotoBottom()

	return m, tea.Batch(
		waitForEvent(m.acc.Events()),
		m.spinner.Tick,
		blinkCursor(0),
	)
}

func (m Model) handleStreamEvent(msg StreamEventMsg) (tea.Model, tea.Cmd) {
	events := m.acc.Events()
	ended := m.acc.Apply(msg.Event)
	m.refresh()
	if !ended {
		return m, waitForEvent(events)
	}

	m.input.Focus()
	cmds := []tea.Cmd{drainEvents(events), textarea.Blink}
	if m.acc.LastError() == nil {
		if last, ok := m.acc.Transcript().Last(); ok && last.IsModel() {
			cmds = append(cmds, m.persist(last))
		}
	}
	return m, tea.Batch(cmds...)
}

// persist records the reply's sources in the library and autosaves.
func (m Model) persist(entry model.Entry) tea.Cmd {
	ctx, t, lib, store, log := m.ctx, m.acc.Transcript(), m.library, m.store, m.log
	convID := t.ID()
	provider, modelName := m.providerInfo()
	autosave := m.cfg.Storage.Autosave

	return func() tea.Msg {
		if lib != nil && entry.HasSources() {
			if err := lib.Record(ctx, convID, entry); err != nil {
				log.Warn("record sources", "err", err)
			}
		}
		if store == nil || !autosave {
			return nil
		}
		id, err := store.SaveTranscript(t, provider, modelName)
		return SavedMsg{ID: id, Err: err}
	}
}

func (m Model) handleSaved(msg SavedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.log.Error("save conversation", "err", msg.Err)
		return m.flash("Save failed: " + msg.Err.Error())
	}
	m.log.Debug("conversation saved", "id", msg.ID)
	if msg.Manual {
		return m.flash("Saved " + msg.ID)
	}
	return m, nil
}

func (m Model) handleConfigReload(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	next := waitForReload(m.reloads)
	if msg.Err != nil {
		m.log.Warn("config reload failed", "err", msg.Err)
		mm, cmd := m.flash("Config not reloaded: " + msg.Err.Error())
		return mm, tea.Batch(cmd, next)
	}

	m.cfg = msg.Config
	m.prompts = append([]string(nil), m.cfg.Assistant.ExamplePrompts...)
	if m.selected >= len(m.prompts) {
		m.selected = -1
	}
	if m.connect != nil {
		provider, err := m.connect(m.cfg)
		if err != nil {
			m.log.Warn("reconnect after reload", "err", err)
		} else {
			m.provider = provider
		}
	}
	m.log.Info("config reloaded", "provider", m.cfg.Provider, "model", m.cfg.Model())

	mm, cmd := m.flash("Configuration reloaded; applies to the next conversation")
	return mm, tea.Batch(cmd, next)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.Close()
	return m, tea.Quit
}

// flash shows a notice that expires after noticeTTL.
func (m Model) flash(text string) (tea.Model, tea.Cmd) {
	m.noticeGen++
	m.notice = text
	m.refresh()
	return m, expireNotice(m.noticeGen)
}

func (m Model) complete() (tea.Model, tea.Cmd) {
	value := m.input.Value()
	if m.completion.Visible() && m.completion.OriginalInput == value {
		m.completion.Next()
		m.refresh()
		return m, nil
	}

	completions := m.completer.Complete(value)
	switch len(completions) {
	case 0:
		m.completion.Clear()
	case 1:
		m.completion.Update(value, completions)
		m.input.SetValue(m.completion.Accept())
		m.completion.Clear()
	default:
		m.completion.Update(value, completions)
	}
	m.refresh()
	return m, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// promptsVisible reports whether the example prompts are on screen.
func (m Model) promptsVisible() bool {
	return m.acc.Transcript().IsEmpty() && !m.acc.Busy() && len(m.prompts) > 0 && !m.showHelp
}

func (m *Model) movePrompt(delta int) {
	n := len(m.prompts)
	if n == 0 {
		return
	}
	switch {
	case m.selected < 0 && delta > 0:
		m.selected = 0
	case m.selected < 0:
		m.selected = n - 1
	default:
		m.selected = (m.selected + delta + n) % n
	}
	m.refresh()
}

func (m Model) providerInfo() (string, string) {
	if m.provider != nil {
		return m.provider.Name(), m.provider.Model()
	}
	return m.cfg.Provider, m.cfg.Model()
}

// conversations feeds /resume completion.
func (m Model) conversations() []commands.ConversationInfo {
	if m.store == nil {
		return nil
	}
	metas, err := m.store.List()
	if err != nil {
		m.log.Warn("list conversations", "err", err)
		return nil
	}
	out := make([]commands.ConversationInfo, 0, len(metas))
	for _, meta := range metas {
		out = append(out, commands.ConversationInfo{ID: meta.ID, Summary: meta.Summary})
	}
	return out
}

// refresh lays out the view and re-renders the transcript, keeping the
// viewport pinned to the bottom when it was there.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	follow := m.viewport.AtBottom()
	m.viewport.Height = max(m.height-m.chromeHeight(), 1)
	if m.showHelp {
		m.viewport.SetContent(m.renderHelp())
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	if follow {
		m.viewport.GotoBottom()
	}
}
