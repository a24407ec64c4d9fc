package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/diogo/ideagen/internal/chat"
	apierrors "github.com/diogo/ideagen/internal/errors"
	"github.com/diogo/ideagen/internal/models"
	"github.com/diogo/ideagen/internal/profile"
	"github.com/diogo/ideagen/internal/render"
)

type stage int

const (
	stageProfile stage = iota
	stageChat
)

// Message types for the TUI
type (
	stateMsg       chat.State
	profileDoneMsg struct{ accepted bool }
	sendDoneMsg    struct{ err error }
	copiedMsg      struct{ err error }
)

// Options configures the chat UI
type Options struct {
	ModelName string
	Render    render.Options
	Logger    zerolog.Logger

	// DefaultCurrency preselects the currency field
	DefaultCurrency string

	// Copy puts text on the clipboard; defaults to clipboard.WriteAll
	Copy func(string) error
}

// Model is the bubbletea model for the terminal chat
type Model struct {
	ctx       context.Context
	session   *chat.Session
	collector *profile.Collector
	opts      Options

	updates     chan chat.State
	unsubscribe func()

	// Profile stage
	stage stage
	form  *huh.Form
	draft *models.ProfileDraft

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// Last state published by the session
	state   chat.State
	sending bool
	notice  string
	ready   bool

	width  int
	height int
}

// NewModel creates the chat UI for a session. It subscribes to the session
// right away; the subscription ends when the UI quits.
func NewModel(ctx context.Context, session *chat.Session, opts Options) Model {
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}

	ta := textarea.New()
	ta.Placeholder = "Ask for more names, slogans or a new angle..."
	ta.CharLimit = 2000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	updates := make(chan chat.State, 1)
	unsubscribe := session.Subscribe(func(st chat.State) { publish(updates, st) })

	m := Model{
		ctx:         ctx,
		session:     session,
		collector:   profile.NewCollector(session),
		opts:        opts,
		updates:     updates,
		unsubscribe: unsubscribe,
		draft:       &models.ProfileDraft{Currency: strings.ToUpper(opts.DefaultCurrency)},
		textarea:    ta,
		spinner:     s,
		state:       session.Snapshot(),
	}

	if m.state.FormSubmitted {
		m.stage = stageChat
		m.textarea.Focus()
	} else {
		m.form = newProfileForm(m.draft)
	}
	return m
}

// publish hands the newest state to the UI, replacing one it has not read yet
func publish(ch chan chat.State, st chat.State) {
	for {
		select {
		case ch <- st:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func waitForState(ch <-chan chat.State) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-ch)
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.spinner.Tick, waitForState(m.updates)}
	if m.form != nil {
		cmds = append(cmds, m.form.Init())
	}
	return tea.Batch(cmds...)
}

func (m Model) quit() tea.Cmd {
	m.unsubscribe()
	return tea.Quit
}

func (m Model) busy() bool {
	return m.state.Busy || m.sending
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}

	case stateMsg:
		m.state = chat.State(msg)
		if m.state.FormSubmitted && m.stage == stageProfile {
			m.stage = stageChat
			m.form = nil
		}
		if m.busy() {
			m.textarea.Blur()
		} else {
			m.textarea.Focus()
		}
		m.refreshViewport()
		return m, waitForState(m.updates)

	case profileDoneMsg:
		m.opts.Logger.Debug().Bool("accepted", msg.accepted).Msg("profile submitted")
		return m, nil

	case sendDoneMsg:
		m.sending = false
		if errors.Is(msg.err, apierrors.ErrBusy) {
			m.notice = "Still working on the previous message"
		}
		if !m.state.Busy {
			m.textarea.Focus()
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.opts.Logger.Warn().Err(msg.err).Msg("clipboard copy failed")
			m.notice = "Could not copy to clipboard"
		} else {
			m.notice = "Copied last reply to clipboard"
		}
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.stage == stageProfile {
		return m.updateForm(msg)
	}
	return m.updateChat(msg)
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	fm, cmd := m.form.Update(msg)
	if f, ok := fm.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m.completeForm()
	case huh.StateAborted:
		return m, m.quit()
	}
	return m, cmd
}

// completeForm submits a finished form. An incomplete draft reopens the form
// with the values typed so far.
func (m Model) completeForm() (Model, tea.Cmd) {
	draft := *m.draft
	if !draft.Valid() {
		m.form = newProfileForm(m.draft)
		if m.width > 0 {
			m.form = m.form.WithWidth(m.width - 8)
		}
		return m, m.form.Init()
	}

	m.stage = stageChat
	m.form = nil
	m.textarea.Blur()

	collector, ctx := m.collector, m.ctx
	return m, func() tea.Msg {
		return profileDoneMsg{accepted: collector.Submit(ctx, draft)}
	}
}

func (m Model) updateChat(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return m, m.quit()
		case "enter":
			return m.submitInput()
		case "ctrl+y":
			return m, m.copyLastReply()
		}

		if !m.busy() {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submitInput sends the text box contents. Blank input and input while
// busy are ignored.
func (m Model) submitInput() (Model, tea.Cmd) {
	if m.busy() {
		return m, nil
	}
	value := m.textarea.Value()
	if strings.TrimSpace(value) == "" {
		return m, nil
	}

	m.textarea.Reset()
	m.textarea.Blur()
	m.sending = true
	m.notice = ""
	m.session.SetPendingInput(value)

	session, ctx := m.session, m.ctx
	return m, func() tea.Msg {
		return sendDoneMsg{err: session.SubmitInput(ctx)}
	}
}

func (m Model) copyLastReply() tea.Cmd {
	var text string
	for _, e := range m.state.Transcript {
		if e.Sender == models.SenderBot {
			text = e.Text
		}
	}
	if text == "" {
		return nil
	}
	copyFn := m.opts.Copy
	return func() tea.Msg {
		return copiedMsg{err: copyFn(text)}
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	headerHeight := 4 // header panel with border
	inputHeight := 6  // input panel with border
	statusHeight := 1
	padding := 2

	vpHeight := height - headerHeight - inputHeight - statusHeight - padding
	if vpHeight < 5 {
		vpHeight = 5
	}
	contentWidth := width - 4

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 4)
	if m.form != nil {
		m.form = m.form.WithWidth(width - 8)
	}
	m.refreshViewport()
}

// refreshViewport redraws the transcript and keeps the newest entry in view
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript(m.viewport.Width - 6))
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript(bubbleWidth int) string {
	var content strings.Builder
	for i, entry := range m.state.Transcript {
		if i > 0 {
			content.WriteString("\n")
		}
		if entry.Sender == models.SenderUser {
			content.WriteString(userLabelStyle.Render("● You"))
			content.WriteString("\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(entry.Text))
		} else {
			text := entry.Text
			if entry.IsRichText {
				text = render.Reply(text, m.opts.Render.WithWidth(bubbleWidth-4))
			}
			content.WriteString(botLabelStyle.Render("✦ Idea Bot"))
			content.WriteString("\n")
			content.WriteString(botBubbleStyle.Width(bubbleWidth).Render(text))
		}
		content.WriteString("\n")
	}
	return content.String()
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.width - 4
	sections := []string{m.renderHeader(contentWidth)}

	if m.stage == stageProfile {
		greeting := m.renderTranscript(contentWidth - 6)
		panel := formPanelStyle.Width(contentWidth).Render(lipgloss.JoinVertical(
			lipgloss.Left,
			titleStyle.Render("Tell me about your business"),
			"",
			m.form.View(),
		))
		sections = append(sections, greeting, panel,
			m.renderStatusBar(contentWidth, [][2]string{{"Enter", "Next"}, {"Shift+Tab", "Back"}, {"Ctrl+C", "Quit"}}))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	messages := messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(m.viewport.View())
	sections = append(sections, messages)

	var input string
	if m.busy() {
		input = m.spinner.View() + loadingStyle.Render(" Thinking...")
	} else {
		input = lipgloss.JoinVertical(lipgloss.Left, inputLabelStyle.Render("You"), m.textarea.View())
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(input))

	if m.notice != "" {
		sections = append(sections, noticeStyle.Render("  "+m.notice))
	}

	sections = append(sections, m.renderStatusBar(contentWidth,
		[][2]string{{"Enter", "Send"}, {"Ctrl+Y", "Copy reply"}, {"↑↓", "Scroll"}, {"Esc", "Quit"}}))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(width int) string {
	parts := []string{titleStyle.Render("✦ Business Idea Generator")}
	if m.opts.ModelName != "" {
		parts = append(parts, hintStyle.Render("  •  "), subtitleStyle.Render(m.opts.ModelName))
	}
	return headerStyle.Width(width).Render(lipgloss.JoinHorizontal(lipgloss.Center, parts...))
}

func (m Model) renderStatusBar(width int, shortcuts [][2]string) string {
	items := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s[0])+statusDescStyle.Render(" "+s[1]))
	}
	bar := strings.Join(items, "  │  ")
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// RunChat starts the chat TUI and blocks until the user quits
func RunChat(ctx context.Context, session *chat.Session, opts Options) error {
	m := NewModel(ctx, session, opts)
	defer m.unsubscribe()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat ui: %w", err)
	}
	return nil
}
