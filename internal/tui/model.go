package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"sopgen/internal/controller"
	"sopgen/internal/render"
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF88")).Background(lipgloss.Color("#444444"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	warningStyle = lipgloss.NewStyle().Background(lipgloss.Color("52")).Foreground(lipgloss.Color("#FF3333"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF3333"))
)

type Options struct {
	Backend        controller.Backend
	OutputDir      string
	NoticeDuration time.Duration
}

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	ctrl   *controller.Controller

	textarea textarea.Model
	viewport viewport.Model
	loader   spinner.Model

	generateEnabled bool
	loading         bool
	resultVisible   bool
	result          string
	notices         []noticeLine
	saved           string
}

// New builds the model and the sender its controller reports through. The
// caller binds sender.send once the program exists.
func New(ctx context.Context, opts Options) (*Model, *sender, error) {
	if opts.Backend == nil {
		return nil, nil, errors.New("backend is required")
	}
	out := &sender{}
	notices := controller.NewNotices(opts.NoticeDuration, func(items []controller.Notice) {
		out.emit(noticesMsg(lo.Map(items, func(n controller.Notice, _ int) noticeLine {
			return noticeLine{level: n.Level.String(), message: n.Message}
		})))
	})
	ctrl, err := controller.New(controller.Config{
		Backend:   opts.Backend,
		View:      out,
		Clipboard: systemClipboard{},
		Printer: &FilePrinter{
			Dir:     opts.OutputDir,
			OnSaved: func(path string) { out.emit(savedMsg(path)) },
		},
		Notifier: notices,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to init controller")
	}

	ta := textarea.New()
	ta.Placeholder = "Describe the process in your own words..."
	ta.Focus()
	ta.Prompt = "┃ "
	ta.CharLimit = 8192
	ta.SetWidth(100)
	ta.SetHeight(8)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.ShowLineNumbers = false

	vp := viewport.New(100, 20)

	loader := spinner.New(
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("205"))),
		spinner.WithSpinner(spinner.Dot),
	)

	ctx, cancel := context.WithCancel(ctx)
	return &Model{
		ctx:             ctx,
		cancel:          cancel,
		ctrl:            ctrl,
		textarea:        ta,
		viewport:        vp,
		loader:          loader,
		generateEnabled: true,
	}, out, nil
}

func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.textarea.SetWidth(msg.Width - 2)
		m.viewport.Width = msg.Width
		m.viewport.Height = lo.Max([]int{msg.Height - m.textarea.Height() - 8, 3})
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.cancel()
			return m, tea.Quit
		case tea.KeyCtrlG:
			if !m.generateEnabled {
				return m, nil
			}
			input := m.textarea.Value()
			return m, func() tea.Msg {
				m.ctrl.Generate(m.ctx, input)
				return nil
			}
		case tea.KeyCtrlP:
			return m, func() tea.Msg {
				m.ctrl.Print()
				return nil
			}
		case tea.KeyCtrlY:
			return m, func() tea.Msg {
				m.ctrl.Copy()
				return nil
			}
		}
	case generateEnabledMsg:
		m.generateEnabled = bool(msg)
		return m, nil
	case loadingMsg:
		m.loading = bool(msg)
		if m.loading {
			return m, m.loader.Tick
		}
		return m, nil
	case resultVisibleMsg:
		m.resultVisible = bool(msg)
		return m, nil
	case resultMsg:
		m.result = string(msg)
		m.viewport.SetContent(styled(m.result))
		return m, nil
	case scrollMsg:
		m.viewport.GotoTop()
		return m, nil
	case noticesMsg:
		m.notices = msg
		return m, nil
	case savedMsg:
		m.saved = savedLink(string(msg))
		return m, nil
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.loader, cmd = m.loader.Update(msg)
		return m, cmd
	}

	var tiCmd, vpCmd tea.Cmd
	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("SOP generator"))
	b.WriteString("\n\n")
	b.WriteString(m.textarea.View())
	b.WriteString("\n")
	if m.loading {
		b.WriteString(m.loader.View() + " Generating...")
	} else {
		b.WriteString(helpStyle.Render("ctrl+g generate • ctrl+p print • ctrl+y copy • ctrl+c quit"))
	}
	b.WriteString("\n")
	for _, n := range m.notices {
		b.WriteString("\n" + noticeStyle(n.level).Render(n.message))
	}
	if m.resultVisible {
		b.WriteString("\n\n" + m.viewport.View())
	}
	if m.saved != "" {
		b.WriteString("\n" + m.saved)
	}
	return b.String() + "\n"
}

func noticeStyle(level string) lipgloss.Style {
	switch level {
	case "error":
		return errorStyle
	case "warning":
		return stepStyle
	default:
		return infoStyle
	}
}

func styled(markup string) string {
	blocks, err := render.Parse(markup)
	if err != nil {
		return markup
	}
	return render.Lines(blocks, func(b render.Block, line string) string {
		switch {
		case b.Warning:
			return warningStyle.Render(line)
		case b.Kind == render.Heading:
			return headingStyle.Render(line)
		case b.Kind == render.Step:
			return stepStyle.Render(line)
		default:
			return line
		}
	})
}

// Run starts the interactive program and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	m, out, err := New(ctx, opts)
	if err != nil {
		return err
	}
	defer m.cancel()
	p := tea.NewProgram(m, tea.WithAltScreen())
	out.send = p.Send
	if _, err := p.Run(); err != nil {
		return errors.Wrap(err, "tui exited")
	}
	return nil
}
