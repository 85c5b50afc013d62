package controller

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"sopgen/internal/render"
)

const (
	MsgEmptyInput     = "Please enter some process notes first."
	MsgGenerated      = "SOP generated."
	MsgGenerateFailed = "Error generating SOP: "
	MsgBusy           = "A generation is already in progress."
	MsgNothingYet     = "Generate an SOP first."
	MsgCopied         = "Copied!"
	MsgCopyFailed     = "Failed to copy to clipboard."
	MsgPrintFailed    = "Failed to print: "
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Backend performs the generation round trip.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// View is the page surface the controller drives.
type View interface {
	SetGenerateEnabled(enabled bool)
	ShowLoading(visible bool)
	ShowResult(visible bool)
	RenderResult(markup string)
	ScrollToResult()
}

type Clipboard interface {
	WriteHTML(markup string) error
	WriteText(text string) error
}

type Printer interface {
	Print(markup string) error
}

// Notifier shows transient messages. *Notices implements it.
type Notifier interface {
	Show(level Level, msg string) int
}

type Config struct {
	Backend   Backend
	View      View
	Clipboard Clipboard
	Printer   Printer
	Notifier  Notifier
}

// Controller implements Idle -> Loading -> {Success, Error}. Methods may be
// called from any goroutine.
type Controller struct {
	backend   Backend
	view      View
	clipboard Clipboard
	printer   Printer
	notices   Notifier

	mu     sync.Mutex
	state  State
	markup string
}

func New(cfg Config) (*Controller, error) {
	if cfg.Backend == nil {
		return nil, errors.New("backend is required")
	}
	if cfg.View == nil {
		return nil, errors.New("view is required")
	}
	notices := cfg.Notifier
	if notices == nil {
		notices = NewNotices(DefaultNoticeDuration, nil)
	}
	return &Controller{
		backend:   cfg.Backend,
		view:      cfg.View,
		clipboard: cfg.Clipboard,
		printer:   cfg.Printer,
		notices:   notices,
	}, nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Markup returns the last rendered result.
func (c *Controller) Markup() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.markup
}

// Generate runs one generation for input and returns the state it ends in.
// While a generation is in flight further calls are rejected.
func (c *Controller) Generate(ctx context.Context, input string) State {
	prompt := strings.TrimSpace(input)
	if prompt == "" {
		c.notices.Show(LevelWarning, MsgEmptyInput)
		return c.State()
	}

	c.mu.Lock()
	if c.state == StateLoading {
		c.mu.Unlock()
		c.notices.Show(LevelWarning, MsgBusy)
		return StateLoading
	}
	c.state = StateLoading
	c.mu.Unlock()

	c.view.SetGenerateEnabled(false)
	c.view.ShowResult(false)
	c.view.ShowLoading(true)
	defer c.view.SetGenerateEnabled(true)

	content, err := c.call(ctx, prompt)
	if err != nil {
		c.view.ShowLoading(false)
		c.notices.Show(LevelError, MsgGenerateFailed+err.Error())
		return c.setState(StateError)
	}

	c.view.RenderResult(content)
	c.view.ShowLoading(false)
	c.view.ShowResult(true)
	c.mu.Lock()
	c.markup = content
	c.mu.Unlock()
	c.notices.Show(LevelInfo, MsgGenerated)
	c.view.ScrollToResult()
	return c.setState(StateSuccess)
}

func (c *Controller) call(ctx context.Context, prompt string) (content string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("%v", r)
		}
	}()
	return c.backend.Generate(ctx, prompt)
}

func (c *Controller) setState(s State) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
	return s
}

// Print hands the rendered result to the printer.
func (c *Controller) Print() {
	markup := c.Markup()
	if markup == "" {
		c.notices.Show(LevelWarning, MsgNothingYet)
		return
	}
	if c.printer == nil {
		c.notices.Show(LevelError, MsgPrintFailed+"no printer available")
		return
	}
	if err := c.printer.Print(markup); err != nil {
		c.notices.Show(LevelError, MsgPrintFailed+err.Error())
	}
}

// Copy puts the rendered result on the clipboard as HTML, falling back to
// plain text.
func (c *Controller) Copy() {
	markup := c.Markup()
	if markup == "" {
		c.notices.Show(LevelWarning, MsgNothingYet)
		return
	}
	if err := c.copy(markup); err != nil {
		c.notices.Show(LevelError, MsgCopyFailed)
		return
	}
	c.notices.Show(LevelInfo, MsgCopied)
}

func (c *Controller) copy(markup string) error {
	if c.clipboard == nil {
		return errors.New("no clipboard available")
	}
	htmlErr := c.clipboard.WriteHTML(markup)
	if htmlErr == nil {
		return nil
	}
	if err := c.clipboard.WriteText(render.PlainText(markup)); err != nil {
		return errors.Wrap(err, fmt.Sprintf("html copy failed (%v), text copy failed", htmlErr))
	}
	return nil
}
