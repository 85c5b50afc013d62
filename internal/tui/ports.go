package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/savioxavier/termlink"
)

// ErrRichClipboard is returned for HTML copies; terminals only hold text.
var ErrRichClipboard = errors.New("rich clipboard is not supported in a terminal")

type (
	generateEnabledMsg bool
	loadingMsg         bool
	resultVisibleMsg   bool
	resultMsg          string
	scrollMsg          struct{}
	noticesMsg         []noticeLine
	savedMsg           string
)

type noticeLine struct {
	level   string
	message string
}

// sender forwards view calls to the running program.
type sender struct {
	send func(tea.Msg)
}

func (s *sender) emit(msg tea.Msg) {
	if s.send != nil {
		s.send(msg)
	}
}

func (s *sender) SetGenerateEnabled(enabled bool) { s.emit(generateEnabledMsg(enabled)) }
func (s *sender) ShowLoading(visible bool)         { s.emit(loadingMsg(visible)) }
func (s *sender) ShowResult(visible bool)          { s.emit(resultVisibleMsg(visible)) }
func (s *sender) RenderResult(markup string)       { s.emit(resultMsg(markup)) }
func (s *sender) ScrollToResult()                  { s.emit(scrollMsg{}) }

type systemClipboard struct{}

func (systemClipboard) WriteHTML(string) error {
	return ErrRichClipboard
}

func (systemClipboard) WriteText(text string) error {
	return errors.Wrap(clipboard.WriteAll(text), "failed to write clipboard")
}

// FilePrinter saves each SOP as a standalone HTML document.
type FilePrinter struct {
	Dir     string
	Now     func() time.Time
	OnSaved func(path string)
}

func (p *FilePrinter) Print(markup string) error {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	dir := p.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}
	fileName := filepath.Join(dir, fmt.Sprintf("sop-%s.html", now().Format("20060102-150405")))
	if err := os.WriteFile(fileName, []byte(document(markup)), 0o644); err != nil {
		return errors.Wrapf(err, "failed to save %s", fileName)
	}
	if p.OnSaved != nil {
		p.OnSaved(fileName)
	}
	return nil
}

func document(markup string) string {
	return `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Standard Operating Procedure</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; line-height: 1.5; }
.warning { border-left: 4px solid #d9534f; background: #fdf2f2; padding: 0.5rem 1rem; }
</style>
</head>
<body>
` + markup + `
</body>
</html>
`
}

func savedLink(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "Saved to " + termlink.ColorLink(filepath.Base(path), "file://"+abs, "italic green")
}
