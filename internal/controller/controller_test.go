package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

type fakeBackend struct {
	mu      sync.Mutex
	calls   []string
	content string
	err     error
	block   chan struct{}
	panics  bool
}

func (b *fakeBackend) Generate(ctx context.Context, prompt string) (string, error) {
	b.mu.Lock()
	b.calls = append(b.calls, prompt)
	block := b.block
	b.mu.Unlock()
	if block != nil {
		<-block
	}
	if b.panics {
		panic("backend exploded")
	}
	return b.content, b.err
}

func (b *fakeBackend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

type fakeView struct {
	mu     sync.Mutex
	events []string
}

func (v *fakeView) record(e string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append(v.events, e)
}

func (v *fakeView) SetGenerateEnabled(enabled bool) {
	if enabled {
		v.record("enable")
	} else {
		v.record("disable")
	}
}

func (v *fakeView) ShowLoading(visible bool) {
	if visible {
		v.record("loading:on")
	} else {
		v.record("loading:off")
	}
}

func (v *fakeView) ShowResult(visible bool) {
	if visible {
		v.record("result:show")
	} else {
		v.record("result:hide")
	}
}

func (v *fakeView) RenderResult(markup string) { v.record("render:" + markup) }
func (v *fakeView) ScrollToResult()            { v.record("scroll") }

func (v *fakeView) Events() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.events...)
}

type fakeClipboard struct {
	htmlErr error
	textErr error
	html    string
	text    string
}

func (c *fakeClipboard) WriteHTML(markup string) error {
	if c.htmlErr != nil {
		return c.htmlErr
	}
	c.html = markup
	return nil
}

func (c *fakeClipboard) WriteText(text string) error {
	if c.textErr != nil {
		return c.textErr
	}
	c.text = text
	return nil
}

type fakePrinter struct {
	printed []string
	err     error
}

func (p *fakePrinter) Print(markup string) error {
	p.printed = append(p.printed, markup)
	return p.err
}

func newController(t *testing.T, backend *fakeBackend, view *fakeView) (*Controller, *Notices) {
	t.Helper()
	notices := NewNotices(time.Hour, nil)
	t.Cleanup(notices.Close)
	c, err := New(Config{
		Backend:   backend,
		View:      view,
		Clipboard: &fakeClipboard{},
		Printer:   &fakePrinter{},
		Notifier:  notices,
	})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return c, notices
}

func messages(n *Notices) []string {
	out := []string{}
	for _, item := range n.Active() {
		out = append(out, item.Message)
	}
	return out
}

func TestGenerateEmptyInputNeverCallsBackend(t *testing.T) {
	RegisterTestingT(t)
	backend := &fakeBackend{}
	view := &fakeView{}
	c, notices := newController(t, backend, view)

	for _, input := range []string{"", "   ", "\n\t"} {
		Expect(c.Generate(context.Background(), input)).To(Equal(StateIdle))
	}

	Expect(backend.Calls()).To(BeEmpty())
	Expect(view.Events()).To(BeEmpty())
	Expect(messages(notices)).To(Equal([]string{MsgEmptyInput, MsgEmptyInput, MsgEmptyInput}))
}

func TestGenerateSuccess(t *testing.T) {
	RegisterTestingT(t)
	backend := &fakeBackend{content: "<h1>SOP</h1>"}
	view := &fakeView{}
	c, notices := newController(t, backend, view)

	Expect(c.Generate(context.Background(), "  clean the grill  ")).To(Equal(StateSuccess))

	Expect(backend.Calls()).To(Equal([]string{"clean the grill"}))
	Expect(view.Events()).To(Equal([]string{
		"disable",
		"result:hide",
		"loading:on",
		"render:<h1>SOP</h1>",
		"loading:off",
		"result:show",
		"scroll",
		"enable",
	}))
	Expect(c.Markup()).To(Equal("<h1>SOP</h1>"))
	Expect(messages(notices)).To(Equal([]string{MsgGenerated}))
}

func TestGenerateFailureKeepsResultHidden(t *testing.T) {
	RegisterTestingT(t)
	backend := &fakeBackend{err: errors.New("Server configuration error (API Key missing)")}
	view := &fakeView{}
	c, notices := newController(t, backend, view)

	Expect(c.Generate(context.Background(), "notes")).To(Equal(StateError))

	Expect(view.Events()).To(Equal([]string{"disable", "result:hide", "loading:on", "loading:off", "enable"}))
	Expect(c.Markup()).To(BeEmpty())
	Expect(messages(notices)).To(Equal([]string{
		"Error generating SOP: Server configuration error (API Key missing)",
	}))
}

func TestGenerateRecoversFromBackendPanic(t *testing.T) {
	RegisterTestingT(t)
	backend := &fakeBackend{panics: true}
	view := &fakeView{}
	c, notices := newController(t, backend, view)

	Expect(c.Generate(context.Background(), "notes")).To(Equal(StateError))
	Expect(view.Events()).To(HaveLen(5))
	Expect(view.Events()[4]).To(Equal("enable"))
	Expect(messages(notices)[0]).To(ContainSubstring("backend exploded"))
}

func TestGenerateRejectsConcurrentCall(t *testing.T) {
	RegisterTestingT(t)
	backend := &fakeBackend{content: "<p>ok</p>", block: make(chan struct{})}
	view := &fakeView{}
	c, notices := newController(t, backend, view)

	done := make(chan State, 1)
	go func() { done <- c.Generate(context.Background(), "first") }()
	Eventually(c.State).Should(Equal(StateLoading))

	Expect(c.Generate(context.Background(), "second")).To(Equal(StateLoading))
	Expect(messages(notices)).To(ContainElement(MsgBusy))

	close(backend.block)
	Eventually(done).Should(Receive(Equal(StateSuccess)))
	Expect(backend.Calls()).To(Equal([]string{"first"}))
}

func TestGenerateAgainAfterFailure(t *testing.T) {
	RegisterTestingT(t)
	backend := &fakeBackend{err: errors.New("boom")}
	view := &fakeView{}
	c, _ := newController(t, backend, view)

	Expect(c.Generate(context.Background(), "notes")).To(Equal(StateError))
	backend.err = nil
	backend.content = "<p>fixed</p>"
	Expect(c.Generate(context.Background(), "notes")).To(Equal(StateSuccess))
	Expect(c.Markup()).To(Equal("<p>fixed</p>"))
}

func TestCopyPrefersHTML(t *testing.T) {
	RegisterTestingT(t)
	clip := &fakeClipboard{}
	c, notices := newController(t, &fakeBackend{content: "<h1>Title</h1><ul><li>a</li></ul>"}, &fakeView{})
	c.clipboard = clip
	c.Generate(context.Background(), "notes")

	c.Copy()

	Expect(clip.html).To(Equal("<h1>Title</h1><ul><li>a</li></ul>"))
	Expect(clip.text).To(BeEmpty())
	Expect(messages(notices)).To(ContainElement(MsgCopied))
}

func TestCopyFallsBackToText(t *testing.T) {
	RegisterTestingT(t)
	clip := &fakeClipboard{htmlErr: errors.New("unsupported")}
	c, notices := newController(t, &fakeBackend{content: "<h1>Title</h1><ul><li>a</li></ul>"}, &fakeView{})
	c.clipboard = clip
	c.Generate(context.Background(), "notes")

	c.Copy()

	Expect(clip.text).To(Equal("Title\n- a"))
	Expect(messages(notices)).To(ContainElement(MsgCopied))
}

func TestCopyTotalFailure(t *testing.T) {
	RegisterTestingT(t)
	clip := &fakeClipboard{htmlErr: errors.New("unsupported"), textErr: errors.New("denied")}
	c, notices := newController(t, &fakeBackend{content: "<p>x</p>"}, &fakeView{})
	c.clipboard = clip
	c.Generate(context.Background(), "notes")

	c.Copy()

	Expect(messages(notices)).To(ContainElement(MsgCopyFailed))
	Expect(messages(notices)).NotTo(ContainElement(MsgCopied))
}

func TestCopyAndPrintBeforeGenerate(t *testing.T) {
	RegisterTestingT(t)
	printer := &fakePrinter{}
	c, notices := newController(t, &fakeBackend{}, &fakeView{})
	c.printer = printer

	c.Copy()
	c.Print()

	Expect(printer.printed).To(BeEmpty())
	Expect(messages(notices)).To(Equal([]string{MsgNothingYet, MsgNothingYet}))
}

func TestPrint(t *testing.T) {
	RegisterTestingT(t)
	printer := &fakePrinter{}
	c, notices := newController(t, &fakeBackend{content: "<p>x</p>"}, &fakeView{})
	c.printer = printer
	c.Generate(context.Background(), "notes")

	c.Print()
	Expect(printer.printed).To(Equal([]string{"<p>x</p>"}))

	printer.err = errors.New("disk full")
	c.Print()
	Expect(strings.Join(messages(notices), "|")).To(ContainSubstring(MsgPrintFailed + "disk full"))
}

func TestNewRequiresPorts(t *testing.T) {
	RegisterTestingT(t)
	_, err := New(Config{View: &fakeView{}})
	Expect(err).To(HaveOccurred())
	_, err = New(Config{Backend: &fakeBackend{}})
	Expect(err).To(HaveOccurred())
}
