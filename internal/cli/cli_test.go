package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadInputFromArgs(t *testing.T) {
	input, err := readInput([]string{"clean", "the", "grill"}, "", strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if input != "clean the grill" {
		t.Fatalf("unexpected input: %q", input)
	}
}

func TestReadInputFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("file notes\n"), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	input, err := readInput(nil, path, strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if input != "file notes" {
		t.Fatalf("unexpected input: %q", input)
	}
}

func TestReadInputFromStdin(t *testing.T) {
	input, err := readInput(nil, "-", strings.NewReader("stdin notes\r\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if input != "stdin notes" {
		t.Fatalf("unexpected input: %q", input)
	}
}

func TestReadInputMissing(t *testing.T) {
	if _, err := readInput(nil, "", strings.NewReader("")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestReadInputConflict(t *testing.T) {
	if _, err := readInput([]string{"hello"}, "notes.txt", strings.NewReader("")); err == nil {
		t.Fatalf("expected error")
	}
}

func newEndpointStub(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
			t.Errorf("unexpected request: %v %q", err, req.Prompt)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerateCommand(t *testing.T) {
	srv := newEndpointStub(t, http.StatusOK, `{"content":"<h2>Objective</h2><ul><li>Scrub</li></ul>"}`)
	var out, errOut bytes.Buffer
	code := Execute(context.Background(), []string{"generate", "--endpoint", srv.URL, "clean", "grill"}, &out, &errOut)
	if code != 0 {
		t.Fatalf("unexpected exit %d: %s", code, errOut.String())
	}
	if out.String() != "<h2>Objective</h2><ul><li>Scrub</li></ul>\n" {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestGenerateCommandText(t *testing.T) {
	srv := newEndpointStub(t, http.StatusOK, `{"content":"<h2>Objective</h2><ul><li>Scrub</li></ul>"}`)
	var out, errOut bytes.Buffer
	code := Execute(context.Background(), []string{"generate", "--text", "--endpoint", srv.URL, "clean"}, &out, &errOut)
	if code != 0 {
		t.Fatalf("unexpected exit %d: %s", code, errOut.String())
	}
	if out.String() != "Objective\n- Scrub\n" {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestGenerateCommandEndpointError(t *testing.T) {
	srv := newEndpointStub(t, http.StatusInternalServerError, `{"error":"Server configuration error (API Key missing)"}`)
	var out, errOut bytes.Buffer
	code := Execute(context.Background(), []string{"generate", "--endpoint", srv.URL, "clean"}, &out, &errOut)
	if code != 1 {
		t.Fatalf("expected failure, got %d", code)
	}
	if !strings.Contains(errOut.String(), "API Key missing") {
		t.Fatalf("unexpected stderr: %q", errOut.String())
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	if code := Execute(context.Background(), []string{"version"}, &out, nil); code != 0 {
		t.Fatalf("unexpected exit %d", code)
	}
	if !strings.HasPrefix(out.String(), "sopgen ") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestProvidersCommand(t *testing.T) {
	var out bytes.Buffer
	if code := Execute(context.Background(), []string{"llm", "providers"}, &out, nil); code != 0 {
		t.Fatalf("unexpected exit %d", code)
	}
	for _, want := range []string{"groq", "GROQ_API_KEY", "huggingface", "HF_API_TOKEN"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("missing %s in %q", want, out.String())
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	var errOut bytes.Buffer
	if code := Execute(context.Background(), []string{"nope"}, nil, &errOut); code != 1 {
		t.Fatalf("expected failure, got %d", code)
	}
}
