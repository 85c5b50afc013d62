package logging

import (
	"fmt"
	"io"
	"log"
	"strings"
)

var std = log.Default()

// SetOutput redirects all component logs, mainly for tests.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// Info logs a message with key/value fields using a consistent prefix.
func Info(component, msg string, kv ...any) {
	std.Printf("[%s] %s%s", strings.ToUpper(component), msg, formatFields(kv...))
}

// Error logs an error message with key/value fields using a consistent prefix.
func Error(component, msg string, kv ...any) {
	std.Printf("[%s] ERROR %s%s", strings.ToUpper(component), msg, formatFields(kv...))
}

func formatFields(kv ...any) string {
	if len(kv) == 0 {
		return ""
	}
	if len(kv)%2 != 0 {
		kv = append(kv, "(missing)")
	}
	var b strings.Builder
	for i := 0; i < len(kv); i += 2 {
		b.WriteString(" ")
		b.WriteString(strings.TrimSpace(toString(kv[i])))
		b.WriteString("=")
		b.WriteString(toString(kv[i+1]))
	}
	return b.String()
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case error:
		return oneLine(t.Error())
	default:
		return oneLine(fmt.Sprintf("%v", t))
	}
}

func oneLine(s string) string {
	return strings.TrimSpace(strings.NewReplacer("\n", " ", "\t", " ").Replace(s))
}
