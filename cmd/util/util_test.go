package util

import (
	"bytes"
	"strings"
	"testing"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 30)
	for i, line := range strings.Split(WrapString(text), "\n") {
		if len(line) > Wrap {
			t.Errorf("line %d is %d characters long: %q", i, len(line), line)
		}
	}
	if got := WrapString("  short   text "); got != "short text" {
		t.Errorf("WrapString collapsed spaces to %q", got)
	}
}

func TestPrintJSON(t *testing.T) {
	v := []map[string]any{
		{"key": "alice", "bins": map[string]any{"age": 30}},
		{"key": "bob", "bins": map[string]any{"age": 41}},
	}

	t.Run("Whole", func(t *testing.T) {
		var buf bytes.Buffer
		if err := PrintJSON(&buf, v, ""); err != nil {
			t.Fatalf("PrintJSON failed: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  {") {
			t.Errorf("output is not indented: %s", buf.String())
		}
		if strings.Contains(buf.String(), "\x1b[") {
			t.Errorf("output to a buffer is colored")
		}
	})

	t.Run("Path", func(t *testing.T) {
		var buf bytes.Buffer
		if err := PrintJSON(&buf, v, "#.key"); err != nil {
			t.Fatalf("PrintJSON failed: %v", err)
		}
		if got := strings.Join(strings.Fields(buf.String()), ""); got != `["alice","bob"]` {
			t.Errorf("PrintJSON(#.key) = %s", got)
		}

		buf.Reset()
		if err := PrintJSON(&buf, v, "1.bins.age"); err != nil {
			t.Fatalf("PrintJSON failed: %v", err)
		}
		if got := strings.TrimSpace(buf.String()); got != "41" {
			t.Errorf("PrintJSON(1.bins.age) = %q", got)
		}
	})

	t.Run("MissingPath", func(t *testing.T) {
		if err := PrintJSON(&bytes.Buffer{}, v, "0.nope"); err == nil {
			t.Errorf("PrintJSON accepted a path that matches nothing")
		}
	})
}
