package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_EmbeddedDefaults(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, key := range []string{"explain.system", "explain.user", "cli.no_explainer", "cli.explainer_failed"} {
		if _, err := c.Render(key, map[string]any{
			"FEN": "x", "Side": "white", "MoveSAN": "e4",
			"EvalBefore": 0, "EvalAfter": 0, "Loss": 0,
			"Classification": "", "BestLine": "e4",
		}); err != nil {
			t.Fatalf("Render(%s): %v", key, err)
		}
	}
}

func TestRender_ConditionalClassification(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := map[string]any{
		"FEN": "startpos", "Side": "white", "MoveSAN": "f3",
		"EvalBefore": 20, "EvalAfter": -80, "Loss": 100,
		"Classification": "mistake", "BestLine": "d4",
	}
	out, err := c.Render("explain.user", data)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "Quality verdict: mistake") {
		t.Fatalf("verdict line missing:\n%s", out)
	}

	data["Classification"] = ""
	out, err = c.Render("explain.user", data)
	if err != nil {
		t.Fatalf("Render without classification: %v", err)
	}
	if strings.Contains(out, "Quality verdict") {
		t.Fatalf("verdict line should be omitted:\n%s", out)
	}
}

func TestRender_UnknownKeyAndMissingData(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Render("no.such.key", nil); err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if _, err := c.Render("explain.user", map[string]any{"FEN": "x"}); err == nil {
		t.Fatalf("expected error for missing template data")
	}
}

func TestNew_OverrideDir(t *testing.T) {
	dir := t.TempDir()
	override := "cli:\n  no_explainer: \"custom fallback\"\n"
	if err := os.WriteFile(filepath.Join(dir, "10-local.yaml"), []byte(override), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	c, err := New(dir)
	if err != nil {
		t.Fatalf("New with overrides: %v", err)
	}
	out, err := c.Render("cli.no_explainer", nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "custom fallback" {
		t.Fatalf("override not applied: %q", out)
	}

	// defaults survive alongside overrides
	if _, err := c.Render("cli.explainer_failed", nil); err != nil {
		t.Fatalf("default lost after override: %v", err)
	}
}

func TestNew_DuplicateOverrideKey(t *testing.T) {
	dir := t.TempDir()
	body := "cli:\n  no_explainer: \"a\"\n"
	for _, name := range []string{"a.yaml", "b.yaml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("expected duplicate-key error")
	}
}
