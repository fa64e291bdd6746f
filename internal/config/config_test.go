package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/liautaud/boldr/internal/config"
)

func TestLoadFileAppliesDefaults(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "qir.toml")
	data := `[evaluator]
host = "localhost"
port = 9999
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write qir.toml: %v", err)
	}
	m, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if m.Config.Evaluator.Host != "localhost" || m.Config.Evaluator.Port != 9999 {
		t.Fatalf("evaluator config = %+v, want host=localhost port=9999", m.Config.Evaluator)
	}
	if m.Config.Translate.MaxInstructions != config.DefaultMaxInstructions {
		t.Fatalf("MaxInstructions = %d, want default %d", m.Config.Translate.MaxInstructions, config.DefaultMaxInstructions)
	}
	if m.Config.Evaluator.TimeoutMs != config.DefaultTimeoutMs {
		t.Fatalf("TimeoutMs = %d, want default %d", m.Config.Evaluator.TimeoutMs, config.DefaultTimeoutMs)
	}
	if got, want := m.Config.Evaluator.Addr(), "localhost:9999"; got != want {
		t.Fatalf("Addr() = %q, want %q", got, want)
	}
}

func TestLoadFileMissingEvaluatorPortFails(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "qir.toml")
	data := `[evaluator]
host = "localhost"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write qir.toml: %v", err)
	}
	if _, err := config.LoadFile(path); err == nil {
		t.Fatalf("expected an error for a missing evaluator port")
	}
}

func TestFindWalksUpward(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, config.ManifestName), []byte("[translate]\nmax_instructions = 5000\n"), 0o600); err != nil {
		t.Fatalf("write qir.toml: %v", err)
	}
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}
	path, ok, err := config.Find(nested)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !ok {
		t.Fatalf("expected to find a manifest walking up from %s", nested)
	}
	if filepath.Dir(path) != root {
		t.Fatalf("found %q, want one rooted at %q", path, root)
	}
}

func TestFindReturnsFalseWhenAbsent(t *testing.T) {
	root := t.TempDir()
	_, ok, err := config.Find(root)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if ok {
		t.Fatalf("expected no manifest to be found in an empty temp dir")
	}
}
