// Package config loads the qir.toml manifest (SPEC_FULL.md §A.3): the
// evaluator client's connection settings and the translator's instruction
// guard. Discovery and parsing follow the teacher's
// cmd/surge/project_manifest.go almost line for line — walk upward from the
// working directory looking for the manifest file, decode it with
// github.com/BurntSushi/toml, and use the decode Metadata to require the
// keys that actually matter rather than trusting zero values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const ManifestName = "qir.toml"

const noManifestMessage = "no qir.toml found\nplease specify --config explicitly, e.g.:\n  qirc translate --config path/to/qir.toml ..."

// Config is qir.toml's decoded shape.
type Config struct {
	Evaluator EvaluatorConfig `toml:"evaluator"`
	Translate TranslateConfig `toml:"translate"`
}

type EvaluatorConfig struct {
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	TimeoutMs int    `toml:"timeout_ms"`
}

type TranslateConfig struct {
	MaxInstructions int `toml:"max_instructions"`
}

// Manifest is a located and parsed qir.toml plus the directory it was found
// in, mirroring the teacher's projectManifest.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Find walks upward from startDir looking for qir.toml, the same algorithm
// as the teacher's findSurgeToml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("config: resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("config: stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load finds and parses qir.toml starting from startDir, applying defaults
// for any section left entirely unset.
func Load(startDir string) (*Manifest, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := decode(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// LoadFile parses a manifest at an explicit path, bypassing upward search
// (the CLI's --config flag).
func LoadFile(path string) (*Manifest, error) {
	cfg, err := decode(path)
	if err != nil {
		return nil, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, nil
}

func decode(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if meta.IsDefined("evaluator") {
		if !meta.IsDefined("evaluator", "host") || strings.TrimSpace(cfg.Evaluator.Host) == "" {
			return Config{}, fmt.Errorf("%s: [evaluator] is present but missing host", path)
		}
		if !meta.IsDefined("evaluator", "port") || cfg.Evaluator.Port <= 0 {
			return Config{}, fmt.Errorf("%s: [evaluator] is present but missing a valid port", path)
		}
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// DefaultMaxInstructions matches internal/interp.DefaultLimit; kept
// independent so qir.toml can override the guard without internal/config
// importing internal/interp.
const DefaultMaxInstructions = 100000

const DefaultTimeoutMs = 5000

func applyDefaults(cfg *Config) {
	if cfg.Translate.MaxInstructions <= 0 {
		cfg.Translate.MaxInstructions = DefaultMaxInstructions
	}
	if cfg.Evaluator.TimeoutMs <= 0 {
		cfg.Evaluator.TimeoutMs = DefaultTimeoutMs
	}
}

// NoManifestMessage is the diagnostic cmd/qirc prints when Load can't find
// qir.toml anywhere above the working directory.
func NoManifestMessage() string { return noManifestMessage }

// Addr formats the evaluator's host:port for net.Dial.
func (c EvaluatorConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
