// Package config resolves tool settings from built-in defaults, an optional
// YAML file, and environment variables, in that order. Command-line flags are
// applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jward/opimpact/internal/classify"
	"github.com/jward/opimpact/internal/depfile"
)

// FileName is the settings file looked up at the repository root.
const FileName = ".opimpact.yaml"

// Environment variables consulted by Load.
const (
	EnvRepoRoot  = "BASE_PATH"
	EnvBuildRoot = "BUILD_PATH"
	EnvDepsFile  = "OPIMPACT_DEPS_FILE"
	EnvParallel  = "OPIMPACT_PARALLEL"
	EnvLogLevel  = "OPIMPACT_LOG_LEVEL"
)

// Settings is the resolved tool configuration.
type Settings struct {
	RepoRoot  string `yaml:"repo_root"`
	BuildRoot string `yaml:"build_root"`
	// DepsFile overrides <BuildRoot>/op_dependency.txt.
	DepsFile        string              `yaml:"deps_file"`
	ExperimentalDir string              `yaml:"experimental_dir"`
	Denylist        []string            `yaml:"denylist"`
	Platforms       []classify.Platform `yaml:"platforms"`
	Parallel        bool                `yaml:"parallel"`
	LogLevel        string              `yaml:"log_level"`
}

// Default returns the built-in settings for a repository root.
func Default(repoRoot string) Settings {
	return Settings{
		RepoRoot:        repoRoot,
		BuildRoot:       filepath.Join(repoRoot, "build"),
		ExperimentalDir: classify.DefaultExperimentalDir,
		Denylist:        append([]string(nil), classify.DefaultDenylist...),
		Platforms:       append([]classify.Platform(nil), classify.DefaultPlatforms...),
		Parallel:        true,
		LogLevel:        "info",
	}
}

// Load resolves settings for repoRoot. path names the YAML file; when empty,
// <repoRoot>/.opimpact.yaml is used if present. A missing file is not an error.
// BASE_PATH, when set, also locates the default file.
func Load(repoRoot, path string) (Settings, error) {
	if v := os.Getenv(EnvRepoRoot); v != "" {
		repoRoot = v
	}
	s := Default(repoRoot)

	explicit := path != ""
	if !explicit {
		path = filepath.Join(s.RepoRoot, FileName)
	}
	pinned, err := loadFile(path, &s)
	if err != nil && (explicit || !errors.Is(err, os.ErrNotExist)) {
		return s, err
	}

	applyEnv(&s, pinned)

	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("invalid config: %w", err)
	}
	return s, nil
}

// loadFile decodes path over s and reports whether the file set build_root.
func loadFile(path string, s *Settings) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return false, fmt.Errorf("parse config %s: %w", path, err)
	}
	var keys struct {
		BuildRoot *string `yaml:"build_root"`
	}
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return false, fmt.Errorf("parse config %s: %w", path, err)
	}
	return keys.BuildRoot != nil, nil
}

// applyEnv overlays the environment. BuildRoot follows RepoRoot unless
// BUILD_PATH or the file pinned it.
func applyEnv(s *Settings, buildPinned bool) {
	if v := os.Getenv(EnvRepoRoot); v != "" {
		s.RepoRoot = v
	}
	switch v := os.Getenv(EnvBuildRoot); {
	case v != "":
		s.BuildRoot = v
	case !buildPinned:
		s.BuildRoot = filepath.Join(s.RepoRoot, "build")
	}
	if v := os.Getenv(EnvDepsFile); v != "" {
		s.DepsFile = v
	}
	if v := os.Getenv(EnvParallel); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			s.Parallel = b
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		s.LogLevel = v
	}
}

// Validate checks settings that would otherwise fail late.
func (s Settings) Validate() error {
	if s.RepoRoot == "" {
		return errors.New("repo_root must be set")
	}
	if _, err := ParseLevel(s.LogLevel); err != nil {
		return err
	}
	seen := make(map[string]bool)
	for _, p := range s.Platforms {
		if p.Name == "" {
			return errors.New("platform name must be set")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate platform %q", p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// DepsPath returns the configuration artifact location.
func (s Settings) DepsPath() string {
	if s.DepsFile != "" {
		if filepath.IsAbs(s.DepsFile) {
			return s.DepsFile
		}
		return filepath.Join(s.RepoRoot, s.DepsFile)
	}
	return filepath.Join(s.BuildRoot, depfile.DefaultFileName)
}

// ClassifyOptions maps the settings onto classifier options.
func (s Settings) ClassifyOptions(experimental bool) classify.Options {
	return classify.Options{
		Platforms:       s.Platforms,
		Denylist:        s.Denylist,
		Experimental:    experimental,
		ExperimentalDir: s.ExperimentalDir,
	}
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// ParseFlag interprets a boolean-like command-line token.
func ParseFlag(token string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "", "0", "f", "false", "n", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", token)
	}
}
