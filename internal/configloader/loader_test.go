package configloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yaklabco/mdstream/pkg/config"
)

// newProject returns a temporary directory marked as a VCS root so the
// upward search never leaves it.
func newProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func isolated(dir string) LoadOptions {
	return LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	result, err := Load(context.Background(), isolated(newProject(t)))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config.Flavor != config.FlavorGFM {
		t.Errorf("expected flavor %q, got %q", config.FlavorGFM, result.Config.Flavor)
	}
	if result.Config.Incremental.BaseWindow != config.DefaultBaseWindow {
		t.Errorf("expected base window %d, got %d", config.DefaultBaseWindow, result.Config.Incremental.BaseWindow)
	}
	if len(result.LoadedFrom) != 0 {
		t.Errorf("expected no loaded files, got %v", result.LoadedFrom)
	}
}

func TestLoad_ProjectConfig(t *testing.T) {
	t.Parallel()

	dir := newProject(t)
	writeFile(t, filepath.Join(dir, ".mdstream.yml"), `
flavor: commonmark
incremental:
  enabled: false
  base_window: 4
`)

	result, err := Load(context.Background(), isolated(dir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := result.Config
	if cfg.Flavor != config.FlavorCommonMark {
		t.Errorf("expected flavor %q, got %q", config.FlavorCommonMark, cfg.Flavor)
	}
	if cfg.IncrementalEnabled() {
		t.Error("a project file must be able to turn incremental reparsing off")
	}
	if cfg.Incremental.BaseWindow != 4 {
		t.Errorf("expected base window 4, got %d", cfg.Incremental.BaseWindow)
	}
	if cfg.Incremental.ComplexWindow != config.DefaultComplexWindow {
		t.Errorf("unset complex window must keep the default, got %d", cfg.Incremental.ComplexWindow)
	}
	if !cfg.FastPathEnabled() {
		t.Error("fast path must stay enabled")
	}
	if len(result.LoadedFrom) != 1 {
		t.Errorf("expected 1 loaded file, got %d", len(result.LoadedFrom))
	}
}

func TestLoad_ProjectConfigFromSubdirectory(t *testing.T) {
	t.Parallel()

	dir := newProject(t)
	sub := filepath.Join(dir, "docs", "guide")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(dir, "mdstream.yaml"), "max_bytes: 4096\n")

	result, err := Load(context.Background(), isolated(sub))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.MaxBytes != 4096 {
		t.Errorf("expected max_bytes 4096, got %d", result.Config.MaxBytes)
	}
	if result.Paths.Project != filepath.Join(dir, "mdstream.yaml") {
		t.Errorf("unexpected project path %q", result.Paths.Project)
	}
}

func TestLoad_ExplicitOverridesProject(t *testing.T) {
	t.Parallel()

	dir := newProject(t)
	writeFile(t, filepath.Join(dir, ".mdstream.yml"), "flavor: commonmark\nmax_bytes: 10\n")
	explicit := filepath.Join(dir, "custom.yml")
	writeFile(t, explicit, "flavor: gfm\n")

	opts := isolated(dir)
	opts.ExplicitPath = explicit

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.Flavor != config.FlavorGFM {
		t.Errorf("expected explicit flavor gfm, got %q", result.Config.Flavor)
	}
	if result.Config.MaxBytes != 10 {
		t.Errorf("project settings not overridden must survive, got max_bytes %d", result.Config.MaxBytes)
	}
	if got := strings.Join(result.LoadedFrom, ","); !strings.HasSuffix(got, "custom.yml") {
		t.Errorf("explicit config must be loaded last, got %s", got)
	}
}

func TestLoad_CLIConfigWins(t *testing.T) {
	t.Parallel()

	dir := newProject(t)
	writeFile(t, filepath.Join(dir, ".mdstream.yml"), "fast_path:\n  enabled: true\n")

	opts := isolated(dir)
	opts.CLIConfig = &config.Config{
		FastPath: config.FastPathConfig{Enabled: config.Bool(false)},
		Chunk:    16,
		Format:   config.FormatJSON,
	}

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.FastPathEnabled() {
		t.Error("CLI flag must disable the fast path")
	}
	if result.Config.Chunk != 16 || result.Config.Format != config.FormatJSON {
		t.Errorf("CLI-only settings lost: chunk=%d format=%q", result.Config.Chunk, result.Config.Format)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown flavor", "flavor: rst\n", "invalid flavor"},
		{"unknown key", "flavour: gfm\n", "flavour"},
		{"window order", "incremental:\n  base_window: 6\n  complex_window: 4\n", "complex_window"},
		{"negative max bytes", "max_bytes: -1\n", "max_bytes"},
		{"bad log level", "log_level: loud\n", "invalid log level"},
		{"malformed yaml", "incremental: [\n", "parse yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := newProject(t)
			writeFile(t, filepath.Join(dir, ".mdstream.yml"), tt.content)

			_, err := Load(context.Background(), isolated(dir))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MergedWindowOrderIsValidated(t *testing.T) {
	t.Parallel()

	dir := newProject(t)
	// Valid on its own, but larger than the default complex window.
	writeFile(t, filepath.Join(dir, ".mdstream.yml"), "incremental:\n  base_window: 7\n")

	_, err := Load(context.Background(), isolated(dir))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "incremental.complex_window" {
		t.Errorf("unexpected field %q", verr.Field)
	}
}

func TestLoad_WarnsWhenOnlyFullParsesRemain(t *testing.T) {
	t.Parallel()

	dir := newProject(t)
	writeFile(t, filepath.Join(dir, ".mdstream.yml"),
		"incremental:\n  enabled: false\nfast_path:\n  enabled: false\n")

	result, err := Load(context.Background(), isolated(dir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("expected one warning, got %v", result.Warnings)
	}
}

func TestLoad_Environment(t *testing.T) {
	dir := newProject(t)
	writeFile(t, filepath.Join(dir, ".mdstream.yml"), "flavor: gfm\n")

	t.Setenv("MDSTREAM_FLAVOR", "commonmark")
	t.Setenv("MDSTREAM_FAST_PATH_ENABLED", "false")
	t.Setenv("MDSTREAM_INCREMENTAL_OPEN_CONSTRUCT_WINDOW", "12")
	t.Setenv("MDSTREAM_HIGHLIGHT_CACHE_SIZE", "32")

	opts := isolated(dir)
	opts.IgnoreEnv = false

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := result.Config
	if cfg.Flavor != config.FlavorCommonMark {
		t.Errorf("environment must override files, got flavor %q", cfg.Flavor)
	}
	if cfg.FastPathEnabled() {
		t.Error("MDSTREAM_FAST_PATH_ENABLED=false ignored")
	}
	if cfg.Incremental.OpenConstructWindow != 12 {
		t.Errorf("expected open construct window 12, got %d", cfg.Incremental.OpenConstructWindow)
	}
	if cfg.Highlight.CacheSize != 32 {
		t.Errorf("expected cache size 32, got %d", cfg.Highlight.CacheSize)
	}
}

func TestLoadFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bool", "MDSTREAM_INCREMENTAL_ENABLED", "maybe"},
		{"int", "MDSTREAM_MAX_BYTES", "lots"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			err := LoadFromEnv(config.NewConfig())
			if err == nil || !strings.Contains(err.Error(), tt.key) {
				t.Errorf("expected error naming %s, got %v", tt.key, err)
			}
		})
	}
}

func TestListEnvVars(t *testing.T) {
	t.Parallel()

	vars := ListEnvVars()
	if len(vars) != len(envMappings) {
		t.Fatalf("expected %d variables, got %d", len(envMappings), len(vars))
	}
	for i := 1; i < len(vars); i++ {
		if vars[i-1].Name >= vars[i].Name {
			t.Errorf("variables not sorted: %s before %s", vars[i-1].Name, vars[i].Name)
		}
	}
	if got := GetEnvVarName("highlight.cache_size"); got != "MDSTREAM_HIGHLIGHT_CACHE_SIZE" {
		t.Errorf("GetEnvVarName() = %q", got)
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()

	base := config.NewConfig()
	override := &config.Config{
		Incremental: config.IncrementalConfig{Enabled: config.Bool(false), SuffixScanBytes: 512},
		Highlight:   config.HighlightConfig{DetectLanguage: config.Bool(false)},
		Verify:      true,
	}

	merged := merge(base, override)

	if merged.IncrementalEnabled() || merged.DetectLanguage() {
		t.Error("false pointers in the override must win")
	}
	if merged.Incremental.SuffixScanBytes != 512 {
		t.Errorf("expected suffix scan bytes 512, got %d", merged.Incremental.SuffixScanBytes)
	}
	if merged.Incremental.BaseWindow != config.DefaultBaseWindow {
		t.Errorf("zero values must not override, got base window %d", merged.Incremental.BaseWindow)
	}
	if !merged.Verify {
		t.Error("verify lost")
	}
	if !base.IncrementalEnabled() {
		t.Error("merge modified its base")
	}

	*override.Incremental.Enabled = true
	if merged.IncrementalEnabled() {
		t.Error("merged config shares pointers with the override")
	}
}

func TestMergeAll(t *testing.T) {
	t.Parallel()

	if MergeAll() != nil {
		t.Error("MergeAll() of nothing must be nil")
	}

	got := MergeAll(
		config.NewConfig(),
		&config.Config{MaxBytes: 1},
		nil,
		&config.Config{MaxBytes: 2, LogLevel: "debug"},
	)
	if got.MaxBytes != 2 || got.LogLevel != "debug" {
		t.Errorf("later configs must win: max_bytes=%d log_level=%q", got.MaxBytes, got.LogLevel)
	}
}

func TestWriteTemplate(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".mdstream.yml")

	if err := WriteTemplate(context.Background(), path, false); err != nil {
		t.Fatalf("WriteTemplate() error = %v", err)
	}
	if _, err := LoadFile(path); err != nil {
		t.Fatalf("template does not load: %v", err)
	}

	if err := WriteTemplate(context.Background(), path, false); !errors.Is(err, ErrConfigExists) {
		t.Errorf("expected ErrConfigExists, got %v", err)
	}
	if err := WriteTemplate(context.Background(), path, true); err != nil {
		t.Errorf("forced write failed: %v", err)
	}
}

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	err := &ValidationError{Field: "flavor", Message: "bad", FilePath: "x.yml"}
	if err.Error() != "x.yml: flavor: bad" {
		t.Errorf("Error() = %q", err.Error())
	}
}
