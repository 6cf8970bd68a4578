package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("expected logging defaults, got level %q", cfg.Logging.Level)
		}
	})

	t.Run("production keeps debug false", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr string
	}{
		{"valid", ServiceConfig{Name: "svc", Environment: "staging"}, ""},
		{"missing name", ServiceConfig{Environment: "production"}, "config.name is required"},
		{"invalid environment", ServiceConfig{Name: "svc", Environment: "qa"}, "config.environment must be one of"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logging.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

type testSection struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type testConfig struct {
	ServiceConfig `mapstructure:",squash"`
	Toolchain     testSection `mapstructure:"toolchain"`
	Transcription struct {
		OpenAI struct {
			APIKey string `mapstructure:"api_key"`
		} `mapstructure:"openai"`
	} `mapstructure:"transcription"`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
name: voiceingest
environment: staging
toolchain:
  path: /opt/ffmpeg/bin/ffmpeg
  timeout: 7s
`)

	var cfg testConfig
	if err := LoadConfig("voiceingest", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "voiceingest" || cfg.Environment != "staging" {
		t.Errorf("unexpected service config %+v", cfg.ServiceConfig)
	}
	if cfg.Toolchain.Path != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("unexpected toolchain path %q", cfg.Toolchain.Path)
	}
	if cfg.Toolchain.Timeout != 7*time.Second {
		t.Errorf("expected 7s timeout, got %v", cfg.Toolchain.Timeout)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
name: voiceingest
toolchain:
  path: /from/file
transcription:
  openai:
    api_key: ""
`)
	t.Setenv("TOOLCHAIN_PATH", "/from/env")
	t.Setenv("TRANSCRIPTION_OPENAI_API_KEY", "sk-test")

	var cfg testConfig
	if err := LoadConfig("voiceingest", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Toolchain.Path != "/from/env" {
		t.Errorf("expected env override, got %q", cfg.Toolchain.Path)
	}
	if cfg.Transcription.OpenAI.APIKey != "sk-test" {
		t.Errorf("expected nested env binding, got %q", cfg.Transcription.OpenAI.APIKey)
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yml", "name: voiceingest\n")
	envPath := writeFile(t, dir, ".env", "TOOLCHAIN_PATH=/from/dotenv\n")
	t.Cleanup(func() { os.Unsetenv("TOOLCHAIN_PATH") })

	var cfg testConfig
	if err := LoadConfig("voiceingest", &cfg, WithConfigFile(cfgPath), WithEnvFile(envPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Toolchain.Path != "/from/dotenv" {
		t.Errorf("expected .env value, got %q", cfg.Toolchain.Path)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg testConfig
	if err := LoadConfig("nonexistent", &cfg, WithConfigFile("/nonexistent/path.yml")); err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool  { return m.files[path] }
func (m *mockFS) LoadEnv(_ string) error   { return nil }

func TestResolverSearchOrder(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/voiceingest/config.yml": true,
		"./config.yml":                 true,
		".env":                         true,
	}}
	r := &Resolver{FileSystem: fs}
	files := r.ResolveFiles("voiceingest", LoaderConfig{})
	if files.ConfigFile != "./cmd/voiceingest/config.yml" {
		t.Errorf("expected cmd config first, got %q", files.ConfigFile)
	}
	if files.EnvFile != ".env" {
		t.Errorf("expected .env, got %q", files.EnvFile)
	}
}

func TestResolverExplicitPathsWin(t *testing.T) {
	r := &Resolver{FileSystem: &mockFS{files: map[string]bool{"./config.yml": true}}}
	files := r.ResolveFiles("svc", LoaderConfig{ConfigFile: "/etc/svc.yml", EnvFile: "/etc/svc.env"})
	if files.ConfigFile != "/etc/svc.yml" || files.EnvFile != "/etc/svc.env" {
		t.Errorf("explicit paths should win, got %+v", files)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	got := envKeyVariants("TRANSCRIPTION_OPENAI_API_KEY")
	for _, want := range []string{
		"transcription_openai_api_key",
		"transcription.openai.api_key",
		"transcription.openai_api_key",
	} {
		if !slices.Contains(got, want) {
			t.Errorf("expected variant %q in %v", want, got)
		}
	}
	if got := envKeyVariants("PATH"); len(got) != 1 || got[0] != "path" {
		t.Errorf("single-segment key should map to itself, got %v", got)
	}
}

type providersConfig struct {
	Transcription struct {
		Provider  string                    `mapstructure:"provider"`
		Providers map[string]map[string]any `mapstructure:"providers"`
	} `mapstructure:"transcription"`
}

func TestLoadConfigEnvIntoProviderMap(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
transcription:
  provider: openai
  providers:
    openai:
      model: whisper-1
    whisper:
      base_url: http://localhost:9000
`)
	t.Setenv("TRANSCRIPTION_PROVIDERS_OPENAI_API_KEY", "sk-env")

	var cfg providersConfig
	if err := LoadConfig("voiceingest", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	openai := cfg.Transcription.Providers["openai"]
	if openai["api_key"] != "sk-env" || openai["model"] != "whisper-1" {
		t.Errorf("unexpected openai options %v", openai)
	}
	if _, ok := cfg.Transcription.Providers["openai_api_key"]; ok {
		t.Error("scalar must not be added beside provider sections")
	}
}
