package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cnserrors "github.com/NVIDIA/devhosts/pkg/errors"
)

const testYAML = `
baseRepositoryPath: /src
localServices:
  - name: auth
    configPath: /auth/config.json
    portProperty: server.port
    locations:
      - name: web
        configPath: /web/config.json
        portProperty: services.auth.port
  - name: billing
`

const testJSON = `{
  "baseRepositoryPath": "/src",
  "environments": {"fn-qa": "qa"},
  "defaultPort": 8080,
  "localServices": [
    {"name": "auth"},
    {"name": "search"}
  ]
}`

func TestParse_YAMLFillsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(testYAML), ".yaml")
	require.NoError(t, err)

	assert.Equal(t, "/src", cfg.BaseRepositoryPath)
	assert.Equal(t, []string{"auth", "billing"}, cfg.ServiceNames())
	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, "local.dev", cfg.LocalhostSuffix)
	assert.Equal(t, "127.0.0.1", cfg.LocalhostIP)
	assert.Equal(t, 80, cfg.DefaultPort)
	assert.Equal(t, []string{"dev", "staging"}, cfg.Aliases())
	assert.Equal(t, []string{"fn-dev", "fn-staging"}, cfg.EnvironmentCodes())

	require.Len(t, cfg.LocalServices[0].Locations, 1)
	assert.Equal(t, "services.auth.port", cfg.LocalServices[0].Locations[0].PortProperty)
}

func TestParse_JSONReplacesEnvironmentTable(t *testing.T) {
	cfg, err := Parse([]byte(testJSON), ".JSON")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"fn-qa": "qa"}, cfg.Environments)
	assert.Equal(t, 8080, cfg.DefaultPort)
	assert.Equal(t, []string{"qa", "local"}, cfg.SupportedEnvironments())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed yaml", "localServices: ["},
		{"missing name", "localServices:\n  - configPath: /x.json\n"},
		{"duplicate name", "localServices:\n  - name: a\n  - name: a\n"},
		{"location without property", "localServices:\n  - name: a\n    locations:\n      - name: web\n        configPath: /w.json\n"},
		{"local alias", "environments:\n  fn-local: local\n"},
		{"port out of range", "defaultPort: 70000\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), ".yaml")
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "development.json")
	require.NoError(t, os.WriteFile(path, []byte(testJSON), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"auth", "search"}, cfg.ServiceNames())

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, cnserrors.ErrCodeNotFound, cnserrors.CodeOf(err))
}

func TestResolvePath(t *testing.T) {
	t.Setenv(ConfigPathEnv, "")
	assert.Equal(t, DefaultConfigPath, ResolvePath(""))

	t.Setenv(ConfigPathEnv, "/etc/devhosts.yaml")
	assert.Equal(t, "/etc/devhosts.yaml", ResolvePath(" "))
	assert.Equal(t, "explicit.yaml", ResolvePath("explicit.yaml"))
}

func TestParseEnvironment(t *testing.T) {
	cfg := Default()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"dev", "dev", false},
		{"STAGING", "staging", false},
		{"Local", "local", false},
		{"prod", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := cfg.ParseEnvironment(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEnvironment(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestServicesKeepsConfigOrder(t *testing.T) {
	cfg, err := Parse([]byte(testYAML), ".yaml")
	require.NoError(t, err)

	got := cfg.Services([]string{"billing", "auth", "unknown"})
	require.Len(t, got, 2)
	assert.Equal(t, "auth", got[0].Name)
	assert.Equal(t, "billing", got[1].Name)
}

func TestCanModifyPorts(t *testing.T) {
	loc := []Location{{Name: "web", ConfigPath: "/web.json", PortProperty: "p"}}

	assert.True(t, ServiceConfig{Name: "a", ConfigPath: "/a.json", PortProperty: "p", Locations: loc}.CanModifyPorts())
	assert.False(t, ServiceConfig{Name: "a", ConfigPath: "/a.json", PortProperty: "p"}.CanModifyPorts())
	assert.False(t, ServiceConfig{Name: "a", PortProperty: "p", Locations: loc}.CanModifyPorts())
	assert.False(t, ServiceConfig{Name: "a", ConfigPath: "/a.json", Locations: loc}.CanModifyPorts())
}

func TestApplyOptions(t *testing.T) {
	cfg := Default().Apply(
		WithHostsFile("/tmp/hosts"),
		WithRegion(""),
		WithProfile("dev-admin"),
		WithBaseRepositoryPath("/code"),
	)

	assert.Equal(t, "/tmp/hosts", cfg.HostsFile)
	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, "dev-admin", cfg.Profile)
	assert.Equal(t, "/code", cfg.BaseRepositoryPath)
	assert.Equal(t, "auth.local.dev", cfg.LocalHostname("auth"))
}
