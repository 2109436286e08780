package reconciler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/devhosts/pkg/config"
	cnserrors "github.com/NVIDIA/devhosts/pkg/errors"
	"github.com/NVIDIA/devhosts/pkg/hosts"
	"github.com/NVIDIA/devhosts/pkg/instances"
)

type fakeLister struct {
	list  []instances.Instance
	err   error
	calls int
}

func (f *fakeLister) ListInstances(context.Context) ([]instances.Instance, error) {
	f.calls++
	return f.list, f.err
}

var authService = config.ServiceConfig{
	Name:         "auth",
	ConfigPath:   "/auth/config.json",
	PortProperty: "server.port",
	Locations: []config.Location{
		{Name: "web", ConfigPath: "/web/config.json", PortProperty: "services.auth.port"},
	},
}

var billingService = config.ServiceConfig{Name: "billing"}

// setup creates a repository tree with the auth and web configs.
func setup(t *testing.T) (*config.Config, string) {
	t.Helper()
	base := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(base, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	write("auth/config.json", `{"server":{"port":4000}}`)
	write("web/config.json", `{"services":{"auth":{"host":"auth.local.dev","port":80}}}`)

	cfg := config.Default()
	cfg.BaseRepositoryPath = base
	cfg.LocalServices = []config.ServiceConfig{authService, billingService}
	return cfg, base
}

func readWebConfig(t *testing.T, base string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(base, "web", "config.json"))
	require.NoError(t, err)
	return string(data)
}

func TestSetHosts_LocalEndToEnd(t *testing.T) {
	cfg, base := setup(t)
	hf := hosts.NewMemory(hosts.Entry{Name: "auth.local.dev", Address: "10.0.0.1"})
	lister := &fakeLister{}

	r := New(cfg, hf, WithLister(lister))
	plan, err := r.SetHosts(context.Background(), config.EnvironmentLocal, cfg.LocalServices, false)
	require.NoError(t, err)

	assert.Equal(t, 0, lister.calls, "local mode must not query the cloud")
	assert.Equal(t, []Mutation{
		{Service: "auth", Name: "auth.local.dev", Address: "127.0.0.1"},
		{Service: "billing", Name: "billing.local.dev", Address: "127.0.0.1"},
	}, plan.Mutations)
	require.Len(t, plan.PortUpdates, 1)
	assert.Equal(t, "4000", plan.PortUpdates[0].Port.String())
	assert.Equal(t, []Skip{{Service: "billing", Reason: skipReason}}, plan.Skipped)

	addr, ok := hf.Lookup("auth.local.dev")
	require.True(t, ok)
	assert.Equal(t, "127.0.0.1", addr)
	assert.Equal(t, 1, hf.Saves)

	assert.Equal(t, `{
  "services": {
    "auth": {
      "host": "auth.local.dev",
      "port": 4000
    }
  }
}
`, readWebConfig(t, base))
}

func TestSetHosts_LocalIsIdempotent(t *testing.T) {
	cfg, base := setup(t)
	r := New(cfg, hosts.NewMemory())

	_, err := r.SetHosts(context.Background(), config.EnvironmentLocal, []config.ServiceConfig{authService}, false)
	require.NoError(t, err)
	first := readWebConfig(t, base)

	_, err = r.SetHosts(context.Background(), config.EnvironmentLocal, []config.ServiceConfig{authService}, false)
	require.NoError(t, err)
	assert.Equal(t, first, readWebConfig(t, base))
}

func TestSetHosts_LocalMissingSourcePort(t *testing.T) {
	cfg, _ := setup(t)
	svc := authService
	svc.PortProperty = "server.missing"

	hf := hosts.NewMemory()
	_, err := New(cfg, hf).SetHosts(context.Background(), config.EnvironmentLocal, []config.ServiceConfig{svc}, false)
	require.Error(t, err)
	assert.Equal(t, cnserrors.ErrCodeNotFound, cnserrors.CodeOf(err))
	assert.Equal(t, 0, hf.Saves, "nothing is written when planning fails")
}

func TestSetHosts_Remote(t *testing.T) {
	cfg, base := setup(t)
	hf := hosts.NewMemory()
	lister := &fakeLister{list: []instances.Instance{
		{Name: "auth.staging", Address: "10.1.0.1"},
		{Name: "auth.dev", Address: "10.0.0.1"},
		{Name: "billing.dev", Address: "10.0.0.2"},
		{Name: "auth.dev", Address: "10.0.0.99"},
	}}

	plan, err := New(cfg, hf, WithLister(lister)).SetHosts(context.Background(), "dev", cfg.LocalServices, false)
	require.NoError(t, err)

	assert.Equal(t, 1, lister.calls)
	assert.Equal(t, "dev", plan.Environment)
	assert.Equal(t, []Mutation{
		{Service: "auth", Name: "auth.local.dev", Address: "10.0.0.1"},
		{Service: "billing", Name: "billing.local.dev", Address: "10.0.0.2"},
	}, plan.Mutations)
	require.Len(t, plan.PortUpdates, 1)
	assert.Equal(t, "80", plan.PortUpdates[0].Port.String())

	addr, _ := hf.Lookup("billing.local.dev")
	assert.Equal(t, "10.0.0.2", addr)
	assert.Contains(t, readWebConfig(t, base), `"port": 80`)
}

func TestPlan_RemoteIsDeterministic(t *testing.T) {
	cfg, _ := setup(t)
	lister := &fakeLister{list: []instances.Instance{
		{Name: "billing.staging", Address: "10.1.0.2"},
		{Name: "auth.staging", Address: "10.1.0.1"},
	}}
	r := New(cfg, hosts.NewMemory(), WithLister(lister))

	first, err := r.Plan(context.Background(), "staging", cfg.LocalServices)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := r.Plan(context.Background(), "staging", cfg.LocalServices)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSetHosts_RemoteMissingInstance(t *testing.T) {
	cfg, base := setup(t)
	before := readWebConfig(t, base)
	hf := hosts.NewMemory()
	lister := &fakeLister{list: []instances.Instance{{Name: "auth.dev", Address: "10.0.0.1"}}}

	_, err := New(cfg, hf, WithLister(lister)).SetHosts(context.Background(), "staging", cfg.LocalServices, false)
	require.Error(t, err)
	assert.Equal(t, cnserrors.ErrCodeNotFound, cnserrors.CodeOf(err))
	assert.Contains(t, err.Error(), "auth.staging")
	assert.Equal(t, 0, hf.Saves)
	assert.Equal(t, before, readWebConfig(t, base))
}

func TestSetHosts_RemoteListerError(t *testing.T) {
	cfg, _ := setup(t)
	boom := cnserrors.New(cnserrors.ErrCodeUnavailable, "describe instances failed")

	_, err := New(cfg, hosts.NewMemory(), WithLister(&fakeLister{err: boom})).
		SetHosts(context.Background(), "dev", cfg.LocalServices, false)
	assert.True(t, errors.Is(err, boom))

	_, err = New(cfg, hosts.NewMemory()).SetHosts(context.Background(), "dev", cfg.LocalServices, false)
	assert.Equal(t, cnserrors.ErrCodeInternal, cnserrors.CodeOf(err))
}

func TestSetHosts_DryRunWritesNothing(t *testing.T) {
	cfg, base := setup(t)
	before := readWebConfig(t, base)
	hf := hosts.NewMemory()

	plan, err := New(cfg, hf).SetHosts(context.Background(), config.EnvironmentLocal, cfg.LocalServices, true)
	require.NoError(t, err)
	assert.Len(t, plan.Mutations, 2)
	assert.Equal(t, 0, hf.Saves)
	assert.Equal(t, before, readWebConfig(t, base))
}

func TestUpdateHosts(t *testing.T) {
	cfg, _ := setup(t)
	hf := hosts.NewMemory(hosts.Entry{Name: "auth.dev", Address: "10.0.0.50"})
	lister := &fakeLister{list: []instances.Instance{
		{Name: " auth.dev ", Address: "10.0.0.1\n"},
		{Name: "web.staging", Address: "10.1.0.3"},
	}}

	plan, err := New(cfg, hf, WithLister(lister)).UpdateHosts(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, []Mutation{
		{Service: "auth.dev", Name: "auth.dev", Address: "10.0.0.1"},
		{Service: "web.staging", Name: "web.staging", Address: "10.1.0.3"},
	}, plan.Mutations)

	assert.Equal(t, []hosts.Entry{
		{Name: "auth.dev", Address: "10.0.0.1"},
		{Name: "web.staging", Address: "10.1.0.3"},
	}, hf.Saved())
}

func TestPlan_Rows(t *testing.T) {
	cfg, _ := setup(t)
	plan, err := New(cfg, hosts.NewMemory()).Plan(context.Background(), config.EnvironmentLocal, cfg.LocalServices)
	require.NoError(t, err)

	assert.Equal(t, []string{"SERVICE", "CHANGE", "TARGET", "VALUE"}, plan.Headers())
	assert.Equal(t, [][]string{
		{"auth", "host", "auth.local.dev", "127.0.0.1"},
		{"billing", "host", "billing.local.dev", "127.0.0.1"},
		{"auth", "port", "web:services.auth.port", "4000"},
		{"billing", "skipped", "", skipReason},
	}, plan.Rows())
}
