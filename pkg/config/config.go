/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/devhosts/pkg/defaults"
	cnserrors "github.com/NVIDIA/devhosts/pkg/errors"
)

const (
	// EnvironmentLocal points services at the loopback address.
	EnvironmentLocal = "local"

	// DefaultConfigPath is used when neither --config nor DEVHOSTS_CONFIG is set.
	DefaultConfigPath = "config/development.yaml"

	// ConfigPathEnv names the environment variable overriding the config path.
	ConfigPathEnv = "DEVHOSTS_CONFIG"
)

// Location is a dependent repository whose config carries the port of a service.
type Location struct {
	Name         string `json:"name" yaml:"name"`
	ConfigPath   string `json:"configPath" yaml:"configPath"`
	PortProperty string `json:"portProperty" yaml:"portProperty"`
}

// ServiceConfig is a service that can be pointed at localhost or a remote environment.
type ServiceConfig struct {
	Name         string     `json:"name" yaml:"name"`
	ConfigPath   string     `json:"configPath,omitempty" yaml:"configPath,omitempty"`
	PortProperty string     `json:"portProperty,omitempty" yaml:"portProperty,omitempty"`
	Locations    []Location `json:"locations,omitempty" yaml:"locations,omitempty"`
}

// CanModifyPorts reports whether the service declares everything needed
// to propagate its port to dependent locations.
func (s ServiceConfig) CanModifyPorts() bool {
	return s.ConfigPath != "" && s.PortProperty != "" && len(s.Locations) > 0
}

// Config is the static configuration of a run. It is loaded once and
// passed explicitly to every component.
type Config struct {
	// BaseRepositoryPath is prepended verbatim to every configPath.
	BaseRepositoryPath string          `json:"baseRepositoryPath" yaml:"baseRepositoryPath"`
	LocalServices      []ServiceConfig `json:"localServices" yaml:"localServices"`

	// Environments maps raw environment tag values to aliases, e.g. fn-dev -> dev.
	Environments map[string]string `json:"environments,omitempty" yaml:"environments,omitempty"`

	Region            string   `json:"region,omitempty" yaml:"region,omitempty"`
	Profile           string   `json:"profile,omitempty" yaml:"profile,omitempty"`
	OwnerTagKey       string   `json:"ownerTagKey,omitempty" yaml:"ownerTagKey,omitempty"`
	OwnerTagValues    []string `json:"ownerTagValues,omitempty" yaml:"ownerTagValues,omitempty"`
	EnvironmentTagKey string   `json:"environmentTagKey,omitempty" yaml:"environmentTagKey,omitempty"`
	ServiceTagKey     string   `json:"serviceTagKey,omitempty" yaml:"serviceTagKey,omitempty"`

	LocalhostIP     string `json:"localhostIP,omitempty" yaml:"localhostIP,omitempty"`
	LocalhostSuffix string `json:"localhostSuffix,omitempty" yaml:"localhostSuffix,omitempty"`
	DefaultPort     int    `json:"defaultPort,omitempty" yaml:"defaultPort,omitempty"`

	// HostsFile is the hosts file to edit; empty selects the OS default.
	HostsFile string `json:"hostsFile,omitempty" yaml:"hostsFile,omitempty"`
}

// Default returns a Config with every optional field populated.
func Default() *Config {
	return &Config{
		Environments:      defaults.Environments(),
		Region:            defaults.Region,
		OwnerTagKey:       defaults.OwnerTagKey,
		OwnerTagValues:    defaults.OwnerTagValues(),
		EnvironmentTagKey: defaults.EnvironmentTagKey,
		ServiceTagKey:     defaults.ServiceTagKey,
		LocalhostIP:       defaults.LocalhostIP,
		LocalhostSuffix:   defaults.LocalhostSuffix,
		DefaultPort:       defaults.DefaultPort,
	}
}

// Option overrides a field of a loaded Config.
type Option func(*Config)

// WithHostsFile overrides the hosts file path when path is not empty.
func WithHostsFile(path string) Option {
	return func(c *Config) {
		if path != "" {
			c.HostsFile = path
		}
	}
}

// WithRegion overrides the cloud region when region is not empty.
func WithRegion(region string) Option {
	return func(c *Config) {
		if region != "" {
			c.Region = region
		}
	}
}

// WithProfile overrides the shared credentials profile when profile is not empty.
func WithProfile(profile string) Option {
	return func(c *Config) {
		if profile != "" {
			c.Profile = profile
		}
	}
}

// WithBaseRepositoryPath overrides the base repository path when path is not empty.
func WithBaseRepositoryPath(path string) Option {
	return func(c *Config) {
		if path != "" {
			c.BaseRepositoryPath = path
		}
	}
}

// Apply applies opts in order.
func (c *Config) Apply(opts ...Option) *Config {
	for _, o := range opts {
		o(c)
	}
	return c
}

// ResolvePath returns the config path to load: explicit, then
// DEVHOSTS_CONFIG, then DefaultConfigPath.
func ResolvePath(explicit string) string {
	if p := strings.TrimSpace(explicit); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(ConfigPathEnv)); p != "" {
		return p
	}
	return DefaultConfigPath
}

// Load reads a YAML or JSON config file, fills defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeNotFound, fmt.Sprintf("failed to read config %q", path), err)
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, fmt.Sprintf("failed to parse config %q", path), err)
	}
	return cfg, nil
}

// Parse decodes data and fills unset fields from Default. ext selects the
// decoder: ".json" uses JSON, anything else YAML.
func Parse(data []byte, ext string) (*Config, error) {
	cfg := &Config{}

	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) setDefaults() {
	d := Default()
	if len(c.Environments) == 0 {
		c.Environments = d.Environments
	}
	if c.Region == "" {
		c.Region = d.Region
	}
	if c.OwnerTagKey == "" {
		c.OwnerTagKey = d.OwnerTagKey
	}
	if len(c.OwnerTagValues) == 0 {
		c.OwnerTagValues = d.OwnerTagValues
	}
	if c.EnvironmentTagKey == "" {
		c.EnvironmentTagKey = d.EnvironmentTagKey
	}
	if c.ServiceTagKey == "" {
		c.ServiceTagKey = d.ServiceTagKey
	}
	if c.LocalhostIP == "" {
		c.LocalhostIP = d.LocalhostIP
	}
	if c.LocalhostSuffix == "" {
		c.LocalhostSuffix = d.LocalhostSuffix
	}
	if c.DefaultPort == 0 {
		c.DefaultPort = d.DefaultPort
	}
}

// Validate checks the fields every command relies on.
func (c *Config) Validate() error {
	if len(c.Environments) == 0 {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest, "environments must not be empty")
	}
	for code, alias := range c.Environments {
		if alias == "" || alias == EnvironmentLocal {
			return cnserrors.New(cnserrors.ErrCodeInvalidRequest,
				fmt.Sprintf("environment %q has invalid alias %q", code, alias))
		}
	}
	if c.LocalhostSuffix == "" {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest, "localhostSuffix must not be empty")
	}
	if c.LocalhostIP == "" {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest, "localhostIP must not be empty")
	}
	if c.DefaultPort <= 0 || c.DefaultPort > 65535 {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("defaultPort %d out of range", c.DefaultPort))
	}

	seen := make(map[string]struct{}, len(c.LocalServices))
	for i, s := range c.LocalServices {
		if strings.TrimSpace(s.Name) == "" {
			return cnserrors.New(cnserrors.ErrCodeInvalidRequest,
				fmt.Sprintf("localServices[%d]: name is required", i))
		}
		if _, dup := seen[s.Name]; dup {
			return cnserrors.New(cnserrors.ErrCodeInvalidRequest,
				fmt.Sprintf("localServices[%d]: duplicate service %q", i, s.Name))
		}
		seen[s.Name] = struct{}{}

		for j, l := range s.Locations {
			if l.ConfigPath == "" || l.PortProperty == "" {
				return cnserrors.New(cnserrors.ErrCodeInvalidRequest,
					fmt.Sprintf("localServices[%d].locations[%d]: configPath and portProperty are required", i, j))
			}
		}
	}
	return nil
}

// Aliases returns the sorted environment aliases.
func (c *Config) Aliases() []string {
	out := make([]string, 0, len(c.Environments))
	for _, alias := range c.Environments {
		out = append(out, alias)
	}
	sort.Strings(out)
	return out
}

// EnvironmentCodes returns the sorted raw environment tag values.
func (c *Config) EnvironmentCodes() []string {
	out := make([]string, 0, len(c.Environments))
	for code := range c.Environments {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// SupportedEnvironments returns the values accepted by set-hosts: every
// alias plus local.
func (c *Config) SupportedEnvironments() []string {
	return append(c.Aliases(), EnvironmentLocal)
}

// ParseEnvironment validates env case-insensitively and returns its canonical form.
func (c *Config) ParseEnvironment(env string) (string, error) {
	norm := strings.ToLower(strings.TrimSpace(env))
	for _, e := range c.SupportedEnvironments() {
		if e == norm {
			return e, nil
		}
	}
	return "", cnserrors.New(cnserrors.ErrCodeInvalidRequest,
		fmt.Sprintf("environment %q, supported values: %v", env, c.SupportedEnvironments()))
}

// ServiceNames returns the configured service names in config order.
func (c *Config) ServiceNames() []string {
	out := make([]string, 0, len(c.LocalServices))
	for _, s := range c.LocalServices {
		out = append(out, s.Name)
	}
	return out
}

// Services returns the configured services whose name is in names, in
// config order.
func (c *Config) Services(names []string) []ServiceConfig {
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}
	out := make([]ServiceConfig, 0, len(names))
	for _, s := range c.LocalServices {
		if _, ok := want[s.Name]; ok {
			out = append(out, s)
		}
	}
	return out
}

// LocalHostname returns the host entry name of a service, e.g. auth.local.dev.
func (c *Config) LocalHostname(service string) string {
	return service + "." + c.LocalhostSuffix
}
