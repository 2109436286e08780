/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package reconciler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/NVIDIA/devhosts/pkg/config"
	cnserrors "github.com/NVIDIA/devhosts/pkg/errors"
	"github.com/NVIDIA/devhosts/pkg/hosts"
	"github.com/NVIDIA/devhosts/pkg/instances"
	"github.com/NVIDIA/devhosts/pkg/ports"
)

const skipReason = "missing configPath, portProperty or locations"

// PortRewriter reads a service port and writes it to dependent locations.
type PortRewriter interface {
	ReadPort(configPath, property string) (ports.Value, error)
	SetLocationPort(loc config.Location, v ports.Value) error
}

// Reconciler plans and applies host-file and port changes.
type Reconciler struct {
	cfg      *config.Config
	hosts    hosts.File
	lister   instances.Lister
	rewriter PortRewriter
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLister sets the instance lister used for remote environments.
func WithLister(l instances.Lister) Option {
	return func(r *Reconciler) {
		r.lister = l
	}
}

// WithRewriter replaces the port rewriter.
func WithRewriter(pr PortRewriter) Option {
	return func(r *Reconciler) {
		r.rewriter = pr
	}
}

// New returns a Reconciler editing hostsFile. The port rewriter defaults to
// ports.New(cfg.BaseRepositoryPath).
func New(cfg *config.Config, hostsFile hosts.File, opts ...Option) *Reconciler {
	r := &Reconciler{
		cfg:      cfg,
		hosts:    hostsFile,
		rewriter: ports.New(cfg.BaseRepositoryPath),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Plan computes the changes pointing services at env. It reads configs
// and, for remote environments, lists instances, but writes nothing.
func (r *Reconciler) Plan(ctx context.Context, env string, services []config.ServiceConfig) (*Plan, error) {
	if env == config.EnvironmentLocal {
		return r.planLocal(services)
	}
	return r.planRemote(ctx, env, services)
}

func (r *Reconciler) planLocal(services []config.ServiceConfig) (*Plan, error) {
	slog.Info("setting local services to localhost", "services", len(services))

	p := &Plan{Environment: config.EnvironmentLocal}
	for _, s := range services {
		p.Mutations = append(p.Mutations, Mutation{
			Service: s.Name,
			Name:    r.cfg.LocalHostname(s.Name),
			Address: r.cfg.LocalhostIP,
		})

		if !s.CanModifyPorts() {
			p.skip(s.Name)
			continue
		}

		port, err := r.rewriter.ReadPort(s.ConfigPath, s.PortProperty)
		if err != nil {
			return nil, cnserrors.WrapWithContext(cnserrors.CodeOf(err), "failed to read service port", err,
				map[string]any{"service": s.Name})
		}
		p.addPortUpdates(s, port)
	}
	return p, nil
}

func (r *Reconciler) planRemote(ctx context.Context, env string, services []config.ServiceConfig) (*Plan, error) {
	if r.lister == nil {
		return nil, cnserrors.New(cnserrors.ErrCodeInternal, "no instance lister configured")
	}

	slog.Info("retrieving instances")
	list, err := r.lister.ListInstances(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("setting local services to environment addresses", "environment", env, "services", len(services))

	p := &Plan{Environment: env}
	for _, s := range services {
		key := s.Name + "." + env
		inst, ok := instances.Find(list, key)
		if !ok {
			return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeNotFound, "no instance found", nil,
				map[string]any{"service": s.Name, "instance": key})
		}

		p.Mutations = append(p.Mutations, Mutation{
			Service: s.Name,
			Name:    r.cfg.LocalHostname(s.Name),
			Address: inst.Address,
		})

		if !s.CanModifyPorts() {
			p.skip(s.Name)
			continue
		}
		p.addPortUpdates(s, ports.IntValue(r.cfg.DefaultPort))
	}
	return p, nil
}

// PlanUpdate computes the changes writing every discovered instance as
// <name> -> <address>.
func (r *Reconciler) PlanUpdate(ctx context.Context) (*Plan, error) {
	if r.lister == nil {
		return nil, cnserrors.New(cnserrors.ErrCodeInternal, "no instance lister configured")
	}

	slog.Info("retrieving instances")
	list, err := r.lister.ListInstances(ctx)
	if err != nil {
		return nil, err
	}

	p := &Plan{}
	for _, inst := range list {
		name := strings.TrimSpace(inst.Name)
		p.Mutations = append(p.Mutations, Mutation{
			Service: name,
			Name:    name,
			Address: strings.TrimSpace(inst.Address),
		})
	}
	return p, nil
}

// Apply writes the host mutations, saves the hosts file once and then
// rewrites the dependent configs in plan order. It stops at the first
// error; changes already written stay in place.
func (r *Reconciler) Apply(p *Plan) error {
	for _, s := range p.Skipped {
		slog.Warn("cannot modify ports, please check config", "service", s.Service)
	}

	if len(p.Mutations) > 0 {
		slog.Info("writing to hosts file", "entries", len(p.Mutations))
		for _, m := range p.Mutations {
			if err := r.hosts.Set(m.Address, m.Name); err != nil {
				return err
			}
		}
		if err := r.hosts.Save(); err != nil {
			return err
		}
	}

	for _, u := range p.PortUpdates {
		slog.Info("setting port", "service", u.Service, "location", u.Location, "port", u.Port.String())
		loc := config.Location{Name: u.Location, ConfigPath: u.ConfigPath, PortProperty: u.Property}
		if err := r.rewriter.SetLocationPort(loc, u.Port); err != nil {
			return fmt.Errorf("failed to set port of %s in %s: %w", u.Service, u.Location, err)
		}
	}
	return nil
}

// SetHosts plans the changes for env and applies them unless dryRun.
func (r *Reconciler) SetHosts(ctx context.Context, env string, services []config.ServiceConfig, dryRun bool) (*Plan, error) {
	p, err := r.Plan(ctx, env, services)
	if err != nil {
		return nil, err
	}
	if dryRun {
		return p, nil
	}
	return p, r.Apply(p)
}

// UpdateHosts plans the update-all changes and applies them unless dryRun.
func (r *Reconciler) UpdateHosts(ctx context.Context, dryRun bool) (*Plan, error) {
	p, err := r.PlanUpdate(ctx)
	if err != nil {
		return nil, err
	}
	if dryRun {
		return p, nil
	}
	return p, r.Apply(p)
}

func (p *Plan) skip(service string) {
	p.Skipped = append(p.Skipped, Skip{Service: service, Reason: skipReason})
}

func (p *Plan) addPortUpdates(s config.ServiceConfig, port ports.Value) {
	for _, loc := range s.Locations {
		p.PortUpdates = append(p.PortUpdates, PortUpdate{
			Service:    s.Name,
			Location:   loc.Name,
			ConfigPath: loc.ConfigPath,
			Property:   loc.PortProperty,
			Port:       port,
		})
	}
}
