/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package reconciler

import (
	"fmt"

	"github.com/NVIDIA/devhosts/pkg/ports"
)

// Mutation upserts one host entry.
type Mutation struct {
	Service string `json:"service" yaml:"service"`
	Name    string `json:"name" yaml:"name"`
	Address string `json:"address" yaml:"address"`
}

// PortUpdate rewrites the port property of one dependent location.
type PortUpdate struct {
	Service    string      `json:"service" yaml:"service"`
	Location   string      `json:"location" yaml:"location"`
	ConfigPath string      `json:"configPath" yaml:"configPath"`
	Property   string      `json:"property" yaml:"property"`
	Port       ports.Value `json:"port" yaml:"port"`
}

// Skip records a service whose ports were left untouched.
type Skip struct {
	Service string `json:"service" yaml:"service"`
	Reason  string `json:"reason" yaml:"reason"`
}

// Plan is the ordered set of changes of one run.
type Plan struct {
	Environment string       `json:"environment,omitempty" yaml:"environment,omitempty"`
	Mutations   []Mutation   `json:"mutations" yaml:"mutations"`
	PortUpdates []PortUpdate `json:"portUpdates,omitempty" yaml:"portUpdates,omitempty"`
	Skipped     []Skip       `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Headers implements serializer.Tabular.
func (p *Plan) Headers() []string {
	return []string{"SERVICE", "CHANGE", "TARGET", "VALUE"}
}

// Rows implements serializer.Tabular.
func (p *Plan) Rows() [][]string {
	rows := make([][]string, 0, len(p.Mutations)+len(p.PortUpdates)+len(p.Skipped))
	for _, m := range p.Mutations {
		rows = append(rows, []string{m.Service, "host", m.Name, m.Address})
	}
	for _, u := range p.PortUpdates {
		rows = append(rows, []string{u.Service, "port", fmt.Sprintf("%s:%s", u.Location, u.Property), u.Port.String()})
	}
	for _, s := range p.Skipped {
		rows = append(rows, []string{s.Service, "skipped", "", s.Reason})
	}
	return rows
}
