/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package status reports which environment each configured service
// currently points at, inferred from the hosts file.
package status

import (
	"sort"
	"strings"

	"github.com/NVIDIA/devhosts/pkg/config"
	"github.com/NVIDIA/devhosts/pkg/hosts"
)

// EnvironmentUnknown is reported when no environment can be inferred.
const EnvironmentUnknown = "unknown"

// ServiceStatus is the current target of one configured service.
type ServiceStatus struct {
	Name        string `json:"name" yaml:"name"`
	Address     string `json:"address" yaml:"address"`
	Environment string `json:"environment" yaml:"environment"`
}

// Report is the status of every configured service present in the hosts
// file, sorted by name.
type Report []ServiceStatus

// Headers implements serializer.Tabular.
func (r Report) Headers() []string {
	return []string{"NAME", "ADDRESS", "ENVIRONMENT"}
}

// Rows implements serializer.Tabular.
func (r Report) Rows() [][]string {
	rows := make([][]string, 0, len(r))
	for _, s := range r {
		rows = append(rows, []string{s.Name, s.Address, s.Environment})
	}
	return rows
}

// Build reports the hosts file entries named <service>.<localhostSuffix>
// for the services in cfg.
//
// The environment of an entry pointing at the loopback address is local.
// Otherwise it is inferred from another entry sharing its address: entries
// under the local suffix are ignored, an entry named <service>.<alias> is
// preferred, and failing that the first one in file order is used. The
// chosen entry's name suffix is matched against the configured aliases.
func Build(entries []hosts.Entry, cfg *config.Config) Report {
	wanted := make(map[string]string, len(cfg.LocalServices))
	for _, s := range cfg.LocalServices {
		wanted[cfg.LocalHostname(s.Name)] = s.Name
	}

	localSuffix := "." + cfg.LocalhostSuffix
	aliases := cfg.Aliases()

	report := Report{}
	for _, e := range entries {
		service, ok := wanted[e.Name]
		if !ok {
			continue
		}
		report = append(report, ServiceStatus{
			Name:        e.Name,
			Address:     e.Address,
			Environment: infer(service, e, entries, cfg.LocalhostIP, localSuffix, aliases),
		})
	}

	sort.SliceStable(report, func(i, j int) bool {
		return report[i].Name < report[j].Name
	})
	return report
}

// Of reads the hosts file and builds the report.
func Of(f hosts.File, cfg *config.Config) (Report, error) {
	entries, err := f.Entries()
	if err != nil {
		return nil, err
	}
	return Build(entries, cfg), nil
}

func infer(service string, e hosts.Entry, entries []hosts.Entry, loopback, localSuffix string, aliases []string) string {
	if e.Address == loopback {
		return config.EnvironmentLocal
	}

	var first *hosts.Entry
	for i := range entries {
		c := &entries[i]
		if c.Name == e.Name || c.Address != e.Address || strings.HasSuffix(c.Name, localSuffix) {
			continue
		}
		for _, alias := range aliases {
			if c.Name == service+"."+alias {
				return alias
			}
		}
		if first == nil {
			first = c
		}
	}
	if first == nil {
		return EnvironmentUnknown
	}

	for _, alias := range aliases {
		if strings.HasSuffix(first.Name, "."+alias) {
			return alias
		}
	}
	return EnvironmentUnknown
}
