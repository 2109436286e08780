/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package defaults

import "time"

// Instance directory.
const (
	Region            = "us-east-1"
	OwnerTagKey       = "CostOwner"
	EnvironmentTagKey = "env"
	ServiceTagKey     = "service"

	// DescribeInstancesTimeout bounds the single EC2 call of a run.
	DescribeInstancesTimeout = 30 * time.Second
)

// Host entries.
const (
	LocalhostIP     = "127.0.0.1"
	LocalhostSuffix = "local.dev"
	DefaultPort     = 80
)

// OwnerTagValues returns the owner tag values instances must carry.
func OwnerTagValues() []string {
	return []string{"WebApp", "DM"}
}

// Environments returns the environment tag values and their aliases.
func Environments() map[string]string {
	return map[string]string{
		"fn-dev":     "dev",
		"fn-staging": "staging",
	}
}
