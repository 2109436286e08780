// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cli implements the command-line interface for the devhosts tool.
//
// # Overview
//
// devhosts points the local development hostnames of a set of services
// (<service>.local.dev by default) at a shared environment on EC2 or at the
// loopback address, and keeps the port settings of dependent services in
// sync. It is meant for developers running a subset of services locally.
//
// # Commands
//
// status - Show the current targets (default command):
//
//	devhosts [status] [--format table|json|yaml] [--output FILE]
//
// Lists the configured services present in the hosts file, sorted by name,
// with the environment inferred from other entries sharing their address.
//
// set-hosts (s) - Point services at an environment:
//
//	devhosts set-hosts -e staging
//	devhosts s -e local --service auth --service web
//	devhosts set-hosts -e dev --service auth --dry-run
//
// Without --service an interactive checklist asks which services to change.
// Local mode writes the loopback address and copies each service's own port
// into its dependent configs; remote modes look up <service>.<env> among the
// running instances and write the default port.
//
// update-hosts (u) - Write every discovered instance:
//
//	devhosts update-hosts [--dry-run]
//
// # Global Flags
//
//	--config, -c     Config file (default: $DEVHOSTS_CONFIG or config/development.yaml)
//	--hosts-file     Hosts file to edit (default: the OS hosts file)
//	--aws-profile    Shared AWS config profile
//	--aws-region     AWS region (default: us-east-1)
//	--timeout        Abort after this duration
//	--debug          Enable debug logging
//	--log-json       Output logs in JSON format
//	--version, -v    Show version information
//
// # Environment Variables
//
//	DEVHOSTS_CONFIG  Config file path
//	LOG_LEVEL        Set logging verbosity (debug, info, warn, error)
//	AWS_PROFILE      Standard AWS SDK variables are honoured
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, execution failure)
//	2  Selection cancelled, context canceled or timeout
//
// # Architecture
//
// The CLI uses the urfave/cli/v3 framework and delegates to:
//   - pkg/config - Static configuration
//   - pkg/instances - EC2 instance directory
//   - pkg/reconciler - Host-file and port changes
//   - pkg/status - Status report
//   - pkg/selector - Interactive service selection
//   - pkg/serializer - Output formatting
//   - pkg/logging - Structured logging
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/devhosts/pkg/cli.version=1.0.0'"
package cli
