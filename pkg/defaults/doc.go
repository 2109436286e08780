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

// Package defaults provides centralized configuration constants for devhosts.
//
// This package defines the values a config file may override (tag keys,
// region, loopback address, local suffix, default port) and the timeouts
// applied to outbound calls. Centralizing them keeps the config defaults
// and the components that fall back on them in agreement.
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/NVIDIA/devhosts/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.DescribeInstancesTimeout)
//	defer cancel()
package defaults
