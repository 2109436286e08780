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

// Package instances discovers remote service instances on EC2.
//
// # Discovery
//
// Client.ListInstances issues one DescribeInstances call filtered on two tags:
//
//	tag:CostOwner in [WebApp, DM]
//	tag:env       in [fn-dev, fn-staging]
//
// Each reservation is represented by its first instance only. Reservations
// whose first instance has no public IPv4 address are dropped.
//
// # Naming
//
// Mapper.Map names an instance <service>.<alias> from its "service" tag and
// the alias of its "env" tag:
//
//	service=auth, env=fn-dev  ->  auth.dev
//
// A missing tag is a precondition failure (*TagError, matching
// ErrMissingTag) and aborts the listing.
//
// # Errors
//
// Provider failures are returned as structured errors: authentication
// problems carry ErrCodeUnauthorized, deadlines ErrCodeTimeout, anything else
// ErrCodeUnavailable. Nothing is retried.
package instances
