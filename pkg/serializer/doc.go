/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package serializer writes command results as a table, JSON or YAML.
//
// Values implementing Tabular render as a bordered table with their own
// header row. Any other value is flattened into FIELD/VALUE rows:
//
//	[0].Name     auth
//	[0].Address  127.0.0.1
package serializer
