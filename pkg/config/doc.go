/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package config loads the static service configuration used by devhosts.
//
// The file is YAML or JSON (selected by extension) and lists the local
// services, the dependent repository locations whose configs carry their
// ports, and optional overrides of the environment table and cloud tags:
//
//	baseRepositoryPath: /Users/me/src
//	localhostSuffix: local.dev
//	localServices:
//	  - name: auth
//	    configPath: /auth/config.json
//	    portProperty: server.port
//	    locations:
//	      - name: web
//	        configPath: /web/config.json
//	        portProperty: services.auth.port
//	  - name: billing
//
// Unset optional fields take the values of Default. The resulting Config is
// passed explicitly to the reconciler, the instance client and the status
// reporter.
package config
