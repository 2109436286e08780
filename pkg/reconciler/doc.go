// Package reconciler points local service hostnames at localhost or at a
// remote environment.
//
// A run first builds a Plan and then applies it:
//
//	local:   auth.local.dev -> 127.0.0.1, dependents get the port read from
//	         the service's own config
//	dev:     auth.local.dev -> address of instance auth.dev, dependents get
//	         the default port
//
// Services lacking a config path, a port property or dependent locations
// only get their host entry; the port step is recorded as skipped. A
// service without a matching instance fails the whole plan before
// anything is written.
package reconciler
