// Package ports declares the interfaces the HTTP adapter depends on. The
// Dispatcher port is satisfied by the application's dispatcher; SessionStore
// and the health interfaces are satisfied by adapters and platform packages
// and wired together in cmd/server.
package ports
