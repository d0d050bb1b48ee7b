// Package actions is the catalog of actions served by this service. It
// defines the action and result types, their handlers, and the dispatch
// Module that binds them. Handlers are resolved from the samber/do container
// on every dispatch.
package actions
