// Package middleware provides the inbound request pipeline of the dispatch
// API. The server installs it in this order:
//
//	Recovery → RequestID → CorrelationID → OpenTelemetry → Credentials → Logging → Timeout → Handler
//
// Credentials runs before Logging so request logs can say how the caller
// authenticated. None of the middleware rejects a request for missing
// credentials; each action's session validator decides that.
package middleware
