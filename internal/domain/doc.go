// Package domain holds the sentinel errors and ValidationError that every
// layer wraps and the HTTP adapter maps to status codes. Caller identity
// lives in domain/session.
package domain
