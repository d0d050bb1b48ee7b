// Package validators provides the session validators that guard secured
// actions: bearer-token verification, server-side session lookup, and
// expression-based policies evaluated over the resolved principal.
package validators
