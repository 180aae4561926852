// Package apiclient provides the HTTP client for the fitroom daemon REST API.
//
// It wraps the control endpoints (generations, variants, status, health, and
// the log stream) behind typed methods that share bearer-token auth and error
// decoding. Responses reuse the api package DTOs so CLI rendering works the
// same whether records arrive from the daemon or from a direct ledger session.
//
// Use IsUnavailable to detect an unreachable daemon and fall back to direct
// store access instead of surfacing transport errors to the user.
package apiclient
