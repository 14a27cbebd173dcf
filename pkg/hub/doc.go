// Package hub wraps the Hugging Face datasets-server and hub HTTP APIs.
//
// The client classifies every outcome into the typed errors of pkg/errors:
// transport failures and HTTP 429/500/502/503/504 are transient, any other
// non-2xx status or an undecodable body is permanent. Retry policy lives
// with the caller (pkg/fetch); this package performs exactly one request
// per call.
package hub
