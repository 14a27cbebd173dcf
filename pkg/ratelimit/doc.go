// Package ratelimit provides a token bucket limiter shared across fetch
// workers. It caps aggregate request rate toward the datasets-server in
// addition to the per-fetch politeness delay; it is process-local only,
// there is no cross-process coordination.
package ratelimit
