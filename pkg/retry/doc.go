// Package retry provides bounded retry with exponential backoff for
// transient failures against the datasets-server.
//
// The harvest defaults follow the service's observed behavior: transient
// outcomes (connection failures, timeouts, HTTP 429/500/502/503/504) back
// off starting at 1s, doubling per failure and capped at 30s, for at most
// 5 attempts. Permanent outcomes stop immediately. Backoff is deliberately
// jitter-free; request spreading is handled by the independent politeness
// delay in pkg/fetch.
//
//	err := retry.Do(func() error {
//		return client.Ping(ctx)
//	}, nil)
package retry
