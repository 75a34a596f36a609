// Package resilience groups the fault tolerance helpers the API wraps around
// its backing services.
//
//   - circuitbreaker: gobreaker wrappers for PostgreSQL and the shared Redis
//     rate-limit store
//   - retry: exponential backoff with jitter for start-up connections
//
// Usage Example:
//
//	dcb := circuitbreaker.NewDBCircuitBreaker(db)
//	rows, err := dcb.QueryContext(ctx, "SELECT ...")
//
//	err := retry.WithBackoff(ctx, retry.DBConfig(), func() error {
//	    return db.PingContext(ctx)
//	})
package resilience
