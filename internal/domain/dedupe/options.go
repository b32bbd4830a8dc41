// Package dedupe defines the interface for idempotency tracking.
package dedupe

// Option applies a configuration option to the in-memory ledger.
type Option func(*inMemoryLedger)

// WithSeed preloads attempt IDs into the ledger. Used at startup to
// absorb the pruned record log before the first feed page is scanned.
func WithSeed(ids []string) Option {
	return func(l *inMemoryLedger) {
		for _, id := range ids {
			if id != "" {
				l.seen[id] = struct{}{}
			}
		}
	}
}
