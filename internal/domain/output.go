package domain

// PendingOutput is a fully written output that is not yet visible to
// readers. Commit publishes it; Discard drops it. Either call makes the
// other a no-op.
type PendingOutput interface {
	Commit() error
	Discard() error
}
