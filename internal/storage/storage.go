package storage

import "swapQuoter/internal/model"

// QuoteSink persists quote results.
type QuoteSink interface {
	PutQuotes(quotes []model.QuoteRecord) error
}

// SnapshotSink persists pool snapshots.
type SnapshotSink interface {
	PutSnapshot(snap *model.PoolSnapshot) error
}
