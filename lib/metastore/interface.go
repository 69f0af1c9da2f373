package metastore

import (
	"context"

	"github.com/ValentinKolb/metasync/lib/record"
)

// IMetaStore is the persistent store the metasync writer reads from and writes to.
// Records are stored per scope key and always read and written as a whole.
type IMetaStore interface {
	// GetItem returns the record stored under key. The boolean return value indicates
	// whether a record was found; a missing record is not an error.
	GetItem(ctx context.Context, key string) (rec record.Record, found bool, err error)
	// SetItem replaces the record stored under key.
	SetItem(ctx context.Context, key string, rec record.Record) (err error)
}

// IKeyLister is implemented by meta stores that can enumerate their keys.
type IKeyLister interface {
	Keys(ctx context.Context) (keys []string, err error)
}
