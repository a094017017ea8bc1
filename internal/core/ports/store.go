package ports

import "context"

// Collection names used by the core. All shared state lives in these three.
const (
	CollectionIdentities     = "identities"
	CollectionTapEvents      = "tapEvents"
	CollectionActiveSessions = "activeSessions"
)

// Record is a schemaless document as seen by the store abstraction. The "id"
// field holds the store-assigned identifier on records read back.
type Record map[string]any

// ID returns the store-assigned identifier, or "" when absent.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Store is the generic document-store port the core is written against.
// Implementations: MongoDB (production) and an in-memory store (tests,
// single-node deployments). Every call may fail independently; callers treat
// failures per the degradation policy rather than aborting user-visible work.
type Store interface {
	// Insert appends a record and returns its store-assigned id.
	Insert(ctx context.Context, collection string, rec Record) (string, error)
	// QueryAll returns every record of a collection in insertion order.
	QueryAll(ctx context.Context, collection string) ([]Record, error)
	// QueryWhere returns the records whose field equals value.
	QueryWhere(ctx context.Context, collection, field string, value any) ([]Record, error)
	// Update merges partial into the record with the given id.
	Update(ctx context.Context, collection, id string, partial Record) error
	// Delete removes a single record.
	Delete(ctx context.Context, collection, id string) error
	// Clear removes every record of a collection as one atomic operation.
	Clear(ctx context.Context, collection string) error
	// Subscribe registers a change listener that receives the full collection
	// contents after every change. The returned function cancels the
	// subscription.
	Subscribe(collection string, onChange func([]Record)) (func(), error)
}
