package store

import (
	"context"
	"encoding/json"
)

// Table keys. Each key holds one JSON document: an array for the
// entity tables, a map for the token table, a single object for the
// session user. Carts get one key per user.
const (
	TableProducts   = "products"
	TableUsers      = "users"
	TableOrders     = "orders"
	TableReviews    = "reviews"
	TableSentiments = "sentiments"
	TableTokens     = "verify_tokens"
	KeySession      = "session_user"
)

// CartKey returns the table key for a user's cart. Carts are keyed
// entirely by user id; no cart exists for anonymous sessions.
func CartKey(userID string) string {
	return "cart:" + userID
}

// TableStore is the port for the durable key-value medium backing the
// mock persistence layer. Implementations must make Set a whole-value
// swap so a failed write never leaves a partially updated table.
type TableStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// GetTable reads a table as a slice of T. Absent, malformed, or
// unreadable tables come back as an empty slice: reads are silent
// no-ops by contract, the caller cannot distinguish "missing" from
// "broken" and should not need to.
func GetTable[T any](ctx context.Context, s TableStore, key string) []T {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return []T{}
	}
	var rows []T
	if err := json.Unmarshal(raw, &rows); err != nil {
		return []T{}
	}
	return rows
}

// SetTable writes the full serialized snapshot of a table. Errors are
// surfaced: a failed write must be visible to mutating operations.
func SetTable[T any](ctx context.Context, s TableStore, key string, rows []T) error {
	raw, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, raw)
}

// GetValue reads a single JSON value (session user, token map).
func GetValue[T any](ctx context.Context, s TableStore, key string) (T, bool) {
	var v T
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false
	}
	return v, true
}

// SetValue writes a single JSON value under key.
func SetValue[T any](ctx context.Context, s TableStore, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, raw)
}
