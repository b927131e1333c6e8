package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/mquist/cantrip"
)

var kvBucket = []byte("kv")

// demoCapabilities builds the CLI's built-in catalog: a few simple
// utilities plus a key-value store persisted in a bolt database. The
// returned cleanup closes the database and removes it when it was a
// temp file.
func demoCapabilities(dbPath string) ([]cantrip.Capability, func(), error) {
	removeOnClose := false
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), fmt.Sprintf("cantrip-%s.db", uuid.NewString()))
		removeOnClose = true
	}

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("open kv database: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(kvBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("init kv database: %w", err)
	}

	cleanup := func() {
		db.Close()
		if removeOnClose {
			os.Remove(dbPath)
		}
	}

	caps := []cantrip.Capability{
		{
			Name:        "clock_now",
			Description: "Returns the current time as an RFC 3339 string and as a Unix-millisecond timestamp.",
			InputSchema: objectSchema(nil, nil),
			OutputSchema: objectSchema(map[string]any{
				"iso": map[string]any{"type": "string"},
				"ms":  map[string]any{"type": "integer"},
			}, nil),
			Invoke: func(_ context.Context, _ map[string]any, _ cantrip.CallInfo) (any, error) {
				now := time.Now()
				return map[string]any{
					"iso": now.Format(time.RFC3339),
					"ms":  now.UnixMilli(),
				}, nil
			},
		},
		{
			Name:        "echo",
			Description: "Returns its arguments unchanged. Useful for wiring checks.",
			InputSchema: objectSchema(map[string]any{
				"text": map[string]any{"type": "string"},
			}, nil),
			Invoke: func(_ context.Context, args map[string]any, _ cantrip.CallInfo) (any, error) {
				return args, nil
			},
		},
		{
			Name:        "rand_int",
			Description: "Returns a uniform random integer in [0, max).",
			InputSchema: objectSchema(map[string]any{
				"max": map[string]any{"type": "integer", "minimum": 1},
			}, []any{"max"}),
			Invoke: func(_ context.Context, args map[string]any, _ cantrip.CallInfo) (any, error) {
				max, ok := intArg(args, "max")
				if !ok || max < 1 {
					return nil, fmt.Errorf("max must be a positive integer")
				}
				n, err := rand.Int(rand.Reader, big.NewInt(max))
				if err != nil {
					return nil, fmt.Errorf("draw random number: %w", err)
				}
				return n.Int64(), nil
			},
		},
		{
			Name:        "sleep_ms",
			Description: "Waits the given number of milliseconds, then returns true.",
			InputSchema: objectSchema(map[string]any{
				"ms": map[string]any{"type": "integer", "minimum": 0},
			}, []any{"ms"}),
			Invoke: func(ctx context.Context, args map[string]any, _ cantrip.CallInfo) (any, error) {
				ms, ok := intArg(args, "ms")
				if !ok || ms < 0 {
					return nil, fmt.Errorf("ms must be a non-negative integer")
				}
				select {
				case <-time.After(time.Duration(ms) * time.Millisecond):
					return true, nil
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			},
		},
		{
			Name:        "kv_get",
			Description: "Reads a key from the key-value store. Returns nil when the key is absent.",
			InputSchema: objectSchema(map[string]any{
				"key": map[string]any{"type": "string"},
			}, []any{"key"}),
			Invoke: func(_ context.Context, args map[string]any, _ cantrip.CallInfo) (any, error) {
				key, _ := args["key"].(string)
				var value any
				err := db.View(func(tx *bolt.Tx) error {
					raw := tx.Bucket(kvBucket).Get([]byte(key))
					if raw == nil {
						return nil
					}
					value = string(raw)
					return nil
				})
				return value, err
			},
		},
		{
			Name:        "kv_put",
			Description: "Writes a string value under a key in the key-value store.",
			InputSchema: objectSchema(map[string]any{
				"key":   map[string]any{"type": "string"},
				"value": map[string]any{"type": "string"},
			}, []any{"key", "value"}),
			Invoke: func(_ context.Context, args map[string]any, _ cantrip.CallInfo) (any, error) {
				key, _ := args["key"].(string)
				value, _ := args["value"].(string)
				if key == "" {
					return nil, fmt.Errorf("key must be non-empty")
				}
				err := db.Update(func(tx *bolt.Tx) error {
					return tx.Bucket(kvBucket).Put([]byte(key), []byte(value))
				})
				return true, err
			},
		},
		{
			Name:        "kv_delete",
			Description: "Removes a key from the key-value store.",
			InputSchema: objectSchema(map[string]any{
				"key": map[string]any{"type": "string"},
			}, []any{"key"}),
			Invoke: func(_ context.Context, args map[string]any, _ cantrip.CallInfo) (any, error) {
				key, _ := args["key"].(string)
				err := db.Update(func(tx *bolt.Tx) error {
					return tx.Bucket(kvBucket).Delete([]byte(key))
				})
				return true, err
			},
		},
		{
			Name:        "kv_list",
			Description: "Lists every key in the key-value store, in byte order.",
			InputSchema: objectSchema(nil, nil),
			Invoke: func(_ context.Context, _ map[string]any, _ cantrip.CallInfo) (any, error) {
				keys := []any{}
				err := db.View(func(tx *bolt.Tx) error {
					return tx.Bucket(kvBucket).ForEach(func(k, _ []byte) error {
						keys = append(keys, string(k))
						return nil
					})
				})
				return keys, err
			},
		},
	}
	return caps, cleanup, nil
}

func objectSchema(properties map[string]any, required []any) map[string]any {
	schema := map[string]any{"type": "object"}
	if properties != nil {
		schema["properties"] = properties
	}
	if required != nil {
		schema["required"] = required
	}
	return schema
}

// intArg reads an integer argument, accepting the numeric types JSON
// decoding and script conversion produce.
func intArg(args map[string]any, name string) (int64, bool) {
	switch v := args[name].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
