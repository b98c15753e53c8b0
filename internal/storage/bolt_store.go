package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/orbitwire-hq/orbitwire-aggregator/internal/domain"
)

// Bucket layout: one primary bucket per kind keyed provider/externalID,
// plus url and slug index buckets whose values point at the primary key.
const (
	videoBucket   = "videos"
	articleBucket = "articles"
	urlIdxSuffix  = "_by_url"
	slugIdxSuffix = "_by_slug"
)

// boltStore implements Store backed by BoltDB.
type boltStore struct {
	db *bolt.DB
}

func kindBucket(kind domain.Kind) (string, error) {
	switch kind {
	case domain.KindVideo:
		return videoBucket, nil
	case domain.KindArticle:
		return articleBucket, nil
	default:
		return "", fmt.Errorf("unknown content kind %q", kind)
	}
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{
			videoBucket, videoBucket + urlIdxSuffix, videoBucket + slugIdxSuffix,
			articleBucket, articleBucket + urlIdxSuffix, articleBucket + slugIdxSuffix,
		} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	return &boltStore{db: db}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// FindOne checks the identity predicates in order: primary key, URL
// index, slug index. First hit wins.
func (b *boltStore) FindOne(ctx context.Context, kind domain.Kind, q Query) (*domain.Content, error) {
	if b == nil || b.db == nil {
		return nil, fmt.Errorf("store is not initialized")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name, err := kindBucket(kind)
	if err != nil {
		return nil, err
	}

	var found *domain.Content
	err = b.db.View(func(tx *bolt.Tx) error {
		primary := tx.Bucket([]byte(name))
		if primary == nil {
			return fmt.Errorf("bucket %s missing", name)
		}

		var raw []byte
		if q.Provider != "" && q.ExternalID != "" {
			raw = primary.Get([]byte(q.Provider + "/" + q.ExternalID))
		}
		if raw == nil && q.URL != "" {
			raw = lookupIndexed(tx, primary, name+urlIdxSuffix, q.URL)
		}
		if raw == nil && q.Slug != "" {
			raw = lookupIndexed(tx, primary, name+slugIdxSuffix, q.Slug)
		}
		if raw == nil {
			return nil
		}

		var c domain.Content
		if err := json.Unmarshal(raw, &c); err != nil {
			return fmt.Errorf("decode stored document: %w", err)
		}
		found = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func lookupIndexed(tx *bolt.Tx, primary *bolt.Bucket, idxName, key string) []byte {
	idx := tx.Bucket([]byte(idxName))
	if idx == nil {
		return nil
	}
	primaryKey := idx.Get([]byte(key))
	if primaryKey == nil {
		return nil
	}
	return primary.Get(primaryKey)
}

// Save writes the document under its primary key and refreshes both
// secondary indexes. Saving the same key again overwrites in place.
func (b *boltStore) Save(ctx context.Context, c domain.Content) error {
	if b == nil || b.db == nil {
		return fmt.Errorf("store is not initialized")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.Provenance.Provider == "" || c.ExternalID == "" {
		return fmt.Errorf("document is missing provider or external id")
	}

	name, err := kindBucket(c.Kind)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	key := []byte(c.Key())
	return b.db.Update(func(tx *bolt.Tx) error {
		primary := tx.Bucket([]byte(name))
		if primary == nil {
			return fmt.Errorf("bucket %s missing", name)
		}
		if err := primary.Put(key, raw); err != nil {
			return err
		}

		if c.URL != "" {
			if idx := tx.Bucket([]byte(name + urlIdxSuffix)); idx != nil {
				if err := idx.Put([]byte(c.URL), key); err != nil {
					return err
				}
			}
		}
		if slug := domain.Slug(c.Title); slug != "" {
			if idx := tx.Bucket([]byte(name + slugIdxSuffix)); idx != nil {
				if err := idx.Put([]byte(slug), key); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Count returns the number of stored documents for a kind.
func (b *boltStore) Count(ctx context.Context, kind domain.Kind) (int, error) {
	if b == nil || b.db == nil {
		return 0, fmt.Errorf("store is not initialized")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	name, err := kindBucket(kind)
	if err != nil {
		return 0, err
	}

	var n int
	err = b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(name))
		if bucket == nil {
			return fmt.Errorf("bucket %s missing", name)
		}
		n = bucket.Stats().KeyN
		return nil
	})
	return n, err
}
