package reroll

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

const (
	entryBucket = "rerolls"
	orderBucket = "reroll_order"
)

type boltRecord struct {
	Entry
	Seq uint64 `json:"seq"`
}

// BoltStore is a Store persisted in a bbolt database file, so rerolls survive restarts.
type BoltStore struct {
	db       *bbolt.DB
	capacity int
}

// OpenBolt opens (creating if needed) the bbolt database at path.
// A non-positive capacity selects DefaultCapacity.
func OpenBolt(path string, capacity int) (*BoltStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("reroll store path is required")
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open reroll db: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{entryBucket, orderBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create %s bucket: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltStore{db: db, capacity: capacity}, nil
}

// Put implements Store.
func (s *BoltStore) Put(ctx context.Context, replyID string, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		entries := tx.Bucket([]byte(entryBucket))
		order := tx.Bucket([]byte(orderBucket))
		if err := removeEntry(entries, order, replyID); err != nil {
			return err
		}
		seq, err := order.NextSequence()
		if err != nil {
			return fmt.Errorf("next reroll sequence: %w", err)
		}
		payload, err := json.Marshal(boltRecord{Entry: entry, Seq: seq})
		if err != nil {
			return fmt.Errorf("marshal reroll entry: %w", err)
		}
		if err := entries.Put([]byte(replyID), payload); err != nil {
			return err
		}
		if err := order.Put(seqKey(seq), []byte(replyID)); err != nil {
			return err
		}
		return evict(entries, order, s.capacity)
	})
}

// Take implements Store.
func (s *BoltStore) Take(ctx context.Context, replyID string) (Entry, bool, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, false, err
	}
	var (
		rec   boltRecord
		found bool
	)
	err := s.db.Update(func(tx *bbolt.Tx) error {
		entries := tx.Bucket([]byte(entryBucket))
		payload := entries.Get([]byte(replyID))
		if payload == nil {
			return nil
		}
		if err := json.Unmarshal(payload, &rec); err != nil {
			return fmt.Errorf("unmarshal reroll entry: %w", err)
		}
		found = true
		return removeEntry(entries, tx.Bucket([]byte(orderBucket)), replyID)
	})
	if err != nil {
		return Entry{}, false, err
	}
	return rec.Entry, found, nil
}

// Len reports the number of cached entries.
func (s *BoltStore) Len() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = count(tx.Bucket([]byte(entryBucket)))
		return nil
	})
	return n, err
}

// Close implements Store.
func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func removeEntry(entries, order *bbolt.Bucket, replyID string) error {
	payload := entries.Get([]byte(replyID))
	if payload == nil {
		return nil
	}
	var rec boltRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return fmt.Errorf("unmarshal reroll entry: %w", err)
	}
	if err := order.Delete(seqKey(rec.Seq)); err != nil {
		return err
	}
	return entries.Delete([]byte(replyID))
}

func evict(entries, order *bbolt.Bucket, capacity int) error {
	excess := count(order) - capacity
	c := order.Cursor()
	for k, v := c.First(); k != nil && excess > 0; k, v = c.First() {
		if err := entries.Delete(v); err != nil {
			return err
		}
		if err := c.Delete(); err != nil {
			return err
		}
		excess--
	}
	return nil
}

func count(b *bbolt.Bucket) int {
	n := 0
	c := b.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		n++
	}
	return n
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
