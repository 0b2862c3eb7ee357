// Package storage persists ciphertext blobs and their expiration metadata
// in a Badger key-value store. Blobs and metadata live under separate key
// prefixes and are written in one transaction, so a paste either exists
// completely or not at all.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/sirupsen/logrus"

	"github.com/omgupl/omgupl/expire"
)

// ErrNotFound is returned when no paste exists under a short code.
var ErrNotFound = errors.New("paste not found")

var (
	blobPrefix = []byte("blob:")
	metaPrefix = []byte("meta:")
)

// Config controls where and how the store opens.
type Config struct {
	// Path is the on-disk database directory. Ignored when InMemory is set.
	Path string
	// InMemory keeps everything in RAM. Used by tests.
	InMemory bool
	Logger   *logrus.Logger
}

// Store is a paste store backed by Badger.
type Store struct {
	db  *badger.DB
	log *logrus.Logger
}

// Open opens or creates the store.
func Open(cfg Config) (*Store, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	opts := badger.DefaultOptions(cfg.Path)
	opts.InMemory = cfg.InMemory
	if cfg.InMemory {
		opts.Dir = ""
		opts.ValueDir = ""
	}
	// Ciphertext is high-entropy but the value log still benefits from
	// compressing its framing; mirrors the previous deployment's zstd
	// setting.
	opts.Compression = options.ZSTD
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening paste database: %w", err)
	}

	return &Store{db: db, log: cfg.Logger}, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func blobKey(code []byte) []byte {
	return append(append([]byte{}, blobPrefix...), code...)
}

func metaKey(code []byte) []byte {
	return append(append([]byte{}, metaPrefix...), code...)
}

// Put stores a blob and its expiration under a short code. Both writes
// share a transaction, so a metadata failure leaves no orphaned blob.
func (s *Store) Put(code, blob []byte, exp expire.Expiration) error {
	meta, err := json.Marshal(exp)
	if err != nil {
		return fmt.Errorf("encoding paste metadata: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(blobKey(code), blob); err != nil {
			return err
		}
		return txn.Set(metaKey(code), meta)
	})
	if err != nil {
		return fmt.Errorf("storing paste: %w", err)
	}
	return nil
}

// Get returns the blob stored under a short code.
func (s *Store) Get(code []byte) ([]byte, error) {
	var blob []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(blobKey(code))
		if err != nil {
			return err
		}
		blob, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading paste: %w", err)
	}
	return blob, nil
}

// GetExpiration returns the expiration stored under a short code.
func (s *Store) GetExpiration(code []byte) (expire.Expiration, error) {
	var exp expire.Expiration
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(code))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &exp)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return expire.Expiration{}, ErrNotFound
	}
	if err != nil {
		return expire.Expiration{}, fmt.Errorf("reading paste metadata: %w", err)
	}
	return exp, nil
}

// Exists reports whether any paste occupies the short code.
func (s *Store) Exists(code []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(metaKey(code))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("probing short code: %w", err)
	}
	return true, nil
}

// Delete removes a paste's blob and metadata.
func (s *Store) Delete(code []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(blobKey(code)); err != nil {
			return err
		}
		return txn.Delete(metaKey(code))
	})
	if err != nil {
		return fmt.Errorf("deleting paste: %w", err)
	}
	return nil
}

// Count returns the number of stored pastes.
func (s *Store) Count() (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: metaPrefix})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("counting pastes: %w", err)
	}
	return count, nil
}

// ForEachExpiration visits every stored paste's metadata. A decode failure
// is reported with corrupt=true and a zero expiration so the caller can
// discard the entry.
func (s *Store) ForEachExpiration(fn func(code []byte, exp expire.Expiration, corrupt bool)) error {
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: metaPrefix, PrefetchValues: true})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			code := append([]byte{}, item.Key()[len(metaPrefix):]...)
			err := item.Value(func(val []byte) error {
				var exp expire.Expiration
				if err := json.Unmarshal(val, &exp); err != nil {
					fn(code, expire.Expiration{}, true)
					return nil
				}
				fn(code, exp, false)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scanning paste metadata: %w", err)
	}
	return nil
}
