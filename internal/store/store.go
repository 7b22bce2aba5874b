// Package store persists signed envelopes in a local Badger database,
// keyed by the SHA-256 digest of their payload bytes.
package store

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/provenly/attest/pkg/dsse"
	"github.com/provenly/attest/pkg/hash"
)

// ErrNotFound is returned when no envelope exists under the requested
// digest.
var ErrNotFound = errors.New("envelope not found")

// Config configures a Store.
type Config struct {
	// Path is the Badger data directory. It must exist.
	Path string
	// Logger receives store diagnostics. Defaults to slog.Default.
	Logger *slog.Logger
}

func (c *Config) check() error {
	if c.Path == "" {
		return errors.New("no path provided in configuration")
	}
	info, err := os.Stat(c.Path)
	if os.IsNotExist(err) {
		return errors.New("path does not exist")
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.New("path is not a directory")
	}
	return nil
}

// Store is an envelope archive on top of Badger.
type Store struct {
	db  *badger.DB
	log *slog.Logger
}

// Open opens (or creates) the envelope store at cfg.Path.
func Open(cfg Config) (*Store, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if err := cfg.check(); err != nil {
		return nil, fmt.Errorf("error checking config for envelope store: %w", err)
	}

	opts := badger.DefaultOptions(cfg.Path)
	opts.Logger = nil
	opts.SyncWrites = false

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("error opening envelope store: %w", err)
	}

	cfg.Logger.Debug("envelope store opened", "path", cfg.Path)
	return &Store{db: db, log: cfg.Logger}, nil
}

// Put stores the envelope and returns the payload digest it is keyed by.
// Storing the same envelope twice overwrites the previous copy.
func (s *Store) Put(env *dsse.Envelope) (hash.Hash, error) {
	payload, err := base64.StdEncoding.DecodeString(env.Payload)
	if err != nil {
		return hash.Hash{}, fmt.Errorf("error decoding envelope payload: %w", err)
	}
	key := hash.HashBytes(payload)

	value, err := json.Marshal(env)
	if err != nil {
		return hash.Hash{}, fmt.Errorf("error encoding envelope: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key.Bytes(), value)
	})
	if err != nil {
		return hash.Hash{}, fmt.Errorf("error writing envelope %s: %w", key.Hex(), err)
	}

	s.log.Debug("envelope stored", "digest", key.Hex())
	return key, nil
}

// Get loads the envelope stored under the given payload digest.
func (s *Store) Get(key hash.Hash) (*dsse.Envelope, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key.Bytes())
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading envelope %s: %w", key.Hex(), err)
	}

	var env dsse.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return nil, fmt.Errorf("error decoding stored envelope %s: %w", key.Hex(), err)
	}
	return &env, nil
}

// List returns the payload digests of all stored envelopes.
func (s *Store) List() ([]hash.Hash, error) {
	var keys []hash.Hash
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			raw := it.Item().KeyCopy(nil)
			if len(raw) != hash.Size {
				continue
			}
			var h hash.Hash
			copy(h[:], raw)
			keys = append(keys, h)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error listing envelopes: %w", err)
	}
	return keys, nil
}

// Close syncs and closes the underlying database.
func (s *Store) Close() error {
	if err := s.db.Sync(); err != nil {
		return fmt.Errorf("error syncing envelope store: %w", err)
	}
	return s.db.Close()
}
