package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"chat-guard/errors"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore keeps JSON documents in BadgerDB, one document per key, and
// pushes change notifications to in-process subscribers.
//
// Each mutation runs in a single Badger transaction, which gives the
// single-document atomicity the synchronization protocol relies on. There is
// deliberately no cross-document transaction and no optimistic concurrency
// check on read-modify-write callers: last write wins on a full replace.
type BadgerStore struct {
	db  *badger.DB
	log *slog.Logger

	mu      sync.RWMutex
	nextSub uint64
	subs    map[string]map[uint64]func(raw []byte)
}

func NewBadgerStore(db *badger.DB, log *slog.Logger) *BadgerStore {
	return &BadgerStore{
		db:   db,
		log:  log,
		subs: make(map[string]map[uint64]func(raw []byte)),
	}
}

func (s *BadgerStore) Get(path string, out any) error {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(path))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			raw = append([]byte(nil), val...)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return errors.ErrDocumentNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (s *BadgerStore) Set(path string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(path), raw)
	})
	if err != nil {
		return err
	}
	s.notify(path, raw)
	return nil
}

func (s *BadgerStore) Update(path string, patch map[string]any) error {
	var raw []byte
	err := s.db.Update(func(txn *badger.Txn) error {
		doc, err := readDocument(txn, path)
		if err != nil {
			return err
		}
		for k, v := range patch {
			doc[k] = v
		}
		if raw, err = json.Marshal(doc); err != nil {
			return fmt.Errorf("marshal document: %w", err)
		}
		return txn.Set([]byte(path), raw)
	})
	if err != nil {
		return err
	}
	s.notify(path, raw)
	return nil
}

func (s *BadgerStore) AppendToArray(path, field string, element any) error {
	// Round-trip through JSON so the stored array stays generic regardless
	// of the caller's element type.
	encoded, err := json.Marshal(element)
	if err != nil {
		return fmt.Errorf("marshal element: %w", err)
	}
	var generic any
	if err = json.Unmarshal(encoded, &generic); err != nil {
		return fmt.Errorf("decode element: %w", err)
	}

	var raw []byte
	err = s.db.Update(func(txn *badger.Txn) error {
		doc, err := readDocument(txn, path)
		if err != nil {
			return err
		}
		array, ok := doc[field].([]any)
		if doc[field] != nil && !ok {
			return fmt.Errorf("%w: %s.%s", errors.ErrFieldNotArray, path, field)
		}
		doc[field] = append(array, generic)
		if raw, err = json.Marshal(doc); err != nil {
			return fmt.Errorf("marshal document: %w", err)
		}
		return txn.Set([]byte(path), raw)
	})
	if err != nil {
		return err
	}
	s.notify(path, raw)
	return nil
}

func (s *BadgerStore) Subscribe(path string, fn func(raw []byte)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSub++
	id := s.nextSub
	if _, ok := s.subs[path]; !ok {
		s.subs[path] = make(map[uint64]func(raw []byte))
	}
	s.subs[path][id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[path], id)
		if len(s.subs[path]) == 0 {
			delete(s.subs, path)
		}
	}
}

// notify delivers the committed document to every subscriber of path.
// Called after the transaction so subscribers never observe a rolled-back write.
func (s *BadgerStore) notify(path string, raw []byte) {
	s.mu.RLock()
	callbacks := make([]func([]byte), 0, len(s.subs[path]))
	for _, fn := range s.subs[path] {
		callbacks = append(callbacks, fn)
	}
	s.mu.RUnlock()

	for _, fn := range callbacks {
		fn(raw)
	}
}

// readDocument loads the document at path inside txn, or an empty one when
// the document does not exist yet (the store auto-creates on first write).
func readDocument(txn *badger.Txn, path string) (map[string]any, error) {
	item, err := txn.Get([]byte(path))
	if err == badger.ErrKeyNotFound {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}

	doc := map[string]any{}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &doc)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}
