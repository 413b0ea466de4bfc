package docstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store. Subscribers are notified synchronously
// by the goroutine performing the write.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]memoryRecord
	seq         uint64

	subMu   sync.Mutex
	subs    map[uint64]memorySubscription
	nextSub uint64

	notifyMu sync.Mutex
}

type memoryRecord struct {
	data map[string]any
	seq  uint64
}

type memorySubscription struct {
	target Target
	fn     ChangeFunc
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]memoryRecord),
		subs:        make(map[uint64]memorySubscription),
	}
}

// FetchAll returns every document of collection in insertion order.
func (s *MemoryStore) FetchAll(ctx context.Context, collection string) ([]Document, error) {
	if collection == "" {
		return nil, ErrInvalidArgument
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(Target{Collection: collection}), nil
}

// Get returns a single document.
func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := validateKey(collection, id); err != nil {
		return Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.collections[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Data: cloneFields(rec.data)}, nil
}

// Subscribe delivers the current snapshot of target and then a fresh one
// after every write touching it.
func (s *MemoryStore) Subscribe(ctx context.Context, target Target, fn ChangeFunc) (Unsubscribe, error) {
	if err := target.validate(); err != nil {
		return nil, err
	}
	s.subMu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs[id] = memorySubscription{target: target, fn: fn}
	s.subMu.Unlock()

	s.notifyMu.Lock()
	s.mu.RLock()
	initial := s.snapshotLocked(target)
	s.mu.RUnlock()
	fn(initial)
	s.notifyMu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
	context.AfterFunc(ctx, unsubscribe)
	return unsubscribe, nil
}

// CreateOrReplace stores data under id, replacing any existing document.
func (s *MemoryStore) CreateOrReplace(ctx context.Context, collection, id string, data any) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}
	fields, err := Encode(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	coll := s.collectionLocked(collection)
	rec, exists := coll[id]
	if !exists {
		s.seq++
		rec.seq = s.seq
	}
	rec.data = fields
	coll[id] = rec
	s.mu.Unlock()
	s.notify(collection, id)
	return nil
}

// AppendNew stores data under a generated id.
func (s *MemoryStore) AppendNew(ctx context.Context, collection string, data any) (string, error) {
	if collection == "" {
		return "", ErrInvalidArgument
	}
	fields, err := Encode(data)
	if err != nil {
		return "", err
	}
	id := NewID()
	s.mu.Lock()
	coll := s.collectionLocked(collection)
	if _, exists := coll[id]; exists {
		s.mu.Unlock()
		return "", ErrConflict
	}
	s.seq++
	coll[id] = memoryRecord{data: fields, seq: s.seq}
	s.mu.Unlock()
	s.notify(collection, id)
	return id, nil
}

// Patch merges the named top-level fields into an existing document.
func (s *MemoryStore) Patch(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}
	encoded, err := Encode(fields)
	if err != nil {
		return err
	}
	s.mu.Lock()
	rec, ok := s.collections[collection][id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	merged := cloneFields(rec.data)
	for k, v := range encoded {
		merged[k] = v
	}
	rec.data = merged
	s.collections[collection][id] = rec
	s.mu.Unlock()
	s.notify(collection, id)
	return nil
}

// Remove deletes a document.
func (s *MemoryStore) Remove(ctx context.Context, collection, id string) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}
	s.mu.Lock()
	if _, ok := s.collections[collection][id]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.collections[collection], id)
	s.mu.Unlock()
	s.notify(collection, id)
	return nil
}

func (s *MemoryStore) collectionLocked(collection string) map[string]memoryRecord {
	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]memoryRecord)
		s.collections[collection] = coll
	}
	return coll
}

func (s *MemoryStore) snapshotLocked(target Target) []Document {
	coll := s.collections[target.Collection]
	if target.DocumentID != "" {
		rec, ok := coll[target.DocumentID]
		if !ok {
			return []Document{}
		}
		return []Document{{ID: target.DocumentID, Data: cloneFields(rec.data)}}
	}
	type entry struct {
		doc Document
		seq uint64
	}
	entries := make([]entry, 0, len(coll))
	for id, rec := range coll {
		entries = append(entries, entry{doc: Document{ID: id, Data: cloneFields(rec.data)}, seq: rec.seq})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	docs := make([]Document, len(entries))
	for i, e := range entries {
		docs[i] = e.doc
	}
	return docs
}

func (s *MemoryStore) notify(collection, id string) {
	s.subMu.Lock()
	matched := make([]memorySubscription, 0, len(s.subs))
	for _, sub := range s.subs {
		if sub.target.Collection != collection {
			continue
		}
		if sub.target.DocumentID != "" && sub.target.DocumentID != id {
			continue
		}
		matched = append(matched, sub)
	}
	s.subMu.Unlock()
	if len(matched) == 0 {
		return
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	for _, sub := range matched {
		s.mu.RLock()
		snapshot := s.snapshotLocked(sub.target)
		s.mu.RUnlock()
		sub.fn(snapshot)
	}
}

var _ Store = (*MemoryStore)(nil)
