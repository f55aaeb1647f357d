package store

import (
	"cmp"
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"hookbuilder/pkg/utils"
)

type fileData struct {
	Collections map[string][]Document `json:"collections"`
}

// FileStore keeps every collection in one JSON file, rewritten on each change.
type FileStore struct {
	mu   sync.Mutex
	path string
	data fileData

	// Now stamps new documents.
	Now func() time.Time
}

func OpenFile(path string) (*FileStore, error) {
	s := &FileStore{
		path: path,
		data: fileData{Collections: map[string][]Document{}},
		Now:  time.Now,
	}
	if utils.Exists(path) {
		data, err := utils.Load[fileData](path)
		if err != nil {
			return nil, failed("load "+path, err)
		}
		if data.Collections != nil {
			s.data = data
		}
		log.Info("Loaded document store", "path", path, "collections", len(s.data.Collections))
	}
	return s, nil
}

func (s *FileStore) Create(ctx context.Context, collection, ownerID string, data any) (id string, err error) {
	defer observe("file", "create", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "", failed("encode the document", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now().UTC()
	id, err = newID(now)
	if err != nil {
		return "", failed("create an id", err)
	}
	doc := Document{ID: id, Collection: collection, OwnerID: ownerID, CreatedAt: now, Data: raw}
	s.data.Collections[collection] = append(s.data.Collections[collection], doc)
	if err := s.save(); err != nil {
		docs := s.data.Collections[collection]
		s.data.Collections[collection] = docs[:len(docs)-1]
		return "", err
	}
	return id, nil
}

func (s *FileStore) Get(ctx context.Context, collection, id string) (doc Document, err error) {
	defer observe("file", "get", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(collection, id)
	if i < 0 {
		return Document{}, notFound(collection, id)
	}
	return s.data.Collections[collection][i], nil
}

func (s *FileStore) Query(ctx context.Context, collection string, q Query) (docs []Document, err error) {
	defer observe("file", "query", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	for _, d := range s.data.Collections[collection] {
		if d.OwnerID == q.OwnerID {
			docs = append(docs, d)
		}
	}
	s.mu.Unlock()

	slices.SortFunc(docs, newestFirst)
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

func (s *FileStore) Delete(ctx context.Context, collection, id string) (err error) {
	defer observe("file", "delete", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(collection, id)
	if i < 0 {
		return notFound(collection, id)
	}
	docs := s.data.Collections[collection]
	removed := docs[i]
	s.data.Collections[collection] = slices.Delete(docs, i, i+1)
	if err := s.save(); err != nil {
		s.data.Collections[collection] = slices.Insert(s.data.Collections[collection], i, removed)
		return err
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) index(collection, id string) int {
	return slices.IndexFunc(s.data.Collections[collection], func(d Document) bool { return d.ID == id })
}

func (s *FileStore) save() error {
	if err := utils.Save(s.path, s.data); err != nil {
		return failed("write "+s.path, err)
	}
	return nil
}

func newestFirst(a, b Document) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}
