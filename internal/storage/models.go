package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"candidate-predictor/internal/ml"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

const (
	classifierKey   = "classifier"
	standardizerKey = "standardizer"
)

// Backend names accepted by OpenModelStore.
const (
	BackendBolt = "bolt"
	BackendFile = "file"
)

// modelBlob is the serialized form of one half of a model. Both halves of
// a save carry the same generation.
type modelBlob[T any] struct {
	Generation string    `json:"generation"`
	SavedAt    time.Time `json:"saved_at"`
	State      T         `json:"state"`
}

func newBlobs(c ml.ClassifierState, s ml.StandardizerState) (modelBlob[ml.ClassifierState], modelBlob[ml.StandardizerState]) {
	gen := uuid.NewString()
	now := time.Now().UTC()
	return modelBlob[ml.ClassifierState]{Generation: gen, SavedAt: now, State: c},
		modelBlob[ml.StandardizerState]{Generation: gen, SavedAt: now, State: s}
}

// BoltModelStore keeps both model halves in the models bucket. A save
// writes both in one transaction.
type BoltModelStore struct {
	db *bbolt.DB
}

// ModelStore returns a model store sharing the survey database.
func (s *Store) ModelStore() *BoltModelStore {
	return &BoltModelStore{db: s.db}
}

func (m *BoltModelStore) location() string {
	return m.db.Path() + "#" + modelsBucket
}

func (m *BoltModelStore) Save(c ml.ClassifierState, s ml.StandardizerState) error {
	cb, sb := newBlobs(c, s)

	cdata, err := json.Marshal(cb)
	if err != nil {
		return &ml.PersistenceError{Op: "save", Path: m.location(), Err: fmt.Errorf("marshal classifier: %w", err)}
	}
	sdata, err := json.Marshal(sb)
	if err != nil {
		return &ml.PersistenceError{Op: "save", Path: m.location(), Err: fmt.Errorf("marshal standardizer: %w", err)}
	}

	err = m.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(modelsBucket))
		if err := b.Put([]byte(classifierKey), cdata); err != nil {
			return err
		}
		return b.Put([]byte(standardizerKey), sdata)
	})
	if err != nil {
		return &ml.PersistenceError{Op: "save", Path: m.location(), Err: err}
	}
	return nil
}

func (m *BoltModelStore) Load() (ml.ClassifierState, ml.StandardizerState, error) {
	var (
		cb modelBlob[ml.ClassifierState]
		sb modelBlob[ml.StandardizerState]
	)

	err := m.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(modelsBucket))
		cdata := b.Get([]byte(classifierKey))
		sdata := b.Get([]byte(standardizerKey))
		if cdata == nil || sdata == nil {
			return ml.ErrNotFound
		}

		if err := json.Unmarshal(cdata, &cb); err != nil {
			return &ml.PersistenceError{Op: "load", Path: m.location(), Err: fmt.Errorf("decode classifier: %w", err)}
		}
		if err := json.Unmarshal(sdata, &sb); err != nil {
			return &ml.PersistenceError{Op: "load", Path: m.location(), Err: fmt.Errorf("decode standardizer: %w", err)}
		}
		if cb.Generation != sb.Generation {
			return ml.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return ml.ClassifierState{}, ml.StandardizerState{}, err
	}
	return cb.State, sb.State, nil
}

func (m *BoltModelStore) Exists() bool {
	_, _, err := m.Load()
	return err == nil
}

// Delete removes both halves.
func (m *BoltModelStore) Delete() error {
	err := m.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(modelsBucket))
		if err := b.Delete([]byte(classifierKey)); err != nil {
			return err
		}
		return b.Delete([]byte(standardizerKey))
	})
	if err != nil {
		return &ml.PersistenceError{Op: "delete", Path: m.location(), Err: err}
	}
	return nil
}

// DeleteModel removes the persisted pair from m. Both built-in backends
// support it.
func DeleteModel(m ml.ModelStore) error {
	d, ok := m.(interface{ Delete() error })
	if !ok {
		return fmt.Errorf("model store %T does not support delete", m)
	}
	return d.Delete()
}

// OpenModelStore selects a model store backend. The file backend writes to
// classifierPath and standardizerPath; the bolt backend uses store.
func OpenModelStore(backend string, store *Store, classifierPath, standardizerPath string) (ml.ModelStore, error) {
	switch backend {
	case BackendBolt, "":
		if store == nil {
			return nil, fmt.Errorf("bolt model store requires an open database")
		}
		return store.ModelStore(), nil
	case BackendFile:
		return NewFileModelStore(classifierPath, standardizerPath)
	default:
		return nil, fmt.Errorf("unknown model store backend %q", backend)
	}
}
