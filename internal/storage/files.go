package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"candidate-predictor/internal/ml"
)

// fileStoreMu serializes file store saves and loads within the process, so
// a load never reads a pair while it is being replaced.
var fileStoreMu sync.Mutex

// FileModelStore keeps the classifier and standardizer as two JSON files.
// A pair is valid only when both files exist and carry the same generation.
type FileModelStore struct {
	classifierPath   string
	standardizerPath string
}

func NewFileModelStore(classifierPath, standardizerPath string) (*FileModelStore, error) {
	if classifierPath == "" || standardizerPath == "" {
		return nil, fmt.Errorf("file model store requires both paths")
	}
	if filepath.Clean(classifierPath) == filepath.Clean(standardizerPath) {
		return nil, fmt.Errorf("classifier and standardizer paths must differ")
	}
	return &FileModelStore{
		classifierPath:   classifierPath,
		standardizerPath: standardizerPath,
	}, nil
}

func (f *FileModelStore) Save(c ml.ClassifierState, s ml.StandardizerState) error {
	cb, sb := newBlobs(c, s)

	fileStoreMu.Lock()
	defer fileStoreMu.Unlock()

	ctmp, err := writeTemp(f.classifierPath, cb)
	if err != nil {
		return &ml.PersistenceError{Op: "save", Path: f.classifierPath, Err: err}
	}
	stmp, err := writeTemp(f.standardizerPath, sb)
	if err != nil {
		os.Remove(ctmp)
		return &ml.PersistenceError{Op: "save", Path: f.standardizerPath, Err: err}
	}

	if err := os.Rename(ctmp, f.classifierPath); err != nil {
		os.Remove(ctmp)
		os.Remove(stmp)
		return &ml.PersistenceError{Op: "save", Path: f.classifierPath, Err: err}
	}
	if err := os.Rename(stmp, f.standardizerPath); err != nil {
		os.Remove(stmp)
		// The new classifier no longer has a matching standardizer.
		os.Remove(f.classifierPath)
		return &ml.PersistenceError{Op: "save", Path: f.standardizerPath, Err: err}
	}
	return nil
}

// writeTemp writes v as JSON to a synced temp file next to path.
func writeTemp(path string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", err
	}
	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(name)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}

func (f *FileModelStore) Load() (ml.ClassifierState, ml.StandardizerState, error) {
	fileStoreMu.Lock()
	defer fileStoreMu.Unlock()

	var (
		cb modelBlob[ml.ClassifierState]
		sb modelBlob[ml.StandardizerState]
	)
	if err := readBlob(f.classifierPath, &cb); err != nil {
		return ml.ClassifierState{}, ml.StandardizerState{}, err
	}
	if err := readBlob(f.standardizerPath, &sb); err != nil {
		return ml.ClassifierState{}, ml.StandardizerState{}, err
	}
	if cb.Generation == "" || cb.Generation != sb.Generation {
		return ml.ClassifierState{}, ml.StandardizerState{}, ml.ErrNotFound
	}
	return cb.State, sb.State, nil
}

func readBlob(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ml.ErrNotFound
		}
		return &ml.PersistenceError{Op: "load", Path: path, Err: err}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &ml.PersistenceError{Op: "load", Path: path, Err: err}
	}
	return nil
}

func (f *FileModelStore) Exists() bool {
	_, _, err := f.Load()
	return err == nil
}

// Delete removes both files. Missing files are not an error.
func (f *FileModelStore) Delete() error {
	fileStoreMu.Lock()
	defer fileStoreMu.Unlock()

	for _, path := range []string{f.classifierPath, f.standardizerPath} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &ml.PersistenceError{Op: "delete", Path: path, Err: err}
		}
	}
	return nil
}
