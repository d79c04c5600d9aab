// Package storage provides persistent data storage for the candidate predictor.
// It uses BoltDB as the underlying storage engine to store candidate surveys
// (the historical records training sets are built from) and trained model
// parameters.
//
// The package provides thread-safe operations for storing and retrieving
// surveys in creation order, with range queries and automatic bucket
// management. A JSON file backend for model parameters is also available.
package storage

import (
	"bytes"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	surveysBucket = "surveys" // Bucket name for candidate survey records
	modelsBucket  = "models"  // Bucket name for persisted model parameters
)

// DBFile is the database file name created under the data path.
const DBFile = "predictor-data.db"

// Store provides persistent storage for surveys and models using BoltDB.
type Store struct {
	db *bbolt.DB // BoltDB database instance
}

// New creates a new storage instance with the specified data path.
// It initializes the BoltDB database and creates necessary buckets.
// Returns an error if the database cannot be opened or buckets cannot be created.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, DBFile)

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(surveysBucket)); err != nil {
			return fmt.Errorf("create surveys bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(modelsBucket)); err != nil {
			return fmt.Errorf("create models bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection gracefully.
// It should be called when the storage is no longer needed to ensure
// proper cleanup of database resources.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.db.Path()
}

func compareKeys(a, b []byte) int {
	return bytes.Compare(a, b)
}
