// Package jsondb keeps loans in memory and persists them to a JSON file.
package jsondb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/libloans/internal/db/storage"
	"github.com/patric-chuzhbe/libloans/internal/loan"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONDB stores loans in insertion order. An empty fileName disables persistence.
type JSONDB struct {
	fileName string
	mu       sync.RWMutex
	Cache    CacheStruct
	byID     map[string]int
}

// CacheStruct is the on-disk layout of the database file.
type CacheStruct struct {
	Loans []loan.Loan
}

// New opens fileName, creating an empty database file when it does not exist yet
// or has no content.
func New(fileName string) (*JSONDB, error) {
	db := Empty()
	db.fileName = fileName

	err := parseJSONFile(fileName, &db.Cache)
	if err != nil {
		if !os.IsNotExist(err) && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("in internal/db/jsondb/jsondb.go/New(): error while `parseJSONFile()` calling: %w", err)
		}
		if err := writeToJSONFile(fileName, db.Cache); err != nil {
			return nil, fmt.Errorf("in internal/db/jsondb/jsondb.go/New(): error while `writeToJSONFile()` calling: %w", err)
		}
	}

	for i, record := range db.Cache.Loans {
		db.byID[record.ID] = i
	}

	return db, nil
}

// Empty returns a database that is never written to disk.
func Empty() *JSONDB {
	return &JSONDB{
		Cache: CacheStruct{Loans: []loan.Loan{}},
		byID:  map[string]int{},
	}
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	return os.WriteFile(fileName, jsonData, 0644)
}

func parseJSONFile(fileName string, cache *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(cache)
}

func (db *JSONDB) BeginTransaction() (*sql.Tx, error) {
	return nil, nil
}

func (db *JSONDB) CommitTransaction(transaction *sql.Tx) error {
	return nil
}

func (db *JSONDB) RollbackTransaction(transaction *sql.Tx) error {
	return nil
}

// LockIdentification is a no-op: JSONDB has no transactions to hold a lock for.
func (db *JSONDB) LockIdentification(ctx context.Context, identification string, transaction *sql.Tx) error {
	return nil
}

// FindLoanByIdentificationAndType returns the earliest stored loan matching both fields.
func (db *JSONDB) FindLoanByIdentificationAndType(
	ctx context.Context,
	identification string,
	userType loan.UserType,
	transaction *sql.Tx,
) (*loan.Loan, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	found := funk.Find(db.Cache.Loans, func(record loan.Loan) bool {
		return record.UserIdentification == identification && record.UserType == userType
	})
	if found == nil {
		return nil, false, nil
	}

	record := found.(loan.Loan)
	return &record, true, nil
}

func (db *JSONDB) FindLoanByID(ctx context.Context, id string) (*loan.Loan, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	i, ok := db.byID[id]
	if !ok {
		return nil, false, nil
	}

	record := db.Cache.Loans[i]
	return &record, true, nil
}

// InsertLoan appends the loan and, for file-backed databases, rewrites the file.
func (db *JSONDB) InsertLoan(ctx context.Context, record *loan.Loan, transaction *sql.Tx) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.byID[record.ID]; exists {
		return storage.ErrLoanAlreadyExists
	}

	db.Cache.Loans = append(db.Cache.Loans, *record)
	db.byID[record.ID] = len(db.Cache.Loans) - 1

	if db.fileName == "" {
		return nil
	}

	if err := writeToJSONFile(db.fileName, db.Cache); err != nil {
		db.Cache.Loans = db.Cache.Loans[:len(db.Cache.Loans)-1]
		delete(db.byID, record.ID)
		return fmt.Errorf("in internal/db/jsondb/jsondb.go/InsertLoan(): error while `writeToJSONFile()` calling: %w", err)
	}

	return nil
}

func (db *JSONDB) GetNumberOfLoans(ctx context.Context) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return int64(len(db.Cache.Loans)), nil
}

func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

// Close flushes the loans to the database file.
func (db *JSONDB) Close() error {
	if db.fileName == "" {
		return nil
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	return writeToJSONFile(db.fileName, db.Cache)
}
