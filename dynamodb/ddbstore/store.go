// Package ddbstore is an in-memory key-value store with the data model and
// request semantics of DynamoDB: hash and range keys, per-attribute update
// actions, key condition queries, paginated scans and batched reads and writes.
//
// Secondary indexes carry no storage of their own. Index queries and scans are
// evaluated against the base table on every call.
package ddbstore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/acksell/dynamini/dynamodb/table"
	"github.com/acksell/dynamini/dynamodb/update"
	"go.uber.org/zap"
)

// Options configures a Store. Start from DefaultOptions.
type Options struct {
	// DefaultDefinition is the key schema of tables that are used without
	// being declared. Its Name is replaced by the name of the table.
	// If nil, using an undeclared table is an ErrTableNotFound.
	DefaultDefinition *table.TableDefinition

	// MaxRequestBytes is the ceiling UpdateChunked splits requests to.
	MaxRequestBytes int
	// Sizer measures update actions for UpdateChunked.
	Sizer update.Sizer

	// MaxBatchGetKeys is the number of keys looked up per BatchGet chunk.
	MaxBatchGetKeys int
	// MaxBatchWriteItems is the number of requests applied per BatchWrite chunk.
	MaxBatchWriteItems int

	Logger *zap.Logger
}

func DefaultOptions() Options {
	return Options{
		MaxRequestBytes:    update.DefaultMaxBytes,
		Sizer:              update.ItemSize,
		MaxBatchGetKeys:    100,
		MaxBatchWriteItems: 25,
		Logger:             zap.NewNop(),
	}
}

func (o *Options) validate() error {
	defaults := DefaultOptions()
	if o.MaxRequestBytes < 0 || o.MaxBatchGetKeys < 0 || o.MaxBatchWriteItems < 0 {
		return fmt.Errorf("%w: limits must not be negative", ErrArgument)
	}
	if o.MaxRequestBytes == 0 {
		o.MaxRequestBytes = defaults.MaxRequestBytes
	}
	if o.Sizer == nil {
		o.Sizer = defaults.Sizer
	}
	if o.MaxBatchGetKeys == 0 {
		o.MaxBatchGetKeys = defaults.MaxBatchGetKeys
	}
	if o.MaxBatchWriteItems == 0 {
		o.MaxBatchWriteItems = defaults.MaxBatchWriteItems
	}
	if o.Logger == nil {
		o.Logger = defaults.Logger
	}
	if o.DefaultDefinition != nil {
		if err := o.DefaultDefinition.WithName("default").Validate(); err != nil {
			return fmt.Errorf("default definition: %w", err)
		}
	}
	return nil
}

// Store holds any number of named tables. It is safe for concurrent use.
type Store struct {
	opts Options
	log  *zap.Logger

	mu     sync.RWMutex
	tables map[string]*memTable
}

// New creates a store with the given tables declared.
func New(opts Options, defs ...table.TableDefinition) (*Store, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	s := &Store{
		opts:   opts,
		log:    opts.Logger,
		tables: make(map[string]*memTable),
	}
	for _, def := range defs {
		if err := s.Declare(def); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Declare registers a table. Declaring an existing table again with the same
// schema is a no-op; with a different schema it is an ErrSchema.
func (s *Store) Declare(def table.TableDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.tables[def.Name]; ok {
		if !existing.def.Equal(def) {
			return fmt.Errorf("%w: table %q is already declared with a different key schema", ErrSchema, def.Name)
		}
		return nil
	}
	s.tables[def.Name] = newMemTable(def)
	return nil
}

// Definition returns the key schema of a table.
func (s *Store) Definition(tableName string) (table.TableDefinition, error) {
	t, err := s.getTable(tableName)
	if err != nil {
		return table.TableDefinition{}, err
	}
	return t.def, nil
}

// Tables returns the names of all tables, sorted.
func (s *Store) Tables() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of items in a table.
func (s *Store) Count(tableName string) (int, error) {
	t, err := s.getTable(tableName)
	if err != nil {
		return 0, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.len(), nil
}

// Reset removes every item from every table. Table declarations are kept.
func (s *Store) Reset() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tables {
		t.mu.Lock()
		t.clear()
		t.mu.Unlock()
	}
}

// getTable resolves a table by name, creating it from the default definition
// the first time an undeclared table is used.
func (s *Store) getTable(name string) (*memTable, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: table name is required", ErrArgument)
	}
	s.mu.RLock()
	t, ok := s.tables[name]
	s.mu.RUnlock()
	if ok {
		return t, nil
	}

	if s.opts.DefaultDefinition == nil {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tables[name]; ok {
		return t, nil
	}
	t = newMemTable(s.opts.DefaultDefinition.WithName(name))
	s.tables[name] = t
	s.log.Debug("created table", zap.String("table", name))
	return t, nil
}

// keysFor returns the key schema of the table or of one of its indexes.
func (t *memTable) keysFor(indexName string) (table.PrimaryKeyDefinition, error) {
	if indexName == "" {
		return t.def.KeyDefinitions, nil
	}
	idx, ok := t.def.Index(indexName)
	if !ok {
		return table.PrimaryKeyDefinition{}, fmt.Errorf("%w: index %q not found on table %q", ErrArgument, indexName, t.def.Name)
	}
	return idx.KeyDefinitions, nil
}
