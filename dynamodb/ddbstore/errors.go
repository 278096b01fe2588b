package ddbstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/acksell/dynamini/dynamodb/table"
)

var (
	// ErrNotFound is returned by Get when no item exists for the key.
	ErrNotFound = errors.New("item not found")
	// ErrSchema is returned when a key does not fit the table's key schema,
	// or when a table is declared twice with different schemas.
	ErrSchema = table.ErrSchema
	// ErrArgument is returned for malformed requests, e.g. an unknown index name.
	ErrArgument = errors.New("invalid argument")
	// ErrTableNotFound is returned for tables that were never declared when the
	// store has no default definition. It wraps ErrArgument.
	ErrTableNotFound = fmt.Errorf("%w: table not found", ErrArgument)
	// ErrDuplicateKey is returned when a batch read names the same key twice.
	ErrDuplicateKey = errors.New("provided list of item keys contains duplicates")
)

// ValidationError is returned when a query condition does not match the key
// schema of the table or index being queried. Callers may match on the message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func missedKeySchema(names []string) *ValidationError {
	return &ValidationError{Message: "Query condition missed key schema element: " + strings.Join(names, ", ")}
}
