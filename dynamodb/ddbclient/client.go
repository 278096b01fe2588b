// Package ddbclient exposes a ddbstore.Store through the method set of the AWS
// SDK v2 DynamoDB client, so code written against *dynamodb.Client can run
// against the in-memory store in tests.
//
// Only the request members the store understands are honoured. Expressions
// other than key conditions (filters, projections, conditions, updates) are
// rejected with a ValidationException rather than silently ignored.
package ddbclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/acksell/dynamini/dynamodb/ddbiface"
	"github.com/acksell/dynamini/dynamodb/ddbstore"
	"github.com/acksell/dynamini/dynamodb/table"
	"github.com/acksell/dynamini/dynamodb/update"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/smithy-go"
)

const (
	CodeValidation       = "ValidationException"
	CodeResourceNotFound = "ResourceNotFoundException"
)

// Client serves DynamoDB API calls from a store. It is safe for concurrent use.
type Client struct {
	store *ddbstore.Store
}

var _ ddbiface.AWSDynamoClientV2 = &Client{}

func New(store *ddbstore.Store) *Client {
	return &Client{store: store}
}

// NewMemoryClient creates a client backed by a fresh store with default options.
func NewMemoryClient(defs ...table.TableDefinition) *Client {
	store, err := ddbstore.New(ddbstore.DefaultOptions(), defs...)
	if err != nil {
		panic(err)
	}
	return New(store)
}

// Store returns the store the client reads and writes.
func (c *Client) Store() *ddbstore.Store {
	return c.store
}

func (c *Client) keySchema(tableName *string, indexName *string) (table.TableDefinition, table.PrimaryKeyDefinition, error) {
	if tableName == nil || *tableName == "" {
		return table.TableDefinition{}, table.PrimaryKeyDefinition{}, validationError("1 validation error detected: Value null at 'tableName' failed to satisfy constraint: Member must not be null")
	}
	def, err := c.store.Definition(*tableName)
	if err != nil {
		return table.TableDefinition{}, table.PrimaryKeyDefinition{}, apiError(err)
	}
	if indexName == nil {
		return def, def.KeyDefinitions, nil
	}
	idx, ok := def.Index(*indexName)
	if !ok {
		return def, table.PrimaryKeyDefinition{}, validationError(fmt.Sprintf("The table does not have the specified index: %s", *indexName))
	}
	return def, idx.KeyDefinitions, nil
}

func validationError(msg string) error {
	return &smithy.GenericAPIError{Code: CodeValidation, Message: msg, Fault: smithy.FaultClient}
}

// apiError translates store errors into the API errors the service returns.
func apiError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return err
	}
	var verr *ddbstore.ValidationError
	if errors.As(err, &verr) {
		return validationError(verr.Message)
	}
	var unsplittable *update.UnsplittableValueError
	if errors.As(err, &unsplittable) {
		return validationError("Item size has exceeded the maximum allowed size: " + unsplittable.Error())
	}
	switch {
	case errors.Is(err, ddbstore.ErrTableNotFound):
		return &smithy.GenericAPIError{Code: CodeResourceNotFound, Message: "Requested resource not found", Fault: smithy.FaultClient}
	case errors.Is(err, ddbstore.ErrSchema):
		return validationError("The provided key element does not match the schema: " + err.Error())
	case errors.Is(err, ddbstore.ErrDuplicateKey):
		return validationError("Provided list of item keys contains duplicates")
	case errors.Is(err, ddbstore.ErrArgument), errors.Is(err, update.ErrInvalidUpdate):
		return validationError(err.Error())
	}
	return err
}

type member struct {
	name string
	set  bool
}

// rejectUnsupported fails on the first request member the store cannot honour.
func rejectUnsupported(members ...member) error {
	for _, m := range members {
		if m.set {
			return validationError(fmt.Sprintf("%s is not supported", m.name))
		}
	}
	return nil
}

// begin is called first by every operation. Options are accepted for signature
// compatibility and otherwise ignored.
func begin(ctx context.Context, _ []func(*dynamodb.Options)) error {
	return ctx.Err()
}
