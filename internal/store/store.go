// Package store defines the persistence service capability surface the
// client consumes. Implementations are injected; the client never knows
// about transports beyond this interface.
package store

import (
	"context"

	"github.com/billedhq/expense-client/internal/domain/entity"
)

// Store is the persistence service entry point
type Store interface {
	// Bills returns the bills capability
	Bills() BillsClient
}

// CreateInput carries the multipart payload of an attachment upload:
// the file blob plus the owner's email. Headers are forwarded verbatim.
type CreateInput struct {
	FileName    string
	ContentType string
	Content     []byte
	Email       string
	Headers     map[string]string
}

// UpdateInput carries the serialized bill fields and the selector
// identifying the target record by id.
type UpdateInput struct {
	Bill     entity.Bill
	Selector string
}

// BillsClient exposes the operations over bill records
type BillsClient interface {
	// List retrieves all raw bill records visible to the caller
	List(ctx context.Context) ([]entity.Bill, error)

	// Create uploads an attachment and opens a bill record for it,
	// returning the stored file URL and the record key as a pair
	Create(ctx context.Context, input CreateInput) (entity.UploadResult, error)

	// Update writes the assembled bill fields onto the record named by
	// the selector and returns the stored record
	Update(ctx context.Context, input UpdateInput) (entity.Bill, error)
}
