// Package batches records each committed upload batch and exports a batch's
// applications, issuances, and people as one workbook.
package batches

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDLength is the number of characters in a batch ID.
const IDLength = 8

// Batch is the bookkeeping record of one committed upload.
type Batch struct {
	ID          string    `json:"batch_id"`
	CreatedAt   time.Time `json:"created_at"`
	SourceLabel string    `json:"source_label"`
	SourceFiles string    `json:"source_files"`
	Notes       string    `json:"notes"`
}

// CreateCommand describes a batch to record.
type CreateCommand struct {
	ID          string   `json:"batch_id"`
	SourceLabel string   `json:"source_label"`
	SourceFiles []string `json:"source_files"`
	Notes       string   `json:"notes"`
}

// NewID returns a fresh batch ID: the first eight characters of a random UUID.
func NewID() string {
	return uuid.NewString()[:IDLength]
}

// RowID labels the n-th (1-based) row of a checked batch.
func RowID(batchID string, n int) string {
	return fmt.Sprintf("%s-%d", batchID, n)
}

func joinFiles(files []string) string {
	return strings.Join(files, ", ")
}
