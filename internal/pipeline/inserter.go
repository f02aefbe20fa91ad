// Package pipeline drives the supplier batch insert: strictly ordered,
// one record at a time, classifying every outcome as inserted, duplicate
// or error.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/db"
	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/models"
)

// SupplierWriter is the slice of the store the inserter needs.
type SupplierWriter interface {
	InsertSupplier(ctx context.Context, rec models.EnrichedCompany) error
}

// ValidationError rejects a malformed batch before any store call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Inserter performs duplicate-aware batch insertion. It is stateless across
// calls: re-running after the operator removes an offending row only touches
// the records it is handed.
type Inserter struct {
	store SupplierWriter

	// FailFast halts the whole batch at the first duplicate so the
	// operator can correct and resubmit. Non-duplicate write errors never
	// abort the batch either way.
	FailFast bool
}

func NewInserter(store SupplierWriter) *Inserter {
	return &Inserter{store: store, FailFast: true}
}

// InsertBatch writes the companies in order. Records are never written
// concurrently: duplicate detection must observe every prior write within
// the same batch.
func (ins *Inserter) InsertBatch(ctx context.Context, companies []models.EnrichedCompany) (*models.BatchResult, error) {
	if len(companies) == 0 {
		return nil, &ValidationError{Message: "no companies to insert"}
	}
	for i, c := range companies {
		if c.Name == "" || c.BidderNumber == "" {
			return nil, &ValidationError{
				Message: fmt.Sprintf("company at position %d is missing required fields", i),
			}
		}
	}

	// Short id tying together the log lines of one batch.
	batchID := uuid.New().String()[:8]

	result := &models.BatchResult{
		Inserted:   []models.RecordOutcome{},
		Duplicates: []models.RecordOutcome{},
		Errors:     []models.RecordOutcome{},
	}

	for _, c := range companies {
		err := ins.store.InsertSupplier(ctx, c)
		if err == nil {
			result.Inserted = append(result.Inserted, models.RecordOutcome{
				CompanyID: c.CompanyID,
				Name:      c.Name,
				Status:    models.OutcomeInserted,
			})
			continue
		}

		var dup *db.DuplicateError
		if errors.As(err, &dup) {
			result.Duplicates = append(result.Duplicates, models.RecordOutcome{
				CompanyID: c.CompanyID,
				Name:      c.Name,
				Status:    models.OutcomeDuplicate,
				Message:   dup.Error(),
			})
			if ins.FailFast {
				log.Printf("[insert %s] halting batch on duplicate %s (%s)", batchID, c.CompanyID, c.Name)
				return result, nil
			}
			continue
		}

		log.Printf("[insert %s] record %s failed: %v", batchID, c.CompanyID, err)
		result.Errors = append(result.Errors, models.RecordOutcome{
			CompanyID: c.CompanyID,
			Name:      c.Name,
			Status:    models.OutcomeError,
			Message:   err.Error(),
		})
	}

	result.Success = len(result.Duplicates) == 0 && len(result.Errors) == 0
	return result, nil
}

// ConflictPayload builds the wire payload for a halted batch from its first
// duplicate outcome.
func ConflictPayload(result *models.BatchResult) *models.DuplicateConflict {
	if len(result.Duplicates) == 0 {
		return nil
	}
	first := result.Duplicates[0]
	return &models.DuplicateConflict{
		Error:       "DUPLICATE_ENTRY",
		DuplicateID: first.CompanyID,
		CompanyName: first.Name,
		Message:     first.Message,
	}
}
