package models

import "time"

// CompanyCandidate is a single result of a registry search. Candidates are
// read-only: enrichment happens on the EnrichedCompany built from one.
type CompanyCandidate struct {
	CompanyID string `json:"suppuserid"`
	VendorID  string `json:"vendor_id"`
	Name      string `json:"SUP_NAME"`
	Address   string `json:"SUP_Address1"`
	Phone     string `json:"SUP_Phone"`
	Email     string `json:"SUP_Email"`
	Website   string `json:"SUP_Website"`
}

// EnrichedCompany is a candidate that has been added to the working selection:
// it carries the resolved town, the assigned bidder number and the
// prequalification date. Duplicate is set only from insert-result feedback.
type EnrichedCompany struct {
	CompanyCandidate
	Town         string `json:"SUP_Town"`
	BidderNumber string `json:"BIDDER_NUMBER"`
	PrequalDate  string `json:"date_prequal"`
	Duplicate    bool   `json:"duplicate,omitempty"`
	// Extra carries supplier fields outside the fixed schema end to end
	// without widening the struct.
	Extra map[string]string `json:"extra,omitempty"`
}

// NewEnrichedCompany wraps a candidate with the default prequalification date
// (today, operator locale).
func NewEnrichedCompany(c CompanyCandidate) EnrichedCompany {
	return EnrichedCompany{
		CompanyCandidate: c,
		PrequalDate:      time.Now().Format("2006-01-02"),
	}
}

// Record outcome statuses for a batch insert.
const (
	OutcomeInserted  = "inserted"
	OutcomeDuplicate = "duplicate"
	OutcomeError     = "error"
)

// RecordOutcome classifies one record of a batch as exactly one of
// inserted, duplicate or error.
type RecordOutcome struct {
	CompanyID string `json:"suppuserid"`
	Name      string `json:"company_name"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
}

// BatchResult reports a whole insertBatch run. Success is true only when
// every record was inserted; the caller then clears the selection.
type BatchResult struct {
	Inserted   []RecordOutcome `json:"inserted"`
	Duplicates []RecordOutcome `json:"duplicates"`
	Errors     []RecordOutcome `json:"errors"`
	Success    bool            `json:"success"`
}

// DuplicateConflict is the wire payload returned when a batch halts on a
// store uniqueness violation.
type DuplicateConflict struct {
	Error       string `json:"error"` // always "DUPLICATE_ENTRY"
	DuplicateID string `json:"duplicateId"`
	CompanyName string `json:"companyName"`
	Message     string `json:"message"`
}
