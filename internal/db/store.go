package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/models"
)

const uniqueViolation = "23505"

// searchLimit caps registry search results.
const searchLimit = 20

// Store mediates both databases: registry reads go to the live pool,
// supplier writes to the JQS pool.
type Store struct {
	jqs  *pgxpool.Pool
	live *pgxpool.Pool
}

func NewStore(jqs, live *pgxpool.Pool) *Store {
	return &Store{jqs: jqs, live: live}
}

// DuplicateError is the store's uniqueness-conflict signal, distinct from
// every other failure mode. It carries enough detail for the operator to
// identify and remove the offending row.
type DuplicateError struct {
	CompanyID string
	Name      string
	Key       string // business key that conflicted: "suppuserid" or "sup_email"
	Value     string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s %q for company %s (%s)", e.Key, e.Value, e.CompanyID, e.Name)
}

// SearchCompanies looks up registry companies by name fragment:
// case-insensitive substring match, capped at 20 rows, excluding records
// whose vendor identifier is purely numeric.
func (s *Store) SearchCompanies(ctx context.Context, fragment string) ([]models.CompanyCandidate, error) {
	rows, err := s.live.Query(ctx, `
		SELECT fldi_company_id, fldv_companyname, fldi_vendor_id,
		       COALESCE(fldv_address, ''), COALESCE(fldv_phone, ''),
		       COALESCE(fldv_email, ''), COALESCE(fldv_website, '')
		FROM tbl_company_mst
		WHERE fldv_companyname ILIKE '%' || $1 || '%'
		LIMIT $2
	`, fragment, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("registry search failed: %w", err)
	}
	defer rows.Close()

	candidates := []models.CompanyCandidate{}
	for rows.Next() {
		var c models.CompanyCandidate
		if err := rows.Scan(&c.CompanyID, &c.Name, &c.VendorID, &c.Address, &c.Phone, &c.Email, &c.Website); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		if isNumericVendorID(c.VendorID) {
			continue
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return candidates, nil
}

// isNumericVendorID reports whether a vendor identifier consists solely of
// decimal digits. Such records are placeholder entries and are excluded
// from search results.
func isNumericVendorID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// InsertSupplier writes one supplier row. A uniqueness conflict on either
// business key comes back as *DuplicateError; all other failures are
// returned as-is.
func (s *Store) InsertSupplier(ctx context.Context, rec models.EnrichedCompany) error {
	_, err := s.jqs.Exec(ctx, `
		INSERT INTO tblsupplier (
			suppuserid, sup_name, sup_address1, sup_town,
			sup_phone, sup_email, sup_website, date_prequal, bidder_number
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		rec.CompanyID, rec.Name, rec.Address, rec.Town,
		rec.Phone, rec.Email, rec.Website, rec.PrequalDate, rec.BidderNumber,
	)
	if err != nil {
		if dup := classifyDuplicate(err, rec); dup != nil {
			return dup
		}
		return fmt.Errorf("supplier insert failed: %w", err)
	}
	return nil
}

// classifyDuplicate inspects a pgx error and, when it is a unique violation
// on one of the supplier business keys, builds the DuplicateError for it.
func classifyDuplicate(err error, rec models.EnrichedCompany) *DuplicateError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}

	dup := &DuplicateError{
		CompanyID: rec.CompanyID,
		Name:      rec.Name,
		Key:       "suppuserid",
		Value:     rec.CompanyID,
	}
	if strings.Contains(pgErr.ConstraintName, "email") {
		dup.Key = "sup_email"
		dup.Value = rec.Email
	}
	return dup
}
