// Package onboard holds the working selection for an onboarding session:
// an ordered list of companies picked from the registry, enriched with a
// resolved town and a sequential bidder number, and flushed to the store
// in one batch.
package onboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/geocode"
	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/models"
	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/sequence"
)

// TownRefresh is the sentinel town value that forces re-resolution from the
// company's current address.
const TownRefresh = "refresh"

// DefaultBase seeds a session whose operator has not yet chosen a base, so
// every added company gets a valid 10-digit number from the start.
const DefaultBase = "0000000000"

var (
	ErrAlreadySelected  = errors.New("company already selected")
	ErrNotSelected      = errors.New("company not in selection")
	ErrInsertInProgress = errors.New("an insert is already in progress")
	ErrEmptySelection   = errors.New("selection is empty")
	ErrInvalidBase      = errors.New("base bidder number must be a non-negative integer")
)

// Resolver turns a street address into a town name. Resolution never fails
// outright; unresolvable addresses come back as the configured fallback.
type Resolver interface {
	ResolveTown(ctx context.Context, fullAddress string) geocode.TownResult
}

// BatchInserter writes an enriched selection to the supplier store.
type BatchInserter interface {
	InsertBatch(ctx context.Context, companies []models.EnrichedCompany) (*models.BatchResult, error)
}

// Update carries a partial row edit. Nil fields are left untouched.
type Update struct {
	Name         *string `json:"SUP_NAME"`
	Address      *string `json:"SUP_Address1"`
	Phone        *string `json:"SUP_Phone"`
	Email        *string `json:"SUP_Email"`
	Website      *string `json:"SUP_Website"`
	Town         *string `json:"SUP_Town"`
	BidderNumber *string `json:"BIDDER_NUMBER"`
	PrequalDate  *string `json:"date_prequal"`
	// Extra replaces the row's extension fields wholesale when present.
	Extra map[string]string `json:"extra"`
}

// Manager is the single-operator session state. All mutation goes through
// the mutex; town lookups and batch inserts run outside it so a slow
// geocoder cannot block reads.
type Manager struct {
	resolver Resolver
	inserter BatchInserter

	mu        sync.Mutex
	base      string
	companies []models.EnrichedCompany
	resolving int
	inserting bool
}

func NewManager(resolver Resolver, inserter BatchInserter, base string) *Manager {
	base = sequence.Normalize(base)
	if !sequence.ValidBase(base) {
		base = DefaultBase
	}
	return &Manager{
		resolver: resolver,
		inserter: inserter,
		base:     base,
	}
}

// Companies returns a copy of the selection in its current order.
func (m *Manager) Companies() []models.EnrichedCompany {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.companies)
}

// Base returns the current base bidder number.
func (m *Manager) Base() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.base
}

// Busy reports whether a town resolution or an insert is in flight.
func (m *Manager) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolving > 0 || m.inserting
}

// Add enriches a registry candidate and appends it to the selection. The
// town is resolved from the address, and the bidder number continues the
// sequence (last assigned plus 2, or the base for the first company).
// Adding an ID that is already selected is rejected.
func (m *Manager) Add(ctx context.Context, cand models.CompanyCandidate) (models.EnrichedCompany, error) {
	m.mu.Lock()
	if m.indexOf(cand.CompanyID) >= 0 {
		m.mu.Unlock()
		return models.EnrichedCompany{}, fmt.Errorf("%s: %w", cand.CompanyID, ErrAlreadySelected)
	}
	m.resolving++
	m.mu.Unlock()

	enriched := models.NewEnrichedCompany(cand)
	enriched.Town = m.resolver.ResolveTown(ctx, cand.Address).Town

	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolving--
	if m.indexOf(cand.CompanyID) >= 0 {
		return models.EnrichedCompany{}, fmt.Errorf("%s: %w", cand.CompanyID, ErrAlreadySelected)
	}
	last := ""
	if n := len(m.companies); n > 0 {
		last = m.companies[n-1].BidderNumber
	}
	enriched.BidderNumber = sequence.Next(last, m.base)
	m.companies = append(m.companies, enriched)
	return enriched, nil
}

// ApplyUpdate edits one selected row. A town of TownRefresh, or a blank town
// submitted for a company that has an address, re-resolves the town from the
// (possibly just updated) address. A manually entered bidder number is
// normalized to the fixed width and otherwise left alone.
func (m *Manager) ApplyUpdate(ctx context.Context, id string, upd Update) (models.EnrichedCompany, error) {
	m.mu.Lock()
	i := m.indexOf(id)
	if i < 0 {
		m.mu.Unlock()
		return models.EnrichedCompany{}, fmt.Errorf("%s: %w", id, ErrNotSelected)
	}

	c := m.companies[i]
	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.Address != nil {
		c.Address = *upd.Address
	}
	if upd.Phone != nil {
		c.Phone = *upd.Phone
	}
	if upd.Email != nil {
		c.Email = *upd.Email
	}
	if upd.Website != nil {
		c.Website = *upd.Website
	}
	if upd.PrequalDate != nil {
		c.PrequalDate = *upd.PrequalDate
	}
	if upd.BidderNumber != nil {
		c.BidderNumber = sequence.Normalize(*upd.BidderNumber)
	}
	if upd.Extra != nil {
		c.Extra = upd.Extra
	}

	reResolve := false
	if upd.Town != nil {
		switch town := strings.TrimSpace(*upd.Town); {
		case strings.EqualFold(town, TownRefresh):
			reResolve = true
		case town == "" && c.Address != "":
			reResolve = true
		default:
			c.Town = strings.ToUpper(town)
		}
	}

	if !reResolve {
		m.companies[i] = c
		m.mu.Unlock()
		return c, nil
	}

	m.resolving++
	m.mu.Unlock()

	c.Town = m.resolver.ResolveTown(ctx, c.Address).Town

	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolving--
	j := m.indexOf(id)
	if j < 0 {
		return models.EnrichedCompany{}, fmt.Errorf("%s: %w", id, ErrNotSelected)
	}
	m.companies[j] = c
	return c, nil
}

// SetBase validates the base bidder number and resequences every selected
// company in order: company i receives base + 2*i.
func (m *Manager) SetBase(base string) ([]models.EnrichedCompany, error) {
	if !sequence.ValidBase(base) {
		return nil, fmt.Errorf("%q: %w", base, ErrInvalidBase)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.base = sequence.Normalize(base)
	m.companies = sequence.Assign(m.base, m.companies)
	return m.snapshot(), nil
}

// Remove drops one company from the selection. Later companies keep their
// numbers; only a base change resequences.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%s: %w", id, ErrNotSelected)
	}
	m.companies = append(m.companies[:i], m.companies[i+1:]...)
	return nil
}

// Clear empties the selection.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.companies = nil
}

// Insert flushes the selection to the store. Only one insert may run at a
// time. A fully successful batch clears the selection; any other outcome
// keeps it, with duplicate rows flagged so the operator can amend them.
func (m *Manager) Insert(ctx context.Context) (*models.BatchResult, error) {
	m.mu.Lock()
	if m.inserting {
		m.mu.Unlock()
		return nil, ErrInsertInProgress
	}
	if len(m.companies) == 0 {
		m.mu.Unlock()
		return nil, ErrEmptySelection
	}
	m.inserting = true
	batch := m.snapshot()
	m.mu.Unlock()

	result, err := m.inserter.InsertBatch(ctx, batch)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserting = false
	if err != nil {
		return nil, err
	}
	if result.Success {
		m.companies = nil
		return result, nil
	}
	for _, rec := range result.Duplicates {
		if i := m.indexOf(rec.CompanyID); i >= 0 {
			m.companies[i].Duplicate = true
		}
	}
	return result, nil
}

// indexOf and snapshot require m.mu to be held.

func (m *Manager) indexOf(id string) int {
	for i := range m.companies {
		if m.companies[i].CompanyID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) snapshot() []models.EnrichedCompany {
	out := make([]models.EnrichedCompany, len(m.companies))
	copy(out, m.companies)
	return out
}
