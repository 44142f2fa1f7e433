package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	directory "fuelstation-cloud/internal/directory/domain"
	"fuelstation-cloud/internal/ledger/application"
	ledger "fuelstation-cloud/internal/ledger/domain"
)

type state struct {
	nozzles      map[string]*directory.Nozzle
	creditors    map[string]*ledger.Creditor
	readings     []*ledger.Reading
	transactions []*ledger.CreditTransaction
	settlements  []*ledger.Settlement
	links        map[string][]string
}

func newState() *state {
	return &state{
		nozzles:   make(map[string]*directory.Nozzle),
		creditors: make(map[string]*ledger.Creditor),
		links:     make(map[string][]string),
	}
}

func (s *state) clone() *state {
	next := newState()
	for id, n := range s.nozzles {
		copy := *n
		next.nozzles[id] = &copy
	}
	for id, c := range s.creditors {
		next.creditors[id] = c.Clone()
	}
	next.readings = make([]*ledger.Reading, len(s.readings))
	for i, r := range s.readings {
		next.readings[i] = r.Clone()
	}
	next.transactions = make([]*ledger.CreditTransaction, len(s.transactions))
	for i, t := range s.transactions {
		copy := *t
		next.transactions[i] = &copy
	}
	next.settlements = make([]*ledger.Settlement, len(s.settlements))
	for i, st := range s.settlements {
		next.settlements[i] = st.Clone()
	}
	for id, readings := range s.links {
		next.links[id] = append([]string(nil), readings...)
	}
	return next
}

// Store is an in-memory ledger store for tests. Each unit of work runs
// against a clone of the state that replaces it only on success, mirroring
// transactional rollback.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{st: newState()}
}

// InTx runs fn against a cloned state and commits by swapping it in.
// Transactions serialize on one mutex, the in-memory stand-in for row locks.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx application.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.st.clone()
	if err := fn(ctx, &memTx{st: next}); err != nil {
		return err
	}
	s.st = next
	return nil
}

// AddNozzle seeds a nozzle.
func (s *Store) AddNozzle(n directory.Nozzle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.nozzles[n.ID] = &n
}

// AddCreditor seeds a creditor.
func (s *Store) AddCreditor(c ledger.Creditor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.creditors[c.ID] = &c
}

// Nozzle returns a seeded nozzle by id.
func (s *Store) Nozzle(id string) *directory.Nozzle {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.st.nozzles[id]
	if !ok {
		return nil
	}
	copy := *n
	return &copy
}

// Creditor returns a creditor by id.
func (s *Store) Creditor(id string) *ledger.Creditor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.creditors[id].Clone()
}

// Readings returns all readings in insertion order.
func (s *Store) Readings() []*ledger.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*ledger.Reading, len(s.st.readings))
	for i, r := range s.st.readings {
		result[i] = r.Clone()
	}
	return result
}

// Transactions returns all credit ledger entries in insertion order.
func (s *Store) Transactions() []*ledger.CreditTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*ledger.CreditTransaction, len(s.st.transactions))
	for i, t := range s.st.transactions {
		copy := *t
		result[i] = &copy
	}
	return result
}

// Settlements returns all settlement rows in insertion order.
func (s *Store) Settlements() []*ledger.Settlement {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*ledger.Settlement, len(s.st.settlements))
	for i, st := range s.st.settlements {
		result[i] = st.Clone()
	}
	return result
}

// LinkedReadings returns the reading ids tied to a settlement.
func (s *Store) LinkedReadings(settlementID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.st.links[settlementID]...)
}

type memTx struct {
	st *state
}

func (t *memTx) NozzleForUpdate(ctx context.Context, nozzleID string) (*directory.Nozzle, error) {
	_ = ctx
	n, ok := t.st.nozzles[nozzleID]
	if !ok {
		return nil, nil
	}
	copy := *n
	return &copy, nil
}

func (t *memTx) UpdateNozzleLastReading(ctx context.Context, nozzleID string, value decimal.Decimal, at time.Time) error {
	_ = ctx
	if n, ok := t.st.nozzles[nozzleID]; ok {
		n.LastReading = value
		n.UpdatedAt = at.UTC()
	}
	return nil
}

func (t *memTx) HasReadings(ctx context.Context, nozzleID string) (bool, error) {
	_ = ctx
	for _, r := range t.st.readings {
		if r.NozzleID == nozzleID {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) LatestReadingOnOrBefore(ctx context.Context, nozzleID string, date time.Time) (*ledger.Reading, error) {
	_ = ctx
	var best *ledger.Reading
	for _, r := range t.st.readings {
		if r.NozzleID != nozzleID || r.ReadingDate.After(date) {
			continue
		}
		if best == nil || !r.ReadingDate.Before(best.ReadingDate) {
			best = r
		}
	}
	return best.Clone(), nil
}

func (t *memTx) FirstReadingAfter(ctx context.Context, nozzleID string, date time.Time) (*ledger.Reading, error) {
	_ = ctx
	var best *ledger.Reading
	for _, r := range t.st.readings {
		if r.NozzleID != nozzleID || !r.ReadingDate.After(date) {
			continue
		}
		if best == nil || r.ReadingDate.Before(best.ReadingDate) {
			best = r
		}
	}
	return best.Clone(), nil
}

func (t *memTx) InsertReading(ctx context.Context, r *ledger.Reading) error {
	_ = ctx
	t.st.readings = append(t.st.readings, r.Clone())
	return nil
}

func (t *memTx) UpdateReadingChain(ctx context.Context, r *ledger.Reading) error {
	_ = ctx
	for _, existing := range t.st.readings {
		if existing.ID == r.ID {
			existing.PreviousReading = r.PreviousReading
			existing.LitresSold = r.LitresSold
			existing.TotalAmount = r.TotalAmount
			return nil
		}
	}
	return ledger.ErrReadingNotFound
}

func (t *memTx) InsertCreditor(ctx context.Context, c *ledger.Creditor) error {
	_ = ctx
	t.st.creditors[c.ID] = c.Clone()
	return nil
}

func (t *memTx) CreditorForUpdate(ctx context.Context, creditorID string) (*ledger.Creditor, error) {
	_ = ctx
	return t.st.creditors[creditorID].Clone(), nil
}

func (t *memTx) UpdateCreditorBalance(ctx context.Context, creditorID string, balance decimal.Decimal, at time.Time) error {
	_ = ctx
	c, ok := t.st.creditors[creditorID]
	if !ok {
		return ledger.ErrCreditorNotFound
	}
	c.Balance = balance
	c.UpdatedAt = at.UTC()
	return nil
}

func (t *memTx) InsertCreditTransaction(ctx context.Context, e *ledger.CreditTransaction) error {
	_ = ctx
	copy := *e
	t.st.transactions = append(t.st.transactions, &copy)
	return nil
}

func (t *memTx) SumCashForDay(ctx context.Context, stationID string, day time.Time) (decimal.Decimal, error) {
	_ = ctx
	sum := decimal.Zero
	for _, r := range t.st.readings {
		if r.StationID == stationID && r.ReadingDate.Equal(day) && !r.IsInitial {
			sum = sum.Add(r.CashAmount)
		}
	}
	return sum, nil
}

func (t *memTx) ActiveSettlement(ctx context.Context, stationID string, day time.Time) (*ledger.Settlement, error) {
	_ = ctx
	for _, s := range t.st.settlements {
		if s.StationID == stationID && s.Day.Equal(day) && s.RowStatus == ledger.SettlementActive {
			return s.Clone(), nil
		}
	}
	return nil, nil
}

func (t *memTx) MarkSettlementSuperseded(ctx context.Context, settlementID string) error {
	_ = ctx
	for _, s := range t.st.settlements {
		if s.ID == settlementID {
			s.RowStatus = ledger.SettlementSuperseded
			return nil
		}
	}
	return ledger.ErrSettlementNotFound
}

func (t *memTx) InsertSettlement(ctx context.Context, s *ledger.Settlement) error {
	_ = ctx
	t.st.settlements = append(t.st.settlements, s.Clone())
	return nil
}

func (t *memTx) LinkSettlementReadings(ctx context.Context, settlementID, stationID string, day time.Time) error {
	_ = ctx
	for _, r := range t.st.readings {
		if r.StationID == stationID && r.ReadingDate.Equal(day) && !r.IsInitial {
			t.st.links[settlementID] = append(t.st.links[settlementID], r.ID)
		}
	}
	return nil
}

// OutstandingBalances implements the report store over the live state.
func (s *Store) OutstandingBalances(ctx context.Context, stationID string) ([]application.OutstandingBalance, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []application.OutstandingBalance
	for _, c := range s.st.creditors {
		if c.StationID != stationID || !c.Balance.IsPositive() {
			continue
		}
		last := c.UpdatedAt
		for _, t := range s.st.transactions {
			if t.CreditorID == c.ID && t.TransactionDate.After(last) {
				last = t.TransactionDate
			}
		}
		result = append(result, application.OutstandingBalance{Creditor: *c.Clone(), LastTransactionDate: last})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Creditor.Name < result[j].Creditor.Name })
	return result, nil
}

// SalesTotals aggregates gross sales and credit extended over [from, to).
func (s *Store) SalesTotals(ctx context.Context, stationID string, from, to time.Time) (gross, credit decimal.Decimal, err error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	gross, credit = decimal.Zero, decimal.Zero
	for _, r := range s.st.readings {
		if r.StationID != stationID || r.IsInitial {
			continue
		}
		if r.ReadingDate.Before(from) || !r.ReadingDate.Before(to) {
			continue
		}
		gross = gross.Add(r.TotalAmount)
		credit = credit.Add(r.CreditAmount)
	}
	return gross, credit, nil
}

// VarianceTotal sums active settlement variances over [from, to).
func (s *Store) VarianceTotal(ctx context.Context, stationID string, from, to time.Time) (decimal.Decimal, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, st := range s.st.settlements {
		if st.StationID != stationID || st.RowStatus != ledger.SettlementActive {
			continue
		}
		if st.Day.Before(from) || !st.Day.Before(to) {
			continue
		}
		total = total.Add(st.Variance)
	}
	return total, nil
}

// DayReport builds the day summary over the live state.
func (s *Store) DayReport(ctx context.Context, stationID string, day time.Time) (*application.DayReport, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	report := &application.DayReport{StationID: stationID, Day: day.UTC()}
	for _, r := range s.st.readings {
		if r.StationID != stationID || !r.ReadingDate.Equal(day) || r.IsInitial {
			continue
		}
		report.Lines = append(report.Lines, application.DayReportLine{
			NozzleID:        r.NozzleID,
			ReadingValue:    r.ReadingValue,
			PreviousReading: r.PreviousReading,
			LitresSold:      r.LitresSold,
			PricePerLitre:   r.PricePerLitre,
			TotalAmount:     r.TotalAmount,
			CashAmount:      r.CashAmount,
			OnlineAmount:    r.OnlineAmount,
			CreditAmount:    r.CreditAmount,
		})
		report.TotalLitres = report.TotalLitres.Add(r.LitresSold)
		report.GrossSales = report.GrossSales.Add(r.TotalAmount)
		report.CashTotal = report.CashTotal.Add(r.CashAmount)
		report.OnlineTotal = report.OnlineTotal.Add(r.OnlineAmount)
		report.CreditTotal = report.CreditTotal.Add(r.CreditAmount)
	}
	for _, st := range s.st.settlements {
		if st.StationID == stationID && st.Day.Equal(day) && st.RowStatus == ledger.SettlementActive {
			report.Settlement = st.Clone()
			break
		}
	}
	return report, nil
}

// CreditorByID loads one creditor from the live state.
func (s *Store) CreditorByID(ctx context.Context, creditorID string) (*ledger.Creditor, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.creditors[creditorID]
	if !ok {
		return nil, ledger.ErrCreditorNotFound
	}
	return c.Clone(), nil
}

// Creditors lists a station's creditors sorted by name.
func (s *Store) Creditors(ctx context.Context, stationID string) ([]ledger.Creditor, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []ledger.Creditor
	for _, c := range s.st.creditors {
		if c.StationID == stationID {
			result = append(result, *c.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}
