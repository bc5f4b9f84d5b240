package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/finqube/claimflow/dto"
	"github.com/finqube/claimflow/prom"
	"github.com/finqube/claimflow/storage"
)

const (
	// fuzzyWindowDays is how far apart two same-amount claims can be and
	// still count as a probable duplicate.
	fuzzyWindowDays = 3

	// DefaultCheckTimeout bounds a duplicate probe so the caller never
	// sits in "checking" forever.
	DefaultCheckTimeout = 5 * time.Second

	// DebounceDelay is how long field edits are coalesced before a
	// duplicate probe actually runs.
	DebounceDelay = 500 * time.Millisecond
)

// DuplicateService answers "has this employee already claimed this expense".
type DuplicateService struct {
	store   storage.Store
	timeout time.Duration
}

func NewDuplicateService(store storage.Store) *DuplicateService {
	return &DuplicateService{store: store, timeout: DefaultCheckTimeout}
}

// Check compares the probe against the employee's stored claims.
// Exact match: same amount and date, and the transaction ref either absent
// or identical. Fuzzy match: same amount within a few days, or same amount
// and date under a different transaction ref.
func (s *DuplicateService) Check(ctx context.Context, req dto.DuplicateCheckRequest) (*dto.DuplicateCheckResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	claims, err := s.store.ListClaimsByEmployee(req.EmployeeID)
	if err != nil {
		prom.DuplicateChecksTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		prom.DuplicateChecksTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return &dto.DuplicateCheckResponse{}, nil
	}
	reqDate, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return &dto.DuplicateCheckResponse{}, nil
	}

	var exact, fuzzy []string
	for _, claim := range claims {
		stored, err := decimal.NewFromString(claim.Amount)
		if err != nil || !stored.Equal(amount) {
			continue
		}
		claimDate, err := time.Parse("2006-01-02", claim.Date)
		if err != nil {
			continue
		}

		diff := daysApart(reqDate, claimDate)
		sameRef := req.TransactionRef == "" || claim.TransactionRef == req.TransactionRef
		switch {
		case diff == 0 && sameRef:
			exact = append(exact, claim.ClaimNumber)
		case diff <= fuzzyWindowDays:
			fuzzy = append(fuzzy, claim.ClaimNumber)
		}
	}

	switch {
	case len(exact) > 0:
		prom.DuplicateChecksTotal.WithLabelValues("exact").Inc()
		return &dto.DuplicateCheckResponse{IsDuplicate: true, MatchType: "exact", DuplicateClaims: exact}, nil
	case len(fuzzy) > 0:
		prom.DuplicateChecksTotal.WithLabelValues("fuzzy").Inc()
		return &dto.DuplicateCheckResponse{IsDuplicate: true, MatchType: "fuzzy", DuplicateClaims: fuzzy}, nil
	default:
		prom.DuplicateChecksTotal.WithLabelValues("none").Inc()
		return &dto.DuplicateCheckResponse{}, nil
	}
}

func daysApart(a, b time.Time) int {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return int(diff.Hours() / 24)
}

// Debouncer coalesces rapid edits into one duplicate probe per key and
// enforces last-request-wins: a completion whose sequence number is older
// than the newest scheduled request for the same key is dropped.
type Debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	timers map[string]*time.Timer
	seq    map[string]uint64
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:  delay,
		timers: make(map[string]*time.Timer),
		seq:    make(map[string]uint64),
	}
}

// Schedule queues run for key after the debounce delay. deliver is invoked
// only if no newer request for the same key was scheduled in the meantime.
func (d *Debouncer) Schedule(key string, run func() (*dto.DuplicateCheckResponse, error), deliver func(*dto.DuplicateCheckResponse, error)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq[key]++
	mySeq := d.seq[key]

	if timer, ok := d.timers[key]; ok {
		timer.Stop()
	}

	d.timers[key] = time.AfterFunc(d.delay, func() {
		resp, err := run()

		d.mu.Lock()
		latest := d.seq[key]
		d.mu.Unlock()
		if mySeq != latest {
			prom.DuplicateChecksTotal.WithLabelValues("stale").Inc()
			log.Debug().Str("key", key).Uint64("seq", mySeq).Msg("discarding superseded duplicate check")
			return
		}
		deliver(resp, err)
	})
}

// Cancel drops any pending probe for key.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if timer, ok := d.timers[key]; ok {
		timer.Stop()
		delete(d.timers, key)
	}
	// Bump the sequence so an already-fired run cannot deliver.
	d.seq[key]++
}
