package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finqube/claimflow/dto"
)

func seedClaims(t *testing.T, store *memStore, claims ...dto.Claim) {
	t.Helper()
	_, err := store.SaveClaims(claims)
	require.NoError(t, err)
}

func TestDuplicateCheckVerdicts(t *testing.T) {
	store := newMemStore()
	seedClaims(t, store,
		dto.Claim{EmployeeID: "emp-1", Amount: "1250.00", Date: "2026-08-10", TransactionRef: "TXN-42"},
		dto.Claim{EmployeeID: "emp-1", Amount: "800.00", Date: "2026-08-01"},
		dto.Claim{EmployeeID: "emp-2", Amount: "1250.00", Date: "2026-08-10"},
	)
	svc := NewDuplicateService(store)

	tests := []struct {
		name      string
		req       dto.DuplicateCheckRequest
		duplicate bool
		matchType string
	}{
		{
			name:      "exact same amount date and ref",
			req:       dto.DuplicateCheckRequest{EmployeeID: "emp-1", Amount: "1250.00", Date: "2026-08-10", TransactionRef: "TXN-42"},
			duplicate: true,
			matchType: "exact",
		},
		{
			name:      "exact when probe has no ref",
			req:       dto.DuplicateCheckRequest{EmployeeID: "emp-1", Amount: "1250.00", Date: "2026-08-10"},
			duplicate: true,
			matchType: "exact",
		},
		{
			name:      "same day different ref is fuzzy",
			req:       dto.DuplicateCheckRequest{EmployeeID: "emp-1", Amount: "1250.00", Date: "2026-08-10", TransactionRef: "TXN-99"},
			duplicate: true,
			matchType: "fuzzy",
		},
		{
			name:      "same amount two days apart is fuzzy",
			req:       dto.DuplicateCheckRequest{EmployeeID: "emp-1", Amount: "800.00", Date: "2026-08-03"},
			duplicate: true,
			matchType: "fuzzy",
		},
		{
			name: "same amount outside the window",
			req:  dto.DuplicateCheckRequest{EmployeeID: "emp-1", Amount: "800.00", Date: "2026-08-20"},
		},
		{
			name: "different amount",
			req:  dto.DuplicateCheckRequest{EmployeeID: "emp-1", Amount: "801.00", Date: "2026-08-01"},
		},
		{
			name: "other employee's claims are not matched",
			req:  dto.DuplicateCheckRequest{EmployeeID: "emp-3", Amount: "1250.00", Date: "2026-08-10"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Check(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.duplicate, resp.IsDuplicate)
			assert.Equal(t, tt.matchType, resp.MatchType)
		})
	}
}

func TestDuplicateCheckAmountEqualityIsNumeric(t *testing.T) {
	store := newMemStore()
	seedClaims(t, store, dto.Claim{EmployeeID: "emp-1", Amount: "1250.00", Date: "2026-08-10"})
	svc := NewDuplicateService(store)

	resp, err := svc.Check(context.Background(), dto.DuplicateCheckRequest{
		EmployeeID: "emp-1", Amount: "1250", Date: "2026-08-10",
	})
	require.NoError(t, err)
	assert.True(t, resp.IsDuplicate)
	assert.Equal(t, "exact", resp.MatchType)
}

func TestDuplicateCheckUnparseableInputIsNotDuplicate(t *testing.T) {
	store := newMemStore()
	seedClaims(t, store, dto.Claim{EmployeeID: "emp-1", Amount: "1250.00", Date: "2026-08-10"})
	svc := NewDuplicateService(store)

	resp, err := svc.Check(context.Background(), dto.DuplicateCheckRequest{
		EmployeeID: "emp-1", Amount: "abc", Date: "2026-08-10",
	})
	require.NoError(t, err)
	assert.False(t, resp.IsDuplicate)
}

func TestDebouncerCoalescesRapidSchedules(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var mu sync.Mutex
	var runs, delivered int

	run := func() (*dto.DuplicateCheckResponse, error) {
		mu.Lock()
		runs++
		mu.Unlock()
		return &dto.DuplicateCheckResponse{}, nil
	}
	deliver := func(*dto.DuplicateCheckResponse, error) {
		mu.Lock()
		delivered++
		mu.Unlock()
	}

	d.Schedule("k", run, deliver)
	d.Schedule("k", run, deliver)
	d.Schedule("k", run, deliver)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return delivered == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, runs)
}

func TestDebouncerDropsStaleCompletion(t *testing.T) {
	d := NewDebouncer(time.Millisecond)

	firstRunning := make(chan struct{})
	release := make(chan struct{})
	results := make(chan string, 2)

	d.Schedule("k",
		func() (*dto.DuplicateCheckResponse, error) {
			close(firstRunning)
			<-release
			return &dto.DuplicateCheckResponse{MatchType: "stale"}, nil
		},
		func(resp *dto.DuplicateCheckResponse, err error) {
			results <- resp.MatchType
		})

	// Wait for the first probe to be in flight, then supersede it.
	<-firstRunning
	d.Schedule("k",
		func() (*dto.DuplicateCheckResponse, error) {
			return &dto.DuplicateCheckResponse{MatchType: "fresh"}, nil
		},
		func(resp *dto.DuplicateCheckResponse, err error) {
			results <- resp.MatchType
		})
	close(release)

	assert.Equal(t, "fresh", <-results)
	select {
	case got := <-results:
		t.Fatalf("stale completion was delivered: %q", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncerCancelSuppressesDelivery(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	delivered := make(chan struct{}, 1)
	d.Schedule("k",
		func() (*dto.DuplicateCheckResponse, error) {
			return &dto.DuplicateCheckResponse{}, nil
		},
		func(*dto.DuplicateCheckResponse, error) {
			delivered <- struct{}{}
		})
	d.Cancel("k")

	select {
	case <-delivered:
		t.Fatal("cancelled probe was delivered")
	case <-time.After(100 * time.Millisecond):
	}
}
