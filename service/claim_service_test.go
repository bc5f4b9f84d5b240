package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finqube/claimflow/client"
	"github.com/finqube/claimflow/dto"
	"github.com/finqube/claimflow/storage"
)

// memStore is an in-memory storage.Store for service tests.
type memStore struct {
	mu       sync.Mutex
	seq      uint64
	claims   map[string]dto.Claim
	settings map[string]json.RawMessage
	saveErr  error
}

func newMemStore() *memStore {
	return &memStore{
		claims:   make(map[string]dto.Claim),
		settings: make(map[string]json.RawMessage),
	}
}

func (m *memStore) SaveClaims(claims []dto.Claim) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	numbers := make([]string, 0, len(claims))
	for i := range claims {
		m.seq++
		claims[i].ClaimNumber = fmt.Sprintf("CLM-%06d", m.seq)
		m.claims[claims[i].ClaimNumber] = claims[i]
		numbers = append(numbers, claims[i].ClaimNumber)
	}
	return numbers, nil
}

func (m *memStore) GetClaim(number string) (*dto.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	claim, ok := m.claims[number]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, number)
	}
	return &claim, nil
}

func (m *memStore) ListClaims() ([]*dto.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*dto.Claim, 0, len(m.claims))
	for number := range m.claims {
		claim := m.claims[number]
		out = append(out, &claim)
	}
	return out, nil
}

func (m *memStore) ListClaimsByEmployee(employeeID string) ([]*dto.Claim, error) {
	all, _ := m.ListClaims()
	out := make([]*dto.Claim, 0)
	for _, c := range all {
		if c.EmployeeID == employeeID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) SaveSettings(section string, raw json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[section] = raw
	return nil
}

func (m *memStore) GetSettings(section string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.settings[section]
	if !ok {
		return nil, fmt.Errorf("%w: settings %s", storage.ErrNotFound, section)
	}
	return raw, nil
}

func (m *memStore) Close() error { return nil }

type capturedBroadcast struct {
	urls  []string
	event client.ClaimEvent
}

type fakeNotifier struct {
	broadcasts chan capturedBroadcast
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{broadcasts: make(chan capturedBroadcast, 4)}
}

func (f *fakeNotifier) Broadcast(ctx context.Context, urls []string, event client.ClaimEvent) {
	f.broadcasts <- capturedBroadcast{urls: urls, event: event}
}

func extractedClaim(id, category, amount, date string, selected bool) dto.ExtractedClaim {
	return dto.ExtractedClaim{
		ID:       id,
		Selected: selected,
		Category: category,
		Title:    "Test - " + category,
		Amount:   amount,
		Date:     date,
		FieldSources: map[string]dto.FieldSource{
			dto.FieldAmount: dto.SourceAuto,
		},
	}
}

func TestSubmitBatchSkipsUnselectedClaims(t *testing.T) {
	store := newMemStore()
	svc := NewClaimService(store, nil)

	resp, err := svc.SubmitBatch(context.Background(), dto.BatchClaimRequest{
		EmployeeID: "emp-1",
		ClaimType:  dto.ClaimTypeReimbursement,
		Claims: []dto.ExtractedClaim{
			extractedClaim("a", "travel", "450.00", "2026-08-01", true),
			extractedClaim("b", "meals", "300.00", "2026-08-02", false),
			extractedClaim("c", "fuel", "900.00", "2026-08-03", true),
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.ClaimNumbers, 2)
	assert.Equal(t, []string{"CLM-000001", "CLM-000002"}, resp.ClaimNumbers)

	stored, err := store.ListClaims()
	require.NoError(t, err)
	assert.Len(t, stored, 2)
	for _, c := range stored {
		assert.Equal(t, "submitted", c.Status)
		assert.Equal(t, "emp-1", c.EmployeeID)
		assert.NotEqual(t, "meals", c.Category)
	}
}

func TestSubmitBatchManualClaim(t *testing.T) {
	store := newMemStore()
	svc := NewClaimService(store, nil)

	resp, err := svc.SubmitBatch(context.Background(), dto.BatchClaimRequest{
		EmployeeID: "emp-2",
		ClaimType:  dto.ClaimTypeAllowance,
		Manual: &dto.ClaimFormData{
			Category: "communication",
			Title:    "Communication - August",
			Amount:   "1200.00",
			Date:     "2026-08-15",
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.ClaimNumbers, 1)

	claim, err := store.GetClaim(resp.ClaimNumbers[0])
	require.NoError(t, err)
	assert.Equal(t, dto.ClaimTypeAllowance, claim.ClaimType)
	assert.Equal(t, "1200.00", claim.Amount)
}

func TestSubmitBatchRejectsEmptyAndUnknownType(t *testing.T) {
	svc := NewClaimService(newMemStore(), nil)

	_, err := svc.SubmitBatch(context.Background(), dto.BatchClaimRequest{
		EmployeeID: "emp-1",
		ClaimType:  dto.ClaimTypeReimbursement,
	})
	assert.ErrorIs(t, err, dto.ErrEmptyBatch)

	_, err = svc.SubmitBatch(context.Background(), dto.BatchClaimRequest{
		EmployeeID: "emp-1",
		ClaimType:  "advance",
		Manual:     &dto.ClaimFormData{Amount: "100"},
	})
	assert.ErrorIs(t, err, dto.ErrUnknownClaimType)
}

func TestSubmitBatchAllUnselectedIsEmpty(t *testing.T) {
	svc := NewClaimService(newMemStore(), nil)

	_, err := svc.SubmitBatch(context.Background(), dto.BatchClaimRequest{
		EmployeeID: "emp-1",
		ClaimType:  dto.ClaimTypeReimbursement,
		Claims: []dto.ExtractedClaim{
			extractedClaim("a", "travel", "450.00", "2026-08-01", false),
		},
	})
	assert.ErrorIs(t, err, dto.ErrEmptyBatch)
}

func TestSubmitBatchBroadcastsToEnabledEndpoints(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.SaveSettings(dto.SettingsSlack,
		json.RawMessage(`{"enabled":true,"webhook_url":"https://hooks.slack.test/T1"}`)))
	require.NoError(t, store.SaveSettings(dto.SettingsTeams,
		json.RawMessage(`{"enabled":false,"webhook_url":"https://teams.test/T2"}`)))
	require.NoError(t, store.SaveSettings(dto.SettingsWebhooks,
		json.RawMessage(`{"endpoints":[{"url":"https://erp.test/hook","enabled":true},{"url":"https://off.test","enabled":false}]}`)))

	notify := newFakeNotifier()
	svc := NewClaimService(store, notify)

	_, err := svc.SubmitBatch(context.Background(), dto.BatchClaimRequest{
		EmployeeID: "emp-3",
		ClaimType:  dto.ClaimTypeReimbursement,
		Claims: []dto.ExtractedClaim{
			extractedClaim("a", "travel", "450.00", "2026-08-01", true),
			extractedClaim("b", "meals", "550.00", "2026-08-02", true),
		},
	})
	require.NoError(t, err)

	got := <-notify.broadcasts
	assert.ElementsMatch(t, []string{"https://hooks.slack.test/T1", "https://erp.test/hook"}, got.urls)
	assert.Equal(t, "claims.submitted", got.event.Event)
	assert.Equal(t, "emp-3", got.event.EmployeeID)
	assert.Equal(t, "1000.00", got.event.TotalAmount)
	assert.Len(t, got.event.ClaimNumbers, 2)
}

func TestSubmitBatchStoreFailureReturnsError(t *testing.T) {
	store := newMemStore()
	store.saveErr = fmt.Errorf("disk full")
	svc := NewClaimService(store, nil)

	_, err := svc.SubmitBatch(context.Background(), dto.BatchClaimRequest{
		EmployeeID: "emp-1",
		ClaimType:  dto.ClaimTypeReimbursement,
		Claims: []dto.ExtractedClaim{
			extractedClaim("a", "travel", "450.00", "2026-08-01", true),
		},
	})
	assert.ErrorContains(t, err, "disk full")
}
