package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/finqube/claimflow/client"
	"github.com/finqube/claimflow/dto"
	"github.com/finqube/claimflow/prom"
	"github.com/finqube/claimflow/storage"
)

// Notifier delivers claim events to configured endpoints.
type Notifier interface {
	Broadcast(ctx context.Context, urls []string, event client.ClaimEvent)
}

// ClaimService persists claim batches and fans out submission events.
type ClaimService struct {
	store  storage.Store
	notify Notifier
}

func NewClaimService(store storage.Store, notify Notifier) *ClaimService {
	return &ClaimService{store: store, notify: notify}
}

// SubmitBatch stores the batch atomically: either every claim is accepted
// and numbered, or none are. Unselected extracted claims are skipped.
func (s *ClaimService) SubmitBatch(ctx context.Context, req dto.BatchClaimRequest) (*dto.BatchClaimResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	var claims []dto.Claim

	for _, ec := range req.Claims {
		if !ec.Selected {
			continue
		}
		claims = append(claims, dto.Claim{
			EmployeeID:     req.EmployeeID,
			ClaimType:      req.ClaimType,
			Category:       ec.Category,
			Title:          ec.Title,
			Amount:         ec.Amount,
			Date:           ec.Date,
			Vendor:         ec.Vendor,
			Description:    ec.Description,
			TransactionRef: ec.TransactionRef,
			ProjectCode:    ec.ProjectCode,
			Status:         "submitted",
			FieldSources:   ec.FieldSources,
			SubmittedAt:    now,
		})
	}

	if req.Manual != nil {
		claims = append(claims, dto.Claim{
			EmployeeID:     req.EmployeeID,
			ClaimType:      req.ClaimType,
			Category:       req.Manual.Category,
			Title:          req.Manual.Title,
			Amount:         req.Manual.Amount,
			Date:           req.Manual.Date,
			Vendor:         req.Manual.Vendor,
			Description:    req.Manual.Description,
			TransactionRef: req.Manual.TransactionRef,
			ProjectCode:    req.Manual.ProjectCode,
			CostCenter:     req.Manual.CostCenter,
			Status:         "submitted",
			SubmittedAt:    now,
		})
	}

	if len(claims) == 0 {
		return nil, dto.ErrEmptyBatch
	}

	numbers, err := s.store.SaveClaims(claims)
	if err != nil {
		return nil, err
	}
	prom.ClaimsSubmittedTotal.Add(float64(len(numbers)))

	s.notifySubmission(req.EmployeeID, numbers, claims)

	return &dto.BatchClaimResponse{
		ClaimNumbers: numbers,
		SubmittedAt:  now.Format(time.RFC3339),
	}, nil
}

// Get retrieves one claim by number.
func (s *ClaimService) Get(number string) (*dto.Claim, error) {
	return s.store.GetClaim(number)
}

// List returns all stored claims.
func (s *ClaimService) List() ([]*dto.Claim, error) {
	return s.store.ListClaims()
}

// notifySubmission posts a claim event to every enabled Slack, Teams and
// generic webhook endpoint. Fire-and-forget: the submission has already
// succeeded, delivery failures are only logged.
func (s *ClaimService) notifySubmission(employeeID string, numbers []string, claims []dto.Claim) {
	if s.notify == nil {
		return
	}

	urls := s.notificationURLs()
	if len(urls) == 0 {
		return
	}

	total := decimal.Zero
	for _, c := range claims {
		if v, err := decimal.NewFromString(c.Amount); err == nil {
			total = total.Add(v)
		}
	}

	event := client.ClaimEvent{
		Event:        "claims.submitted",
		EmployeeID:   employeeID,
		ClaimNumbers: numbers,
		TotalAmount:  total.String(),
		OccurredAt:   time.Now().Format(time.RFC3339),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.notify.Broadcast(ctx, urls, event)
	}()
}

func (s *ClaimService) notificationURLs() []string {
	var urls []string

	if raw, err := s.store.GetSettings(dto.SettingsSlack); err == nil {
		var slack dto.SlackSettings
		if json.Unmarshal(raw, &slack) == nil && slack.Enabled && slack.WebhookURL != "" {
			urls = append(urls, slack.WebhookURL)
		}
	}
	if raw, err := s.store.GetSettings(dto.SettingsTeams); err == nil {
		var teams dto.TeamsSettings
		if json.Unmarshal(raw, &teams) == nil && teams.Enabled && teams.WebhookURL != "" {
			urls = append(urls, teams.WebhookURL)
		}
	}
	if raw, err := s.store.GetSettings(dto.SettingsWebhooks); err == nil {
		var hooks dto.WebhookSettings
		if json.Unmarshal(raw, &hooks) == nil {
			for _, ep := range hooks.Endpoints {
				if ep.Enabled && ep.URL != "" {
					urls = append(urls, ep.URL)
				}
			}
		}
	}

	if len(urls) > 0 {
		log.Debug().Int("endpoints", len(urls)).Msg("claim event will be broadcast")
	}
	return urls
}
