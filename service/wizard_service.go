package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/finqube/claimflow/dto"
)

// Wizard step names. Reimbursement sessions walk basics, details, review;
// allowance sessions insert a category step after basics.
const (
	StepBasics   = "basics"
	StepCategory = "category"
	StepDetails  = "details"
	StepReview   = "review"
)

// FormClaimID addresses the manual entry form in field edits and duplicate
// checks, where extracted claim rows are addressed by their UUID.
const FormClaimID = "form"

var (
	ErrSessionNotFound = fmt.Errorf("wizard session not found")
	ErrClaimNotFound   = fmt.Errorf("claim not found in session")
)

// StepBlockedError reports why a forward transition was rejected. The step
// does not advance; the reason is shown to the user.
type StepBlockedError struct {
	Reason string
}

func (e *StepBlockedError) Error() string {
	return e.Reason
}

// WizardSession is one in-progress claim submission. Sessions live in memory
// only; abandoning the wizard loses the draft.
type WizardSession struct {
	ID          string                     `json:"id"`
	EmployeeID  string                     `json:"employee_id"`
	ClaimType   dto.ClaimType              `json:"claim_type"`
	Steps       []string                   `json:"steps"`
	CurrentStep int                        `json:"current_step"`
	Documents   []string                   `json:"documents"`
	Claims      []dto.ExtractedClaim       `json:"claims"`
	Form        dto.ClaimFormData          `json:"form"`
	DupChecks   map[string]dto.PolicyCheck `json:"duplicate_checks"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// ClaimSubmitter posts the assembled batch. Satisfied by ClaimService.
type ClaimSubmitter interface {
	SubmitBatch(ctx context.Context, req dto.BatchClaimRequest) (*dto.BatchClaimResponse, error)
}

// DuplicateChecker runs one duplicate probe. Satisfied by DuplicateService.
type DuplicateChecker interface {
	Check(ctx context.Context, req dto.DuplicateCheckRequest) (*dto.DuplicateCheckResponse, error)
}

// WizardService drives submission wizard sessions through their steps.
type WizardService struct {
	claims   ClaimSubmitter
	dup      DuplicateChecker
	debounce *Debouncer

	mu       sync.Mutex
	sessions map[string]*WizardSession
}

func NewWizardService(claims ClaimSubmitter, dup DuplicateChecker, debounce *Debouncer) *WizardService {
	return &WizardService{
		claims:   claims,
		dup:      dup,
		debounce: debounce,
		sessions: make(map[string]*WizardSession),
	}
}

// Start opens a new session at step 1.
func (s *WizardService) Start(req dto.StartWizardRequest) (*WizardSession, error) {
	var steps []string
	switch req.ClaimType {
	case dto.ClaimTypeReimbursement:
		steps = []string{StepBasics, StepDetails, StepReview}
	case dto.ClaimTypeAllowance:
		steps = []string{StepBasics, StepCategory, StepDetails, StepReview}
	default:
		return nil, dto.ErrUnknownClaimType
	}

	now := time.Now()
	session := &WizardSession{
		ID:          uuid.NewString(),
		EmployeeID:  req.EmployeeID,
		ClaimType:   req.ClaimType,
		Steps:       steps,
		CurrentStep: 1,
		DupChecks:   make(map[string]dto.PolicyCheck),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	log.Info().Str("session", session.ID).Str("claim_type", string(req.ClaimType)).Msg("wizard session started")
	return snapshot(session), nil
}

// Get returns the current session state.
func (s *WizardService) Get(id string) (*WizardSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return snapshot(session), nil
}

// AttachExtraction records a processed document and its extracted claim rows.
// This is the one event allowed to introduce auto-sourced fields: the rows
// are fresh records, so earlier manual edits to replaced rows do not carry.
func (s *WizardService) AttachExtraction(id, document string, extracted []dto.ExtractedClaim) (*WizardSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	for _, doc := range session.Documents {
		if doc == document {
			return snapshot(session), nil
		}
	}

	session.Documents = append(session.Documents, document)
	// Extraction results are cached and may be attached to several sessions;
	// each session gets its own rows so edits never leak across sessions.
	for _, claim := range extracted {
		claim.FieldSources = cloneSources(claim.FieldSources)
		session.Claims = append(session.Claims, claim)
	}
	session.UpdatedAt = time.Now()
	return snapshot(session), nil
}

// EditField applies one user edit. Edits to the fields that key duplicate
// detection schedule a debounced probe; rapid consecutive edits coalesce and
// only the newest result is kept.
func (s *WizardService) EditField(id string, req dto.EditFieldRequest) (*WizardSession, error) {
	s.mu.Lock()
	session, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}

	var probe *dto.DuplicateCheckRequest
	if req.ClaimID == FormClaimID {
		setFormField(&session.Form, req.Field, req.Value)
		probe = duplicateProbe(session.EmployeeID, session.Form.Amount, session.Form.Date, session.Form.TransactionRef)
	} else {
		claim := findClaim(session, req.ClaimID)
		if claim == nil {
			s.mu.Unlock()
			return nil, ErrClaimNotFound
		}
		claim.SetField(req.Field, req.Value)
		probe = duplicateProbe(session.EmployeeID, claim.Amount, claim.Date, claim.TransactionRef)
	}
	session.UpdatedAt = time.Now()

	dupField := req.Field == dto.FieldAmount || req.Field == dto.FieldDate || req.Field == dto.FieldTransactionRef
	if dupField {
		if probe != nil {
			session.DupChecks[req.ClaimID] = dto.PolicyCheck{
				ID:     "duplicate",
				Label:  "Duplicate detection",
				Status: dto.CheckChecking,
			}
		} else {
			delete(session.DupChecks, req.ClaimID)
		}
	}
	result := snapshot(session)
	s.mu.Unlock()

	if dupField {
		key := id + "/" + req.ClaimID
		if probe == nil {
			s.debounce.Cancel(key)
		} else {
			pr := *probe
			s.debounce.Schedule(key,
				func() (*dto.DuplicateCheckResponse, error) {
					return s.dup.Check(context.Background(), pr)
				},
				func(resp *dto.DuplicateCheckResponse, err error) {
					s.deliverDupCheck(id, req.ClaimID, resp, err)
				})
		}
	}

	return result, nil
}

// SelectClaim toggles whether an extracted row is included in the batch.
func (s *WizardService) SelectClaim(id, claimID string, selected bool) (*WizardSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	claim := findClaim(session, claimID)
	if claim == nil {
		return nil, ErrClaimNotFound
	}
	claim.Selected = selected
	session.UpdatedAt = time.Now()
	return snapshot(session), nil
}

// Advance moves to the next step if the current step's gate passes.
func (s *WizardService) Advance(id string) (*WizardSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	if session.CurrentStep >= len(session.Steps) {
		return snapshot(session), &StepBlockedError{Reason: "already on the final step"}
	}
	if reason := stepGate(session); reason != "" {
		return snapshot(session), &StepBlockedError{Reason: reason}
	}

	session.CurrentStep++
	session.UpdatedAt = time.Now()
	return snapshot(session), nil
}

// Back moves one step back. Going back never re-validates anything and never
// loses entered data.
func (s *WizardService) Back(id string) (*WizardSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.CurrentStep > 1 {
		session.CurrentStep--
		session.UpdatedAt = time.Now()
	}
	return snapshot(session), nil
}

// Submit posts the batch. On success the session is closed; on failure it
// stays on the final step so the user can retry.
func (s *WizardService) Submit(ctx context.Context, id string) (*dto.BatchClaimResponse, error) {
	s.mu.Lock()
	session, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	if session.CurrentStep != len(session.Steps) {
		s.mu.Unlock()
		return nil, &StepBlockedError{Reason: "complete the remaining steps before submitting"}
	}
	req := buildBatchRequest(session)
	s.mu.Unlock()

	resp, err := s.claims.SubmitBatch(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("session", id).Msg("batch submission failed")
		return nil, err
	}

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	for _, claim := range req.Claims {
		s.debounce.Cancel(id + "/" + claim.ID)
	}
	s.debounce.Cancel(id + "/" + FormClaimID)

	return resp, nil
}

func (s *WizardService) deliverDupCheck(sessionID, claimID string, resp *dto.DuplicateCheckResponse, err error) {
	check := dto.PolicyCheck{ID: "duplicate", Label: "Duplicate detection"}
	switch {
	case err != nil:
		check.Status = dto.CheckWarning
		check.Message = "Duplicate check failed, verify manually"
	case resp.IsDuplicate && resp.MatchType == "exact":
		check.Status = dto.CheckFail
		check.Message = fmt.Sprintf("Identical claim already submitted (%v)", resp.DuplicateClaims)
	case resp.IsDuplicate:
		check.Status = dto.CheckWarning
		check.Message = fmt.Sprintf("Similar claim found (%v)", resp.DuplicateClaims)
	default:
		check.Status = dto.CheckPass
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	session.DupChecks[claimID] = check
	session.UpdatedAt = time.Now()
}

// stepGate validates the session's current step. Empty string means pass.
func stepGate(session *WizardSession) string {
	switch session.Steps[session.CurrentStep-1] {
	case StepBasics:
		if session.EmployeeID == "" {
			return "employee is required"
		}
	case StepCategory:
		if session.Form.Category == "" {
			return "select a category to continue"
		}
	case StepDetails:
		if session.ClaimType == dto.ClaimTypeReimbursement {
			if len(session.Documents) == 0 {
				return "upload at least one receipt to continue"
			}
			selected := selectedClaims(session)
			if len(selected) == 0 {
				return "select at least one claim to continue"
			}
			for _, claim := range selected {
				if msg := validateRequiredFields(claim.Category, claim.Title, claim.Amount, claim.Date); msg != "" {
					return msg
				}
			}
		} else {
			if msg := validateRequiredFields(session.Form.Category, session.Form.Title, session.Form.Amount, session.Form.Date); msg != "" {
				return msg
			}
		}
	}
	return ""
}

func validateRequiredFields(category, title, amount, date string) string {
	if category == "" {
		return "category is required"
	}
	if title == "" {
		return "title is required"
	}
	value, err := decimal.NewFromString(amount)
	if err != nil || !value.IsPositive() {
		return "enter a valid amount"
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "enter a valid date"
	}
	return ""
}

func buildBatchRequest(session *WizardSession) dto.BatchClaimRequest {
	req := dto.BatchClaimRequest{
		EmployeeID: session.EmployeeID,
		ClaimType:  session.ClaimType,
	}
	if session.ClaimType == dto.ClaimTypeReimbursement && len(session.Claims) > 0 {
		req.Claims = selectedClaims(session)
		for i := range req.Claims {
			req.Claims[i].FieldSources = cloneSources(req.Claims[i].FieldSources)
		}
	} else {
		form := session.Form
		req.Manual = &form
	}
	return req
}

func selectedClaims(session *WizardSession) []dto.ExtractedClaim {
	var out []dto.ExtractedClaim
	for _, claim := range session.Claims {
		if claim.Selected {
			out = append(out, claim)
		}
	}
	return out
}

func findClaim(session *WizardSession, claimID string) *dto.ExtractedClaim {
	for i := range session.Claims {
		if session.Claims[i].ID == claimID {
			return &session.Claims[i]
		}
	}
	return nil
}

func setFormField(form *dto.ClaimFormData, field, value string) {
	switch field {
	case dto.FieldCategory:
		form.Category = value
	case dto.FieldTitle:
		form.Title = value
	case dto.FieldAmount:
		form.Amount = value
	case dto.FieldDate:
		form.Date = value
	case dto.FieldVendor:
		form.Vendor = value
	case dto.FieldDescription:
		form.Description = value
	case dto.FieldTransactionRef:
		form.TransactionRef = value
	case dto.FieldProjectCode:
		form.ProjectCode = value
	case "cost_center":
		form.CostCenter = value
	}
}

// duplicateProbe returns nil until both keying fields are present.
func duplicateProbe(employeeID, amount, date, ref string) *dto.DuplicateCheckRequest {
	if amount == "" || date == "" {
		return nil
	}
	return &dto.DuplicateCheckRequest{
		EmployeeID:     employeeID,
		Amount:         amount,
		Date:           date,
		TransactionRef: ref,
	}
}

// snapshot copies a session so callers never hold a reference into the map.
// Claims are copied down to their field-source maps: handlers serialize the
// snapshot outside the service mutex.
func snapshot(session *WizardSession) *WizardSession {
	out := *session
	out.Steps = append([]string(nil), session.Steps...)
	out.Documents = append([]string(nil), session.Documents...)
	out.Claims = append([]dto.ExtractedClaim(nil), session.Claims...)
	for i := range out.Claims {
		out.Claims[i].FieldSources = cloneSources(out.Claims[i].FieldSources)
	}
	out.DupChecks = make(map[string]dto.PolicyCheck, len(session.DupChecks))
	for k, v := range session.DupChecks {
		out.DupChecks[k] = v
	}
	return &out
}

func cloneSources(sources map[string]dto.FieldSource) map[string]dto.FieldSource {
	if sources == nil {
		return nil
	}
	out := make(map[string]dto.FieldSource, len(sources))
	for k, v := range sources {
		out[k] = v
	}
	return out
}
