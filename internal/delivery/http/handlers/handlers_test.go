package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/confdesk/review-engine/internal/domain"
)

type stubService struct {
	createErr error
	recordErr error

	recordedDecision domain.Decision
}

func (s *stubService) SubmissionCreate(_ context.Context, title, abstract, topic string, authors []string) (*domain.Submission, []string, error) {
	if s.createErr != nil {
		return nil, nil, s.createErr
	}
	return &domain.Submission{
		ID:       "s1",
		Title:    title,
		Abstract: abstract,
		Topic:    topic,
		Authors:  authors,
		Status:   domain.DecisionPending,
		Evaluations: []domain.Evaluation{
			{ReviewerID: "r1", Decision: domain.DecisionPending},
		},
	}, []string{"r1"}, nil
}

func (s *stubService) SubmissionGet(_ context.Context, submissionID string) (*domain.Submission, error) {
	if submissionID != "s1" {
		return nil, domain.ErrSubmissionNotFound
	}
	return &domain.Submission{ID: "s1", Status: domain.DecisionPending}, nil
}

func (s *stubService) SubmissionsList(_ context.Context, _ domain.Decision) ([]*domain.Submission, error) {
	return []*domain.Submission{{ID: "s1", Status: domain.DecisionPending}}, nil
}

func (s *stubService) RecordEvaluation(_ context.Context, submissionID, reviewerID string, decision domain.Decision, corrections string) (*domain.Submission, error) {
	if s.recordErr != nil {
		return nil, s.recordErr
	}
	s.recordedDecision = decision
	return &domain.Submission{
		ID:     submissionID,
		Status: decision,
		Evaluations: []domain.Evaluation{
			{ReviewerID: reviewerID, Decision: decision, Corrections: corrections},
		},
	}, nil
}

func (s *stubService) ReviewerUpsert(_ context.Context, rev domain.Reviewer) (*domain.Reviewer, error) {
	return &rev, nil
}

func (s *stubService) ReviewerGet(_ context.Context, reviewerID string) (*domain.Reviewer, error) {
	if reviewerID != "r1" {
		return nil, domain.ErrReviewerNotFound
	}
	return &domain.Reviewer{ID: "r1", Name: "R1"}, nil
}

func (s *stubService) ReviewerSubmissions(_ context.Context, _ string) ([]*domain.Submission, error) {
	return []*domain.Submission{}, nil
}

func (s *stubService) AssignmentStats(_ context.Context) ([]domain.AssignmentCountByReviewer, []domain.AssignmentCountBySubmission, error) {
	return nil, nil, nil
}

func newTestRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandlers(svc).Register(r)
	return r
}

func TestSubmissionCreateReturnsCreated(t *testing.T) {
	router := newTestRouter(&stubService{})

	body := `{"title":"T","abstract":"A","topic":"AI","authors":["Ada"]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submissions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (%s)", w.Code, http.StatusCreated, w.Body.String())
	}

	var resp struct {
		Submission struct {
			SubmissionID string `json:"submission_id"`
			Status       string `json:"status"`
		} `json:"submission"`
		AssignedReviewers []string `json:"assigned_reviewers"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Submission.Status != "pendiente" {
		t.Fatalf("status = %q, want pendiente", resp.Submission.Status)
	}
	if len(resp.AssignedReviewers) != 1 || resp.AssignedReviewers[0] != "r1" {
		t.Fatalf("unexpected assigned reviewers: %v", resp.AssignedReviewers)
	}
}

func TestSubmissionCreateMissingFieldsRejected(t *testing.T) {
	router := newTestRouter(&stubService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submissions", strings.NewReader(`{"title":"T"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestRecordEvaluationMapsNotFound(t *testing.T) {
	router := newTestRouter(&stubService{recordErr: domain.ErrSubmissionNotFound})

	body := `{"reviewer_id":"r1","decision":"aceptada"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submissions/s9/evaluations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestRecordEvaluationMapsValidation(t *testing.T) {
	router := newTestRouter(&stubService{recordErr: domain.ErrValidation})

	body := `{"reviewer_id":"r1","decision":"rechazada"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submissions/s1/evaluations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error.Code != "VALIDATION" {
		t.Fatalf("error code = %q, want VALIDATION", resp.Error.Code)
	}
}

func TestRecordEvaluationPassesWireDecision(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(svc)

	body := `{"reviewer_id":"r1","decision":"aceptada con correcciones","corrections":"fix figure 2"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submissions/s1/evaluations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if svc.recordedDecision != domain.DecisionAcceptedWithCorrections {
		t.Fatalf("decision = %q, want %q", svc.recordedDecision, domain.DecisionAcceptedWithCorrections)
	}
}

func TestReviewerGetMapsNotFound(t *testing.T) {
	router := newTestRouter(&stubService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reviewers/r9", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestStoreUnavailableMapsServiceUnavailable(t *testing.T) {
	router := newTestRouter(&stubService{createErr: domain.ErrStoreUnavailable})

	body := `{"title":"T","abstract":"A","authors":["Ada"]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submissions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}
