package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/confdesk/review-engine/internal/domain"
)

type Service interface {
	SubmissionCreate(ctx context.Context, title, abstract, topic string, authors []string) (*domain.Submission, []string, error)
	SubmissionGet(ctx context.Context, submissionID string) (*domain.Submission, error)
	SubmissionsList(ctx context.Context, status domain.Decision) ([]*domain.Submission, error)
	RecordEvaluation(ctx context.Context, submissionID, reviewerID string, decision domain.Decision, corrections string) (*domain.Submission, error)
	ReviewerUpsert(ctx context.Context, rev domain.Reviewer) (*domain.Reviewer, error)
	ReviewerGet(ctx context.Context, reviewerID string) (*domain.Reviewer, error)
	ReviewerSubmissions(ctx context.Context, reviewerID string) ([]*domain.Submission, error)
	AssignmentStats(ctx context.Context) ([]domain.AssignmentCountByReviewer, []domain.AssignmentCountBySubmission, error)
}

type Handlers struct {
	svc Service
}

func NewHandlers(svc Service) *Handlers {
	return &Handlers{svc: svc}
}

func (h *Handlers) Register(r *gin.Engine) {
	r.POST("/submissions", h.submissionCreate)
	r.GET("/submissions", h.submissionsList)
	r.GET("/submissions/:id", h.submissionGet)
	r.POST("/submissions/:id/evaluations", h.recordEvaluation)
	r.POST("/reviewers", h.reviewerUpsert)
	r.GET("/reviewers/:id", h.reviewerGet)
	r.GET("/reviewers/:id/submissions", h.reviewerSubmissions)
	r.GET("/stats/assignments", h.assignmentStats)
}

type submissionCreateRequest struct {
	Title    string   `json:"title" binding:"required"`
	Abstract string   `json:"abstract" binding:"required"`
	Topic    string   `json:"topic"`
	Authors  []string `json:"authors" binding:"required"`
}

type evaluationRequest struct {
	ReviewerID  string `json:"reviewer_id" binding:"required"`
	Decision    string `json:"decision" binding:"required"`
	Corrections string `json:"corrections"`
}

type reviewerRequest struct {
	ReviewerID string `json:"reviewer_id" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email"`
	Interest   string `json:"interest"`
}

type evaluationResponse struct {
	ReviewerID  string    `json:"reviewer_id"`
	Decision    string    `json:"decision"`
	Corrections string    `json:"corrections,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}

type submissionResponse struct {
	SubmissionID string               `json:"submission_id"`
	Title        string               `json:"title"`
	Abstract     string               `json:"abstract"`
	Topic        string               `json:"topic"`
	Authors      []string             `json:"authors"`
	Status       string               `json:"status"`
	Evaluations  []evaluationResponse `json:"evaluations"`
	CreatedAt    *time.Time           `json:"created_at,omitempty"`
}

type assignmentResponse struct {
	SubmissionID string    `json:"submission_id"`
	Status       string    `json:"status"`
	AssignedAt   time.Time `json:"assigned_at"`
}

type reviewerResponse struct {
	ReviewerID  string               `json:"reviewer_id"`
	Name        string               `json:"name"`
	Email       string               `json:"email,omitempty"`
	Interest    string               `json:"interest,omitempty"`
	Assignments []assignmentResponse `json:"assignments"`
}

func (h *Handlers) submissionCreate(c *gin.Context) {
	var req submissionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	sub, assigned, err := h.svc.SubmissionCreate(c.Request.Context(), req.Title, req.Abstract, req.Topic, req.Authors)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"submission":         toSubmissionResponse(sub),
		"assigned_reviewers": assigned,
	})
}

func (h *Handlers) submissionGet(c *gin.Context) {
	sub, err := h.svc.SubmissionGet(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSubmissionResponse(sub))
}

func (h *Handlers) submissionsList(c *gin.Context) {
	subs, err := h.svc.SubmissionsList(c.Request.Context(), domain.Decision(c.Query("status")))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	resp := make([]submissionResponse, 0, len(subs))
	for _, sub := range subs {
		resp = append(resp, toSubmissionResponse(sub))
	}

	c.JSON(http.StatusOK, gin.H{"submissions": resp})
}

func (h *Handlers) recordEvaluation(c *gin.Context) {
	var req evaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	sub, err := h.svc.RecordEvaluation(c.Request.Context(), c.Param("id"), req.ReviewerID, domain.Decision(req.Decision), req.Corrections)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSubmissionResponse(sub))
}

func (h *Handlers) reviewerUpsert(c *gin.Context) {
	var req reviewerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	rev, err := h.svc.ReviewerUpsert(c.Request.Context(), domain.Reviewer{
		ID:       req.ReviewerID,
		Name:     req.Name,
		Email:    req.Email,
		Interest: req.Interest,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toReviewerResponse(rev))
}

func (h *Handlers) reviewerGet(c *gin.Context) {
	rev, err := h.svc.ReviewerGet(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toReviewerResponse(rev))
}

func (h *Handlers) reviewerSubmissions(c *gin.Context) {
	subs, err := h.svc.ReviewerSubmissions(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	resp := make([]submissionResponse, 0, len(subs))
	for _, sub := range subs {
		resp = append(resp, toSubmissionResponse(sub))
	}

	c.JSON(http.StatusOK, gin.H{
		"reviewer_id": c.Param("id"),
		"submissions": resp,
	})
}

func (h *Handlers) assignmentStats(c *gin.Context) {
	byReviewer, bySubmission, err := h.svc.AssignmentStats(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	reviewers := make([]gin.H, 0, len(byReviewer))
	for _, s := range byReviewer {
		reviewers = append(reviewers, gin.H{"reviewer_id": s.ReviewerID, "assignments_count": s.AssignmentsCount})
	}

	submissions := make([]gin.H, 0, len(bySubmission))
	for _, s := range bySubmission {
		submissions = append(submissions, gin.H{"submission_id": s.SubmissionID, "reviewers_count": s.ReviewersCount})
	}

	c.JSON(http.StatusOK, gin.H{
		"by_reviewer":   reviewers,
		"by_submission": submissions,
	})
}

// helpers:

func toSubmissionResponse(s *domain.Submission) submissionResponse {
	evals := make([]evaluationResponse, 0, len(s.Evaluations))
	for _, ev := range s.Evaluations {
		evals = append(evals, evaluationResponse{
			ReviewerID:  ev.ReviewerID,
			Decision:    string(ev.Decision),
			Corrections: ev.Corrections,
			RecordedAt:  ev.RecordedAt,
		})
	}

	return submissionResponse{
		SubmissionID: s.ID,
		Title:        s.Title,
		Abstract:     s.Abstract,
		Topic:        s.Topic,
		Authors:      s.Authors,
		Status:       string(s.Status),
		Evaluations:  evals,
		CreatedAt:    s.CreatedAt,
	}
}

func toReviewerResponse(r *domain.Reviewer) reviewerResponse {
	assignments := make([]assignmentResponse, 0, len(r.Assignments))
	for _, a := range r.Assignments {
		assignments = append(assignments, assignmentResponse{
			SubmissionID: a.SubmissionID,
			Status:       string(a.Status),
			AssignedAt:   a.AssignedAt,
		})
	}

	return reviewerResponse{
		ReviewerID:  r.ID,
		Name:        r.Name,
		Email:       r.Email,
		Interest:    r.Interest,
		Assignments: assignments,
	}
}

func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrSubmissionNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", "submission not found")
	case errors.Is(err, domain.ErrReviewerNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", "reviewer not found")
	case errors.Is(err, domain.ErrValidation):
		writeError(c, http.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, domain.ErrSubmissionExists):
		writeError(c, http.StatusConflict, "SUBMISSION_EXISTS", "submission id already exists")
	case errors.Is(err, domain.ErrAlreadyAssigned):
		writeError(c, http.StatusConflict, "ALREADY_ASSIGNED", "submission already assigned to reviewer")
	case errors.Is(err, domain.ErrCapacityExceeded):
		writeError(c, http.StatusConflict, "CAPACITY_EXCEEDED", "reviewer is at maximum assignment load")
	case errors.Is(err, domain.ErrStoreUnavailable):
		writeError(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "data layer unavailable, retry later")
	default:
		writeError(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
