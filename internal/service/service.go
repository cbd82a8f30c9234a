package service

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/confdesk/review-engine/internal/domain"
)

type ReviewerDirectory interface {
	List(ctx context.Context, interest string) ([]domain.Reviewer, error)
	GetByID(ctx context.Context, reviewerID string) (*domain.Reviewer, error)
	Upsert(ctx context.Context, rev domain.Reviewer) (*domain.Reviewer, error)
	AppendAssignment(ctx context.Context, reviewerID, submissionID string) error
}

type SubmissionStore interface {
	Create(ctx context.Context, s *domain.Submission) error
	GetByID(ctx context.Context, submissionID string) (*domain.Submission, error)
	List(ctx context.Context, status domain.Decision) ([]*domain.Submission, error)
	ListByIDs(ctx context.Context, submissionIDs []string) ([]*domain.Submission, error)
	Update(ctx context.Context, s *domain.Submission) error
}

// Notifier delivers fire-and-forget messages; failures must not surface here.
type Notifier interface {
	AssignmentCreated(reviewer domain.Reviewer, submission *domain.Submission)
}

// Policy is the assignment policy the coordinator runs under.
type Policy struct {
	MaxLoad                int
	ReviewersPerSubmission int
	FilterByTopic          bool
}

type Service struct {
	log      *slog.Logger
	dir      ReviewerDirectory
	store    SubmissionStore
	notifier Notifier
	policy   Policy

	// newRand supplies a fresh source per assignment pass; tests swap in a
	// seeded one for reproducible selection.
	newRand func() *rand.Rand
}

func New(log *slog.Logger, dir ReviewerDirectory, store SubmissionStore, notifier Notifier, policy Policy) *Service {
	return &Service{
		log:      log,
		dir:      dir,
		store:    store,
		notifier: notifier,
		policy:   policy,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// SubmissionCreate registers a new submission, assigns reviewers to it and
// persists it with a pending placeholder evaluation per attached reviewer.
// Returns the stored submission and the ids of the reviewers attached, which
// may be fewer than the policy target when the pool runs short.
func (s *Service) SubmissionCreate(ctx context.Context, title, abstract, topic string, authors []string) (*domain.Submission, []string, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(abstract) == "" {
		return nil, nil, domain.ErrValidation
	}
	if len(authors) < 1 || len(authors) > 3 {
		return nil, nil, domain.ErrValidation
	}

	createdAt := time.Now().In(time.UTC)
	sub := &domain.Submission{
		ID:        uuid.NewString(),
		Title:     title,
		Abstract:  abstract,
		Topic:     topic,
		Authors:   authors,
		Status:    domain.DecisionPending,
		CreatedAt: &createdAt,
	}

	attached, err := s.assignReviewers(ctx, sub)
	if err != nil {
		s.log.Error("service.SubmissionCreate: failed to assign reviewers", slog.String("submission_id", sub.ID), slog.Any("error", err))
		return nil, nil, err
	}

	if err := s.store.Create(ctx, sub); err != nil {
		s.log.Error("service.SubmissionCreate: failed to create submission in store", slog.String("submission_id", sub.ID), slog.Any("error", err))
		return nil, nil, err
	}

	if s.notifier != nil {
		for _, rev := range attached {
			go s.notifier.AssignmentCreated(rev, sub)
		}
	}

	return sub, reviewerIds(attached), nil
}

// assignReviewers runs the selection pass for a submission and appends the
// winners to their directory records. Reviewers that lose a capacity race are
// skipped without substitution; no rollback happens on partial success.
func (s *Service) assignReviewers(ctx context.Context, sub *domain.Submission) ([]domain.Reviewer, error) {
	candidates, err := s.candidatePool(ctx, sub.Topic)
	if err != nil {
		return nil, err
	}

	selected := SelectReviewers(s.newRand(), candidates, s.policy.MaxLoad, s.policy.ReviewersPerSubmission)
	if len(selected) < s.policy.ReviewersPerSubmission {
		s.log.Warn("service.assignReviewers: fewer reviewers available than requested",
			slog.String("submission_id", sub.ID),
			slog.Int("requested", s.policy.ReviewersPerSubmission),
			slog.Int("available", len(selected)),
		)
	}

	byID := make(map[string]domain.Reviewer, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	attached := make([]domain.Reviewer, 0, len(selected))
	for _, reviewerID := range selected {
		err := s.dir.AppendAssignment(ctx, reviewerID, sub.ID)
		if errors.Is(err, domain.ErrCapacityExceeded) {
			s.log.Warn("service.assignReviewers: reviewer lost capacity race, skipped", slog.String("reviewer_id", reviewerID), slog.String("submission_id", sub.ID))
			continue
		}
		if err != nil {
			return nil, err
		}

		sub.Evaluations = append(sub.Evaluations, domain.Evaluation{
			ReviewerID: reviewerID,
			Decision:   domain.DecisionPending,
			RecordedAt: time.Now().In(time.UTC),
		})
		attached = append(attached, byID[reviewerID])
	}

	return attached, nil
}

// candidatePool fetches reviewers for selection. Topic filtering is a policy
// preference, not a requirement: when the filtered pool is smaller than the
// per-submission target, the unfiltered pool is used instead.
func (s *Service) candidatePool(ctx context.Context, topic string) ([]domain.Reviewer, error) {
	if s.policy.FilterByTopic && topic != "" {
		candidates, err := s.dir.List(ctx, topic)
		if err != nil {
			return nil, err
		}

		eligible := 0
		for _, c := range candidates {
			if c.Load() < s.policy.MaxLoad {
				eligible++
			}
		}
		if eligible >= s.policy.ReviewersPerSubmission {
			return candidates, nil
		}

		s.log.Warn("service.candidatePool: topic pool too small, falling back to full pool",
			slog.String("topic", topic),
			slog.Int("eligible", eligible),
		)
	}

	return s.dir.List(ctx, "")
}

// RecordEvaluation upserts a reviewer's decision on a submission and rolls
// the submission status forward. Recording twice for the same reviewer keeps
// a single evaluation entry with the later timestamp.
func (s *Service) RecordEvaluation(ctx context.Context, submissionID, reviewerID string, decision domain.Decision, corrections string) (*domain.Submission, error) {
	if !decision.Valid() {
		return nil, domain.ErrValidation
	}
	if decision.RequiresCorrections() && strings.TrimSpace(corrections) == "" {
		return nil, domain.ErrValidation
	}

	sub, err := s.store.GetByID(ctx, submissionID)
	if err != nil {
		s.log.Error("service.RecordEvaluation: failed to get submission", slog.String("submission_id", submissionID), slog.Any("error", err))
		return nil, err
	}

	ev := domain.Evaluation{
		ReviewerID:  reviewerID,
		Decision:    decision,
		Corrections: corrections,
		RecordedAt:  time.Now().In(time.UTC),
	}

	found := false
	for i := range sub.Evaluations {
		if sub.Evaluations[i].ReviewerID == reviewerID {
			sub.Evaluations[i] = ev
			found = true
			break
		}
	}
	if !found {
		// A reviewer may evaluate without having received a placeholder,
		// e.g. when attached manually by an administrator.
		sub.Evaluations = append(sub.Evaluations, ev)
	}

	sub.Status = aggregateStatus(sub.Evaluations, decision)

	if err := s.store.Update(ctx, sub); err != nil {
		s.log.Error("service.RecordEvaluation: failed to update submission in store", slog.String("submission_id", submissionID), slog.Any("error", err))
		return nil, err
	}

	return sub, nil
}

func (s *Service) SubmissionGet(ctx context.Context, submissionID string) (*domain.Submission, error) {
	sub, err := s.store.GetByID(ctx, submissionID)
	if err != nil {
		s.log.Error("service.SubmissionGet: failed to get submission from store", slog.String("submission_id", submissionID), slog.Any("error", err))
		return nil, err
	}
	return sub, nil
}

func (s *Service) SubmissionsList(ctx context.Context, status domain.Decision) ([]*domain.Submission, error) {
	if status != "" && !status.Valid() {
		return nil, domain.ErrValidation
	}

	subs, err := s.store.List(ctx, status)
	if err != nil {
		s.log.Error("service.SubmissionsList: failed to list submissions from store", slog.Any("error", err))
		return nil, err
	}
	return subs, nil
}

func (s *Service) ReviewerUpsert(ctx context.Context, rev domain.Reviewer) (*domain.Reviewer, error) {
	if strings.TrimSpace(rev.ID) == "" || strings.TrimSpace(rev.Name) == "" {
		return nil, domain.ErrValidation
	}

	stored, err := s.dir.Upsert(ctx, rev)
	if err != nil {
		s.log.Error("service.ReviewerUpsert: failed to upsert reviewer in directory", slog.String("reviewer_id", rev.ID), slog.Any("error", err))
		return nil, err
	}
	return stored, nil
}

func (s *Service) ReviewerGet(ctx context.Context, reviewerID string) (*domain.Reviewer, error) {
	rev, err := s.dir.GetByID(ctx, reviewerID)
	if err != nil {
		s.log.Error("service.ReviewerGet: failed to get reviewer from directory", slog.String("reviewer_id", reviewerID), slog.Any("error", err))
		return nil, err
	}
	return rev, nil
}

// ReviewerSubmissions returns the submissions currently assigned to a
// reviewer, for the reviewer dashboard.
func (s *Service) ReviewerSubmissions(ctx context.Context, reviewerID string) ([]*domain.Submission, error) {
	rev, err := s.dir.GetByID(ctx, reviewerID)
	if err != nil {
		s.log.Error("service.ReviewerSubmissions: failed to get reviewer from directory", slog.String("reviewer_id", reviewerID), slog.Any("error", err))
		return nil, err
	}

	ids := make([]string, 0, len(rev.Assignments))
	for _, a := range rev.Assignments {
		ids = append(ids, a.SubmissionID)
	}

	subs, err := s.store.ListByIDs(ctx, ids)
	if err != nil {
		s.log.Error("service.ReviewerSubmissions: failed to list assigned submissions", slog.String("reviewer_id", reviewerID), slog.Any("error", err))
		return nil, err
	}
	return subs, nil
}

func (s *Service) AssignmentStats(ctx context.Context) ([]domain.AssignmentCountByReviewer, []domain.AssignmentCountBySubmission, error) {
	reviewers, err := s.dir.List(ctx, "")
	if err != nil {
		s.log.Error("service.AssignmentStats: failed to list reviewers", slog.Any("error", err))
		return nil, nil, err
	}

	byReviewer := make([]domain.AssignmentCountByReviewer, 0, len(reviewers))
	for _, rev := range reviewers {
		byReviewer = append(byReviewer, domain.AssignmentCountByReviewer{
			ReviewerID:       rev.ID,
			AssignmentsCount: rev.Load(),
		})
	}

	subs, err := s.store.List(ctx, "")
	if err != nil {
		s.log.Error("service.AssignmentStats: failed to list submissions", slog.Any("error", err))
		return nil, nil, err
	}

	bySubmission := make([]domain.AssignmentCountBySubmission, 0, len(subs))
	for _, sub := range subs {
		bySubmission = append(bySubmission, domain.AssignmentCountBySubmission{
			SubmissionID:   sub.ID,
			ReviewersCount: len(sub.Evaluations),
		})
	}

	return byReviewer, bySubmission, nil
}

func reviewerIds(reviewers []domain.Reviewer) []string {
	ids := make([]string, len(reviewers))
	for i, r := range reviewers {
		ids[i] = r.ID
	}
	return ids
}
