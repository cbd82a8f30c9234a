package service

import "github.com/confdesk/review-engine/internal/domain"

// aggregateStatus derives a submission's status from its evaluations. The
// policy is last-write-wins: the most recently recorded decision overwrites
// whatever was there, with no vote or quorum across reviewers. Administrators
// read the full evaluation list before acting, so the top-level field is a
// pointer to the latest activity rather than a consensus summary.
func aggregateStatus(_ []domain.Evaluation, latest domain.Decision) domain.Decision {
	return latest
}
