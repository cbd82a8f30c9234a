package domain

import "time"

// Decision is both a reviewer's verdict on a submission and the submission's
// own status. The string values are the wire-level ones used by every client
// of the portal and must not be translated.
type Decision string

const (
	DecisionPending                 Decision = "pendiente"
	DecisionAccepted                Decision = "aceptada"
	DecisionRejected                Decision = "rechazada"
	DecisionAcceptedWithCorrections Decision = "aceptada con correcciones"
)

func (d Decision) Valid() bool {
	switch d {
	case DecisionPending, DecisionAccepted, DecisionRejected, DecisionAcceptedWithCorrections:
		return true
	}
	return false
}

// RequiresCorrections reports whether a decision must carry corrections text.
func (d Decision) RequiresCorrections() bool {
	return d == DecisionRejected || d == DecisionAcceptedWithCorrections
}

type Submission struct {
	ID          string
	Title       string
	Abstract    string
	Topic       string
	Authors     []string
	Status      Decision
	Evaluations []Evaluation
	CreatedAt   *time.Time
}

// Evaluation is one reviewer's recorded verdict. A submission holds at most
// one evaluation per reviewer; re-recording overwrites in place.
type Evaluation struct {
	ReviewerID  string
	Decision    Decision
	Corrections string
	RecordedAt  time.Time
}

type Reviewer struct {
	ID          string
	Name        string
	Email       string
	Interest    string
	Assignments []Assignment
}

// Load is the reviewer's current assignment count. Assignments are never
// removed after a terminal decision, so load only grows.
func (r Reviewer) Load() int {
	return len(r.Assignments)
}

type Assignment struct {
	SubmissionID string
	Status       Decision
	AssignedAt   time.Time
}

type AssignmentCountByReviewer struct {
	ReviewerID       string
	AssignmentsCount int
}

type AssignmentCountBySubmission struct {
	SubmissionID   string
	ReviewersCount int
}
