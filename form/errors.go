package form

import (
	"errors"
	"fmt"
)

// ErrMissingValue signals an absent candidate value, which is different from
// an empty string: empty strings are legitimate candidates.
var ErrMissingValue = errors.New("missing answer value")

// ValidationError is a client-fixable input problem.
type ValidationError struct {
	// Reason describes a submission-level problem, e.g. a bad email.
	Reason string
	// MissingQuestionIDs lists required questions without a usable answer.
	MissingQuestionIDs []int
}

func (e *ValidationError) Error() string {
	if len(e.MissingQuestionIDs) > 0 {
		return fmt.Sprintf("missing required answers for questions %v", e.MissingQuestionIDs)
	}
	return e.Reason
}

// DuplicateAnswerError rejects a submission whose unique-flagged answers
// collide with stored ones. QuestionIDs lets the form highlight the fields.
type DuplicateAnswerError struct {
	QuestionIDs []int
}

func (e *DuplicateAnswerError) Error() string {
	return fmt.Sprintf("duplicate answers for questions %v", e.QuestionIDs)
}

// NotFoundError reports a question id that resolves to nothing.
type NotFoundError struct {
	QuestionID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("question %d not found", e.QuestionID)
}

// PersistenceError wraps a storage failure. The cause is for logs only and
// must not leak to callers.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "persistence failure: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
