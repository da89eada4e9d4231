package form

import (
	"context"
	"errors"
	"strings"

	"github.com/menuvercel2/googleform/model"
	"github.com/menuvercel2/googleform/store"
)

// QuestionCatalog supplies question definitions.
type QuestionCatalog interface {
	FindQuestion(ctx context.Context, id int) (model.Question, error)
	ListQuestions(ctx context.Context) ([]model.Question, error)
}

// AnswerHistory supplies stored answers for duplicate matching.
type AnswerHistory interface {
	ListAnswersByQuestion(ctx context.Context, questionID int) ([]model.Answer, error)
}

// MatchPolicy controls how candidate values are compared against stored
// ones. The zero value is exact string equality: case, whitespace and
// encoding differences all count as distinct.
type MatchPolicy struct {
	FoldCase   bool
	TrimSpace  bool
	PerElement bool
}

func (p MatchPolicy) normalize(s string) string {
	if p.TrimSpace {
		s = strings.TrimSpace(s)
	}
	if p.FoldCase {
		s = strings.ToLower(s)
	}
	return s
}

// matches compares a stored answer_text against a normalized candidate.
// With PerElement set, elements of stored JSON-array values match too.
func (p MatchPolicy) matches(stored, candidate string) bool {
	if p.normalize(stored) == candidate {
		return true
	}
	if !p.PerElement {
		return false
	}
	for _, el := range model.DecodeStoredValues(stored) {
		if p.normalize(el) == candidate {
			return true
		}
	}
	return false
}

// Checker decides whether a candidate answer value already exists for a
// question. Read-only.
type Checker struct {
	questions QuestionCatalog
	answers   AnswerHistory
	policy    MatchPolicy
}

func NewChecker(questions QuestionCatalog, answers AnswerHistory, policy MatchPolicy) *Checker {
	return &Checker{
		questions: questions,
		answers:   answers,
		policy:    policy,
	}
}

// Check reports whether candidate already exists among stored answers for
// the question. A nil candidate fails with ErrMissingValue. Questions that
// are not unique-flagged short-circuit to false without touching the answer
// history.
func (c *Checker) Check(ctx context.Context, questionID int, candidate *string) (bool, error) {
	if candidate == nil {
		return false, ErrMissingValue
	}

	q, err := c.questions.FindQuestion(ctx, questionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, &NotFoundError{QuestionID: questionID}
		}
		return false, &PersistenceError{Err: err}
	}

	if !q.IsUnique {
		return false, nil
	}

	history, err := c.answers.ListAnswersByQuestion(ctx, questionID)
	if err != nil {
		return false, &PersistenceError{Err: err}
	}

	cand := c.policy.normalize(*candidate)
	for _, a := range history {
		if c.policy.matches(a.AnswerText, cand) {
			return true, nil
		}
	}
	return false, nil
}
