package form

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/menuvercel2/googleform/model"
	"github.com/menuvercel2/googleform/store"
)

// AnswerWriter persists a whole submission atomically: either every draft
// becomes durable or none does.
type AnswerWriter interface {
	InsertAnswersBatch(ctx context.Context, drafts []model.AnswerDraft, unique map[int]bool) ([]model.Answer, error)
}

// Receipt is what a committed submission returns to the respondent.
type Receipt struct {
	SessionID string         `json:"sessionId"`
	Answers   []model.Answer `json:"answers"`
}

// Coordinator validates a full answer set against the question catalog and
// persists it as one session.
type Coordinator struct {
	questions QuestionCatalog
	writer    AnswerWriter
	checker   *Checker
}

func NewCoordinator(questions QuestionCatalog, writer AnswerWriter, checker *Checker) *Coordinator {
	return &Coordinator{
		questions: questions,
		writer:    writer,
		checker:   checker,
	}
}

// Submit runs a submission attempt through validation, the uniqueness pass
// and the atomic persistence pass. Every entry of answers is stored under
// one freshly generated session id and the given email.
func (co *Coordinator) Submit(ctx context.Context, email string, answers map[int]model.AnswerValue) (Receipt, error) {
	if email == "" || !strings.Contains(email, "@") {
		return Receipt{}, &ValidationError{Reason: "email must be non-empty and contain @"}
	}

	catalog, err := co.questions.ListQuestions(ctx)
	if err != nil {
		return Receipt{}, &PersistenceError{Err: err}
	}
	byID := make(map[int]model.Question, len(catalog))
	for _, q := range catalog {
		byID[q.ID] = q
	}

	for id := range answers {
		if _, ok := byID[id]; !ok {
			return Receipt{}, &NotFoundError{QuestionID: id}
		}
	}

	var missing []int
	for _, q := range catalog {
		if !q.Required {
			continue
		}
		v, ok := answers[q.ID]
		if !ok || v.IsEmpty() {
			missing = append(missing, q.ID)
		}
	}
	if len(missing) > 0 {
		sort.Ints(missing)
		return Receipt{}, &ValidationError{MissingQuestionIDs: missing}
	}

	// Uniqueness pass. Only free-text questions can carry the flag.
	unique := map[int]bool{}
	var duplicates []int
	for _, q := range catalog {
		if !q.IsUnique || !q.Type.Textual() {
			continue
		}
		v, ok := answers[q.ID]
		if !ok || v.IsMulti() {
			continue
		}
		unique[q.ID] = true

		candidate := v.Single()
		isDup, err := co.checker.Check(ctx, q.ID, &candidate)
		if err != nil {
			return Receipt{}, err
		}
		if isDup {
			duplicates = append(duplicates, q.ID)
		}
	}
	if len(duplicates) > 0 {
		sort.Ints(duplicates)
		return Receipt{}, &DuplicateAnswerError{QuestionIDs: duplicates}
	}

	sessionID, err := uuid.NewV4()
	if err != nil {
		return Receipt{}, err
	}

	drafts := make([]model.AnswerDraft, 0, len(answers))
	for id, v := range answers {
		text, err := v.Encode()
		if err != nil {
			return Receipt{}, &ValidationError{Reason: "unencodable answer value"}
		}
		drafts = append(drafts, model.AnswerDraft{
			QuestionID: id,
			AnswerText: text,
			Email:      email,
			SessionID:  sessionID.String(),
		})
	}
	sort.Slice(drafts, func(i, j int) bool { return drafts[i].QuestionID < drafts[j].QuestionID })

	stored, err := co.writer.InsertAnswersBatch(ctx, drafts, unique)
	if err != nil {
		var conflict *store.ConflictError
		if errors.As(err, &conflict) {
			// Lost the race between pre-check and insert to a concurrent
			// submission. Nothing was written.
			return Receipt{}, &DuplicateAnswerError{QuestionIDs: conflict.QuestionIDs}
		}
		return Receipt{}, &PersistenceError{Err: err}
	}

	return Receipt{SessionID: sessionID.String(), Answers: stored}, nil
}
