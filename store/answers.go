package store

import (
	"context"

	"github.com/menuvercel2/googleform/model"
	"github.com/pkg/errors"
)

func (s *SQL) ListAnswersByQuestion(ctx context.Context, questionID int) ([]model.Answer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question_id, answer_text, email, session_id, created_at
		FROM answers
		WHERE question_id = ?`,
		questionID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list answers by question")
	}
	defer rows.Close()

	answers := []model.Answer{}
	for rows.Next() {
		a := model.Answer{}
		err = rows.Scan(&a.ID, &a.QuestionID, &a.AnswerText, &a.Email, &a.SessionID, &a.CreatedAt)
		if err != nil {
			return nil, errors.Wrap(err, "list answers by question: scan")
		}
		answers = append(answers, a)
	}
	return answers, errors.Wrap(rows.Err(), "list answers by question")
}

// InsertAnswersBatch stores all drafts of one submission atomically.
// Drafts whose question id appears in unique are re-checked against stored
// answers inside the same write transaction, which closes the window between
// an advisory pre-check and the insert: SQLite serializes writers, so two
// concurrent submissions of the same value cannot both pass this check.
// On conflict nothing is written and a ConflictError lists the question ids.
func (s *SQL) InsertAnswersBatch(ctx context.Context, drafts []model.AnswerDraft, unique map[int]bool) ([]model.Answer, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "insert answers: begin tx")
	}
	defer tx.Rollback()

	var conflicts []int
	for _, d := range drafts {
		if !unique[d.QuestionID] {
			continue
		}
		var one int
		err = tx.QueryRowContext(ctx, `
			SELECT 1 FROM answers
			WHERE question_id = ?
				AND answer_text = ?
			LIMIT 1`,
			d.QuestionID, d.AnswerText,
		).Scan(&one)
		switch {
		case err == nil:
			conflicts = append(conflicts, d.QuestionID)
		case errors.Is(err, ErrNotFound):
			// value still free
		default:
			return nil, errors.Wrap(err, "insert answers: conflict check")
		}
	}
	if len(conflicts) > 0 {
		return nil, &ConflictError{QuestionIDs: conflicts}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO answers (question_id, answer_text, email, session_id)
		VALUES (?, ?, ?, ?)
		RETURNING id, created_at`)
	if err != nil {
		return nil, errors.Wrap(err, "insert answers: prepare")
	}
	defer stmt.Close()

	answers := make([]model.Answer, 0, len(drafts))
	for _, d := range drafts {
		a := model.Answer{
			QuestionID: d.QuestionID,
			AnswerText: d.AnswerText,
			Email:      d.Email,
			SessionID:  d.SessionID,
		}
		err = stmt.QueryRowContext(ctx, d.QuestionID, d.AnswerText, d.Email, d.SessionID).
			Scan(&a.ID, &a.CreatedAt)
		if err != nil {
			return nil, errors.Wrap(err, "insert answers: insert")
		}
		answers = append(answers, a)
	}

	err = tx.Commit()
	if err != nil {
		return nil, errors.Wrap(err, "insert answers: commit")
	}
	return answers, nil
}

const answersWithQuestionQuery = `
	SELECT
		a.id, a.question_id, a.answer_text, a.email, a.session_id, a.created_at,
		q.text, q.type
	FROM answers a
	LEFT OUTER JOIN questions q ON (a.question_id = q.id)
	ORDER BY a.created_at DESC, a.id DESC`

func (s *SQL) queryAnswersWithQuestion(ctx context.Context) ([]model.AnswerWithQuestion, error) {
	rows, err := s.db.QueryContext(ctx, answersWithQuestionQuery)
	if err != nil {
		return nil, errors.Wrap(err, "list answers")
	}
	defer rows.Close()

	answers := []model.AnswerWithQuestion{}
	for rows.Next() {
		a := model.AnswerWithQuestion{}
		err = rows.Scan(
			&a.ID, &a.QuestionID, &a.AnswerText, &a.Email, &a.SessionID, &a.CreatedAt,
			&a.QuestionText, &a.QuestionType,
		)
		if err != nil {
			return nil, errors.Wrap(err, "list answers: scan")
		}
		answers = append(answers, a)
	}
	return answers, errors.Wrap(rows.Err(), "list answers")
}

// ListAnswers returns all stored answers, newest first, with the question
// text and type joined in. Deleted questions come back as NULLs.
func (s *SQL) ListAnswers(ctx context.Context) ([]model.AnswerWithQuestion, error) {
	return s.queryAnswersWithQuestion(ctx)
}

// ListSessions groups stored answers by session id, newest session first.
func (s *SQL) ListSessions(ctx context.Context) ([]model.Session, error) {
	answers, err := s.queryAnswersWithQuestion(ctx)
	if err != nil {
		return nil, err
	}

	sessions := []model.Session{}
	index := map[string]int{}
	for _, a := range answers {
		i, ok := index[a.SessionID]
		if !ok {
			i = len(sessions)
			index[a.SessionID] = i
			sessions = append(sessions, model.Session{
				ID:        a.SessionID,
				Email:     a.Email,
				CreatedAt: a.CreatedAt,
			})
		}
		sessions[i].Answers = append(sessions[i].Answers, a)
	}
	return sessions, nil
}
