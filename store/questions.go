package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/menuvercel2/googleform/model"
	"github.com/pkg/errors"
)

func scanQuestion(row interface{ Scan(...any) error }) (q model.Question, err error) {
	var options sql.NullString
	err = row.Scan(&q.ID, &q.Text, &q.Type, &q.Required, &q.IsUnique, &options, &q.OrderIndex)
	if err != nil {
		return
	}
	if options.Valid && options.String != "" {
		err = json.Unmarshal([]byte(options.String), &q.Options)
		if err != nil {
			err = errors.Wrap(err, "parse question options")
		}
	}
	return
}

func (s *SQL) FindQuestion(ctx context.Context, id int) (model.Question, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, text, type, required, is_unique, options, order_index
		FROM questions
		WHERE id = ?`,
		id,
	)
	q, err := scanQuestion(row)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return q, errors.Wrap(err, "find question")
	}
	return q, err
}

func (s *SQL) ListQuestions(ctx context.Context) ([]model.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, type, required, is_unique, options, order_index
		FROM questions
		ORDER BY order_index ASC, id ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "list questions")
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, errors.Wrap(err, "list questions: scan")
		}
		questions = append(questions, q)
	}
	return questions, errors.Wrap(rows.Err(), "list questions")
}

func encodeOptions(q model.Question) (sql.NullString, error) {
	if !q.Type.HasOptions() {
		return sql.NullString{}, nil
	}
	opts := q.Options
	if opts == nil {
		opts = []string{}
	}
	b, err := json.Marshal(opts)
	if err != nil {
		return sql.NullString{}, errors.Wrap(err, "encode question options")
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func (s *SQL) CreateQuestion(ctx context.Context, q model.Question) (model.Question, error) {
	options, err := encodeOptions(q)
	if err != nil {
		return q, err
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO questions (text, type, required, is_unique, options, order_index)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		q.Text, q.Type, q.Required, q.IsUnique, options, q.OrderIndex,
	).Scan(&q.ID)
	if err != nil {
		return q, errors.Wrap(err, "insert question")
	}
	return q, nil
}

func (s *SQL) UpdateQuestion(ctx context.Context, q model.Question) error {
	options, err := encodeOptions(q)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE questions
		SET
			text = ?,
			type = ?,
			required = ?,
			is_unique = ?,
			options = ?
		WHERE id = ?`,
		q.Text, q.Type, q.Required, q.IsUnique, options, q.ID,
	)
	if err != nil {
		return errors.Wrap(err, "update question")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update question: verify")
	}
	if n < 1 {
		return ErrNotFound
	}
	return nil
}

// DeleteQuestion removes a question definition. Answers referencing it are
// kept: the reference is soft and review listings must tolerate the gap.
func (s *SQL) DeleteQuestion(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete question")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete question: verify")
	}
	if n < 1 {
		return ErrNotFound
	}
	return nil
}

// ReorderQuestions rewrites order_index from the position of each id in the
// given sequence, in one transaction.
func (s *SQL) ReorderQuestions(ctx context.Context, ids []int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "reorder questions: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE questions SET order_index = ? WHERE id = ?`)
	if err != nil {
		return errors.Wrap(err, "reorder questions: prepare")
	}
	defer stmt.Close()

	for i, id := range ids {
		_, err := stmt.ExecContext(ctx, i, id)
		if err != nil {
			return errors.Wrap(err, "reorder questions: update")
		}
	}

	return errors.Wrap(tx.Commit(), "reorder questions: commit")
}
