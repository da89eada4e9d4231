package store

import (
	"database/sql"
	"fmt"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = sql.ErrNoRows

// ConflictError reports stored answers that already hold a value a batch
// insert tried to write for a unique-flagged question.
type ConflictError struct {
	QuestionIDs []int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("duplicate answers for questions %v", e.QuestionIDs)
}

// SQL is the persistence layer over a single SQLite database.
type SQL struct {
	db *sql.DB
}

func New(db *sql.DB) *SQL {
	return &SQL{db: db}
}
