package model

import (
	"encoding/json"
	"errors"
	"time"
)

type QuestionType string

const (
	TypeShort        QuestionType = "short"
	TypeParagraph    QuestionType = "paragraph"
	TypeMultiple     QuestionType = "multiple"
	TypeCheckbox     QuestionType = "checkbox"
	TypeDropdown     QuestionType = "dropdown"
	TypeMultiText    QuestionType = "multi_text"
	TypeFile         QuestionType = "file"
	TypeScale        QuestionType = "scale"
	TypeRating       QuestionType = "rating"
	TypeMultipleGrid QuestionType = "multiple_grid"
	TypeCheckboxGrid QuestionType = "checkbox_grid"
	TypeDate         QuestionType = "date"
	TypeTime         QuestionType = "time"
)

var questionTypes = map[QuestionType]bool{
	TypeShort:        true,
	TypeParagraph:    true,
	TypeMultiple:     true,
	TypeCheckbox:     true,
	TypeDropdown:     true,
	TypeMultiText:    true,
	TypeFile:         true,
	TypeScale:        true,
	TypeRating:       true,
	TypeMultipleGrid: true,
	TypeCheckboxGrid: true,
	TypeDate:         true,
	TypeTime:         true,
}

func (t QuestionType) Valid() bool {
	return questionTypes[t]
}

// HasOptions reports whether questions of this type carry an option list.
func (t QuestionType) HasOptions() bool {
	switch t {
	case TypeMultiple, TypeCheckbox, TypeDropdown, TypeMultiText, TypeMultipleGrid, TypeCheckboxGrid:
		return true
	}
	return false
}

// Textual reports whether the type accepts free text, which is the only kind
// of question a uniqueness constraint applies to.
func (t QuestionType) Textual() bool {
	return t == TypeShort || t == TypeParagraph
}

type Question struct {
	ID         int          `json:"id,omitempty"`
	Text       string       `json:"text"`
	Type       QuestionType `json:"type"`
	Required   bool         `json:"required"`
	IsUnique   bool         `json:"is_unique"`
	Options    []string     `json:"options"`
	OrderIndex int          `json:"order_index"`
}

type Answer struct {
	ID         int       `json:"id"`
	QuestionID int       `json:"question_id"`
	AnswerText string    `json:"answer_text"`
	Email      string    `json:"email"`
	SessionID  string    `json:"session_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// AnswerDraft is an Answer before the store has assigned id and timestamp.
type AnswerDraft struct {
	QuestionID int
	AnswerText string
	Email      string
	SessionID  string
}

// AnswerWithQuestion carries the joined question columns for review listings.
// The question reference is soft: a deleted question leaves both pointers nil.
type AnswerWithQuestion struct {
	Answer
	QuestionText *string       `json:"question_text"`
	QuestionType *QuestionType `json:"question_type"`
}

// Session is not stored; it is derived by grouping answers on session_id.
type Session struct {
	ID        string               `json:"session_id"`
	Email     string               `json:"email"`
	CreatedAt time.Time            `json:"created_at"`
	Answers   []AnswerWithQuestion `json:"answers"`
}

var ErrNotAnswerValue = errors.New("answer value must be a string or an array of strings")

// AnswerValue is a respondent's value for one question: either a single
// string or a sequence of strings. The legacy text-column encoding (raw
// string, or a JSON array for multi values) happens only at the persistence
// boundary, via Encode.
type AnswerValue struct {
	multi  bool
	single string
	values []string
}

func Single(s string) AnswerValue {
	return AnswerValue{single: s}
}

func Multi(vs []string) AnswerValue {
	return AnswerValue{multi: true, values: vs}
}

func (v AnswerValue) IsMulti() bool {
	return v.multi
}

func (v AnswerValue) Single() string {
	return v.single
}

func (v AnswerValue) Values() []string {
	return v.values
}

func (v AnswerValue) IsEmpty() bool {
	if v.multi {
		return len(v.values) == 0
	}
	return v.single == ""
}

// Encode renders the value as stored in the answer_text column.
func (v AnswerValue) Encode() (string, error) {
	if !v.multi {
		return v.single, nil
	}
	b, err := json.Marshal(v.values)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if v.multi {
		return json.Marshal(v.values)
	}
	return json.Marshal(v.single)
}

func (v *AnswerValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = Single(s)
		return nil
	}
	var vs []string
	if err := json.Unmarshal(b, &vs); err == nil {
		*v = Multi(vs)
		return nil
	}
	return ErrNotAnswerValue
}

// DecodeStoredValues splits a stored answer_text into comparable elements.
// A JSON-array payload yields its elements; anything else is a single value.
func DecodeStoredValues(text string) []string {
	var vs []string
	if err := json.Unmarshal([]byte(text), &vs); err == nil {
		return vs
	}
	return []string{text}
}
