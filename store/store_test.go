package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/menuvercel2/googleform/config"
	"github.com/menuvercel2/googleform/database"
	"github.com/menuvercel2/googleform/model"
)

func newTestStore(t *testing.T) *SQL {
	t.Helper()

	cfg := config.Config{DBUrl: filepath.Join(t.TempDir(), "test.sqlite")}
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return New(db)
}

func TestQuestionRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	created, err := st.CreateQuestion(ctx, model.Question{
		Text:     "Pick one",
		Type:     model.TypeCheckbox,
		Required: true,
		Options:  []string{"a", "b"},
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected an assigned question id")
	}

	found, err := st.FindQuestion(ctx, created.ID)
	if err != nil {
		t.Fatalf("find question: %v", err)
	}
	if found.Text != "Pick one" || found.Type != model.TypeCheckbox || !found.Required {
		t.Errorf("unexpected question: %+v", found)
	}
	if len(found.Options) != 2 || found.Options[0] != "a" {
		t.Errorf("options did not round-trip: %v", found.Options)
	}

	found.Text = "Pick two"
	if err := st.UpdateQuestion(ctx, found); err != nil {
		t.Fatalf("update question: %v", err)
	}
	found, err = st.FindQuestion(ctx, created.ID)
	if err != nil {
		t.Fatalf("find updated question: %v", err)
	}
	if found.Text != "Pick two" {
		t.Errorf("update not persisted, text = %q", found.Text)
	}

	if err := st.DeleteQuestion(ctx, created.ID); err != nil {
		t.Fatalf("delete question: %v", err)
	}
	if _, err := st.FindQuestion(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestQuestionNotFound(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if _, err := st.FindQuestion(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("find: expected ErrNotFound, got %v", err)
	}
	if err := st.UpdateQuestion(ctx, model.Question{ID: 42, Text: "x", Type: model.TypeShort}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update: expected ErrNotFound, got %v", err)
	}
	if err := st.DeleteQuestion(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete: expected ErrNotFound, got %v", err)
	}
}

func TestReorderQuestions(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	var ids []int
	for _, text := range []string{"first", "second", "third"} {
		q, err := st.CreateQuestion(ctx, model.Question{Text: text, Type: model.TypeShort})
		if err != nil {
			t.Fatalf("create question: %v", err)
		}
		ids = append(ids, q.ID)
	}

	// reverse the display order
	if err := st.ReorderQuestions(ctx, []int{ids[2], ids[1], ids[0]}); err != nil {
		t.Fatalf("reorder questions: %v", err)
	}

	questions, err := st.ListQuestions(ctx)
	if err != nil {
		t.Fatalf("list questions: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}
	if questions[0].Text != "third" || questions[2].Text != "first" {
		t.Errorf("reorder not applied: %q .. %q", questions[0].Text, questions[2].Text)
	}
}

func TestInsertAnswersBatch(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	q, err := st.CreateQuestion(ctx, model.Question{Text: "name", Type: model.TypeShort})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}

	drafts := []model.AnswerDraft{
		{QuestionID: q.ID, AnswerText: "foo", Email: "a@b.com", SessionID: "s1"},
		{QuestionID: q.ID, AnswerText: `["x","y"]`, Email: "a@b.com", SessionID: "s1"},
	}
	answers, err := st.InsertAnswersBatch(ctx, drafts, nil)
	if err != nil {
		t.Fatalf("insert answers: %v", err)
	}
	if len(answers) != 2 {
		t.Fatalf("expected 2 stored answers, got %d", len(answers))
	}
	for _, a := range answers {
		if a.ID == 0 {
			t.Error("expected an assigned answer id")
		}
		if a.CreatedAt.IsZero() {
			t.Error("expected a server-assigned timestamp")
		}
		if a.SessionID != "s1" {
			t.Errorf("expected session s1, got %q", a.SessionID)
		}
	}

	stored, err := st.ListAnswersByQuestion(ctx, q.ID)
	if err != nil {
		t.Fatalf("list answers: %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("expected 2 answers stored, got %d", len(stored))
	}
}

func TestInsertAnswersBatch_ConflictRollsBack(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	q, err := st.CreateQuestion(ctx, model.Question{Text: "name", Type: model.TypeShort, IsUnique: true})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	other, err := st.CreateQuestion(ctx, model.Question{Text: "note", Type: model.TypeParagraph})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}

	_, err = st.InsertAnswersBatch(ctx, []model.AnswerDraft{
		{QuestionID: q.ID, AnswerText: "foo", Email: "a@b.com", SessionID: "s1"},
	}, map[int]bool{q.ID: true})
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}

	_, err = st.InsertAnswersBatch(ctx, []model.AnswerDraft{
		{QuestionID: other.ID, AnswerText: "bar", Email: "c@d.com", SessionID: "s2"},
		{QuestionID: q.ID, AnswerText: "foo", Email: "c@d.com", SessionID: "s2"},
	}, map[int]bool{q.ID: true})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if len(conflict.QuestionIDs) != 1 || conflict.QuestionIDs[0] != q.ID {
		t.Errorf("expected conflict on question %d, got %v", q.ID, conflict.QuestionIDs)
	}

	// nothing of session s2 may be visible
	all, err := st.ListAnswers(ctx)
	if err != nil {
		t.Fatalf("list answers: %v", err)
	}
	for _, a := range all {
		if a.SessionID == "s2" {
			t.Errorf("rejected batch leaked answer %+v", a)
		}
	}
	if len(all) != 1 {
		t.Errorf("expected only the first answer, got %d", len(all))
	}
}

func TestListAnswers_DanglingQuestion(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	q, err := st.CreateQuestion(ctx, model.Question{Text: "name", Type: model.TypeShort})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	_, err = st.InsertAnswersBatch(ctx, []model.AnswerDraft{
		{QuestionID: q.ID, AnswerText: "foo", Email: "a@b.com", SessionID: "s1"},
	}, nil)
	if err != nil {
		t.Fatalf("insert answers: %v", err)
	}

	if err := st.DeleteQuestion(ctx, q.ID); err != nil {
		t.Fatalf("delete question: %v", err)
	}

	all, err := st.ListAnswers(ctx)
	if err != nil {
		t.Fatalf("list answers: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("historical answer must survive question deletion, got %d answers", len(all))
	}
	if all[0].QuestionText != nil || all[0].QuestionType != nil {
		t.Errorf("dangling reference must surface as missing question, got %+v", all[0])
	}
}

func TestListSessions(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	q, err := st.CreateQuestion(ctx, model.Question{Text: "name", Type: model.TypeShort})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}

	_, err = st.InsertAnswersBatch(ctx, []model.AnswerDraft{
		{QuestionID: q.ID, AnswerText: "foo", Email: "a@b.com", SessionID: "s1"},
		{QuestionID: q.ID, AnswerText: "bar", Email: "a@b.com", SessionID: "s1"},
	}, nil)
	if err != nil {
		t.Fatalf("insert first session: %v", err)
	}
	_, err = st.InsertAnswersBatch(ctx, []model.AnswerDraft{
		{QuestionID: q.ID, AnswerText: "baz", Email: "c@d.com", SessionID: "s2"},
	}, nil)
	if err != nil {
		t.Fatalf("insert second session: %v", err)
	}

	sessions, err := st.ListSessions(ctx)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}

	byID := map[string]model.Session{}
	for _, s := range sessions {
		byID[s.ID] = s
	}
	if s := byID["s1"]; len(s.Answers) != 2 || s.Email != "a@b.com" {
		t.Errorf("unexpected session s1: %+v", s)
	}
	if s := byID["s2"]; len(s.Answers) != 1 || s.Email != "c@d.com" {
		t.Errorf("unexpected session s2: %+v", s)
	}
}
