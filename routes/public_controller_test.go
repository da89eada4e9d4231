package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/menuvercel2/googleform/form"
	"github.com/menuvercel2/googleform/model"
	"github.com/menuvercel2/googleform/store"
)

type fakeCatalog struct {
	questions map[int]model.Question
}

func (f *fakeCatalog) FindQuestion(ctx context.Context, id int) (model.Question, error) {
	q, ok := f.questions[id]
	if !ok {
		return model.Question{}, store.ErrNotFound
	}
	return q, nil
}

func (f *fakeCatalog) ListQuestions(ctx context.Context) ([]model.Question, error) {
	ids := make([]int, 0, len(f.questions))
	for id := range f.questions {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	qs := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		qs = append(qs, f.questions[id])
	}
	return qs, nil
}

type fakeHistory struct {
	answers map[int][]model.Answer
}

func (f *fakeHistory) ListAnswersByQuestion(ctx context.Context, questionID int) ([]model.Answer, error) {
	return f.answers[questionID], nil
}

type fakeWriter struct{}

func (fakeWriter) InsertAnswersBatch(ctx context.Context, drafts []model.AnswerDraft, unique map[int]bool) ([]model.Answer, error) {
	answers := make([]model.Answer, 0, len(drafts))
	for i, d := range drafts {
		answers = append(answers, model.Answer{
			ID:         i + 1,
			QuestionID: d.QuestionID,
			AnswerText: d.AnswerText,
			Email:      d.Email,
			SessionID:  d.SessionID,
		})
	}
	return answers, nil
}

func testChecker() *form.Checker {
	catalog := &fakeCatalog{questions: map[int]model.Question{
		1: {ID: 1, Text: "name", Type: model.TypeShort, IsUnique: true},
	}}
	history := &fakeHistory{answers: map[int][]model.Answer{
		1: {{QuestionID: 1, AnswerText: "foo"}},
	}}
	return form.NewChecker(catalog, history, form.MatchPolicy{})
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	req.Header.Set("content-type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestCheckDuplicateHandler(t *testing.T) {
	handler := CheckDuplicate(testChecker())

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantDup    bool
	}{
		{"duplicate value", `{"questionId":1,"answer":"foo"}`, 200, true},
		{"free value", `{"questionId":1,"answer":"bar"}`, 200, false},
		{"case differs", `{"questionId":1,"answer":"FOO"}`, 200, false},
		{"missing question id", `{"answer":"foo"}`, 400, false},
		{"missing answer", `{"questionId":1}`, 400, false},
		{"empty answer is valid", `{"questionId":1,"answer":""}`, 200, false},
		{"unknown question", `{"questionId":42,"answer":"foo"}`, 404, false},
		{"garbage body", `{{{`, 400, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, handler, tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus != 200 {
				return
			}
			var resp struct {
				IsDuplicate bool `json:"isDuplicate"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("parse response: %v", err)
			}
			if resp.IsDuplicate != tt.wantDup {
				t.Errorf("isDuplicate = %v, want %v", resp.IsDuplicate, tt.wantDup)
			}
		})
	}
}

func TestSubmitHandler(t *testing.T) {
	catalog := &fakeCatalog{questions: map[int]model.Question{
		1: {ID: 1, Text: "name", Type: model.TypeShort, Required: true, IsUnique: true},
		2: {ID: 2, Text: "tags", Type: model.TypeMultiText, Options: []string{"a", "b"}},
	}}
	history := &fakeHistory{answers: map[int][]model.Answer{
		1: {{QuestionID: 1, AnswerText: "taken"}},
	}}
	checker := form.NewChecker(catalog, history, form.MatchPolicy{})
	handler := SubmitAnswers(form.NewCoordinator(catalog, fakeWriter{}, checker))

	t.Run("created", func(t *testing.T) {
		w := postJSON(t, handler, `{"email":"a@b.com","answers":{"1":"foo","2":["x","y"]}}`)
		if w.Code != 201 {
			t.Fatalf("status = %d, want 201; body: %s", w.Code, w.Body)
		}
		var resp struct {
			SessionID string         `json:"sessionId"`
			Answers   []model.Answer `json:"answers"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("parse response: %v", err)
		}
		if resp.SessionID == "" {
			t.Error("expected a session id")
		}
		if len(resp.Answers) != 2 {
			t.Errorf("expected 2 answers, got %d", len(resp.Answers))
		}
	})

	t.Run("missing email", func(t *testing.T) {
		w := postJSON(t, handler, `{"answers":{"1":"foo"}}`)
		if w.Code != 400 {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("missing required answer", func(t *testing.T) {
		w := postJSON(t, handler, `{"email":"a@b.com","answers":{"2":["x"]}}`)
		if w.Code != 400 {
			t.Fatalf("status = %d, want 400", w.Code)
		}
		var resp struct {
			Missing []int `json:"missing"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("parse response: %v", err)
		}
		if len(resp.Missing) != 1 || resp.Missing[0] != 1 {
			t.Errorf("expected missing [1], got %v", resp.Missing)
		}
	})

	t.Run("duplicate answer", func(t *testing.T) {
		w := postJSON(t, handler, `{"email":"a@b.com","answers":{"1":"taken"}}`)
		if w.Code != 409 {
			t.Fatalf("status = %d, want 409", w.Code)
		}
		var resp struct {
			QuestionIDs []int `json:"questionIds"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("parse response: %v", err)
		}
		if len(resp.QuestionIDs) != 1 || resp.QuestionIDs[0] != 1 {
			t.Errorf("expected offending questions [1], got %v", resp.QuestionIDs)
		}
	})

	t.Run("unknown question", func(t *testing.T) {
		w := postJSON(t, handler, `{"email":"a@b.com","answers":{"1":"foo","99":"bar"}}`)
		if w.Code != 404 {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})
}
