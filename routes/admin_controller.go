package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/menuvercel2/googleform/httpx"
	"github.com/menuvercel2/googleform/log"
	"github.com/menuvercel2/googleform/model"
	"github.com/menuvercel2/googleform/store"
)

// validateQuestion enforces catalog invariants: text and a known type are
// mandatory, options belong only to option-bearing types, and the uniqueness
// flag is only meaningful on free-text questions.
func validateQuestion(q *model.Question) (code string, ok bool) {
	if q.Text == "" {
		return "question.text", false
	}
	if !q.Type.Valid() {
		return "question.type", false
	}
	if q.Type.HasOptions() {
		if len(q.Options) == 0 {
			return "question.options", false
		}
	} else {
		q.Options = nil
	}
	if !q.Type.Textual() {
		q.IsUnique = false
	}
	return "", true
}

func CreateQuestion(st *store.SQL) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		question := model.Question{}
		err := render.DecodeJSON(r.Body, &question)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if code, ok := validateQuestion(&question); !ok {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, code)
			return
		}

		question, err = st.CreateQuestion(r.Context(), question)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_question", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, question)
	}
}

func UpdateQuestion(st *store.SQL) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		question := model.Question{}
		err = render.DecodeJSON(r.Body, &question)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		question.ID = questionId

		if code, ok := validateQuestion(&question); !ok {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, code)
			return
		}

		err = st.UpdateQuestion(r.Context(), question)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				httpx.LogNotFound(w, "update_question", questionId)
			} else {
				httpx.LogInternalError(w, "db.update_question", err)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteQuestion(st *store.SQL) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		err = st.DeleteQuestion(r.Context(), questionId)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				httpx.LogNotFound(w, "delete_question", questionId)
			} else {
				httpx.LogInternalError(w, "db.delete_question", err)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

type reorderRequest struct {
	Order []int `json:"order"`
}

func ReorderQuestions(st *store.SQL) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := reorderRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if len(req.Order) == 0 {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "reorder.order")
			return
		}

		err = st.ReorderQuestions(r.Context(), req.Order)
		if err != nil {
			httpx.LogInternalError(w, "db.reorder_questions", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func ListAnswers(st *store.SQL) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		answers, err := st.ListAnswers(r.Context())
		if err != nil {
			httpx.LogInternalError(w, "db.get_answers", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"answers": answers,
		})
	}
}

func ListSessions(st *store.SQL) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := st.ListSessions(r.Context())
		if err != nil {
			httpx.LogInternalError(w, "db.get_sessions", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"sessions": sessions,
		})
	}
}
