package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/menuvercel2/googleform/form"
	"github.com/menuvercel2/googleform/httpx"
	"github.com/menuvercel2/googleform/log"
	"github.com/menuvercel2/googleform/model"
)

// ListQuestions serves the form definition, in display order.
func ListQuestions(catalog form.QuestionCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questions, err := catalog.ListQuestions(r.Context())
		if err != nil {
			httpx.LogInternalError(w, "db.get_questions", err)
			return
		}

		render.JSON(w, r, questions)
	}
}

type checkDuplicateRequest struct {
	QuestionID int     `json:"questionId"`
	Answer     *string `json:"answer"`
}

func CheckDuplicate(checker *form.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := checkDuplicateRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if req.QuestionID == 0 {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "check_duplicate.question_id")
			return
		}

		isDuplicate, err := checker.Check(r.Context(), req.QuestionID, req.Answer)
		if err != nil {
			var notFound *form.NotFoundError
			switch {
			case errors.Is(err, form.ErrMissingValue):
				httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "check_duplicate.answer")
			case errors.As(err, &notFound):
				httpx.LogNotFound(w, "check_duplicate", notFound.QuestionID)
			default:
				httpx.LogInternalError(w, "db.check_duplicate", err)
			}
			return
		}

		render.JSON(w, r, map[string]any{
			"isDuplicate": isDuplicate,
		})
	}
}

type submitRequest struct {
	Email   string                    `json:"email"`
	Answers map[int]model.AnswerValue `json:"answers"`
}

func SubmitAnswers(coordinator *form.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := submitRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		receipt, err := coordinator.Submit(r.Context(), req.Email, req.Answers)
		if err != nil {
			var (
				validation *form.ValidationError
				duplicate  *form.DuplicateAnswerError
				notFound   *form.NotFoundError
			)
			switch {
			case errors.As(err, &validation):
				httpx.LogStatusJSON(w, r, http.StatusBadRequest, "submit.validate", map[string]any{
					"error":   validation.Error(),
					"missing": validation.MissingQuestionIDs,
				})
			case errors.As(err, &duplicate):
				httpx.LogStatusJSON(w, r, http.StatusConflict, "submit.duplicate", map[string]any{
					"error":       "duplicate answers",
					"questionIds": duplicate.QuestionIDs,
				})
			case errors.As(err, &notFound):
				httpx.LogNotFound(w, "submit", notFound.QuestionID)
			default:
				httpx.LogInternalError(w, "db.submit", err)
			}
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, receipt)
	}
}
