package routes

import (
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/menuvercel2/googleform/app"
	"github.com/menuvercel2/googleform/form"
	"github.com/menuvercel2/googleform/routes/middlewares"
	"github.com/menuvercel2/googleform/store"
)

func Wire(app app.App) http.Handler {
	st := store.New(app.DB)
	policy := form.MatchPolicy{
		FoldCase:   app.DupFoldCase,
		TrimSpace:  app.DupTrimSpace,
		PerElement: app.DupPerElement,
	}
	checker := form.NewChecker(st, st, policy)
	coordinator := form.NewCoordinator(st, st, checker)

	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app, st, checker, coordinator))

	root.
		With(middlewares.CookieAuth(app.BearerServer), middlewares.Admin(app.TokenSecret)).
		Mount("/admin", servePrivateFiles("/admin"))
	root.Mount("/", servePublicFiles())

	return root
}

func apiRouter(app app.App, st *store.SQL, checker *form.Checker, coordinator *form.Coordinator) http.Handler {
	api := chi.NewRouter()

	api.Get("/questions", ListQuestions(st))
	api.Post("/check-duplicate", CheckDuplicate(checker))
	api.Post("/submit", SubmitAnswers(coordinator))

	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.Admin(app.TokenSecret))

		r.Post("/questions", CreateQuestion(st))
		r.Put(`/questions/{id:^\d+$}`, UpdateQuestion(st))
		r.Delete(`/questions/{id:^\d+$}`, DeleteQuestion(st))
		r.Post("/questions/reorder", ReorderQuestions(st))

		r.Get("/answers", ListAnswers(st))
		r.Get("/sessions", ListSessions(st))
	})

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}

func servePublicFiles() http.Handler {
	return http.FileServer(http.Dir("public"))
}

func servePrivateFiles(path string) http.Handler {
	return http.StripPrefix(path, http.FileServer(http.Dir("private")))
}
