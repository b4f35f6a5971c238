package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/olegsm/billgate/docs" // swagger docs
)

func NewRouter(h *Handler, mw *Middleware) http.Handler {
	mux := chi.NewRouter()
	mux.Use(mw.Log, mw.Recover, mw.Cors)

	mux.Route("/api", func(r chi.Router) {
		r.HandleFunc("/health", h.HealthHandler)
		r.HandleFunc("/swagger/*", httpSwagger.Handler())

		r.Route("/bills", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(mw.APIKeyAuth)
				r.Post("/", h.CreateBill)
				r.Get("/{bill_id}", h.BillStatus)
				r.Post("/{bill_id}/refresh", h.RefreshBill)
				r.Post("/{bill_id}/cancel", h.CancelBill)
			})

			// EventSource cannot set custom headers, the watch stream
			// stays outside the API key guard.
			r.Get("/{bill_id}/events", h.BillEvents)
		})

		r.Route("/callbacks", func(r chi.Router) {
			r.Use(mw.CallbackIPWL)
			r.Post("/qiwi", h.QiwiCallback)
		})
	})

	return mux
}
