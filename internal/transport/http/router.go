// Package httptransport is the thin HTTP layer. Handlers delegate to domain
// services without embedding business logic so transport concerns remain
// isolated.
package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"cardlink/internal/card"
	"cardlink/internal/claim"
	"cardlink/internal/event"
	dErrors "cardlink/pkg/domain-errors"
)

// Handler bundles the domain services the routes need.
type Handler struct {
	claims   *claim.Service
	cards    card.Store
	recorder *event.Recorder
	log      *logrus.Logger
	adminKey string
}

func NewHandler(claims *claim.Service, cards card.Store, recorder *event.Recorder, log *logrus.Logger, adminKey string) *Handler {
	return &Handler{
		claims:   claims,
		cards:    cards,
		recorder: recorder,
		log:      log,
		adminKey: adminKey,
	}
}

// NewRouter wires all public endpoints.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/cards/{uid}", func(r chi.Router) {
		r.Get("/", h.handleLookup)
		r.Post("/claim", h.handleClaim)
		r.Put("/", h.handleEdit)
		r.Get("/vcard", h.handleExportVCard)
	})

	r.Post("/events", h.handleRecordEvent)

	r.Route("/admin/cards", func(r chi.Router) {
		r.Use(h.requireAdmin)
		r.Post("/", h.handleProvision)
		r.Get("/", h.handleList)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError centralizes domain error translation to HTTP responses so every
// handler emits the same JSON error envelope.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal && h.log != nil {
		h.log.WithError(err).Error("request failed")
	}
	writeJSON(w, dErrors.ToHTTPStatus(code), map[string]string{
		"error": string(code),
	})
}
