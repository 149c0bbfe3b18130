package httptransport

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"cardlink/internal/card"
	dErrors "cardlink/pkg/domain-errors"
)

// requireAdmin guards the provisioning surface with a shared key. No key
// configured means the surface is disabled entirely.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.adminKey == "" {
			h.writeError(w, dErrors.New(dErrors.CodeNotFound, "admin surface disabled"))
			return
		}
		given := r.Header.Get("X-Admin-Key")
		if subtle.ConstantTimeCompare([]byte(given), []byte(h.adminKey)) != 1 {
			h.writeError(w, dErrors.New(dErrors.CodeUnauthenticated, "bad admin key"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

type provisionResponse struct {
	UIDs []string `json:"uids"`
}

// handleProvision creates count blank, unclaimed cards with server-assigned
// opaque identifiers.
func (h *Handler) handleProvision(w http.ResponseWriter, r *http.Request) {
	var req provisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.Count < 1 || req.Count > 1000 {
		h.writeError(w, dErrors.New(dErrors.CodeBadRequest, "count must be between 1 and 1000"))
		return
	}

	now := time.Now()
	uids := make([]string, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		uid := uuid.NewString()
		err := h.cards.Create(r.Context(), card.Card{UID: uid, CreatedAt: now, UpdatedAt: now})
		if err != nil {
			h.writeError(w, err)
			return
		}
		uids = append(uids, uid)
	}

	writeJSON(w, http.StatusCreated, provisionResponse{UIDs: uids})
}

type listedCard struct {
	UID       string     `json:"uid"`
	Claimed   bool       `json:"claimed"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`
	Name      string     `json:"name,omitempty"`
	Company   string     `json:"company,omitempty"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	if limit < 1 || limit > 500 || offset < 0 {
		h.writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid pagination"))
		return
	}

	cards, err := h.cards.List(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]listedCard, 0, len(cards))
	for _, c := range cards {
		out = append(out, listedCard{
			UID:       c.UID,
			Claimed:   c.Claim.Claimed(),
			ClaimedAt: c.Claim.At,
			Name:      c.Profile.Name,
			Company:   c.Profile.Company,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"cards": out})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return n
}
