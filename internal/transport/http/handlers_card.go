package httptransport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"cardlink/internal/card"
	"cardlink/internal/vcard"
	dErrors "cardlink/pkg/domain-errors"
	"cardlink/pkg/sentinel"
)

type lookupResponse struct {
	Claimed    bool          `json:"claimed"`
	ClaimToken string        `json:"claim_token,omitempty"`
	Profile    *card.Profile `json:"profile,omitempty"`
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	res, err := h.claims.Lookup(r.Context(), uid)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if res.Claimed {
		profile := res.Card.Profile
		writeJSON(w, http.StatusOK, lookupResponse{Claimed: true, Profile: &profile})
		return
	}
	writeJSON(w, http.StatusOK, lookupResponse{Claimed: false, ClaimToken: res.ClaimToken})
}

type claimResponse struct {
	UID            string `json:"uid"`
	OwnershipToken string `json:"ownership_token"`
}

func (h *Handler) handleClaim(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		h.writeError(w, err)
		return
	}

	res, err := h.claims.Claim(r.Context(), uid, req.ClaimToken, req.Profile.ToProfile(), req.EmailForLogin)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, claimResponse{UID: res.UID, OwnershipToken: res.OwnershipToken})
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	ownToken, ok := bearerToken(r)
	if !ok {
		h.writeError(w, dErrors.New(dErrors.CodeUnauthenticated, "missing bearer token"))
		return
	}

	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.Profile.Validate(); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.claims.EditProfile(r.Context(), uid, ownToken, req.Profile.ToProfile()); err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) handleExportVCard(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	c, err := h.cards.Get(r.Context(), uid)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			h.writeError(w, dErrors.New(dErrors.CodeNotFound, "card not found"))
			return
		}
		h.writeError(w, err)
		return
	}

	doc := vcard.Render(c)
	if doc == "" {
		// Nothing to export is a success outcome, distinct from not found.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "text/vcard; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", uid+".vcf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
