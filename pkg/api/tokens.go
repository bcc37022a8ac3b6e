package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/orbitsandbox/orbit-agent/pkg/types"
)

type issueTokenRequest struct {
	Name      string     `json:"name"`
	Scopes    []string   `json:"scopes"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type issueTokenResponse struct {
	Token     string     `json:"token"`
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Prefix    string     `json:"prefix"`
	Scopes    []string   `json:"scopes"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	var req issueTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	scopes := req.Scopes
	if len(scopes) == 0 {
		scopes = types.DefaultTokenScopes()
	}

	issued, err := s.tokens.Issue(r.Context(), req.Name, scopes, req.ExpiresAt)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, issueTokenResponse{
		Token:     issued.Secret,
		ID:        issued.Info.ID,
		Name:      issued.Info.Name,
		Prefix:    issued.Info.Prefix,
		Scopes:    issued.Info.Scopes,
		CreatedAt: issued.Info.CreatedAt,
		ExpiresAt: issued.Info.ExpiresAt,
	})
}

func (s *Server) handleListTokens(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	tokens, err := s.tokens.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

func (s *Server) handleRevokeToken(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	revoked, err := s.tokens.Revoke(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !revoked {
		writeNotFound(w)
		return
	}
	writeNoContent(w)
}
