package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/common"
	"github.com/kevinbuckley/tripwit/internal/domain"
	"github.com/kevinbuckley/tripwit/internal/syncx"
)

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	return nil
}

type credentialsRequest struct {
	Login  string `json:"login"`
	Secret string `json:"secret"`
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Login == "" || req.Secret == "" {
		s.writeError(w, r, fmt.Errorf("%w: login and secret are required", common.ErrorValidation))
		return
	}
	user, err := s.users.Register(r.Context(), req.Login, req.Secret)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"id": user.ID})
}

type sessionResponse struct {
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	pair, err := s.users.Login(r.Context(), req.Login, req.Secret)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sessionResponse{UserID: pair.UserID, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (s *HTTPServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	pair, err := s.users.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sessionResponse{UserID: pair.UserID, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

type pushRequest struct {
	Scope   syncx.Scope   `json:"scope"`
	Entries []syncx.Entry `json:"entries"`
}

type pushResponse struct {
	Tokens []syncx.Token `json:"tokens"`
}

func (s *HTTPServer) handlePush(w http.ResponseWriter, r *http.Request) {
	var req pushRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	tokens, err := s.changes.Push(r.Context(), userID(r), req.Entries)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, pushResponse{Tokens: tokens})
}

type changeBatchResponse struct {
	Entries []syncx.Entry `json:"entries"`
	Next    syncx.Token   `json:"next"`
}

func (s *HTTPServer) handleChanges(w http.ResponseWriter, r *http.Request) {
	scope := syncx.Scope(r.URL.Query().Get("scope"))
	after := syncx.Token(r.URL.Query().Get("after"))

	entries, next, err := s.changes.Changes(r.Context(), userID(r), scope, after, 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, changeBatchResponse{Entries: entries, Next: next})
}

func (s *HTTPServer) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	scope := syncx.Scope(r.URL.Query().Get("scope"))

	entries, next, err := s.changes.Snapshot(r.Context(), userID(r), scope)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, changeBatchResponse{Entries: entries, Next: next})
}

func (s *HTTPServer) handleCreateShare(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TripID uuid.UUID `json:"trip_id"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	share, err := s.shares.Create(r.Context(), userID(r), req.TripID.String())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, share.Share)
}

func (s *HTTPServer) handleResolveShare(w http.ResponseWriter, r *http.Request) {
	share, err := s.shares.Resolve(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, share.Share)
}

func (s *HTTPServer) handleAcceptShare(w http.ResponseWriter, r *http.Request) {
	share, err := s.shares.Accept(r.Context(), userID(r), chi.URLParam(r, "token"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, share.Share)
}

func (s *HTTPServer) handlePersistShare(w http.ResponseWriter, r *http.Request) {
	var req domain.Share
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	share, removed, err := s.shares.UpdateRoster(r.Context(), userID(r), chi.URLParam(r, "zone"), req.Participants)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(removed) > 0 {
		if err := s.changes.InvalidateSharedCursor(r.Context(), removed); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	s.writeJSON(w, http.StatusOK, share.Share)
}

func (s *HTTPServer) handlePurgeZone(w http.ResponseWriter, r *http.Request) {
	zone := chi.URLParam(r, "zone")

	members, err := s.shares.Purge(r.Context(), userID(r), zone)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.changes.PurgeZone(r.Context(), zone); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(members) > 0 {
		if err := s.changes.InvalidateSharedCursor(r.Context(), members); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

type presignResponse struct {
	Key string `json:"key,omitempty"`
	URL string `json:"url"`
}

func (s *HTTPServer) handlePresignUpload(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	key, uploadURL, err := s.uploads.PresignUpload(r.Context(), req.Key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, presignResponse{Key: key, URL: uploadURL})
}

func (s *HTTPServer) handlePresignDownload(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: bad key", common.ErrorValidation))
		return
	}
	downloadURL, err := s.uploads.PresignDownload(r.Context(), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, presignResponse{URL: downloadURL})
}
