package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   s.now().UTC().Format(time.RFC3339),
	})
}

type signInRequest struct {
	DisplayName string `json:"displayName"`
	Username    string `json:"username"`
	Password    string `json:"password"`
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := required("username", req.Username, "password", req.Password); err != nil {
		writeCoreError(w, err)
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = req.Username
	}

	ok, err := s.directory.SignIn(r.Context(), req.DisplayName, req.Username, req.Password)
	if err != nil {
		s.logger.Error(r.Context(), "sign-in failed", "error", err)
		writeCoreError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusConflict, "username already taken")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	SessionID   string    `json:"sessionId"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := s.directory.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeError(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		s.logger.Error(r.Context(), "login failed", "error", err)
		writeCoreError(w, err)
		return
	}

	token, err := auth.GenerateToken(session.SessionID, s.jwtSecret, session.ExpiresAt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		SessionID:   session.SessionID,
		AccessToken: token,
		ExpiresAt:   session.ExpiresAt,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	_, sessionID, ok := s.authorize(w, r, "")
	if !ok {
		return
	}
	if err := s.directory.Logout(r.Context(), sessionID); err != nil {
		writeCoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProfileInformation(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("Username")
	if err := required("Username", username); err != nil {
		writeCoreError(w, err)
		return
	}
	if _, _, ok := s.authorize(w, r, username); !ok {
		return
	}

	acc, err := s.directory.GetProfileOrThrow(username)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acc.View())
}

// handleSessionProfile resolves a raw session id. The session itself is the
// credential here, so its expiry is checked before the lookup.
func (s *Server) handleSessionProfile(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "Session ID must be a string.")
		return
	}

	session, err := s.directory.LookupSession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found.")
			return
		}
		writeCoreError(w, err)
		return
	}
	if session.Expired(s.now()) {
		writeError(w, http.StatusUnauthorized, "session expired")
		return
	}

	acc, err := s.directory.SessionUserObject(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found.")
			return
		}
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "profile": acc.View()})
}

type editInformationRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	NewUsername string `json:"newUsername"`
	Password    string `json:"password"`
}

func (s *Server) handleEditInformation(w http.ResponseWriter, r *http.Request) {
	var req editInformationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := required("username", req.Username, "displayName", req.DisplayName); err != nil {
		writeCoreError(w, err)
		return
	}
	if _, _, ok := s.authorize(w, r, req.Username); !ok {
		return
	}

	if err := s.directory.EditInformation(r.Context(), req.Username, req.DisplayName, req.NewUsername, req.Password); err != nil {
		writeCoreError(w, err)
		return
	}

	username := req.NewUsername
	if username == "" {
		username = req.Username
	}
	acc, err := s.directory.GetProfileOrThrow(username)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acc.View())
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("Username")
	if err := required("Username", username); err != nil {
		writeCoreError(w, err)
		return
	}
	if _, _, ok := s.authorize(w, r, username); !ok {
		return
	}

	deleted, err := s.directory.DeleteUser(r.Context(), username)
	if err != nil {
		s.logger.Error(r.Context(), "delete account failed", "error", err)
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}

func (s *Server) handleUsernames(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.authorize(w, r, ""); !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"usernames": s.directory.ReturnProfileUsernames()})
}
