package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/accounts"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
)

// authorize resolves the bearer token to its cached account and checks that
// the account is username. An empty username accepts any signed-in account.
// On failure the response is already written.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, username string) (*accounts.Account, string, bool) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing token")
		return nil, "", false
	}

	sessionID, err := auth.GetSessionIDFromToken(token, s.jwtSecret)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return nil, "", false
	}

	acc, err := s.directory.SessionUserObject(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusUnauthorized, "session not found")
			return nil, "", false
		}
		s.logger.Error(r.Context(), "session lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, "", false
	}

	if username != "" && acc.Username() != username {
		writeError(w, http.StatusForbidden, "forbidden")
		return nil, "", false
	}

	return acc, sessionID, true
}
