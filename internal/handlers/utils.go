package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/opencircle/socialgraph/internal/auth"
	"github.com/opencircle/socialgraph/internal/friends"
	"github.com/opencircle/socialgraph/internal/identity"
)

// extractCookieToken extracts a named cookie value from "Cookie" header, or returns empty if not found.
func extractCookieToken(cookieHeader, cookieName string) string {
	parts := strings.Split(cookieHeader, cookieName+"=")
	if len(parts) < 2 {
		return ""
	}
	token := parts[1]
	if idx := strings.Index(token, ";"); idx != -1 {
		token = token[:idx]
	}
	return token
}

// requireUser resolves the calling user from the auth_token cookie. On
// failure it writes the error response and returns ok=false.
func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	cookieHeader := r.Header.Get("Cookie")
	if !strings.Contains(cookieHeader, "auth_token=") {
		writeMessage(w, http.StatusUnauthorized, "missing auth_token")
		return uuid.Nil, false
	}

	userIDStr, err := auth.AuthenticateJWT(extractCookieToken(cookieHeader, "auth_token"))
	if err != nil {
		writeMessage(w, http.StatusForbidden, "invalid token")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		writeMessage(w, http.StatusForbidden, "invalid user id in token")
		return uuid.Nil, false
	}
	return userID, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeError maps core error kinds to statuses; anything unrecognized is a 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, identity.ErrInvalidEmail),
		errors.Is(err, identity.ErrMissingFields):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, identity.ErrDuplicateEmail):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, identity.ErrBadCredentials),
		errors.Is(err, identity.ErrInactiveAccount):
		writeMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, friends.ErrInvalidRecipient):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, friends.ErrRequestLimitExceeded):
		writeMessage(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, friends.ErrRequestNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	default:
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}
