package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/opencircle/socialgraph/internal/auth"
	"github.com/opencircle/socialgraph/internal/identity"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterHandler creates a new user account.
func RegisterHandler(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid payload")
			return
		}

		if _, err := svc.Register(r.Context(), req.Name, req.Email, req.Password); err != nil {
			writeError(w, err)
			return
		}
		writeMessage(w, http.StatusCreated, "user created")
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// LoginHandler authenticates credentials and returns a session token, also
// set as the auth_token cookie.
func LoginHandler(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid payload")
			return
		}

		token, err := svc.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     "auth_token",
			Value:    token,
			HttpOnly: true,
			Path:     "/",
			MaxAge:   auth.TokenExpireSec,
		})
		writeJSON(w, http.StatusOK, loginResponse{Token: token})
	}
}
