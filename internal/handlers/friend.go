package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/opencircle/socialgraph/internal/friends"
)

type sendFriendRequest struct {
	ReceiverEmail string `json:"receiver_email"`
}

// SendFriendRequestHandler handles the authenticated user sending a friend
// request to another user by email.
func SendFriendRequestHandler(svc *friends.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		var req sendFriendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid payload")
			return
		}

		if _, err := svc.Send(r.Context(), userID, req.ReceiverEmail); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{
			"message":        "friend request sent",
			"receiver_email": req.ReceiverEmail,
		})
	}
}

// ListPendingHandler returns sender emails of requests awaiting the
// authenticated user's decision.
func ListPendingHandler(svc *friends.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		emails, err := svc.ListPending(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, emails)
	}
}

type manageFriendRequest struct {
	SenderEmail string `json:"sender_email"`
	Accept      bool   `json:"accept"`
}

// ManageFriendRequestHandler accepts or rejects a pending request addressed
// to the authenticated user.
func ManageFriendRequestHandler(svc *friends.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		var req manageFriendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid payload")
			return
		}

		if err := svc.Manage(r.Context(), userID, req.SenderEmail, req.Accept); err != nil {
			writeError(w, err)
			return
		}
		if req.Accept {
			writeMessage(w, http.StatusOK, "friend request accepted")
			return
		}
		writeMessage(w, http.StatusOK, "friend request rejected")
	}
}

// ListFriendsHandler returns one page of the authenticated user's friend
// emails. The page query parameter is 1-based and defaults to 1.
func ListFriendsHandler(svc *friends.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			if n, err := strconv.Atoi(p); err == nil {
				page = n
			}
		}

		emails, err := svc.ListFriends(r.Context(), userID, page)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, emails)
	}
}

// SearchUsersHandler returns emails of users matching the q query parameter.
func SearchUsersHandler(svc *friends.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireUser(w, r); !ok {
			return
		}

		keyword := r.URL.Query().Get("q")
		if keyword == "" {
			writeMessage(w, http.StatusBadRequest, "missing search keyword")
			return
		}

		emails, err := svc.Search(r.Context(), keyword)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, emails)
	}
}
