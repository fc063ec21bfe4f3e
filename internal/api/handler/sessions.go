package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/scorepad/internal/api/response"
	"github.com/mcoot/scorepad/internal/model"
	"github.com/mcoot/scorepad/internal/services/repository"
)

// SessionHandler handles stored session endpoints
type SessionHandler struct {
	repo *repository.Repository
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(repo *repository.Repository) *SessionHandler {
	return &SessionHandler{repo: repo}
}

// List handles GET /api/v1/sessions. The optional game_id and title query
// parameters filter to one game's sessions, newest first.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	gameID := model.GameID(r.URL.Query().Get("game_id"))
	title := r.URL.Query().Get("title")

	var (
		entries []repository.Entry
		err     error
	)
	if gameID != "" || title != "" {
		entries, err = h.repo.SessionsForGame(r.Context(), gameID, title)
	} else {
		entries, err = h.repo.ListSessions(r.Context())
	}
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionsFromEntries(entries))
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(mux.Vars(r)["id"])

	entry, err := h.repo.GetSession(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromEntry(entry))
}

// Delete handles DELETE /api/v1/sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(mux.Vars(r)["id"])

	if _, err := h.repo.DeleteSession(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
