package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/scorepad/internal/api/request"
	"github.com/mcoot/scorepad/internal/api/response"
	"github.com/mcoot/scorepad/internal/model"
	"github.com/mcoot/scorepad/internal/services/play"
	"github.com/mcoot/scorepad/internal/services/repository"
)

// PlayHandler handles endpoints for sessions being scored
type PlayHandler struct {
	controller *play.Controller
}

// NewPlayHandler creates a new play handler
func NewPlayHandler(controller *play.Controller) *PlayHandler {
	return &PlayHandler{controller: controller}
}

// Begin handles POST /api/v1/games/{id}/play
func (h *PlayHandler) Begin(w http.ResponseWriter, r *http.Request) {
	gameID := model.GameID(mux.Vars(r)["id"])

	var req request.BeginPlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}

	view, err := h.controller.Begin(r.Context(), gameID, req.Players, req.Date)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.ActiveSessionFromView(view))
}

// List handles GET /api/v1/play
func (h *PlayHandler) List(w http.ResponseWriter, r *http.Request) {
	views := h.controller.Active()

	out := make([]response.ActiveSession, len(views))
	for i := range views {
		out[i] = response.ActiveSessionFromView(&views[i])
	}
	response.JSON(w, http.StatusOK, out)
}

// Get handles GET /api/v1/play/{sid}
func (h *PlayHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.controller.Get(sessionID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ActiveSessionFromView(view))
}

// SetScore handles PUT /api/v1/play/{sid}/scores
func (h *PlayHandler) SetScore(w http.ResponseWriter, r *http.Request) {
	var req request.SetScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}

	var (
		view *play.View
		err  error
	)
	if req.Value != nil {
		view, err = h.controller.SetScore(sessionID(r), req.Round, req.Player, *req.Value)
	} else {
		view, err = h.controller.SetScoreInput(sessionID(r), req.Round, req.Player, req.Input)
	}
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ActiveSessionFromView(view))
}

// AddRound handles POST /api/v1/play/{sid}/rounds
func (h *PlayHandler) AddRound(w http.ResponseWriter, r *http.Request) {
	view, err := h.controller.AddRound(sessionID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ActiveSessionFromView(view))
}

// Finish handles POST /api/v1/play/{sid}/finish
func (h *PlayHandler) Finish(w http.ResponseWriter, r *http.Request) {
	record, err := h.controller.Finish(r.Context(), sessionID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	entry := repository.Entry{Origin: repository.OriginGeneric, Session: *record}
	response.JSON(w, http.StatusOK, response.SessionFromEntry(&entry))
}

// Cancel handles DELETE /api/v1/play/{sid}
func (h *PlayHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Cancel(sessionID(r)); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

func sessionID(r *http.Request) model.SessionID {
	return model.SessionID(mux.Vars(r)["sid"])
}
