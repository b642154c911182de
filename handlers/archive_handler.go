package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Dosada05/league-bot/services"
)

const defaultArchivePageSize = 20

type ArchiveHandler struct {
	archive services.ArchiveService
}

func NewArchiveHandler(archive services.ArchiveService) *ArchiveHandler {
	return &ArchiveHandler{archive: archive}
}

// GetByIDHandler обрабатывает GET /api/archive/{tournamentID}
func (h *ArchiveHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tournamentID")
	if _, err := uuid.Parse(id); err != nil {
		badRequestResponse(w, r, errors.New("invalid tournamentID parameter"))
		return
	}

	tournament, err := h.archive.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByChatHandler обрабатывает GET /api/archive/chats/{chatID}
func (h *ArchiveHandler) ListByChatHandler(w http.ResponseWriter, r *http.Request) {
	chatID, err := getInt64FromURL(r, "chatID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	limit, offset, err := getPagination(r, defaultArchivePageSize)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournaments, err := h.archive.ListByChat(r.Context(), chatID, limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
