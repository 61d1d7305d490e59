package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/syncstream/server/internal/repository/snapshot"
	"github.com/syncstream/server/pkg/rest"
)

func (c controller) getRoom(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "room-code")

	snap, err := c.roomService.GetRoomSnapshot(r.Context(), code)
	if err != nil {
		if errors.Is(err, snapshot.ErrSnapshotNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
			return
		}

		c.logger.ErrorContext(r.Context(), "failed to read room snapshot", "room_code", code, "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal server error"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": snap})
}
