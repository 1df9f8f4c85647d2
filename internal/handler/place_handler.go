package handler

import (
	"errors"
	"net/http"

	"github.com/evyataryagoni/mashup/internal/geo"
	"github.com/evyataryagoni/mashup/internal/service"
)

// boundsErrors are reported to the client by name; anything else is opaque
var boundsErrors = []error{geo.ErrMissingSW, geo.ErrMissingNE, geo.ErrInvalidSW, geo.ErrInvalidNE}

// PlaceHandler handles HTTP requests for place search and viewport updates
// This is the handler layer - it deals with HTTP concerns only
//
// Responsibilities:
//   - Read query parameters
//   - Call service methods
//   - Format HTTP responses (JSON)
//
// Every failure is answered with 500 and an ErrorResponse body.
type PlaceHandler struct {
	service *service.PlaceService
}

// NewPlaceHandler creates a new place handler with the given service
func NewPlaceHandler(service *service.PlaceService) *PlaceHandler {
	return &PlaceHandler{
		service: service,
	}
}

// Search handles GET /search?q=<query>
// q may be a postal code prefix, a place name prefix, "name, XX" with a
// two-letter region code, or "name, Region Name".
func (h *PlaceHandler) Search(w http.ResponseWriter, r *http.Request) {
	places, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, places)
}

// Update handles GET /update?sw=<lat,lng>&ne=<lat,lng>
// Returns at most 10 places inside the viewport.
func (h *PlaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	places, err := h.service.Update(r.Context(), query.Get("sw"), query.Get("ne"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, errorMessage(err))
		return
	}

	respondJSON(w, http.StatusOK, places)
}

// errorMessage names a bounds failure ("missing sw", "invalid ne", ...)
// and hides everything else behind a generic message
func errorMessage(err error) string {
	for _, target := range boundsErrors {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return "Internal server error"
}
