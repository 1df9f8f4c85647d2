package handler

import (
	"net/http"

	"github.com/evyataryagoni/mashup/internal/service"
)

// ArticleHandler handles HTTP requests for local news
type ArticleHandler struct {
	service *service.ArticleService
}

// NewArticleHandler creates a new article handler with the given service
func NewArticleHandler(service *service.ArticleService) *ArticleHandler {
	return &ArticleHandler{
		service: service,
	}
}

// Articles handles GET /articles?geo=<location>
// geo is forwarded verbatim, including when it is empty.
func (h *ArticleHandler) Articles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.service.Articles(r.Context(), r.URL.Query().Get("geo"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, articles)
}
