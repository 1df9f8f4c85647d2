package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/evyataryagoni/mashup/internal/logger"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// IndexHandler renders the map page
type IndexHandler struct {
	apiKey string
	logger *logger.Logger
}

// NewIndexHandler creates a handler that injects apiKey into the page
func NewIndexHandler(apiKey string, log *logger.Logger) *IndexHandler {
	if log == nil {
		log = logger.NewDefault()
	}
	return &IndexHandler{
		apiKey: apiKey,
		logger: log.WithComponent("IndexHandler"),
	}
}

// Index handles GET /
// Configuration validation already refuses to start without API_KEY; the
// check here covers handlers built some other way.
func (h *IndexHandler) Index(w http.ResponseWriter, r *http.Request) {
	if h.apiKey == "" {
		h.logger.Error().Msg("API_KEY not set")
		respondError(w, http.StatusInternalServerError, "API_KEY not set")
		return
	}

	// Render into a buffer so a template failure can still produce a 500
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, struct{ Key string }{Key: h.apiKey}); err != nil {
		h.logger.Error().Err(err).Msg("Failed to render index")
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
