package plugin

import "net/http"

// Server exposes the query handler over HTTP for launcher hosts that query a
// local daemon instead of exec'ing the binary per keystroke.
type Server struct {
	handler *Handler
}

func NewServer(h *Handler) *Server {
	return &Server{
		handler: h,
	}
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "youtube-plugin",
	})
}
