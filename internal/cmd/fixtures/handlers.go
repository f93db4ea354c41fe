package fixtures

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FeedPath mirrors the path of the published feed.
const FeedPath = "/sites/default/files/feeds/known_exploited_vulnerabilities.json"

// Server serves a catalog file from disk. The file is read on every request
// so it can be regenerated while the server runs.
type Server struct {
	file   string
	logger *zap.Logger
}

func NewServer(file string, logger *zap.Logger) *Server {
	return &Server{file: file, logger: logger}
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) Feed(w http.ResponseWriter, r *http.Request) {
	bs, err := os.ReadFile(s.file)
	if err != nil {
		s.logger.Error("error reading catalog", zap.String("file", s.file), zap.Error(err))
		http.Error(w, "catalog unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(bs)
}

func (s *Server) RegisterRoutes(r *chi.Mux) {
	r.Get("/health", s.Health)
	r.Get(FeedPath, s.Feed)
}
