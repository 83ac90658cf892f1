package server

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"finrag/internal/config"
	"finrag/internal/helper"
	"finrag/internal/index"
	"finrag/internal/models"
	"finrag/internal/rag"
)

const (
	maxTopK       = 8
	maxUploadSize = 25 << 20
)

// Server is the thin HTTP surface over the RAG service.
type Server struct {
	rag   *rag.RAG
	store *index.Store
	cfg   *config.Config
}

func New(r *rag.RAG, store *index.Store, cfg *config.Config) *Server {
	return &Server{rag: r, store: store, cfg: cfg}
}

// Handler builds the route table wrapped in CORS and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/documents", s.handleDocuments)
	mux.HandleFunc("POST /api/ingest", s.handleIngest)
	mux.HandleFunc("POST /api/upload", s.handleUpload)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /{$}", s.handleRoot)
	return withCORS(withRequestLog(mux))
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"message": "finrag backend is running"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"index_chunks": s.store.Size(),
		"chat_model":   s.cfg.ChatLLM.Model,
		"embed_model":  s.cfg.EmbedLLM.Model,
	})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	root := s.cfg.RAG.DataDir
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sort.Strings(files)
	if files == nil {
		files = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(files), "documents": files})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	stats, err := s.rag.Ingest(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Ingestion failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "Filename is required")
		return
	}

	name := helper.SafeFilename(header.Filename)
	dest := filepath.Join(s.cfg.RAG.DataDir, name)
	out, err := os.Create(dest)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}
	defer out.Close()
	if _, err := io.Copy(out, file); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Uploaded", "file": name})
}

type chatRequest struct {
	Question string               `json:"question"`
	History  []models.ChatMessage `json:"history"`
	TopK     int                  `json:"top_k"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Question) < 2 {
		writeError(w, http.StatusBadRequest, "question must be at least 2 characters")
		return
	}

	topK := req.TopK
	if topK == 0 {
		topK = s.cfg.RAG.TopK
	}
	topK = clamp(topK, 1, maxTopK)

	result, err := s.rag.Answer(r.Context(), req.Question, req.History, topK)
	if err != nil {
		log.Error().Err(err).Msg("Chat failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warn().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID, err := helper.GenerateUUID()
		if err != nil {
			reqID = fmt.Sprintf("%d", time.Now().UnixNano())
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		log.Info().
			Str("request_id", reqID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}
