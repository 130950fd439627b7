package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"librarycatalog/internal/app"
	"librarycatalog/internal/ratelimit"
	"librarycatalog/internal/util"
	"librarycatalog/pkg/domain"
	"librarycatalog/pkg/store"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App            *app.App
	ChatLimiter    *ratelimit.FixedWindowLimiter
	TrustedProxies *util.TrustedProxies
}

// Server exposes the catalog REST API and the chat endpoint.
type Server struct {
	app            *app.App
	chatLimiter    *ratelimit.FixedWindowLimiter
	trustedProxies *util.TrustedProxies
	mux            *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app:            cfg.App,
		chatLimiter:    cfg.ChatLimiter,
		trustedProxies: cfg.TrustedProxies,
		mux:            http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog("catalog", util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/books", s.handleBooks)
	s.mux.HandleFunc("/books/", s.handleBookByID)
	s.mux.HandleFunc("/chat", s.handleChat)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateBook(w, r)
	case http.MethodGet:
		s.handleListBooks(w)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req domain.BookPatch
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	book, err := s.app.CreateBook(domain.Book{
		Title:  req.Title,
		Author: req.Author,
		Year:   req.Year,
		Genre:  req.Genre,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrTitleAuthorRequired), errors.Is(err, store.ErrBookInvalid):
			writeError(w, http.StatusBadRequest, "Title and author are required")
		case errors.Is(err, store.ErrDuplicateBook):
			writeError(w, http.StatusBadRequest, "Book already exists")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusCreated, book)
}

func (s *Server) handleListBooks(w http.ResponseWriter) {
	books, err := s.app.ListBooks()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// /books/{id}
func (s *Server) handleBookByID(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.Path, "/books/")
	if raw == "" || strings.Contains(raw, "/") {
		bookNotFound(w)
		return
	}
	// A non-numeric id resolves to no record, same as an unknown one.
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		bookNotFound(w)
		return
	}
	switch r.Method {
	case http.MethodGet:
		s.handleGetBook(w, uint(id))
	case http.MethodPut:
		s.handleUpdateBook(w, r, uint(id))
	case http.MethodDelete:
		s.handleDeleteBook(w, uint(id))
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleGetBook(w http.ResponseWriter, id uint) {
	book, ok, err := s.app.GetBook(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		bookNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request, id uint) {
	var patch domain.BookPatch
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	book, ok, err := s.app.UpdateBook(id, patch)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		bookNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, id uint) {
	ok, err := s.app.DeleteBook(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		bookNotFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if s.chatLimiter != nil && !s.chatLimiter.Allow(util.ClientIP(r, s.trustedProxies)) {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}
	var req domain.ChatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	response, err := s.app.Converse(r.Context(), req.Message, req.Book)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, domain.ChatResponse{Response: response})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func bookNotFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "Book not found")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
