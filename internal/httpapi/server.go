// Package httpapi exposes the task service over HTTP/JSON.
//
// Routes:
//
//	GET    /                      health text
//	GET    /tasks                 list tasks by rank
//	GET    /tasks/{id}            get one task
//	POST   /tasks                 create (201)
//	PUT    /tasks/{id}            update
//	DELETE /tasks/{id}            delete
//	PUT    /tasks/{id}/rank       move to {"rank": n}
//	POST   /tasks/validate-name   name availability (200 free, 409 taken)
//
// Error responses are {"error": "..."} with status 400 (validation),
// 404 (not found), 409 (conflict), 503 (busy, with Retry-After) or 500.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/roach88/tarefas/internal/service"
	"github.com/roach88/tarefas/internal/task"
)

// Server routes HTTP requests to the task service.
type Server struct {
	svc    *service.Service
	logger *slog.Logger
	mux    *http.ServeMux
}

// New creates a server for svc. A nil logger means slog.Default().
func New(svc *service.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{svc: svc, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleHealth)
	s.mux.HandleFunc("GET /tasks", s.handleList)
	s.mux.HandleFunc("POST /tasks", s.handleCreate)
	s.mux.HandleFunc("POST /tasks/validate-name", s.handleCheckName)
	s.mux.HandleFunc("GET /tasks/{id}", s.handleGet)
	s.mux.HandleFunc("PUT /tasks/{id}", s.handleUpdate)
	s.mux.HandleFunc("DELETE /tasks/{id}", s.handleDelete)
	s.mux.HandleFunc("PUT /tasks/{id}/rank", s.handleMove)
}

// Handler returns the routed handler wrapped with CORS and request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(cors(s.mux))
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("http server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type rankRequest struct {
	Rank int `json:"rank"`
}

type nameRequest struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("server is running\n"))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.svc.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.Input
	if err := decodeBody(r.Body, taskSchema, &in); err != nil {
		s.writeError(w, err)
		return
	}
	t, err := s.svc.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var in service.Input
	if err := decodeBody(r.Body, taskSchema, &in); err != nil {
		s.writeError(w, err)
		return
	}
	t, err := s.svc.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "task deleted"})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req rankRequest
	if err := decodeBody(r.Body, rankSchema, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.svc.Move(r.Context(), r.PathValue("id"), req.Rank); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "task rank updated"})
}

func (s *Server) handleCheckName(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeBody(r.Body, nameSchema, &req); err != nil {
		s.writeError(w, err)
		return
	}
	free, err := s.svc.CheckName(r.Context(), req.Name, req.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !free {
		writeJSON(w, http.StatusConflict, errorResponse{Error: "a task with this name already exists"})
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "name available"})
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch task.CodeOf(err) {
	case task.CodeValidation:
		return http.StatusBadRequest
	case task.CodeNotFound:
		return http.StatusNotFound
	case task.CodeConflict:
		return http.StatusConflict
	case task.CodeBusy:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	var te *task.Error
	if errors.As(err, &te) {
		msg = te.Message
	}
	switch status {
	case http.StatusServiceUnavailable:
		w.Header().Set("Retry-After", "1")
	case http.StatusInternalServerError:
		s.logger.Error("request failed", "error", err)
		msg = "internal server error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
