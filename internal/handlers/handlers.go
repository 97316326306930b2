package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"dlremindme/internal/clock"
	"dlremindme/internal/storage"
	"dlremindme/internal/task"
)

// TaskStore is the subset of storage.TaskStore the handlers need.
type TaskStore interface {
	Add(ownerID, name string, deadline time.Time) (*task.Task, error)
	Delete(ownerID, taskID string) (bool, error)
	TasksFor(ownerID string) []*task.Task
}

type Session interface {
	Owner() string
	Select(owner string) error
}

type TestSender interface {
	SendTest(ctx context.Context, to string) bool
}

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 64 << 10

// Handler serves the task and session API for the active owner.
type Handler struct {
	store    TaskStore
	session  Session
	sender   TestSender
	clock    clock.Clock
	zone     *time.Location
	validate *validator.Validate
	logger   *slog.Logger
}

func New(store TaskStore, sess Session, sender TestSender, clk clock.Clock, zone *time.Location, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:    store,
		session:  sess,
		sender:   sender,
		clock:    clk,
		zone:     zone,
		validate: validator.New(),
		logger:   logger.With("component", "http"),
	}
}

// Router returns a router with every route registered and request logging
// enabled.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	h.Register(r)
	r.Use(h.logRequests)
	return r
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/session", h.GetSession).Methods(http.MethodGet)
	r.HandleFunc("/session", h.SelectSession).Methods(http.MethodPut)
	r.HandleFunc("/tasks", h.ListTasks).Methods(http.MethodGet)
	r.HandleFunc("/tasks", h.CreateTask).Methods(http.MethodPost)
	r.HandleFunc("/tasks/{id}", h.DeleteTask).Methods(http.MethodDelete)
	r.HandleFunc("/notifications/test", h.SendTestNotification).Methods(http.MethodPost)
}

type sessionRequest struct {
	Owner string `json:"owner" validate:"required"`
}

type sessionResponse struct {
	Owner string `json:"owner"`
}

type createTaskRequest struct {
	Name     string `json:"name" validate:"required"`
	Deadline string `json:"deadline" validate:"required"`
}

type taskResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Deadline        string `json:"deadline"`
	DeadlineDisplay string `json:"deadline_display,omitempty"`
	Countdown       string `json:"countdown,omitempty"`
}

func (h *Handler) toResponse(t *task.Task, now time.Time) taskResponse {
	resp := taskResponse{ID: t.ID, Name: t.Name, Deadline: t.Record().Deadline}
	if t.HasDeadline() {
		resp.DeadlineDisplay = t.Deadline.In(h.zone).Format(task.DisplayDate)
		resp.Countdown = task.Countdown(t.Deadline, now)
	}
	return resp
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionResponse{Owner: h.session.Owner()})
}

func (h *Handler) SelectSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.Owner = strings.TrimSpace(req.Owner)
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "owner is required", http.StatusBadRequest)
		return
	}
	if err := h.session.Select(req.Owner); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.logger.Info("session owner selected", "owner", req.Owner)
	writeJSON(w, http.StatusOK, sessionResponse{Owner: req.Owner})
}

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.requireOwner(w)
	if !ok {
		return
	}
	now := h.clock.Now()
	tasks := h.store.TasksFor(ownerID)
	list := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		list = append(list, h.toResponse(t, now))
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.requireOwner(w)
	if !ok {
		return
	}
	var req createTaskRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "name and deadline are required", http.StatusBadRequest)
		return
	}
	deadline, err := task.ParseInput(req.Deadline, h.zone)
	if err != nil {
		http.Error(w, "invalid deadline format", http.StatusBadRequest)
		return
	}

	t, err := h.store.Add(ownerID, req.Name, deadline)
	switch {
	case errors.Is(err, storage.ErrEmptyName), errors.Is(err, storage.ErrEmptyOwner):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, "failed to save task", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, h.toResponse(t, h.clock.Now()))
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.requireOwner(w)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	removed, err := h.store.Delete(ownerID, id)
	if err != nil {
		http.Error(w, "failed to delete task", http.StatusInternalServerError)
		return
	}
	if !removed {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SendTestNotification(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.requireOwner(w)
	if !ok {
		return
	}
	sent := h.sender.SendTest(r.Context(), ownerID)
	status := http.StatusOK
	if !sent {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]bool{"sent": sent})
}

func (h *Handler) requireOwner(w http.ResponseWriter) (string, bool) {
	ownerID := h.session.Owner()
	if ownerID == "" {
		http.Error(w, "no owner selected", http.StatusBadRequest)
		return "", false
	}
	return ownerID, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		h.logger.Warn("bad request body", "path", r.URL.Path, "bytes", len(body), "error", err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		h.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"user_agent", r.UserAgent(),
			"status", rec.status,
			"duration", time.Since(start))
	})
}
