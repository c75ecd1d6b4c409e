// Package web serves the task list as an HTML page with form posts.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"supatodo/internal/service"
	"supatodo/internal/tasklist"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Server is the supatodo web server.
type Server struct {
	httpServer *http.Server
	sync       *tasklist.Synchronizer
	flash      *Flash
	log        *slog.Logger
}

// NewServer creates a server for sync. flash should be the Alerter the
// synchronizer was built with so insert failures appear on the page.
func NewServer(sync *tasklist.Synchronizer, flash *Flash, addr string, log *slog.Logger) *Server {
	if flash == nil {
		flash = NewFlash()
	}
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		sync:  sync,
		flash: flash,
		log:   log,
	}

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}
	return s
}

// Routes returns the router. Exposed for tests.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/", s.handleIndex)
	r.Post("/tasks", s.handleAdd)
	r.Post("/tasks/{id}/toggle", s.handleToggle)
	r.Post("/tasks/{id}/delete", s.handleDelete)
	r.Post("/reload", s.handleReload)

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/tasks", s.handleTasks)
	return r
}

// Start begins listening. It blocks until the server is stopped.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.log.Info("supatodo listening", "addr", "http://"+ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// BusyMessage is flashed when an add arrives while another is in flight.
const BusyMessage = "Another change is still in progress. Try again."

type pageData struct {
	Tasks []service.Task
	Busy  bool
	Draft string
	Flash string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.sync.Snapshot()
	data := pageData{
		Tasks: snap.Tasks,
		Busy:  snap.Busy,
		Draft: r.URL.Query().Get("draft"),
		Flash: s.flash.Take(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, data); err != nil {
		s.log.Error("render page", "error", err)
	}
}

// handleAdd inserts the submitted text. When the add does not happen the
// text is handed back to the submitter through the redirect.
func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	text := r.FormValue("content")
	err := s.sync.InsertText(r.Context(), text)
	switch {
	case err == nil, errors.Is(err, tasklist.ErrEmptyDraft):
		redirectHome(w, r)
		return
	case errors.Is(err, tasklist.ErrBusy):
		s.flash.Alert(BusyMessage)
	default:
		s.log.Debug("add failed", "error", err)
	}
	http.Redirect(w, r, "/?draft="+url.QueryEscape(text), http.StatusSeeOther)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	id, ok := s.taskID(w, r)
	if !ok {
		return
	}
	task, found := s.sync.Find(id)
	if !found {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	}
	if err := s.sync.Toggle(r.Context(), task); err != nil {
		s.log.Debug("toggle failed", "id", id, "error", err)
	}
	redirectHome(w, r)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := s.taskID(w, r)
	if !ok {
		return
	}
	if err := s.sync.Delete(r.Context(), id); err != nil {
		s.log.Debug("delete failed", "id", id, "error", err)
	}
	redirectHome(w, r)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.sync.Load(r.Context()); err != nil {
		s.log.Debug("reload failed", "error", err)
	}
	redirectHome(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.sync.Snapshot())
}

func (s *Server) taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
