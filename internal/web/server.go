package web

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/khatri-raj/healthcare-app/internal/api"
	"github.com/khatri-raj/healthcare-app/internal/session"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "portal_http_requests_total",
	Help: "Portal page requests by route pattern and status code.",
}, []string{"route", "code"})

// Server renders the role-gated views. Every protected route sits behind
// requireRole; handlers fetch through the API client, which owns the
// 401-refresh-retry protocol.
type Server struct {
	sessions *session.Store
	api      *api.Client
	tmpl     *template.Template
}

func NewServer(sessions *session.Store, client *api.Client) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Server{sessions: sessions, api: client, tmpl: tmpl}, nil
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(countRequests)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", s.handleHome)
	r.Get("/login", s.handleLoginForm)
	r.Post("/login", s.handleLogin)
	r.Get("/signup", s.handleSignupForm)
	r.Post("/signup", s.handleSignup)
	r.Get("/logout", s.handleLogout)

	r.Route("/patient", func(r chi.Router) {
		r.Use(s.requireRole(session.RolePatient))
		r.Get("/dashboard", s.handlePatientDashboard)
		r.Get("/doctors", s.handleDoctorList)
		r.Get("/book_appointment/{doctorID}", s.handleBookForm)
		r.Post("/book_appointment/{doctorID}", s.handleBook)
		r.Get("/appointment_confirmed/{appointmentID}", s.handleAppointmentConfirmed)
		r.Get("/blogs", s.handlePatientBlogList)
		r.Get("/blogs/{blogID}", s.handlePatientBlogDetail)
	})

	r.Route("/doctor", func(r chi.Router) {
		r.Use(s.requireRole(session.RoleDoctor))
		r.Get("/dashboard", s.handleDoctorDashboard)
		r.Get("/blogs", s.handleDoctorBlogList)
		r.Get("/blogs/create", s.handleBlogCreateForm)
		r.Post("/blogs/create", s.handleBlogCreate)
		r.Get("/blogs/{blogID}/edit", s.handleBlogEditForm)
		r.Post("/blogs/{blogID}/edit", s.handleBlogEdit)
		r.Post("/blogs/{blogID}/delete", s.handleBlogDelete)
	})

	return r
}

// requireRole redirects unauthenticated or wrong-role visitors to the login
// view before the handler runs, so no protected content renders and no
// network call is issued on a violation.
func (s *Server) requireRole(role session.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := s.sessions.Current()
			if !sess.IsAuthenticated || sess.Role != role {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// page carries what every view needs; handlers embed it in their view data.
type page struct {
	Session session.Session
	Error   string
}

func (s *Server) page() page {
	return page{Session: s.sessions.Current()}
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("web: rendering %s: %v", name, err)
	}
}

// fetchFailed resolves an API failure. An expired session redirects to login
// (the store is already cleared); anything else becomes a view-local message.
// Returns true when the response has been written.
func (s *Server) fetchFailed(w http.ResponseWriter, r *http.Request, err error) (string, bool) {
	if errors.Is(err, api.ErrSessionExpired) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return "", true
	}
	return api.Message(err), false
}

func urlParamInt(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		requestsTotal.WithLabelValues(route, strconv.Itoa(ww.status)).Inc()
	})
}
