package web

import (
	"io"
	"log"
	"net/http"

	"github.com/khatri-raj/healthcare-app/internal/api"
	"github.com/khatri-raj/healthcare-app/internal/session"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, "home.html", s.page())
}

type loginPage struct {
	page
	Username string
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, "login.html", loginPage{page: s.page()})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	resp, err := s.api.Login(r.Context(), username, password)
	if err != nil {
		data := loginPage{page: s.page(), Username: username}
		data.Error = api.Message(err)
		s.render(w, "login.html", data)
		return
	}

	role := session.Role(resp.UserType)
	if err := s.sessions.Login(r.Context(), resp.Access, resp.Refresh, role, resp.User.Profile()); err != nil {
		// Session works for this run even when the durable write failed.
		log.Printf("web: persisting session: %v", err)
	}
	http.Redirect(w, r, "/"+resp.UserType+"/dashboard", http.StatusSeeOther)
}

type signupPage struct {
	page
	Form api.SignupForm
}

func (s *Server) handleSignupForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, "signup.html", signupPage{page: s.page(), Form: api.SignupForm{UserType: "patient"}})
}

const maxUploadBytes = 10 << 20

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		data := signupPage{page: s.page(), Form: api.SignupForm{UserType: "patient"}}
		data.Error = "Invalid form submission"
		s.render(w, "signup.html", data)
		return
	}

	form := api.SignupForm{
		FirstName:       r.FormValue("first_name"),
		LastName:        r.FormValue("last_name"),
		Username:        r.FormValue("username"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
		AddressLine1:    r.FormValue("address_line1"),
		City:            r.FormValue("city"),
		State:           r.FormValue("state"),
		Pincode:         r.FormValue("pincode"),
		UserType:        r.FormValue("user_type"),
	}
	form.ProfilePicture = formUpload(r, "profile_picture")

	// Local checks never reach the network; the form stays populated.
	if err := form.Validate(); err != nil {
		data := signupPage{page: s.page(), Form: form}
		data.Error = err.Error()
		s.render(w, "signup.html", data)
		return
	}

	if err := s.api.Signup(r.Context(), form); err != nil {
		data := signupPage{page: s.page(), Form: form}
		data.Error = api.Message(err)
		s.render(w, "signup.html", data)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Logout(r.Context())
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// formUpload reads an optional file field into an api.Upload, nil when the
// field was left empty.
func formUpload(r *http.Request, field string) *api.Upload {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil
	}
	defer file.Close()
	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil || len(content) == 0 {
		return nil
	}
	return &api.Upload{Name: header.Filename, Content: content}
}
