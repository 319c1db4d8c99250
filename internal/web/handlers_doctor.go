package web

import (
	"net/http"

	"github.com/khatri-raj/healthcare-app/internal/api"
)

type doctorDashboardPage struct {
	page
	Appointments []api.Appointment
}

func (s *Server) handleDoctorDashboard(w http.ResponseWriter, r *http.Request) {
	data := doctorDashboardPage{page: s.page()}
	appointments, err := s.api.DoctorAppointments(r.Context())
	if err != nil {
		msg, done := s.fetchFailed(w, r, err)
		if done {
			return
		}
		data.Error = msg
	}
	data.Appointments = appointments
	s.render(w, "doctor_dashboard.html", data)
}

type doctorBlogListPage struct {
	page
	Posts []api.BlogPost
}

func (s *Server) handleDoctorBlogList(w http.ResponseWriter, r *http.Request) {
	data := doctorBlogListPage{page: s.page()}
	posts, err := s.api.DoctorBlogs(r.Context())
	if err != nil {
		msg, done := s.fetchFailed(w, r, err)
		if done {
			return
		}
		data.Error = msg
	}
	data.Posts = posts
	s.render(w, "doctor_blog_list.html", data)
}

type blogFormPage struct {
	page
	Editing    bool
	BlogID     int
	Form       api.BlogForm
	Categories []struct{ Value, Label string }
}

func newBlogFormPage(p page) blogFormPage {
	return blogFormPage{page: p, Categories: api.BlogCategories(), Form: api.BlogForm{Category: "mental_health", IsDraft: true}}
}

func (s *Server) handleBlogCreateForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, "doctor_blog_form.html", newBlogFormPage(s.page()))
}

func (s *Server) handleBlogCreate(w http.ResponseWriter, r *http.Request) {
	form, ok := s.parseBlogForm(w, r, 0)
	if !ok {
		return
	}
	if _, err := s.api.CreateBlog(r.Context(), form); err != nil {
		msg, done := s.fetchFailed(w, r, err)
		if done {
			return
		}
		data := newBlogFormPage(s.page())
		data.Form = form
		data.Error = msg
		s.render(w, "doctor_blog_form.html", data)
		return
	}
	http.Redirect(w, r, "/doctor/blogs", http.StatusSeeOther)
}

func (s *Server) handleBlogEditForm(w http.ResponseWriter, r *http.Request) {
	blogID, ok := urlParamInt(r, "blogID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	data := newBlogFormPage(s.page())
	data.Editing = true
	data.BlogID = blogID
	post, err := s.api.DoctorBlog(r.Context(), blogID)
	if err != nil {
		msg, done := s.fetchFailed(w, r, err)
		if done {
			return
		}
		data.Error = msg
	} else {
		data.Form = api.BlogForm{
			Title:    post.Title,
			Category: post.Category,
			Summary:  post.Summary,
			Content:  post.Content,
			IsDraft:  post.IsDraft,
		}
	}
	s.render(w, "doctor_blog_form.html", data)
}

func (s *Server) handleBlogEdit(w http.ResponseWriter, r *http.Request) {
	blogID, ok := urlParamInt(r, "blogID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	form, parsed := s.parseBlogForm(w, r, blogID)
	if !parsed {
		return
	}
	if _, err := s.api.UpdateBlog(r.Context(), blogID, form); err != nil {
		msg, done := s.fetchFailed(w, r, err)
		if done {
			return
		}
		data := newBlogFormPage(s.page())
		data.Editing = true
		data.BlogID = blogID
		data.Form = form
		data.Error = msg
		s.render(w, "doctor_blog_form.html", data)
		return
	}
	http.Redirect(w, r, "/doctor/blogs", http.StatusSeeOther)
}

func (s *Server) handleBlogDelete(w http.ResponseWriter, r *http.Request) {
	blogID, ok := urlParamInt(r, "blogID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := s.api.DeleteBlog(r.Context(), blogID); err != nil {
		msg, done := s.fetchFailed(w, r, err)
		if done {
			return
		}
		data := doctorBlogListPage{page: s.page()}
		data.Error = msg
		if posts, lerr := s.api.DoctorBlogs(r.Context()); lerr == nil {
			data.Posts = posts
		}
		s.render(w, "doctor_blog_list.html", data)
		return
	}
	http.Redirect(w, r, "/doctor/blogs", http.StatusSeeOther)
}

// parseBlogForm reads the multipart submission and runs local validation,
// rendering the repopulated form itself when the input is rejected.
func (s *Server) parseBlogForm(w http.ResponseWriter, r *http.Request, blogID int) (api.BlogForm, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		data := newBlogFormPage(s.page())
		data.Editing = blogID != 0
		data.BlogID = blogID
		data.Error = "Invalid form submission"
		s.render(w, "doctor_blog_form.html", data)
		return api.BlogForm{}, false
	}

	form := api.BlogForm{
		Title:    r.FormValue("title"),
		Category: r.FormValue("category"),
		Summary:  r.FormValue("summary"),
		Content:  r.FormValue("content"),
		IsDraft:  r.FormValue("is_draft") == "true" || r.FormValue("is_draft") == "on",
		Image:    formUpload(r, "image"),
	}
	if err := form.Validate(); err != nil {
		data := newBlogFormPage(s.page())
		data.Editing = blogID != 0
		data.BlogID = blogID
		data.Form = form
		data.Error = err.Error()
		s.render(w, "doctor_blog_form.html", data)
		return api.BlogForm{}, false
	}
	return form, true
}
