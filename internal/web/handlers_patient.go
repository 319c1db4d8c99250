package web

import (
	"fmt"
	"net/http"

	"github.com/khatri-raj/healthcare-app/internal/api"
)

type patientDashboardPage struct {
	page
	Appointments []api.Appointment
}

func (s *Server) handlePatientDashboard(w http.ResponseWriter, r *http.Request) {
	data := patientDashboardPage{page: s.page()}
	appointments, err := s.api.PatientAppointments(r.Context())
	if err != nil {
		msg, done := s.fetchFailed(w, r, err)
		if done {
			return
		}
		data.Error = msg
	}
	data.Appointments = appointments
	s.render(w, "patient_dashboard.html", data)
}

type doctorListPage struct {
	page
	Doctors []api.User
}

func (s *Server) handleDoctorList(w http.ResponseWriter, r *http.Request) {
	data := doctorListPage{page: s.page()}
	doctors, err := s.api.Doctors(r.Context())
	if err != nil {
		msg, done := s.fetchFailed(w, r, err)
		if done {
			return
		}
		data.Error = msg
	}
	data.Doctors = doctors
	s.render(w, "doctor_list.html", data)
}

type bookingPage struct {
	page
	Doctor *api.User
	Form   api.BookingForm
}

func (s *Server) handleBookForm(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := urlParamInt(r, "doctorID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	data := bookingPage{page: s.page()}
	doctor, err := s.api.Doctor(r.Context(), doctorID)
	if err != nil {
		msg, done := s.fetchFailed(w, r, err)
		if done {
			return
		}
		data.Error = msg
	}
	data.Doctor = doctor
	s.render(w, "book_appointment.html", data)
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := urlParamInt(r, "doctorID")
	if !ok {
		http.NotFound(w, r)
		return
	}

	form := api.BookingForm{
		Speciality: r.FormValue("speciality"),
		Date:       r.FormValue("date"),
		StartTime:  r.FormValue("start_time"),
	}

	// Normalization errors are local validation; nothing is submitted and the
	// form stays populated for correction.
	if _, err := form.Payload(); err != nil {
		data := bookingPage{page: s.page(), Form: form}
		data.Error = err.Error()
		doctor, done := s.refetchDoctor(w, r, doctorID)
		if done {
			return
		}
		data.Doctor = doctor
		s.render(w, "book_appointment.html", data)
		return
	}

	appointment, err := s.api.BookAppointment(r.Context(), doctorID, form)
	if err != nil {
		msg, done := s.fetchFailed(w, r, err)
		if done {
			return
		}
		data := bookingPage{page: s.page(), Form: form}
		data.Error = msg
		doctor, done := s.refetchDoctor(w, r, doctorID)
		if done {
			return
		}
		data.Doctor = doctor
		s.render(w, "book_appointment.html", data)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/patient/appointment_confirmed/%d", appointment.ID), http.StatusSeeOther)
}

// refetchDoctor reloads the doctor record so a rejected submission renders
// over a populated form. An expired session during the reload redirects like
// any other fetch; other failures just leave the header blank.
func (s *Server) refetchDoctor(w http.ResponseWriter, r *http.Request, doctorID int) (*api.User, bool) {
	doctor, err := s.api.Doctor(r.Context(), doctorID)
	if err != nil {
		if _, done := s.fetchFailed(w, r, err); done {
			return nil, true
		}
		return nil, false
	}
	return doctor, false
}

type appointmentPage struct {
	page
	Appointment *api.Appointment
}

func (s *Server) handleAppointmentConfirmed(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := urlParamInt(r, "appointmentID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	data := appointmentPage{page: s.page()}
	appointment, err := s.api.Appointment(r.Context(), appointmentID)
	if err != nil {
		msg, done := s.fetchFailed(w, r, err)
		if done {
			return
		}
		data.Error = msg
	}
	data.Appointment = appointment
	s.render(w, "appointment_confirmed.html", data)
}

type patientBlogListPage struct {
	page
	Groups []api.BlogGroup
}

func (s *Server) handlePatientBlogList(w http.ResponseWriter, r *http.Request) {
	data := patientBlogListPage{page: s.page()}
	posts, err := s.api.PatientBlogs(r.Context())
	if err != nil {
		msg, done := s.fetchFailed(w, r, err)
		if done {
			return
		}
		data.Error = msg
	}
	data.Groups = api.BlogsByCategory(posts)
	s.render(w, "patient_blog_list.html", data)
}

type blogDetailPage struct {
	page
	Post *api.BlogPost
}

func (s *Server) handlePatientBlogDetail(w http.ResponseWriter, r *http.Request) {
	blogID, ok := urlParamInt(r, "blogID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	data := blogDetailPage{page: s.page()}
	post, err := s.api.Blog(r.Context(), blogID)
	if err != nil {
		msg, done := s.fetchFailed(w, r, err)
		if done {
			return
		}
		data.Error = msg
	}
	data.Post = post
	s.render(w, "patient_blog_detail.html", data)
}
