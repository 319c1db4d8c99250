package api

import (
	"fmt"
	"strings"
	"time"
)

// Appointments are a fixed 45-minute slot; the end time is derived
// client-side, the API never receives an open-ended booking.
const appointmentDuration = 45 * time.Minute

const (
	dateFormat = "2006-01-02"
	timeFormat = "15:04"
)

// NormalizeDate coerces a booking date to YYYY-MM-DD. The form may deliver
// either the canonical form or DD-MM-YYYY depending on the browser locale.
func NormalizeDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(dateFormat, value); err == nil {
		return t.Format(dateFormat), nil
	}
	if t, err := time.Parse("02-01-2006", value); err == nil {
		return t.Format(dateFormat), nil
	}
	return "", fmt.Errorf("unrecognised date %q", value)
}

// EndTime derives the appointment end from its start.
func EndTime(start string) (string, error) {
	t, err := time.Parse(timeFormat, strings.TrimSpace(start))
	if err != nil {
		return "", fmt.Errorf("unrecognised time %q", start)
	}
	return t.Add(appointmentDuration).Format(timeFormat), nil
}

// BookingForm is the appointment request as the user typed it.
type BookingForm struct {
	Speciality string
	Date       string
	StartTime  string
}

// Payload normalizes the form into the submission body. Date and time
// coercion failures are local validation errors; nothing is sent.
func (f BookingForm) Payload() (map[string]string, error) {
	if strings.TrimSpace(f.Speciality) == "" {
		return nil, fmt.Errorf("speciality is required")
	}
	date, err := NormalizeDate(f.Date)
	if err != nil {
		return nil, err
	}
	start := strings.TrimSpace(f.StartTime)
	end, err := EndTime(start)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"speciality": strings.TrimSpace(f.Speciality),
		"date":       date,
		"start_time": start,
		"end_time":   end,
	}, nil
}

// Upload is a file field for a multipart submission.
type Upload struct {
	Name    string
	Content []byte
}

// SignupForm is the one-shot registration payload; it is multipart so the
// optional profile picture can ride along.
type SignupForm struct {
	FirstName       string
	LastName        string
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	AddressLine1    string
	City            string
	State           string
	Pincode         string
	UserType        string
	ProfilePicture  *Upload
}

// Validate performs the local checks that must never reach the network.
func (f SignupForm) Validate() error {
	if f.Username == "" || f.Email == "" || f.Password == "" {
		return fmt.Errorf("username, email and password are required")
	}
	if f.Password != f.ConfirmPassword {
		return fmt.Errorf("passwords do not match")
	}
	if f.UserType != "patient" && f.UserType != "doctor" {
		return fmt.Errorf("unknown account type %q", f.UserType)
	}
	return nil
}

func (f SignupForm) fields() map[string]string {
	return map[string]string{
		"first_name":       f.FirstName,
		"last_name":        f.LastName,
		"username":         f.Username,
		"email":            f.Email,
		"password":         f.Password,
		"confirm_password": f.ConfirmPassword,
		"address_line1":    f.AddressLine1,
		"city":             f.City,
		"state":            f.State,
		"pincode":          f.Pincode,
		"user_type":        f.UserType,
	}
}

// BlogForm is a blog create/update submission.
type BlogForm struct {
	Title    string
	Category string
	Summary  string
	Content  string
	IsDraft  bool
	Image    *Upload
}

func (f BlogForm) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(f.Summary) == "" {
		return fmt.Errorf("summary is required")
	}
	if strings.TrimSpace(f.Content) == "" {
		return fmt.Errorf("content is required")
	}
	return nil
}

func (f BlogForm) fields() map[string]string {
	return map[string]string{
		"title":    f.Title,
		"category": f.Category,
		"summary":  f.Summary,
		"content":  f.Content,
		"is_draft": fmt.Sprintf("%t", f.IsDraft),
	}
}
