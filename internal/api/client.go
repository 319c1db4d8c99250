package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"

	"github.com/khatri-raj/healthcare-app/internal/session"
)

// Client talks to the remote healthcare API. It owns bearer injection and the
// 401-refresh-retry-once protocol so call sites issue plain requests and
// never touch token handling.
type Client struct {
	http     *http.Client
	baseURL  string
	sessions *session.Store
}

func New(httpClient *http.Client, baseURL string, sessions *session.Store) *Client {
	return &Client{http: httpClient, baseURL: baseURL, sessions: sessions}
}

// Refresher builds the session store's refresh function. It is standalone so
// the store can be constructed before the authenticated client exists.
func Refresher(httpClient *http.Client, baseURL string) session.RefreshFunc {
	return func(ctx context.Context, refreshToken string) (string, error) {
		body, err := json.Marshal(map[string]string{"refresh": refreshToken})
		if err != nil {
			return "", err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/token/refresh/", bytes.NewReader(body))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := httpClient.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("token refresh rejected (status %d)", resp.StatusCode)
		}
		var payload struct {
			Access string `json:"access"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return "", err
		}
		if payload.Access == "" {
			return "", fmt.Errorf("token refresh returned no access token")
		}
		return payload.Access, nil
	}
}

// bodyFunc builds a request body. It is a builder rather than a reader so the
// single retry after a token refresh can resend an identical body.
type bodyFunc func() (io.Reader, string, error)

func noBody() (io.Reader, string, error) {
	return nil, "", nil
}

func jsonBody(v any) bodyFunc {
	return func() (io.Reader, string, error) {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

func multipartBody(fields map[string]string, fileField string, upload *Upload) bodyFunc {
	return func() (io.Reader, string, error) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for key, value := range fields {
			if err := w.WriteField(key, value); err != nil {
				return nil, "", err
			}
		}
		if upload != nil {
			part, err := w.CreateFormFile(fileField, upload.Name)
			if err != nil {
				return nil, "", err
			}
			if _, err := part.Write(upload.Content); err != nil {
				return nil, "", err
			}
		}
		if err := w.Close(); err != nil {
			return nil, "", err
		}
		return &buf, w.FormDataContentType(), nil
	}
}

func (c *Client) send(ctx context.Context, method, path string, body bodyFunc, bearer string) (*http.Response, error) {
	reader, contentType, err := body()
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	return c.http.Do(req)
}

// do issues an authenticated request. On 401 it asks the session store for
// exactly one refresh and retries the request exactly once with the new
// token; a rejected refresh surfaces as ErrSessionExpired with the session
// already cleared. Any other failure decodes into *Error untouched.
func (c *Client) do(ctx context.Context, method, path string, body bodyFunc, out any) error {
	sess := c.sessions.Current()
	if !sess.IsAuthenticated {
		return ErrSessionExpired
	}

	resp, err := c.send(ctx, method, path, body, sess.AccessToken)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		access, err := c.sessions.Refresh(ctx, sess.AccessToken)
		if err != nil {
			return ErrSessionExpired
		}
		resp, err = c.send(ctx, method, path, body, access)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Login authenticates and returns the token pair plus the user record. The
// caller adopts it into the session store; this call itself is unauthenticated.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	body := jsonBody(map[string]string{"username": username, "password": password})
	resp, err := c.send(ctx, http.MethodPost, "/login/", body, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}
	var out LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup registers a new account. Local validation (password confirmation)
// happens before this is called; the submission is multipart so the optional
// profile picture can be attached.
func (c *Client) Signup(ctx context.Context, form SignupForm) error {
	body := multipartBody(form.fields(), "profile_picture", form.ProfilePicture)
	resp, err := c.send(ctx, http.MethodPost, "/signup/", body, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) Doctors(ctx context.Context) ([]User, error) {
	var out struct {
		Doctors []User `json:"doctors"`
	}
	if err := c.do(ctx, http.MethodGet, "/patient/doctors/", noBody, &out); err != nil {
		return nil, err
	}
	return out.Doctors, nil
}

func (c *Client) Doctor(ctx context.Context, id int) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/patient/doctors/%d/", id), noBody, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) BookAppointment(ctx context.Context, doctorID int, form BookingForm) (*Appointment, error) {
	payload, err := form.Payload()
	if err != nil {
		return nil, err
	}
	var out Appointment
	path := fmt.Sprintf("/patient/book_appointment/%d/", doctorID)
	if err := c.do(ctx, http.MethodPost, path, jsonBody(payload), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Appointment(ctx context.Context, id int) (*Appointment, error) {
	var out Appointment
	path := fmt.Sprintf("/patient/appointment_confirmed/%d/", id)
	if err := c.do(ctx, http.MethodGet, path, noBody, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PatientAppointments(ctx context.Context) ([]Appointment, error) {
	return c.appointments(ctx, "/patient/appointments/")
}

func (c *Client) DoctorAppointments(ctx context.Context) ([]Appointment, error) {
	return c.appointments(ctx, "/doctor/appointments/")
}

func (c *Client) appointments(ctx context.Context, path string) ([]Appointment, error) {
	var out struct {
		Appointments []Appointment `json:"appointments"`
	}
	if err := c.do(ctx, http.MethodGet, path, noBody, &out); err != nil {
		return nil, err
	}
	return out.Appointments, nil
}

// DoctorBlogs lists the logged-in doctor's own posts, drafts included.
func (c *Client) DoctorBlogs(ctx context.Context) ([]BlogPost, error) {
	return c.blogs(ctx, "/doctor/blogs/")
}

// PatientBlogs lists published posts from all doctors.
func (c *Client) PatientBlogs(ctx context.Context) ([]BlogPost, error) {
	return c.blogs(ctx, "/patient/blogs/")
}

func (c *Client) blogs(ctx context.Context, path string) ([]BlogPost, error) {
	var out struct {
		Blogs []BlogPost `json:"blogs"`
	}
	if err := c.do(ctx, http.MethodGet, path, noBody, &out); err != nil {
		return nil, err
	}
	return out.Blogs, nil
}

func (c *Client) Blog(ctx context.Context, id int) (*BlogPost, error) {
	var out BlogPost
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/patient/blogs/%d/", id), noBody, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DoctorBlog fetches one of the doctor's own posts for editing.
func (c *Client) DoctorBlog(ctx context.Context, id int) (*BlogPost, error) {
	var out BlogPost
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/doctor/blogs/%d/", id), noBody, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateBlog(ctx context.Context, form BlogForm) (*BlogPost, error) {
	var out BlogPost
	body := multipartBody(form.fields(), "image", form.Image)
	if err := c.do(ctx, http.MethodPost, "/doctor/blogs/create/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateBlog(ctx context.Context, id int, form BlogForm) (*BlogPost, error) {
	var out BlogPost
	body := multipartBody(form.fields(), "image", form.Image)
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/doctor/blogs/%d/", id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteBlog(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/doctor/blogs/%d/delete/", id), noBody, nil)
}
