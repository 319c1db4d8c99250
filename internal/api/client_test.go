package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/khatri-raj/healthcare-app/internal/session"
)

// fakeAPI stands in for the remote healthcare service. It validates bearer
// tokens against a single currently-valid access token and counts calls so
// tests can assert the exact number of round trips.
type fakeAPI struct {
	mu            sync.Mutex
	validAccess   string
	validRefresh  string
	nextAccess    string
	refreshCalls  int
	doctorCalls   int
	lastBooking   map[string]string
	bookingStatus int
	bookingBody   string
	rejectAll     bool
	rejectRefresh bool
}

func (f *fakeAPI) authorized(r *http.Request) bool {
	return !f.rejectAll && r.Header.Get("Authorization") == "Bearer "+f.validAccess
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.refreshCalls++
		var body struct {
			Refresh string `json:"refresh"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || f.rejectRefresh || body.Refresh != f.validRefresh {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Token is invalid or expired"})
			return
		}
		f.validAccess = f.nextAccess
		json.NewEncoder(w).Encode(map[string]string{"access": f.nextAccess})
	})
	mux.HandleFunc("GET /patient/doctors/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.doctorCalls++
		if !f.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string][]User{"doctors": {
			{ID: 3, Username: "drmehta", FirstName: "Anita", LastName: "Mehta", UserType: "doctor"},
		}})
	})
	mux.HandleFunc("POST /patient/book_appointment/3/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if !f.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.lastBooking = payload
		if f.bookingStatus != 0 {
			w.WriteHeader(f.bookingStatus)
			w.Write([]byte(f.bookingBody))
			return
		}
		json.NewEncoder(w).Encode(Appointment{
			ID:         42,
			Speciality: payload["speciality"],
			Date:       payload["date"],
			StartTime:  payload["start_time"],
			EndTime:    payload["end_time"],
		})
	})
	return mux
}

func newTestClient(t *testing.T, fake *fakeAPI) (*Client, *session.Store) {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	backend := session.NewFileBackend(filepath.Join(t.TempDir(), "session.json"))
	store, err := session.NewStore(context.Background(), backend, Refresher(srv.Client(), srv.URL))
	if err != nil {
		t.Fatalf("store init: %v", err)
	}
	return New(srv.Client(), srv.URL, store), store
}

func login(t *testing.T, store *session.Store) {
	t.Helper()
	err := store.Login(context.Background(), "access-1", "refresh-1", session.RolePatient, session.Profile{ID: 7, Username: "rajkhatri"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestDoctorsWithValidToken(t *testing.T) {
	fake := &fakeAPI{validAccess: "access-1", validRefresh: "refresh-1"}
	client, store := newTestClient(t, fake)
	login(t, store)

	doctors, err := client.Doctors(context.Background())
	if err != nil {
		t.Fatalf("doctors: %v", err)
	}
	if len(doctors) != 1 || doctors[0].Username != "drmehta" {
		t.Fatalf("unexpected doctors: %+v", doctors)
	}
	if fake.refreshCalls != 0 {
		t.Fatalf("expected no refresh for a valid token, got %d", fake.refreshCalls)
	}
}

func TestRetriesOnceAfterRefresh(t *testing.T) {
	// The stored token is already stale; the server only accepts access-2.
	fake := &fakeAPI{validAccess: "access-2", validRefresh: "refresh-1", nextAccess: "access-2"}
	client, store := newTestClient(t, fake)
	login(t, store)

	doctors, err := client.Doctors(context.Background())
	if err != nil {
		t.Fatalf("doctors after refresh: %v", err)
	}
	if len(doctors) != 1 {
		t.Fatalf("expected doctors from the retried request, got %+v", doctors)
	}
	if fake.refreshCalls != 1 {
		t.Fatalf("expected exactly one refresh, got %d", fake.refreshCalls)
	}
	if fake.doctorCalls != 2 {
		t.Fatalf("expected exactly one retry, got %d calls", fake.doctorCalls)
	}
	if got := store.Current().AccessToken; got != "access-2" {
		t.Fatalf("expected refreshed token adopted, got %q", got)
	}
}

func TestNeverRetriesTwice(t *testing.T) {
	// Refresh succeeds but the view endpoint keeps rejecting; the second 401
	// must surface as an error rather than loop.
	fake := &fakeAPI{validAccess: "access-2", validRefresh: "refresh-1", nextAccess: "access-2", rejectAll: true}
	client, store := newTestClient(t, fake)
	login(t, store)

	_, err := client.Doctors(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 *Error, got %v", err)
	}
	if fake.refreshCalls != 1 {
		t.Fatalf("expected one refresh, got %d", fake.refreshCalls)
	}
	if fake.doctorCalls != 2 {
		t.Fatalf("expected original call plus one retry, got %d", fake.doctorCalls)
	}
	// The refresh itself succeeded, so the session survives.
	if !store.Current().IsAuthenticated {
		t.Fatalf("expected session kept after a non-auth failure")
	}
}

func TestRejectedRefreshExpiresSession(t *testing.T) {
	fake := &fakeAPI{validAccess: "access-2", validRefresh: "refresh-1", rejectRefresh: true}
	client, store := newTestClient(t, fake)
	login(t, store)

	_, err := client.Doctors(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if store.Current().IsAuthenticated {
		t.Fatalf("expected session cleared after rejected refresh")
	}
	if fake.doctorCalls != 1 {
		t.Fatalf("expected no retry after a failed refresh, got %d calls", fake.doctorCalls)
	}
}

func TestUnauthenticatedShortCircuits(t *testing.T) {
	fake := &fakeAPI{}
	client, _ := newTestClient(t, fake)

	_, err := client.Doctors(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if fake.doctorCalls != 0 || fake.refreshCalls != 0 {
		t.Fatalf("expected no network traffic without a session")
	}
}

func TestBookingSubmitsNormalizedPayload(t *testing.T) {
	fake := &fakeAPI{validAccess: "access-1", validRefresh: "refresh-1"}
	client, store := newTestClient(t, fake)
	login(t, store)

	form := BookingForm{Speciality: "Cardiology", Date: "26-06-2025", StartTime: "10:00"}
	appt, err := client.BookAppointment(context.Background(), 3, form)
	if err != nil {
		t.Fatalf("booking: %v", err)
	}
	if appt.ID != 42 {
		t.Fatalf("unexpected appointment: %+v", appt)
	}
	want := map[string]string{
		"speciality": "Cardiology",
		"date":       "2025-06-26",
		"start_time": "10:00",
		"end_time":   "10:45",
	}
	for key, value := range want {
		if fake.lastBooking[key] != value {
			t.Fatalf("payload %s = %q, want %q (full payload %v)", key, fake.lastBooking[key], value, fake.lastBooking)
		}
	}
}

func TestBookingConflictSurfaced(t *testing.T) {
	fake := &fakeAPI{
		validAccess:   "access-1",
		validRefresh:  "refresh-1",
		bookingStatus: http.StatusBadRequest,
		bookingBody:   `{"error": "You already have an appointment in this slot"}`,
	}
	client, store := newTestClient(t, fake)
	login(t, store)

	form := BookingForm{Speciality: "Cardiology", Date: "2025-06-26", StartTime: "10:00"}
	_, err := client.BookAppointment(context.Background(), 3, form)
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Message != "You already have an appointment in this slot" {
		t.Fatalf("unexpected message: %q", apiErr.Message)
	}
	if got := Message(err); got != "You already have an appointment in this slot" {
		t.Fatalf("unexpected user message: %q", got)
	}
}

func TestFieldErrorsDecoded(t *testing.T) {
	fake := &fakeAPI{
		validAccess:   "access-1",
		validRefresh:  "refresh-1",
		bookingStatus: http.StatusBadRequest,
		bookingBody:   `{"start_time": ["This field is required."], "date": "invalid"}`,
	}
	client, store := newTestClient(t, fake)
	login(t, store)

	form := BookingForm{Speciality: "Cardiology", Date: "2025-06-26", StartTime: "10:00"}
	_, err := client.BookAppointment(context.Background(), 3, form)
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Fields["start_time"] != "This field is required." || apiErr.Fields["date"] != "invalid" {
		t.Fatalf("unexpected fields: %v", apiErr.Fields)
	}
	if got := Message(err); got != "date: invalid; start_time: This field is required." {
		t.Fatalf("unexpected user message: %q", got)
	}
}
