package api

import "testing"

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2025-06-26", "2025-06-26", true},
		{"26-06-2025", "2025-06-26", true},
		{" 2025-06-26 ", "2025-06-26", true},
		{"06/26/2025", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, err := NormalizeDate(tt.in)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("NormalizeDate(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
		if !tt.ok && err == nil {
			t.Errorf("NormalizeDate(%q) = %q; want error", tt.in, got)
		}
	}
}

func TestEndTime(t *testing.T) {
	got, err := EndTime("10:00")
	if err != nil || got != "10:45" {
		t.Fatalf("EndTime(10:00) = %q, %v; want 10:45", got, err)
	}
	got, err = EndTime("23:30")
	if err != nil || got != "00:15" {
		t.Fatalf("EndTime(23:30) = %q, %v; want 00:15", got, err)
	}
	if _, err := EndTime("half ten"); err == nil {
		t.Fatalf("expected error for unparseable time")
	}
}

func TestBookingPayload(t *testing.T) {
	form := BookingForm{Speciality: " Cardiology ", Date: "26-06-2025", StartTime: " 10:00 "}
	payload, err := form.Payload()
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	want := map[string]string{
		"speciality": "Cardiology",
		"date":       "2025-06-26",
		"start_time": "10:00",
		"end_time":   "10:45",
	}
	for key, value := range want {
		if payload[key] != value {
			t.Errorf("payload[%s] = %q, want %q", key, payload[key], value)
		}
	}
}

func TestBookingPayloadRejectsBadInput(t *testing.T) {
	if _, err := (BookingForm{Date: "2025-06-26", StartTime: "10:00"}).Payload(); err == nil {
		t.Errorf("expected error for missing speciality")
	}
	if _, err := (BookingForm{Speciality: "Cardiology", Date: "soon", StartTime: "10:00"}).Payload(); err == nil {
		t.Errorf("expected error for bad date")
	}
	if _, err := (BookingForm{Speciality: "Cardiology", Date: "2025-06-26", StartTime: "10am"}).Payload(); err == nil {
		t.Errorf("expected error for bad time")
	}
}

func TestSignupValidate(t *testing.T) {
	valid := SignupForm{
		Username:        "rajkhatri",
		Email:           "raj@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
		UserType:        "patient",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid form rejected: %v", err)
	}

	mismatched := valid
	mismatched.ConfirmPassword = "secret124"
	if err := mismatched.Validate(); err == nil {
		t.Fatalf("expected error for password mismatch")
	}

	badType := valid
	badType.UserType = "admin"
	if err := badType.Validate(); err == nil {
		t.Fatalf("expected error for unknown account type")
	}

	empty := SignupForm{UserType: "patient"}
	if err := empty.Validate(); err == nil {
		t.Fatalf("expected error for missing required fields")
	}
}

func TestBlogValidate(t *testing.T) {
	valid := BlogForm{Title: "Managing stress", Category: "mental_health", Summary: "s", Content: "c"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid form rejected: %v", err)
	}
	for _, f := range []BlogForm{
		{Summary: "s", Content: "c"},
		{Title: "t", Content: "c"},
		{Title: "t", Summary: "s"},
	} {
		if err := f.Validate(); err == nil {
			t.Errorf("expected error for incomplete form %+v", f)
		}
	}
}

func TestBlogsByCategory(t *testing.T) {
	posts := []BlogPost{
		{ID: 1, Category: "covid19"},
		{ID: 2, Category: "mental_health"},
		{ID: 3, Category: "mental_health"},
		{ID: 4, Category: "ayurveda"},
	}
	groups := BlogsByCategory(posts)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d: %+v", len(groups), groups)
	}
	// Enumeration order first, unknown categories last.
	if groups[0].Label != "Mental Health" || len(groups[0].Posts) != 2 {
		t.Fatalf("unexpected first group: %+v", groups[0])
	}
	if groups[1].Label != "Covid19" || groups[1].Posts[0].ID != 1 {
		t.Fatalf("unexpected second group: %+v", groups[1])
	}
	if groups[2].Label != "ayurveda" || groups[2].Posts[0].ID != 4 {
		t.Fatalf("unexpected trailing group: %+v", groups[2])
	}
}

func TestCategoryLabel(t *testing.T) {
	if got := CategoryLabel("heart_disease"); got != "Heart Disease" {
		t.Fatalf("CategoryLabel(heart_disease) = %q", got)
	}
	if got := CategoryLabel("ayurveda"); got != "ayurveda" {
		t.Fatalf("expected raw value fallback, got %q", got)
	}
}
