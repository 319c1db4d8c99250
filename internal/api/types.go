package api

import "github.com/khatri-raj/healthcare-app/internal/session"

// User is a patient or doctor record as the remote API serializes it.
type User struct {
	ID             int    `json:"id"`
	Username       string `json:"username"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	UserType       string `json:"user_type"`
	AddressLine1   string `json:"address_line1"`
	City           string `json:"city"`
	State          string `json:"state"`
	Pincode        string `json:"pincode"`
	ProfilePicture string `json:"profile_picture"`
}

// Profile converts the record into the session read-model stored at login.
func (u User) Profile() session.Profile {
	return session.Profile{
		ID:             u.ID,
		Username:       u.Username,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Email:          u.Email,
		AddressLine1:   u.AddressLine1,
		City:           u.City,
		State:          u.State,
		Pincode:        u.Pincode,
		ProfilePicture: u.ProfilePicture,
	}
}

type Appointment struct {
	ID         int    `json:"id"`
	Patient    User   `json:"patient"`
	Doctor     User   `json:"doctor"`
	Speciality string `json:"speciality"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	CreatedAt  string `json:"created_at"`
}

type BlogPost struct {
	ID        int    `json:"id"`
	Author    User   `json:"author"`
	Title     string `json:"title"`
	Image     string `json:"image"`
	Category  string `json:"category"`
	Summary   string `json:"summary"`
	Content   string `json:"content"`
	IsDraft   bool   `json:"is_draft"`
	CreatedAt string `json:"created_at"`
}

type LoginResponse struct {
	Access   string `json:"access"`
	Refresh  string `json:"refresh"`
	UserType string `json:"user_type"`
	User     User   `json:"user"`
}

// Blog categories as the remote API enumerates them.
var blogCategories = []struct{ Value, Label string }{
	{"mental_health", "Mental Health"},
	{"heart_disease", "Heart Disease"},
	{"covid19", "Covid19"},
	{"immunization", "Immunization"},
}

// BlogCategories lists the category values with their display labels.
func BlogCategories() []struct{ Value, Label string } {
	return blogCategories
}

// CategoryLabel returns the display name for a category value, falling back
// to the raw value for anything the API added since.
func CategoryLabel(value string) string {
	for _, c := range blogCategories {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}

// BlogsByCategory groups posts under their category label, preserving the
// category enumeration order. The patient blog list renders this grouping.
type BlogGroup struct {
	Label string
	Posts []BlogPost
}

func BlogsByCategory(posts []BlogPost) []BlogGroup {
	byValue := make(map[string][]BlogPost)
	var extra []string
	for _, post := range posts {
		if _, seen := byValue[post.Category]; !seen {
			known := false
			for _, c := range blogCategories {
				if c.Value == post.Category {
					known = true
					break
				}
			}
			if !known {
				extra = append(extra, post.Category)
			}
		}
		byValue[post.Category] = append(byValue[post.Category], post)
	}

	var groups []BlogGroup
	for _, c := range blogCategories {
		if posts := byValue[c.Value]; len(posts) > 0 {
			groups = append(groups, BlogGroup{Label: c.Label, Posts: posts})
		}
	}
	for _, value := range extra {
		groups = append(groups, BlogGroup{Label: CategoryLabel(value), Posts: byValue[value]})
	}
	return groups
}
