package session

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// Profile is the denormalized copy of the user record returned by the login
// endpoint, kept so dashboards render without re-fetching. It is rewritten
// wholesale on every login and never partially merged.
type Profile struct {
	ID             int    `json:"id"`
	Username       string `json:"username"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	AddressLine1   string `json:"address_line1"`
	City           string `json:"city"`
	State          string `json:"state"`
	Pincode        string `json:"pincode"`
	ProfilePicture string `json:"profile_picture"`
}

// Session is a point-in-time read of the store. Invariants:
// IsAuthenticated == (AccessToken != ""), and Role is non-empty iff
// authenticated.
type Session struct {
	IsAuthenticated bool
	Role            Role
	AccessToken     string
	RefreshToken    string
	Profile         Profile
}

// State is the persisted form of the session.
type State struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	UserType     string  `json:"userType"`
	Profile      Profile `json:"profile"`
}

func (s State) session() Session {
	return Session{
		IsAuthenticated: s.AccessToken != "",
		Role:            Role(s.UserType),
		AccessToken:     s.AccessToken,
		RefreshToken:    s.RefreshToken,
		Profile:         s.Profile,
	}
}
