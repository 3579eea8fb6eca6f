package entity

// Session is the frontend's belief that a user is authenticated in a given
// browser profile.
type Session struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Token    string `json:"-"`
}

// Valid reports whether the session carries both an identity and a credential.
func (s Session) Valid() bool {
	return s.UserID != "" && s.Token != ""
}
