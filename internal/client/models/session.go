package models

// Session pairs a user with the tokens issued for it. An empty
// RefreshToken means none was issued.
type Session struct {
	User         *User
	AccessToken  string
	RefreshToken string
}
