package models

// Session identifies the logged-in user.
type Session struct {
	UserID      int64  `json:"user_id"`
	AccessToken string `json:"access_token"`
	LoggedIn    bool   `json:"logado"`
	// Mock is true when the session was created from the built-in test
	// credentials and the data lives in the local mock store.
	Mock bool `json:"-"`
}
