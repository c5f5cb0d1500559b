package utils

// AccessToken is the claims payload the external auth provider signs into
// access tokens. The server verifies but never issues these.
type AccessToken struct {
	ID   uint   `json:"ID"`
	Role string `json:"role"`
}
