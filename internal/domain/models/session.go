package models

// Session identifies the authenticated user a request is made for. It is
// passed explicitly to every gateway call.
type Session struct {
	Token  string
	UserID int
	Name   string
	Email  string
}

// CurrentUser mirrors the user profile returned by the users/me endpoint.
type CurrentUser struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}
