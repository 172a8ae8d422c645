package models

// PaginatedUsersResponse is the response structure for the staff listing.
type PaginatedUsersResponse struct {
	Data       []User     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// AuthResponse is returned by login, registration and /auth/me.
type AuthResponse struct {
	AccessToken string `json:"accessToken,omitempty"`
	User        User   `json:"user"`
	Shop        Shop   `json:"shop"`
}
