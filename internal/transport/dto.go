package transport

import "time"

type RegisterRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

type RegisterResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	AccessExp    time.Time `json:"-"`
	RefreshExp   time.Time `json:"-"`
}

type AccessToken struct {
	AccessToken string    `json:"access_token"`
	AccessExp   time.Time `json:"-"`
}

type AccountView struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role,omitempty"`
	IsAdmin   bool   `json:"is_admin"`
}

type Message struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	ErrorID string `json:"error_id,omitempty"`
}
