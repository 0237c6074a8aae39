package auth

import (
	"time"

	domain "github.com/example/taskboard/domain/user"
)

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse represents a user registration response.
type RegisterResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents a user login response with tokens.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse represents a token refresh response.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// ValidateTokenRequest represents a token validation request.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse represents a token validation response.
type ValidateTokenResponse struct {
	Valid  bool        `json:"valid"`
	UserID string      `json:"user_id,omitempty"`
	Email  string      `json:"email,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// GetUserRequest represents a get user request.
type GetUserRequest struct {
	UserID string `json:"user_id"`
}

// GetUserResponse represents a get user response.
type GetUserResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// ValidateUserRequest represents a user existence check request.
type ValidateUserRequest struct {
	UserID string `json:"user_id"`
}

// ValidateUserResponse represents a user existence check response.
type ValidateUserResponse struct {
	Valid bool `json:"valid"`
}

// ListUsersRequest represents a list users request.
type ListUsersRequest struct{}

// ListUsersResponse represents a list users response.
type ListUsersResponse struct {
	Users []GetUserResponse `json:"users"`
	Total int               `json:"total"`
}

// DeleteUserRequest represents a delete user request.
type DeleteUserRequest struct {
	Actor  domain.Principal `json:"actor"`
	UserID string           `json:"user_id"`
}

// DeleteUserResponse represents a delete user response.
type DeleteUserResponse struct {
	Deleted bool `json:"deleted"`
}
