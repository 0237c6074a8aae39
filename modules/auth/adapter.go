package auth

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/taskboard/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AuthPort defines the interface for authentication operations.
// This is the port that other modules use to access auth functionality.
type AuthPort interface {
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	UserExists(ctx context.Context, userID string) (bool, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	DeleteUser(ctx context.Context, actor domain.Principal, userID string) error
}

// AuthAdapter implements AuthPort using the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	return &AuthAdapter{
		container: container,
	}
}

// ValidateToken validates an access token and returns claims.
func (a *AuthAdapter) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"validate-token",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("validate-token request failed: %w", err)
	}

	if !resp.Valid {
		return nil, fmt.Errorf("token validation failed: %s", resp.Error)
	}

	return &domain.Claims{
		UserID: resp.UserID,
		Email:  resp.Email,
		Role:   resp.Role,
	}, nil
}

// GetUser retrieves a user by ID.
func (a *AuthAdapter) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	req := GetUserRequest{UserID: userID}
	var resp GetUserResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"get-user",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("get-user request failed: %w", err)
	}

	return &domain.User{
		ID:        resp.ID,
		Email:     resp.Email,
		Role:      resp.Role,
		CreatedAt: resp.CreatedAt,
	}, nil
}

// UserExists reports whether a user with the given ID exists.
func (a *AuthAdapter) UserExists(ctx context.Context, userID string) (bool, error) {
	req := ValidateUserRequest{UserID: userID}
	var resp ValidateUserResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"validate-user",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return false, fmt.Errorf("validate-user request failed: %w", err)
	}

	return resp.Valid, nil
}

// ListUsers returns all user accounts.
func (a *AuthAdapter) ListUsers(ctx context.Context) ([]*domain.User, error) {
	req := ListUsersRequest{}
	var resp ListUsersResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"list-users",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("list-users request failed: %w", err)
	}

	users := make([]*domain.User, 0, len(resp.Users))
	for _, u := range resp.Users {
		users = append(users, &domain.User{
			ID:        u.ID,
			Email:     u.Email,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
		})
	}
	return users, nil
}

// DeleteUser removes a user account on behalf of the given principal.
func (a *AuthAdapter) DeleteUser(ctx context.Context, actor domain.Principal, userID string) error {
	req := DeleteUserRequest{Actor: actor, UserID: userID}
	var resp DeleteUserResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"delete-user",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return fmt.Errorf("delete-user request failed: %w", err)
	}

	return nil
}
