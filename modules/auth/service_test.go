package auth

import (
	"context"
	"errors"
	"testing"

	domain "github.com/example/taskboard/domain/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestService(t *testing.T) *AuthService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return NewAuthService(NewUserRepository(db), NewPasswordHasher(), NewJWTManager(DefaultJWTConfig()))
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Errorf("Role = %v, want %v", user.Role, domain.RoleUser)
	}
	if user.PasswordHash == "password123" {
		t.Error("password stored in plaintext")
	}

	tokens, err := svc.Login(ctx, "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Error("Login() returned empty tokens")
	}
	if tokens.TokenType != "Bearer" {
		t.Errorf("TokenType = %v, want Bearer", tokens.TokenType)
	}

	if _, err := svc.Login(ctx, "alice@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() with wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() for unknown user error = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"invalid email", "not-an-email", "password123", ErrInvalidEmail},
		{"short password", "bob@example.com", "short", ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := svc.Register(ctx, "dup@example.com", "password123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := svc.Register(ctx, "dup@example.com", "password123"); !errors.Is(err, domain.ErrUserExists) {
		t.Errorf("duplicate Register() error = %v, want ErrUserExists", err)
	}
}

func TestAuthService_RefreshTokens(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "carol@example.com", "password123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	tokens, err := svc.Login(ctx, "carol@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	refreshed, err := svc.RefreshTokens(ctx, tokens.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshTokens() error = %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Error("RefreshTokens() returned empty access token")
	}

	// An access token is not accepted as a refresh token
	if _, err := svc.RefreshTokens(ctx, tokens.AccessToken); err == nil {
		t.Error("RefreshTokens() should reject an access token")
	}
}

func TestAuthService_ValidateTokenCarriesRole(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	if err := svc.SeedAdmin(ctx, "root@example.com", "admin-password"); err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}

	tokens, err := svc.Login(ctx, "root@example.com", "admin-password")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	claims, err := svc.ValidateToken(ctx, tokens.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.Role != domain.RoleAdmin {
		t.Errorf("claims.Role = %v, want %v", claims.Role, domain.RoleAdmin)
	}
}

func TestAuthService_SeedAdminIsIdempotent(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	if err := svc.SeedAdmin(ctx, "root@example.com", "admin-password"); err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}
	if err := svc.SeedAdmin(ctx, "root@example.com", "admin-password"); err != nil {
		t.Fatalf("second SeedAdmin() error = %v", err)
	}

	users, err := svc.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 1 {
		t.Errorf("users = %d, want 1", len(users))
	}
	if users[0].Role != domain.RoleAdmin {
		t.Errorf("Role = %v, want admin", users[0].Role)
	}
}

func TestAuthService_DeleteUser(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	if err := svc.SeedAdmin(ctx, "root@example.com", "admin-password"); err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}
	adminUser, err := svc.repo.FindByEmail("root@example.com")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	target, err := svc.Register(ctx, "victim@example.com", "password123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	adminPrincipal := domain.Principal{ID: adminUser.ID, Role: domain.RoleAdmin}
	userPrincipal := domain.Principal{ID: target.ID, Role: domain.RoleUser}

	// Self deletion is forbidden regardless of role
	if err := svc.DeleteUser(ctx, adminPrincipal, adminUser.ID); !errors.Is(err, domain.ErrSelfDeletionForbidden) {
		t.Errorf("admin self delete error = %v, want ErrSelfDeletionForbidden", err)
	}
	if err := svc.DeleteUser(ctx, userPrincipal, target.ID); !errors.Is(err, domain.ErrSelfDeletionForbidden) {
		t.Errorf("user self delete error = %v, want ErrSelfDeletionForbidden", err)
	}

	// Non-admins may not delete other accounts
	if err := svc.DeleteUser(ctx, userPrincipal, adminUser.ID); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("non-admin delete error = %v, want ErrNotAllowed", err)
	}

	// Admin deletes another account
	if err := svc.DeleteUser(ctx, adminPrincipal, target.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	exists, err := svc.UserExists(ctx, target.ID)
	if err != nil {
		t.Fatalf("UserExists() error = %v", err)
	}
	if exists {
		t.Error("deleted user still exists")
	}

	if err := svc.DeleteUser(ctx, adminPrincipal, "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("delete missing user error = %v, want ErrUserNotFound", err)
	}
}

func TestAuthService_ListUsersOrderedByEmail(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	for _, email := range []string{"zoe@example.com", "amy@example.com", "mia@example.com"} {
		if _, err := svc.Register(ctx, email, "password123"); err != nil {
			t.Fatalf("Register(%s) error = %v", email, err)
		}
	}

	users, err := svc.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("users = %d, want 3", len(users))
	}
	if users[0].Email != "amy@example.com" || users[2].Email != "zoe@example.com" {
		t.Errorf("unexpected ordering: %s, %s, %s", users[0].Email, users[1].Email, users[2].Email)
	}
}
