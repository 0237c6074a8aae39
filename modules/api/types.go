package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Response is the envelope wrapping every JSON response.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// RegisterBody is the HTTP payload for user registration.
type RegisterBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginBody is the HTTP payload for login.
type LoginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshBody is the HTTP payload for token refresh.
type RefreshBody struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenData is the token payload returned by auth endpoints.
type TokenData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// UserData is the user payload returned by user endpoints.
type UserData struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskCreateBody is the JSON payload for task creation. Multipart requests
// carry the same fields as form values plus files under "documents".
type TaskCreateBody struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"due_date"`
	AssignedTo  string  `json:"assigned_to"`
}

// TaskUpdateBody is the JSON payload for task updates. Nil means the field
// is left unchanged; an empty string clears assigned_to or due_date.
type TaskUpdateBody struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"due_date"`
	AssignedTo  *string `json:"assigned_to"`
}

func ok(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(Response{Success: true, Data: data})
}

func created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Response{Success: true, Data: data})
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Response{Success: false, Message: message})
}

func failValidation(c *fiber.Ctx, message string, errs any) error {
	return c.Status(fiber.StatusBadRequest).JSON(Response{
		Success: false,
		Message: message,
		Errors:  errs,
	})
}
