package api

import (
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"strings"
	"time"

	domain "github.com/example/taskboard/domain/user"
	"github.com/example/taskboard/modules/auth"
	"github.com/example/taskboard/modules/notify"
	"github.com/example/taskboard/modules/task"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// register handles user registration.
func (m *APIModule) register(c *fiber.Ctx) error {
	var body RegisterBody
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if body.Email == "" || body.Password == "" {
		return failValidation(c, "Validation failed", []string{"email and password are required"})
	}

	authReq := auth.RegisterRequest{Email: body.Email, Password: body.Password}
	var resp auth.RegisterResponse
	if err := helper.CallRequestReplyService(
		c.UserContext(), m.authContainer, "register",
		json.Marshal, json.Unmarshal, &authReq, &resp,
	); err != nil {
		return m.handleAuthError(c, err)
	}

	return created(c, UserData{
		ID:        resp.ID,
		Email:     resp.Email,
		Role:      string(resp.Role),
		CreatedAt: resp.CreatedAt,
	})
}

// login handles user login.
func (m *APIModule) login(c *fiber.Ctx) error {
	var body LoginBody
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if body.Email == "" || body.Password == "" {
		return failValidation(c, "Validation failed", []string{"email and password are required"})
	}

	authReq := auth.LoginRequest{Email: body.Email, Password: body.Password}
	var resp auth.LoginResponse
	if err := helper.CallRequestReplyService(
		c.UserContext(), m.authContainer, "login",
		json.Marshal, json.Unmarshal, &authReq, &resp,
	); err != nil {
		return m.handleAuthError(c, err)
	}

	return ok(c, TokenData{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		TokenType:    resp.TokenType,
	})
}

// refresh handles token refresh.
func (m *APIModule) refresh(c *fiber.Ctx) error {
	var body RefreshBody
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if body.RefreshToken == "" {
		return failValidation(c, "Validation failed", []string{"refresh_token is required"})
	}

	authReq := auth.RefreshRequest{RefreshToken: body.RefreshToken}
	var resp auth.RefreshResponse
	if err := helper.CallRequestReplyService(
		c.UserContext(), m.authContainer, "refresh-token",
		json.Marshal, json.Unmarshal, &authReq, &resp,
	); err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid or expired refresh token")
	}

	return ok(c, TokenData{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		TokenType:    resp.TokenType,
	})
}

// listUsers returns all user accounts. Any authenticated user may list
// accounts to pick an assignee.
func (m *APIModule) listUsers(c *fiber.Ctx) error {
	if _, authed := claimsFromCtx(c); !authed {
		return fail(c, fiber.StatusUnauthorized, "User not authenticated")
	}

	users, err := m.authAdapter.ListUsers(c.UserContext())
	if err != nil {
		log.Printf("[api] Failed to list users: %v", err)
		return fail(c, fiber.StatusInternalServerError, "An internal error occurred")
	}

	data := make([]UserData, 0, len(users))
	for _, u := range users {
		data = append(data, UserData{
			ID:        u.ID,
			Email:     u.Email,
			Role:      string(u.Role),
			CreatedAt: u.CreatedAt,
		})
	}
	return ok(c, data)
}

// deleteUser removes a user account.
func (m *APIModule) deleteUser(c *fiber.Ctx) error {
	claims, authed := claimsFromCtx(c)
	if !authed {
		return fail(c, fiber.StatusUnauthorized, "User not authenticated")
	}

	userID := c.Params("id")
	if err := m.authAdapter.DeleteUser(c.UserContext(), claims.Principal(), userID); err != nil {
		return m.handleAuthError(c, err)
	}

	return ok(c, fiber.Map{"deleted": true})
}

// createTask creates a task, optionally with attached documents.
func (m *APIModule) createTask(c *fiber.Ctx) error {
	claims, authed := claimsFromCtx(c)
	if !authed {
		return fail(c, fiber.StatusUnauthorized, "User not authenticated")
	}

	req := task.CreateTaskRequest{Principal: claims.Principal()}

	if form, err := c.MultipartForm(); err == nil {
		req.Title, _ = formValue(form, "title")
		req.Description, _ = formValue(form, "description")
		req.Status, _ = formValue(form, "status")
		req.Priority, _ = formValue(form, "priority")
		req.AssignedTo, _ = formValue(form, "assigned_to")
		if raw, present := formValue(form, "due_date"); present && raw != "" {
			due, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return failValidation(c, "Validation failed", []string{"due_date must be RFC 3339"})
			}
			req.DueDate = &due
		}
		uploads, err := readUploads(form.File["documents"])
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "Failed to read uploaded documents")
		}
		req.Documents = uploads
	} else {
		var body TaskCreateBody
		if err := c.BodyParser(&body); err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid request body")
		}
		req.Title = body.Title
		req.Description = body.Description
		req.Status = body.Status
		req.Priority = body.Priority
		req.AssignedTo = body.AssignedTo
		if body.DueDate != nil && *body.DueDate != "" {
			due, err := time.Parse(time.RFC3339, *body.DueDate)
			if err != nil {
				return failValidation(c, "Validation failed", []string{"due_date must be RFC 3339"})
			}
			req.DueDate = &due
		}
	}

	resp, err := m.taskAdapter.CreateTask(c.UserContext(), req)
	if err != nil {
		return m.handleTaskError(c, err)
	}

	return created(c, resp.Task)
}

// getTask returns a single task visible to the caller.
func (m *APIModule) getTask(c *fiber.Ctx) error {
	claims, authed := claimsFromCtx(c)
	if !authed {
		return fail(c, fiber.StatusUnauthorized, "User not authenticated")
	}

	resp, err := m.taskAdapter.GetTask(c.UserContext(), task.GetTaskRequest{
		Principal: claims.Principal(),
		TaskID:    c.Params("id"),
	})
	if err != nil {
		return m.handleTaskError(c, err)
	}

	return ok(c, resp.Task)
}

// listTasks returns a page of tasks visible to the caller.
func (m *APIModule) listTasks(c *fiber.Ctx) error {
	claims, authed := claimsFromCtx(c)
	if !authed {
		return fail(c, fiber.StatusUnauthorized, "User not authenticated")
	}

	resp, err := m.taskAdapter.ListTasks(c.UserContext(), task.ListTasksRequest{
		Principal:  claims.Principal(),
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		AssignedTo: c.Query("assigned_to"),
		Page:       c.QueryInt("page", 1),
		Limit:      c.QueryInt("limit", 10),
	})
	if err != nil {
		return m.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(Response{
		Success: true,
		Data: fiber.Map{
			"tasks":       resp.Tasks,
			"currentPage": resp.Pagination.CurrentPage,
			"totalPages":  resp.Pagination.TotalPages,
			"totalItems":  resp.Pagination.TotalItems,
			"hasNextPage": resp.Pagination.HasNextPage,
			"hasPrevPage": resp.Pagination.HasPrevPage,
		},
	})
}

// updateTask applies a partial update, optionally attaching documents.
// A form field present with an empty value clears that field.
func (m *APIModule) updateTask(c *fiber.Ctx) error {
	claims, authed := claimsFromCtx(c)
	if !authed {
		return fail(c, fiber.StatusUnauthorized, "User not authenticated")
	}

	req := task.UpdateTaskRequest{
		Principal: claims.Principal(),
		TaskID:    c.Params("id"),
	}

	if form, err := c.MultipartForm(); err == nil {
		if v, present := formValue(form, "title"); present {
			req.Title = &v
		}
		if v, present := formValue(form, "description"); present {
			req.Description = &v
		}
		if v, present := formValue(form, "status"); present {
			req.Status = &v
		}
		if v, present := formValue(form, "priority"); present {
			req.Priority = &v
		}
		if v, present := formValue(form, "assigned_to"); present {
			if v == "" {
				req.ClearAssignee = true
			} else {
				req.AssignedTo = &v
			}
		}
		if v, present := formValue(form, "due_date"); present {
			if v == "" {
				req.ClearDueDate = true
			} else {
				due, err := time.Parse(time.RFC3339, v)
				if err != nil {
					return failValidation(c, "Validation failed", []string{"due_date must be RFC 3339"})
				}
				req.DueDate = &due
			}
		}
		uploads, err := readUploads(form.File["documents"])
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "Failed to read uploaded documents")
		}
		req.Documents = uploads
	} else {
		var body TaskUpdateBody
		if err := c.BodyParser(&body); err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid request body")
		}
		req.Title = body.Title
		req.Description = body.Description
		req.Status = body.Status
		req.Priority = body.Priority
		if body.AssignedTo != nil {
			if *body.AssignedTo == "" {
				req.ClearAssignee = true
			} else {
				req.AssignedTo = body.AssignedTo
			}
		}
		if body.DueDate != nil {
			if *body.DueDate == "" {
				req.ClearDueDate = true
			} else {
				due, err := time.Parse(time.RFC3339, *body.DueDate)
				if err != nil {
					return failValidation(c, "Validation failed", []string{"due_date must be RFC 3339"})
				}
				req.DueDate = &due
			}
		}
	}

	resp, err := m.taskAdapter.UpdateTask(c.UserContext(), req)
	if err != nil {
		return m.handleTaskError(c, err)
	}

	return ok(c, resp.Task)
}

// deleteTask removes a task and its documents.
func (m *APIModule) deleteTask(c *fiber.Ctx) error {
	claims, authed := claimsFromCtx(c)
	if !authed {
		return fail(c, fiber.StatusUnauthorized, "User not authenticated")
	}

	_, err := m.taskAdapter.DeleteTask(c.UserContext(), task.DeleteTaskRequest{
		Principal: claims.Principal(),
		TaskID:    c.Params("id"),
	})
	if err != nil {
		return m.handleTaskError(c, err)
	}

	return ok(c, fiber.Map{"deleted": true})
}

// downloadDocument streams a document's content to the caller.
func (m *APIModule) downloadDocument(c *fiber.Ctx) error {
	claims, authed := claimsFromCtx(c)
	if !authed {
		return fail(c, fiber.StatusUnauthorized, "User not authenticated")
	}

	resp, err := m.taskAdapter.DownloadDocument(c.UserContext(), task.DownloadDocumentRequest{
		Principal:  claims.Principal(),
		TaskID:     c.Params("id"),
		DocumentID: c.Params("docId"),
	})
	if err != nil {
		return m.handleTaskError(c, err)
	}

	c.Set(fiber.HeaderContentType, resp.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+resp.Filename+`"`)
	return c.Status(fiber.StatusOK).Send(resp.Data)
}

// removeDocument detaches a single document from a task.
func (m *APIModule) removeDocument(c *fiber.Ctx) error {
	claims, authed := claimsFromCtx(c)
	if !authed {
		return fail(c, fiber.StatusUnauthorized, "User not authenticated")
	}

	_, err := m.taskAdapter.RemoveDocument(c.UserContext(), task.RemoveDocumentRequest{
		Principal:  claims.Principal(),
		TaskID:     c.Params("id"),
		DocumentID: c.Params("docId"),
	})
	if err != nil {
		return m.handleTaskError(c, err)
	}

	return ok(c, fiber.Map{"removed": true})
}

// handleWebSocket handles notification socket connections at /ws.
func (m *APIModule) handleWebSocket(c *websocket.Conn) {
	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	if !ok || claims.UserID == "" {
		_ = c.Close()
		return
	}

	clientID := uuid.New().String()
	userID := claims.UserID

	client := &notify.Client{
		ID:     clientID,
		UserID: userID,
		Conn:   c,
	}

	m.hub.Register(client)
	defer func() {
		m.hub.Unregister(client)
		log.Printf("[api] WebSocket client disconnected: %s (user %s)", clientID, userID)
	}()

	log.Printf("[api] WebSocket client connected: %s (user %s)", clientID, userID)

	welcome := notify.WSNotification{Type: "connected"}
	if err := c.WriteJSON(welcome); err != nil {
		log.Printf("[api] Failed to send welcome: %v", err)
		return
	}

	// The channel is one-way; inbound frames are drained only to detect
	// disconnects
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[api] Client %s closed connection", clientID)
			} else {
				log.Printf("[api] Read error from %s: %v", clientID, err)
			}
			return
		}
	}
}

// formValue returns a multipart form value and whether the key was present.
func formValue(form *multipart.Form, key string) (string, bool) {
	vals, ok := form.Value[key]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// readUploads reads multipart file headers into attachment uploads.
func readUploads(files []*multipart.FileHeader) ([]task.AttachmentUpload, error) {
	uploads := make([]task.AttachmentUpload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, task.AttachmentUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return uploads, nil
}

// handleAuthError maps auth service errors to HTTP responses.
func (m *APIModule) handleAuthError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "invalid email or password"):
		return fail(c, fiber.StatusUnauthorized, "Invalid email or password")
	case strings.Contains(errStr, "user with this email already exists"):
		return fail(c, fiber.StatusConflict, "User with this email already exists")
	case strings.Contains(errStr, "invalid email format"):
		return failValidation(c, "Validation failed", []string{"invalid email format"})
	case strings.Contains(errStr, "password must be at least"):
		return failValidation(c, "Validation failed", []string{"password must be at least 8 characters"})
	case strings.Contains(errStr, "password must be at most"):
		return failValidation(c, "Validation failed", []string{"password must be at most 72 characters"})
	case strings.Contains(errStr, "cannot delete their own account"):
		return fail(c, fiber.StatusForbidden, "Users cannot delete their own account")
	case strings.Contains(errStr, "access denied"):
		return fail(c, fiber.StatusForbidden, "Access denied")
	case strings.Contains(errStr, "user not found"):
		return fail(c, fiber.StatusNotFound, "User not found")
	default:
		log.Printf("[api] Internal error: %v", err)
		return fail(c, fiber.StatusInternalServerError, "An internal error occurred")
	}
}

// handleTaskError maps task service errors to HTTP responses.
func (m *APIModule) handleTaskError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "access denied"):
		return fail(c, fiber.StatusForbidden, "Access denied")
	case strings.Contains(errStr, "task not found"):
		return fail(c, fiber.StatusNotFound, "Task not found")
	case strings.Contains(errStr, "document not found"):
		return fail(c, fiber.StatusNotFound, "Document not found")
	case strings.Contains(errStr, "document content missing"):
		return fail(c, fiber.StatusNotFound, "Document content missing")
	case strings.Contains(errStr, "invalid assignee reference"):
		return failValidation(c, "Validation failed", []string{"assigned_to must reference an existing user"})
	case strings.Contains(errStr, "document limit exceeded"):
		return failValidation(c, "Validation failed", []string{"a task may have at most 3 documents"})
	case strings.Contains(errStr, "only PDF documents are allowed"):
		return failValidation(c, "Validation failed", []string{"only PDF documents are allowed"})
	case strings.Contains(errStr, "document must not be empty"):
		return failValidation(c, "Validation failed", []string{"uploaded documents must not be empty"})
	case strings.Contains(errStr, "title is required"):
		return failValidation(c, "Validation failed", []string{"title is required"})
	case strings.Contains(errStr, "title must be at most"):
		return failValidation(c, "Validation failed", []string{"title must be at most 255 characters"})
	case strings.Contains(errStr, "description must be at most"):
		return failValidation(c, "Validation failed", []string{"description must be at most 2000 characters"})
	case strings.Contains(errStr, "invalid task status"):
		return failValidation(c, "Validation failed", []string{"status must be pending, in_progress, or completed"})
	case strings.Contains(errStr, "invalid task priority"):
		return failValidation(c, "Validation failed", []string{"priority must be low, medium, or high"})
	case strings.Contains(errStr, "due date must be in the future"):
		return failValidation(c, "Validation failed", []string{"due_date must be in the future"})
	default:
		log.Printf("[api] Internal error: %v", err)
		return fail(c, fiber.StatusInternalServerError, "An internal error occurred")
	}
}
