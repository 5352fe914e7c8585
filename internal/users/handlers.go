package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/crewdesk/backend/internal/db"
	apperrors "github.com/crewdesk/backend/internal/errors"
	"github.com/crewdesk/backend/internal/mail"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type CreateUserRequest struct {
	FullName string   `json:"fullName"`
	Email    string   `json:"email"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

type UpdateUserRequest struct {
	FullName string   `json:"fullName"`
	Email    string   `json:"email"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	Active   *bool    `json:"active"`
}

type ResetPasswordRequest struct {
	Password string `json:"password"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Roles     []string  `json:"roles"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type Handlers struct {
	users  *db.UserRepository
	mailer *mail.Mailer
}

func NewHandlers(users *db.UserRepository, mailer *mail.Mailer) *Handlers {
	return &Handlers{
		users:  users,
		mailer: mailer,
	}
}

func (h *Handlers) List(w http.ResponseWriter, r *http.Request) error {
	users, err := h.users.List(r.Context())
	if err != nil {
		return apperrors.DatabaseError("failed to list users").WithCause(err)
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toResponse(u))
	}

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, resp)
	return nil
}

func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) error {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return apperrors.BadRequest("invalid user id")
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		return mapUserErr(err)
	}

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, toResponse(user))
	return nil
}

func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) error {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	if err := validateCreateRequest(&req); err != nil {
		return apperrors.ValidationError(err.Error())
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.InternalError("failed to hash password").WithCause(err)
	}

	roles := req.Roles
	if len(roles) == 0 {
		roles = []string{"Employee"}
	}

	now := time.Now()
	user := &db.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: string(passwordHash),
		Roles:        roles,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.users.Create(r.Context(), user); err != nil {
		return mapUserErr(err)
	}

	// Fire-and-forget: the response never waits on SMTP.
	go h.mailer.SendWelcome(context.Background(), user.FullName, user.Email, user.Username, user.Roles)

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusCreated, MessageResponse{
		Message: fmt.Sprintf("new user %s created successfully", user.Username),
	})
	return nil
}

func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) error {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return apperrors.BadRequest("invalid user id")
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	if err := validateUpdateRequest(&req); err != nil {
		return apperrors.ValidationError(err.Error())
	}

	user := &db.User{
		ID:       id,
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Roles:    req.Roles,
		Active:   *req.Active,
	}

	if err := h.users.Update(r.Context(), user); err != nil {
		return mapUserErr(err)
	}

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("user %s updated successfully", user.Username),
	})
	return nil
}

func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) error {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return apperrors.BadRequest("invalid user id")
	}

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	if req.Password == "" {
		return apperrors.ValidationError("password field is empty")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.InternalError("failed to hash password").WithCause(err)
	}

	if err := h.users.UpdatePassword(r.Context(), id, string(passwordHash)); err != nil {
		return mapUserErr(err)
	}

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, MessageResponse{
		Message: "password updated successfully",
	})
	return nil
}

// Delete removes the account; the user's tasks go with it via the cascading
// foreign key.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) error {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return apperrors.BadRequest("invalid user id")
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		return mapUserErr(err)
	}

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, MessageResponse{
		Message: "user and associated tasks deleted successfully",
	})
	return nil
}

func toResponse(u *db.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Roles:     u.Roles,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func mapUserErr(err error) error {
	switch {
	case errors.Is(err, db.ErrUserNotFound):
		return apperrors.UserNotFound()
	case errors.Is(err, db.ErrUsernameExists):
		return apperrors.UsernameExists()
	case errors.Is(err, db.ErrEmailExists):
		return apperrors.EmailExists()
	default:
		return apperrors.DatabaseError("user operation failed").WithCause(err)
	}
}
