package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/crewdesk/backend/internal/db"
	apperrors "github.com/crewdesk/backend/internal/errors"
	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	UserID  string `json:"userId"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type UpdateTaskRequest struct {
	UserID  string `json:"userId"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Status  *bool  `json:"status"`
}

type TaskResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Status    bool      `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CreatedResponse struct {
	Message string       `json:"message"`
	Task    TaskResponse `json:"task"`
}

type Handlers struct {
	tasks *db.TaskRepository
}

func NewHandlers(tasks *db.TaskRepository) *Handlers {
	return &Handlers{tasks: tasks}
}

func (h *Handlers) List(w http.ResponseWriter, r *http.Request) error {
	tasks, err := h.tasks.List(r.Context())
	if err != nil {
		return apperrors.DatabaseError("failed to list tasks").WithCause(err)
	}

	resp := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, toResponse(t))
	}

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, resp)
	return nil
}

func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) error {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return apperrors.BadRequest("invalid task id")
	}

	task, err := h.tasks.GetByID(r.Context(), id)
	if err != nil {
		return mapTaskErr(err)
	}

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, toResponse(task))
	return nil
}

func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) error {
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	if req.UserID == "" || req.Title == "" || req.Content == "" {
		return apperrors.ValidationError("all fields are required")
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return apperrors.BadRequest("invalid user id")
	}

	now := time.Now()
	task := &db.Task{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     req.Title,
		Content:   req.Content,
		Status:    false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.tasks.Create(r.Context(), task); err != nil {
		return mapTaskErr(err)
	}

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusCreated, CreatedResponse{
		Message: "task created successfully",
		Task:    toResponse(task),
	})
	return nil
}

func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) error {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return apperrors.BadRequest("invalid task id")
	}

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	if req.UserID == "" || req.Title == "" || req.Content == "" || req.Status == nil {
		return apperrors.ValidationError("please fill in all fields")
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return apperrors.BadRequest("invalid user id")
	}

	task := &db.Task{
		ID:      id,
		UserID:  userID,
		Title:   req.Title,
		Content: req.Content,
		Status:  *req.Status,
	}

	if err := h.tasks.Update(r.Context(), task); err != nil {
		return mapTaskErr(err)
	}

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, MessageResponse{
		Message: "task updated successfully",
	})
	return nil
}

func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) error {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return apperrors.BadRequest("invalid task id")
	}

	if err := h.tasks.Delete(r.Context(), id); err != nil {
		return mapTaskErr(err)
	}

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("task %s deleted successfully", id),
	})
	return nil
}

func toResponse(t *db.Task) TaskResponse {
	return TaskResponse{
		ID:        t.ID.String(),
		UserID:    t.UserID.String(),
		Username:  t.Username,
		Title:     t.Title,
		Content:   t.Content,
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func mapTaskErr(err error) error {
	switch {
	case errors.Is(err, db.ErrTaskNotFound):
		return apperrors.TaskNotFound()
	case errors.Is(err, db.ErrUserNotFound):
		// Writing a task against a user that no longer exists.
		return apperrors.BadRequest("task owner does not exist")
	default:
		return apperrors.DatabaseError("task operation failed").WithCause(err)
	}
}
