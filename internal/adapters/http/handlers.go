package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/trackbench/core/internal/application/services"
	"github.com/trackbench/core/internal/domain/entities"
	"github.com/trackbench/core/internal/infrastructure/logger"
	"github.com/trackbench/core/internal/ports"
)

// SessionCookieName carries the session token for browser clients; API
// clients may use a bearer Authorization header instead.
const SessionCookieName = "session"

// MessageResponse is a plain confirmation payload
type MessageResponse struct {
	Message string `json:"message"`
}

// statusForError maps domain errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, entities.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, entities.ErrUserNotFound),
		errors.Is(err, entities.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, entities.ErrUserAlreadyExists),
		errors.Is(err, entities.ErrEmailAlreadySubscribed):
		return http.StatusConflict
	case errors.Is(err, entities.ErrTitleRequired),
		errors.Is(err, entities.ErrTitleTooShort),
		errors.Is(err, entities.ErrDueDateRequired),
		errors.Is(err, entities.ErrDueDateInPast),
		errors.Is(err, entities.ErrInvalidPhase),
		errors.Is(err, entities.ErrInvalidEmail):
		return http.StatusBadRequest
	case errors.Is(err, entities.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func domainError(err error) *echo.HTTPError {
	return echo.NewHTTPError(statusForError(err), err.Error())
}

// getIdentityFromContext returns the session username bound by the auth
// middleware.
func getIdentityFromContext(c echo.Context) string {
	if v, ok := c.Get("username").(string); ok {
		return v
	}
	return ""
}

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService *services.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login handles user login
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Unknown username")
		}
		h.logger.Errorw("Login failed", "error", err, "username", req.Username)
		return domainError(err)
	}

	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    response.Token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(response.ExpiresIn),
	})

	return c.JSON(http.StatusOK, response)
}

// Logout handles user logout
func (h *AuthHandler) Logout(c echo.Context) error {
	h.authService.Logout(c.Request().Context(), getIdentityFromContext(c))

	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
	})

	return c.JSON(http.StatusOK, MessageResponse{Message: "Session closed"})
}

// TaskHandler handles server-scoped task requests
type TaskHandler struct {
	taskService          *services.TaskService
	consolidationService *services.ConsolidationService
	logger               *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService, consolidationService *services.ConsolidationService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService:          taskService,
		consolidationService: consolidationService,
		logger:               logger,
	}
}

// CreateTask handles task creation
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), getIdentityFromContext(c), req)
	if err != nil {
		h.logger.Errorw("Create task failed", "error", err)
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, task)
}

// ListTasks returns the tasks visible to the session identity, optionally
// filtered by ?month= and ?year=.
func (h *TaskHandler) ListTasks(c echo.Context) error {
	period, err := periodFromQuery(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tasks, err := h.taskService.ListTasks(c.Request().Context(), getIdentityFromContext(c), period)
	if err != nil {
		h.logger.Errorw("List tasks failed", "error", err)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"tasks": tasks,
		"count": len(tasks),
	})
}

// GetConsolidated returns the merged server+local view.
func (h *TaskHandler) GetConsolidated(c echo.Context) error {
	tasks, err := h.consolidationService.Consolidate(c.Request().Context(), getIdentityFromContext(c))
	if err != nil {
		h.logger.Errorw("Consolidate failed", "error", err)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"tasks": tasks,
		"count": len(tasks),
	})
}

// GetReport returns the month/year report projection.
func (h *TaskHandler) GetReport(c echo.Context) error {
	period, err := periodFromQuery(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if period == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "month and year are required")
	}

	rows, err := h.consolidationService.ReportData(c.Request().Context(), getIdentityFromContext(c), period.Month, period.Year)
	if err != nil {
		h.logger.Errorw("Report failed", "error", err)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"rows":  rows,
		"count": len(rows),
	})
}

// DeleteTask removes a task by id.
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task id")
	}

	removed, err := h.taskService.DeleteTask(c.Request().Context(), getIdentityFromContext(c), id)
	if err != nil {
		h.logger.Errorw("Delete task failed", "error", err, "task_id", id)
		return domainError(err)
	}
	if !removed {
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Task deleted"})
}

func periodFromQuery(c echo.Context) (*ports.Period, error) {
	monthStr := c.QueryParam("month")
	yearStr := c.QueryParam("year")
	if monthStr == "" && yearStr == "" {
		return nil, nil
	}

	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return nil, errors.New("month must be a number between 1 and 12")
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return nil, errors.New("year must be a number")
	}

	period := &ports.Period{Month: month, Year: year}
	if !period.IsValid() {
		return nil, errors.New("invalid month/year")
	}
	return period, nil
}

// ISOTaskHandler handles local checklist requests
type ISOTaskHandler struct {
	isoService *services.ISOTaskService
	logger     *logger.Logger
}

// NewISOTaskHandler creates a new ISO checklist handler
func NewISOTaskHandler(isoService *services.ISOTaskService, logger *logger.Logger) *ISOTaskHandler {
	return &ISOTaskHandler{
		isoService: isoService,
		logger:     logger,
	}
}

// CreateTask appends a checklist entry.
func (h *ISOTaskHandler) CreateTask(c echo.Context) error {
	var req ports.CreateLocalTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.isoService.Create(c.Request().Context(), req)
	if err != nil {
		h.logger.Errorw("Create ISO task failed", "error", err)
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, task)
}

// ListTasks returns the full checklist.
func (h *ISOTaskHandler) ListTasks(c echo.Context) error {
	tasks, err := h.isoService.List(c.Request().Context())
	if err != nil {
		h.logger.Errorw("List ISO tasks failed", "error", err)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"tasks": tasks,
		"count": len(tasks),
	})
}

// MarkDone completes a checklist entry.
func (h *ISOTaskHandler) MarkDone(c echo.Context) error {
	task, err := h.isoService.MarkDone(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.logger.Errorw("Mark ISO task done failed", "error", err, "task_id", c.Param("id"))
		return domainError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// SubscriptionHandler handles mailing-list requests
type SubscriptionHandler struct {
	subscriptionService *services.SubscriptionService
	logger              *logger.Logger
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptionService *services.SubscriptionService, logger *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		logger:              logger,
	}
}

// Subscribe stores a mailing-list address.
func (h *SubscriptionHandler) Subscribe(c echo.Context) error {
	var req ports.SubscribeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	// Validation happens in the service after trimming and case-folding, so
	// a padded address is normalized rather than rejected.
	sub, err := h.subscriptionService.Subscribe(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, entities.ErrInvalidEmail) {
			return echo.NewHTTPError(http.StatusBadRequest, "A valid email address is required")
		}
		if errors.Is(err, entities.ErrEmailAlreadySubscribed) {
			return echo.NewHTTPError(http.StatusConflict, "This email is already registered")
		}
		h.logger.Errorw("Subscribe failed", "error", err)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Email stored",
		"email":   sub.Email,
	})
}

// AuditHandler handles audit log requests
type AuditHandler struct {
	audit  ports.AuditLog
	logger *logger.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(audit ports.AuditLog, logger *logger.Logger) *AuditHandler {
	return &AuditHandler{
		audit:  audit,
		logger: logger,
	}
}

// Append records an externally submitted audit event.
func (h *AuditHandler) Append(c echo.Context) error {
	var req ports.AuditEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	entry, err := h.audit.Append(c.Request().Context(), entities.AuditEntry{
		Level:   entities.AuditLevel(req.Level),
		Message: req.Message,
		Details: req.Details,
		Meta:    req.Meta,
	})
	if err != nil {
		h.logger.Errorw("Append audit entry failed", "error", err)
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, entry)
}

// List returns the retained audit entries, oldest first.
func (h *AuditHandler) List(c echo.Context) error {
	entries, err := h.audit.List(c.Request().Context())
	if err != nil {
		h.logger.Errorw("List audit entries failed", "error", err)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}

// Clear wipes the audit log. The confirm query parameter must be set; the
// operation is destructive and admin-only.
func (h *AuditHandler) Clear(c echo.Context) error {
	if c.QueryParam("confirm") != "true" {
		return echo.NewHTTPError(http.StatusBadRequest, "Pass confirm=true to clear the audit log")
	}

	if err := h.audit.Clear(c.Request().Context()); err != nil {
		h.logger.Errorw("Clear audit log failed", "error", err)
		return domainError(err)
	}

	h.logger.LogSecurityEvent("audit_log_cleared", getIdentityFromContext(c), c.RealIP(), nil)

	return c.JSON(http.StatusOK, MessageResponse{Message: "Audit log cleared"})
}
