package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/canteenrush/canteenrush/internal/auth"
	"github.com/canteenrush/canteenrush/internal/handler/dto"
	"github.com/canteenrush/canteenrush/internal/model"
	"github.com/canteenrush/canteenrush/internal/service"
)

// AccountService is the account behaviour the handlers need.
type AccountService interface {
	Register(ctx context.Context, rollNo, name, pin string) (*model.User, error)
	LoginStudent(ctx context.Context, rollNo, pin string) (*service.LoginResult, error)
	LoginVendor(ctx context.Context, username, password string) (*service.LoginResult, error)
	LoginAdmin(ctx context.Context, username, password string) (*service.LoginResult, error)
	Logout(ctx context.Context, sess *model.Session) error
	Profile(ctx context.Context, sess *model.Session) (*service.Profile, error)
}

// AccountHandler handles registration, logins and the student profile.
type AccountHandler struct {
	svc    AccountService
	logger *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /api/v1/students.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.svc.Register(r.Context(), req.RollNo, req.Name, req.PIN)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("student_registered", "roll_no", user.RollNo)

	writeJSON(w, http.StatusCreated, dto.ToStudentResponse(user))
}

// LoginStudent handles POST /api/v1/sessions/student.
func (h *AccountHandler) LoginStudent(w http.ResponseWriter, r *http.Request) {
	var req dto.StudentLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.LoginStudent(r.Context(), req.RollNo, req.PIN)
	h.finishLogin(w, model.RoleStudent, result, err)
}

// LoginVendor handles POST /api/v1/sessions/vendor.
func (h *AccountHandler) LoginVendor(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.LoginVendor(r.Context(), req.Username, req.Password)
	h.finishLogin(w, model.RoleVendor, result, err)
}

// LoginAdmin handles POST /api/v1/sessions/admin.
func (h *AccountHandler) LoginAdmin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.LoginAdmin(r.Context(), req.Username, req.Password)
	h.finishLogin(w, model.RoleAdmin, result, err)
}

func (h *AccountHandler) finishLogin(w http.ResponseWriter, role model.Role, result *service.LoginResult, err error) {
	if err != nil {
		h.logger.Warn("login_failed", "role", role, "error", err)
		handleServiceError(w, h.logger, err)
		return
	}

	sess := result.Session
	h.logger.Info("login_succeeded", "role", sess.Role, "actor_id", sess.ActorID())

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Role:      sess.Role,
		Name:      sess.Name,
		UserID:    sess.UserID,
		VendorID:  sess.VendorID,
	})
}

// Logout handles DELETE /api/v1/sessions.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	if err := h.svc.Logout(r.Context(), sess); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/me.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.Profile(r.Context(), auth.SessionFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToStudentResponse(profile.User))
}
