package handlers

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mssola/user_agent"
	"gorm.io/gorm"

	"updigital/internal/auth"
	"updigital/internal/config"
	"updigital/internal/models"
	"updigital/internal/sessions"
	"updigital/internal/tasks"
	"updigital/internal/utils"
	"updigital/internal/utils/logger"
)

type AuthHandler struct {
	workflow *auth.Workflow
	sessions *sessions.Store
	db       *gorm.DB
	tasks    *tasks.TaskClient
	cookie   config.SessionConfig
	log      *logger.Logger
}

func NewAuthHandler(workflow *auth.Workflow, store *sessions.Store, db *gorm.DB, taskClient *tasks.TaskClient, cookie config.SessionConfig) *AuthHandler {
	return &AuthHandler{
		workflow: workflow,
		sessions: store,
		db:       db,
		tasks:    taskClient,
		cookie:   cookie,
		log:      logger.New("AUTH_HANDLER"),
	}
}

type SignupRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"firstName" validate:"required,max=255"`
	LastName  string `json:"lastName" validate:"required,max=255"`
}

type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyResetCodeRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Code     string `json:"code" validate:"required"`
	Password string `json:"new_password" validate:"required,min=8"`
}

// Signup registers a new account and logs it in.
// @Summary Sign up
// @Description Create an account, bind the session and send a verification mail
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup details"
// @Success 200 {object} map[string]string "Account id"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 409 {object} map[string]string "Email already registered"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	sessionID, err := h.ensureSession(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create session"})
	}

	id, err := h.workflow.Signup(c.Request().Context(), sessionID, auth.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if errors.Is(err, auth.ErrConflict) {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Email already registered"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create account"})
	}

	return c.JSON(http.StatusOK, map[string]string{"id": id})
}

// Login authenticates credentials and binds the session.
// @Summary Log in
// @Description Verify credentials and bind the session to the account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body CredentialsRequest true "Credentials"
// @Success 200 {object} map[string]string "Account id"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	sessionID, err := h.ensureSession(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create session"})
	}

	id, err := h.workflow.Login(c.Request().Context(), sessionID, req.Email, req.Password)
	if errors.Is(err, auth.ErrUnauthorized) {
		// Same body for unknown email and wrong password.
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Login failed"})
	}

	h.recordLogin(c, id, sessionID)

	return c.JSON(http.StatusOK, map[string]string{"id": id})
}

// Logout destroys the session.
// @Summary Log out
// @Tags auth
// @Success 204 "Session destroyed"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	cookie, err := c.Cookie(h.cookie.CookieName)
	if err == nil && cookie.Value != "" {
		if err := h.workflow.Logout(c.Request().Context(), cookie.Value); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Logout failed"})
		}
	}

	c.SetCookie(&http.Cookie{
		Name:     h.cookie.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	return c.NoContent(http.StatusNoContent)
}

// VerifyEmail marks the account matching the code as verified.
// @Summary Verify email
// @Description Activate the account matching the confirmation code
// @Tags auth
// @Produce plain
// @Param code path string true "Confirmation code"
// @Success 200 {string} string "Email has been activated!"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/verify/{code} [get]
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	code := c.Param("code")

	outcome, err := h.workflow.VerifyEmail(c.Request().Context(), code)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Verification failed"})
	}

	// An unknown code still answers 200; the body carries the outcome.
	return c.String(http.StatusOK, outcome.Message())
}

// GetMe returns the authenticated account.
// @Summary Current account
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 404 {object} map[string]string "Not found"
// @Router /auth/me [get]
func (h *AuthHandler) GetMe(c echo.Context) error {
	userID, _ := c.Get("userID").(string)

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "User not found"})
	}
	return c.JSON(http.StatusOK, user)
}

// RequestPasswordReset issues a reset code and mails it.
// @Summary Request password reset
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Email"
// @Success 200 {object} map[string]string "Reset code sent if email exists"
// @Router /auth/password-reset [post]
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	// Same answer whether or not the email exists.
	const answer = "If the email exists, a reset code will be sent"

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return c.JSON(http.StatusOK, map[string]string{"message": answer})
	}

	code := generateResetCode()
	reset := models.PasswordReset{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}
	if err := h.db.Create(&reset).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create reset code"})
	}

	if h.tasks != nil {
		if err := h.tasks.EnqueueResetEmail(c.Request().Context(), tasks.ResetEmailTask{
			UserID: user.ID,
			Code:   code,
		}); err != nil {
			h.log.Warn("reset mail for %s not dispatched: %v", user.Email, err)
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"message": answer})
}

// VerifyResetCode consumes a reset code and sets a new password.
// @Summary Verify reset code and set new password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyResetCodeRequest true "Reset code and new password"
// @Success 200 {object} map[string]string "Password reset successful"
// @Failure 400 {object} map[string]string "Invalid or expired reset code"
// @Router /auth/password-reset/verify [post]
func (h *AuthHandler) VerifyResetCode(c echo.Context) error {
	var req VerifyResetCodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid reset code"})
	}

	var reset models.PasswordReset
	if err := h.db.Where("user_id = ? AND code = ? AND used = ? AND expires_at > ?",
		user.ID, req.Code, false, time.Now()).First(&reset).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid or expired reset code"})
	}

	hasher := auth.NewBcryptHasher()
	hashed, err := hasher.Hash(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to hash password"})
	}

	if err := h.db.Model(&user).Update("password", hashed).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to reset password"})
	}
	if err := h.db.Model(&reset).Update("used", true).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to reset password"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Password reset successfully"})
}

// ensureSession returns the request's session id, creating a fresh
// anonymous session and setting the cookie when none exists yet.
func (h *AuthHandler) ensureSession(c echo.Context) (string, error) {
	if cookie, err := c.Cookie(h.cookie.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	id, err := h.sessions.Create(c.Request().Context())
	if err != nil {
		return "", err
	}

	c.SetCookie(&http.Cookie{
		Name:     h.cookie.CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.cookie.Secure,
	})

	return id, nil
}

// recordLogin stores an audit row for a successful login. Failures
// are logged, never surfaced.
func (h *AuthHandler) recordLogin(c echo.Context, userID, sessionID string) {
	ua := user_agent.New(c.Request().UserAgent())
	browser, _ := ua.Browser()

	deviceType := "desktop"
	if ua.Mobile() {
		deviceType = "mobile"
	}

	audit := models.LoginAudit{
		UserID:     userID,
		SessionID:  sessionID,
		IPAddress:  utils.GetIPAddress(c.Request()),
		UserAgent:  c.Request().UserAgent(),
		Browser:    browser,
		OS:         ua.OS(),
		DeviceType: deviceType,
	}

	if err := h.db.Create(&audit).Error; err != nil {
		h.log.Warn("login audit for %s not recorded: %v", userID, err)
	}
}

// generateResetCode generates a 6-digit reset code
func generateResetCode() string {
	code := rand.Intn(900000) + 100000
	return fmt.Sprintf("%06d", code)
}
