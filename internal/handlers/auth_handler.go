package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/bashabari/rental-backend/internal/database"
	"github.com/bashabari/rental-backend/internal/metrics"
	"github.com/bashabari/rental-backend/internal/middleware"
	"github.com/bashabari/rental-backend/internal/models"
	"github.com/bashabari/rental-backend/internal/services"
	"github.com/bashabari/rental-backend/internal/utils"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService  *services.AuthService
	otpService   *services.OTPService
	auditService *services.AuditService
	users        *database.UserRepository
	logger       *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	authService *services.AuthService,
	otpService *services.OTPService,
	auditService *services.AuditService,
	users *database.UserRepository,
	logger *logrus.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		otpService:   otpService,
		auditService: auditService,
		users:        users,
		logger:       logger,
	}
}

// AuthResponse is returned on register and login
type AuthResponse struct {
	Message      string       `json:"message"`
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

// Register handles POST /register/
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	user, tokens, err := h.authService.Register(&req)
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "username_taken",
				Message: err.Error(),
				Code:    "USERNAME_TAKEN",
			})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	metrics.RegistrationsTotal.Inc()

	c.JSON(http.StatusCreated, AuthResponse{
		Message:      "Account created. A verification code has been sent to your phone.",
		User:         user,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// Login handles POST /login/
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	clientIP := utils.GetRealIP(c)
	userAgent := utils.GetUserAgent(c)

	user, tokens, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.auditService.LogLogin(nil, req.Username, false, clientIP, userAgent)
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_credentials",
				Message: "Invalid username or password",
				Code:    "INVALID_CREDENTIALS",
			})
			return
		}
		h.logger.WithError(err).Error("Login failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to log in",
		})
		return
	}

	h.auditService.LogLogin(&user.ID, user.Username, true, clientIP, userAgent)
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	c.JSON(http.StatusOK, AuthResponse{
		Message:      "Logged in",
		User:         user,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// RefreshRequest is the payload for POST /token/refresh/
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh handles POST /token/refresh/
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	tokens, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired refresh token",
			Code:    "INVALID_REFRESH_TOKEN",
		})
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// VerifyOTP handles POST /verify/
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	if err := h.otpService.Verify(userCtx.UserID, req.OTP); err != nil {
		switch {
		case errors.Is(err, services.ErrOTPInvalid):
			metrics.OTPVerifiedTotal.WithLabelValues("failure").Inc()
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_otp",
				Message: "The verification code is incorrect",
				Code:    "INVALID_OTP",
			})
		case errors.Is(err, services.ErrNoOTPPending):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "no_otp_pending",
				Message: "No verification code is pending. Request a new one.",
				Code:    "NO_OTP_PENDING",
			})
		case errors.Is(err, services.ErrAlreadyVerified):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "already_verified",
				Message: "Your phone number is already verified",
				Code:    "ALREADY_VERIFIED",
			})
		default:
			h.logger.WithError(err).Error("OTP verification failed")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to verify code",
			})
		}
		return
	}

	metrics.OTPVerifiedTotal.WithLabelValues("success").Inc()

	c.JSON(http.StatusOK, gin.H{
		"message":  "Phone number verified",
		"verified": true,
	})
}

// VerifyStatus handles GET /verify/ and reports whether the acting
// user's phone verification is still pending
func (h *AuthHandler) VerifyStatus(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	profile, err := h.users.GetProfileByUserID(userCtx.UserID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load profile")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load verification status",
		})
		return
	}

	status := "pending"
	if profile.IsVerified {
		status = "verified"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"verified": profile.IsVerified,
	})
}

// ResendOTP handles POST /resend-otp/
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	if _, err := h.otpService.Resend(userCtx.UserID); err != nil {
		if errors.Is(err, services.ErrAlreadyVerified) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "already_verified",
				Message: "Your phone number is already verified",
				Code:    "ALREADY_VERIFIED",
			})
			return
		}
		h.logger.WithError(err).Error("OTP resend failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to send verification code",
		})
		return
	}

	metrics.OTPIssuedTotal.Inc()

	c.JSON(http.StatusOK, gin.H{
		"message": "A new verification code has been sent",
	})
}

// Me handles GET /me/ and returns the account with its verification state
func (h *AuthHandler) Me(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	user, err := h.users.GetByID(userCtx.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "User not found",
		})
		return
	}

	profile, err := h.users.GetProfileByUserID(userCtx.UserID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load profile")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load profile",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    user,
		"profile": profile,
	})
}

// Logout handles POST /logout/. Tokens are stateless, so logout is a
// client-side discard; the endpoint exists so clients have a uniform flow.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out",
	})
}
