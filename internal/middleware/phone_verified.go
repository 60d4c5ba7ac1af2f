package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/bashabari/rental-backend/internal/database"
)

// RequirePhoneVerified gates listing creation behind phone verification.
// The check reads the profile on every request rather than trusting a
// token claim, so a verification done after login takes effect
// immediately. Must be used after AuthMiddleware.
func RequirePhoneVerified(userRepo *database.UserRepository, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "User context not found",
				"code":    "MISSING_USER_CONTEXT",
			})
			c.Abort()
			return
		}

		verified, err := userRepo.IsPhoneVerified(userCtx.UserID)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			logger.WithError(err).Error("Phone verification check failed")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Failed to check verification status",
				"code":    "VERIFICATION_CHECK_FAILED",
			})
			c.Abort()
			return
		}

		if !verified {
			c.JSON(http.StatusForbidden, gin.H{
				"error":    "phone_not_verified",
				"message":  "Please verify your phone number before creating a listing",
				"code":     "PHONE_NOT_VERIFIED",
				"redirect": "/verify/",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
