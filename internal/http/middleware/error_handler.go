package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/niouspark-cmd/student-hub-sub000/internal/logger"
	"github.com/niouspark-cmd/student-hub-sub000/internal/repository"
	"github.com/niouspark-cmd/student-hub-sub000/internal/service"
)

// ErrorHandler maps errors pushed onto the gin context to HTTP responses.
// Known taxonomy errors become actionable messages; anything else is masked
// as an internal error and logged.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status, message := mapError(err)

		if status == http.StatusInternalServerError {
			logger.Log.WithFields(logrus.Fields{
				"error":  err.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Error("request failed")
		}

		c.JSON(status, gin.H{"error": message})
	}
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrMinWithdrawal):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidKey):
		return http.StatusBadRequest, "code not recognized"
	case errors.Is(err, service.ErrAuthorization):
		return http.StatusForbidden, "not allowed"
	case errors.Is(err, service.ErrOrderingSuspended):
		return http.StatusServiceUnavailable, "ordering is temporarily suspended"
	case errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrEscrowNotFound),
		errors.Is(err, repository.ErrWalletNotFound),
		errors.Is(err, repository.ErrWithdrawalNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, repository.ErrRaceLost):
		return http.StatusConflict, "mission already taken"
	case errors.Is(err, repository.ErrAlreadyProcessed):
		return http.StatusConflict, "already processed"
	case errors.Is(err, repository.ErrStateConflict):
		return http.StatusConflict, "operation not allowed in current state"
	case errors.Is(err, repository.ErrNotOwner):
		return http.StatusForbidden, "not allowed"
	case errors.Is(err, repository.ErrInsufficientFunds):
		return http.StatusBadRequest, "insufficient funds"
	case errors.Is(err, repository.ErrWalletFrozen):
		return http.StatusForbidden, "wallet is frozen"
	case errors.Is(err, repository.ErrAmountMismatch):
		return http.StatusBadRequest, "paid amount does not match order total"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
