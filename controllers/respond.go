package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"hotel-pms/apperror"
	"hotel-pms/middleware"
	"hotel-pms/models"
	"hotel-pms/repository"
	"hotel-pms/services"
	"hotel-pms/utils"
)

// respondError writes err with the status of its kind. Unclassified errors
// are logged in full and answered with a generic message.
func respondError(c *gin.Context, log *logrus.Logger, err error) {
	if ae, ok := apperror.As(err); ok {
		code := ae.HTTPStatus()
		if code >= http.StatusInternalServerError {
			logFailure(c, log, err)
			utils.JSONError(c, code, "Internal server error")
			return
		}
		if ae.Kind == apperror.KindStoreTimeout {
			log.WithError(ae.Err).WithField("path", c.FullPath()).Warn("store timeout")
		}
		if ae.Details != nil {
			utils.JSONErrorDetails(c, code, ae.Message, ae.Details)
			return
		}
		utils.JSONError(c, code, ae.Message)
		return
	}

	switch {
	case errors.Is(err, repository.ErrTimeout):
		utils.JSONError(c, http.StatusRequestTimeout, "the database did not respond in time, please retry")
	case errors.Is(err, repository.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "not found")
	default:
		logFailure(c, log, err)
		utils.JSONError(c, http.StatusInternalServerError, "Internal server error")
	}
}

func logFailure(c *gin.Context, log *logrus.Logger, err error) {
	log.WithFields(logrus.Fields{
		"requestId": c.GetString("requestID"),
		"method":    c.Request.Method,
		"path":      c.FullPath(),
	}).WithError(err).Error("request failed")
}

// respondBindError reports a malformed body or failed binding rule as 400.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		utils.JSONErrorDetails(c, http.StatusBadRequest, "Invalid request payload", fields)
		return
	}
	utils.JSONErrorDetails(c, http.StatusBadRequest, "Invalid request payload", err.Error())
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// actorFrom reads the caller set by middleware.AuthMiddleware.
func actorFrom(c *gin.Context) services.Actor {
	return services.Actor{
		UserID: c.GetString(middleware.ContextUserID),
		Role:   c.GetString(middleware.ContextRole),
	}
}

// parseDateField parses an optional date already checked by the isodate rule.
func parseDateField(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := models.ParseDate(raw)
	if err != nil {
		return nil, apperror.Validation("invalid date %q", raw)
	}
	return &t, nil
}
