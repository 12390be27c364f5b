package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"videohub/internal/apperr"
	"videohub/internal/logging"
)

type apiResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

type apiError struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

func respond(c *gin.Context, status int, data any, message string) {
	if data == nil {
		data = gin.H{}
	}
	c.JSON(status, apiResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// respondError writes the error envelope for err. Internal causes are logged
// and never sent to the client.
func respondError(c *gin.Context, route string, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)

	message := "Internal server error"
	details := []string{}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
		if len(appErr.Details) > 0 {
			details = appErr.Details
		}
	}

	l := logging.FromContext(c.Request.Context())
	if kind == apperr.KindInternal {
		l.Error("request failed", "route", route, "error", err)
	} else {
		l.Debug("request rejected", "route", route, "kind", kind.String(), "message", message)
	}

	c.AbortWithStatusJSON(status, apiError{
		StatusCode: status,
		Message:    message,
		Success:    false,
		Errors:     details,
	})
}

func respondValidationError(c *gin.Context, route string, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			case "email":
				details = append(details, fmt.Sprintf("%s must be a valid email", field))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		respondError(c, route, apperr.Validation("validation failed", details...))
		return
	}

	respondError(c, route, apperr.Validation("invalid body", err.Error()))
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
