package ui

import (
	"errors"
	"log"
	"net/http"

	"exodash/domain/core"
	apperrors "exodash/internal/errors"

	"github.com/gin-gonic/gin"
)

// statusFor maps error codes to HTTP statuses.
func statusFor(code string) int {
	switch code {
	case apperrors.CodeNotFound, apperrors.CodeUnknownMission:
		return http.StatusNotFound
	case apperrors.CodeFieldValidation, apperrors.CodeIncompleteRecord, apperrors.CodeInvalidInput,
		apperrors.CodeValidationError, apperrors.CodeCsvParse:
		return http.StatusUnprocessableEntity
	case apperrors.CodeUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case apperrors.CodeAlreadyInProgress, apperrors.CodeNotReady:
		return http.StatusConflict
	case apperrors.CodeServiceUnreachable:
		return http.StatusServiceUnavailable
	case apperrors.CodeExternalService:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeError renders err as {"error", "code"} plus the structured fields of domain
// errors so clients can localize them.
func writeError(c *gin.Context, err error) {
	if errors.Is(err, core.ErrSuperseded) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "SUPERSEDED"})
		return
	}

	code := apperrors.GetCode(err)
	if code == "" {
		code = apperrors.CodeInternalError
	}
	status := statusFor(code)
	body := gin.H{"error": err.Error(), "code": code}

	var fe *core.FieldValidationError
	var ie *core.IncompleteRecordError
	var pe *core.CsvParseError
	switch {
	case errors.As(err, &fe):
		body["field"] = fe.Field
		body["reason"] = fe.Reason
	case errors.As(err, &ie):
		body["missing"] = ie.Missing
	case errors.As(err, &pe):
		body["row"] = pe.Row
	}

	if status >= http.StatusInternalServerError {
		log.Printf("[API] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, body)
}
