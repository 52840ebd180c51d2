package server

import (
	"net/http"
	"time"

	"github.com/Digital-Creators-Team/lucky-draw-module/errors"
	"github.com/Digital-Creators-Team/lucky-draw-module/middleware"
	"github.com/Digital-Creators-Team/lucky-draw-module/types"
	"github.com/gin-gonic/gin"
)

const ErrUndefinedErrorCode = -99

// ErrorResponse is an alias for types.ErrorResponse
type ErrorResponse = types.ErrorResponse

// SuccessResponse is a type alias for types.SuccessResponse[T]
type SuccessResponse[T any] = types.SuccessResponse[T]

// Success sends a success response
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, types.SuccessResponse[interface{}]{
		StatusCode: statusCode,
		IsSuccess:  true,
		Data:       data,
	})
}

// OK sends a 200 OK response
func OK(c *gin.Context, data interface{}) {
	Success(c, http.StatusOK, data)
}

// Error sends an error response
func Error(c *gin.Context, statusCode int, err error) {
	errorMsg := err.Error()
	errCode := ErrUndefinedErrorCode
	if appErr, ok := errors.As(err); ok {
		errorMsg = appErr.Message
		errCode = appErr.Code
	}

	c.AbortWithStatusJSON(statusCode, types.ErrorResponse{
		StatusCode: statusCode,
		IsSuccess:  false,
		Error: types.ErrorDetail{
			Timestamp:    time.Now().Format(time.RFC3339),
			Path:         c.Request.URL.Path,
			ErrorMessage: errorMsg,
			ErrorCode:    errCode,
			TraceID:      middleware.GetTraceID(c),
		},
	})
}

// ErrorWithMessage sends an error response with a custom message
func ErrorWithMessage(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, types.ErrorResponse{
		StatusCode: statusCode,
		IsSuccess:  false,
		Error: types.ErrorDetail{
			Timestamp:    time.Now().Format(time.RFC3339),
			Path:         c.Request.URL.Path,
			ErrorMessage: message,
			ErrorCode:    ErrUndefinedErrorCode,
			TraceID:      middleware.GetTraceID(c),
		},
	})
}

// BadRequest sends a 400 Bad Request response
func BadRequest(c *gin.Context, err error) {
	Error(c, http.StatusBadRequest, errors.Wrap(err, errors.ErrInvalidRequest, err.Error()))
}

// HandleAppError maps an AppError to its HTTP status; anything else is a 500.
func HandleAppError(c *gin.Context, err error) {
	if appErr, ok := errors.As(err); ok {
		Error(c, errors.HTTPStatusFromCode(appErr.Code), appErr)
		return
	}
	Error(c, http.StatusInternalServerError, err)
}
