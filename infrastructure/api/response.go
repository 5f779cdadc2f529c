package api

import (
	"net/http"
	"rosterhub/errors"

	"github.com/gin-gonic/gin"
)

// Response is the envelope of every HTTP answer.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

func Error(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error:   &ErrorInfo{Code: code, Message: message},
	})
}

// FromError maps a service error to its status and code.
// Internal errors never leak their message.
func FromError(c *gin.Context, err error) {
	status, code := errors.ToHTTP(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	Error(c, status, code, message)
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, errors.CodeBadUserInput, message)
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, errors.CodeUnauthenticated, "missing or invalid token")
}

func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, errors.CodeForbidden, message)
}
