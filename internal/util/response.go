package util

import (
	"course_exam_backend/pkg/logger"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构；出错时带上 requestId 方便对照日志
type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	ErrorWithData(c, code, message, nil)
}

func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Code:      code,
		Message:   message,
		Data:      data,
		RequestID: c.GetString(ContextRequestIDKey),
	})
}

// SeeOther 提交表单后跳转到结果页（POST/Redirect/GET）
func SeeOther(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// Found 无权访问时静默跳转，不暴露资源是否存在
func Found(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.Error(err),
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString(ContextRequestIDKey)),
	)
	InternalServerError(c)
}

// StatusFor 把业务错误映射为 HTTP 状态码，未知错误返回 500
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrCourseNotFound),
		errors.Is(err, ErrLessonNotFound),
		errors.Is(err, ErrChoiceNotFound),
		errors.Is(err, ErrSubmissionNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrInvalidID):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidQuestionType),
		errors.Is(err, ErrInvalidPoints),
		errors.Is(err, ErrChoicesRequired),
		errors.Is(err, ErrMultipleCorrectChoices):
		return http.StatusBadRequest
	case errors.Is(err, ErrEmailRegistered),
		errors.Is(err, ErrSubmissionAlreadyGraded):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Fail 按 StatusFor 输出错误；500 记录日志且不回显内部错误
func Fail(c *gin.Context, err error) {
	code := StatusFor(err)
	switch code {
	case http.StatusInternalServerError:
		LogInternalError(c, err)
	case http.StatusNotFound:
		NotFound(c)
	default:
		Error(c, code, err.Error())
	}
}
