package util

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrEmailRegistered         = errors.New("email already registered")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrPermissionDenied        = errors.New("permission denied")
	ErrCourseNotFound          = errors.New("course not found")
	ErrLessonNotFound          = errors.New("lesson not found")
	ErrChoiceNotFound          = errors.New("choice not found")
	ErrSubmissionNotFound      = errors.New("submission not found")
	ErrSubmissionAlreadyGraded = errors.New("submission already graded")
	ErrInvalidQuestionType     = errors.New("invalid question type")
	ErrInvalidPoints           = errors.New("points must be at least 1")
	ErrChoicesRequired         = errors.New("choice questions need at least one choice")
	ErrMultipleCorrectChoices  = errors.New("at most one choice may be marked correct")
	ErrInvalidID               = errors.New("invalid id")
)
