package service

import (
	"context"
	"course_exam_backend/internal/model"
	"course_exam_backend/internal/repository"
	"course_exam_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

// AuthoringService 教师维护课程内容
type AuthoringService struct {
	Courses     *repository.CourseRepository
	Submissions *repository.SubmissionRepository
	Cache       *repository.CatalogCache
}

func NewAuthoringService(courses *repository.CourseRepository, submissions *repository.SubmissionRepository, cache *repository.CatalogCache) *AuthoringService {
	return &AuthoringService{Courses: courses, Submissions: submissions, Cache: cache}
}

type CourseReq struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

type LessonReq struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Order       int    `json:"order"`
}

type ChoiceReq struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"isCorrect"`
	Order     int    `json:"order"`
}

type QuestionReq struct {
	Text    string      `json:"text" binding:"required"`
	Type    string      `json:"type" binding:"required,oneof=MC TF SA"`
	Points  int         `json:"points" binding:"required,min=1"`
	Order   int         `json:"order"`
	Choices []ChoiceReq `json:"choices"`
}

func (s *AuthoringService) CreateCourse(ctx context.Context, req CourseReq) (*model.Course, error) {
	course := &model.Course{Name: req.Name, Description: req.Description}
	if err := s.Courses.CreateCourse(ctx, course); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx)
	return course, nil
}

func (s *AuthoringService) CreateLesson(ctx context.Context, courseID uint, req LessonReq) (*model.Lesson, error) {
	if _, err := s.Courses.FindCourse(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	lesson := &model.Lesson{
		CourseID:    courseID,
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Order:       req.Order,
	}
	if err := s.Courses.CreateLesson(ctx, lesson); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx)
	return lesson, nil
}

func (s *AuthoringService) CreateQuestion(ctx context.Context, lessonID uint, req QuestionReq) (*model.Question, error) {
	if _, err := s.Courses.FindLesson(ctx, lessonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}

	q := &model.Question{
		LessonID: lessonID,
		Text:     req.Text,
		Type:     model.QuestionType(req.Type),
		Points:   req.Points,
		Order:    req.Order,
	}
	for _, c := range req.Choices {
		q.Choices = append(q.Choices, model.Choice{Text: c.Text, IsCorrect: c.IsCorrect, Order: c.Order})
	}

	if err := s.Courses.CreateQuestion(ctx, q); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx)
	return q, nil
}

// DeleteChoice 引用该选项的作答保留，所选选项置空
func (s *AuthoringService) DeleteChoice(ctx context.Context, choiceID uint) error {
	if err := s.Courses.DeleteChoice(ctx, choiceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrChoiceNotFound
		}
		return err
	}
	s.Cache.Invalidate(ctx)
	return nil
}

// DeleteSubmission 删除提交及其作答，学生可重新作答
func (s *AuthoringService) DeleteSubmission(ctx context.Context, submissionID uint) error {
	if err := s.Submissions.Delete(ctx, submissionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrSubmissionNotFound
		}
		return err
	}
	return nil
}

func (s *AuthoringService) ListSubmissions(ctx context.Context, lessonID uint) ([]repository.SubmissionListRow, error) {
	if _, err := s.Courses.FindLesson(ctx, lessonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}
	return s.Submissions.ListByLesson(ctx, lessonID)
}
