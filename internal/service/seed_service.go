package service

import (
	"context"
	"course_exam_backend/internal/model"
	"course_exam_backend/internal/repository"
	"course_exam_backend/pkg/logger"
	"fmt"

	"go.uber.org/zap"
)

type seedQuestion struct {
	Text    string
	Points  int
	Choices []model.Choice
}

type seedLesson struct {
	Title       string
	Description string
	Content     string
	Questions   []seedQuestion
}

type seedCourse struct {
	Name        string
	Description string
	Lessons     []seedLesson
}

var sampleCourses = []seedCourse{
	{
		Name:        "Python Basics",
		Description: "Learn the fundamentals of Python programming",
		Lessons: []seedLesson{{
			Title:       "Introduction to Python",
			Description: "Basic concepts of Python",
			Content:     "Python is a high-level programming language...",
			Questions: []seedQuestion{
				{
					Text:   "What is Python?",
					Points: 5,
					Choices: []model.Choice{
						{Text: "A high-level programming language", IsCorrect: true},
						{Text: "A type of snake"},
						{Text: "A database"},
					},
				},
				{
					Text:   "What is the correct way to create a list in Python?",
					Points: 5,
					Choices: []model.Choice{
						{Text: "my_list = [1, 2, 3]", IsCorrect: true},
						{Text: "my_list = (1, 2, 3)"},
						{Text: "my_list = {1, 2, 3}"},
					},
				},
			},
		}},
	},
	{
		Name:        "Django Web Development",
		Description: "Build web applications with Django",
		Lessons: []seedLesson{{
			Title:       "Django Models",
			Description: "Understanding Django models",
			Content:     "Django models define the structure of your database...",
			Questions: []seedQuestion{
				{
					Text:   "What is a Django Model?",
					Points: 10,
					Choices: []model.Choice{
						{Text: "A Python class that represents a database table", IsCorrect: true},
						{Text: "A template file"},
						{Text: "A URL pattern"},
					},
				},
			},
		}},
	},
}

const (
	SampleUserEmail    = "testuser@example.com"
	SampleUserPassword = "password123"
)

// SeedService 写入示例数据，可重复执行
type SeedService struct {
	Courses *repository.CourseRepository
	Users   *repository.UserRepository
	Cache   *repository.CatalogCache
}

func NewSeedService(courses *repository.CourseRepository, users *repository.UserRepository, cache *repository.CatalogCache) *SeedService {
	return &SeedService{Courses: courses, Users: users, Cache: cache}
}

func (s *SeedService) Seed(ctx context.Context) error {
	hashed, err := HashPassword(SampleUserPassword)
	if err != nil {
		return err
	}
	user := &model.User{Name: "testuser", Email: SampleUserEmail, Password: hashed, Role: model.Student}
	if err := s.Users.FirstOrCreate(ctx, user); err != nil {
		return fmt.Errorf("seed user: %w", err)
	}

	created := 0
	for _, sc := range sampleCourses {
		course := &model.Course{Name: sc.Name, Description: sc.Description}
		if err := s.Courses.FirstOrCreateCourse(ctx, course); err != nil {
			return fmt.Errorf("seed course %q: %w", sc.Name, err)
		}

		for i, sl := range sc.Lessons {
			lesson := &model.Lesson{
				CourseID:    course.ID,
				Title:       sl.Title,
				Description: sl.Description,
				Content:     sl.Content,
				Order:       i + 1,
			}
			if err := s.Courses.FirstOrCreateLesson(ctx, lesson); err != nil {
				return fmt.Errorf("seed lesson %q: %w", sl.Title, err)
			}

			for j, sq := range sl.Questions {
				choices := make([]model.Choice, len(sq.Choices))
				for k, c := range sq.Choices {
					c.Order = k + 1
					choices[k] = c
				}
				q := &model.Question{
					LessonID: lesson.ID,
					Text:     sq.Text,
					Type:     model.MultipleChoice,
					Points:   sq.Points,
					Order:    j + 1,
					Choices:  choices,
				}
				ok, err := s.Courses.FirstOrCreateQuestion(ctx, q)
				if err != nil {
					return fmt.Errorf("seed question %q: %w", sq.Text, err)
				}
				if ok {
					created++
				}
			}
		}
	}

	// 种子可能补齐了课程或课时，缓存一律作废
	s.Cache.Invalidate(ctx)
	logger.Log.Info("sample data seeded",
		zap.String("user", SampleUserEmail),
		zap.Int("questions_created", created),
	)
	return nil
}
