// Package testutil builds throwaway databases and content fixtures for tests.
package testutil

import (
	"course_exam_backend/internal/model"
	"course_exam_backend/pkg/database"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with the full schema.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, role model.UserRole) *model.User {
	t.Helper()
	var count int64
	db.Model(&model.User{}).Count(&count)
	u := &model.User{
		Name:     fmt.Sprintf("user%d", count+1),
		Email:    fmt.Sprintf("user%d@example.com", count+1),
		Password: "x",
		Role:     role,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// LessonFixture is a course with one lesson. Every question has two
// choices: Choices[0] is correct, Choices[1] is wrong.
type LessonFixture struct {
	Course    model.Course
	Lesson    model.Lesson
	Questions []model.Question
}

func (f *LessonFixture) Correct(i int) uint {
	return f.Questions[i].Choices[0].ID
}

func (f *LessonFixture) Wrong(i int) uint {
	return f.Questions[i].Choices[1].ID
}

// SeedLesson creates a lesson whose questions carry the given points.
func SeedLesson(t *testing.T, db *gorm.DB, points ...int) *LessonFixture {
	t.Helper()

	course := model.Course{Name: "Go Basics", Description: "fixture course"}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}

	lesson := model.Lesson{
		CourseID: course.ID,
		Title:    "Lesson 1",
		Content:  "content",
		Order:    1,
	}
	for i, p := range points {
		lesson.Questions = append(lesson.Questions, model.Question{
			Text:   fmt.Sprintf("Question %d", i+1),
			Type:   model.MultipleChoice,
			Points: p,
			Order:  i + 1,
			Choices: []model.Choice{
				{Text: "right", IsCorrect: true, Order: 1},
				{Text: "wrong", IsCorrect: false, Order: 2},
			},
		})
	}
	if err := db.Create(&lesson).Error; err != nil {
		t.Fatalf("create lesson: %v", err)
	}

	return &LessonFixture{Course: course, Lesson: lesson, Questions: lesson.Questions}
}
