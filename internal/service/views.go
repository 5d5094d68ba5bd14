package service

import (
	"course_exam_backend/internal/model"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
)

// 面向学生的视图不包含 isCorrect

type PublicChoice struct {
	ID    uint   `json:"id"`
	Text  string `json:"text"`
	Order int    `json:"order"`
}

type PublicQuestion struct {
	ID      uint               `json:"id"`
	Text    string             `json:"text"`
	Type    model.QuestionType `json:"type"`
	Points  int                `json:"points"`
	Order   int                `json:"order"`
	Choices []PublicChoice     `json:"choices"`
}

type LessonSummary struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

type LessonDetail struct {
	LessonSummary
	Content   string           `json:"content"`
	Questions []PublicQuestion `json:"questions"`
}

type CourseSummary struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
	Lessons     []LessonSummary `json:"lessons"`
}

type CourseDetail struct {
	ID          uint           `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"createdAt"`
	Lessons     []LessonDetail `json:"lessons"`
}

func toPublicChoices(choices []model.Choice) ([]PublicChoice, error) {
	out := make([]PublicChoice, 0, len(choices))
	if err := copier.Copy(&out, &choices); err != nil {
		return nil, fmt.Errorf("copy choices: %w", err)
	}
	return out, nil
}

func toPublicQuestions(qs []model.Question) ([]PublicQuestion, error) {
	out := make([]PublicQuestion, 0, len(qs))
	for _, q := range qs {
		choices, err := toPublicChoices(q.Choices)
		if err != nil {
			return nil, err
		}
		out = append(out, PublicQuestion{
			ID:      q.ID,
			Text:    q.Text,
			Type:    q.Type,
			Points:  q.Points,
			Order:   q.Order,
			Choices: choices,
		})
	}
	return out, nil
}

func toLessonSummary(l model.Lesson) LessonSummary {
	return LessonSummary{ID: l.ID, Title: l.Title, Description: l.Description, Order: l.Order}
}

func toLessonDetail(l model.Lesson) (LessonDetail, error) {
	questions, err := toPublicQuestions(l.Questions)
	if err != nil {
		return LessonDetail{}, err
	}
	return LessonDetail{
		LessonSummary: toLessonSummary(l),
		Content:       l.Content,
		Questions:     questions,
	}, nil
}

func toCourseSummary(c model.Course) CourseSummary {
	lessons := make([]LessonSummary, 0, len(c.Lessons))
	for _, l := range c.Lessons {
		lessons = append(lessons, toLessonSummary(l))
	}
	return CourseSummary{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		Lessons:     lessons,
	}
}

func toCourseDetail(c model.Course) (CourseDetail, error) {
	lessons := make([]LessonDetail, 0, len(c.Lessons))
	for _, l := range c.Lessons {
		detail, err := toLessonDetail(l)
		if err != nil {
			return CourseDetail{}, err
		}
		lessons = append(lessons, detail)
	}
	return CourseDetail{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		Lessons:     lessons,
	}, nil
}
