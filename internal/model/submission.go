package model

import "time"

type SubmissionStatus string

const (
	StatusInProgress SubmissionStatus = "in_progress"
	StatusSubmitted  SubmissionStatus = "submitted"
	StatusGraded     SubmissionStatus = "graded"
)

// PassingScore 及格线（百分制）
const PassingScore = 60

// Submission 每个学生每节课只有一条记录
// swagger:model Submission
type Submission struct {
	BaseModel
	StudentID      uint               `gorm:"not null;uniqueIndex:idx_submissions_student_lesson,priority:1" json:"studentId"`
	LessonID       uint               `gorm:"not null;uniqueIndex:idx_submissions_student_lesson,priority:2" json:"lessonId"`
	Status         SubmissionStatus   `gorm:"size:20;default:'in_progress';index:idx_submissions_status_submitted,priority:1" json:"status"`
	Score          int                `gorm:"default:0;check:chk_submissions_score,score >= 0 AND score <= 100" json:"score"`
	TotalQuestions int                `gorm:"default:0" json:"totalQuestions"`
	CorrectAnswers int                `gorm:"default:0" json:"correctAnswers"`
	SubmittedAt    *time.Time         `gorm:"index:idx_submissions_status_submitted,priority:2" json:"submittedAt"`
	GradedAt       *time.Time         `json:"gradedAt"`
	Student        User               `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Lesson         Lesson             `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Answers        []SubmissionAnswer `gorm:"constraint:OnDelete:CASCADE" json:"answers,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}

func (s *Submission) Regradable() bool {
	return s.Status == StatusInProgress
}

func (s *Submission) Passed() bool {
	return s.Score >= PassingScore
}

// SubmissionAnswer 每道题一条；选项被删除时 SelectedChoiceID 置空
// swagger:model SubmissionAnswer
type SubmissionAnswer struct {
	BaseModel
	SubmissionID     uint     `gorm:"not null;uniqueIndex:idx_submission_answers_submission_question,priority:1" json:"submissionId"`
	QuestionID       uint     `gorm:"not null;uniqueIndex:idx_submission_answers_submission_question,priority:2" json:"questionId"`
	SelectedChoiceID *uint    `gorm:"index" json:"selectedChoiceId"`
	IsCorrect        bool     `gorm:"default:false" json:"isCorrect"`
	PointsEarned     int      `gorm:"default:0" json:"pointsEarned"`
	Question         Question `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	SelectedChoice   *Choice  `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}

func (SubmissionAnswer) TableName() string {
	return "submission_answers"
}
