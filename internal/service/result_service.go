package service

import (
	"context"
	"course_exam_backend/internal/model"
	"course_exam_backend/internal/repository"
	"course_exam_backend/internal/util"
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type ResultService struct {
	Submissions *repository.SubmissionRepository
}

func NewResultService(submissions *repository.SubmissionRepository) *ResultService {
	return &ResultService{Submissions: submissions}
}

// ResultChoice 结果页展示全部选项，并标注正确与所选
type ResultChoice struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	Order     int    `json:"order"`
	IsCorrect bool   `json:"isCorrect"`
	Selected  bool   `json:"selected"`
}

type AnswerDetail struct {
	QuestionID     uint               `json:"questionId"`
	QuestionText   string             `json:"questionText"`
	QuestionType   model.QuestionType `json:"questionType"`
	SelectedChoice *ResultChoice      `json:"selectedChoice"`
	IsCorrect      bool               `json:"isCorrect"`
	PointsEarned   int                `json:"pointsEarned"`
	TotalPoints    int                `json:"totalPoints"`
	AllChoices     []ResultChoice     `json:"allChoices"`
}

type DetailedResult struct {
	Submission          *model.Submission `json:"submission"`
	LessonTitle         string            `json:"lessonTitle"`
	DetailedResults     []AnswerDetail    `json:"detailedResults"`
	TotalPointsPossible int               `json:"totalPointsPossible"`
	TotalPointsEarned   int               `json:"totalPointsEarned"`
	IsPassed            bool              `json:"isPassed"`
	PassingScore        int               `json:"passingScore"`
}

// CanView 本人或教师/管理员可查看
func CanView(sub *model.Submission, viewerID uint, role model.UserRole) bool {
	return sub.StudentID == viewerID || role.IsReviewer()
}

func (s *ResultService) GetResult(ctx context.Context, submissionID, viewerID uint, role model.UserRole) (*DetailedResult, error) {
	sub, err := s.Submissions.FindByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubmissionNotFound
		}
		return nil, err
	}
	if !CanView(sub, viewerID, role) {
		return nil, util.ErrPermissionDenied
	}
	return s.Assemble(ctx, sub)
}

// Assemble 只读：汇总每条作答对应的题目、选项与得分
func (s *ResultService) Assemble(ctx context.Context, sub *model.Submission) (*DetailedResult, error) {
	answers, err := s.Submissions.ListAnswersWithDetails(ctx, sub.ID)
	if err != nil {
		return nil, err
	}

	details := make([]AnswerDetail, 0, len(answers))
	for _, a := range answers {
		detail, err := toAnswerDetail(a)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}

	return &DetailedResult{
		Submission:          sub,
		LessonTitle:         sub.Lesson.Title,
		DetailedResults:     details,
		TotalPointsPossible: lo.SumBy(details, func(d AnswerDetail) int { return d.TotalPoints }),
		TotalPointsEarned:   lo.SumBy(details, func(d AnswerDetail) int { return d.PointsEarned }),
		IsPassed:            sub.Passed(),
		PassingScore:        model.PassingScore,
	}, nil
}

func toAnswerDetail(a model.SubmissionAnswer) (AnswerDetail, error) {
	all := make([]ResultChoice, 0, len(a.Question.Choices))
	if err := copier.Copy(&all, &a.Question.Choices); err != nil {
		return AnswerDetail{}, fmt.Errorf("copy choices of question %d: %w", a.QuestionID, err)
	}

	var selected *ResultChoice
	if a.SelectedChoice != nil {
		selected = &ResultChoice{
			ID:        a.SelectedChoice.ID,
			Text:      a.SelectedChoice.Text,
			Order:     a.SelectedChoice.Order,
			IsCorrect: a.SelectedChoice.IsCorrect,
			Selected:  true,
		}
		for i := range all {
			all[i].Selected = all[i].ID == selected.ID
		}
	}

	return AnswerDetail{
		QuestionID:     a.QuestionID,
		QuestionText:   a.Question.Text,
		QuestionType:   a.Question.Type,
		SelectedChoice: selected,
		IsCorrect:      a.IsCorrect,
		PointsEarned:   a.PointsEarned,
		TotalPoints:    a.Question.Points,
		AllChoices:     all,
	}, nil
}
