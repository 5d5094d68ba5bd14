package service

import (
	"context"
	"course_exam_backend/internal/model"
	"course_exam_backend/internal/repository"
	"course_exam_backend/internal/util"
	"course_exam_backend/pkg/logger"
	"course_exam_backend/pkg/monitoring"
	"course_exam_backend/pkg/tracing"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PostedAnswers 题目 ID -> 表单中提交的选项 ID 原文
type PostedAnswers map[uint]string

type GradingService struct {
	DB          *gorm.DB
	Courses     *repository.CourseRepository
	Submissions *repository.SubmissionRepository
	Archive     *ArchiveService
	Now         func() time.Time
}

func NewGradingService(db *gorm.DB, courses *repository.CourseRepository, submissions *repository.SubmissionRepository, archive *ArchiveService) *GradingService {
	return &GradingService{
		DB:          db,
		Courses:     courses,
		Submissions: submissions,
		Archive:     archive,
		Now:         time.Now,
	}
}

// ComputeScore 百分制向下取整；总分为 0 时得 0
func ComputeScore(earned, total int) int {
	if total <= 0 {
		return 0
	}
	return earned * 100 / total
}

type ExamForm struct {
	Lesson             LessonSummary     `json:"lesson"`
	Content            string            `json:"content"`
	Questions          []PublicQuestion  `json:"questions"`
	ExistingSubmission *model.Submission `json:"existingSubmission,omitempty"`
}

func (s *GradingService) GetExamForm(ctx context.Context, lessonID, studentID uint) (*ExamForm, error) {
	lesson, err := s.Courses.FindLessonWithQuestions(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}

	existing, err := s.Submissions.FindByStudentAndLesson(ctx, studentID, lessonID)
	if err != nil {
		return nil, err
	}

	questions, err := toPublicQuestions(lesson.Questions)
	if err != nil {
		return nil, err
	}

	return &ExamForm{
		Lesson:             toLessonSummary(*lesson),
		Content:            lesson.Content,
		Questions:          questions,
		ExistingSubmission: existing,
	}, nil
}

type gradeTally struct {
	Correct int
	Earned  int
	Total   int
}

// scoreAnswers 遍历课时的每道题。提交的选项 ID 无法解析或不存在时跳过该题；
// 选项不必属于该题，按表单字段所对应的题目记分。
func scoreAnswers(submissionID uint, questions []model.Question, posted PostedAnswers, choices map[uint]model.Choice) ([]model.SubmissionAnswer, gradeTally) {
	var tally gradeTally
	answers := make([]model.SubmissionAnswer, 0, len(questions))

	for _, q := range questions {
		tally.Total += q.Points

		raw, ok := posted[q.ID]
		if !ok || raw == "" {
			continue
		}
		choiceID, err := util.ParseID(raw)
		if err != nil {
			continue
		}
		choice, ok := choices[choiceID]
		if !ok {
			continue
		}

		points := 0
		if choice.IsCorrect {
			points = q.Points
			tally.Correct++
		}
		tally.Earned += points

		selected := choice.ID
		answers = append(answers, model.SubmissionAnswer{
			SubmissionID:     submissionID,
			QuestionID:       q.ID,
			SelectedChoiceID: &selected,
			IsCorrect:        choice.IsCorrect,
			PointsEarned:     points,
		})
	}

	return answers, tally
}

func postedChoiceIDs(posted PostedAnswers) []uint {
	ids := make([]uint, 0, len(posted))
	for _, raw := range posted {
		if id, err := util.ParseID(raw); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// Grade 在一个事务内完成获取/创建提交记录、清理旧作答、评分与持久化。
// 已评分的提交不会重评，此时返回已有记录和 util.ErrSubmissionAlreadyGraded。
func (s *GradingService) Grade(ctx context.Context, lessonID, studentID uint, posted PostedAnswers) (*model.Submission, error) {
	ctx, span := tracing.Start(ctx, "GradingService.Grade")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("lesson.id", int64(lessonID)),
		attribute.Int64("student.id", int64(studentID)),
	)

	if _, err := s.Courses.FindLesson(ctx, lessonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}

	var result *model.Submission
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		courses := s.Courses.WithTx(tx)
		submissions := s.Submissions.WithTx(tx)

		sub, created, err := submissions.GetOrCreate(ctx, studentID, lessonID)
		if err != nil {
			return fmt.Errorf("get or create submission: %w", err)
		}
		if !created && !sub.Regradable() {
			result = sub
			return util.ErrSubmissionAlreadyGraded
		}
		if !created {
			if err := submissions.DeleteAnswers(ctx, sub.ID); err != nil {
				return fmt.Errorf("clear previous answers: %w", err)
			}
		}

		questions, err := courses.ListQuestions(ctx, lessonID)
		if err != nil {
			return fmt.Errorf("list questions: %w", err)
		}
		choices, err := courses.FindChoices(ctx, postedChoiceIDs(posted))
		if err != nil {
			return fmt.Errorf("load choices: %w", err)
		}

		answers, tally := scoreAnswers(sub.ID, questions, posted, choices)

		now := s.Now()
		sub.Status = model.StatusGraded
		sub.TotalQuestions = len(questions)
		sub.CorrectAnswers = tally.Correct
		sub.Score = ComputeScore(tally.Earned, tally.Total)
		sub.SubmittedAt = &now
		sub.GradedAt = &now

		if err := submissions.CreateAnswers(ctx, answers); err != nil {
			return fmt.Errorf("save answers: %w", err)
		}
		if err := submissions.Save(ctx, sub); err != nil {
			return fmt.Errorf("save submission: %w", err)
		}
		result = sub
		return nil
	})

	if errors.Is(err, util.ErrSubmissionAlreadyGraded) {
		monitoring.ObserveSubmission(monitoring.OutcomeDuplicate, 0)
		return result, err
	}
	if err != nil {
		monitoring.ObserveSubmission(monitoring.OutcomeFailed, 0)
		span.RecordError(err)
		logger.Log.Error("grading failed",
			zap.Uint("lesson_id", lessonID),
			zap.Uint("student_id", studentID),
			zap.Error(err),
		)
		return nil, err
	}

	monitoring.ObserveSubmission(monitoring.OutcomeGraded, result.Score)
	span.SetAttributes(attribute.Int("submission.score", result.Score))
	logger.Log.Info("submission graded",
		zap.Uint("submission_id", result.ID),
		zap.Uint("lesson_id", lessonID),
		zap.Uint("student_id", studentID),
		zap.Int("score", result.Score),
		zap.Int("correct", result.CorrectAnswers),
		zap.Int("total_questions", result.TotalQuestions),
	)

	if s.Archive != nil {
		s.Archive.ArchiveSubmission(ctx, result)
	}

	return result, nil
}
