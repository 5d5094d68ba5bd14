package repository

import (
	"context"
	"course_exam_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) WithTx(tx *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: tx}
}

// GetOrCreate 依赖 (student_id, lesson_id) 唯一索引：冲突时不插入，
// 随后用加锁读取拿到当前记录。created 表示本次是否新建。
func (r *SubmissionRepository) GetOrCreate(ctx context.Context, studentID, lessonID uint) (*model.Submission, bool, error) {
	fresh := &model.Submission{
		StudentID: studentID,
		LessonID:  lessonID,
		Status:    model.StatusInProgress,
	}
	res := r.DB.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(fresh)
	if res.Error != nil {
		return nil, false, res.Error
	}
	created := res.RowsAffected > 0

	var sub model.Submission
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("student_id = ? AND lesson_id = ?", studentID, lessonID).
		First(&sub).Error
	if err != nil {
		return nil, false, err
	}
	return &sub, created, nil
}

func (r *SubmissionRepository) DeleteAnswers(ctx context.Context, submissionID uint) error {
	return r.DB.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Delete(&model.SubmissionAnswer{}).Error
}

func (r *SubmissionRepository) CreateAnswers(ctx context.Context, answers []model.SubmissionAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(&answers).Error
}

func (r *SubmissionRepository) Save(ctx context.Context, sub *model.Submission) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(sub).Error
}

func (r *SubmissionRepository) FindByID(ctx context.Context, id uint) (*model.Submission, error) {
	var sub model.Submission
	if err := r.DB.WithContext(ctx).Preload("Lesson").First(&sub, id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindByStudentAndLesson 未找到时返回 nil, nil
func (r *SubmissionRepository) FindByStudentAndLesson(ctx context.Context, studentID, lessonID uint) (*model.Submission, error) {
	var subs []model.Submission
	err := r.DB.WithContext(ctx).
		Where("student_id = ? AND lesson_id = ?", studentID, lessonID).
		Limit(1).Find(&subs).Error
	if err != nil || len(subs) == 0 {
		return nil, err
	}
	return &subs[0], nil
}

// ListAnswersWithDetails 预加载题目、全部选项以及所选选项，按题目顺序返回
func (r *SubmissionRepository) ListAnswersWithDetails(ctx context.Context, submissionID uint) ([]model.SubmissionAnswer, error) {
	var answers []model.SubmissionAnswer
	err := r.DB.WithContext(ctx).
		Preload("Question").
		Preload("Question.Choices", byPosition).
		Preload("SelectedChoice").
		Joins("JOIN questions q ON q.id = submission_answers.question_id").
		Where("submission_answers.submission_id = ?", submissionID).
		Order("q.sort_order asc").Order("submission_answers.id asc").
		Find(&answers).Error
	return answers, err
}

type SubmissionListRow struct {
	ID             uint                   `json:"id"`
	StudentID      uint                   `json:"studentId"`
	StudentName    string                 `json:"studentName"`
	StudentEmail   string                 `json:"studentEmail"`
	Status         model.SubmissionStatus `json:"status"`
	Score          int                    `json:"score"`
	TotalQuestions int                    `json:"totalQuestions"`
	CorrectAnswers int                    `json:"correctAnswers"`
	SubmittedAt    *time.Time             `json:"submittedAt"`
	GradedAt       *time.Time             `json:"gradedAt"`
}

func (r *SubmissionRepository) ListByLesson(ctx context.Context, lessonID uint) ([]SubmissionListRow, error) {
	var rows []SubmissionListRow
	err := r.DB.WithContext(ctx).Table("submissions s").
		Select("s.id, s.student_id, u.name as student_name, u.email as student_email, " +
			"s.status, s.score, s.total_questions, s.correct_answers, s.submitted_at, s.graded_at").
		Joins("JOIN users u ON s.student_id = u.id").
		Where("s.lesson_id = ?", lessonID).
		Order("s.submitted_at desc").Order("s.id desc").
		Scan(&rows).Error
	return rows, err
}

// CountByStatus 按状态统计提交数，健康检查用
func (r *SubmissionRepository) CountByStatus(ctx context.Context) (map[model.SubmissionStatus]int64, error) {
	var rows []struct {
		Status model.SubmissionStatus
		Total  int64
	}
	err := r.DB.WithContext(ctx).Model(&model.Submission{}).
		Select("status, count(*) as total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[model.SubmissionStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// Delete 先删作答再删提交记录
func (r *SubmissionRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("submission_id = ?", id).Delete(&model.SubmissionAnswer{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Submission{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
