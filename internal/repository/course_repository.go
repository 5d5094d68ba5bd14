package repository

import (
	"context"
	"course_exam_backend/internal/model"
	"course_exam_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) WithTx(tx *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: tx}
}

// byPosition 按显示顺序排序，order 相同时按创建先后
func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order asc").Order("id asc")
}

func (r *CourseRepository) ListCourses(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.WithContext(ctx).
		Preload("Lessons", byPosition).
		Order("created_at desc").Order("id desc").
		Find(&courses).Error
	return courses, err
}

// FindCourseTree 一次性预加载课程下的课时、题目、选项
func (r *CourseRepository) FindCourseTree(ctx context.Context, id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.WithContext(ctx).
		Preload("Lessons", byPosition).
		Preload("Lessons.Questions", byPosition).
		Preload("Lessons.Questions.Choices", byPosition).
		First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) FindCourse(ctx context.Context, id uint) (*model.Course, error) {
	var course model.Course
	if err := r.DB.WithContext(ctx).First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) FindLesson(ctx context.Context, id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	if err := r.DB.WithContext(ctx).First(&lesson, id).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *CourseRepository) FindLessonWithQuestions(ctx context.Context, id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.WithContext(ctx).
		Preload("Questions", byPosition).
		Preload("Questions.Choices", byPosition).
		First(&lesson, id).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *CourseRepository) ListQuestions(ctx context.Context, lessonID uint) ([]model.Question, error) {
	var qs []model.Question
	err := byPosition(r.DB.WithContext(ctx).Where("lesson_id = ?", lessonID)).Find(&qs).Error
	return qs, err
}

func (r *CourseRepository) CreateCourse(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).Create(course).Error
}

func (r *CourseRepository) CreateLesson(ctx context.Context, lesson *model.Lesson) error {
	return r.DB.WithContext(ctx).Create(lesson).Error
}

// ValidateQuestion 单选/判断题至少一个选项且最多一个正确答案
func ValidateQuestion(q *model.Question) error {
	if !q.Type.Valid() {
		return util.ErrInvalidQuestionType
	}
	if q.Points < 1 {
		return util.ErrInvalidPoints
	}
	if q.Type != model.ShortAnswer && len(q.Choices) == 0 {
		return util.ErrChoicesRequired
	}
	correct := 0
	for _, c := range q.Choices {
		if c.IsCorrect {
			correct++
		}
	}
	if correct > 1 {
		return util.ErrMultipleCorrectChoices
	}
	return nil
}

// CreateQuestion 题目与选项在同一事务中写入
func (r *CourseRepository) CreateQuestion(ctx context.Context, q *model.Question) error {
	if err := ValidateQuestion(q); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(q).Error
	})
}

// DeleteChoice 先将引用该选项的作答置空，再删除选项
func (r *CourseRepository) DeleteChoice(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.SubmissionAnswer{}).
			Where("selected_choice_id = ?", id).
			Update("selected_choice_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Choice{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *CourseRepository) FirstOrCreateCourse(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).
		Where(model.Course{Name: course.Name}).
		Attrs(model.Course{Description: course.Description}).
		FirstOrCreate(course).Error
}

func (r *CourseRepository) FirstOrCreateLesson(ctx context.Context, lesson *model.Lesson) error {
	return r.DB.WithContext(ctx).
		Where(model.Lesson{CourseID: lesson.CourseID, Title: lesson.Title}).
		Attrs(model.Lesson{Description: lesson.Description, Content: lesson.Content, Order: lesson.Order}).
		FirstOrCreate(lesson).Error
}

// FirstOrCreateQuestion 返回是否新建；新建时一并写入选项
func (r *CourseRepository) FirstOrCreateQuestion(ctx context.Context, q *model.Question) (bool, error) {
	var existing model.Question
	err := r.DB.WithContext(ctx).
		Where("lesson_id = ? AND question_text = ?", q.LessonID, q.Text).
		First(&existing).Error
	if err == nil {
		*q = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := r.CreateQuestion(ctx, q); err != nil {
		return false, err
	}
	return true, nil
}

// FindChoices 批量按 ID 查找选项，不校验所属题目
func (r *CourseRepository) FindChoices(ctx context.Context, ids []uint) (map[uint]model.Choice, error) {
	out := make(map[uint]model.Choice, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var choices []model.Choice
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&choices).Error; err != nil {
		return nil, err
	}
	for _, c := range choices {
		out[c.ID] = c
	}
	return out, nil
}
