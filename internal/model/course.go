package model

type QuestionType string

const (
	MultipleChoice QuestionType = "MC"
	TrueFalse      QuestionType = "TF"
	ShortAnswer    QuestionType = "SA"
)

func (t QuestionType) Valid() bool {
	switch t {
	case MultipleChoice, TrueFalse, ShortAnswer:
		return true
	}
	return false
}

// swagger:model Course
type Course struct {
	BaseModel
	Name        string   `gorm:"size:100;not null" json:"name"`
	Description string   `gorm:"type:text" json:"description"`
	Lessons     []Lesson `gorm:"constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Lesson
type Lesson struct {
	BaseModel
	CourseID    uint       `gorm:"not null;index:idx_lessons_course_order,priority:1" json:"courseId"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Content     string     `gorm:"type:text" json:"content"`
	Order       int        `gorm:"column:sort_order;default:0;index:idx_lessons_course_order,priority:2" json:"order"`
	Questions   []Question `gorm:"constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// swagger:model Question
type Question struct {
	BaseModel
	LessonID uint         `gorm:"not null;index:idx_questions_lesson_order,priority:1" json:"lessonId"`
	Text     string       `gorm:"column:question_text;type:text;not null" json:"text"`
	Type     QuestionType `gorm:"column:question_type;size:2;default:'MC'" json:"type"`
	Points   int          `gorm:"default:1;check:chk_questions_points,points >= 1" json:"points"`
	Order    int          `gorm:"column:sort_order;default:0;index:idx_questions_lesson_order,priority:2" json:"order"`
	Choices  []Choice     `gorm:"constraint:OnDelete:CASCADE" json:"choices,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model Choice
type Choice struct {
	BaseModel
	QuestionID uint   `gorm:"not null;index" json:"questionId"`
	Text       string `gorm:"column:choice_text;type:text;not null" json:"text"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
	Order      int    `gorm:"column:sort_order;default:0" json:"order"`
}

func (Choice) TableName() string {
	return "choices"
}
