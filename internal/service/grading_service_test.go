package service

import (
	"context"
	"course_exam_backend/internal/model"
	"course_exam_backend/internal/repository"
	"course_exam_backend/internal/testutil"
	"course_exam_backend/internal/util"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"
)

func newGradingService(db *gorm.DB) *GradingService {
	s := NewGradingService(db, repository.NewCourseRepository(db), repository.NewSubmissionRepository(db), nil)
	s.Now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	return s
}

func answer(questionID, choiceID uint) (uint, string) {
	return questionID, fmt.Sprint(choiceID)
}

func TestComputeScore(t *testing.T) {
	cases := []struct {
		earned, total, want int
	}{
		{0, 0, 0},
		{0, 10, 0},
		{5, 10, 50},
		{10, 10, 100},
		{1, 3, 33},
		{2, 3, 66},
		{7, 9, 77},
	}
	for _, tc := range cases {
		if got := ComputeScore(tc.earned, tc.total); got != tc.want {
			t.Errorf("ComputeScore(%d, %d) = %d, want %d", tc.earned, tc.total, got, tc.want)
		}
	}
}

func TestGradeHalfCorrect(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.SeedLesson(t, db, 5, 5)
	student := testutil.CreateUser(t, db, model.Student)
	s := newGradingService(db)

	posted := PostedAnswers{}
	q, c := answer(f.Questions[0].ID, f.Correct(0))
	posted[q] = c
	q, c = answer(f.Questions[1].ID, f.Wrong(1))
	posted[q] = c

	sub, err := s.Grade(context.Background(), f.Lesson.ID, student.ID, posted)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if sub.Score != 50 || sub.CorrectAnswers != 1 || sub.TotalQuestions != 2 {
		t.Fatalf("got score=%d correct=%d total=%d, want 50/1/2", sub.Score, sub.CorrectAnswers, sub.TotalQuestions)
	}
	if sub.Status != model.StatusGraded || sub.SubmittedAt == nil || sub.GradedAt == nil {
		t.Fatalf("submission not marked graded: %+v", sub)
	}
	if sub.Passed() {
		t.Error("50 must not pass")
	}

	var answers []model.SubmissionAnswer
	db.Where("submission_id = ?", sub.ID).Order("question_id").Find(&answers)
	if len(answers) != 2 {
		t.Fatalf("answers = %d, want 2", len(answers))
	}
	if !answers[0].IsCorrect || answers[0].PointsEarned != 5 {
		t.Errorf("first answer = %+v", answers[0])
	}
	if answers[1].IsCorrect || answers[1].PointsEarned != 0 {
		t.Errorf("second answer = %+v", answers[1])
	}
}

func TestGradeUnansweredQuestionsCountTowardsTotal(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.SeedLesson(t, db, 2, 3, 5)
	student := testutil.CreateUser(t, db, model.Student)
	s := newGradingService(db)

	posted := PostedAnswers{f.Questions[2].ID: fmt.Sprint(f.Correct(2))}
	sub, err := s.Grade(context.Background(), f.Lesson.ID, student.ID, posted)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if sub.Score != 50 {
		t.Errorf("score = %d, want 50", sub.Score)
	}
	if sub.TotalQuestions != 3 || sub.CorrectAnswers != 1 {
		t.Errorf("total=%d correct=%d", sub.TotalQuestions, sub.CorrectAnswers)
	}

	var count int64
	db.Model(&model.SubmissionAnswer{}).Where("submission_id = ?", sub.ID).Count(&count)
	if count != 1 {
		t.Errorf("answer rows = %d, want 1", count)
	}
}

func TestGradeAllCorrectPasses(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.SeedLesson(t, db, 1, 2, 3)
	student := testutil.CreateUser(t, db, model.Student)
	s := newGradingService(db)

	posted := PostedAnswers{}
	for i, q := range f.Questions {
		posted[q.ID] = fmt.Sprint(f.Correct(i))
	}
	sub, err := s.Grade(context.Background(), f.Lesson.ID, student.ID, posted)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if sub.Score != 100 || !sub.Passed() {
		t.Errorf("score = %d passed = %v", sub.Score, sub.Passed())
	}
}

func TestGradeEmptyLesson(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.SeedLesson(t, db)
	student := testutil.CreateUser(t, db, model.Student)

	sub, err := newGradingService(db).Grade(context.Background(), f.Lesson.ID, student.ID, PostedAnswers{})
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if sub.Score != 0 || sub.TotalQuestions != 0 || sub.Status != model.StatusGraded {
		t.Errorf("got %+v", sub)
	}
}

func TestGradeIgnoresInvalidChoiceIDs(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.SeedLesson(t, db, 4, 4, 2)
	student := testutil.CreateUser(t, db, model.Student)

	posted := PostedAnswers{
		f.Questions[0].ID: "not-a-number",
		f.Questions[1].ID: "999999",
		f.Questions[2].ID: fmt.Sprint(f.Correct(2)),
		424242:            fmt.Sprint(f.Correct(0)),
	}
	sub, err := newGradingService(db).Grade(context.Background(), f.Lesson.ID, student.ID, posted)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if sub.Score != 20 {
		t.Errorf("score = %d, want 20", sub.Score)
	}

	var count int64
	db.Model(&model.SubmissionAnswer{}).Where("submission_id = ?", sub.ID).Count(&count)
	if count != 1 {
		t.Errorf("answer rows = %d, want 1", count)
	}
}

func TestGradeUsesPostedQuestionKeyForForeignChoice(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.SeedLesson(t, db, 5, 5)
	student := testutil.CreateUser(t, db, model.Student)

	// 题 1 的正确选项提交在题 0 名下，按题 0 记分
	posted := PostedAnswers{f.Questions[0].ID: fmt.Sprint(f.Correct(1))}
	sub, err := newGradingService(db).Grade(context.Background(), f.Lesson.ID, student.ID, posted)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if sub.Score != 50 {
		t.Errorf("score = %d, want 50", sub.Score)
	}

	var a model.SubmissionAnswer
	if err := db.Where("submission_id = ?", sub.ID).First(&a).Error; err != nil {
		t.Fatalf("load answer: %v", err)
	}
	if a.QuestionID != f.Questions[0].ID || a.SelectedChoiceID == nil || *a.SelectedChoiceID != f.Correct(1) {
		t.Errorf("answer = %+v", a)
	}
}

func TestGradeDuplicateKeepsFirstScore(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.SeedLesson(t, db, 5, 5)
	student := testutil.CreateUser(t, db, model.Student)
	s := newGradingService(db)
	ctx := context.Background()

	first, err := s.Grade(ctx, f.Lesson.ID, student.ID, PostedAnswers{f.Questions[0].ID: fmt.Sprint(f.Correct(0))})
	if err != nil {
		t.Fatalf("first Grade: %v", err)
	}

	all := PostedAnswers{
		f.Questions[0].ID: fmt.Sprint(f.Correct(0)),
		f.Questions[1].ID: fmt.Sprint(f.Correct(1)),
	}
	second, err := s.Grade(ctx, f.Lesson.ID, student.ID, all)
	if !errors.Is(err, util.ErrSubmissionAlreadyGraded) {
		t.Fatalf("err = %v, want ErrSubmissionAlreadyGraded", err)
	}
	if second == nil || second.ID != first.ID {
		t.Fatalf("duplicate should return the existing submission, got %+v", second)
	}

	var stored model.Submission
	db.First(&stored, first.ID)
	if stored.Score != 50 {
		t.Errorf("stored score = %d, want unchanged 50", stored.Score)
	}

	var count int64
	db.Model(&model.Submission{}).Where("student_id = ? AND lesson_id = ?", student.ID, f.Lesson.ID).Count(&count)
	if count != 1 {
		t.Errorf("submissions = %d, want 1", count)
	}
}

func TestGradeRegradesInProgressSubmission(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.SeedLesson(t, db, 5, 5)
	student := testutil.CreateUser(t, db, model.Student)

	pending := model.Submission{StudentID: student.ID, LessonID: f.Lesson.ID, Status: model.StatusInProgress}
	if err := db.Omit("Student", "Lesson").Create(&pending).Error; err != nil {
		t.Fatalf("create submission: %v", err)
	}
	stale := f.Wrong(0)
	if err := db.Omit("Question", "SelectedChoice").Create(&model.SubmissionAnswer{
		SubmissionID:     pending.ID,
		QuestionID:       f.Questions[0].ID,
		SelectedChoiceID: &stale,
	}).Error; err != nil {
		t.Fatalf("create stale answer: %v", err)
	}

	posted := PostedAnswers{
		f.Questions[0].ID: fmt.Sprint(f.Correct(0)),
		f.Questions[1].ID: fmt.Sprint(f.Correct(1)),
	}
	sub, err := newGradingService(db).Grade(context.Background(), f.Lesson.ID, student.ID, posted)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if sub.ID != pending.ID {
		t.Errorf("regrade created a new submission %d, want %d", sub.ID, pending.ID)
	}
	if sub.Score != 100 {
		t.Errorf("score = %d, want 100", sub.Score)
	}

	var answers []model.SubmissionAnswer
	db.Where("submission_id = ?", sub.ID).Find(&answers)
	if len(answers) != 2 {
		t.Fatalf("answers = %d, want 2", len(answers))
	}
	for _, a := range answers {
		if !a.IsCorrect {
			t.Errorf("stale answer survived: %+v", a)
		}
	}
}

// failSubmissionUpdates 让提交记录的最终 UPDATE 失败，用来验证整次评分回滚
func failSubmissionUpdates(t *testing.T, db *gorm.DB) {
	t.Helper()
	err := db.Callback().Update().Before("gorm:update").Register("test:fail_submission_save", func(tx *gorm.DB) {
		if tx.Statement.Table == "submissions" {
			tx.AddError(errors.New("disk full"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
}

func TestGradeRollsBackWhenSaveFails(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.SeedLesson(t, db, 5, 5)
	student := testutil.CreateUser(t, db, model.Student)
	failSubmissionUpdates(t, db)

	posted := PostedAnswers{
		f.Questions[0].ID: fmt.Sprint(f.Correct(0)),
		f.Questions[1].ID: fmt.Sprint(f.Wrong(1)),
	}
	sub, err := newGradingService(db).Grade(context.Background(), f.Lesson.ID, student.ID, posted)
	if err == nil {
		t.Fatal("Grade should fail when the submission cannot be saved")
	}
	if sub != nil {
		t.Errorf("sub = %+v, want nil on failure", sub)
	}

	var subs, answers int64
	db.Model(&model.Submission{}).Count(&subs)
	db.Model(&model.SubmissionAnswer{}).Count(&answers)
	if subs != 0 || answers != 0 {
		t.Errorf("submissions = %d, answers = %d, want nothing persisted", subs, answers)
	}
}

func TestGradeRegradeRollsBackWhenSaveFails(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.SeedLesson(t, db, 5, 5)
	student := testutil.CreateUser(t, db, model.Student)

	pending := model.Submission{StudentID: student.ID, LessonID: f.Lesson.ID, Status: model.StatusInProgress}
	if err := db.Omit("Student", "Lesson").Create(&pending).Error; err != nil {
		t.Fatalf("create submission: %v", err)
	}
	stale := f.Wrong(0)
	if err := db.Omit("Question", "SelectedChoice").Create(&model.SubmissionAnswer{
		SubmissionID:     pending.ID,
		QuestionID:       f.Questions[0].ID,
		SelectedChoiceID: &stale,
	}).Error; err != nil {
		t.Fatalf("create stale answer: %v", err)
	}
	failSubmissionUpdates(t, db)

	posted := PostedAnswers{
		f.Questions[0].ID: fmt.Sprint(f.Correct(0)),
		f.Questions[1].ID: fmt.Sprint(f.Correct(1)),
	}
	if _, err := newGradingService(db).Grade(context.Background(), f.Lesson.ID, student.ID, posted); err == nil {
		t.Fatal("Grade should fail when the submission cannot be saved")
	}

	var subs []model.Submission
	db.Find(&subs)
	if len(subs) != 1 {
		t.Fatalf("submissions = %d, want the pending one only", len(subs))
	}
	got := subs[0]
	if got.ID != pending.ID || got.Status != model.StatusInProgress || got.Score != 0 || got.GradedAt != nil {
		t.Errorf("pending submission changed: %+v", got)
	}

	var answers []model.SubmissionAnswer
	db.Find(&answers)
	if len(answers) != 1 {
		t.Fatalf("answers = %d, want the stale one only", len(answers))
	}
	if answers[0].SubmissionID != pending.ID || answers[0].SelectedChoiceID == nil || *answers[0].SelectedChoiceID != stale {
		t.Errorf("stale answer changed: %+v", answers[0])
	}
}

func TestGradeUnknownLesson(t *testing.T) {
	db := testutil.NewDB(t)
	student := testutil.CreateUser(t, db, model.Student)

	_, err := newGradingService(db).Grade(context.Background(), 9999, student.ID, PostedAnswers{})
	if !errors.Is(err, util.ErrLessonNotFound) {
		t.Fatalf("err = %v, want ErrLessonNotFound", err)
	}

	var count int64
	db.Model(&model.Submission{}).Count(&count)
	if count != 0 {
		t.Errorf("submissions = %d, want none", count)
	}
}

func TestScoreBoundsAcrossPointMixes(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.SeedLesson(t, db, 1, 7, 13, 100)
	s := newGradingService(db)

	for mask := 0; mask < 1<<len(f.Questions); mask++ {
		student := testutil.CreateUser(t, db, model.Student)
		posted := PostedAnswers{}
		for i, q := range f.Questions {
			if mask&(1<<i) != 0 {
				posted[q.ID] = fmt.Sprint(f.Correct(i))
			} else {
				posted[q.ID] = fmt.Sprint(f.Wrong(i))
			}
		}
		sub, err := s.Grade(context.Background(), f.Lesson.ID, student.ID, posted)
		if err != nil {
			t.Fatalf("mask %b: %v", mask, err)
		}
		if sub.Score < 0 || sub.Score > 100 {
			t.Errorf("mask %b: score %d out of range", mask, sub.Score)
		}
		if sub.CorrectAnswers > sub.TotalQuestions {
			t.Errorf("mask %b: correct %d > total %d", mask, sub.CorrectAnswers, sub.TotalQuestions)
		}
	}
}

func TestGetExamFormHidesCorrectness(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.SeedLesson(t, db, 5, 5)
	student := testutil.CreateUser(t, db, model.Student)
	s := newGradingService(db)

	form, err := s.GetExamForm(context.Background(), f.Lesson.ID, student.ID)
	if err != nil {
		t.Fatalf("GetExamForm: %v", err)
	}
	if form.ExistingSubmission != nil {
		t.Error("no submission expected yet")
	}
	if len(form.Questions) != 2 || len(form.Questions[0].Choices) != 2 {
		t.Fatalf("form = %+v", form)
	}
	if form.Questions[0].Order > form.Questions[1].Order {
		t.Error("questions not ordered")
	}

	if _, err := s.Grade(context.Background(), f.Lesson.ID, student.ID, PostedAnswers{}); err != nil {
		t.Fatalf("Grade: %v", err)
	}
	form, err = s.GetExamForm(context.Background(), f.Lesson.ID, student.ID)
	if err != nil {
		t.Fatalf("GetExamForm: %v", err)
	}
	if form.ExistingSubmission == nil || form.ExistingSubmission.Status != model.StatusGraded {
		t.Errorf("existing submission = %+v", form.ExistingSubmission)
	}

	if _, err := s.GetExamForm(context.Background(), 9999, student.ID); !errors.Is(err, util.ErrLessonNotFound) {
		t.Errorf("err = %v, want ErrLessonNotFound", err)
	}
}
