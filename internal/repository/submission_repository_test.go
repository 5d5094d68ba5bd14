package repository

import (
	"context"
	"course_exam_backend/internal/model"
	"course_exam_backend/internal/testutil"
	"testing"
)

func TestGetOrCreateIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.SeedLesson(t, db, 1)
	student := testutil.CreateUser(t, db, model.Student)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	first, created, err := repo.GetOrCreate(ctx, student.ID, f.Lesson.ID)
	if err != nil || !created {
		t.Fatalf("first GetOrCreate: created=%v err=%v", created, err)
	}
	if first.Status != model.StatusInProgress {
		t.Errorf("status = %q", first.Status)
	}

	second, created, err := repo.GetOrCreate(ctx, student.ID, f.Lesson.ID)
	if err != nil || created {
		t.Fatalf("second GetOrCreate: created=%v err=%v", created, err)
	}
	if second.ID != first.ID {
		t.Errorf("ids differ: %d vs %d", second.ID, first.ID)
	}

	var count int64
	db.Model(&model.Submission{}).Count(&count)
	if count != 1 {
		t.Errorf("submissions = %d, want 1", count)
	}
}

func TestFindByStudentAndLessonMissing(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSubmissionRepository(db)

	sub, err := repo.FindByStudentAndLesson(context.Background(), 1, 1)
	if err != nil || sub != nil {
		t.Errorf("sub = %v, err = %v, want nil, nil", sub, err)
	}
}

func TestListAnswersWithDetailsOrder(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.SeedLesson(t, db, 1, 2, 3)
	student := testutil.CreateUser(t, db, model.Student)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	sub, _, err := repo.GetOrCreate(ctx, student.ID, f.Lesson.ID)
	if err != nil {
		t.Fatal(err)
	}

	// 倒序写入，读取时仍按题目顺序
	var answers []model.SubmissionAnswer
	for i := len(f.Questions) - 1; i >= 0; i-- {
		choice := f.Correct(i)
		answers = append(answers, model.SubmissionAnswer{
			SubmissionID:     sub.ID,
			QuestionID:       f.Questions[i].ID,
			SelectedChoiceID: &choice,
			IsCorrect:        true,
			PointsEarned:     f.Questions[i].Points,
		})
	}
	if err := repo.CreateAnswers(ctx, answers); err != nil {
		t.Fatalf("CreateAnswers: %v", err)
	}

	got, err := repo.ListAnswersWithDetails(ctx, sub.ID)
	if err != nil {
		t.Fatalf("ListAnswersWithDetails: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("answers = %d", len(got))
	}
	for i, a := range got {
		if a.QuestionID != f.Questions[i].ID {
			t.Errorf("answer %d question = %d, want %d", i, a.QuestionID, f.Questions[i].ID)
		}
		if a.Question.Text == "" || len(a.Question.Choices) != 2 || a.SelectedChoice == nil {
			t.Errorf("answer %d not fully loaded: %+v", i, a)
		}
	}
}
