package service

import (
	"context"
	"course_exam_backend/internal/repository"
	"course_exam_backend/internal/util"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type CatalogService struct {
	Courses *repository.CourseRepository
	Cache   *repository.CatalogCache
}

func NewCatalogService(courses *repository.CourseRepository, cache *repository.CatalogCache) *CatalogService {
	return &CatalogService{Courses: courses, Cache: cache}
}

func (s *CatalogService) ListCourses(ctx context.Context) ([]CourseSummary, error) {
	var cached []CourseSummary
	if s.Cache.Get(ctx, "courses", &cached) {
		return cached, nil
	}

	courses, err := s.Courses.ListCourses(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]CourseSummary, 0, len(courses))
	for _, c := range courses {
		out = append(out, toCourseSummary(c))
	}
	s.Cache.Set(ctx, "courses", out)
	return out, nil
}

func (s *CatalogService) GetCourse(ctx context.Context, id uint) (*CourseDetail, error) {
	name := fmt.Sprintf("course:%d", id)
	var cached CourseDetail
	if s.Cache.Get(ctx, name, &cached) {
		return &cached, nil
	}

	course, err := s.Courses.FindCourseTree(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	detail, err := toCourseDetail(*course)
	if err != nil {
		return nil, err
	}
	s.Cache.Set(ctx, name, detail)
	return &detail, nil
}
