package controller

import (
	"course_exam_backend/internal/service"
	"course_exam_backend/internal/util"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	GradingService *service.GradingService
	ResultService  *service.ResultService
}

func NewExamController(gradingService *service.GradingService, resultService *service.ResultService) *ExamController {
	return &ExamController{
		GradingService: gradingService,
		ResultService:  resultService,
	}
}

func resultPath(submissionID uint) string {
	return fmt.Sprintf("/submissions/%d/result/", submissionID)
}

// ParsePostedAnswers 只取 question_<id> 字段，id 必须是规范十进制写法（question_010 不算 question_10），
// 其余字段忽略；同名字段重复提交时以最后一个值为准
func ParsePostedAnswers(form url.Values) service.PostedAnswers {
	posted := make(service.PostedAnswers)
	for key, values := range form {
		if !strings.HasPrefix(key, util.QuestionFieldPrefix) || len(values) == 0 {
			continue
		}
		suffix := strings.TrimPrefix(key, util.QuestionFieldPrefix)
		questionID, err := util.ParseID(suffix)
		if err != nil || util.FormatID(questionID) != suffix {
			continue
		}
		posted[questionID] = strings.TrimSpace(values[len(values)-1])
	}
	return posted
}

// ExamForm godoc
// @Summary 获取考试表单
// @Description 课时内容、按顺序排列的题目与选项，以及当前用户已有的提交
// @Tags 考试
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课时ID"
// @Success 200 {object} util.Response{data=service.ExamForm}
// @Failure 401 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /lessons/{id}/submit/ [get]
func (c *ExamController) ExamForm(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	lessonID, err := util.ParseID(ctx.Param("id"))
	if err != nil {
		util.NotFound(ctx)
		return
	}

	form, err := c.GradingService.GetExamForm(ctx.Request.Context(), lessonID, claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, form)
}

// Submit godoc
// @Summary 提交考试
// @Description 表单字段 question_<题目ID>=<选项ID>。评分后 303 跳转到结果页；已评分的提交直接跳转到已有结果
// @Tags 考试
// @Accept  x-www-form-urlencoded
// @Security ApiKeyAuth
// @Param   id path int true "课时ID"
// @Success 303 "跳转到结果页"
// @Failure 401 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /lessons/{id}/submit/ [post]
func (c *ExamController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	lessonID, err := util.ParseID(ctx.Param("id"))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	if err := ctx.Request.ParseForm(); err != nil {
		util.BadRequest(ctx, "invalid form body")
		return
	}

	posted := ParsePostedAnswers(ctx.Request.PostForm)
	sub, err := c.GradingService.Grade(ctx.Request.Context(), lessonID, claims.UserID, posted)
	switch {
	case err == nil, errors.Is(err, util.ErrSubmissionAlreadyGraded):
		util.SeeOther(ctx, resultPath(sub.ID))
	case errors.Is(err, util.ErrLessonNotFound):
		util.NotFound(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}

// Result godoc
// @Summary 查看成绩
// @Description 分数、是否通过及逐题明细。仅本人或教师/管理员可见，其他人 302 跳转到课程列表
// @Tags 考试
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "提交ID"
// @Success 200 {object} util.Response{data=service.DetailedResult}
// @Success 302 "无权查看时跳转到课程列表"
// @Failure 401 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /submissions/{id}/result/ [get]
func (c *ExamController) Result(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	submissionID, err := util.ParseID(ctx.Param("id"))
	if err != nil {
		util.NotFound(ctx)
		return
	}

	result, err := c.ResultService.GetResult(ctx.Request.Context(), submissionID, claims.UserID, claims.Role)
	switch {
	case err == nil:
		util.Success(ctx, result)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Found(ctx, "/courses/")
	case errors.Is(err, util.ErrSubmissionNotFound):
		util.NotFound(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}
