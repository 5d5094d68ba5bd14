package controller

import (
	"course_exam_backend/internal/service"
	"course_exam_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthoringController 教师/管理员维护课程内容
type AuthoringController struct {
	AuthoringService *service.AuthoringService
}

func NewAuthoringController(authoringService *service.AuthoringService) *AuthoringController {
	return &AuthoringController{AuthoringService: authoringService}
}

// CreateCourse godoc
// @Summary 创建课程
// @Tags 教师
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CourseReq true "课程信息"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/teacher/courses [post]
func (c *AuthoringController) CreateCourse(ctx *gin.Context) {
	var req service.CourseReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.AuthoringService.CreateCourse(ctx.Request.Context(), req)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// CreateLesson godoc
// @Summary 在课程下创建课时
// @Tags 教师
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   body body service.LessonReq true "课时信息"
// @Success 201 {object} util.Response{data=model.Lesson}
// @Failure 404 {object} util.Response
// @Router /api/teacher/courses/{id}/lessons [post]
func (c *AuthoringController) CreateLesson(ctx *gin.Context) {
	courseID, err := util.ParseID(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid course id")
		return
	}
	var req service.LessonReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.AuthoringService.CreateLesson(ctx.Request.Context(), courseID, req)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Created(ctx, lesson)
}

// CreateQuestion godoc
// @Summary 在课时下创建题目及选项
// @Description 分值至少为 1，MC/TF 需要选项，且最多一个正确选项
// @Tags 教师
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课时ID"
// @Param   body body service.QuestionReq true "题目信息"
// @Success 201 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/teacher/lessons/{id}/questions [post]
func (c *AuthoringController) CreateQuestion(ctx *gin.Context) {
	lessonID, err := util.ParseID(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid lesson id")
		return
	}
	var req service.QuestionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.AuthoringService.CreateQuestion(ctx.Request.Context(), lessonID, req)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// DeleteChoice godoc
// @Summary 删除选项
// @Description 选中该选项的作答保留，所选选项置空
// @Tags 教师
// @Security ApiKeyAuth
// @Param   id path int true "选项ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/teacher/choices/{id} [delete]
func (c *AuthoringController) DeleteChoice(ctx *gin.Context) {
	id, err := util.ParseID(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid choice id")
		return
	}
	if err := c.AuthoringService.DeleteChoice(ctx.Request.Context(), id); err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListSubmissions godoc
// @Summary 课时的提交列表
// @Tags 教师
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课时ID"
// @Success 200 {object} util.Response{data=[]repository.SubmissionListRow}
// @Failure 404 {object} util.Response
// @Router /api/teacher/lessons/{id}/submissions [get]
func (c *AuthoringController) ListSubmissions(ctx *gin.Context) {
	lessonID, err := util.ParseID(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid lesson id")
		return
	}
	rows, err := c.AuthoringService.ListSubmissions(ctx.Request.Context(), lessonID)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// DeleteSubmission godoc
// @Summary 删除提交
// @Description 删除提交及其作答，学生可重新参加该课时考试
// @Tags 教师
// @Security ApiKeyAuth
// @Param   id path int true "提交ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/teacher/submissions/{id} [delete]
func (c *AuthoringController) DeleteSubmission(ctx *gin.Context) {
	id, err := util.ParseID(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid submission id")
		return
	}
	if err := c.AuthoringService.DeleteSubmission(ctx.Request.Context(), id); err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
