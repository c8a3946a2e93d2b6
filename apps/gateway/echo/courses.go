package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/coursepath/core"
	"github.com/trezcool/coursepath/core/course"
)

type courseApi struct {
	backend    course.Backend
	validate   *validator.Validate
	translator ut.Translator
}

type (
	EnrollRequest struct {
		CourseID string `json:"courseId"`
	}

	ProgressRequest struct {
		ModuleID  string `json:"moduleId"`
		Completed bool   `json:"completed"`
	}
)

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := courseApi{
		backend:    opts.Backend,
		validate:   opts.Validate,
		translator: opts.Translator,
	}

	cg := g.Group("/courses")

	// un-authed endpoints
	cg.GET("/all", api.query)
	cg.GET("/:id", api.retrieve)

	// authed endpoints
	ag := cg.Group("", jwt)
	ag.POST("/enroll", api.enroll, studentMiddleware)
	ag.POST("/progress/:courseId", api.updateProgress, studentMiddleware)
	ag.GET("/enrollment/:courseId", api.retrieveEnrollment, studentMiddleware)
	ag.GET("/enrollments", api.queryEnrollments, studentMiddleware)
	ag.GET("/enrolled", api.queryEnrolled, studentMiddleware)

	// admin endpoints
	adg := ag.Group("/admin", adminMiddleware)
	adg.POST("/create", api.create)
	adg.PUT("/:id", api.update)
	adg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	courses, err := api.backend.ListCourses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := api.backend.GetCourse(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	crs, err := api.backend.CreateCourse(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	data.ID = ctx.Param("id")
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	crs, err := api.backend.UpdateCourse(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	id := ctx.Param("id")
	// unknown courses are reported, not silently ignored
	if _, err := api.backend.GetCourse(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "getting course")
	}
	if err := api.backend.DeleteCourse(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) enroll(ctx echo.Context) error {
	studentID, err := contextStudent(ctx)
	if err != nil {
		return err
	}
	var data EnrollRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollRequest")
	}
	if core.IsBlank(data.CourseID) {
		return core.NewValidationError(nil, core.FieldError{Field: "courseId", Error: "courseId is required"})
	}

	e, err := api.backend.Enroll(ctx.Request().Context(), data.CourseID, studentID)
	if err != nil {
		return errors.Wrap(err, "enrolling student")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *courseApi) updateProgress(ctx echo.Context) error {
	studentID, err := contextStudent(ctx)
	if err != nil {
		return err
	}
	var data ProgressRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProgressRequest")
	}

	courseID := ctx.Param("courseId")
	crs, err := api.backend.GetCourse(ctx.Request().Context(), courseID)
	if err != nil {
		return errors.Wrap(err, "getting course")
	}
	if !crs.HasModule(data.ModuleID) {
		return core.NewValidationError(nil, core.FieldError{
			Field: "moduleId",
			Error: "module does not belong to the course",
		})
	}

	e, err := api.backend.UpdateProgress(ctx.Request().Context(), courseID, studentID, data.ModuleID, data.Completed)
	if err != nil {
		return errors.Wrap(err, "updating progress")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *courseApi) retrieveEnrollment(ctx echo.Context) error {
	studentID, err := contextStudent(ctx)
	if err != nil {
		return err
	}
	e, err := api.backend.GetEnrollment(ctx.Request().Context(), ctx.Param("courseId"), studentID)
	if err != nil {
		return errors.Wrap(err, "getting enrollment")
	}
	return ctx.JSON(http.StatusOK, e)
}

// queryEnrollments only returns the enrollments of the authenticated student.
func (api *courseApi) queryEnrollments(ctx echo.Context) error {
	studentID, err := contextStudent(ctx)
	if err != nil {
		return err
	}
	all, err := api.backend.ListEnrollments(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "listing enrollments")
	}

	enrollments := make([]course.Enrollment, 0, len(all))
	for _, e := range all {
		if e.StudentID == studentID {
			enrollments = append(enrollments, e)
		}
	}
	return ctx.JSON(http.StatusOK, enrollments)
}

func (api *courseApi) queryEnrolled(ctx echo.Context) error {
	studentID, err := contextStudent(ctx)
	if err != nil {
		return err
	}
	courses, err := api.backend.ListEnrolledCourses(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "listing enrolled courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}
