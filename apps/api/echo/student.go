package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/vsip/core/school"
	"github.com/trezcool/vsip/core/user"
)

type studentApi struct {
	svc      *school.Service
	validate *validator.Validate
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *school.Service, validate *validator.Validate) {
	api := studentApi{svc: svc, validate: validate}

	sg := g.Group("/students", jwt)
	sg.POST("", api.create)
	sg.POST("/import", api.importCSV)
	sg.GET("", api.query)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy, minRoleMiddleware(user.RoleHead))

	ag := g.Group("/assessments", jwt)
	ag.POST("", api.createAssessment)
	ag.GET("", api.queryAssessments)
	ag.GET("/:id", api.retrieveAssessment)
}

// Students

func (api *studentApi) create(ctx echo.Context) error {
	var data school.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	stu, err := api.svc.CreateStudent(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, stu)
}

// importCSV bulk-creates students for a class from an uploaded roster. The
// CSV is read from the "file" form field when present, otherwise from the
// raw request body.
func (api *studentApi) importCSV(ctx echo.Context) error {
	classID := ctx.QueryParam("class")
	if classID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "class query parameter is required")
	}

	body := ctx.Request().Body
	if fh, err := ctx.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return errors.Wrap(err, "opening uploaded roster")
		}
		defer f.Close()
		body = f
	}

	students, err := api.svc.ImportStudents(ctx.Request().Context(), classID, body)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, students)
}

func (api *studentApi) query(ctx echo.Context) error {
	classID := ctx.QueryParam("class")
	if classID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "class query parameter is required")
	}

	students, err := api.svc.QueryStudents(ctx.Request().Context(), classID)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []school.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	stu, err := api.svc.GetStudent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) update(ctx echo.Context) error {
	var data school.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	stu, err := api.svc.UpdateStudent(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.GetStudent(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	if err := api.svc.DeleteStudents(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Assessments

func (api *studentApi) createAssessment(ctx echo.Context) error {
	var data school.NewAssessment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssessment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	asm, err := api.svc.CreateAssessment(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, asm)
}

func (api *studentApi) queryAssessments(ctx echo.Context) error {
	var filter school.AssessmentFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to AssessmentFilter")
	}

	assessments, err := api.svc.FilterAssessments(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying assessments")
	}
	if assessments == nil {
		assessments = []school.Assessment{}
	}
	return ctx.JSON(http.StatusOK, assessments)
}

func (api *studentApi) retrieveAssessment(ctx echo.Context) error {
	asm, err := api.svc.GetAssessment(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, asm)
}
