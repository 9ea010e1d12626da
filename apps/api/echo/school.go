package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/vsip/core/school"
	"github.com/trezcool/vsip/core/user"
)

type schoolApi struct {
	svc      *school.Service
	validate *validator.Validate
}

func registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *school.Service, validate *validator.Validate) {
	api := schoolApi{svc: svc, validate: validate}

	sg := g.Group("/schools", jwt)
	sg.POST("", api.create, minRoleMiddleware(user.RoleOfficer))
	sg.GET("", api.query)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update, minRoleMiddleware(user.RoleHead))
	sg.DELETE("/:id", api.destroy, adminMiddleware())

	cg := g.Group("/compliance", jwt)
	cg.POST("", api.createComplianceRecord, minRoleMiddleware(user.RoleHead))
	cg.GET("", api.queryComplianceRecords)
}

func (api *schoolApi) create(ctx echo.Context) error {
	var data school.NewSchool
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchool")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	sch, err := api.svc.CreateSchool(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating school")
	}
	return ctx.JSON(http.StatusCreated, sch)
}

func (api *schoolApi) query(ctx echo.Context) error {
	schools, err := api.svc.QueryAllSchools(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying schools")
	}
	if schools == nil {
		schools = []school.School{}
	}
	return ctx.JSON(http.StatusOK, schools)
}

func (api *schoolApi) retrieve(ctx echo.Context) error {
	sch, err := api.svc.GetSchool(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sch)
}

func (api *schoolApi) update(ctx echo.Context) error {
	var data school.UpdateSchool
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSchool")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sch, err := api.svc.UpdateSchool(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sch)
}

func (api *schoolApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.GetSchool(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	if err := api.svc.DeleteSchools(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting school")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Compliance

func (api *schoolApi) createComplianceRecord(ctx echo.Context) error {
	var data school.NewComplianceRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewComplianceRecord")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.CreateComplianceRecord(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *schoolApi) queryComplianceRecords(ctx echo.Context) error {
	var filter school.ComplianceFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to ComplianceFilter")
	}

	records, err := api.svc.FilterComplianceRecords(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying compliance records")
	}
	if records == nil {
		records = []school.ComplianceRecord{}
	}
	return ctx.JSON(http.StatusOK, records)
}
