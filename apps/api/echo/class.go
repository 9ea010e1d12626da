package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/vsip/core/school"
	"github.com/trezcool/vsip/core/user"
)

// dateParam parses an optional YYYY-MM-DD query parameter; a zero time means
// the bound is open.
func dateParam(ctx echo.Context, name string) (time.Time, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", val)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, name+" must be a YYYY-MM-DD date")
	}
	return t, nil
}

type classApi struct {
	svc      *school.Service
	validate *validator.Validate
}

func registerClassAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *school.Service, validate *validator.Validate) {
	api := classApi{svc: svc, validate: validate}

	cg := g.Group("/classes", jwt)
	cg.POST("", api.create, minRoleMiddleware(user.RoleHead))
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update, minRoleMiddleware(user.RoleHead))
	cg.DELETE("/:id", api.destroy, minRoleMiddleware(user.RoleHead))
	cg.GET("/:id/grouping", api.grouping)
	cg.GET("/:id/session-stats", api.sessionStats)

	sg := g.Group("/sessions", jwt)
	sg.POST("", api.createSession)
	sg.GET("", api.querySessions)
	sg.GET("/:id", api.retrieveSession)
	sg.PUT("/:id", api.updateSession)
	sg.DELETE("/:id", api.destroySession, minRoleMiddleware(user.RoleHead))

	ug := g.Group("/usage", jwt)
	ug.POST("", api.recordUsage)
	ug.GET("", api.queryUsage)
}

// Classes

func (api *classApi) create(ctx echo.Context) error {
	var data school.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cls, err := api.svc.CreateClass(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, cls)
}

func (api *classApi) query(ctx echo.Context) error {
	classes, err := api.svc.QueryClasses(ctx.Request().Context(), ctx.QueryParam("school"))
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	if classes == nil {
		classes = []school.Class{}
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *classApi) retrieve(ctx echo.Context) error {
	cls, err := api.svc.GetClass(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *classApi) update(ctx echo.Context) error {
	var data school.UpdateClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cls, err := api.svc.UpdateClass(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *classApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.GetClass(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	if err := api.svc.DeleteClasses(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *classApi) grouping(ctx echo.Context) error {
	grouping, err := api.svc.GroupStudentsByBand(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grouping)
}

func (api *classApi) sessionStats(ctx echo.Context) error {
	from, err := dateParam(ctx, "from")
	if err != nil {
		return err
	}
	to, err := dateParam(ctx, "to")
	if err != nil {
		return err
	}

	stats, err := api.svc.GetSessionStats(ctx.Request().Context(), ctx.Param("id"), from, to)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stats)
}

// Sessions

func (api *classApi) createSession(ctx echo.Context) error {
	var data school.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ses, err := api.svc.CreateSession(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, ses)
}

func (api *classApi) querySessions(ctx echo.Context) error {
	classID := ctx.QueryParam("class")
	if classID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "class query parameter is required")
	}

	sessions, err := api.svc.QuerySessions(ctx.Request().Context(), classID)
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	if sessions == nil {
		sessions = []school.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *classApi) retrieveSession(ctx echo.Context) error {
	ses, err := api.svc.GetSession(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ses)
}

func (api *classApi) updateSession(ctx echo.Context) error {
	var data school.UpdateSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSession")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ses, err := api.svc.UpdateSession(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ses)
}

func (api *classApi) destroySession(ctx echo.Context) error {
	if _, err := api.svc.GetSession(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	if err := api.svc.DeleteSessions(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Usage logs

func (api *classApi) recordUsage(ctx echo.Context) error {
	var data school.NewUsageLog
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUsageLog")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ul, err := api.svc.RecordUsage(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, ul)
}

func (api *classApi) queryUsage(ctx echo.Context) error {
	classID := ctx.QueryParam("class")
	if classID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "class query parameter is required")
	}
	from, err := dateParam(ctx, "from")
	if err != nil {
		return err
	}
	to, err := dateParam(ctx, "to")
	if err != nil {
		return err
	}

	logs, err := api.svc.QueryUsageLogs(ctx.Request().Context(), classID, from, to)
	if err != nil {
		return errors.Wrap(err, "querying usage logs")
	}
	if logs == nil {
		logs = []school.UsageLog{}
	}
	return ctx.JSON(http.StatusOK, logs)
}
