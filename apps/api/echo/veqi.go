package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/vsip/core/user"
	"github.com/trezcool/vsip/core/veqi"
)

type veqiApi struct {
	svc *veqi.Service
}

func registerVEQIAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *veqi.Service) {
	api := veqiApi{svc: svc}

	vg := g.Group("/veqi", jwt)
	vg.POST("/calculate/:schoolId", api.calculate, minRoleMiddleware(user.RoleHead))
	vg.GET("/:schoolId", api.retrieve)
}

// calculate scores the given school for a quarter and persists the result.
// The quarter defaults to the current one when omitted.
func (api *veqiApi) calculate(ctx echo.Context) error {
	rec, err := api.svc.Calculate(ctx.Request().Context(), ctx.Param("schoolId"), ctx.QueryParam("quarter"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

// retrieve returns all stored records for a school, newest quarter first; with
// a quarter query parameter it returns that single record, computing it on the
// fly when it has not been stored yet.
func (api *veqiApi) retrieve(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	schoolID := ctx.Param("schoolId")

	if quarter := ctx.QueryParam("quarter"); quarter != "" {
		rec, err := api.svc.Get(rctx, schoolID, quarter)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, rec)
	}

	recs, err := api.svc.GetAll(rctx, schoolID)
	if err != nil {
		return errors.Wrap(err, "querying records")
	}
	if recs == nil {
		recs = []veqi.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}
