package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/vsip/core/content"
	"github.com/trezcool/vsip/core/user"
)

type contentApi struct {
	svc      *content.Service
	validate *validator.Validate
}

func registerContentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *content.Service, validate *validator.Validate) {
	api := contentApi{svc: svc, validate: validate}

	cg := g.Group("/content", jwt)
	cg.POST("", api.create, minRoleMiddleware(user.RoleOfficer))
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update, minRoleMiddleware(user.RoleOfficer))
	cg.DELETE("/:id", api.destroy, minRoleMiddleware(user.RoleOfficer))
}

func (api *contentApi) create(ctx echo.Context) error {
	var data content.NewItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewItem")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate); err != nil {
		return err
	}

	item, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *contentApi) query(ctx echo.Context) error {
	var filter content.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	items, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying content")
	}
	if items == nil {
		items = []content.Item{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *contentApi) retrieve(ctx echo.Context) error {
	item, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *contentApi) update(ctx echo.Context) error {
	var data content.UpdateItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateItem")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate); err != nil {
		return err
	}

	item, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *contentApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting content")
	}
	return ctx.NoContent(http.StatusNoContent)
}
