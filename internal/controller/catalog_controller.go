package controller

import (
	"what-coffee-be/internal/pkg/serverutils"
	"what-coffee-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICatalogController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
}

type catalogController struct {
	catalogService service.ICatalogService
}

func NewCatalogController(catalogService service.ICatalogService) ICatalogController {
	return &catalogController{
		catalogService: catalogService,
	}
}

func (c *catalogController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/catalog/v1")
	h.Get("search", c.Search)
}

func (c *catalogController) Search(ctx *fiber.Ctx) error {
	query := ctx.Query("q")
	limit := ctx.QueryInt("limit", 5)

	res, err := c.catalogService.Search(ctx.Context(), query, limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success search catalog", res))
}
