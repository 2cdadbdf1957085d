package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/diybuddy/projectbuddy/app/repositories"
	"github.com/diybuddy/projectbuddy/app/resources"
	"github.com/diybuddy/projectbuddy/app/services"
	"github.com/diybuddy/projectbuddy/pkg/ctx"
	"github.com/diybuddy/projectbuddy/pkg/resource"
)

// fail maps service errors to responses. Anything unknown is a 500.
func fail(c *ctx.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNoProductsAvailable):
		notice := resources.NoProductsNotice()
		c.Respond(http.StatusConflict, notice.Title, resource.Map{"notice": notice})
	case errors.Is(err, services.ErrInvalidQuantity):
		c.ValidationError(map[string]string{
			"quantity": fmt.Sprintf("The quantity must be between 0 and %d.", services.MaxQuantity),
		})
	case errors.Is(err, services.ErrOutOfStock):
		c.Error(http.StatusConflict, "Product is out of stock")
	case errors.Is(err, repositories.ErrProjectNotFound):
		c.NotFound("Project %q not found", c.Param("project"))
	case errors.Is(err, repositories.ErrProductNotFound):
		c.NotFound("Product not found")
	default:
		c.InternalError(err)
	}
}
