package controllers

import (
	"net/http"

	"github.com/diybuddy/projectbuddy/app/models"
	"github.com/diybuddy/projectbuddy/app/resources"
	"github.com/diybuddy/projectbuddy/app/services"
	"github.com/diybuddy/projectbuddy/pkg/ctx"
	"github.com/diybuddy/projectbuddy/pkg/resource"
)

type CatalogController struct {
	catalog  *services.CatalogService
	basket   *BasketController
	projects resources.ProjectResource
}

// NewCatalogController renders projects with basketURL as their create link.
func NewCatalogController(catalog *services.CatalogService, basket *BasketController, basketURL func(projectID string) string) *CatalogController {
	return &CatalogController{
		catalog:  catalog,
		basket:   basket,
		projects: resources.ProjectResource{BasketURL: basketURL},
	}
}

// Index lists every project.
func (cc *CatalogController) Index(c *ctx.Context) {
	projects := cc.catalog.Repository().Projects()
	c.Success(resource.CollectionOf[models.Project](cc.projects, projects))
}

// Show returns one project with its products and estimated cost.
func (cc *CatalogController) Show(c *ctx.Context) {
	project, err := cc.catalog.Repository().FindProject(c.Param("project"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resource.New[models.Project](cc.projects, project))
}

// CreateBasket replaces the basket with the project's in-stock products.
func (cc *CatalogController) CreateBasket(c *ctx.Context) {
	change, err := cc.catalog.CreateBasketForProject(c.Context(), c.Param("project"))
	cc.basket.respond(c, http.StatusCreated, change, err)
}
