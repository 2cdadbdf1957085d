// Package gql defines the read-only GraphQL view of the catalog and basket.
package gql

import (
	"github.com/graphql-go/graphql"

	"github.com/diybuddy/projectbuddy/app/models"
	"github.com/diybuddy/projectbuddy/app/resources"
	"github.com/diybuddy/projectbuddy/app/services"
	"github.com/diybuddy/projectbuddy/pkg/collection"
	gqlhttp "github.com/diybuddy/projectbuddy/pkg/graphql"
	"github.com/diybuddy/projectbuddy/pkg/resource"
)

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"name":     &graphql.Field{Type: graphql.String},
		"price":    &graphql.Field{Type: graphql.Float},
		"image":    &graphql.Field{Type: graphql.String},
		"category": &graphql.Field{Type: graphql.String},
		"rating":   &graphql.Field{Type: graphql.Float},
		"inStock":  &graphql.Field{Type: graphql.Boolean},
		"quantity": &graphql.Field{Type: graphql.Int},
	},
})

var videoType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Video",
	Fields: graphql.Fields{
		"title":      &graphql.Field{Type: graphql.String},
		"influencer": &graphql.Field{Type: graphql.String},
		"duration":   &graphql.Field{Type: graphql.String},
		"thumbnail":  &graphql.Field{Type: graphql.String},
	},
})

var projectType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Project",
	Fields: graphql.Fields{
		"id":             &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"title":          &graphql.Field{Type: graphql.String},
		"description":    &graphql.Field{Type: graphql.String},
		"difficulty":     &graphql.Field{Type: graphql.String},
		"estimatedTime":  &graphql.Field{Type: graphql.String},
		"rating":         &graphql.Field{Type: graphql.Float},
		"learnings":      &graphql.Field{Type: graphql.NewList(graphql.String)},
		"video":          &graphql.Field{Type: videoType},
		"availableCount": &graphql.Field{Type: graphql.Int},
		"estimatedCost":  &graphql.Field{Type: graphql.String},
		"products": &graphql.Field{
			Type: graphql.NewList(productType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				m, _ := p.Source.(resource.Map)
				if c, ok := m["products"].(*resource.Collection[models.Product]); ok {
					return c.Items(), nil
				}
				return nil, nil
			},
		},
	},
})

var totalsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Totals",
	Fields: graphql.Fields{
		"subtotal":              &graphql.Field{Type: graphql.String},
		"shipping":              &graphql.Field{Type: graphql.String},
		"tax":                   &graphql.Field{Type: graphql.String},
		"total":                 &graphql.Field{Type: graphql.String},
		"freeShipping":          &graphql.Field{Type: graphql.Boolean},
		"freeShippingOver":      &graphql.Field{Type: graphql.String},
		"freeShippingRemaining": &graphql.Field{Type: graphql.String},
		"units":                 &graphql.Field{Type: graphql.Int},
	},
})

var basketType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Basket",
	Fields: graphql.Fields{
		"items":  &graphql.Field{Type: graphql.NewList(productType)},
		"empty":  &graphql.Field{Type: graphql.Boolean},
		"totals": &graphql.Field{Type: totalsType},
	},
})

func products(ps []models.Product) []resource.Map {
	return collection.Map(ps, resources.ProductResource{}.ToArray)
}

// NewSchema builds the schema over the catalog and basket services.
func NewSchema(catalog *services.CatalogService, basket *services.BasketStore) (graphql.Schema, error) {
	projectRes := resources.ProjectResource{}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"projects": &graphql.Field{
				Type: graphql.NewList(projectType),
				Resolve: func(graphql.ResolveParams) (interface{}, error) {
					return collection.Map(catalog.Repository().Projects(), projectRes.ToArray), nil
				},
			},
			"project": &graphql.Field{
				Type: projectType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					project, err := catalog.Repository().FindProject(id)
					if err != nil {
						return nil, err
					}
					return projectRes.ToArray(project), nil
				},
			},
			"basket": &graphql.Field{
				Type: basketType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					items, err := basket.Items(p.Context)
					if err != nil {
						return nil, err
					}
					return resource.Map{
						"items":  products(items),
						"empty":  len(items) == 0,
						"totals": services.ComputeTotals(items, basket.Pricing()).Display(),
					}, nil
				},
			},
			"recommended": &graphql.Field{
				Type: graphql.NewList(productType),
				Resolve: func(graphql.ResolveParams) (interface{}, error) {
					return products(catalog.Repository().Recommended()), nil
				},
			},
		},
	})

	return gqlhttp.NewSchema(query)
}
