package repositories

import "github.com/diybuddy/projectbuddy/app/models"

const placeholderImage = "/placeholder.svg"

// FloatingShelfID is the id of the built-in project.
const FloatingShelfID = "floating-shelf"

// DefaultProjects is the built-in project catalog.
func DefaultProjects() []models.Project {
	return []models.Project{
		{
			ID:            FloatingShelfID,
			Title:         "Building a Floating Shelf",
			Description:   "Build a sturdy wall shelf with hidden brackets, from the first pencil mark to the final coat of finish.",
			Difficulty:    "Beginner",
			EstimatedTime: "2-3 hours",
			Rating:        4.8,
			Learnings: []string{
				"Measuring and marking",
				"Drilling proper holes",
				"Installing floating brackets",
				"Finishing techniques",
			},
			Video: models.Video{
				Title:      "How to Build a Floating Shelf - Complete Tutorial",
				Influencer: "Mike the Builder",
				Duration:   "12:45",
				Thumbnail:  "/assets/hero-workspace.jpg",
			},
			Products: []models.Product{
				{ID: "1", Name: "DEWALT 20V MAX Cordless Drill", Price: 89.99, Image: placeholderImage, Category: models.CategoryTool, Rating: 4.8, InStock: true},
				{ID: "2", Name: "Measuring Tape 25ft", Price: 12.99, Image: placeholderImage, Category: models.CategoryTool, Rating: 4.5, InStock: true},
				{ID: "3", Name: "Wood Screws (100 pack)", Price: 8.49, Image: placeholderImage, Category: models.CategoryMaterial, Rating: 4.3, InStock: true},
				{ID: "4", Name: "Safety Glasses", Price: 15.99, Image: placeholderImage, Category: models.CategorySafety, Rating: 4.6, InStock: true},
				{ID: "5", Name: "Level 24-inch", Price: 24.99, Image: placeholderImage, Category: models.CategoryTool, Rating: 4.7, InStock: true},
				{ID: "6", Name: "Sandpaper Assortment", Price: 18.99, Image: placeholderImage, Category: models.CategoryMaterial, Rating: 4.4, InStock: false},
			},
		},
	}
}

// DefaultRecommended is offered on the basket page.
func DefaultRecommended() []models.Product {
	return []models.Product{
		{ID: "r1", Name: "Wood Stain - Natural Oak", Price: 16.99, Image: placeholderImage, Category: models.CategoryMaterial, Rating: 4.6, InStock: true},
		{ID: "r2", Name: "Work Gloves", Price: 9.99, Image: placeholderImage, Category: models.CategorySafety, Rating: 4.4, InStock: true},
		{ID: "r3", Name: "Dust Mask (10 pack)", Price: 7.99, Image: placeholderImage, Category: models.CategorySafety, Rating: 4.5, InStock: true},
	}
}
