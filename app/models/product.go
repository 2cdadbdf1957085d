package models

// Category groups products on the project page.
type Category string

const (
	CategoryTool     Category = "tool"
	CategoryMaterial Category = "material"
	CategorySafety   Category = "safety"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryTool, CategoryMaterial, CategorySafety:
		return true
	}
	return false
}

// Product is a purchasable item. Quantity is zero (and omitted from JSON)
// for catalog products and at least 1 once the product sits in a basket.
type Product struct {
	ID       string   `json:"id"                 validate:"required"`
	Name     string   `json:"name"               validate:"required"`
	Price    float64  `json:"price"              validate:"gte=0"`
	Image    string   `json:"image"`
	Category Category `json:"category"           validate:"required,in=tool,material,safety"`
	Rating   float64  `json:"rating"             validate:"between=0,5"`
	InStock  bool     `json:"inStock"`
	Quantity int      `json:"quantity,omitempty" validate:"gte=0"`
}

// Units is the quantity used for pricing: an absent quantity counts as 1.
func (p Product) Units() int {
	if p.Quantity <= 0 {
		return 1
	}
	return p.Quantity
}

// WithQuantity returns a copy of p carrying quantity q.
func (p Product) WithQuantity(q int) Product {
	p.Quantity = q
	return p
}
