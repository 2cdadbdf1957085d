// Package resource provides API resource transformers.
//
// A transformer controls exactly what JSON shape a model is returned in:
//
//	type ProjectResource struct{}
//	func (ProjectResource) ToArray(p models.Project) resource.Map {
//	    return resource.Map{"id": p.ID, "title": p.Title}
//	}
//
//	c.Success(resource.New(ProjectResource{}, project))
//	c.Success(resource.CollectionOf(ProjectResource{}, projects).WithMeta(meta))
package resource

import "encoding/json"

// Map is a convenient alias for the output of ToArray.
type Map = map[string]interface{}

// Transformer converts one model into a Map.
type Transformer[T any] interface {
	ToArray(v T) Map
}

// Func adapts a plain function to Transformer.
type Func[T any] func(v T) Map

func (f Func[T]) ToArray(v T) Map { return f(v) }

// ------------------- Single resource -------------------

// Resource wraps a single model with its transformer.
type Resource[T any] struct {
	transformer Transformer[T]
	data        T
	meta        Map
}

// New creates a Resource for a single model instance.
func New[T any](t Transformer[T], data T) *Resource[T] {
	return &Resource[T]{transformer: t, data: data}
}

// WithMeta merges meta into the output under "meta".
func (r *Resource[T]) WithMeta(meta Map) *Resource[T] {
	r.meta = meta
	return r
}

// ToMap renders the resource.
func (r *Resource[T]) ToMap() Map {
	out := r.transformer.ToArray(r.data)
	if r.meta != nil {
		out["meta"] = r.meta
	}
	return out
}

// MarshalJSON lets a Resource be nested in any response.
func (r *Resource[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}

// ------------------- Collection resource -------------------

// Collection wraps a slice of models with a transformer.
type Collection[T any] struct {
	transformer Transformer[T]
	items       []T
	meta        Map
}

// CollectionOf creates a Collection from items.
func CollectionOf[T any](t Transformer[T], items []T) *Collection[T] {
	return &Collection[T]{transformer: t, items: items}
}

// WithMeta attaches extra metadata; the collection then renders as
// {"items": [...], "meta": {...}}.
func (c *Collection[T]) WithMeta(meta Map) *Collection[T] {
	c.meta = meta
	return c
}

// Items renders every element. Never nil.
func (c *Collection[T]) Items() []Map {
	out := make([]Map, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, c.transformer.ToArray(item))
	}
	return out
}

// MarshalJSON renders a bare array, or an object when meta is set.
func (c *Collection[T]) MarshalJSON() ([]byte, error) {
	if c.meta == nil {
		return json.Marshal(c.Items())
	}
	return json.Marshal(Map{"items": c.Items(), "meta": c.meta})
}
