package entity

import (
	"context"

	"github.com/tidwall/gjson"
)

// Policy reports how the owning session materializes references.
type Policy interface {
	AllowPartials() bool
}

// Source is the per-kind provider contract the resolution policy relies on.
//
// Get is the cache-through accessor and may issue one transport call.
// Partial builds a stub from the id and whatever fields the embedding payload
// already carries; it must never touch the network.
type Source[T Entity] interface {
	Get(ctx context.Context, id int64) (T, error)
	Partial(base Base, fragment gjson.Result) T
}

// Field locates a reference inside a parent payload.
type Field struct {
	// Name is the attribute name used in errors, e.g. "awardingUniverse".
	Name string

	// Value is the embedded fragment. For flat references it is the id value itself.
	Value gjson.Result

	// IDPaths are the keys holding the id inside an embedded fragment (default "id").
	IDPaths []string

	// Flat marks a scalar id on the parent, e.g. "universeId". No display
	// fields are available for the stub.
	Flat bool
}

// Embedded describes a reference held as a nested object at path in parent.
func Embedded(parent gjson.Result, path string, idPaths ...string) Field {
	return Field{Name: path, Value: parent.Get(path), IDPaths: idPaths}
}

// Flat describes a reference held as a scalar id at path in parent.
func Flat(parent gjson.Result, path string) Field {
	return Field{Name: path, Value: parent.Get(path), Flat: true}
}

func (f Field) present() bool {
	if !Present(f.Value) {
		return false
	}
	if f.Flat {
		return f.Value.Int() != 0 || f.Value.Type == gjson.String
	}
	return true
}

func (f Field) id() (int64, bool) {
	if f.Flat {
		id := f.Value.Int()
		return id, id > 0
	}
	return IDAt(f.Value, f.IDPaths...)
}

func (f Field) fragment() gjson.Result {
	if f.Flat {
		return gjson.Result{}
	}
	return f.Value
}

// Resolve materializes a required reference of parent.
//
// With partials allowed the stub is built from the fragment and no call is
// made. Otherwise the source's cache-through accessor is used. A fragment
// that is absent or lacks its id fails with ErrMissingReferenceID wrapped in
// a ReferenceError naming the parent.
func Resolve[T Entity](ctx context.Context, p Policy, src Source[T], parent Ref, f Field) (T, error) {
	var zero T

	id, ok := f.id()
	if !ok {
		return zero, &ReferenceError{Parent: parent, Field: f.Name, Err: ErrMissingReferenceID}
	}

	if p.AllowPartials() {
		resolutions.WithLabelValues(string(parent.Kind), "partial").Inc()
		return src.Partial(Base{ID: id}, f.fragment()), nil
	}

	resolutions.WithLabelValues(string(parent.Kind), "fetch").Inc()
	v, err := src.Get(ctx, id)
	if err != nil {
		return zero, &ReferenceError{Parent: parent, Field: f.Name, Err: err}
	}
	return v, nil
}

// ResolveOptional is Resolve for references the platform may omit. An absent
// or null value yields the zero T and no error; a value present without an id
// still fails.
func ResolveOptional[T Entity](ctx context.Context, p Policy, src Source[T], parent Ref, f Field) (T, error) {
	if !f.present() {
		var zero T
		return zero, nil
	}
	return Resolve(ctx, p, src, parent, f)
}
