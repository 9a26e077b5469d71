package entity

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/tidwall/gjson"
)

// Kind names an entity type on the platform.
type Kind string

const (
	KindUser     Kind = "user"
	KindGroup    Kind = "group"
	KindPlace    Kind = "place"
	KindUniverse Kind = "universe"
	KindBadge    Kind = "badge"
	KindAsset    Kind = "asset"
	KindOutfit   Kind = "outfit"
)

// Identifier is anything that can be coerced to a platform id.
type Identifier interface {
	EntityID() int64
}

// Entity is the contract implemented by every domain entity.
type Entity interface {
	Identifier
	Kind() Kind
}

// ID is a raw id usable wherever an Identifier is accepted.
type ID int64

// EntityID implements Identifier.
func (i ID) EntityID() int64 { return int64(i) }

// Ref is the comparable identity of an entity.
type Ref struct {
	Kind Kind
	ID   int64
}

// String renders the ref as kind:id.
func (r Ref) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// RefOf returns the identity of e.
func RefOf(e Entity) Ref {
	return Ref{Kind: e.Kind(), ID: e.EntityID()}
}

// Base is the invariant core embedded in every entity.
type Base struct {
	ID int64 `json:"id"`
}

// EntityID implements Identifier.
func (b Base) EntityID() int64 { return b.ID }

// NewBase validates id and returns the core for an entity.
// A zero or negative id is rejected with ErrInvalidEntity.
func NewBase(id int64) (Base, error) {
	if id <= 0 {
		return Base{}, ErrInvalidEntity
	}
	return Base{ID: id}, nil
}

// BaseFrom reads the id from the first of paths present in payload.
// Paths default to "id".
func BaseFrom(payload gjson.Result, paths ...string) (Base, error) {
	id, ok := IDAt(payload, paths...)
	if !ok {
		return Base{}, ErrInvalidEntity
	}
	return NewBase(id)
}

// IDAt returns the first positive integer found at paths in payload.
func IDAt(payload gjson.Result, paths ...string) (int64, bool) {
	if len(paths) == 0 {
		paths = []string{"id"}
	}
	if !payload.IsObject() {
		return 0, false
	}
	for _, p := range paths {
		v := payload.Get(p)
		if !Present(v) {
			continue
		}
		var id int64
		switch v.Type {
		case gjson.Number:
			id = v.Int()
		case gjson.String:
			parsed, err := strconv.ParseInt(v.Str, 10, 64)
			if err != nil {
				continue
			}
			id = parsed
		default:
			continue
		}
		if id > 0 {
			return id, true
		}
	}
	return 0, false
}

// Present reports whether v exists and is not JSON null.
func Present(v gjson.Result) bool {
	return v.Exists() && v.Type != gjson.Null
}

// Equal reports whether a and b are the same kind of entity with the same id.
// Nil entities are never equal.
func Equal(a, b Entity) bool {
	if isNil(a) || isNil(b) {
		return false
	}
	return RefOf(a) == RefOf(b)
}

// IDs coerces a list of identifiers to raw ids, preserving order.
func IDs[T Identifier](items []T) []int64 {
	out := make([]int64, 0, len(items))
	for _, item := range items {
		out = append(out, item.EntityID())
	}
	return out
}

// Contains reports whether list holds an entity equal to e.
func Contains[T Entity](list []T, e Entity) bool {
	for _, item := range list {
		if Equal(item, e) {
			return true
		}
	}
	return false
}

func isNil(e Entity) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
