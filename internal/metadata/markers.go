package metadata

import "reflect"

// Entity marks a struct as an EDM entity type. Embed it anonymously and put
// the type-level metadata on the embed's tag:
//
//	type Building struct {
//	    edm.Entity `edm:"namespace=RefScenario,set=Buildings,container=Container1"`
//	    ID    string `edm:"key"`
//	    Rooms []Room `edm:"nav"`
//	}
//
// Recognized tag keys: namespace=, name=, set (bare form pluralizes the type
// name), set=Name, container=Name, defaultContainer, abstract.
type Entity struct{}

// Complex marks a struct as an EDM complex type: a keyless, embeddable value
// type. Tag keys: namespace=, name=.
type Complex struct{}

var (
	entityMarkerType  = reflect.TypeOf(Entity{})
	complexMarkerType = reflect.TypeOf(Complex{})
)

// markerField returns the embedded marker field of t, if any.
func markerField(t reflect.Type) (reflect.StructField, bool) {
	if t.Kind() != reflect.Struct {
		return reflect.StructField{}, false
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && (f.Type == entityMarkerType || f.Type == complexMarkerType) {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

// IsAnnotated reports whether t carries entity-type or complex-type metadata.
// Pointer types are dereferenced first.
func IsAnnotated(t reflect.Type) bool {
	_, ok := markerField(derefType(t))
	return ok
}

// derefType unwraps pointer types to obtain the underlying type.
func derefType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
