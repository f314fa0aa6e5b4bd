// Package metadata extracts EDM facts from Go types: whether a struct is
// annotated as an entity or complex type, what its fields contribute as
// properties, keys or navigations, and how navigation pairs on two structs
// combine into one association. All functions are pure queries over the
// metadata attached to a type; absence of metadata is a legitimate
// "not applicable" result, only malformed metadata is an error.
package metadata

import (
	"fmt"
	"reflect"
)

// TypeInfo is the type-level metadata record for an annotated struct.
type TypeInfo struct {
	Type      reflect.Type
	Namespace string
	Name      string
	IsEntity  bool
	Abstract  bool

	HasEntitySet     bool
	EntitySetName    string
	ContainerName    string
	DefaultContainer bool
}

// FQN returns the qualified name as "Namespace.Name".
func (ti *TypeInfo) FQN() string {
	return ti.Namespace + "." + ti.Name
}

// DescribeType returns the type-level metadata for t, or (nil, false) when t
// carries no entity-type or complex-type metadata. An empty declared
// namespace falls back to the canonical package-derived namespace; an absent
// container name falls back to DefaultContainerName.
func DescribeType(t reflect.Type) (*TypeInfo, bool) {
	t = derefType(t)
	marker, ok := markerField(t)
	if !ok {
		return nil, false
	}

	tt, err := parseTypeTag(marker.Tag.Get(TagName))
	if err != nil {
		// Malformed type tags surface later through ErrDescribeType so that
		// scanning can treat "annotated at all" as a cheap boolean.
		tt = typeTag{}
	}

	info := &TypeInfo{
		Type:             t,
		Namespace:        tt.namespace,
		Name:             tt.name,
		IsEntity:         marker.Type == entityMarkerType,
		Abstract:         tt.abstract,
		HasEntitySet:     tt.hasEntitySet,
		EntitySetName:    tt.entitySetName,
		ContainerName:    tt.containerName,
		DefaultContainer: tt.defaultContainer,
	}
	if info.Namespace == "" {
		info.Namespace = CanonicalNamespace(t)
	}
	if info.Name == "" {
		info.Name = t.Name()
	}
	if info.HasEntitySet && info.EntitySetName == "" {
		info.EntitySetName = PluralizedSetName(info.Name)
	}
	if info.ContainerName == "" {
		info.ContainerName = DefaultContainerName
	}
	return info, true
}

// ErrDescribeType re-parses the marker tag of an annotated type and returns
// the parse error, if any. DescribeType itself never fails so that scan-time
// filtering stays a pure predicate.
func ErrDescribeType(t reflect.Type) error {
	t = derefType(t)
	marker, ok := markerField(t)
	if !ok {
		return nil
	}
	if _, err := parseTypeTag(marker.Tag.Get(TagName)); err != nil {
		return fmt.Errorf("type %s: %w", t.Name(), err)
	}
	return nil
}

// BaseType resolves the nearest annotated ancestor of t: the embedded struct
// chain is walked until a field carrying entity-type or complex-type metadata
// is found, skipping non-annotated intermediates. Marker embeds themselves
// are not base types.
func BaseType(t reflect.Type) (*TypeInfo, bool) {
	t = derefType(t)
	if t.Kind() != reflect.Struct {
		return nil, false
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous || f.Type == entityMarkerType || f.Type == complexMarkerType {
			continue
		}
		embedded := derefType(f.Type)
		if embedded.Kind() != reflect.Struct {
			continue
		}
		if info, ok := DescribeType(embedded); ok {
			return info, true
		}
		if info, ok := BaseType(embedded); ok {
			return info, true
		}
	}
	return nil, false
}

// FieldInfo is the field-level metadata record for a property candidate.
type FieldInfo struct {
	// Name is the property name: the explicit tag name, or the field name.
	Name      string
	FieldName string

	Skip         bool // explicitly excluded from the schema
	IsKey        bool
	IsNavigation bool
	MediaContent bool
	// IsProperty is false for fields that only carry unrelated markers, e.g.
	// a bare mediaContent field.
	IsProperty bool

	// Kind is the scalar kind for simple properties; ComplexRef is set
	// instead for complex properties. The two are mutually exclusive.
	Kind       Kind
	ComplexRef *TypeInfo

	Nullable         bool
	MaxLength        int
	Precision        int
	Scale            int
	FixedConcurrency bool
}

// DescribeField returns the property metadata for one declared field.
// Navigation fields come back with IsNavigation set and no scalar mapping;
// resolve the pair with NavigationInfo. Unsupported field types and
// contradictory tags are hard errors.
func DescribeField(f reflect.StructField) (*FieldInfo, error) {
	ft, err := parseFieldTag(f.Tag.Get(TagName))
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", f.Name, err)
	}

	info := &FieldInfo{
		Name:      f.Name,
		FieldName: f.Name,
		Nullable:  true,
	}
	if ft.name != "" {
		info.Name = ft.name
	}
	if ft.skip {
		info.Skip = true
		return info, nil
	}
	if ft.nav {
		info.IsNavigation = true
		return info, nil
	}
	if ft.mediaContent {
		info.MediaContent = true
		if !ft.hasPropertyParts() {
			return info, nil
		}
	}

	info.IsProperty = true
	info.IsKey = ft.key
	if ft.nullableSet {
		info.Nullable = ft.nullable
	}
	info.MaxLength = ft.maxLength
	info.Precision = ft.precision
	info.Scale = ft.scale
	info.FixedConcurrency = ft.concurrency

	fieldType := derefType(f.Type)
	if ref, ok := DescribeType(fieldType); ok {
		if ref.IsEntity {
			return nil, fmt.Errorf("field %s: entity type %s used as property; declare it as a navigation property", f.Name, ref.Name)
		}
		info.ComplexRef = ref
		return info, nil
	}

	if ft.typeOverride != "" {
		info.Kind = ft.typeOverride
		return info, nil
	}
	kind, err := MapKind(f.Type)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", f.Name, err)
	}
	info.Kind = kind
	return info, nil
}
