package metadata

import (
	"fmt"
	"reflect"
)

// NavInfo is the canonical description of one bidirectional relationship as
// observed from a navigation field. Deriving it from either side of a
// navigation pair yields the same association identity (name and role names),
// which is what makes downstream association merging meaningful.
type NavInfo struct {
	PropertyName string

	From *TypeInfo
	To   *TypeInfo

	FromRole string
	ToRole   string

	FromMultiplicity Multiplicity
	ToMultiplicity   Multiplicity

	// AssociationName is the canonical relationship name, qualified by the
	// owning type's namespace when building the association.
	AssociationName string
}

// NavigationInfo computes the canonical pair for a navigation field declared
// on owner. The target type and its reciprocal navigation field (if any) are
// located from the field's Go type; multiplicities derive from the Go shape
// of each side's field (slice = many, pointer = zero-or-one, value = one)
// unless overridden in the tag.
func NavigationInfo(owner reflect.Type, field reflect.StructField) (*NavInfo, error) {
	owner = derefType(owner)
	ownTag, err := parseFieldTag(field.Tag.Get(TagName))
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", field.Name, err)
	}
	if !ownTag.nav {
		return nil, fmt.Errorf("field %s carries no navigation metadata", field.Name)
	}

	target := navigationTarget(field.Type)
	if target == nil {
		return nil, fmt.Errorf("field %s: navigation target must be a struct type, got %s", field.Name, field.Type)
	}
	toInfo, ok := DescribeType(target)
	if !ok || !toInfo.IsEntity {
		return nil, fmt.Errorf("field %s: navigation target %s is not an annotated entity type", field.Name, target)
	}
	fromInfo, ok := DescribeType(owner)
	if !ok {
		return nil, fmt.Errorf("navigation field %s declared on non-annotated type %s", field.Name, owner)
	}

	info := &NavInfo{
		PropertyName:   field.Name,
		From:           fromInfo,
		To:             toInfo,
		ToMultiplicity: shapeMultiplicity(field.Type),
	}
	if ownTag.name != "" {
		info.PropertyName = ownTag.name
	}
	if ownTag.multiplicity != "" {
		info.ToMultiplicity = ownTag.multiplicity
	}

	// The reciprocal field on the target describes how many owners relate
	// back. Without one the relationship was declared one-sided and the
	// from end stays at one; the schema-level merge widens it if the other
	// side ever reports many.
	recTag, recField, hasReciprocal := reciprocalField(target, owner, field.Name)
	info.FromMultiplicity = MultiplicityOne
	if hasReciprocal {
		info.FromMultiplicity = shapeMultiplicity(recField.Type)
		if recTag.multiplicity != "" {
			info.FromMultiplicity = recTag.multiplicity
		}
	}

	info.FromRole = ownTag.fromRole
	if info.FromRole == "" && hasReciprocal {
		info.FromRole = recTag.toRole
	}
	if info.FromRole == "" {
		// For a paired self-reference both ends are the same type, so the
		// from end takes the reciprocal field's role. Both sides of the pair
		// then derive the same two roles and the association merge holds.
		if owner == target && hasReciprocal {
			info.FromRole = SelfRoleName(fromInfo.Name, recField.Name)
		} else {
			info.FromRole = RoleName(fromInfo.Name)
		}
	}

	info.ToRole = ownTag.toRole
	if info.ToRole == "" && hasReciprocal {
		info.ToRole = recTag.fromRole
	}
	if info.ToRole == "" {
		if owner == target {
			info.ToRole = SelfRoleName(toInfo.Name, field.Name)
		} else {
			info.ToRole = RoleName(toInfo.Name)
		}
	}
	if info.FromRole == info.ToRole {
		return nil, fmt.Errorf("field %s: association roles must be distinct, both ends derive %q", field.Name, info.FromRole)
	}

	info.AssociationName = ownTag.association
	if info.AssociationName == "" && hasReciprocal {
		info.AssociationName = recTag.association
	}
	if info.AssociationName == "" {
		info.AssociationName = CanonicalAssociationName(fromInfo.Name, toInfo.Name)
	}

	return info, nil
}

// navigationTarget unwraps slices and pointers to the entity type a
// navigation field points at. Returns nil for non-struct targets.
func navigationTarget(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	t = derefType(t)
	if t.Kind() != reflect.Struct {
		return nil
	}
	return t
}

// shapeMultiplicity derives an end multiplicity from the Go shape of the
// declaring field.
func shapeMultiplicity(t reflect.Type) Multiplicity {
	switch t.Kind() {
	case reflect.Slice:
		return MultiplicityMany
	case reflect.Ptr:
		return MultiplicityZeroOrOne
	}
	return MultiplicityOne
}

// reciprocalField finds the navigation field on target that points back at
// owner, skipping the owning field itself for self-referencing navigations.
func reciprocalField(target, owner reflect.Type, ownName string) (fieldTag, reflect.StructField, bool) {
	for i := 0; i < target.NumField(); i++ {
		f := target.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}
		if target == owner && f.Name == ownName {
			continue
		}
		ft, err := parseFieldTag(f.Tag.Get(TagName))
		if err != nil || !ft.nav {
			continue
		}
		if navigationTarget(f.Type) == owner {
			return ft, f, true
		}
	}
	return fieldTag{}, reflect.StructField{}, false
}
