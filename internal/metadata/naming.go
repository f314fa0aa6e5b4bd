package metadata

import (
	"reflect"
	"sort"
	"strings"

	"github.com/go-openapi/inflect"
)

// DefaultContainerName is used when a type declares no container of its own.
const DefaultContainerName = "DefaultContainer"

// CanonicalNamespace derives a namespace from a type's package path when no
// explicit namespace is declared. Path separators become dots so the result
// is a valid dotted EDM namespace.
func CanonicalNamespace(t reflect.Type) string {
	pkg := derefType(t).PkgPath()
	if pkg == "" {
		return "Default"
	}
	return strings.ReplaceAll(pkg, "/", ".")
}

// PluralizedSetName derives an entity-set name from a type name when the set
// is declared without an explicit name.
func PluralizedSetName(typeName string) string {
	return inflect.Pluralize(typeName)
}

// RoleName derives the association role for a type. Roles are derived, never
// user-chosen, so both ends of a navigation pair agree on them regardless of
// which side derivation starts from.
func RoleName(typeName string) string {
	return "r_" + typeName
}

// SelfRoleName derives the role for an association end reached through the
// named navigation field. Self-referencing navigations use it because the
// plain type-derived role would collide on the two ends.
func SelfRoleName(typeName, fieldName string) string {
	return "r_" + typeName + "_" + fieldName
}

// CanonicalAssociationName derives a stable association name from the two
// participating type names. The names are sorted so that deriving from
// either side of the navigation pair yields the same association identity.
func CanonicalAssociationName(typeA, typeB string) string {
	names := []string{typeA, typeB}
	sort.Strings(names)
	return names[0] + "_" + names[1]
}
