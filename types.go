package edm

import (
	"strings"

	"github.com/anveden/go-edm/internal/metadata"
)

// Markers and metadata records re-exported from the extractor so user code
// only ever imports this package.
type (
	// Entity marks a struct as an entity type; see metadata.Entity.
	Entity = metadata.Entity
	// Complex marks a struct as a complex type; see metadata.Complex.
	Complex = metadata.Complex

	// Kind is an EDM scalar type name, e.g. "Edm.String".
	Kind = metadata.Kind
	// Multiplicity is a CSDL association-end multiplicity value.
	Multiplicity = metadata.Multiplicity

	// FunctionImportDef declares a service operation on a scanned struct.
	FunctionImportDef = metadata.FunctionImportDef
	// ReturnTypeDef describes an operation result type.
	ReturnTypeDef = metadata.ReturnTypeDef
	// FunctionParameterDef describes one operation parameter.
	FunctionParameterDef = metadata.FunctionParameterDef
)

// The fixed enumeration of scalar type kinds.
const (
	KindString         = metadata.KindString
	KindBoolean        = metadata.KindBoolean
	KindSByte          = metadata.KindSByte
	KindByte           = metadata.KindByte
	KindInt16          = metadata.KindInt16
	KindInt32          = metadata.KindInt32
	KindInt64          = metadata.KindInt64
	KindSingle         = metadata.KindSingle
	KindDouble         = metadata.KindDouble
	KindDecimal        = metadata.KindDecimal
	KindBinary         = metadata.KindBinary
	KindDateTime       = metadata.KindDateTime
	KindDateTimeOffset = metadata.KindDateTimeOffset
	KindTime           = metadata.KindTime
	KindGuid           = metadata.KindGuid
)

// Association-end multiplicities.
const (
	MultiplicityOne       = metadata.MultiplicityOne
	MultiplicityMany      = metadata.MultiplicityMany
	MultiplicityZeroOrOne = metadata.MultiplicityZeroOrOne
)

// FullQualifiedName identifies a schema element by namespace and simple name.
type FullQualifiedName struct {
	Namespace string
	Name      string
}

// NewFQN builds a qualified name from a namespace and a simple name.
func NewFQN(namespace, name string) FullQualifiedName {
	return FullQualifiedName{Namespace: namespace, Name: name}
}

// ParseFQN splits "Namespace.Name" at the last dot. A string without a dot
// parses as a name with an empty namespace.
func ParseFQN(s string) FullQualifiedName {
	idx := strings.LastIndex(s, ".")
	if idx < 0 {
		return FullQualifiedName{Name: s}
	}
	return FullQualifiedName{Namespace: s[:idx], Name: s[idx+1:]}
}

func (f FullQualifiedName) String() string {
	if f.Namespace == "" {
		return f.Name
	}
	return f.Namespace + "." + f.Name
}

// IsZero reports whether f is the empty qualified name.
func (f FullQualifiedName) IsZero() bool {
	return f.Namespace == "" && f.Name == ""
}

// Facets carries the optional constraints of a property. Zero values mean
// "not set"; Nullable defaults to true for properties without explicit
// metadata.
type Facets struct {
	Nullable         bool
	MaxLength        int
	Precision        int
	Scale            int
	FixedConcurrency bool
}

// Property is a structural member of an entity or complex type. Kind and
// ComplexType are mutually exclusive: a simple property has a scalar kind,
// a complex property references a complex type by qualified name.
type Property struct {
	Name        string
	Kind        Kind
	ComplexType FullQualifiedName
	Facets      Facets
}

// IsComplex reports whether the property references a complex type.
func (p *Property) IsComplex() bool { return !p.ComplexType.IsZero() }

// PropertyRef names a key member of an entity type.
type PropertyRef struct {
	Name string
}

// NavigationProperty declares that a property traverses an association
// rather than holding a value directly. Role names are derived from the
// participating types, not user-chosen.
type NavigationProperty struct {
	Name         string
	FromRole     string
	ToRole       string
	Relationship FullQualifiedName
}

// AssociationEnd is one of the two ends of an association.
type AssociationEnd struct {
	Role         string
	Type         FullQualifiedName
	Multiplicity Multiplicity
}

// Association is a named two-ended relationship between entity types. Its
// qualified name is the owning schema's namespace plus Name.
type Association struct {
	Name string
	End1 AssociationEnd
	End2 AssociationEnd
}

// EntityType is a keyed record type. Key is empty for abstract base types;
// otherwise every reference names a property of the type or of one of its
// base types.
type EntityType struct {
	Name                 string
	BaseType             *FullQualifiedName
	Abstract             bool
	HasStream            bool
	Key                  []PropertyRef
	Properties           []Property
	NavigationProperties []NavigationProperty
}

// ComplexType is a keyless, embeddable value type.
type ComplexType struct {
	Name       string
	BaseType   *FullQualifiedName
	Properties []Property
}

// EntitySet binds an entity type to a named, queryable collection inside a
// container.
type EntitySet struct {
	Name       string
	EntityType FullQualifiedName
}

// AssociationSetEnd binds an association role to a concrete entity set.
type AssociationSetEnd struct {
	Role      string
	EntitySet string
}

// AssociationSet is the container-scoped binding of an association to the
// entity sets holding its two ends.
type AssociationSet struct {
	Name        string
	Association FullQualifiedName
	End1        AssociationSetEnd
	End2        AssociationSetEnd
}

// ReturnType describes a function import result.
type ReturnType struct {
	TypeName   string
	Collection bool
}

// FunctionParameter describes one function import parameter.
type FunctionParameter struct {
	Name     string
	Kind     Kind
	Nullable bool
}

// FunctionImport is an operation exposed by a container.
type FunctionImport struct {
	Name       string
	HTTPMethod string
	EntitySet  string
	ReturnType *ReturnType
	Parameters []FunctionParameter
}

// EntityContainer groups entity sets, association sets and operations into
// one logical service endpoint. Exactly one container per derivation is the
// default.
type EntityContainer struct {
	Name            string
	IsDefault       bool
	EntitySets      []*EntitySet
	AssociationSets []*AssociationSet
	FunctionImports []*FunctionImport
}

// EntityContainerInfo is the lightweight lookup result for a container.
type EntityContainerInfo struct {
	Name      string
	IsDefault bool
}

// Schema is the per-namespace collection of derived types, associations and
// containers. Immutable once derivation completes.
type Schema struct {
	Namespace        string
	EntityTypes      []*EntityType
	ComplexTypes     []*ComplexType
	Associations     []*Association
	EntityContainers []*EntityContainer
}
