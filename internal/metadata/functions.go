package metadata

import "reflect"

// FunctionImportDef declares one service operation. A scanned struct exposes
// its operations by implementing
//
//	func (X) EdmFunctionImports() []edm.FunctionImportDef
//
// which is discovered via reflection the same way other optional methods are.
// The declaring struct's container is where the operation attaches.
type FunctionImportDef struct {
	// Name is the operation name exposed by the container.
	Name string
	// HTTPMethod is the verb the protocol layer should accept, e.g. "GET".
	// Empty means the protocol default.
	HTTPMethod string
	// EntitySet optionally binds the operation result to an entity set.
	EntitySet string
	// ReturnType is nil for operations without a result.
	ReturnType *ReturnTypeDef
	Parameters []FunctionParameterDef
}

// ReturnTypeDef describes an operation result: a scalar kind ("Edm.Int32") or
// a qualified type name ("RefScenario.Employee"), optionally a collection.
type ReturnTypeDef struct {
	TypeName   string
	Collection bool
}

// FunctionParameterDef describes one operation parameter.
type FunctionParameterDef struct {
	Name     string
	Kind     Kind
	Nullable bool
}

type functionImportDeclarer interface {
	EdmFunctionImports() []FunctionImportDef
}

// FunctionImports returns the operations declared by t, or nil when the type
// declares none. A pointer instance is probed so both value and pointer
// receivers are found.
func FunctionImports(t reflect.Type) []FunctionImportDef {
	t = derefType(t)
	if t.Kind() != reflect.Struct {
		return nil
	}
	inst := reflect.New(t).Interface()
	if d, ok := inst.(functionImportDeclarer); ok {
		return d.EdmFunctionImports()
	}
	return nil
}
