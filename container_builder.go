package edm

import "fmt"

// containerBuilder accumulates entity sets and function imports for one named
// container. Association sets cannot be built incrementally: they need the
// complete entity-set list, so they are expanded in the finishing pass.
type containerBuilder struct {
	name      string
	namespace string
	// explicitDefault is set when any contributing type tagged the container
	// as the default one.
	explicitDefault bool

	entitySets      []*EntitySet
	associationSets []*AssociationSet
	functionImports []*FunctionImport
}

func newContainerBuilder(namespace, name string) *containerBuilder {
	return &containerBuilder{name: name, namespace: namespace}
}

func (b *containerBuilder) addEntitySet(set *EntitySet) {
	b.entitySets = append(b.entitySets, set)
}

func (b *containerBuilder) addFunctionImport(fi *FunctionImport) {
	b.functionImports = append(b.functionImports, fi)
}

// expandAssociationSets synthesizes one association set per association of
// the container's namespace, binding each end's role to the entity set whose
// entity type matches. A dangling end is a derivation-time schema error.
func (b *containerBuilder) expandAssociationSets(assocs []*Association) error {
	for _, assoc := range assocs {
		end1, err := b.bindEnd(assoc, assoc.End1)
		if err != nil {
			return err
		}
		end2, err := b.bindEnd(assoc, assoc.End2)
		if err != nil {
			return err
		}
		b.associationSets = append(b.associationSets, &AssociationSet{
			Name:        assoc.Name,
			Association: NewFQN(b.namespace, assoc.Name),
			End1:        end1,
			End2:        end2,
		})
	}
	return nil
}

func (b *containerBuilder) bindEnd(assoc *Association, end AssociationEnd) (AssociationSetEnd, error) {
	for _, set := range b.entitySets {
		if set.EntityType == end.Type {
			return AssociationSetEnd{Role: end.Role, EntitySet: set.Name}, nil
		}
	}
	return AssociationSetEnd{}, fmt.Errorf(
		"container %s: %w: no entity set for type %s of association %s",
		b.name, ErrIntegrity, end.Type, assoc.Name)
}

func (b *containerBuilder) build(isDefault bool) *EntityContainer {
	return &EntityContainer{
		Name:            b.name,
		IsDefault:       isDefault,
		EntitySets:      b.entitySets,
		AssociationSets: b.associationSets,
		FunctionImports: b.functionImports,
	}
}
