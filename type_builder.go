package edm

import (
	"fmt"
	"reflect"

	"github.com/anveden/go-edm/internal/metadata"
)

// typeBuilder derives the entity-type or complex-type definition of a single
// annotated struct: its properties, key, navigation properties and the
// associations implied by its navigation fields. It is stateless across
// types; one builder handles exactly one struct, and inherited fields are
// left to the base type's own builder run.
type typeBuilder struct {
	info *metadata.TypeInfo

	baseType      *FullQualifiedName
	hasStream     bool
	key           []PropertyRef
	properties    []Property
	navProperties []NavigationProperty
	associations  []*Association
}

// newTypeBuilder walks the declared fields of the annotated struct described
// by info. Anonymous fields are skipped: the marker embed carries no data and
// an embedded annotated struct is the base type, whose fields belong to its
// own derivation run.
func newTypeBuilder(info *metadata.TypeInfo) (*typeBuilder, error) {
	b := &typeBuilder{info: info}

	if base, ok := metadata.BaseType(info.Type); ok {
		fqn := NewFQN(base.Namespace, base.Name)
		b.baseType = &fqn
	}

	t := info.Type
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous || !f.IsExported() {
			continue
		}

		fi, err := metadata.DescribeField(f)
		if err != nil {
			return nil, fmt.Errorf("type %s: %w: %w", info.Name, ErrConfiguration, err)
		}

		if fi.IsNavigation {
			if !info.IsEntity {
				return nil, fmt.Errorf("type %s, field %s: %w: complex types cannot declare navigation properties", info.Name, f.Name, ErrConfiguration)
			}
			if err := b.addNavigation(t, f); err != nil {
				return nil, err
			}
			continue
		}
		if fi.MediaContent {
			b.hasStream = true
		}
		if fi.Skip || !fi.IsProperty {
			continue
		}

		b.properties = append(b.properties, buildProperty(fi))
		if fi.IsKey {
			b.key = append(b.key, PropertyRef{Name: fi.Name})
		}
	}

	return b, nil
}

func (b *typeBuilder) addNavigation(t reflect.Type, f reflect.StructField) error {
	nav, err := metadata.NavigationInfo(t, f)
	if err != nil {
		return fmt.Errorf("type %s: %w: %w", b.info.Name, ErrConfiguration, err)
	}

	relationship := NewFQN(b.info.Namespace, nav.AssociationName)
	b.navProperties = append(b.navProperties, NavigationProperty{
		Name:         nav.PropertyName,
		FromRole:     nav.FromRole,
		ToRole:       nav.ToRole,
		Relationship: relationship,
	})
	b.associations = append(b.associations, &Association{
		Name: nav.AssociationName,
		End1: AssociationEnd{
			Role:         nav.FromRole,
			Type:         NewFQN(nav.From.Namespace, nav.From.Name),
			Multiplicity: nav.FromMultiplicity,
		},
		End2: AssociationEnd{
			Role:         nav.ToRole,
			Type:         NewFQN(nav.To.Namespace, nav.To.Name),
			Multiplicity: nav.ToMultiplicity,
		},
	})
	return nil
}

func buildProperty(fi *metadata.FieldInfo) Property {
	p := Property{
		Name: fi.Name,
		Facets: Facets{
			Nullable:         fi.Nullable,
			MaxLength:        fi.MaxLength,
			Precision:        fi.Precision,
			Scale:            fi.Scale,
			FixedConcurrency: fi.FixedConcurrency,
		},
	}
	if fi.ComplexRef != nil {
		p.ComplexType = NewFQN(fi.ComplexRef.Namespace, fi.ComplexRef.Name)
	} else {
		p.Kind = fi.Kind
	}
	return p
}

func (b *typeBuilder) buildEntityType() *EntityType {
	return &EntityType{
		Name:                 b.info.Name,
		BaseType:             b.baseType,
		Abstract:             b.info.Abstract,
		HasStream:            b.hasStream,
		Key:                  b.key,
		Properties:           b.properties,
		NavigationProperties: b.navProperties,
	}
}

func (b *typeBuilder) buildComplexType() *ComplexType {
	return &ComplexType{
		Name:       b.info.Name,
		BaseType:   b.baseType,
		Properties: b.properties,
	}
}

func (b *typeBuilder) buildAssociations() []*Association {
	return b.associations
}
