package edm

import "sort"

// schemaBuilder accumulates type-builder output for one namespace across all
// scanned structs sharing it, and deduplicates associations discovered
// independently from the two sides of a navigation pair.
type schemaBuilder struct {
	namespace    string
	entityTypes  []*EntityType
	complexTypes []*ComplexType
	associations map[string]*Association
	containers   []*EntityContainer
}

func newSchemaBuilder(namespace string) *schemaBuilder {
	return &schemaBuilder{
		namespace:    namespace,
		associations: make(map[string]*Association),
	}
}

func (b *schemaBuilder) addEntityType(t *EntityType) {
	b.entityTypes = append(b.entityTypes, t)
}

func (b *schemaBuilder) addComplexType(t *ComplexType) {
	b.complexTypes = append(b.complexTypes, t)
}

func (b *schemaBuilder) addEntityContainer(c *EntityContainer) {
	b.containers = append(b.containers, c)
}

// addAssociations records the associations implied by one type's navigation
// fields. An incoming association whose name is already recorded is merged
// end-by-end instead of added: the two sides of a navigation pair each derive
// the relationship with the same canonical name and complementary ends.
func (b *schemaBuilder) addAssociations(assocs []*Association) {
	for _, assoc := range assocs {
		existing, ok := b.associations[assoc.Name]
		if !ok {
			b.associations[assoc.Name] = assoc
			continue
		}
		mergeAssociation(existing, assoc)
	}
}

// mergeAssociation widens the recorded association's end multiplicities with
// the incoming sighting, matching ends by role name. Multiplicity only ever
// widens toward many: a relationship is fundamentally to-many if either side
// declares a collection, even when the opposite side omitted it.
func mergeAssociation(existing, incoming *Association) {
	for _, end := range []*AssociationEnd{&existing.End1, &existing.End2} {
		if end.Role == incoming.End1.Role && incoming.End1.Multiplicity == MultiplicityMany {
			end.Multiplicity = MultiplicityMany
		}
		if end.Role == incoming.End2.Role && incoming.End2.Multiplicity == MultiplicityMany {
			end.Multiplicity = MultiplicityMany
		}
	}
}

// sortedAssociations returns the recorded associations ordered by name, so
// every pass over them is deterministic.
func (b *schemaBuilder) sortedAssociations() []*Association {
	assocs := make([]*Association, 0, len(b.associations))
	for _, a := range b.associations {
		assocs = append(assocs, a)
	}
	sort.Slice(assocs, func(i, j int) bool { return assocs[i].Name < assocs[j].Name })
	return assocs
}

func (b *schemaBuilder) build() *Schema {
	return &Schema{
		Namespace:        b.namespace,
		EntityTypes:      b.entityTypes,
		ComplexTypes:     b.complexTypes,
		Associations:     b.sortedAssociations(),
		EntityContainers: b.containers,
	}
}
