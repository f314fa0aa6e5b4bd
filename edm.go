// Package edm derives an OData Entity Data Model from Go structs that
// declare their structure through `edm` struct tags.
//
// Structs opt into the schema by embedding the Entity or Complex marker and
// tagging fields:
//
//	type Building struct {
//	    edm.Entity `edm:"namespace=RefScenario,set=Buildings,container=Container1"`
//	    ID    string `edm:"key"`
//	    Name  string
//	    Rooms []Room `edm:"nav"`
//	}
//
//	type Room struct {
//	    edm.Entity `edm:"namespace=RefScenario,set=Rooms,container=Container1"`
//	    ID       string   `edm:"key"`
//	    Seats    int32
//	    Building Building `edm:"nav"`
//	}
//
// NewProvider scans the given prototypes once, derives entity types, complex
// types, associations and containers with full referential consistency, and
// then serves qualified-name lookups to a protocol layer. A navigation pair
// like the one above is discovered independently from both sides and merged
// into a single association with complementary ends.
//
// Derivation runs exactly once, synchronously, at construction. The derived
// structures are immutable afterwards and safe for concurrent reads without
// further synchronization. Derivation failures (contradictory tags,
// unsupported field types, an association end with no matching entity set)
// are fatal construction errors; lookup misses after construction are plain
// absent results.
package edm

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/anveden/go-edm/internal/metadata"
)

const instrumentationName = "github.com/anveden/go-edm"

// Config carries the optional ambient knobs for a Provider. The zero value
// is a working configuration.
type Config struct {
	// Logger receives derivation progress at debug level. Defaults to
	// slog.Default().
	Logger *slog.Logger

	// TracerProvider enables OpenTelemetry spans around the derivation
	// phases. Nil disables tracing with zero overhead.
	TracerProvider trace.TracerProvider

	// MeterProvider enables counters for the derived type counts. Nil
	// disables metrics.
	MeterProvider metric.MeterProvider
}

// Provider derives the Entity Data Model at construction time and serves
// qualified-name lookups afterwards. All lookup methods are pure reads over
// frozen structures; misses return absent results, never errors.
type Provider struct {
	logger *slog.Logger

	schemas    map[string]*Schema
	schemaList []*Schema

	entityTypes  map[FullQualifiedName]*EntityType
	complexTypes map[FullQualifiedName]*ComplexType
	associations map[FullQualifiedName]*Association

	containers       map[string]*EntityContainer
	defaultContainer *EntityContainer

	metadataDoc []byte
	etag        string

	// Builders only live during derivation; Provider methods never touch
	// them after construction.
	schemaBuilders    map[string]*schemaBuilder
	containerBuilders map[string]*containerBuilder
}

// NewProvider derives the model from an explicit collection of struct
// prototypes. Prototypes without EDM metadata are silently discarded; an
// input collection that filters down to nothing is a configuration error,
// since a service with zero entity types cannot be valid.
func NewProvider(protos ...any) (*Provider, error) {
	return NewProviderWithConfig(Config{}, protos...)
}

// NewProviderWithConfig is NewProvider with explicit ambient configuration.
func NewProviderWithConfig(cfg Config, protos ...any) (*Provider, error) {
	seen := make(map[reflect.Type]struct{})
	var candidates []reflect.Type
	for _, proto := range protos {
		t := reflect.TypeOf(proto)
		for t != nil && t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		if t == nil {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		candidates = append(candidates, t)
	}
	return newProvider(cfg, candidates)
}

// NewProviderFromPackage derives the model from every struct registered via
// Register whose package path equals pkgPath or lives beneath it.
func NewProviderFromPackage(pkgPath string) (*Provider, error) {
	return NewProviderFromPackageWithConfig(Config{}, pkgPath)
}

// NewProviderFromPackageWithConfig is NewProviderFromPackage with explicit
// ambient configuration.
func NewProviderFromPackageWithConfig(cfg Config, pkgPath string) (*Provider, error) {
	return newProvider(cfg, defaultRegistry.TypesUnder(pkgPath))
}

func newProvider(cfg Config, candidates []reflect.Type) (*Provider, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var tp trace.TracerProvider = noop.NewTracerProvider()
	if cfg.TracerProvider != nil {
		tp = cfg.TracerProvider
	}
	tracer := tp.Tracer(instrumentationName)

	p := &Provider{
		logger:            logger,
		schemas:           make(map[string]*Schema),
		entityTypes:       make(map[FullQualifiedName]*EntityType),
		complexTypes:      make(map[FullQualifiedName]*ComplexType),
		associations:      make(map[FullQualifiedName]*Association),
		containers:        make(map[string]*EntityContainer),
		schemaBuilders:    make(map[string]*schemaBuilder),
		containerBuilders: make(map[string]*containerBuilder),
	}

	ctx, span := tracer.Start(context.Background(), "edm.derive")
	defer span.End()

	annotated := make([]reflect.Type, 0, len(candidates))
	for _, t := range candidates {
		if !metadata.IsAnnotated(t) {
			logger.Debug("discarding type without EDM metadata", "type", t.String())
			continue
		}
		if err := metadata.ErrDescribeType(t); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		annotated = append(annotated, t)
	}
	if len(annotated) == 0 {
		return nil, fmt.Errorf("%w: no EDM-annotated types in input collection", ErrConfiguration)
	}
	// Candidate order is made deterministic up front so that every later
	// decision, including default-container selection, is reproducible.
	sortTypes(annotated)

	for _, t := range annotated {
		info, _ := metadata.DescribeType(t)
		if err := p.updateSchema(info); err != nil {
			return nil, err
		}
		if err := p.handleContainer(info); err != nil {
			return nil, err
		}
	}

	if err := p.finish(); err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("edm.entity_types", len(p.entityTypes)),
		attribute.Int("edm.complex_types", len(p.complexTypes)),
		attribute.Int("edm.associations", len(p.associations)),
		attribute.Int("edm.containers", len(p.containers)),
	)
	p.recordMetrics(ctx, cfg.MeterProvider)
	logger.Info("entity data model derived",
		"schemas", len(p.schemaList),
		"entity_types", len(p.entityTypes),
		"complex_types", len(p.complexTypes),
		"associations", len(p.associations),
		"containers", len(p.containers),
	)

	// The builders are construction scaffolding; drop them so the provider
	// only holds the frozen model.
	p.schemaBuilders = nil
	p.containerBuilders = nil
	return p, nil
}

func (p *Provider) recordMetrics(ctx context.Context, mp metric.MeterProvider) {
	if mp == nil {
		return
	}
	meter := mp.Meter(instrumentationName)
	counter, err := meter.Int64Counter("edm.types.derived",
		metric.WithDescription("Number of schema elements derived at bootstrap"))
	if err != nil {
		p.logger.Warn("failed to create derivation counter", "error", err)
		return
	}
	counter.Add(ctx, int64(len(p.entityTypes)), metric.WithAttributes(attribute.String("edm.element", "entity_type")))
	counter.Add(ctx, int64(len(p.complexTypes)), metric.WithAttributes(attribute.String("edm.element", "complex_type")))
	counter.Add(ctx, int64(len(p.associations)), metric.WithAttributes(attribute.String("edm.element", "association")))
}

// updateSchema runs the type builder for one annotated struct and feeds the
// result into its namespace's schema builder.
func (p *Provider) updateSchema(info *metadata.TypeInfo) error {
	b := p.schemaBuilderFor(info.Namespace)
	tb, err := newTypeBuilder(info)
	if err != nil {
		return err
	}
	if info.IsEntity {
		b.addEntityType(tb.buildEntityType())
		b.addAssociations(tb.buildAssociations())
		p.logger.Debug("derived entity type", "type", info.FQN())
	} else {
		b.addComplexType(tb.buildComplexType())
		p.logger.Debug("derived complex type", "type", info.FQN())
	}
	return nil
}

func (p *Provider) schemaBuilderFor(namespace string) *schemaBuilder {
	b, ok := p.schemaBuilders[namespace]
	if !ok {
		b = newSchemaBuilder(namespace)
		p.schemaBuilders[namespace] = b
	}
	return b
}

// handleContainer attaches the struct's entity set and function imports to
// the container named by its metadata.
func (p *Provider) handleContainer(info *metadata.TypeInfo) error {
	if info.IsEntity && info.HasEntitySet {
		cb := p.containerBuilderFor(info.Namespace, info.ContainerName)
		if info.DefaultContainer {
			cb.explicitDefault = true
		}
		cb.addEntitySet(&EntitySet{
			Name:       info.EntitySetName,
			EntityType: NewFQN(info.Namespace, info.Name),
		})
	}

	defs := metadata.FunctionImports(info.Type)
	if len(defs) == 0 {
		return nil
	}
	cb := p.containerBuilderFor(info.Namespace, info.ContainerName)
	if info.DefaultContainer {
		cb.explicitDefault = true
	}
	for _, def := range defs {
		fi, err := buildFunctionImport(def)
		if err != nil {
			return fmt.Errorf("type %s: %w", info.Name, err)
		}
		cb.addFunctionImport(fi)
	}
	return nil
}

func (p *Provider) containerBuilderFor(namespace, name string) *containerBuilder {
	cb, ok := p.containerBuilders[name]
	if !ok {
		cb = newContainerBuilder(namespace, name)
		p.containerBuilders[name] = cb
	}
	return cb
}

func buildFunctionImport(def FunctionImportDef) (*FunctionImport, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("%w: function import without a name", ErrConfiguration)
	}
	fi := &FunctionImport{
		Name:       def.Name,
		HTTPMethod: def.HTTPMethod,
		EntitySet:  def.EntitySet,
	}
	if def.ReturnType != nil {
		fi.ReturnType = &ReturnType{
			TypeName:   def.ReturnType.TypeName,
			Collection: def.ReturnType.Collection,
		}
	}
	for _, param := range def.Parameters {
		if !metadata.KnownKind(param.Kind) {
			return nil, fmt.Errorf("%w: function import %s: unknown parameter kind %q", ErrConfiguration, def.Name, param.Kind)
		}
		fi.Parameters = append(fi.Parameters, FunctionParameter{
			Name:     param.Name,
			Kind:     param.Kind,
			Nullable: param.Nullable,
		})
	}
	return fi, nil
}

// finish is the single finishing pass: expand associations into association
// sets, pick the default container, freeze and index the schemas, and run
// the referential-integrity checks. After finish returns the model never
// changes.
func (p *Provider) finish() error {
	containerNames := make([]string, 0, len(p.containerBuilders))
	for name := range p.containerBuilders {
		containerNames = append(containerNames, name)
	}
	sort.Strings(containerNames)

	// An explicitly marked default wins; otherwise the first container in
	// name order. Either way the choice does not depend on input order.
	defaultName := ""
	for _, name := range containerNames {
		if p.containerBuilders[name].explicitDefault {
			defaultName = name
			break
		}
	}
	if defaultName == "" && len(containerNames) > 0 {
		defaultName = containerNames[0]
	}

	for _, name := range containerNames {
		cb := p.containerBuilders[name]
		sb := p.schemaBuilderFor(cb.namespace)
		if err := cb.expandAssociationSets(sb.sortedAssociations()); err != nil {
			return err
		}
		container := cb.build(name == defaultName)
		sb.addEntityContainer(container)
		p.containers[name] = container
		if container.IsDefault {
			p.defaultContainer = container
		}
	}

	namespaces := make([]string, 0, len(p.schemaBuilders))
	for ns := range p.schemaBuilders {
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)

	for _, ns := range namespaces {
		schema := p.schemaBuilders[ns].build()
		p.schemas[ns] = schema
		p.schemaList = append(p.schemaList, schema)
		for _, et := range schema.EntityTypes {
			p.entityTypes[NewFQN(ns, et.Name)] = et
		}
		for _, ct := range schema.ComplexTypes {
			p.complexTypes[NewFQN(ns, ct.Name)] = ct
		}
		for _, assoc := range schema.Associations {
			p.associations[NewFQN(ns, assoc.Name)] = assoc
		}
	}

	if err := p.checkReferences(); err != nil {
		return err
	}

	doc, err := buildMetadataDocument(p.schemaList)
	if err != nil {
		return fmt.Errorf("serializing metadata document: %w", err)
	}
	p.metadataDoc = doc
	p.etag = metadataETag(doc)
	return nil
}

// checkReferences verifies full referential consistency of the frozen model:
// complex property references, base-type references, and key presence on
// non-abstract entity types (considering inherited keys).
func (p *Provider) checkReferences() error {
	for _, schema := range p.schemaList {
		for _, et := range schema.EntityTypes {
			if err := p.checkProperties(schema.Namespace, et.Name, et.Properties); err != nil {
				return err
			}
			if et.BaseType != nil {
				if _, ok := p.entityTypes[*et.BaseType]; !ok {
					return fmt.Errorf("entity type %s.%s: %w: unknown base type %s", schema.Namespace, et.Name, ErrIntegrity, et.BaseType)
				}
			}
			if !et.Abstract && !p.hasKey(et) {
				return fmt.Errorf("entity type %s.%s: %w: non-abstract entity type has no key property", schema.Namespace, et.Name, ErrConfiguration)
			}
		}
		for _, ct := range schema.ComplexTypes {
			if err := p.checkProperties(schema.Namespace, ct.Name, ct.Properties); err != nil {
				return err
			}
			if ct.BaseType != nil {
				if _, ok := p.complexTypes[*ct.BaseType]; !ok {
					return fmt.Errorf("complex type %s.%s: %w: unknown base type %s", schema.Namespace, ct.Name, ErrIntegrity, ct.BaseType)
				}
			}
		}
	}
	return nil
}

func (p *Provider) checkProperties(namespace, typeName string, props []Property) error {
	for i := range props {
		prop := &props[i]
		if !prop.IsComplex() {
			continue
		}
		if _, ok := p.complexTypes[prop.ComplexType]; !ok {
			return fmt.Errorf("type %s.%s, property %s: %w: unresolved complex type reference %s",
				namespace, typeName, prop.Name, ErrIntegrity, prop.ComplexType)
		}
	}
	return nil
}

// hasKey walks the base-type chain looking for at least one key property.
func (p *Provider) hasKey(et *EntityType) bool {
	for et != nil {
		if len(et.Key) > 0 {
			return true
		}
		if et.BaseType == nil {
			return false
		}
		et = p.entityTypes[*et.BaseType]
	}
	return false
}

// EntityType returns the entity type with the given qualified name, or nil.
func (p *Provider) EntityType(fqn FullQualifiedName) *EntityType {
	return p.entityTypes[fqn]
}

// ComplexType returns the complex type with the given qualified name, or nil.
func (p *Provider) ComplexType(fqn FullQualifiedName) *ComplexType {
	return p.complexTypes[fqn]
}

// Association returns the association with the given qualified name, or nil.
func (p *Provider) Association(fqn FullQualifiedName) *Association {
	return p.associations[fqn]
}

// EntityContainerInfo returns lookup information for the named container.
// An empty name selects the default container.
func (p *Provider) EntityContainerInfo(name string) (EntityContainerInfo, bool) {
	var container *EntityContainer
	if name == "" {
		container = p.defaultContainer
	} else {
		container = p.containers[name]
	}
	if container == nil {
		return EntityContainerInfo{}, false
	}
	return EntityContainerInfo{Name: container.Name, IsDefault: container.IsDefault}, true
}

// EntitySet returns the named entity set of the given container, or nil.
func (p *Provider) EntitySet(container, name string) *EntitySet {
	c, ok := p.containers[container]
	if !ok {
		return nil
	}
	for _, set := range c.EntitySets {
		if set.Name == name {
			return set
		}
	}
	return nil
}

// AssociationSet returns the association set of the given container that
// matches the association's qualified name and binds sourceRole to
// sourceSetName on either end, or nil.
func (p *Provider) AssociationSet(container string, association FullQualifiedName, sourceSetName, sourceRole string) *AssociationSet {
	c, ok := p.containers[container]
	if !ok {
		return nil
	}
	for _, as := range c.AssociationSets {
		if as.Association != association {
			continue
		}
		if as.End1.Role == sourceRole && as.End1.EntitySet == sourceSetName {
			return as
		}
		if as.End2.Role == sourceRole && as.End2.EntitySet == sourceSetName {
			return as
		}
	}
	return nil
}

// FunctionImport returns the named operation of the given container, or nil.
func (p *Provider) FunctionImport(container, name string) *FunctionImport {
	c, ok := p.containers[container]
	if !ok {
		return nil
	}
	for _, fi := range c.FunctionImports {
		if fi.Name == name {
			return fi
		}
	}
	return nil
}

// Schemas returns all derived schemas, ordered by namespace. The returned
// structures are shared and must not be mutated.
func (p *Provider) Schemas() []*Schema {
	out := make([]*Schema, len(p.schemaList))
	copy(out, p.schemaList)
	return out
}
