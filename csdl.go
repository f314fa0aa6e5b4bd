package edm

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

// CSDL serialization of the derived model. The document shape follows the
// EDMX/CSDL format consumed by $metadata clients; only the elements the
// derivation can produce are modelled.

const (
	edmxNamespace     = "http://schemas.microsoft.com/ado/2007/06/edmx"
	edmNamespace      = "http://schemas.microsoft.com/ado/2008/09/edm"
	metadataNamespace = "http://schemas.microsoft.com/ado/2007/08/dataservices/metadata"
)

type csdlEdmx struct {
	XMLName      xml.Name         `xml:"edmx:Edmx"`
	Version      string           `xml:"Version,attr"`
	XMLNSEdmx    string           `xml:"xmlns:edmx,attr"`
	XMLNSMeta    string           `xml:"xmlns:m,attr"`
	DataServices csdlDataServices `xml:"edmx:DataServices"`
}

type csdlDataServices struct {
	DataServiceVersion string       `xml:"m:DataServiceVersion,attr"`
	Schemas            []csdlSchema `xml:"Schema"`
}

type csdlSchema struct {
	Namespace       string                `xml:"Namespace,attr"`
	XMLNS           string                `xml:"xmlns,attr"`
	EntityTypes     []csdlEntityType      `xml:"EntityType"`
	ComplexTypes    []csdlComplexType     `xml:"ComplexType"`
	Associations    []csdlAssociation     `xml:"Association"`
	EntityContainer []csdlEntityContainer `xml:"EntityContainer"`
}

type csdlEntityType struct {
	Name                 string                   `xml:"Name,attr"`
	BaseType             string                   `xml:"BaseType,attr,omitempty"`
	Abstract             bool                     `xml:"Abstract,attr,omitempty"`
	HasStream            bool                     `xml:"m:HasStream,attr,omitempty"`
	Key                  *csdlKey                 `xml:"Key"`
	Properties           []csdlProperty           `xml:"Property"`
	NavigationProperties []csdlNavigationProperty `xml:"NavigationProperty"`
}

type csdlComplexType struct {
	Name       string         `xml:"Name,attr"`
	BaseType   string         `xml:"BaseType,attr,omitempty"`
	Properties []csdlProperty `xml:"Property"`
}

type csdlKey struct {
	PropertyRefs []csdlPropertyRef `xml:"PropertyRef"`
}

type csdlPropertyRef struct {
	Name string `xml:"Name,attr"`
}

type csdlProperty struct {
	Name            string `xml:"Name,attr"`
	Type            string `xml:"Type,attr"`
	Nullable        string `xml:"Nullable,attr,omitempty"`
	MaxLength       int    `xml:"MaxLength,attr,omitempty"`
	Precision       int    `xml:"Precision,attr,omitempty"`
	Scale           int    `xml:"Scale,attr,omitempty"`
	ConcurrencyMode string `xml:"ConcurrencyMode,attr,omitempty"`
}

type csdlNavigationProperty struct {
	Name         string `xml:"Name,attr"`
	Relationship string `xml:"Relationship,attr"`
	FromRole     string `xml:"FromRole,attr"`
	ToRole       string `xml:"ToRole,attr"`
}

type csdlAssociation struct {
	Name string    `xml:"Name,attr"`
	Ends []csdlEnd `xml:"End"`
}

type csdlEnd struct {
	Role         string `xml:"Role,attr"`
	Type         string `xml:"Type,attr"`
	Multiplicity string `xml:"Multiplicity,attr"`
}

type csdlEntityContainer struct {
	Name            string               `xml:"Name,attr"`
	IsDefault       bool                 `xml:"m:IsDefaultEntityContainer,attr,omitempty"`
	EntitySets      []csdlEntitySet      `xml:"EntitySet"`
	AssociationSets []csdlAssociationSet `xml:"AssociationSet"`
	FunctionImports []csdlFunctionImport `xml:"FunctionImport"`
}

type csdlEntitySet struct {
	Name       string `xml:"Name,attr"`
	EntityType string `xml:"EntityType,attr"`
}

type csdlAssociationSet struct {
	Name        string       `xml:"Name,attr"`
	Association string       `xml:"Association,attr"`
	Ends        []csdlSetEnd `xml:"End"`
}

type csdlSetEnd struct {
	Role      string `xml:"Role,attr"`
	EntitySet string `xml:"EntitySet,attr"`
}

type csdlFunctionImport struct {
	Name       string          `xml:"Name,attr"`
	ReturnType string          `xml:"ReturnType,attr,omitempty"`
	EntitySet  string          `xml:"EntitySet,attr,omitempty"`
	HTTPMethod string          `xml:"m:HttpMethod,attr,omitempty"`
	Parameters []csdlParameter `xml:"Parameter"`
}

type csdlParameter struct {
	Name     string `xml:"Name,attr"`
	Type     string `xml:"Type,attr"`
	Nullable string `xml:"Nullable,attr,omitempty"`
}

// buildMetadataDocument marshals the schemas into an EDMX document.
func buildMetadataDocument(schemas []*Schema) ([]byte, error) {
	doc := csdlEdmx{
		Version:   "1.0",
		XMLNSEdmx: edmxNamespace,
		XMLNSMeta: metadataNamespace,
		DataServices: csdlDataServices{
			DataServiceVersion: "2.0",
		},
	}
	for _, schema := range schemas {
		doc.DataServices.Schemas = append(doc.DataServices.Schemas, buildCSDLSchema(schema))
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

func buildCSDLSchema(schema *Schema) csdlSchema {
	out := csdlSchema{
		Namespace: schema.Namespace,
		XMLNS:     edmNamespace,
	}
	for _, et := range schema.EntityTypes {
		out.EntityTypes = append(out.EntityTypes, buildCSDLEntityType(et))
	}
	for _, ct := range schema.ComplexTypes {
		c := csdlComplexType{Name: ct.Name, Properties: buildCSDLProperties(ct.Properties)}
		if ct.BaseType != nil {
			c.BaseType = ct.BaseType.String()
		}
		out.ComplexTypes = append(out.ComplexTypes, c)
	}
	for _, assoc := range schema.Associations {
		out.Associations = append(out.Associations, csdlAssociation{
			Name: assoc.Name,
			Ends: []csdlEnd{
				{Role: assoc.End1.Role, Type: assoc.End1.Type.String(), Multiplicity: string(assoc.End1.Multiplicity)},
				{Role: assoc.End2.Role, Type: assoc.End2.Type.String(), Multiplicity: string(assoc.End2.Multiplicity)},
			},
		})
	}
	for _, container := range schema.EntityContainers {
		out.EntityContainer = append(out.EntityContainer, buildCSDLContainer(container))
	}
	return out
}

func buildCSDLEntityType(et *EntityType) csdlEntityType {
	out := csdlEntityType{
		Name:       et.Name,
		Abstract:   et.Abstract,
		HasStream:  et.HasStream,
		Properties: buildCSDLProperties(et.Properties),
	}
	if et.BaseType != nil {
		out.BaseType = et.BaseType.String()
	}
	if len(et.Key) > 0 {
		key := &csdlKey{}
		for _, ref := range et.Key {
			key.PropertyRefs = append(key.PropertyRefs, csdlPropertyRef{Name: ref.Name})
		}
		out.Key = key
	}
	for _, nav := range et.NavigationProperties {
		out.NavigationProperties = append(out.NavigationProperties, csdlNavigationProperty{
			Name:         nav.Name,
			Relationship: nav.Relationship.String(),
			FromRole:     nav.FromRole,
			ToRole:       nav.ToRole,
		})
	}
	return out
}

func buildCSDLProperties(props []Property) []csdlProperty {
	out := make([]csdlProperty, 0, len(props))
	for i := range props {
		prop := &props[i]
		c := csdlProperty{
			Name:      prop.Name,
			MaxLength: prop.Facets.MaxLength,
			Precision: prop.Facets.Precision,
			Scale:     prop.Facets.Scale,
		}
		if prop.IsComplex() {
			c.Type = prop.ComplexType.String()
		} else {
			c.Type = string(prop.Kind)
		}
		if !prop.Facets.Nullable {
			c.Nullable = "false"
		}
		if prop.Facets.FixedConcurrency {
			c.ConcurrencyMode = "Fixed"
		}
		out = append(out, c)
	}
	return out
}

func buildCSDLContainer(container *EntityContainer) csdlEntityContainer {
	out := csdlEntityContainer{
		Name:      container.Name,
		IsDefault: container.IsDefault,
	}
	for _, set := range container.EntitySets {
		out.EntitySets = append(out.EntitySets, csdlEntitySet{
			Name:       set.Name,
			EntityType: set.EntityType.String(),
		})
	}
	for _, as := range container.AssociationSets {
		out.AssociationSets = append(out.AssociationSets, csdlAssociationSet{
			Name:        as.Name,
			Association: as.Association.String(),
			Ends: []csdlSetEnd{
				{Role: as.End1.Role, EntitySet: as.End1.EntitySet},
				{Role: as.End2.Role, EntitySet: as.End2.EntitySet},
			},
		})
	}
	for _, fi := range container.FunctionImports {
		c := csdlFunctionImport{
			Name:       fi.Name,
			EntitySet:  fi.EntitySet,
			HTTPMethod: fi.HTTPMethod,
		}
		if fi.ReturnType != nil {
			c.ReturnType = fi.ReturnType.TypeName
			if fi.ReturnType.Collection {
				c.ReturnType = "Collection(" + fi.ReturnType.TypeName + ")"
			}
		}
		for _, param := range fi.Parameters {
			p := csdlParameter{Name: param.Name, Type: string(param.Kind)}
			if !param.Nullable {
				p.Nullable = "false"
			}
			c.Parameters = append(c.Parameters, p)
		}
		out.FunctionImports = append(out.FunctionImports, c)
	}
	return out
}

// metadataETag computes a strong ETag over the serialized document.
// Derivation is deterministic, so the tag is stable across restarts for the
// same model.
func metadataETag(doc []byte) string {
	return fmt.Sprintf("\"%016x\"", xxhash.Sum64(doc))
}

// WriteMetadata writes the CSDL $metadata document for the derived model.
func (p *Provider) WriteMetadata(w io.Writer) error {
	_, err := w.Write(p.metadataDoc)
	return err
}

// MetadataETag returns the strong ETag of the $metadata document.
func (p *Provider) MetadataETag() string {
	return p.etag
}
