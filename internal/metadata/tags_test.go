package metadata

import "testing"

func TestParseTypeTag(t *testing.T) {
	tt, err := parseTypeTag("namespace=RefScenario,name=Base,set=Buildings,container=Container1,defaultContainer,abstract")
	if err != nil {
		t.Fatalf("parseTypeTag failed: %v", err)
	}
	if tt.namespace != "RefScenario" {
		t.Errorf("Expected namespace RefScenario, got %q", tt.namespace)
	}
	if tt.name != "Base" {
		t.Errorf("Expected name Base, got %q", tt.name)
	}
	if !tt.hasEntitySet || tt.entitySetName != "Buildings" {
		t.Errorf("Expected entity set Buildings, got hasEntitySet=%v name=%q", tt.hasEntitySet, tt.entitySetName)
	}
	if tt.containerName != "Container1" {
		t.Errorf("Expected container Container1, got %q", tt.containerName)
	}
	if !tt.defaultContainer {
		t.Error("Expected defaultContainer to be set")
	}
	if !tt.abstract {
		t.Error("Expected abstract to be set")
	}
}

func TestParseTypeTag_BareSet(t *testing.T) {
	tt, err := parseTypeTag("set")
	if err != nil {
		t.Fatalf("parseTypeTag failed: %v", err)
	}
	if !tt.hasEntitySet {
		t.Error("Expected hasEntitySet for bare set")
	}
	if tt.entitySetName != "" {
		t.Errorf("Expected empty set name for bare set, got %q", tt.entitySetName)
	}
}

func TestParseTypeTag_Unknown(t *testing.T) {
	if _, err := parseTypeTag("namespace=a,entityset=b"); err == nil {
		t.Error("Expected error for unknown tag part")
	}
}

func TestParseFieldTag(t *testing.T) {
	ft, err := parseFieldTag("key,name=Id,maxlength=40,precision=10,scale=2,nullable=false,concurrency")
	if err != nil {
		t.Fatalf("parseFieldTag failed: %v", err)
	}
	if !ft.key {
		t.Error("Expected key to be set")
	}
	if ft.name != "Id" {
		t.Errorf("Expected name Id, got %q", ft.name)
	}
	if ft.maxLength != 40 || ft.precision != 10 || ft.scale != 2 {
		t.Errorf("Expected facets 40/10/2, got %d/%d/%d", ft.maxLength, ft.precision, ft.scale)
	}
	if !ft.nullableSet || ft.nullable {
		t.Errorf("Expected nullable=false, got set=%v value=%v", ft.nullableSet, ft.nullable)
	}
	if !ft.concurrency {
		t.Error("Expected concurrency to be set")
	}
}

func TestParseFieldTag_Navigation(t *testing.T) {
	ft, err := parseFieldTag("nav,fromRole=r_Building,toRole=r_Room,association=BuildingRooms,multiplicity=*")
	if err != nil {
		t.Fatalf("parseFieldTag failed: %v", err)
	}
	if !ft.nav {
		t.Error("Expected nav to be set")
	}
	if ft.fromRole != "r_Building" || ft.toRole != "r_Room" {
		t.Errorf("Expected roles r_Building/r_Room, got %q/%q", ft.fromRole, ft.toRole)
	}
	if ft.association != "BuildingRooms" {
		t.Errorf("Expected association BuildingRooms, got %q", ft.association)
	}
	if ft.multiplicity != MultiplicityMany {
		t.Errorf("Expected multiplicity *, got %q", ft.multiplicity)
	}
}

func TestParseFieldTag_Skip(t *testing.T) {
	ft, err := parseFieldTag("-")
	if err != nil {
		t.Fatalf("parseFieldTag failed: %v", err)
	}
	if !ft.skip {
		t.Error("Expected skip for tag \"-\"")
	}
}

func TestParseFieldTag_Errors(t *testing.T) {
	tests := []struct {
		name string
		tag  string
	}{
		{"unknown part", "primarykey"},
		{"unknown kind", "type=Edm.Street"},
		{"bad maxlength", "maxlength=ten"},
		{"negative precision", "precision=-1"},
		{"bad multiplicity", "multiplicity=2"},
		{"key and nav", "key,nav"},
		{"media and nav", "nav,mediaContent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseFieldTag(tt.tag); err == nil {
				t.Errorf("Expected error for tag %q", tt.tag)
			}
		})
	}
}

func TestFieldTagHasPropertyParts(t *testing.T) {
	ft, err := parseFieldTag("mediaContent")
	if err != nil {
		t.Fatalf("parseFieldTag failed: %v", err)
	}
	if ft.hasPropertyParts() {
		t.Error("Expected bare mediaContent to carry no property parts")
	}

	ft, err = parseFieldTag("mediaContent,maxlength=16")
	if err != nil {
		t.Fatalf("parseFieldTag failed: %v", err)
	}
	if !ft.hasPropertyParts() {
		t.Error("Expected mediaContent with a facet to carry property parts")
	}
}
