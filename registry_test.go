package edm

import "testing"

func TestRegistryRegister(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&Building{}, Building{}, &Room{})
	reg.Register(&Room{})
	reg.Register("not a struct", 42, nil)

	types := reg.TypesUnder("github.com/anveden/go-edm")
	if len(types) != 2 {
		t.Fatalf("Expected 2 registered types, got %d", len(types))
	}
	// Sorted by package path and name.
	if types[0].Name() != "Building" || types[1].Name() != "Room" {
		t.Errorf("Expected [Building Room], got [%s %s]", types[0].Name(), types[1].Name())
	}
}

func TestRegistryTypesUnder(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&Building{})

	// Parent paths match everything registered beneath them.
	if got := reg.TypesUnder("github.com/anveden"); len(got) != 1 {
		t.Errorf("Expected parent path to match subpackages, got %d", len(got))
	}
	// A path boundary match requires the full path element.
	if got := reg.TypesUnder("github.com/anveden/go-ed"); len(got) != 0 {
		t.Errorf("Expected no match for partial path element, got %d", len(got))
	}
	if got := reg.TypesUnder("github.com/anveden/go-edm"); len(got) != 1 {
		t.Errorf("Expected exact package match, got %d", len(got))
	}
}
