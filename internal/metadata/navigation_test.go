package metadata

import (
	"reflect"
	"testing"
)

func navField(t *testing.T, typ interface{}, name string) (reflect.Type, reflect.StructField) {
	t.Helper()
	owner := reflect.TypeOf(typ)
	f, ok := owner.FieldByName(name)
	if !ok {
		t.Fatalf("No field %s on %T", name, typ)
	}
	return owner, f
}

func TestNavigationInfo_ManySide(t *testing.T) {
	owner, f := navField(t, Building{}, "Rooms")
	info, err := NavigationInfo(owner, f)
	if err != nil {
		t.Fatalf("NavigationInfo failed: %v", err)
	}
	if info.From.Name != "Building" || info.To.Name != "Room" {
		t.Errorf("Expected Building -> Room, got %s -> %s", info.From.Name, info.To.Name)
	}
	if info.ToMultiplicity != MultiplicityMany {
		t.Errorf("Expected to-multiplicity *, got %q", info.ToMultiplicity)
	}
	// The reciprocal field on Room is a pointer, so the from end is optional.
	if info.FromMultiplicity != MultiplicityZeroOrOne {
		t.Errorf("Expected from-multiplicity 0..1, got %q", info.FromMultiplicity)
	}
	if info.FromRole != "r_Building" || info.ToRole != "r_Room" {
		t.Errorf("Expected roles r_Building/r_Room, got %q/%q", info.FromRole, info.ToRole)
	}
	if info.AssociationName != "Building_Room" {
		t.Errorf("Expected association Building_Room, got %q", info.AssociationName)
	}
}

func TestNavigationInfo_BothSidesAgree(t *testing.T) {
	owner, f := navField(t, Building{}, "Rooms")
	fromBuilding, err := NavigationInfo(owner, f)
	if err != nil {
		t.Fatalf("NavigationInfo from Building failed: %v", err)
	}

	owner, f = navField(t, Room{}, "Building")
	fromRoom, err := NavigationInfo(owner, f)
	if err != nil {
		t.Fatalf("NavigationInfo from Room failed: %v", err)
	}

	if fromBuilding.AssociationName != fromRoom.AssociationName {
		t.Errorf("Expected identical association names, got %q and %q",
			fromBuilding.AssociationName, fromRoom.AssociationName)
	}
	if fromBuilding.FromRole != fromRoom.ToRole || fromBuilding.ToRole != fromRoom.FromRole {
		t.Errorf("Expected mirrored roles, got %q/%q vs %q/%q",
			fromBuilding.FromRole, fromBuilding.ToRole, fromRoom.FromRole, fromRoom.ToRole)
	}
	if fromBuilding.FromMultiplicity != fromRoom.ToMultiplicity {
		t.Errorf("Expected mirrored multiplicities, got %q vs %q",
			fromBuilding.FromMultiplicity, fromRoom.ToMultiplicity)
	}
}

func TestNavigationInfo_OneSided(t *testing.T) {
	type Tag struct {
		Entity `edm:"namespace=RefScenario"`

		ID string `edm:"key"`
	}
	type Post struct {
		Entity `edm:"namespace=RefScenario"`

		ID   string `edm:"key"`
		Tags []Tag  `edm:"nav"`
	}

	owner, f := navField(t, Post{}, "Tags")
	info, err := NavigationInfo(owner, f)
	if err != nil {
		t.Fatalf("NavigationInfo failed: %v", err)
	}
	// No reciprocal declaration; the from end defaults to exactly one.
	if info.FromMultiplicity != MultiplicityOne {
		t.Errorf("Expected from-multiplicity 1, got %q", info.FromMultiplicity)
	}
	if info.ToMultiplicity != MultiplicityMany {
		t.Errorf("Expected to-multiplicity *, got %q", info.ToMultiplicity)
	}
}

func TestNavigationInfo_TagOverrides(t *testing.T) {
	type Account struct {
		Entity `edm:"namespace=RefScenario"`

		ID string `edm:"key"`
	}
	type Customer struct {
		Entity `edm:"namespace=RefScenario"`

		ID      string   `edm:"key"`
		Account *Account `edm:"nav,fromRole=r_Owner,toRole=r_Owned,association=Ownership,multiplicity=1"`
	}

	owner, f := navField(t, Customer{}, "Account")
	info, err := NavigationInfo(owner, f)
	if err != nil {
		t.Fatalf("NavigationInfo failed: %v", err)
	}
	if info.FromRole != "r_Owner" || info.ToRole != "r_Owned" {
		t.Errorf("Expected declared roles, got %q/%q", info.FromRole, info.ToRole)
	}
	if info.AssociationName != "Ownership" {
		t.Errorf("Expected association Ownership, got %q", info.AssociationName)
	}
	// Pointer shape says 0..1 but the tag pins the end to exactly one.
	if info.ToMultiplicity != MultiplicityOne {
		t.Errorf("Expected to-multiplicity 1, got %q", info.ToMultiplicity)
	}
}

func TestNavigationInfo_SelfReference(t *testing.T) {
	owner, f := navField(t, Employee{}, "Manager")
	info, err := NavigationInfo(owner, f)
	if err != nil {
		t.Fatalf("NavigationInfo failed: %v", err)
	}
	if info.FromRole == info.ToRole {
		t.Fatalf("Expected distinct roles for self reference, both are %q", info.FromRole)
	}
	if info.ToRole != "r_Employee_Manager" {
		t.Errorf("Expected field-qualified to-role, got %q", info.ToRole)
	}
	if info.ToMultiplicity != MultiplicityZeroOrOne {
		t.Errorf("Expected to-multiplicity 0..1, got %q", info.ToMultiplicity)
	}
}

func TestNavigationInfo_SelfReferencePair(t *testing.T) {
	type Worker struct {
		Entity `edm:"namespace=RefScenario"`

		ID      string   `edm:"key"`
		Manager *Worker  `edm:"nav"`
		Reports []Worker `edm:"nav"`
	}

	owner, f := navField(t, Worker{}, "Manager")
	fromManager, err := NavigationInfo(owner, f)
	if err != nil {
		t.Fatalf("NavigationInfo for Manager failed: %v", err)
	}
	owner, f = navField(t, Worker{}, "Reports")
	fromReports, err := NavigationInfo(owner, f)
	if err != nil {
		t.Fatalf("NavigationInfo for Reports failed: %v", err)
	}

	// Each end's role comes from the field reaching it, so both sides of
	// the pair derive the same two roles.
	if fromManager.ToRole != "r_Worker_Manager" || fromManager.FromRole != "r_Worker_Reports" {
		t.Errorf("Manager side: expected roles r_Worker_Reports -> r_Worker_Manager, got %q -> %q",
			fromManager.FromRole, fromManager.ToRole)
	}
	if fromReports.FromRole != fromManager.ToRole || fromReports.ToRole != fromManager.FromRole {
		t.Errorf("Expected mirrored roles, got %q/%q vs %q/%q",
			fromManager.FromRole, fromManager.ToRole, fromReports.FromRole, fromReports.ToRole)
	}
	if fromManager.AssociationName != fromReports.AssociationName {
		t.Errorf("Expected identical association names, got %q and %q",
			fromManager.AssociationName, fromReports.AssociationName)
	}
	if fromManager.ToMultiplicity != MultiplicityZeroOrOne || fromManager.FromMultiplicity != MultiplicityMany {
		t.Errorf("Manager side: expected multiplicities * -> 0..1, got %q -> %q",
			fromManager.FromMultiplicity, fromManager.ToMultiplicity)
	}
}

func TestNavigationInfo_RoleCollision(t *testing.T) {
	type Node struct {
		Entity `edm:"namespace=RefScenario"`

		ID   string `edm:"key"`
		Next *Node  `edm:"nav,fromRole=r_Node,toRole=r_Node"`
	}
	owner, f := navField(t, Node{}, "Next")
	if _, err := NavigationInfo(owner, f); err == nil {
		t.Error("Expected error for identical roles on both ends")
	}
}

func TestNavigationInfo_TargetNotEntity(t *testing.T) {
	type plain struct{ ID string }
	type Owner struct {
		Entity `edm:"namespace=RefScenario"`

		ID    string  `edm:"key"`
		Items []plain `edm:"nav"`
	}
	owner, f := navField(t, Owner{}, "Items")
	if _, err := NavigationInfo(owner, f); err == nil {
		t.Error("Expected error for navigation to non-entity target")
	}

	type Bad struct {
		Entity `edm:"namespace=RefScenario"`

		ID    string `edm:"key"`
		Count int    `edm:"nav"`
	}
	owner, f = navField(t, Bad{}, "Count")
	if _, err := NavigationInfo(owner, f); err == nil {
		t.Error("Expected error for navigation on scalar field")
	}
}
