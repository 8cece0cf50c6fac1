package aggregates

import "testing"

func TestContractValidate(t *testing.T) {
	cases := []struct {
		name    string
		c       Contract
		wantErr bool
	}{
		{"valid", Contract{Name: "A", Tx: TxOwnedByAggregate, Writes: []string{"Save", "Submit"}, Notifying: []string{"Submit"}}, false},
		{"unnamed", Contract{Tx: TxOwnedByAggregate, Writes: []string{"Save"}}, true},
		{"caller tx", Contract{Name: "A", Tx: TxOwnedByCaller, Writes: []string{"Save"}}, true},
		{"no writes", Contract{Name: "A", Tx: TxOwnedByAggregate}, true},
		{"duplicate write", Contract{Name: "A", Tx: TxOwnedByAggregate, Writes: []string{"Save", "Save"}}, true},
		{"notifying read", Contract{Name: "A", Tx: TxOwnedByAggregate, Writes: []string{"Save"}, Notifying: []string{"Get"}}, true},
	}
	for _, tc := range cases {
		err := tc.c.Validate()
		if (err != nil) != tc.wantErr {
			t.Fatalf("%s: wantErr=%v got=%v", tc.name, tc.wantErr, err)
		}
	}
}

func TestDeclaredContractsAreValid(t *testing.T) {
	for _, c := range []Contract{ApplicationAggregateContract, OfferingChangeAggregateContract, RestrictionAggregateContract} {
		if err := c.Validate(); err != nil {
			t.Fatalf("%s: %v", c.Name, err)
		}
	}
	if !ApplicationAggregateContract.Notifies("Submit") || ApplicationAggregateContract.Notifies("SaveDraft") {
		t.Fatalf("unexpected application notifying ops: %v", ApplicationAggregateContract.Notifying)
	}
	if RestrictionAggregateContract.Notifies("Resolve") {
		t.Fatalf("restriction writes do not queue notifications")
	}
}

type contractOnly Contract

func (c contractOnly) Contract() Contract { return Contract(c) }

func TestCheckContractsStopsAtFirstInvalid(t *testing.T) {
	good := contractOnly(RestrictionAggregateContract)
	bad := contractOnly(Contract{Name: "Broken", Tx: TxOwnedByCaller, Writes: []string{"Save"}})
	if err := CheckContracts(good); err != nil {
		t.Fatalf("valid aggregate rejected: %v", err)
	}
	if err := CheckContracts(good, bad); err == nil {
		t.Fatalf("expected caller-owned contract to be rejected")
	}
	if err := CheckContracts(nil); err == nil {
		t.Fatalf("expected nil aggregate to be rejected")
	}
}
