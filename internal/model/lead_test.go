package model

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleJSON = `[{
	"LeadId": 7,
	"CompanyName": "Acme",
	"CompanyLocation": "Lyon",
	"LeadSource": "referral",
	"LeadDate": "2024-03-01",
	"LeadNotes": null,
	"StatusName": "Qualified",
	"OwnerName": null,
	"Contacts": [{"ContactName": "Ada", "ContactTitle": null, "ContactEmail": "ada@acme.test", "ContactPhone": null, "ContactRoleName": "CTO"}]
}]`

func TestLeadDecodesWireNames(t *testing.T) {
	var got []Lead
	if err := json.Unmarshal([]byte(sampleJSON), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []Lead{{
		ID:              7,
		CompanyName:     "Acme",
		CompanyLocation: "Lyon",
		Source:          "referral",
		Date:            "2024-03-01",
		StatusName:      Str("Qualified"),
		Contacts: []Contact{{
			Name:     Str("Ada"),
			Email:    Str("ada@acme.test"),
			RoleName: Str("CTO"),
		}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decoded lead mismatch (-want +got):\n%s", diff)
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	orig := Lead{
		ID:         1,
		Notes:      Str("call back"),
		StatusName: Str("New"),
		Contacts:   []Contact{{Name: Str("Bob")}},
	}
	cp := orig.Clone()
	*cp.Notes = "changed"
	*cp.Contacts[0].Name = "Alice"
	cp.Contacts = append(cp.Contacts, Contact{})

	if *orig.Notes != "call back" {
		t.Fatalf("notes aliased: %q", *orig.Notes)
	}
	if *orig.Contacts[0].Name != "Bob" {
		t.Fatalf("contact aliased: %q", *orig.Contacts[0].Name)
	}
	if len(orig.Contacts) != 1 {
		t.Fatalf("contacts slice aliased: %d", len(orig.Contacts))
	}
}

func TestCloneAllNilIsEmpty(t *testing.T) {
	got := CloneAll(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestStatusAndDeref(t *testing.T) {
	if s := (Lead{}).Status(); s != "" {
		t.Fatalf("expected empty status, got %q", s)
	}
	if s := (Lead{StatusName: Str("Won")}).Status(); s != "Won" {
		t.Fatalf("expected Won, got %q", s)
	}
}
