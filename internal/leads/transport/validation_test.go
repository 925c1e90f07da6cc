package transport

import (
	"testing"

	"leadflow_backend/platform/validator"

	"github.com/google/uuid"
)

func newValidator(t *testing.T) *validator.Validator {
	t.Helper()
	v := validator.New()
	if err := RegisterValidations(v); err != nil {
		t.Fatalf("register: %v", err)
	}
	return v
}

func TestUpdateStatusRequestValidation(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		status string
		valid  bool
	}{
		{"DNR1", true},
		{"Cut Call", true},
		{"Converted", true},
		{"", false},
		{"converted", false},
		{"DNR5", false},
	}

	for _, tc := range tests {
		err := v.Struct(UpdateStatusRequest{Status: tc.status})
		if (err == nil) != tc.valid {
			t.Errorf("status %q: err = %v, want valid=%v", tc.status, err, tc.valid)
		}
	}
}

func TestUnknownStatusReportsFieldTag(t *testing.T) {
	v := newValidator(t)

	details := validator.FieldErrors(v.Struct(UpdateStatusRequest{Status: "Maybe"}))
	if details["UpdateStatusRequest.status"] != TagLeadStatus {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestAssignLeadsRequestValidation(t *testing.T) {
	v := newValidator(t)

	if err := v.Struct(AssignLeadsRequest{LeadIDs: []uuid.UUID{uuid.New()}, BOEID: uuid.New()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Struct(AssignLeadsRequest{BOEID: uuid.New()}); err == nil {
		t.Fatal("expected empty lead list to fail")
	}
	if err := v.Struct(AssignLeadsRequest{LeadIDs: []uuid.UUID{uuid.New()}}); err == nil {
		t.Fatal("expected missing boe id to fail")
	}
}

func TestImportLeadsRequestDivesIntoItems(t *testing.T) {
	v := newValidator(t)
	bad := "not-an-email"

	req := ImportLeadsRequest{
		Source: "facebook",
		Leads: []ImportLeadItem{
			{ConsumerName: "Asha", ConsumerPhone: "9876543210"},
			{ConsumerName: "Ravi", ConsumerPhone: "9876500000", ConsumerEmail: &bad},
		},
	}
	if err := v.Struct(req); err == nil {
		t.Fatal("expected invalid email in second item to fail")
	}

	req.Leads[1].ConsumerEmail = nil
	if err := v.Struct(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
