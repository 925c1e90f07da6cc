package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
)

type sample struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color" validate:"omitempty,color"`
}

func TestFieldErrorsUsesJSONNames(t *testing.T) {
	val := New()
	if err := val.RegisterValidation("color", func(fl validator.FieldLevel) bool {
		return fl.Field().String() == "red"
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	err := val.Struct(sample{Color: "blue"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	fields := FieldErrors(err)
	if fields["sample.name"] != "required" {
		t.Errorf("expected required on sample.name, got %v", fields)
	}
	if fields["sample.color"] != "color" {
		t.Errorf("expected color on sample.color, got %v", fields)
	}
}

func TestFieldErrorsIgnoresOtherErrors(t *testing.T) {
	if FieldErrors(errors.New("boom")) != nil {
		t.Fatal("expected nil for non-validation errors")
	}
}
