package middleware

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

type sampleRequest struct {
	Name  string `json:"name" validate:"required,min=2"`
	Email string `json:"email" validate:"required,email"`
	Image string `json:"image" validate:"omitempty,url"`
}

func TestDecodeAndValidateRejectsMalformedJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString("{not json"))

	var payload sampleRequest
	if err := DecodeAndValidate(req, &payload); err == nil {
		t.Fatal("Expected error for malformed JSON")
	}
}

func TestDecodeAndValidateRejectsShortName(t *testing.T) {
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"name":"x","email":"a@b.com"}`))

	var payload sampleRequest
	err := DecodeAndValidate(req, &payload)
	if err == nil {
		t.Fatal("Expected validation error for one-character name")
	}

	fieldErrors := FormatValidationErrors(err)
	if len(fieldErrors) != 1 || fieldErrors[0].Field != "Name" {
		t.Errorf("Expected a single Name error, got %v", fieldErrors)
	}
}

func TestDecodeAndValidateRejectsBadURL(t *testing.T) {
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"name":"ok","email":"a@b.com","image":"not-a-url"}`))

	var payload sampleRequest
	if err := DecodeAndValidate(req, &payload); err == nil {
		t.Fatal("Expected validation error for invalid URL")
	}
}

func TestProperty_ValidPayloadsPassValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("well-formed payloads validate", prop.ForAll(
		func(name string, local string) bool {
			body := `{"name":"` + name + `","email":"` + local + `@example.com"}`
			req := httptest.NewRequest("POST", "/", bytes.NewBufferString(body))

			var payload sampleRequest
			return DecodeAndValidate(req, &payload) == nil
		},
		gen.RegexMatch(`[A-Za-z]{2,30}`),
		gen.RegexMatch(`[a-z0-9]{1,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
