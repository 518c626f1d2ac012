package enhance

import (
	"errors"
	"strings"
	"testing"

	"lookout/internal/services"
)

func TestValidateResponseAcceptsValidFields(t *testing.T) {
	fields, err := ValidateResponse(`{"title":"Richard at front door","subtitle":"Person • Front door","body":"Walking up holding a package."}`)
	if err != nil {
		t.Fatalf("ValidateResponse returned error: %v", err)
	}
	if fields.Title != "Richard at front door" {
		t.Fatalf("unexpected title %q", fields.Title)
	}
	if fields.Subtitle != "Person • Front door" {
		t.Fatalf("unexpected subtitle %q", fields.Subtitle)
	}
	if fields.Body != "Walking up holding a package." {
		t.Fatalf("unexpected body %q", fields.Body)
	}
}

func TestValidateResponseAcceptsOverLengthFields(t *testing.T) {
	long := strings.Repeat("x", 200)
	fields, err := ValidateResponse(`{"title":"` + long + `","subtitle":"s","body":"b"}`)
	if err != nil {
		t.Fatalf("expected over-length fields to pass, got %v", err)
	}
	if len(fields.Title) != 200 {
		t.Fatalf("title truncated to %d chars", len(fields.Title))
	}
}

func TestValidateResponseAcceptsFencedJSON(t *testing.T) {
	content := "```json\n{\"title\":\"t\",\"subtitle\":\"s\",\"body\":\"b\"}\n```"
	if _, err := ValidateResponse(content); err != nil {
		t.Fatalf("expected fenced JSON to pass, got %v", err)
	}
}

func TestValidateResponseMissingField(t *testing.T) {
	_, err := ValidateResponse(`{"title":"t","subtitle":"s"}`)
	if err == nil {
		t.Fatal("expected validation to fail")
	}
	if !errors.Is(err, services.ErrSchema) {
		t.Fatalf("expected schema marker, got %v", err)
	}
}

func TestValidateResponseNonStringField(t *testing.T) {
	_, err := ValidateResponse(`{"title":5,"subtitle":"s","body":"b"}`)
	if err == nil {
		t.Fatal("expected validation to fail")
	}
	if !errors.Is(err, services.ErrSchema) {
		t.Fatalf("expected schema marker, got %v", err)
	}
}

func TestValidateResponseExtraField(t *testing.T) {
	_, err := ValidateResponse(`{"title":"t","subtitle":"s","body":"b","confidence":0.9}`)
	if err == nil {
		t.Fatal("expected validation to fail on extra field")
	}
	if !errors.Is(err, services.ErrSchema) {
		t.Fatalf("expected schema marker, got %v", err)
	}
}

func TestValidateResponseNonObject(t *testing.T) {
	_, err := ValidateResponse(`["title","subtitle","body"]`)
	if err == nil {
		t.Fatal("expected validation to fail on array payload")
	}
	if !errors.Is(err, services.ErrSchema) {
		t.Fatalf("expected schema marker, got %v", err)
	}
}

func TestValidateResponseUnparseableContent(t *testing.T) {
	_, err := ValidateResponse("The image shows a person at the door.")
	if err == nil {
		t.Fatal("expected validation to fail on prose")
	}
	if !errors.Is(err, services.ErrCall) {
		t.Fatalf("expected call marker for unparseable content, got %v", err)
	}
	if errors.Is(err, services.ErrSchema) {
		t.Fatalf("unparseable content must not be a schema failure: %v", err)
	}
}
