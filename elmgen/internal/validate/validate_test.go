package validate

import (
	"errors"
	"testing"
)

type endpoint struct {
	Method string `validate:"required,oneof=GET POST"`
	Path   string `validate:"required,startswith=/"`
}

type document struct {
	Name      string     `validate:"required"`
	Endpoints []endpoint `validate:"min=1,dive"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name string
		doc  document
		want []string
	}{
		{
			name: "valid",
			doc:  document{Name: "api", Endpoints: []endpoint{{Method: "GET", Path: "/books"}}},
		},
		{
			name: "missing name and endpoints",
			doc:  document{},
			want: []string{"document.Name: required", "document.Endpoints: must be at least 1"},
		},
		{
			name: "bad endpoint",
			doc:  document{Name: "api", Endpoints: []endpoint{{Method: "TRACE", Path: "books"}}},
			want: []string{
				"document.Endpoints[0].Method: must be one of: GET POST",
				`document.Endpoints[0].Path: must start with "/"`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.doc)
			if len(tt.want) == 0 {
				if err != nil {
					t.Fatalf("Struct() = %v, want nil", err)
				}
				return
			}
			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("Struct() = %v, want *Error", err)
			}
			if len(verr.Messages) != len(tt.want) {
				t.Fatalf("messages = %q, want %q", verr.Messages, tt.want)
			}
			for i, want := range tt.want {
				if verr.Messages[i] != want {
					t.Errorf("message %d = %q, want %q", i, verr.Messages[i], want)
				}
			}
		})
	}
}

func TestStruct_InvalidInput(t *testing.T) {
	err := Struct(42)
	if err == nil {
		t.Fatal("expected error for non-struct input")
	}
	var verr *Error
	if errors.As(err, &verr) {
		t.Fatalf("got *Error for invalid input: %v", err)
	}
}
