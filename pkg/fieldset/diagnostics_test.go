package fieldset

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCheckOpenAPI(t *testing.T) {
	valid := []byte(`
openapi: 3.0.3
info: {title: care, version: "1"}
paths: {}
components:
  schemas:
    Visit:
      type: object
      properties:
        visitor: {type: string}
`)
	if issues := CheckOpenAPI(context.Background(), valid, "care.yaml"); issues != nil {
		t.Fatalf("expected no issues, got %#v", issues)
	}

	invalid := []byte(strings.Replace(string(valid), "{type: string}", "{type: strin}", 1))
	issues := CheckOpenAPI(context.Background(), invalid, "care.yaml")
	if len(issues) != 1 {
		t.Fatalf("expected one issue, got %#v", issues)
	}
	if issues[0].Source != "care.yaml" || !strings.Contains(issues[0].Message, "strin") {
		t.Fatalf("unexpected issue %#v", issues[0])
	}
}

func TestIssueFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Issue
	}{
		{
			name: "pointer",
			err:  errors.New("minLength must be an integer at #/components/schemas/Visit/properties/visitor"),
			want: Issue{
				Source:  "care.yaml",
				Path:    "#/components/schemas/Visit/properties/visitor",
				Field:   "visit.visitor",
				Message: "minLength must be an integer",
			},
		},
		{
			name: "quoted names",
			err:  errors.New(`invalid components: schema "Visit": property "arrived": unsupported 'type' value "dat"`),
			want: Issue{
				Source:  "care.yaml",
				Field:   "visit.arrived",
				Message: `invalid components: schema "Visit": property "arrived": unsupported 'type' value "dat"`,
			},
		},
		{
			name: "plain",
			err:  errors.New("value of paths must be an object"),
			want: Issue{Source: "care.yaml", Message: "value of paths must be an object"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, issueFromError("care.yaml", tt.err)); diff != "" {
				t.Fatalf("issue mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
