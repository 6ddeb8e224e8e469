package jsonrpc

import (
	"reflect"
	"strings"
	"testing"
)

type transferParams struct {
	From   string  `json:"from"`
	To     string  `json:"to" default:"\"savings\""`
	Amount float64 `json:"amount" default:"0"`
}

func transferDescriptor(t *testing.T) *descriptor {
	t.Helper()
	desc, err := describeParams(reflect.TypeOf(transferParams{}))
	if err != nil {
		t.Fatalf("describeParams: %v", err)
	}
	return desc
}

func TestDescribeParams(t *testing.T) {
	desc := transferDescriptor(t)

	if desc.required != 1 {
		t.Errorf("required = %d, want 1", desc.required)
	}
	if desc.max() != 3 {
		t.Errorf("max = %d, want 3", desc.max())
	}
	names := []string{desc.params[0].Name, desc.params[1].Name, desc.params[2].Name}
	want := []string{"from", "to", "amount"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("param names = %v, want %v", names, want)
	}
	if desc.params[0].HasDefault || !desc.params[1].HasDefault || !desc.params[2].HasDefault {
		t.Errorf("default flags wrong: %+v", desc.params)
	}
}

func TestDescribeParamsRequiredAfterOptional(t *testing.T) {
	type bad struct {
		A int `json:"a" default:"1"`
		B int `json:"b"`
	}
	if _, err := describeParams(reflect.TypeOf(bad{})); err == nil {
		t.Fatal("expected error for required parameter after optional")
	}
}

func TestDescribeParamsBadDefaultLiteral(t *testing.T) {
	type bad struct {
		A int `json:"a" default:"not-json"`
	}
	if _, err := describeParams(reflect.TypeOf(bad{})); err == nil {
		t.Fatal("expected error for malformed default literal")
	}
}

func TestBindArityBoundary(t *testing.T) {
	desc := transferDescriptor(t)

	tests := []struct {
		name   string
		params any
		ok     bool
	}{
		{"zero args", []any{}, false},
		{"one arg", []any{"checking"}, true},
		{"two args", []any{"checking", "savings"}, true},
		{"three args", []any{"checking", "savings", 10.0}, true},
		{"four args", []any{"checking", "savings", 10.0, "extra"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bindParams(tt.params, desc)
			if tt.ok && err != nil {
				t.Errorf("bindParams() = %v, want nil", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("bindParams() = nil, want arity error")
				}
				if err.Code != CodeInvalidParams {
					t.Errorf("got code %d, want %d", err.Code, CodeInvalidParams)
				}
			}
		})
	}
}

func TestBindPositionalTrailingDefaults(t *testing.T) {
	desc := transferDescriptor(t)

	bound, err := bindParams([]any{"checking"}, desc)
	if err != nil {
		t.Fatalf("bindParams: %v", err)
	}
	if bound[0].useDefault || bound[0].value != "checking" {
		t.Errorf("bound[0] = %+v, want supplied value", bound[0])
	}
	if !bound[1].useDefault || !bound[2].useDefault {
		t.Errorf("trailing parameters should fall back to defaults: %+v", bound)
	}
}

func TestBindNamed(t *testing.T) {
	desc := transferDescriptor(t)

	bound, err := bindParams(map[string]any{"from": "checking", "amount": 5.0}, desc)
	if err != nil {
		t.Fatalf("bindParams: %v", err)
	}
	if bound[0].value != "checking" {
		t.Errorf("from = %v, want checking", bound[0].value)
	}
	if !bound[1].useDefault {
		t.Error("to should use its default")
	}
	if bound[2].useDefault || bound[2].value != 5.0 {
		t.Errorf("amount = %+v, want supplied 5.0", bound[2])
	}
}

func TestBindNamedMissingRequired(t *testing.T) {
	desc := transferDescriptor(t)

	_, err := bindParams(map[string]any{"to": "savings"}, desc)
	if err == nil {
		t.Fatal("expected missing named argument error")
	}
	if err.Code != CodeInvalidParams {
		t.Errorf("got code %d, want %d", err.Code, CodeInvalidParams)
	}
	detail, _ := err.Data.(string)
	if !strings.Contains(detail, `"from"`) {
		t.Errorf("error data %q should name the missing parameter", detail)
	}
}

func TestBindEmptyParamsZeroRequired(t *testing.T) {
	desc, err := describeParams(reflect.TypeOf(struct{}{}))
	if err != nil {
		t.Fatalf("describeParams: %v", err)
	}

	for _, params := range []any{nil, []any{}} {
		bound, berr := bindParams(params, desc)
		if berr != nil {
			t.Errorf("bindParams(%v) = %v, want nil", params, berr)
		}
		if len(bound) != 0 {
			t.Errorf("bindParams(%v) bound %d values, want 0", params, len(bound))
		}
	}
}
