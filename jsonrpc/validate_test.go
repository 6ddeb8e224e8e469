package jsonrpc

import "testing"

func TestValidShape(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		want    bool
	}{
		{"object", map[string]any{}, true},
		{"array", []any{}, true},
		{"string", "hello", false},
		{"number", float64(42), false},
		{"bool", true, false},
		{"null", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validShape(tt.payload); got != tt.want {
				t.Errorf("validShape(%v) = %v, want %v", tt.payload, got, tt.want)
			}
		})
	}
}

func TestValidateEnvelope(t *testing.T) {
	tests := []struct {
		name string
		req  map[string]any
		ok   bool
	}{
		{"valid", map[string]any{"jsonrpc": "2.0", "method": "sum"}, true},
		{"valid with positional params", map[string]any{"jsonrpc": "2.0", "method": "sum", "params": []any{1, 2}}, true},
		{"valid with named params", map[string]any{"jsonrpc": "2.0", "method": "sum", "params": map[string]any{"a": 1}}, true},
		{"valid with null params", map[string]any{"jsonrpc": "2.0", "method": "sum", "params": nil}, true},
		{"missing jsonrpc", map[string]any{"method": "sum"}, false},
		{"wrong version", map[string]any{"jsonrpc": "1.0", "method": "sum"}, false},
		{"numeric version", map[string]any{"jsonrpc": 2.0, "method": "sum"}, false},
		{"missing method", map[string]any{"jsonrpc": "2.0"}, false},
		{"non-string method", map[string]any{"jsonrpc": "2.0", "method": 5}, false},
		{"scalar params", map[string]any{"jsonrpc": "2.0", "method": "sum", "params": "nope"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateEnvelope(tt.req)
			if tt.ok && err != nil {
				t.Errorf("validateEnvelope() = %v, want nil", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("validateEnvelope() = nil, want error")
				}
				if err.Code != CodeInvalidRequest {
					t.Errorf("got code %d, want %d", err.Code, CodeInvalidRequest)
				}
			}
		})
	}
}
