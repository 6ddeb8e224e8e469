package jsonrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

var (
	typeOfContext = reflect.TypeOf((*context.Context)(nil)).Elem()
	typeOfError   = reflect.TypeOf((*error)(nil)).Elem()
)

// Param describes one formal parameter of a procedure.
type Param struct {
	// Name is the wire name used for named binding, taken from the struct
	// field's json tag (or the field name when untagged).
	Name string
	// HasDefault marks the parameter optional. Default holds the raw JSON
	// literal from the field's `default` tag.
	HasDefault bool
	Default    json.RawMessage
}

// descriptor is the registration-time description of a procedure's formal
// parameter list. It is built once when the procedure is registered and
// shared read-only across all dispatches.
type descriptor struct {
	paramType reflect.Type
	params    []Param
	fields    []int // struct field index per formal parameter
	required  int   // count of parameters without a default
}

func (d *descriptor) max() int {
	return len(d.params)
}

// describeParams builds a descriptor from a params struct type. Parameter
// order follows field declaration order. Every required parameter must
// precede the first defaulted one, so that positional requests can omit a
// trailing run of optional parameters.
func describeParams(t reflect.Type) (*descriptor, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("params type must be a struct, got %s", t)
	}

	desc := &descriptor{paramType: t}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Name == "_" || !field.IsExported() {
			continue
		}

		name := field.Name
		if tag := field.Tag.Get("json"); tag != "" {
			tagName := strings.Split(tag, ",")[0]
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}

		p := Param{Name: name}
		if tag, ok := field.Tag.Lookup("default"); ok {
			p.HasDefault = true
			p.Default = json.RawMessage(tag)
			// The default must decode into the field at call time; verify
			// once here instead of failing per request.
			probe := reflect.New(field.Type)
			if err := json.Unmarshal(p.Default, probe.Interface()); err != nil {
				return nil, fmt.Errorf("default for parameter %q is not a valid %s literal: %w", name, field.Type, err)
			}
		} else if len(desc.params) > 0 && desc.params[len(desc.params)-1].HasDefault {
			return nil, fmt.Errorf("required parameter %q follows an optional parameter", name)
		}

		if !p.HasDefault {
			desc.required++
		}
		desc.params = append(desc.params, p)
		desc.fields = append(desc.fields, i)
	}

	return desc, nil
}

// describeFunc validates a callback's signature and builds its descriptor.
// The required shape is func(ctx context.Context, params P) (R, error).
func describeFunc(fn any) (reflect.Value, *descriptor, error) {
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return reflect.Value{}, nil, fmt.Errorf("callback must be a func, got %s", t)
	}
	if t.NumIn() != 2 || t.In(0) != typeOfContext {
		return reflect.Value{}, nil, fmt.Errorf("callback must accept (context.Context, params struct)")
	}
	if t.NumOut() != 2 || t.Out(1) != typeOfError {
		return reflect.Value{}, nil, fmt.Errorf("callback must return (result, error)")
	}

	desc, err := describeParams(t.In(1))
	if err != nil {
		return reflect.Value{}, nil, err
	}
	return v, desc, nil
}

// describeMethod validates a receiver method's signature and builds its
// descriptor. The required shape mirrors describeFunc with the receiver in
// argument position zero.
func describeMethod(m reflect.Method) (*descriptor, error) {
	t := m.Func.Type()
	if t.NumIn() != 3 || t.In(1) != typeOfContext {
		return nil, fmt.Errorf("method %s must accept (context.Context, params struct)", m.Name)
	}
	if t.NumOut() != 2 || t.Out(1) != typeOfError {
		return nil, fmt.Errorf("method %s must return (result, error)", m.Name)
	}
	return describeParams(t.In(2))
}

// receiverName returns the type name used to identify a receiver in the
// before-hook.
func receiverName(receiver any) string {
	return reflect.Indirect(reflect.ValueOf(receiver)).Type().Name()
}
