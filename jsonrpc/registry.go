package jsonrpc

import "reflect"

// attachedReceiver is one live instance attached for implicit resolution,
// with its valid methods described at attach time.
type attachedReceiver struct {
	recvName string
	methods  map[string]*target
}

// RegisterFunc registers fn as a directly invocable callback under name.
// Names are unconstrained strings and unique within the callback tier.
// RegisterFunc panics when the name collides or fn's signature is not
// func(ctx context.Context, params struct) (result, error); registration is
// a setup-phase activity and a bad registration is a programming error.
func (d *Dispatcher) RegisterFunc(name string, fn any) {
	v, desc, err := describeFunc(fn)
	if err != nil {
		panic("jsonrpc: register " + name + ": " + err.Error())
	}
	if _, exists := d.callbacks[name]; exists {
		panic("jsonrpc: method name collision: " + name)
	}
	d.callbacks[name] = &target{
		kind:   kindCallback,
		fn:     v,
		method: name,
		desc:   desc,
	}
}

// Bind maps name to the method named methodName on receiver. A binding whose
// method does not exist on the receiver (or has an unsupported signature) is
// kept as a registered miss: resolution falls through past it to the
// attached-receiver tier.
func (d *Dispatcher) Bind(name string, receiver any, methodName string) {
	if _, exists := d.bindings[name]; exists {
		panic("jsonrpc: method name collision: " + name)
	}

	d.bindings[name] = nil
	rv := reflect.ValueOf(receiver)
	m, ok := rv.Type().MethodByName(methodName)
	if !ok {
		return
	}
	desc, err := describeMethod(m)
	if err != nil {
		return
	}
	d.bindings[name] = &target{
		kind:     kindBound,
		fn:       m.Func,
		receiver: rv,
		recvName: receiverName(receiver),
		method:   methodName,
		desc:     desc,
	}
}

// Attach adds receivers to the implicit-resolution tier. A request method
// name resolves against attached receivers by literal method name, scanning
// receivers in attach order; the first receiver exposing the method wins.
// Methods with unsupported signatures are skipped.
func (d *Dispatcher) Attach(receivers ...any) {
	for _, receiver := range receivers {
		rv := reflect.ValueOf(receiver)
		rt := rv.Type()
		ar := &attachedReceiver{
			recvName: receiverName(receiver),
			methods:  make(map[string]*target),
		}
		for i := 0; i < rt.NumMethod(); i++ {
			m := rt.Method(i)
			if !m.IsExported() {
				continue
			}
			desc, err := describeMethod(m)
			if err != nil {
				continue
			}
			ar.methods[m.Name] = &target{
				kind:     kindAttached,
				fn:       m.Func,
				receiver: rv,
				recvName: ar.recvName,
				method:   m.Name,
				desc:     desc,
			}
		}
		d.attached = append(d.attached, ar)
	}
}

// resolve finds the target for a method name through the fixed tier order:
// callbacks, then bindings, then attached receivers. Lookups are not cached;
// the registries are static after setup, so repeated lookups stay cheap by
// construction.
func (d *Dispatcher) resolve(name string) (*target, *Error) {
	if t, ok := d.callbacks[name]; ok {
		return t, nil
	}
	if t, ok := d.bindings[name]; ok && t != nil {
		return t, nil
	}
	for _, ar := range d.attached {
		if t, ok := ar.methods[name]; ok {
			return t, nil
		}
	}
	return nil, errMethodNotFound()
}
