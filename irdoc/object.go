package irdoc

import (
	"fmt"
	"math"

	"github.com/reoring/schemagen/ir"
	js "github.com/reoring/schemagen/jsonschema"
)

type decoder struct {
	diag *simpleDiag
	doc  int
}

func (d *decoder) errorf(ptr, format string, args ...any) error {
	return &PathError{Doc: d.doc, Pointer: ptr, Err: fmt.Errorf(format, args...)}
}

// object reads the attributes of one document object. The first error is
// sticky: later reads return zero values and the caller checks err once.
type object struct {
	d    *decoder
	s    *js.Schema
	ptr  string
	used map[string]bool
	err  error
}

func (d *decoder) obj(s *js.Schema, ptr string) *object {
	return &object{d: d, s: s, ptr: ptr, used: map[string]bool{}}
}

func (o *object) at(key string) string { return js.JoinPointer(o.ptr, key) }

func (o *object) fail(key, format string, args ...any) {
	if o.err == nil {
		o.err = o.d.errorf(o.at(key), format, args...)
	}
}

func (o *object) setErr(err error) {
	if o.err == nil {
		o.err = err
	}
}

// finish reports the keys nobody asked for.
func (o *object) finish() {
	for _, k := range o.s.Keys() {
		if !o.used[k] {
			ptr := o.ptr
			if ptr == "" {
				ptr = "/"
			}
			o.d.diag.warnf("%s: unknown key %q ignored", ptr, k)
		}
	}
}

func (o *object) raw(key string) (any, bool) {
	v, ok := o.s.Get(key)
	if ok {
		o.used[key] = true
	}
	return v, ok && v != nil
}

func (o *object) has(key string) bool {
	_, ok := o.s.Get(key)
	if ok {
		o.used[key] = true
	}
	return ok
}

func (o *object) str(key string) string {
	v, ok := o.raw(key)
	if !ok || o.err != nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		o.fail(key, "expected a string, got %s", kindOf(v))
	}
	return s
}

func (o *object) boolPtr(key string) *bool {
	v, ok := o.raw(key)
	if !ok || o.err != nil {
		return nil
	}
	b, ok := v.(bool)
	if !ok {
		o.fail(key, "expected a boolean, got %s", kindOf(v))
		return nil
	}
	return &b
}

func (o *object) boolean(key string) bool {
	if p := o.boolPtr(key); p != nil {
		return *p
	}
	return false
}

func (o *object) int64Ptr(key string) *int64 {
	v, ok := o.raw(key)
	if !ok || o.err != nil {
		return nil
	}
	switch t := v.(type) {
	case int64:
		return &t
	case float64:
		if t == math.Trunc(t) && math.Abs(t) <= 1<<53 {
			i := int64(t)
			return &i
		}
	}
	o.fail(key, "expected an integer, got %s", kindOf(v))
	return nil
}

func (o *object) intPtr(key string) *int {
	p := o.int64Ptr(key)
	if p == nil {
		return nil
	}
	if *p < 0 {
		o.fail(key, "expected a non-negative integer, got %d", *p)
		return nil
	}
	i := int(*p)
	return &i
}

func (o *object) floatPtr(key string) *float64 {
	v, ok := o.raw(key)
	if !ok || o.err != nil {
		return nil
	}
	switch t := v.(type) {
	case float64:
		return &t
	case int64:
		f := float64(t)
		return &f
	}
	o.fail(key, "expected a number, got %s", kindOf(v))
	return nil
}

func (o *object) list(key string) ([]any, bool) {
	v, ok := o.raw(key)
	if !ok || o.err != nil {
		return nil, false
	}
	l, ok := v.([]any)
	if !ok {
		o.fail(key, "expected an array, got %s", kindOf(v))
		return nil, false
	}
	return l, true
}

func (o *object) schema(key string) *js.Schema {
	v, ok := o.raw(key)
	if !ok || o.err != nil {
		return nil
	}
	s, ok := v.(*js.Schema)
	if !ok {
		o.fail(key, "expected an object, got %s", kindOf(v))
	}
	return s
}

func (o *object) object(key string) *object {
	s := o.schema(key)
	if s == nil {
		return nil
	}
	return o.d.obj(s, o.at(key))
}

// child finishes a nested object and folds its error into o.
func (o *object) child(c *object) {
	if c == nil {
		return
	}
	c.finish()
	o.setErr(c.err)
}

func (o *object) mode(key string) ir.Mode {
	s := o.str(key)
	if s == "" {
		return ""
	}
	m, err := ir.ParseMode(s)
	if err != nil {
		o.fail(key, "%v", err)
	}
	return m
}

// node decodes a required child node.
func (o *object) node(key string) ir.Node {
	v, ok := o.raw(key)
	if o.err != nil {
		return nil
	}
	if !ok {
		o.fail(key, "missing node")
		return nil
	}
	n, err := o.d.node(v, o.at(key))
	o.setErr(err)
	return n
}

func (o *object) optNode(key string) ir.Node {
	if v, ok := o.s.Get(key); !ok || v == nil {
		o.has(key)
		return nil
	}
	return o.node(key)
}

func (o *object) nodes(key string) []ir.Node {
	l, ok := o.list(key)
	if !ok {
		return nil
	}
	out := make([]ir.Node, 0, len(l))
	for i, v := range l {
		n, err := o.d.node(v, js.JoinPointer(o.ptr, key, i))
		if err != nil {
			o.setErr(err)
			return nil
		}
		out = append(out, n)
	}
	return out
}

// objects calls fn for every element of a list of objects.
func (o *object) objects(key string, fn func(c *object)) {
	l, ok := o.list(key)
	if !ok {
		return
	}
	for i, v := range l {
		ptr := js.JoinPointer(o.ptr, key, i)
		s, ok := v.(*js.Schema)
		if !ok {
			o.setErr(o.d.errorf(ptr, "expected an object, got %s", kindOf(v)))
			return
		}
		c := o.d.obj(s, ptr)
		fn(c)
		o.child(c)
		if o.err != nil {
			return
		}
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case *js.Schema:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int64, float64, uint64:
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
