package field

import (
	"fmt"
	"time"
)

// Type is the storage type of a scalar field.
type Type uint8

// Scalar field types.
const (
	TypeInvalid Type = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeString
	TypeTime
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeBool:    "bool",
	TypeInt:     "int",
	TypeFloat:   "float64",
	TypeString:  "string",
	TypeTime:    "time.Time",
}

// String returns the Go type name of t.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", t)
}

// Numeric reports whether _avg and _sum are defined for t.
func (t Type) Numeric() bool { return t == TypeInt || t == TypeFloat }

// Orderable reports whether t supports range predicates, _min and _max.
func (t Type) Orderable() bool { return t != TypeInvalid && t != TypeBool }

// Descriptor holds the resolved configuration of a field.
type Descriptor struct {
	Name          string
	Type          Type
	Size          int  // Maximum length of string fields, 0 means unlimited text
	Unique        bool // Unique across all rows
	Optional      bool // Nullable column, pointer in Go
	Immutable     bool // Cannot be updated after creation
	Sensitive     bool // Never printed in logs or events
	Default       func() any
	UpdateDefault func() any
	// NotBefore names a time field this field must never precede.
	NotBefore string
	Comment   string
	Err       error
}

// Builder is the fluent builder for field descriptors.
type Builder struct {
	desc *Descriptor
}

func newBuilder(name string, t Type) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Type: t}}
}

// Int returns a new integer field.
func Int(name string) *Builder { return newBuilder(name, TypeInt) }

// Float returns a new 64-bit float field.
func Float(name string) *Builder { return newBuilder(name, TypeFloat) }

// Bool returns a new boolean field.
func Bool(name string) *Builder { return newBuilder(name, TypeBool) }

// String returns a new string field limited to 255 characters.
func String(name string) *Builder {
	b := newBuilder(name, TypeString)
	b.desc.Size = 255
	return b
}

// Text returns a new string field without a length limit.
func Text(name string) *Builder { return newBuilder(name, TypeString) }

// Time returns a new timestamp field.
func Time(name string) *Builder { return newBuilder(name, TypeTime) }

// Unique adds a unique constraint on the field.
func (b *Builder) Unique() *Builder {
	b.desc.Unique = true
	return b
}

// Optional makes the field nullable.
func (b *Builder) Optional() *Builder {
	b.desc.Optional = true
	return b
}

// Immutable rejects updates of the field.
func (b *Builder) Immutable() *Builder {
	b.desc.Immutable = true
	return b
}

// Sensitive hides the field value from query events and logs.
func (b *Builder) Sensitive() *Builder {
	b.desc.Sensitive = true
	return b
}

// MaxLen sets the maximum length of a string field.
func (b *Builder) MaxLen(n int) *Builder {
	if b.desc.Type != TypeString {
		b.desc.Err = fmt.Errorf("field %q: MaxLen is only valid for string fields", b.desc.Name)
	}
	b.desc.Size = n
	return b
}

// Default sets the value used on create when the field is not provided.
// It accepts either a value of the field type or a function returning one,
// e.g. time.Now.
func (b *Builder) Default(v any) *Builder {
	fn, err := valueFunc(b.desc, v)
	if err != nil {
		b.desc.Err = err
	}
	b.desc.Default = fn
	return b
}

// UpdateDefault sets the value applied on every update that does not
// set the field explicitly.
func (b *Builder) UpdateDefault(v any) *Builder {
	fn, err := valueFunc(b.desc, v)
	if err != nil {
		b.desc.Err = err
	}
	b.desc.UpdateDefault = fn
	return b
}

// NotBefore requires a time field to be greater than or equal to the
// named time field of the same model.
func (b *Builder) NotBefore(other string) *Builder {
	if b.desc.Type != TypeTime {
		b.desc.Err = fmt.Errorf("field %q: NotBefore is only valid for time fields", b.desc.Name)
	}
	b.desc.NotBefore = other
	return b
}

// Comment sets the comment of the field.
func (b *Builder) Comment(c string) *Builder {
	b.desc.Comment = c
	return b
}

// Descriptor implements the schema.Field interface.
func (b *Builder) Descriptor() *Descriptor {
	return b.desc
}

func valueFunc(d *Descriptor, v any) (func() any, error) {
	switch v := v.(type) {
	case func() time.Time:
		if d.Type == TypeTime {
			return func() any { return v().UTC() }, nil
		}
	case func() string:
		if d.Type == TypeString {
			return func() any { return v() }, nil
		}
	case func() int:
		if d.Type == TypeInt {
			return func() any { return int64(v()) }, nil
		}
	case func() float64:
		if d.Type == TypeFloat {
			return func() any { return v() }, nil
		}
	case string:
		if d.Type == TypeString {
			return func() any { return v }, nil
		}
	case int:
		if d.Type == TypeInt {
			return func() any { return int64(v) }, nil
		}
	case int64:
		if d.Type == TypeInt {
			return func() any { return v }, nil
		}
	case float64:
		if d.Type == TypeFloat {
			return func() any { return v }, nil
		}
	case bool:
		if d.Type == TypeBool {
			return func() any { return v }, nil
		}
	}
	return nil, fmt.Errorf("field %q: invalid default %T for %s field", d.Name, v, d.Type)
}
