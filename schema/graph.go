package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/repairtrack/repairdb/schema/edge"
	"github.com/repairtrack/repairdb/schema/field"
)

// IDField is the name of the primary key field of every model.
const IDField = "id"

// Graph is the resolved set of models and their relations.
type Graph struct {
	Models []*Model
	models map[string]*Model
}

// Model is a resolved model.
type Model struct {
	Name      string
	Table     string
	ID        *Scalar
	Fields    []*Scalar
	Relations []*Relation

	fields    map[string]*Scalar
	relations map[string]*Relation
}

// Scalar is a resolved scalar field.
type Scalar struct {
	*field.Descriptor
	Column string
	Model  *Model
	// Relation is set when the field is the foreign key of an owned relation.
	Relation *Relation
}

// Relation is a resolved edge.
type Relation struct {
	Name   string
	Model  *Model // Declaring model
	Target *Model
	// Unique is true for to-one relations.
	Unique bool
	// Owner is true when the foreign key column lives on Model.
	Owner bool
	// FK is the foreign key field, on Model when Owner is set and on
	// Target otherwise.
	FK       *Scalar
	Required bool
	Inverse  *Relation
	Comment  string
}

// NewGraph resolves the given model definitions.
func NewGraph(schemas ...Interface) (*Graph, error) {
	g := &Graph{models: make(map[string]*Model, len(schemas))}
	type pending struct {
		model *Model
		edges []*edge.Descriptor
	}
	all := make([]pending, 0, len(schemas))
	for _, s := range schemas {
		m, edges, err := newModel(s)
		if err != nil {
			return nil, err
		}
		if _, ok := g.models[m.Name]; ok {
			return nil, fmt.Errorf("schema: duplicate model %q", m.Name)
		}
		g.models[m.Name] = m
		g.Models = append(g.Models, m)
		all = append(all, pending{model: m, edges: edges})
	}
	descs := make(map[*Relation]*edge.Descriptor)
	for _, p := range all {
		for _, d := range p.edges {
			target, ok := g.models[d.Type]
			if !ok {
				return nil, fmt.Errorf("schema: edge %s.%s references unknown model %q", p.model.Name, d.Name, d.Type)
			}
			if _, ok := p.model.relations[d.Name]; ok {
				return nil, fmt.Errorf("schema: duplicate edge %s.%s", p.model.Name, d.Name)
			}
			if _, ok := p.model.fields[d.Name]; ok {
				return nil, fmt.Errorf("schema: edge %s.%s collides with a field", p.model.Name, d.Name)
			}
			r := &Relation{
				Name:     d.Name,
				Model:    p.model,
				Target:   target,
				Unique:   d.Unique,
				Required: d.Required,
				Comment:  d.Comment,
			}
			if d.Field != "" {
				fk, ok := p.model.fields[d.Field]
				if !ok {
					return nil, fmt.Errorf("schema: edge %s.%s references unknown field %q", p.model.Name, d.Name, d.Field)
				}
				if fk.Type != field.TypeInt {
					return nil, fmt.Errorf("schema: foreign key %s.%s must be an int field", p.model.Name, fk.Name)
				}
				if fk.Relation != nil {
					return nil, fmt.Errorf("schema: field %s.%s is bound to more than one edge", p.model.Name, fk.Name)
				}
				if !d.Unique {
					return nil, fmt.Errorf("schema: edge %s.%s owns a foreign key and must be unique", p.model.Name, d.Name)
				}
				r.Owner, r.FK = true, fk
				fk.Relation = r
				if d.Required == fk.Optional {
					return nil, fmt.Errorf("schema: edge %s.%s: Required must match the nullability of %q", p.model.Name, d.Name, fk.Name)
				}
			}
			p.model.relations[d.Name] = r
			p.model.Relations = append(p.model.Relations, r)
			descs[r] = d
		}
	}
	if err := g.link(descs); err != nil {
		return nil, err
	}
	return g, nil
}

// MustNewGraph is like NewGraph but panics on error.
func MustNewGraph(schemas ...Interface) *Graph {
	g, err := NewGraph(schemas...)
	if err != nil {
		panic(err)
	}
	return g
}

// link connects forward edges with their back-references.
func (g *Graph) link(descs map[*Relation]*edge.Descriptor) error {
	for _, m := range g.Models {
		for _, r := range m.Relations {
			d := descs[r]
			if !d.Inverse {
				continue
			}
			ref, ok := r.Target.relations[d.RefName]
			if !ok {
				return fmt.Errorf("schema: edge %s.%s references unknown edge %s.%s", m.Name, r.Name, r.Target.Name, d.RefName)
			}
			if ref.Target != m {
				return fmt.Errorf("schema: edge %s.%s and %s.%s do not point at each other", m.Name, r.Name, r.Target.Name, ref.Name)
			}
			if ref.Inverse != nil {
				return fmt.Errorf("schema: edge %s.%s is referenced more than once", r.Target.Name, ref.Name)
			}
			r.Inverse, ref.Inverse = ref, r
		}
	}
	for _, m := range g.Models {
		for _, r := range m.Relations {
			if r.Inverse == nil {
				return fmt.Errorf("schema: edge %s.%s has no back-reference", m.Name, r.Name)
			}
			switch {
			case r.Owner && r.Inverse.Owner:
				return fmt.Errorf("schema: edges %s.%s and %s.%s both declare a foreign key", m.Name, r.Name, r.Target.Name, r.Inverse.Name)
			case !r.Owner && !r.Inverse.Owner:
				return fmt.Errorf("schema: edges %s.%s and %s.%s declare no foreign key", m.Name, r.Name, r.Target.Name, r.Inverse.Name)
			case !r.Owner:
				r.FK = r.Inverse.FK
				if r.Unique && !r.FK.Unique {
					return fmt.Errorf("schema: one-to-one edge %s.%s requires %s.%s to be unique", m.Name, r.Name, r.Target.Name, r.FK.Name)
				}
			}
		}
	}
	return nil
}

func newModel(s Interface) (*Model, []*edge.Descriptor, error) {
	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	m := &Model{
		Name:      t.Name(),
		fields:    make(map[string]*Scalar),
		relations: make(map[string]*Relation),
	}
	if tb, ok := s.(Tabler); ok {
		m.Table = tb.Table()
	} else {
		m.Table = inflect.Underscore(inflect.Pluralize(m.Name))
	}
	var (
		fields []Field
		edges  []*edge.Descriptor
	)
	for _, mx := range s.Mixin() {
		fields = append(fields, mx.Fields()...)
		for _, e := range mx.Edges() {
			edges = append(edges, e.Descriptor())
		}
	}
	fields = append(fields, s.Fields()...)
	for _, e := range s.Edges() {
		edges = append(edges, e.Descriptor())
	}
	for _, f := range fields {
		d := f.Descriptor()
		if d.Err != nil {
			return nil, nil, fmt.Errorf("schema: model %s: %w", m.Name, d.Err)
		}
		if err := m.addField(d); err != nil {
			return nil, nil, err
		}
	}
	if m.ID == nil {
		id := &Scalar{
			Descriptor: &field.Descriptor{Name: IDField, Type: field.TypeInt, Unique: true, Immutable: true},
			Column:     IDField,
			Model:      m,
		}
		m.ID = id
		m.fields[IDField] = id
		m.Fields = append([]*Scalar{id}, m.Fields...)
	}
	for _, f := range m.Fields {
		if f.NotBefore == "" {
			continue
		}
		other, ok := m.fields[f.NotBefore]
		if !ok || other.Type != field.TypeTime {
			return nil, nil, fmt.Errorf("schema: %s.%s: NotBefore references unknown time field %q", m.Name, f.Name, f.NotBefore)
		}
	}
	return m, edges, nil
}

func (m *Model) addField(d *field.Descriptor) error {
	if d.Name == "" {
		return fmt.Errorf("schema: model %s: empty field name", m.Name)
	}
	if _, ok := m.fields[d.Name]; ok {
		return fmt.Errorf("schema: duplicate field %s.%s", m.Name, d.Name)
	}
	f := &Scalar{Descriptor: d, Column: ColumnName(d.Name), Model: m}
	if d.Name == IDField {
		if d.Type != field.TypeInt {
			return fmt.Errorf("schema: %s.id must be an int field", m.Name)
		}
		d.Unique, d.Immutable = true, true
		m.ID = f
	}
	m.fields[d.Name] = f
	m.Fields = append(m.Fields, f)
	return nil
}

// ColumnName returns the storage column of a field name.
func ColumnName(name string) string {
	return strings.ToLower(inflect.Underscore(name))
}

// Model returns the model with the given name, or nil.
func (g *Graph) Model(name string) *Model {
	return g.models[name]
}

// Field returns the scalar field with the given name.
func (m *Model) Field(name string) (*Scalar, bool) {
	f, ok := m.fields[name]
	return f, ok
}

// Relation returns the relation with the given name.
func (m *Model) Relation(name string) (*Relation, bool) {
	r, ok := m.relations[name]
	return r, ok
}

// UniqueFields returns the fields usable in a unique lookup, id first.
func (m *Model) UniqueFields() []*Scalar {
	var fs []*Scalar
	for _, f := range m.Fields {
		if f.Unique {
			fs = append(fs, f)
		}
	}
	return fs
}

// Columns returns the column names of all scalar fields in declaration order.
func (m *Model) Columns() []string {
	cols := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		cols[i] = f.Column
	}
	return cols
}

// IsForeignKey reports whether the field backs an owned relation.
func (f *Scalar) IsForeignKey() bool { return f.Relation != nil }

// Kind returns the cardinality of the relation: "M2O", "O2M" or "O2O".
func (r *Relation) Kind() string {
	switch {
	case !r.Unique:
		return "O2M"
	case r.Owner && !r.Inverse.Unique:
		return "M2O"
	default:
		return "O2O"
	}
}

// ToMany reports whether the relation yields a list of records.
func (r *Relation) ToMany() bool { return !r.Unique }

// String implements fmt.Stringer.
func (r *Relation) String() string {
	return fmt.Sprintf("%s.%s(%s -> %s)", r.Model.Name, r.Name, r.Kind(), r.Target.Name)
}

// UniqueKeyName returns the name of the unique index backing a unique field.
func (f *Scalar) UniqueKeyName() string {
	return f.Model.Table + "_" + f.Column + "_key"
}

// ForeignKeyName returns the name of the foreign key constraint of a
// foreign key field.
func (f *Scalar) ForeignKeyName() string {
	return f.Model.Table + "_" + f.Column + "_fkey"
}
