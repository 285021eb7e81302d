package edge

// Descriptor holds the configuration of a relation edge.
type Descriptor struct {
	Name     string
	Type     string // Target model name
	RefName  string // Name of the edge on the target this edge inverts
	Field    string // Foreign key field owned by the declaring model
	Unique   bool   // To-one relation
	Inverse  bool   // Declared with From
	Required bool
	Comment  string
}

// Builder is the fluent builder for edge descriptors.
type Builder struct {
	desc *Descriptor
}

// To defines an association edge to the target model.
func To(name, target string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Type: target}}
}

// From defines a back-reference edge to the target model. It must be
// linked to the forward edge with Ref.
func From(name, target string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Type: target, Inverse: true}}
}

// Ref names the forward edge on the target model.
func (b *Builder) Ref(ref string) *Builder {
	b.desc.RefName = ref
	return b
}

// Field binds the edge to a foreign key field of the declaring model.
func (b *Builder) Field(f string) *Builder {
	b.desc.Field = f
	return b
}

// Unique makes the edge point to at most one record.
func (b *Builder) Unique() *Builder {
	b.desc.Unique = true
	return b
}

// Required marks a to-one edge as mandatory on create.
func (b *Builder) Required() *Builder {
	b.desc.Required = true
	return b
}

// Comment sets the comment of the edge.
func (b *Builder) Comment(c string) *Builder {
	b.desc.Comment = c
	return b
}

// Descriptor implements the schema.Edge interface.
func (b *Builder) Descriptor() *Descriptor {
	return b.desc
}
