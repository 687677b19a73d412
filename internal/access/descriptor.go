package access

import "fmt"

// Shape tags the ownership topology of a record kind.
type Shape int

// Ownership shapes. Exactly one is associated with each record kind and
// never changes at runtime.
const (
	// ShapeNone means the kind has no project ownership; only direct
	// per-record grants apply.
	ShapeNone Shape = iota
	// ShapeDirect reaches the owning project through a single column.
	ShapeDirect
	// ShapeNested reaches the owning project through an ordered chain
	// of relation hops.
	ShapeNested
	// ShapeHybrid uses the direct column when set, otherwise the
	// nested chain.
	ShapeHybrid
)

func (s Shape) String() string {
	switch s {
	case ShapeNone:
		return "none"
	case ShapeDirect:
		return "direct"
	case ShapeNested:
		return "nested"
	case ShapeHybrid:
		return "hybrid"
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

// Hop is one statically declared relation step towards the owning
// project. Column and Table describe the step for SQL predicates, Step
// walks it on a loaded record. Step returns false when the relation is
// absent on this instance, which is a resolution gap, not an error; a
// record of the wrong type panics, which is the loud failure demanded
// for programming errors.
type Hop struct {
	Name   string
	Column string
	Table  string
	Model  any
	Step   func(rec any) (any, bool)
}

// ProjectFunc extracts the owning project id from a loaded record, nil
// when absent.
type ProjectFunc func(rec any) *string

// Descriptor declares how a record kind's owning project is located.
// Descriptors are built with None, Direct, Nested, or Hybrid at
// registration time and validated against the live schema at startup.
type Descriptor struct {
	shape Shape

	directColumn  string
	directProject ProjectFunc

	hops          []Hop
	projectColumn string
	nestedProject ProjectFunc
}

// None declares a kind without project ownership.
func None() Descriptor {
	return Descriptor{shape: ShapeNone}
}

// Direct declares ownership through a single project column.
func Direct(column string, project ProjectFunc) Descriptor {
	return Descriptor{shape: ShapeDirect, directColumn: column, directProject: project}
}

// Nested declares ownership through an ordered hop chain; projectColumn
// names the project reference on the final hop's table and project
// extracts it from the final record.
func Nested(projectColumn string, project ProjectFunc, hops ...Hop) Descriptor {
	return Descriptor{
		shape:         ShapeNested,
		hops:          hops,
		projectColumn: projectColumn,
		nestedProject: project,
	}
}

// Hybrid declares ownership through a direct column with the nested
// chain as fallback. Either path granting access suffices.
func Hybrid(directColumn string, directProject ProjectFunc, projectColumn string, nestedProject ProjectFunc, hops ...Hop) Descriptor {
	return Descriptor{
		shape:         ShapeHybrid,
		directColumn:  directColumn,
		directProject: directProject,
		hops:          hops,
		projectColumn: projectColumn,
		nestedProject: nestedProject,
	}
}

// Shape returns the descriptor's topology tag.
func (d Descriptor) Shape() Shape {
	return d.shape
}

// CandidateProjects walks the descriptor over a loaded record and
// returns every owning-project candidate it reaches: one for Direct and
// Nested, up to two for Hybrid (holding either project grants access,
// mirroring the OR in the bulk predicate). Empty means no project could
// be resolved and non-superusers are denied.
func (d Descriptor) CandidateProjects(rec any) []string {
	var candidates []string

	appendID := func(id *string) {
		if id == nil || *id == "" {
			return
		}
		for _, existing := range candidates {
			if existing == *id {
				return
			}
		}
		candidates = append(candidates, *id)
	}

	switch d.shape {
	case ShapeNone:
	case ShapeDirect:
		appendID(d.directProject(rec))
	case ShapeNested:
		appendID(d.walkNested(rec))
	case ShapeHybrid:
		appendID(d.directProject(rec))
		appendID(d.walkNested(rec))
	}
	return candidates
}

func (d Descriptor) walkNested(rec any) *string {
	current := rec
	for _, hop := range d.hops {
		next, ok := hop.Step(current)
		if !ok {
			return nil
		}
		current = next
	}
	return d.nestedProject(current)
}

// directCondition renders the SQL predicate for the direct path.
func (d Descriptor) directCondition() string {
	return fmt.Sprintf("%s IN ?", d.directColumn)
}

// nestedCondition renders the SQL predicate for the nested path as a
// chain of subqueries mirroring the hop list, so single-record and
// bulk resolution share one source of truth.
func (d Descriptor) nestedCondition() string {
	cond := fmt.Sprintf("%s IN ?", d.projectColumn)
	for i := len(d.hops) - 1; i >= 0; i-- {
		hop := d.hops[i]
		cond = fmt.Sprintf("%s IN (SELECT id FROM %s WHERE %s)", hop.Column, hop.Table, cond)
	}
	return cond
}

// validate checks structural completeness at registration time. Schema
// agreement is checked separately by Registry.Validate.
func (d Descriptor) validate() error {
	switch d.shape {
	case ShapeNone:
		return nil
	case ShapeDirect:
		return d.validateDirect()
	case ShapeNested:
		return d.validateNested()
	case ShapeHybrid:
		if err := d.validateDirect(); err != nil {
			return err
		}
		return d.validateNested()
	}
	return fmt.Errorf("unknown descriptor shape %d", int(d.shape))
}

func (d Descriptor) validateDirect() error {
	if d.directColumn == "" {
		return fmt.Errorf("%s descriptor requires a direct column", d.shape)
	}
	if d.directProject == nil {
		return fmt.Errorf("%s descriptor requires a direct project accessor", d.shape)
	}
	return nil
}

func (d Descriptor) validateNested() error {
	if len(d.hops) == 0 {
		return fmt.Errorf("%s descriptor requires at least one hop", d.shape)
	}
	for i, hop := range d.hops {
		if hop.Name == "" || hop.Column == "" || hop.Table == "" || hop.Model == nil || hop.Step == nil {
			return fmt.Errorf("%s descriptor hop %d is incomplete", d.shape, i)
		}
	}
	if d.projectColumn == "" {
		return fmt.Errorf("%s descriptor requires a terminal project column", d.shape)
	}
	if d.nestedProject == nil {
		return fmt.Errorf("%s descriptor requires a terminal project accessor", d.shape)
	}
	return nil
}
