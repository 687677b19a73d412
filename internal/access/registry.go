package access

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"gorm.io/gorm"
)

// LiteratureExemption marks a record kind whose instances can opt out
// of project ownership by tagging themselves as literature data.
type LiteratureExemption struct {
	Column string
	Get    func(rec any) string
}

// Definition binds a record kind to its ownership descriptor.
type Definition struct {
	Kind       string
	Model      any
	Descriptor Descriptor
	Literature *LiteratureExemption
}

type kindRegistry struct {
	mu    sync.RWMutex
	kinds map[string]*Definition
}

var globalRegistry = &kindRegistry{
	kinds: make(map[string]*Definition),
}

var (
	errNilDefinition = errors.New("access: nil definition")
	errEmptyKind     = errors.New("access: kind is required")
	errNilModel      = errors.New("access: model is required")
	errDuplicateKind = errors.New("access: kind already registered")

	// ErrUnknownKind indicates a lookup for a record kind that was
	// never registered.
	ErrUnknownKind = errors.New("access: unknown record kind")
)

// Register adds a record kind definition to the global registry.
// Structural problems (missing accessors, empty hop lists) are caught
// here; schema agreement is checked by Validate at startup.
func Register(def *Definition) error {
	if def == nil {
		return errNilDefinition
	}

	kind := strings.TrimSpace(def.Kind)
	if kind == "" {
		return errEmptyKind
	}
	if def.Model == nil {
		return errNilModel
	}
	if err := def.Descriptor.validate(); err != nil {
		return fmt.Errorf("access: kind %s: %w", kind, err)
	}
	if def.Literature != nil && (def.Literature.Column == "" || def.Literature.Get == nil) {
		return fmt.Errorf("access: kind %s: incomplete literature exemption", kind)
	}

	cp := *def
	cp.Kind = kind

	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	if _, exists := globalRegistry.kinds[kind]; exists {
		return fmt.Errorf("%w: %s", errDuplicateKind, kind)
	}

	globalRegistry.kinds[kind] = &cp
	return nil
}

// MustRegister registers a definition and panics on failure. Intended
// for init-time registration of the built-in kinds.
func MustRegister(def *Definition) {
	if err := Register(def); err != nil {
		panic(err)
	}
}

// Lookup returns the definition for a record kind when registered.
func Lookup(kind string) (*Definition, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	def, ok := globalRegistry.kinds[kind]
	return def, ok
}

// Kinds returns all registered record kinds keyed by name.
func Kinds() map[string]*Definition {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	out := make(map[string]*Definition, len(globalRegistry.kinds))
	for kind, def := range globalRegistry.kinds {
		out[kind] = def
	}
	return out
}

// Validate checks every registered descriptor against the live database
// schema. A mismatch is a configuration error and must abort startup;
// silently denying at request time would mask it.
func Validate(db *gorm.DB) error {
	if db == nil {
		return errors.New("access: db is required")
	}

	migrator := db.Migrator()

	for kind, def := range Kinds() {
		if !migrator.HasTable(def.Model) {
			return fmt.Errorf("access: kind %s: model table does not exist", kind)
		}

		d := def.Descriptor
		switch d.shape {
		case ShapeDirect:
			if err := requireColumn(migrator, def.Model, d.directColumn, kind, "direct project column"); err != nil {
				return err
			}
		case ShapeNested:
			if err := validateHops(migrator, def.Model, d, kind); err != nil {
				return err
			}
		case ShapeHybrid:
			if err := requireColumn(migrator, def.Model, d.directColumn, kind, "direct project column"); err != nil {
				return err
			}
			if err := validateHops(migrator, def.Model, d, kind); err != nil {
				return err
			}
		}

		if def.Literature != nil {
			if err := requireColumn(migrator, def.Model, def.Literature.Column, kind, "literature column"); err != nil {
				return err
			}
		}
	}

	return nil
}

func validateHops(migrator gorm.Migrator, model any, d Descriptor, kind string) error {
	current := model
	for _, hop := range d.hops {
		if err := requireColumn(migrator, current, hop.Column, kind, fmt.Sprintf("hop %q column", hop.Name)); err != nil {
			return err
		}
		if !migrator.HasTable(hop.Model) {
			return fmt.Errorf("access: kind %s: hop %q table %s does not exist", kind, hop.Name, hop.Table)
		}
		current = hop.Model
	}
	return requireColumn(migrator, current, d.projectColumn, kind, "terminal project column")
}

func requireColumn(migrator gorm.Migrator, model any, column, kind, what string) error {
	if !migrator.HasColumn(model, column) {
		return fmt.Errorf("access: kind %s: %s %q does not exist", kind, what, column)
	}
	return nil
}

// reset clears the registry. Intended for testing only.
func reset() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.kinds = make(map[string]*Definition)
}

// removeKind drops one registration. Intended for testing only.
func removeKind(kind string) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	delete(globalRegistry.kinds, kind)
}
