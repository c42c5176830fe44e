package command

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notecmd/internal/apperr"
)

// Field names the editable kind-specific fields, using their stored keys.
type Field string

// Editable fields.
const (
	FieldPath         Field = "path"
	FieldTemplatePath Field = "templatePath"
	FieldSnippet      Field = "snippet"
	FieldNames        Field = "commandIds"
)

// Collection is the ordered set of definitions. Order is display order only.
type Collection []Definition

func (c Collection) index(id string) int {
	for i, d := range c {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (c Collection) taken(id string) bool {
	return c.index(id) >= 0
}

// Get returns the definition with the given id.
func (c Collection) Get(id string) (Definition, bool) {
	if i := c.index(id); i >= 0 {
		return c[i], true
	}
	return Definition{}, false
}

// Add appends a new open command named name, or DefaultName when empty.
func (c *Collection) Add(name string) Definition {
	if name == "" {
		name = DefaultName
	}
	d := Definition{ID: NewID(name, c.taken), Name: name, Kind: KindOpen}
	*c = append(*c, d)
	return d
}

// Put appends d, assigning an id if it has none, after validating it.
func (c *Collection) Put(d Definition) (Definition, error) {
	if d.ID == "" {
		d.ID = NewID(d.Name, c.taken)
	}
	if c.taken(d.ID) {
		return Definition{}, fmt.Errorf("command: %s: %w", d.ID, apperr.ErrAlreadyExists)
	}
	if d.Kind == "" {
		d.Kind = KindOpen
	}
	d = FromVariant(d.ID, d.Name, d.Variant())
	if err := d.Validate(); err != nil {
		return Definition{}, fmt.Errorf("command: %s: %v: %w", d.ID, err, apperr.ErrInvalidInput)
	}
	*c = append(*c, d)
	return d, nil
}

// Remove deletes the definition with the given id.
func (c *Collection) Remove(id string) error {
	i := c.index(id)
	if i < 0 {
		return fmt.Errorf("command: remove %s: %w", id, apperr.ErrNotFound)
	}
	*c = append((*c)[:i], (*c)[i+1:]...)
	return nil
}

// SetName renames a command. The id stays stable.
func (c Collection) SetName(id, name string) error {
	i := c.index(id)
	if i < 0 {
		return fmt.Errorf("command: rename %s: %w", id, apperr.ErrNotFound)
	}
	if name == "" {
		return fmt.Errorf("command: rename %s: empty name: %w", id, apperr.ErrInvalidInput)
	}
	c[i].Name = name
	return nil
}

// SetKind switches a command's kind, clearing the fields it no longer uses.
func (c Collection) SetKind(id string, k Kind) error {
	i := c.index(id)
	if i < 0 {
		return fmt.Errorf("command: set kind %s: %w", id, apperr.ErrNotFound)
	}
	if err := validation.Validate(k, validation.Required, validation.In(KindOpen, KindCreate, KindCreateWithDate, KindInsert, KindSequence)); err != nil {
		return fmt.Errorf("command: set kind %s: %v: %w", id, err, apperr.ErrInvalidInput)
	}
	c[i] = c[i].WithKind(k)
	return nil
}

// SetField updates one kind-specific field. Setting a field the command's
// kind does not use is rejected.
func (c Collection) SetField(id string, f Field, value string) error {
	i := c.index(id)
	if i < 0 {
		return fmt.Errorf("command: set %s on %s: %w", f, id, apperr.ErrNotFound)
	}
	d := &c[i]
	switch v := d.Variant(); {
	case f == FieldPath && usesPath(v):
		d.Path = value
	case f == FieldTemplatePath && usesTemplate(v):
		d.TemplatePath = value
	case f == FieldSnippet && d.EffectiveKind() == KindInsert:
		d.Snippet = value
	case f == FieldNames && d.EffectiveKind() == KindSequence:
		d.ReferencedNames = value
	default:
		return fmt.Errorf("command: %s does not apply to %s command %s: %w", f, d.EffectiveKind(), id, apperr.ErrInvalidInput)
	}
	return nil
}

func usesPath(v Variant) bool {
	switch v.(type) {
	case Open, Create, CreateWithDate:
		return true
	}
	return false
}

func usesTemplate(v Variant) bool {
	switch v.(type) {
	case Create, CreateWithDate:
		return true
	}
	return false
}

// Normalize fills in what older settings files may omit: a missing kind
// becomes open and a missing id is derived from the name.
func (c Collection) Normalize() {
	for i := range c {
		if c[i].Kind == "" {
			c[i].Kind = KindOpen
		}
		if c[i].ID == "" {
			c[i].ID = NewID(c[i].Name, c.taken)
		}
	}
}

// Validate checks every definition and that ids are unique.
func (c Collection) Validate() error {
	seen := make(map[string]struct{}, len(c))
	for i, d := range c {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("command %d (%q): %w", i, d.Name, err)
		}
		if _, dup := seen[d.ID]; dup {
			return fmt.Errorf("command %d: duplicate id %q: %w", i, d.ID, apperr.ErrConflict)
		}
		seen[d.ID] = struct{}{}
	}
	return nil
}

// Defaults returns the commands a new installation starts with.
func Defaults() Collection {
	return Collection{
		{ID: "open-home", Name: "Open home", Kind: KindOpen, Path: "Home"},
		{ID: "create-today", Name: "Create today", Kind: KindCreate, Path: "Daily/{{date}}-{{weekday}}"},
		{ID: "start-day", Name: "Start day", Kind: KindInsert, Snippet: "Hello! It's {{date}} at {{time}}. Have a lovely day!"},
		{ID: "sequence-today", Name: "Sequence today", Kind: KindSequence, ReferencedNames: "Create today, Start day"},
	}
}
