// Package command maps user-authored command definitions to invokable
// actions.
package command

import (
	"errors"
	"fmt"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gosimple/slug"
)

// Kind selects what a command does when invoked.
type Kind string

// Command kinds.
const (
	KindOpen           Kind = "open"
	KindCreate         Kind = "create"
	KindCreateWithDate Kind = "create-with-date"
	KindInsert         Kind = "insert"
	KindSequence       Kind = "sequence"
)

// Kinds lists every kind in display order.
var Kinds = []Kind{KindOpen, KindCreate, KindCreateWithDate, KindInsert, KindSequence}

// DefaultName is the name given to a freshly added command.
const DefaultName = "New command"

// Definition is a user-authored command. Which of the optional fields are
// meaningful depends on Kind; Variant returns only those.
type Definition struct {
	ID           string `yaml:"id" json:"id"`
	Name         string `yaml:"name" json:"name"`
	Kind         Kind   `yaml:"type" json:"type"`
	Path         string `yaml:"path,omitempty" json:"path,omitempty"`
	TemplatePath string `yaml:"templatePath,omitempty" json:"templatePath,omitempty"`
	Snippet      string `yaml:"snippet,omitempty" json:"snippet,omitempty"`
	// ReferencedNames is a comma-separated list of display names, not ids.
	ReferencedNames string `yaml:"commandIds,omitempty" json:"commandIds,omitempty"`
}

// Validate checks the fields that must hold at rest. Empty paths, snippets
// and name lists are reported when the command runs, not here.
func (d Definition) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ID, validation.Required, validation.By(isSlug)),
		validation.Field(&d.Name, validation.Required),
		validation.Field(&d.Kind, validation.In(KindOpen, KindCreate, KindCreateWithDate, KindInsert, KindSequence)),
	)
}

func isSlug(v any) error {
	s, _ := v.(string)
	if !slug.IsSlug(s) {
		return errors.New("must be lowercase letters, digits and dashes")
	}
	return nil
}

// EffectiveKind returns Kind, treating an unset kind as KindOpen.
func (d Definition) EffectiveKind() Kind {
	if d.Kind == "" {
		return KindOpen
	}
	return d.Kind
}

// Variant is the kind-specific view of a Definition.
type Variant interface {
	kind() Kind
}

// Open opens an existing note.
type Open struct{ Path string }

// Create creates a note, optionally from a template.
type Create struct{ Path, TemplatePath string }

// CreateWithDate creates a note for a date chosen at run time.
type CreateWithDate struct{ Path, TemplatePath string }

// Insert inserts a snippet into the active note.
type Insert struct{ Snippet string }

// Sequence runs other commands by display name.
type Sequence struct{ Names string }

// Unknown carries a kind this version does not understand.
type Unknown struct{ Kind Kind }

func (Open) kind() Kind           { return KindOpen }
func (Create) kind() Kind         { return KindCreate }
func (CreateWithDate) kind() Kind { return KindCreateWithDate }
func (Insert) kind() Kind         { return KindInsert }
func (Sequence) kind() Kind       { return KindSequence }
func (u Unknown) kind() Kind      { return u.Kind }

// Variant returns the fields active for the definition's kind.
func (d Definition) Variant() Variant {
	switch d.EffectiveKind() {
	case KindOpen:
		return Open{Path: d.Path}
	case KindCreate:
		return Create{Path: d.Path, TemplatePath: d.TemplatePath}
	case KindCreateWithDate:
		return CreateWithDate{Path: d.Path, TemplatePath: d.TemplatePath}
	case KindInsert:
		return Insert{Snippet: d.Snippet}
	case KindSequence:
		return Sequence{Names: d.ReferencedNames}
	default:
		return Unknown{Kind: d.Kind}
	}
}

// FromVariant builds a flat definition holding only v's fields.
func FromVariant(id, name string, v Variant) Definition {
	d := Definition{ID: id, Name: name, Kind: v.kind()}
	switch v := v.(type) {
	case Open:
		d.Path = v.Path
	case Create:
		d.Path, d.TemplatePath = v.Path, v.TemplatePath
	case CreateWithDate:
		d.Path, d.TemplatePath = v.Path, v.TemplatePath
	case Insert:
		d.Snippet = v.Snippet
	case Sequence:
		d.ReferencedNames = v.Names
	}
	return d
}

// WithKind returns a copy switched to kind k. Fields the new kind does not
// use are cleared; shared ones (path between open and create) carry over.
func (d Definition) WithKind(k Kind) Definition {
	carried := d
	carried.Kind = k
	return FromVariant(d.ID, d.Name, carried.Variant())
}

// NewID derives a slug id from name, suffixing -2, -3, ... while taken
// reports a collision.
func NewID(name string, taken func(string) bool) string {
	base := slug.Make(name)
	if base == "" {
		base = "command"
	}
	if !taken(base) {
		return base
	}
	for i := 2; ; i++ {
		id := base + "-" + strconv.Itoa(i)
		if !taken(id) {
			return id
		}
	}
}

// ActionID is the registry id of a custom command.
func ActionID(id string) string {
	return "custom-cmd-" + id
}

// DisplayName is the registry name of a custom command.
func DisplayName(label, name string) string {
	if label == "" {
		return name
	}
	return fmt.Sprintf("%s: %s", label, name)
}
