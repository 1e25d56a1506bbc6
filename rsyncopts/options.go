// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

// Package rsyncopts implements the declarative option table and argv
// parser that reproduces the reference rsync client's command-line
// grammar: the protocol transmits the argv verbatim between peers, so an
// engine participating in the protocol must parse it the same way the
// reference tool does, not merely offer an equivalent configuration API.
package rsyncopts

import "fmt"

// Kind classifies how an option's default setter behaves and whether the
// argv parser must consume a value token for it.
type Kind int

const (
	// KindFlag options set their field to 1 when present; with a "!" table
	// entry, "--no-<name>" sets it to 0.
	KindFlag Kind = iota
	// KindIncr options add 1 to their field on every occurrence (-v -v -v
	// yields verbose=3); bundled short forms (-vvv) each count separately.
	KindIncr
	// KindString options capture the next argv token (or "=value") as a string.
	KindString
	// KindInt options capture the next argv token as a base-10 integer.
	KindInt
	// KindSize options capture the next argv token through the size-suffix parser.
	KindSize
)

// ManualSetter is a hand-written setter overriding an option's default
// action, for entries whose semantics the declarative table cannot
// express (§4.2 "Manual overrides").
type ManualSetter func(o *Options, value string) error

// Spec describes one entry of the option table: its canonical field name,
// long-form aliases, optional short letter, value kind, and (for a
// handful of entries) a manual setter overriding the generic one.
type Spec struct {
	// Field is the canonical snake_case name used as the key into
	// Options' internal value store and accessor methods.
	Field string
	// Aliases are additional long-form names (besides Field) that route
	// to this entry, hyphen/underscore-folded.
	Aliases []string
	// Short is the option's bundled single-letter form, or 0 if none.
	Short byte
	// Negatable marks that "--no-<name>" is accepted (table's "!" marker).
	Negatable bool
	Kind      Kind
	// SizeDefaultSuffix is consulted by the size parser when Kind ==
	// KindSize and the user's value carries no explicit suffix.
	SizeDefaultSuffix byte
	Manual            ManualSetter
	// ManualNegate overrides the generic "zero the field" negation for a
	// Manual entry whose negated form has to touch different state than
	// its setter does (e.g. -D's --no-D clears two fields, neither of
	// which is named "D"). Entries without one fall back to zeroing
	// Field.
	ManualNegate ManualSetter
}

// Options is the parsed, validated result of an argv vector: the record
// of roughly a hundred named settings plus the three auxiliary ordered
// collections and two positional slots described in the data model.
type Options struct {
	values map[string]int64
	strs   map[string]string

	Filters       []string
	BasisDirs     []string
	RemoteOptions []string

	Source string
	Dest   string

	// ServerSession selects between --append's two possible semantics
	// (manual.go); callers constructing a daemon-server-side Options set
	// this true before parsing argv.
	ServerSession bool

	usermapSet  bool
	groupmapSet bool
	filterF     int
}

// New returns an Options record populated with the reference defaults
// that hold before any argv has been applied.
func New() *Options {
	o := &Options{
		values: map[string]int64{},
		strs:   map[string]string{},
	}
	o.values["motd"] = 1
	o.values["implied_dirs"] = 1
	o.values["human_readable"] = 1
	o.values["inc_recursive"] = 1
	return o
}

// GetBool reports whether the named integer-valued field is non-zero.
func (o *Options) GetBool(field string) bool { return o.values[field] != 0 }

// GetInt returns the named integer-valued field (flags, incrementers, and
// KindInt options all live in the same int64 store).
func (o *Options) GetInt(field string) int64 { return o.values[field] }

// GetString returns the named string-valued field.
func (o *Options) GetString(field string) string { return o.strs[field] }

// SetInt directly assigns an integer-valued field, used by manual setters
// and the coherence pass.
func (o *Options) SetInt(field string, v int64) { o.values[field] = v }

// SetString directly assigns a string-valued field.
func (o *Options) SetString(field string, v string) { o.strs[field] = v }

func (o *Options) applyDefault(spec *Spec, rawValue string, negated bool) error {
	switch spec.Kind {
	case KindFlag:
		if negated {
			o.values[spec.Field] = 0
		} else {
			o.values[spec.Field] = 1
		}
	case KindIncr:
		if negated {
			o.values[spec.Field] = 0
		} else {
			o.values[spec.Field]++
		}
	case KindString:
		o.strs[spec.Field] = rawValue
	case KindInt:
		var n int64
		if _, err := fmt.Sscanf(rawValue, "%d", &n); err != nil {
			return fmt.Errorf("rsyncopts: --%s: invalid integer %q", spec.Field, rawValue)
		}
		o.values[spec.Field] = n
	case KindSize:
		n, err := ParseSize(rawValue, spec.SizeDefaultSuffix)
		if err != nil {
			return fmt.Errorf("rsyncopts: --%s: %w", spec.Field, err)
		}
		o.values[spec.Field] = n
	}
	return nil
}
