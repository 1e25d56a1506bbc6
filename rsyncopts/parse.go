// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rsyncopts

import (
	"fmt"
	"strings"
)

// Apply parses argv per spec.md §4.2's rules and runs the coherence pass
// (MakeCoherent) once argv is exhausted. On success o.Source and o.Dest
// hold up to two positional arguments.
func Apply(o *Options, argv []string) error {
	var positional []string
	endOfOptions := false

	i := 0
	for i < len(argv) {
		tok := argv[i]
		i++

		if endOfOptions || tok == "" || tok[0] != '-' || tok == "-" {
			positional = append(positional, tok)
			continue
		}

		if tok == "--" {
			endOfOptions = true
			continue
		}

		if len(positional) > 0 {
			return fmt.Errorf("rsyncopts: stray non-option argument %q before option %q", positional[len(positional)-1], tok)
		}

		if strings.HasPrefix(tok, "--") {
			if err := applyLong(o, tok[2:], argv, &i); err != nil {
				return err
			}
			continue
		}

		if err := applyShortBundle(o, tok[1:], argv, &i); err != nil {
			return err
		}
	}

	if len(positional) > 2 {
		return fmt.Errorf("rsyncopts: too many positional arguments: %v", positional)
	}
	if len(positional) >= 1 {
		o.Source = positional[0]
	}
	if len(positional) >= 2 {
		o.Dest = positional[1]
	}

	return MakeCoherent(o)
}

func applyLong(o *Options, body string, argv []string, i *int) error {
	name := body
	inlineValue := ""
	hasInline := false
	if eq := strings.IndexByte(body, '='); eq >= 0 {
		name = body[:eq]
		inlineValue = body[eq+1:]
		hasInline = true
	}

	negated := false
	lookupName := normalizeName(name)
	if strings.HasPrefix(lookupName, "no_") {
		candidate := lookupName[len("no_"):]
		if spec, ok := byLongName[candidate]; ok && spec.Negatable {
			negated = true
			lookupName = candidate
		}
	}

	spec, ok := byLongName[lookupName]
	if !ok {
		return fmt.Errorf("rsyncopts: unknown option --%s", name)
	}

	return dispatch(o, spec, argv, i, hasInline, inlineValue, negated)
}

func applyShortBundle(o *Options, bundle string, argv []string, i *int) error {
	for pos := 0; pos < len(bundle); pos++ {
		c := bundle[pos]
		spec, ok := byShort[c]
		if !ok {
			return fmt.Errorf("rsyncopts: unknown option -%c", c)
		}

		if needsValue(spec.Kind) {
			rest := bundle[pos+1:]
			if rest != "" {
				if err := dispatch(o, spec, argv, i, true, rest, false); err != nil {
					return err
				}
				return nil // bundle exhausted: "rest" consumed it all
			}
			if err := dispatch(o, spec, argv, i, false, "", false); err != nil {
				return err
			}
			return nil
		}

		if err := dispatch(o, spec, argv, i, false, "", false); err != nil {
			return err
		}
	}
	return nil
}

func needsValue(k Kind) bool {
	return k == KindString || k == KindInt || k == KindSize
}

// dispatch runs one occurrence of spec against either an inline value
// (--name=value or the remainder of a short bundle) or, if it needs a
// value and none was inline, the next argv element — unless that element
// looks like another option, which is fatal per rule 2.
func dispatch(o *Options, spec *Spec, argv []string, i *int, hasInline bool, inlineValue string, negated bool) error {
	value := inlineValue

	if needsValue(spec.Kind) && !hasInline {
		if *i >= len(argv) || (len(argv[*i]) > 0 && argv[*i][0] == '-' && argv[*i] != "-") {
			return fmt.Errorf("rsyncopts: option --%s requires a value", spec.Field)
		}
		value = argv[*i]
		*i++
	}

	if spec.Field == "recursive" && negated {
		o.strs["__recursive_explicit"] = "1"
	}

	if spec.Manual != nil {
		if negated {
			if spec.ManualNegate != nil {
				return spec.ManualNegate(o, value)
			}
			o.values[spec.Field] = 0
			return nil
		}
		return spec.Manual(o, value)
	}

	return o.applyDefault(spec, value, negated)
}
