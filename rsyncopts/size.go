// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package rsyncopts

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

var sizePattern = regexp.MustCompile(`(?i)^(\d*)(?:\.(\d*))?([kmgb](?:i?b)?)?([+-]1)?$`)

// ParseSize implements spec.md §4.2's size-suffix grammar:
// `^(\d*\.?\d*)([kmgb](?:i?b)?)?([+-]1)?$`, with a caller-supplied
// default suffix applied when the input carries none, and a trailing
// +1/-1 adjustment applied to the final value. The multiplication is done
// in exact rational arithmetic so that e.g. "2.13gb" lands exactly on
// 2130000000 instead of drifting through floating point.
func ParseSize(s string, defaultSuffix byte) (int64, error) {
	m := sizePattern.FindStringSubmatch(s)
	if m == nil || (m[1] == "" && m[2] == "") {
		return 0, fmt.Errorf("invalid size %q", s)
	}

	intPart, fracPart := m[1], m[2]
	if intPart == "" {
		intPart = "0"
	}
	numerator := new(big.Int)
	numerator.SetString(intPart+fracPart, 10)
	denominator := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(len(fracPart))), nil)

	suffix := strings.ToLower(m[3])
	if suffix == "" {
		suffix = strings.ToLower(string(defaultSuffix))
	}

	var mult int64
	switch suffix {
	case "b", "bb", "bib":
		mult = 1
	case "kb":
		mult = 1000
	case "mb":
		mult = 1000 * 1000
	case "gb":
		mult = 1000 * 1000 * 1000
	case "k", "kib":
		mult = 1024
	case "m", "mib":
		mult = 1024 * 1024
	case "g", "gib":
		mult = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("invalid size suffix in %q", s)
	}

	numerator.Mul(numerator, big.NewInt(mult))
	result := new(big.Int).Quo(numerator, denominator)
	v := result.Int64()

	switch m[4] {
	case "+1":
		v++
	case "-1":
		v--
	}

	return v, nil
}
