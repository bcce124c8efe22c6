package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tphakala/go-selfmod"
)

// applyControl returns p with one "name value" command applied. Values are
// passed through unclamped; the processor clamps them per block.
func applyControl(p selfmod.Params, line string) (selfmod.Params, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return p, nil
	}
	if len(fields) != 2 {
		return p, fmt.Errorf("expected \"name value\", got %q", line)
	}

	v, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return p, fmt.Errorf("invalid value %q: %w", fields[1], err)
	}

	switch strings.ToLower(fields[0]) {
	case "depth", "d":
		p.Depth = v
	case "cutoff", "f":
		p.CutoffHz = v
	case "q":
		p.Q = v
	default:
		return p, fmt.Errorf("unknown control %q (want depth, cutoff or q)", fields[0])
	}
	return p, nil
}
