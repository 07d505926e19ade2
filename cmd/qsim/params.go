package main

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// piExprRegex matches pi, 2pi, 2*pi, pi/2, 3pi/4, 3*pi/4, -pi, -3*pi/4.
var piExprRegex = regexp.MustCompile(`^(-?)(\d*\.?\d*)\s*\*?\s*pi(?:\s*/\s*(\d+\.?\d*))?$`)

/*
parseAngle reads a rotation angle written either as a plain number or as a
multiple or fraction of pi.
*/
func parseAngle(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if val, err := strconv.ParseFloat(s, 64); err == nil {
		return val, true
	}

	matches := piExprRegex.FindStringSubmatch(strings.ToLower(s))
	if matches == nil {
		return 0, false
	}

	coeff := 1.0
	if matches[2] != "" {
		var err error
		if coeff, err = strconv.ParseFloat(matches[2], 64); err != nil {
			return 0, false
		}
	}

	result := coeff * math.Pi

	if matches[3] != "" {
		denom, err := strconv.ParseFloat(matches[3], 64)
		if err != nil || denom == 0 {
			return 0, false
		}
		result /= denom
	}

	if matches[1] == "-" {
		result = -result
	}

	return result, true
}
