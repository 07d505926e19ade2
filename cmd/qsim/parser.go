package main

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/theapemachine/qsim"
)

type gateSpec struct {
	qubits int
	params int
	build  func(q []int, p []float64) (*qsim.Gate, error)
}

func oneQubit(ctor func(int) (*qsim.Gate, error)) gateSpec {
	return gateSpec{qubits: 1, build: func(q []int, _ []float64) (*qsim.Gate, error) {
		return ctor(q[0])
	}}
}

func rotation(ctor func(int, float64) (*qsim.Gate, error)) gateSpec {
	return gateSpec{qubits: 1, params: 1, build: func(q []int, p []float64) (*qsim.Gate, error) {
		return ctor(q[0], p[0])
	}}
}

func twoQubit(ctor func(int, int) (*qsim.Gate, error)) gateSpec {
	return gateSpec{qubits: 2, build: func(q []int, _ []float64) (*qsim.Gate, error) {
		return ctor(q[0], q[1])
	}}
}

var gateTable = map[string]gateSpec{
	"id":   oneQubit(qsim.I),
	"x":    oneQubit(qsim.X),
	"y":    oneQubit(qsim.Y),
	"z":    oneQubit(qsim.Z),
	"h":    oneQubit(qsim.H),
	"s":    oneQubit(qsim.S),
	"sdg":  oneQubit(qsim.Sdg),
	"t":    oneQubit(qsim.T),
	"tdg":  oneQubit(qsim.Tdg),
	"rx":   rotation(qsim.RX),
	"ry":   rotation(qsim.RY),
	"rz":   rotation(qsim.RZ),
	"p":    rotation(qsim.Phase),
	"cnot": twoQubit(qsim.CNOT),
	"cx":   twoQubit(qsim.CNOT),
	"cz":   twoQubit(qsim.CZ),
	"swap": twoQubit(qsim.SWAP),
	"ccx": {qubits: 3, build: func(q []int, _ []float64) (*qsim.Gate, error) {
		return qsim.Toffoli(q[0], q[1], q[2])
	}},
}

var (
	headRegex    = regexp.MustCompile(`^([a-z]+)(?:\(([^)]*)\))?$`)
	operandRegex = regexp.MustCompile(`^(?:q\[(\d+)\]|(\d+))$`)
)

// program is a parsed instruction file.
type program struct {
	numQubits int
	gates     []*qsim.Gate
	lines     []int
}

/*
parseProgram reads one instruction per line, for example "h q[0]" or
"cnot q[0],q[1]". Blank lines and text after # or // are ignored. The first
instruction may be "qubits N"; otherwise numQubits is used. Any bad line
stops parsing with an error naming it.
*/
func parseProgram(r io.Reader, numQubits int) (*program, error) {
	prog := &program{numQubits: numQubits}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	seen := false

	for scanner.Scan() {
		lineNo++

		line := stripComment(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)

		if !seen && strings.EqualFold(fields[0], "qubits") {
			seen = true

			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: want \"qubits N\"", lineNo)
			}

			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 1 {
				return nil, fmt.Errorf("line %d: bad qubit count %q", lineNo, fields[1])
			}

			prog.numQubits = n
			continue
		}

		seen = true

		if prog.numQubits < 1 {
			return nil, fmt.Errorf("line %d: register size unknown, start with \"qubits N\" or pass --qubits", lineNo)
		}

		g, err := parseInstruction(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %q: %w", lineNo, line, err)
		}

		if err := g.Validate(prog.numQubits); err != nil {
			return nil, fmt.Errorf("line %d: %q: %w", lineNo, line, err)
		}

		prog.gates = append(prog.gates, g)
		prog.lines = append(prog.lines, lineNo)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if prog.numQubits < 1 {
		return nil, fmt.Errorf("register size unknown, start with \"qubits N\" or pass --qubits")
	}

	return prog, nil
}

func stripComment(line string) string {
	if i := strings.Index(line, "#"); i >= 0 {
		line = line[:i]
	}
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

func parseInstruction(fields []string) (*qsim.Gate, error) {
	head := headRegex.FindStringSubmatch(strings.ToLower(fields[0]))
	if head == nil {
		return nil, fmt.Errorf("cannot read gate %q", fields[0])
	}

	spec, ok := gateTable[head[1]]
	if !ok {
		return nil, fmt.Errorf("unknown gate %q", head[1])
	}

	var params []float64
	if head[2] != "" {
		for _, part := range strings.Split(head[2], ",") {
			val, ok := parseAngle(part)
			if !ok {
				return nil, fmt.Errorf("bad angle %q", part)
			}
			params = append(params, val)
		}
	}

	if len(params) != spec.params {
		return nil, fmt.Errorf("%s takes %d parameter(s), got %d", head[1], spec.params, len(params))
	}

	operands := strings.Split(strings.Join(fields[1:], ""), ",")
	if len(fields) < 2 || len(operands) != spec.qubits {
		return nil, fmt.Errorf("%s takes %d qubit(s)", head[1], spec.qubits)
	}

	qubits := make([]int, len(operands))
	for i, op := range operands {
		m := operandRegex.FindStringSubmatch(op)
		if m == nil {
			return nil, fmt.Errorf("bad qubit operand %q", op)
		}

		digits := m[1] + m[2]
		q, err := strconv.Atoi(digits)
		if err != nil {
			return nil, fmt.Errorf("bad qubit operand %q", op)
		}
		qubits[i] = q
	}

	return spec.build(qubits, params)
}
