package main

import (
	"fmt"
	"io"
	"math/cmplx"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/theapemachine/qsim"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff9e64"))

	gateStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#73daca"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7")).
			Padding(0, 1)
)

/*
probabilityLines lists every basis state, highest qubit first, with its
probability to five decimals.
*/
func probabilityLines(v *qsim.AmplitudeVector) []string {
	lines := make([]string, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		lines = append(lines, fmt.Sprintf("State |%s>: %.5f", qsim.Bits(i, v.NumQubits()), v.Probability(i)))
	}
	return lines
}

func printProbabilities(w io.Writer, title string, v *qsim.AmplitudeVector) {
	if title != "" {
		fmt.Fprintln(w, titleStyle.Render(title))
	}
	fmt.Fprintln(w, strings.Join(probabilityLines(v), "\n"))
}

func printAmplitudes(w io.Writer, v *qsim.AmplitudeVector) {
	fmt.Fprintln(w, titleStyle.Render("Amplitudes:"))

	for i := 0; i < v.Len(); i++ {
		a := v.At(i)
		fmt.Fprintf(
			w, "|%s>  %+.5f %+.5fi  %s\n",
			qsim.Bits(i, v.NumQubits()), real(a), imag(a),
			dimStyle.Render(fmt.Sprintf("|a|=%.5f arg=%+.5f", cmplx.Abs(a), cmplx.Phase(a))),
		)
	}
}

func printQubits(w io.Writer, v *qsim.AmplitudeVector) {
	fmt.Fprintln(w, titleStyle.Render("Per-qubit probabilities:"))

	for q, p := range v.QubitProbabilities() {
		fmt.Fprintf(w, "q[%d]  P(0)=%.5f  P(1)=%.5f\n", q, p.Prob0, p.Prob1)
	}
}

func printCounts(w io.Writer, counts map[int]int, numQubits, shots int) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Counts over %d shots:", shots)))

	indices := make([]int, 0, len(counts))
	for i := range counts {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	for _, i := range indices {
		fmt.Fprintf(w, "|%s>: %d\n", qsim.Bits(i, numQubits), counts[i])
	}
}

func printStep(w io.Writer, step, line int, g *qsim.Gate) {
	fmt.Fprintf(w, "%s %s %s\n",
		dimStyle.Render(fmt.Sprintf("step %d (line %d)", step, line)),
		gateStyle.Render(g.Name()),
		g.String(),
	)
}

func printMetrics(w io.Writer, metrics map[string]interface{}) {
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%-18s %v", k, metrics[k]))
	}

	fmt.Fprintln(w, boxStyle.Render(strings.Join(lines, "\n")))
}
