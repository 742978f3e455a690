package experiment

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteRunTable writes one space-separated line per result, preceded by a
// comment header naming the columns:
//
//	# t avg-degree std-dev median-degree 80%-t 80%-median-degree ...
//
// Threshold columns follow the first result's thresholds.
func WriteRunTable(w io.Writer, results []RunResult) error {
	bw := bufio.NewWriter(w)

	header := []string{"#", "t", "avg-degree", "std-dev", "median-degree"}
	if len(results) > 0 {
		for _, c := range results[0].Thresholds {
			pct := fmt.Sprintf("%.4g%%", c.Threshold*100)
			header = append(header, pct+"-t", pct+"-median-degree")
		}
	}
	fmt.Fprintln(bw, strings.Join(header, " "))

	for _, r := range results {
		fmt.Fprintf(bw, "%d %.6g %.6g %.6g", r.Steps, r.AverageDegree, r.DegreeStdDev, r.MedianDegree)
		for _, c := range r.Thresholds {
			fmt.Fprintf(bw, " %d %.6g", c.Step, c.MedianDegree)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// WriteSweepTable writes "density fraction-correct" lines in density order.
func WriteSweepTable(w io.Writer, points []SweepPoint) error {
	bw := bufio.NewWriter(w)
	for _, p := range points {
		fmt.Fprintf(bw, "%.6g %.6g\n", p.Density, p.FractionCorrect)
	}
	return bw.Flush()
}

// WriteDensityHistory writes "t density" lines, one per recorded timestep.
func WriteDensityHistory(w io.Writer, history []float64) error {
	bw := bufio.NewWriter(w)
	for t, d := range history {
		fmt.Fprintf(bw, "%d %.6g\n", t, d)
	}
	return bw.Flush()
}
