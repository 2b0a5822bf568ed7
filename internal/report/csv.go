package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/GoSim-25-26J-441/knapsack-lab/internal/experiment"
)

var csvHeader = []string{"Method", "Experiment", "Value", "Type"}

// WriteCSV writes one row per trial value: basic series first, then each GA
// configuration as GA_Config_<n>. Experiment numbers start at 1.
func WriteCSV(w io.Writer, in Input) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	if in.Individual != nil {
		for _, s := range in.Individual.Series {
			for i, v := range s.Values {
				if err := cw.Write(row(s.Name, i, v, "basic")); err != nil {
					return fmt.Errorf("write csv row: %w", err)
				}
			}
		}
	}
	if in.Genetic != nil {
		for ci, e := range in.Genetic.Experiments {
			for i, v := range e.Outcomes {
				if err := cw.Write(row(experiment.GAConfigName(ci), i, v, "genetic")); err != nil {
					return fmt.Errorf("write csv row: %w", err)
				}
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func row(method string, index int, value float64, kind string) []string {
	return []string{method, strconv.Itoa(index + 1), strconv.FormatFloat(value, 'f', -1, 64), kind}
}
