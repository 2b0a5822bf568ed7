// Package report builds exportable documents from experiment results.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/knapsack-lab/internal/experiment"
	"github.com/GoSim-25-26J-441/knapsack-lab/internal/stats"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/models"
)

const (
	ProjectName = "Knapsack Optimization Lab"
	Version     = "1.0.0"
)

// ErrUnknownFormat is returned for export formats other than json and csv.
var ErrUnknownFormat = errors.New("unknown report format")

// Format is an export format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat parses a format name; the empty string means JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}

// Input gathers whatever experiments have been run. Any of the result
// pointers may be nil.
type Input struct {
	Problem     models.ProblemConfig
	Repetitions int
	Individual  *experiment.IndividualResults
	AllMethods  *experiment.AllMethodsResults
	Genetic     *experiment.GAReportData
}

type Metadata struct {
	ExportDate       time.Time `json:"export_date"`
	ProjectName      string    `json:"project_name"`
	Version          string    `json:"version"`
	TotalExperiments int       `json:"total_experiments"`
}

type BasicMethods struct {
	HasData bool                      `json:"has_data"`
	Results []experiment.MethodResult `json:"results"`
	Summary map[string]stats.Summary  `json:"summary"`
}

type ConfigPerformance struct {
	Config      models.GAConfiguration `json:"config"`
	Average     float64                `json:"average"`
	Best        float64                `json:"best"`
	Worst       float64                `json:"worst"`
	Std         float64                `json:"standard_deviation"`
	ExecutionMS float64                `json:"execution_time_ms"`
}

type GeneticSummary struct {
	TotalConfigurations     int                        `json:"total_configurations"`
	BestConfiguration       models.GAConfiguration     `json:"best_configuration"`
	BestValue               float64                    `json:"best_value"`
	AverageImprovement      float64                    `json:"average_improvement"`
	TotalExecutionMS        float64                    `json:"total_execution_time_ms"`
	AverageExecutionMS      float64                    `json:"average_execution_time_ms"`
	ConfigurationComparison []ConfigPerformance        `json:"configuration_comparison"`
	ParameterAnalysis       []models.ComparisonVerdict `json:"parameter_analysis"`
}

type GeneticAlgorithms struct {
	HasData bool                     `json:"has_data"`
	Results *experiment.GAReportData `json:"results"`
	Summary *GeneticSummary          `json:"summary"`
}

type AllMethodsComparison struct {
	HasData bool                     `json:"has_data"`
	Results []experiment.MethodTrial `json:"results"`
	Summary map[string]stats.Summary `json:"summary"`
}

// Best names the best method found across all experiments.
type Best struct {
	Name   string                  `json:"name"`
	Value  float64                 `json:"value"`
	Type   string                  `json:"type"`
	Config *models.GAConfiguration `json:"config,omitempty"`
}

type DataQuality struct {
	BasicMethodsComplete      bool `json:"basic_methods_complete"`
	GeneticAlgorithmsComplete bool `json:"genetic_algorithms_complete"`
	ComparisonDataAvailable   bool `json:"comparison_data_available"`
}

type ExperimentCounts struct {
	BasicMethods          int `json:"basic_methods"`
	GeneticConfigurations int `json:"genetic_configurations"`
	ComparisonResults     int `json:"comparison_results"`
}

type StatisticalAnalysis struct {
	DataQuality      DataQuality      `json:"data_quality"`
	ExperimentCounts ExperimentCounts `json:"experiment_counts"`
}

type Analysis struct {
	BestOverallMethod   Best                `json:"best_overall_method"`
	Recommendations     []string            `json:"recommendations"`
	StatisticalAnalysis StatisticalAnalysis `json:"statistical_analysis"`
}

// Document is the complete JSON export.
type Document struct {
	Metadata             Metadata             `json:"metadata"`
	Configuration        models.ProblemConfig `json:"configuration"`
	BasicMethods         BasicMethods         `json:"basic_methods"`
	GeneticAlgorithms    GeneticAlgorithms    `json:"genetic_algorithms"`
	AllMethodsComparison AllMethodsComparison `json:"all_methods_comparison"`
	Analysis             Analysis             `json:"analysis"`
}

// Build assembles the export document. now is stamped as the export date.
func Build(in Input, now time.Time) Document {
	doc := Document{
		Metadata: Metadata{
			ExportDate:       now.UTC(),
			ProjectName:      ProjectName,
			Version:          Version,
			TotalExperiments: in.Repetitions,
		},
		Configuration: in.Problem,
		BasicMethods:  basicMethods(in.Individual),
		GeneticAlgorithms: GeneticAlgorithms{
			HasData: in.Genetic != nil,
			Results: in.Genetic,
			Summary: geneticSummary(in.Genetic),
		},
		AllMethodsComparison: allMethodsComparison(in.AllMethods),
		Analysis: Analysis{
			BestOverallMethod:   BestMethod(in),
			Recommendations:     Recommendations(in),
			StatisticalAnalysis: statisticalAnalysis(in),
		},
	}
	return doc
}

func basicMethods(res *experiment.IndividualResults) BasicMethods {
	out := BasicMethods{Summary: map[string]stats.Summary{}}
	if res == nil || len(res.Series) == 0 {
		return out
	}
	out.HasData = true
	out.Results = experiment.PrepareMethodResults(res)
	for _, s := range res.Series {
		if len(s.Values) > 0 {
			out.Summary[s.Name] = stats.Summarize(s.Values)
		}
	}
	return out
}

func geneticSummary(ga *experiment.GAReportData) *GeneticSummary {
	if ga == nil {
		return nil
	}
	sum := &GeneticSummary{
		TotalConfigurations:     len(ga.Experiments),
		BestConfiguration:       ga.BestConfiguration,
		BestValue:               ga.Summary.BestOverallValue,
		AverageImprovement:      ga.Summary.AverageImprovement,
		TotalExecutionMS:        millis(ga.Summary.TotalExecutionTime),
		AverageExecutionMS:      millis(ga.Summary.AverageExecutionTime),
		ConfigurationComparison: make([]ConfigPerformance, 0, len(ga.Experiments)),
		ParameterAnalysis:       ga.Comparison,
	}
	for _, e := range ga.Experiments {
		st := stats.Compute(e.Outcomes)
		sum.ConfigurationComparison = append(sum.ConfigurationComparison, ConfigPerformance{
			Config:      e.Config,
			Average:     st.Mean,
			Best:        st.Max,
			Worst:       st.Min,
			Std:         st.Std,
			ExecutionMS: millis(e.ExecutionTime),
		})
	}
	return sum
}

func allMethodsComparison(res *experiment.AllMethodsResults) AllMethodsComparison {
	out := AllMethodsComparison{Summary: map[string]stats.Summary{}}
	if res == nil {
		return out
	}
	out.HasData = len(res.Trials) > 0
	out.Results = res.Trials
	for _, s := range res.Series {
		if len(s.Values) > 0 {
			out.Summary[s.Name] = stats.Summarize(s.Values)
		}
	}
	return out
}

// BestMethod compares the highest single value of every basic series with
// the best GA configuration mean. Type is "unknown" when nothing ran.
func BestMethod(in Input) Best {
	best := Best{Name: "Unknown", Value: math.Inf(-1), Type: "unknown"}
	if in.Individual != nil {
		for _, s := range in.Individual.Series {
			if len(s.Values) == 0 {
				continue
			}
			if v := stats.Compute(s.Values).Max; v > best.Value {
				best = Best{Name: s.Name, Value: v, Type: "basic"}
			}
		}
	}
	if in.Genetic != nil && len(in.Genetic.Experiments) > 0 {
		if v := in.Genetic.Summary.BestOverallValue; v > best.Value {
			cfg := in.Genetic.BestConfiguration
			best = Best{Name: "Genetic Algorithm", Value: v, Type: "genetic", Config: &cfg}
		}
	}
	if best.Type == "unknown" {
		best.Value = 0
	}
	return best
}

// Recommendations lists short findings about the available data.
func Recommendations(in Input) []string {
	recs := []string{}
	if in.Individual != nil && len(in.Individual.Series) > 0 {
		recs = append(recs, "Basic methods completed successfully.")
	}
	if in.Genetic != nil && len(in.Genetic.Experiments) > 0 {
		recs = append(recs,
			"Genetic algorithms produced promising results.",
			fmt.Sprintf("Best configuration: population %d, generations %d",
				in.Genetic.BestConfiguration.PopulationSize, in.Genetic.BestConfiguration.Generations))
	}
	if in.AllMethods != nil && len(in.AllMethods.Trials) > 0 {
		recs = append(recs, "Method comparison data is available.")
	}
	if best := BestMethod(in); best.Type != "unknown" {
		recs = append(recs, fmt.Sprintf("Best method found: %s with value %.2f", best.Name, best.Value))
	}
	return recs
}

func statisticalAnalysis(in Input) StatisticalAnalysis {
	var a StatisticalAnalysis
	if in.Individual != nil {
		a.DataQuality.BasicMethodsComplete = len(in.Individual.Series) > 0
		a.ExperimentCounts.BasicMethods = len(in.Individual.Series)
	}
	if in.Genetic != nil {
		a.DataQuality.GeneticAlgorithmsComplete = true
		a.ExperimentCounts.GeneticConfigurations = len(in.Genetic.Experiments)
	}
	if in.AllMethods != nil {
		a.DataQuality.ComparisonDataAvailable = len(in.AllMethods.Trials) > 0
		a.ExperimentCounts.ComparisonResults = len(in.AllMethods.Trials)
	}
	return a
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// WriteJSON writes the document as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// Write renders in as the requested format.
func Write(w io.Writer, f Format, in Input, now time.Time) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, Build(in, now))
	case FormatCSV:
		return WriteCSV(w, in)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}
