package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/kessan-lab/edinet-cli/internal/resolve"
)

var inspectMetric string

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show how one metric resolves against an instance document",
	Long:  "Parses a local archive or instance document, runs the resolution chain for a single metric, and dumps the winning observation plus every scored fallback candidate. Use it to see why a value won, or why nothing did.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		extractor, err := initExtractor()
		if err != nil {
			return err
		}

		id := resolve.MetricID(inspectMetric)
		if !knownMetric(extractor, id) {
			return eris.Errorf("unknown metric %q, want one of: %s", inspectMetric, metricNames(extractor))
		}

		doc, name, err := loadInstance(args[0])
		if err != nil {
			return err
		}

		report := inspectReport{
			Metric: inspectMetric,
			File:   name,
			Facts:  doc.Len(),
		}
		if hit, ok := extractor.Resolve(doc, id); ok {
			report.Resolved = &resolvedFact{
				Tag:        hit.Fact.Name,
				ContextRef: hit.Fact.ContextRef,
				Tier:       hit.Tier.String(),
				Via:        string(hit.Via),
				Value:      hit.Value,
				Text:       hit.Text,
				Score:      hit.Score,
			}
		}
		for _, cand := range extractor.Candidates(doc, id) {
			report.Candidates = append(report.Candidates, candidateFact{
				Tag:        cand.TagName,
				ContextRef: cand.ContextRef,
				Tier:       cand.Tier.String(),
				Value:      cand.Value,
				Text:       cand.Text,
				Score:      cand.Score,
			})
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectMetric, "metric", "", "metric identifier to inspect (required)")
	_ = inspectCmd.MarkFlagRequired("metric")
	rootCmd.AddCommand(inspectCmd)
}

// inspectReport is what the command prints: the winning observation, if
// any, and the ranked fallback candidates behind it.
type inspectReport struct {
	Metric     string          `json:"metric"`
	File       string          `json:"file"`
	Facts      int             `json:"facts"`
	Resolved   *resolvedFact   `json:"resolved"`
	Candidates []candidateFact `json:"candidates"`
}

type resolvedFact struct {
	Tag        string  `json:"tag"`
	ContextRef string  `json:"contextRef"`
	Tier       string  `json:"tier"`
	Via        string  `json:"via"`
	Value      float64 `json:"value"`
	Text       string  `json:"text,omitempty"`
	Score      int     `json:"score"`
}

type candidateFact struct {
	Tag        string  `json:"tag"`
	ContextRef string  `json:"contextRef"`
	Tier       string  `json:"tier"`
	Value      float64 `json:"value"`
	Text       string  `json:"text,omitempty"`
	Score      int     `json:"score"`
}

func knownMetric(extractor *resolve.Extractor, id resolve.MetricID) bool {
	for _, m := range extractor.Metrics() {
		if m == id {
			return true
		}
	}
	return false
}

func metricNames(extractor *resolve.Extractor) string {
	ids := extractor.Metrics()
	names := make([]string, len(ids))
	for i, m := range ids {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
