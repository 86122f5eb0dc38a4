package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/thesyncim/todo-e2e/pkg/todo"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// resultView is the serialized form of a todo.Result.
type resultView struct {
	Name     string `json:"name" yaml:"name"`
	Status   string `json:"status" yaml:"status"`
	Duration string `json:"duration" yaml:"duration"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

type reportView struct {
	Passed   int          `json:"passed" yaml:"passed"`
	Failed   int          `json:"failed" yaml:"failed"`
	Duration string       `json:"duration" yaml:"duration"`
	Results  []resultView `json:"results" yaml:"results"`
}

func newReportView(r todo.Report) reportView {
	v := reportView{
		Passed:   r.Passed(),
		Failed:   r.Failed(),
		Duration: r.Duration.Round(time.Millisecond).String(),
		Results:  make([]resultView, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		rv := resultView{
			Name:     res.Name,
			Status:   checkMark(res.Passed),
			Duration: res.Duration.Round(time.Millisecond).String(),
		}
		if res.Err != nil {
			rv.Error = res.Err.Error()
		}
		v.Results = append(v.Results, rv)
	}
	return v
}

func writeReport(w io.Writer, r todo.Report, format string) error {
	v := newReportView(r)
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		printSummary(w, v)
		return nil
	}
}

func printSummary(w io.Writer, v reportView) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Todo E2E Results\n")
	fmt.Fprintf(w, "================\n")
	for _, res := range v.Results {
		fmt.Fprintf(w, "  %-4s  %-16s %s\n", res.Status, res.Name, res.Duration)
		if res.Error != "" {
			fmt.Fprintf(w, "        %s\n", res.Error)
		}
	}
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Passed:   %d\n", v.Passed)
	fmt.Fprintf(w, "Failed:   %d\n", v.Failed)
	fmt.Fprintf(w, "Duration: %s\n", v.Duration)
	fmt.Fprintf(w, "Status:   %s\n", checkMark(v.Failed == 0))
}

func checkMark(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}
