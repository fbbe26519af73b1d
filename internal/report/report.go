// Package report renders a validation report and derives the process exit
// code from it.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/llm-d/xks-validate/internal/checks"
)

const reportWidth = 50

// Exit codes of the validation tools. Failed checks map to ExitFailure;
// connection and provider-detection failures are distinct so callers can
// tell infrastructure problems from validation findings.
const (
	ExitSuccess         = 0
	ExitFailure         = 1
	ExitDetectionFailed = 2
)

// Reporter renders a Report in stable order to a writer.
type Reporter struct {
	out   io.Writer
	title string

	bold   *color.Color
	dim    *color.Color
	green  *color.Color
	red    *color.Color
	yellow *color.Color
}

// NewReporter creates a reporter writing to out under the given banner title.
func NewReporter(out io.Writer, title string) *Reporter {
	return &Reporter{
		out:    out,
		title:  title,
		bold:   color.New(color.Bold),
		dim:    color.New(color.Faint),
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
		yellow: color.New(color.FgYellow),
	}
}

// Render prints the report: a banner, one section per suite in first-seen
// order, one line per check, the suggested remediation under every failure,
// and a summary with the overall verdict.
func (r *Reporter) Render(report *checks.Report) {
	headerLine := strings.Repeat("=", reportWidth)

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.bold.Sprint(headerLine))
	fmt.Fprintln(r.out, r.bold.Sprintf("  %s", r.title))
	fmt.Fprintln(r.out, r.bold.Sprint(headerLine))

	for _, suite := range r.suiteOrder(report) {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, r.bold.Sprintf("  %s", checks.SuiteDescription(suite)))
		fmt.Fprintln(r.out, r.dim.Sprint("  "+strings.Repeat("-", reportWidth-2)))

		for _, outcome := range report.Results {
			if outcome.Check.Suite != suite {
				continue
			}
			r.renderOutcome(outcome)
		}
	}

	summary := []string{
		r.green.Sprintf("%d passed", report.Passed()),
		r.red.Sprintf("%d failed", report.Failed()),
	}
	if warned := report.Warned(); warned > 0 {
		summary = append(summary, r.yellow.Sprintf("%d warned", warned))
	}

	verdict := r.green.Sprint("PASS")
	if report.Failed() > 0 {
		verdict = r.red.Sprint("FAIL")
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.bold.Sprint(headerLine))
	fmt.Fprintf(r.out, "  Results:  %s\n", strings.Join(summary, "  |  "))
	fmt.Fprintf(r.out, "  Verdict:  %s\n", verdict)
	fmt.Fprintln(r.out, r.bold.Sprint(headerLine))
	fmt.Fprintln(r.out)
}

func (r *Reporter) renderOutcome(outcome checks.Outcome) {
	name := outcome.Check.Name

	switch outcome.Result.Status {
	case checks.StatusPassed:
		fmt.Fprintf(r.out, "  %s %s\n", r.green.Sprint("PASS"), name)
	case checks.StatusWarned:
		if outcome.Check.Optional {
			fmt.Fprintf(r.out, "  %s %s %s\n", r.yellow.Sprint("SKIP"), name, r.dim.Sprint("(optional)"))
		} else {
			fmt.Fprintf(r.out, "  %s %s\n", r.yellow.Sprint("WARN"), name)
		}
		if outcome.Result.Detail != "" {
			fmt.Fprintf(r.out, "    %s %s\n", r.dim.Sprint("->"), outcome.Result.Detail)
		}
	case checks.StatusFailed:
		fmt.Fprintf(r.out, "  %s %s\n", r.red.Sprint("FAIL"), name)
		if outcome.Result.Detail != "" {
			fmt.Fprintf(r.out, "    %s %s\n", r.dim.Sprint("->"), outcome.Result.Detail)
		}
		// The remediation line is part of the failure contract, never omitted
		if outcome.Check.SuggestedAction != "" {
			fmt.Fprintf(r.out, "    %s %s\n", r.dim.Sprint("->"), outcome.Check.SuggestedAction)
		}
	}
}

// suiteOrder returns suite names in order of first appearance.
func (r *Reporter) suiteOrder(report *checks.Report) []string {
	var order []string
	seen := make(map[string]struct{})
	for _, outcome := range report.Results {
		if _, ok := seen[outcome.Check.Suite]; !ok {
			seen[outcome.Check.Suite] = struct{}{}
			order = append(order, outcome.Check.Suite)
		}
	}
	return order
}

// ExitCode is a pure function of the report's failure count.
func ExitCode(report *checks.Report) int {
	if report.Failed() > 0 {
		return ExitFailure
	}
	return ExitSuccess
}
