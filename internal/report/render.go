// Package report renders a finished assessment run for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"

	"github.com/dbsmedya/dqscout/internal/orchestrator"
	"github.com/dbsmedya/dqscout/internal/quality"
)

// Renderer writes a human-readable report. Color is on by default and should
// be switched off when the output is not a terminal.
type Renderer struct {
	out   io.Writer
	Color bool
}

// NewRenderer creates a renderer targeting the given writer.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out, Color: true}
}

// Render prints the full report: intent, discovered schema, check outcomes
// and the summary.
func (r *Renderer) Render(result *orchestrator.RunResult) {
	r.printHeader("Data Quality Assessment")

	fmt.Fprintln(r.out)
	r.printSection("Intent")
	fmt.Fprintf(r.out, "  Goal: %s\n", result.Intent.Goal)
	if len(result.Intent.TargetPatterns) > 0 {
		fmt.Fprintf(r.out, "  Targets: %s\n", strings.Join(result.Intent.TargetPatterns, ", "))
	}
	if len(result.Intent.Constraints) > 0 {
		fmt.Fprintf(r.out, "  Constraints: %s\n", strings.Join(result.Intent.Constraints, ", "))
	}

	fmt.Fprintln(r.out)
	r.printSection("Discovered Schema")
	fmt.Fprintf(r.out, "  Databases (%d): %s\n",
		len(result.Discovered.Databases), strings.Join(result.Discovered.Databases, ", "))
	fmt.Fprintf(r.out, "  Tables (%d):\n", len(result.Discovered.Tables))
	for _, table := range result.Discovered.Tables {
		marker := ""
		if _, ok := result.Discovered.DDL[table]; ok {
			marker = " (ddl)"
		}
		fmt.Fprintf(r.out, "    - %s%s\n", table, marker)
	}

	fmt.Fprintln(r.out)
	r.printSection("Quality Checks")
	r.printChecks(result.Checks)

	fmt.Fprintln(r.out)
	r.printSection("Summary")
	fmt.Fprintf(r.out, "  %s\n", result.Summary.Summary)
	if len(result.Summary.Issues) > 0 {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, "  Issues:")
		for _, issue := range result.Summary.Issues {
			fmt.Fprintf(r.out, "    ! %s\n", r.paint(color.Yellow, issue))
		}
	}
	if len(result.Summary.Recommendations) > 0 {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, "  Recommendations:")
		for _, rec := range result.Summary.Recommendations {
			fmt.Fprintf(r.out, "    * %s\n", rec)
		}
	}

	fmt.Fprintf(r.out, "\nCompleted in %dms\n", result.DurationMS)
}

// printChecks prints one aligned row per check. Columns are sized by visual
// width so wide characters in table names do not break the layout.
func (r *Renderer) printChecks(checks []quality.CheckResult) {
	if len(checks) == 0 {
		fmt.Fprintln(r.out, "  (no checks executed)")
		return
	}

	toolWidth := runewidth.StringWidth("TOOL")
	tableWidth := runewidth.StringWidth("TABLE")
	for _, c := range checks {
		if w := runewidth.StringWidth(c.Tool); w > toolWidth {
			toolWidth = w
		}
		if w := runewidth.StringWidth(c.Table); w > tableWidth {
			tableWidth = w
		}
	}

	fmt.Fprintf(r.out, "  %s  %s  %s\n",
		runewidth.FillRight("TOOL", toolWidth),
		runewidth.FillRight("TABLE", tableWidth),
		"RESULT")

	for _, c := range checks {
		fmt.Fprintf(r.out, "  %s  %s  %s\n",
			runewidth.FillRight(c.Tool, toolWidth),
			runewidth.FillRight(c.Table, tableWidth),
			r.checkOutcome(c))
	}
}

// checkOutcome formats the result column: the error payload for failed
// checks, extracted metrics otherwise.
func (r *Renderer) checkOutcome(c quality.CheckResult) string {
	if c.Failed() {
		return r.paint(color.Red,
			fmt.Sprintf("FAILED: %s (code %d)", c.Error.Message, c.Error.Code))
	}
	if len(c.Metrics) == 0 {
		return "ok"
	}

	keys := make([]string, 0, len(c.Metrics))
	for k := range c.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+strconv.FormatFloat(c.Metrics[k], 'f', -1, 64))
	}
	return r.paint(color.Green, strings.Join(parts, " "))
}

func (r *Renderer) printHeader(title string) {
	width := runewidth.StringWidth(title) + 4
	fmt.Fprintln(r.out, strings.Repeat("=", width))
	fmt.Fprintf(r.out, "  %s\n", r.paint(color.Cyan, title))
	fmt.Fprintln(r.out, strings.Repeat("=", width))
}

func (r *Renderer) printSection(title string) {
	fmt.Fprintf(r.out, "[%s]\n", title)
	fmt.Fprintln(r.out, strings.Repeat("-", runewidth.StringWidth(title)+2))
}

func (r *Renderer) paint(c color.Color, s string) string {
	if !r.Color {
		return s
	}
	return c.Sprint(s)
}

// RenderJSON writes the machine-readable run record.
func RenderJSON(out io.Writer, result *orchestrator.RunResult) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
