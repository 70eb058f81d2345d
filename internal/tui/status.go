package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/felixgeelhaar/groundwork/internal/domain/provision"
	"github.com/felixgeelhaar/groundwork/internal/tui/ui"
)

// StatusReporter prints one styled line per finished step. Failures go to
// errOut, everything else to out.
type StatusReporter struct {
	out     io.Writer
	errOut  io.Writer
	styles  ui.Styles
	verbose bool
}

// NewStatusReporter creates a StatusReporter.
func NewStatusReporter(out, errOut io.Writer) *StatusReporter {
	return &StatusReporter{
		out:    out,
		errOut: errOut,
		styles: ui.DefaultStyles(),
	}
}

// WithVerbose also prints a line as each step starts.
func (r *StatusReporter) WithVerbose(verbose bool) *StatusReporter {
	r.verbose = verbose
	return r
}

// StepStarted implements provision.Reporter.
func (r *StatusReporter) StepStarted(name string) {
	if r.verbose {
		fmt.Fprintf(r.out, "%s %s\n", r.styles.Muted.Render("›"), r.styles.Muted.Render(name))
	}
}

// StepFinished implements provision.Reporter.
func (r *StatusReporter) StepFinished(result provision.StepResult) {
	switch result.Outcome {
	case provision.OutcomeApplied:
		r.line(r.out, r.styles.Success.Render(ui.SymbolSuccess), result.Name, result.Detail)
	case provision.OutcomeSkipped:
		r.line(r.out, r.styles.Info.Render(ui.SymbolInfo), result.Name, result.Detail)
	case provision.OutcomePlanned:
		r.line(r.out, r.styles.Info.Render(ui.SymbolInfo), result.Name, "would apply")
	case provision.OutcomeDeferred:
		r.line(r.out, r.styles.Warning.Render(ui.SymbolWarning), result.Name, "deferred: "+result.Detail)
	case provision.OutcomeFailed:
		detail := result.Detail
		if result.Err != nil {
			detail = rootMessage(result.Err)
		}
		r.line(r.errOut, r.styles.Error.Render(ui.SymbolError), result.Name, detail)
	default:
		r.line(r.out, " ", result.Name, result.Detail)
	}
}

// RunFinished implements provision.Reporter.
func (r *StatusReporter) RunFinished(report *provision.Report) {
	if report == nil {
		return
	}

	if !report.Succeeded() {
		fmt.Fprintf(r.errOut, "\n%s %s\n",
			r.styles.Error.Render(ui.SymbolError),
			r.styles.Error.Render(fmt.Sprintf("Aborted at %s; fix the cause and re-run", report.FailedStep)))
		return
	}

	counts := []string{}
	for _, o := range []provision.Outcome{
		provision.OutcomeApplied,
		provision.OutcomePlanned,
		provision.OutcomeSkipped,
		provision.OutcomeDeferred,
	} {
		if n := report.Count(o); n > 0 {
			counts = append(counts, fmt.Sprintf("%d %s", n, o))
		}
	}
	if len(counts) == 0 {
		counts = append(counts, "nothing to do")
	}

	fmt.Fprintf(r.out, "\n%s %s %s\n",
		r.styles.Success.Render(ui.SymbolSuccess),
		r.styles.Title.Render("Done:"),
		fmt.Sprintf("%s in %s", strings.Join(counts, ", "), report.Duration.Round(10*time.Millisecond)))
}

// PublicKey prints a freshly written public key for manual registration.
func (r *StatusReporter) PublicKey(host, path, key string) {
	fmt.Fprintf(r.out, "\n%s Add this public key (%s) to %s:\n%s\n",
		r.styles.Info.Render(ui.SymbolInfo),
		path,
		host,
		r.styles.Panel.Render(key))
}

// Failure prints an error that ended the command.
func (r *StatusReporter) Failure(message string) {
	fmt.Fprintf(r.errOut, "%s %s %s\n",
		r.styles.Error.Render(ui.SymbolError),
		r.styles.Error.Render("Error:"),
		message)
}

func (r *StatusReporter) line(w io.Writer, symbol, name, detail string) {
	if detail == "" {
		fmt.Fprintf(w, "%s %s\n", symbol, name)
		return
	}
	fmt.Fprintf(w, "%s %s %s\n", symbol, name, r.styles.Muted.Render(detail))
}

// rootMessage prefers the cause carried by a StepError.
func rootMessage(err error) string {
	if se, ok := provision.AsStepError(err); ok && se.Underlying != nil {
		return se.Underlying.Error()
	}
	return err.Error()
}

var _ provision.Reporter = (*StatusReporter)(nil)
