// Package report renders assessments for people: an aligned text table, a
// markdown document, or that markdown converted to HTML.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	service "github.com/okian/vero/internal/app"
	"github.com/okian/vero/internal/domain/calendar"
	"github.com/okian/vero/internal/domain/growth"
	"github.com/okian/vero/internal/domain/windows"
	"github.com/okian/vero/pkg/metrics"
)

// Format names an output encoding.
type Format string

// Supported formats.
const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat validates s as a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatMarkdown, FormatHTML:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// mdRenderer converts markdown with tables. Raw HTML in names is escaped
// because WithUnsafe is not set.
var mdRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithRendererOptions(
		goldmarkHTML.WithXHTML(),
	),
)

// Render writes assessments taken on the given day to w.
func Render(w io.Writer, format Format, on calendar.Date, assessments []service.Assessment) error {
	var err error
	switch format {
	case FormatText:
		err = renderText(w, assessments)
	case FormatMarkdown:
		_, err = io.WriteString(w, markdown(on, assessments))
	case FormatHTML:
		err = renderHTML(w, on, assessments)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		metrics.RecordError("report", string(format))
		return fmt.Errorf("render %s report: %w", format, err)
	}
	return nil
}

func renderText(w io.Writer, assessments []service.Assessment) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ATHLETE\tAGE\tPHV\tSOURCE\tMONTHS\tWINDOWS\tDATA"); err != nil {
		return err
	}
	for _, a := range assessments {
		if _, err := fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			a.Name, a.AgeYears, phvCell(a), a.PHV.Source, monthsCell(a), windowsCell(a), dataCell(a)); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, a := range assessments {
		if len(a.Messages) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "\n%s:\n", a.Name); err != nil {
			return err
		}
		for _, m := range a.Messages {
			if _, err := fmt.Fprintf(w, "  - %s\n", m); err != nil {
				return err
			}
		}
	}
	return nil
}

func markdown(on calendar.Date, assessments []service.Assessment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Growth assessment %s\n\n", on)

	if len(assessments) == 0 {
		b.WriteString("No athletes.\n")
		return b.String()
	}

	b.WriteString("| Athlete | Age | PHV | Source | Months from PHV | Windows | Data |\n")
	b.WriteString("|---|---:|---|---|---:|---|---|\n")
	for _, a := range assessments {
		fmt.Fprintf(&b, "| %s | %d | %s | %s | %s | %s | %s |\n",
			cell(a.Name), a.AgeYears, phvCell(a), a.PHV.Source, monthsCell(a), windowsCell(a), dataCell(a))
	}

	for _, a := range assessments {
		fmt.Fprintf(&b, "\n## %s\n\n", a.Name)
		for _, m := range a.Messages {
			fmt.Fprintf(&b, "- %s\n", m)
		}
	}
	return b.String()
}

func renderHTML(w io.Writer, on calendar.Date, assessments []service.Assessment) error {
	var body bytes.Buffer
	if err := mdRenderer.Convert([]byte(markdown(on, assessments)), &body); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Growth assessment %s</title>\n</head>\n<body>\n%s</body>\n</html>\n", on, body.String())
	return err
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func phvCell(a service.Assessment) string {
	if !a.PHV.Known() {
		return "-"
	}
	return a.PHV.Date.String()
}

func monthsCell(a service.Assessment) string {
	if a.Windows.Status != windows.StatusEvaluated {
		return "-"
	}
	return fmt.Sprintf("%+d", a.Windows.MonthsFromPHV)
}

func windowsCell(a service.Assessment) string {
	switch {
	case a.Windows.Status == windows.StatusInsufficientData:
		return "insufficient data"
	case len(a.Windows.Active) == 0:
		return "none active"
	}
	names := make([]string, len(a.Windows.Active))
	for i, n := range a.Windows.Active {
		names[i] = string(n)
	}
	return strings.Join(names, ", ")
}

func dataCell(a service.Assessment) string {
	switch a.Freshness {
	case growth.FreshnessNoData:
		return "no samples"
	case growth.FreshnessStale:
		return fmt.Sprintf("stale: last sample %d months ago", a.MonthsSinceLastSample)
	default:
		return fmt.Sprintf("current (%d mo)", a.MonthsSinceLastSample)
	}
}
