package advice

import (
	"bytes"
	"fmt"
	"text/template"
)

var messages = map[Reason]string{
	ReasonInsufficientData: `Not enough growth data to locate PHV{{with .Name}} for {{.}}{{end}}. Record heights spaced at least three months apart.`,
	ReasonStaleData:        `Latest height is {{.MonthsSinceLastSample}} months old. Re-measure before relying on these windows.`,
	ReasonManualOverride:   `PHV date {{.PHV.Date}} was set manually and overrides the estimate.`,
	ReasonPrePHV:           `{{abs .Evaluation.MonthsFromPHV}} months before PHV. Build movement skills and keep loads light.`,
	ReasonCircaPHV:         `Around PHV ({{signed .Evaluation.MonthsFromPHV}} months). Growth is fastest now, so watch load and coordination dips.`,
	ReasonPostPHV:          `{{.Evaluation.MonthsFromPHV}} months past PHV. Tissue tolerance is rising.`,
	ReasonNoActiveWindow:   `No sensitive window is open on {{.Evaluation.Query}}. Keep a balanced programme.`,

	ReasonWindowStamina:     `Stamina window open: develop the aerobic base.`,
	ReasonWindowStrength:    `Strength window open: progress resistance training.`,
	ReasonWindowSpeed:       `Speed window open: include short sprints and reactive drills.`,
	ReasonWindowFlexibility: `Flexibility window open: prioritise mobility work.`,
	ReasonWindowSkill:       `Skill window open: emphasise technical repetition.`,
}

var funcs = template.FuncMap{
	"abs": func(v int) int {
		if v < 0 {
			return -v
		}
		return v
	},
	"signed": func(v int) string {
		return fmt.Sprintf("%+d", v)
	},
}

var templates = func() *template.Template {
	root := template.New("advice").Funcs(funcs)
	for r, text := range messages {
		template.Must(root.New(string(r)).Parse(text))
	}
	return root
}()

// Render formats reasons as messages, one per reason, in order.
func Render(reasons []Reason, in Input) ([]string, error) {
	out := make([]string, 0, len(reasons))
	var buf bytes.Buffer
	for _, r := range reasons {
		t := templates.Lookup(string(r))
		if t == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownReason, r)
		}
		buf.Reset()
		if err := t.Execute(&buf, in); err != nil {
			return nil, fmt.Errorf("render %s: %w", r, err)
		}
		out = append(out, buf.String())
	}
	return out, nil
}
