package render

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/emrgen/storefront/internal/document"
	"github.com/sirupsen/logrus"
)

// RenderResult is the terminal outcome of one section's render. Exactly one of
// the three cases holds: success, error placeholder, or unknown-type
// placeholder. There are no retries; a render is synchronous and idempotent,
// so retrying has no value until the settings change.
type RenderResult struct {
	SectionID   string
	SectionType string
	HTML        string
	Err         error
	Unknown     bool
}

var (
	unknownTpl = template.Must(template.New("unknown").Parse(
		`<div class="section-placeholder" data-section-id="{{.ID}}">Section type &quot;{{.Type}}&quot; has no renderer yet</div>`))
	failedTpl = template.Must(template.New("failed").Parse(
		`<div class="section-error" data-section-id="{{.ID}}">Section &quot;{{.Type}}&quot; failed to render: {{.Reason}}</div>`))
)

// DispatchSection renders a single section, absorbing renderer errors and
// panics at this boundary. Malformed settings, e.g. a string where an array
// was expected, surface as an inline error placeholder and nothing more.
func DispatchSection(registry *Registry, rctx Context, section document.Section) (result RenderResult) {
	result = RenderResult{
		SectionID:   section.ID,
		SectionType: section.Type,
	}

	renderer, ok := registry.Lookup(section.Type)
	if !ok {
		// new section types roll out in the editor before the renderer
		// catches up; an unrecognized type is expected, not an error
		result.Unknown = true
		result.HTML = placeholder(unknownTpl, section, "")
		return result
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("renderer panic: %v", r)
			logrus.Errorf("section %s (%s): %v", section.ID, section.Type, err)
			result.Err = err
			result.HTML = placeholder(failedTpl, section, fmt.Sprint(r))
		}
	}()

	html, err := renderer.Render(rctx, section)
	if err != nil {
		logrus.Errorf("section %s (%s) failed to render: %v", section.ID, section.Type, err)
		result.Err = err
		result.HTML = placeholder(failedTpl, section, err.Error())
		return result
	}

	result.HTML = html
	return result
}

// Dispatch renders a whole document in section order. Hidden sections are
// skipped before dispatch. Per-section failures substitute a typed error value
// and never abort the fold over the remaining sections.
func Dispatch(registry *Registry, rctx Context, sections document.Sections) []RenderResult {
	results := make([]RenderResult, 0, len(sections))
	for _, section := range sections {
		if section.Hidden() {
			continue
		}

		results = append(results, DispatchSection(registry, rctx, section))
	}

	return results
}

// Page concatenates dispatch results into the final page markup.
func Page(results []RenderResult) string {
	var sb strings.Builder
	for _, r := range results {
		sb.WriteString(r.HTML)
		sb.WriteString("\n")
	}

	return sb.String()
}

func placeholder(tpl *template.Template, section document.Section, reason string) string {
	var sb strings.Builder
	err := tpl.Execute(&sb, struct {
		ID     string
		Type   string
		Reason string
	}{section.ID, section.Type, reason})
	if err != nil {
		// the placeholder templates take plain strings; this cannot fail
		return ""
	}

	return sb.String()
}
