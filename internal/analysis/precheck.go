package analysis

import (
	"fmt"
	"regexp"

	"workwise/internal/domain"
)

// Precheck runs deterministic rules over extracted document text and returns
// their findings. These complement the model's findings with checks that need
// no inference: section-presence for structure runs, reference-list shape for
// bibliography runs. Returns nil when there is no text to check, so
// image-only runs skip it.
func Precheck(text string, kind domain.AnalysisKind) []domain.Finding {
	if text == "" {
		return nil
	}
	if kind == domain.KindStructure {
		return structurePrecheck(text)
	}
	return bibliographyPrecheck(text)
}

// sectionRule is one deterministic section-presence check. The pattern is
// line-anchored so body-text mentions of a section name do not count.
type sectionRule struct {
	rule    string
	heading string
	pattern *regexp.Regexp
}

var structureSections = []sectionRule{
	{"table_of_contents_heading", "СОДЕРЖАНИЕ",
		regexp.MustCompile(`(?mi)^\s*(?:содержание|оглавление)\s*$`)},
	{"introduction_heading", "ВВЕДЕНИЕ",
		regexp.MustCompile(`(?mi)^\s*(?:\d+\.?\s*)?введение\s*$`)},
	{"conclusion_heading", "ЗАКЛЮЧЕНИЕ",
		regexp.MustCompile(`(?mi)^\s*(?:\d+\.?\s*)?заключение\s*$`)},
	{"references_heading", "СПИСОК ЛИТЕРАТУРЫ",
		referencesHeadingPattern},
}

var referencesHeadingPattern = regexp.MustCompile(
	`(?mi)^\s*(?:список\s+(?:использованных\s+источников|литературы)|библиографический\s+список)\s*$`)

// citationMarkerPattern matches numeric in-text references like [1] or [2; 3].
var citationMarkerPattern = regexp.MustCompile(`\[\d+(?:\s*[,;]\s*\d+)*\]`)

func structurePrecheck(text string) []domain.Finding {
	findings := make([]domain.Finding, 0, len(structureSections))
	for _, s := range structureSections {
		if loc := s.pattern.FindString(text); loc != "" {
			findings = append(findings, domain.Finding{
				Rule:    s.rule,
				Status:  domain.FindingPass,
				Detail:  fmt.Sprintf("заголовок раздела «%s» найден в тексте", s.heading),
				Excerpt: loc,
			})
			continue
		}
		findings = append(findings, domain.Finding{
			Rule:   s.rule,
			Status: domain.FindingFail,
			Detail: fmt.Sprintf("заголовок раздела «%s» не найден в тексте документа", s.heading),
		})
	}
	return findings
}

func bibliographyPrecheck(text string) []domain.Finding {
	findings := make([]domain.Finding, 0, 2)

	if loc := referencesHeadingPattern.FindString(text); loc != "" {
		findings = append(findings, domain.Finding{
			Rule:    "references_heading",
			Status:  domain.FindingPass,
			Detail:  "раздел со списком литературы найден в тексте",
			Excerpt: loc,
		})
	} else {
		findings = append(findings, domain.Finding{
			Rule:   "references_heading",
			Status: domain.FindingFail,
			Detail: "раздел со списком литературы не найден в тексте документа",
		})
	}

	if markers := citationMarkerPattern.FindAllString(text, -1); len(markers) > 0 {
		findings = append(findings, domain.Finding{
			Rule:    "citation_markers",
			Status:  domain.FindingPass,
			Detail:  fmt.Sprintf("в тексте найдено внутритекстовых ссылок вида [n]: %d", len(markers)),
			Excerpt: markers[0],
		})
	} else {
		findings = append(findings, domain.Finding{
			Rule:   "citation_markers",
			Status: domain.FindingFail,
			Detail: "в тексте не найдено внутритекстовых ссылок вида [n]",
		})
	}
	return findings
}
