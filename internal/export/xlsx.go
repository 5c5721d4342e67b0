// Package export renders completed analyses as downloadable spreadsheets.
package export

import (
	"encoding/json"
	"fmt"

	"github.com/xuri/excelize/v2"

	"workwise/internal/domain"
)

const findingsSheet = "Findings"

// FindingsXLSX renders an analysis as an XLSX workbook: a summary block
// followed by one row per finding, with recommendations at the bottom.
func FindingsXLSX(a *domain.Analysis) ([]byte, error) {
	findings, err := a.DecodedFindings()
	if err != nil {
		return nil, fmt.Errorf("decoding findings: %w", err)
	}
	var recommendations []string
	if len(a.Recommendations) > 0 {
		if err := json.Unmarshal(a.Recommendations, &recommendations); err != nil {
			return nil, fmt.Errorf("decoding recommendations: %w", err)
		}
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	idx, err := f.NewSheet(findingsSheet)
	if err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("removing default sheet: %w", err)
	}

	set := func(cell string, value interface{}) {
		_ = f.SetCellValue(findingsSheet, cell, value)
	}

	set("A1", "Analysis")
	set("B1", a.ID.String())
	set("A2", "Kind")
	set("B2", string(a.Kind))
	set("A3", "Mode")
	set("B3", string(a.Mode))
	set("A4", "Verdict")
	set("B4", string(a.Verdict))
	set("A5", "Model")
	set("B5", a.Model)

	headerRow := 7
	set(fmt.Sprintf("A%d", headerRow), "Rule")
	set(fmt.Sprintf("B%d", headerRow), "Status")
	set(fmt.Sprintf("C%d", headerRow), "Detail")
	set(fmt.Sprintf("D%d", headerRow), "Excerpt")

	row := headerRow + 1
	for _, finding := range findings {
		set(fmt.Sprintf("A%d", row), finding.Rule)
		set(fmt.Sprintf("B%d", row), string(finding.Status))
		set(fmt.Sprintf("C%d", row), finding.Detail)
		set(fmt.Sprintf("D%d", row), finding.Excerpt)
		row++
	}

	if len(recommendations) > 0 {
		row++
		set(fmt.Sprintf("A%d", row), "Recommendations")
		row++
		for _, rec := range recommendations {
			set(fmt.Sprintf("A%d", row), rec)
			row++
		}
	}

	_ = f.SetColWidth(findingsSheet, "A", "A", 28)
	_ = f.SetColWidth(findingsSheet, "C", "D", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
