package ingestion

import "strings"

// BuildWorkingDraft re-renders organized sections into a clean
// intermediate document: title line, content lines, one blank line
// between sections. The synthesis prompt always receives this normalized
// form no matter how messy the OCR text was. Whitespace is collapsed per
// line; titles and content are otherwise preserved verbatim.
func BuildWorkingDraft(sections []OrganizedSection) string {
	var sb strings.Builder

	for i, section := range sections {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(section.Title)
		sb.WriteString("\n")

		for _, line := range section.Lines {
			if line == "" {
				sb.WriteString("\n")
				continue
			}
			sb.WriteString(collapseSpaces(line))
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// collapseSpaces squeezes runs of spaces/tabs into single spaces
func collapseSpaces(line string) string {
	return strings.Join(strings.Fields(line), " ")
}
