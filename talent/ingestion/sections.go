package ingestion

import (
	"regexp"
	"strings"
)

// Canonical section labels. The organizer only ever emits these.
const (
	SectionContact        = "CONTACT INFORMATION"
	SectionSummary        = "PROFESSIONAL SUMMARY"
	SectionExperience     = "PROFESSIONAL EXPERIENCE"
	SectionEducation      = "EDUCATION"
	SectionSkills         = "SKILLS & COMPETENCIES"
	SectionCertifications = "CERTIFICATIONS & LICENSES"
	SectionProjects       = "PROJECTS & PORTFOLIO"
	SectionLanguages      = "LANGUAGES"
	SectionAdditional     = "ADDITIONAL INFORMATION"
)

// A header line longer than this is kept as section content too, since it
// likely carries more than a bare heading.
const maxBareHeaderLen = 30

// sectionRule maps trigger keywords to a canonical section label
type sectionRule struct {
	label    string
	keywords []string
}

// sectionRules is evaluated in order and the first match wins. The order
// is the tie-break rule: a line mentioning both "project" and "education"
// classifies as EDUCATION because education is checked first. Tunable
// heuristic, kept stable for behavioral compatibility.
var sectionRules = []sectionRule{
	{SectionSummary, []string{"summary", "objective", "profile", "about me"}},
	{SectionExperience, []string{"experience", "employment", "work history", "career history"}},
	{SectionEducation, []string{"education", "academic", "degree"}},
	{SectionSkills, []string{"skill", "competencies", "technologies", "proficiencies"}},
	{SectionCertifications, []string{"certification", "license", "credential"}},
	{SectionProjects, []string{"project", "portfolio"}},
	{SectionLanguages, []string{"language"}},
	{SectionAdditional, []string{"additional information", "interests", "hobbies", "references", "volunteer", "awards", "activities"}},
}

// OrganizedSection is a labeled grouping of resume lines
type OrganizedSection struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

// Content joins the section's lines back into a block of text
func (s OrganizedSection) Content() string {
	return strings.Join(s.Lines, "\n")
}

// OrganizeSections partitions extracted resume text into labeled sections.
//
// Single linear scan over non-empty trimmed lines: a line matching a
// keyword rule switches the current section (and is itself kept as content
// only when longer than a bare header); every other line joins whatever
// section is currently active, starting from CONTACT INFORMATION. Within
// experience and education a secondary pass separates inferred entries
// with a blank line. Sections come back in first-occurrence order and
// empty ones are dropped.
func OrganizeSections(text string) []OrganizedSection {
	byLabel := make(map[string]*OrganizedSection)
	var order []string

	section := func(label string) *OrganizedSection {
		if s, ok := byLabel[label]; ok {
			return s
		}
		s := &OrganizedSection{Title: label}
		byLabel[label] = s
		order = append(order, label)
		return s
	}

	current := section(SectionContact)

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if label, ok := matchSectionRule(line); ok {
			current = section(label)
			if len(line) > maxBareHeaderLen {
				current.Lines = append(current.Lines, line)
			}
			continue
		}
		current.Lines = append(current.Lines, line)
	}

	result := make([]OrganizedSection, 0, len(order))
	for _, label := range order {
		s := byLabel[label]
		if len(s.Lines) == 0 {
			continue
		}
		if label == SectionExperience || label == SectionEducation {
			s.Lines = groupEntries(s.Lines)
		}
		result = append(result, *s)
	}
	return result
}

// matchSectionRule tests a line against the rule table, first match wins
func matchSectionRule(line string) (string, bool) {
	lower := strings.ToLower(line)
	for _, rule := range sectionRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.label, true
			}
		}
	}
	return "", false
}

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

var institutionKeywords = []string{"university", "college", "institute", "school", "academy"}

const shortEntryLineLen = 40

// groupEntries inserts a blank separator line before each inferred new
// entry, so downstream rendering shows experience and education as
// distinct blocks.
func groupEntries(lines []string) []string {
	grouped := make([]string, 0, len(lines)+4)
	for i, line := range lines {
		if i > 0 && isNewEntrySignal(line) {
			grouped = append(grouped, "")
		}
		grouped = append(grouped, line)
	}
	return grouped
}

// isNewEntrySignal detects the start of a new experience/education entry:
// a 4-digit year, an institutional keyword, or a short non-bulleted line.
func isNewEntrySignal(line string) bool {
	if yearPattern.MatchString(line) {
		return true
	}
	lower := strings.ToLower(line)
	for _, kw := range institutionKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return len(line) < shortEntryLineLen && !isBulleted(line)
}

func isBulleted(line string) bool {
	return strings.HasPrefix(line, "-") ||
		strings.HasPrefix(line, "*") ||
		strings.HasPrefix(line, "•") ||
		strings.HasPrefix(line, "·")
}

// countNonEmptyLines counts lines that survive trimming, used in
// diagnostics and content-conservation checks
func countNonEmptyLines(text string) int {
	n := 0
	for _, raw := range strings.Split(text, "\n") {
		if strings.TrimSpace(raw) != "" {
			n++
		}
	}
	return n
}
