package services

import (
	"strings"

	"skillvet/internal/types"
)

// DetectLevel estimates how deep a candidate's exposure to a skill runs by
// counting mentions across the projects and experience sections of the
// analysis report.
func DetectLevel(skill string, sections map[string]string) string {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return "Beginner"
	}
	text := strings.ToLower(sections["projects"] + " " + sections["experience"])
	mentions := strings.Count(text, strings.ToLower(skill))
	switch {
	case mentions >= 3:
		return "Advanced"
	case mentions >= 1:
		return "Intermediate"
	default:
		return "Beginner"
	}
}

// AnnotateLevels fills the Level field of matched skills from the report
// sections. A nil report leaves every skill at Beginner.
func AnnotateLevels(matched []types.MatchedSkill, report *types.AnalysisReport) []types.MatchedSkill {
	sections := map[string]string{}
	if report != nil {
		sections = report.Sections
	}
	for i := range matched {
		matched[i].Level = DetectLevel(matched[i].ResumeSkill, sections)
	}
	return matched
}
