package plan

import (
	"regexp"
	"strings"
)

const minPlanLength = 100

var (
	requiredContent = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(test|testing)`),
		regexp.MustCompile(`(?i)(objective|goal|purpose)`),
		regexp.MustCompile(`(?i)(scenario|case|step)`),
	}

	structureMarkers = []*regexp.Regexp{
		regexp.MustCompile(`(?m)^#{1,6}\s`),
		regexp.MustCompile(`(?m)^\d+\.`),
		regexp.MustCompile(`(?m)^[-*+]\s`),
	}
)

// Validation is the outcome of checking a generated plan
type Validation struct {
	IsValid bool   `json:"is_valid"`
	Message string `json:"message"`
}

// Validate checks that a plan is long enough, talks about objectives and scenarios,
// and has some markdown structure.
func Validate(plan string) Validation {
	trimmed := strings.TrimSpace(plan)
	if trimmed == "" {
		return Validation{Message: "Test plan is empty or contains only whitespace"}
	}
	if len(trimmed) < minPlanLength {
		return Validation{Message: "Test plan is too short (minimum 100 characters required)"}
	}

	for _, re := range requiredContent {
		if !re.MatchString(plan) {
			return Validation{Message: "Test plan is missing essential content. Consider adding more detail about testing objectives, scenarios, and steps."}
		}
	}

	for _, re := range structureMarkers {
		if re.MatchString(plan) {
			return Validation{IsValid: true, Message: "Test plan validation passed"}
		}
	}
	return Validation{Message: "Test plan lacks clear structure. Consider using headers, lists, or numbered steps."}
}
