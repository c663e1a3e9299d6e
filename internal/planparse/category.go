package planparse

import "strings"

// Category is a display hint for a section, chosen from its title.
type Category string

const (
	CategorySummary       Category = "summary"
	CategoryPeople        Category = "people"
	CategoryOpportunities Category = "opportunities"
	CategoryTargeting     Category = "targeting"
	CategoryStrategy      Category = "strategy"
	CategoryMetrics       Category = "metrics"
	CategoryActions       Category = "actions"
	CategoryTeam          Category = "team"
	CategoryRisk          Category = "risk"
	CategoryGrowth        Category = "growth"
)

// Checked in order; the first rule with a matching keyword wins.
var categoryRules = []struct {
	category Category
	keywords []string
}{
	{CategorySummary, []string{"executive", "summary", "overview"}},
	{CategoryPeople, []string{"people", "influence", "relationship"}},
	{CategoryOpportunities, []string{"whitespace", "opportunit"}},
	{CategoryTargeting, []string{"target", "sweet spot"}},
	{CategoryStrategy, []string{"trust", "strategy"}},
	{CategoryMetrics, []string{"metric", "kpi", "success"}},
	{CategoryActions, []string{"action", "next step", "timeline"}},
	{CategoryTeam, []string{"team", "resource"}},
	{CategoryRisk, []string{"risk"}},
}

// Classify maps a section title to its display category, defaulting to
// CategoryGrowth.
func Classify(title string) Category {
	lower := strings.ToLower(title)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return CategoryGrowth
}
