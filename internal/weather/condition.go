package weather

import "strings"

// Category is the coarse condition bucket used for theming.
type Category string

const (
	CategoryUnknown Category = "unknown"
	CategorySunny   Category = "sunny"
	CategoryCloudy  Category = "cloudy"
	CategoryRainy   Category = "rainy"
	CategorySnowy   Category = "snowy"
	CategoryStormy  Category = "stormy"
	CategoryFoggy   Category = "foggy"
)

var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategorySunny, []string{"sun", "clear"}},
	{CategoryCloudy, []string{"cloud"}},
	{CategoryRainy, []string{"rain", "drizzle"}},
	{CategorySnowy, []string{"snow"}},
	{CategoryStormy, []string{"storm", "thunder"}},
	{CategoryFoggy, []string{"fog", "mist"}},
}

// Classify maps a free-text condition to a Category by substring keywords.
// The first matching bucket wins, so "Partly sunny, clouds" is sunny.
func Classify(condition string) Category {
	c := strings.ToLower(condition)
	for _, entry := range categoryKeywords {
		if hasAny(c, entry.keywords...) {
			return entry.category
		}
	}
	return CategoryUnknown
}

func hasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
