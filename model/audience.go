package model

type AudienceStats struct {
	Total      int            `json:"total"`
	Active     int            `json:"active"`
	ByAgeGroup map[string]int `json:"byAgeGroup"`
	ByGender   map[string]int `json:"byGender"`
	ByCountry  map[string]int `json:"byCountry"`
	ByState    map[string]int `json:"byState,omitempty"`
	ByIndustry map[string]int `json:"byIndustry"`
}

// intersection discount applied when both age and industry filters are set
const overlapFactor = 0.7

// EstimatedReach approximates how many respondents match a filter set.
// Each dimension is summed on its own and the widest one wins; with no
// filters at all the whole active audience is reachable. The result never
// exceeds stats.Total.
func EstimatedReach(stats AudienceStats, a AudienceSpec) int {
	reach := 0
	widen := func(values []string, counts map[string]int) {
		if len(values) == 0 {
			return
		}
		sum := 0
		for _, v := range values {
			sum += counts[v]
		}
		reach = max(reach, sum)
	}
	widen(a.AgeGroups, stats.ByAgeGroup)
	widen(a.Industries, stats.ByIndustry)
	widen(a.Locations, stats.ByCountry)

	if len(a.AgeGroups) == 0 && len(a.Industries) == 0 && len(a.Locations) == 0 {
		reach = stats.Active
	}
	if len(a.AgeGroups) > 0 && len(a.Industries) > 0 {
		reach = int(float64(reach) * overlapFactor)
	}
	return min(reach, stats.Total)
}
