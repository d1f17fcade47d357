package weekly

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	noProfileSummary = "Kein Profil verfügbar"
	noPatternSummary = "Keine spezifischen Muster erkannt"
	topInterestCount = 5
)

// FormatSummary renders a feature set as one readable line.
func FormatSummary(fs *FeatureSet) string {
	if fs == nil {
		return noProfileSummary
	}

	var parts []string
	switch fs.Mode {
	case ModeAnalysis:
		if fs.Analysis == nil {
			return noProfileSummary
		}
		if s := fs.Analysis.String("stress_level"); s != "" {
			parts = append(parts, "Stress: "+s)
		}
		if s := fs.Analysis.String("energy_pattern"); s != "" {
			parts = append(parts, "Energie: "+s)
		}
		if interests := fs.Analysis.Strings("dominant_interests"); len(interests) > 0 {
			parts = append(parts, "Interessen: "+strings.Join(interests, ", "))
		}
	case ModePersona:
		if fs.Persona == nil {
			return noProfileSummary
		}
		if len(fs.Persona.Traits) > 0 {
			parts = append(parts, "Eigenschaften: "+strings.Join(fs.Persona.Traits, ", "))
		}
		if fs.Persona.Trend != "" {
			parts = append(parts, "Trend: "+fs.Persona.Trend)
		}
		if fs.Persona.Priority != "" {
			parts = append(parts, "Fokus: "+fs.Persona.Priority)
		}
	default:
		return noProfileSummary
	}

	if len(parts) == 0 {
		return noPatternSummary
	}
	return strings.Join(parts, " | ")
}

// InterestCount is one entry of ProfileStats.TopInterests.
type InterestCount struct {
	Interest string `json:"interest"`
	Count    int    `json:"count"`
}

// ProfileStats aggregates all weekly profiles of a user.
type ProfileStats struct {
	TotalProfiles      int             `json:"total_profiles"`
	AverageConfidence  *float64        `json:"average_confidence"`
	TopInterests       []InterestCount `json:"top_interests"`
	StressDistribution map[string]int  `json:"stress_distribution"`
	LatestProfileDate  string          `json:"latest_profile_date,omitempty"`
}

// Stats summarizes every stored profile of userID.
func (a *Analyzer) Stats(ctx context.Context, userID string) (ProfileStats, error) {
	profiles, err := a.store.ListAllWeeklyProfiles(ctx, userID)
	if err != nil {
		return ProfileStats{}, fmt.Errorf("failed to load profiles for stats: %w", err)
	}

	stats := ProfileStats{
		TotalProfiles:      len(profiles),
		TopInterests:       []InterestCount{},
		StressDistribution: map[string]int{},
	}
	if len(profiles) == 0 {
		return stats, nil
	}
	stats.LatestProfileDate = profiles[0].WeekEndDate.String()

	var confSum float64
	var confN int
	interestCounts := map[string]int{}
	var interestOrder []string

	for _, p := range profiles {
		if p.ConfidenceScore > 0 {
			confSum += p.ConfidenceScore
			confN++
		}

		fs, err := DecodeFeatures(p.Features)
		if err != nil {
			a.log.WarnContext(ctx, "Skipping profile with unreadable features in stats", "profile_id", p.ID, "error", err)
			continue
		}
		for _, interest := range fs.Interests() {
			if _, seen := interestCounts[interest]; !seen {
				interestOrder = append(interestOrder, interest)
			}
			interestCounts[interest]++
		}
		if stress := fs.StressLevel(); stress != "" {
			stats.StressDistribution[stress]++
		}
	}

	if confN > 0 {
		avg := math.Round(confSum/float64(confN)*100) / 100
		stats.AverageConfidence = &avg
	}

	// Stable sort keeps first-seen order among equal counts.
	sort.SliceStable(interestOrder, func(i, j int) bool {
		return interestCounts[interestOrder[i]] > interestCounts[interestOrder[j]]
	})
	if len(interestOrder) > topInterestCount {
		interestOrder = interestOrder[:topInterestCount]
	}
	for _, interest := range interestOrder {
		stats.TopInterests = append(stats.TopInterests, InterestCount{Interest: interest, Count: interestCounts[interest]})
	}

	return stats, nil
}
