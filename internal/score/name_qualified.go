package score

import "github.com/clearwatch-io/entmatch/internal/feature"

// Qualifier weights are additive penalties: a contradicting birth day
// outweighs a contradicting year, which outweighs softer attributes.
var nameQualifiedWeights = []Contribution{
	{Feature: feature.NameSoundexMatch, Weight: 0.5},
	{Feature: feature.JaroNameParts, Weight: 0.5},
	{Feature: feature.CountryMismatch, Weight: -0.1},
	{Feature: feature.DOBYearDisjoint, Weight: -0.1},
	{Feature: feature.DOBDayDisjoint, Weight: -0.15},
	{Feature: feature.GenderMismatch, Weight: -0.1},
	{Feature: feature.OrgIDMismatch, Weight: -0.1},
}

type nameQualified struct{}

func (nameQualified) ID() ID { return NameQualified }

func (nameQualified) Description() string {
	return "Name similarity with penalties for contradicting dates, countries, genders, and registration numbers."
}

func (nameQualified) Score(v *feature.Vector) Explanation {
	sum, contribs := weighted(v, nameQualifiedWeights)
	return Explanation{Score: clamp01(sum), Features: contribs}
}
