package score

import "github.com/clearwatch-io/entmatch/internal/feature"

var nameBasedWeights = []Contribution{
	{Feature: feature.NameSoundexMatch, Weight: 0.5},
	{Feature: feature.JaroNameParts, Weight: 0.5},
}

type nameBased struct{}

func (nameBased) ID() ID { return NameBased }

func (nameBased) Description() string {
	return "Score on phonetic and token-level name similarity only."
}

func (nameBased) Score(v *feature.Vector) Explanation {
	sum, contribs := weighted(v, nameBasedWeights)
	return Explanation{Score: clamp01(sum), Features: contribs}
}
