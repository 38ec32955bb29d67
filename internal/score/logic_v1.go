package score

import (
	"math"

	"github.com/clearwatch-io/entmatch/internal/feature"
)

// LogicV1WeightsVersion identifies the weight table below. Bump it on any
// weight change so stored scores remain attributable to the model that
// produced them.
const LogicV1WeightsVersion = "2025-08"

const logicV1Bias = -2.2

// Positive weights reflect how conclusive a feature is on its own: hard
// identifiers nearly decide a match, names carry strong but fallible
// evidence, and the token-level name scores only reinforce. Negative
// weights penalize proven disagreement.
var logicV1Weights = []Contribution{
	{Feature: feature.NameLiteralMatch, Weight: 3.9},
	{Feature: feature.PersonNameJaroWinkler, Weight: 4.3},
	{Feature: feature.PersonNamePhoneticMatch, Weight: 3.6},
	{Feature: feature.NameFingerprintLevenshtein, Weight: 4.1},
	{Feature: feature.NameSoundexMatch, Weight: 0.8},
	{Feature: feature.JaroNameParts, Weight: 1.1},
	{Feature: feature.AlignedNameMatch, Weight: 1.6},
	{Feature: feature.AddressEntityMatch, Weight: 4.4},
	{Feature: feature.CryptoWalletMatch, Weight: 5.2},
	{Feature: feature.ISINSecurityMatch, Weight: 4.9},
	{Feature: feature.LEICodeMatch, Weight: 4.6},
	{Feature: feature.OGRNCodeMatch, Weight: 4.6},
	{Feature: feature.VesselIMOMMSIMatch, Weight: 4.6},
	{Feature: feature.INNCodeMatch, Weight: 4.4},
	{Feature: feature.BICCodeMatch, Weight: 4.1},
	{Feature: feature.IdentifierMatch, Weight: 2.9},
	{Feature: feature.WeakAliasMatch, Weight: 1.7},
	{Feature: feature.DOBMatch, Weight: 1.0},
	{Feature: feature.FreeTextMatch, Weight: 0.7},
	{Feature: feature.CountryMismatch, Weight: -1.3},
	{Feature: feature.LastNameMismatch, Weight: -1.6},
	{Feature: feature.DOBYearDisjoint, Weight: -1.2},
	{Feature: feature.DOBDayDisjoint, Weight: -1.8},
	{Feature: feature.GenderMismatch, Weight: -1.1},
	{Feature: feature.OrgIDMismatch, Weight: -1.5},
	{Feature: feature.NumbersMismatch, Weight: -0.8},
}

type logicV1 struct{}

func (logicV1) ID() ID { return LogicV1 }

func (logicV1) Description() string {
	return "Logistic model over name, identifier, and qualifier features. Default."
}

// Score applies the logistic transform to the weighted feature sum. A
// pair without any shared evidence scores zero outright; the transform
// itself never reaches exactly zero or one.
func (logicV1) Score(v *feature.Vector) Explanation {
	sum, contribs := weighted(v, logicV1Weights)
	if len(contribs) == 0 {
		return Explanation{}
	}
	return Explanation{
		Score:    sigmoid(logicV1Bias + sum),
		Features: contribs,
	}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
