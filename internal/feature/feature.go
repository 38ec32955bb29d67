// Package feature turns a query-candidate pair into a named vector of
// bounded similarity and mismatch scores. Scoring algorithms consume the
// vector by feature name and never touch raw properties, so every
// algorithm sees the same evidence.
package feature

// Positive feature names.
const (
	NameLiteralMatch           = "name_literal_match"
	PersonNameJaroWinkler      = "person_name_jaro_winkler"
	PersonNamePhoneticMatch    = "person_name_phonetic_match"
	NameFingerprintLevenshtein = "name_fingerprint_levenshtein"
	NameSoundexMatch           = "name_soundex_match"
	JaroNameParts              = "jaro_name_parts"
	AlignedNameMatch           = "aligned_name_match"
	AddressEntityMatch         = "address_entity_match"
	CryptoWalletMatch          = "crypto_wallet_match"
	ISINSecurityMatch          = "isin_security_match"
	LEICodeMatch               = "lei_code_match"
	OGRNCodeMatch              = "ogrn_code_match"
	INNCodeMatch               = "inn_code_match"
	BICCodeMatch               = "bic_code_match"
	VesselIMOMMSIMatch         = "vessel_imo_mmsi_match"
	IdentifierMatch            = "identifier_match"
	WeakAliasMatch             = "weak_alias_match"
	DOBMatch                   = "dob_match"
	FreeTextMatch              = "free_text_match"
)

// Qualifier feature names. Qualifiers score disagreement, never absence:
// a side without the property cannot mismatch.
const (
	CountryMismatch  = "country_mismatch"
	LastNameMismatch = "last_name_mismatch"
	DOBYearDisjoint  = "dob_year_disjoint"
	DOBDayDisjoint   = "dob_day_disjoint"
	GenderMismatch   = "gender_mismatch"
	OrgIDMismatch    = "orgid_mismatch"
	NumbersMismatch  = "numbers_mismatch"
)

// Feature is one named score. Missing features had no input on at least
// one side; their score is always zero and algorithms treat them as
// absent evidence rather than disagreement.
type Feature struct {
	Name    string  `json:"name"`
	Score   float64 `json:"score"`
	Missing bool    `json:"missing,omitempty"`
}

// Vector is an ordered feature collection with name lookup.
type Vector struct {
	features []Feature
	index    map[string]int
}

func newVector(capacity int) *Vector {
	return &Vector{
		features: make([]Feature, 0, capacity),
		index:    make(map[string]int, capacity),
	}
}

func (v *Vector) add(f Feature) {
	v.index[f.Name] = len(v.features)
	v.features = append(v.features, f)
}

// Get returns the named feature.
func (v *Vector) Get(name string) (Feature, bool) {
	i, ok := v.index[name]
	if !ok {
		return Feature{}, false
	}
	return v.features[i], true
}

// Score returns the named feature's score, zero when absent.
func (v *Vector) Score(name string) float64 {
	f, _ := v.Get(name)
	return f.Score
}

// All returns the features in evaluation order. The slice is shared;
// callers must not mutate it.
func (v *Vector) All() []Feature {
	return v.features
}

// Available counts the features that had inputs on both sides.
func (v *Vector) Available() int {
	n := 0
	for _, f := range v.features {
		if !f.Missing {
			n++
		}
	}
	return n
}
