package feature

import (
	"strings"

	"github.com/clearwatch-io/entmatch/internal/align"
	"github.com/clearwatch-io/entmatch/internal/catalog"
	"github.com/clearwatch-io/entmatch/internal/compare"
	"github.com/clearwatch-io/entmatch/internal/entity"
	"github.com/clearwatch-io/entmatch/internal/fingerprint"
	"github.com/clearwatch-io/entmatch/internal/norm"
)

// identifierProps feed the generic identifier match, beyond the
// registry-specific features with their own validators.
var identifierProps = []string{
	"registrationNumber", "taxNumber", "leiCode", "innCode",
	"bicCode", "ogrnCode", "imoNumber", "mmsi",
}

// SupportedValueTypes lists the property value types the builder has
// comparators for. Catalog validation at startup checks against it.
func SupportedValueTypes() map[string]struct{} {
	types := map[string]struct{}{}
	for _, typ := range []string{"name", "date", "country", "identifier", "text", "gender", "number"} {
		types[typ] = struct{}{}
	}
	return types
}

// Builder evaluates the feature roster for query-candidate pairs. It is
// safe for concurrent use once constructed.
type Builder struct {
	cat *catalog.Catalog
	n   norm.Normalizer
}

// NewBuilder returns a Builder using the given schema catalog and name
// normalizer.
func NewBuilder(cat *catalog.Catalog, n norm.Normalizer) *Builder {
	return &Builder{cat: cat, n: n}
}

// PreparedQuery caches the cleaned and tokenized views of a query so the
// work happens once per request instead of once per candidate.
type PreparedQuery struct {
	query *entity.Query

	cleanNames    []string
	literalNames  []string
	nameParts     [][]string
	namePartsFlat []string

	isPerson  bool
	isAddress bool
	isWallet  bool
}

// Prepare computes the per-query views used by Build.
func (b *Builder) Prepare(q *entity.Query) *PreparedQuery {
	names := entity.NamesAndAliases(q)
	return &PreparedQuery{
		query:         q,
		cleanNames:    compare.CleanNames(b.n, names),
		literalNames:  compare.CleanLiteral(names),
		nameParts:     compare.NameParts(b.n, names),
		namePartsFlat: compare.NamePartsFlat(b.n, names),
		isPerson:      b.cat.IsA(q.Schema, "Person"),
		isAddress:     b.cat.IsA(q.Schema, "Address"),
		isWallet:      b.cat.IsA(q.Schema, "CryptoWallet"),
	}
}

// candidate is the per-candidate counterpart of PreparedQuery.
type candidate struct {
	ent *entity.Entity

	cleanNames    []string
	literalNames  []string
	nameParts     [][]string
	namePartsFlat []string

	isPerson  bool
	isAddress bool
	isWallet  bool
}

func (b *Builder) prepareCandidate(e *entity.Entity) *candidate {
	names := entity.NamesAndAliases(e)
	return &candidate{
		ent:           e,
		cleanNames:    compare.CleanNames(b.n, names),
		literalNames:  compare.CleanLiteral(names),
		nameParts:     compare.NameParts(b.n, names),
		namePartsFlat: compare.NamePartsFlat(b.n, names),
		isPerson:      b.cat.IsA(e.Schema, "Person"),
		isAddress:     b.cat.IsA(e.Schema, "Address"),
		isWallet:      b.cat.IsA(e.Schema, "CryptoWallet"),
	}
}

// Build evaluates every feature for the pair. Features whose inputs are
// absent on either side, or whose schema gate does not apply, come back
// missing with a zero score.
func (b *Builder) Build(pq *PreparedQuery, e *entity.Entity) *Vector {
	c := b.prepareCandidate(e)
	v := newVector(26)

	hasNames := len(pq.cleanNames) > 0 && len(c.cleanNames) > 0

	v.add(scored(NameLiteralMatch,
		len(pq.literalNames) > 0 && len(c.literalNames) > 0,
		func() float64 { return compare.NameLiteralMatch(pq.literalNames, c.literalNames) }))

	v.add(scored(PersonNameJaroWinkler,
		(pq.isPerson || c.isPerson) && len(pq.nameParts) > 0 && len(c.nameParts) > 0,
		func() float64 { return compare.PersonNameJaroWinkler(pq.nameParts, c.nameParts) }))

	v.add(scored(PersonNamePhoneticMatch,
		(pq.isPerson || c.isPerson) && hasNames,
		func() float64 { return compare.PhoneticNameMatch(pq.cleanNames, c.cleanNames) }))

	v.add(scored(NameFingerprintLevenshtein,
		!pq.isPerson && !c.isPerson && hasNames,
		func() float64 { return compare.NameFingerprintLevenshtein(pq.cleanNames, c.cleanNames) }))

	v.add(scored(NameSoundexMatch,
		len(pq.namePartsFlat) > 0 && len(c.namePartsFlat) > 0,
		func() float64 { return compare.SoundexNameParts(pq.namePartsFlat, c.namePartsFlat) }))

	v.add(scored(JaroNameParts,
		len(pq.namePartsFlat) > 0 && len(c.namePartsFlat) > 0,
		func() float64 { return compare.JaroNameParts(pq.namePartsFlat, c.namePartsFlat) }))

	v.add(scored(AlignedNameMatch, hasNames, func() float64 {
		return align.Align(pq.cleanNames, c.cleanNames, compare.LevenshteinSimilarity, 0).Aggregate
	}))

	qFull := pq.query.Props("full")
	rFull := e.Props("full")
	v.add(scored(AddressEntityMatch,
		pq.isAddress && c.isAddress && len(qFull) > 0 && len(rFull) > 0,
		func() float64 { return b.addressMatch(qFull, rFull) }))

	qKeys := pq.query.Props("publicKey")
	rKeys := e.Props("publicKey")
	v.add(scored(CryptoWalletMatch,
		pq.isWallet && c.isWallet && len(qKeys) > 0 && len(rKeys) > 0,
		func() float64 { return compare.WalletMatch(qKeys, rKeys) }))

	b.addRegistryFeature(v, pq, e, ISINSecurityMatch, []string{"isin"}, compare.ValidISIN)
	b.addRegistryFeature(v, pq, e, LEICodeMatch, []string{"leiCode"}, compare.ValidLEI)
	b.addRegistryFeature(v, pq, e, OGRNCodeMatch, []string{"ogrnCode"}, compare.ValidOGRN)
	b.addRegistryFeature(v, pq, e, VesselIMOMMSIMatch, []string{"imoNumber", "mmsi"}, compare.ValidIMOMMSI)
	b.addRegistryFeature(v, pq, e, INNCodeMatch, []string{"innCode"}, compare.ValidINN)
	b.addRegistryFeature(v, pq, e, BICCodeMatch, []string{"bicCode"}, compare.ValidBIC)

	qIDs := pq.query.Props(identifierProps...)
	rIDs := e.Props(identifierProps...)
	v.add(scored(IdentifierMatch,
		len(qIDs) > 0 && len(rIDs) > 0,
		func() float64 { return compare.CodesMatch(qIDs, rIDs) }))

	qWeak := pq.query.Props("weakAlias", "name")
	rWeak := e.Props("weakAlias", "name")
	v.add(scored(WeakAliasMatch,
		len(qWeak) > 0 && len(rWeak) > 0,
		func() float64 {
			return compare.NameLiteralMatch(compare.CleanNames(b.n, qWeak), compare.CleanNames(b.n, rWeak))
		}))

	qCountry := b.countries(pq.query)
	rCountry := b.countries(e)
	v.add(scored(CountryMismatch,
		len(qCountry) > 0 && len(rCountry) > 0,
		func() float64 { return compare.CountryMismatch(qCountry, rCountry) }))

	qLast := compare.CleanNames(b.n, pq.query.Props("lastName"))
	rLast := compare.CleanNames(b.n, e.Props("lastName"))
	v.add(scored(LastNameMismatch,
		len(qLast) > 0 && len(rLast) > 0,
		func() float64 {
			if compare.Disjoint(qLast, rLast) {
				return 1
			}
			return 0
		}))

	qDOB := pq.query.Props("birthDate")
	rDOB := e.Props("birthDate")
	dobAvailable := len(qDOB) > 0 && len(rDOB) > 0
	v.add(scored(DOBMatch, dobAvailable,
		func() float64 {
			s, _ := compare.BestDateSimilarity(qDOB, rDOB)
			return s
		}))
	v.add(scored(DOBYearDisjoint, dobAvailable,
		func() float64 { return compare.DOBYearDisjoint(qDOB, rDOB) }))
	v.add(scored(DOBDayDisjoint, dobAvailable,
		func() float64 { return compare.DOBDayDisjoint(qDOB, rDOB) }))

	qGender := pq.query.Props("gender")
	rGender := e.Props("gender")
	v.add(scored(GenderMismatch,
		len(qGender) > 0 && len(rGender) > 0,
		func() float64 { return compare.GenderMismatch(qGender, rGender) }))

	v.add(scored(OrgIDMismatch,
		len(qIDs) > 0 && len(rIDs) > 0,
		func() float64 { return compare.OrgIDMismatch(qIDs, rIDs) }))

	// Addresses carry their digits in the full property, not the name.
	qNums := entity.NamesAndAliases(pq.query)
	rNums := entity.NamesAndAliases(e)
	if pq.isAddress {
		qNums, rNums = qFull, rFull
	}
	v.add(scored(NumbersMismatch,
		len(qNums) > 0 && len(rNums) > 0,
		func() float64 { return compare.NumbersMismatch(qNums, rNums) }))

	qText := b.texts(pq.query)
	rText := b.texts(e)
	v.add(scored(FreeTextMatch,
		len(qText) > 0 && len(rText) > 0,
		func() float64 {
			return compare.BestTextSimilarity(compare.CleanNames(b.n, qText), compare.CleanNames(b.n, rText))
		}))

	return v
}

func scored(name string, available bool, fn func() float64) Feature {
	if !available {
		return Feature{Name: name, Missing: true}
	}
	return Feature{Name: name, Score: fn()}
}

func (b *Builder) addRegistryFeature(v *Vector, pq *PreparedQuery, e *entity.Entity, name string, props []string, valid func(string) bool) {
	q := pq.query.Props(props...)
	r := e.Props(props...)
	v.add(scored(name, len(q) > 0 && len(r) > 0, func() float64 {
		return compare.ValidCodesMatch(q, r, valid)
	}))
}

// texts gathers the text-typed properties the schema declares, such as
// notes and free-form addresses.
func (b *Builder) texts(r entity.Record) []string {
	return r.Props(b.cat.PropsOfType(r.SchemaName(), "text")...)
}

// countries gathers every country-typed property the schema declares,
// citizenship and jurisdiction included, not just the country field.
func (b *Builder) countries(r entity.Record) []string {
	props := b.cat.PropsOfType(r.SchemaName(), "country")
	if len(props) == 0 {
		props = []string{"country"}
	}
	return r.Props(props...)
}

func (b *Builder) addressMatch(qFull, rFull []string) float64 {
	best := 0.0
	for _, q := range compare.CleanNames(b.n, qFull) {
		qTokens := tokenSet(fingerprint.Address(q))
		for _, r := range compare.CleanNames(b.n, rFull) {
			if s := compare.TokenSetSimilarity(qTokens, tokenSet(fingerprint.Address(r))); s > best {
				best = s
			}
		}
	}
	return best
}

func tokenSet(s string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, t := range strings.Fields(s) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
