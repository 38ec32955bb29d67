// Package fingerprint reduces names and addresses to canonical forms by
// replacing dictionary phrases: organization type designations collapse to
// a short display form, honorifics vanish, street designators and ordinals
// normalize. The dictionaries ship embedded so results never depend on
// deployment-time files.
package fingerprint

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed dicts/*.yml
var dicts embed.FS

// Replacer rewrites whole-word phrases in a whitespace-tokenized string.
// Longer phrases win over shorter ones at the same position.
type Replacer struct {
	phrases  map[string]string
	maxWords int
}

// NewReplacer builds a Replacer from phrase-replacement pairs. Phrases are
// matched case-insensitively against lowercase input.
func NewReplacer(pairs map[string]string) *Replacer {
	r := &Replacer{phrases: make(map[string]string, len(pairs))}
	for phrase, repl := range pairs {
		phrase = strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
		if phrase == "" {
			continue
		}
		r.phrases[phrase] = repl
		if n := len(strings.Fields(phrase)); n > r.maxWords {
			r.maxWords = n
		}
	}
	return r
}

// Apply replaces every dictionary phrase in s, scanning left to right and
// preferring the longest phrase starting at each token.
func (r *Replacer) Apply(s string) string {
	tokens := strings.Fields(s)
	if len(tokens) == 0 || r.maxWords == 0 {
		return strings.TrimSpace(s)
	}

	var out []string
	for i := 0; i < len(tokens); {
		matched := false
		max := r.maxWords
		if rest := len(tokens) - i; rest < max {
			max = rest
		}
		for n := max; n >= 1; n-- {
			phrase := strings.Join(tokens[i:i+n], " ")
			repl, ok := r.phrases[phrase]
			if !ok {
				continue
			}
			if repl != "" {
				out = append(out, repl)
			}
			i += n
			matched = true
			break
		}
		if !matched {
			out = append(out, tokens[i])
			i++
		}
	}
	return strings.Join(out, " ")
}

var (
	orgTypes     *Replacer
	stopwords    *Replacer
	addressForms *Replacer
	ordinals     *Replacer
)

type aliasDictionary struct {
	Types    []aliasEntry `yaml:"types"`
	Forms    []aliasEntry `yaml:"forms"`
	Ordinals []aliasEntry `yaml:"ordinals"`
}

type aliasEntry struct {
	Display string   `yaml:"display"`
	Aliases []string `yaml:"aliases"`
}

type stopwordDictionary struct {
	PersonNamePrefixes []string `yaml:"person_name_prefixes"`
}

func init() {
	orgTypes = mustAliasReplacer("dicts/org_types.yml", func(d *aliasDictionary) []aliasEntry { return d.Types })
	addressForms = mustAliasReplacer("dicts/addresses.yml", func(d *aliasDictionary) []aliasEntry { return d.Forms })
	ordinals = mustAliasReplacer("dicts/ordinals.yml", func(d *aliasDictionary) []aliasEntry { return d.Ordinals })

	data, err := dicts.ReadFile("dicts/stopwords.yml")
	if err != nil {
		panic(fmt.Sprintf("fingerprint: read stopwords dictionary: %v", err))
	}
	var sw stopwordDictionary
	if err := yaml.Unmarshal(data, &sw); err != nil {
		panic(fmt.Sprintf("fingerprint: unmarshal stopwords dictionary: %v", err))
	}
	pairs := make(map[string]string, len(sw.PersonNamePrefixes))
	for _, prefix := range sw.PersonNamePrefixes {
		pairs[prefix] = ""
	}
	stopwords = NewReplacer(pairs)
}

func mustAliasReplacer(path string, entries func(*aliasDictionary) []aliasEntry) *Replacer {
	data, err := dicts.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("fingerprint: read dictionary %s: %v", path, err))
	}
	var dict aliasDictionary
	if err := yaml.Unmarshal(data, &dict); err != nil {
		panic(fmt.Sprintf("fingerprint: unmarshal dictionary %s: %v", path, err))
	}

	pairs := map[string]string{}
	for _, entry := range entries(&dict) {
		for _, alias := range entry.Aliases {
			pairs[alias] = entry.Display
		}
	}
	return NewReplacer(pairs)
}

// Name fingerprints an organization name: honorific removal followed by
// organization type normalization. Input should already be cleaned and
// lowercased.
func Name(s string) string {
	return orgTypes.Apply(stopwords.Apply(s))
}

// Address fingerprints an address line: street designators to short form,
// ordinals to digits.
func Address(s string) string {
	return ordinals.Apply(addressForms.Apply(s))
}
