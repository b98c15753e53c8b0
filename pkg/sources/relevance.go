package sources

import "strings"

// DefaultVocabulary is the curated spaceflight term list used for
// relevance gating. Case-insensitive containment is a cheap heuristic;
// false positives and negatives are accepted.
var DefaultVocabulary = []string{
	"spacex", "falcon 9", "falcon heavy", "starship", "super heavy",
	"nasa", "esa", "jaxa", "isro", "roscosmos",
	"rocket", "launch", "liftoff", "booster", "payload",
	"orbit", "orbital", "reentry", "splashdown", "landing burn",
	"satellite", "starlink", "constellation deployment",
	"iss", "space station", "crew dragon", "soyuz", "artemis",
	"moon mission", "lunar lander", "mars rover", "deep space",
	"blue origin", "new glenn", "new shepard", "vulcan centaur",
	"rocket lab", "electron rocket", "neutron rocket",
	"ariane", "vega rocket", "long march", "chandrayaan",
	"spaceport", "launch pad", "static fire", "hotfire",
	"astronaut", "cosmonaut", "spacewalk", "eva",
	"telescope", "james webb", "hubble", "space probe",
	"reusable rocket", "propellant", "methalox", "hypergolic",
	"space debris", "orbital mechanics", "trajectory",
}

// Single tokens this short hide inside everyday words ("iss" in
// "mission", "eva" in "evaluate"), so they match whole words only;
// longer terms and phrases keep plain substring containment.
const shortTokenLen = 4

// Filter performs the keyword relevance test. It is a hard
// accept/reject gate before persistence, intentionally not a ranking model.
type Filter struct {
	phrases        []string
	words          []string
	excludePhrases []string
	excludeWords   []string
}

// NewFilter creates a filter with the default vocabulary plus extras.
func NewFilter(extraKeywords, excludeKeywords []string) *Filter {
	f := &Filter{}
	for _, kw := range DefaultVocabulary {
		f.addKeyword(strings.ToLower(kw))
	}
	for _, kw := range extraKeywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			f.addKeyword(kw)
		}
	}
	for _, kw := range excludeKeywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			if isShortToken(kw) {
				f.excludeWords = append(f.excludeWords, kw)
			} else {
				f.excludePhrases = append(f.excludePhrases, kw)
			}
		}
	}
	return f
}

func (f *Filter) addKeyword(kw string) {
	if isShortToken(kw) {
		f.words = append(f.words, kw)
	} else {
		f.phrases = append(f.phrases, kw)
	}
}

func isShortToken(kw string) bool {
	return len(kw) <= shortTokenLen && !strings.Contains(kw, " ")
}

// Match reports whether text contains any vocabulary term and no
// excluded term.
func (f *Filter) Match(text string) bool {
	if f == nil {
		return false
	}

	lower := strings.ToLower(text)
	for _, ex := range f.excludePhrases {
		if strings.Contains(lower, ex) {
			return false
		}
	}
	for _, ex := range f.excludeWords {
		if containsWord(lower, ex) {
			return false
		}
	}
	return f.matchVocabulary(lower)
}

// MatchTitle reports whether the title alone carries a vocabulary term.
// Used by the ranker for the keyword-in-title bonus.
func (f *Filter) MatchTitle(title string) bool {
	if f == nil {
		return false
	}
	return f.matchVocabulary(strings.ToLower(title))
}

func (f *Filter) matchVocabulary(lower string) bool {
	for _, kw := range f.phrases {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, kw := range f.words {
		if containsWord(lower, kw) {
			return true
		}
	}
	return false
}

// containsWord reports whether word occurs in text bounded by
// non-alphanumeric runes (or the text edges) on both sides.
func containsWord(text, word string) bool {
	for i := 0; ; {
		j := strings.Index(text[i:], word)
		if j < 0 {
			return false
		}
		j += i
		end := j + len(word)
		before := j == 0 || !isAlnum(text[j-1])
		after := end == len(text) || !isAlnum(text[end])
		if before && after {
			return true
		}
		i = j + 1
	}
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
