package graph

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// DefaultMatchThreshold is the minimum cosine similarity for a template
// match to count.
const DefaultMatchThreshold = 0.5

// Match is one scored template candidate for a question.
type Match struct {
	Name       string
	Similarity float64
	Template   Template
}

// Matcher scores questions against template name+description documents
// using TF-IDF vectors. Chinese text is tokenized per character, ASCII
// runs as lowercased words.
type Matcher struct {
	registry  *Registry
	threshold float64

	vocab   map[string]int
	idf     []float64
	docs    map[string][]float64
	docKeys []string
}

// NewMatcher builds the TF-IDF index over the registry's templates.
func NewMatcher(registry *Registry, threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}
	m := &Matcher{
		registry:  registry,
		threshold: threshold,
		vocab:     make(map[string]int),
		docs:      make(map[string][]float64),
	}
	m.fit()
	return m
}

func (m *Matcher) fit() {
	templates := m.registry.All()
	tokenized := make([][]string, len(templates))
	df := make(map[string]int)
	for i, t := range templates {
		tokens := tokenize(t.Name + " " + t.Description)
		tokenized[i] = tokens
		seen := make(map[string]bool)
		for _, tok := range tokens {
			if !seen[tok] {
				seen[tok] = true
				df[tok]++
			}
		}
	}

	terms := make([]string, 0, len(df))
	for tok := range df {
		terms = append(terms, tok)
	}
	sort.Strings(terms)
	for i, tok := range terms {
		m.vocab[tok] = i
	}

	n := float64(len(templates))
	m.idf = make([]float64, len(terms))
	for tok, i := range m.vocab {
		// smoothed idf so unseen terms never divide by zero
		m.idf[i] = math.Log((1+n)/(1+float64(df[tok]))) + 1
	}

	for i, t := range templates {
		m.docs[t.Name] = m.vectorize(tokenized[i])
		m.docKeys = append(m.docKeys, t.Name)
	}
}

func (m *Matcher) vectorize(tokens []string) []float64 {
	vec := make([]float64, len(m.vocab))
	for _, tok := range tokens {
		if i, ok := m.vocab[tok]; ok {
			vec[i] += m.idf[i]
		}
	}
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// Match returns up to topK templates whose similarity to the question
// clears the threshold, best first.
func (m *Matcher) Match(question string, topK int) []Match {
	if strings.TrimSpace(question) == "" || topK <= 0 {
		return nil
	}
	qvec := m.vectorize(tokenize(question))

	scored := make([]Match, 0, len(m.docKeys))
	for _, name := range m.docKeys {
		score := dot(qvec, m.docs[name])
		if score >= m.threshold {
			t, _ := m.registry.Get(name)
			scored = append(scored, Match{Name: name, Similarity: score, Template: t})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Similarity > scored[j].Similarity })
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// tokenize splits text into lowercased ASCII words and individual CJK
// characters.
func tokenize(text string) []string {
	var tokens []string
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, strings.ToLower(word.String()))
			word.Reset()
		}
	}
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}
