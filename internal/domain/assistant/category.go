package assistant

import (
	"strings"
	"unicode/utf8"

	"github.com/cloudflare/ahocorasick"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Limits of the fuzzy fallback: one edit, on words long enough
// that a single edit rarely turns one real word into another.
const (
	fuzzyMinToken   = 5
	fuzzyMinKeyword = 4
	fuzzyMaxEdits   = 1
)

// Category names
const (
	CategoryFood          = "Food"
	CategoryTransport     = "Transport"
	CategoryHousing       = "Housing"
	CategoryUtilities     = "Utilities"
	CategoryHealth        = "Health"
	CategoryEntertainment = "Entertainment"
	CategoryShopping      = "Shopping"
	CategoryEducation     = "Education"
	CategorySalary        = "Salary"
	CategoryMisc          = "Misc"
)

// CategoryKeywords pairs a category with the lower-case substrings that select it.
type CategoryKeywords struct {
	Category string
	Keywords []string
}

// DefaultCategories is the ordered keyword table. Earlier entries win when
// keywords overlap, so Health sits before Entertainment ("medicine" holds "cine").
var DefaultCategories = []CategoryKeywords{
	{CategoryFood, []string{
		"food", "comida", "almuerzo", "desayuno", "cena", "restaurante", "restaurant",
		"mercado", "supermercado", "groceries", "grocery", "lunch", "dinner", "breakfast",
		"sushi", "pizza", "hamburguesa", "burger", "café", "cafe", "coffee", "snack", "rappi",
	}},
	{CategoryTransport, []string{
		"transport", "transporte", "uber", "taxi", "didi", "cabify", "bus", "metro",
		"gasolina", "gasoline", "peaje", "parqueadero", "parking", "vuelo", "flight",
	}},
	{CategoryHousing, []string{
		"housing", "vivienda", "arriendo", "alquiler", "hipoteca", "mortgage", "rent",
		"administración", "administracion",
	}},
	{CategoryUtilities, []string{
		"utilities", "servicios", "luz", "agua", "internet", "factura", "electricity",
		"water", "bill", "celular", "teléfono", "telefono", "phone",
	}},
	{CategoryHealth, []string{
		"health", "salud", "medicina", "medicine", "médico", "medico", "doctor",
		"farmacia", "pharmacy", "droguería", "drogueria", "hospital", "gimnasio", "gym",
	}},
	{CategoryEntertainment, []string{
		"entertainment", "entretenimiento", "cine", "movie", "netflix", "spotify",
		"concierto", "concert", "fiesta", "party", "juego", "game", "cerveza", "beer",
	}},
	{CategoryShopping, []string{
		"shopping", "compras", "ropa", "clothes", "zapatos", "shoes", "amazon", "regalo",
		"gift", "tienda", "store",
	}},
	{CategoryEducation, []string{
		"education", "educación", "educacion", "curso", "course", "libro", "book",
		"universidad", "university", "colegio", "school", "matrícula", "matricula", "tuition",
	}},
	{CategorySalary, []string{
		"salary", "sueldo", "salario", "nómina", "nomina", "paycheck", "quincena",
	}},
}

// CategoryClassifier finds the category of an utterance in one pass over
// the text using an Aho-Corasick automaton built from an ordered table.
// With WithFuzzyFallback, single-word keywords are also compared against
// the utterance's words by Levenshtein distance when nothing matches exactly.
type CategoryClassifier struct {
	matcher    *ahocorasick.Matcher
	owner      []int // keyword index -> category index
	categories []string

	typos     bool
	words     []string
	wordOwner []int
}

// ClassifierOption configures a CategoryClassifier.
type ClassifierOption func(*CategoryClassifier)

// WithFuzzyFallback enables the one-edit typo fallback. Off by default.
func WithFuzzyFallback() ClassifierOption {
	return func(c *CategoryClassifier) { c.typos = true }
}

// NewCategoryClassifier builds a classifier. A keyword listed under more
// than one category belongs to the first one.
func NewCategoryClassifier(table []CategoryKeywords, opts ...ClassifierOption) *CategoryClassifier {
	c := &CategoryClassifier{categories: make([]string, 0, len(table))}
	for _, opt := range opts {
		opt(c)
	}

	seen := make(map[string]struct{})
	var patterns [][]byte
	for i, entry := range table {
		c.categories = append(c.categories, entry.Category)
		for _, kw := range entry.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			patterns = append(patterns, []byte(kw))
			c.owner = append(c.owner, i)
			if c.typos && !strings.Contains(kw, " ") && utf8.RuneCountInString(kw) >= fuzzyMinKeyword {
				c.words = append(c.words, kw)
				c.wordOwner = append(c.wordOwner, i)
			}
		}
	}

	if len(patterns) > 0 {
		c.matcher = ahocorasick.NewMatcher(patterns)
	}
	return c
}

// Classify returns the earliest-declared category with a keyword contained
// in the utterance, or CategoryMisc.
func (c *CategoryClassifier) Classify(utterance string) string {
	if c.matcher == nil {
		return CategoryMisc
	}

	lower := strings.ToLower(utterance)
	best := -1
	for _, idx := range c.matcher.MatchThreadSafe([]byte(lower)) {
		if cat := c.owner[idx]; best == -1 || cat < best {
			best = cat
		}
	}
	if best == -1 && c.typos {
		best = c.fuzzyMatch(lower)
	}
	if best == -1 {
		return CategoryMisc
	}
	return c.categories[best]
}

// fuzzyMatch returns the earliest category owning a keyword within
// fuzzyMaxEdits of a word of the utterance, or -1.
func (c *CategoryClassifier) fuzzyMatch(lower string) int {
	best := -1
	for _, tok := range tokenize(lower) {
		if utf8.RuneCountInString(tok) < fuzzyMinToken {
			continue
		}
		for i, kw := range c.words {
			if best != -1 && c.wordOwner[i] >= best {
				continue
			}
			if fuzzy.LevenshteinDistance(tok, kw) <= fuzzyMaxEdits {
				best = c.wordOwner[i]
			}
		}
	}
	return best
}

// Categories lists the known category names in table order.
func (c *CategoryClassifier) Categories() []string {
	return append([]string(nil), c.categories...)
}
