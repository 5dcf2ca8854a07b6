package assistant

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryClassifier_Classify(t *testing.T) {
	c := NewCategoryClassifier(DefaultCategories)

	tests := []struct {
		utterance string
		want      string
	}{
		{"pagué el uber", CategoryTransport},
		{"gasté 20k en UBER ayer", CategoryTransport},
		{"almuerzo con el equipo", CategoryFood},
		{"spent 30 on groceries", CategoryFood},
		{"pagué el arriendo", CategoryHousing},
		{"factura de internet", CategoryUtilities},
		{"medicine for the flu", CategoryHealth},
		{"entradas de cine", CategoryEntertainment},
		{"zapatos nuevos", CategoryShopping},
		{"matrícula de la universidad", CategoryEducation},
		{"me pagaron el sueldo", CategorySalary},
		{"la quincena incluye \"cena\"", CategoryFood},
		{"sushi y luego taxi", CategoryFood},
		{"xyz qwerty", CategoryMisc},
		{"", CategoryMisc},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.utterance))
		})
	}
}

func TestCategoryClassifier_Typos(t *testing.T) {
	c := NewCategoryClassifier(DefaultCategories, WithFuzzyFallback())

	tests := []struct {
		utterance string
		want      string
	}{
		{"almuerso con el equipo", CategoryFood},
		{"20k en cabiffy", CategoryTransport},
		{"tanqueé gasolna", CategoryTransport},
		{"pagué el arrendo", CategoryHousing},
		{"un bus", CategoryTransport},
		{"ubr", CategoryMisc},
		{"xyz qwerty", CategoryMisc},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.utterance))
		})
	}
}

func TestCategoryClassifier_NoFuzzyByDefault(t *testing.T) {
	c := NewCategoryClassifier(DefaultCategories)

	for _, utterance := range []string{
		"car parts 200",
		"bought car parts for 200",
		"día libre 50k",
		"light 50k",
		"paid it later 30",
		"a bunch of stuff 40k",
		"almuerso con el equipo",
	} {
		t.Run(utterance, func(t *testing.T) {
			assert.Equal(t, CategoryMisc, c.Classify(utterance))
		})
	}
}

func TestCategoryClassifier_RoundTrip(t *testing.T) {
	c := NewCategoryClassifier(DefaultCategories)
	for _, entry := range DefaultCategories {
		assert.Equal(t, entry.Category, c.Classify(entry.Category), "category name %q", entry.Category)
	}
}

func TestCategoryClassifier_FirstOwnerWins(t *testing.T) {
	c := NewCategoryClassifier([]CategoryKeywords{
		{"Pets", []string{"dog", "vet"}},
		{"Health", []string{"vet", "doctor"}},
	})

	assert.Equal(t, "Pets", c.Classify("took the cat to the vet"))
	assert.Equal(t, "Health", c.Classify("doctor visit"))
	assert.Equal(t, []string{"Pets", "Health"}, c.Categories())
}

func TestCategoryClassifier_Empty(t *testing.T) {
	c := NewCategoryClassifier(nil)
	assert.Equal(t, CategoryMisc, c.Classify("uber"))
	assert.Empty(t, c.Categories())
}

func TestCategoryClassifier_Concurrent(t *testing.T) {
	c := NewCategoryClassifier(DefaultCategories)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, CategoryTransport, c.Classify("pagué el uber"))
			}
		}()
	}
	wg.Wait()
}
