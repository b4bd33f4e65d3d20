package services

import (
	"testing"

	"github.com/pulsekit/pulse-go/internal/domain/entities/content"
	"github.com/stretchr/testify/assert"
)

func TestJaccardSimilarity(t *testing.T) {
	assert.InDelta(t, 0.5, JaccardSimilarity([]string{"a", "b", "c"}, []string{"b", "c", "d"}), 1e-9)
	assert.InDelta(t, 1.0, JaccardSimilarity([]string{"a", "b"}, []string{"b", "a"}), 1e-9)
	assert.InDelta(t, 0.0, JaccardSimilarity([]string{"a"}, []string{"b"}), 1e-9)
	assert.InDelta(t, 0.0, JaccardSimilarity(nil, nil), 1e-9)
	assert.InDelta(t, 0.0, JaccardSimilarity([]string{"a"}, nil), 1e-9)
}

func TestJaccardSimilarity_Duplicates(t *testing.T) {
	// Duplicates collapse; these are sets, not bags.
	assert.InDelta(t, 0.5,
		JaccardSimilarity([]string{"a", "a", "b", "b"}, []string{"b", "b", "c"}), 1e-9)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float64{0, 0}, []float64{1, 1}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity(nil, []float64{1}), 1e-9)
}

func TestCosineSimilarity_TruncatesToShorterVector(t *testing.T) {
	// The trailing component of the longer vector is ignored.
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{1, 1}, []float64{1, 1, 99}), 1e-9)
}

func TestContentSimilarity_AllFactors(t *testing.T) {
	a := &content.Item{Category: "photo", Tags: []string{"nature", "macro"}, Rating: 4.5}
	b := &content.Item{Category: "photo", Tags: []string{"nature", "macro"}, Rating: 4.5}

	assert.InDelta(t, 1.0, ContentSimilarity(a, b), 1e-9)
}

func TestContentSimilarity_PartialFactors(t *testing.T) {
	// Only the category factor is defined on both sides.
	a := &content.Item{Category: "photo"}
	b := &content.Item{Category: "video"}
	assert.InDelta(t, 0.0, ContentSimilarity(a, b), 1e-9)

	b.Category = "photo"
	assert.InDelta(t, 1.0, ContentSimilarity(a, b), 1e-9)
}

func TestContentSimilarity_RatingProximity(t *testing.T) {
	a := &content.Item{Rating: 5}
	b := &content.Item{Rating: 2.5}

	// 1 - |5-2.5|/5 = 0.5, and it is the only factor.
	assert.InDelta(t, 0.5, ContentSimilarity(a, b), 1e-9)
}

func TestContentSimilarity_NoDefinedFactors(t *testing.T) {
	assert.InDelta(t, 0.0, ContentSimilarity(&content.Item{}, &content.Item{}), 1e-9)
}

func TestPreferenceVector(t *testing.T) {
	vec := PreferenceVector(&content.PreferenceSet{
		ContentTypes:     []string{"photo", "video"},
		Genres:           []string{"nature"},
		InteractionStyle: "interactive",
	})

	assert.Equal(t, []float64{0.2, 0.1, 1.0}, vec)
}

func TestPreferenceVector_NilDefaults(t *testing.T) {
	assert.Equal(t, []float64{0, 0, 0.5}, PreferenceVector(nil))
}

func TestContentVector(t *testing.T) {
	vec := ContentVector(&content.Item{
		Rating:     4,
		Popularity: 500,
		Tags:       []string{"a", "b", "c", "d"},
	})

	assert.InDelta(t, 0.8, vec[0], 1e-9)
	assert.InDelta(t, 0.5, vec[1], 1e-9)
	assert.InDelta(t, 0.2, vec[2], 1e-9)
}

func TestContentVector_MissingAttributesSitAtMidpoint(t *testing.T) {
	assert.Equal(t, []float64{0.5, 0.5, 0.5}, ContentVector(&content.Item{}))
}

func TestContentVector_PopularityCapsAtOne(t *testing.T) {
	vec := ContentVector(&content.Item{Popularity: 100000})
	assert.InDelta(t, 1.0, vec[1], 1e-9)
}
