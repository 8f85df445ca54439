package classifier

import (
	"math/rand/v2"
	"testing"

	"github.com/deanrtaylor1/goclassify/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRocchioPrototypesAreCategorySums(t *testing.T) {
	r, err := NewRocchio(seededConfig(scienceCategories), false)
	require.NoError(t, err)
	require.NoError(t, r.Train(scienceExamples()))

	l := idf()
	assertVector(t, vector.Vector{"cell": l}, r.Prototype(0))
	assertVector(t, vector.Vector{"cell": l / 2, "acid": 2 * l}, r.Prototype(1))
	assert.Nil(t, r.Prototype(2))
}

func TestRocchioModifiedPrototypes(t *testing.T) {
	r, err := NewRocchio(seededConfig(scienceCategories), true)
	require.NoError(t, err)
	require.NoError(t, r.Train(scienceExamples()))

	l := idf()
	assertVector(t, vector.Vector{"cell": l / 2, "acid": -2 * l}, r.Prototype(0))
	assertVector(t, vector.Vector{"cell": -l / 2, "acid": 2 * l}, r.Prototype(1))
}

func TestRocchioPredict(t *testing.T) {
	r, err := NewRocchio(seededConfig(scienceCategories), false)
	require.NoError(t, err)
	require.NoError(t, r.Train(scienceExamples()))

	query := &Example{Vector: vector.Vector{"acid": 5}, Category: 1}
	weighted := vector.Vector{"acid": idf()}
	assert.Greater(t, weighted.CosineTo(r.Prototype(1)), weighted.CosineTo(r.Prototype(0)))

	category, err := r.Predict(query)
	require.NoError(t, err)
	assert.Equal(t, 1, category)

	ok, err := r.Test(query)
	require.NoError(t, err)
	assert.True(t, ok)

	category, err = r.Predict(&Example{Vector: vector.Vector{"cell": 4}})
	require.NoError(t, err)
	assert.Equal(t, 0, category)
}

func TestRocchioTieGoesToLowestIndex(t *testing.T) {
	categories := []string{"bio", "chem", "phys"}
	examples := []*Example{
		{Vector: vector.Vector{"atom": 1}, Category: 0},
		{Vector: vector.Vector{"atom": 1}, Category: 1},
		{Vector: vector.Vector{"quark": 1}, Category: 2},
	}

	for i := 0; i < 20; i++ {
		r, err := NewRocchio(Config{Categories: categories}, false)
		require.NoError(t, err)
		require.NoError(t, r.Train(examples))

		category, err := r.Predict(&Example{Vector: vector.Vector{"atom": 2}})
		require.NoError(t, err)
		assert.Equal(t, 0, category)
	}
}

func TestRocchioRandomFallbackCoversAllCategories(t *testing.T) {
	categories := []string{"a", "b", "c", "d", "e"}
	r, err := NewRocchio(Config{Categories: categories, Rand: rand.New(rand.NewPCG(7, 7))}, false)
	require.NoError(t, err)
	require.NoError(t, r.Train(nil))

	seen := make(map[int]bool)
	for i := 0; i < 500; i++ {
		category, err := r.Predict(&Example{Vector: vector.Vector{"anything": 1}})
		require.NoError(t, err)
		require.GreaterOrEqual(t, category, 0)
		require.Less(t, category, len(categories))
		seen[category] = true
	}
	assert.Len(t, seen, len(categories))
}

func TestRocchioZeroQueryFallsBack(t *testing.T) {
	r, err := NewRocchio(seededConfig(scienceCategories), false)
	require.NoError(t, err)
	require.NoError(t, r.Train(scienceExamples()))

	category, err := r.Predict(&Example{Vector: vector.Vector{"unseen": 2}})
	require.NoError(t, err)
	assert.Contains(t, []int{0, 1}, category)
}

func TestRocchioModifiedSkipsEmptyPrototype(t *testing.T) {
	// the phys document is the sum of the other two, so its negative updates
	// cancel its own weights
	r, err := NewRocchio(seededConfig([]string{"phys", "bio", "chem"}), true)
	require.NoError(t, err)
	require.NoError(t, r.Train([]*Example{
		{Name: "x", Vector: vector.Vector{"x": 1}, Category: 1},
		{Name: "y", Vector: vector.Vector{"y": 1}, Category: 2},
		{Name: "xy", Vector: vector.Vector{"x": 1, "y": 1}, Category: 0},
	}))

	l := idf()
	assert.Equal(t, 0.0, r.Prototype(0).Length())
	assertVector(t, vector.Vector{"x": 0, "y": -2 * l}, r.Prototype(1))
	assertVector(t, vector.Vector{"x": -2 * l, "y": 0}, r.Prototype(2))

	weighted := vector.Vector{"x": l, "y": l / 2}
	require.Less(t, weighted.CosineTo(r.Prototype(1)), 0.0)
	require.Less(t, weighted.CosineTo(r.Prototype(2)), weighted.CosineTo(r.Prototype(1)))

	for i := 0; i < 10; i++ {
		category, err := r.Predict(&Example{Vector: vector.Vector{"x": 2, "y": 1}})
		require.NoError(t, err)
		assert.Equal(t, 1, category, "a negative similarity beats an undefined one")
	}
}
