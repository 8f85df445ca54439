package vector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyIsIndependent(t *testing.T) {
	v := Vector{"cell": 3, "acid": 1}
	c := v.Copy()
	c["cell"] = 10
	c["gene"] = 1

	assert.Equal(t, 3.0, v["cell"])
	_, ok := v["gene"]
	assert.False(t, ok)
}

func TestAddScaled(t *testing.T) {
	v := Vector{"cell": 1}
	v.AddScaled(Vector{"cell": 2, "acid": 4}, -0.5)

	assert.Equal(t, Vector{"cell": 0, "acid": -2}, v)

	v.Add(Vector{"acid": 2})
	assert.Equal(t, 0.0, v["acid"])
}

func TestMaxWeight(t *testing.T) {
	assert.Equal(t, 0.0, New().MaxWeight())
	assert.Equal(t, 5.0, Vector{"a": 1, "b": 5, "c": 2}.MaxWeight())
	assert.Equal(t, -1.0, Vector{"a": -1, "b": -3}.MaxWeight())
}

func TestLength(t *testing.T) {
	assert.Equal(t, 0.0, New().Length())
	assert.InDelta(t, 5.0, Vector{"a": 3, "b": 4}.Length(), 1e-12)
}

func TestTermsSorted(t *testing.T) {
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, Vector{"gamma": 1, "alpha": 1, "beta": 1}.Terms())
}

func TestCosineTo(t *testing.T) {
	t.Run("identical", func(t *testing.T) {
		v := Vector{"auth": 1, "token": 2}
		assert.InDelta(t, 1.0, v.CosineTo(v), 1e-12)
	})

	t.Run("orthogonal", func(t *testing.T) {
		a := Vector{"auth": 1, "token": 1}
		b := Vector{"database": 1, "schema": 1}
		assert.Equal(t, 0.0, a.CosineTo(b))
	})

	t.Run("partial overlap", func(t *testing.T) {
		a := Vector{"cell": 1, "acid": 1}
		b := Vector{"acid": 1}
		assert.InDelta(t, 1/math.Sqrt2, a.CosineTo(b), 1e-12)
	})

	t.Run("zero vectors", func(t *testing.T) {
		a := Vector{"cell": 0}
		b := Vector{"cell": 2}
		assert.Equal(t, 0.0, a.CosineTo(b))
		assert.Equal(t, 0.0, b.CosineTo(a))
		assert.Equal(t, 0.0, New().CosineTo(New()))
	})
}

func TestCosineSymmetric(t *testing.T) {
	pairs := [][2]Vector{
		{{"a": 0.1, "b": 0.7, "c": 0.3}, {"b": 0.2, "c": 0.9, "d": 1.1}},
		{{"x": 1e-9, "y": 3}, {"y": 1e9}},
		{{"p": 0.3, "q": 0.6}, {"p": 0.6, "q": 0.3}},
		{{}, {"a": 1}},
	}
	for _, p := range pairs {
		require.Equal(t, p[0].CosineTo(p[1]), p[1].CosineTo(p[0]))
	}
}

func TestCosineDeterministic(t *testing.T) {
	a := Vector{}
	b := Vector{}
	for i := 0; i < 200; i++ {
		term := string(rune('a'+i%26)) + string(rune('a'+i/26))
		a[term] = 1 / float64(i+3)
		b[term] = float64(i%7) / 3
	}
	first := a.CosineTo(b)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, a.CosineTo(b))
	}
}
