package progress

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verte-zerg/wireloop/internal/tolerance"
)

var policy = tolerance.Policy{MaxForwardJump: 25, MaxBacktrack: 15}

func TestTryAdvance(t *testing.T) {
	tr := New(200)

	assert.True(t, tr.TryAdvance(10, policy))
	assert.Equal(t, 10, tr.Index())

	assert.False(t, tr.TryAdvance(10, policy), "same index")
	assert.False(t, tr.TryAdvance(4, policy), "backwards")
	assert.Equal(t, 10, tr.Index())

	assert.True(t, tr.TryAdvance(35, policy), "jump at limit")
	assert.False(t, tr.TryAdvance(61, policy), "jump over limit")
	assert.Equal(t, 35, tr.Index())
}

func TestCompleteAndFraction(t *testing.T) {
	tr := New(41)
	assert.False(t, tr.Complete())
	assert.InDelta(t, 0, tr.Fraction(), 1e-9)

	for i := 5; i <= 40; i += 5 {
		assert.True(t, tr.TryAdvance(i, policy))
	}
	assert.True(t, tr.Complete())
	assert.InDelta(t, 1, tr.Fraction(), 1e-9)
}

func TestAdvanceClampsToLastIndex(t *testing.T) {
	tr := New(10)
	assert.True(t, tr.TryAdvance(9, policy))
	assert.False(t, tr.TryAdvance(12, policy))
	assert.Equal(t, 9, tr.Index())
}

func TestReset(t *testing.T) {
	tr := New(100)
	tr.TryAdvance(20, policy)
	tr.Reset(-1)
	assert.Equal(t, 0, tr.Index())
	assert.Equal(t, 100, tr.Len())

	tr.Reset(50)
	assert.Equal(t, 50, tr.Len())
}

func TestIndexNeverDecreases(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tr := New(500)
	prev := 0
	for i := 0; i < 5000; i++ {
		tr.TryAdvance(rng.Intn(560)-30, policy)
		if tr.Index() < prev {
			t.Fatalf("index went from %d to %d", prev, tr.Index())
		}
		if tr.Index()-prev > policy.MaxForwardJump {
			t.Fatalf("index jumped from %d to %d", prev, tr.Index())
		}
		prev = tr.Index()
	}
}
