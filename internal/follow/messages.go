package follow

import (
	"math/rand"
	"time"
)

// DefaultFailMessages are shown when an attempt fails.
var DefaultFailMessages = []string{
	"So close! Give it another go.",
	"Steady hands win the loop.",
	"Breathe, then trace it again.",
	"The wire got you this time.",
	"Almost there. Try once more.",
	"Slow is smooth, smooth is fast.",
}

// Messages picks failure messages uniformly at random.
type Messages struct {
	rnd  *rand.Rand
	pool []string
}

// NewMessages returns a picker seeded with the current time. An empty pool
// falls back to DefaultFailMessages.
func NewMessages(pool []string) *Messages {
	return NewMessagesWithSeed(pool, time.Now().UnixNano())
}

// NewMessagesWithSeed returns a deterministic picker.
func NewMessagesWithSeed(pool []string, seed int64) *Messages {
	if len(pool) == 0 {
		pool = DefaultFailMessages
	}
	return &Messages{
		rnd:  rand.New(rand.NewSource(seed)),
		pool: append([]string(nil), pool...),
	}
}

// Pick returns one message from the pool.
func (m *Messages) Pick() string {
	if m == nil || len(m.pool) == 0 {
		return DefaultFailMessages[0]
	}
	return m.pool[m.rnd.Intn(len(m.pool))]
}

// Pool returns a copy of the candidate messages.
func (m *Messages) Pool() []string {
	if m == nil {
		return append([]string(nil), DefaultFailMessages...)
	}
	return append([]string(nil), m.pool...)
}
