package game

import (
	"math/rand/v2"
	"sync"
)

// Rand is the random source used to place tiles. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// DefaultRand draws from the goroutine-safe top-level math/rand/v2 source.
var DefaultRand Rand = globalRand{}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// LockedRand makes r safe for concurrent use.
func LockedRand(r Rand) Rand {
	if _, ok := r.(globalRand); ok {
		return r
	}
	return &lockedRand{r: r}
}

type lockedRand struct {
	mu sync.Mutex
	r  Rand
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}
