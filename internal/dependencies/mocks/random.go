package mocks

import (
	"slices"
	"sync"

	"github.com/mcoot/clashoffists/internal/dependencies/random"
	"github.com/mcoot/clashoffists/internal/model"
)

// MockRandom replays queued values in order. With nothing queued it returns 0,
// so an unscripted computer opponent throws rock.
type MockRandom struct {
	mu    sync.Mutex
	queue []int
}

var _ random.Random = (*MockRandom)(nil)

func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n <= 0 || len(r.queue) == 0 {
		return 0
	}
	v := r.queue[0]
	r.queue = r.queue[1:]
	return v % n
}

// QueueIntn appends raw results for upcoming Intn calls
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	r.queue = append(r.queue, values...)
	r.mu.Unlock()
}

// QueueMoves scripts the random opponent's next throws
func (r *MockRandom) QueueMoves(moves ...model.Move) {
	idx := make([]int, 0, len(moves))
	for _, m := range moves {
		i := slices.Index(model.Moves, m)
		if i < 0 {
			panic("mocks: unknown move " + string(m))
		}
		idx = append(idx, i)
	}
	r.QueueIntn(idx...)
}

// Remaining reports how many queued values have not been consumed
func (r *MockRandom) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}
