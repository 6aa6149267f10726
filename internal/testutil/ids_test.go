package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialIDs_Sequence(t *testing.T) {
	g := NewSequentialIDs("")
	assert.Equal(t, "task-1", g.Generate())
	assert.Equal(t, "task-2", g.Generate())
	assert.Equal(t, 2, g.Issued())

	custom := NewSequentialIDs("row")
	assert.Equal(t, "row-1", custom.Generate())
}

func TestSequentialIDs_Concurrent(t *testing.T) {
	g := NewSequentialIDs("")
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := g.Generate()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
	assert.Equal(t, 50, g.Issued())
}
