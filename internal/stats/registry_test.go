package stats

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryGetOrCreateReturnsSameWindow(t *testing.T) {
	r := NewRegistry()
	w1 := r.GetOrCreate("AAPL")
	w2 := r.GetOrCreate("AAPL")
	assert.Same(t, w1, w2)
}

func TestRegistryLookupAbsent(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Lookup("UNKNOWN"))
}

func TestRegistryConcurrentGetOrCreate(t *testing.T) {
	r := NewRegistry()

	const goroutines = 16
	windows := make([]*Window, goroutines)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			windows[g] = r.GetOrCreate("AAPL")
		}(g)
	}
	wg.Wait()

	// every racer must observe the one shared window
	for g := 1; g < goroutines; g++ {
		assert.Same(t, windows[0], windows[g])
	}
}

func TestRegistryInstruments(t *testing.T) {
	r := NewRegistry()
	want := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("INST%d", i)
		r.GetOrCreate(id)
		want = append(want, id)
	}
	assert.ElementsMatch(t, want, r.Instruments())
}
