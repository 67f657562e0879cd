package idgen_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/chimera-protocol/internal/pkg/idgen"
)

func TestSequentialGenerator(t *testing.T) {
	gen := idgen.NewSequential("msg")
	assert.Equal(t, "msg_1", gen.Generate())
	assert.Equal(t, "msg_2", gen.Generate())

	bare := idgen.NewSequential("")
	assert.Equal(t, "1", bare.Generate())
}

func TestSequentialGeneratorConcurrent(t *testing.T) {
	gen := idgen.NewSequential("c")
	seen := sync.Map{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, dup := seen.LoadOrStore(gen.Generate(), true)
			assert.False(t, dup)
		}()
	}
	wg.Wait()
}

func TestUUIDGenerator(t *testing.T) {
	gen := idgen.NewUUID("session")
	id := gen.Generate()
	assert.True(t, strings.HasPrefix(id, "session_"))
	assert.NotEqual(t, id, gen.Generate())
	assert.Len(t, idgen.NewUUID("").Generate(), 36)
}
