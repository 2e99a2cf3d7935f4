package fetch_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hub-portal/internal/application/fetch"
)

func TestDeduper_ComparteConsultaEnVuelo(t *testing.T) {
	var d fetch.Deduper
	var calls int32
	release := make(chan struct{})

	fn := func(context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "filas", nil
	}

	var wg sync.WaitGroup
	results := make([]any, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _, err := d.Do(context.Background(), "p=0|s=25", fn)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	// dar tiempo a que todas las llamadas se unan al vuelo
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, v := range results {
		assert.Equal(t, "filas", v)
	}
}

func TestDeduper_ClavesDistintasNoSeComparten(t *testing.T) {
	var d fetch.Deduper
	var calls int32
	fn := func(context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return nil, nil
	}
	_, _, err := d.Do(context.Background(), "a", fn)
	require.NoError(t, err)
	_, _, err = d.Do(context.Background(), "b", fn)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls)
}

func TestDeduper_ContextoCancelado(t *testing.T) {
	var d fetch.Deduper
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := d.Do(ctx, "k", func(context.Context) (any, error) {
		<-release
		return nil, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
