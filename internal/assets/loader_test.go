package assets

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	calls   atomic.Int32
	release chan struct{}
	fail    atomic.Bool
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	s.calls.Add(1)
	if s.release != nil {
		<-s.release
	}
	if s.fail.Load() {
		return nil, "", errors.New("cdn down")
	}
	return []byte("body:" + url), "", nil
}

func newLoader(f Fetcher) *Loader {
	return NewLoader(f, "script.js", "style.css", time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
}

func TestLoad_ConcurrentCallersShareOneLoad(t *testing.T) {
	f := &stubFetcher{release: make(chan struct{})}
	l := newLoader(f)

	var wg sync.WaitGroup
	bundles := make([]*Bundle, 8)
	for i := range bundles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := l.Load(context.Background())
			assert.NoError(t, err)
			bundles[i] = b
		}(i)
	}

	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, time.Millisecond)
	close(f.release)
	wg.Wait()

	assert.Equal(t, 1, l.Loads())
	assert.Equal(t, int32(2), f.calls.Load(), "one script and one stylesheet fetch")
	for _, b := range bundles {
		assert.Same(t, bundles[0], b)
	}
	assert.Equal(t, "body:script.js", string(bundles[0].Script.Body))
	assert.Equal(t, "text/css", bundles[0].Style.ContentType)

	_, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, l.Loads(), "memoized after success")
}

func TestLoad_FailureIsNotMemoized(t *testing.T) {
	f := &stubFetcher{}
	f.fail.Store(true)
	l := newLoader(f)

	_, err := l.Load(context.Background())
	require.Error(t, err)
	_, ok := l.Loaded()
	assert.False(t, ok)

	f.fail.Store(false)
	b, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, b)
	assert.Equal(t, 2, l.Loads())
}

func TestLoad_CallerContextOnlyBoundsWait(t *testing.T) {
	f := &stubFetcher{release: make(chan struct{})}
	l := newLoader(f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	close(f.release)
	b, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, b)
	assert.Equal(t, 1, l.Loads())
}

func TestReset(t *testing.T) {
	l := newLoader(&stubFetcher{})
	_, err := l.Load(context.Background())
	require.NoError(t, err)
	_, ok := l.Loaded()
	assert.True(t, ok)

	l.Reset()
	_, ok = l.Loaded()
	assert.False(t, ok)
	assert.Equal(t, 0, l.Loads())
}
