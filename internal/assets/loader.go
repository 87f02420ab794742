// Package assets loads the mapping library's script and stylesheet once per
// process and hands the same bundle to every map that needs it.
package assets

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joshua-takyi/eventmap/internal/metrics"
)

type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

type Asset struct {
	Body        []byte
	ContentType string
}

type Bundle struct {
	Script Asset
	Style  Asset
}

type pendingLoad struct {
	done   chan struct{}
	bundle *Bundle
	err    error
}

// Loader memoizes one shared load. Concurrent callers wait on the same
// pending load; a failed load is forgotten so the next caller retries.
type Loader struct {
	fetcher   Fetcher
	scriptURL string
	styleURL  string
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics

	mu      sync.Mutex
	pending *pendingLoad
	loads   int
}

func NewLoader(fetcher Fetcher, scriptURL, styleURL string, timeout time.Duration, logger *slog.Logger, m *metrics.Metrics) *Loader {
	return &Loader{
		fetcher:   fetcher,
		scriptURL: scriptURL,
		styleURL:  styleURL,
		timeout:   timeout,
		logger:    logger,
		metrics:   m,
	}
}

// Load returns the bundle, starting the download if nobody has yet. ctx only
// bounds this caller's wait, not the shared download.
func (l *Loader) Load(ctx context.Context) (*Bundle, error) {
	l.mu.Lock()
	p := l.pending
	if p == nil {
		p = &pendingLoad{done: make(chan struct{})}
		l.pending = p
		l.loads++
		go l.run(p)
	}
	l.mu.Unlock()

	select {
	case <-p.done:
		return p.bundle, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Loader) run(p *pendingLoad) {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	p.bundle, p.err = l.fetch(ctx)
	if p.err != nil {
		p.bundle = nil
		l.logger.Error("map assets failed to load", "error", p.err)
		l.metrics.AssetLoad("error")

		l.mu.Lock()
		if l.pending == p {
			l.pending = nil
		}
		l.mu.Unlock()
	} else {
		l.logger.Info("map assets loaded",
			"script_bytes", len(p.bundle.Script.Body),
			"style_bytes", len(p.bundle.Style.Body),
		)
		l.metrics.AssetLoad("ok")
	}
	close(p.done)
}

func (l *Loader) fetch(ctx context.Context) (*Bundle, error) {
	script, scriptType, err := l.fetcher.Fetch(ctx, l.scriptURL)
	if err != nil {
		return nil, fmt.Errorf("load map script: %w", err)
	}
	style, styleType, err := l.fetcher.Fetch(ctx, l.styleURL)
	if err != nil {
		return nil, fmt.Errorf("load map stylesheet: %w", err)
	}

	if scriptType == "" {
		scriptType = "application/javascript"
	}
	if styleType == "" {
		styleType = "text/css"
	}
	return &Bundle{
		Script: Asset{Body: script, ContentType: scriptType},
		Style:  Asset{Body: style, ContentType: styleType},
	}, nil
}

// Loaded returns the bundle without waiting or triggering a download.
func (l *Loader) Loaded() (*Bundle, bool) {
	l.mu.Lock()
	p := l.pending
	l.mu.Unlock()
	if p == nil {
		return nil, false
	}
	select {
	case <-p.done:
		return p.bundle, p.err == nil
	default:
		return nil, false
	}
}

// Loads counts how many downloads were started.
func (l *Loader) Loads() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loads
}

// Reset forgets any completed load. In-flight callers still get their result.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = nil
	l.loads = 0
}
