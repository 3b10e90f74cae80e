package browser

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scoutpool/internal/common"
	"github.com/ternarybob/scoutpool/internal/domclient"
)

func secondsDuration(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// browserCreationSem serializes every browser process spawn across the
// whole Pool, width 1, so N workers starting at once never fork N browser
// processes in the same instant.
var browserCreationSem = make(chan struct{}, 1)

// creationJitter staggers a worker's browser spawn by 0.5-5s, keyed by
// worker identity so repeated runs stagger the same way.
func creationJitter(workerIndex int) time.Duration {
	const (
		base = 500 * time.Millisecond
		span = 4500 * time.Millisecond
		buckets = 10
	)
	return base + span*time.Duration(workerIndex%buckets)/buckets
}

// sessionState mirrors the absent -> creating -> ready <-> navigating ->
// recycling -> absent lifecycle.
type sessionState int

const (
	stateAbsent sessionState = iota
	stateCreating
	stateReady
	stateNavigating
	stateRecycling
)

// Session is one worker's dedicated browser tab plus its ephemeral
// profile directory.
type Session struct {
	mu            sync.Mutex
	state         sessionState
	client        domclient.Client
	profileDir    string
	allocCancel   context.CancelFunc
	urlsProcessed int
	backend       string
}

// Pool owns one Session per worker slot, each created on that worker's
// first Acquire and recycled on its own schedule rather than torn down
// after every page.
type Pool struct {
	cfg     *common.BrowserConfig
	logger  arbor.ILogger
	mu      sync.Mutex
	sessions map[int]*Session
}

// NewPool creates an empty pool; sessions are created lazily per worker
// index on first Acquire.
func NewPool(cfg *common.BrowserConfig, logger arbor.ILogger) *Pool {
	return &Pool{cfg: cfg, logger: logger, sessions: make(map[int]*Session)}
}

// Acquire returns the session for workerIndex, creating it if absent.
func (p *Pool) Acquire(ctx context.Context, workerIndex int) (*Session, error) {
	p.mu.Lock()
	sess, ok := p.sessions[workerIndex]
	if !ok {
		sess = &Session{state: stateAbsent}
		p.sessions[workerIndex] = sess
	}
	p.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state == stateAbsent {
		if err := p.create(ctx, sess, workerIndex); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

func (p *Pool) create(ctx context.Context, sess *Session, workerIndex int) error {
	sess.state = stateCreating

	browserCreationSem <- struct{}{}
	defer func() { <-browserCreationSem }()
	time.Sleep(creationJitter(workerIndex))

	profileDir, err := os.MkdirTemp("", fmt.Sprintf("scoutpool-worker-%d-*", workerIndex))
	if err != nil {
		sess.state = stateAbsent
		return fmt.Errorf("creating ephemeral profile dir: %w", err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", p.cfg.Headless),
		chromedp.Flag("disable-gpu", p.cfg.DisableGPU),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(p.cfg.UserAgent),
		chromedp.UserDataDir(profileDir),
		chromedp.WindowSize(p.cfg.ViewportWidth, p.cfg.ViewportHeight),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)

	var client domclient.Client
	switch p.cfg.Backend {
	case "rod":
		c, err := newRodClient(profileDir, p.cfg)
		if err != nil {
			allocCancel()
			os.RemoveAll(profileDir)
			sess.state = stateAbsent
			return fmt.Errorf("creating rod session: %w", err)
		}
		client = c
	default:
		client = newChromedpClient(allocCtx, p.cfg.WaitSeconds)
	}

	sess.client = client
	sess.profileDir = profileDir
	sess.allocCancel = allocCancel
	sess.state = stateReady
	sess.urlsProcessed = 0
	sess.backend = p.cfg.Backend

	p.logger.Debug().Int("worker", workerIndex).Str("backend", p.cfg.Backend).Msg("browser session created")
	return nil
}

// Navigate loads url, dismisses common popups, and progressively scrolls
// to trigger lazy-loaded content, then returns the rendered HTML.
func (s *Session) Navigate(ctx context.Context, url string, navTimeout time.Duration, maxScrolls int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = stateNavigating
	defer func() { s.state = stateReady }()

	navCtx, cancel := context.WithTimeout(ctx, navTimeout)
	defer cancel()

	if err := s.client.Navigate(navCtx, url); err != nil {
		return "", fmt.Errorf("navigating to %s: %w", url, err)
	}

	for _, selector := range popupDismissSelectors {
		_ = s.client.Click(navCtx, selector)
	}

	if maxScrolls > 0 {
		_ = s.client.ScrollIntoView(navCtx, maxScrolls)
	}

	html, err := s.client.HTML(navCtx)
	if err != nil {
		return "", fmt.Errorf("reading html for %s: %w", url, err)
	}

	s.urlsProcessed++
	return html, nil
}

// popupDismissSelectors are best-effort clicks for common cookie/consent
// banners; a missing element is never an error.
var popupDismissSelectors = []string{
	"#onetrust-accept-btn-handler",
	".cookie-consent-accept",
	"[aria-label='Close']",
	"button[class*='consent'][class*='accept']",
}

// NeedsRecycle reports whether this session has handled enough URLs to
// warrant tearing down and rebuilding the backing browser process
// (the URLS_PER_DRIVER_CLEANUP setting).
func (s *Session) NeedsRecycle(urlsPerCleanup int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.urlsProcessed >= urlsPerCleanup
}

// Recycle closes the current session and removes its ephemeral profile.
// The next Acquire call will lazily recreate it.
func (p *Pool) Recycle(ctx context.Context, workerIndex int) error {
	p.mu.Lock()
	sess, ok := p.sessions[workerIndex]
	p.mu.Unlock()
	if !ok {
		return nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.state = stateRecycling
	if sess.client != nil {
		_ = sess.client.Close(ctx)
	}
	if sess.allocCancel != nil {
		sess.allocCancel()
	}
	if sess.profileDir != "" {
		_ = os.RemoveAll(sess.profileDir)
	}
	sess.state = stateAbsent
	p.logger.Debug().Int("worker", workerIndex).Msg("browser session recycled")
	return nil
}

// Shutdown recycles every known session, used on graceful pool shutdown.
func (p *Pool) Shutdown(ctx context.Context) {
	p.mu.Lock()
	indexes := make([]int, 0, len(p.sessions))
	for i := range p.sessions {
		indexes = append(indexes, i)
	}
	p.mu.Unlock()

	for _, i := range indexes {
		if err := p.Recycle(ctx, i); err != nil {
			p.logger.Warn().Err(err).Int("worker", i).Msg("error recycling session during shutdown")
		}
	}
}
