package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/playwright-community/playwright-go"
	log "github.com/sirupsen/logrus"

	"internscout/internal/config"
	"internscout/internal/limits"
	"internscout/internal/logger"
	"internscout/internal/metrics"
)

type sessionState int

const (
	stateUnstarted sessionState = iota
	stateStarted
	stateClosed
)

func (s sessionState) String() string {
	switch s {
	case stateStarted:
		return "started"
	case stateClosed:
		return "closed"
	default:
		return "unstarted"
	}
}

const (
	viewportWidth  = 1920
	viewportHeight = 1080

	// Element actions fail fast; the page-level default covers navigation.
	actionTimeoutMs = 5000

	navigateSettle  = 2 * time.Second
	scrollPause     = 2 * time.Second
	maxScrollRounds = 10
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var launchArgs = []string{
	"--no-sandbox",
	"--disable-blink-features=AutomationControlled",
	"--disable-dev-shm-usage",
}

// Session owns one browser page and funnels every page load through the
// shared limits. Element-level operations report failure as a boolean or an
// empty value; only a dead browser surfaces ErrSessionUnavailable.
type Session struct {
	cfg  config.BrowserConfig
	gate *limits.Gate
	log  *log.Entry

	mu      sync.Mutex
	state   sessionState
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
}

func NewSession(cfg config.BrowserConfig, gate *limits.Gate, traceID string) *Session {
	return &Session{
		cfg:  cfg,
		gate: gate,
		log:  logger.WithTrace(traceID),
	}
}

// Start launches chromium and opens a fresh page. When a stored session file
// exists the browser context is created from it, so cookies and local storage
// from a previous login carry over.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateStarted {
		return nil
	}
	if s.state == stateClosed {
		return errors.Wrap(ErrSessionUnavailable, "session already closed")
	}

	pw, err := playwright.Run()
	if err != nil {
		return errors.Wrapf(ErrSessionUnavailable, "start playwright: %v", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(s.cfg.Headless),
		Args:     launchArgs,
	})
	if err != nil {
		_ = pw.Stop()
		return errors.Wrapf(ErrSessionUnavailable, "launch chromium: %v", err)
	}

	browserCtx, restored, err := openContext(browser.NewContext, s.cfg.SessionFile, s.log)
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return errors.Wrapf(ErrSessionUnavailable, "create browser context: %v", err)
	}
	if restored {
		s.log.Infof("restored browser state from %s", s.cfg.SessionFile)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		_ = browserCtx.Close()
		_ = browser.Close()
		_ = pw.Stop()
		return errors.Wrapf(ErrSessionUnavailable, "open page: %v", err)
	}
	page.SetDefaultTimeout(float64(s.cfg.TimeoutMs))

	s.pw = pw
	s.browser = browser
	s.context = browserCtx
	s.page = page
	s.state = stateStarted
	s.log.Info("browser session started")
	return nil
}

// Close persists the storage state and tears the browser down. Calling it
// again, or on a session that never started, is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateStarted {
		s.state = stateClosed
		return
	}

	if _, err := s.context.StorageState(s.cfg.SessionFile); err != nil {
		s.log.Warnf("failed to save browser state on close: %v", err)
	}
	if err := s.context.Close(); err != nil {
		s.log.Warnf("failed to close browser context: %v", err)
	}
	if err := s.browser.Close(); err != nil {
		s.log.Warnf("failed to close browser: %v", err)
	}
	if err := s.pw.Stop(); err != nil {
		s.log.Warnf("failed to stop playwright: %v", err)
	}

	s.page = nil
	s.context = nil
	s.browser = nil
	s.pw = nil
	s.state = stateClosed
	s.log.Info("browser session closed")
}

func (s *Session) currentPage() (playwright.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case stateStarted:
		return s.page, nil
	case stateClosed:
		return nil, errors.Wrap(ErrSessionUnavailable, "session closed")
	default:
		return nil, errors.Wrap(ErrSessionUnavailable, "session not started")
	}
}

func (s *Session) unusable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateStarted {
		return true
	}
	return s.page.IsClosed() || !s.browser.IsConnected()
}

// Navigate loads url and waits for the network to go idle. A page that keeps
// loading past the timeout is tolerated; a browser that died underneath us is
// not.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.gate.Enter(ctx); err != nil {
		return err
	}
	defer s.gate.Leave()

	page, err := s.currentPage()
	if err != nil {
		return err
	}

	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(s.cfg.TimeoutMs)),
	}); err != nil {
		if s.unusable() {
			return errors.Wrapf(ErrSessionUnavailable, "goto %s: %v", url, err)
		}
		s.log.Warnf("page load did not settle for %s: %v", url, err)
	}

	metrics.PagesFetched.Inc()
	return pause(ctx, navigateSettle)
}

// OpenByClick performs a click that triggers a remote content load, for
// example opening the n-th conversation in a chat list. It counts against the
// same limits as a navigation.
func (s *Session) OpenByClick(ctx context.Context, selector string, nth int) (bool, error) {
	if err := s.gate.Enter(ctx); err != nil {
		return false, err
	}
	defer s.gate.Leave()

	if !s.ClickNth(selector, nth) {
		if s.unusable() {
			return false, errors.Wrapf(ErrSessionUnavailable, "open %q", selector)
		}
		return false, nil
	}

	metrics.PagesFetched.Inc()
	return true, pause(ctx, navigateSettle)
}

func (s *Session) WaitVisible(selector string, timeoutMs float64) bool {
	page, err := s.currentPage()
	if err != nil {
		return false
	}
	err = page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(timeoutMs),
	})
	return err == nil
}

func (s *Session) Visible(selector string) bool {
	page, err := s.currentPage()
	if err != nil {
		return false
	}
	visible, err := page.Locator(selector).First().IsVisible()
	return err == nil && visible
}

func (s *Session) Click(selector string) bool {
	return s.ClickNth(selector, 0)
}

func (s *Session) ClickNth(selector string, nth int) bool {
	page, err := s.currentPage()
	if err != nil {
		return false
	}
	err = page.Locator(selector).Nth(nth).Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(actionTimeoutMs),
	})
	return err == nil
}

func (s *Session) Fill(selector, value string) bool {
	page, err := s.currentPage()
	if err != nil {
		return false
	}
	err = page.Locator(selector).First().Fill(value, playwright.LocatorFillOptions{
		Timeout: playwright.Float(actionTimeoutMs),
	})
	return err == nil
}

func (s *Session) Press(selector, key string) bool {
	page, err := s.currentPage()
	if err != nil {
		return false
	}
	err = page.Locator(selector).First().Press(key, playwright.LocatorPressOptions{
		Timeout: playwright.Float(actionTimeoutMs),
	})
	return err == nil
}

func (s *Session) Text(selector string) (string, bool) {
	page, err := s.currentPage()
	if err != nil {
		return "", false
	}
	text, err := page.Locator(selector).First().TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(actionTimeoutMs),
	})
	if err != nil {
		return "", false
	}
	trimmed := strings.TrimSpace(text)
	return trimmed, trimmed != ""
}

func (s *Session) Attr(selector, name string) (string, bool) {
	page, err := s.currentPage()
	if err != nil {
		return "", false
	}
	value, err := page.Locator(selector).First().GetAttribute(name, playwright.LocatorGetAttributeOptions{
		Timeout: playwright.Float(actionTimeoutMs),
	})
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}

func (s *Session) Count(selector string) int {
	page, err := s.currentPage()
	if err != nil {
		return 0
	}
	count, err := page.Locator(selector).Count()
	if err != nil {
		return 0
	}
	return count
}

func (s *Session) URL() string {
	page, err := s.currentPage()
	if err != nil {
		return ""
	}
	return page.URL()
}

// Content returns the current DOM as HTML. An empty string means the page had
// nothing to offer; callers skip the unit of work rather than abort.
func (s *Session) Content() (string, error) {
	page, err := s.currentPage()
	if err != nil {
		return "", err
	}
	html, err := page.Content()
	if err != nil {
		if s.unusable() {
			return "", errors.Wrapf(ErrSessionUnavailable, "page content: %v", err)
		}
		s.log.Warnf("failed to read page content: %v", err)
		return "", nil
	}
	return html, nil
}

// ScrollToEnd scrolls the page until its height stops growing and reports the
// number of rounds it took.
func (s *Session) ScrollToEnd(ctx context.Context) (int, error) {
	page, err := s.currentPage()
	if err != nil {
		return 0, err
	}

	height := func() (int, error) {
		v, evalErr := page.Evaluate("() => document.body.scrollHeight")
		if evalErr != nil {
			return 0, evalErr
		}
		return jsInt(v), nil
	}
	scroll := func() error {
		_, evalErr := page.Evaluate("() => window.scrollTo(0, document.body.scrollHeight)")
		return evalErr
	}
	wait := func(c context.Context) error {
		return pause(c, scrollPause)
	}

	rounds, err := scrollUntilStable(ctx, height, scroll, wait, maxScrollRounds)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return rounds, err
		}
		if s.unusable() {
			return rounds, errors.Wrapf(ErrSessionUnavailable, "scroll: %v", err)
		}
		s.log.Warnf("scrolling stopped early: %v", err)
	}
	return rounds, nil
}

// SaveSession writes the context storage state to the configured file so a
// later run can skip the login form.
func (s *Session) SaveSession() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateStarted {
		return false
	}
	if _, err := s.context.StorageState(s.cfg.SessionFile); err != nil {
		s.log.WithField(logger.ErrorTypeField, logger.ErrorTypeBrowser).
			Errorf("failed to save session state: %v", err)
		return false
	}
	s.log.Infof("session state saved to %s", s.cfg.SessionFile)
	return true
}

// Screenshot captures the full page into the configured screenshot directory.
// It is diagnostic only and never fails the caller.
func (s *Session) Screenshot(name string) {
	if s.cfg.ScreenshotDir == "" {
		return
	}
	page, err := s.currentPage()
	if err != nil {
		return
	}
	if err := os.MkdirAll(s.cfg.ScreenshotDir, 0o755); err != nil {
		s.log.Warnf("failed to create screenshot dir: %v", err)
		return
	}
	path := filepath.Join(s.cfg.ScreenshotDir,
		fmt.Sprintf("%s_%s.png", name, time.Now().Format("20060102_150405")))
	if _, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		s.log.Warnf("failed to take screenshot %s: %v", name, err)
		return
	}
	s.log.Debugf("screenshot saved: %s", path)
}

func (s *Session) Pause(ctx context.Context, d time.Duration) error {
	return pause(ctx, d)
}

// openContext creates the browser context, restoring the stored session
// artifact when one exists. A stale or corrupt artifact logs a warning and
// falls back to a clean context; only the clean attempt's failure is returned.
// The bool reports whether state was actually restored.
func openContext(newContext func(...playwright.BrowserNewContextOptions) (playwright.BrowserContext, error),
	sessionFile string, entry *log.Entry) (playwright.BrowserContext, bool, error) {

	options := playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(userAgent),
		Viewport:  &playwright.Size{Width: viewportWidth, Height: viewportHeight},
	}

	if _, statErr := os.Stat(sessionFile); statErr == nil {
		withState := options
		withState.StorageStatePath = playwright.String(sessionFile)
		ctx, err := newContext(withState)
		if err == nil {
			return ctx, true, nil
		}
		entry.Warnf("failed to restore browser state from %s, starting clean: %v", sessionFile, err)
	}

	ctx, err := newContext(options)
	return ctx, false, err
}

// scrollUntilStable repeats measure-scroll-wait until the measured height
// repeats or maxRounds is reached. It returns the number of rounds executed.
func scrollUntilStable(ctx context.Context, height func() (int, error), scroll func() error,
	wait func(context.Context) error, maxRounds int) (int, error) {

	last := -1
	for round := 0; round < maxRounds; round++ {
		h, err := height()
		if err != nil {
			return round, err
		}
		if h == last {
			return round, nil
		}
		last = h
		if err := scroll(); err != nil {
			return round, err
		}
		if err := wait(ctx); err != nil {
			return round, err
		}
	}
	return maxRounds, nil
}

func pause(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func jsInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
