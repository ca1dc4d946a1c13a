// File: internal/browser/session.go
package browser

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mvoss9000/agentlens/api/schemas"
	"github.com/mvoss9000/agentlens/internal/config"
)

// Session is a chromedp-backed implementation of schemas.BrowserSession.
// It owns a headless Chrome tab for the lifetime of the session.
type Session struct {
	id     string
	log    *zap.Logger
	cfg    config.BrowserConfig
	ctx    context.Context
	cancel context.CancelFunc
	// allocCancel tears down the exec allocator after the tab context.
	allocCancel context.CancelFunc
	closeOnce   sync.Once
}

var _ schemas.BrowserSession = (*Session)(nil)

// NewSession launches a browser and opens a fresh tab context.
func NewSession(parentCtx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Session, error) {
	sessionID := uuid.New().String()
	log := logger.Named("browser").With(zap.String("session_id", sessionID))

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	for _, arg := range cfg.Args {
		opts = append(opts, chromedp.Flag(arg, true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parentCtx, opts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	// Start the browser process up front so failures surface here rather
	// than on the first action.
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	log.Info("Browser session started", zap.Bool("headless", cfg.Headless))
	return &Session{
		id:          sessionID,
		log:         log,
		cfg:         cfg,
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
	}, nil
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// Navigate loads a URL and waits for the document body to be ready.
func (s *Session) Navigate(ctx context.Context, targetURL string) error {
	navCtx, navCancel := s.operationContext(ctx)
	defer navCancel()

	s.log.Info("Navigating", zap.String("url", targetURL))
	err := chromedp.Run(navCtx,
		chromedp.Navigate(targetURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("navigation to %q failed: %w", targetURL, err)
	}
	return nil
}

// GetState snapshots the current page, including a fresh screenshot encoded
// for transport.
func (s *Session) GetState(ctx context.Context) (*schemas.BrowserState, error) {
	stateCtx, stateCancel := s.operationContext(ctx)
	defer stateCancel()

	var pageURL, title string
	err := chromedp.Run(stateCtx,
		chromedp.Location(&pageURL),
		chromedp.Title(&title),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read page state: %w", err)
	}

	state := &schemas.BrowserState{URL: pageURL, Title: title}

	shot, err := s.CaptureScreenshot(ctx, true)
	if err != nil {
		// State without a screenshot is still usable; the recorder
		// degrades gracefully.
		s.log.Warn("State snapshot has no screenshot", zap.Error(err))
		return state, nil
	}
	state.Screenshot = shot
	return state, nil
}

// CaptureScreenshot takes a PNG screenshot and returns it base64-encoded.
func (s *Session) CaptureScreenshot(ctx context.Context, fullPage bool) (string, error) {
	shotCtx, shotCancel := s.operationContext(ctx)
	defer shotCancel()

	var buf []byte
	var action chromedp.Action
	if fullPage {
		// PNG beyond the viewport; chromedp.FullScreenshot would hand
		// back JPEG at any quality below 100.
		action = chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, err = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithCaptureBeyondViewport(true).
				Do(ctx)
			return err
		})
	} else {
		action = chromedp.CaptureScreenshot(&buf)
	}
	if err := chromedp.Run(shotCtx, action); err != nil {
		return "", fmt.Errorf("screenshot capture failed: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// Close terminates the tab and the browser process.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.log.Info("Closing browser session")
		s.cancel()
		s.allocCancel()
	})
}

// operationContext bounds an operation by both the session lifetime and the
// caller's context, with the configured navigation timeout as a ceiling.
func (s *Session) operationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.cfg.NavigationTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	opCtx, cancel := context.WithTimeout(s.ctx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return opCtx, func() {
		stop()
		cancel()
	}
}
