package mdnotes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-mdnotes/internal/fileutil"
	"github.com/alnah/go-mdnotes/internal/hints"
	"github.com/alnah/go-mdnotes/internal/process"
)

// pdfRenderer abstracts HTML to PDF rendering to allow testing without a browser.
type pdfRenderer interface {
	Render(ctx context.Context, page string) ([]byte, error)
	Available() (string, error)
}

// Compile-time interface check.
var _ pdfRenderer = (*rodRenderer)(nil)

// A4 page geometry in inches.
const (
	paperWidthInches  = 8.27
	paperHeightInches = 11.69
	marginInches      = 0.5
)

// lookPath finds an installed Chromium-family browser. Replaced in tests.
var lookPath = launcher.LookPath

// LookupBrowser resolves the browser executable a render would use.
// Order: bin (path or name on PATH), ROD_BROWSER_BIN, then the usual install
// locations. Nothing is downloaded. Returns an error wrapping
// ErrEngineUnavailable when no candidate exists.
func LookupBrowser(bin string) (string, error) {
	for _, candidate := range []string{bin, os.Getenv("ROD_BROWSER_BIN")} {
		if candidate == "" {
			continue
		}
		if fileutil.IsFilePath(candidate) {
			if fileutil.FileExists(candidate) {
				return candidate, nil
			}
			return "", fmt.Errorf("%w: %s does not exist", ErrEngineUnavailable, candidate)
		}
		resolved, err := exec.LookPath(candidate)
		if err != nil {
			return "", fmt.Errorf("%w: %s not found in PATH", ErrEngineUnavailable, candidate)
		}
		return resolved, nil
	}

	if found, ok := lookPath(); ok {
		return found, nil
	}
	return "", fmt.Errorf("%w: install Chromium or Google Chrome, or set ROD_BROWSER_BIN", ErrEngineUnavailable)
}

// renderConfig holds the renderer settings copied from the exporter.
type renderConfig struct {
	browserBin     string
	timeout        time.Duration
	settleDelay    time.Duration
	viewportWidth  int
	viewportHeight int
}

// rodRenderer prints HTML with a headless browser launched per render.
type rodRenderer struct {
	cfg    renderConfig
	logger *slog.Logger
}

func newRodRenderer(cfg renderConfig, logger *slog.Logger) *rodRenderer {
	return &rodRenderer{cfg: cfg, logger: logger}
}

// Available implements pdfRenderer.
func (r *rodRenderer) Available() (string, error) {
	return LookupBrowser(r.cfg.browserBin)
}

// Render launches a browser, loads page as document content, waits for the
// settle delay, prints A4 and tears the browser down. Any failure after the
// engine is found wraps ErrRender and a stage error.
func (r *rodRenderer) Render(ctx context.Context, page string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bin, err := r.Available()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	s, err := r.open(ctx, bin)
	if err != nil {
		return nil, err
	}
	defer s.close()

	pdf, err := r.print(ctx, s.browser, page)
	if err != nil {
		r.logger.Debug("render failed", slog.String("stage", "closed"), slog.Any("error", err))
		return nil, err
	}

	r.logger.Debug("render complete",
		slog.String("stage", "closed"),
		slog.Int("bytes", len(pdf)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return pdf, nil
}

// newLauncher configures a headless launch of bin.
func (r *rodRenderer) newLauncher(ctx context.Context, bin string) *launcher.Launcher {
	l := launcher.New().
		Context(ctx).
		Bin(bin).
		Headless(true).
		Set("disable-gpu").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("hide-scrollbars").
		Set("window-size", strconv.Itoa(r.cfg.viewportWidth)+","+strconv.Itoa(r.cfg.viewportHeight))

	if needsNoSandbox() {
		l = l.NoSandbox(true)
	}
	return l
}

// needsNoSandbox reports whether Chromium's sandbox must be disabled: in CI,
// in containers, or when ROD_NO_SANDBOX is set.
func needsNoSandbox() bool {
	if v := strings.ToLower(os.Getenv("ROD_NO_SANDBOX")); v == "1" || v == "true" {
		return true
	}
	return os.Getenv("CI") == "true" || hints.IsInContainer()
}

// session is one launched browser plus the goroutine draining its events.
// close tears both down and is safe to call once on every path.
type session struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	pid      int
	stop     context.CancelFunc
	drained  chan struct{}
	logger   *slog.Logger
	once     sync.Once
}

// open launches and connects to the browser, then starts the event drainer.
// On failure every resource acquired so far is released before returning.
func (r *rodRenderer) open(ctx context.Context, bin string) (*session, error) {
	r.logger.Debug("launching browser", slog.String("stage", "launching"), slog.String("bin", bin))

	l := r.newLauncher(ctx, bin)
	u, err := l.Launch()
	if err != nil {
		l.Kill()
		return nil, renderFailure(ctx, ErrBrowserLaunch, err)
	}

	s := &session{
		launcher: l,
		pid:      l.PID(),
		drained:  make(chan struct{}),
		logger:   r.logger,
	}

	s.browser = rod.New().ControlURL(u)
	if err := s.browser.Connect(); err != nil {
		s.browser = nil
		close(s.drained)
		s.close()
		return nil, renderFailure(ctx, ErrBrowserLaunch, err)
	}

	drainCtx, stop := context.WithCancel(context.Background())
	s.stop = stop
	events := s.browser.Context(drainCtx).Event()
	go func() {
		defer close(s.drained)
		for msg := range events {
			s.logger.Debug("browser event", slog.String("method", msg.Method))
		}
	}()

	return s, nil
}

// close stops the drainer, closes the browser and kills the process tree.
func (s *session) close() {
	s.once.Do(func() {
		if s.stop != nil {
			s.stop()
		}
		<-s.drained

		closed := false
		if s.browser != nil {
			if err := s.browser.Close(); err != nil {
				s.logger.Debug("browser close", slog.Any("error", err))
			} else {
				closed = true
			}
		}
		// Kill pauses before signalling, so it only runs when a graceful
		// close was not possible. KillTree reaps leftover children.
		if !closed {
			s.launcher.Kill()
		}
		process.KillTree(s.pid)
		s.launcher.Cleanup()
	})
}

// print runs the page stages of one render inside a launched browser.
func (r *rodRenderer) print(ctx context.Context, browser *rod.Browser, html string) ([]byte, error) {
	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, renderFailure(ctx, ErrPageCreate, err)
	}
	page = page.Context(ctx).Timeout(r.cfg.timeout)
	r.logger.Debug("page created", slog.String("stage", "page_created"))

	if err := page.SetDocumentContent(html); err != nil {
		return nil, renderFailure(ctx, ErrPageLoad, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, renderFailure(ctx, ErrPageLoad, err)
	}
	r.logger.Debug("content loaded", slog.String("stage", "content_loaded"))

	r.logger.Debug("settling", slog.String("stage", "settling"), slog.Duration("delay", r.cfg.settleDelay))
	if err := settle(ctx, page.GetContext(), r.cfg.settleDelay); err != nil {
		return nil, err
	}

	r.logger.Debug("printing", slog.String("stage", "printing"))
	reader, err := page.PDF(pdfOptions())
	if err != nil {
		return nil, renderFailure(ctx, ErrPDFGeneration, err)
	}
	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, renderFailure(ctx, ErrPDFGeneration, fmt.Errorf("reading PDF stream: %w", err))
	}
	return pdf, nil
}

// pdfOptions returns the fixed A4 print settings.
func pdfOptions() *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(paperWidthInches),
		PaperHeight:     floatPtr(paperHeightInches),
		MarginTop:       floatPtr(marginInches),
		MarginBottom:    floatPtr(marginInches),
		MarginLeft:      floatPtr(marginInches),
		MarginRight:     floatPtr(marginInches),
		PrintBackground: true,
	}
}

// renderFailure classifies err as a failure of stage. A cancelled or expired
// caller context is returned as is.
func renderFailure(ctx context.Context, stage, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w: timed out: %v", ErrRender, stage, err)
	}
	return fmt.Errorf("%w: %w: %v", ErrRender, stage, err)
}

// settle waits d under pageCtx, the render timeout context derived from ctx.
// Running out of render time while settling is a page load failure.
func settle(ctx, pageCtx context.Context, d time.Duration) error {
	if err := sleepContext(pageCtx, d); err != nil {
		return renderFailure(ctx, ErrPageLoad, fmt.Errorf("settling: %w", err))
	}
	return nil
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
