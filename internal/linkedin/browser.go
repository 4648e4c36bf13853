package linkedin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	defaultPageTimeout  = 60 * time.Second
	defaultSettleDelay  = 3 * time.Second
	defaultScrollRounds = 3
)

// expandSections clicks the "see more" style toggles so collapsed experience,
// education and skills entries are part of the page text.
const expandSections = `(() => {
	let clicked = 0;
	const labels = ["see more", "show more", "show all"];
	document.querySelectorAll("button, a").forEach((el) => {
		const text = (el.innerText || "").trim().toLowerCase();
		if (labels.some((l) => text.startsWith(l)) && el.offsetParent !== null) {
			try { el.click(); clicked++; } catch (e) {}
		}
	});
	return clicked;
})()`

// BrowserConfig configures the headless browser used to render profile pages.
type BrowserConfig struct {
	// UserDataDir points to a Chrome profile that is already signed in.
	UserDataDir  string        `mapstructure:"user-data-dir"`
	Headless     bool          `mapstructure:"headless"`
	PageTimeout  time.Duration `mapstructure:"page-timeout"`
	SettleDelay  time.Duration `mapstructure:"settle-delay"`
	ScrollRounds int           `mapstructure:"scroll-rounds"`
	MaxRetries   int           `mapstructure:"max-retries"`
}

// BrowserFetcher renders pages in a single shared Chrome instance.
type BrowserFetcher struct {
	cfg    BrowserConfig
	logger *zap.Logger

	browserCtx  context.Context
	cancelAlloc context.CancelFunc
	cancelTab   context.CancelFunc
}

// NewBrowserFetcher starts Chrome. Close must be called to release it.
func NewBrowserFetcher(ctx context.Context, cfg BrowserConfig, logger *zap.Logger) (*BrowserFetcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = defaultPageTimeout
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = defaultSettleDelay
	}
	if cfg.ScrollRounds <= 0 {
		cfg.ScrollRounds = defaultScrollRounds
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(defaultUserAgent),
	)
	if cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
	}

	// The browser outlives individual fetches, so it is detached from the
	// caller's cancellation and stopped through Close instead.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), opts...)
	browserCtx, cancelTab := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	logger.Info("browser started",
		zap.Bool("headless", cfg.Headless),
		zap.String("user_data_dir", cfg.UserDataDir),
	)

	return &BrowserFetcher{
		cfg:         cfg,
		logger:      logger,
		browserCtx:  browserCtx,
		cancelAlloc: cancelAlloc,
		cancelTab:   cancelTab,
	}, nil
}

// Fetch renders the profile, expands collapsed sections and returns its text.
func (b *BrowserFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	return retry(ctx, b.logger, url, b.cfg.MaxRetries, defaultRetryDelay, func(ctx context.Context) (*Page, error) {
		var text, html string
		err := b.render(ctx, url, func(tabCtx context.Context) error {
			var clicked int
			if err := chromedp.Run(tabCtx, chromedp.Evaluate(expandSections, &clicked)); err != nil {
				b.logger.Debug("expanding sections failed", zap.String("url", url), zap.Error(err))
			} else if clicked > 0 {
				if err := chromedp.Run(tabCtx, chromedp.Sleep(time.Second)); err != nil {
					return err
				}
			}

			return chromedp.Run(tabCtx,
				chromedp.Text("body", &text, chromedp.ByQuery),
				chromedp.OuterHTML("html", &html, chromedp.ByQuery),
			)
		})
		if err != nil {
			return nil, err
		}

		page, err := ParsePage(url, html)
		if err != nil {
			return nil, err
		}
		if rendered := collapseSpace(text); rendered != "" {
			page.Text = rendered
		}
		return page, nil
	})
}

// HTML returns the rendered markup of any page, used by URL discovery.
func (b *BrowserFetcher) HTML(ctx context.Context, url string) (string, error) {
	var html string
	err := b.render(ctx, url, func(tabCtx context.Context) error {
		return chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	})
	return html, err
}

func (b *BrowserFetcher) render(ctx context.Context, url string, capture func(context.Context) error) error {
	tabCtx, cancelTab := chromedp.NewContext(b.browserCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.cfg.PageTimeout)
	defer cancelTimeout()

	// Propagate the caller's cancellation into the tab.
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	b.logger.Debug("rendering page", zap.String("url", url))

	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(b.cfg.SettleDelay),
	}
	for i := 0; i < b.cfg.ScrollRounds; i++ {
		actions = append(actions,
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight);`, nil),
			chromedp.Sleep(time.Second),
		)
	}

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("render %s: %w", url, err)
	}

	if err := capture(tabCtx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("capture %s: %w", url, err)
	}

	if strings.Contains(currentURL(tabCtx), "/authwall") {
		return fmt.Errorf("render %s: redirected to sign-in wall", url)
	}

	return nil
}

func currentURL(ctx context.Context) string {
	var location string
	if err := chromedp.Run(ctx, chromedp.Location(&location)); err != nil {
		return ""
	}
	return location
}

// Close stops the browser.
func (b *BrowserFetcher) Close() {
	b.cancelTab()
	b.cancelAlloc()
}
