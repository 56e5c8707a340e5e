// Package browser loads listing pages in headless Chrome so lazily loaded results get rendered.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Headless       bool
	ReadySelector  string        // element that marks the first results as rendered
	ItemSelector   string        // one element per result
	ScrollAttempts int           // consecutive scrolls without new items before stopping
	ScrollWait     time.Duration // pause after each scroll
	PageTimeout    time.Duration
}

// Browser implements the listing source by scrolling to the bottom until no new results appear.
type Browser struct {
	opts Options
}

func New(opts Options) *Browser {
	if opts.ScrollAttempts <= 0 {
		opts.ScrollAttempts = 30
	}
	if opts.ScrollWait <= 0 {
		opts.ScrollWait = 2 * time.Second
	}
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = 10 * time.Minute
	}
	if opts.ReadySelector == "" {
		opts.ReadySelector = opts.ItemSelector
	}
	return &Browser{opts: opts}
}

func (b *Browser) FetchListing(ctx context.Context, url string) (string, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.opts.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()
	bctx, cancel := context.WithTimeout(bctx, b.opts.PageTimeout)
	defer cancel()

	log.Info().Str("url", url).Msg("navigating")
	if err := chromedp.Run(bctx,
		chromedp.EmulateViewport(1920, 1080),
		chromedp.Navigate(url),
		chromedp.WaitVisible(b.opts.ReadySelector, chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("load %s: %w", url, err)
	}

	countJS := fmt.Sprintf(`document.querySelectorAll(%q).length`, b.opts.ItemSelector)
	count := func() (int, error) {
		var n int
		err := chromedp.Run(bctx, chromedp.Evaluate(countJS, &n))
		return n, err
	}
	scroll := func() error {
		return chromedp.Run(bctx, chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil))
	}
	total, err := scrollUntilStable(bctx, count, scroll, b.opts.ScrollAttempts, b.opts.ScrollWait)
	if err != nil {
		return "", err
	}
	log.Info().Str("url", url).Int("items", total).Msg("scrolling finished")

	var html string
	if err := chromedp.Run(bctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read page: %w", err)
	}
	return html, nil
}

// scrollUntilStable scrolls until attempts consecutive scrolls leave the item count unchanged.
// It returns the last count.
func scrollUntilStable(ctx context.Context, count func() (int, error), scroll func() error, attempts int, wait time.Duration) (int, error) {
	last, err := count()
	if err != nil {
		return 0, err
	}
	for misses := 0; misses < attempts; {
		if err := scroll(); err != nil {
			return last, fmt.Errorf("scroll: %w", err)
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return last, ctx.Err()
		case <-t.C:
		}

		n, err := count()
		if err != nil {
			return last, err
		}
		if n == last {
			misses++
			log.Debug().Int("attempt", misses).Int("of", attempts).Msg("no new items")
		} else {
			misses = 0
		}
		last = n
	}
	return last, nil
}
