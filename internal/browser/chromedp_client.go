package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/scoutpool/internal/domclient"
)

// chromedpClient is the primary domclient.Client implementation.
type chromedpClient struct {
	ctx      context.Context
	cancel   context.CancelFunc
	waitTime time.Duration
}

func newChromedpClient(parent context.Context, waitTime time.Duration) *chromedpClient {
	ctx, cancel := chromedp.NewContext(parent)
	return &chromedpClient{ctx: ctx, cancel: cancel, waitTime: waitTime}
}

func (c *chromedpClient) Navigate(ctx context.Context, url string) error {
	return chromedp.Run(c.ctx,
		chromedp.Navigate(url),
		chromedp.Sleep(c.waitTime),
	)
}

func (c *chromedpClient) HTML(ctx context.Context) (string, error) {
	var html string
	if err := chromedp.Run(c.ctx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", fmt.Errorf("reading rendered html: %w", err)
	}
	return html, nil
}

func (c *chromedpClient) EvalJS(ctx context.Context, expression string, out interface{}) error {
	var raw json.RawMessage
	if err := chromedp.Run(c.ctx, chromedp.Evaluate(expression, &raw)); err != nil {
		return fmt.Errorf("evaluating script: %w", err)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func (c *chromedpClient) Click(ctx context.Context, selector string) error {
	// Best-effort: missing popup/consent elements are not errors.
	_ = chromedp.Run(c.ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.AtLeast(0)))
	return nil
}

func (c *chromedpClient) ScrollIntoView(ctx context.Context, steps int) error {
	for i := 0; i < steps; i++ {
		script := fmt.Sprintf("window.scrollTo(0, document.body.scrollHeight * %f)", float64(i+1)/float64(steps))
		if err := chromedp.Run(c.ctx, chromedp.Evaluate(script, nil)); err != nil {
			return fmt.Errorf("scroll step %d: %w", i, err)
		}
		if err := chromedp.Run(c.ctx, chromedp.Sleep(secondsDuration(1))); err != nil {
			return err
		}
	}
	return nil
}

func (c *chromedpClient) Title(ctx context.Context) (string, error) {
	var title string
	if err := chromedp.Run(c.ctx, chromedp.Title(&title)); err != nil {
		return "", err
	}
	return title, nil
}

func (c *chromedpClient) CurrentURL(ctx context.Context) (string, error) {
	var url string
	if err := chromedp.Run(c.ctx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

func (c *chromedpClient) Close(ctx context.Context) error {
	c.cancel()
	return nil
}

var _ domclient.Client = (*chromedpClient)(nil)
