package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/stealth"
	"github.com/ternarybob/scoutpool/internal/common"
	"github.com/ternarybob/scoutpool/internal/domclient"
)

// rodClient is the secondary domclient.Client backend (go-rod +
// go-rod/stealth), used when BrowserConfig.Backend is "rod". The backend
// is fixed by configuration; the pool does not switch backends on its
// own. The extraction/pool layers do not care which backend produced the
// rendered HTML.
type rodClient struct {
	browser *rod.Browser
	page    *rod.Page
}

func newRodClient(profileDir string, cfg *common.BrowserConfig) (*rodClient, error) {
	l := newRodLauncher(profileDir, cfg)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching rod browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connecting to rod browser: %w", err)
	}

	page, err := stealth.Page(browser)
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("creating stealth page: %w", err)
	}

	return &rodClient{browser: browser, page: page}, nil
}

func (c *rodClient) Navigate(ctx context.Context, url string) error {
	if err := c.page.Context(ctx).Navigate(url); err != nil {
		return err
	}
	return c.page.Context(ctx).WaitLoad()
}

func (c *rodClient) HTML(ctx context.Context) (string, error) {
	return c.page.Context(ctx).HTML()
}

func (c *rodClient) EvalJS(ctx context.Context, expression string, out interface{}) error {
	result, err := c.page.Context(ctx).Eval(expression)
	if err != nil {
		return fmt.Errorf("evaluating script: %w", err)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal([]byte(result.Value.Raw()), out)
}

func (c *rodClient) Click(ctx context.Context, selector string) error {
	el, err := c.page.Context(ctx).Timeout(rodClickTimeout).Element(selector)
	if err != nil {
		return nil // missing popup is not an error
	}
	return el.Click("left", 1)
}

func (c *rodClient) ScrollIntoView(ctx context.Context, steps int) error {
	for i := 0; i < steps; i++ {
		script := fmt.Sprintf("() => window.scrollTo(0, document.body.scrollHeight * %f)", float64(i+1)/float64(steps))
		if _, err := c.page.Context(ctx).Eval(script); err != nil {
			return err
		}
	}
	return nil
}

func (c *rodClient) Title(ctx context.Context) (string, error) {
	info, err := c.page.Context(ctx).Info()
	if err != nil {
		return "", err
	}
	return info.Title, nil
}

func (c *rodClient) CurrentURL(ctx context.Context) (string, error) {
	info, err := c.page.Context(ctx).Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (c *rodClient) Close(ctx context.Context) error {
	_ = c.page.Close()
	return c.browser.Close()
}

var _ domclient.Client = (*rodClient)(nil)
