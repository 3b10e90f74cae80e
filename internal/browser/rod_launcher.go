package browser

import (
	"strconv"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/ternarybob/scoutpool/internal/common"
)

const rodClickTimeout = 2 * time.Second

// newRodLauncher mirrors the flag set in pool.go's chromedp allocator
// options so both backends present the same fingerprint to a target.
func newRodLauncher(profileDir string, cfg *common.BrowserConfig) *launcher.Launcher {
	l := launcher.New().
		UserDataDir(profileDir).
		Headless(cfg.Headless).
		Set("disable-gpu", boolFlag(cfg.DisableGPU)).
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("window-size", windowSize(cfg))

	if cfg.UserAgent != "" {
		l = l.Set("user-agent", cfg.UserAgent)
	}
	return l
}

func boolFlag(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func windowSize(cfg *common.BrowserConfig) string {
	return strconv.Itoa(cfg.ViewportWidth) + "," + strconv.Itoa(cfg.ViewportHeight)
}
