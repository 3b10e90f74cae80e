package common

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the startup banner and logs the equivalent
// structured startup line through arbor.
func PrintBanner(cfg *Config, logger arbor.ILogger) {
	b := banner.New().
		SetStyle(banner.StyleDouble).
		SetBorderColor(banner.ColorGreen).
		SetTextColor(banner.ColorWhite).
		SetBold(true).
		SetWidth(72)

	fmt.Printf("\n")
	b.PrintTopLine()
	b.PrintCenteredText("SCOUTPOOL")
	b.PrintCenteredText("Concurrent Product Listing Work Pool")
	b.PrintSeparatorLine()
	b.PrintKeyValue("Version", GetVersion(), 15)
	b.PrintKeyValue("Database", cfg.Database.Path, 15)
	b.PrintKeyValue("Batch size", fmt.Sprintf("%d", cfg.Pool.DBURLBatchSize), 15)
	b.PrintBottomLine()
	fmt.Printf("\n")

	logger.Info().
		Str("version", GetVersion()).
		Str("database", cfg.Database.Path).
		Int("batch_size", cfg.Pool.DBURLBatchSize).
		Msg("scoutpool starting")
}
