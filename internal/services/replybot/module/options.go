package module

import (
	"strings"
	"time"

	"shamewizard/internal/platform/config"
	"shamewizard/internal/services/replybot/repo"
)

// Options holds the process env settings for the reply bot module
type Options struct {
	SettingsPath string

	RulesPath    string
	RulesRefresh time.Duration

	StateBackend string
	StatePath    string
	StateKey     string
	StateFlush   time.Duration

	Subreddit string
	PollEvery time.Duration
	PollLimit int
	DryRun    bool

	StatusEnabled bool
	StatusPort    string

	RedditRPS        float64
	RedditBurst      int
	RedditMaxRetries int
	RedditRetryBase  time.Duration
}

// FromConfig reads BOT_* and REDDIT_* settings
func FromConfig(cfg config.Conf) Options {
	bc := cfg.Prefix("BOT_")
	rc := cfg.Prefix("REDDIT_")
	return Options{
		SettingsPath: bc.MayString("CONFIG_PATH", DefaultSettingsPath),

		RulesPath:    bc.MayString("RULES_PATH", "config/tracked.json"),
		RulesRefresh: bc.MayDuration("RULES_REFRESH", time.Second),

		StateBackend: strings.ToLower(bc.MayEnum("STATE_BACKEND", repo.BackendFile, repo.Backends...)),
		StatePath:    bc.MayString("STATE_PATH", "db.json"),
		StateKey:     bc.MayString("STATE_KEY", "shamewizard:state"),
		StateFlush:   bc.MayDuration("STATE_FLUSH", time.Second),

		Subreddit: bc.MayString("SUBREDDIT", "all"),
		PollEvery: bc.MayDuration("POLL_EVERY", time.Second),
		PollLimit: bc.MayInt("POLL_LIMIT", 100),
		DryRun:    bc.MayBool("DRY_RUN", false),

		StatusEnabled: bc.MayBool("STATUS_ENABLED", true),
		StatusPort:    bc.MayPort("STATUS_PORT", 4000),

		RedditRPS:        rc.MayFloat64("RPS", 1.0),
		RedditBurst:      rc.MayInt("BURST", 5),
		RedditMaxRetries: rc.MayInt("MAX_RETRIES", 3),
		RedditRetryBase:  rc.MayDuration("RETRY_BASE", 500*time.Millisecond),
	}
}
