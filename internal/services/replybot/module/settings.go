package module

import (
	"errors"
	"io/fs"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"

	"shamewizard/internal/core/version"
	perr "shamewizard/internal/platform/errors"
	"shamewizard/internal/platform/validate"
)

// DefaultSettingsPath is where the bot config lives unless --config or BOT_CONFIG_PATH says otherwise
const DefaultSettingsPath = "config/config.json"

// Credentials are the script app credentials for the password grant
type Credentials struct {
	UserAgent string `mapstructure:"userAgent" validate:"required"`
	AppID     string `mapstructure:"appID" validate:"required"`
	AppSecret string `mapstructure:"appSecret" validate:"required"`
	Username  string `mapstructure:"username" validate:"required,username"`
	Password  string `mapstructure:"password" validate:"required"`
}

// BotSettings are the reply knobs
type BotSettings struct {
	// Cooldown is in seconds and may be fractional
	Cooldown float64  `mapstructure:"cooldown" validate:"gte=0"`
	Message  []string `mapstructure:"message" validate:"min=1"`
}

// Settings is the bot config file
type Settings struct {
	Credentials Credentials `mapstructure:"redditCredentials"`
	Bot         BotSettings `mapstructure:"bot"`
	DebugMode   bool        `mapstructure:"debugMode"`
}

// CooldownDuration converts the configured seconds to a duration
func (s Settings) CooldownDuration() time.Duration {
	return time.Duration(math.Round(s.Bot.Cooldown * float64(time.Second)))
}

// LoadSettings reads the config file at path. The format follows the
// extension (json, yaml, toml, ...). {version} in the user agent is expanded
func LoadSettings(path string) (Settings, error) {
	if path == "" {
		path = DefaultSettingsPath
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Settings{}, perr.Wrapf(err, perr.ErrorCodeNotFound, "config file %s not found", path)
		}
		return Settings{}, perr.Wrapf(err, perr.ErrorCodeJSON, "read config file %s", path)
	}
	return decodeSettings(v, path)
}

func decodeSettings(v *viper.Viper, path string) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, perr.Wrapf(err, perr.ErrorCodeValidation, "decode config file %s", path)
	}
	s.Credentials.UserAgent = strings.ReplaceAll(s.Credentials.UserAgent, "{version}", version.Tag())
	if err := validate.Struct(s); err != nil {
		return Settings{}, perr.WithOp(err, path)
	}
	return s, nil
}
