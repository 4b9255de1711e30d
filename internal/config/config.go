package config

import "time"

type Config struct {
	LogConfig
	HTTPConfig
	DBConfig
	TelegramConfig
	GoogleSheetConfig
	RosterConfig
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

type HTTPConfig struct {
	Addr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
	GinMode     string        `envconfig:"GIN_MODE" default:"release"`
	ReadTimeout time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
}

type DBConfig struct {
	User   string `envconfig:"DBUSER" required:"true" masked:"true"`
	Pass   string `envconfig:"DBPASS" required:"true" masked:"true"`
	Host   string `envconfig:"DBHOST" required:"true" masked:"true"`
	DBName string `envconfig:"DBNAME" required:"true" masked:"true"`

	Port    string `envconfig:"DBPORT" default:"5432"`
	SSLMode string `envconfig:"DBSSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`
	LogSQL          bool          `envconfig:"DB_LOG_SQL" default:"false"`
}

// TelegramConfig is optional: the bot is off while BotToken is empty.
type TelegramConfig struct {
	BotToken string  `envconfig:"BOT_TOKEN" masked:"true"`
	Admins   []int64 `envconfig:"ADMINS" masked:"true"`
}

func (c TelegramConfig) Enabled() bool { return c.BotToken != "" }

// GoogleSheetConfig is optional: roster export is off while SheetID is empty.
type GoogleSheetConfig struct {
	SheetID           string `envconfig:"SHEET_ID" masked:"true"`
	RosterTabID       string `envconfig:"ROSTER_TAB_ID" default:"0"`
	CredentialsBase64 string `envconfig:"CREDENTIALS_BASE64" masked:"true"`
	PauseMs           int    `envconfig:"SHEET_PAUSE_MS" default:"1100"`
	Columns           string `envconfig:"ROSTER_COLUMNS"`
}

func (c GoogleSheetConfig) Enabled() bool { return c.SheetID != "" && c.CredentialsBase64 != "" }

type RosterConfig struct {
	Interval time.Duration `envconfig:"ROSTER_INTERVAL" default:"10m"`
}
