package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Database struct {
	WriteDSN          string        `mapstructure:"write_dsn"`
	ReadDSN           string        `mapstructure:"read_dsn"`
	Host              string        `mapstructure:"host"`
	ReadHost          string        `mapstructure:"read_host"`
	Port              int           `mapstructure:"port"`
	Name              string        `mapstructure:"name"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	SSLMode           string        `mapstructure:"sslmode"`
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

type Config struct {
	Database      Database      `mapstructure:"database"`
	Server        Server        `mapstructure:"server"`
	Log           Log           `mapstructure:"log"`
	NATS          NATS          `mapstructure:"nats"`
	Mail          Mail          `mapstructure:"mail"`
	Session       Session       `mapstructure:"session"`
	Audit         Audit         `mapstructure:"audit"`
	Retention     Retention     `mapstructure:"retention"`
	Notifications Notifications `mapstructure:"notifications"`
	Env           string        `mapstructure:"environment"`
}

type Server struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type NATS struct {
	URL                 string        `mapstructure:"url"`
	Stream              string        `mapstructure:"stream"`
	AuditSubject        string        `mapstructure:"audit_subject"`
	NotificationSubject string        `mapstructure:"notification_subject"`
	ConsumerDurable     string        `mapstructure:"consumer_durable"`
	AckWait             time.Duration `mapstructure:"ack_wait"`
	MaxAckPending       int           `mapstructure:"max_ack_pending"`
}

// Mail holds the SMTP fallback used when no active email config row exists.
type Mail struct {
	SMTPServer string        `mapstructure:"smtp_server"`
	SMTPPort   int           `mapstructure:"smtp_port"`
	User       string        `mapstructure:"user"`
	Password   string        `mapstructure:"password"`
	FromName   string        `mapstructure:"from_name"`
	UseTLS     bool          `mapstructure:"use_tls"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type Session struct {
	TTL        time.Duration `mapstructure:"ttl"`
	CookieName string        `mapstructure:"cookie_name"`
}

type Audit struct {
	ExportLimit int `mapstructure:"export_limit"`
	PageSize    int `mapstructure:"page_size"`
	TopN        int `mapstructure:"top_n"`
}

type Retention struct {
	InProcess     bool          `mapstructure:"in_process"`
	Days          int           `mapstructure:"days"`
	CriticalDays  int           `mapstructure:"critical_days"`
	BatchSize     int           `mapstructure:"batch_size"`
	BatchPause    time.Duration `mapstructure:"batch_pause"`
	CheckInterval time.Duration `mapstructure:"check_interval"`
	DailyHour     int           `mapstructure:"daily_hour"`
	Compact       bool          `mapstructure:"compact"`
	SessionMaxAge time.Duration `mapstructure:"session_max_age"`
	TempDir       string        `mapstructure:"temp_dir"`
	TempMaxAge    time.Duration `mapstructure:"temp_max_age"`
	LogDir        string        `mapstructure:"log_dir"`
	LogMaxAge     time.Duration `mapstructure:"log_max_age"`
	BackupDir     string        `mapstructure:"backup_dir"`
	BackupMaxAge  time.Duration `mapstructure:"backup_max_age"`
	AnnualBackup  bool          `mapstructure:"annual_backup"`
}

// Notifications controls purging. RetentionDays of zero keeps notifications forever.
type Notifications struct {
	RetentionDays int  `mapstructure:"retention_days"`
	PurgeReadOnly bool `mapstructure:"purge_read_only"`
}

func Load(cfgFile string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.go-helpdesk-audit")
		v.AddConfigPath("/etc/go-helpdesk-audit")
	}

	v.SetEnvPrefix("GO_HELPDESK_AUDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("database.user", "DB_USER")
	_ = v.BindEnv("database.password", "DB_PASS")
	_ = v.BindEnv("mail.smtp_server", "GO_HELPDESK_AUDIT_MAIL_SMTP_SERVER", "SMTP_SERVER")
	_ = v.BindEnv("mail.smtp_port", "GO_HELPDESK_AUDIT_MAIL_SMTP_PORT", "SMTP_PORT")
	_ = v.BindEnv("mail.user", "GO_HELPDESK_AUDIT_MAIL_USER", "EMAIL_USER")
	_ = v.BindEnv("mail.password", "GO_HELPDESK_AUDIT_MAIL_PASSWORD", "EMAIL_PASSWORD")
	_ = v.BindEnv("mail.from_name", "GO_HELPDESK_AUDIT_MAIL_FROM_NAME", "EMAIL_FROM_NAME")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	cfg = applyDSNDefaults(cfg)
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 0)
	v.SetDefault("database.connect_timeout", "5s")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conn_lifetime", "30m")
	v.SetDefault("database.max_conn_idle_time", "5m")
	v.SetDefault("database.health_check_period", "1m")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", "5s")
	v.SetDefault("server.write_timeout", "45s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("nats.stream", "helpdesk")
	v.SetDefault("nats.audit_subject", "audit.entry.created")
	v.SetDefault("nats.notification_subject", "notification.created")
	v.SetDefault("nats.consumer_durable", "audit-tail")
	v.SetDefault("nats.ack_wait", "30s")
	v.SetDefault("nats.max_ack_pending", 256)
	v.SetDefault("mail.smtp_server", "smtp.gmail.com")
	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("mail.from_name", "Sistema Helpdesk Aurum")
	v.SetDefault("mail.use_tls", true)
	v.SetDefault("mail.timeout", "30s")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.cookie_name", "session_id")
	v.SetDefault("audit.export_limit", 1000)
	v.SetDefault("audit.page_size", 50)
	v.SetDefault("audit.top_n", 10)
	v.SetDefault("retention.in_process", true)
	v.SetDefault("retention.days", 90)
	v.SetDefault("retention.critical_days", 180)
	v.SetDefault("retention.batch_size", 1000)
	v.SetDefault("retention.batch_pause", "100ms")
	v.SetDefault("retention.check_interval", "1h")
	v.SetDefault("retention.daily_hour", 2)
	v.SetDefault("retention.compact", true)
	v.SetDefault("retention.session_max_age", "24h")
	v.SetDefault("retention.temp_dir", "tmp")
	v.SetDefault("retention.temp_max_age", "24h")
	v.SetDefault("retention.log_dir", "logs")
	v.SetDefault("retention.log_max_age", "720h")
	v.SetDefault("retention.backup_dir", "backups")
	v.SetDefault("retention.backup_max_age", "168h")
	v.SetDefault("retention.annual_backup", true)
	v.SetDefault("notifications.retention_days", 0)
	v.SetDefault("notifications.purge_read_only", true)
	v.SetDefault("environment", "dev")
}

func applyDSNDefaults(cfg Config) Config {
	if cfg.Database.WriteDSN == "" && cfg.Database.Host != "" && cfg.Database.Name != "" {
		cfg.Database.WriteDSN = buildDSN(cfg.Database.Host, cfg.Database.Port, cfg.Database.Name, cfg.Database.User, cfg.Database.Password, cfg.Database.SSLMode)
	}
	if cfg.Database.ReadDSN == "" {
		readHost := cfg.Database.ReadHost
		if readHost == "" {
			readHost = cfg.Database.Host
		}
		if readHost != "" && cfg.Database.Name != "" {
			cfg.Database.ReadDSN = buildDSN(readHost, cfg.Database.Port, cfg.Database.Name, cfg.Database.User, cfg.Database.Password, cfg.Database.SSLMode)
		}
	}
	return cfg
}

func buildDSN(host string, port int, name, user, password, sslmode string) string {
	if sslmode == "" {
		sslmode = "disable"
	}
	creds := ""
	if user != "" {
		creds = user
		if password != "" {
			creds += ":" + password
		}
		creds += "@"
	}
	return "postgres://" + creds + host + ":" + fmt.Sprintf("%d", port) + "/" + name + "?sslmode=" + sslmode
}
