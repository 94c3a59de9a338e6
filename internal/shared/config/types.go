package config

import "fmt"

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
	RefreshExpDays   int    `mapstructure:"refresh_exp_days"`
}

type AuthConfig struct {
	JWT        JWTConfig `mapstructure:"jwt"`
	BcryptCost int       `mapstructure:"bcrypt_cost"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MediaConfig carries every path and tool setting the rendition pipeline
// needs. It is passed into constructors explicitly; no package keeps
// process-wide upload directories.
type MediaConfig struct {
	UploadRoot         string `mapstructure:"upload_root"`
	PublicPrefix       string `mapstructure:"public_prefix"`
	FFmpegPath         string `mapstructure:"ffmpeg_path"`
	FFprobePath        string `mapstructure:"ffprobe_path"`
	EncodeTimeoutMin   int    `mapstructure:"encode_timeout_minutes"`
	AbortOnTierFailure bool   `mapstructure:"abort_on_tier_failure"`
	DefaultLanguage    string `mapstructure:"default_language"`
}

type WorkerConfig struct {
	TranscodeWorkers int `mapstructure:"transcode_workers"`
	QueueSize        int `mapstructure:"queue_size"`
	FlushIntervalMin int `mapstructure:"flush_interval_minutes"`
}
