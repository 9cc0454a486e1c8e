package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	LogLevel   string        `mapstructure:"log_level"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	Secret     string        `mapstructure:"secret"`

	Backend BackendConfig `mapstructure:"backend"`
	Signal  SignalConfig  `mapstructure:"signal"`
	Devices DevicesConfig `mapstructure:"devices"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Feed    FeedConfig    `mapstructure:"feed"`
}

type BackendConfig struct {
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SignalConfig struct {
	URL         string        `mapstructure:"url"`
	ICEServers  []string      `mapstructure:"ice_servers"`
	JoinTimeout time.Duration `mapstructure:"join_timeout"`
	SendBuffer  int           `mapstructure:"send_buffer"`
}

type DevicesConfig struct {
	Width        int     `mapstructure:"width"`
	Height       int     `mapstructure:"height"`
	FrameRate    float64 `mapstructure:"frame_rate"`
	VideoBitrate int     `mapstructure:"video_bitrate"`
	MTU          int     `mapstructure:"mtu"`
}

// ChatConfig limits chat messages and reactions per client.
type ChatConfig struct {
	Limit    int           `mapstructure:"limit"`
	Interval time.Duration `mapstructure:"interval"`
	MaxLen   int           `mapstructure:"max_len"`
}

type FeedConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// Load reads config/config.<CONFIG_ENV>.yaml. LIVEROOM_* variables override
// file values, e.g. LIVEROOM_BACKEND_URL.
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("LIVEROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Backend: %s\n", cfg.Mode, cfg.Port, cfg.Backend.URL)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("secret", "liveroom-dev-secret")

	v.SetDefault("backend.url", "http://localhost:5000/api")
	v.SetDefault("backend.token", "")
	v.SetDefault("backend.timeout", "10s")

	v.SetDefault("signal.url", "ws://localhost:8081/api/ws/signal")
	v.SetDefault("signal.ice_servers", []string{"stun:stun.l.google.com:19302"})
	v.SetDefault("signal.join_timeout", "15s")
	v.SetDefault("signal.send_buffer", 64)

	v.SetDefault("devices.width", 1280)
	v.SetDefault("devices.height", 720)
	v.SetDefault("devices.frame_rate", 30)
	v.SetDefault("devices.video_bitrate", 1_500_000)
	v.SetDefault("devices.mtu", 1200)

	v.SetDefault("chat.limit", 5)
	v.SetDefault("chat.interval", "5s")
	v.SetDefault("chat.max_len", 500)

	v.SetDefault("feed.debounce", "100ms")
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Chat.Limit <= 0 || c.Chat.Interval <= 0 {
		return fmt.Errorf("invalid chat limit %d per %s", c.Chat.Limit, c.Chat.Interval)
	}
	return nil
}
