package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Upload  UploadConfig  `mapstructure:"upload"`
	Segment SegmentConfig `mapstructure:"segment"`
	Client  ClientConfig  `mapstructure:"client"`
	Studio  StudioConfig  `mapstructure:"studio"`
	Editor  EditorConfig  `mapstructure:"editor"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	TTL       time.Duration `mapstructure:"ttl"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

type UploadConfig struct {
	MaxSize      int64    `mapstructure:"max_size"`
	UploadDir    string   `mapstructure:"upload_dir"`
	AllowedTypes []string `mapstructure:"allowed_types"`
}

// SegmentConfig 点选分割参数
type SegmentConfig struct {
	Iterations   int `mapstructure:"iterations"`
	WindowRadius int `mapstructure:"window_radius"`
	KernelSize   int `mapstructure:"kernel_size"`
}

// ClientConfig 远端着色服务的访问参数
type ClientConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Paths   ClientPaths   `mapstructure:"paths"`
}

type ClientPaths struct {
	Upload    string `mapstructure:"upload"`
	Segment   string `mapstructure:"segment"`
	Composite string `mapstructure:"composite"`
	Download  string `mapstructure:"download"`
}

type StudioConfig struct {
	Port    string `mapstructure:"port"`
	MaxSize int64  `mapstructure:"max_size"`
}

// EditorConfig 编辑参数初始值
type EditorConfig struct {
	Color        string  `mapstructure:"color"`
	Opacity      float64 `mapstructure:"opacity"`
	DownloadName string  `mapstructure:"download_name"`
}

// Load 从 YAML 文件加载配置
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("walltint")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 设置默认值
	setDefaults(v)

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// New 加载指定路径的配置，失败时返回默认配置
func New(configPath string) *Config {
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := Load(configPath)
	if err != nil {
		return getDefaultConfig()
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":5000")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)
	v.SetDefault("redis.key_prefix", "walltint")

	v.SetDefault("upload.max_size", 20*1024*1024)
	v.SetDefault("upload.upload_dir", "./uploads")
	v.SetDefault("upload.allowed_types", []string{"image/jpeg", "image/png", "image/jpg", "image/webp", "image/bmp", "image/tiff"})

	v.SetDefault("segment.iterations", 5)
	v.SetDefault("segment.window_radius", 160)
	v.SetDefault("segment.kernel_size", 3)

	v.SetDefault("client.base_url", "http://127.0.0.1:5000")
	v.SetDefault("client.timeout", 0)
	v.SetDefault("client.paths.upload", "/upload")
	v.SetDefault("client.paths.segment", "/generate_masks")
	v.SetDefault("client.paths.composite", "/apply_color")
	v.SetDefault("client.paths.download", "/download")

	v.SetDefault("studio.port", ":5173")
	v.SetDefault("studio.max_size", 20*1024*1024)

	v.SetDefault("editor.color", "#ff0000")
	v.SetDefault("editor.opacity", 0.6)
	v.SetDefault("editor.download_name", "colored_house.png")
}

func getDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         ":5000",
			Mode:         "debug",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			Password:  "",
			DB:        0,
			TTL:       24 * time.Hour,
			KeyPrefix: "walltint",
		},
		Upload: UploadConfig{
			MaxSize:      20 * 1024 * 1024,
			UploadDir:    "./uploads",
			AllowedTypes: []string{"image/jpeg", "image/png", "image/jpg", "image/webp", "image/bmp", "image/tiff"},
		},
		Segment: SegmentConfig{
			Iterations:   5,
			WindowRadius: 160,
			KernelSize:   3,
		},
		Client: ClientConfig{
			BaseURL: "http://127.0.0.1:5000",
			Paths: ClientPaths{
				Upload:    "/upload",
				Segment:   "/generate_masks",
				Composite: "/apply_color",
				Download:  "/download",
			},
		},
		Studio: StudioConfig{
			Port:    ":5173",
			MaxSize: 20 * 1024 * 1024,
		},
		Editor: EditorConfig{
			Color:        "#ff0000",
			Opacity:      0.6,
			DownloadName: "colored_house.png",
		},
	}
}
