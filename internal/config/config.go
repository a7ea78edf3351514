package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"scope3-dict/internal/dictionary/model"
	"scope3-dict/internal/dictionary/service"
)

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	MaxUploadMB  int
	LogFile      string

	SourceMarker string   // маркер источника в метке категории
	LabelPrefix  string   // префикс, срезаемый с метки без кода
	Stopwords    []string // стоп-слова для извлечения ключевых слов
	MatchWorkers int      // 0: по числу CPU
}

// SetDefaults регистрирует значения по умолчанию и переменные окружения SCOPE3_*.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 8082)
	v.SetDefault("allow_origins", "*")
	v.SetDefault("log_level", "info")
	v.SetDefault("max_upload_mb", 64)
	v.SetDefault("log_file", "logs/scope3-dict.log")
	v.SetDefault("learn.source_marker", service.DefaultSourceMarker)
	v.SetDefault("learn.label_prefix", service.DefaultLabelPrefix)
	v.SetDefault("extract.stopwords", service.DefaultStopwords)
	v.SetDefault("match.workers", 0)

	v.SetEnvPrefix("SCOPE3")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load читает конфиг: файл (если указан или найден рядом), затем окружение.
func Load(file string) (Config, error) {
	v := viper.New()
	SetDefaults(v)
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("scope3")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return FromViper(v), nil
}

func FromViper(v *viper.Viper) Config {
	return Config{
		Host:         v.GetString("host"),
		Port:         v.GetInt("port"),
		AllowOrigins: splitList(v.GetStringSlice("allow_origins")),
		LogLevel:     v.GetString("log_level"),
		MaxUploadMB:  v.GetInt("max_upload_mb"),
		LogFile:      v.GetString("log_file"),
		SourceMarker: v.GetString("learn.source_marker"),
		LabelPrefix:  v.GetString("learn.label_prefix"),
		Stopwords:    splitList(v.GetStringSlice("extract.stopwords")),
		MatchWorkers: v.GetInt("match.workers"),
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func (c Config) Options() model.Options {
	return model.Options{
		SourceMarker: c.SourceMarker,
		LabelPrefix:  c.LabelPrefix,
		Stopwords:    c.Stopwords,
	}
}

// splitList: из окружения приходит "a,b,c" одной строкой.
func splitList(in []string) []string {
	out := []string{}
	for _, s := range in {
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
