package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Duration time.Duration для JSON: принимает строку ("90s", "1h") или число наносекунд
type Duration struct {
	time.Duration
}

// UnmarshalJSON разбирает строку или число
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := parseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}

// MarshalJSON записывает длительность строкой
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

// jsonConfig структура JSON файла. Отсутствующие поля не меняют текущих значений.
type jsonConfig struct {
	SMTP *struct {
		Host     *string `json:"host"`
		Username *string `json:"username"`
		Password *string `json:"password"`
		From     *string `json:"from"`
		Port     *int    `json:"port"`
	} `json:"smtp"`
	S3 *struct {
		Endpoint  *string   `json:"endpoint"`
		Region    *string   `json:"region"`
		Bucket    *string   `json:"bucket"`
		AccessKey *string   `json:"access_key"`
		SecretKey *string   `json:"secret_key"`
		URLExpiry *Duration `json:"url_expiry"`
	} `json:"s3"`
	Addr             *string   `json:"addr"`
	Driver           *string   `json:"driver"`
	DSN              *string   `json:"dsn"`
	JWTSecret        *string   `json:"jwt_secret"`
	JWTIssuer        *string   `json:"jwt_issuer"`
	JWTAudience      *string   `json:"jwt_audience"`
	PublicURL        *string   `json:"public_url"`
	LogLevel         *string   `json:"log_level"`
	LogFormat        *string   `json:"log_format"`
	CleanupInterval  *Duration `json:"cleanup_interval"`
	RateWindow       *Duration `json:"rate_window"`
	ShutdownTimeout  *Duration `json:"shutdown_timeout"`
	JWTExpiryMinutes *int      `json:"jwt_expiry_minutes"`
	RateLimit        *int      `json:"rate_limit"`
}

func applyJSONFile(c *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	jc.apply(c)
	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *Duration) {
	if v != nil {
		*dst = v.Duration
	}
}

func (jc *jsonConfig) apply(c *Config) {
	setIf(&c.Addr, jc.Addr)
	setIf(&c.Driver, jc.Driver)
	setIf(&c.DSN, jc.DSN)
	setIf(&c.JWTSecret, jc.JWTSecret)
	setIf(&c.JWTIssuer, jc.JWTIssuer)
	setIf(&c.JWTAudience, jc.JWTAudience)
	setIf(&c.JWTExpiryMinutes, jc.JWTExpiryMinutes)
	setIf(&c.PublicURL, jc.PublicURL)
	setIf(&c.LogLevel, jc.LogLevel)
	setIf(&c.LogFormat, jc.LogFormat)
	setIf(&c.RateLimit, jc.RateLimit)
	setDuration(&c.CleanupInterval, jc.CleanupInterval)
	setDuration(&c.RateWindow, jc.RateWindow)
	setDuration(&c.ShutdownTimeout, jc.ShutdownTimeout)

	if s := jc.SMTP; s != nil {
		setIf(&c.SMTP.Host, s.Host)
		setIf(&c.SMTP.Port, s.Port)
		setIf(&c.SMTP.Username, s.Username)
		setIf(&c.SMTP.Password, s.Password)
		setIf(&c.SMTP.From, s.From)
	}

	if s := jc.S3; s != nil {
		setIf(&c.S3.Endpoint, s.Endpoint)
		setIf(&c.S3.Region, s.Region)
		setIf(&c.S3.Bucket, s.Bucket)
		setIf(&c.S3.AccessKey, s.AccessKey)
		setIf(&c.S3.SecretKey, s.SecretKey)
		setDuration(&c.S3.URLExpiry, s.URLExpiry)
	}
}
