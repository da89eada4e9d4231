package config

import (
	"errors"
	"flag"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Addr              string
	DBUrl             string
	TokenSecret       string
	TokenTTL          time.Duration
	AdminUser         string
	AdminPasswordHash string
	Debug             bool

	// Duplicate matching policy. All off means exact string equality.
	DupFoldCase   bool
	DupTrimSpace  bool
	DupPerElement bool
}

func ParseFlags() (cfg Config, err error) {
	var host string
	flag.StringVar(&host, "host", envOr("GFORM_HOST", "0.0.0.0"), "listen host name (default 0.0.0.0)")
	var port uint
	flag.UintVar(&port, "port", envUintOr("GFORM_PORT", 80), "listen port number (default 80)")
	flag.StringVar(&cfg.DBUrl, "db-url", envOr("GFORM_DB_URL", "gform.sqlite"), "path to SQLite3 DB file (default gform.sqlite)")
	flag.StringVar(&cfg.TokenSecret, "token-secret", envOr("GFORM_TOKEN_SECRET", ""), "secret key for token encryption and decryption")
	var ttl uint
	flag.UintVar(&ttl, "token-ttl", envUintOr("GFORM_TOKEN_TTL", 120), "token TTL in seconds (default 120)")
	flag.StringVar(&cfg.AdminUser, "admin-user", envOr("GFORM_ADMIN_USER", "admin"), "admin panel username (default admin)")
	flag.StringVar(&cfg.AdminPasswordHash, "admin-pass-hash", envOr("GFORM_ADMIN_PASS_HASH", ""), "bcrypt hash of the admin panel password")
	flag.BoolVar(&cfg.DupFoldCase, "dup-fold-case", envBool("GFORM_DUP_FOLD_CASE"), "ignore letter case when matching duplicate answers")
	flag.BoolVar(&cfg.DupTrimSpace, "dup-trim-space", envBool("GFORM_DUP_TRIM_SPACE"), "ignore leading/trailing whitespace when matching duplicate answers")
	flag.BoolVar(&cfg.DupPerElement, "dup-per-element", envBool("GFORM_DUP_PER_ELEMENT"), "also match duplicates against elements of multi-valued answers")
	flag.BoolVar(&cfg.Debug, "debug", envBool("GFORM_DEBUG"), "log at DEBUG level")
	flag.Parse()

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second

	if cfg.TokenSecret == "" {
		err = errors.New("missing parameter -token-secret")
		return
	}
	if cfg.AdminPasswordHash == "" {
		err = errors.New("missing parameter -admin-pass-hash")
	}

	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envUintOr(key string, fallback uint) uint {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			return uint(n)
		}
	}
	return fallback
}

func envBool(key string) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return false
	}
	b, _ := strconv.ParseBool(v)
	return b
}
