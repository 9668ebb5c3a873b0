package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// DSN resolves the driver connection string. A full DATABASE_URL takes
// priority; otherwise one is assembled from the discrete host/port/user/
// password/database parts. The password is percent-encoded when embedded so
// special characters cannot corrupt the URL.
func (d DatabaseConfig) DSN() (string, error) {
	raw := d.URL
	if raw == "" {
		u := url.URL{
			Scheme: "mysql",
			User:   url.UserPassword(d.User, d.Password),
			Host:   net.JoinHostPort(d.Host, d.Port),
			Path:   "/" + d.Name,
		}
		raw = u.String()
	}
	return dsnFromURL(raw)
}

// dsnFromURL converts a mysql:// URL into the driver's DSN format. The legacy
// mysql2:// scheme handed out by some cloud providers is rewritten first.
func dsnFromURL(raw string) (string, error) {
	if rest, ok := strings.CutPrefix(raw, "mysql2://"); ok {
		raw = "mysql://" + rest
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}
	if u.Scheme != "mysql" {
		return "", fmt.Errorf("unsupported database url scheme %q", u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		host = "localhost"
	}
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, port)
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	if u.User != nil {
		cfg.User = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			cfg.Passwd = pw
		}
	}
	// Scan DATETIME columns into time.Time so timestamps marshal as RFC 3339.
	cfg.ParseTime = true

	return cfg.FormatDSN(), nil
}
