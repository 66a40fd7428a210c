package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ParsedDatabaseURL holds the components of a postgres connection URL.
// Options carries any query parameters besides sslmode.
type ParsedDatabaseURL struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	Options  map[string]string
}

// ParseDatabaseURL splits a postgres:// or postgresql:// connection URL
// into its components. The port defaults to 5432 and sslmode to disable
// when absent.
func ParseDatabaseURL(rawURL string) (*ParsedDatabaseURL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return nil, fmt.Errorf("unsupported database URL scheme %q", u.Scheme)
	}

	p := &ParsedDatabaseURL{
		Host:    u.Hostname(),
		Port:    5432,
		SSLMode: "disable",
		Options: make(map[string]string),
	}

	if portStr := u.Port(); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid port in database URL: %w", err)
		}
		p.Port = port
	}

	if u.User != nil {
		p.User = u.User.Username()
		p.Password, _ = u.User.Password()
	}

	p.Database = strings.TrimPrefix(u.Path, "/")

	for key, values := range u.Query() {
		if len(values) == 0 {
			continue
		}
		if key == "sslmode" {
			p.SSLMode = values[0]
			continue
		}
		p.Options[key] = values[0]
	}

	return p, nil
}

// ToDSN renders the components as a libpq keyword/value string, the form
// lib/pq and sqlx.Connect expect.
func (p *ParsedDatabaseURL) ToDSN() string {
	var b strings.Builder
	fmt.Fprintf(&b, "host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
	for key, value := range p.Options {
		fmt.Fprintf(&b, " %s=%s", key, value)
	}
	return b.String()
}

// ToURL renders the components back as a postgres:// URL.
func (p *ParsedDatabaseURL) ToURL() string {
	query := url.Values{}
	query.Set("sslmode", p.SSLMode)
	for key, value := range p.Options {
		query.Set(key, value)
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:     "/" + p.Database,
		RawQuery: query.Encode(),
	}
	return u.String()
}
