// Package utils holds small parsing helpers shared by the config loader and
// the Postgres repositories.
package utils

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// ParseDurationEnv reads a duration out of an environment value. Both Go
// duration syntax and a bare number of seconds are accepted, so
// REMINDER_INTERVAL=90 and REMINDER_INTERVAL=90s mean the same thing.
func ParseDurationEnv(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	// Some deployment tooling writes env values with the quotes included.
	if n := len(s); n >= 2 {
		if (s[0] == '"' && s[n-1] == '"') || (s[0] == '\'' && s[n-1] == '\'') {
			s = s[1 : n-1]
		}
	}
	if s == "" {
		return 0, errors.New("empty duration")
	}

	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("duration must be like 90s, 5m or a number of seconds: %w", err)
	}
	return d, nil
}

// ParseRedisURL splits a redis:// or rediss:// URL into the host:port,
// password and database number the client options need. REDIS_URL is the
// form managed Redis providers hand out, so it takes precedence over the
// discrete REDIS_* variables.
func ParseRedisURL(s string) (addr, password string, db int, err error) {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", "", 0, err
	}
	switch u.Scheme {
	case "redis", "rediss":
	default:
		return "", "", 0, fmt.Errorf("scheme must be redis or rediss, got %q", u.Scheme)
	}
	if u.Host == "" {
		return "", "", 0, errors.New("missing host in Redis URL")
	}
	addr = u.Host
	if u.User != nil {
		password, _ = u.User.Password()
	}
	// The path selects the database: redis://host:6379/2 means DB 2.
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		db, _ = strconv.Atoi(p)
	}
	return addr, password, db, nil
}

// IsPGUniqueViolation reports whether err is Postgres error 23505, a unique
// constraint violation. The user repository maps it to the duplicate-email
// sentinel.
func IsPGUniqueViolation(err error) bool {
	var pge *pgconn.PgError
	return errors.As(err, &pge) && pge.Code == "23505"
}
