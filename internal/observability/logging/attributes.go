package logging

import (
	"log/slog"
	"net/url"
	"regexp"
)

// RedactedStringURL is a string containing a URL for safe logging
type RedactedStringURL string

// LogValue implements slog.LogValuer to avoid revealing userinfo passwords
func (s RedactedStringURL) LogValue() slog.Value {
	u, err := url.Parse(string(s))
	if err != nil {
		return slog.StringValue(string(s))
	}
	return slog.StringValue(u.Redacted())
}

// RedactStringURL returns a safely loggable URL string
func RedactStringURL(s string) slog.LogValuer {
	return RedactedStringURL(s)
}

// dsnUserPass matches the user:password@ prefix of a MySQL DSN
var dsnUserPass = regexp.MustCompile(`(?P<User>[^:@/]+):[^@]+@`)

// RedactedMysqlDSN is a string containing a MySQL DSN for safe logging
type RedactedMysqlDSN string

// LogValue implements slog.LogValuer to avoid revealing the rule-store password
func (s RedactedMysqlDSN) LogValue() slog.Value {
	if dsnUserPass.MatchString(string(s)) {
		return slog.StringValue(dsnUserPass.ReplaceAllString(string(s), `${User}:xxxxx@`))
	}
	return slog.StringValue(string(s))
}

// RedactMysqlDSN returns a safely loggable MySQL DSN
func RedactMysqlDSN(s string) slog.LogValuer {
	return RedactedMysqlDSN(s)
}
