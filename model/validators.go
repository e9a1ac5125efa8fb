package model

import (
	"strings"

	"github.com/pkg/errors"
)

const (
	usernameMinLength = 3
	usernameMaxLength = 30
)

// reservedUsernames collects names that must never become handles: hostnames
// with special meaning, common protocol and RFC 2142 mailbox names, no-reply
// addresses and route segments the web frontend owns.
var reservedUsernames = map[string]bool{}

func init() {
	for _, names := range [][]string{
		// special hostnames
		{"autoconfig", "autodiscover", "broadcasthost", "isatap", "localdomain", "localhost", "wpad"},
		// protocol hostnames
		{"css", "ftp", "html", "http", "https", "imap", "ip", "iscsi", "js", "mail",
			"news", "ntp", "pop", "pop3", "smtp", "tcp", "udp", "usenet", "uucp", "webmail", "www"},
		// certificate authority verification addresses
		{"admin", "administrator", "hostmaster", "info", "is", "it", "mis", "postmaster",
			"root", "ssladmin", "ssladministrator", "sslwebmaster", "sysadmin", "webmaster"},
		// RFC 2142
		{"abuse", "marketing", "noc", "sales", "security", "support"},
		// no-reply addresses
		{"mailer-daemon", "nobody", "noreply", "no-reply"},
		// route segments and other sensitive names
		{"account", "accounts", "auth", "authorize", "blog", "buy", "cart", "clients",
			"config", "contact", "contactus", "contact-us", "copyright", "dashboard",
			"doc", "docs", "download", "downloads", "enquiry", "faq", "help", "inquiry",
			"information", "license", "login", "logout", "me", "myaccount", "moderator",
			"oauth", "pay", "payment", "payments", "plans", "portfolio", "preferences",
			"pricing", "privacy", "profile", "puls", "register", "reply", "report",
			"secure", "settings", "shop", "shopping", "signin", "signup", "ssl",
			"status", "store", "subscribe", "terms", "test", "tos", "user", "users",
			"weblog", "work"},
	} {
		for _, name := range names {
			reservedUsernames[name] = true
		}
	}
}

// ValidateUsername rejects reserved, malformed or out-of-bounds handles. The
// failure is a field-level validation error, recoverable by resubmission.
func ValidateUsername(username string) error {
	if len(username) < usernameMinLength || len(username) > usernameMaxLength {
		return errors.Errorf("username must be between %d and %d characters", usernameMinLength, usernameMaxLength)
	}
	lower := strings.ToLower(username)
	if reservedUsernames[lower] || strings.HasPrefix(lower, ".well-known") {
		return errors.Errorf("username %q is reserved and cannot be registered", username)
	}
	for _, r := range username {
		if !isUsernameRune(r) {
			return errors.Errorf("username may only contain letters, digits, '.', '-' and '_'")
		}
	}
	return nil
}

func isUsernameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '-', r == '_':
		return true
	}
	return false
}
