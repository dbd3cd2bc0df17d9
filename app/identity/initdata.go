package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMalformedInitData is returned when the raw query cannot be decoded.
	ErrMalformedInitData = errors.New("malformed init data")
	// ErrSignatureMissing is returned when init data carries no hash.
	ErrSignatureMissing = errors.New("init data signature missing")
	// ErrSignatureInvalid is returned when the hash does not match the bot token.
	ErrSignatureInvalid = errors.New("init data signature invalid")
	// ErrExpired is returned when auth_date is older than the allowed age.
	ErrExpired = errors.New("init data expired")
)

// ParseInitData decodes the raw init data query string passed to a Mini App.
func ParseInitData(raw string) (*InitData, error) {
	values, err := url.ParseQuery(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInitData, err)
	}
	out := &InitData{
		ChatInstance: values.Get("chat_instance"),
		ChatType:     values.Get("chat_type"),
		QueryID:      values.Get("query_id"),
		StartParam:   values.Get("start_param"),
		Hash:         values.Get("hash"),
	}
	if ts := values.Get("auth_date"); ts != "" {
		sec, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: auth_date: %v", ErrMalformedInitData, err)
		}
		out.AuthDate = time.Unix(sec, 0).UTC()
	}
	if u := values.Get("user"); u != "" {
		var user User
		if err := json.Unmarshal([]byte(u), &user); err != nil {
			return nil, fmt.Errorf("%w: user: %v", ErrMalformedInitData, err)
		}
		out.User = &user
	}
	return out, nil
}

// Sign computes the Telegram WebApp hash of values for the given bot token.
func Sign(values url.Values, botToken string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k != "hash" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+values.Get(k))
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks the hash of raw init data against botToken. A positive maxAge
// additionally rejects snapshots whose auth_date is older than maxAge at now.
func Verify(raw, botToken string, maxAge time.Duration, now time.Time) error {
	values, err := url.ParseQuery(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedInitData, err)
	}
	got := values.Get("hash")
	if got == "" {
		return ErrSignatureMissing
	}
	want := Sign(values, botToken)
	if !hmac.Equal([]byte(strings.ToLower(got)), []byte(want)) {
		return ErrSignatureInvalid
	}
	if maxAge <= 0 {
		return nil
	}
	sec, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: auth_date: %v", ErrMalformedInitData, err)
	}
	if now.Sub(time.Unix(sec, 0)) > maxAge {
		return ErrExpired
	}
	return nil
}
