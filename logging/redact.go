package logging

import (
	"strings"

	"github.com/sirupsen/logrus"
)

const redacted = "[REDACTED]"

// sensitiveKeys are field names whose values never reach a sink.
var sensitiveKeys = []string{"password", "secret", "token", "session_material", "mfa_code"}

// RedactHook masks sensitive fields before any formatter sees them.
type RedactHook struct{}

// Levels implements logrus.Hook.
func (RedactHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook.
func (RedactHook) Fire(entry *logrus.Entry) error {
	for key := range entry.Data {
		if isSensitive(key) {
			entry.Data[key] = redacted
		}
	}
	return nil
}

func isSensitive(key string) bool {
	k := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}
