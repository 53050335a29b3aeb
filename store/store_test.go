package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/grovetools/syncgate/auth"
	"github.com/grovetools/syncgate/auth/authtest"
	"github.com/grovetools/syncgate/errors"
	"github.com/grovetools/syncgate/pkg/paths"
	"github.com/grovetools/syncgate/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, *authtest.FakeClient, *bytes.Buffer) {
	t.Helper()
	base := filepath.Join(t.TempDir(), ".GarminDb")
	client := authtest.NewFakeClient("alice@example.com", "s3cret")

	var logs bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&logs)
	logger.SetLevel(logrus.DebugLevel)

	return New(paths.NewLayout(base, "", ""), client, logrus.NewEntry(logger)), client, &logs
}

func readJSON(t *testing.T, path string) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(testutil.ReadFile(t, path)), &out))
	return out
}

func TestSessionExists(t *testing.T) {
	s, _, _ := newStore(t)
	assert.False(t, s.SessionExists())

	testutil.WriteFile(t, s.Layout().SessionDir, "a file, not a directory")
	assert.False(t, s.SessionExists())

	require.NoError(t, os.Remove(s.Layout().SessionDir))
	require.NoError(t, os.MkdirAll(s.Layout().SessionDir, 0700))
	assert.True(t, s.SessionExists())
}

func TestResumeSession(t *testing.T) {
	ctx := context.Background()

	t.Run("live session", func(t *testing.T) {
		s, client, _ := newStore(t)
		require.NoError(t, client.SaveFor(s.Layout().SessionDir, "alice@example.com"))

		session, err := s.ResumeSession(ctx)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", session.Username)
		assert.True(t, client.Called(auth.OpProbe))
	})

	t.Run("resume failure", func(t *testing.T) {
		s, client, _ := newStore(t)
		require.NoError(t, os.MkdirAll(s.Layout().SessionDir, 0700))

		_, err := s.ResumeSession(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeSessionInvalid))
		assert.False(t, client.Called(auth.OpProbe))
	})

	t.Run("resume succeeds but probe rejects", func(t *testing.T) {
		s, client, _ := newStore(t)
		require.NoError(t, client.SaveFor(s.Layout().SessionDir, "alice@example.com"))
		client.ProbeErr = fmt.Errorf("401 Unauthorized")

		_, err := s.ResumeSession(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeSessionInvalid))
		assert.Contains(t, err.Error(), "401 Unauthorized")
	})
}

func TestSaveSession(t *testing.T) {
	s, client, _ := newStore(t)
	session := &auth.Session{Username: "alice@example.com", Material: "tok"}

	require.NoError(t, s.SaveSession(context.Background(), session))
	assert.True(t, s.SessionExists())
	info, err := os.Stat(s.Layout().SessionDir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
	assert.Equal(t, "tok", testutil.ReadFile(t, filepath.Join(s.Layout().SessionDir, authtest.SessionFile)))

	// Overwrites prior content.
	require.NoError(t, s.SaveSession(context.Background(), &auth.Session{Material: "tok2"}))
	assert.Equal(t, "tok2", testutil.ReadFile(t, filepath.Join(s.Layout().SessionDir, authtest.SessionFile)))

	client.SaveErr = fmt.Errorf("disk full")
	err = s.SaveSession(context.Background(), session)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodePersistenceFailed))
}

func TestReadConfigDocument(t *testing.T) {
	tests := []struct {
		name    string
		content *string
		want    Document
	}{
		{name: "absent", content: nil, want: Document{}},
		{name: "empty", content: strPtr(""), want: Document{}},
		{name: "whitespace", content: strPtr("  \n"), want: Document{}},
		{name: "corrupt", content: strPtr("{not json"), want: Document{}},
		{name: "array", content: strPtr("[1,2]"), want: Document{}},
		{name: "string", content: strPtr(`"x"`), want: Document{}},
		{
			name:    "object",
			content: strPtr(`{"db": {"type": "sqlite"}}`),
			want:    Document{"db": map[string]interface{}{"type": "sqlite"}},
		},
		{
			name:    "comments and trailing commas",
			content: strPtr("{\n  // sync window\n  \"data\": {\"download_days\": 7,},\n}"),
			want:    Document{"data": map[string]interface{}{"download_days": json.Number("7")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newStore(t)
			path := s.Layout().ConfigDocument
			if tt.content != nil {
				testutil.WriteFile(t, path, *tt.content)
			}
			assert.Equal(t, tt.want, s.ReadConfigDocument(path))
		})
	}
}

func TestReadConfigDocumentWarnsWhenDiscarding(t *testing.T) {
	s, _, logs := newStore(t)
	path := s.Layout().ConfigDocument
	testutil.WriteFile(t, path, "{broken")

	s.ReadConfigDocument(path)
	assert.Contains(t, logs.String(), "Config document discarded")
}

func TestWriteCredentialsPreservesOtherKeys(t *testing.T) {
	s, _, logs := newStore(t)
	path := s.Layout().ConfigDocument
	testutil.WriteFile(t, path, `{
		"db": {"type": "sqlite"},
		"credentials": {"user": "legacy", "secure_password": false},
		"enabled_stats": {"monitoring": true}
	}`)

	doc := s.ReadConfigDocument(path)
	require.NoError(t, s.WriteCredentials(doc, "alice@example.com", "s3cret", path))

	got := readJSON(t, path)
	assert.Equal(t, map[string]interface{}{"type": "sqlite"}, got["db"])
	assert.Equal(t, map[string]interface{}{"monitoring": true}, got["enabled_stats"])
	assert.Equal(t, map[string]interface{}{
		"user":            "legacy",
		"secure_password": false,
		"username":        "alice@example.com",
		"password":        "s3cret",
	}, got["credentials"])

	assert.Contains(t, logs.String(), "Verified stored credentials")
	assert.Contains(t, logs.String(), "username=alice@example.com")
	assert.NotContains(t, logs.String(), "s3cret")
}

func TestWriteCredentialsOverCorruptDocument(t *testing.T) {
	s, _, _ := newStore(t)
	path := s.Layout().ConfigDocument
	testutil.WriteFile(t, path, "garbage{{")

	require.NoError(t, s.PersistCredentials("bob", "pw"))

	got := readJSON(t, path)
	assert.Equal(t, Document{
		"credentials": map[string]interface{}{"username": "bob", "password": "pw"},
	}, Document(got))
}

func TestWriteCredentialsKeepsNumbersAndTextVerbatim(t *testing.T) {
	s, _, _ := newStore(t)
	path := s.Layout().ConfigDocument
	testutil.WriteFile(t, path, `{"garmin_id": 12345678901234567891, "ratio": 1.0, "url": "a<b&c"}`)

	require.NoError(t, s.PersistCredentials("alice", "secret123"))

	written := testutil.ReadFile(t, path)
	assert.Contains(t, written, `"garmin_id": 12345678901234567891`)
	assert.Contains(t, written, `"ratio": 1.0`)
	assert.Contains(t, written, `"url": "a<b&c"`)
	assert.Contains(t, written, `"username": "alice"`)
}

func TestWriteCredentialsCreatesParentWithPrivateMode(t *testing.T) {
	s, _, _ := newStore(t)
	path := s.Layout().ConfigDocument

	require.NoError(t, s.PersistCredentials("bob", "pw"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".*.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestWriteCredentialsKeepsExistingMode(t *testing.T) {
	s, _, _ := newStore(t)
	path := s.Layout().ConfigDocument
	testutil.WriteFile(t, path, "{}")
	require.NoError(t, os.Chmod(path, 0640))

	require.NoError(t, s.PersistCredentials("bob", "pw"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())
}

func TestWriteCredentialsIsIdempotent(t *testing.T) {
	s, _, _ := newStore(t)
	path := s.Layout().ConfigDocument

	require.NoError(t, s.PersistCredentials("bob", "pw"))
	first := testutil.ReadFile(t, path)
	require.NoError(t, s.PersistCredentials("bob", "pw"))
	assert.Equal(t, first, testutil.ReadFile(t, path))
}

func TestWriteCredentialsFailure(t *testing.T) {
	s, _, _ := newStore(t)
	// A directory in place of the document makes the rename fail.
	require.NoError(t, os.MkdirAll(filepath.Join(s.Layout().ConfigDocument, "x"), 0700))

	err := s.PersistCredentials("bob", "pw")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodePersistenceFailed))
}

func TestDocumentWithCredentialsReplacesNonObject(t *testing.T) {
	doc := Document{"credentials": "oops", "x": 1}
	out := doc.WithCredentials("u", "p")

	assert.Equal(t, "oops", doc["credentials"], "input must not be mutated")
	rec, err := out.Credentials()
	require.NoError(t, err)
	assert.Equal(t, CredentialRecord{Username: "u", Password: "p"}, rec)
	assert.Equal(t, 1, out["x"])
}

func strPtr(s string) *string { return &s }
