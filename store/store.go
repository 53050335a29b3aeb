// Package store reads and writes the artifacts the downstream tool expects:
// the auth session directory and the JSON configuration document carrying
// the credential record.
package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/grovetools/syncgate/auth"
	"github.com/grovetools/syncgate/errors"
	"github.com/grovetools/syncgate/pkg/paths"
	"github.com/sirupsen/logrus"
)

// Store is the session store adapter for one filesystem layout.
type Store struct {
	layout paths.Layout
	client auth.Client
	logger *logrus.Entry
}

// New creates a Store.
func New(layout paths.Layout, client auth.Client, logger *logrus.Entry) *Store {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Store{layout: layout, client: client, logger: logger}
}

// Layout returns the paths the store operates on.
func (s *Store) Layout() paths.Layout {
	return s.layout
}

// SessionExists reports whether the session directory is present.
func (s *Store) SessionExists() bool {
	info, err := os.Stat(s.layout.SessionDir)
	return err == nil && info.IsDir()
}

// ResumeSession loads the saved session and proves it live with an
// authenticated probe. A loaded session alone is not trusted. Any failure
// is SESSION_INVALID.
func (s *Store) ResumeSession(ctx context.Context) (*auth.Session, error) {
	dir := s.layout.SessionDir
	session, err := s.client.Resume(ctx, dir)
	if err != nil {
		return nil, errors.SessionInvalid("failed to resume session", err).WithDetail("dir", dir)
	}

	username, err := s.client.Probe(ctx, session)
	if err != nil {
		return nil, errors.SessionInvalid("session invalid or expired", err).WithDetail("dir", dir)
	}
	session.Username = username
	return session, nil
}

// SaveSession writes session into the session directory, creating it if
// needed and replacing whatever was there.
func (s *Store) SaveSession(ctx context.Context, session *auth.Session) error {
	dir := s.layout.SessionDir
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.PersistenceFailed("session", dir, err)
	}
	if err := s.client.Save(ctx, session, dir); err != nil {
		return errors.PersistenceFailed("session", dir, err)
	}
	s.logger.WithField("dir", dir).Info("Session saved")
	return nil
}

// ReadConfigDocument returns the document at path. Absent, unreadable,
// empty, malformed and non-object files all yield an empty document.
func (s *Store) ReadConfigDocument(path string) Document {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WithError(err).WithField("path", path).Warn("Config document unreadable, starting from empty document")
		}
		return Document{}
	}

	doc, err := parseDocument(data)
	if err != nil {
		s.logger.WithError(err).WithField("path", path).Warn("Config document discarded, starting from empty document")
		return Document{}
	}
	return doc
}

// WriteCredentials merges the credential record into doc and writes it to
// path atomically, then reads the file back to verify the stored username.
// The password is never logged.
func (s *Store) WriteCredentials(doc Document, username, password, path string) error {
	merged := doc.WithCredentials(username, password)
	data, err := encodeDocument(merged)
	if err != nil {
		return errors.PersistenceFailed("credentials", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.PersistenceFailed("credentials", path, err)
	}

	perm := os.FileMode(0600)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := writeFileAtomic(path, data, perm); err != nil {
		return errors.PersistenceFailed("credentials", path, err)
	}

	return s.verifyCredentials(path, username)
}

func (s *Store) verifyCredentials(path, username string) error {
	written, err := os.ReadFile(path)
	if err != nil {
		return errors.PersistenceFailed("credentials", path, err)
	}
	doc, err := parseDocument(written)
	if err != nil {
		return errors.PersistenceFailed("credentials", path, err)
	}
	rec, err := doc.Credentials()
	if err != nil {
		return errors.PersistenceFailed("credentials", path, err)
	}
	if rec.Username != username {
		return errors.New(errors.ErrCodePersistenceFailed, "stored username does not match").
			WithDetail("path", path)
	}

	s.logger.WithFields(logrus.Fields{"path": path, "username": rec.Username}).Info("Verified stored credentials")
	return nil
}

// PersistCredentials read-merge-writes the credential record into the
// layout's configuration document.
func (s *Store) PersistCredentials(username, password string) error {
	path := s.layout.ConfigDocument
	return s.WriteCredentials(s.ReadConfigDocument(path), username, password, path)
}
