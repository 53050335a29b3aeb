package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"github.com/tidwall/jsonc"
)

// Document is the downstream tool's JSON configuration. Only the
// credentials section is ever interpreted; every other key round-trips.
type Document map[string]interface{}

// CredentialsKey is the top-level key holding the credential record.
const CredentialsKey = "credentials"

// CredentialRecord is the username/password pair stored in a Document.
type CredentialRecord struct {
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
}

// parseDocument accepts JSON with comments and trailing commas. The
// top level must be an object. Numbers stay json.Number so untouched keys
// are written back exactly as they were read.
func parseDocument(data []byte) (Document, error) {
	stripped := jsonc.ToJSON(data)
	if len(bytes.TrimSpace(stripped)) == 0 {
		return nil, fmt.Errorf("document is empty")
	}

	dec := json.NewDecoder(bytes.NewReader(stripped))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("parsing document: trailing data after top-level value")
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("document top level is %T, not an object", raw)
	}
	return Document(obj), nil
}

// WithCredentials returns a copy of d with credentials.username and
// credentials.password set. Sibling keys inside credentials are kept; a
// credentials value that is not an object is replaced.
func (d Document) WithCredentials(username, password string) Document {
	out := make(Document, len(d)+1)
	for k, v := range d {
		out[k] = v
	}

	creds := map[string]interface{}{}
	if existing, ok := d[CredentialsKey].(map[string]interface{}); ok {
		for k, v := range existing {
			creds[k] = v
		}
	}
	creds["username"] = username
	creds["password"] = password
	out[CredentialsKey] = creds
	return out
}

// Credentials decodes the credentials section.
func (d Document) Credentials() (CredentialRecord, error) {
	var rec CredentialRecord
	section, ok := d[CredentialsKey]
	if !ok {
		return rec, fmt.Errorf("document has no %s section", CredentialsKey)
	}
	if err := mapstructure.Decode(section, &rec); err != nil {
		return rec, fmt.Errorf("decoding %s: %w", CredentialsKey, err)
	}
	return rec, nil
}

func encodeDocument(d Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeFileAtomic replaces path with data via a temp file in the same
// directory, so readers never observe a partial document.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, fmt.Sprintf(".%s.tmp-*", filepath.Base(path)))
	if err != nil {
		return err
	}
	tmp := tmpFile.Name()
	cleanupTmp := true
	defer func() {
		if cleanupTmp {
			_ = os.Remove(tmp)
		}
	}()

	if err := tmpFile.Chmod(perm); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	cleanupTmp = false
	return nil
}
