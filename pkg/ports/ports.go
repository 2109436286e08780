/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package ports reads and rewrites port properties of JSON config files in
// dependent repositories.
//
// Properties are addressed by dotted paths with optional array indexes,
// e.g. "server.port" or "services[0].port". Rewrites replace the whole file
// with two-space indentation; key order is preserved. Writes are not
// atomic.
package ports

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/NVIDIA/devhosts/pkg/config"
	cnserrors "github.com/NVIDIA/devhosts/pkg/errors"
)

const indent = "  "

// Value is the raw JSON encoding of a port, so a port stored as a string
// is propagated as a string.
type Value string

// IntValue returns the Value of a numeric port.
func IntValue(port int) Value {
	return Value(strconv.Itoa(port))
}

// String returns the raw JSON text.
func (v Value) String() string {
	return string(v)
}

// MarshalJSON emits the raw value.
func (v Value) MarshalJSON() ([]byte, error) {
	if !gjson.Valid(string(v)) {
		return nil, fmt.Errorf("invalid port value %q", string(v))
	}
	return []byte(v), nil
}

// MarshalYAML emits the decoded value.
func (v Value) MarshalYAML() (any, error) {
	return gjson.Parse(string(v)).Value(), nil
}

// Rewriter reads and writes config files under a base repository path.
type Rewriter struct {
	base string
}

// New returns a Rewriter. basePath is prepended verbatim to every config path.
func New(basePath string) *Rewriter {
	return &Rewriter{base: basePath}
}

// Path returns the file path of a config path.
func (r *Rewriter) Path(configPath string) string {
	return r.base + configPath
}

// ReadPort returns the value of property in the config at configPath.
func (r *Rewriter) ReadPort(configPath, property string) (Value, error) {
	path := r.Path(configPath)
	data, err := readJSON(path)
	if err != nil {
		return "", err
	}

	p, err := toPath(property)
	if err != nil {
		return "", err
	}

	res := gjson.GetBytes(data, p)
	if !res.Exists() {
		return "", cnserrors.WrapWithContext(cnserrors.ErrCodeNotFound, "port property not found", nil,
			map[string]any{"file": path, "property": property})
	}
	return Value(res.Raw), nil
}

// SetPort sets property in the config at configPath to v and rewrites the file.
func (r *Rewriter) SetPort(configPath, property string, v Value) error {
	path := r.Path(configPath)
	data, err := readJSON(path)
	if err != nil {
		return err
	}

	p, err := toPath(property)
	if err != nil {
		return err
	}

	updated, err := sjson.SetRawBytes(data, p, []byte(v))
	if err != nil {
		return cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest, "failed to set port property", err,
			map[string]any{"file": path, "property": property})
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, updated, "", indent); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, fmt.Sprintf("failed to format %q", path), err)
	}
	buf.WriteByte('\n')

	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := os.WriteFile(path, buf.Bytes(), mode); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, fmt.Sprintf("failed to write %q", path), err)
	}

	slog.Debug("port property updated", "file", path, "property", property, "value", v.String())
	return nil
}

// SetLocationPort sets the port property of a dependent location.
func (r *Rewriter) SetLocationPort(loc config.Location, v Value) error {
	return r.SetPort(loc.ConfigPath, loc.PortProperty, v)
}

func readJSON(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeNotFound, fmt.Sprintf("failed to read %q", path), err)
	}
	if !gjson.ValidBytes(data) {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, fmt.Sprintf("%q is not valid JSON", path))
	}
	return data, nil
}

// toPath converts a property path such as "a.b[0].c" into gjson/sjson
// syntax ("a.b.0.c"), escaping the characters those libraries treat as
// operators.
func toPath(property string) (string, error) {
	segments, err := splitProperty(property)
	if err != nil {
		return "", err
	}
	for i, s := range segments {
		segments[i] = escapeSegment(s)
	}
	return strings.Join(segments, "."), nil
}

func splitProperty(property string) ([]string, error) {
	invalid := func() error {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest, fmt.Sprintf("invalid property path %q", property))
	}

	var (
		segments []string
		cur      strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			segments = append(segments, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(property); i++ {
		switch c := property[i]; c {
		case '.':
			if cur.Len() == 0 && (i == 0 || property[i-1] != ']') {
				return nil, invalid()
			}
			flush()
		case '[':
			flush()
			end := strings.IndexByte(property[i:], ']')
			if end < 0 {
				return nil, invalid()
			}
			idx := strings.Trim(property[i+1:i+end], `"'`)
			if idx == "" {
				return nil, invalid()
			}
			segments = append(segments, idx)
			i += end
		default:
			cur.WriteByte(c)
		}
	}
	flush()

	if len(segments) == 0 || strings.HasSuffix(property, ".") {
		return nil, invalid()
	}
	return segments, nil
}

func escapeSegment(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', '*', '?', '|', '#', '@', '!':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
