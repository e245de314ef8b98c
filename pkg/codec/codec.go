// Package codec reads and writes the schema and record documents.
//
// Documents are YAML with a version key. Unversioned JSON lists written by
// the first releases are still accepted and upgraded on the next write.
package codec

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

const currentVersion = "1"

// readable accepts every document whose major version matches ours. Minor
// versions may add keys, which older readers ignore.
var readable = mustConstraint("^1")

func mustConstraint(c string) *semver.Constraints {
	cs, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return cs
}

// ErrUnsupportedVersion is returned for documents written by a newer release.
var ErrUnsupportedVersion = errors.New("unsupported document version")

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// root parses b and returns its top-level node, or nil for an empty document.
func root(b []byte) (*yaml.Node, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}
	return doc.Content[0], nil
}

func checkVersion(n *yaml.Node) error {
	var v struct {
		Version string `yaml:"version"`
	}
	if err := n.Decode(&v); err != nil {
		return err
	}
	if v.Version == "" {
		return nil
	}
	ver, err := semver.NewVersion(v.Version)
	if err != nil || !readable.Check(ver) {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, v.Version)
	}
	return nil
}
