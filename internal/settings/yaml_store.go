package settings

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	appErrors "vercheck/internal/errors"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// YAMLStore keeps the UpdateSettings node inside a YAML settings document.
// Other top-level nodes in the document are preserved on Save.
type YAMLStore struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewYAMLStore returns a store backed by the document at path. The file is
// created on the first Save.
func NewYAMLStore(path string, opts ...Option) *YAMLStore {
	o := applyOptions(opts)
	return &YAMLStore{path: path, logger: o.logger}
}

// Path returns the document location.
func (s *YAMLStore) Path() string { return s.path }

// Load implements Store.
func (s *YAMLStore) Load(ctx context.Context) (Settings, error) {
	if err := ctx.Err(); err != nil {
		return Settings{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readDocument()
	if err != nil {
		return Settings{}, err
	}
	if doc == nil {
		return Defaults(), nil
	}
	root := documentRoot(doc)
	if root == nil || root.Kind != yaml.MappingNode {
		s.logger.Warn("settings document has no top-level mapping, using defaults", zap.String("path", s.path))
		return Defaults(), nil
	}
	node := mappingValue(root, NodeName)
	if node == nil {
		return Defaults(), nil
	}
	if node.Kind != yaml.MappingNode {
		s.logger.Warn("settings node is not a mapping, using defaults",
			zap.String("path", s.path), zap.String("node", NodeName))
		return Defaults(), nil
	}
	return decodeFields(scalarField(node, FieldAutomaticCheckEnabled), scalarField(node, FieldLastSuccessfulCheck), s.logger), nil
}

// Save implements Store. The document is rewritten through a temporary file
// and a rename, so readers see either the old or the new node.
func (s *YAMLStore) Save(ctx context.Context, settings Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readDocument()
	if err != nil {
		return err
	}
	if doc == nil {
		doc = &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	root := documentRoot(doc)
	if root == nil || root.Kind != yaml.MappingNode {
		return appErrors.Newf(appErrors.CodeSettingsParse, nil, "settings document %s has no top-level mapping", s.path)
	}
	setMappingValue(root, NodeName, settingsNode(settings))

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return appErrors.New(appErrors.CodeSettingsIO, "encode settings", err)
	}
	if err := enc.Close(); err != nil {
		return appErrors.New(appErrors.CodeSettingsIO, "encode settings", err)
	}
	if err := writeFileAtomic(s.path, buf.Bytes()); err != nil {
		return appErrors.New(appErrors.CodeSettingsIO, "write settings", err)
	}
	return nil
}

// Close implements Store.
func (s *YAMLStore) Close() error { return nil }

// readDocument returns nil when the file is missing or blank.
func (s *YAMLStore) readDocument() (*yaml.Node, error) {
	//nolint:gosec // G304: settings path comes from trusted configuration
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, appErrors.Newf(appErrors.CodeSettingsIO, err, "read %s", s.path)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, appErrors.Newf(appErrors.CodeSettingsParse, err, "parse %s", s.path)
	}
	if doc.Kind == 0 {
		return nil, nil
	}
	return &doc, nil
}

func settingsNode(settings Settings) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, kv := range encodeFields(settings) {
		tag := "!!str"
		if kv[0] == FieldAutomaticCheckEnabled {
			tag = "!!bool"
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: kv[0]},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: kv[1]},
		)
	}
	return node
}

func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	return doc.Content[0]
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func setMappingValue(m *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, value)
}

func scalarField(m *yaml.Node, key string) rawField {
	v := mappingValue(m, key)
	if v == nil {
		return rawField{}
	}
	if v.Kind != yaml.ScalarNode {
		// Present but not a scalar: treat as an unreadable value.
		return rawField{value: fmt.Sprintf("<%s>", kindName(v.Kind)), present: true}
	}
	return rawField{value: v.Value, present: true}
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.AliasNode:
		return "alias"
	default:
		return "node"
	}
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	//nolint:gosec // G301: user config directory needs standard permissions
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
