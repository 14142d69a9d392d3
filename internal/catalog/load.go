package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	ferrors "facettes/internal/errors"
)

// Format identifies a catalog file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath guesses the format from the file extension; unknown
// extensions are read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// Load reads and validates the catalog at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ferrors.Wrap(ferrors.ConfigurationError, "catalog file not found: "+path, err)
		}
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data, FormatFromPath(path))
}

// Parse decodes and validates a catalog document.
func Parse(data []byte, format Format) (*Catalog, error) {
	var (
		root *orderedMap
		err  error
	)
	switch format {
	case FormatYAML:
		root, err = decodeYAML(data)
	case FormatTOML:
		root, err = decodeTOML(data)
	default:
		root, err = decodeJSON(data)
	}
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ValidationError, "catalog is not valid "+string(format), err)
	}

	c, err := buildCatalog(root)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Save writes c as indented JSON, preserving order.
func (c *Catalog) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// MarshalJSON encodes the catalog as an object keyed by category name.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	return marshalNodes(c.Categories)
}

// MarshalJSON encodes a node as {genres, facets, subcategories}.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"genres":`)
	genres, err := json.Marshal(n.Genres)
	if err != nil {
		return nil, err
	}
	buf.Write(genres)

	buf.WriteString(`,"facets":{`)
	for i, f := range n.Facets {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, f.Type, f.Values); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')

	if len(n.Subcategories) > 0 {
		subs, err := marshalNodes(n.Subcategories)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"subcategories":`)
		buf.Write(subs)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalNodes(nodes []*Node) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, n := range nodes {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, n.Name, n); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, v interface{}) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	val, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(val)
	return nil
}

// orderedMap is a decoded mapping that remembers key order. Values are
// *orderedMap, []interface{} or scalars.
type orderedMap struct {
	keys   []string
	values map[string]interface{}
}

func newOrderedMap() *orderedMap {
	return &orderedMap{values: make(map[string]interface{})}
}

func (m *orderedMap) set(key string, v interface{}) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// lookup returns the first present key among names.
func (m *orderedMap) lookup(names ...string) (interface{}, bool) {
	for _, name := range names {
		if v, ok := m.values[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func decodeJSON(data []byte) (*orderedMap, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after catalog object")
	}
	root, ok := v.(*orderedMap)
	if !ok {
		return nil, fmt.Errorf("catalog root must be an object")
	}
	return root, nil
}

func decodeJSONValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := newOrderedMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := keyTok.(string)
				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				m.set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return m, nil
		case '[':
			var list []interface{}
			for dec.More() {
				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case json.Number:
		return t.String(), nil
	default:
		return t, nil
	}
}

func decodeYAML(data []byte) (*orderedMap, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	v, err := convertYAML(doc.Content[0])
	if err != nil {
		return nil, err
	}
	root, ok := v.(*orderedMap)
	if !ok {
		return nil, fmt.Errorf("catalog root must be a mapping")
	}
	return root, nil
}

func convertYAML(n *yaml.Node) (interface{}, error) {
	switch n.Kind {
	case yaml.MappingNode:
		m := newOrderedMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := convertYAML(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.set(n.Content[i].Value, v)
		}
		return m, nil
	case yaml.SequenceNode:
		list := make([]interface{}, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := convertYAML(item)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.ScalarNode:
		return n.Value, nil
	case yaml.AliasNode:
		return convertYAML(n.Alias)
	default:
		return nil, fmt.Errorf("line %d: unsupported yaml node", n.Line)
	}
}

// decodeTOML rebuilds key order from the metadata, which lists keys in
// document order.
func decodeTOML(data []byte) (*orderedMap, error) {
	var raw map[string]interface{}
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, err
	}

	root := newOrderedMap()
	for _, key := range md.Keys() {
		parent := root
		cur := raw
		for depth, part := range key {
			v, ok := cur[part]
			if !ok {
				break
			}
			child, isTable := v.(map[string]interface{})
			if depth == len(key)-1 {
				if isTable {
					if _, exists := parent.values[part]; !exists {
						parent.set(part, newOrderedMap())
					}
				} else {
					parent.set(part, tomlValue(v))
				}
				break
			}
			if !isTable {
				break
			}
			next, ok := parent.values[part].(*orderedMap)
			if !ok {
				next = newOrderedMap()
				parent.set(part, next)
			}
			parent = next
			cur = child
		}
	}
	return root, nil
}

func tomlValue(v interface{}) interface{} {
	switch t := v.(type) {
	case []interface{}:
		list := make([]interface{}, len(t))
		for i, item := range t {
			list[i] = tomlValue(item)
		}
		return list
	case []string:
		list := make([]interface{}, len(t))
		for i, item := range t {
			list[i] = item
		}
		return list
	default:
		return t
	}
}

// buildCatalog maps the decoded tree onto Catalog. Both the English keys and
// the legacy French ones (facettes, sous_categories) are accepted.
func buildCatalog(root *orderedMap) (*Catalog, error) {
	c := &Catalog{}
	for _, name := range root.keys {
		n, err := buildNode(name, name, root.values[name])
		if err != nil {
			return nil, err
		}
		c.Categories = append(c.Categories, n)
	}
	return c, nil
}

func buildNode(name, path string, v interface{}) (*Node, error) {
	m, ok := v.(*orderedMap)
	if !ok {
		return nil, ferrors.Newf(ferrors.ValidationError, "%q: invalid node (not a mapping)", path)
	}

	n := &Node{Name: name}

	if raw, ok := m.lookup("genres"); ok {
		genres, err := stringList(raw)
		if err != nil {
			return nil, ferrors.Newf(ferrors.ValidationError, "%q: genres: %v", path, err)
		}
		n.Genres = genres
	}

	if raw, ok := m.lookup("facets", "facettes"); ok {
		facets, ok := raw.(*orderedMap)
		if !ok {
			return nil, ferrors.Newf(ferrors.ValidationError, "%q: facets must be a mapping", path)
		}
		for _, typ := range facets.keys {
			values, err := stringList(facets.values[typ])
			if err != nil {
				return nil, ferrors.Newf(ferrors.ValidationError, "%q, facet %q: %v", path, typ, err)
			}
			n.Facets = append(n.Facets, Facet{Type: typ, Values: values})
		}
	}

	if raw, ok := m.lookup("subcategories", "sous_categories"); ok {
		subs, ok := raw.(*orderedMap)
		if !ok {
			return nil, ferrors.Newf(ferrors.ValidationError, "%q: subcategories must be a mapping", path)
		}
		for _, subName := range subs.keys {
			sub, err := buildNode(subName, JoinPath(path, subName), subs.values[subName])
			if err != nil {
				return nil, err
			}
			n.Subcategories = append(n.Subcategories, sub)
		}
	}

	return n, nil
}

func stringList(v interface{}) ([]string, error) {
	list, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a list")
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		switch s := item.(type) {
		case string:
			out = append(out, s)
		case fmt.Stringer:
			out = append(out, s.String())
		default:
			out = append(out, fmt.Sprint(s))
		}
	}
	return out, nil
}
