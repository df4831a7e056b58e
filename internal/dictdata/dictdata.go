// Package dictdata 把 YAML / JSON 数据文档转换为模板字典。
//
// 映射规则：
//   - 标量 → SetValue
//   - true / false → Set（显示段落 / 不做任何事）
//   - 映射 → 一个段落子字典
//   - 映射列表 → 每个元素一个段落子字典，按顺序展开
//   - 标量列表 → Tuple，格式化为 "(a, b, c)"
//   - 空列表 / null → 段落保持隐藏，变量为空
package dictdata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	yamlv3 "go.yaml.in/yaml/v3"

	"github.com/lwmacct/251219-go-pkg-ctemplate/pkg/ctemplate"
)

// Format 是数据文档格式。
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}

	return "yaml"
}

// FormatFromPath 按扩展名判断格式，.json 为 JSON，其余按 YAML 处理。
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}

	return FormatYAML
}

// FormatFromContentType 按 HTTP Content-Type 判断格式。
func FormatFromContentType(contentType string) Format {
	if strings.Contains(strings.ToLower(contentType), "json") {
		return FormatJSON
	}

	return FormatYAML
}

// Parse 解析数据文档，根节点必须是映射；空文档返回空映射。
//
// 十进制数字保留源文本（json.Number），避免大整数在格式化时丢失精度。
func Parse(data []byte, format Format) (map[string]any, error) {
	var raw any
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		var doc yamlv3.Node
		if err := yamlv3.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		var err error
		if raw, err = fromNode(&doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}

	if raw == nil {
		return map[string]any{}, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.New("dictionary data root must be a mapping")
	}

	return m, nil
}

// Fill 把 values 按包规则写入 d。键按字典序处理，结果与映射遍历顺序无关。
func Fill(d *ctemplate.Dictionary, values map[string]any) error {
	for _, key := range slices.Sorted(maps.Keys(values)) {
		if err := fillValue(d, key, values[key]); err != nil {
			return err
		}
	}

	return nil
}

// Build 使用 reg 创建名为 name 的根字典，并用 data 填充。
func Build(reg *ctemplate.Registry, name string, data []byte, format Format) (*ctemplate.Dictionary, error) {
	values, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	d := reg.NewDictionary(name)
	if err := Fill(d, values); err != nil {
		return nil, err
	}

	return d, nil
}

// LoadFile 读取数据文件并构建字典，格式由扩展名决定；path 为 "-" 时读取标准输入。
func LoadFile(reg *ctemplate.Registry, name, path string) (*ctemplate.Dictionary, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // path is provided by the user
	}
	if err != nil {
		return nil, fmt.Errorf("read dictionary data: %w", err)
	}

	d, err := Build(reg, name, data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return d, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// 内部实现
// ═══════════════════════════════════════════════════════════════════════════

func fillValue(d *ctemplate.Dictionary, key string, value any) error {
	switch typed := value.(type) {
	case bool:
		d.Set(key, typed)
	case map[string]any:
		return Fill(d.AddSectionDictionary(key), typed)
	case []any:
		return fillList(d, key, typed)
	default:
		d.SetValue(key, typed)
	}

	return nil
}

func fillList(d *ctemplate.Dictionary, key string, items []any) error {
	if len(items) == 0 {
		return nil
	}

	mappings := 0
	for _, item := range items {
		if _, ok := item.(map[string]any); ok {
			mappings++
		}
	}

	switch mappings {
	case len(items):
		for _, item := range items {
			if err := Fill(d.AddSectionDictionary(key), item.(map[string]any)); err != nil { //nolint:forcetypeassert // checked above
				return err
			}
		}
	case 0:
		d.SetValue(key, ctemplate.Tuple(items))
	default:
		return fmt.Errorf("%s: list mixes mappings and scalars", key)
	}

	return nil
}

// decimalNumber 匹配可原样保留的十进制数字字面量。
var decimalNumber = regexp.MustCompile(`^[-+]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][-+]?[0-9]+)?$`)

// fromNode 把 YAML 节点转换为 map[string]any / []any / 标量。
//
// !!int 与 !!float 的十进制字面量保留为 json.Number；其它写法（0x1F、.inf 等）按 YAML 规则解码。
func fromNode(n *yamlv3.Node) (any, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yamlv3.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}

		return fromNode(n.Content[0])
	case yamlv3.AliasNode:
		return fromNode(n.Alias)
	case yamlv3.MappingNode:
		out := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, value := n.Content[i], n.Content[i+1]
			if key.ShortTag() == "!!merge" {
				if err := mergeNode(out, value); err != nil {
					return nil, err
				}

				continue
			}
			v, err := fromNode(value)
			if err != nil {
				return nil, err
			}
			out[key.Value] = v
		}

		return out, nil
	case yamlv3.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := fromNode(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}

		return out, nil
	}

	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!int", "!!float":
		if decimalNumber.MatchString(n.Value) {
			return json.Number(strings.TrimPrefix(n.Value, "+")), nil
		}
	case "!!str", "!!timestamp":
		return n.Value, nil
	}

	var v any
	if err := n.Decode(&v); err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}

	return v, nil
}

// mergeNode 处理 "<<" 合并键，已存在的键不被覆盖。
func mergeNode(dst map[string]any, n *yamlv3.Node) error {
	if n.Kind == yamlv3.SequenceNode {
		for _, item := range n.Content {
			if err := mergeNode(dst, item); err != nil {
				return err
			}
		}

		return nil
	}

	v, err := fromNode(n)
	if err != nil {
		return err
	}
	src, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("line %d: merge value must be a mapping", n.Line)
	}
	for key, value := range src {
		if _, exists := dst[key]; !exists {
			dst[key] = value
		}
	}

	return nil
}
