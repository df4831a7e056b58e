package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/urfave/cli/v3"
	yamlv3 "go.yaml.in/yaml/v3"
)

// ConfigFlag 是指定配置文件的 CLI flag 名称。
const ConfigFlag = "config"

// options 配置加载选项。
type options struct {
	cmd         *cli.Command
	configPaths []string
	envPrefix   string
	noExpansion bool // 是否禁用配置文件中的 ${VAR} 展开
}

// Option 配置加载选项函数。
type Option func(*options)

// WithCommand 绑定 CLI 命令，读取显式设置的 flags 以覆盖配置（最高优先级）。
//
// 若设置了 --config，则只读取该文件，且文件不存在时报错。
func WithCommand(cmd *cli.Command) Option {
	return func(o *options) {
		o.cmd = cmd
	}
}

// WithConfigPaths 设置配置文件搜索路径，按顺序查找，命中首个文件即停止。
func WithConfigPaths(paths ...string) Option {
	return func(o *options) {
		o.configPaths = paths
	}
}

// WithEnvPrefix 设置环境变量前缀，空字符串表示不读取环境变量。
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithoutExpansion 保留配置文件中原始的 ${...} 字符串。
func WithoutExpansion() Option {
	return func(o *options) {
		o.noExpansion = true
	}
}

// DefaultPaths 返回默认配置文件的搜索顺序。
//
// 优先级 (从高到低)：
//  1. ./.ctemplate.yaml - 当前目录应用配置
//  2. ~/.ctemplate.yaml - 用户主目录配置
//  3. /etc/ctemplate/config.yaml - 系统级配置
//  4. config.yaml - 当前目录通用配置
func DefaultPaths() []string {
	paths := []string{"." + AppName + ".yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "."+AppName+".yaml"))
	}

	return append(paths, "/etc/"+AppName+"/config.yaml", "config.yaml")
}

// Load 读取配置并按优先级合并。
func Load(opts ...Option) (*Config, error) {
	o := &options{
		configPaths: DefaultPaths(),
		envPrefix:   EnvPrefix,
	}
	for _, opt := range opts {
		opt(o)
	}

	defaults := DefaultConfig()
	configMap := structToMap(defaults)

	// 2️⃣ 配置文件
	required := false
	if o.cmd != nil && o.cmd.IsSet(ConfigFlag) {
		o.configPaths = []string{o.cmd.String(ConfigFlag)}
		required = true
	}
	fileMap, path, err := readConfigFile(o.configPaths, !o.noExpansion)
	switch {
	case err != nil:
		return nil, err
	case fileMap == nil && required:
		return nil, fmt.Errorf("config file %s not found", o.configPaths[0])
	case fileMap == nil:
		slog.Debug("No config file found, using defaults")
	default:
		mergeMaps(configMap, fileMap)
		slog.Debug("Loaded config from file", "path", path)
	}

	// 3️⃣ 环境变量
	if o.envPrefix != "" {
		for envKey, configPath := range envBindings(o.envPrefix, reflect.TypeOf(defaults)) {
			if val := os.Getenv(envKey); val != "" {
				setByPath(configMap, configPath, val)
				slog.Debug("Loaded env binding", "env", envKey, "path", configPath)
			}
		}
	}

	// 4️⃣ CLI flags
	if o.cmd != nil {
		applyFlags(o.cmd, configMap, reflect.TypeOf(defaults), "")
	}

	var cfg Config
	if err := decodeConfigMap(configMap, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadCmd 是 [Load] 的便捷版本，适用于 CLI 场景。
func LoadCmd(cmd *cli.Command, opts ...Option) (*Config, error) {
	return Load(append([]Option{WithCommand(cmd)}, opts...)...)
}

// ═══════════════════════════════════════════════════════════════════════════
// 配置文件
// ═══════════════════════════════════════════════════════════════════════════

// readConfigFile 返回首个可读文件的内容；都不可读时返回 nil。
func readConfigFile(paths []string, expand bool) (map[string]any, string, error) {
	for _, path := range paths {
		content, err := os.ReadFile(path) //nolint:gosec // path is from trusted config
		if err != nil {
			continue
		}
		if expand {
			expanded, err := ExpandEnv(string(content))
			if err != nil {
				return nil, path, fmt.Errorf("expand config file %s: %w", path, err)
			}
			content = []byte(expanded)
		}

		fileMap, err := parseConfigBytes(path, content)
		if err != nil {
			return nil, path, fmt.Errorf("parse config file %s: %w", path, err)
		}

		return fileMap, path, nil
	}

	return nil, "", nil
}

func parseConfigBytes(path string, content []byte) (map[string]any, error) {
	var raw any
	var err error
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(content, &raw)
	} else {
		err = yamlv3.Unmarshal(content, &raw)
	}
	if err != nil {
		return nil, err
	}

	if raw == nil {
		return map[string]any{}, nil
	}
	configMap, ok := normalizeMapKeys(raw).(map[string]any)
	if !ok {
		return nil, errors.New("config root must be object")
	}

	return configMap, nil
}

func normalizeMapKeys(val any) any {
	switch typed := val.(type) {
	case map[string]any:
		for key, value := range typed {
			typed[key] = normalizeMapKeys(value)
		}

		return typed
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[fmt.Sprint(key)] = normalizeMapKeys(value)
		}

		return out
	case []any:
		for i := range typed {
			typed[i] = normalizeMapKeys(typed[i])
		}

		return typed
	default:
		return val
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 环境变量与 CLI flags
// ═══════════════════════════════════════════════════════════════════════════

// envBindings 根据配置 key 生成环境变量映射，map 类型字段不参与。
//
// 示例 (前缀 "CTEMPLATE_")：
//   - templates.root → CTEMPLATE_TEMPLATES_ROOT
//   - server.idletime → CTEMPLATE_SERVER_IDLETIME
func envBindings(prefix string, typ reflect.Type) map[string]string {
	bindings := make(map[string]string)
	walkLeaves(typ, "", func(key string, field reflect.Type) {
		if field.Kind() == reflect.Map {
			return
		}
		envKey := strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
		bindings[prefix+envKey] = key
	})

	return bindings
}

// applyFlags 将用户显式设置的 CLI flags 写入配置 map，flag 名称为 key 中 "." 替换为 "-"。
func applyFlags(cmd *cli.Command, config map[string]any, typ reflect.Type, prefix string) {
	walkLeaves(typ, prefix, func(key string, field reflect.Type) {
		flag := strings.ReplaceAll(key, ".", "-")
		if !cmd.IsSet(flag) {
			return
		}

		switch {
		case field == durationType:
			setByPath(config, key, cmd.Duration(flag))
		case field.Kind() == reflect.String:
			setByPath(config, key, cmd.String(flag))
		case field.Kind() == reflect.Bool:
			setByPath(config, key, cmd.Bool(flag))
		case field.Kind() == reflect.Int:
			setByPath(config, key, cmd.Int(flag))
		case field.Kind() == reflect.Slice && field.Elem().Kind() == reflect.String:
			setByPath(config, key, cmd.StringSlice(flag))
		case field.Kind() == reflect.Map:
			mergeMaps(config, map[string]any{key: toAnyMap(cmd.StringMap(flag))})
		}
	})
}

func walkLeaves(typ reflect.Type, prefix string, fn func(key string, field reflect.Type)) {
	for i := range typ.NumField() {
		field := typ.Field(i)
		key := configTagName(field)
		if key == "" {
			continue
		}
		if prefix != "" {
			key = prefix + "." + key
		}
		if isStructType(field.Type) {
			walkLeaves(field.Type, key, fn)

			continue
		}
		fn(key, field.Type)
	}
}

func toAnyMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}

// ═══════════════════════════════════════════════════════════════════════════
// map 辅助函数
// ═══════════════════════════════════════════════════════════════════════════

var durationType = reflect.TypeFor[time.Duration]()

func configTagName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}

	return name
}

func isStructType(typ reflect.Type) bool {
	return typ.Kind() == reflect.Struct && typ != durationType
}

// structToMap 把配置结构体转换为以 json tag 为 key 的嵌套 map。
func structToMap(cfg any) map[string]any {
	val := reflect.ValueOf(cfg)
	out := make(map[string]any)
	for i := range val.NumField() {
		field := val.Type().Field(i)
		key := configTagName(field)
		if key == "" || field.PkgPath != "" {
			continue
		}

		fv := val.Field(i)
		switch {
		case isStructType(field.Type):
			out[key] = structToMap(fv.Interface())
		case fv.Kind() == reflect.Map:
			m := make(map[string]any, fv.Len())
			iter := fv.MapRange()
			for iter.Next() {
				m[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
			}
			out[key] = m
		default:
			out[key] = fv.Interface()
		}
	}

	return out
}

func mergeMaps(dst, src map[string]any) {
	for key, value := range src {
		if valueMap, ok := value.(map[string]any); ok {
			if dstMap, ok := dst[key].(map[string]any); ok {
				mergeMaps(dstMap, valueMap)

				continue
			}
		}

		dst[key] = value
	}
}

func setByPath(dst map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := dst
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

func decodeConfigMap(data map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "json",
	})
	if err != nil {
		return err
	}

	return decoder.Decode(data)
}
