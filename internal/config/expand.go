package config

import (
	"fmt"
	"os"
	"strings"
)

// ExpandEnv 对配置文件文本执行 Shell 参数展开，只识别 ${...} 形式。
//
// 支持语法：
//   - ${VAR} - 变量替换，未设置时为空
//   - ${VAR:-default} / ${VAR-default} - fallback
//   - ${VAR:+alt} / ${VAR+alt} - 替代值
//   - ${VAR:?msg} / ${VAR?msg} - 必填校验，失败时返回 error
//   - ${VAR:=default} / ${VAR=default} - 赋值（仅作用于本次展开）
//   - $$ - 字面量 $
//
// 其它 $ 原样保留，如 "$5 off"、"$HOME"。
func ExpandEnv(text string) (string, error) {
	return newEnvExpander().expand(text)
}

// envExpander 持有本次展开的环境变量快照，":=" 只写入快照。
type envExpander struct {
	env map[string]string
}

func newEnvExpander() *envExpander {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if name, value, ok := strings.Cut(kv, "="); ok {
			env[name] = value
		}
	}

	return &envExpander{env: env}
}

func (e *envExpander) expand(text string) (string, error) {
	if !strings.Contains(text, "$") {
		return text, nil
	}

	var buf strings.Builder
	buf.Grow(len(text))

	for i := 0; i < len(text); {
		if text[i] != '$' || i+1 >= len(text) {
			buf.WriteByte(text[i])
			i++

			continue
		}

		switch text[i+1] {
		case '$':
			buf.WriteByte('$')
			i += 2

			continue
		case '{':
		default:
			buf.WriteByte('$')
			i++

			continue
		}

		end := closingBrace(text, i+2)
		if end < 0 {
			buf.WriteByte('$')
			i++

			continue
		}

		raw := text[i : end+1]
		value, ok, err := e.parameter(text[i+2 : end])
		if err != nil {
			return "", err
		}
		if ok {
			buf.WriteString(value)
		} else {
			buf.WriteString(raw)
		}
		i = end + 1
	}

	return buf.String(), nil
}

// parameter 展开单个 ${...} 的内部表达式；不是合法参数表达式时 ok 为 false。
func (e *envExpander) parameter(expr string) (string, bool, error) {
	name, op, word, ok := splitParameter(expr)
	if !ok {
		return "", false, nil
	}

	val, isSet := e.env[name]
	// 带冒号的运算符把空值视为未设置
	unset := !isSet
	if strings.HasPrefix(op, ":") {
		unset = !isSet || val == ""
	}

	switch strings.TrimPrefix(op, ":") {
	case "":
		return val, true, nil
	case "-":
		if unset {
			return e.word(word)
		}

		return val, true, nil
	case "+":
		if unset {
			return "", true, nil
		}

		return e.word(word)
	case "?":
		if unset {
			if word == "" {
				return "", false, fmt.Errorf("%s: parameter null or not set", name)
			}

			return "", false, fmt.Errorf("%s: %s", name, word)
		}

		return val, true, nil
	case "=":
		if unset {
			expanded, _, err := e.word(word)
			if err != nil {
				return "", false, err
			}
			e.env[name] = expanded

			return expanded, true, nil
		}

		return val, true, nil
	}

	return "", false, nil
}

func (e *envExpander) word(word string) (string, bool, error) {
	if !strings.Contains(word, "${") {
		return word, true, nil
	}
	expanded, err := e.expand(word)
	if err != nil {
		return "", false, err
	}

	return expanded, true, nil
}

// splitParameter 把 "NAME:-word" 拆为 ("NAME", ":-", "word")。
func splitParameter(expr string) (name, op, word string, ok bool) {
	if expr == "" || !isNameStart(expr[0]) {
		return "", "", "", false
	}

	i := 1
	for i < len(expr) && (isNameStart(expr[i]) || (expr[i] >= '0' && expr[i] <= '9')) {
		i++
	}
	name, rest := expr[:i], expr[i:]

	switch {
	case rest == "":
		return name, "", "", true
	case len(rest) >= 2 && rest[0] == ':' && strings.IndexByte("-+?=", rest[1]) >= 0:
		return name, rest[:2], rest[2:], true
	case strings.IndexByte("-+?=", rest[0]) >= 0:
		return name, rest[:1], rest[1:], true
	}

	return "", "", "", false
}

func isNameStart(ch byte) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') || ch == '_'
}

// closingBrace 返回与 start 前的 "${" 匹配的 "}" 位置，允许嵌套；找不到时返回 -1。
func closingBrace(text string, start int) int {
	depth := 0
	for i := start; i < len(text); i++ {
		switch {
		case text[i] == '$' && i+1 < len(text) && text[i+1] == '{':
			depth++
			i++
		case text[i] == '}':
			if depth == 0 {
				return i
			}
			depth--
		}
	}

	return -1
}
