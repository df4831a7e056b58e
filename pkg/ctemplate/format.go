package ctemplate

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"
)

// Tuple 是定长的值序列，绑定时格式化为 "(v1, v2, v3)"。
type Tuple []any

// FormatValue 把绑定值转换为字符串。
//
// 规则：
//   - string / []byte / json.Number 原样使用
//   - 整数输出十进制，不做本地化、不截断（含 *big.Int）
//   - 浮点数使用最短表示
//   - Tuple 及其它 slice/array 输出 "(v1, v2, v3)"，元素递归格式化
//   - nil 输出空字符串
func FormatValue(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case []byte:
		return string(typed)
	case json.Number:
		return typed.String()
	case bool:
		return strconv.FormatBool(typed)
	case int:
		return strconv.Itoa(typed)
	case int8:
		return strconv.FormatInt(int64(typed), 10)
	case int16:
		return strconv.FormatInt(int64(typed), 10)
	case int32:
		return strconv.FormatInt(int64(typed), 10)
	case int64:
		return strconv.FormatInt(typed, 10)
	case uint:
		return strconv.FormatUint(uint64(typed), 10)
	case uint8:
		return strconv.FormatUint(uint64(typed), 10)
	case uint16:
		return strconv.FormatUint(uint64(typed), 10)
	case uint32:
		return strconv.FormatUint(uint64(typed), 10)
	case uint64:
		return strconv.FormatUint(typed, 10)
	case float32:
		return strconv.FormatFloat(float64(typed), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(typed, 'g', -1, 64)
	case *big.Int:
		if typed == nil {
			return ""
		}
		return typed.String()
	case Tuple:
		return formatTuple(len(typed), func(i int) any { return typed[i] })
	case fmt.Stringer:
		return typed.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return formatTuple(rv.Len(), func(i int) any { return rv.Index(i).Interface() })
	case reflect.Pointer:
		if rv.IsNil() {
			return ""
		}
		return FormatValue(rv.Elem().Interface())
	default:
		return fmt.Sprint(v)
	}
}

func formatTuple(n int, at func(int) any) string {
	parts := make([]string, n)
	for i := range n {
		parts[i] = FormatValue(at(i))
	}

	return "(" + strings.Join(parts, ", ") + ")"
}
