package ctemplate

import (
	"fmt"
	"strconv"
	"strings"
)

// Strip 控制模板文本（不含变量输出）的空白处理方式。
type Strip int

const (
	// DoNotStrip 原样保留模板文本。
	DoNotStrip Strip = 0
	// StripBlankLines 删除空白行；仅包含非变量标记的行去掉空白与换行。
	StripBlankLines Strip = 1
	// StripWhitespace 在 StripBlankLines 基础上去掉每行首尾空白及换行。
	StripWhitespace Strip = 2
)

func (s Strip) String() string {
	switch s {
	case DoNotStrip:
		return "DO_NOT_STRIP"
	case StripBlankLines:
		return "STRIP_BLANK_LINES"
	case StripWhitespace:
		return "STRIP_WHITESPACE"
	default:
		return "Strip(" + strconv.Itoa(int(s)) + ")"
	}
}

// ParseStrip 解析数字或名称形式的 strip 模式，例如 "1"、"strip_blank_lines"。
func ParseStrip(s string) (Strip, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "0", "DO_NOT_STRIP", "NONE":
		return DoNotStrip, nil
	case "1", "STRIP_BLANK_LINES", "BLANK_LINES":
		return StripBlankLines, nil
	case "2", "STRIP_WHITESPACE", "WHITESPACE":
		return StripWhitespace, nil
	}

	return DoNotStrip, fmt.Errorf("ctemplate: unknown strip mode %q", s)
}

// stripText 在解析前按行处理原始模板文本。
//
// 判断“仅包含标记的行”时使用默认分隔符；切换过分隔符的文件对应行按普通文本处理。
func stripText(text string, mode Strip) string {
	if mode == DoNotStrip || text == "" {
		return text
	}

	var buf strings.Builder
	buf.Grow(len(text))

	for len(text) > 0 {
		line := text
		newline := ""
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			line, newline = text[:i], "\n"
			text = text[i+1:]
		} else {
			text = ""
		}
		// 保留原有的 CRLF 行尾
		if strings.HasSuffix(line, "\r") {
			line = line[:len(line)-1]
			newline = "\r" + newline
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue
		case onlyStandaloneMarkers(trimmed):
			buf.WriteString(trimmed)
			continue
		}

		if mode == StripWhitespace {
			buf.WriteString(trimmed)
			continue
		}
		buf.WriteString(line)
		buf.WriteString(newline)
	}

	return buf.String()
}

// onlyStandaloneMarkers 判断一行是否只由段落/注释/包含/分隔符标记组成。
func onlyStandaloneMarkers(line string) bool {
	if !strings.HasPrefix(line, defaultOpen) {
		return false
	}
	for line != "" {
		if !strings.HasPrefix(line, defaultOpen) {
			return false
		}
		end := strings.Index(line, defaultClose)
		if end < 0 {
			return false
		}
		body := line[len(defaultOpen):end]
		if body == "" {
			return false
		}
		switch body[0] {
		case '#', '/', '!', '>', '=':
		default:
			return false
		}
		line = strings.TrimLeft(line[end+len(defaultClose):], " \t")
	}

	return true
}
