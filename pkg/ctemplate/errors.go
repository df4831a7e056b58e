package ctemplate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTemplateNotFound 表示模板源不存在或不可读。
var ErrTemplateNotFound = errors.New("ctemplate: template not found")

// Problem 描述一个语法问题。
type Problem struct {
	Line   int
	Marker string
	Msg    string
}

func (p Problem) String() string {
	if p.Marker != "" {
		return fmt.Sprintf("line %d: %s: %s", p.Line, p.Marker, p.Msg)
	}

	return fmt.Sprintf("line %d: %s", p.Line, p.Msg)
}

// SyntaxError 汇总一个模板内的全部语法问题。
//
// 解析不会在首个问题处停止，调用方可以一次看到所有出错的标记。
type SyntaxError struct {
	Name     string
	Problems []Problem
}

func (e *SyntaxError) Error() string {
	name := e.Name
	if name == "" {
		name = "<string>"
	}
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.String()
	}

	return fmt.Sprintf("ctemplate: syntax error in %s: %s", name, strings.Join(parts, "; "))
}

// IsSyntaxError 报告 err 链中是否包含 *SyntaxError。
func IsSyntaxError(err error) bool {
	var se *SyntaxError

	return errors.As(err, &se)
}
