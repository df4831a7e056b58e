// Package ctemplate 提供基于字典的文本模板展开引擎。
//
// 模板只有两类可绑定的标记：变量与段落。没有表达式、没有条件判断、
// 不执行任何代码；数据全部来自调用方构建的 [Dictionary]。
//
// # 标记语法
//
//   - {{NAME}} - 变量，按 字典 → 父字典链 → 模板全局 → 进程全局 的顺序查找
//   - {{NAME:h}} / {{NAME:j:h}} - 变量 + 转义修饰符，按书写顺序依次应用
//   - {{#NAME}}...{{/NAME}} - 段落，每个子字典展开一次；无子字典则隐藏
//   - {{#NAME_separator}}...{{/NAME_separator}} - 写在 NAME 段落内部，除最后一次迭代外都会输出
//   - {{!注释}} - 注释，可跨行
//   - {{>file.tpl}} - 内联另一个模板文件（解析期展开，使用当前字典）
//   - {{=<% %>=}} - 修改此后的标记分隔符
//
// # 修饰符
//
//   - h, html, html_escape - HTML 转义
//   - p, pre_escape - HTML 转义，保留空白
//   - xml, xml_escape - XML 转义（&nbsp; → &#160;）
//   - j, js, javascript_escape - JS 字符串转义（' → \x27）
//   - o, json, json_escape - JSON 字符串转义
//   - u, url_query_escape - URL query 转义
//   - none - 不转义（覆盖 [Expander] 的默认修饰符）
//
// # 快速开始
//
//	tpl, err := ctemplate.GetTemplate("page.tpl", ctemplate.DoNotStrip)
//	if err != nil {
//	    return err
//	}
//	dict := ctemplate.NewDictionary("page")
//	dict.SetValue("TITLE", "<hello>")
//	row := dict.AddSectionDictionary("ROW")
//	row.SetValue("CELL", 1)
//	out := tpl.Expand(dict)
//
// # 并发
//
// [Registry] 的模板缓存与全局变量表带锁，可并发使用；已解析的 [Tree]
// 只读共享。[Dictionary] 归调用方所有，不做任何同步。
package ctemplate
