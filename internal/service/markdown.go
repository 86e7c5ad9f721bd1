package service

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	htmlSanitizer = bluemonday.UGCPolicy()
	textSanitizer = bluemonday.StrictPolicy()
)

// renderMarkdownHTML 将模型回复的 Markdown 渲染为可直接展示的 HTML，并做消毒
func renderMarkdownHTML(markdown string) string {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(markdown), &buf); err != nil {
		// 渲染失败时退回转义后的纯文本
		return htmlSanitizer.Sanitize(markdown)
	}
	return htmlSanitizer.Sanitize(buf.String())
}

// stripHTML 去除用户输入中的一切标签，日记正文只保留纯文本
func stripHTML(input string) string {
	return strings.TrimSpace(textSanitizer.Sanitize(input))
}
