/*
Package richtext 富文本编辑器边界：HTML 字符串进，清洗后的 HTML 字符串出。

编辑器内部模型不在此处实现，只保证写入后端的 HTML 安全。
*/
package richtext

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Sanitizer 基于 bluemonday UGC 策略的 HTML 清洗器，可并发使用
type Sanitizer struct {
	policy *bluemonday.Policy
	strip  *bluemonday.Policy
	md     goldmark.Markdown
}

func NewSanitizer() *Sanitizer {
	policy := bluemonday.UGCPolicy()
	// 编辑器输出的对齐/高亮 class
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("p", "span", "code", "pre", "img", "h1", "h2", "h3", "h4")
	policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	policy.AllowAttrs("src", "alt", "title", "width", "height").OnElements("img")
	policy.AllowAttrs("target").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a")
	policy.AllowElements("table", "thead", "tbody", "tr", "th", "td", "figure", "figcaption")
	policy.RequireNoFollowOnLinks(true)

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
			html.WithUnsafe(), // 原始 HTML 交给 bluemonday 清理
		),
	)

	return &Sanitizer{
		policy: policy,
		strip:  bluemonday.StrictPolicy(),
		md:     md,
	}
}

// Sanitize 清洗编辑器产出的 HTML
func (s *Sanitizer) Sanitize(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	return strings.TrimSpace(s.policy.Sanitize(input))
}

// FromMarkdown 将 Markdown 转换为安全 HTML
func (s *Sanitizer) FromMarkdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return s.Sanitize(buf.String()), nil
}

// PlainText 去除所有标签，用于摘要/表格预览
func (s *Sanitizer) PlainText(input string) string {
	return strings.TrimSpace(s.strip.Sanitize(input))
}

// Excerpt 纯文本摘要，按 rune 截断
func (s *Sanitizer) Excerpt(input string, limit int) string {
	text := strings.Join(strings.Fields(s.PlainText(input)), " ")
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
