// Package view 内嵌的页面模板
package view

import (
	"bytes"
	"embed"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.html
var templateFS embed.FS

// Funcs 模板函数
var Funcs = template.FuncMap{
	"naturaltime": NaturalTime,
	"truncate":    Truncate,
	"join":        strings.Join,
	"bytes":       func(n int64) string { return humanize.IBytes(uint64(n)) },
	"favstate":    NewFavState,
	"markdown":    Markdown,
}

var (
	md = goldmark.New(goldmark.WithExtensions(extension.GFM))
	// 用户内容只允许常见排版标签
	sanitizer = bluemonday.UGCPolicy()
)

// FavState 收藏按钮的渲染参数
type FavState struct {
	IsFavorite bool
	Base       string // 条目地址，按钮向 Base/favorite 或 Base/unfavorite 提交
}

func NewFavState(isFavorite bool, base string) FavState {
	return FavState{IsFavorite: isFavorite, Base: base}
}

// Templates 解析全部内嵌模板，模板名即文件名 (list.html)
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs).ParseFS(templateFS, "templates/*.html")
}

// MustTemplates 同 Templates，失败时 panic
func MustTemplates() *template.Template {
	return template.Must(Templates())
}

// NaturalTime 相对时间，如 "3 minutes ago"
func NaturalTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}

// Truncate 按字符截断，超出部分以 ... 结尾
func Truncate(n int, s string) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimRightFunc(string(runes[:n]), func(r rune) bool { return r == ' ' }) + "..."
}

// Markdown 将正文按 GFM 渲染为 HTML 并过滤危险标签
// 渲染失败时退回转义后的原文
func Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(src) + "</p>")
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
}
