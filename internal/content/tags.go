package content

import (
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

// MaxTagLength 单个标签最大长度
const MaxTagLength = 50

// ParseTags 解析逗号分隔的标签：去空白、转小写、去重，保持首次出现的顺序
func ParseTags(raw string) ([]string, error) {
	names := lo.Map(strings.Split(raw, ","), func(s string, _ int) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
	names = lo.Uniq(lo.Compact(names))

	if _, tooLong := lo.Find(names, func(name string) bool {
		return utf8.RuneCountInString(name) > MaxTagLength
	}); tooLong {
		return nil, ErrTagTooLong
	}
	return names, nil
}

// FormatTags ParseTags 的逆操作，用于表单回显
func FormatTags(names []string) string {
	return strings.Join(names, ", ")
}
