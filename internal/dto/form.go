package dto

import (
	"sort"
	"strings"
)

// FormError 表单校验失败，Fields 为 字段名 -> 提示，页面据此回显
type FormError struct {
	Fields map[string]string
}

// NewFormError 由单个字段错误构造
func NewFormError(field, msg string) *FormError {
	return &FormError{Fields: map[string]string{field: msg}}
}

func (e *FormError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid form"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}
