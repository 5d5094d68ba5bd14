package util

import (
	"strings"

	"github.com/spf13/cast"
)

// ParseID 按十进制解析正整数 ID；空串、符号、0x 前缀、小数点均视为错误，前导零忽略
func ParseID(s string) (uint, error) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, ErrInvalidID
	}
	// cast 以 base 0 解析，去掉前导零避免按八进制处理
	digits := strings.TrimLeft(s, "0")
	if digits == "" {
		return 0, ErrInvalidID
	}
	id, err := cast.ToUintE(digits)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// FormatID 输出 ID 的规范十进制写法
func FormatID(id uint) string {
	return cast.ToString(id)
}
