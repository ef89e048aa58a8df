package util

import (
	"strconv"
	"strings"
)

// ParseID 解析路径中的正整数 ID
func ParseID(raw string) (uint64, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// ClampLimit 把分页大小限制在 (0, max] 区间内
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
