package service

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// NormalizeText 非字母数字字符折叠为单个空格并转为小写
func NormalizeText(s string) string {
	return strings.ToLower(nonAlnum.ReplaceAllString(s, " "))
}

// ContainsTrigger 对规范化后的文本做子串匹配（不是分词匹配）
func ContainsTrigger(text, phrase string) bool {
	p := NormalizeText(phrase)
	if strings.TrimSpace(p) == "" {
		return false
	}
	return strings.Contains(NormalizeText(text), p)
}
