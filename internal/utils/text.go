// internal/utils/text.go
package utils

import "unicode"

// LooksEnglish 粗略判断文本是否以英文书写
// 用于校验必须保持英文的字段（appearance / visualPrompt）：
// 统计字母中的非ASCII占比，超过阈值则视为非英文
func LooksEnglish(text string) bool {
	var letters, nonASCII int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if r > unicode.MaxASCII {
			nonASCII++
		}
	}

	// 空文本或纯符号文本不视为违规
	if letters == 0 {
		return true
	}

	return nonASCII*10 < letters*3
}
