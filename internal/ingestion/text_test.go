package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"only whitespace", "   \n  \n  ", ""},
		{"markdown headings kept", "## 工作经历\n  # 张三", "## 工作经历\n# 张三"},
		{"markdown bullets kept", "- Go\n* Rust", "- Go\n* Rust"},
		{"space runs collapse", "Go    Kafka\t\tRedis", "Go Kafka Redis"},
		{"blank runs collapse", "a\n\n\n\n\nb", "a\n\nb"},
		{"line endings", "a\r\nb\rc", "a\nb\nc"},
		{"bullet glyphs", "工作经历\n• 主导   支付系统重构\n  · 提升成功率 3%\n■ 带领 5 人团队", "工作经历\n- 主导 支付系统重构\n- 提升成功率 3%\n- 带领 5 人团队"},
		{"lone glyph is not a bullet", "•", "•"},
		{"invisible characters", "\ufeff张\u200b三\u3000后端工程师\u00a0Go", "张三 后端工程师 Go"},
		{"page markers dropped", "项目经验\n第 1 页\n- 支付网关\n- 2 -\nPage 2 of 3\n1/2\n教育背景", "项目经验\n- 支付网关\n教育背景"},
		{"indentation kept", "    Indented line\n  Less indented", "Indented line\n  Less indented"},
		{"unicode untouched", "Test with émojis 🚀", "Test with émojis 🚀"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}

func TestCleanText_Idempotent(t *testing.T) {
	input := "张三\n\n\n核心技能\n• Go    Rust\n第 1 页\n  · Kafka"
	once := CleanText(input)
	assert.Equal(t, once, CleanText(once))
}

func TestCleanText_DatesAreNotPageMarkers(t *testing.T) {
	input := "2021/2023 字节跳动\n2021.07 - 2023.06"
	assert.Equal(t, input, CleanText(input))
}
