package enrich

import (
	"fmt"
	"strings"

	"newsreel/config"
)

// Categories is the closed label set the classifier may answer with.
// Anything else normalizes to the default label.
var Categories = []string{
	"科技", "财经", "体育", "娱乐", "国际", "社会", "健康", config.DefaultCategory,
}

const summaryPromptTemplate = `请为以下新闻生成一个简短的中文摘要，要求口语化、适合配音朗读，限制在%d字以内。

标题：%s
内容：%s

输出格式：直接输出摘要文本，不要前缀或说明。`

const classifyPromptTemplate = `请为以下新闻选择一个最合适的分类，只能从这些标签中选一个：%s。

标题：%s
内容：%s

输出格式：直接输出分类标签，不要其他内容。`

const scriptPromptTemplate = `请把以下新闻改写成一个短视频解说脚本，分成2到4段，每段一句口语化的解说词。

标题：%s
内容：%s

输出格式：JSON数组，每个元素形如 {"text": "解说词", "image_url": "", "duration": 10}，不要其他内容。`

func summaryPrompt(title, description string) string {
	return fmt.Sprintf(summaryPromptTemplate, config.MaxSummaryChars, orDefault(title, "无标题"), orDefault(description, "无内容"))
}

func classifyPrompt(title, description string) string {
	return fmt.Sprintf(classifyPromptTemplate, strings.Join(Categories, "、"), orDefault(title, "无标题"), orDefault(description, "无内容"))
}

func scriptPrompt(title, description string) string {
	return fmt.Sprintf(scriptPromptTemplate, orDefault(title, "无标题"), orDefault(description, "无内容"))
}

// NormalizeCategory maps a model answer onto the closed label set.
// Unknown labels land on the default category.
func NormalizeCategory(label string) string {
	label = strings.TrimSpace(label)
	for _, known := range Categories {
		if label == known || strings.Contains(label, known) {
			return known
		}
	}
	return config.DefaultCategory
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
