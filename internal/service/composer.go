package service

import (
	"fmt"
	"strings"

	"viralyst_dev_v1_202608/internal/model"
)

// ==================== 请求规格 ====================

// CategoryLength 启用的内容类别及其篇幅要求（词数，梗图类忽略）
type CategoryLength struct {
	Key    model.CategoryKey
	Length string
}

// ComposeInput 提示词组装的全部输入
type ComposeInput struct {
	SourceText  string
	Platforms   []model.Platform
	Categories  []CategoryLength
	Notes       string
	PersonaDesc string
}

// ==================== 提示词组装 ====================

// ComposePrompts 组装系统指令与用户提示词
// 纯函数：不做网络调用，不读全局状态，方便单测断言
func ComposePrompts(in ComposeInput) (sysInstruction, userPrompt string) {
	return composeSystemInstruction(in), composeUserPrompt(in)
}

func composeSystemInstruction(in ComposeInput) string {
	var reqs []string
	for _, cat := range in.Categories {
		if cat.Key == model.CategoryViralMeme {
			reqs = append(reqs, fmt.Sprintf("- %q: Short witty caption, plus meme_overlay_text.", cat.Key.Label()))
			continue
		}
		length := cat.Length
		if length == "" {
			length = "100"
		}
		reqs = append(reqs, fmt.Sprintf("- %q: approx %s words.", cat.Key.Label(), length))
	}

	var b strings.Builder
	b.WriteString("You are Viralyst, an expert social media ghostwriter. ")
	b.WriteString("Create viral-ready posts from the provided SOURCE.\n\n")
	b.WriteString(`Output strict JSON, one object with the platform keys "linkedin", "twitter", "instagram", each mapping to an array of cards.` + "\n")
	b.WriteString(`Card shape: { "type": "String", "text": "String", "meme_overlay_text": "String", "image_prompt": "String" }` + "\n\n")
	b.WriteString("Produce exactly one card per requested content type, per requested platform:\n")
	b.WriteString(strings.Join(reqs, "\n"))
	b.WriteString("\n\nEvery card needs a vivid image_prompt. PRESERVE FACTS from the SOURCE, never invent statistics.")

	return b.String()
}

func composeUserPrompt(in ComposeInput) string {
	var b strings.Builder
	b.WriteString("SOURCE:\n")
	b.WriteString(in.SourceText)

	if in.PersonaDesc != "" {
		b.WriteString("\n\nTARGET AUDIENCE: This content MUST be written specifically for: \"")
		b.WriteString(in.PersonaDesc)
		b.WriteString("\". Adopt the vocabulary, values, and tone that appeals to this specific demographic cluster.")
	}

	if strings.TrimSpace(in.Notes) != "" {
		b.WriteString("\n\nNOTES: ")
		b.WriteString(strings.TrimSpace(in.Notes))
	}

	names := make([]string, 0, len(in.Platforms))
	for _, p := range in.Platforms {
		names = append(names, string(p))
	}
	b.WriteString("\n\nPLATFORMS: ")
	b.WriteString(strings.Join(names, ", "))

	return b.String()
}
