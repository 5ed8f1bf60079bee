package model

import "testing"

// ==================== 类目映射测试 ====================

func TestMapCategoryLabel(t *testing.T) {
	tests := []struct {
		label  string
		want   CategoryKey
		wantOk bool
	}{
		{"Official", CategoryOfficial, true},
		{"Official Post", CategoryOfficial, true},
		{"Thought Leader", CategoryThoughtLeader, true},
		{"thought-leadership take", CategoryThoughtLeader, true},
		{"Viral Meme", CategoryViralMeme, true},
		{"MEME", CategoryViralMeme, true},
		{"Casual", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := MapCategoryLabel(tt.label)
		if ok != tt.wantOk || got != tt.want {
			t.Errorf("MapCategoryLabel(%q) = (%q, %v), want (%q, %v)",
				tt.label, got, ok, tt.want, tt.wantOk)
		}
	}
}

func TestParseCategoryKey(t *testing.T) {
	tests := []struct {
		input  string
		want   CategoryKey
		wantOk bool
	}{
		{"official", CategoryOfficial, true},
		{"thought_leader", CategoryThoughtLeader, true},
		{"thought-leader", CategoryThoughtLeader, true},
		{"Thought Leader", CategoryThoughtLeader, true},
		{"viral_meme", CategoryViralMeme, true},
		{"unknown", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseCategoryKey(tt.input)
		if ok != tt.wantOk || got != tt.want {
			t.Errorf("ParseCategoryKey(%q) = (%q, %v), want (%q, %v)",
				tt.input, got, ok, tt.want, tt.wantOk)
		}
	}
}

func TestParsePlatform(t *testing.T) {
	if p, ok := ParsePlatform(" LinkedIn "); !ok || p != PlatformLinkedIn {
		t.Errorf("ParsePlatform(LinkedIn) = (%q, %v)", p, ok)
	}
	if _, ok := ParsePlatform("tiktok"); ok {
		t.Error("ParsePlatform(tiktok) 不应成功")
	}
}

// ==================== CardUpdate 测试 ====================

func TestCardUpdate_Apply(t *testing.T) {
	card := Card{
		Category:    CategoryOfficial,
		Text:        "原文",
		ImagePrompt: "原提示词",
		ImageURL:    "https://example.com/old.png",
	}

	newText := "新文案"
	emptyURL := ""
	loading := false
	update := CardUpdate{
		Text:         &newText,
		ImageURL:     &emptyURL,
		ImageLoading: &loading,
	}

	update.Apply(&card)

	if card.Text != newText {
		t.Errorf("Text = %q, want %q", card.Text, newText)
	}
	// 指向空串表示清除图片
	if card.ImageURL != "" {
		t.Errorf("ImageURL = %q, want empty", card.ImageURL)
	}
	// 未指定的字段不动
	if card.ImagePrompt != "原提示词" {
		t.Errorf("ImagePrompt 被意外修改: %q", card.ImagePrompt)
	}
}

func TestCardUpdate_Empty(t *testing.T) {
	if !(CardUpdate{}).Empty() {
		t.Error("零值更新应为 Empty")
	}

	text := "x"
	if (CardUpdate{Text: &text}).Empty() {
		t.Error("带字段的更新不应为 Empty")
	}
}

// ==================== ResultCollection 测试 ====================

func TestResultCollection_Clone(t *testing.T) {
	rc := ResultCollection{
		PlatformLinkedIn: {
			{Category: CategoryOfficial, Text: "a"},
		},
	}

	cp := rc.Clone()
	cp[PlatformLinkedIn][0].Text = "改掉"

	if rc[PlatformLinkedIn][0].Text != "a" {
		t.Error("Clone 后修改副本不应影响原集合")
	}
}

func TestResultCollection_Find(t *testing.T) {
	rc := ResultCollection{
		PlatformTwitter: {
			{Category: CategoryOfficial},
			{Category: CategoryViralMeme},
		},
	}

	if idx := rc.Find(PlatformTwitter, CategoryViralMeme); idx != 1 {
		t.Errorf("Find = %d, want 1", idx)
	}
	if idx := rc.Find(PlatformTwitter, CategoryThoughtLeader); idx != -1 {
		t.Errorf("Find 未命中应返回 -1, got %d", idx)
	}
	if idx := rc.Find(PlatformInstagram, CategoryOfficial); idx != -1 {
		t.Errorf("Find 空平台应返回 -1, got %d", idx)
	}
}

func TestResultCollection_CardCount(t *testing.T) {
	rc := ResultCollection{
		PlatformLinkedIn: {{}, {}},
		PlatformTwitter:  {{}},
	}
	if n := rc.CardCount(); n != 3 {
		t.Errorf("CardCount = %d, want 3", n)
	}
}
