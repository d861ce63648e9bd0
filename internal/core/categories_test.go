package core

import "testing"

func TestAllCategories(t *testing.T) {
	custom := []Category{
		{Name: "学习", Color: "#F472B6"},
		{Name: "影音娱乐", Color: "#000000"}, // shadowed by the built-in entry
	}

	merged := AllCategories(custom)
	if len(merged) != len(defaultCategories)+1 {
		t.Fatalf("merged %d categories, want %d", len(merged), len(defaultCategories)+1)
	}
	if got := CategoryColor(merged, "影音娱乐"); got != "#FF6B8A" {
		t.Fatalf("built-in category must keep its color, got %s", got)
	}
	if got := CategoryColor(merged, "学习"); got != "#F472B6" {
		t.Fatalf("custom category color %s", got)
	}
}

func TestAllCategoriesDoesNotMutateDefaults(t *testing.T) {
	merged := AllCategories([]Category{{Name: "学习", Color: "#F472B6"}})
	merged[0].Color = "#FFFFFF"
	if defaultCategories[0].Color != "#FF6B8A" {
		t.Fatal("built-in set was mutated through the merged slice")
	}
}

func TestCategoryColorFallback(t *testing.T) {
	if got := CategoryColor(DefaultCategories(), "不存在"); got != DefaultCategoryColor {
		t.Fatalf("got %s, want %s", got, DefaultCategoryColor)
	}
}

func TestAssignCategoryColor(t *testing.T) {
	if got := AssignCategoryColor(nil); got != ColorPalette[0] {
		t.Fatalf("first assignment %s, want %s", got, ColorPalette[0])
	}

	existing := []Category{{Name: "a", Color: ColorPalette[0]}, {Name: "b", Color: ColorPalette[1]}}
	if got := AssignCategoryColor(existing); got != ColorPalette[2] {
		t.Fatalf("got %s, want first unused %s", got, ColorPalette[2])
	}

	// Palette exhausted: wrap around by count.
	full := make([]Category, len(ColorPalette))
	for i, color := range ColorPalette {
		full[i] = Category{Name: string(rune('a' + i)), Color: color}
	}
	if got := AssignCategoryColor(full); got != ColorPalette[0] {
		t.Fatalf("wrap-around color %s, want %s", got, ColorPalette[0])
	}
}

func TestMatchBrandColor(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Netflix", "#E50914"},
		{"Netflix 家庭组", "#E50914"},
		{"SPOTIFY Premium", "#1DB954"},
		{"爱奇艺黄金会员", "#00BE06"},
		{"Unknown Service", ""},
		{"  ", ""},
	}

	for _, tc := range cases {
		if got := MatchBrandColor(tc.name); got != tc.want {
			t.Fatalf("MatchBrandColor(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}
