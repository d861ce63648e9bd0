package core

import "strings"

// DefaultCategoryColor is used when a subscription references a category that
// was deleted after being used.
const DefaultCategoryColor = "#A78BFA"

// defaultCategories is the closed built-in set. User-added categories are
// stored separately and merged on top.
var defaultCategories = []Category{
	{Name: "影音娱乐", Color: "#FF6B8A"},
	{Name: "工具软件", Color: "#5B9EF4"},
	{Name: "云存储", Color: "#47D4A0"},
	{Name: "会员服务", Color: "#FFB74D"},
	{Name: "其他", Color: "#A78BFA"},
}

// ColorPalette is the rotation for newly added categories.
var ColorPalette = []string{
	"#FF6B8A", "#5B9EF4", "#47D4A0", "#FFB74D", "#A78BFA",
	"#F472B6", "#34D399", "#FBBF24", "#818CF8", "#FB923C",
}

// brandColors maps well-known service name keywords to their brand color.
var brandColors = map[string]string{
	"netflix": "#E50914",
	"spotify": "#1DB954",
	"icloud":  "#3693F3",
	"apple":   "#555555",
	"youtube": "#FF0000",
	"chatgpt": "#10A37F",
	"openai":  "#10A37F",
	"claude":  "#D97757",
	"notion":  "#000000",
	"github":  "#24292E",
	"figma":   "#A259FF",
	"adobe":   "#FF0000",
	"bilibili": "#FB7299",
	"b站":     "#FB7299",
	"爱奇艺":    "#00BE06",
	"腾讯视频":   "#FF6A1E",
	"优酷":     "#1EBFFF",
	"网易云音乐":  "#C20C0C",
	"qq音乐":   "#31C27C",
	"百度网盘":   "#06A7FF",
	"wps":    "#1B6DF1",
	"微信读书":   "#2A8745",
	"京东":     "#E4393C",
}

// DefaultCategories returns a copy of the built-in category set.
func DefaultCategories() []Category {
	return append([]Category(nil), defaultCategories...)
}

// AllCategories merges the built-in set with user-added categories. Identity
// is the exact name; a custom entry shadowed by a default is skipped.
func AllCategories(custom []Category) []Category {
	merged := DefaultCategories()
	for _, cat := range custom {
		exists := false
		for _, c := range merged {
			if c.Name == cat.Name {
				exists = true
				break
			}
		}
		if !exists {
			merged = append(merged, cat)
		}
	}
	return merged
}

// CategoryColor resolves a category name to its display color, falling back
// to DefaultCategoryColor for unknown names.
func CategoryColor(categories []Category, name string) string {
	for _, c := range categories {
		if c.Name == name {
			return c.Color
		}
	}
	return DefaultCategoryColor
}

// AssignCategoryColor picks the first palette color not yet used by an
// existing category, wrapping around once the palette is exhausted.
func AssignCategoryColor(existing []Category) string {
	used := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		used[c.Color] = struct{}{}
	}
	for _, color := range ColorPalette {
		if _, ok := used[color]; !ok {
			return color
		}
	}
	return ColorPalette[len(existing)%len(ColorPalette)]
}

// MatchBrandColor returns the brand color for a service name containing a
// known keyword, or "" when nothing matches.
func MatchBrandColor(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return ""
	}
	for keyword, color := range brandColors {
		if strings.Contains(lower, keyword) {
			return color
		}
	}
	return ""
}
