package domain

const (
	DefaultDiscussionSeconds = 60
	MinDiscussionSeconds     = 10
	MaxDiscussionSeconds     = 600
)

type Settings struct {
	DiscussionSeconds      int      `json:"discussionTime"`
	ShowCategoryToImpostor bool     `json:"showCategoryToImpostor"`
	EnabledCategories      []string `json:"enabledCategories"`
}

// DefaultSettings enables every known category, matching what a fresh
// room should look like before the admin touches anything.
func DefaultSettings(categoryIDs []string) Settings {
	enabled := make([]string, len(categoryIDs))
	copy(enabled, categoryIDs)
	return Settings{
		DiscussionSeconds:      DefaultDiscussionSeconds,
		ShowCategoryToImpostor: true,
		EnabledCategories:      enabled,
	}
}

// SettingsPatch carries a partial settings update; nil fields are left
// untouched by the merge.
type SettingsPatch struct {
	DiscussionSeconds      *int      `json:"discussionTime"`
	ShowCategoryToImpostor *bool     `json:"showCategoryToImpostor"`
	EnabledCategories      *[]string `json:"enabledCategories"`
}
