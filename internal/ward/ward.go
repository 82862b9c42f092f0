// Package ward holds the registry of administrative zones that scope
// excerpt-number counters.
package ward

import "time"

// Ward is an administrative zone. Names are unique and case-sensitive; the
// registry preserves insertion order for display.
type Ward struct {
	Name    string    `json:"name"`
	AddedAt time.Time `json:"added_at"`
}

// DefaultWards is the built-in set ResetToDefault restores: the communes of
// the district this deployment serves.
func DefaultWards() []string {
	return []string{
		"Minh Hưng",
		"Minh Thành",
		"Minh Long",
		"Minh Thắng",
		"Minh Lập",
		"Minh Đức",
		"Thành Tâm",
		"Nha Bích",
		"Quang Minh",
		"Tân Quan",
	}
}
