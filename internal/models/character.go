// internal/models/character.go
package models

// Character 表示项目中的一个角色档案
// Appearance 始终为英文，因为它会直接作为图像生成的提示词使用
type Character struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	Age         int    `json:"age"`
	Gender      string `json:"gender"`
	VisualStyle string `json:"visualStyle"`
	Personality string `json:"personality"`
	Backstory   string `json:"backstory"`
	Appearance  string `json:"appearance"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// Clone 返回角色的独立副本
func (c *Character) Clone() Character {
	return *c
}
