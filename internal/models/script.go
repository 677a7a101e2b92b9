// internal/models/script.go
package models

// DialogueLine 一句台词
type DialogueLine struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	Emotion string `json:"emotion,omitempty"`
}

// ScriptScene 剧本中的一个场景
// SceneNumber 从1开始、连续递增，由系统分配，绝不直接采用生成器的编号
// VisualPrompt 始终为英文（用于分镜图生成）
type ScriptScene struct {
	ID            string         `json:"id"`
	SceneNumber   int            `json:"sceneNumber"`
	Location      string         `json:"location"`
	Time          string         `json:"time"`
	Description   string         `json:"description"`
	VisualPrompt  string         `json:"visualPrompt"`
	Dialogue      []DialogueLine `json:"dialogue"`
	StoryboardURL string         `json:"storyboardUrl,omitempty"`
}

// Script 一个完整的视频剧本
// Characters 是创建时的角色名快照，不是实时引用；
// 之后重命名角色不会回写到已有剧本
type Script struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Genre      string        `json:"genre"`
	Logline    string        `json:"logline"`
	Platform   Platform      `json:"platform"`
	Format     VideoFormat   `json:"format"`
	Tone       Tone          `json:"tone"`
	Language   Language      `json:"language"`
	Scenes     []ScriptScene `json:"scenes"`
	Characters []string      `json:"characters"`
}

// Clone 返回剧本的深拷贝
func (s *Script) Clone() Script {
	out := *s
	if s.Scenes != nil {
		out.Scenes = make([]ScriptScene, len(s.Scenes))
		for i, scene := range s.Scenes {
			out.Scenes[i] = scene
			if scene.Dialogue != nil {
				out.Scenes[i].Dialogue = append([]DialogueLine(nil), scene.Dialogue...)
			}
		}
	}
	if s.Characters != nil {
		out.Characters = append([]string(nil), s.Characters...)
	}
	return out
}
