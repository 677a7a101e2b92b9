// internal/models/types.go
package models

// Language 项目内容的创作语言，仅支持两种
type Language string

const (
	LanguageArabic  Language = "ar"
	LanguageEnglish Language = "en"
)

// IsValid 检查语言标签是否受支持
func (l Language) IsValid() bool {
	return l == LanguageArabic || l == LanguageEnglish
}

// Platform 目标发布平台
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
)

func (p Platform) IsValid() bool {
	switch p {
	case PlatformYouTube, PlatformTikTok, PlatformInstagram, PlatformTwitter, PlatformLinkedIn:
		return true
	}
	return false
}

// VideoFormat 视频形态
type VideoFormat string

const (
	FormatLong  VideoFormat = "long"
	FormatShort VideoFormat = "short"
	FormatReel  VideoFormat = "reel"
)

func (f VideoFormat) IsValid() bool {
	switch f {
	case FormatLong, FormatShort, FormatReel:
		return true
	}
	return false
}

// Tone 剧本基调
type Tone string

const (
	ToneFunny         Tone = "funny"
	ToneSerious       Tone = "serious"
	ToneEducational   Tone = "educational"
	ToneDramatic      Tone = "dramatic"
	ToneInspirational Tone = "inspirational"
	ToneCasual        Tone = "casual"
)

func (t Tone) IsValid() bool {
	switch t {
	case ToneFunny, ToneSerious, ToneEducational, ToneDramatic, ToneInspirational, ToneCasual:
		return true
	}
	return false
}

// GenerationStatus 单个生成操作的UI可见状态
type GenerationStatus string

const (
	StatusIdle    GenerationStatus = "idle"
	StatusLoading GenerationStatus = "loading"
	StatusSuccess GenerationStatus = "success"
	StatusError   GenerationStatus = "error"
)
