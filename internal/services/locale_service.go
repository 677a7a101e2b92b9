// internal/services/locale_service.go
package services

import (
	"sync"

	apperrors "github.com/Corphon/StoryReelStudio/internal/errors"
	"github.com/Corphon/StoryReelStudio/internal/models"
)

// LocaleService 管理界面语言与固定键集的本地化文案
// 仅支持阿拉伯语和英语两种语言；核心逻辑除了给实体打语言标签
// 和维护英文专用字段外，对语言不做其他感知
type LocaleService struct {
	mutex    sync.RWMutex
	language models.Language
}

// NewLocaleService 创建本地化服务
func NewLocaleService(defaultLanguage models.Language) *LocaleService {
	if !defaultLanguage.IsValid() {
		defaultLanguage = models.LanguageArabic
	}
	return &LocaleService{language: defaultLanguage}
}

// Language 返回当前界面语言
func (s *LocaleService) Language() models.Language {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.language
}

// SetLanguage 切换界面语言，只接受两种受支持的语言
func (s *LocaleService) SetLanguage(language models.Language) error {
	if !language.IsValid() {
		return apperrors.NewValidationError("不支持的语言: "+string(language), nil)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.language = language
	return nil
}

// T 按当前语言查找显示文案，未知键原样返回
func (s *LocaleService) T(key string) string {
	s.mutex.RLock()
	language := s.language
	s.mutex.RUnlock()

	if text, exists := translations[language][key]; exists {
		return text
	}
	return key
}

// Translations 返回当前语言的完整文案表快照
func (s *LocaleService) Translations() map[string]string {
	s.mutex.RLock()
	language := s.language
	s.mutex.RUnlock()

	table := translations[language]
	out := make(map[string]string, len(table))
	for key, text := range table {
		out[key] = text
	}
	return out
}

// 固定键集的文案表
var translations = map[models.Language]map[string]string{
	models.LanguageArabic: {
		"dashboard":         "لوحة التحكم",
		"characters":        "الشخصيات",
		"scripts":           "السيناريوهات",
		"storyboard":        "القصة المصورة",
		"welcome":           "مرحباً بك، أيها المخرج",
		"ready":             "جاهز لإبداع تحفتك الفنية القادمة؟",
		"charsCreated":      "الشخصيات المنشأة",
		"scriptsWritten":    "السيناريوهات المكتوبة",
		"newProject":        "مشروع جديد",
		"startCreating":     "ابدأ الإبداع",
		"recentChars":       "أحدث الشخصيات",
		"recentScripts":     "أحدث السيناريوهات",
		"noChars":           "لا توجد شخصيات بعد.",
		"noScripts":         "لا توجد سيناريوهات بعد.",
		"createOne":         "أنشئ واحدة الآن",
		"writeOne":          "اكتب واحداً الآن",
		"createCharTitle":   "إنشاء شخصية",
		"genre":             "النوع / البيئة",
		"genrePlaceholder":  "مثال: دراما تاريخية، خيال علمي...",
		"archetype":         "النمط الأصلي (اختياري)",
		"generateProfile":   "توليد الملف التعريفي",
		"generating":        "جاري التوليد...",
		"charRoster":        "قائمة الشخصيات",
		"visualize":         "تخيل بصري",
		"scriptWriter":      "كاتب السيناريو",
		"title":             "العنوان",
		"premise":           "الفكرة / الحبكة",
		"cast":              "طاقم التمثيل (اختياري)",
		"generateScript":    "توليد السيناريو",
		"scriptLibrary":     "مكتبة السيناريوهات",
		"platform":          "المنصة",
		"format":            "التنسيق",
		"videoReel":         "ريلز / فيديو قصير",
		"videoShort":        "شورت",
		"videoLong":         "فيديو طويل",
		"storyboardGallery": "معرض القصة المصورة",
		"storyboardDesc":    "حول سيناريوهاتك إلى فن بصري",
		"generateConcept":   "توليد المشهد",
		"download":          "تحميل",
		"tone":              "نبرة الصوت",
		"toneFunny":         "مضحك / كوميدي",
		"toneSerious":       "جدي / رسمي",
		"toneEducational":   "تعليمي / معلوماتي",
		"toneDramatic":      "درامي / عاطفي",
		"toneInspirational": "ملهم / تحفيزي",
		"toneCasual":        "عفوي / فلوق",
		"gender":            "الجنس",
		"genderMale":        "ذكر",
		"genderFemale":      "أنثى",
		"genderNonBinary":   "غير ثنائي",
		"genderRobot":       "روبوت / آلي",
		"genderMonster":     "وحش / مخلوق",
		"style":             "النمط البصري",
		"styleRealistic":    "واقعي / سينمائي",
		"styleAnime":        "أنمي",
		"style3D":           "ثلاثي الأبعاد (Pixar)",
		"styleCyberpunk":    "سايبربانك",
		"styleOil":          "رسم زيتي",
		"stylePixel":        "بيكسل آرت",
		"addScene":          "إضافة مشهد جديد",
		"addingScene":       "جاري إضافة المشهد...",
		"exportProject":     "تصدير المشروع (JSON)",
		"importProject":     "استيراد مشروع",
		"projectLoaded":     "تم تحميل المشروع بنجاح!",
		"importError":       "خطأ في قراءة ملف المشروع. تأكد من صحة الملف.",
	},
	models.LanguageEnglish: {
		"dashboard":         "Dashboard",
		"characters":        "Characters",
		"scripts":           "Scripts",
		"storyboard":        "Storyboard",
		"welcome":           "Welcome Back, Director",
		"ready":             "Ready to create your next masterpiece?",
		"charsCreated":      "Characters Created",
		"scriptsWritten":    "Scripts Written",
		"newProject":        "New Project",
		"startCreating":     "Start Creating",
		"recentChars":       "Recent Characters",
		"recentScripts":     "Recent Scripts",
		"noChars":           "No characters yet.",
		"noScripts":         "No scripts yet.",
		"createOne":         "Create one now",
		"writeOne":          "Write one now",
		"createCharTitle":   "Create Character",
		"genre":             "Genre / Setting",
		"genrePlaceholder":  "e.g. Cyberpunk Noir, High Fantasy...",
		"archetype":         "Archetype (Optional)",
		"generateProfile":   "Generate Profile",
		"generating":        "Generating...",
		"charRoster":        "Character Roster",
		"visualize":         "Visualize",
		"scriptWriter":      "Script Writer",
		"title":             "Title",
		"premise":           "Premise / Plot",
		"cast":              "Cast Characters (Optional)",
		"generateScript":    "Generate Script",
		"scriptLibrary":     "Scripts Library",
		"platform":          "Platform",
		"format":            "Format",
		"videoReel":         "Reel / Short",
		"videoShort":        "Short",
		"videoLong":         "Long Video",
		"storyboardGallery": "Storyboard Gallery",
		"storyboardDesc":    "Visualize your scenes with AI-generated concept art.",
		"generateConcept":   "Generate Concept",
		"download":          "Download",
		"tone":              "Tone",
		"toneFunny":         "Funny / Comedic",
		"toneSerious":       "Serious / Formal",
		"toneEducational":   "Educational / Informative",
		"toneDramatic":      "Dramatic / Emotional",
		"toneInspirational": "Inspirational / Motivational",
		"toneCasual":        "Casual / Vlog Style",
		"gender":            "Gender",
		"genderMale":        "Male",
		"genderFemale":      "Female",
		"genderNonBinary":   "Non-Binary",
		"genderRobot":       "Robot / Android",
		"genderMonster":     "Monster / Creature",
		"style":             "Visual Style",
		"styleRealistic":    "Realistic / Cinematic",
		"styleAnime":        "Anime",
		"style3D":           "3D Render (Pixar)",
		"styleCyberpunk":    "Cyberpunk",
		"styleOil":          "Oil Painting",
		"stylePixel":        "Pixel Art",
		"addScene":          "Add New Scene",
		"addingScene":       "Adding Scene...",
		"exportProject":     "Export Project (JSON)",
		"importProject":     "Import Project",
		"projectLoaded":     "Project loaded successfully!",
		"importError":       "Error reading project file. Please check the file.",
	},
}
