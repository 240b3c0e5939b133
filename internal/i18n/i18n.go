// Package i18n holds the user-facing message catalog. Arabic is the default
// language; English is available for parents and tooling.
package i18n

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// LangParam is the query parameter used to select a language.
const LangParam = "lang"

// Message keys. The key is the English text.
const (
	TryAgain          = "Something went wrong. Please try again."
	AssistantFailed   = "Something went wrong while getting an answer. Please try again."
	CarbLookupFailed  = "Something went wrong while searching. Please try again."
	FoodNotFound      = "Sorry, I couldn't find information about this food. Try another name."
	InsufficientStars = "Not enough stars: you have %d and need %d."
	AlreadyUnlocked   = "You already have this reward."
	UnknownReward     = "This reward does not exist."
	UnknownGame       = "This game does not exist."
	AlreadyLogged     = "You already logged today. Come back tomorrow!"
	InvalidEntry      = "Please choose your mood, your food and whether you took insulin."
	InvalidReading    = "Please enter a valid day and reading."
	InvalidRequest    = "The request is not valid."
	FeedbackGreat     = "Excellent, champion 💪 Your sugar is balanced today, keep it up!"
	FeedbackEncourage = "That's okay, tomorrow you'll be stronger 🌟 Try to choose healthier food and stick to your dose."
	StarsEarned       = "Great! You earned %d stars ⭐"
)

var supported = []language.Tag{language.Arabic, language.English}

var matcher = language.NewMatcher(supported)

var arabic = map[string]string{
	TryAgain:          "عذرًا! حدث خطأ ما. حاول مرة أخرى لاحقًا.",
	AssistantFailed:   "حدث خطأ أثناء محاولة الحصول على إجابة. يرجى المحاولة مرة أخرى.",
	CarbLookupFailed:  "حدث خطأ أثناء البحث. يرجى المحاولة مرة أخرى.",
	FoodNotFound:      "عذرًا، لم أتمكن من العثور على معلومات حول هذا الطعام. حاول البحث باسم آخر.",
	InsufficientStars: "نجومك غير كافية: لديك %d وتحتاج %d.",
	AlreadyUnlocked:   "لقد حصلت على هذه المكافأة من قبل.",
	UnknownReward:     "هذه المكافأة غير موجودة.",
	UnknownGame:       "هذه اللعبة غير موجودة.",
	AlreadyLogged:     "لقد سجلت يومك بالفعل. عد غدًا!",
	InvalidEntry:      "اختر مزاجك وأكلك وهل أخذت الإنسولين.",
	InvalidReading:    "أدخل يومًا وقراءة صحيحين.",
	InvalidRequest:    "الطلب غير صالح.",
	FeedbackGreat:     "ممتاز يا بطل 💪 سكّرك اليوم متوازن، استمر كذا!",
	FeedbackEncourage: "ما عليه، بكرة بتكون أقوى 🌟 حاول تختار أكل صحي أكثر وتلتزم بجرعتك.",
	StarsEarned:       "رائع! لقد حصلت على %d نجوم ⭐",
}

func init() {
	for key, msg := range arabic {
		if err := message.SetString(language.Arabic, key, msg); err != nil {
			panic(err)
		}
		if err := message.SetString(language.English, key, key); err != nil {
			panic(err)
		}
	}
}

// Default returns the default language.
func Default() language.Tag {
	return language.Arabic
}

// Supported returns the supported languages, default first.
func Supported() []language.Tag {
	return append([]language.Tag(nil), supported...)
}

// Match picks the best supported language for the given tags.
func Match(tags ...language.Tag) language.Tag {
	if len(tags) == 0 {
		return Default()
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default()
	}
	return supported[idx]
}

// Parse resolves a language string such as "en-US" to a supported tag.
func Parse(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return language.Und, false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return language.Und, false
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return language.Und, false
	}
	return supported[idx], true
}

// ResolveTag picks the language for r from ?lang= first, then Accept-Language.
func ResolveTag(r *http.Request) language.Tag {
	return Resolve(r, Default())
}

// Resolve is ResolveTag with a caller-chosen fallback.
func Resolve(r *http.Request, fallback language.Tag) language.Tag {
	if r == nil {
		return fallback
	}
	if tag, ok := Parse(r.URL.Query().Get(LangParam)); ok {
		return tag
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil {
			if _, idx, conf := matcher.Match(tags...); conf != language.No {
				return supported[idx]
			}
		}
	}
	return fallback
}

// Printer returns a message printer for tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// T translates key into tag's language.
func T(tag language.Tag, key string, args ...any) string {
	return Printer(tag).Sprintf(key, args...)
}
