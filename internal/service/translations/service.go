package translations

import (
	"fmt"

	"golang.org/x/text/language"

	"github.com/calhub/CalHub-ReassignService/internal/domain"
)

// Service разрешает локали участников и переводит строки сообщений
// Локаль приводится к ближайшей поддерживаемой через BCP-47 matching,
// при полном несовпадении используется локаль по умолчанию
type Service struct {
	supported []language.Tag
	matcher   language.Matcher
	catalogs  map[string]map[string]string
}

// NewService создает сервис переводов со встроенным каталогом сообщений
func NewService() *Service {
	supported := []language.Tag{
		language.English, // первый тег - fallback
		language.Spanish,
		language.German,
		language.French,
		language.Russian,
	}

	return &Service{
		supported: supported,
		matcher:   language.NewMatcher(supported),
		catalogs:  builtinCatalogs(),
	}
}

// Resolve возвращает ближайшую поддерживаемую локаль для языкового тега
// Некорректные и пустые теги приводятся к локали по умолчанию
func (s *Service) Resolve(locale string) string {
	if locale == "" {
		return domain.DefaultLocale
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return domain.DefaultLocale
	}

	_, idx, _ := s.matcher.Match(tag)
	base, _ := s.supported[idx].Base()
	return base.String()
}

// Language возвращает разрешённый язык для payload календарного события
func (s *Service) Language(locale string) domain.EventLanguage {
	return domain.EventLanguage{Locale: s.Resolve(locale)}
}

// Translate переводит ключ сообщения на указанную локаль
// args подставляются в шаблон через fmt.Sprintf
func (s *Service) Translate(locale, key string, args ...interface{}) string {
	resolved := s.Resolve(locale)

	catalog, ok := s.catalogs[resolved]
	if !ok {
		catalog = s.catalogs[domain.DefaultLocale]
	}

	template, ok := catalog[key]
	if !ok {
		// Отсутствующий ключ добираем из дефолтного каталога
		template, ok = s.catalogs[domain.DefaultLocale][key]
		if !ok {
			return key
		}
	}

	if len(args) == 0 {
		return template
	}
	return fmt.Sprintf(template, args...)
}

func builtinCatalogs() map[string]map[string]string {
	return map[string]map[string]string{
		"en": {
			"event_between_users": "%s between %s and %s",
			"nameless":            "Nameless",
			"meeting_cancelled":   "Cancelled: %s",
		},
		"es": {
			"event_between_users": "%s entre %s y %s",
			"nameless":            "Sin nombre",
			"meeting_cancelled":   "Cancelado: %s",
		},
		"de": {
			"event_between_users": "%s zwischen %s und %s",
			"nameless":            "Namenlos",
			"meeting_cancelled":   "Abgesagt: %s",
		},
		"fr": {
			"event_between_users": "%s entre %s et %s",
			"nameless":            "Sans nom",
			"meeting_cancelled":   "Annulé : %s",
		},
		"ru": {
			"event_between_users": "%s: %s и %s",
			"nameless":            "Без имени",
			"meeting_cancelled":   "Отменено: %s",
		},
	}
}
