package builtins

import (
	"strings"

	"github.com/goodsign/monday"
)

// locales maps lowercase language and language_REGION tags to the locales
// strftime can render.
//
//nolint:gochecknoglobals
var locales = map[string]monday.Locale{
	"en":    monday.LocaleEnUS,
	"en_us": monday.LocaleEnUS,
	"en_gb": monday.LocaleEnGB,
	"de":    monday.LocaleDeDE,
	"de_de": monday.LocaleDeDE,
	"de_at": monday.LocaleDeDE,
	"de_ch": monday.LocaleDeDE,
	"fr":    monday.LocaleFrFR,
	"fr_fr": monday.LocaleFrFR,
	"fr_be": monday.LocaleFrFR,
	"fr_ca": monday.LocaleFrCA,
	"es":    monday.LocaleEsES,
	"es_es": monday.LocaleEsES,
	"es_mx": monday.LocaleEsES,
	"it":    monday.LocaleItIT,
	"it_it": monday.LocaleItIT,
	"nl":    monday.LocaleNlNL,
	"nl_nl": monday.LocaleNlNL,
	"nl_be": monday.LocaleNlBE,
	"pt":    monday.LocalePtPT,
	"pt_pt": monday.LocalePtPT,
	"pt_br": monday.LocalePtBR,
	"pl":    monday.LocalePlPL,
	"pl_pl": monday.LocalePlPL,
	"ru":    monday.LocaleRuRU,
	"ru_ru": monday.LocaleRuRU,
	"sv":    monday.LocaleSvSE,
	"sv_se": monday.LocaleSvSE,
	"da":    monday.LocaleDaDK,
	"da_dk": monday.LocaleDaDK,
	"fi":    monday.LocaleFiFI,
	"fi_fi": monday.LocaleFiFI,
	"nb":    monday.LocaleNbNO,
	"nb_no": monday.LocaleNbNO,
	"cs":    monday.LocaleCsCZ,
	"cs_cz": monday.LocaleCsCZ,
	"tr":    monday.LocaleTrTR,
	"tr_tr": monday.LocaleTrTR,
	"ja":    monday.LocaleJaJP,
	"ja_jp": monday.LocaleJaJP,
	"zh":    monday.LocaleZhCN,
	"zh_cn": monday.LocaleZhCN,
	"zh_tw": monday.LocaleZhTW,
}

// ParseLocale resolves a locale tag such as "fr", "fr-BE" or "pt_BR",
// falling back from the regional tag to the language alone. ok is false
// when neither is known, in which case en_US is returned.
func ParseLocale(tag string) (locale monday.Locale, ok bool) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(tag), "-", "_"))

	if l, ok := locales[key]; ok {
		return l, true
	}

	if lang, _, found := strings.Cut(key, "_"); found {
		if l, ok := locales[lang]; ok {
			return l, true
		}
	}

	return monday.LocaleEnUS, false
}

// monthFirst reports whether numeric dates are conventionally written month
// first in the locale.
func monthFirst(locale monday.Locale) bool {
	return locale == monday.LocaleEnUS
}
