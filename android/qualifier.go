// Package android maps translation-service language codes onto the Android
// resource directory convention (res/values, res/values-pt-rBR, ...).
package android

import "strings"

const (
	languageSeparator = "-"
	regionPrefix      = "r"
)

// QualifierFor returns the Android resource qualifier for a service language code.
//
// A code without a separator is returned unchanged. A code with exactly one
// separator becomes {language}-r{REGION}, the region always upper-cased and
// the language left as given. Anything with more segments is returned unchanged.
//
// Script subtags are not modelled, so zh-Hans yields zh-rHANS.
func QualifierFor(languageCode string) string {
	parts := strings.Split(languageCode, languageSeparator)
	if len(parts) != 2 { //nolint:mnd // language and region
		return languageCode
	}

	return parts[0] + languageSeparator + regionPrefix + strings.ToUpper(parts[1])
}
