// Package localization renders the user-facing CLI text in the operator's language.
package localization

import (
	"context"
	"embed"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pitabwire/util"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Message identifiers shipped in the embedded bundles.
const (
	MsgMissingToken         = "MissingToken"
	MsgMissingTokenHelp     = "MissingTokenHelp"
	MsgRunHeader            = "RunHeader"
	MsgDiscoveryURL         = "DiscoveryURL"
	MsgProgress             = "Progress"
	MsgProgressNamed        = "ProgressNamed"
	MsgLocaleFailed         = "LocaleFailed"
	MsgLocaleSkipped        = "LocaleSkipped"
	MsgDiscoveryFailed      = "DiscoveryFailed"
	MsgNoTranslations       = "NoTranslations"
	MsgInvalidConfiguration = "InvalidConfiguration"
	MsgRunFailed            = "RunFailed"
	MsgDownloadComplete     = "DownloadComplete"
	MsgSummary              = "Summary"
	MsgSavedTo              = "SavedTo"
	MsgDryRunNotice         = "DryRunNotice"
)

//go:embed messages/*.toml
var messageFiles embed.FS

type contextKey string

func (c contextKey) String() string {
	return "langsync/localization/" + string(c)
}

const ctxKeyLanguage = contextKey("languageKey")

// ToContext adds language to the current supplied context.
func ToContext(ctx context.Context, lang []string) context.Context {
	return context.WithValue(ctx, ctxKeyLanguage, lang)
}

// FromContext extracts language from the supplied context if any exist.
func FromContext(ctx context.Context) []string {
	languages, ok := ctx.Value(ctxKeyLanguage).([]string)
	if !ok {
		return nil
	}

	return languages
}

type Manager interface {
	Bundle() *i18n.Bundle
	// Match picks the best supported UI language for the preference list.
	Match(languages ...string) language.Tag
	Translate(ctx context.Context, messageID string) string
	TranslateWithMap(ctx context.Context, messageID string, variables map[string]any) string
	TranslateWithMapAndCount(ctx context.Context, messageID string, variables map[string]any, count int) string
}

type managerImpl struct {
	bundle  *i18n.Bundle
	matcher language.Matcher
}

// NewManager loads the embedded message files. With no languages every
// shipped bundle is loaded.
func NewManager(languages ...string) (Manager, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	if len(languages) == 0 {
		entries, err := messageFiles.ReadDir("messages")
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if _, err = bundle.LoadMessageFileFS(messageFiles, "messages/"+entry.Name()); err != nil {
				return nil, err
			}
		}
	}

	for _, lang := range languages {
		if _, err := bundle.LoadMessageFileFS(messageFiles, "messages/active."+lang+".toml"); err != nil {
			return nil, err
		}
	}

	return &managerImpl{
		bundle:  bundle,
		matcher: language.NewMatcher(bundle.LanguageTags()),
	}, nil
}

// Bundle Access the translation bundle instantiated in the system.
func (s *managerImpl) Bundle() *i18n.Bundle {
	return s.bundle
}

func (s *managerImpl) Match(languages ...string) language.Tag {
	tag, _ := language.MatchStrings(s.matcher, languages...)
	base, _ := tag.Base()
	return language.Make(base.String())
}

// Translate performs a quick translation based on the supplied message id.
func (s *managerImpl) Translate(ctx context.Context, messageID string) string {
	return s.TranslateWithMap(ctx, messageID, map[string]any{})
}

// TranslateWithMap performs a translation with variables based on the supplied message id.
func (s *managerImpl) TranslateWithMap(ctx context.Context, messageID string, variables map[string]any) string {
	return s.localize(ctx, messageID, variables, nil)
}

// TranslateWithMapAndCount performs a translation with variables and can pluralize.
func (s *managerImpl) TranslateWithMapAndCount(
	ctx context.Context,
	messageID string,
	variables map[string]any,
	count int,
) string {
	return s.localize(ctx, messageID, variables, count)
}

// localize resolves messageID in the context languages, falling back to
// English. pluralCount stays nil for messages without plural forms, which
// would otherwise fail the plural lookup.
func (s *managerImpl) localize(ctx context.Context, messageID string, variables map[string]any, pluralCount any) string {
	localizer := i18n.NewLocalizer(s.bundle, FromContext(ctx)...)

	transVersion, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:      messageID,
		DefaultMessage: &i18n.Message{ID: messageID, Other: messageID},
		TemplateData:   variables,
		PluralCount:    pluralCount,
	})
	if err != nil {
		util.Log(ctx).WithError(err).WithField("messageID", messageID).
			Error("could not perform translation")
	}

	return transVersion
}

// EnvironmentLanguages returns the operator's language preferences, most
// specific first. explicit wins over the POSIX locale variables.
func EnvironmentLanguages(explicit string, getenv func(string) string) []string {
	var langs []string
	if explicit != "" {
		langs = append(langs, explicit)
	}

	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if lang := normalizePOSIXLocale(getenv(key)); lang != "" {
			langs = append(langs, lang)
		}
	}

	return langs
}

// normalizePOSIXLocale turns "pt_BR.UTF-8@euro" into "pt-BR".
func normalizePOSIXLocale(v string) string {
	v, _, _ = strings.Cut(v, ".")
	v, _, _ = strings.Cut(v, "@")
	if v == "" || v == "C" || v == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(v, "_", "-")
}

// DisplayName names a Weblate language code in the UI language, or returns
// "" when the code is not a well formed BCP 47 tag.
func DisplayName(ui language.Tag, languageCode string) string {
	tag, err := language.Parse(languageCode)
	if err != nil {
		return ""
	}

	namer := display.Tags(ui)
	if namer == nil {
		namer = display.Tags(language.English)
	}
	return namer.Name(tag)
}
