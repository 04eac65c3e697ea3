package android

import "path"

const (
	DefaultDirPrefix  = "values"
	DefaultFilename   = "strings.xml"
	DefaultBaseLocale = "en"
)

// Layout describes where a locale's resource file lives relative to the
// resource root. Paths are slash separated; sinks translate them for the
// storage they write to.
type Layout struct {
	DirPrefix  string
	Filename   string
	BaseLocale string
}

// DefaultLayout is the stock Android layout: values/strings.xml for English
// and values-{qualifier}/strings.xml for everything else.
func DefaultLayout() Layout {
	return Layout{
		DirPrefix:  DefaultDirPrefix,
		Filename:   DefaultFilename,
		BaseLocale: DefaultBaseLocale,
	}
}

// Dir returns the resource directory for languageCode. The base locale maps
// to the unqualified directory.
func (l Layout) Dir(languageCode string) string {
	l = l.withDefaults()
	if languageCode == l.BaseLocale {
		return l.DirPrefix
	}

	return l.DirPrefix + "-" + QualifierFor(languageCode)
}

// Path returns the resource file path for languageCode.
func (l Layout) Path(languageCode string) string {
	l = l.withDefaults()
	return path.Join(l.Dir(languageCode), l.Filename)
}

func (l Layout) withDefaults() Layout {
	if l.DirPrefix == "" {
		l.DirPrefix = DefaultDirPrefix
	}
	if l.Filename == "" {
		l.Filename = DefaultFilename
	}
	if l.BaseLocale == "" {
		l.BaseLocale = DefaultBaseLocale
	}
	return l
}
