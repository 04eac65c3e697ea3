package android_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/pitabwire/langsync/android"
)

type LayoutSuite struct {
	suite.Suite
}

func TestLayoutSuite(t *testing.T) {
	suite.Run(t, new(LayoutSuite))
}

func (s *LayoutSuite) TestDefaultLayoutPaths() {
	layout := android.DefaultLayout()

	testCases := []struct {
		code    string
		wantDir string
	}{
		{code: "en", wantDir: "values"},
		{code: "de", wantDir: "values-de"},
		{code: "pt-BR", wantDir: "values-pt-rBR"},
		{code: "pt-br", wantDir: "values-pt-rBR"},
		{code: "zh-Hans-CN", wantDir: "values-zh-Hans-CN"},
		{code: "en-GB", wantDir: "values-en-rGB"},
	}

	for _, tc := range testCases {
		s.Run(tc.code, func() {
			s.Equal(tc.wantDir, layout.Dir(tc.code))
			s.Equal(tc.wantDir+"/strings.xml", layout.Path(tc.code))
		})
	}
}

func (s *LayoutSuite) TestBaseLocaleNeverQualified() {
	layout := android.DefaultLayout()
	s.False(strings.Contains(layout.Path("en"), "values-"))
}

func (s *LayoutSuite) TestCustomLayout() {
	layout := android.Layout{DirPrefix: "res-strings", Filename: "messages.xml", BaseLocale: "de"}

	s.Equal("res-strings", layout.Dir("de"))
	s.Equal("res-strings-en", layout.Dir("en"))
	s.Equal("res-strings-fr-rCA/messages.xml", layout.Path("fr-CA"))
}

func (s *LayoutSuite) TestZeroLayoutFallsBackToDefaults() {
	var layout android.Layout
	s.Equal("values/strings.xml", layout.Path("en"))
	s.Equal("values-pt-rBR/strings.xml", layout.Path("pt-BR"))
}
