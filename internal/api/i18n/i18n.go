// Package i18n localizes API messages. Translations are embedded TOML files
// under translation/; the language comes from the "lang" cookie, falling back
// to Accept-Language and finally English.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/labstack/echo/v4"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed translation/*.toml
var translationFS embed.FS

const (
	localizerKey = "localizer"
	langCookie   = "lang"
)

// Translator owns the message bundle.
type Translator struct {
	bundle *i18n.Bundle
}

// New loads every embedded translation file.
func New() (*Translator, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	err := fs.WalkDir(translationFS, "translation", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := translationFS.ReadFile(path)
		if err != nil {
			return err
		}
		_, err = bundle.ParseMessageFileBytes(data, path)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load translations: %w", err)
	}
	return &Translator{bundle: bundle}, nil
}

// MustNew is New for process start-up and tests.
func MustNew() *Translator {
	t, err := New()
	if err != nil {
		panic(err)
	}
	return t
}

// Localizer builds a localizer for the given preferences, most preferred first.
func (t *Translator) Localizer(langs ...string) *i18n.Localizer {
	return i18n.NewLocalizer(t.bundle, langs...)
}

// Middleware stores a request-scoped localizer in the echo context.
func (t *Translator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var lang string
			if cookie, err := c.Cookie(langCookie); err == nil {
				lang = cookie.Value
			} else {
				lang = c.Request().Header.Get("Accept-Language")
			}
			c.Set(localizerKey, t.Localizer(lang))
			return next(c)
		}
	}
}

// T localizes messageID for the request, returning fallback when no
// localizer is attached or the message is unknown.
func T(c echo.Context, messageID, fallback string, data map[string]any) string {
	loc, _ := c.Get(localizerKey).(*i18n.Localizer)
	if loc == nil {
		return fallback
	}
	msg, err := loc.Localize(&i18n.LocalizeConfig{MessageID: messageID, TemplateData: data})
	if err != nil || msg == "" {
		return fallback
	}
	return msg
}
