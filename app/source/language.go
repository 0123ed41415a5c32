package source

import (
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

// LanguageGate drops scraped records whose detected language does not
// match the configured target. Only the HTML-scraped sources use it; the
// API-backed sources filter server-side.
type LanguageGate struct {
	tag  language.Tag
	iso3 string
}

// NewLanguageGate parses target as a BCP 47 tag ("en", "en-US", "da").
func NewLanguageGate(target string) (*LanguageGate, error) {
	tag, err := language.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid target language %q: %w", target, err)
	}
	base, _ := tag.Base()
	return &LanguageGate{tag: tag, iso3: base.ISO3()}, nil
}

// Allows reports whether text passes the language check. Empty text fails.
// Detections whatlanggo considers unreliable (very short or ambiguous
// text) are let through rather than dropped.
func (g *LanguageGate) Allows(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return true
	}
	return whatlanggo.LangToString(info.Lang) == g.iso3
}
