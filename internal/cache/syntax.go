package cache

import "html/template"

// Stylesheets are keyed by resolved chroma style name, so the cache holds at
// most one entry per registered style.
var syntaxCache = NewCache[string, template.CSS]()

func GetSyntaxCSS(style string) (template.CSS, bool) {
	return syntaxCache.Get(style)
}

func SetSyntaxCSS(style string, css template.CSS) {
	if css == "" {
		return
	}
	syntaxCache.Set(style, css)
}
