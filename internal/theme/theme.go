// Package theme resolves chroma syntax styles and generates their stylesheets.
package theme

import (
	"html/template"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/debemdeboas/folio/internal/cache"
	"github.com/debemdeboas/folio/internal/config"
)

// Names lists the known syntax styles, sorted.
func Names() []string {
	names := styles.Names()
	slices.Sort(names)
	return names
}

func Exists(name string) bool {
	_, ok := styles.Registry[name]
	return ok
}

// Resolve returns name if it is a known style and the configured default otherwise.
func Resolve(name string) string {
	if name != "" && Exists(name) {
		return name
	}
	if config.AppConfig != nil && Exists(config.AppConfig.Render.SyntaxTheme) {
		return config.AppConfig.Render.SyntaxTheme
	}
	return styles.Fallback.Name
}

func Formatter() *html.Formatter {
	return html.New(
		html.WithClasses(true),
		html.TabWidth(4),
		html.WithLineNumbers(true),
		html.WrapLongLines(true),
	)
}

func SyntaxCSS(name string) template.CSS {
	name = Resolve(name)
	if css, ok := cache.GetSyntaxCSS(name); ok {
		return css
	}

	var buf strings.Builder
	style := styles.Get(name)

	bg := style.Get(chroma.Background)
	if !bg.Colour.IsSet() {
		// Styles without a text colour get a dark one on light backgrounds.
		luminance := (0.299*float64(bg.Background.Red()) +
			0.587*float64(bg.Background.Green()) +
			0.114*float64(bg.Background.Blue())) / 255
		if luminance > 0.5 {
			buf.WriteString(".chroma { color: #181818; }\n")
		}
	}

	if err := Formatter().WriteCSS(&buf, style); err != nil {
		return ""
	}

	css := template.CSS(buf.String())
	cache.SetSyntaxCSS(name, css)
	return css
}
