package theme

import (
	"embed"
	"io/fs"
	"path"
	"strings"
)

//go:embed themes/*.css
var bundled embed.FS

// DefaultThemeName is the name of the built-in default theme.
const DefaultThemeName = "default"

// bundledCSS returns a bundled file by base name. Themes may omit the
// .css extension; partials start with an underscore.
func bundledCSS(file string) (string, bool) {
	if !strings.HasSuffix(file, ".css") {
		file += ".css"
	}
	data, err := bundled.ReadFile(path.Join("themes", file))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// bundledThemes returns the bundled theme names in lexical order, without
// partials.
func bundledThemes() []string {
	files, _ := fs.Glob(bundled, "themes/*.css")
	names := make([]string, 0, len(files))
	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), ".css")
		if !strings.HasPrefix(name, "_") {
			names = append(names, name)
		}
	}
	return names
}
