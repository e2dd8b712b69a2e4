package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// importRegex matches @import "file.css"; or @import 'file.css'; or @import url("file.css");
var importRegex = regexp.MustCompile(`@import\s+(?:url\s*\(\s*)?["']([^"']+)["']\s*\)?;?`)

// Theme is a resolved CSS theme.
type Theme struct {
	Name      string // Theme name (without .css extension)
	Path      string // Full path to the CSS file (empty when bundled)
	CSS       string // The CSS content with imports inlined
	IsBundled bool
}

// NewTheme loads a CSS file and inlines its @import statements.
func NewTheme(name, path string) (*Theme, error) {
	css, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme %q: %w", name, err)
	}

	return &Theme{
		Name: name,
		Path: path,
		CSS:  ProcessImports(string(css), filepath.Dir(path), nil),
	}, nil
}

// Resolve finds a theme by name, preferring themesDir over the bundled
// themes. Unknown names fall back to the default theme; found is false then.
func Resolve(name, themesDir string) (t *Theme, found bool, err error) {
	if name == "" {
		name = DefaultThemeName
	}

	if themesDir != "" {
		path := filepath.Join(themesDir, name+".css")
		if _, statErr := os.Stat(path); statErr == nil {
			t, err := NewTheme(name, path)
			if err == nil {
				return t, true, nil
			}
			return nil, false, err
		}
	}

	if css, ok := bundledCSS(name); ok && !strings.HasPrefix(name, "_") {
		return &Theme{Name: name, CSS: ProcessImports(css, "", nil), IsBundled: true}, true, nil
	}

	css, _ := bundledCSS(DefaultThemeName)
	return &Theme{Name: DefaultThemeName, CSS: ProcessImports(css, "", nil), IsBundled: true}, false, nil
}

// ProcessImports resolves and inlines @import statements in CSS.
// Imports are resolved relative to baseDir; the seen map prevents cycles.
func ProcessImports(css string, baseDir string, seen map[string]bool) string {
	if seen == nil {
		seen = make(map[string]bool)
	}

	return importRegex.ReplaceAllStringFunc(css, func(match string) string {
		submatch := importRegex.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}

		importPath := submatch[1]
		fullPath := importPath
		if !filepath.IsAbs(importPath) {
			fullPath = filepath.Join(baseDir, importPath)
		}

		if seen[fullPath] {
			return "/* circular import prevented: " + importPath + " */"
		}
		seen[fullPath] = true

		importedCSS, err := os.ReadFile(fullPath)
		if err != nil {
			if embeddedCSS, found := bundledCSS(filepath.Base(importPath)); found {
				return "/* imported (embedded): " + importPath + " */\n" + ProcessImports(embeddedCSS, "", seen)
			}
			return "/* import failed: " + importPath + " - " + err.Error() + " */"
		}

		processed := ProcessImports(string(importedCSS), filepath.Dir(fullPath), seen)
		return "/* imported: " + importPath + " */\n" + processed
	})
}

// ThemeInfo provides basic theme information for listing.
type ThemeInfo struct {
	Name      string
	Path      string
	IsDefault bool
	IsBundled bool
}

// ListAvailableThemes lists bundled themes followed by user themes in themesDir.
func ListAvailableThemes(themesDir string) ([]ThemeInfo, error) {
	seen := make(map[string]bool)
	var themes []ThemeInfo

	for _, name := range bundledThemes() {
		seen[name] = true
		themes = append(themes, ThemeInfo{
			Name:      name,
			IsDefault: name == DefaultThemeName,
			IsBundled: true,
		})
	}

	if themesDir == "" {
		return themes, nil
	}

	entries, err := os.ReadDir(themesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return themes, nil
		}
		return themes, err
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".css" || strings.HasPrefix(name, "_") {
			continue
		}
		themeName := strings.TrimSuffix(name, ".css")
		if seen[themeName] {
			continue
		}
		seen[themeName] = true
		themes = append(themes, ThemeInfo{
			Name: themeName,
			Path: filepath.Join(themesDir, name),
		})
	}

	return themes, nil
}
