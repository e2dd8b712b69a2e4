// Package theme resolves CSS themes and computes card colors for both
// frontends. Themes are looked up in the user themes directory first and
// fall back to the embedded ones. The package does not link GTK; gtktheme
// installs resolved themes on a display.
package theme
