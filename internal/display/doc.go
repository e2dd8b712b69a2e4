// Package display is the GTK4/libadwaita frontend. It hosts the compose form
// and history list in an adw window and paints the notification overlay on
// a Wayland layer-shell surface.
//
// Everything in this package runs on the GTK main thread. Other goroutines
// reach it through IdleDispatcher.
package display
