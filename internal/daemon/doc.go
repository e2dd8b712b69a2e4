// Package daemon wires the notification store and the dismiss scheduler
// behind a single-writer Center. It also owns progress animation tasks,
// internal status notifications, and configuration hot-reload.
package daemon
