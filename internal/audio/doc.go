// Package audio plays a sound cue when a new notification appears.
// It uses the beep library to decode WAV, OGG, and MP3 files.
package audio
