package audio

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// Player decodes, caches and plays sound files.
type Player struct {
	mu          sync.Mutex
	logger      *slog.Logger
	volume      float64 // 0.0 to 1.0
	initialized bool
	sampleRate  beep.SampleRate

	cacheMu sync.RWMutex
	cache   map[string]*beep.Buffer
}

// NewPlayer creates a new audio player.
func NewPlayer(logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}

	return &Player{
		logger:     logger,
		volume:     1.0,
		sampleRate: beep.SampleRate(44100),
		cache:      make(map[string]*beep.Buffer),
	}
}

// SetVolume sets the playback volume, clamped to [0,1].
func (p *Player) SetVolume(volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = min(max(volume, 0), 1)
}

// GetVolume returns the current volume.
func (p *Player) GetVolume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Play plays a sound file, decoding and caching it on first use.
func (p *Player) Play(path string) error {
	if path == "" {
		return nil
	}

	buffer, err := p.buffer(path)
	if err != nil {
		p.logger.Warn("failed to load sound", "path", path, "error", err)
		return err
	}
	if err := p.ensureInitialized(buffer.Format().SampleRate); err != nil {
		return err
	}
	p.playBuffer(buffer)
	return nil
}

// Preload decodes a sound file into the cache.
func (p *Player) Preload(path string) error {
	if path == "" {
		return nil
	}
	_, err := p.buffer(path)
	return err
}

func (p *Player) buffer(path string) (*beep.Buffer, error) {
	p.cacheMu.RLock()
	buffer, ok := p.cache[path]
	p.cacheMu.RUnlock()
	if ok {
		return buffer, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sound file: %w", err)
	}
	defer func() { _ = f.Close() }()

	buffer, err = decode(f, filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	p.cacheMu.Lock()
	p.cache[path] = buffer
	p.cacheMu.Unlock()

	p.logger.Debug("loaded sound", "path", path)
	return buffer, nil
}

// decode reads an entire sound into memory. ext selects the decoder.
func decode(r io.ReadCloser, ext string) (*beep.Buffer, error) {
	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
		err      error
	)

	switch strings.ToLower(ext) {
	case ".wav":
		streamer, format, err = wav.Decode(r)
	case ".ogg":
		streamer, format, err = vorbis.Decode(r)
	case ".mp3":
		streamer, format, err = mp3.Decode(r)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode sound: %w", err)
	}
	defer func() { _ = streamer.Close() }()

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	return buffer, nil
}

func (p *Player) ensureInitialized(sampleRate beep.SampleRate) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}

	p.sampleRate = sampleRate
	p.initialized = true
	p.logger.Debug("speaker initialized", "sample_rate", sampleRate)
	return nil
}

func (p *Player) playBuffer(buffer *beep.Buffer) {
	p.mu.Lock()
	volume := p.volume
	sampleRate := p.sampleRate
	p.mu.Unlock()

	var streamer beep.Streamer = buffer.Streamer(0, buffer.Len())
	if buffer.Format().SampleRate != sampleRate {
		streamer = beep.Resample(4, buffer.Format().SampleRate, sampleRate, streamer)
	}
	if volume < 1.0 {
		streamer = &effects.Volume{
			Streamer: streamer,
			Base:     2,
			Volume:   volumeExponent(volume),
			Silent:   volume == 0,
		}
	}

	speaker.Play(streamer)
}

// ClearCache drops all decoded sounds.
func (p *Player) ClearCache() {
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()
	p.cache = make(map[string]*beep.Buffer)
}

// Cached reports whether path has been decoded.
func (p *Player) Cached(path string) bool {
	p.cacheMu.RLock()
	defer p.cacheMu.RUnlock()
	_, ok := p.cache[path]
	return ok
}

// Close stops playback and releases the speaker.
func (p *Player) Close() {
	p.mu.Lock()
	if p.initialized {
		speaker.Close()
		p.initialized = false
	}
	p.mu.Unlock()

	p.ClearCache()
}

// volumeExponent converts a linear volume to an exponent of base 2, the
// unit effects.Volume expects. Halving the volume lowers it by one.
func volumeExponent(volume float64) float64 {
	if volume <= 0 {
		return -10
	}
	return math.Log2(volume)
}
