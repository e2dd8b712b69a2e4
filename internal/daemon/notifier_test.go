package daemon

import (
	"errors"
	"testing"
	"time"

	"github.com/jmylchreest/notifarea/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternalNotifier_Notify(t *testing.T) {
	c, clock := newTestCenter(t)
	n := NewInternalNotifier(c, nil)

	n.NotifyConfigReloaded()

	got := c.Store().Get("notifarea-config-reload")
	require.NotNil(t, got)
	assert.Equal(t, "Configuration Reloaded", got.Title)
	assert.True(t, got.Visible)

	clock.Advance(5 * time.Second)
	assert.False(t, c.Store().IsVisible("notifarea-config-reload"), "internal notifications expire")
}

func TestInternalNotifier_RateLimit(t *testing.T) {
	c, clock := newTestCenter(t)
	n := NewInternalNotifier(c, nil)
	shows := 0
	c.OnShow(func(*model.Notification, bool) { shows++ })

	n.NotifyConfigError(errors.New("bad"))
	n.NotifyConfigError(errors.New("bad"))
	assert.Equal(t, 1, shows)

	clock.Advance(6 * time.Second)
	n.NotifyConfigError(errors.New("worse"))
	assert.Equal(t, 2, shows)
	assert.Equal(t, 1, c.Store().Count(), "same key replaces")
	assert.Contains(t, c.Store().Get("notifarea-config-error").Message, "worse")
}

func TestInternalNotifier_Levels(t *testing.T) {
	c, _ := newTestCenter(t)
	n := NewInternalNotifier(c, nil)

	n.NotifyThemeReloaded("nord")
	n.NotifyThemeError(errors.New("x"))
	n.NotifyAudioError(errors.New("y"))

	assert.Equal(t, model.DefaultHeaderColor, c.Store().Get("notifarea-theme-reload").HeaderColor)
	assert.Equal(t, levelColors[NotificationLevelWarning], c.Store().Get("notifarea-theme-error").HeaderColor)
	assert.Equal(t, levelColors[NotificationLevelError], c.Store().Get("notifarea-audio-error").HeaderColor)
}

func TestInternalNotifier_Disabled(t *testing.T) {
	c, _ := newTestCenter(t)
	n := NewInternalNotifier(c, nil)
	n.SetEnabled(false)

	n.NotifyConfigReloaded()
	assert.Equal(t, 0, c.Store().Count())
}

func TestInternalNotifier_MinInterval(t *testing.T) {
	c, _ := newTestCenter(t)
	n := NewInternalNotifier(c, nil)
	n.SetMinInterval(0)
	shows := 0
	c.OnShow(func(*model.Notification, bool) { shows++ })

	n.NotifyConfigReloaded()
	n.NotifyConfigReloaded()
	assert.Equal(t, 2, shows)
}
