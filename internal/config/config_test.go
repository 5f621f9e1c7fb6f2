package config

import (
	"class-seat-monitor/internal/models"
	"fmt"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, Validate(cfg))
	assert.Equal(t, DefaultInterval, cfg.Monitor.Interval)
	assert.Equal(t, 5*time.Minute, cfg.Monitor.IntervalDuration())
	assert.Equal(t, DefaultSchedulerURL, cfg.Monitor.SchedulerURL)
	assert.Equal(t, DriverPlaywright, cfg.Monitor.Driver)
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `
monitor:
  interval: 30
  probe_timeout: 8s
courses:
  - {prefix: CSE, code: "1010", section: "001"}
  - {prefix: CSE, code: "1010", section: "001"}
  - {prefix: MTH, code: "2340", section: "011"}
notify:
  min_spacing: 2s
`
	require.NoError(t, afero.WriteFile(fs, "/cfg/config.yaml", []byte(content), 0644))

	cfg, err := Load(fs, "/cfg/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Monitor.Interval)
	assert.Equal(t, 8*time.Second, cfg.Monitor.ProbeTimeout)
	assert.Equal(t, DefaultSchedulerURL, cfg.Monitor.SchedulerURL)
	assert.Equal(t, 2*time.Second, cfg.Notify.MinSpacing)
	assert.Equal(t, DefaultQueueSize, cfg.Notify.QueueSize)
	require.Len(t, cfg.Courses, 2)
	assert.Equal(t, "MTH 2340 011", cfg.Courses[1].String())
}

func TestLoad_MissingFile(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := Load(fs, "/nope/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	cfg, err := LoadOrDefault(fs, "/nope/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_InvalidValues(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `
monitor:
  interval: 0
  driver: selenium
courses:
  - {prefix: "C5E", code: "1010", section: "one"}
`
	require.NoError(t, afero.WriteFile(fs, "config.yaml", []byte(content), 0644))

	_, err := Load(fs, "config.yaml")
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "monitor.interval")
	assert.Contains(t, err.Error(), "monitor.driver")
	assert.Contains(t, err.Error(), "courses[0].prefix")
	assert.Contains(t, err.Error(), "courses[0].section")
}

func TestLoad_Malformed(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "config.yaml", []byte("monitor: ["), 0644))

	_, err := Load(fs, "config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestValidate_EmailRequiresRecipients(t *testing.T) {
	cfg := Default()
	cfg.Notify.Email.Enabled = true

	err := Validate(cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "notify.email.from")
	assert.Contains(t, err.Error(), "notify.email.to")

	cfg.Notify.Email.From = "me@example.com"
	cfg.Notify.Email.To = []string{"you@example.com"}
	assert.NoError(t, Validate(cfg))
}

func TestSaveThenLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := Default()
	cfg.Monitor.Interval = 45
	cfg.Courses = []models.CourseIdentifier{{Prefix: "CSE", Code: "2010", Section: "002"}}

	require.NoError(t, Save(fs, "/home/u/.class-seat-monitor/config.yaml", cfg))

	loaded, err := Load(fs, "/home/u/.class-seat-monitor/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestParseInterval(t *testing.T) {
	cases := map[string]int{
		"-s 30": 30,
		"-m 5":  300,
		"45":    45,
		" -m 1": 60,
	}
	for in, want := range cases {
		got, err := ParseInterval(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "-h 2", "-s", "-s 0", "-m -1", "-s ten", "1 2 3"} {
		_, err := ParseInterval(in)
		assert.ErrorIs(t, err, ErrInvalidInterval, in)
	}
}

func TestParseInterval_RejectsOverflow(t *testing.T) {
	for _, in := range []string{
		"-m 153722867280912931",
		fmt.Sprintf("-m %d", MaxIntervalSeconds/60+1),
		fmt.Sprintf("-s %d", MaxIntervalSeconds+1),
		"99999999999999999999",
	} {
		_, err := ParseInterval(in)
		assert.ErrorIs(t, err, ErrInvalidInterval, in)
	}

	got, err := ParseInterval(fmt.Sprintf("-m %d", MaxIntervalSeconds/60))
	require.NoError(t, err)
	assert.Positive(t, got)
	assert.Positive(t, MonitorConfig{Interval: got}.IntervalDuration())
}

func TestIntervalDuration_TooLarge(t *testing.T) {
	m := MonitorConfig{Interval: int(MaxIntervalSeconds) + 1}
	assert.Zero(t, m.IntervalDuration())

	cfg := Default()
	cfg.Monitor.Interval = int(MaxIntervalSeconds) + 1
	assert.ErrorIs(t, Validate(cfg), ErrInvalidConfig)
}
