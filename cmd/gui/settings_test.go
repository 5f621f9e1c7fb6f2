package main

import (
	"class-seat-monitor/internal/config"
	"class-seat-monitor/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormValues_ApplyTo(t *testing.T) {
	cfg := config.Default()
	v := formValues{
		Courses:  "CSE 1010 001\nmth 2340 011, CSE 1010 001",
		Interval: "-m 2",
		Driver:   config.DriverRod,
		Desktop:  true,
		Email:    true,
		From:     " monitor@example.com ",
		To:       "me@example.com, , friend@example.com",
		SMTPHost: "smtp.example.com",
		SMTPPort: "2525",
	}

	require.NoError(t, v.applyTo(cfg))

	assert.Equal(t, []models.CourseIdentifier{
		{Prefix: "CSE", Code: "1010", Section: "001"},
		{Prefix: "MTH", Code: "2340", Section: "011"},
	}, cfg.Courses)
	assert.Equal(t, 120, cfg.Monitor.Interval)
	assert.False(t, cfg.Monitor.Headless)
	assert.Equal(t, config.DriverRod, cfg.Monitor.Driver)
	assert.Equal(t, "monitor@example.com", cfg.Notify.Email.From)
	assert.Equal(t, []string{"me@example.com", "friend@example.com"}, cfg.Notify.Email.To)
	assert.Equal(t, 2525, cfg.Notify.Email.SMTP.Port)
}

func TestFormValues_ApplyToLeavesConfigOnError(t *testing.T) {
	tests := []struct {
		name string
		v    formValues
	}{
		{"no courses", formValues{Courses: " ", Interval: "30"}},
		{"bad course", formValues{Courses: "CSE1010", Interval: "30"}},
		{"bad interval", formValues{Courses: "CSE 1010 001", Interval: "-h 1"}},
		{"bad port", formValues{Courses: "CSE 1010 001", Interval: "30", SMTPPort: "smtp"}},
		{"email without recipients", formValues{Courses: "CSE 1010 001", Interval: "30", Email: true, From: "a@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			before := *cfg
			assert.Error(t, tt.v.applyTo(cfg))
			assert.Equal(t, before, *cfg)
		})
	}
}

func TestCourseLines(t *testing.T) {
	lines := courseLines([]models.CourseIdentifier{{Prefix: "CSE", Code: "1010", Section: "001"}})
	assert.Equal(t, []string{"CSE 1010 001"}, lines)
}
