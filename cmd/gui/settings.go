package main

import (
	"class-seat-monitor/internal/config"
	"class-seat-monitor/internal/models"
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// settingsForm holds the editable subset of the configuration.
type settingsForm struct {
	coursesEntry  *widget.Entry
	intervalEntry *widget.Entry
	headlessCheck *widget.Check
	driverSelect  *widget.Select

	desktopCheck   *widget.Check
	emailCheck     *widget.Check
	emailFromEntry *widget.Entry
	emailToEntry   *widget.Entry
	smtpHostEntry  *widget.Entry
	smtpPortEntry  *widget.Entry
	smtpUserEntry  *widget.Entry
	smtpPassEntry  *widget.Entry
}

func newSettingsForm() *settingsForm {
	f := &settingsForm{
		coursesEntry:   widget.NewMultiLineEntry(),
		intervalEntry:  widget.NewEntry(),
		headlessCheck:  widget.NewCheck("Hide the browser window", nil),
		driverSelect:   widget.NewSelect([]string{config.DriverPlaywright, config.DriverRod}, nil),
		desktopCheck:   widget.NewCheck("Desktop notifications", nil),
		emailCheck:     widget.NewCheck("Email notifications", nil),
		emailFromEntry: widget.NewEntry(),
		emailToEntry:   widget.NewEntry(),
		smtpHostEntry:  widget.NewEntry(),
		smtpPortEntry:  widget.NewEntry(),
		smtpUserEntry:  widget.NewEntry(),
		smtpPassEntry:  widget.NewPasswordEntry(),
	}

	f.coursesEntry.SetPlaceHolder("CSE 1010 001, MTH 2340 011")
	f.coursesEntry.SetMinRowsVisible(3)
	f.intervalEntry.SetPlaceHolder("-m 5")
	f.emailFromEntry.SetPlaceHolder("sender@gmail.com")
	f.emailToEntry.SetPlaceHolder("me@example.com, friend@example.com")
	f.smtpHostEntry.SetPlaceHolder("smtp.gmail.com")
	f.smtpPortEntry.SetPlaceHolder("587")
	f.smtpPassEntry.SetPlaceHolder("App Password")
	return f
}

func (f *settingsForm) monitorCard() *widget.Card {
	return widget.NewCard("Monitoring", "One course per line or comma separated",
		container.New(layout.NewFormLayout(),
			widget.NewLabel("Courses:"), f.coursesEntry,
			widget.NewLabel("Interval:"), f.intervalEntry,
			widget.NewLabel("Browser:"), f.headlessCheck,
			widget.NewLabel("Driver:"), f.driverSelect,
		),
	)
}

func (f *settingsForm) notifyCard() *widget.Card {
	return widget.NewCard("Notifications", "",
		container.New(layout.NewFormLayout(),
			widget.NewLabel("Desktop:"), f.desktopCheck,
			widget.NewLabel("Email:"), f.emailCheck,
			widget.NewLabel("From:"), f.emailFromEntry,
			widget.NewLabel("To:"), f.emailToEntry,
			widget.NewLabel("SMTP server:"), f.smtpHostEntry,
			widget.NewLabel("SMTP port:"), f.smtpPortEntry,
			widget.NewLabel("SMTP user:"), f.smtpUserEntry,
			widget.NewLabel("SMTP password:"), f.smtpPassEntry,
		),
	)
}

// load fills the form from cfg.
func (f *settingsForm) load(cfg *config.Config) {
	f.coursesEntry.SetText(strings.Join(courseLines(cfg.Courses), "\n"))
	f.intervalEntry.SetText(strconv.Itoa(cfg.Monitor.Interval))
	f.headlessCheck.SetChecked(cfg.Monitor.Headless)
	f.driverSelect.SetSelected(cfg.Monitor.Driver)

	f.desktopCheck.SetChecked(cfg.Notify.Desktop)
	email := cfg.Notify.Email
	f.emailCheck.SetChecked(email.Enabled)
	f.emailFromEntry.SetText(email.From)
	f.emailToEntry.SetText(strings.Join(email.To, ", "))
	f.smtpHostEntry.SetText(email.SMTP.Host)
	f.smtpPortEntry.SetText(strconv.Itoa(email.SMTP.Port))
	f.smtpUserEntry.SetText(email.SMTP.Username)
	f.smtpPassEntry.SetText(email.SMTP.Password)
}

// apply copies the form into cfg and validates the result. cfg is left
// untouched on error.
func (f *settingsForm) apply(cfg *config.Config) error {
	values := formValues{
		Courses:  f.coursesEntry.Text,
		Interval: f.intervalEntry.Text,
		Headless: f.headlessCheck.Checked,
		Driver:   f.driverSelect.Selected,
		Desktop:  f.desktopCheck.Checked,
		Email:    f.emailCheck.Checked,
		From:     f.emailFromEntry.Text,
		To:       f.emailToEntry.Text,
		SMTPHost: f.smtpHostEntry.Text,
		SMTPPort: f.smtpPortEntry.Text,
		SMTPUser: f.smtpUserEntry.Text,
		SMTPPass: f.smtpPassEntry.Text,
	}
	return values.applyTo(cfg)
}

// formValues is the raw text of the settings form.
type formValues struct {
	Courses, Interval, Driver string
	Headless, Desktop, Email  bool

	From, To                               string
	SMTPHost, SMTPPort, SMTPUser, SMTPPass string
}

func (v formValues) applyTo(cfg *config.Config) error {
	next := *cfg

	courses, err := models.ParseCourseList(strings.ReplaceAll(v.Courses, "\n", ","))
	if err != nil {
		return err
	}
	next.Courses = courses

	seconds, err := config.ParseInterval(v.Interval)
	if err != nil {
		return err
	}
	next.Monitor.Interval = seconds
	next.Monitor.Headless = v.Headless
	if v.Driver != "" {
		next.Monitor.Driver = v.Driver
	}

	next.Notify.Desktop = v.Desktop
	email := next.Notify.Email
	email.Enabled = v.Email
	email.From = strings.TrimSpace(v.From)
	email.To = splitList(v.To)
	email.SMTP.Host = strings.TrimSpace(v.SMTPHost)
	if p := strings.TrimSpace(v.SMTPPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid SMTP port %q", p)
		}
		email.SMTP.Port = port
	}
	email.SMTP.Username = strings.TrimSpace(v.SMTPUser)
	email.SMTP.Password = v.SMTPPass
	next.Notify.Email = email

	if err := config.Validate(&next); err != nil {
		return err
	}
	*cfg = next
	return nil
}

func splitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func courseLines(courses []models.CourseIdentifier) []string {
	lines := make([]string, 0, len(courses))
	for _, c := range courses {
		lines = append(lines, c.String())
	}
	return lines
}
