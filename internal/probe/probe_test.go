package probe

import (
	"class-seat-monitor/internal/browser"
	"class-seat-monitor/internal/models"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeElement struct {
	checked bool
	text    string
	html    string
	err     error
}

func (e fakeElement) Checked() (bool, error) { return e.checked, e.err }
func (e fakeElement) Text() (string, error)  { return e.text, e.err }
func (e fakeElement) HTML() (string, error)  { return e.html, e.err }

// fakeSession serves a scripted scheduler page.
type fakeSession struct {
	navigateErr error
	submitErr   error
	matched     string
	waitErr     error
	elements    map[string]fakeElement
	panicOn     string

	navigated []string
	submitted []string
	waited    time.Duration
}

func (f *fakeSession) Navigate(ctx context.Context, url string) error {
	f.navigated = append(f.navigated, url)
	return f.navigateErr
}

func (f *fakeSession) SubmitForm(ctx context.Context, query string) error {
	if f.panicOn == "submit" {
		panic("driver crashed")
	}
	f.submitted = append(f.submitted, query)
	return f.submitErr
}

func (f *fakeSession) WaitForAny(ctx context.Context, selectors []string, timeout time.Duration) (string, error) {
	f.waited = timeout
	return f.matched, f.waitErr
}

func (f *fakeSession) FindScoped(ctx context.Context, selector string) (browser.Element, error) {
	el, ok := f.elements[selector]
	if !ok {
		return nil, browser.ErrElementNotFound
	}
	return el, nil
}

func (f *fakeSession) Close() error { return nil }

const schedulerURL = "https://resources.msoe.edu/sched/"

var cse1010 = models.CourseIdentifier{Prefix: "CSE", Code: "1010", Section: "001"}

func newProbe(s *fakeSession) *Probe {
	return New(s, schedulerURL, 5*time.Second, zerolog.Nop())
}

func TestProbe_Available(t *testing.T) {
	s := &fakeSession{
		matched: browser.CheckboxSelector,
		elements: map[string]fakeElement{
			`input[name="courses[CSE-1010][001]"]`: {checked: true},
		},
	}

	out := newProbe(s).Probe(context.Background(), cse1010)

	assert.Equal(t, models.AvailableOutcome(), out)
	assert.Equal(t, []string{schedulerURL}, s.navigated)
	assert.Equal(t, []string{"CSE 1010 001"}, s.submitted)
	assert.Equal(t, 5*time.Second, s.waited)
}

func TestProbe_Unavailable(t *testing.T) {
	s := &fakeSession{
		matched: browser.CheckboxSelector,
		elements: map[string]fakeElement{
			`input[name="courses[CSE-1010][001]"]`: {checked: false},
		},
	}

	assert.Equal(t, models.UnavailableOutcome(), newProbe(s).Probe(context.Background(), cse1010))
}

func TestProbe_SectionMissing(t *testing.T) {
	s := &fakeSession{
		matched: browser.CheckboxSelector,
		elements: map[string]fakeElement{
			`input[name="courses[CSE-1010][002]"]`: {checked: true},
		},
	}

	out := newProbe(s).Probe(context.Background(), cse1010)
	assert.Equal(t, models.Indeterminate, out.Kind)
	assert.Equal(t, models.ElementNotFound, out.Reason)
}

func TestProbe_Timeout(t *testing.T) {
	s := &fakeSession{waitErr: browser.ErrWaitTimeout}

	out := newProbe(s).Probe(context.Background(), cse1010)
	assert.Equal(t, models.Timeout, out.Reason)
}

func TestProbe_NotOffered(t *testing.T) {
	course := models.CourseIdentifier{Prefix: "CSE", Code: "9999", Section: "001"}
	s := &fakeSession{
		matched: browser.ErrorSelector,
		elements: map[string]fakeElement{
			browser.ErrorSelector: {
				text: "The following courses are unknown or not offered:\n  CSE-9999",
				html: `<p>The following courses are unknown or not offered:</p><ul><li>CSE-9999</li></ul>`,
			},
		},
	}

	out := newProbe(s).Probe(context.Background(), course)
	assert.Equal(t, models.Indeterminate, out.Kind)
	assert.Equal(t, models.NotOffered, out.Reason)
	assert.Equal(t, "The following courses are unknown or not offered: CSE-9999", out.Detail)
}

func TestProbe_ErrorForOtherCourse(t *testing.T) {
	s := &fakeSession{
		matched: browser.ErrorSelector,
		elements: map[string]fakeElement{
			browser.ErrorSelector: {
				text: "unknown or not offered: MTH-1110",
				html: `<ul><li>MTH-1110</li></ul>`,
			},
		},
	}

	out := newProbe(s).Probe(context.Background(), cse1010)
	assert.Equal(t, models.TransientError, out.Reason)
	assert.Equal(t, "unknown or not offered: MTH-1110", out.Detail)
}

func TestProbe_AutomationFailure(t *testing.T) {
	s := &fakeSession{navigateErr: errors.New("net::ERR_NAME_NOT_RESOLVED")}

	out := newProbe(s).Probe(context.Background(), cse1010)
	assert.Equal(t, models.UnknownError, out.Reason)
	assert.Contains(t, out.Detail, "ERR_NAME_NOT_RESOLVED")
}

func TestProbe_PanicIsContained(t *testing.T) {
	s := &fakeSession{panicOn: "submit"}

	var out models.CheckOutcome
	require.NotPanics(t, func() {
		out = newProbe(s).Probe(context.Background(), cse1010)
	})
	assert.Equal(t, models.UnknownError, out.Reason)
	assert.Equal(t, "driver crashed", out.Detail)
}

func TestProbe_DeadlineIsTimeout(t *testing.T) {
	s := &fakeSession{submitErr: context.DeadlineExceeded}

	out := newProbe(s).Probe(context.Background(), cse1010)
	assert.Equal(t, models.Timeout, out.Reason)
}

func TestListsCourse(t *testing.T) {
	listed, err := ListsCourse(`<ul><li>cse-9999</li><li>MTH-1110</li></ul>`, models.CourseIdentifier{Prefix: "CSE", Code: "9999", Section: "001"})
	require.NoError(t, err)
	assert.True(t, listed)

	listed, err = ListsCourse(`<ul><li>CSE-99990</li></ul>`, cse1010)
	require.NoError(t, err)
	assert.False(t, listed)

	listed, err = ListsCourse(`CSE-1010 is not offered`, cse1010)
	require.NoError(t, err)
	assert.True(t, listed)
}

func TestListsCourse_WholeKeyOnly(t *testing.T) {
	cse101 := models.CourseIdentifier{Prefix: "CSE", Code: "101", Section: "001"}
	tests := []struct {
		name     string
		fragment string
		course   models.CourseIdentifier
		want     bool
	}{
		{"shorter code inside longer", `<ul><li>CSE-1010</li></ul>`, cse101, false},
		{"lab suffix", `<ul><li>CSE-1010L</li></ul>`, cse1010, false},
		{"longer prefix", `<ul><li>XCSE-1010</li></ul>`, cse1010, false},
		{"plain text overlap", `CSE-1010 is not offered`, cse101, false},
		{"exact item", `<ul><li> CSE-101 </li><li>CSE-1010</li></ul>`, cse101, true},
		{"inside sentence", `<ul><li>Course CSE-1010: not offered.</li></ul>`, cse1010, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listed, err := ListsCourse(tt.fragment, tt.course)
			require.NoError(t, err)
			assert.Equal(t, tt.want, listed)
		})
	}
}
