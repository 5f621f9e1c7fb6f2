package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCourse(t *testing.T) {
	c, err := ParseCourse("  cse   1010 001 ")
	require.NoError(t, err)
	assert.Equal(t, CourseIdentifier{Prefix: "CSE", Code: "1010", Section: "001"}, c)
	assert.Equal(t, "CSE 1010 001", c.String())
	assert.Equal(t, "CSE-1010", c.Key())
	assert.Equal(t, "courses[CSE-1010][001]", c.CheckboxName())
}

func TestParseCourse_BadFormat(t *testing.T) {
	for _, in := range []string{"", "CSE", "CSE 1010", "CSE 1010 001 extra"} {
		_, err := ParseCourse(in)
		assert.ErrorIs(t, err, ErrCourseFormat, in)
	}
}

func TestParseCourseList(t *testing.T) {
	courses, err := ParseCourseList("CSE 1010 001, MTH 2340 011,,CSE 1010 001")
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "CSE 1010 001", courses[0].String())
	assert.Equal(t, "MTH 2340 011", courses[1].String())
	assert.Equal(t, "CSE 1010 001, MTH 2340 011", JoinCourses(courses))
}

func TestParseCourseList_Empty(t *testing.T) {
	_, err := ParseCourseList(" , ")
	assert.ErrorIs(t, err, ErrNoCourses)

	_, err = ParseCourseList("CSE 1010")
	assert.ErrorIs(t, err, ErrCourseFormat)
}

func TestIsFixedWidthSection(t *testing.T) {
	assert.True(t, IsFixedWidthSection("001"))
	assert.False(t, IsFixedWidthSection("1"))
	assert.False(t, IsFixedWidthSection("00A"))
}

func TestOutcomeDescribe(t *testing.T) {
	c := CourseIdentifier{Prefix: "CSE", Code: "1010", Section: "001"}

	assert.Equal(t, "Class CSE 1010 001 IS available! SCHEDULE NOW!!!!", AvailableOutcome().Describe(c))
	assert.Equal(t, "Class CSE 1010 001 NOT available", UnavailableOutcome().Describe(c))
	assert.Contains(t, IndeterminateOutcome(TransientError, "server busy").Describe(c), "server busy")
	assert.Equal(t, "indeterminate(not_offered)", IndeterminateOutcome(NotOffered, "").String())
	assert.True(t, AvailableOutcome().IsAvailable())
	assert.False(t, IndeterminateOutcome(Timeout, "").IsAvailable())
}

func TestStatusEntryString(t *testing.T) {
	c := CourseIdentifier{Prefix: "CSE", Code: "1010", Section: "001"}
	ts := time.Date(2024, 3, 13, 9, 30, 0, 0, time.UTC)

	e := NewStatusEntry(ts, c, UnavailableOutcome())
	assert.Equal(t, "[2024-03-13 09:30:00] Class CSE 1010 001 NOT available", e.String())
}
