package models

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrCourseFormat is returned when a course string is not "PREFIX CODE SECTION".
	ErrCourseFormat = errors.New("course must be formatted as PREFIX CODE SECTION")
	// ErrNoCourses is returned when a course list contains no entries.
	ErrNoCourses = errors.New("no courses given")
)

// CourseIdentifier names one section of a course, e.g. CSE 1010 001.
// Values are compared structurally.
type CourseIdentifier struct {
	Prefix  string `yaml:"prefix" json:"prefix" validate:"required,alpha"`
	Code    string `yaml:"code" json:"code" validate:"required,alphanum"`
	Section string `yaml:"section" json:"section" validate:"required,numeric"`
}

// String returns the display form "CSE 1010 001".
func (c CourseIdentifier) String() string {
	return c.Prefix + " " + c.Code + " " + c.Section
}

// Key returns the scheduler's course key "CSE-1010".
func (c CourseIdentifier) Key() string {
	return c.Prefix + "-" + c.Code
}

// CheckboxName returns the form field name of this section's seat checkbox.
func (c CourseIdentifier) CheckboxName() string {
	return fmt.Sprintf("courses[%s][%s]", c.Key(), c.Section)
}

// ParseCourse parses "PREFIX CODE SECTION". Whitespace between the parts may
// be any length; the prefix is upper-cased.
func ParseCourse(s string) (CourseIdentifier, error) {
	parts := strings.Fields(s)
	if len(parts) != 3 {
		return CourseIdentifier{}, fmt.Errorf("%q: %w", strings.TrimSpace(s), ErrCourseFormat)
	}
	return CourseIdentifier{
		Prefix:  strings.ToUpper(parts[0]),
		Code:    strings.ToUpper(parts[1]),
		Section: parts[2],
	}, nil
}

// ParseCourseList parses a comma separated list of courses, e.g.
// "CSE 1010 001, MTH 2340 011". Empty items are skipped and duplicates are
// dropped keeping the first occurrence.
func ParseCourseList(s string) ([]CourseIdentifier, error) {
	var courses []CourseIdentifier
	for _, item := range strings.Split(s, ",") {
		if strings.TrimSpace(item) == "" {
			continue
		}
		course, err := ParseCourse(item)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	courses = UniqueCourses(courses)
	if len(courses) == 0 {
		return nil, ErrNoCourses
	}
	return courses, nil
}

// UniqueCourses removes duplicates while preserving insertion order.
func UniqueCourses(courses []CourseIdentifier) []CourseIdentifier {
	seen := make(map[CourseIdentifier]struct{}, len(courses))
	out := make([]CourseIdentifier, 0, len(courses))
	for _, c := range courses {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// JoinCourses is the inverse of ParseCourseList.
func JoinCourses(courses []CourseIdentifier) string {
	names := make([]string, len(courses))
	for i, c := range courses {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}

// IsFixedWidthSection reports whether the section is a three digit number,
// which is how the scheduler prints sections.
func IsFixedWidthSection(section string) bool {
	if len(section) != 3 {
		return false
	}
	for _, r := range section {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
