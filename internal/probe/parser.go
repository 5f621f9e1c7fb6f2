package probe

import (
	"class-seat-monitor/internal/models"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ListsCourse reports whether the scheduler's error container lists course
// as unknown or not offered. The container holds one <li> per rejected
// course, each mentioning "PREFIX-CODE"; only this course's key counts.
func ListsCourse(fragment string, course models.CourseIdentifier) (bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return false, fmt.Errorf("failed to parse error message: %w", err)
	}

	key := keyPattern(course)
	items := doc.Find("li")
	if items.Length() == 0 {
		// some error pages render the list as plain text
		return key.MatchString(strings.ToUpper(doc.Text())), nil
	}

	found := false
	items.EachWithBreak(func(i int, s *goquery.Selection) bool {
		if key.MatchString(strings.ToUpper(s.Text())) {
			found = true
			return false
		}
		return true
	})
	return found, nil
}

// keyPattern matches the course key not adjoined by other letters or digits.
func keyPattern(course models.CourseIdentifier) *regexp.Regexp {
	key := regexp.QuoteMeta(strings.ToUpper(course.Key()))
	return regexp.MustCompile(`(^|[^A-Z0-9])` + key + `([^A-Z0-9]|$)`)
}

// CleanText collapses whitespace in text scraped from the page.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
