package models

import "fmt"

// Availability is the kind of a CheckOutcome.
type Availability int

const (
	Indeterminate Availability = iota
	Available
	Unavailable
)

func (a Availability) String() string {
	switch a {
	case Available:
		return "available"
	case Unavailable:
		return "unavailable"
	default:
		return "indeterminate"
	}
}

// Reason explains why an outcome is indeterminate.
type Reason int

const (
	ReasonNone Reason = iota
	NotOffered
	Timeout
	ElementNotFound
	TransientError
	UnknownError
)

func (r Reason) String() string {
	switch r {
	case NotOffered:
		return "not_offered"
	case Timeout:
		return "timeout"
	case ElementNotFound:
		return "element_not_found"
	case TransientError:
		return "transient_error"
	case UnknownError:
		return "unknown_error"
	default:
		return "none"
	}
}

// CheckOutcome is the result of one probe. The zero value is not a valid
// outcome; use the constructors.
type CheckOutcome struct {
	Kind   Availability `json:"kind"`
	Reason Reason       `json:"reason,omitempty"`
	// Detail carries raw text for indeterminate outcomes, e.g. the site's
	// error message.
	Detail string `json:"detail,omitempty"`
}

func AvailableOutcome() CheckOutcome   { return CheckOutcome{Kind: Available} }
func UnavailableOutcome() CheckOutcome { return CheckOutcome{Kind: Unavailable} }

// IndeterminateOutcome builds an indeterminate outcome for reason.
func IndeterminateOutcome(reason Reason, detail string) CheckOutcome {
	return CheckOutcome{Kind: Indeterminate, Reason: reason, Detail: detail}
}

func (o CheckOutcome) IsAvailable() bool { return o.Kind == Available }

func (o CheckOutcome) String() string {
	if o.Kind != Indeterminate {
		return o.Kind.String()
	}
	return fmt.Sprintf("indeterminate(%s)", o.Reason)
}

// Describe renders the status line shown to the user for course.
func (o CheckOutcome) Describe(course CourseIdentifier) string {
	switch o.Kind {
	case Available:
		return fmt.Sprintf("Class %s IS available! SCHEDULE NOW!!!!", course)
	case Unavailable:
		return fmt.Sprintf("Class %s NOT available", course)
	}

	var msg string
	switch o.Reason {
	case NotOffered:
		msg = fmt.Sprintf("Class %s is unknown or not offered", course)
	case Timeout:
		msg = fmt.Sprintf("Class %s: the operation timed out", course)
	case ElementNotFound:
		msg = fmt.Sprintf("Class %s: section checkbox does not exist", course)
	case TransientError:
		msg = fmt.Sprintf("Class %s: scheduler reported an error", course)
	default:
		msg = fmt.Sprintf("Class %s: an unexpected error occurred", course)
	}
	if o.Detail != "" {
		msg += ": " + o.Detail
	}
	return msg
}
