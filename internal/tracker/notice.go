package tracker

import (
	"time"

	"github.com/five82/wordcloud/internal/wordcount"
)

// Severity classifies a notice for presentation.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Kind distinguishes user-facing notices from lifecycle events.
type Kind int

const (
	// KindNotice is a message for the user.
	KindNotice Kind = iota
	// KindIdentifierPublished reports that an upload produced an identifier.
	// The UI uses it to clear the file selection.
	KindIdentifierPublished
)

// Notice is a single event emitted by the controller.
type Notice struct {
	Kind       Kind
	Severity   Severity
	Summary    string
	Detail     string
	Identifier string
	Generation uint64
	Status     wordcount.JobStatus
	At         time.Time
}

// Message joins Summary and Detail the way notices are displayed.
func (n Notice) Message() string {
	if n.Detail == "" {
		return n.Summary
	}
	return n.Summary + " " + n.Detail
}
