// Package loans derives display state from loan due dates. Every function
// takes an explicit now so that one sampled clock drives a whole render pass;
// mixing clocks within a pass could put the same loan in two buckets at once.
//
// The server's loan status is authoritative for overdue. These helpers exist
// for same-session UI feedback between refreshes.
package loans

import (
	"fmt"
	"math"
	"time"
)

// Bucket is the display classification of a due date.
type Bucket int

const (
	BucketOnTime Bucket = iota
	BucketDueSoon
	BucketOverdue
)

// almostDueWindow is the number of remaining days that counts as "due soon".
const almostDueWindow = 3

// DaysUntilDue returns the ceiling of (due - now) in whole days. Negative
// means overdue by that many days. Exactly zero means due today.
func DaysUntilDue(now, due time.Time) int {
	diff := due.Sub(now)
	return int(math.Ceil(diff.Hours() / 24))
}

// AlmostDue reports whether the due date is between one and three days out.
// A loan due today is not almost due; it is either on time or, once the
// moment passes, overdue.
func AlmostDue(now, due time.Time) bool {
	days := DaysUntilDue(now, due)
	return days > 0 && days <= almostDueWindow
}

// Overdue reports whether the due date is strictly past.
func Overdue(now, due time.Time) bool {
	return DaysUntilDue(now, due) < 0
}

// Classify maps a due date into its display bucket using a single now.
func Classify(now, due time.Time) Bucket {
	switch days := DaysUntilDue(now, due); {
	case days < 0:
		return BucketOverdue
	case days > 0 && days <= almostDueWindow:
		return BucketDueSoon
	default:
		return BucketOnTime
	}
}

// DueLine renders a human description of the due date for list rows.
func DueLine(now, due time.Time) string {
	if due.IsZero() {
		return "no due date"
	}
	switch days := DaysUntilDue(now, due); {
	case days < -1:
		return fmt.Sprintf("%d days overdue", -days)
	case days == -1:
		return "1 day overdue"
	case days == 0:
		return "due today"
	case days == 1:
		return "due tomorrow"
	default:
		return fmt.Sprintf("due in %d days", days)
	}
}
