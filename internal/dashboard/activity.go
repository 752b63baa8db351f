package dashboard

import (
	"fmt"
	"time"
)

type LogType string

const (
	LogTypeAll           LogType = "All"
	LogTypeLogin         LogType = "Login"
	LogTypeLogout        LogType = "Logout"
	LogTypeDataAccess    LogType = "Data Access"
	LogTypeSystemChanges LogType = "System Changes"
	LogTypeError         LogType = "Error"
)

func LogTypes() []LogType {
	return []LogType{
		LogTypeAll,
		LogTypeLogin,
		LogTypeLogout,
		LogTypeDataAccess,
		LogTypeSystemChanges,
		LogTypeError,
	}
}

const dateLayout = "2006-01-02"

// ActivityFilter holds the activity log filter controls. Applying it only
// acknowledges the request; there are no entries to narrow down.
type ActivityFilter struct {
	Type LogType
	Date time.Time
	User string
}

// ParseActivityFilter reads the filter form. An empty type selects All and an
// empty date selects today.
func ParseActivityFilter(logType, date, user string, today time.Time) (ActivityFilter, error) {
	t, err := parseOption(logType, LogTypes())
	if err != nil {
		return ActivityFilter{}, err
	}
	f := ActivityFilter{Type: t, User: user}
	if date == "" {
		f.Date = truncateDay(today)
		return f, nil
	}
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return ActivityFilter{}, fmt.Errorf("%w: date %q", ErrInvalidOption, date)
	}
	f.Date = d
	return f, nil
}

// ActivityEntry describes one activity log record.
type ActivityEntry struct {
	Timestamp string `json:"timestamp"`
	UserID    string `json:"user_id"`
	Action    string `json:"action"`
	Resource  string `json:"resource"`
	IPAddress string `json:"ip_address"`
	Status    string `json:"status"`
	Details   string `json:"details"`
}

// ActivityEntrySchema is the example structure shown in the "Log Entry
// Structure" panel.
func ActivityEntrySchema() ActivityEntry {
	return ActivityEntry{
		Timestamp: "ISO 8601 format",
		UserID:    "string",
		Action:    "string",
		Resource:  "string",
		IPAddress: "string",
		Status:    "success/failure",
		Details:   "string",
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
