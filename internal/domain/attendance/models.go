package attendance

import "time"

const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
	StatusHalfDay = "Half-day"
	StatusWFH     = "WFH"
)

var Statuses = []string{StatusPresent, StatusAbsent, StatusHalfDay, StatusWFH}

// Record is one employee's attendance for one calendar date.
type Record struct {
	ID            string     `json:"id"`
	EmployeeID    string     `json:"employeeId"`
	Date          string     `json:"date"`
	Status        string     `json:"status"`
	OvertimeHours float64    `json:"overtimeHours"`
	Notes         string     `json:"notes,omitempty"`
	CheckInTime   *time.Time `json:"checkInTime,omitempty"`
	CheckOutTime  *time.Time `json:"checkOutTime,omitempty"`
}

type RecordInput struct {
	EmployeeID    string  `json:"employeeId"`
	Date          string  `json:"date"`
	Status        string  `json:"status"`
	OvertimeHours float64 `json:"overtimeHours"`
	Notes         string  `json:"notes"`
}

type Filter struct {
	EmployeeID string
	StartDate  string
	EndDate    string
}

// RecordID is the storage key; one record exists per employee and date.
func RecordID(employeeID, date string) string {
	return "att-" + employeeID + "-" + date
}

// PresentDays counts Present and WFH records. Every other status is a day away.
func PresentDays(records []Record) int {
	days := 0
	for _, rec := range records {
		if rec.Status == StatusPresent || rec.Status == StatusWFH {
			days++
		}
	}
	return days
}
