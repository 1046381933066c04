package leave

import "time"

const (
	TypeCasual = "Casual"
	TypeSick   = "Sick"
	TypePaid   = "Paid"
	TypeUnpaid = "Unpaid"
)

var Types = []string{TypeCasual, TypeSick, TypePaid, TypeUnpaid}

const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

const (
	DefaultCasual = 10
	DefaultSick   = 7
	DefaultPaid   = 15
)

type Leave struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employeeId"`
	LeaveType  string     `json:"leaveType"`
	StartDate  string     `json:"startDate"`
	EndDate    string     `json:"endDate"`
	Days       int        `json:"days"`
	Reason     string     `json:"reason"`
	Status     string     `json:"status"`
	AppliedAt  time.Time  `json:"appliedDate"`
	ApprovedBy string     `json:"approvedBy,omitempty"`
	DecidedAt  *time.Time `json:"decidedAt,omitempty"`
}

// Balance holds the remaining days per bucket. Unpaid leave has no bucket.
// Applied lists the approved leaves already deducted from it.
type Balance struct {
	EmployeeID string   `json:"employeeId"`
	Casual     int      `json:"casual"`
	Sick       int      `json:"sick"`
	Paid       int      `json:"paid"`
	Applied    []string `json:"appliedLeaves,omitempty"`
}

type SubmitInput struct {
	EmployeeID string `json:"employeeId"`
	LeaveType  string `json:"leaveType"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Reason     string `json:"reason"`
}

type Filter struct {
	EmployeeID string
	Status     string
}

func DefaultBalance(employeeID string) Balance {
	return Balance{EmployeeID: employeeID, Casual: DefaultCasual, Sick: DefaultSick, Paid: DefaultPaid}
}
