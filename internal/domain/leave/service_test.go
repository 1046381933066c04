package leave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hrpayroll/internal/domain/access"
	"hrpayroll/internal/domain/apperr"
	"hrpayroll/internal/domain/audit"
	"hrpayroll/internal/domain/core"
	"hrpayroll/internal/platform/store"
)

var (
	admin = &access.Caller{UserID: "u-admin", Role: access.RoleAdmin}
	sarah = &access.Caller{UserID: "u-sarah", Role: access.RoleEmployee, EmployeeID: "emp-1"}
	mike  = &access.Caller{UserID: "u-mike", Role: access.RoleEmployee, EmployeeID: "emp-2"}
)

type capturedNotice struct {
	employeeID string
	subject    string
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []capturedNotice
}

func (f *fakeNotifier) NotifyEmployee(ctx context.Context, employeeID, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, capturedNotice{employeeID: employeeID, subject: subject})
	return nil
}

// failingBalances fails the next PutIfVersion on leave balances.
type failingBalances struct {
	store.Store
	mu   sync.Mutex
	fail int
}

func (f *failingBalances) PutIfVersion(ctx context.Context, c store.Collection, id string, data []byte, expected int64) (int64, error) {
	f.mu.Lock()
	if c == store.LeaveBalances && f.fail > 0 {
		f.fail--
		f.mu.Unlock()
		return 0, errors.New("store unavailable")
	}
	f.mu.Unlock()
	return f.Store.PutIfVersion(ctx, c, id, data, expected)
}

func newTestService(t *testing.T) (*Service, store.Store, *fakeNotifier) {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemory()
	for _, id := range []string{"emp-1", "emp-2"} {
		_, err := store.Save(ctx, st, store.Employees, id, core.Employee{ID: id, Name: id, IsActive: true})
		require.NoError(t, err)
	}
	notifier := &fakeNotifier{}
	svc := NewService(st, audit.New(st), notifier)
	svc.now = func() time.Time { return time.Date(2024, 2, 20, 10, 0, 0, 0, time.UTC) }
	require.NoError(t, svc.InitBalance(ctx, "emp-1"))
	require.NoError(t, svc.InitBalance(ctx, "emp-2"))
	return svc, st, notifier
}

func submit(t *testing.T, svc *Service, caller *access.Caller, leaveType, start, end string) Leave {
	t.Helper()
	lv, err := svc.Submit(context.Background(), caller, SubmitInput{LeaveType: leaveType, StartDate: start, EndDate: end, Reason: "family"})
	require.NoError(t, err)
	return lv
}

func TestSubmitComputesDaysAndStampsCaller(t *testing.T) {
	svc, _, _ := newTestService(t)

	lv, err := svc.Submit(context.Background(), sarah, SubmitInput{
		EmployeeID: "emp-2",
		LeaveType:  TypeCasual,
		StartDate:  "2024-03-01",
		EndDate:    "2024-03-03",
		Reason:     " trip ",
	})
	require.NoError(t, err)
	require.Equal(t, "emp-1", lv.EmployeeID)
	require.Equal(t, 3, lv.Days)
	require.Equal(t, StatusPending, lv.Status)
	require.Equal(t, "trip", lv.Reason)
}

func TestSubmitValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, sarah, SubmitInput{LeaveType: TypeSick, StartDate: "2024-03-01", EndDate: "2024-03-01"})
	require.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.Submit(ctx, sarah, SubmitInput{StartDate: "2024-03-05", EndDate: "2024-03-01"})
	require.ErrorIs(t, err, apperr.ErrInvalidRange)

	_, err = svc.Submit(ctx, sarah, SubmitInput{LeaveType: "Sabbatical", StartDate: "2024-03-01", EndDate: "2024-03-01", Reason: "x"})
	require.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.Submit(ctx, sarah, SubmitInput{LeaveType: TypeSick, StartDate: "03/01/2024", EndDate: "2024-03-01", Reason: "x"})
	require.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.Submit(ctx, &access.Caller{UserID: "u-x", Role: access.RoleEmployee}, SubmitInput{LeaveType: TypeSick, StartDate: "2024-03-01", EndDate: "2024-03-01", Reason: "x"})
	require.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.Submit(ctx, nil, SubmitInput{})
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = svc.Submit(ctx, admin, SubmitInput{LeaveType: TypeSick, StartDate: "2024-03-01", EndDate: "2024-03-01", Reason: "x"})
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestSubmitOverlap(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first := submit(t, svc, sarah, TypeCasual, "2024-03-01", "2024-03-05")
	_, err := svc.Decide(ctx, admin, first.ID, StatusApproved)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, sarah, SubmitInput{LeaveType: TypeCasual, StartDate: "2024-03-04", EndDate: "2024-03-10", Reason: "x"})
	require.ErrorIs(t, err, apperr.ErrOverlappingRequest)

	submit(t, svc, sarah, TypeCasual, "2024-03-06", "2024-03-10")
	submit(t, svc, mike, TypeCasual, "2024-03-01", "2024-03-05")
}

func TestRejectedLeaveDoesNotBlockResubmission(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first := submit(t, svc, sarah, TypePaid, "2024-03-01", "2024-03-05")
	_, err := svc.Decide(ctx, admin, first.ID, StatusRejected)
	require.NoError(t, err)

	submit(t, svc, sarah, TypePaid, "2024-03-01", "2024-03-05")

	balance, err := svc.GetBalance(ctx, sarah, "")
	require.NoError(t, err)
	require.Equal(t, DefaultPaid, balance.Paid)
}

func TestApproveDeductsOnce(t *testing.T) {
	svc, _, notifier := newTestService(t)
	ctx := context.Background()

	lv := submit(t, svc, sarah, TypeCasual, "2024-03-01", "2024-03-03")
	approved, err := svc.Decide(ctx, admin, lv.ID, StatusApproved)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, approved.Status)
	require.Equal(t, admin.UserID, approved.ApprovedBy)

	again, err := svc.Decide(ctx, admin, lv.ID, StatusApproved)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, again.Status)

	balance, err := svc.GetBalance(ctx, admin, "emp-1")
	require.NoError(t, err)
	require.Equal(t, 7, balance.Casual)
	require.Len(t, notifier.notices, 1)
	require.Equal(t, "emp-1", notifier.notices[0].employeeID)

	_, err = svc.Decide(ctx, admin, lv.ID, StatusRejected)
	require.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestApproveFloorsAtZeroAndSkipsUnpaid(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	sick := submit(t, svc, sarah, TypeSick, "2024-04-01", "2024-04-20")
	require.Equal(t, 20, sick.Days)
	_, err := svc.Decide(ctx, admin, sick.ID, StatusApproved)
	require.NoError(t, err)

	unpaid := submit(t, svc, sarah, TypeUnpaid, "2024-05-01", "2024-05-02")
	_, err = svc.Decide(ctx, admin, unpaid.ID, StatusApproved)
	require.NoError(t, err)

	balance, err := svc.GetBalance(ctx, sarah, "")
	require.NoError(t, err)
	require.Equal(t, 0, balance.Sick)
	require.Equal(t, DefaultCasual, balance.Casual)
	require.Equal(t, DefaultPaid, balance.Paid)
}

func TestDecideErrors(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	lv := submit(t, svc, sarah, TypeCasual, "2024-03-01", "2024-03-01")

	_, err := svc.Decide(ctx, sarah, lv.ID, StatusApproved)
	require.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.Decide(ctx, admin, "missing", StatusApproved)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Decide(ctx, admin, lv.ID, "Maybe")
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestConcurrentApprovalsOfOneLeaveDeductOnce(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	lv := submit(t, svc, sarah, TypeCasual, "2024-03-01", "2024-03-03")

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Decide(ctx, admin, lv.ID, StatusApproved)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	balance, err := svc.GetBalance(ctx, admin, "emp-1")
	require.NoError(t, err)
	require.Equal(t, 7, balance.Casual)
}

func TestConcurrentApprovalsOfDifferentLeavesAllDeduct(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	var ids []string
	for _, day := range []string{"2024-03-01", "2024-03-04", "2024-03-07", "2024-03-10", "2024-03-13"} {
		ids = append(ids, submit(t, svc, sarah, TypePaid, day, day).ID)
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(ids))
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := svc.Decide(ctx, admin, id, StatusApproved)
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	balance, err := svc.GetBalance(ctx, admin, "emp-1")
	require.NoError(t, err)
	require.Equal(t, DefaultPaid-len(ids), balance.Paid)
}

func TestListScopesEmployees(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	submit(t, svc, sarah, TypeCasual, "2024-03-01", "2024-03-01")
	submit(t, svc, mike, TypeSick, "2024-03-02", "2024-03-02")

	own, err := svc.List(ctx, sarah, Filter{EmployeeID: "emp-2"})
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.Equal(t, "emp-1", own[0].EmployeeID)

	all, err := svc.List(ctx, admin, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "2024-03-02", all[0].StartDate)

	filtered, err := svc.List(ctx, admin, Filter{EmployeeID: "emp-2"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)

	_, err = svc.List(ctx, nil, Filter{})
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestGetBalance(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	balance, err := svc.GetBalance(ctx, sarah, "emp-2")
	require.NoError(t, err)
	require.Equal(t, "emp-1", balance.EmployeeID)

	_, err = svc.GetBalance(ctx, admin, "")
	require.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.GetBalance(ctx, admin, "emp-404")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRepeatedApprovalAppliesFailedDeduction(t *testing.T) {
	svc, st, notifier := newTestService(t)
	ctx := context.Background()
	flaky := &failingBalances{Store: st, fail: 1}
	svc.store = flaky

	lv := submit(t, svc, sarah, TypeCasual, "2024-03-01", "2024-03-03")
	_, err := svc.Decide(ctx, admin, lv.ID, StatusApproved)
	require.Error(t, err)
	require.Empty(t, notifier.notices)

	again, err := svc.Decide(ctx, admin, lv.ID, StatusApproved)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, again.Status)

	balance, err := svc.GetBalance(ctx, admin, "emp-1")
	require.NoError(t, err)
	require.Equal(t, 7, balance.Casual)
	require.Equal(t, []string{lv.ID}, balance.Applied)
	require.Len(t, notifier.notices, 1)

	_, err = svc.Decide(ctx, admin, lv.ID, StatusApproved)
	require.NoError(t, err)
	balance, err = svc.GetBalance(ctx, admin, "emp-1")
	require.NoError(t, err)
	require.Equal(t, 7, balance.Casual)
}

func TestDeactivatedEmployeeCannotSubmit(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	_, err := store.Save(ctx, st, store.Employees, "emp-9", core.Employee{ID: "emp-9", IsActive: false})
	require.NoError(t, err)
	former := &access.Caller{UserID: "u-former", Role: access.RoleEmployee, EmployeeID: "emp-9"}

	_, err = svc.Submit(ctx, former, SubmitInput{LeaveType: TypeCasual, StartDate: "2024-03-01", EndDate: "2024-03-01", Reason: "trip"})
	require.ErrorIs(t, err, apperr.ErrForbidden)
}
