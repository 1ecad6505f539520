package leave_test

import (
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/frahmantamala/dayflow/internal"
	"github.com/frahmantamala/dayflow/internal/core/datamodel/datamodeltest"
	userDatamodel "github.com/frahmantamala/dayflow/internal/core/datamodel/user"
	"github.com/frahmantamala/dayflow/internal/core/events"
	"github.com/frahmantamala/dayflow/internal/core/role"
	"github.com/frahmantamala/dayflow/internal/leave"
	leavePostgres "github.com/frahmantamala/dayflow/internal/leave/postgres"
	"github.com/frahmantamala/dayflow/pkg/logger"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

var _ = Describe("Leave Service", func() {
	var (
		ctx       context.Context
		db        *gorm.DB
		published *recorder
		service   *leave.Service
		employee  *internal.CurrentUser
		colleague *internal.CurrentUser
		admin     *internal.CurrentUser
	)

	insert := func(name, email string, r role.Role, sick int) *internal.CurrentUser {
		u := &userDatamodel.User{
			Name:  name,
			Email: email,
			Role:  r.String(),
			LeaveBalance: userDatamodel.LeaveBalance{
				Paid: 12, Sick: sick, Casual: 8,
			},
		}
		Expect(datamodeltest.InsertUser(ctx, db, u)).To(Succeed())
		return &internal.CurrentUser{ID: u.ID, Name: name, Email: email, Role: r}
	}

	sickBalance := func(userID int64) int {
		var u userDatamodel.User
		Expect(db.First(&u, userID).Error).To(Succeed())
		return u.LeaveBalance.Sick
	}

	apply := func(who *internal.CurrentUser, leaveType, start, end string) *leave.Leave {
		l, err := service.ApplyLeave(ctx, who.ID, leave.ApplyLeaveDTO{
			LeaveType: leaveType,
			StartDate: start,
			EndDate:   end,
			Reason:    "family matters",
		})
		Expect(err).NotTo(HaveOccurred())
		return l
	}

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = datamodeltest.Open()
		Expect(err).NotTo(HaveOccurred())

		employee = insert("John Doe", "john@example.com", role.Employee, 10)
		colleague = insert("Jane Smith", "jane@example.com", role.Employee, 10)
		admin = insert("Admin User", "admin@example.com", role.Admin, 10)

		published = &recorder{}
		service = leave.NewService(leavePostgres.NewLeaveRepository(db), published, logger.Discard())
	})

	Describe("ApplyLeave", func() {
		It("should create a pending leave with its owner", func() {
			l := apply(employee, "sick", "2024-01-10", "2024-01-12")

			Expect(l.ID).To(BeNumerically(">", 0))
			Expect(l.Status).To(Equal(leave.StatusPending))
			Expect(l.Days()).To(Equal(3))
			Expect(l.User).NotTo(BeNil())
			Expect(l.User.Email).To(Equal("john@example.com"))
		})

		It("should accept a single day", func() {
			l := apply(employee, "casual", "2024-01-10", "2024-01-10")
			Expect(l.Days()).To(Equal(1))
		})

		It("should reject a start after the end", func() {
			_, err := service.ApplyLeave(ctx, employee.ID, leave.ApplyLeaveDTO{
				LeaveType: "paid", StartDate: "2024-01-12", EndDate: "2024-01-10", Reason: "trip",
			})
			Expect(errors.Is(err, leave.ErrDateOrder)).To(BeTrue())

			appErr, _ := internal.IsAppError(err)
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("should require every field", func() {
			_, err := service.ApplyLeave(ctx, employee.ID, leave.ApplyLeaveDTO{LeaveType: "paid", StartDate: "2024-01-10"})
			Expect(errors.Is(err, leave.ErrMissingFields)).To(BeTrue())
		})

		It("should reject an unknown leave type", func() {
			_, err := service.ApplyLeave(ctx, employee.ID, leave.ApplyLeaveDTO{
				LeaveType: "vacation", StartDate: "2024-01-10", EndDate: "2024-01-11", Reason: "trip",
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("UpdateLeaveStatus", func() {
		It("should take the covered days off the balance on approval", func() {
			l := apply(employee, "sick", "2024-01-10", "2024-01-12")

			decided, err := service.UpdateLeaveStatus(ctx, admin, l.ID, leave.UpdateStatusDTO{
				Status: "approved", AdminComment: "get well",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(decided.Status).To(Equal(leave.StatusApproved))
			Expect(decided.AdminComment).To(Equal("get well"))
			Expect(sickBalance(employee.ID)).To(Equal(7))
			Expect(sickBalance(colleague.ID)).To(Equal(10))
		})

		It("should floor the balance at zero", func() {
			Expect(db.Model(&userDatamodel.User{}).Where("id = ?", employee.ID).
				Update("leave_balance_sick", 2).Error).To(Succeed())
			l := apply(employee, "sick", "2024-01-10", "2024-01-12")

			_, err := service.UpdateLeaveStatus(ctx, admin, l.ID, leave.UpdateStatusDTO{Status: "approved"})
			Expect(err).NotTo(HaveOccurred())
			Expect(sickBalance(employee.ID)).To(Equal(0))
		})

		It("should leave the balance alone on rejection", func() {
			l := apply(employee, "sick", "2024-01-10", "2024-01-12")

			decided, err := service.UpdateLeaveStatus(ctx, admin, l.ID, leave.UpdateStatusDTO{Status: "rejected"})
			Expect(err).NotTo(HaveOccurred())
			Expect(decided.Status).To(Equal(leave.StatusRejected))
			Expect(sickBalance(employee.ID)).To(Equal(10))
		})

		It("should decide a leave only once", func() {
			l := apply(employee, "sick", "2024-01-10", "2024-01-12")
			_, err := service.UpdateLeaveStatus(ctx, admin, l.ID, leave.UpdateStatusDTO{Status: "approved"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.UpdateLeaveStatus(ctx, admin, l.ID, leave.UpdateStatusDTO{Status: "rejected"})
			Expect(errors.Is(err, leave.ErrAlreadyProcessed)).To(BeTrue())
			Expect(sickBalance(employee.ID)).To(Equal(7))
		})

		It("should only accept approved or rejected", func() {
			l := apply(employee, "sick", "2024-01-10", "2024-01-12")
			_, err := service.UpdateLeaveStatus(ctx, admin, l.ID, leave.UpdateStatusDTO{Status: "pending"})
			Expect(errors.Is(err, leave.ErrInvalidDecision)).To(BeTrue())
		})

		It("should announce the decision", func() {
			l := apply(employee, "paid", "2024-01-10", "2024-01-10")
			_, err := service.UpdateLeaveStatus(ctx, admin, l.ID, leave.UpdateStatusDTO{Status: "approved"})
			Expect(err).NotTo(HaveOccurred())

			Expect(published.events).To(HaveLen(1))
			event, ok := published.events[0].(*events.LeaveStatusChangedEvent)
			Expect(ok).To(BeTrue())
			Expect(event.LeaveID).To(Equal(l.ID))
			Expect(event.UserID).To(Equal(employee.ID))
			Expect(event.Status).To(Equal("approved"))
			Expect(event.DecidedBy).To(Equal(admin.ID))
		})

		It("should report a missing leave", func() {
			_, err := service.UpdateLeaveStatus(ctx, admin, 404, leave.UpdateStatusDTO{Status: "approved"})
			Expect(errors.Is(err, leave.ErrNotFound)).To(BeTrue())
		})
	})

	Describe("listing", func() {
		It("should show employees only their own leaves", func() {
			apply(employee, "sick", "2024-01-10", "2024-01-12")
			apply(employee, "paid", "2024-02-01", "2024-02-02")
			apply(colleague, "casual", "2024-01-15", "2024-01-15")

			mine, err := service.GetMyLeaves(ctx, employee.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(HaveLen(2))
			for _, l := range mine {
				Expect(l.UserID).To(Equal(employee.ID))
			}
		})

		It("should filter all leaves by status", func() {
			l := apply(employee, "sick", "2024-01-10", "2024-01-12")
			apply(colleague, "casual", "2024-01-15", "2024-01-15")
			_, err := service.UpdateLeaveStatus(ctx, admin, l.ID, leave.UpdateStatusDTO{Status: "approved"})
			Expect(err).NotTo(HaveOccurred())

			pending, err := service.GetAllLeaves(ctx, "pending")
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(HaveLen(1))
			Expect(pending[0].UserID).To(Equal(colleague.ID))

			all, err := service.GetAllLeaves(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))

			_, err = service.GetAllLeaves(ctx, "cancelled")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("DeleteLeave", func() {
		It("should let the owner delete a pending leave", func() {
			l := apply(employee, "sick", "2024-01-10", "2024-01-12")
			Expect(service.DeleteLeave(ctx, employee, l.ID)).To(Succeed())

			mine, err := service.GetMyLeaves(ctx, employee.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(BeEmpty())
		})

		It("should let an admin delete someone else's pending leave", func() {
			l := apply(employee, "sick", "2024-01-10", "2024-01-12")
			Expect(service.DeleteLeave(ctx, admin, l.ID)).To(Succeed())
		})

		It("should forbid other employees", func() {
			l := apply(employee, "sick", "2024-01-10", "2024-01-12")
			err := service.DeleteLeave(ctx, colleague, l.ID)
			Expect(errors.Is(err, leave.ErrDeleteForbidden)).To(BeTrue())
		})

		It("should forbid HR, who may decide but not delete", func() {
			hr := insert("Hana", "hr@example.com", role.HR, 10)
			l := apply(employee, "sick", "2024-01-10", "2024-01-12")
			err := service.DeleteLeave(ctx, hr, l.ID)
			Expect(errors.Is(err, leave.ErrDeleteForbidden)).To(BeTrue())
		})

		It("should refuse once decided", func() {
			l := apply(employee, "sick", "2024-01-10", "2024-01-12")
			_, err := service.UpdateLeaveStatus(ctx, admin, l.ID, leave.UpdateStatusDTO{Status: "rejected"})
			Expect(err).NotTo(HaveOccurred())

			err = service.DeleteLeave(ctx, employee, l.ID)
			Expect(errors.Is(err, leave.ErrNotDeletable)).To(BeTrue())
		})
	})
})
