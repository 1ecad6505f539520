package payroll_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/frahmantamala/dayflow/internal"
	"github.com/frahmantamala/dayflow/internal/core/clock"
	"github.com/frahmantamala/dayflow/internal/core/datamodel/compensation"
	"github.com/frahmantamala/dayflow/internal/core/datamodel/datamodeltest"
	userDatamodel "github.com/frahmantamala/dayflow/internal/core/datamodel/user"
	"github.com/frahmantamala/dayflow/internal/core/events"
	"github.com/frahmantamala/dayflow/internal/core/role"
	"github.com/frahmantamala/dayflow/internal/payroll"
	payrollPostgres "github.com/frahmantamala/dayflow/internal/payroll/postgres"
	userPostgres "github.com/frahmantamala/dayflow/internal/user/postgres"
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

var _ = Describe("Payroll Service", func() {
	var (
		ctx       context.Context
		db        *gorm.DB
		clk       *clock.Fixed
		published *recorder
		service   *payroll.Service
		john      *internal.CurrentUser
		jane      *internal.CurrentUser
		hr        *internal.CurrentUser
		admin     *internal.CurrentUser
	)

	insert := func(name, email string, r role.Role, status string, basic float64) *internal.CurrentUser {
		u := &userDatamodel.User{
			Name:        name,
			Email:       email,
			Role:        r.String(),
			Status:      status,
			EmployeeID:  "EMP-" + name,
			BasicSalary: basic,
			Allowances:  compensation.Allowances{HRA: basic / 5, Transport: 2000},
			Deductions:  compensation.Deductions{Tax: basic / 10},
		}
		Expect(datamodeltest.InsertUser(ctx, db, u)).To(Succeed())
		return &internal.CurrentUser{ID: u.ID, Name: name, Email: email, Role: r}
	}

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = datamodeltest.Open()
		Expect(err).NotTo(HaveOccurred())

		john = insert("John", "john@example.com", role.Employee, "active", 50000)
		jane = insert("Jane", "jane@example.com", role.Employee, "active", 45000)
		insert("Gone", "gone@example.com", role.Employee, "inactive", 40000)
		hr = insert("Hana", "hr@example.com", role.HR, "active", 60000)
		admin = insert("Admin", "admin@example.com", role.Admin, "active", 80000)

		clk = clock.NewFixed(time.Date(2024, 3, 31, 18, 0, 0, 0, time.UTC))
		published = &recorder{}
		service = payroll.NewService(
			payrollPostgres.NewPayrollRepository(db),
			userPostgres.NewUserRepository(db),
			published,
			clk.Func(),
			logger.Discard(),
		)
	})

	Describe("GeneratePayroll", func() {
		It("should draft one payroll per active employee, once", func() {
			result, err := service.GeneratePayroll(ctx, payroll.GenerateDTO{Month: 3, Year: 2024})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Generated).To(Equal(2))
			Expect(result.Errors).To(Equal(0))

			again, err := service.GeneratePayroll(ctx, payroll.GenerateDTO{Month: 3, Year: 2024})
			Expect(err).NotTo(HaveOccurred())
			Expect(again.Generated).To(Equal(0))
			Expect(again.Errors).To(Equal(2))
			Expect(again.ErrorDetails).To(ConsistOf(
				payroll.GenerateError{Employee: "John", Error: "Payroll already exists"},
				payroll.GenerateError{Employee: "Jane", Error: "Payroll already exists"},
			))

			all, err := service.GetAllPayroll(ctx, payroll.ListQuery{})
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
		})

		It("should copy each salary structure", func() {
			_, err := service.GeneratePayroll(ctx, payroll.GenerateDTO{Month: 3, Year: 2024})
			Expect(err).NotTo(HaveOccurred())

			mine, err := service.GetMyPayroll(ctx, john.ID, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(HaveLen(1))
			Expect(mine[0].BasicSalary).To(Equal(50000.0))
			Expect(mine[0].GrossSalary).To(Equal(62000.0))
			Expect(mine[0].NetSalary).To(Equal(57000.0))
			Expect(mine[0].Status).To(Equal(payroll.StatusPending))
		})

		It("should require a period", func() {
			_, err := service.GeneratePayroll(ctx, payroll.GenerateDTO{Month: 3})
			Expect(errors.Is(err, payroll.ErrPeriodRequired)).To(BeTrue())
		})
	})

	Describe("CreatePayroll", func() {
		create := func(userID int64) (*payroll.Payroll, error) {
			hra := 1000.0
			tax := 500.0
			return service.CreatePayroll(ctx, payroll.CreatePayrollDTO{
				UserID:      userID,
				Month:       1,
				Year:        2024,
				BasicSalary: 10000,
				Allowances:  &payroll.AllowancesPatch{HRA: &hra},
				Deductions:  &payroll.DeductionsPatch{Tax: &tax},
			})
		}

		It("should compute the totals", func() {
			p, err := create(jane.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.TotalAllowances).To(Equal(1000.0))
			Expect(p.GrossSalary).To(Equal(11000.0))
			Expect(p.NetSalary).To(Equal(10500.0))
			Expect(p.User).NotTo(BeNil())
			Expect(p.User.Name).To(Equal("Jane"))
		})

		It("should refuse a second payroll for the same period", func() {
			_, err := create(jane.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = create(jane.ID)
			Expect(errors.Is(err, payroll.ErrAlreadyExists)).To(BeTrue())
		})

		It("should refuse an unknown user", func() {
			_, err := create(12345)
			Expect(errors.Is(err, internal.ErrUserNotFound)).To(BeTrue())
		})
	})

	Describe("UpdatePayroll", func() {
		var id int64

		BeforeEach(func() {
			_, err := service.GeneratePayroll(ctx, payroll.GenerateDTO{Month: 3, Year: 2024})
			Expect(err).NotTo(HaveOccurred())
			mine, err := service.GetMyPayroll(ctx, john.ID, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			id = mine[0].ID
		})

		It("should recompute after a partial change", func() {
			other := 1000.0
			p, err := service.UpdatePayroll(ctx, id, payroll.UpdatePayrollDTO{
				Deductions: &payroll.DeductionsPatch{Other: &other},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Deductions.Tax).To(Equal(5000.0))
			Expect(p.TotalDeductions).To(Equal(6000.0))
			Expect(p.NetSalary).To(Equal(56000.0))
		})

		It("should stamp the payment date and announce it once", func() {
			paid := "paid"
			p, err := service.UpdatePayroll(ctx, id, payroll.UpdatePayrollDTO{Status: &paid})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Status).To(Equal(payroll.StatusPaid))
			Expect(p.PaidOn).NotTo(BeNil())
			Expect(p.PaidOn.Equal(clk.Now())).To(BeTrue())

			remarks := "bank transfer"
			_, err = service.UpdatePayroll(ctx, id, payroll.UpdatePayrollDTO{Remarks: &remarks})
			Expect(err).NotTo(HaveOccurred())

			Expect(published.events).To(HaveLen(1))
			event, ok := published.events[0].(*events.PayrollPaidEvent)
			Expect(ok).To(BeTrue())
			Expect(event.UserID).To(Equal(john.ID))
			Expect(event.NetSalary).To(Equal(57000.0))
		})

		It("should report a missing payroll", func() {
			_, err := service.UpdatePayroll(ctx, 999, payroll.UpdatePayrollDTO{})
			Expect(errors.Is(err, payroll.ErrNotFound)).To(BeTrue())
		})

		It("should delete once", func() {
			Expect(service.DeletePayroll(ctx, id)).To(Succeed())
			Expect(errors.Is(service.DeletePayroll(ctx, id), payroll.ErrNotFound)).To(BeTrue())
		})
	})

	Describe("GetPayrollSlip", func() {
		var id int64

		BeforeEach(func() {
			_, err := service.GeneratePayroll(ctx, payroll.GenerateDTO{Month: 3, Year: 2024})
			Expect(err).NotTo(HaveOccurred())
			mine, err := service.GetMyPayroll(ctx, john.ID, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			id = mine[0].ID
		})

		It("should serve the owner and administrators", func() {
			_, err := service.GetPayrollSlip(ctx, john, id)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.GetPayrollSlip(ctx, admin, id)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should refuse everyone else", func() {
			_, err := service.GetPayrollSlip(ctx, jane, id)
			Expect(errors.Is(err, payroll.ErrSlipForbidden)).To(BeTrue())
			_, err = service.GetPayrollSlip(ctx, hr, id)
			Expect(errors.Is(err, payroll.ErrSlipForbidden)).To(BeTrue())
		})
	})

	Describe("ExportPayroll", func() {
		It("should write one row per payroll and a totals row", func() {
			_, err := service.GeneratePayroll(ctx, payroll.GenerateDTO{Month: 3, Year: 2024})
			Expect(err).NotTo(HaveOccurred())

			month, year := 3, 2024
			var buf bytes.Buffer
			Expect(service.ExportPayroll(ctx, &buf, &month, &year)).To(Succeed())

			f, err := excelize.OpenReader(&buf)
			Expect(err).NotTo(HaveOccurred())
			defer f.Close()

			rows, err := f.GetRows("Payroll 03-2024")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(4))
			Expect(rows[0][0]).To(Equal("Employee ID"))
			Expect(rows[3][1]).To(Equal("Total"))
			Expect(rows[3][6]).To(Equal("118000"))
			Expect(rows[3][7]).To(Equal("108500"))
		})

		It("should require a period", func() {
			month := 3
			err := service.ExportPayroll(ctx, &bytes.Buffer{}, &month, nil)
			Expect(errors.Is(err, payroll.ErrPeriodRequired)).To(BeTrue())
		})

		It("should name the file after the period", func() {
			Expect(payroll.RegisterFilename(3, 2024)).To(Equal("payroll-2024-03.xlsx"))
		})
	})
})
