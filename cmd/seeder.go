package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frahmantamala/dayflow/internal/core/datamodel/compensation"
	"github.com/frahmantamala/dayflow/internal/core/role"
	"github.com/frahmantamala/dayflow/internal/user"
	"github.com/frahmantamala/dayflow/pkg/logger"
)

const seedPassword = "password123"

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample users for development and testing purposes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		initLogger(cfg)

		sqlDB, gdb, err := initDB(cfg.Database, cfg.IsProduction())
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		defer sqlDB.Close()

		return seed(cmd.Context(), gdb, cfg.Security.BCryptCost, clearData)
	},
}

type seedUser struct {
	name        string
	email       string
	role        role.Role
	employeeID  string
	department  string
	designation string
	salary      user.SalaryStructure
}

var seedUsers = []seedUser{
	{
		name: "Admin User", email: "admin@dayflow.com", role: role.Admin,
		employeeID: "EMP001", department: "Management", designation: "System Administrator",
		salary: user.SalaryStructure{
			Basic:      80000,
			Allowances: compensation.Allowances{HRA: 16000, Transport: 3000, Medical: 2000},
			Deductions: compensation.Deductions{Tax: 8000, PF: 9600, Insurance: 1000},
		},
	},
	{
		name: "HR Manager", email: "hr@dayflow.com", role: role.HR,
		employeeID: "EMP002", department: "Human Resources", designation: "HR Manager",
		salary: user.SalaryStructure{
			Basic:      60000,
			Allowances: compensation.Allowances{HRA: 12000, Transport: 2500, Medical: 1500},
			Deductions: compensation.Deductions{Tax: 6000, PF: 7200, Insurance: 800},
		},
	},
	{
		name: "John Doe", email: "john@dayflow.com", role: role.Employee,
		employeeID: "EMP003", department: "Engineering", designation: "Software Engineer",
		salary: user.SalaryStructure{
			Basic:      50000,
			Allowances: compensation.Allowances{HRA: 10000, Transport: 2000, Medical: 1500},
			Deductions: compensation.Deductions{Tax: 5000, PF: 6000, Insurance: 500},
		},
	},
	{
		name: "Jane Smith", email: "jane@dayflow.com", role: role.Employee,
		employeeID: "EMP004", department: "Marketing", designation: "Marketing Executive",
		salary: user.SalaryStructure{
			Basic:      45000,
			Allowances: compensation.Allowances{HRA: 9000, Transport: 2000, Medical: 1000},
			Deductions: compensation.Deductions{Tax: 4500, PF: 5400, Insurance: 500},
		},
	},
}

// seed inserts the sample users. Existing emails are left untouched, so
// running it twice is a no-op unless clear is set.
func seed(ctx context.Context, db *gorm.DB, cost int, clear bool) error {
	lg := logger.LoggerWrapper()

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), cost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if clear {
			for _, table := range []string{"payrolls", "leaves", "attendances", "users"} {
				if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
					return fmt.Errorf("clear %s: %w", table, err)
				}
			}
			lg.Info("cleared existing data")
		}

		for _, s := range seedUsers {
			row := user.ToDataModel(&user.User{
				Name:            s.name,
				Email:           s.email,
				Role:            s.role,
				EmployeeID:      s.employeeID,
				Department:      s.department,
				Designation:     s.designation,
				Status:          user.StatusActive,
				SalaryStructure: s.salary,
				LeaveBalance:    user.DefaultLeaveBalance(),
				PasswordHash:    string(hash),
			})

			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "email"}},
				DoNothing: true,
			}).Create(row)
			if res.Error != nil {
				return fmt.Errorf("seed %s: %w", s.email, res.Error)
			}
			if res.RowsAffected == 0 {
				lg.Info("user already exists, skipping", "email", s.email)
				continue
			}
			lg.Info("seeded user", "email", s.email, "role", s.role)
		}
		return nil
	})
}
