// Package datamodel lists the persisted rows. Migrations own the production
// schema; Models feeds AutoMigrate for tests and local tooling.
package datamodel

import (
	"github.com/frahmantamala/dayflow/internal/core/datamodel/attendance"
	"github.com/frahmantamala/dayflow/internal/core/datamodel/leave"
	"github.com/frahmantamala/dayflow/internal/core/datamodel/payroll"
	"github.com/frahmantamala/dayflow/internal/core/datamodel/user"
)

func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&attendance.Attendance{},
		&leave.Leave{},
		&payroll.Payroll{},
	}
}
