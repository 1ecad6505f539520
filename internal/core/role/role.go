// Package role defines the closed set of user roles and what each may do.
package role

import (
	"fmt"
	"strings"
)

type Role string

const (
	Employee Role = "employee"
	HR       Role = "hr"
	Admin    Role = "admin"
)

// All lists every role; keep in sync with the switches below.
var All = []Role{Employee, HR, Admin}

func Parse(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case Employee, HR, Admin:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// CanManageRecords reports whether r may list, edit and delete other
// employees' attendance, leave and payroll records.
func (r Role) CanManageRecords() bool {
	switch r {
	case Admin, HR:
		return true
	case Employee:
		return false
	default:
		return false
	}
}

func (r Role) IsAdmin() bool {
	switch r {
	case Admin:
		return true
	case HR, Employee:
		return false
	default:
		return false
	}
}

// In reports whether r is one of allowed.
func (r Role) In(allowed ...Role) bool {
	for _, a := range allowed {
		if a == r {
			return true
		}
	}
	return false
}
