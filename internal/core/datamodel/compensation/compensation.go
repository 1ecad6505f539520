// Package compensation holds the salary components shared by a user's salary
// structure and the payroll rows generated from it.
package compensation

type Allowances struct {
	HRA       float64 `gorm:"column:hra;not null;default:0" json:"hra"`
	Transport float64 `gorm:"column:transport;not null;default:0" json:"transport"`
	Medical   float64 `gorm:"column:medical;not null;default:0" json:"medical"`
	Other     float64 `gorm:"column:other;not null;default:0" json:"other"`
}

func (a Allowances) Total() float64 {
	return a.HRA + a.Transport + a.Medical + a.Other
}

type Deductions struct {
	Tax       float64 `gorm:"column:tax;not null;default:0" json:"tax"`
	PF        float64 `gorm:"column:pf;not null;default:0" json:"pf"`
	Insurance float64 `gorm:"column:insurance;not null;default:0" json:"insurance"`
	Other     float64 `gorm:"column:other;not null;default:0" json:"other"`
}

func (d Deductions) Total() float64 {
	return d.Tax + d.PF + d.Insurance + d.Other
}
