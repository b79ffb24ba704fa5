package model

import "time"

// Provider represents a supplier with commercial and contact data.
// Deactivation flips IsActive; rows are never deleted.
type Provider struct {
	ID           uint   `gorm:"primaryKey"`
	Document     string `gorm:"uniqueIndex;not null"`
	Name         string `gorm:"not null"`
	BusinessName string `gorm:"not null;default:''"`
	ContactName  string `gorm:"not null;default:''"`
	Email        string `gorm:"not null;default:''"`
	Phone        string `gorm:"not null;default:''"`
	Mobile       string `gorm:"not null;default:''"`
	Address      string `gorm:"not null;default:''"`
	City         string `gorm:"not null;default:'';index"`
	Country      string `gorm:"not null;default:''"`
	PaymentTerms string `gorm:"not null;default:''"`
	PaymentDays  *int
	IsActive     bool `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Provider) TableName() string { return "providers" }
