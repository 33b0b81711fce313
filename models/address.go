// address.go - Defines the Address model owned by a user

package models

// Address belongs to exactly one User and has no lifecycle of its own.
type Address struct {
	ID          uint    `gorm:"primaryKey"`
	UserID      uint    `gorm:"not null;index"` // Foreign key to users table
	FullAddress string  `gorm:"size:255;not null"`
	PostalCode  *string `gorm:"size:20"`
	City        string  `gorm:"size:100;not null"`
}

func (a Address) String() string {
	return a.FullAddress + ", " + a.City
}
