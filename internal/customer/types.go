// Package customer provides customer record management for Customer Core.
//
// Customers are owned by the staff account that created them: ADMIN accounts
// only see and mutate their own records, SUPERADMIN sees everything. Access
// denials on individual records are reported as not-found so record IDs
// cannot be probed across ownership boundaries.
package customer

import (
	"errors"
	"time"
)

// AddressType classifies a customer address.
type AddressType string

// Address types.
const (
	AddressHome     AddressType = "HOME"
	AddressWork     AddressType = "WORK"
	AddressBilling  AddressType = "BILLING"
	AddressShipping AddressType = "SHIPPING"
	AddressOther    AddressType = "OTHER"
)

// ValidAddressTypes is the closed set of address classifications.
var ValidAddressTypes = []AddressType{AddressHome, AddressWork, AddressBilling, AddressShipping, AddressOther}

// IsValidAddressType returns true if t is a recognised address type.
func IsValidAddressType(t AddressType) bool {
	for _, v := range ValidAddressTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Address is a postal address attached to a customer. At most one address
// per customer carries the primary flag.
type Address struct {
	ID         string      `json:"id"`
	CustomerID string      `json:"customer_id"`
	Street     string      `json:"street"`
	City       string      `json:"city"`
	State      string      `json:"state,omitempty"`
	ZipCode    string      `json:"zip_code,omitempty"`
	Country    string      `json:"country"`
	Type       AddressType `json:"type"`
	IsPrimary  bool        `json:"is_primary"`
	Notes      string      `json:"notes,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Customer is a customer record with its addresses.
type Customer struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	DocumentNumber string    `json:"document_number,omitempty"`
	DocumentType   string    `json:"document_type,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Addresses      []Address `json:"addresses"`
}

// PrimaryAddress returns the address flagged as primary, or nil.
func (c *Customer) PrimaryAddress() *Address {
	for i := range c.Addresses {
		if c.Addresses[i].IsPrimary {
			return &c.Addresses[i]
		}
	}
	return nil
}

// Sentinel errors for customer operations.
var (
	// ErrCustomerNotFound covers both absent records and records the caller
	// may not access. The two are deliberately indistinguishable.
	ErrCustomerNotFound = errors.New("customer not found")

	ErrEmailExists        = errors.New("customer email already registered")
	ErrDocumentExists     = errors.New("customer document number already registered")
	ErrInvalidAddressType = errors.New("invalid address type")
)
