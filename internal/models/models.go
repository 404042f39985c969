package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusConverted LeadStatus = "converted"
)

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestValidated RequestStatus = "validated"
	RequestCancelled RequestStatus = "cancelled"
	RequestRejected  RequestStatus = "rejected"
	RequestRescue    RequestStatus = "rescue"
)

var RequestStatuses = []RequestStatus{RequestPending, RequestValidated, RequestCancelled, RequestRejected, RequestRescue}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderScheduled OrderStatus = "scheduled"
	OrderExecuted  OrderStatus = "executed"
	OrderRescue    OrderStatus = "rescue"
	OrderCancelled OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{OrderPending, OrderScheduled, OrderExecuted, OrderRescue, OrderCancelled}

type AddressType string

const (
	AddressHome        AddressType = "home"
	AddressMultifamily AddressType = "multifamily"
	AddressCondo       AddressType = "condo"
)

var AddressTypes = []AddressType{AddressHome, AddressMultifamily, AddressCondo}

type User struct {
	ID         string
	Name       string
	Email      string
	Role       string
	Banned     bool
	AgencyID   uuid.NullUUID
	AgencyName sql.NullString
	CreatedAt  time.Time
}

// Credentials is the password row of the "account" table for a user.
type Credentials struct {
	UserID       string
	PasswordHash string
}

type Lead struct {
	ID                    uuid.UUID
	FullName              string
	DNI                   string
	Phone                 string
	ContactDate           time.Time
	ContactTimePreference sql.NullString
	ReferralSourceID      uuid.NullUUID
	ReferralSourceName    sql.NullString
	CurrentOperator       sql.NullString
	Notes                 sql.NullString
	Status                LeadStatus
	UserID                string
	UserName              sql.NullString
	OperatorID            uuid.NullUUID
	OperatorName          sql.NullString
	Address               sql.NullString
	DistrictID            uuid.NullUUID
	DistrictName          sql.NullString
	CityName              sql.NullString
	StateName             sql.NullString
	Latitude              sql.NullFloat64
	Longitude             sql.NullFloat64
	Reference             sql.NullString
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// LeadInput carries the fields of a new lead. Empty optional strings are stored as NULL.
type LeadInput struct {
	FullName              string
	DNI                   string
	Phone                 string
	ContactDate           time.Time
	ContactTimePreference string
	ReferralSourceID      uuid.NullUUID
	CurrentOperator       string
	Notes                 string
	UserID                string
	OperatorID            uuid.NullUUID
	Address               string
	DistrictID            uuid.NullUUID
	Latitude              sql.NullFloat64
	Longitude             sql.NullFloat64
	Reference             string
}

type LeadCounts struct {
	Total     int
	New       int
	Converted int
}

// ConversionRate is the percentage of converted leads, rounded down.
func (c LeadCounts) ConversionRate() int {
	if c.Total == 0 {
		return 0
	}
	return c.Converted * 100 / c.Total
}

type Sale struct {
	ID               uuid.UUID
	LeadID           uuid.NullUUID
	FullName         string
	DNI              string
	DNIExpiryDate    sql.NullTime
	BirthPlace       sql.NullString
	BirthDate        sql.NullTime
	Email            sql.NullString
	Phone            string
	PhoneOwnerName   sql.NullString
	PhoneOwnerDNI    sql.NullString
	Address          string
	AddressType      AddressType
	Reference        sql.NullString
	District         string
	Province         string
	Department       string
	Latitude         sql.NullFloat64
	Longitude        sql.NullFloat64
	PlanID           uuid.UUID
	PlanName         sql.NullString
	Price            decimal.Decimal
	Score            sql.NullInt32
	InstallationDate sql.NullTime
	ExternalID       sql.NullString
	ContractNumber   sql.NullString
	OperatorMetadata json.RawMessage
	RequestStatus    RequestStatus
	OrderStatus      OrderStatus
	RejectionReason  sql.NullString
	UserID           string
	UserName         sql.NullString
	UserEmail        sql.NullString
	ValidatedBy      sql.NullString
	ValidatedAt      sql.NullTime
	OperatorID       uuid.NullUUID
	OperatorName     sql.NullString
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type SaleInput struct {
	LeadID           uuid.NullUUID
	FullName         string
	DNI              string
	DNIExpiryDate    sql.NullTime
	BirthPlace       string
	BirthDate        sql.NullTime
	Email            string
	Phone            string
	IsPhoneOwner     bool
	PhoneOwnerName   string
	PhoneOwnerDNI    string
	Address          string
	AddressType      AddressType
	Reference        string
	District         string
	Province         string
	Department       string
	Latitude         sql.NullFloat64
	Longitude        sql.NullFloat64
	PlanID           uuid.UUID
	Price            decimal.Decimal
	Score            sql.NullInt32
	InstallationDate sql.NullTime
	UserID           string
	OperatorID       uuid.NullUUID
}

type SaleFilter struct {
	RequestStatus RequestStatus
}

type SaleStats struct {
	Pending   int
	Validated int
	Rejected  int
	Today     int
}

type Operator struct {
	ID        uuid.UUID
	Name      string
	Code      string
	LogoURL   sql.NullString
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Plan struct {
	ID           uuid.UUID
	OperatorID   uuid.NullUUID
	OperatorName sql.NullString
	Name         string
	SpeedMbps    sql.NullInt32
	Price        decimal.Decimal
	Commission   decimal.NullDecimal
	IsActive     bool
}

type Agency struct {
	ID        uuid.UUID
	Name      string
	City      sql.NullString
	Address   sql.NullString
	IsActive  bool
	CreatedAt time.Time
}

type ReferralSource struct {
	ID       uuid.UUID
	Name     string
	IsActive bool
}

type DocumentType struct {
	ID   uuid.UUID
	Name string
	Code string
}

type State struct {
	ID   uuid.UUID
	Name string
}

type City struct {
	ID      uuid.UUID
	StateID uuid.UUID
	Name    string
}

type District struct {
	ID     uuid.UUID
	CityID uuid.UUID
	Name   string
}

type TeamMember struct {
	ID         string
	Name       string
	Email      string
	AgencyID   uuid.NullUUID
	AgencyName sql.NullString
}

type TeamStats struct {
	TotalMembers   int
	TotalLeads     int
	TotalSales     int
	NewLeadsToday  int
	SalesThisMonth int
}

// dayBounds returns the start of t's calendar day and of the next one, both in t's location.
func dayBounds(t time.Time) (time.Time, time.Time) {
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return from, from.AddDate(0, 0, 1)
}
