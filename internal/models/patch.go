package models

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Opt marks a field as present in a partial update. The zero value means "leave untouched".
type Opt[T any] struct {
	Value T
	Set   bool
}

func Some[T any](v T) Opt[T] {
	return Opt[T]{Value: v, Set: true}
}

type assignment struct {
	column string
	value  interface{}
}

// UpdateBuilder turns present patch fields into a single parameterized UPDATE.
// Assignments keep the order in which they were added.
type UpdateBuilder struct {
	table string
	sets  []assignment
}

func NewUpdate(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value interface{}) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, value: value})
	return b
}

func setOpt[T any](b *UpdateBuilder, column string, o Opt[T]) {
	if o.Set {
		b.Set(column, o.Value)
	}
}

func (b *UpdateBuilder) Len() int {
	return len(b.sets)
}

func (b *UpdateBuilder) Columns() []string {
	cols := make([]string, len(b.sets))
	for i, s := range b.sets {
		cols[i] = s.column
	}
	return cols
}

// Build renders "UPDATE t SET a = $1, b = $2, updated_at = NOW() WHERE id = $3".
func (b *UpdateBuilder) Build(id interface{}) (string, []interface{}, error) {
	if len(b.sets) == 0 {
		return "", nil, ErrEmptyPatch
	}

	parts := make([]string, 0, len(b.sets)+1)
	args := make([]interface{}, 0, len(b.sets)+1)
	for i, s := range b.sets {
		parts = append(parts, fmt.Sprintf("%s = $%d", s.column, i+1))
		args = append(args, s.value)
	}
	parts = append(parts, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", b.table, strings.Join(parts, ", "), len(args))
	return query, args, nil
}

type LeadPatch struct {
	FullName              Opt[string]
	DNI                   Opt[string]
	Phone                 Opt[string]
	ContactDate           Opt[time.Time]
	ContactTimePreference Opt[sql.NullString]
	ReferralSourceID      Opt[uuid.NullUUID]
	CurrentOperator       Opt[sql.NullString]
	Notes                 Opt[sql.NullString]
	OperatorID            Opt[uuid.NullUUID]
	Address               Opt[sql.NullString]
	DistrictID            Opt[uuid.NullUUID]
	Latitude              Opt[sql.NullFloat64]
	Longitude             Opt[sql.NullFloat64]
	Reference             Opt[sql.NullString]
}

func (p LeadPatch) Builder() *UpdateBuilder {
	b := NewUpdate("leads")
	setOpt(b, "full_name", p.FullName)
	setOpt(b, "dni", p.DNI)
	setOpt(b, "phone", p.Phone)
	if p.ContactDate.Set {
		b.Set("contact_date", p.ContactDate.Value.Format("2006-01-02"))
	}
	setOpt(b, "contact_time_preference", p.ContactTimePreference)
	setOpt(b, "referral_source_id", p.ReferralSourceID)
	setOpt(b, "current_operator", p.CurrentOperator)
	setOpt(b, "notes", p.Notes)
	setOpt(b, "operator_id", p.OperatorID)
	setOpt(b, "address", p.Address)
	setOpt(b, "district_id", p.DistrictID)
	setOpt(b, "latitude", p.Latitude)
	setOpt(b, "longitude", p.Longitude)
	setOpt(b, "reference", p.Reference)
	return b
}

func (p LeadPatch) IsEmpty() bool {
	return p.Builder().Len() == 0
}

type SalePatch struct {
	FullName         Opt[string]
	DNI              Opt[string]
	DNIExpiryDate    Opt[sql.NullTime]
	BirthPlace       Opt[sql.NullString]
	BirthDate        Opt[sql.NullTime]
	Email            Opt[sql.NullString]
	Phone            Opt[string]
	PhoneOwnerName   Opt[sql.NullString]
	PhoneOwnerDNI    Opt[sql.NullString]
	Address          Opt[string]
	AddressType      Opt[AddressType]
	Reference        Opt[sql.NullString]
	District         Opt[string]
	Province         Opt[string]
	Department       Opt[string]
	Latitude         Opt[sql.NullFloat64]
	Longitude        Opt[sql.NullFloat64]
	PlanID           Opt[uuid.UUID]
	Price            Opt[decimal.Decimal]
	Score            Opt[sql.NullInt32]
	InstallationDate Opt[sql.NullTime]
	OperatorID       Opt[uuid.NullUUID]
}

func (p SalePatch) Builder() *UpdateBuilder {
	b := NewUpdate("sales")
	setOpt(b, "full_name", p.FullName)
	setOpt(b, "dni", p.DNI)
	setOpt(b, "dni_expiry_date", p.DNIExpiryDate)
	setOpt(b, "birth_place", p.BirthPlace)
	setOpt(b, "birth_date", p.BirthDate)
	setOpt(b, "email", p.Email)
	setOpt(b, "phone", p.Phone)
	setOpt(b, "phone_owner_name", p.PhoneOwnerName)
	setOpt(b, "phone_owner_dni", p.PhoneOwnerDNI)
	setOpt(b, "address", p.Address)
	if p.AddressType.Set {
		b.Set("address_type", string(p.AddressType.Value))
	}
	setOpt(b, "reference", p.Reference)
	setOpt(b, "district", p.District)
	setOpt(b, "province", p.Province)
	setOpt(b, "department", p.Department)
	setOpt(b, "latitude", p.Latitude)
	setOpt(b, "longitude", p.Longitude)
	setOpt(b, "plan_id", p.PlanID)
	setOpt(b, "price", p.Price)
	setOpt(b, "score", p.Score)
	setOpt(b, "installation_date", p.InstallationDate)
	setOpt(b, "operator_id", p.OperatorID)
	return b
}

func (p SalePatch) IsEmpty() bool {
	return p.Builder().Len() == 0
}

// BackofficePatch holds the validation fields only backoffice and admin may change.
type BackofficePatch struct {
	Score            Opt[sql.NullInt32]
	ExternalID       Opt[sql.NullString]
	ContractNumber   Opt[sql.NullString]
	RequestStatus    Opt[RequestStatus]
	OrderStatus      Opt[OrderStatus]
	RejectionReason  Opt[sql.NullString]
	InstallationDate Opt[sql.NullTime]
	OperatorMetadata Opt[json.RawMessage]
}

func (p BackofficePatch) Builder() *UpdateBuilder {
	b := NewUpdate("sales")
	setOpt(b, "score", p.Score)
	setOpt(b, "external_id", p.ExternalID)
	setOpt(b, "contract_number", p.ContractNumber)
	if p.RequestStatus.Set {
		b.Set("request_status", string(p.RequestStatus.Value))
	}
	if p.OrderStatus.Set {
		b.Set("order_status", string(p.OrderStatus.Value))
	}
	setOpt(b, "rejection_reason", p.RejectionReason)
	setOpt(b, "installation_date", p.InstallationDate)
	if p.OperatorMetadata.Set {
		b.Set("operator_metadata", string(p.OperatorMetadata.Value))
	}
	return b
}

func (p BackofficePatch) IsEmpty() bool {
	return p.Builder().Len() == 0
}
