// Package forms turns submitted url.Values into typed inputs and patches. Bad values are
// reported per field instead of being coerced to zero or NULL.
package forms

import (
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"winsales/internal/util"
)

const (
	msgRequired = "Este campo es obligatorio"
	msgDate     = "Fecha inválida (AAAA-MM-DD)"
	msgNumber   = "Debe ser un número"
	msgInteger  = "Debe ser un número entero"
	msgChoice   = "Valor no permitido"
	msgID       = "Identificador inválido"
)

type FieldError struct {
	Field   string
	Message string
}

// Errors collects field problems in the order they were found.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

func (e *Errors) Add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

func (e Errors) Has(field string) bool {
	return e.Get(field) != ""
}

func (e Errors) Get(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// Map is the shape templates use: field -> first message.
func (e Errors) Map() map[string]string {
	m := make(map[string]string, len(e))
	for _, fe := range e {
		if _, ok := m[fe.Field]; !ok {
			m[fe.Field] = fe.Message
		}
	}
	return m
}

// Fields lists the offending field names.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for _, fe := range e {
		fields = append(fields, fe.Field)
	}
	return fields
}

// reader wraps a submitted form and accumulates errors while fields are read.
type reader struct {
	values url.Values
	loc    *time.Location
	errs   Errors
}

func newReader(values url.Values, loc *time.Location) *reader {
	if loc == nil {
		loc = time.Local
	}
	return &reader{values: values, loc: loc}
}

// present reports whether the key was submitted at all, even empty.
func (r *reader) present(key string) bool {
	_, ok := r.values[key]
	return ok
}

func (r *reader) str(key string) string {
	return strings.TrimSpace(r.values.Get(key))
}

func (r *reader) required(key string) string {
	v := r.str(key)
	if v == "" {
		r.errs.Add(key, msgRequired)
	}
	return v
}

func (r *reader) nullStr(key string) sql.NullString {
	v := r.str(key)
	return sql.NullString{String: v, Valid: v != ""}
}

func (r *reader) bool(key string) bool {
	switch strings.ToLower(r.str(key)) {
	case "1", "true", "on", "yes", "si", "sí":
		return true
	}
	return false
}

func (r *reader) date(key string) (time.Time, bool) {
	v := r.str(key)
	if v == "" {
		return time.Time{}, false
	}
	t, err := util.ParseDate(v, r.loc)
	if err != nil {
		r.errs.Add(key, msgDate)
		return time.Time{}, false
	}
	return t, true
}

func (r *reader) nullDate(key string) sql.NullTime {
	t, ok := r.date(key)
	return sql.NullTime{Time: t, Valid: ok}
}

func (r *reader) nullFloat(key string, min, max float64) sql.NullFloat64 {
	v := r.str(key)
	if v == "" {
		return sql.NullFloat64{}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.errs.Add(key, msgNumber)
		return sql.NullFloat64{}
	}
	if f < min || f > max {
		r.errs.Add(key, fmt.Sprintf("Debe estar entre %g y %g", min, max))
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

func (r *reader) latitude(key string) sql.NullFloat64 {
	return r.nullFloat(key, -90, 90)
}

func (r *reader) longitude(key string) sql.NullFloat64 {
	return r.nullFloat(key, -180, 180)
}

func (r *reader) nullInt(key string) sql.NullInt32 {
	v := r.str(key)
	if v == "" {
		return sql.NullInt32{}
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		r.errs.Add(key, msgInteger)
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(n), Valid: true}
}

// money parses a non-negative amount. Commas are accepted as decimal separators.
func (r *reader) money(key string) (decimal.Decimal, bool) {
	v := r.str(key)
	if v == "" {
		r.errs.Add(key, msgRequired)
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(v, ",", "."))
	if err != nil {
		r.errs.Add(key, msgNumber)
		return decimal.Zero, false
	}
	if d.IsNegative() {
		r.errs.Add(key, "No puede ser negativo")
		return decimal.Zero, false
	}
	return d.Round(2), true
}

func (r *reader) nullUUID(key string) uuid.NullUUID {
	v := r.str(key)
	if v == "" {
		return uuid.NullUUID{}
	}
	id, err := uuid.Parse(v)
	if err != nil {
		r.errs.Add(key, msgID)
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: id, Valid: true}
}

func (r *reader) requiredUUID(key string) uuid.UUID {
	id := r.nullUUID(key)
	if !id.Valid && !r.errs.Has(key) {
		r.errs.Add(key, msgRequired)
	}
	return id.UUID
}

// choice returns v when valid(v) holds; empty input returns fallback.
func (r *reader) choice(key, fallback string, valid func(string) bool) string {
	v := r.str(key)
	if v == "" {
		return fallback
	}
	if !valid(v) {
		r.errs.Add(key, msgChoice)
		return fallback
	}
	return v
}

func (r *reader) result() error {
	if len(r.errs) == 0 {
		return nil
	}
	return r.errs
}

// ParseID parses a path parameter.
func ParseID(s string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(s))
}
