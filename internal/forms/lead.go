package forms

import (
	"database/sql"
	"net/url"
	"time"

	"github.com/google/uuid"

	"winsales/internal/agenda"
	"winsales/internal/models"
)

// ParseLeadForm reads the new-lead form. Every lead is taken for an operator; the DNI
// may come later. The owner is filled in by the caller.
func ParseLeadForm(values url.Values, loc *time.Location) (models.LeadInput, error) {
	r := newReader(values, loc)

	in := models.LeadInput{
		FullName:         r.required("full_name"),
		DNI:              r.str("dni"),
		Phone:            r.required("phone"),
		ReferralSourceID: r.nullUUID("referral_source_id"),
		CurrentOperator:  r.str("current_operator"),
		Notes:            r.str("notes"),
		OperatorID:       uuid.NullUUID{UUID: r.requiredUUID("operator_id")},
		Address:          r.str("address"),
		DistrictID:       r.nullUUID("district_id"),
		Latitude:         r.latitude("latitude"),
		Longitude:        r.longitude("longitude"),
		Reference:        r.str("reference"),
	}
	if d, ok := r.date("contact_date"); ok {
		in.ContactDate = d
	}
	in.ContactTimePreference = r.choice("contact_time_preference", "", agenda.ValidPreference)
	in.OperatorID.Valid = in.OperatorID.UUID != uuid.Nil

	return in, r.result()
}

// ParseLeadPatch reads an edit form. Only submitted keys become part of the patch;
// submitting an optional field empty clears it.
func ParseLeadPatch(values url.Values, loc *time.Location) (models.LeadPatch, error) {
	r := newReader(values, loc)
	var p models.LeadPatch

	if r.present("full_name") {
		p.FullName = models.Some(r.required("full_name"))
	}
	if r.present("dni") {
		p.DNI = models.Some(r.str("dni"))
	}
	if r.present("phone") {
		p.Phone = models.Some(r.required("phone"))
	}
	if r.present("contact_date") {
		if d, ok := r.date("contact_date"); ok {
			p.ContactDate = models.Some(d)
		} else if !r.errs.Has("contact_date") {
			r.errs.Add("contact_date", msgRequired)
		}
	}
	if r.present("contact_time_preference") {
		pref := r.choice("contact_time_preference", "", agenda.ValidPreference)
		p.ContactTimePreference = models.Some(sql.NullString{String: pref, Valid: pref != ""})
	}
	if r.present("referral_source_id") {
		p.ReferralSourceID = models.Some(r.nullUUID("referral_source_id"))
	}
	if r.present("current_operator") {
		p.CurrentOperator = models.Some(r.nullStr("current_operator"))
	}
	if r.present("notes") {
		p.Notes = models.Some(r.nullStr("notes"))
	}
	if r.present("operator_id") {
		p.OperatorID = models.Some(uuid.NullUUID{UUID: r.requiredUUID("operator_id"), Valid: true})
	}
	if r.present("address") {
		p.Address = models.Some(r.nullStr("address"))
	}
	if r.present("district_id") {
		p.DistrictID = models.Some(r.nullUUID("district_id"))
	}
	if r.present("latitude") {
		p.Latitude = models.Some(r.latitude("latitude"))
	}
	if r.present("longitude") {
		p.Longitude = models.Some(r.longitude("longitude"))
	}
	if r.present("reference") {
		p.Reference = models.Some(r.nullStr("reference"))
	}

	return p, r.result()
}
