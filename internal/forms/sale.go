package forms

import (
	"database/sql"
	"encoding/json"
	"net/url"
	"time"

	"winsales/internal/models"
)

func validAddressType(s string) bool {
	return models.ValidAddressType(s)
}

// ParseSaleForm reads the new-sale form.
func ParseSaleForm(values url.Values, loc *time.Location) (models.SaleInput, error) {
	r := newReader(values, loc)

	in := models.SaleInput{
		LeadID:           r.nullUUID("lead_id"),
		FullName:         r.required("full_name"),
		DNI:              r.required("dni"),
		DNIExpiryDate:    r.nullDate("dni_expiry_date"),
		BirthPlace:       r.str("birth_place"),
		BirthDate:        r.nullDate("birth_date"),
		Email:            r.str("email"),
		Phone:            r.required("phone"),
		IsPhoneOwner:     r.bool("is_phone_owner"),
		Address:          r.required("address"),
		AddressType:      models.AddressType(r.choice("address_type", string(models.AddressHome), validAddressType)),
		Reference:        r.str("reference"),
		District:         r.required("district"),
		Province:         r.required("province"),
		Department:       r.required("department"),
		Latitude:         r.latitude("latitude"),
		Longitude:        r.longitude("longitude"),
		PlanID:           r.requiredUUID("plan_id"),
		Score:            r.nullInt("score"),
		InstallationDate: r.nullDate("installation_date"),
		OperatorID:       r.nullUUID("operator_id"),
	}
	if price, ok := r.money("price"); ok {
		in.Price = price
	}
	if !in.IsPhoneOwner {
		in.PhoneOwnerName = r.required("phone_owner_name")
		in.PhoneOwnerDNI = r.required("phone_owner_dni")
	}

	return in, r.result()
}

// ParseSalePatch reads the advisor's edit form for a sale.
func ParseSalePatch(values url.Values, loc *time.Location) (models.SalePatch, error) {
	r := newReader(values, loc)
	var p models.SalePatch

	requiredText := func(key string, dst *models.Opt[string]) {
		if r.present(key) {
			*dst = models.Some(r.required(key))
		}
	}
	optionalText := func(key string, dst *models.Opt[sql.NullString]) {
		if r.present(key) {
			*dst = models.Some(r.nullStr(key))
		}
	}
	optionalDate := func(key string, dst *models.Opt[sql.NullTime]) {
		if r.present(key) {
			*dst = models.Some(r.nullDate(key))
		}
	}

	requiredText("full_name", &p.FullName)
	requiredText("dni", &p.DNI)
	optionalDate("dni_expiry_date", &p.DNIExpiryDate)
	optionalText("birth_place", &p.BirthPlace)
	optionalDate("birth_date", &p.BirthDate)
	optionalText("email", &p.Email)
	requiredText("phone", &p.Phone)
	optionalText("reference", &p.Reference)
	requiredText("address", &p.Address)
	requiredText("district", &p.District)
	requiredText("province", &p.Province)
	requiredText("department", &p.Department)
	optionalDate("installation_date", &p.InstallationDate)

	if r.present("is_phone_owner") || r.present("phone_owner_name") || r.present("phone_owner_dni") {
		if r.bool("is_phone_owner") {
			p.PhoneOwnerName = models.Some(sql.NullString{})
			p.PhoneOwnerDNI = models.Some(sql.NullString{})
		} else {
			optionalText("phone_owner_name", &p.PhoneOwnerName)
			optionalText("phone_owner_dni", &p.PhoneOwnerDNI)
		}
	}
	if r.present("address_type") {
		p.AddressType = models.Some(models.AddressType(r.choice("address_type", string(models.AddressHome), validAddressType)))
	}
	if r.present("latitude") {
		p.Latitude = models.Some(r.latitude("latitude"))
	}
	if r.present("longitude") {
		p.Longitude = models.Some(r.longitude("longitude"))
	}
	if r.present("plan_id") {
		p.PlanID = models.Some(r.requiredUUID("plan_id"))
	}
	if r.present("price") {
		if price, ok := r.money("price"); ok {
			p.Price = models.Some(price)
		}
	}
	if r.present("score") {
		p.Score = models.Some(r.nullInt("score"))
	}
	if r.present("operator_id") {
		p.OperatorID = models.Some(r.nullUUID("operator_id"))
	}

	return p, r.result()
}

// ParseBackofficePatch reads the review form used by backoffice and admins.
func ParseBackofficePatch(values url.Values, loc *time.Location) (models.BackofficePatch, error) {
	r := newReader(values, loc)
	var p models.BackofficePatch

	if r.present("score") {
		p.Score = models.Some(r.nullInt("score"))
	}
	if r.present("external_id") {
		p.ExternalID = models.Some(r.nullStr("external_id"))
	}
	if r.present("contract_number") {
		p.ContractNumber = models.Some(r.nullStr("contract_number"))
	}
	if r.present("request_status") {
		s := r.choice("request_status", "", models.ValidRequestStatus)
		if s == "" && !r.errs.Has("request_status") {
			r.errs.Add("request_status", msgRequired)
		}
		if s != "" {
			p.RequestStatus = models.Some(models.RequestStatus(s))
		}
	}
	if r.present("order_status") {
		s := r.choice("order_status", "", models.ValidOrderStatus)
		if s == "" && !r.errs.Has("order_status") {
			r.errs.Add("order_status", msgRequired)
		}
		if s != "" {
			p.OrderStatus = models.Some(models.OrderStatus(s))
		}
	}
	if r.present("rejection_reason") {
		p.RejectionReason = models.Some(r.nullStr("rejection_reason"))
	}
	if r.present("installation_date") {
		p.InstallationDate = models.Some(r.nullDate("installation_date"))
	}
	if r.present("operator_metadata") {
		raw := r.str("operator_metadata")
		if raw == "" {
			raw = "{}"
		}
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &obj); err != nil {
			r.errs.Add("operator_metadata", "Debe ser un objeto JSON válido")
		} else {
			p.OperatorMetadata = models.Some(json.RawMessage(raw))
		}
	}

	if p.RequestStatus.Set && p.RequestStatus.Value == models.RequestRejected {
		if !p.RejectionReason.Set || !p.RejectionReason.Value.Valid {
			r.errs.Add("rejection_reason", "Indica el motivo del rechazo")
		}
	}

	return p, r.result()
}
