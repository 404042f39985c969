package forms

import (
	"net/url"
	"regexp"

	"winsales/internal/models"
)

var operatorCodePattern = regexp.MustCompile(`^[A-Z0-9_-]{2,20}$`)

type OperatorInput struct {
	Name    string
	Code    string
	LogoURL string
}

type AgencyInput struct {
	Name    string
	City    string
	Address string
}

func ParseOperator(values url.Values) (OperatorInput, error) {
	r := newReader(values, nil)
	in := OperatorInput{
		Name:    r.required("name"),
		Code:    models.NormalizeOperatorCode(r.required("code")),
		LogoURL: r.str("logo_url"),
	}
	if in.Code != "" && !operatorCodePattern.MatchString(in.Code) {
		r.errs.Add("code", "Usa de 2 a 20 letras, números, guiones o guiones bajos")
	}
	return in, r.result()
}

func ParseAgency(values url.Values) (AgencyInput, error) {
	r := newReader(values, nil)
	in := AgencyInput{
		Name:    r.required("name"),
		City:    r.required("city"),
		Address: r.str("address"),
	}
	return in, r.result()
}

// ParseActive reads the target state of an activate/deactivate toggle.
func ParseActive(values url.Values) bool {
	return newReader(values, nil).bool("active")
}
