package models

// StatusDisplayInfo contains display information for a status badge
type StatusDisplayInfo struct {
	DisplayName string
	BgColor     string
	TextColor   string
	BorderColor string
}

var (
	badgeNeutral = StatusDisplayInfo{BgColor: "#E6E6E6", TextColor: "#333", BorderColor: "#8C8C8C"}
	badgeInfo    = StatusDisplayInfo{BgColor: "#E6F3FF", TextColor: "#0066CC", BorderColor: "#4EC6E0"}
	badgeSuccess = StatusDisplayInfo{BgColor: "#E6FFE6", TextColor: "#006600", BorderColor: "#28a745"}
	badgeWarning = StatusDisplayInfo{BgColor: "#FFF4E6", TextColor: "#8B6914", BorderColor: "#FFA500"}
	badgeDanger  = StatusDisplayInfo{BgColor: "#FFE6E6", TextColor: "#CC0000", BorderColor: "#dc3545"}
)

func badge(style StatusDisplayInfo, name string) StatusDisplayInfo {
	style.DisplayName = name
	return style
}

var leadStatusDisplay = map[LeadStatus]StatusDisplayInfo{
	LeadStatusNew:       badge(badgeInfo, "Nuevo"),
	LeadStatusConverted: badge(badgeSuccess, "Convertido"),
}

var requestStatusDisplay = map[RequestStatus]StatusDisplayInfo{
	RequestPending:   badge(badgeNeutral, "En proceso"),
	RequestValidated: badge(badgeSuccess, "Validado"),
	RequestCancelled: badge(badgeDanger, "Anulado"),
	RequestRejected:  badge(badgeDanger, "Desaprobado"),
	RequestRescue:    badge(badgeWarning, "Rescate"),
}

var orderStatusDisplay = map[OrderStatus]StatusDisplayInfo{
	OrderPending:   badge(badgeNeutral, "En proceso"),
	OrderScheduled: badge(badgeInfo, "Programado"),
	OrderExecuted:  badge(badgeSuccess, "Ejecutado"),
	OrderRescue:    badge(badgeWarning, "Rescate"),
	OrderCancelled: badge(badgeDanger, "Anulado"),
}

var addressTypeLabels = map[AddressType]string{
	AddressHome:        "Hogar",
	AddressMultifamily: "Multifamiliar",
	AddressCondo:       "Condominio / Edificio",
}

// GetLeadStatusDisplay returns display information for a lead status
func GetLeadStatusDisplay(status LeadStatus) StatusDisplayInfo {
	if info, ok := leadStatusDisplay[status]; ok {
		return info
	}
	return badge(badgeNeutral, string(status))
}

func GetRequestStatusDisplay(status RequestStatus) StatusDisplayInfo {
	if info, ok := requestStatusDisplay[status]; ok {
		return info
	}
	return badge(badgeNeutral, string(status))
}

func GetOrderStatusDisplay(status OrderStatus) StatusDisplayInfo {
	if info, ok := orderStatusDisplay[status]; ok {
		return info
	}
	return badge(badgeNeutral, string(status))
}

func AddressTypeLabel(t AddressType) string {
	if label, ok := addressTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

func ValidRequestStatus(s string) bool {
	_, ok := requestStatusDisplay[RequestStatus(s)]
	return ok
}

func ValidOrderStatus(s string) bool {
	_, ok := orderStatusDisplay[OrderStatus(s)]
	return ok
}

func ValidAddressType(s string) bool {
	_, ok := addressTypeLabels[AddressType(s)]
	return ok
}

// Operators a lead may currently be with, as offered on the lead form.
var CurrentOperators = []struct {
	Value string
	Label string
}{
	{"movistar", "Movistar"},
	{"claro", "Claro"},
	{"entel", "Entel"},
	{"bitel", "Bitel"},
	{"win", "WIN"},
	{"other", "Otro"},
	{"none", "Sin servicio"},
}

var Departments = []string{
	"Amazonas", "Áncash", "Apurímac", "Arequipa", "Ayacucho", "Cajamarca", "Callao", "Cusco",
	"Huancavelica", "Huánuco", "Ica", "Junín", "La Libertad", "Lambayeque", "Lima", "Loreto",
	"Madre de Dios", "Moquegua", "Pasco", "Piura", "Puno", "San Martín", "Tacna", "Tumbes", "Ucayali",
}
