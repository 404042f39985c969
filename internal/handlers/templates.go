package handlers

import (
	"bytes"
	"database/sql"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"winsales/internal/access"
	"winsales/internal/agenda"
	"winsales/internal/middleware"
	"winsales/internal/models"
	"winsales/internal/views"
)

// Pages rendered inside auth_layout instead of the main app layout.
var authLayoutPages = map[string]bool{
	"login.html": true,
}

// Shared templates parsed into every page set.
var sharedTemplates = []string{"layout.html", "auth_layout.html", "partials.html"}

// Renderer holds one template set per page: the layouts and partials plus the page's
// own "content" definition.
type Renderer struct {
	pages map[string]*template.Template
	loc   *time.Location
	log   *zap.Logger
}

func NewRenderer(loc *time.Location, log *zap.Logger) (*Renderer, error) {
	if loc == nil {
		loc = time.Local
	}
	r := &Renderer{pages: make(map[string]*template.Template), loc: loc, log: log}

	root, err := template.New("").Funcs(r.funcMap()).ParseFS(views.TemplatesFS, sharedTemplates...)
	if err != nil {
		return nil, fmt.Errorf("parse layouts: %w", err)
	}

	entries, err := fs.ReadDir(views.TemplatesFS, ".")
	if err != nil {
		return nil, fmt.Errorf("read template directory: %w", err)
	}

	shared := make(map[string]bool, len(sharedTemplates))
	for _, name := range sharedTemplates {
		shared[name] = true
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".html") || shared[name] {
			continue
		}
		set, err := root.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := set.ParseFS(views.TemplatesFS, name); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if set.Lookup("content") == nil {
			return nil, fmt.Errorf("%s does not define a content template", name)
		}
		r.pages[name] = set
		log.Debug("template loaded", zap.String("page", name))
	}

	if len(r.pages) == 0 {
		return nil, fmt.Errorf("no page templates found")
	}
	return r, nil
}

func (r *Renderer) funcMap() template.FuncMap {
	return template.FuncMap{
		"urlquery": url.QueryEscape,
		"len": func(v interface{}) int {
			val := reflect.ValueOf(v)
			switch val.Kind() {
			case reflect.Slice, reflect.Array, reflect.Map:
				return val.Len()
			}
			return 0
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"date": func(v interface{}) string {
			switch t := v.(type) {
			case time.Time:
				if t.IsZero() {
					return ""
				}
				return t.Format("02/01/2006")
			case sql.NullTime:
				if !t.Valid {
					return ""
				}
				return t.Time.Format("02/01/2006")
			}
			return ""
		},
		"isodate": func(v interface{}) string {
			switch t := v.(type) {
			case time.Time:
				if t.IsZero() {
					return ""
				}
				return t.Format("2006-01-02")
			case sql.NullTime:
				if !t.Valid {
					return ""
				}
				return t.Time.Format("2006-01-02")
			}
			return ""
		},
		"datetime": func(t time.Time) string {
			return t.In(r.loc).Format("02/01/2006 15:04")
		},
		"money": func(d decimal.Decimal) string {
			return "S/ " + d.StringFixed(2)
		},
		"leadStatus": func(s models.LeadStatus) models.StatusDisplayInfo {
			return models.GetLeadStatusDisplay(s)
		},
		"requestStatus": func(s models.RequestStatus) models.StatusDisplayInfo {
			return models.GetRequestStatusDisplay(s)
		},
		"orderStatus": func(s models.OrderStatus) models.StatusDisplayInfo {
			return models.GetOrderStatusDisplay(s)
		},
		"addressType": func(t models.AddressType) string {
			return models.AddressTypeLabel(t)
		},
		"roleLabel": func(role string) string {
			return access.Role(role).Label()
		},
		"slotLabel": func(slot interface{}) string {
			return agenda.Slots[agenda.ParseSlot(fmt.Sprint(slot))].Label
		},
		"slotHours": func(slot interface{}) string {
			return agenda.Slots[agenda.ParseSlot(fmt.Sprint(slot))].Description
		},
		"hasRole": func(s *access.Session, roles ...string) bool {
			for _, role := range roles {
				if s.HasRole(access.Role(role)) {
					return true
				}
			}
			return false
		},
		"formValue": func(v interface{}, key string, fallback interface{}) string {
			if form, ok := v.(url.Values); ok && form != nil {
				if _, ok := form[key]; ok {
					return form.Get(key)
				}
			}
			switch v := fallback.(type) {
			case nil:
				return ""
			case sql.NullString:
				return v.String
			case fmt.Stringer:
				return v.String()
			default:
				return fmt.Sprint(v)
			}
		},
		"fieldError": func(errs interface{}, key string) string {
			m, _ := errs.(map[string]string)
			return m[key]
		},
		"dict": func(pairs ...interface{}) (map[string]interface{}, error) {
			if len(pairs)%2 != 0 {
				return nil, fmt.Errorf("dict needs key/value pairs")
			}
			m := make(map[string]interface{}, len(pairs)/2)
			for i := 0; i < len(pairs); i += 2 {
				key, ok := pairs[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
				}
				m[key] = pairs[i+1]
			}
			return m, nil
		},
		"selected": func(a, b interface{}) template.HTMLAttr {
			if fmt.Sprint(a) == fmt.Sprint(b) {
				return "selected"
			}
			return ""
		},
	}
}

// Render executes the page inside its layout. Session, CSRF field and current path are added
// to data for the layout.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, page string, data map[string]interface{}) {
	set, ok := r.pages[page]
	if !ok {
		r.log.Error("unknown page template", zap.String("page", page))
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	if data == nil {
		data = make(map[string]interface{})
	}
	data["Session"] = middleware.SessionFrom(req.Context())
	data["CSRFField"] = csrf.TemplateField(req)
	data["CSRFToken"] = csrf.Token(req)
	data["CurrentPath"] = req.URL.Path
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = flash(req)
	}

	layout := "layout"
	if authLayoutPages[page] {
		layout = "auth_layout"
	}

	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, layout, data); err != nil {
		r.log.Error("template execute error", zap.String("page", page), zap.Error(err))
		http.Error(w, "Template execute error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
