package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/dashboard/leads/{id}/edit", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/dashboard/leads/{id}/edit", "418"))
	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/leads/"+id+"/edit", nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/dashboard/leads/{id}/edit", "418"))

	assert.Equal(t, 2.0, after-before)
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(salesReviewed.WithLabelValues("validated"))
	RecordSaleReviewed("validated")
	assert.Equal(t, 1.0, testutil.ToFloat64(salesReviewed.WithLabelValues("validated"))-before)

	beforeCreated := testutil.ToFloat64(salesCreated)
	RecordSaleCreated()
	assert.Equal(t, 1.0, testutil.ToFloat64(salesCreated)-beforeCreated)
}
