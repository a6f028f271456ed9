package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGinMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/logs/:id/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/logs/1/", "/logs/2/"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/logs/:id/", "200")))
}

func TestRecordCounters(t *testing.T) {
	ObserveWrite("timelog", "create")
	AddHoursLogged(7.5)
	AddHoursLogged(-1)

	assert.Equal(t, float64(1), testutil.ToFloat64(recordsWritten.WithLabelValues("timelog", "create")))
	assert.Equal(t, 7.5, testutil.ToFloat64(hoursLogged))

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.True(t, strings.Contains(w.Body.String(), "timetrack_hours_logged_total 7.5"))
}
