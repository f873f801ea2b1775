package pricefeed

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestCurrentPrice(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   *float64
	}{
		{"price present", http.StatusOK, `{"price_eur": 0.0075, "price_usd": 0.0081, "source": "dexscreener"}`, ptr(0.0075)},
		{"price missing", http.StatusOK, `{"price_usd": 0.0081}`, nil},
		{"price null", http.StatusOK, `{"price_eur": null}`, nil},
		{"server error", http.StatusInternalServerError, `{"detail": "upstream down"}`, nil},
		{"garbage body", http.StatusOK, `not json`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			got := NewClient(srv.URL, testLogger()).CurrentPrice(context.Background())
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("got %v, want nil", *got)
			case tt.want != nil && (got == nil || *got != *tt.want):
				t.Errorf("got %v, want %v", got, *tt.want)
			}
		})
	}
}

func TestCurrentPrice_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	if got := NewClient(srv.URL, testLogger()).CurrentPrice(context.Background()); got != nil {
		t.Errorf("got %v from a closed server, want nil", *got)
	}
}

func ptr(v float64) *float64 { return &v }
