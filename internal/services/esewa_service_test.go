package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nepstays/stays-backend/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestESewaService(environment string) *ESewaService {
	logger := logrus.New()
	logger.SetOutput(&strings.Builder{})

	return NewESewaService(&config.PaymentConfig{
		Environment:    environment,
		MerchantCode:   "EPAYTEST",
		MerchantSecret: "test-secret",
		SuccessURL:     "http://localhost:8080/api/payments/verify",
		FailureURL:     "http://localhost:5173/payment/failure",
	}, logger)
}

func TestNewTransactionID(t *testing.T) {
	svc := newTestESewaService("sandbox")

	t.Run("Carries Prefix", func(t *testing.T) {
		id := svc.NewTransactionID()
		assert.True(t, strings.HasPrefix(id, "NPSTAYS"))
		assert.Greater(t, len(id), len("NPSTAYS"))
	})

	t.Run("Unique Per Call", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			id := svc.NewTransactionID()
			assert.False(t, seen[id], "duplicate transaction id %s", id)
			seen[id] = true
		}
	})
}

func TestPaymentURL(t *testing.T) {
	assert.Equal(t, "https://uat.esewa.com.np/epay/main", newTestESewaService("sandbox").PaymentURL())
	assert.Equal(t, "https://esewa.com.np/epay/main", newTestESewaService("production").PaymentURL())
}

func TestBuildParams(t *testing.T) {
	svc := newTestESewaService("sandbox")
	params := svc.BuildParams("NPSTAYS17000000001abcd", 10500)

	assert.Equal(t, 10500.0, params.Amount)
	assert.Equal(t, 10500.0, params.TotalAmount)
	assert.Equal(t, 0.0, params.DeliveryCharge)
	assert.Equal(t, 0.0, params.ServiceCharge)
	assert.Equal(t, 0.0, params.TaxAmount)
	assert.Equal(t, "NPSTAYS17000000001abcd", params.ProductID)
	assert.Equal(t, "EPAYTEST", params.MerchantCode)
	assert.Equal(t, "http://localhost:8080/api/payments/verify", params.SuccessURL)
	assert.Equal(t, "http://localhost:5173/payment/failure", params.FailureURL)
}

func TestSign(t *testing.T) {
	svc := newTestESewaService("sandbox")

	first := svc.Sign("NPSTAYS1", "10500", "REF123")
	second := svc.Sign("NPSTAYS1", "10500", "REF123")
	assert.Equal(t, first, second)
	assert.Len(t, first, 64) // hex-encoded SHA-256

	different := svc.Sign("NPSTAYS2", "10500", "REF123")
	assert.NotEqual(t, first, different)
}

func TestVerifySandbox(t *testing.T) {
	svc := newTestESewaService("sandbox")
	assert.NoError(t, svc.Verify("NPSTAYS1", "10500", "REF123"))
}

func TestVerifyProduction(t *testing.T) {
	t.Run("Gateway Confirms", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "NPSTAYS1", r.FormValue("pid"))
			assert.Equal(t, "10500", r.FormValue("amt"))
			assert.Equal(t, "REF123", r.FormValue("rid"))
			assert.Equal(t, "EPAYTEST", r.FormValue("scd"))
			w.Write([]byte("<response><response_code>Success</response_code></response>"))
		}))
		defer server.Close()

		original := ESewaVerificationURLs["production"]
		ESewaVerificationURLs["production"] = server.URL
		defer func() { ESewaVerificationURLs["production"] = original }()

		svc := newTestESewaService("production")
		assert.NoError(t, svc.Verify("NPSTAYS1", "10500", "REF123"))
	})

	t.Run("Gateway Rejects", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<response><response_code>failure</response_code></response>"))
		}))
		defer server.Close()

		original := ESewaVerificationURLs["production"]
		ESewaVerificationURLs["production"] = server.URL
		defer func() { ESewaVerificationURLs["production"] = original }()

		svc := newTestESewaService("production")
		assert.Error(t, svc.Verify("NPSTAYS1", "10500", "REF123"))
	})

	// "Unsuccessful" contains the substring "success"; only the parsed
	// response_code decides the outcome
	t.Run("Unsuccessful Response Code Rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<response><response_code>Unsuccessful</response_code></response>"))
		}))
		defer server.Close()

		original := ESewaVerificationURLs["production"]
		ESewaVerificationURLs["production"] = server.URL
		defer func() { ESewaVerificationURLs["production"] = original }()

		svc := newTestESewaService("production")
		assert.Error(t, svc.Verify("NPSTAYS1", "10500", "REF123"))
	})

	t.Run("Whitespace Around Response Code Tolerated", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<response><response_code>\n  Success\n</response_code></response>"))
		}))
		defer server.Close()

		original := ESewaVerificationURLs["production"]
		ESewaVerificationURLs["production"] = server.URL
		defer func() { ESewaVerificationURLs["production"] = original }()

		svc := newTestESewaService("production")
		assert.NoError(t, svc.Verify("NPSTAYS1", "10500", "REF123"))
	})
}
