package intasend_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samuelmanoizy/intuipay-dashboard/internal/adapters/gateway/intasend"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/apperrors"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/core/ports/gateway"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *intasend.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return intasend.NewClient(intasend.Config{
		BaseURL:   srv.URL,
		PublicKey: "pk_test",
		SecretKey: "sk_test",
		Currency:  "KES",
		Timeout:   2 * time.Second,
	}, slog.Default())
}

func TestInitiatePayout_Success(t *testing.T) {
	var gotAuth, gotPublicKey string
	var gotBody map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPublicKey = r.Header.Get("X-IntaSend-Public-API-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{"tracking_id": "trk-123", "status": "Preview and approve"})
	})

	result, err := client.InitiatePayout(context.Background(), gateway.PayoutRequest{
		Amount:        decimal.RequireFromString("250.00"),
		Destination:   "254712345678",
		RecipientName: "Jane",
		Narrative:     "wallet withdrawal",
	})

	require.NoError(t, err)
	assert.Equal(t, "trk-123", result.Reference)
	assert.Equal(t, "Bearer sk_test", gotAuth)
	assert.Equal(t, "pk_test", gotPublicKey)

	assert.Equal(t, "KES", gotBody["currency"])
	assert.Equal(t, "NO", gotBody["requires_approval"])
	txns, ok := gotBody["transactions"].([]any)
	require.True(t, ok)
	require.Len(t, txns, 1)
	txn := txns[0].(map[string]any)
	assert.Equal(t, "254712345678", txn["account"])
	assert.Equal(t, "250", txn["amount"])
}

func TestInitiateCollection_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"invoice": map[string]any{"invoice_id": "inv-42", "state": "PENDING"},
		})
	})

	result, err := client.InitiateCollection(context.Background(), gateway.CollectionRequest{
		Amount: decimal.NewFromInt(100),
		APIRef: "txn-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "inv-42", result.Reference)
}

func TestInitiateCollection_NoReferenceIsMalformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	})

	_, err := client.InitiateCollection(context.Background(), gateway.CollectionRequest{
		Amount: decimal.NewFromInt(100),
		APIRef: "txn-1",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrGatewayMalformedResponse)
}

func TestQueryPayoutStatus_Mapping(t *testing.T) {
	tests := []struct {
		remote   string
		expected gateway.PayoutState
	}{
		{"Preview and approve", gateway.PayoutQueued},
		{"PENDING", gateway.PayoutQueued},
		{"Sending payment", gateway.PayoutProcessing},
		{"PROCESSING", gateway.PayoutProcessing},
		{"COMPLETE", gateway.PayoutCompleted},
		{"Successful", gateway.PayoutCompleted},
		{"FAILED", gateway.PayoutRejected},
		{"Cancelled", gateway.PayoutRejected},
	}
	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"status": tt.remote})
			})

			state, err := client.QueryPayoutStatus(context.Background(), "trk-123")

			require.NoError(t, err)
			assert.Equal(t, tt.expected, state)
		})
	}
}

func TestQueryPayoutStatus_UnknownVocabularyIsMalformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "TRANSMOGRIFIED"})
	})

	_, err := client.QueryPayoutStatus(context.Background(), "trk-123")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrGatewayMalformedResponse)
}

func TestErrorClassification(t *testing.T) {
	t.Run("4xx is a rejection", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{"detail": "insufficient float"})
		})

		_, err := client.InitiatePayout(context.Background(), gateway.PayoutRequest{
			Amount:      decimal.NewFromInt(10),
			Destination: "254712345678",
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrGatewayRejected)
		assert.Contains(t, err.Error(), "insufficient float")
	})

	t.Run("5xx is unreachable", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.InitiatePayout(context.Background(), gateway.PayoutRequest{
			Amount:      decimal.NewFromInt(10),
			Destination: "254712345678",
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrGatewayUnreachable)
	})

	t.Run("connection failure is unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close() // nothing listening anymore

		client := intasend.NewClient(intasend.Config{
			BaseURL:   srv.URL,
			PublicKey: "pk_test",
			SecretKey: "sk_test",
			Currency:  "KES",
			Timeout:   time.Second,
		}, slog.Default())

		_, err := client.QueryPayoutStatus(context.Background(), "trk-123")

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrGatewayUnreachable)
	})

	t.Run("undecodable body is malformed", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>not json</html>"))
		})

		_, err := client.QueryPayoutStatus(context.Background(), "trk-123")

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrGatewayMalformedResponse)
	})
}
