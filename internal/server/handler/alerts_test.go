package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volspike/volspike/internal/domain"
)

type stubAlertReader struct {
	alerts  []domain.OIAlert
	err     error
	gotOpts domain.AlertListOpts
}

func (s *stubAlertReader) ListAlerts(_ context.Context, opts domain.AlertListOpts) ([]domain.OIAlert, error) {
	s.gotOpts = opts
	return s.alerts, s.err
}

func TestAlertHandler_ListAlerts(t *testing.T) {
	stub := &stubAlertReader{
		alerts: []domain.OIAlert{
			{ID: "a1", Symbol: "BTCUSDT", Direction: domain.DirectionUp},
		},
	}
	h := NewAlertHandler(stub, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/open-interest-alerts?limit=25&symbol=BTCUSDT&direction=UP", nil)
	rec := httptest.NewRecorder()
	h.ListAlerts(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 25, stub.gotOpts.Limit)
	assert.Equal(t, "BTCUSDT", stub.gotOpts.Symbol)
	assert.Equal(t, domain.DirectionUp, stub.gotOpts.Direction)

	var resp struct {
		Alerts []domain.OIAlert `json:"alerts"`
		Count  int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestAlertHandler_ListAlerts_CapsLimit(t *testing.T) {
	stub := &stubAlertReader{}
	h := NewAlertHandler(stub, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/open-interest-alerts?limit=99999", nil)
	rec := httptest.NewRecorder()
	h.ListAlerts(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, maxAlertLimit, stub.gotOpts.Limit)
}

func TestAlertHandler_ListAlerts_RejectsBadDirection(t *testing.T) {
	stub := &stubAlertReader{}
	h := NewAlertHandler(stub, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/open-interest-alerts?direction=sideways", nil)
	rec := httptest.NewRecorder()
	h.ListAlerts(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, stub.gotOpts.Symbol)
}
