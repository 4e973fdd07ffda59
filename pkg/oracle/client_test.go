package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProposeRepairsRoundTrip(t *testing.T) {
	var gotReq RepairRequest
	var gotAuth, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/repair", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(RepairResponse{
			ProposedCorrections: map[string]string{"fund_code": "000001"},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "secret-key")
	resp, err := c.ProposeRepairs(context.Background(), RepairRequest{
		IssueDescriptions: []string{"missing required field: fund_code"},
		OffendingRecords:  json.RawMessage(`{"fund_name":"测试基金"}`),
	})

	require.NoError(t, err)
	assert.Equal(t, "000001", resp.ProposedCorrections["fund_code"])
	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, []string{"missing required field: fund_code"}, gotReq.IssueDescriptions)
}

func TestProposeRepairsNoAuthHeaderWithoutKey(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(RepairResponse{})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	_, err := c.ProposeRepairs(context.Background(), RepairRequest{})

	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestProposeRepairsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "key")
	_, err := c.ProposeRepairs(context.Background(), RepairRequest{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestProposeRepairsMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "key")
	_, err := c.ProposeRepairs(context.Background(), RepairRequest{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestProposeRepairsHonorsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		json.NewEncoder(w).Encode(RepairResponse{})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "key", WithTimeout(50*time.Millisecond))
	start := time.Now()
	_, err := c.ProposeRepairs(context.Background(), RepairRequest{})

	require.Error(t, err)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
}

func TestProposeRepairsRateLimitRespectsCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(RepairResponse{})
	}))
	defer srv.Close()

	// One request per 100 seconds: the second call must block on the
	// limiter until the context is cancelled.
	c := NewHTTPClient(srv.URL, "key", WithRateLimit(0.01))
	_, err := c.ProposeRepairs(context.Background(), RepairRequest{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.ProposeRepairs(ctx, RepairRequest{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit wait")
}

func TestCleanJSON(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, cleanJSON(tc.in))
	}
}
