package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentSameReference verifies the reference guard under concurrent
// load. It fires 50 concurrent submissions with the same ref_no; the Redis
// SETNX claim is atomic, so exactly one must reach the exchange and the rest
// must be rejected as duplicates before any wire call is made.
func TestConcurrentSameReference(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := registerAndLogin(t, app)

	concurrency := 50
	body := orderBody("RACE0001")

	var wg sync.WaitGroup
	var successCount atomic.Int64
	var conflictCount atomic.Int64
	var otherCount atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/orders", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				otherCount.Add(1)
				return
			}
			defer resp.Body.Close()
			_, _ = io.ReadAll(resp.Body)

			switch resp.StatusCode {
			case http.StatusCreated:
				successCount.Add(1)
			case http.StatusConflict:
				conflictCount.Add(1)
			default:
				otherCount.Add(1)
			}
		}()
	}

	wg.Wait()

	t.Logf("Same-reference race: %d created, %d conflicts, %d other (out of %d)",
		successCount.Load(), conflictCount.Load(), otherCount.Load(), concurrency)

	assert.Equal(t, int64(1), successCount.Load(), "exactly one submission should win the reference claim")
	assert.Equal(t, int64(concurrency-1), conflictCount.Load(), "every loser should be rejected as a duplicate")
	assert.Equal(t, int64(0), otherCount.Load())

	// Exactly one row exists for the reference, and it is the accepted one.
	resp := doAuthed(t, app, token, http.MethodGet, "/api/v1/orders/RACE0001", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var getResp map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&getResp))
	order := getResp["data"].(map[string]interface{})
	assert.Equal(t, "ACCEPTED", order["status"])
}

// TestConcurrentDistinctReferences verifies that unrelated references do not
// contend: every submission with its own ref_no must succeed.
func TestConcurrentDistinctReferences(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := registerAndLogin(t, app)

	concurrency := 20

	var wg sync.WaitGroup
	var successCount atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			body := orderBody(fmt.Sprintf("DISTINCT%02d", idx))
			req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/orders", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return
			}
			defer resp.Body.Close()
			_, _ = io.ReadAll(resp.Body)

			if resp.StatusCode == http.StatusCreated {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	t.Logf("Distinct references: %d created (out of %d)", successCount.Load(), concurrency)
	assert.Equal(t, int64(concurrency), successCount.Load(), "distinct references must not contend")

	// All rows are visible in the listing.
	resp := doAuthed(t, app, token, http.MethodGet, "/api/v1/orders?page=1&page_size=100", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listResp map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listResp))
	data := listResp["data"].(map[string]interface{})
	assert.Equal(t, float64(concurrency), data["total"])
}
