package sigel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// arcgisStub emulates the MapServer query endpoint: an ID-discovery query
// followed by geojson batch queries keyed on the OBJECTID IN (...) clause.
type arcgisStub struct {
	total      int
	idRequests int
	batchSizes []int
}

func (s *arcgisStub) handler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("returnIdsOnly") == "true" {
		s.idRequests++
		ids := make([]int, s.total)
		for i := range ids {
			ids[i] = i + 1
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"objectIdFieldName": "OBJECTID",
			"objectIds":         ids,
		})
		return
	}

	where := q.Get("where")
	inner := strings.TrimSuffix(strings.TrimPrefix(where, "OBJECTID IN ("), ")")
	idStrs := strings.Split(inner, ",")
	s.batchSizes = append(s.batchSizes, len(idStrs))

	features := make([]string, len(idStrs))
	for i, id := range idStrs {
		features[i] = featureJSON(id)
	}
	w.Header().Set("Content-Type", "application/geo+json")
	fmt.Fprintf(w, `{"type":"FeatureCollection","features":[%s]}`, strings.Join(features, ","))
}

func featureJSON(id string) string {
	return fmt.Sprintf(`{
		"type": "Feature",
		"id": %s,
		"geometry": {"type": "Point", "coordinates": [-36.5, -5.2]},
		"properties": {
			"OBJECTID": %s,
			"NOME_EOL": "Asa Branca III",
			"DEN_AEG": "AB3-%s",
			"POT_MW": 3.0,
			"ALT_TORRE": 120.0,
			"OPERACAO": "Sim",
			"UF": "RN",
			"CEG": "EOL.CV.RN.012345-6",
			"PROPRIETARIO": "Example Energia S.A.",
			"EOL_VERSAO_ID": 42,
			"DATA_ATUALIZACAO": 1724630400000
		}
	}`, id, id, id)
}

func newTestClient(srvURL string) *Client {
	return NewClient(Options{
		URL:        srvURL,
		BatchSize:  1000,
		Timeout:    5 * time.Second,
		RatePerSec: 1000,
		UserAgent:  "test-agent",
	})
}

func TestFetchObjectIDs(t *testing.T) {
	stub := &arcgisStub{total: 7}
	srv := httptest.NewServer(http.HandlerFunc(stub.handler))
	defer srv.Close()

	c := newTestClient(srv.URL)
	ids, err := c.FetchObjectIDs(context.Background())
	require.NoError(t, err)
	assert.Len(t, ids, 7)
	assert.Equal(t, int64(1), ids[0])
	assert.Equal(t, int64(7), ids[6])
}

func TestFetchAllBatching(t *testing.T) {
	stub := &arcgisStub{total: 2500}
	srv := httptest.NewServer(http.HandlerFunc(stub.handler))
	defer srv.Close()

	c := newTestClient(srv.URL)
	recs, err := c.FetchAll(context.Background())
	require.NoError(t, err)

	assert.Len(t, recs, 2500)
	assert.Equal(t, 1, stub.idRequests)
	assert.Equal(t, []int{1000, 1000, 500}, stub.batchSizes)
}

func TestFetchBatchFieldMapping(t *testing.T) {
	stub := &arcgisStub{total: 1}
	srv := httptest.NewServer(http.HandlerFunc(stub.handler))
	defer srv.Close()

	c := newTestClient(srv.URL)
	recs, err := c.FetchBatch(context.Background(), []int64{1})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, int64(1), rec.ObjectID)
	assert.Equal(t, "Asa Branca III", rec.WindFarm)
	assert.Equal(t, "AB3-1", rec.Denomination)
	require.NotNil(t, rec.PowerMW)
	assert.Equal(t, 3.0, *rec.PowerMW)
	assert.Equal(t, "Sim", rec.Operation)
	assert.Equal(t, "RN", rec.UF)
	require.NotNil(t, rec.VersionID)
	assert.Equal(t, int64(42), *rec.VersionID)
	require.NotNil(t, rec.UpdatedAt)
	assert.Equal(t, int64(1724630400), rec.UpdatedAt.Unix())

	require.True(t, rec.HasGeometry())
	assert.Equal(t, -36.5, rec.Geometry.X())
	assert.Equal(t, -5.2, rec.Geometry.Y())
}

func TestFetchBatchNullGeometry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"type":"FeatureCollection","features":[
			{"type":"Feature","geometry":null,"properties":{"OBJECTID":9,"NOME_EOL":"Sem Geometria"}}
		]}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	recs, err := c.FetchBatch(context.Background(), []int64{9})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.False(t, recs[0].HasGeometry())
	assert.Equal(t, int64(9), recs[0].ObjectID)
}

func TestFetchBatchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// ArcGIS reports errors inside an HTTP 200 body.
		fmt.Fprint(w, `{"error":{"code":400,"message":"Invalid query"}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.FetchBatch(context.Background(), []int64{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid query")
}

func TestFetchBatchTooLarge(t *testing.T) {
	c := newTestClient("http://unused.invalid")
	ids := make([]int64, MaxBatchSize+1)
	_, err := c.FetchBatch(context.Background(), ids)
	require.Error(t, err)
}

func TestFetchAllEmptyCatalogIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"objectIdFieldName": "OBJECTID",
			"objectIds":         []int{},
		})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	// Discovery itself succeeds, so count-style callers can still report 0.
	ids, err := c.FetchObjectIDs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = c.FetchAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no object ids")
}

func TestFetchAllAbortsOnFailedBatch(t *testing.T) {
	var batchCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("returnIdsOnly") == "true" {
			_ = json.NewEncoder(w).Encode(map[string]any{"objectIds": []int{1, 2, 3}})
			return
		}
		batchCalls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.FetchAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, batchCalls, "no retry on a failed batch")
}
