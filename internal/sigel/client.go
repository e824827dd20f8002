// Package sigel queries the ANEEL SIGEL ArcGIS catalog of wind-turbine
// installations.
package sigel

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ventodata/sigel-etl/internal/model"
)

// MaxBatchSize is the hard per-request object limit imposed by the API.
const MaxBatchSize = 1000

// Options configures the SIGEL client.
type Options struct {
	URL        string
	BatchSize  int
	Timeout    time.Duration
	RatePerSec float64
	UserAgent  string
}

// Client talks to one SIGEL MapServer layer query endpoint.
type Client struct {
	httpClient *http.Client
	opts       Options
	limiter    *rate.Limiter
}

// NewClient creates a SIGEL client with the given options.
func NewClient(opts Options) *Client {
	if opts.BatchSize <= 0 || opts.BatchSize > MaxBatchSize {
		opts.BatchSize = MaxBatchSize
	}
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.RatePerSec == 0 {
		opts.RatePerSec = 5
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "sigel-etl/1.0"
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		opts:       opts,
		limiter:    rate.NewLimiter(rate.Limit(opts.RatePerSec), 1),
	}
}

// apiError is the error member ArcGIS embeds in an HTTP 200 body.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// idsResponse is the returnIdsOnly query response.
type idsResponse struct {
	ObjectIDFieldName string    `json:"objectIdFieldName"`
	ObjectIDs         []int64   `json:"objectIds"`
	Error             *apiError `json:"error"`
}

func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "sigel: rate limit")
	}

	reqURL := c.opts.URL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sigel: build request")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "sigel: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("sigel: status %d from %s", resp.StatusCode, c.opts.URL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "sigel: read body")
	}
	return body, nil
}

// FetchObjectIDs returns every object ID in the layer.
func (c *Client) FetchObjectIDs(ctx context.Context) ([]int64, error) {
	params := url.Values{
		"f":             {"json"},
		"where":         {"1=1"},
		"returnIdsOnly": {"true"},
	}

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	var resp idsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "sigel: parse ids response")
	}
	if resp.Error != nil {
		return nil, eris.Errorf("sigel: api error %d: %s", resp.Error.Code, resp.Error.Message)
	}

	return resp.ObjectIDs, nil
}

// FetchBatch retrieves the full records for the given object IDs, geometry
// included. len(ids) must not exceed MaxBatchSize.
func (c *Client) FetchBatch(ctx context.Context, ids []int64) ([]model.Turbine, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxBatchSize {
		return nil, eris.Errorf("sigel: batch of %d exceeds limit %d", len(ids), MaxBatchSize)
	}

	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = strconv.FormatInt(id, 10)
	}
	params := url.Values{
		"f":              {"geojson"},
		"where":          {"OBJECTID IN (" + strings.Join(idStrs, ",") + ")"},
		"outFields":      {"*"},
		"returnGeometry": {"true"},
	}

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	// ArcGIS reports query errors inside an HTTP 200 body.
	var fc struct {
		Error    *apiError `json:"error"`
		Features []feature `json:"features"`
	}
	if err := json.Unmarshal(body, &fc); err != nil {
		return nil, eris.Wrap(err, "sigel: parse feature collection")
	}
	if fc.Error != nil {
		return nil, eris.Errorf("sigel: api error %d: %s", fc.Error.Code, fc.Error.Message)
	}

	recs := make([]model.Turbine, 0, len(fc.Features))
	for _, feat := range fc.Features {
		recs = append(recs, featureToTurbine(feat))
	}
	return recs, nil
}

// feature is one GeoJSON feature. The geometry is kept raw so a null or
// malformed geometry degrades to a geometry-less record instead of failing
// the batch; feature ids are ignored in favor of the OBJECTID attribute.
type feature struct {
	Geometry   json.RawMessage        `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// FetchAll discovers all object IDs and retrieves the full catalog in
// batches. Any failed request aborts the whole fetch, and so does an empty
// catalog: the layer always holds thousands of turbines, so zero IDs means
// the endpoint is broken, not that the data vanished.
func (c *Client) FetchAll(ctx context.Context) ([]model.Turbine, error) {
	ids, err := c.FetchObjectIDs(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, eris.New("sigel: catalog returned no object ids")
	}
	zap.L().Info("sigel: discovered objects", zap.Int("total", len(ids)))

	var all []model.Turbine
	for i := 0; i < len(ids); i += c.opts.BatchSize {
		end := i + c.opts.BatchSize
		if end > len(ids) {
			end = len(ids)
		}

		batch, err := c.FetchBatch(ctx, ids[i:end])
		if err != nil {
			return nil, eris.Wrapf(err, "sigel: batch %d", i/c.opts.BatchSize+1)
		}

		zap.L().Info("sigel: fetched batch",
			zap.Int("batch", i/c.opts.BatchSize+1),
			zap.Int("records", len(batch)),
		)
		all = append(all, batch...)
	}

	return all, nil
}

// featureToTurbine maps one GeoJSON feature onto a Turbine record. Absent
// or malformed attributes become nulls; they are data-quality conditions
// for the pipeline, not errors.
func featureToTurbine(feat feature) model.Turbine {
	props := feat.Properties

	t := model.Turbine{
		ObjectID:     propInt(props, "OBJECTID"),
		WindFarm:     propString(props, "NOME_EOL"),
		Denomination: propString(props, "DEN_AEG"),
		PowerMW:      propFloat(props, "POT_MW"),
		TowerHeightM: propFloat(props, "ALT_TORRE"),
		TotalHeightM: propFloat(props, "ALT_TOTAL"),
		RotorDiamM:   propFloat(props, "DIAM_ROTOR"),
		Operation:    propString(props, "OPERACAO"),
		UF:           propString(props, "UF"),
		CEG:          propString(props, "CEG"),
		Owner:        propString(props, "PROPRIETARIO"),
		Origin:       propString(props, "ORIGEM"),
		UpdatedAt:    propEpochMillis(props, "DATA_ATUALIZACAO"),
	}

	if v := propFloat(props, "EOL_VERSAO_ID"); v != nil {
		id := int64(*v)
		t.VersionID = &id
	}

	t.Geometry = decodePoint(feat.Geometry)

	return t
}

// decodePoint parses a raw GeoJSON geometry, returning nil for null,
// absent, malformed, or non-point geometries.
func decodePoint(raw json.RawMessage) *geom.Point {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var g geom.T
	if err := geojson.Unmarshal(raw, &g); err != nil {
		return nil
	}
	pt, ok := g.(*geom.Point)
	if !ok || len(pt.FlatCoords()) < 2 {
		return nil
	}
	return pt
}

func propString(props map[string]interface{}, key string) string {
	switch v := props[key].(type) {
	case string:
		return v
	case float64:
		// Numeric-typed categorical fields (e.g. OPERACAO "1") arrive as
		// JSON numbers.
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func propFloat(props map[string]interface{}, key string) *float64 {
	if v, ok := props[key].(float64); ok {
		return &v
	}
	return nil
}

func propInt(props map[string]interface{}, key string) int64 {
	if v, ok := props[key].(float64); ok {
		return int64(v)
	}
	return 0
}

func propEpochMillis(props map[string]interface{}, key string) *time.Time {
	v, ok := props[key].(float64)
	if !ok {
		return nil
	}
	ts := time.UnixMilli(int64(v)).UTC()
	return &ts
}
