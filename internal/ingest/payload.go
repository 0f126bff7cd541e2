// ABOUTME: Health Auto Export payload shapes, decoding, and JSON Schema generation.
// ABOUTME: A payload without a metrics array is malformed; individual bad points are skipped later.
package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/invopop/jsonschema"
)

// ErrMalformedPayload marks a request body that cannot be ingested at all.
var ErrMalformedPayload = errors.New("malformed payload")

// Payload is the top-level export document.
type Payload struct {
	Data PayloadData `json:"data" jsonschema:"required"`
}

// PayloadData wraps the metric list.
type PayloadData struct {
	Metrics []Series `json:"metrics" jsonschema:"required"`
}

// Series is one metric with its data points.
type Series struct {
	Name  string      `json:"name" jsonschema:"required" jsonschema_description:"Metric identifier such as heart_rate_variability"`
	Units string      `json:"units,omitempty" jsonschema_description:"Unit label applied to every point"`
	Data  []DataPoint `json:"data" jsonschema:"required"`
}

// DataPoint is one reading. Most metrics carry qty; heart rate exports carry
// Min/Avg/Max and aggregated sleep carries totalSleep.
type DataPoint struct {
	Qty        *float64 `json:"qty,omitempty" jsonschema_description:"Reading value"`
	Avg        *float64 `json:"Avg,omitempty" jsonschema_description:"Average for min/avg/max shaped metrics"`
	TotalSleep *float64 `json:"totalSleep,omitempty" jsonschema_description:"Hours asleep for aggregated sleep"`
	Source     string   `json:"source,omitempty" jsonschema_description:"Originating device or app"`
	Date       string   `json:"date" jsonschema:"required" jsonschema_description:"Timestamp of the reading"`
}

// Value returns the point's reading, preferring qty.
func (p DataPoint) Value() (float64, bool) {
	switch {
	case p.Qty != nil:
		return *p.Qty, true
	case p.Avg != nil:
		return *p.Avg, true
	case p.TotalSleep != nil:
		return *p.TotalSleep, true
	default:
		return 0, false
	}
}

// Parse decodes a payload, rejecting bodies whose metrics field is missing
// or not an array.
func Parse(r io.Reader) (*Payload, error) {
	var probe struct {
		Data *struct {
			Metrics json.RawMessage `json:"metrics"`
		} `json:"data"`
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrMalformedPayload, err)
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrMalformedPayload, err)
	}
	if probe.Data == nil {
		return nil, fmt.Errorf("%w: missing data", ErrMalformedPayload)
	}
	raw := bytes.TrimSpace(probe.Data.Metrics)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("%w: missing data.metrics", ErrMalformedPayload)
	}
	if raw[0] != '[' {
		return nil, fmt.Errorf("%w: data.metrics must be an array", ErrMalformedPayload)
	}

	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return &p, nil
}

// Schema returns the JSON Schema of Payload.
func Schema() *jsonschema.Schema {
	r := jsonschema.Reflector{
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	s := r.Reflect(&Payload{})
	s.Title = "Health Auto Export payload"
	return s
}

// SchemaJSON returns the indented schema document.
func SchemaJSON() ([]byte, error) {
	b, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return b, nil
}
