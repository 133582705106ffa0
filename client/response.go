package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

// Response is what the service returned for one Request. It is never modified after Send
// returns, so it can be checked by any number of expectations.
type Response struct {
	Request Request
	URL     string
	Status  int
	Headers http.Header
	Body    []byte
	Elapsed time.Duration
}

// JSON decodes the body into generic Go values: map[string]interface{} for objects,
// []interface{} for arrays, float64 for numbers. Each call decodes afresh, so callers may
// freely modify the result.
func (r *Response) JSON() (interface{}, error) {
	if len(r.Body) == 0 {
		return nil, fmt.Errorf("response body is empty")
	}
	var doc interface{}
	if err := json.Unmarshal(r.Body, &doc); err != nil {
		return nil, fmt.Errorf("response body is not valid JSON: %w", err)
	}
	return doc, nil
}

// Value returns the body as an immutable ldvalue.Value, or a null value if the body is not
// valid JSON.
func (r *Response) Value() ldvalue.Value {
	doc, err := r.JSON()
	if err != nil {
		return ldvalue.Null()
	}
	return ldvalue.CopyArbitraryValue(doc)
}

func (r *Response) String() string {
	return fmt.Sprintf("%s -> %d", r.Request, r.Status)
}
