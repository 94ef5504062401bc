package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
)

// NewJSONRequest creates an HTTP request whose body is body encoded as JSON.
// A string body is sent verbatim, which lets tests post malformed JSON.
func NewJSONRequest(method, target string, body any) *http.Request {
	var raw []byte
	switch b := body.(type) {
	case nil:
	case string:
		raw = []byte(b)
	default:
		var err error
		raw, err = json.Marshal(b)
		if err != nil {
			panic("testutil: marshal request body: " + err.Error())
		}
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body %q)", r.Code, expected, r.Body.String())
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	body := r.Body.String()
	if !strings.Contains(body, expected) {
		t.Errorf("response body %q does not contain %q", body, expected)
	}
}

// AssertJSONString checks that the body is the JSON string want, e.g. "Success".
func (r *ResponseRecorder) AssertJSONString(t interface{ Errorf(string, ...any) }, want string) {
	var got string
	if err := json.Unmarshal(r.Body.Bytes(), &got); err != nil {
		t.Errorf("response body %q is not a JSON string: %v", r.Body.String(), err)
		return
	}
	if got != want {
		t.Errorf("response message: got %q, want %q", got, want)
	}
}

// AssertJSONError checks for a {"error": want} body.
func (r *ResponseRecorder) AssertJSONError(t interface{ Errorf(string, ...any) }, want string) {
	var got map[string]string
	if err := json.Unmarshal(r.Body.Bytes(), &got); err != nil {
		t.Errorf("response body %q is not a JSON object: %v", r.Body.String(), err)
		return
	}
	if got["error"] != want {
		t.Errorf("response error: got %q, want %q", got["error"], want)
	}
}
