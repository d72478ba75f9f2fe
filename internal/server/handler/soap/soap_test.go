package soap_test

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atinyakov/itemgate/internal/models"
	"github.com/atinyakov/itemgate/internal/server/handler/soap"
)

type staticVerifier struct{ calls int }

func (v *staticVerifier) Verify(_ context.Context, username, secret string) (models.Identity, error) {
	v.calls++
	if username == "user" && secret == "password" {
		return "user", nil
	}
	return "", models.ErrUnauthenticated
}

type failingGreeter struct{}

func (failingGreeter) SayHello(context.Context, string) (string, error) {
	return "", errors.New("greeting printer jammed")
}

type responseEnvelope struct {
	XMLName xml.Name `xml:"http://schemas.xmlsoap.org/soap/envelope/ Envelope"`
	Body    struct {
		Hello *struct {
			Result string `xml:"say_helloResult"`
		} `xml:"spyne.examples.hello say_helloResponse"`
		Fault *struct {
			Code   string `xml:"faultcode"`
			String string `xml:"faultstring"`
		} `xml:"http://schemas.xmlsoap.org/soap/envelope/ Fault"`
	} `xml:"http://schemas.xmlsoap.org/soap/envelope/ Body"`
}

func envelope(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:tns="spyne.examples.hello">
  <soapenv:Header/>
  <soapenv:Body>` + body + `</soapenv:Body>
</soapenv:Envelope>`
}

func helloCall(name string) string {
	return envelope(`<tns:say_hello><tns:name>` + name + `</tns:name></tns:say_hello>`)
}

func newRouter(g soap.Greeter, v *staticVerifier) http.Handler {
	return soap.NewRouter(soap.NewHandler(g, zap.NewNop()), v, zap.NewNop())
}

func call(t *testing.T, h http.Handler, method, target, body string, auth bool) (*httptest.ResponseRecorder, responseEnvelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", soap.ContentType)
	if auth {
		req.SetBasicAuth("user", "password")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env responseEnvelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "text/xml") && method != http.MethodGet {
		require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func TestSayHello(t *testing.T) {
	rec, env := call(t, newRouter(soap.HelloService{}, &staticVerifier{}), http.MethodPost, "/soap", helloCall("Ann"), true)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Body.Hello, rec.Body.String())
	assert.Equal(t, "Hello, Ann! From user authenticated via SOAP.", env.Body.Hello.Result)
	assert.Nil(t, env.Body.Fault)
}

func TestSayHello_VerbatimInput(t *testing.T) {
	rec, env := call(t, newRouter(soap.HelloService{}, &staticVerifier{}), http.MethodPost, "/soap",
		helloCall("Zoë &amp; &lt;friends&gt;"), true)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Body.Hello)
	assert.Contains(t, env.Body.Hello.Result, "Zoë & <friends>")
}

func TestSayHello_Unauthenticated(t *testing.T) {
	tests := []struct {
		name string
		body string
		user string
		pass string
	}{
		{name: "no credentials", body: helloCall("Ann")},
		{name: "wrong password", body: helloCall("Ann"), user: "user", pass: "nope"},
		{name: "unknown user", body: helloCall("Ann"), user: "ghost", pass: "password"},
		{name: "garbage body", body: "<<<not xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/soap", strings.NewReader(tt.body))
			if tt.user != "" {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			rec := httptest.NewRecorder()
			newRouter(soap.HelloService{}, &staticVerifier{}).ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Header().Get("WWW-Authenticate"), `Basic realm="soap"`)

			var env responseEnvelope
			require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &env))
			require.NotNil(t, env.Body.Fault)
			assert.Equal(t, soap.FaultClient, env.Body.Fault.Code)
			assert.Equal(t, "unauthorized", env.Body.Fault.String)
		})
	}
}

func TestFaults(t *testing.T) {
	tests := []struct {
		name    string
		greeter soap.Greeter
		body    string
		code    string
		substr  string
	}{
		{name: "malformed xml", greeter: soap.HelloService{}, body: "<<<", code: soap.FaultClient, substr: "malformed"},
		{name: "not an envelope", greeter: soap.HelloService{}, body: `<say_hello/>`, code: soap.FaultClient, substr: "malformed"},
		{name: "empty body", greeter: soap.HelloService{}, body: envelope(""), code: soap.FaultClient, substr: "empty body"},
		{name: "unknown operation", greeter: soap.HelloService{}, body: envelope(`<tns:say_goodbye/>`), code: soap.FaultClient, substr: "say_goodbye"},
		{name: "missing name", greeter: soap.HelloService{}, body: envelope(`<tns:say_hello/>`), code: soap.FaultClient, substr: "name"},
		{name: "greeter failure", greeter: failingGreeter{}, body: helloCall("Ann"), code: soap.FaultServer, substr: "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := call(t, newRouter(tt.greeter, &staticVerifier{}), http.MethodPost, "/soap", tt.body, true)

			require.Equal(t, http.StatusInternalServerError, rec.Code)
			require.NotNil(t, env.Body.Fault, rec.Body.String())
			assert.Equal(t, tt.code, env.Body.Fault.Code)
			assert.Contains(t, env.Body.Fault.String, tt.substr)
		})
	}
}

func TestWSDL(t *testing.T) {
	v := &staticVerifier{}
	h := newRouter(soap.HelloService{}, v)

	rec, _ := call(t, h, http.MethodGet, "http://example.test:8001/soap?wsdl", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `name="say_hello"`)
	assert.Contains(t, body, `location="http://example.test:8001/soap"`)
	assert.NoError(t, xml.Unmarshal(rec.Body.Bytes(), new(struct{})))
}

func TestWSDL_EscapesLocation(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/soap?wsdl", nil)
	req.Host = `a&b"c`
	req.SetBasicAuth("user", "password")
	rec := httptest.NewRecorder()
	newRouter(soap.HelloService{}, &staticVerifier{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `location="http://a&amp;b&#34;c/soap"`)

	dec := xml.NewDecoder(bytes.NewReader(rec.Body.Bytes()))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}
}

func TestWSDL_RequiresAuth(t *testing.T) {
	rec, _ := call(t, newRouter(soap.HelloService{}, &staticVerifier{}), http.MethodGet, "/soap?wsdl", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), "wsdl:definitions")
}

func TestGetWithoutWSDLQuery(t *testing.T) {
	rec, _ := call(t, newRouter(soap.HelloService{}, &staticVerifier{}), http.MethodGet, "/soap", "", true)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "POST", rec.Header().Get("Allow"))
}

func TestUnknownPath(t *testing.T) {
	rec, env := call(t, newRouter(soap.HelloService{}, &staticVerifier{}), http.MethodPost, "/other", helloCall("Ann"), true)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Body.Fault)
}

func TestDecodeCall(t *testing.T) {
	c, err := soap.DecodeCall(strings.NewReader(helloCall("Ann")))
	require.NoError(t, err)
	assert.Equal(t, "say_hello", c.Operation)
	assert.Equal(t, map[string]string{"name": "Ann"}, c.Params)
}

func TestFaultError(t *testing.T) {
	f := &soap.Fault{Code: soap.FaultClient, String: "bad"}
	assert.Equal(t, "soap:Client: bad", f.Error())
}
