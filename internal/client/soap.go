package client

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Fault is a SOAP fault returned by the server.
type Fault struct {
	// StatusCode is the HTTP status that carried the fault.
	StatusCode int
	Code       string
	Message    string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("soap fault %s (%d): %s", f.Code, f.StatusCode, f.Message)
}

type helloRequest struct {
	XMLName xml.Name `xml:"soapenv:Envelope"`
	SoapNS  string   `xml:"xmlns:soapenv,attr"`
	TNS     string   `xml:"xmlns:tns,attr"`
	Name    string   `xml:"soapenv:Body>tns:say_hello>tns:name"`
}

type helloResponse struct {
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

// SayHello invokes the say_hello procedure.
func (c *Client) SayHello(ctx context.Context, name string) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	err := xml.NewEncoder(&buf).Encode(helloRequest{
		SoapNS: "http://schemas.xmlsoap.org/soap/envelope/",
		TNS:    "spyne.examples.hello",
		Name:   name,
	})
	if err != nil {
		return "", fmt.Errorf("encode envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.SOAPURL, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", `"say_hello"`)
	req.SetBasicAuth(c.Username, c.Password)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("say_hello failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	var env helloResponse
	if err := xml.Unmarshal(data, &env); err != nil {
		return "", &Fault{StatusCode: resp.StatusCode, Code: "client", Message: string(bytes.TrimSpace(data))}
	}
	if f := env.Body.Fault; f != nil {
		return "", &Fault{StatusCode: resp.StatusCode, Code: f.Code, Message: f.String}
	}
	if env.Body.Hello == nil {
		return "", errors.New("response has no say_helloResponse")
	}
	return env.Body.Hello.Result, nil
}
