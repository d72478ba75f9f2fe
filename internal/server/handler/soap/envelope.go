// Package soap implements the SOAP 1.1 listener: envelope decoding,
// operation dispatch, faults and the WSDL contract.
package soap

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// Namespaces used on the wire.
const (
	EnvelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"
	TargetNS   = "spyne.examples.hello"
)

// Fault codes defined by SOAP 1.1.
const (
	FaultClient = "soap:Client"
	FaultServer = "soap:Server"
)

// ContentType is the media type of every SOAP 1.1 message.
const ContentType = "text/xml; charset=utf-8"

var errMalformedEnvelope = errors.New("malformed SOAP envelope")

// Call is a decoded operation invocation: the first element of the SOAP
// body and its simple-typed parameters.
type Call struct {
	// Operation is the local name of the body element.
	Operation string
	// Params maps parameter local names to their text content.
	Params map[string]string
}

type requestEnvelope struct {
	XMLName xml.Name    `xml:"http://schemas.xmlsoap.org/soap/envelope/ Envelope"`
	Body    requestBody `xml:"http://schemas.xmlsoap.org/soap/envelope/ Body"`
}

type requestBody struct {
	Call *callElement `xml:",any"`
}

type callElement struct {
	XMLName xml.Name
	Params  []paramElement `xml:",any"`
}

type paramElement struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// DecodeCall reads a SOAP 1.1 request envelope from r.
func DecodeCall(r io.Reader) (Call, error) {
	var env requestEnvelope
	if err := xml.NewDecoder(r).Decode(&env); err != nil {
		return Call{}, fmt.Errorf("%w: %v", errMalformedEnvelope, err)
	}
	if env.Body.Call == nil {
		return Call{}, fmt.Errorf("%w: empty body", errMalformedEnvelope)
	}
	call := Call{
		Operation: env.Body.Call.XMLName.Local,
		Params:    make(map[string]string, len(env.Body.Call.Params)),
	}
	for _, p := range env.Body.Call.Params {
		call.Params[p.XMLName.Local] = p.Value
	}
	return call, nil
}

// responseEnvelope is written with fixed prefixes so the output matches what
// common SOAP toolkits produce.
type responseEnvelope struct {
	XMLName  xml.Name `xml:"soap:Envelope"`
	SoapNS   string   `xml:"xmlns:soap,attr"`
	TargetNS string   `xml:"xmlns:tns,attr"`
	Body     struct {
		Content any
	} `xml:"soap:Body"`
}

// Fault is a SOAP 1.1 fault.
type Fault struct {
	XMLName xml.Name `xml:"soap:Fault"`
	Code    string   `xml:"faultcode"`
	String  string   `xml:"faultstring"`
	Actor   string   `xml:"faultactor,omitempty"`
}

func (f *Fault) Error() string {
	return f.Code + ": " + f.String
}

// EncodeEnvelope writes content wrapped in a SOAP 1.1 envelope to w.
func EncodeEnvelope(w io.Writer, content any) error {
	env := responseEnvelope{SoapNS: EnvelopeNS, TargetNS: TargetNS}
	env.Body.Content = content
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(env)
}
