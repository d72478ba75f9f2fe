package soap

import (
	"encoding/xml"
	"io"
	"strings"
	"text/template"
)

var wsdlTemplate = template.Must(template.New("wsdl").Parse(`<?xml version="1.0" encoding="UTF-8"?>
<wsdl:definitions name="HelloWorldService"
    targetNamespace="{{.TargetNS}}"
    xmlns:tns="{{.TargetNS}}"
    xmlns:xs="http://www.w3.org/2001/XMLSchema"
    xmlns:soap="http://schemas.xmlsoap.org/wsdl/soap/"
    xmlns:wsdl="http://schemas.xmlsoap.org/wsdl/">
  <wsdl:types>
    <xs:schema targetNamespace="{{.TargetNS}}" elementFormDefault="qualified">
      <xs:element name="say_hello">
        <xs:complexType>
          <xs:sequence>
            <xs:element name="name" type="xs:string" minOccurs="0" nillable="true"/>
          </xs:sequence>
        </xs:complexType>
      </xs:element>
      <xs:element name="say_helloResponse">
        <xs:complexType>
          <xs:sequence>
            <xs:element name="say_helloResult" type="xs:string" minOccurs="0" nillable="true"/>
          </xs:sequence>
        </xs:complexType>
      </xs:element>
    </xs:schema>
  </wsdl:types>
  <wsdl:message name="say_hello">
    <wsdl:part name="say_hello" element="tns:say_hello"/>
  </wsdl:message>
  <wsdl:message name="say_helloResponse">
    <wsdl:part name="say_helloResponse" element="tns:say_helloResponse"/>
  </wsdl:message>
  <wsdl:portType name="HelloWorldService">
    <wsdl:operation name="say_hello">
      <wsdl:input name="say_hello" message="tns:say_hello"/>
      <wsdl:output name="say_helloResponse" message="tns:say_helloResponse"/>
    </wsdl:operation>
  </wsdl:portType>
  <wsdl:binding name="HelloWorldService" type="tns:HelloWorldService">
    <soap:binding style="document" transport="http://schemas.xmlsoap.org/soap/http"/>
    <wsdl:operation name="say_hello">
      <soap:operation soapAction="say_hello" style="document"/>
      <wsdl:input name="say_hello"><soap:body use="literal"/></wsdl:input>
      <wsdl:output name="say_helloResponse"><soap:body use="literal"/></wsdl:output>
    </wsdl:operation>
  </wsdl:binding>
  <wsdl:service name="HelloWorldService">
    <wsdl:port name="HelloWorldService" binding="tns:HelloWorldService">
      <soap:address location="{{.Location}}"/>
    </wsdl:port>
  </wsdl:service>
</wsdl:definitions>
`))

// WriteWSDL renders the WSDL 1.1 contract of the service with location as
// the endpoint address. location is XML-escaped; it usually carries the
// client-supplied Host header.
func WriteWSDL(w io.Writer, location string) error {
	var escaped strings.Builder
	if err := xml.EscapeText(&escaped, []byte(location)); err != nil {
		return err
	}
	return wsdlTemplate.Execute(w, struct {
		TargetNS string
		Location string
	}{TargetNS: TargetNS, Location: escaped.String()})
}
