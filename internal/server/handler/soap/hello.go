package soap

import (
	"context"
	"encoding/xml"
	"fmt"
)

// Greeter produces the greeting returned by say_hello.
type Greeter interface {
	SayHello(ctx context.Context, name string) (string, error)
}

// HelloService is the stateless say_hello implementation.
type HelloService struct{}

// SayHello returns a greeting that contains name verbatim.
func (HelloService) SayHello(_ context.Context, name string) (string, error) {
	return fmt.Sprintf("Hello, %s! From user authenticated via SOAP.", name), nil
}

type sayHelloResponse struct {
	XMLName xml.Name `xml:"tns:say_helloResponse"`
	Result  string   `xml:"tns:say_helloResult"`
}

func sayHello(g Greeter) operation {
	return func(ctx context.Context, call Call) (any, error) {
		name, ok := call.Params["name"]
		if !ok {
			return nil, &Fault{Code: FaultClient, String: "missing parameter: name"}
		}
		greeting, err := g.SayHello(ctx, name)
		if err != nil {
			return nil, err
		}
		return sayHelloResponse{Result: greeting}, nil
	}
}
