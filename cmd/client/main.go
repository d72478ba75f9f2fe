package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/atinyakov/itemgate/internal/client"
)

var (
	version   string
	buildDate string
)

// main parses command-line flags and starts the interactive shell.
func main() {
	var (
		restURL  string
		soapURL  string
		caFile   string
		username string
		password string
		showVer  bool
	)

	flag.StringVar(&restURL, "rest", "http://localhost:5000", "REST listener base URL")
	flag.StringVar(&soapURL, "soap", "http://localhost:8001/soap", "SOAP endpoint URL")
	flag.StringVar(&caFile, "ca", "", "path to CA cert for HTTPS listeners")
	flag.StringVar(&username, "user", "admin", "username for Basic authentication")
	flag.StringVar(&password, "password", os.Getenv("ITEMGATE_PASSWORD"), "password for Basic authentication")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("ItemGate Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	httpClient, err := client.NewHTTPClient(caFile, 10*time.Second)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sh := &client.Shell{
		Client: &client.Client{
			RESTURL:  restURL,
			SOAPURL:  soapURL,
			Username: username,
			Password: password,
			HTTP:     httpClient,
		},
		In:     os.Stdin,
		Out:    os.Stdout,
		Prompt: "itemgate> ",
	}
	if err := sh.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}
}
