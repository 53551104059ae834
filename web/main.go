package main

import (
	"flag"
	"log"
	"os"

	"github.com/byrdie/optika/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	flag.Parse()

	// Create and start web server
	webServer := server.NewServer(*port)

	log.Printf("Sequential Ray Tracer Web Server")
	log.Printf("API available at http://localhost:%d/api/trace", *port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
