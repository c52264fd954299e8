package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nickyhof/GateDB"
	"github.com/nickyhof/GateDB/core"
	"github.com/nickyhof/GateDB/ps"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	port := flag.Int("port", 3306, "TCP port to listen on")
	configPath := flag.String("config", "gatedb.json", "Connection config (path, file://, http(s):// or s3://)")
	zone := flag.String("zone", "default", "Zone new sessions connect to")
	tlsCert := flag.String("tlsCert", "", "TLS certificate file (enables TLS with -tlsKey)")
	tlsKey := flag.String("tlsKey", "", "TLS key file")
	jwtSecret := flag.String("jwtSecret", "", "Shared secret for JWT authentication (enables AUTH)")
	jwtIssuer := flag.String("jwtIssuer", "", "Expected JWT issuer")
	jwtAudience := flag.String("jwtAudience", "", "Expected JWT audience")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("GateDB SQL Gateway v%s\n", Version)
		return
	}

	config, err := ps.LoadConfig(context.Background(), *configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if _, ok := config.Zone(*zone); !ok {
		log.Fatalf("Zone %q not found in %s", *zone, *configPath)
	}
	log.Printf("Loaded config %s (zones: %d)", *configPath, len(config.Connections))

	instance := GateDB.Open(config)
	identity := core.Identity{
		Name:  "GateDB Gateway",
		Email: "gateway@gatedb.local",
	}

	var server *Server
	if *jwtSecret != "" {
		server = NewServerWithAuth(instance, identity, *zone, &AuthConfig{
			Enabled:   true,
			JWTSecret: *jwtSecret,
			Issuer:    *jwtIssuer,
			Audience:  *jwtAudience,
		})
		log.Println("JWT authentication enabled")
	} else {
		server = NewServer(instance, identity, *zone)
	}

	addr := fmt.Sprintf(":%d", *port)
	if *tlsCert != "" && *tlsKey != "" {
		err = server.StartTLS(addr, *tlsCert, *tlsKey)
	} else {
		err = server.Start(addr)
	}
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Printf("║   GateDB SQL Gateway v%-15s  ║\n", Version)
	fmt.Println("║   Shape-checked SQL over TCP          ║")
	fmt.Println("╚═══════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("Listening on port %d, zone %s\n", *port, *zone)
	fmt.Println("Send SQL (one statement per line), 'quit' to disconnect")
	fmt.Println()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	server.Stop()
	log.Println("Server stopped")
}
