// Runs the in-memory mock backend for local development. Sign in with
// manager@harborview.test / manager123 or staff@harborview.test / staff123.
package main

import (
	"encoding/base64"
	"flag"
	"log"
)

func main() {
	addr := flag.String("addr", ":8090", "listen address")
	secret := flag.String("secret", base64.StdEncoding.EncodeToString([]byte("local-development-secret")), "base64 signing secret")
	flag.Parse()

	srv, err := newSeededServer(*secret)
	if err != nil {
		log.Fatalf("failed to start mock backend: %v", err)
	}

	log.Printf("mock backend listening on %s", *addr)
	if err := srv.Router().Run(*addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
