// Command issuetoken mints bearer tokens for the campsites API write endpoints.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/octobees/campsites/api/internal/auth"
	"github.com/octobees/campsites/api/internal/logger"
)

func main() {
	subject := flag.String("subject", "", "token subject, usually the operator or client name")
	scopes := flag.String("scope", auth.ScopeWrite, "comma separated scopes to grant")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	log := logger.Build(logger.Config{Service: "issuetoken"}, os.Stderr)

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	var granted []string
	for _, s := range strings.Split(*scopes, ",") {
		if s = strings.TrimSpace(s); s != "" {
			granted = append(granted, s)
		}
	}

	token, err := auth.NewJWTManager(secret, *ttl).GenerateToken(*subject, granted...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to issue token")
	}
	fmt.Println(token)
}
