package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kinetiq/gaitway/internal/smoke"
)

// Default configuration constants.
const (
	defaultDays       = 5
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:8090", "Base URL of the gateway")
		email    = flag.String("email", "", "Account email (default: a fresh throwaway address)")
		password = flag.String("password", "smoke-secret-1", "Account password")
		fullName = flag.String("name", "Smoke Test Patient", "Account full name")
		days     = flag.Int("days", defaultDays, "Number of daily metric submissions")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose  = flag.Bool("verbose", false, "Enable verbose output")
	)
	flag.Parse()

	if *email == "" {
		*email = fmt.Sprintf("smoke-%d@example.com", time.Now().Unix())
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &smoke.Config{
		BaseURL:  *baseURL,
		Email:    *email,
		Password: *password,
		FullName: *fullName,
		Days:     *days,
		Timeout:  *timeout,
		Verbose:  *verbose,
	}

	if err := smoke.Run(ctx, config); err != nil {
		os.Stderr.WriteString("smoke run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
