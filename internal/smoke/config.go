package smoke

import "time"

// Config controls a smoke run against a live gateway.
type Config struct {
	BaseURL  string
	Email    string
	Password string
	FullName string
	Days     int
	Timeout  time.Duration
	Verbose  bool
}

// Stats accumulates results of a smoke run.
type Stats struct {
	Registered   bool
	Submitted    int
	SubmitErrors int
	Started      time.Time
	Finished     time.Time
}
