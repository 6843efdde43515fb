package model

import "time"

// CaptureJob asks a worker to run one capture cycle.
type CaptureJob struct {
	ID        string
	Season    int
	Requested time.Time
}
