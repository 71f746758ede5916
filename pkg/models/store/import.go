package store

import "time"

type ImportRun struct {
	ID         string
	Source     string
	File       string
	Read       int
	Accepted   int
	Dropped    int
	Replaced   int64
	ImportedAt time.Time
}
