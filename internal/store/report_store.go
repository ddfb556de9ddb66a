package store

import (
	"context"
	"time"
)

type ReportStatus string

const (
	StatusRunning ReportStatus = "running"
	StatusFailed  ReportStatus = "failed"
	StatusPassed  ReportStatus = "passed"
)

// Report is one recorded coverage collection run.
type Report struct {
	ReportID         int64
	RunUUID          string
	JobName          string
	ApplianceVersion string
	// Comma-separated eligible build numbers
	Builds      *string
	CoveragePct *string
	Status      ReportStatus
	Error       *string
	CreatedOn   time.Time
	EndedOn     *time.Time
}

type ReportStore interface {
	CreateReport(ctx context.Context, runUUID, jobName, applianceVersion string) (*Report, error)
	UpdateReportBuilds(ctx context.Context, id int64, builds string) error
	UpdateReportEnded(
		ctx context.Context,
		id int64,
		status ReportStatus,
		coveragePct, errorMessage *string,
		endedOn *time.Time,
	) error
	ReadReportByID(ctx context.Context, id int64) (*Report, error)
	ListLatestReports(ctx context.Context, limit int64) ([]*Report, error)
}
