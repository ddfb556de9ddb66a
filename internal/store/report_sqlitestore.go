package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
)

type ReportSQLiteStore struct {
	rdb, rwdb *sql.DB
}

func NewReportSQLiteStore(rdb, rwdb *sql.DB) *ReportSQLiteStore {
	return &ReportSQLiteStore{rdb, rwdb}
}

func (store *ReportSQLiteStore) CreateReport(
	ctx context.Context,
	runUUID, jobName, applianceVersion string,
) (*Report, error) {
	r := &Report{
		RunUUID:          runUUID,
		JobName:          jobName,
		ApplianceVersion: applianceVersion,
		Status:           StatusRunning,
	}
	query := `insert into reports (
		run_uuid,
		job_name,
		appliance_version,
		status
	)
	values ($1, $2, $3, $4)
	returning report_id, created_on`
	if err := sqlscan.Get(
		ctx, store.rwdb, r, query,
		r.RunUUID,
		r.JobName,
		r.ApplianceVersion,
		r.Status,
	); err != nil {
		return nil, err
	}
	return r, nil
}

func (store *ReportSQLiteStore) UpdateReportBuilds(
	ctx context.Context,
	id int64,
	builds string,
) error {
	query := `update reports
	set builds = $1
	where report_id = $2`
	_, err := store.rwdb.ExecContext(ctx, query, builds, id)
	return err
}

func (store *ReportSQLiteStore) UpdateReportEnded(
	ctx context.Context,
	id int64,
	status ReportStatus,
	coveragePct, errorMessage *string,
	endedOn *time.Time,
) error {
	query := `update reports
	set status = $1,
		coverage_pct = $2,
		error = $3,
		ended_on = $4
	where report_id = $5`
	_, err := store.rwdb.ExecContext(
		ctx, query,
		status,
		coveragePct,
		errorMessage,
		endedOn,
		id,
	)
	return err
}

func (store *ReportSQLiteStore) ReadReportByID(
	ctx context.Context,
	id int64,
) (*Report, error) {
	r := new(Report)
	query := "select * from reports where report_id = $1"
	if err := sqlscan.Get(ctx, store.rdb, r, query, id); err != nil {
		return nil, err
	}
	return r, nil
}

func (store *ReportSQLiteStore) ListLatestReports(
	ctx context.Context,
	limit int64,
) ([]*Report, error) {
	query := `select * from reports
	order by report_id desc
	limit $1`
	reports := make([]*Report, 0)
	err := sqlscan.Select(ctx, store.rdb, &reports, query, limit)
	return reports, err
}
