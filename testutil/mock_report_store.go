package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/cfme-qe/coverage-reporter/internal/store"
)

type MockReportStore struct {
	mock.Mock
}

func (m *MockReportStore) CreateReport(
	ctx context.Context,
	runUUID, jobName, applianceVersion string,
) (*store.Report, error) {
	args := m.Called(ctx, runUUID, jobName, applianceVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Report), args.Error(1)
}

func (m *MockReportStore) UpdateReportBuilds(
	ctx context.Context,
	id int64,
	builds string,
) error {
	args := m.Called(ctx, id, builds)
	return args.Error(0)
}

func (m *MockReportStore) UpdateReportEnded(
	ctx context.Context,
	id int64,
	status store.ReportStatus,
	coveragePct, errorMessage *string,
	endedOn *time.Time,
) error {
	args := m.Called(ctx, id, status, coveragePct, errorMessage, endedOn)
	return args.Error(0)
}

func (m *MockReportStore) ReadReportByID(
	ctx context.Context,
	id int64,
) (*store.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Report), args.Error(1)
}

func (m *MockReportStore) ListLatestReports(
	ctx context.Context,
	limit int64,
) ([]*store.Report, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*store.Report), args.Error(1)
}
