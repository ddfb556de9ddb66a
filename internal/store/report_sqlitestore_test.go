package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	_ "modernc.org/sqlite"
)

type reportSQLiteStoreSuite struct {
	reportStore *ReportSQLiteStore
	db          *sql.DB
	suite.Suite
}

func TestReportSQLiteStore(t *testing.T) {
	suite.Run(t, new(reportSQLiteStoreSuite))
}

func (suite *reportSQLiteStoreSuite) SetupSuite() {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		log.Fatal(err)
	}
	suite.db = db
	_, err = db.Exec("PRAGMA foreign_keys = ON;")
	if err != nil {
		log.Fatal(err)
	}

	if err := RunMigrations(db); err != nil {
		log.Fatal(err)
	}

	suite.reportStore = NewReportSQLiteStore(db, db)
}

func (suite *reportSQLiteStoreSuite) TearDownSuite() {
	_ = suite.db.Close()
}

func (suite *reportSQLiteStoreSuite) TestReportSQLiteStore_CreateReport() {
	suite.Run("success - report created as running", func() {
		// arrange
		runUUID := fmt.Sprintf("uuid-%d", time.Now().UTC().UnixNano())

		// act
		r, err := suite.reportStore.CreateReport(
			context.Background(), runUUID, "downstream-59z-tests", "5.9.0.21",
		)

		// assert
		suite.NoError(err)
		suite.NotNil(r)
		suite.NotEqual(0, r.ReportID)
		suite.Equal(runUUID, r.RunUUID)
		suite.Equal(StatusRunning, r.Status)
		suite.False(r.CreatedOn.IsZero())
	})
}

func (suite *reportSQLiteStoreSuite) TestReportSQLiteStore_ReadReportByID() {
	suite.Run("success - report found", func() {
		// arrange
		expectedReport := suite.createReport()

		// act
		r, err := suite.reportStore.ReadReportByID(
			context.Background(), expectedReport.ReportID,
		)

		// assert
		suite.NoError(err)
		suite.NotNil(r)
		suite.Equal(expectedReport.RunUUID, r.RunUUID)
		suite.Equal(expectedReport.JobName, r.JobName)
		suite.Equal(expectedReport.ApplianceVersion, r.ApplianceVersion)
		suite.Nil(r.Builds)
		suite.Nil(r.EndedOn)
	})
	suite.Run("failure - report not found", func() {
		// arrange
		var id int64 = 43241

		// act
		r, err := suite.reportStore.ReadReportByID(context.Background(), id)

		// assert
		suite.Error(err)
		suite.True(errors.Is(err, sql.ErrNoRows))
		suite.Nil(r)
	})
}

func (suite *reportSQLiteStoreSuite) TestReportSQLiteStore_UpdateReportBuilds() {
	suite.Run("success - build numbers recorded", func() {
		// arrange
		report := suite.createReport()

		// act
		updateErr := suite.reportStore.UpdateReportBuilds(
			context.Background(), report.ReportID, "10,11,12",
		)
		r, readErr := suite.reportStore.ReadReportByID(
			context.Background(), report.ReportID,
		)

		// assert
		suite.NoError(updateErr)
		suite.NoError(readErr)
		suite.NotNil(r.Builds)
		suite.Equal("10,11,12", *r.Builds)
	})
}

func (suite *reportSQLiteStoreSuite) TestReportSQLiteStore_UpdateReportEnded() {
	suite.Run("success - passed run with coverage", func() {
		// arrange
		report := suite.createReport()
		coveragePct := "45.69%"
		endedOn := time.Now().UTC()

		// act
		updateErr := suite.reportStore.UpdateReportEnded(
			context.Background(), report.ReportID, StatusPassed, &coveragePct, nil, &endedOn,
		)
		r, readErr := suite.reportStore.ReadReportByID(
			context.Background(), report.ReportID,
		)

		// assert
		suite.NoError(updateErr)
		suite.NoError(readErr)
		suite.Equal(StatusPassed, r.Status)
		suite.NotNil(r.CoveragePct)
		suite.Equal(coveragePct, *r.CoveragePct)
		suite.Nil(r.Error)
		suite.NotNil(r.EndedOn)
	})
	suite.Run("success - failed run with error message", func() {
		// arrange
		report := suite.createReport()
		errorMessage := "could not find any coverage reports for 5.9.0.21 in downstream-59z-tests"
		endedOn := time.Now().UTC()

		// act
		updateErr := suite.reportStore.UpdateReportEnded(
			context.Background(), report.ReportID, StatusFailed, nil, &errorMessage, &endedOn,
		)
		r, readErr := suite.reportStore.ReadReportByID(
			context.Background(), report.ReportID,
		)

		// assert
		suite.NoError(updateErr)
		suite.NoError(readErr)
		suite.Equal(StatusFailed, r.Status)
		suite.Nil(r.CoveragePct)
		suite.NotNil(r.Error)
		suite.Equal(errorMessage, *r.Error)
	})
}

func (suite *reportSQLiteStoreSuite) TestReportSQLiteStore_ListLatestReports() {
	suite.Run("success - newest first, limited", func() {
		// arrange
		older := suite.createReport()
		newer := suite.createReport()

		// act
		reports, err := suite.reportStore.ListLatestReports(context.Background(), 1)

		// assert
		suite.NoError(err)
		suite.Len(reports, 1)
		suite.Equal(newer.ReportID, reports[0].ReportID)
		suite.Greater(newer.ReportID, older.ReportID)
	})
}

func (suite *reportSQLiteStoreSuite) createReport() *Report {
	r, err := suite.reportStore.CreateReport(
		context.Background(),
		fmt.Sprintf("uuid-%d", time.Now().UTC().UnixNano()),
		"downstream-59z-tests",
		"5.9.0.21",
	)
	suite.NoError(err)
	return r
}
