package scheduler

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	testingpkg "github.com/aristath/stockboard/internal/testing"
)

func TestCheckDatabaseJob_Name(t *testing.T) {
	job := &CheckDatabaseJob{
		log: zerolog.Nop(),
	}
	assert.Equal(t, "check_database", job.Name())
}

func TestCheckDatabaseJob_Run_NoDatabase(t *testing.T) {
	job := NewCheckDatabaseJob(nil)
	job.SetLogger(zerolog.Nop())

	assert.NoError(t, job.Run()) // Should handle a nil database gracefully
}

func TestCheckDatabaseJob_Run(t *testing.T) {
	db := testingpkg.NewTestDB(t, "state")

	job := NewCheckDatabaseJob(db)
	assert.NoError(t, job.Run())
}

func TestCheckWALCheckpointsJob_Run(t *testing.T) {
	db := testingpkg.NewTestDB(t, "state")

	job := NewCheckWALCheckpointsJob(db)
	job.SetLogger(zerolog.Nop())
	assert.Equal(t, "check_wal_checkpoints", job.Name())
	assert.NoError(t, job.Run())

	assert.NoError(t, NewCheckWALCheckpointsJob(nil).Run())
}
