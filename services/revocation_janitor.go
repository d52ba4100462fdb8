package services

import (
	"github.com/robfig/cron/v3"
	"github.com/yeremiapane/clipper-lms/utils"
)

// Purger is a revocation store that has to drop expired entries itself.
type Purger interface {
	Purge() int
}

// RevocationJanitor periodically purges expired token revocations.
type RevocationJanitor struct {
	store Purger
	cron  *cron.Cron
}

// NewRevocationJanitor schedules the purge with a cron schedule such as "@every 1h".
func NewRevocationJanitor(store Purger, schedule string) (*RevocationJanitor, error) {
	j := &RevocationJanitor{store: store, cron: cron.New()}
	if _, err := j.cron.AddFunc(schedule, j.RunOnce); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *RevocationJanitor) Start() {
	j.cron.Start()
	utils.InfoLogger.Println("Revocation janitor started")
}

// Stop waits for a running purge to finish.
func (j *RevocationJanitor) Stop() {
	<-j.cron.Stop().Done()
}

func (j *RevocationJanitor) RunOnce() {
	if n := j.store.Purge(); n > 0 {
		utils.InfoLogger.Printf("Purged %d expired token revocations", n)
	}
}
