package assistant

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carewatch/carewatch/internal/domain/patient"
)

// Reconciler sweeps the patient collection and hands an auto-generated
// assistant id to every patient without one.
type Reconciler struct {
	patients patient.Repository
	logs     Repository
	logger   zerolog.Logger
	newID    func() string
}

func NewReconciler(patients patient.Repository, logs Repository, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		patients: patients,
		logs:     logs,
		logger:   logger,
		newID:    func() string { return IDPrefix + uuid.New().String() },
	}
}

// RunCycle assigns ids to all currently unassigned patients and returns
// how many succeeded. A failure on one patient is logged and the sweep
// continues.
func (r *Reconciler) RunCycle(ctx context.Context) int {
	unassigned, err := r.patients.ListUnassigned(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("id reconciler: listing unassigned patients failed")
		return 0
	}
	if len(unassigned) == 0 {
		return 0
	}

	assigned := 0
	now := time.Now().UTC()
	for _, p := range unassigned {
		id := r.newID()
		if err := r.patients.AssignAssistantID(ctx, p.ID, id, now); err != nil {
			r.logger.Error().Err(err).Str("patient_id", p.ID.Hex()).Msg("id reconciler: assignment failed")
			continue
		}
		if err := r.logs.Insert(ctx, &AssignmentLog{PatientID: p.ID.Hex(), AssistantUserID: id, CreatedAt: now}); err != nil {
			r.logger.Error().Err(err).Str("patient_id", p.ID.Hex()).Msg("id reconciler: audit log write failed")
		}
		r.logger.Info().Str("patient_id", p.ID.Hex()).Str("assistant_user_id", id).Msg("assigned assistant id")
		assigned++
	}
	return assigned
}

// Start runs one immediate sweep, then schedules recurring sweeps. The
// returned scheduler is already running; stop it to halt the sweeps.
func (r *Reconciler) Start(ctx context.Context, intervalSec int) *gocron.Scheduler {
	r.RunCycle(ctx)

	s := gocron.NewScheduler(time.UTC)
	if _, err := s.Every(intervalSec).Seconds().Do(func() {
		r.RunCycle(ctx)
	}); err != nil {
		r.logger.Error().Err(err).Msg("id reconciler: scheduling failed")
		return s
	}
	s.StartAsync()
	r.logger.Info().Int("interval_seconds", intervalSec).Msg("assistant id reconciler started")
	return s
}
