package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"needletrack/internal/domain"
	"needletrack/internal/editor"
	"needletrack/internal/lifecycle"
	"needletrack/internal/store"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fixedClock() time.Time {
	return time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)
}

func newTestStore(t *testing.T) (*Store, *store.MemoryAdapter) {
	t.Helper()
	adapter := store.NewMemoryAdapter()
	s := New(adapter, zap.NewNop(), WithClock(fixedClock))
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	t.Cleanup(func() {
		s.Close()
		cancel()
	})
	return s, adapter
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func testPatient(record, name, bed string, team int) domain.Patient {
	return domain.Patient{
		MedicalRecordNumber: record,
		Name:                name,
		Gender:              domain.GenderFemale,
		BedNumber:           bed,
		Team:                team,
	}
}

func TestStore_LoadingClearsOnFirstSnapshot(t *testing.T) {
	s, _ := newTestStore(t)
	waitFor(t, func() bool { return !s.Loading() })
	require.Empty(t, s.Patients())
	require.Equal(t, domain.DefaultAcupointCount, s.Settings().AcupointCount)
}

func TestStore_AddPatient_AppearsInSnapshot(t *testing.T) {
	s, _ := newTestStore(t)
	waitFor(t, func() bool { return !s.Loading() })

	id, err := s.AddPatient(context.Background(), testPatient("12345678", "王小明", "3-1", 1))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	waitFor(t, func() bool { return len(s.Patients()) == 1 })
	p, ok := s.Patient(id)
	require.True(t, ok)
	require.Equal(t, "12345678", p.MedicalRecordNumber)
	require.Empty(t, p.Treatments)
}

func TestStore_AddPatient_RejectsDuplicateRecordNumber(t *testing.T) {
	s, _ := newTestStore(t)
	waitFor(t, func() bool { return !s.Loading() })

	_, err := s.AddPatient(context.Background(), testPatient("12345678", "王小明", "3-1", 1))
	require.NoError(t, err)
	waitFor(t, func() bool { return len(s.Patients()) == 1 })

	_, err = s.AddPatient(context.Background(), testPatient("12345678", "李小美", "5-2", 2))
	var dup *DuplicateRecordError
	require.True(t, errors.As(err, &dup))
	require.Equal(t, "12345678", dup.MedicalRecordNumber)
	require.Equal(t, "王小明", dup.Name)
	require.Equal(t, "3-1", dup.BedNumber)

	// 拒绝发生在任何写入之前
	require.Len(t, s.Patients(), 1)
}

func TestStore_AddPatient_RejectsInvalid(t *testing.T) {
	s, _ := newTestStore(t)
	waitFor(t, func() bool { return !s.Loading() })

	bad := testPatient("", "王小明", "3-1", 1)
	_, err := s.AddPatient(context.Background(), bad)
	require.Error(t, err)
}

func TestStore_UpdatePatient(t *testing.T) {
	s, _ := newTestStore(t)
	waitFor(t, func() bool { return !s.Loading() })

	id, err := s.AddPatient(context.Background(), testPatient("12345678", "王小明", "3-1", 1))
	require.NoError(t, err)
	waitFor(t, func() bool { return len(s.Patients()) == 1 })

	updated := testPatient("12345678", "王小明", "5-2", 3)
	updated.ID = id
	require.NoError(t, s.UpdatePatient(context.Background(), updated))

	waitFor(t, func() bool {
		p, ok := s.Patient(id)
		return ok && p.BedNumber == "5-2" && p.Team == 3
	})

	missing := testPatient("87654321", "李小美", "1-1", 1)
	missing.ID = "no-such-id"
	require.ErrorIs(t, s.UpdatePatient(context.Background(), missing), store.ErrPatientNotFound)
}

func TestStore_DeletePatient(t *testing.T) {
	s, _ := newTestStore(t)
	waitFor(t, func() bool { return !s.Loading() })

	id, err := s.AddPatient(context.Background(), testPatient("12345678", "王小明", "3-1", 1))
	require.NoError(t, err)
	waitFor(t, func() bool { return len(s.Patients()) == 1 })

	require.NoError(t, s.DeletePatient(context.Background(), id))
	waitFor(t, func() bool { return len(s.Patients()) == 0 })
}

// 完整走一遍纪录治疗到拔针的流程
func TestStore_TreatmentRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	waitFor(t, func() bool { return !s.Loading() })

	id, err := s.AddPatient(context.Background(), testPatient("12345678", "王小明", "3-1", 1))
	require.NoError(t, err)
	waitFor(t, func() bool { return len(s.Patients()) == 1 })

	e := editor.New(fixedClock)
	require.NoError(t, e.Increment(domain.BodyPartHead))
	require.NoError(t, e.Increment(domain.BodyPartHead))
	e.SetPhysician("1組醫師A")
	session, err := e.BuildSession([]string{"合谷"})
	require.NoError(t, err)

	require.NoError(t, s.AddTreatment(context.Background(), id, session))
	waitFor(t, func() bool {
		p, ok := s.Patient(id)
		return ok && len(p.Treatments) == 1
	})

	p, _ := s.Patient(id)
	current, ok := p.CurrentSession()
	require.True(t, ok)
	require.NotEmpty(t, current.ID)
	require.Equal(t, 2, current.TotalNeedles)
	require.Equal(t, "2026-01-15 09:30", current.StartTime)
	require.True(t, current.Open())

	require.NoError(t, s.CompleteRemoval(context.Background(), id, current.ID))
	waitFor(t, func() bool {
		p, ok := s.Patient(id)
		if !ok {
			return false
		}
		cs, ok := p.CurrentSession()
		return ok && !cs.Open()
	})

	p, _ = s.Patient(id)
	closed, _ := p.CurrentSession()
	require.Equal(t, "2026-01-15 09:30", closed.RemovalTime)

	// 再次拔针：拒绝且时间不变
	err = s.CompleteRemoval(context.Background(), id, closed.ID)
	require.ErrorIs(t, err, lifecycle.ErrAlreadyClosed)
	p, _ = s.Patient(id)
	final, _ := p.CurrentSession()
	require.Equal(t, "2026-01-15 09:30", final.RemovalTime)
}

func TestStore_AddTreatment_PrependsNewest(t *testing.T) {
	s, _ := newTestStore(t)
	waitFor(t, func() bool { return !s.Loading() })

	id, err := s.AddPatient(context.Background(), testPatient("12345678", "王小明", "3-1", 1))
	require.NoError(t, err)
	waitFor(t, func() bool { return len(s.Patients()) == 1 })

	counts := domain.NewNeedleCounts()
	counts[domain.BodyPartHead] = 1
	first := domain.TreatmentSession{
		StartTime:          "2026-01-14 08:00",
		NeedleCounts:       counts,
		TotalNeedles:       1,
		AttendingPhysician: "1組醫師A",
	}
	require.NoError(t, s.AddTreatment(context.Background(), id, first))
	waitFor(t, func() bool {
		p, _ := s.Patient(id)
		return len(p.Treatments) == 1
	})

	second := first
	second.StartTime = "2026-01-15 08:00"
	require.NoError(t, s.AddTreatment(context.Background(), id, second))
	waitFor(t, func() bool {
		p, _ := s.Patient(id)
		return len(p.Treatments) == 2
	})

	p, _ := s.Patient(id)
	require.Equal(t, "2026-01-15 08:00", p.Treatments[0].StartTime)
	require.Equal(t, "2026-01-14 08:00", p.Treatments[1].StartTime)
}

func TestStore_AddTreatment_RejectsDraftViolations(t *testing.T) {
	s, _ := newTestStore(t)
	waitFor(t, func() bool { return !s.Loading() })

	id, err := s.AddPatient(context.Background(), testPatient("12345678", "王小明", "3-1", 1))
	require.NoError(t, err)
	waitFor(t, func() bool { return len(s.Patients()) == 1 })

	zero := domain.TreatmentSession{
		NeedleCounts:       domain.NewNeedleCounts(),
		AttendingPhysician: "1組醫師A",
	}
	require.ErrorIs(t, s.AddTreatment(context.Background(), id, zero), lifecycle.ErrNoNeedles)

	counts := domain.NewNeedleCounts()
	counts[domain.BodyPartHead] = 1
	noPhysician := domain.TreatmentSession{NeedleCounts: counts, TotalNeedles: 1}
	require.ErrorIs(t, s.AddTreatment(context.Background(), id, noPhysician), lifecycle.ErrNoPhysician)
}

func TestStore_UpdateTreatment(t *testing.T) {
	s, _ := newTestStore(t)
	waitFor(t, func() bool { return !s.Loading() })

	id, err := s.AddPatient(context.Background(), testPatient("12345678", "王小明", "3-1", 1))
	require.NoError(t, err)
	waitFor(t, func() bool { return len(s.Patients()) == 1 })

	counts := domain.NewNeedleCounts()
	counts[domain.BodyPartHead] = 1
	session := domain.TreatmentSession{
		StartTime:          "2026-01-15 08:00",
		NeedleCounts:       counts,
		TotalNeedles:       1,
		AttendingPhysician: "1組醫師A",
	}
	require.NoError(t, s.AddTreatment(context.Background(), id, session))
	waitFor(t, func() bool {
		p, _ := s.Patient(id)
		return len(p.Treatments) == 1
	})

	p, _ := s.Patient(id)
	stored := p.Treatments[0]
	stored.NeedleCounts[domain.BodyPartTorso] = 3
	stored.TotalNeedles = 4
	require.NoError(t, s.UpdateTreatment(context.Background(), id, stored))

	waitFor(t, func() bool {
		p, _ := s.Patient(id)
		cs, ok := p.CurrentSession()
		return ok && cs.TotalNeedles == 4
	})

	ghost := stored
	ghost.ID = "no-such-session"
	require.ErrorIs(t, s.UpdateTreatment(context.Background(), id, ghost), ErrSessionNotFound)
}

func TestStore_CompleteRemoval_UnknownSession(t *testing.T) {
	s, _ := newTestStore(t)
	waitFor(t, func() bool { return !s.Loading() })

	id, err := s.AddPatient(context.Background(), testPatient("12345678", "王小明", "3-1", 1))
	require.NoError(t, err)
	waitFor(t, func() bool { return len(s.Patients()) == 1 })

	require.ErrorIs(t, s.CompleteRemoval(context.Background(), id, "no-such-session"), ErrSessionNotFound)
	require.ErrorIs(t, s.CompleteRemoval(context.Background(), "no-such-patient", "x"), store.ErrPatientNotFound)
}

func TestStore_UpdateSettings(t *testing.T) {
	s, _ := newTestStore(t)
	waitFor(t, func() bool { return !s.Loading() })

	settings := s.Settings()
	settings.AcupointNames[1] = "合谷"
	settings.Physicians[1] = []string{"張醫師", "林醫師", "陳醫師"}
	require.NoError(t, s.UpdateSettings(context.Background(), settings))

	waitFor(t, func() bool {
		return s.Settings().AcupointNames[1] == "合谷"
	})
	got, err := s.Settings().PhysiciansForTeam(1)
	require.NoError(t, err)
	require.Equal(t, []string{"張醫師", "林醫師", "陳醫師"}, got)
}

func TestStore_Watch_NotifiesOnSnapshot(t *testing.T) {
	s, _ := newTestStore(t)
	waitFor(t, func() bool { return !s.Loading() })

	ch, unsubscribe := s.Watch()
	defer unsubscribe()

	_, err := s.AddPatient(context.Background(), testPatient("12345678", "王小明", "3-1", 1))
	require.NoError(t, err)

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("no notification after patient snapshot")
	}
}

func TestStore_SelectedAcupoints(t *testing.T) {
	s, _ := newTestStore(t)

	s.SetSelectedAcupoints([]string{"合谷", "足三里"})
	got := s.SelectedAcupoints()
	require.Equal(t, []string{"合谷", "足三里"}, got)

	got[0] = "mutated"
	require.Equal(t, "合谷", s.SelectedAcupoints()[0])

	snap := s.Snapshot()
	require.Equal(t, []string{"合谷", "足三里"}, snap.SelectedAcupoints)
}
