package view

import (
	"testing"

	"needletrack/internal/domain"
)

func patient(id, record, name, bed string, team int, sessions ...domain.TreatmentSession) domain.Patient {
	return domain.Patient{
		ID:                  id,
		MedicalRecordNumber: record,
		Name:                name,
		Gender:              domain.GenderFemale,
		BedNumber:           bed,
		Team:                team,
		Treatments:          sessions,
	}
}

func ids(patients []domain.Patient) []string {
	out := make([]string, len(patients))
	for i, p := range patients {
		out[i] = p.ID
	}
	return out
}

func assertOrder(t *testing.T, got []domain.Patient, want ...string) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("got %v, want %v", gotIDs, want)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("got %v, want %v", gotIDs, want)
		}
	}
}

func TestDerive_TeamFilter(t *testing.T) {
	patients := []domain.Patient{
		patient("a", "111", "王小明", "1-1", 1),
		patient("b", "222", "李小美", "1-2", 2),
	}

	all := Derive(patients, Query{Team: TeamAll})
	assertOrder(t, all, "a", "b")

	team2 := Derive(patients, Query{Team: 2})
	assertOrder(t, team2, "b")
}

func TestDerive_Search(t *testing.T) {
	patients := []domain.Patient{
		patient("a", "12345678", "王小明", "1-1", 1),
		patient("b", "87654321", "李小美", "1-2", 1),
	}

	byRecord := Derive(patients, Query{Search: "1234"})
	assertOrder(t, byRecord, "a")

	byName := Derive(patients, Query{Search: "小美"})
	assertOrder(t, byName, "b")

	both := Derive(patients, Query{Search: "小"})
	assertOrder(t, both, "a", "b")

	none := Derive(patients, Query{Search: "不存在"})
	assertOrder(t, none)
}

func TestDerive_SortByBedNumber(t *testing.T) {
	patients := []domain.Patient{
		patient("a", "111", "甲", "10-1", 1),
		patient("b", "222", "乙", "2-3", 1),
		patient("c", "333", "丙", "9-1", 1),
	}

	got := Derive(patients, Query{Sort: SortByBedNumber})
	assertOrder(t, got, "b", "c", "a")
}

func TestDerive_SortByTreatmentTime(t *testing.T) {
	patients := []domain.Patient{
		patient("a", "111", "甲", "1-1", 1, domain.TreatmentSession{StartTime: "2026-01-14 08:00"}),
		patient("b", "222", "乙", "1-2", 1, domain.TreatmentSession{StartTime: "2026-01-15 09:00"}),
		patient("c", "333", "丙", "1-3", 1),
	}

	// 最近开始的在前，无纪录的最后
	got := Derive(patients, Query{Sort: SortByTreatmentTime})
	assertOrder(t, got, "b", "a", "c")
}

func TestDerive_SortByRemovalTime(t *testing.T) {
	open := domain.TreatmentSession{StartTime: "2026-01-15 08:00"}
	closedEarly := domain.TreatmentSession{StartTime: "2026-01-15 08:00", RemovalTime: "2026-01-15 09:00"}
	closedLate := domain.TreatmentSession{StartTime: "2026-01-15 08:00", RemovalTime: "2026-01-15 10:30"}

	patients := []domain.Patient{
		patient("a", "111", "甲", "1-1", 1, closedEarly),
		patient("b", "222", "乙", "1-2", 1, open),
		patient("c", "333", "丙", "1-3", 1, closedLate),
		patient("d", "444", "丁", "1-4", 1),
	}

	// 进行中（含无纪录者）排前，已拔针组内按拔针时间倒序
	got := Derive(patients, Query{Sort: SortByRemovalTime})
	assertOrder(t, got, "b", "d", "c", "a")
}

func TestDerive_DoesNotMutateInput(t *testing.T) {
	patients := []domain.Patient{
		patient("a", "111", "甲", "9-1", 1),
		patient("b", "222", "乙", "2-3", 1),
	}

	_ = Derive(patients, Query{Sort: SortByBedNumber})

	if patients[0].ID != "a" || patients[1].ID != "b" {
		t.Error("input slice order must not change")
	}
}
