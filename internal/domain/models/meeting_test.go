package models

import (
	"errors"
	"testing"
	"time"
)

func TestNewMeeting_Defaults(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.FixedZone("KST", 9*3600))
	m, err := NewMeeting(MeetingParams{
		OrganizerID: "u1",
		Title:       "  Sunday Futsal ",
		Location:    "Riverside Park",
	}, now)
	if err != nil {
		t.Fatalf("NewMeeting: %v", err)
	}

	if m.ID == "" {
		t.Error("expected an id")
	}
	if m.Title != "Sunday Futsal" || m.TitleCI != "sunday futsal" {
		t.Errorf("title = %q / %q", m.Title, m.TitleCI)
	}
	if m.LocationCI != "riverside park" {
		t.Errorf("location_ci = %q", m.LocationCI)
	}
	if m.Category != CategoryDefault || m.GenderLimit != GenderLimitDefault || m.Status != StatusDefault {
		t.Errorf("enums = %q/%q/%q", m.Category, m.GenderLimit, m.Status)
	}
	if m.MaxParticipants != DefaultMaxParticipants || m.CurrentParticipants != 0 {
		t.Errorf("participants = %d/%d", m.CurrentParticipants, m.MaxParticipants)
	}
	if !m.CanEvaluate {
		t.Error("a new meeting must accept evaluations")
	}
	if m.CreatedAt.Location() != time.UTC || !m.CreatedAt.Equal(now) {
		t.Errorf("created_at = %v", m.CreatedAt)
	}
	if m.RoomName() != "Sunday Futsal_chatroom" {
		t.Errorf("room name = %q", m.RoomName())
	}
}

func TestNewMeeting_Rejects(t *testing.T) {
	valid := MeetingParams{OrganizerID: "u1", Title: "t", Location: "l"}

	tests := []struct {
		name   string
		mutate func(*MeetingParams)
	}{
		{"no organizer", func(p *MeetingParams) { p.OrganizerID = " " }},
		{"blank title", func(p *MeetingParams) { p.Title = "   " }},
		{"blank location", func(p *MeetingParams) { p.Location = "" }},
		{"negative capacity", func(p *MeetingParams) { p.MaxParticipants = -1 }},
		{"unknown category", func(p *MeetingParams) { p.Category = "chess" }},
		{"unknown gender", func(p *MeetingParams) { p.GenderLimit = "robots" }},
		{"unknown status", func(p *MeetingParams) { p.Status = "paused" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)
			if _, err := NewMeeting(p, time.Now()); !errors.Is(err, ErrInvalidMeeting) {
				t.Fatalf("err = %v, want ErrInvalidMeeting", err)
			}
		})
	}
}

func TestMeetingHelpers(t *testing.T) {
	m := Meeting{OrganizerID: "org", MaxParticipants: 2, CurrentParticipants: 1}
	if m.IsFull() {
		t.Error("1/2 should not be full")
	}
	m.CurrentParticipants = 2
	if !m.IsFull() {
		t.Error("2/2 should be full")
	}
	if !m.IsOrganizer("org") || m.IsOrganizer("other") || m.IsOrganizer("") {
		t.Error("IsOrganizer mismatch")
	}
	if (Meeting{}).IsOrganizer("") {
		t.Error("empty ids never match")
	}
}
