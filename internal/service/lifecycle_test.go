package service

import (
	"testing"

	"github.com/spec-kit/queue-service/internal/domain"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from  domain.TicketStatus
		to    domain.TicketStatus
		valid bool
	}{
		{domain.TicketStatusPending, domain.TicketStatusCalling, true},
		{domain.TicketStatusPending, domain.TicketStatusCancelled, true},
		{domain.TicketStatusPending, domain.TicketStatusServed, false},
		{domain.TicketStatusPending, domain.TicketStatusSkipped, false},
		{domain.TicketStatusCalling, domain.TicketStatusServed, true},
		{domain.TicketStatusCalling, domain.TicketStatusSkipped, true},
		{domain.TicketStatusCalling, domain.TicketStatusCancelled, true},
		{domain.TicketStatusCalling, domain.TicketStatusPending, false},
	}

	for _, tt := range cases {
		if got := CanTransition(tt.from, tt.to); got != tt.valid {
			t.Fatalf("CanTransition(%s, %s)=%v, want %v", tt.from, tt.to, got, tt.valid)
		}
	}
}

func TestTerminalStatesAdmitNoTransition(t *testing.T) {
	terminal := []domain.TicketStatus{
		domain.TicketStatusServed,
		domain.TicketStatusSkipped,
		domain.TicketStatusCancelled,
	}
	all := []domain.TicketStatus{
		domain.TicketStatusPending,
		domain.TicketStatusCalling,
		domain.TicketStatusServed,
		domain.TicketStatusSkipped,
		domain.TicketStatusCancelled,
	}

	for _, from := range terminal {
		for _, to := range all {
			if CanTransition(from, to) {
				t.Fatalf("CanTransition(%s, %s)=true, terminal states must reject all transitions", from, to)
			}
		}
	}
}

func TestSelfTransitionsRejected(t *testing.T) {
	all := []domain.TicketStatus{
		domain.TicketStatusPending,
		domain.TicketStatusCalling,
		domain.TicketStatusServed,
		domain.TicketStatusSkipped,
		domain.TicketStatusCancelled,
	}
	for _, status := range all {
		if CanTransition(status, status) {
			t.Fatalf("CanTransition(%s, %s)=true, self-transitions are not permitted", status, status)
		}
	}
}
