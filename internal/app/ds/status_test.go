package ds

import "testing"

func TestCanTransition(t *testing.T) {
	if !CanTransition(StatusCreated, StatusCarAccepted) {
		t.Fatalf("expected created -> car_accepted allowed")
	}
	if !CanTransition(StatusParked, StatusReturnRequested) {
		t.Fatalf("expected parked -> return_requested allowed")
	}
	if CanTransition(StatusCreated, StatusParked) {
		t.Fatalf("expected shortcut created -> parked not allowed")
	}
	if CanTransition(StatusParked, StatusCreated) {
		t.Fatalf("expected backward parked -> created not allowed")
	}
	if CanTransition(StatusCompleted, StatusParked) {
		t.Fatalf("expected transitions out of completed not allowed")
	}
	if CanTransition(StatusCancelled, StatusCreated) {
		t.Fatalf("expected transitions out of cancelled not allowed")
	}
}

func TestCancelReachableFromEveryNonTerminal(t *testing.T) {
	for from := range AllowedTransitions {
		if from.IsTerminal() {
			continue
		}
		if !CanTransition(from, StatusCancelled) {
			t.Fatalf("expected %s -> cancelled allowed", from)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	if !StatusCompleted.IsTerminal() || !StatusCancelled.IsTerminal() {
		t.Fatalf("completed and cancelled must be terminal")
	}
	if StatusParked.IsTerminal() {
		t.Fatalf("parked must not be terminal")
	}
	for s, next := range AllowedTransitions {
		if s.IsTerminal() && len(next) != 0 {
			t.Fatalf("terminal status %s has outgoing transitions", s)
		}
	}
}

func TestStatusOrderIsForwardOnly(t *testing.T) {
	for from, next := range AllowedTransitions {
		for _, to := range next {
			if to.Order() <= from.Order() {
				t.Fatalf("transition %s -> %s goes backward in order", from, to)
			}
		}
	}
}

func TestStatusValidity(t *testing.T) {
	if !StatusEnRoute.IsValid() {
		t.Fatalf("en_route must be valid")
	}
	if SessionStatus("teleported").IsValid() {
		t.Fatalf("unknown status must be invalid")
	}
	if SessionStatus("teleported").Order() != -1 {
		t.Fatalf("unknown status must have order -1")
	}
}

func TestPhotoStageGates(t *testing.T) {
	cases := []struct {
		stage PhotoStage
		gate  SessionStatus
	}{
		{PhotoIntake, StatusCarAccepted},
		{PhotoParking, StatusParked},
		{PhotoPreReturn, StatusReturnStarted},
		{PhotoDelivery, StatusReturnDelivering},
	}
	for _, c := range cases {
		if got := c.stage.GatedBy(); got != c.gate {
			t.Fatalf("stage %s: expected gate %s, got %s", c.stage, c.gate, got)
		}
		if MinPhotos[c.stage] <= 0 {
			t.Fatalf("stage %s must require at least one photo", c.stage)
		}
	}
}
