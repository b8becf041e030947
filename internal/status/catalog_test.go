package status

import (
	"errors"
	"testing"
)

func TestLookupUnknownStatus(t *testing.T) {
	if _, err := Lookup(KindOrder, DimOperational, Status("FROBNICATED")); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
	if _, err := Lookup(Kind("WAREHOUSE"), DimOperational, StatusSubmitted); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus for unknown kind, got %v", err)
	}
	// Inbound requests carry no commercial dimension at all.
	if _, err := Lookup(KindInboundRequest, DimCommercial, StatusPendingQuote); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus for missing dimension, got %v", err)
	}
}

func TestSpecUnknownAction(t *testing.T) {
	if _, err := Spec(KindOrder, Action("TELEPORT")); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
	// START_WORK exists for service requests but not for orders.
	if _, err := Spec(KindOrder, ActionStartWork); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction for kind-mismatched action, got %v", err)
	}
}

// Every action's target must be reachable from at least one status in its
// dimension's catalog; otherwise the action could never legally fire.
func TestEveryActionTargetReachable(t *testing.T) {
	for _, kind := range []Kind{KindOrder, KindInboundRequest, KindServiceRequest} {
		for _, action := range Actions(kind) {
			spec, err := Spec(kind, action)
			if err != nil {
				t.Fatalf("%s/%s: %v", kind, action, err)
			}

			reachable := false
			for _, from := range Statuses(kind, spec.Dimension) {
				ok, err := CanTransition(kind, spec.Dimension, from, spec.Target)
				if err != nil {
					t.Fatalf("%s/%s from %s: %v", kind, action, from, err)
				}
				if ok {
					reachable = true
					break
				}
			}
			if !reachable {
				t.Errorf("%s: action %s targets unreachable status %s", kind, action, spec.Target)
			}
		}
	}
}

// Terminal statuses admit no successors; non-terminal statuses must have at
// least one, or entities would strand there.
func TestTerminalStatusesHaveNoSuccessors(t *testing.T) {
	for _, kind := range []Kind{KindOrder, KindInboundRequest, KindServiceRequest} {
		for _, dim := range []Dimension{DimOperational, DimCommercial} {
			for _, s := range Statuses(kind, dim) {
				info, err := Lookup(kind, dim, s)
				if err != nil {
					t.Fatalf("%s/%s/%s: %v", kind, dim, s, err)
				}
				if info.Terminal && len(info.Next) > 0 {
					t.Errorf("%s/%s: terminal status %s has successors %v", kind, dim, s, info.Next)
				}
				if !info.Terminal && len(info.Next) == 0 {
					t.Errorf("%s/%s: non-terminal status %s has no successors", kind, dim, s)
				}
			}
		}
	}
}

// Every successor named in a catalog must itself be a catalog entry.
func TestSuccessorsAreDefined(t *testing.T) {
	for _, kind := range []Kind{KindOrder, KindInboundRequest, KindServiceRequest} {
		for _, dim := range []Dimension{DimOperational, DimCommercial} {
			for _, s := range Statuses(kind, dim) {
				info, _ := Lookup(kind, dim, s)
				for _, next := range info.Next {
					if _, err := Lookup(kind, dim, next); err != nil {
						t.Errorf("%s/%s: %s lists undefined successor %s", kind, dim, s, next)
					}
				}
			}
		}
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		kind Kind
		dim  Dimension
		from Status
		to   Status
		want bool
	}{
		{KindOrder, DimOperational, StatusSubmitted, StatusPricingReview, true},
		{KindOrder, DimOperational, StatusSubmitted, StatusDelivered, false},
		{KindOrder, DimOperational, StatusQuoted, StatusApproved, true},
		{KindOrder, DimOperational, StatusClosed, StatusSubmitted, false},
		{KindOrder, DimCommercial, StatusQuoted, StatusQuoteApproved, true},
		{KindOrder, DimCommercial, StatusQuoteApproved, StatusQuoted, false},
		{KindServiceRequest, DimCommercial, StatusQuoted, StatusPendingQuote, true},
		{KindOrder, DimCommercial, StatusQuoted, StatusPendingQuote, false},
		{KindInboundRequest, DimOperational, StatusApproved, StatusInTransit, true},
	}

	for _, tc := range cases {
		got, err := CanTransition(tc.kind, tc.dim, tc.from, tc.to)
		if err != nil {
			t.Fatalf("%s/%s %s->%s: %v", tc.kind, tc.dim, tc.from, tc.to, err)
		}
		if got != tc.want {
			t.Errorf("%s/%s %s->%s: got %v, want %v", tc.kind, tc.dim, tc.from, tc.to, got, tc.want)
		}
	}
}

func TestValidateCrossDimensions(t *testing.T) {
	// Fulfillment under way with the quote still unresolved is illegal.
	if err := ValidateCrossDimensions(KindOrder, StatusInPreparation, StatusQuoted); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	// A cancelled order must never progress to invoicing.
	if err := ValidateCrossDimensions(KindOrder, StatusCancelled, StatusInvoiced); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	// Normal pairs pass.
	if err := ValidateCrossDimensions(KindOrder, StatusConfirmed, StatusQuoteApproved); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Kinds without a commercial dimension are always fine.
	if err := ValidateCrossDimensions(KindInboundRequest, StatusInTransit, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInitialStatus(t *testing.T) {
	if got := InitialStatus(DimOperational); got != StatusSubmitted {
		t.Errorf("operational initial = %s, want SUBMITTED", got)
	}
	if got := InitialStatus(DimCommercial); got != StatusPendingQuote {
		t.Errorf("commercial initial = %s, want PENDING_QUOTE", got)
	}
}
