package status

import "errors"

// Sentinel errors for the lifecycle engine. Callers match with errors.Is;
// detail is attached by wrapping, e.g. fmt.Errorf("%w: ...", ErrValidation).
var (
	ErrUnknownStatus          = errors.New("unknown status")
	ErrInvalidAction          = errors.New("invalid action")
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrValidation             = errors.New("validation error")
)

// Kind identifies which lifecycle catalog applies to an entity.
type Kind string

const (
	KindOrder          Kind = "ORDER"
	KindInboundRequest Kind = "INBOUND_REQUEST"
	KindServiceRequest Kind = "SERVICE_REQUEST"
)

// Dimension separates the fulfillment-side machine from the pricing/invoicing one.
// The two run independently over the same entity.
type Dimension string

const (
	DimOperational Dimension = "OPERATIONAL"
	DimCommercial  Dimension = "COMMERCIAL"
)

type Status string

// Operational statuses
const (
	StatusSubmitted           Status = "SUBMITTED"
	StatusPricingReview       Status = "PRICING_REVIEW"
	StatusPendingApproval     Status = "PENDING_APPROVAL"
	StatusQuoted              Status = "QUOTED"
	StatusApproved            Status = "APPROVED"
	StatusDeclined            Status = "DECLINED"
	StatusConfirmed           Status = "CONFIRMED"
	StatusInPreparation       Status = "IN_PREPARATION"
	StatusAwaitingFabrication Status = "AWAITING_FABRICATION"
	StatusReadyForDelivery    Status = "READY_FOR_DELIVERY"
	StatusInTransit           Status = "IN_TRANSIT"
	StatusDelivered           Status = "DELIVERED"
	StatusInUse               Status = "IN_USE"
	StatusAwaitingReturn      Status = "AWAITING_RETURN"
	StatusReceived            Status = "RECEIVED"
	StatusInProgress          Status = "IN_PROGRESS"
	StatusCompleted           Status = "COMPLETED"
	StatusClosed              Status = "CLOSED"
	StatusCancelled           Status = "CANCELLED"
)

// Commercial statuses (QUOTED is shared with the operational catalog by name;
// the two catalogs are looked up independently)
const (
	StatusPendingQuote  Status = "PENDING_QUOTE"
	StatusQuoteApproved Status = "QUOTE_APPROVED"
	StatusQuoteDeclined Status = "QUOTE_DECLINED"
	StatusInvoiced      Status = "INVOICED"
	StatusPaid          Status = "PAID"
)

type Action string

const (
	ActionStartPricingReview Action = "START_PRICING_REVIEW"
	ActionSendForApproval    Action = "SEND_FOR_APPROVAL"
	ActionSubmitQuote        Action = "SUBMIT_QUOTE"
	ActionApprove            Action = "APPROVE"
	ActionDecline            Action = "DECLINE"
	ActionRequestRevision    Action = "REQUEST_REVISION"
	ActionIssueInvoice       Action = "ISSUE_INVOICE"
	ActionMarkPaid           Action = "MARK_PAID"
	ActionConfirm            Action = "CONFIRM"
	ActionStartPreparation   Action = "START_PREPARATION"
	ActionSendToFabrication  Action = "SEND_TO_FABRICATION"
	ActionMarkReady          Action = "MARK_READY"
	ActionDispatch           Action = "DISPATCH"
	ActionMarkDelivered      Action = "MARK_DELIVERED"
	ActionStartUse           Action = "START_USE"
	ActionRequestReturn      Action = "REQUEST_RETURN"
	ActionMarkReceived       Action = "MARK_RECEIVED"
	ActionStartWork          Action = "START_WORK"
	ActionComplete           Action = "COMPLETE"
	ActionClose              Action = "CLOSE"
	ActionCancel             Action = "CANCEL"
)

// Info describes one catalog entry: the client-facing label, the set of legal
// successor statuses, and whether the status is terminal for forward progress.
type Info struct {
	Label    string
	Next     []Status
	Terminal bool
}

// ActionSpec maps an action to its target status within one dimension.
// CommercialTarget, when set on an operational action, moves the commercial
// dimension in the same transaction (quote submission and decisions touch both).
type ActionSpec struct {
	Dimension        Dimension
	Target           Status
	CommercialTarget Status
}
