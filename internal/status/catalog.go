package status

import "fmt"

// Catalog data. Pure lookup, no side effects; the lifecycle service is the only
// component that mutates entities based on these tables.

var orderOperational = map[Status]Info{
	StatusSubmitted:       {Label: "Submitted", Next: []Status{StatusPricingReview, StatusCancelled}},
	StatusPricingReview:   {Label: "Pricing review", Next: []Status{StatusPendingApproval, StatusCancelled}},
	StatusPendingApproval: {Label: "Pending approval", Next: []Status{StatusQuoted, StatusCancelled}},
	StatusQuoted:          {Label: "Quote ready", Next: []Status{StatusApproved, StatusDeclined, StatusCancelled}},
	StatusApproved:        {Label: "Approved", Next: []Status{StatusConfirmed, StatusAwaitingFabrication, StatusCancelled}},
	StatusDeclined:        {Label: "Declined", Terminal: true},
	StatusConfirmed:       {Label: "Confirmed", Next: []Status{StatusInPreparation, StatusAwaitingFabrication, StatusCancelled}},
	StatusInPreparation:   {Label: "In preparation", Next: []Status{StatusReadyForDelivery, StatusAwaitingFabrication}},
	StatusAwaitingFabrication: {
		Label: "Awaiting fabrication",
		Next:  []Status{StatusInPreparation, StatusCancelled},
	},
	StatusReadyForDelivery: {Label: "Ready for delivery", Next: []Status{StatusInTransit}},
	StatusInTransit:        {Label: "In transit", Next: []Status{StatusDelivered}},
	StatusDelivered:        {Label: "Delivered", Next: []Status{StatusInUse}},
	StatusInUse:            {Label: "In use", Next: []Status{StatusAwaitingReturn}},
	StatusAwaitingReturn:   {Label: "Awaiting return", Next: []Status{StatusClosed}},
	StatusClosed:           {Label: "Closed", Terminal: true},
	StatusCancelled:        {Label: "Cancelled", Terminal: true},
}

var inboundOperational = map[Status]Info{
	StatusSubmitted:       {Label: "Submitted", Next: []Status{StatusPendingApproval, StatusCancelled}},
	StatusPendingApproval: {Label: "Pending approval", Next: []Status{StatusApproved, StatusDeclined, StatusCancelled}},
	StatusApproved:        {Label: "Approved", Next: []Status{StatusInTransit, StatusCancelled}},
	StatusDeclined:        {Label: "Declined", Terminal: true},
	StatusInTransit:       {Label: "In transit", Next: []Status{StatusReceived}},
	StatusReceived:        {Label: "Received", Next: []Status{StatusClosed}},
	StatusClosed:          {Label: "Closed", Terminal: true},
	StatusCancelled:       {Label: "Cancelled", Terminal: true},
}

var serviceOperational = map[Status]Info{
	StatusSubmitted:     {Label: "Submitted", Next: []Status{StatusPricingReview, StatusCancelled}},
	StatusPricingReview: {Label: "Pricing review", Next: []Status{StatusQuoted, StatusCancelled}},
	StatusQuoted:        {Label: "Quote ready", Next: []Status{StatusApproved, StatusDeclined, StatusPricingReview, StatusCancelled}},
	StatusApproved:      {Label: "Approved", Next: []Status{StatusInProgress, StatusCancelled}},
	StatusDeclined:      {Label: "Declined", Terminal: true},
	StatusInProgress:    {Label: "In progress", Next: []Status{StatusCompleted}},
	StatusCompleted:     {Label: "Completed", Next: []Status{StatusClosed}},
	StatusClosed:        {Label: "Closed", Terminal: true},
	StatusCancelled:     {Label: "Cancelled", Terminal: true},
}

var orderCommercial = map[Status]Info{
	StatusPendingQuote:  {Label: "Pending quote", Next: []Status{StatusQuoted}},
	StatusQuoted:        {Label: "Quoted", Next: []Status{StatusQuoteApproved, StatusQuoteDeclined}},
	StatusQuoteApproved: {Label: "Quote approved", Next: []Status{StatusInvoiced}},
	StatusQuoteDeclined: {Label: "Quote declined", Terminal: true},
	StatusInvoiced:      {Label: "Invoiced", Next: []Status{StatusPaid}},
	StatusPaid:          {Label: "Paid", Terminal: true},
}

// Service requests additionally allow QUOTED -> PENDING_QUOTE (revision requested).
var serviceCommercial = map[Status]Info{
	StatusPendingQuote:  {Label: "Pending quote", Next: []Status{StatusQuoted}},
	StatusQuoted:        {Label: "Quoted", Next: []Status{StatusQuoteApproved, StatusQuoteDeclined, StatusPendingQuote}},
	StatusQuoteApproved: {Label: "Quote approved", Next: []Status{StatusInvoiced}},
	StatusQuoteDeclined: {Label: "Quote declined", Terminal: true},
	StatusInvoiced:      {Label: "Invoiced", Next: []Status{StatusPaid}},
	StatusPaid:          {Label: "Paid", Terminal: true},
}

var catalogs = map[Kind]map[Dimension]map[Status]Info{
	KindOrder: {
		DimOperational: orderOperational,
		DimCommercial:  orderCommercial,
	},
	KindInboundRequest: {
		DimOperational: inboundOperational,
	},
	KindServiceRequest: {
		DimOperational: serviceOperational,
		DimCommercial:  serviceCommercial,
	},
}

var orderActions = map[Action]ActionSpec{
	ActionStartPricingReview: {Dimension: DimOperational, Target: StatusPricingReview},
	ActionSendForApproval:    {Dimension: DimOperational, Target: StatusPendingApproval},
	ActionSubmitQuote:        {Dimension: DimOperational, Target: StatusQuoted, CommercialTarget: StatusQuoted},
	ActionApprove:            {Dimension: DimOperational, Target: StatusApproved, CommercialTarget: StatusQuoteApproved},
	ActionDecline:            {Dimension: DimOperational, Target: StatusDeclined, CommercialTarget: StatusQuoteDeclined},
	ActionIssueInvoice:       {Dimension: DimCommercial, Target: StatusInvoiced},
	ActionMarkPaid:           {Dimension: DimCommercial, Target: StatusPaid},
	ActionConfirm:            {Dimension: DimOperational, Target: StatusConfirmed},
	ActionStartPreparation:   {Dimension: DimOperational, Target: StatusInPreparation},
	ActionSendToFabrication:  {Dimension: DimOperational, Target: StatusAwaitingFabrication},
	ActionMarkReady:          {Dimension: DimOperational, Target: StatusReadyForDelivery},
	ActionDispatch:           {Dimension: DimOperational, Target: StatusInTransit},
	ActionMarkDelivered:      {Dimension: DimOperational, Target: StatusDelivered},
	ActionStartUse:           {Dimension: DimOperational, Target: StatusInUse},
	ActionRequestReturn:      {Dimension: DimOperational, Target: StatusAwaitingReturn},
	ActionClose:              {Dimension: DimOperational, Target: StatusClosed},
	ActionCancel:             {Dimension: DimOperational, Target: StatusCancelled},
}

var inboundActions = map[Action]ActionSpec{
	ActionSendForApproval: {Dimension: DimOperational, Target: StatusPendingApproval},
	ActionApprove:         {Dimension: DimOperational, Target: StatusApproved},
	ActionDecline:         {Dimension: DimOperational, Target: StatusDeclined},
	ActionDispatch:        {Dimension: DimOperational, Target: StatusInTransit},
	ActionMarkReceived:    {Dimension: DimOperational, Target: StatusReceived},
	ActionClose:           {Dimension: DimOperational, Target: StatusClosed},
	ActionCancel:          {Dimension: DimOperational, Target: StatusCancelled},
}

var serviceActions = map[Action]ActionSpec{
	ActionStartPricingReview: {Dimension: DimOperational, Target: StatusPricingReview},
	ActionSubmitQuote:        {Dimension: DimOperational, Target: StatusQuoted, CommercialTarget: StatusQuoted},
	ActionApprove:            {Dimension: DimOperational, Target: StatusApproved, CommercialTarget: StatusQuoteApproved},
	ActionDecline:            {Dimension: DimOperational, Target: StatusDeclined, CommercialTarget: StatusQuoteDeclined},
	ActionRequestRevision:    {Dimension: DimCommercial, Target: StatusPendingQuote},
	ActionIssueInvoice:       {Dimension: DimCommercial, Target: StatusInvoiced},
	ActionMarkPaid:           {Dimension: DimCommercial, Target: StatusPaid},
	ActionStartWork:          {Dimension: DimOperational, Target: StatusInProgress},
	ActionComplete:           {Dimension: DimOperational, Target: StatusCompleted},
	ActionClose:              {Dimension: DimOperational, Target: StatusClosed},
	ActionCancel:             {Dimension: DimOperational, Target: StatusCancelled},
}

var actions = map[Kind]map[Action]ActionSpec{
	KindOrder:          orderActions,
	KindInboundRequest: inboundActions,
	KindServiceRequest: serviceActions,
}

// InitialStatus returns the status a freshly submitted entity starts in.
func InitialStatus(dim Dimension) Status {
	if dim == DimCommercial {
		return StatusPendingQuote
	}
	return StatusSubmitted
}

// Lookup returns the catalog entry for a status within one kind and dimension.
func Lookup(kind Kind, dim Dimension, s Status) (Info, error) {
	byDim, ok := catalogs[kind]
	if !ok {
		return Info{}, fmt.Errorf("%w: no catalog for kind %s", ErrUnknownStatus, kind)
	}
	catalog, ok := byDim[dim]
	if !ok {
		return Info{}, fmt.Errorf("%w: kind %s has no %s dimension", ErrUnknownStatus, kind, dim)
	}
	info, ok := catalog[s]
	if !ok {
		return Info{}, fmt.Errorf("%w: %s (%s/%s)", ErrUnknownStatus, s, kind, dim)
	}
	return info, nil
}

// Spec resolves an action against the per-kind action table.
func Spec(kind Kind, action Action) (ActionSpec, error) {
	table, ok := actions[kind]
	if !ok {
		return ActionSpec{}, fmt.Errorf("%w: no action table for kind %s", ErrInvalidAction, kind)
	}
	spec, ok := table[action]
	if !ok {
		return ActionSpec{}, fmt.Errorf("%w: %s is not recognized for %s", ErrInvalidAction, action, kind)
	}
	return spec, nil
}

// CanTransition reports whether from -> to is legal for the kind and dimension.
// Unknown from-statuses surface as ErrUnknownStatus.
func CanTransition(kind Kind, dim Dimension, from, to Status) (bool, error) {
	info, err := Lookup(kind, dim, from)
	if err != nil {
		return false, err
	}
	for _, next := range info.Next {
		if next == to {
			return true, nil
		}
	}
	return false, nil
}

// Actions lists every action defined for a kind, for property checks and docs.
func Actions(kind Kind) []Action {
	table := actions[kind]
	out := make([]Action, 0, len(table))
	for a := range table {
		out = append(out, a)
	}
	return out
}

// Statuses lists every status in a kind's dimension catalog.
func Statuses(kind Kind, dim Dimension) []Status {
	catalog := catalogs[kind][dim]
	out := make([]Status, 0, len(catalog))
	for s := range catalog {
		out = append(out, s)
	}
	return out
}

// fulfillmentStarted covers operational statuses past APPROVED, where
// client-side fulfillment is underway and a quote must already exist.
var fulfillmentStarted = map[Status]bool{
	StatusConfirmed:           true,
	StatusInPreparation:       true,
	StatusAwaitingFabrication: true,
	StatusReadyForDelivery:    true,
	StatusInTransit:           true,
	StatusDelivered:           true,
	StatusInUse:               true,
	StatusAwaitingReturn:      true,
	StatusInProgress:          true,
	StatusCompleted:           true,
}

// ValidateCrossDimensions rejects illegal operational/commercial cross-products
// for billable kinds: fulfillment must never run ahead of an unresolved quote,
// and a dead quote (declined or cancelled order) admits no further commercial
// progress toward invoicing.
func ValidateCrossDimensions(kind Kind, operational, commercial Status) error {
	if _, ok := catalogs[kind][DimCommercial]; !ok {
		return nil
	}
	if fulfillmentStarted[operational] || operational == StatusClosed {
		if commercial == StatusPendingQuote || commercial == StatusQuoted {
			return fmt.Errorf("%w: operational %s with commercial %s", ErrInvalidTransition, operational, commercial)
		}
	}
	if operational == StatusCancelled || operational == StatusDeclined {
		if commercial == StatusInvoiced || commercial == StatusPaid {
			return fmt.Errorf("%w: operational %s with commercial %s", ErrInvalidTransition, operational, commercial)
		}
	}
	return nil
}
