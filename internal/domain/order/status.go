package order

// Status is the lifecycle state of an order. The wire values are the Spanish
// states the clients already speak.
type Status string

const (
	StatusPendingPayment Status = "pendiente_de_pago"
	StatusPaid           Status = "pagado"
	StatusPreparing      Status = "en_preparacion"
	StatusDispatched     Status = "despachado"
	StatusDelivered      Status = "entregado"
	StatusRejected       Status = "rechazado"
	StatusCancelled      Status = "cancelado"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPendingPayment, StatusPaid, StatusPreparing,
		StatusDispatched, StatusDelivered, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusDelivered, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// transitions is the full state machine. Absent entries are illegal; paid
// orders may skip en_preparacion and go straight to despachado.
var transitions = map[Status][]Status{
	StatusPendingPayment: {StatusPaid, StatusRejected, StatusCancelled},
	StatusPaid:           {StatusPreparing, StatusDispatched, StatusCancelled},
	StatusPreparing:      {StatusDispatched, StatusCancelled},
	StatusDispatched:     {StatusDelivered},
}

// CanTransitionTo reports whether the move s -> next is legal.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
