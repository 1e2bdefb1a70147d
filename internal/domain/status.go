package domain

// PurchaseStatus is the lifecycle state of a store purchase.
//
// The machine is one-directional:
//
//	PENDING -> PAID -> COMPLETED
//	PENDING | PAID -> CANCELED
//
// COMPLETED and CANCELED are terminal.
type PurchaseStatus int32

const (
	StatusPending PurchaseStatus = iota
	StatusPaid
	StatusCompleted
	StatusCanceled
)

func (s PurchaseStatus) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusPaid:
		return "PAID"
	case StatusCompleted:
		return "COMPLETED"
	case StatusCanceled:
		return "CANCELED"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether s is one of the four defined states.
func (s PurchaseStatus) Valid() bool {
	return s >= StatusPending && s <= StatusCanceled
}

// Terminal reports whether no further transition is allowed out of s.
func (s PurchaseStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// CanTransitionTo reports whether s -> next is a legal lifecycle step.
func (s PurchaseStatus) CanTransitionTo(next PurchaseStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusPaid || next == StatusCanceled
	case StatusPaid:
		return next == StatusCompleted || next == StatusCanceled
	default:
		return false
	}
}

// ParseStatus maps a status name ("PAID") back to its value.
func ParseStatus(name string) (PurchaseStatus, bool) {
	switch name {
	case "PENDING":
		return StatusPending, true
	case "PAID":
		return StatusPaid, true
	case "COMPLETED":
		return StatusCompleted, true
	case "CANCELED":
		return StatusCanceled, true
	default:
		return 0, false
	}
}

// MarshalJSON renders the status by name.
func (s PurchaseStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *PurchaseStatus) UnmarshalJSON(b []byte) error {
	str := string(b)
	if len(str) >= 2 && str[0] == '"' {
		str = str[1 : len(str)-1]
	}
	v, ok := ParseStatus(str)
	if !ok {
		return &ErrValidation{Field: "status", Message: "unknown status: " + str}
	}
	*s = v
	return nil
}
