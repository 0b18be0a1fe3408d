package valueobjects

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusNoShow    BookingStatus = "no_show"
)

func (s BookingStatus) String() string {
	return string(s)
}

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted,
		BookingStatusCancelled, BookingStatusNoShow:
		return true
	default:
		return false
	}
}

func (s BookingStatus) IsFinal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled || s == BookingStatusNoShow
}

type DepositStatus string

const (
	DepositStatusPending DepositStatus = "pending"
	DepositStatusPaid    DepositStatus = "paid"
	DepositStatusExpired DepositStatus = "expired"
)

func (s DepositStatus) String() string {
	return string(s)
}

func (s DepositStatus) IsValid() bool {
	switch s {
	case DepositStatusPending, DepositStatusPaid, DepositStatusExpired:
		return true
	default:
		return false
	}
}

func (s DepositStatus) IsFinal() bool {
	return s == DepositStatusPaid || s == DepositStatusExpired
}
