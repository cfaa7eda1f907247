package domain

type NotificationKind string

const (
	NotificationReservationConfirmed NotificationKind = "reservation_confirmed"
	NotificationReservationCancelled NotificationKind = "reservation_cancelled"
	NotificationPaymentReceived      NotificationKind = "payment_received"
	NotificationRatingRequest        NotificationKind = "rating_request"
	NotificationPickupReminder       NotificationKind = "pickup_reminder"
	NotificationReturnOverdue        NotificationKind = "return_overdue"
)

// Notification is a fire-and-forget event row. There is no push delivery;
// clients read these by polling.
type Notification struct {
	ID            int32            `json:"id"`
	UserID        int32            `json:"user_id"`
	Kind          NotificationKind `json:"kind"`
	Title         string           `json:"title"`
	Message       string           `json:"message"`
	ReservationID *int32           `json:"reservation_id,omitempty"`
	IsRead        bool             `json:"is_read"`
	CreatedOn     string           `json:"created_on"`
}
