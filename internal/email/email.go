package email

import (
	"context"

	"github.com/mvolosh/jetcharter/internal/kafka"
	"github.com/sirupsen/logrus"
)

// Sender delivers booking notifications to customers. The transport is a
// stub: delivery is logged, the real mail provider sits behind this type.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(_ context.Context, event kafka.BookingEvent) error {
	logrus.WithFields(logrus.Fields{
		"customer_id": event.CustomerID,
		"booking_id":  event.BookingID,
		"event":       event.Type,
		"state":       event.State,
	}).Info("sending booking notification email")
	return nil
}
