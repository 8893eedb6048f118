package notifier

import (
	"context"

	nentity "github.com/shandysiswandi/gotp/internal/notification/entity"
	nusecase "github.com/shandysiswandi/gotp/internal/notification/usecase"
	"github.com/shandysiswandi/gotp/internal/otp/entity"
)

type dispatcher interface {
	Dispatch(ctx context.Context, in nusecase.DispatchInput) string
}

// Notifier hands freshly issued codes to the notification dispatcher.
type Notifier struct {
	dispatcher dispatcher
}

func New(d dispatcher) *Notifier {
	return &Notifier{dispatcher: d}
}

// Notify returns the correlation id of the queued envelope.
func (n *Notifier) Notify(ctx context.Context, d entity.Delivery) string {
	return n.dispatcher.Dispatch(ctx, nusecase.DispatchInput{
		Channel:    nentity.Channel(d.Recipient.Channel.String()),
		Identifier: d.Identifier,
		Code:       d.Code,
		FirstName:  d.Recipient.FirstName,
		LastName:   d.Recipient.LastName,
		Locale:     d.Recipient.Locale,
	})
}
