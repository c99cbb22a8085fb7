package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chocomania/backend/internal/domain/document"
	"github.com/chocomania/backend/internal/domain/notification"
	"github.com/chocomania/backend/internal/domain/tracking"
)

// PaymentOutcome is the result of the simulated gateway callback.
type PaymentOutcome string

const (
	// OutcomeApproved is the gateway's "aprobado" callback value. Anything
	// else rejects the payment.
	OutcomeApproved PaymentOutcome = "aprobado"
)

// ConfirmPayment settles an order in pendiente_de_pago. Approval moves it to
// pagado and creates the default boleta document plus the tracking record
// (ETA one hour out) in the same transaction; rejection moves it to
// rechazado. A second invocation fails with ErrAlreadyProcessed so duplicate
// gateway callbacks never duplicate the document or tracking rows.
//
// The confirmation notification and email are sent after commit and are
// best-effort: their failure never rolls back the settled payment.
func (e *Engine) ConfirmPayment(ctx context.Context, orderID string, outcome PaymentOutcome) (*Order, error) {
	o, err := e.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Estado != StatusPendingPayment {
		return nil, ErrAlreadyProcessed
	}

	if outcome != OutcomeApproved {
		if err := e.orders.UpdateStatus(ctx, o.ID, StatusRejected); err != nil {
			return nil, errors.Wrap(err, "reject order")
		}
		o.Estado = StatusRejected
		return o, nil
	}

	doc := &document.Document{
		ID:       uuid.New().String(),
		PedidoID: o.ID,
		Fecha:    e.now(),
		Tipo:     document.KindBoleta,
		Total:    o.Total,
	}
	trk := &tracking.Tracking{
		ID:                  uuid.New().String(),
		PedidoID:            o.ID,
		Estado:              tracking.StatusEnRoute,
		HoraEstimadaLlegada: e.now().Add(time.Hour).UTC().Format("15:04:05"),
	}
	if err := e.orders.ConfirmPayment(ctx, o.ID, doc, trk); err != nil {
		return nil, err
	}
	o.Estado = StatusPaid

	e.appendNotification(ctx, o.ID, notification.KindOrderReceived, "", "")
	e.sendPaymentEmail(ctx, o)

	return o, nil
}

// sendPaymentEmail delivers the payment-confirmation email. Failures are
// logged and swallowed.
func (e *Engine) sendPaymentEmail(ctx context.Context, o *Order) {
	u, err := e.users.GetByID(ctx, o.UsuarioID)
	if err != nil {
		zctx.From(ctx).Warn("Skipping payment email, owner lookup failed",
			zap.String("order_id", o.ID), zap.Error(err))
		return
	}

	name := u.Nombre
	if name == "" {
		name = u.Email
	}
	body := fmt.Sprintf(`<h1>¡Tu pago ha sido aprobado!</h1>
<p>Hola %s,</p>
<p>Tu pago para el pedido <strong>Nº %s</strong> por un total de <strong>$%s</strong> ha sido procesado.</p>
<p>Ya estamos preparando tus chocolates.</p>
<p>¡Gracias por tu compra!</p>`, name, o.ID, o.Total.StringFixed(0))

	subject := fmt.Sprintf("Confirmación de Pedido Chocomanía Nº %s", o.ID)
	if err := e.email.Send(ctx, subject, u.Email, body); err != nil {
		zctx.From(ctx).Warn("Payment email failed",
			zap.String("order_id", o.ID), zap.Error(err))
	}
}
