package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chocomania/backend/internal/domain/document"
)

// RequestInvoice upgrades an owned order's boleta to a factura in place,
// recording the tax identity. When the order has no document yet (payment
// confirmation failed to create one), a factura is created directly.
func (e *Engine) RequestInvoice(ctx context.Context, orderID, userID, rut, razonSocial string) (*document.Document, error) {
	o, err := e.GetOwned(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	doc, err := e.documents.GetByOrderID(ctx, o.ID)
	if err != nil {
		if !errors.Is(err, document.ErrNotFound) {
			return nil, errors.Wrap(err, "get document")
		}
		doc = &document.Document{
			ID:          uuid.New().String(),
			PedidoID:    o.ID,
			Fecha:       e.now(),
			Tipo:        document.KindFactura,
			Total:       o.Total,
			Rut:         rut,
			RazonSocial: razonSocial,
		}
		if err := e.documents.Create(ctx, doc); err != nil {
			return nil, errors.Wrap(err, "create document")
		}
		return doc, nil
	}

	if err := e.documents.UpgradeToInvoice(ctx, doc.ID, rut, razonSocial); err != nil {
		return nil, errors.Wrap(err, "upgrade document")
	}
	doc.Tipo = document.KindFactura
	doc.Rut = rut
	doc.RazonSocial = razonSocial
	return doc, nil
}

// SendDocumentEmail composes the order's boleta or factura as HTML and
// hands it to the email sink. The send itself is best-effort; only a
// missing order or document fails the call.
func (e *Engine) SendDocumentEmail(ctx context.Context, orderID, userID string) (*document.Document, error) {
	o, err := e.GetOwned(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	doc, err := e.documents.GetByOrderID(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	u, err := e.users.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}

	var subject, body string
	if doc.Tipo == document.KindFactura {
		name := doc.RazonSocial
		if name == "" {
			name = u.Nombre
		}
		subject = fmt.Sprintf("Factura Electrónica por tu Pedido Chocomanía Nº %s", o.ID)
		body = fmt.Sprintf(`<h1>Factura Electrónica Chocomanía</h1>
<p>Estimado/a %s,</p>
<p>Adjuntamos la factura electrónica para tu pedido <strong>Nº %s</strong>.</p>
<ul>
<li><strong>RUT:</strong> %s</li>
<li><strong>Razón Social:</strong> %s</li>
<li><strong>Total:</strong> $%s</li>
</ul>
<p>Este documento es válido para efectos tributarios.</p>
<p>Equipo Chocomanía</p>`, name, o.ID, doc.Rut, doc.RazonSocial, doc.Total.StringFixed(0))
	} else {
		name := u.Nombre
		if name == "" {
			name = u.Email
		}
		subject = fmt.Sprintf("Boleta Electrónica por tu Pedido Chocomanía Nº %s", o.ID)
		body = fmt.Sprintf(`<h1>Boleta Electrónica Chocomanía</h1>
<p>Hola %s,</p>
<p>Adjuntamos la boleta electrónica para tu pedido <strong>Nº %s</strong>.</p>
<ul>
<li><strong>Total:</strong> $%s</li>
<li><strong>Fecha:</strong> %s</li>
</ul>
<p>¡Gracias por tu compra!</p>
<p>Equipo Chocomanía</p>`, name, o.ID, doc.Total.StringFixed(0), doc.Fecha.Format("2006-01-02"))
	}

	if err := e.email.Send(ctx, subject, u.Email, body); err != nil {
		zctx.From(ctx).Warn("Document email failed",
			zap.String("order_id", o.ID), zap.Error(err))
	}
	return doc, nil
}
