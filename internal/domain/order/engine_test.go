package order

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chocomania/backend/internal/domain/cart"
	"github.com/chocomania/backend/internal/domain/catalog"
	"github.com/chocomania/backend/internal/domain/document"
	"github.com/chocomania/backend/internal/domain/notification"
	"github.com/chocomania/backend/internal/domain/pricing"
	"github.com/chocomania/backend/internal/domain/tracking"
	"github.com/chocomania/backend/internal/domain/user"
)

// --- Mock implementations ---

type mockProductRepo struct {
	byID map[string]*catalog.Product
}

func (m *mockProductRepo) List(context.Context, string) ([]catalog.Product, error) {
	return nil, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*catalog.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

func (m *mockProductRepo) Create(context.Context, *catalog.Product) error { return nil }
func (m *mockProductRepo) Update(context.Context, *catalog.Product) error { return nil }

type mockPromoRepo struct {
	byProduct map[string]*catalog.Promotion
}

func (m *mockPromoRepo) Create(context.Context, *catalog.Promotion) error { return nil }

func (m *mockPromoRepo) ListActive(context.Context, time.Time) ([]catalog.Promotion, error) {
	return nil, nil
}

func (m *mockPromoRepo) FindBestActive(_ context.Context, productID string, now time.Time) (*catalog.Promotion, error) {
	p, ok := m.byProduct[productID]
	if !ok || !p.CurrentAt(now) {
		return nil, nil
	}
	return p, nil
}

type mockCartRepo struct {
	byUser map[string]*cart.Cart
}

func (m *mockCartRepo) GetOrCreate(_ context.Context, userID string) (*cart.Cart, error) {
	if c, ok := m.byUser[userID]; ok {
		return c, nil
	}
	c := &cart.Cart{ID: "cart-" + userID, UsuarioID: userID}
	m.byUser[userID] = c
	return c, nil
}

func (m *mockCartRepo) Get(_ context.Context, userID string) (*cart.Cart, error) {
	return m.byUser[userID], nil
}

func (m *mockCartRepo) InsertItem(_ context.Context, cartID string, item *cart.Item) error {
	for _, c := range m.byUser {
		if c.ID == cartID {
			c.Items = append(c.Items, *item)
		}
	}
	return nil
}

func (m *mockCartRepo) UpdateItemQuantity(context.Context, string, int) error { return nil }
func (m *mockCartRepo) RemoveItem(context.Context, string, string) error     { return nil }

func (m *mockCartRepo) Clear(_ context.Context, cartID string) error {
	for _, c := range m.byUser {
		if c.ID == cartID {
			c.Items = nil
		}
	}
	return nil
}

// mockOrderRepo mimics the transactional contract of the postgres
// repository: CreateFromCart decrements stock guardedly and clears the cart
// as one unit, failing without side effects when stock runs short.
type mockOrderRepo struct {
	products  *mockProductRepo
	carts     *mockCartRepo
	trackings *mockTrackingRepo
	documents *mockDocumentRepo
	byID      map[string]*Order
}

func (m *mockOrderRepo) CreateFromCart(_ context.Context, o *Order, cartID string) error {
	for _, line := range o.Lines {
		p := m.products.byID[line.ProductoID]
		if p == nil || p.Stock < line.Cantidad {
			return &catalog.InsufficientStockError{ProductID: line.ProductoID, Requested: line.Cantidad}
		}
	}
	for _, line := range o.Lines {
		m.products.byID[line.ProductoID].Stock -= line.Cantidad
	}
	for _, c := range m.carts.byUser {
		if c.ID == cartID {
			c.Items = nil
		}
	}
	cp := *o
	m.byID[o.ID] = &cp
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, userID string) ([]Order, error) {
	var out []Order
	for _, o := range m.byID {
		if o.UsuarioID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id string, st Status) error {
	o, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	o.Estado = st
	return nil
}

type mockTrackingRepo struct {
	byOrder map[string]*tracking.Tracking
}

func (m *mockTrackingRepo) GetByOrderID(_ context.Context, orderID string) (*tracking.Tracking, error) {
	t, ok := m.byOrder[orderID]
	if !ok {
		return nil, tracking.ErrNotFound
	}
	return t, nil
}

func (m *mockTrackingRepo) Create(_ context.Context, t *tracking.Tracking) error {
	m.byOrder[t.PedidoID] = t
	return nil
}

func (m *mockTrackingRepo) UpdatePosition(_ context.Context, id string, lat, lng float64) error {
	for _, t := range m.byOrder {
		if t.ID == id {
			t.Lat, t.Lng = &lat, &lng
		}
	}
	return nil
}

func (m *mockTrackingRepo) AssignCourier(_ context.Context, id, courier string) error {
	for _, t := range m.byOrder {
		if t.ID == id {
			t.RepartidorAsignado = courier
		}
	}
	return nil
}

func (m *mockOrderRepo) ConfirmPayment(ctx context.Context, orderID string, doc *document.Document, trk *tracking.Tracking) error {
	o, ok := m.byID[orderID]
	if !ok {
		return ErrNotFound
	}
	o.Estado = StatusPaid
	m.documents.byOrder[orderID] = doc
	m.trackings.byOrder[orderID] = trk
	return nil
}

func (m *mockOrderRepo) Deliver(_ context.Context, orderID string) error {
	o, ok := m.byID[orderID]
	if !ok {
		return ErrNotFound
	}
	o.Estado = StatusDelivered
	trk := m.trackings.byOrder[orderID]
	trk.Estado = tracking.StatusDelivered
	trk.Lat, trk.Lng = nil, nil
	return nil
}

type mockDocumentRepo struct {
	byOrder map[string]*document.Document
}

func (m *mockDocumentRepo) GetByOrderID(_ context.Context, orderID string) (*document.Document, error) {
	d, ok := m.byOrder[orderID]
	if !ok {
		return nil, document.ErrNotFound
	}
	return d, nil
}

func (m *mockDocumentRepo) Create(_ context.Context, d *document.Document) error {
	m.byOrder[d.PedidoID] = d
	return nil
}

func (m *mockDocumentRepo) UpgradeToInvoice(_ context.Context, id, rut, razonSocial string) error {
	for _, d := range m.byOrder {
		if d.ID == id {
			d.Tipo = document.KindFactura
			d.Rut = rut
			d.RazonSocial = razonSocial
		}
	}
	return nil
}

type mockNotificationRepo struct {
	entries []notification.Notification
}

func (m *mockNotificationRepo) Append(_ context.Context, n *notification.Notification) error {
	m.entries = append(m.entries, *n)
	return nil
}

func (m *mockNotificationRepo) ListByOrder(_ context.Context, orderID string) ([]notification.Notification, error) {
	var out []notification.Notification
	for _, n := range m.entries {
		if n.PedidoID == orderID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNotificationRepo) UpdateLatest(_ context.Context, orderID, mensaje, horaEstimada string) (*notification.Notification, error) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].PedidoID == orderID {
			m.entries[i].Mensaje = mensaje
			if horaEstimada != "" {
				m.entries[i].HoraEstimada = horaEstimada
			}
			return &m.entries[i], nil
		}
	}
	return nil, notification.ErrNoneForOrder
}

type mockUserRepo struct {
	byID map[string]*user.User
}

func (m *mockUserRepo) Create(context.Context, *user.User) error { return nil }

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

type mockEmailSender struct {
	sent []string
	err  error
}

func (m *mockEmailSender) Send(_ context.Context, subject, _, _ string) error {
	m.sent = append(m.sent, subject)
	return m.err
}

// --- Test harness ---

type testHarness struct {
	engine        *Engine
	products      *mockProductRepo
	carts         *mockCartRepo
	orders        *mockOrderRepo
	trackings     *mockTrackingRepo
	documents     *mockDocumentRepo
	notifications *mockNotificationRepo
	users         *mockUserRepo
	email         *mockEmailSender
}

func newHarness(products ...catalog.Product) *testHarness {
	byID := make(map[string]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	h := &testHarness{
		products:      &mockProductRepo{byID: byID},
		carts:         &mockCartRepo{byUser: make(map[string]*cart.Cart)},
		trackings:     &mockTrackingRepo{byOrder: make(map[string]*tracking.Tracking)},
		documents:     &mockDocumentRepo{byOrder: make(map[string]*document.Document)},
		notifications: &mockNotificationRepo{},
		users:         &mockUserRepo{byID: make(map[string]*user.User)},
		email:         &mockEmailSender{},
	}
	h.orders = &mockOrderRepo{
		products:  h.products,
		carts:     h.carts,
		trackings: h.trackings,
		documents: h.documents,
		byID:      make(map[string]*Order),
	}
	h.engine = NewEngine(
		h.products,
		pricing.NewResolver(&mockPromoRepo{}),
		h.carts,
		h.orders,
		h.trackings,
		h.documents,
		h.notifications,
		h.users,
		h.email,
	)
	return h
}

func (h *testHarness) addUser(id string, rol user.Role) {
	h.users.byID[id] = &user.User{ID: id, Email: id + "@test.cl", Rol: rol, Nombre: "Test " + id}
}

func (h *testHarness) fillCart(userID string, items ...cart.Item) {
	c, _ := h.carts.GetOrCreate(context.Background(), userID)
	c.Items = append(c.Items, items...)
}

func testProduct(id, price string, stock int) catalog.Product {
	return catalog.Product{
		ID:     id,
		Nombre: "Chocolate " + id,
		Precio: decimal.RequireFromString(price),
		Tipo:   "bombones",
		Stock:  stock,
		Activo: true,
	}
}

// --- Checkout tests ---

func TestCheckout_EmptyCart(t *testing.T) {
	h := newHarness()
	h.addUser("u1", user.RoleCliente)

	_, err := h.engine.Checkout(context.Background(), "u1")
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, h.orders.byID, "no order may be created")
}

func TestCheckout_HappyPath(t *testing.T) {
	h := newHarness(testProduct("pA", "5000", 10), testProduct("pB", "3000", 5))
	h.addUser("u1", user.RoleCliente)
	h.fillCart("u1",
		cart.Item{ID: "i1", ProductoID: "pA", Cantidad: 2},
		cart.Item{ID: "i2", ProductoID: "pB", Cantidad: 1},
	)

	res, err := h.engine.Checkout(context.Background(), "u1")
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("13000").Equal(res.Order.Total), "got %s", res.Order.Total)
	assert.Equal(t, StatusPendingPayment, res.Order.Estado)
	require.Len(t, res.Order.Lines, 2)
	assert.True(t, decimal.RequireFromString("5000").Equal(res.Order.Lines[0].PrecioEnElMomento))
	assert.True(t, decimal.RequireFromString("3000").Equal(res.Order.Lines[1].PrecioEnElMomento))
	assert.Contains(t, res.RedirectURL, res.Order.ID)

	c, _ := h.carts.Get(context.Background(), "u1")
	assert.Empty(t, c.Items, "cart must be emptied by checkout")

	// Stock consumed.
	assert.Equal(t, 8, h.products.byID["pA"].Stock)
	assert.Equal(t, 4, h.products.byID["pB"].Stock)
}

func TestCheckout_TotalEqualsSumOfLines(t *testing.T) {
	h := newHarness(testProduct("pA", "1990", 10), testProduct("pB", "2500", 10))
	h.addUser("u1", user.RoleCliente)
	h.fillCart("u1",
		cart.Item{ID: "i1", ProductoID: "pA", Cantidad: 3},
		cart.Item{ID: "i2", ProductoID: "pB", Cantidad: 2},
	)

	res, err := h.engine.Checkout(context.Background(), "u1")
	require.NoError(t, err)

	sum := decimal.Zero
	for _, line := range res.Order.Lines {
		sum = sum.Add(line.PrecioEnElMomento.Mul(decimal.NewFromInt(int64(line.Cantidad))))
	}
	assert.True(t, sum.Equal(res.Order.Total), "total %s != line sum %s", res.Order.Total, sum)
}

func TestCheckout_UsesPromotionalPrice(t *testing.T) {
	h := newHarness(testProduct("pA", "5000", 10))
	h.addUser("u1", user.RoleCliente)
	h.fillCart("u1", cart.Item{ID: "i1", ProductoID: "pA", Cantidad: 2})

	h.engine.resolver = pricing.NewResolver(&mockPromoRepo{byProduct: map[string]*catalog.Promotion{
		"pA": {
			ID:           "promo1",
			ProductoID:   "pA",
			PrecioOferta: decimal.RequireFromString("3990"),
			FechaTermino: time.Now().Add(time.Hour),
			Activo:       true,
		},
	}})

	res, err := h.engine.Checkout(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("7980").Equal(res.Order.Total), "got %s", res.Order.Total)
	assert.True(t, decimal.RequireFromString("3990").Equal(res.Order.Lines[0].PrecioEnElMomento))
}

func TestCheckout_InsufficientStock_AllOrNothing(t *testing.T) {
	h := newHarness(testProduct("pA", "5000", 10), testProduct("pB", "3000", 1))
	h.addUser("u1", user.RoleCliente)
	h.fillCart("u1",
		cart.Item{ID: "i1", ProductoID: "pA", Cantidad: 2},
		cart.Item{ID: "i2", ProductoID: "pB", Cantidad: 5},
	)

	_, err := h.engine.Checkout(context.Background(), "u1")

	var stockErr *catalog.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "pB", stockErr.ProductID)

	assert.Empty(t, h.orders.byID, "no order may be persisted")
	assert.Equal(t, 10, h.products.byID["pA"].Stock, "no stock may be consumed")
	c, _ := h.carts.Get(context.Background(), "u1")
	assert.Len(t, c.Items, 2, "cart must be untouched")
}

func TestCheckout_ProductGone(t *testing.T) {
	h := newHarness(testProduct("pA", "5000", 10))
	h.addUser("u1", user.RoleCliente)
	h.fillCart("u1",
		cart.Item{ID: "i1", ProductoID: "pA", Cantidad: 1},
		cart.Item{ID: "i2", ProductoID: "ghost", Cantidad: 1},
	)

	_, err := h.engine.Checkout(context.Background(), "u1")

	var unavailErr *catalog.ProductUnavailableError
	require.ErrorAs(t, err, &unavailErr)
	assert.Equal(t, "ghost", unavailErr.ProductID)
	assert.Empty(t, h.orders.byID)
}

func TestCheckout_ProductInactive(t *testing.T) {
	p := testProduct("pA", "5000", 10)
	p.Activo = false
	h := newHarness(p)
	h.addUser("u1", user.RoleCliente)
	h.fillCart("u1", cart.Item{ID: "i1", ProductoID: "pA", Cantidad: 1})

	_, err := h.engine.Checkout(context.Background(), "u1")

	var unavailErr *catalog.ProductUnavailableError
	require.ErrorAs(t, err, &unavailErr)
}

// --- Payment tests ---

func checkoutOne(t *testing.T, h *testHarness) *Order {
	t.Helper()
	h.fillCart("u1", cart.Item{ID: "i1", ProductoID: "pA", Cantidad: 1})
	res, err := h.engine.Checkout(context.Background(), "u1")
	require.NoError(t, err)
	return res.Order
}

func TestConfirmPayment_Approved(t *testing.T) {
	h := newHarness(testProduct("pA", "5000", 10))
	h.addUser("u1", user.RoleCliente)
	o := checkoutOne(t, h)

	got, err := h.engine.ConfirmPayment(context.Background(), o.ID, OutcomeApproved)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, got.Estado)

	doc := h.documents.byOrder[o.ID]
	require.NotNil(t, doc, "payment must create the default document")
	assert.Equal(t, document.KindBoleta, doc.Tipo)
	assert.True(t, o.Total.Equal(doc.Total))

	trk := h.trackings.byOrder[o.ID]
	require.NotNil(t, trk, "payment must create the tracking record")
	assert.Equal(t, tracking.StatusEnRoute, trk.Estado)
	assert.NotEmpty(t, trk.HoraEstimadaLlegada)

	require.Len(t, h.notifications.entries, 1)
	assert.Equal(t, notification.KindOrderReceived, h.notifications.entries[0].Tipo)
	assert.Len(t, h.email.sent, 1, "confirmation email must be sent")
}

func TestConfirmPayment_Rejected(t *testing.T) {
	h := newHarness(testProduct("pA", "5000", 10))
	h.addUser("u1", user.RoleCliente)
	o := checkoutOne(t, h)

	got, err := h.engine.ConfirmPayment(context.Background(), o.ID, PaymentOutcome("rechazado"))
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, got.Estado)
	assert.Nil(t, h.documents.byOrder[o.ID])
	assert.Nil(t, h.trackings.byOrder[o.ID])
}

func TestConfirmPayment_DuplicateCallback(t *testing.T) {
	h := newHarness(testProduct("pA", "5000", 10))
	h.addUser("u1", user.RoleCliente)
	o := checkoutOne(t, h)

	_, err := h.engine.ConfirmPayment(context.Background(), o.ID, OutcomeApproved)
	require.NoError(t, err)

	_, err = h.engine.ConfirmPayment(context.Background(), o.ID, OutcomeApproved)
	require.ErrorIs(t, err, ErrAlreadyProcessed)

	// No duplicate side effects.
	assert.Len(t, h.notifications.entries, 1)
	assert.Len(t, h.email.sent, 1)
}

func TestConfirmPayment_UnknownOrder(t *testing.T) {
	h := newHarness()
	_, err := h.engine.ConfirmPayment(context.Background(), "ghost", OutcomeApproved)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestConfirmPayment_EmailFailureDoesNotFail(t *testing.T) {
	h := newHarness(testProduct("pA", "5000", 10))
	h.addUser("u1", user.RoleCliente)
	h.email.err = assert.AnError
	o := checkoutOne(t, h)

	got, err := h.engine.ConfirmPayment(context.Background(), o.ID, OutcomeApproved)
	require.NoError(t, err, "email failure must not fail the payment")
	assert.Equal(t, StatusPaid, got.Estado)
}

// --- Cancellation tests ---

func TestCancel_FromEarlyStates(t *testing.T) {
	for _, st := range []Status{StatusPendingPayment, StatusPaid, StatusPreparing} {
		h := newHarness(testProduct("pA", "5000", 10))
		h.addUser("u1", user.RoleCliente)
		o := checkoutOne(t, h)
		h.orders.byID[o.ID].Estado = st

		got, err := h.engine.Cancel(context.Background(), o.ID, "u1")
		require.NoError(t, err, "cancel from %s", st)
		assert.Equal(t, StatusCancelled, got.Estado)
	}
}

func TestCancel_IllegalOnceDispatched(t *testing.T) {
	for _, st := range []Status{StatusDispatched, StatusDelivered} {
		h := newHarness(testProduct("pA", "5000", 10))
		h.addUser("u1", user.RoleCliente)
		o := checkoutOne(t, h)
		h.orders.byID[o.ID].Estado = st

		_, err := h.engine.Cancel(context.Background(), o.ID, "u1")

		var transErr *IllegalTransitionError
		require.ErrorAs(t, err, &transErr, "cancel from %s", st)
		assert.Equal(t, st, transErr.From)
	}
}

func TestCancel_NotOwner(t *testing.T) {
	h := newHarness(testProduct("pA", "5000", 10))
	h.addUser("u1", user.RoleCliente)
	o := checkoutOne(t, h)

	_, err := h.engine.Cancel(context.Background(), o.ID, "u2")
	require.ErrorIs(t, err, ErrNotFound)
}

// --- Fulfillment tests ---

func paidOrder(t *testing.T, h *testHarness) *Order {
	t.Helper()
	o := checkoutOne(t, h)
	_, err := h.engine.ConfirmPayment(context.Background(), o.ID, OutcomeApproved)
	require.NoError(t, err)
	return h.orders.byID[o.ID]
}

func TestAssignCourier_HappyPath(t *testing.T) {
	h := newHarness(testProduct("pA", "5000", 10))
	h.addUser("u1", user.RoleCliente)
	h.addUser("rep1", user.RoleRepartidor)
	o := paidOrder(t, h)

	got, err := h.engine.AssignCourier(context.Background(), o.ID, "rep1")
	require.NoError(t, err)
	assert.Equal(t, StatusDispatched, got.Estado)
	assert.Equal(t, "rep1@test.cl", h.trackings.byOrder[o.ID].RepartidorAsignado)
}

func TestAssignCourier_WrongRole(t *testing.T) {
	h := newHarness(testProduct("pA", "5000", 10))
	h.addUser("u1", user.RoleCliente)
	h.addUser("notacourier", user.RoleCliente)
	o := paidOrder(t, h)

	_, err := h.engine.AssignCourier(context.Background(), o.ID, "notacourier")
	require.ErrorIs(t, err, ErrCourierNotFound)

	_, err = h.engine.AssignCourier(context.Background(), o.ID, "ghost")
	require.ErrorIs(t, err, ErrCourierNotFound)
}

func TestAssignCourier_BeforePayment(t *testing.T) {
	h := newHarness(testProduct("pA", "5000", 10))
	h.addUser("u1", user.RoleCliente)
	h.addUser("rep1", user.RoleRepartidor)
	o := checkoutOne(t, h)

	_, err := h.engine.AssignCourier(context.Background(), o.ID, "rep1")

	var transErr *IllegalTransitionError
	require.ErrorAs(t, err, &transErr)
}

func TestMarkPreparing(t *testing.T) {
	h := newHarness(testProduct("pA", "5000", 10))
	h.addUser("u1", user.RoleCliente)
	o := paidOrder(t, h)

	got, err := h.engine.MarkPreparing(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPreparing, got.Estado)

	// Not twice.
	_, err = h.engine.MarkPreparing(context.Background(), o.ID)
	var transErr *IllegalTransitionError
	require.ErrorAs(t, err, &transErr)
}

func TestMarkDelivered(t *testing.T) {
	h := newHarness(testProduct("pA", "5000", 10))
	h.addUser("u1", user.RoleCliente)
	h.addUser("rep1", user.RoleRepartidor)
	o := paidOrder(t, h)
	_, err := h.engine.AssignCourier(context.Background(), o.ID, "rep1")
	require.NoError(t, err)

	trk, err := h.engine.MarkDelivered(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, tracking.StatusDelivered, trk.Estado)
	assert.Nil(t, trk.Lat, "coordinates must be cleared")
	assert.Nil(t, trk.Lng)
	assert.Equal(t, StatusDelivered, h.orders.byID[o.ID].Estado)

	_, err = h.engine.MarkDelivered(context.Background(), o.ID)
	require.ErrorIs(t, err, tracking.ErrAlreadyDelivered)
}

func TestTrack_RefreshesPositionWhileEnRoute(t *testing.T) {
	h := newHarness(testProduct("pA", "5000", 10))
	h.addUser("u1", user.RoleCliente)
	o := paidOrder(t, h)

	trk, err := h.engine.Track(context.Background(), o.ID, "u1")
	require.NoError(t, err)
	require.NotNil(t, trk.Lat)
	require.NotNil(t, trk.Lng)
	assert.InDelta(t, -33.45, *trk.Lat, 0.051)
	assert.InDelta(t, -70.65, *trk.Lng, 0.051)
}

func TestTrack_NotOwner(t *testing.T) {
	h := newHarness(testProduct("pA", "5000", 10))
	h.addUser("u1", user.RoleCliente)
	o := paidOrder(t, h)

	_, err := h.engine.Track(context.Background(), o.ID, "u2")
	require.ErrorIs(t, err, ErrNotFound)
}

// --- Invoice tests ---

func TestRequestInvoice_UpgradesBoleta(t *testing.T) {
	h := newHarness(testProduct("pA", "5000", 10))
	h.addUser("u1", user.RoleCliente)
	o := paidOrder(t, h)

	doc, err := h.engine.RequestInvoice(context.Background(), o.ID, "u1", "76.123.456-7", "Chocolates SpA")
	require.NoError(t, err)
	assert.Equal(t, document.KindFactura, doc.Tipo)
	assert.Equal(t, "76.123.456-7", doc.Rut)
	assert.Equal(t, "Chocolates SpA", doc.RazonSocial)

	// In place: still the same document row.
	stored := h.documents.byOrder[o.ID]
	assert.Equal(t, doc.ID, stored.ID)
	assert.Equal(t, document.KindFactura, stored.Tipo)
}

func TestRequestInvoice_CreatesWhenMissing(t *testing.T) {
	h := newHarness(testProduct("pA", "5000", 10))
	h.addUser("u1", user.RoleCliente)
	o := checkoutOne(t, h)

	doc, err := h.engine.RequestInvoice(context.Background(), o.ID, "u1", "76.123.456-7", "Chocolates SpA")
	require.NoError(t, err)
	assert.Equal(t, document.KindFactura, doc.Tipo)
	assert.True(t, o.Total.Equal(doc.Total))
}

// --- Notification tests ---

func TestNotify_AndUpdateLatest(t *testing.T) {
	h := newHarness(testProduct("pA", "5000", 10))
	h.addUser("u1", user.RoleCliente)
	o := checkoutOne(t, h)

	n, err := h.engine.Notify(context.Background(), o.ID, notification.KindDeliveryDelay, "Tráfico en la ruta.")
	require.NoError(t, err)
	assert.Contains(t, n.Mensaje, "retraso")
	assert.Contains(t, n.Mensaje, "Tráfico en la ruta.")

	updated, err := h.engine.UpdateNotification(context.Background(), o.ID, "Nueva hora confirmada", "18:30:00")
	require.NoError(t, err)
	assert.Equal(t, "Nueva hora confirmada", updated.Mensaje)
	assert.Equal(t, "18:30:00", updated.HoraEstimada)
}

func TestNotify_UnknownOrder(t *testing.T) {
	h := newHarness()
	_, err := h.engine.Notify(context.Background(), "ghost", notification.KindOrderReceived, "")
	require.ErrorIs(t, err, ErrNotFound)
}
