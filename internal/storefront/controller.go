// Package storefront routes user events to the cart and keeps the rendered surface in sync.
package storefront

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abgdnv/storefront/internal/cart"
	"github.com/abgdnv/storefront/internal/catalog"
	storeerrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/view"
)

// Action is a discrete user action.
type Action string

const (
	ActionAdd          Action = "add"
	ActionIncrement    Action = "increment"
	ActionDecrement    Action = "decrement"
	ActionRemove       Action = "remove"
	ActionConfirm      Action = "confirm"
	ActionStartNew     Action = "new"
	ActionClose        Action = "close"
	ActionOutsideClick Action = "outside-click"
)

// targetsProduct reports whether the action carries a product id.
func (a Action) targetsProduct() bool {
	switch a {
	case ActionAdd, ActionIncrement, ActionDecrement, ActionRemove:
		return true
	}
	return false
}

// ParseCartAction maps a path segment of /cart/{id}/{action} to an Action.
func ParseCartAction(s string) (Action, bool) {
	a := Action(s)
	return a, a.targetsProduct()
}

// ParseOrderAction maps a path segment of /order/{action} to an Action.
// An outside click is a close with source "outside".
func ParseOrderAction(s, source string) (Action, bool) {
	switch Action(s) {
	case ActionConfirm, ActionStartNew:
		return Action(s), true
	case ActionClose:
		if source == "outside" {
			return ActionOutsideClick, true
		}
		return ActionClose, true
	}
	return "", false
}

// Event is one user action, with the product it applies to when relevant.
type Event struct {
	Action    Action
	ProductID int
}

// Update is the re-render scope of one handled event.
type Update struct {
	Cards []int
	Panel bool
	Modal bool
}

// Empty reports whether nothing was re-rendered.
func (u Update) Empty() bool {
	return len(u.Cards) == 0 && !u.Panel && !u.Modal
}

// Controller owns one cart, its rendered surface and the modal snapshot.
// It is not safe for concurrent use; Session serializes access.
type Controller struct {
	catalog  catalog.Store
	renderer *view.Renderer
	cart     *cart.Cart
	surface  *view.Surface
	snapshot *view.Snapshot
	logger   *slog.Logger
}

// NewController creates a controller with an empty cart and performs the initial render.
func NewController(store catalog.Store, renderer *view.Renderer, logger *slog.Logger) *Controller {
	return &Controller{
		catalog:  store,
		renderer: renderer,
		cart:     cart.New(),
		surface:  renderer.NewSurface(),
		logger:   logger.With("component", "controller"),
	}
}

// Handle applies an event and re-renders the regions it affects.
// Returns ErrProductNotFound when a product action names an id outside the catalog.
func (c *Controller) Handle(ctx context.Context, ev Event) (Update, error) {
	if ev.Action.targetsProduct() {
		if _, err := c.catalog.FindByID(ev.ProductID); err != nil {
			return Update{}, fmt.Errorf("%s product %d: %w", ev.Action, ev.ProductID, storeerrors.ErrProductNotFound)
		}
	}

	switch ev.Action {
	case ActionAdd:
		c.cart.Add(ev.ProductID)
	case ActionIncrement:
		if !c.cart.Increment(ev.ProductID) {
			c.logger.WarnContext(ctx, "Increment on product not in cart", "product_id", ev.ProductID)
		}
	case ActionDecrement:
		if !c.cart.Decrement(ev.ProductID) {
			c.logger.WarnContext(ctx, "Decrement on product not in cart", "product_id", ev.ProductID)
		}
	case ActionRemove:
		c.cart.Remove(ev.ProductID)
	case ActionConfirm:
		return c.confirm(ctx), nil
	case ActionStartNew:
		return c.startNewOrder(ctx), nil
	case ActionClose, ActionOutsideClick:
		return c.closeModal(ctx, ev.Action), nil
	default:
		return Update{}, fmt.Errorf("unknown action %q", ev.Action)
	}

	c.renderer.RenderCard(c.surface, ev.ProductID, c.cart)
	c.renderer.RenderPanel(c.surface, c.cart)
	c.logger.DebugContext(ctx, "Cart updated", "action", ev.Action, "product_id", ev.ProductID,
		"quantity", c.cart.QuantityOf(ev.ProductID), "total_items", c.cart.TotalItems())
	return Update{Cards: []int{ev.ProductID}, Panel: true}, nil
}

func (c *Controller) confirm(ctx context.Context) Update {
	if c.cart.IsEmpty() {
		c.logger.DebugContext(ctx, "Confirm ignored, cart is empty")
		return Update{}
	}
	c.snapshot = c.renderer.TakeSnapshot(c.cart)
	c.renderer.RenderModal(c.surface, c.snapshot)
	c.logger.InfoContext(ctx, "Order confirmed", "lines", len(c.snapshot.Lines), "total", c.snapshot.Total.StringFixed(2))
	return Update{Modal: true}
}

func (c *Controller) startNewOrder(ctx context.Context) Update {
	c.cart.Clear()
	c.snapshot = nil
	c.renderer.RenderAll(c.surface, c.cart, nil)
	c.logger.InfoContext(ctx, "New order started")
	cards := make([]int, len(c.surface.Order))
	copy(cards, c.surface.Order)
	return Update{Cards: cards, Panel: true, Modal: true}
}

// closeModal is the single path for every way of dismissing the modal.
func (c *Controller) closeModal(ctx context.Context, source Action) Update {
	if c.snapshot == nil {
		return Update{}
	}
	c.snapshot = nil
	c.renderer.RenderModal(c.surface, nil)
	c.logger.DebugContext(ctx, "Modal closed", "source", source)
	return Update{Modal: true}
}

// Surface returns the rendered surface. Callers must not keep it past the session lock.
func (c *Controller) Surface() *view.Surface {
	return c.surface
}

// Cart returns the controller's cart for read access.
func (c *Controller) Cart() *cart.Cart {
	return c.cart
}

// ModalShown reports whether the confirmation modal is visible.
func (c *Controller) ModalShown() bool {
	return c.snapshot != nil
}
