// Package rest provides the HTTP handlers of the storefront.
package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/abgdnv/storefront/internal/catalog"
	storeerrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/platform/web"
	"github.com/abgdnv/storefront/internal/storefront"
	"github.com/abgdnv/storefront/internal/view"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	catalog  catalog.Store
	renderer *view.Renderer
	sessions *storefront.Registry
	metrics  *storefront.Metrics
	cookie   string
	logger   *slog.Logger
}

// NewHandler creates a new storefront Handler.
func NewHandler(store catalog.Store, renderer *view.Renderer, sessions *storefront.Registry,
	metrics *storefront.Metrics, cookie string, logger *slog.Logger) *Handler {
	return &Handler{
		catalog:  store,
		renderer: renderer,
		sessions: sessions,
		metrics:  metrics,
		cookie:   cookie,
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes of the storefront.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Page)
	r.Post("/cart/{id}/{action}", h.CartAction)
	r.Post("/order/{action}", h.OrderAction)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", h.Products)
		r.Get("/cart", h.CartState)
	})

	r.Get("/healthz", h.HealthCheck)
}

// Page renders the full storefront for the caller's session.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	sess, ctx := h.session(w, r)
	h.logger.DebugContext(ctx, "Rendering page")
	var page strings.Builder
	err := sess.Do(func(c *storefront.Controller) error {
		return h.renderer.WritePage(&page, c.Surface())
	})
	web.RespondHTML(w, h.logger, http.StatusOK, func(b *strings.Builder) error {
		if err != nil {
			return err
		}
		b.WriteString(page.String())
		return nil
	})
}

// CartAction handles add, increment, decrement and remove on one product.
func (h *Handler) CartAction(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseIntID(w, r, h.logger)
	if !ok {
		return
	}
	actionParam := chi.URLParam(r, "action")
	action, ok := storefront.ParseCartAction(actionParam)
	if !ok {
		web.RespondRequestError(w, r, h.logger, http.StatusNotFound, fmt.Sprintf("Unknown cart action: %s", actionParam))
		return
	}
	h.dispatch(w, r, storefront.Event{Action: action, ProductID: id})
}

// OrderAction handles confirm, start-new-order and modal close.
func (h *Handler) OrderAction(w http.ResponseWriter, r *http.Request) {
	actionParam := chi.URLParam(r, "action")
	action, ok := storefront.ParseOrderAction(actionParam, r.FormValue("source"))
	if !ok {
		web.RespondRequestError(w, r, h.logger, http.StatusNotFound, fmt.Sprintf("Unknown order action: %s", actionParam))
		return
	}
	h.dispatch(w, r, storefront.Event{Action: action})
}

// dispatch runs the event on the caller's session and answers with fragments or a redirect.
func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, ev storefront.Event) {
	sess, ctx := h.session(w, r)
	h.logger.DebugContext(ctx, "Received action", "action", ev.Action, "product_id", ev.ProductID)

	var resp *updateResponse
	err := sess.Do(func(c *storefront.Controller) error {
		u, err := c.Handle(ctx, ev)
		if err != nil {
			return err
		}
		if web.WantsJSON(r) {
			resp, err = h.fragments(c, u)
		}
		return err
	})
	h.metrics.Observe(ev.Action, err)
	if err != nil {
		if errors.Is(err, storeerrors.ErrProductNotFound) {
			h.logger.WarnContext(ctx, "Product not found", "ID", ev.ProductID)
			web.RespondRequestError(w, r, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", ev.ProductID))
			return
		}
		h.logger.ErrorContext(ctx, "Error handling action", "action", ev.Action, "error", err)
		web.RespondRequestError(w, r, h.logger, http.StatusInternalServerError, "Failed to handle action")
		return
	}

	if resp == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, resp)
}

// updateResponse carries the HTML of every region an action re-rendered.
type updateResponse struct {
	Cards      map[int]string `json:"cards,omitempty"`
	Panel      string         `json:"panel,omitempty"`
	Modal      string         `json:"modal,omitempty"`
	TotalItems int            `json:"totalItems"`
	ModalShown bool           `json:"modalShown"`
}

func (h *Handler) fragments(c *storefront.Controller, u storefront.Update) (*updateResponse, error) {
	s := c.Surface()
	resp := &updateResponse{
		TotalItems: c.Cart().TotalItems(),
		ModalShown: c.ModalShown(),
	}
	if len(u.Cards) > 0 {
		resp.Cards = make(map[int]string, len(u.Cards))
	}
	for _, id := range u.Cards {
		card, ok := s.Card(id)
		if !ok {
			continue
		}
		var b strings.Builder
		if err := h.renderer.WriteCard(&b, card); err != nil {
			return nil, fmt.Errorf("render card %d: %w", id, err)
		}
		resp.Cards[id] = b.String()
	}
	if u.Panel {
		var b strings.Builder
		if err := h.renderer.WritePanel(&b, s.Panel); err != nil {
			return nil, fmt.Errorf("render panel: %w", err)
		}
		resp.Panel = b.String()
	}
	if u.Modal {
		var b strings.Builder
		if err := h.renderer.WriteModal(&b, s.Modal); err != nil {
			return nil, fmt.Errorf("render modal: %w", err)
		}
		resp.Modal = b.String()
	}
	return resp, nil
}

type productResponse struct {
	ID       int           `json:"id"`
	Name     string        `json:"name"`
	Category string        `json:"category"`
	Price    string        `json:"price"`
	Image    catalog.Image `json:"image"`
}

// Products lists the catalog.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	products := h.catalog.FindAll()
	list := make([]productResponse, len(products))
	for i, p := range products {
		list[i] = productResponse{
			ID:       p.ID,
			Name:     p.Name,
			Category: p.Category,
			Price:    p.Price.StringFixed(2),
			Image:    p.Image,
		}
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

type cartResponse struct {
	Lines      []view.Line `json:"lines"`
	TotalItems int         `json:"totalItems"`
	TotalPrice string      `json:"totalPrice"`
	ModalShown bool        `json:"modalShown"`
}

// CartState returns the caller's cart.
func (h *Handler) CartState(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.session(w, r)
	var resp cartResponse
	_ = sess.Do(func(c *storefront.Controller) error {
		lines := c.Surface().Panel.Lines
		resp = cartResponse{
			Lines:      append([]view.Line{}, lines...),
			TotalItems: c.Cart().TotalItems(),
			TotalPrice: c.Cart().TotalPrice(h.catalog).StringFixed(2),
			ModalShown: c.ModalShown(),
		}
		return nil
	})
	web.RespondJSON(w, h.logger, http.StatusOK, resp)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// session resolves the caller's session from its cookie, issuing a new cookie when needed.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*storefront.Session, context.Context) {
	var id string
	if c, err := r.Cookie(h.cookie); err == nil {
		id = c.Value
	}
	sess, created := h.sessions.Session(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     h.cookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	ctx := web.WithSessionID(r.Context(), sess.ID)
	if created {
		h.logger.InfoContext(ctx, "Session started")
	}
	return sess, ctx
}
