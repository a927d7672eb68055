package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/abgdnv/storefront/internal/cart"
	"github.com/abgdnv/storefront/internal/catalog"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer turns state into a Surface and a Surface into HTML.
// It holds no per-session state and is safe for concurrent use.
type Renderer struct {
	catalog catalog.Store
	notice  string
	tmpl    *template.Template
}

// NewRenderer creates a Renderer over the catalog.
// A non-empty notice replaces the product grid, which is how a failed catalog load is shown.
func NewRenderer(store catalog.Store, notice string) (*Renderer, error) {
	tmpl, err := template.New("view").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{catalog: store, notice: notice, tmpl: tmpl}, nil
}

// NewSurface creates a Surface with a card per product, all rendered from an empty cart.
func (r *Renderer) NewSurface() *Surface {
	s := &Surface{
		Cards:  make(map[int]Card, r.catalog.Len()),
		Notice: r.notice,
	}
	for _, p := range r.catalog.FindAll() {
		s.Order = append(s.Order, p.ID)
	}
	r.RenderAll(s, cart.New(), nil)
	return s
}

// RenderAll resyncs every region.
func (r *Renderer) RenderAll(s *Surface, c *cart.Cart, snapshot *Snapshot) {
	r.RenderCards(s, c)
	r.RenderPanel(s, c)
	r.RenderModal(s, snapshot)
}

// RenderCards resyncs every product card.
func (r *Renderer) RenderCards(s *Surface, c *cart.Cart) {
	for _, id := range s.Order {
		r.RenderCard(s, id, c)
	}
}

// RenderCard resyncs the card of one product. Unknown ids are ignored.
func (r *Renderer) RenderCard(s *Surface, productID int, c *cart.Cart) {
	p, err := r.catalog.FindByID(productID)
	if err != nil {
		return
	}
	card := Card{
		ProductID: p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Price:     FormatMoney(p.Price),
		Image:     p.Image,
		State:     Idle,
	}
	if qty := c.QuantityOf(p.ID); qty > 0 {
		card.State = Active
		card.Quantity = qty
	}
	s.Cards[p.ID] = card
}

// RenderPanel resyncs the cart panel.
func (r *Renderer) RenderPanel(s *Surface, c *cart.Cart) {
	if c.IsEmpty() {
		s.Panel = Panel{State: Empty, Total: FormatMoney(c.TotalPrice(r.catalog))}
		return
	}
	s.Panel = Panel{
		State: Populated,
		Count: c.TotalItems(),
		Lines: r.lines(c),
		Total: FormatMoney(c.TotalPrice(r.catalog)),
	}
}

// RenderModal resyncs the modal. A nil snapshot hides it.
func (r *Renderer) RenderModal(s *Surface, snapshot *Snapshot) {
	if snapshot == nil {
		s.Modal = Modal{State: Hidden}
		return
	}
	lines := make([]Line, len(snapshot.Lines))
	copy(lines, snapshot.Lines)
	s.Modal = Modal{State: Shown, Lines: lines, Total: FormatMoney(snapshot.Total)}
}

// TakeSnapshot copies the current order out of the cart.
func (r *Renderer) TakeSnapshot(c *cart.Cart) *Snapshot {
	return &Snapshot{Lines: r.lines(c), Total: c.TotalPrice(r.catalog)}
}

func (r *Renderer) lines(c *cart.Cart) []Line {
	entries := c.Entries()
	lines := make([]Line, 0, len(entries))
	for _, e := range entries {
		p, err := r.catalog.FindByID(e.ProductID)
		if err != nil {
			continue
		}
		lines = append(lines, Line{
			ProductID: p.ID,
			Name:      p.Name,
			Thumbnail: p.Image.Thumbnail,
			Quantity:  e.Quantity,
			UnitPrice: FormatMoney(p.Price),
			LineTotal: FormatMoney(cart.LineTotal(p.Price, e.Quantity)),
		})
	}
	return lines
}

// WritePage writes the full HTML document.
func (r *Renderer) WritePage(w io.Writer, s *Surface) error {
	return r.tmpl.ExecuteTemplate(w, "page", s)
}

// WriteCard writes the HTML fragment of one card.
func (r *Renderer) WriteCard(w io.Writer, card Card) error {
	return r.tmpl.ExecuteTemplate(w, "card", card)
}

// WritePanel writes the HTML fragment of the cart panel.
func (r *Renderer) WritePanel(w io.Writer, p Panel) error {
	return r.tmpl.ExecuteTemplate(w, "panel", p)
}

// WriteModal writes the HTML fragment of the modal.
func (r *Renderer) WriteModal(w io.Writer, m Modal) error {
	return r.tmpl.ExecuteTemplate(w, "modal", m)
}
