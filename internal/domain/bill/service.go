package bill

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Document is a rendered bill ready to be sent to the client.
type Document struct {
	Bill        *Bill
	Content     []byte
	ContentType string
	Filename    string
}

// Service orchestrates the billing pipeline: validate → compute → persist →
// render. Retrieval re-renders from the stored record without recomputing.
type Service struct {
	bills     Repository
	renderers map[Format]Renderer
	now       func() time.Time
}

// NewService creates a bill Service with the given repository and one
// renderer per supported output format.
func NewService(bills Repository, renderers map[Format]Renderer) *Service {
	return &Service{
		bills:     bills,
		renderers: renderers,
		now:       time.Now,
	}
}

// Generate validates the raw request, computes the tax breakdown, persists
// the bill, and renders it in the default docx format. It fails fast with
// the first stage's error; a render failure after persistence leaves the
// record durable.
func (s *Service) Generate(ctx context.Context, in GenerateInput) (*Document, error) {
	v, err := ValidateInput(in)
	if err != nil {
		return nil, err
	}

	items := make([]LineItem, len(v.Items))
	for i, it := range v.Items {
		items[i] = ComputeLineItem(it.Description, it.Price, it.Quantity, it.GSTRate)
	}
	subtotal, totalGST, total := ComputeTotals(items, v.Discount)

	b := &Bill{
		BillID:    in.BillID,
		Name:      in.Name,
		Phone:     in.Phone,
		Address:   in.Address,
		Treatment: in.Treatment,
		Date:      in.Date,
		Items:     items,
		Discount:  v.Discount.Round(2),
		Subtotal:  subtotal,
		TotalGST:  totalGST,
		Total:     total,
		CreatedAt: s.now().UTC(),
	}

	if err := s.bills.Create(ctx, b); err != nil {
		return nil, errors.Wrap(err, "create bill")
	}

	return s.render(b, FormatDocx)
}

// History returns all persisted bill records without rendering them.
func (s *Service) History(ctx context.Context) ([]Bill, error) {
	bills, err := s.bills.FindAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list bills")
	}
	return bills, nil
}

// Retrieve re-renders a persisted bill in the requested format using the
// values frozen at generation time. Returns ErrNotFound for unknown ids.
func (s *Service) Retrieve(ctx context.Context, billID string, format Format) (*Document, error) {
	b, err := s.bills.FindByBillID(ctx, billID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "find bill %q", billID)
	}
	return s.render(b, format)
}

// Remove deletes a persisted bill. Returns ErrNotFound for unknown ids.
func (s *Service) Remove(ctx context.Context, billID string) error {
	if err := s.bills.DeleteByBillID(ctx, billID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return errors.Wrapf(err, "delete bill %q", billID)
	}
	return nil
}

func (s *Service) render(b *Bill, format Format) (*Document, error) {
	r, ok := s.renderers[format]
	if !ok {
		return nil, &RenderError{Format: format, Err: errors.New("no renderer registered")}
	}

	content, err := r.Render(b)
	if err != nil {
		return nil, &RenderError{Format: format, Err: err}
	}

	return &Document{
		Bill:        b,
		Content:     content,
		ContentType: format.ContentType(),
		Filename:    b.Filename(format),
	}, nil
}
