package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/artem13815/freelance/pkg/invoice"
)

// InvoiceRepository хранит выставленные счета вместе с расчётом налогов.
type InvoiceRepository struct {
	pool *pgxpool.Pool
}

func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{pool: pool}
}

const invoiceColumns = `id, freelancer_id, legal_name, tax_id, address, postal_code, city, country, description, iban, swift,
	scenario, base_amount, vat_rate, vat_amount, vat_applicable, reverse_charge,
	irpf_rate, irpf_amount, irpf_applicable, subtotal, total_amount, created_at`

func (r *InvoiceRepository) Create(ctx context.Context, inv invoice.Invoice) error {
	f, c := inv.Fields, inv.Calculation
	_, err := r.pool.Exec(ctx, `
INSERT INTO invoices (`+invoiceColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
`,
		inv.ID, inv.FreelancerID, f.LegalName, f.TaxID, f.Address, f.PostalCode, f.City, f.Country, f.Description, f.IBAN, f.SWIFT,
		string(c.Scenario), c.BaseAmount, c.VATRate, c.VATAmount, c.VATApplicable, c.ReverseCharge,
		c.IRPFRate, c.IRPFAmount, c.IRPFApplicable, c.Subtotal, c.TotalAmount, inv.CreatedAt,
	)
	return err
}

func scanInvoice(row pgx.Row) (invoice.Invoice, error) {
	var (
		inv      invoice.Invoice
		base     decimal.Decimal
		scenario string
	)
	f, c := &inv.Fields, &inv.Calculation
	err := row.Scan(
		&inv.ID, &inv.FreelancerID, &f.LegalName, &f.TaxID, &f.Address, &f.PostalCode, &f.City, &f.Country, &f.Description, &f.IBAN, &f.SWIFT,
		&scenario, &base, &c.VATRate, &c.VATAmount, &c.VATApplicable, &c.ReverseCharge,
		&c.IRPFRate, &c.IRPFAmount, &c.IRPFApplicable, &c.Subtotal, &c.TotalAmount, &inv.CreatedAt,
	)
	if err != nil {
		return invoice.Invoice{}, err
	}
	c.Scenario = invoice.Scenario(scenario)
	c.BaseAmount = base
	f.BaseAmount = &base
	return inv, nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (invoice.Invoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return invoice.Invoice{}, invoice.ErrNotFound
		}
		return invoice.Invoice{}, err
	}
	return inv, nil
}

func (r *InvoiceRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]invoice.Invoice, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+invoiceColumns+` FROM invoices
WHERE freelancer_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`, freelancerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []invoice.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
