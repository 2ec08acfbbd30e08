package repository

import (
	"time"

	"context"

	"kashflow/internal/dto"
	"kashflow/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ClienteRepository owns all reads and writes of the customer credit ledger.
// Balance mutations go through the dedicated methods below so the saldo >= 0
// invariant is enforced by conditional writes, never by read-then-write.
type ClienteRepository interface {
	Create(ctx context.Context, c *model.Cliente) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Cliente, error)
	List(ctx context.Context, filter dto.ClienteFilter) ([]model.Cliente, int64, error)
	// ListConSaldo returns active customers carrying a positive balance —
	// the population of the monthly interest run.
	ListConSaldo(ctx context.Context) ([]model.Cliente, error)
	Update(ctx context.Context, c *model.Cliente) error

	// DebitarTx increases saldo_actual and saldo_historico by monto and
	// stamps ultima_compra. Used for fiado sales, inside the sale transaction.
	DebitarTx(tx *gorm.DB, id uuid.UUID, monto decimal.Decimal, ahora time.Time) error

	// AbonarTx decreases saldo_actual by monto only when the balance covers
	// it, in a single conditional UPDATE. Returns false when it does not.
	AbonarTx(tx *gorm.DB, id uuid.UUID, monto decimal.Decimal) (bool, error)

	// AplicarCorteTx persists one monthly accrual: the balance bump, the
	// guard timestamp, the moroso flag and the append-only history row.
	AplicarCorteTx(tx *gorm.DB, cliente *model.Cliente, corte *model.CorteInteres) error

	// HistorialCortes returns the append-only accrual history, newest first.
	HistorialCortes(ctx context.Context, clienteID uuid.UUID) ([]model.CorteInteres, error)

	DB() *gorm.DB
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) Create(ctx context.Context, c *model.Cliente) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *clienteRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	err := tx.First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *clienteRepo) List(ctx context.Context, filter dto.ClienteFilter) ([]model.Cliente, int64, error) {
	var clientes []model.Cliente
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Cliente{}).Where("activo = true")
	if filter.Nombre != "" {
		q = q.Where("nombre ILIKE ?", "%"+filter.Nombre+"%")
	}
	if filter.ConDeuda {
		q = q.Where("saldo_actual > 0")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("nombre ASC").Limit(filter.Limit).Offset(offset).Find(&clientes).Error
	return clientes, total, err
}

func (r *clienteRepo) ListConSaldo(ctx context.Context) ([]model.Cliente, error) {
	var clientes []model.Cliente
	err := r.db.WithContext(ctx).
		Where("activo = true AND saldo_actual > 0").
		Order("nombre ASC").
		Find(&clientes).Error
	return clientes, err
}

func (r *clienteRepo) Update(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *clienteRepo) DebitarTx(tx *gorm.DB, id uuid.UUID, monto decimal.Decimal, ahora time.Time) error {
	return tx.Model(&model.Cliente{}).Where("id = ?", id).Updates(map[string]interface{}{
		"saldo_actual":    gorm.Expr("saldo_actual + ?", monto),
		"saldo_historico": gorm.Expr("saldo_historico + ?", monto),
		"ultima_compra":   ahora,
	}).Error
}

func (r *clienteRepo) AbonarTx(tx *gorm.DB, id uuid.UUID, monto decimal.Decimal) (bool, error) {
	res := tx.Model(&model.Cliente{}).
		Where("id = ? AND saldo_actual >= ?", id, monto).
		Updates(map[string]interface{}{
			"saldo_actual": gorm.Expr("saldo_actual - ?", monto),
			// Debt fully paid clears the delinquency flag.
			"moroso": gorm.Expr("CASE WHEN saldo_actual - ? = 0 THEN false ELSE moroso END", monto),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *clienteRepo) AplicarCorteTx(tx *gorm.DB, cliente *model.Cliente, corte *model.CorteInteres) error {
	if corte.ID == uuid.Nil {
		corte.ID = uuid.New()
	}
	err := tx.Model(&model.Cliente{}).Where("id = ?", cliente.ID).Updates(map[string]interface{}{
		"saldo_actual":           cliente.SaldoActual,
		"ultimo_corte_intereses": cliente.UltimoCorteIntereses,
		"moroso":                 cliente.Moroso,
	}).Error
	if err != nil {
		return err
	}
	return tx.Create(corte).Error
}

func (r *clienteRepo) HistorialCortes(ctx context.Context, clienteID uuid.UUID) ([]model.CorteInteres, error) {
	var cortes []model.CorteInteres
	err := r.db.WithContext(ctx).
		Where("cliente_id = ?", clienteID).
		Order("fecha DESC").
		Find(&cortes).Error
	return cortes, err
}

func (r *clienteRepo) DB() *gorm.DB { return r.db }
