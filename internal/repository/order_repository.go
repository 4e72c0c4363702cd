package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/niouspark-cmd/student-hub-sub000/internal/models"
)

const orderColumns = `
	id, student_id, vendor_id, total_amount, fulfillment_type, status,
	escrow_status, release_key, pickup_code, runner_id, delivery_address,
	created_at, updated_at, paid_at, ready_at, picked_up_at, completed_at,
	cancelled_at
`

// orderRow adds the code-consumption stamps, which are repository-internal
// and never leave this package.
type orderRow struct {
	models.Order
	ReleaseKeyUsedAt sql.NullTime `db:"release_key_used_at"`
	PickupCodeUsedAt sql.NullTime `db:"pickup_code_used_at"`
}

type OrderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts an order with its line items in one transaction.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, order, `
		INSERT INTO orders (id, student_id, vendor_id, total_amount, fulfillment_type, status, delivery_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+orderColumns+`
	`, order.ID, order.StudentID, order.VendorID, order.TotalAmount, order.FulfillmentType, order.Status, order.DeliveryAddress)
	if err != nil {
		return fmt.Errorf("order repository: create %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
		`, item.ID, item.OrderID, item.ProductID, item.Quantity, item.UnitPrice)
		if err != nil {
			return fmt.Errorf("order repository: create item %w", err)
		}
	}

	return tx.Commit()
}

// GetByID returns the order with its line items.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.GetContext(ctx, &order, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("order repository: get %w", err)
	}

	if err := r.db.SelectContext(ctx, &order.Items, `
		SELECT id, order_id, product_id, quantity, unit_price FROM order_items WHERE order_id = $1
	`, id); err != nil {
		return nil, fmt.Errorf("order repository: get items %w", err)
	}
	return &order, nil
}

// ListByStudent returns the student's orders, newest first.
func (r *OrderRepository) ListByStudent(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.SelectContext(ctx, &orders, `
		SELECT `+orderColumns+` FROM orders WHERE student_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, studentID, limit, offset)
	return orders, err
}

// ListByVendor returns the vendor's order queue, oldest active first.
func (r *OrderRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.SelectContext(ctx, &orders, `
		SELECT `+orderColumns+` FROM orders WHERE vendor_id = $1
		ORDER BY created_at ASC LIMIT $2 OFFSET $3
	`, vendorID, limit, offset)
	return orders, err
}

// ListByRunner returns orders currently or previously assigned to the runner.
func (r *OrderRepository) ListByRunner(ctx context.Context, runnerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.SelectContext(ctx, &orders, `
		SELECT `+orderColumns+` FROM orders WHERE runner_id = $1
		ORDER BY updated_at DESC LIMIT $2 OFFSET $3
	`, runnerID, limit, offset)
	return orders, err
}

// StartPreparing moves a vendor's order PAID -> PREPARING. The ownership and
// status guards live in the WHERE clause; zero rows means the guard failed.
func (r *OrderRepository) StartPreparing(ctx context.Context, orderID, vendorID uuid.UUID) (*models.Order, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $3, updated_at = NOW()
		WHERE id = $1 AND vendor_id = $2 AND status = $4
	`, orderID, vendorID, models.OrderStatusPreparing, models.OrderStatusPaid)
	if err != nil {
		return nil, fmt.Errorf("order repository: start preparing %w", err)
	}
	if err := r.requireUpdated(ctx, res, orderID, vendorID); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, orderID)
}

// MarkReady moves a vendor's order PREPARING -> READY and stamps ready_at.
func (r *OrderRepository) MarkReady(ctx context.Context, orderID, vendorID uuid.UUID) (*models.Order, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $3, ready_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND vendor_id = $2 AND status = $4
	`, orderID, vendorID, models.OrderStatusReady, models.OrderStatusPreparing)
	if err != nil {
		return nil, fmt.Errorf("order repository: mark ready %w", err)
	}
	if err := r.requireUpdated(ctx, res, orderID, vendorID); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, orderID)
}

// CancelUnpaid cancels a CREATED order. Paid orders are cancelled through the
// escrow repository so the refund lands in the same transaction.
func (r *OrderRepository) CancelUnpaid(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $2, cancelled_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $3
	`, orderID, models.OrderStatusCancelled, models.OrderStatusCreated)
	if err != nil {
		return nil, fmt.Errorf("order repository: cancel unpaid %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, orderID); err != nil {
			return nil, err
		}
		return nil, ErrStateConflict
	}
	return r.GetByID(ctx, orderID)
}

// ListOpenMissions returns DELIVERY orders that are READY and unassigned.
func (r *OrderRepository) ListOpenMissions(ctx context.Context) ([]models.Mission, error) {
	var missions []models.Mission
	err := r.db.SelectContext(ctx, &missions, `
		SELECT id, vendor_id, total_amount, delivery_address, ready_at
		FROM orders
		WHERE status = $1 AND fulfillment_type = $2 AND runner_id IS NULL
		ORDER BY ready_at ASC
	`, models.OrderStatusReady, models.FulfillmentDelivery)
	if err != nil {
		return nil, fmt.Errorf("order repository: list missions %w", err)
	}
	return missions, nil
}

// AssignRunner resolves the mission-accept race with a single conditional
// write: the runner and the fresh pickup code land only if runner_id is still
// NULL. Exactly one caller can win.
func (r *OrderRepository) AssignRunner(ctx context.Context, orderID, runnerID uuid.UUID, pickupCode string) (*models.Order, error) {
	taken, err := codeInUse(ctx, r.db, pickupCode)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrCodeTaken
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET runner_id = $2, pickup_code = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4 AND fulfillment_type = $5 AND runner_id IS NULL
	`, orderID, runnerID, pickupCode, models.OrderStatusReady, models.FulfillmentDelivery)
	if err != nil {
		return nil, fmt.Errorf("order repository: assign runner %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		order, err := r.GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if order.RunnerID != nil {
			return nil, ErrRaceLost
		}
		return nil, ErrStateConflict
	}
	return r.GetByID(ctx, orderID)
}

// ConsumePickupCode confirms the vendor hand-off: the assigned DELIVERY order
// moves READY -> PICKED_UP and the pickup code is invalidated, all in one
// conditional write.
func (r *OrderRepository) ConsumePickupCode(ctx context.Context, orderID uuid.UUID, code string) (*models.Order, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $3, picked_up_at = NOW(), pickup_code_used_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND pickup_code = $2 AND pickup_code_used_at IS NULL
		  AND status = $4 AND runner_id IS NOT NULL
	`, orderID, code, models.OrderStatusPickedUp, models.OrderStatusReady)
	if err != nil {
		return nil, fmt.Errorf("order repository: consume pickup code %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		used, err := r.codeConsumed(ctx, orderID, "pickup_code_used_at")
		if err != nil {
			return nil, err
		}
		if used {
			return nil, ErrAlreadyProcessed
		}
		return nil, ErrStateConflict
	}
	return r.GetByID(ctx, orderID)
}

// FindByActiveCode locates the order whose release key or pickup code equals
// the presented secret. Consumed codes still resolve so replays can be told
// apart from unknown codes. codeInUse guarantees at mint time that a code
// lives on at most one order, so the match is unique.
func (r *OrderRepository) FindByActiveCode(ctx context.Context, code string) (*models.Order, bool, error) {
	var row orderRow
	err := r.db.GetContext(ctx, &row, `
		SELECT `+orderColumns+`, release_key_used_at, pickup_code_used_at FROM orders
		WHERE release_key = $1 OR pickup_code = $1
	`, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, ErrOrderNotFound
		}
		return nil, false, fmt.Errorf("order repository: find by code %w", err)
	}

	consumed := false
	if row.Order.ReleaseKey != nil && *row.Order.ReleaseKey == code {
		consumed = row.ReleaseKeyUsedAt.Valid
	} else if row.Order.PickupCode != nil && *row.Order.PickupCode == code {
		consumed = row.PickupCodeUsedAt.Valid
	}
	return &row.Order, consumed, nil
}

// requireUpdated distinguishes "not found", "not yours" and "wrong state"
// after a guarded vendor update affected zero rows.
func (r *OrderRepository) requireUpdated(ctx context.Context, res sql.Result, orderID, vendorID uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	order, err := r.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.VendorID != vendorID {
		return ErrNotOwner
	}
	return ErrStateConflict
}

// codeInUse reports whether any order already carries the code, in either
// column. The partial unique indexes only cover same-column duplicates;
// this check at mint time closes the cross-column gap, counting consumed
// codes too since those are retained for replay detection.
func codeInUse(ctx context.Context, q sqlx.QueryerContext, code string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, q, &exists, `
		SELECT EXISTS (SELECT 1 FROM orders WHERE release_key = $1 OR pickup_code = $1)
	`, code)
	if err != nil {
		return false, fmt.Errorf("order repository: code in use %w", err)
	}
	return exists, nil
}

func (r *OrderRepository) codeConsumed(ctx context.Context, orderID uuid.UUID, column string) (bool, error) {
	var usedAt sql.NullTime
	// column is one of the two fixed stamp names, never user input.
	err := r.db.GetContext(ctx, &usedAt, `SELECT `+column+` FROM orders WHERE id = $1`, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrOrderNotFound
		}
		return false, err
	}
	return usedAt.Valid, nil
}
