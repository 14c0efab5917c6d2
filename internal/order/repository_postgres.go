package order

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	cartForUpdateQuery = `SELECT id FROM carts WHERE user_id = $1 FOR UPDATE`
	cartLinesQuery     = `
		SELECT ci.product_id, ci.size, ci.quantity, p.price
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.product_id, ci.size
	`
	insertOrderQuery = `
		INSERT INTO orders (id, user_id, full_name, country, address, postal_code, phone, total_price, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`
	insertOrderItemQuery = `
		INSERT INTO order_items (order_id, product_id, size, quantity, price)
		VALUES ($1,$2,$3,$4,$5)
	`
	clearCartQuery = `DELETE FROM cart_items WHERE cart_id = $1`

	listOrdersQuery = `
		SELECT id, user_id, full_name, country, address, postal_code, phone, total_price, status, created_at
		FROM orders
		ORDER BY created_at DESC, id DESC
	`
	listOrdersByUserQuery = `
		SELECT id, user_id, full_name, country, address, postal_code, phone, total_price, status, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	getOrderByIDQuery = `
		SELECT id, user_id, full_name, country, address, postal_code, phone, total_price, status, created_at
		FROM orders
		WHERE id = $1
	`
	updateStatusQuery = `UPDATE orders SET status = $2 WHERE id = $1`
	orderItemsQuery   = `
		SELECT oi.order_id, oi.product_id, oi.size, oi.quantity, oi.price,
		       p.id, p.name, p.description, p.category, p.price, p.image_url, p.sizes
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1::uuid[])
		ORDER BY oi.order_id, oi.product_id, oi.size
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateFromCart performs the whole checkout as one transaction: resolve
// and lock the cart, snapshot its lines with frozen prices into an order,
// then clear the cart. Any failure rolls everything back, so there is no
// order-without-items or emptied-cart-without-order state.
func (r *PostgresRepository) CreateFromCart(userID uuid.UUID, rec Recipient, createdAt string) (Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Order{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var cartID uuid.UUID
	if err := tx.QueryRow(cartForUpdateQuery, userID).Scan(&cartID); err != nil {
		if err == sql.ErrNoRows {
			return Order{}, ErrCartNotFound
		}
		return Order{}, err
	}

	rows, err := tx.Query(cartLinesQuery, cartID)
	if err != nil {
		return Order{}, err
	}

	ord := Order{
		ID:        uuid.New(),
		UserID:    userID,
		Recipient: rec,
		Status:    StatusProcessing,
		CreatedAt: createdAt,
	}
	for rows.Next() {
		it := Item{OrderID: ord.ID}
		if err := rows.Scan(&it.ProductID, &it.Size, &it.Quantity, &it.Price); err != nil {
			rows.Close()
			return Order{}, err
		}
		ord.Items = append(ord.Items, it)
		ord.TotalPrice += float64(it.Quantity) * it.Price
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return Order{}, err
	}
	rows.Close()

	if len(ord.Items) == 0 {
		return Order{}, ErrCartEmpty
	}

	if _, err := tx.Exec(insertOrderQuery,
		ord.ID, ord.UserID, ord.FullName, ord.Country, ord.Address, ord.PostalCode, ord.Phone,
		ord.TotalPrice, ord.Status, ord.CreatedAt,
	); err != nil {
		return Order{}, err
	}

	for _, it := range ord.Items {
		if _, err := tx.Exec(insertOrderItemQuery, it.OrderID, it.ProductID, it.Size, it.Quantity, it.Price); err != nil {
			return Order{}, err
		}
	}

	if _, err := tx.Exec(clearCartQuery, cartID); err != nil {
		return Order{}, err
	}

	if err := tx.Commit(); err != nil {
		return Order{}, err
	}
	return ord, nil
}

func (r *PostgresRepository) ListByUser(userID uuid.UUID) ([]Order, error) {
	rows, err := r.db.Query(listOrdersByUserQuery, userID)
	if err != nil {
		return nil, err
	}
	return r.collectOrders(rows)
}

func (r *PostgresRepository) ListAll() ([]Order, error) {
	rows, err := r.db.Query(listOrdersQuery)
	if err != nil {
		return nil, err
	}
	return r.collectOrders(rows)
}

func (r *PostgresRepository) GetByID(id uuid.UUID) (Order, error) {
	ord, err := scanOrder(r.db.QueryRow(getOrderByIDQuery, id))
	if err != nil {
		return Order{}, err
	}
	// attachItems writes into the slice elements, so return from the slice
	orders := []Order{ord}
	if err := r.attachItems(orders); err != nil {
		return Order{}, err
	}
	return orders[0], nil
}

func (r *PostgresRepository) UpdateStatus(id uuid.UUID, status Status) (Order, error) {
	result, err := r.db.Exec(updateStatusQuery, id, status)
	if err != nil {
		return Order{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return Order{}, err
	}
	if affected == 0 {
		return Order{}, ErrNotFound
	}
	return r.GetByID(id)
}

func (r *PostgresRepository) collectOrders(rows *sql.Rows) ([]Order, error) {
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ord)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(out); err != nil {
		return nil, err
	}
	return out, nil
}

// attachItems loads the lines of every listed order in a single query and
// distributes them by order id.
func (r *PostgresRepository) attachItems(orders []Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, 0, len(orders))
	byID := make(map[uuid.UUID]*Order, len(orders))
	for i := range orders {
		ids = append(ids, orders[i].ID.String())
		byID[orders[i].ID] = &orders[i]
	}

	rows, err := r.db.Query(orderItemsQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(
			&it.OrderID, &it.ProductID, &it.Size, &it.Quantity, &it.Price,
			&it.Product.ID, &it.Product.Name, &it.Product.Description, &it.Product.Category,
			&it.Product.Price, &it.Product.ImageURL, pq.Array(&it.Product.Sizes),
		); err != nil {
			return err
		}
		if ord, ok := byID[it.OrderID]; ok {
			ord.Items = append(ord.Items, it)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(scanner rowScanner) (Order, error) {
	var ord Order
	if err := scanner.Scan(
		&ord.ID, &ord.UserID, &ord.FullName, &ord.Country, &ord.Address, &ord.PostalCode, &ord.Phone,
		&ord.TotalPrice, &ord.Status, &ord.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	return ord, nil
}
