package supabase

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"iheadshot-backend/internal/models"
	"iheadshot-backend/internal/orders"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

const orderColumns = `id, email, checkout_session_id, amount_cents, tier, headshot_count, status, error_message, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*models.Order, error) {
	var order models.Order
	err := row.Scan(
		&order.ID, &order.Email, &order.CheckoutSessionID, &order.AmountCents,
		&order.Tier, &order.HeadshotCount, &order.Status, &order.ErrorMessage,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrderFromCheckout inserts a paid order keyed by the checkout session
// reference. A replayed payment event hits the unique constraint and is
// reported as created=false with no row written.
func (d *DatabaseClient) CreateOrderFromCheckout(order *models.Order) (bool, error) {
	res, err := d.db.Exec(`
		INSERT INTO orders (id, email, checkout_session_id, amount_cents, tier, headshot_count, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (checkout_session_id) DO NOTHING
	`, order.ID, order.Email, order.CheckoutSessionID, order.AmountCents,
		order.Tier, order.HeadshotCount, order.Status)
	if err != nil {
		return false, fmt.Errorf("failed to create order: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return rows == 1, nil
}

func (d *DatabaseClient) GetOrder(orderID uuid.UUID) (*models.Order, error) {
	order, err := scanOrder(d.db.QueryRow(`
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, orderID))
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (d *DatabaseClient) GetOrderByCheckoutSession(sessionID string) (*models.Order, error) {
	order, err := scanOrder(d.db.QueryRow(`
		SELECT `+orderColumns+`
		FROM orders
		WHERE checkout_session_id = $1
	`, sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (d *DatabaseClient) ListOrders() ([]models.Order, error) {
	rows, err := d.db.Query(`
		SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var result []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		result = append(result, *order)
	}

	return result, rows.Err()
}

// AdvanceOrderStatus performs the compare-and-set transition: the status
// moves to `to` only if it currently equals `from`. A lost race degrades to
// advanced=false, never to a double transition.
func (d *DatabaseClient) AdvanceOrderStatus(orderID uuid.UUID, from, to orders.Status) (bool, error) {
	res, err := d.db.Exec(`
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, orderID, from)
	if err != nil {
		return false, fmt.Errorf("failed to advance order status: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return rows == 1, nil
}

// MarkOrderFailed moves the order to failed with an error message, guarded
// by the same compare-and-set predicate as AdvanceOrderStatus.
func (d *DatabaseClient) MarkOrderFailed(orderID uuid.UUID, from orders.Status, errorMsg string) (bool, error) {
	res, err := d.db.Exec(`
		UPDATE orders
		SET status = $1, error_message = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4
	`, orders.StatusFailed, errorMsg, orderID, from)
	if err != nil {
		return false, fmt.Errorf("failed to mark order failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return rows == 1, nil
}

func (d *DatabaseClient) CreateTrainingJob(job *models.TrainingJob) error {
	_, err := d.db.Exec(`
		INSERT INTO training_jobs (id, order_id, provider_job_id, status)
		VALUES ($1, $2, $3, $4)
	`, job.ID, job.OrderID, job.ProviderJobID, job.Status)
	if err != nil {
		return fmt.Errorf("failed to create training job: %w", err)
	}
	return nil
}

func (d *DatabaseClient) GetTrainingJobByProviderID(providerJobID string) (*models.TrainingJob, error) {
	var job models.TrainingJob
	err := d.db.QueryRow(`
		SELECT id, order_id, provider_job_id, status, model_version, error_message, created_at, updated_at
		FROM training_jobs
		WHERE provider_job_id = $1
	`, providerJobID).Scan(
		&job.ID, &job.OrderID, &job.ProviderJobID, &job.Status,
		&job.ModelVersion, &job.ErrorMessage, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get training job: %w", err)
	}
	return &job, nil
}

func (d *DatabaseClient) GetTrainingJobByOrder(orderID uuid.UUID) (*models.TrainingJob, error) {
	var job models.TrainingJob
	err := d.db.QueryRow(`
		SELECT id, order_id, provider_job_id, status, model_version, error_message, created_at, updated_at
		FROM training_jobs
		WHERE order_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, orderID).Scan(
		&job.ID, &job.OrderID, &job.ProviderJobID, &job.Status,
		&job.ModelVersion, &job.ErrorMessage, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get training job: %w", err)
	}
	return &job, nil
}

func (d *DatabaseClient) UpdateTrainingJob(jobID uuid.UUID, status, modelVersion, errorMsg string) error {
	_, err := d.db.Exec(`
		UPDATE training_jobs
		SET status = $1,
		    model_version = NULLIF($2, ''),
		    error_message = NULLIF($3, ''),
		    updated_at = NOW()
		WHERE id = $4
	`, status, modelVersion, errorMsg, jobID)
	if err != nil {
		return fmt.Errorf("failed to update training job: %w", err)
	}
	return nil
}

func (d *DatabaseClient) CreateGeneratedImage(img *models.GeneratedImage) error {
	_, err := d.db.Exec(`
		INSERT INTO generated_images (id, order_id, training_job_id, image_url, style, prompt, quality)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, img.ID, img.OrderID, img.TrainingJobID, img.ImageURL, img.Style, img.Prompt, img.Quality)
	if err != nil {
		return fmt.Errorf("failed to create generated image: %w", err)
	}
	return nil
}

func (d *DatabaseClient) CountGeneratedImages(orderID uuid.UUID) (int, error) {
	var count int
	err := d.db.QueryRow(`
		SELECT COUNT(*) FROM generated_images WHERE order_id = $1
	`, orderID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count generated images: %w", err)
	}
	return count, nil
}

func (d *DatabaseClient) ListGeneratedImages(orderID uuid.UUID) ([]models.GeneratedImage, error) {
	rows, err := d.db.Query(`
		SELECT id, order_id, training_job_id, image_url, style, prompt, quality, created_at
		FROM generated_images
		WHERE order_id = $1
		ORDER BY created_at ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list generated images: %w", err)
	}
	defer rows.Close()

	var images []models.GeneratedImage
	for rows.Next() {
		var img models.GeneratedImage
		err := rows.Scan(
			&img.ID, &img.OrderID, &img.TrainingJobID, &img.ImageURL,
			&img.Style, &img.Prompt, &img.Quality, &img.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan generated image: %w", err)
		}
		images = append(images, img)
	}

	return images, rows.Err()
}

// HasGeneratedImage reports whether url already belongs to the order's
// gallery. Used by the upscale endpoint to reject foreign URLs.
func (d *DatabaseClient) HasGeneratedImage(orderID uuid.UUID, url string) (bool, error) {
	var count int
	err := d.db.QueryRow(`
		SELECT COUNT(*) FROM generated_images WHERE order_id = $1 AND image_url = $2
	`, orderID, url).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check generated image: %w", err)
	}
	return count > 0, nil
}

func (d *DatabaseClient) CreateUpload(upload *models.Upload) error {
	_, err := d.db.Exec(`
		INSERT INTO uploads (id, order_id, storage_path, filename)
		VALUES ($1, $2, $3, $4)
	`, upload.ID, upload.OrderID, upload.StoragePath, upload.Filename)
	if err != nil {
		return fmt.Errorf("failed to create upload: %w", err)
	}
	return nil
}

func (d *DatabaseClient) ListUploads(orderID uuid.UUID) ([]models.Upload, error) {
	rows, err := d.db.Query(`
		SELECT id, order_id, storage_path, filename, created_at
		FROM uploads
		WHERE order_id = $1
		ORDER BY created_at ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer rows.Close()

	var uploads []models.Upload
	for rows.Next() {
		var u models.Upload
		if err := rows.Scan(&u.ID, &u.OrderID, &u.StoragePath, &u.Filename, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		uploads = append(uploads, u)
	}

	return uploads, rows.Err()
}

func (d *DatabaseClient) CreateUpscaledImage(img *models.UpscaledImage) error {
	_, err := d.db.Exec(`
		INSERT INTO upscaled_images (id, order_id, original_url, upscaled_url, scale, width, height)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, img.ID, img.OrderID, img.OriginalURL, img.UpscaledURL, img.Scale, img.Width, img.Height)
	if err != nil {
		return fmt.Errorf("failed to create upscaled image: %w", err)
	}
	return nil
}

func (d *DatabaseClient) ListUpscaledImages(orderID uuid.UUID) ([]models.UpscaledImage, error) {
	rows, err := d.db.Query(`
		SELECT id, order_id, original_url, upscaled_url, scale, width, height, created_at
		FROM upscaled_images
		WHERE order_id = $1
		ORDER BY created_at ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list upscaled images: %w", err)
	}
	defer rows.Close()

	var images []models.UpscaledImage
	for rows.Next() {
		var img models.UpscaledImage
		err := rows.Scan(
			&img.ID, &img.OrderID, &img.OriginalURL, &img.UpscaledURL,
			&img.Scale, &img.Width, &img.Height, &img.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan upscaled image: %w", err)
		}
		images = append(images, img)
	}

	return images, rows.Err()
}

// ClaimNotification records that the (order, kind) notification is being
// sent. The primary key makes the claim first-writer-wins, so replayed
// webhooks cannot double-send an email.
func (d *DatabaseClient) ClaimNotification(orderID uuid.UUID, kind string) (bool, error) {
	res, err := d.db.Exec(`
		INSERT INTO notifications (order_id, kind)
		VALUES ($1, $2)
		ON CONFLICT (order_id, kind) DO NOTHING
	`, orderID, kind)
	if err != nil {
		return false, fmt.Errorf("failed to claim notification: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return rows == 1, nil
}

func (d *DatabaseClient) CountUploads(orderID uuid.UUID) (int, error) {
	var count int
	err := d.db.QueryRow(`
		SELECT COUNT(*) FROM uploads WHERE order_id = $1
	`, orderID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count uploads: %w", err)
	}
	return count, nil
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}
