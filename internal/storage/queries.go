package storage

const (
	transferColumns = `
		id, idempotency_key, sender_id, quote_id, recipient_id,
		send_amount, send_currency, receive_amount, receive_currency,
		exchange_rate, fee_amount, fee_currency,
		source_country, dest_country, delivery_method,
		status, status_reason, payment_id, payout_id,
		purpose, reference_note,
		version, created_at, updated_at, completed_at`

	// Transfer queries
	GetTransferByIDQuery = `
		SELECT` + transferColumns + `
		FROM transfers
		WHERE id = $1
	`

	GetTransferByIdempotencyKeyQuery = `
		SELECT` + transferColumns + `
		FROM transfers
		WHERE idempotency_key = $1
	`

	// Первая страница: без условия по курсору
	ListTransfersFirstPageQuery = `
		SELECT` + transferColumns + `
		FROM transfers
		WHERE sender_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	// Следующие страницы: сравнение пары (created_at, id), иначе строки
	// с одинаковым created_at теряются или дублируются
	ListTransfersAfterCursorQuery = `
		SELECT` + transferColumns + `
		FROM transfers
		WHERE sender_id = $1
		  AND (created_at, id) < ($2, $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4
	`

	CreateTransferQuery = `
		INSERT INTO transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		        $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	`

	// Оптимистичная блокировка: 0 затронутых строк означает конфликт версий
	UpdateTransferStatusQuery = `
		UPDATE transfers
		SET status = $1,
		    status_reason = $2,
		    updated_at = $3,
		    completed_at = $4,
		    version = version + 1
		WHERE id = $5 AND version = $6
	`

	// Outbox queries
	outboxColumns = `
		id, entity_type, entity_id, event_type, payload, status,
		created_at, processed_at, topic, kafka_offset`

	CreateOutboxEventQuery = `
		INSERT INTO outbox_events (id, entity_type, entity_id, event_type, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	ListOutboxEventsByEntityQuery = `
		SELECT` + outboxColumns + `
		FROM outbox_events
		WHERE entity_id = $1
		ORDER BY created_at, id
	`

	ListOutboxEventsByEntityAndStatusQuery = `
		SELECT` + outboxColumns + `
		FROM outbox_events
		WHERE entity_id = $1 AND status = $2
		ORDER BY created_at, id
	`

	// Idempotency queries
	GetIdempotencyRecordQuery = `
		SELECT key, transfer_id, response_status, response_body, created_at, expires_at
		FROM idempotency_keys
		WHERE key = $1
	`

	CreateIdempotencyRecordQuery = `
		INSERT INTO idempotency_keys (key, transfer_id, response_status, response_body, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	DeleteExpiredIdempotencyRecordsQuery = `
		DELETE FROM idempotency_keys
		WHERE expires_at < $1
	`

	// Recipient queries
	recipientColumns = `
		id, sender_id, first_name, last_name, country, delivery_details,
		is_active, created_at, updated_at`

	GetRecipientByIDQuery = `
		SELECT` + recipientColumns + `
		FROM recipients
		WHERE id = $1
	`

	GetRecipientByIDAndSenderQuery = `
		SELECT` + recipientColumns + `
		FROM recipients
		WHERE id = $1 AND sender_id = $2
	`

	ListActiveRecipientsBySenderQuery = `
		SELECT` + recipientColumns + `
		FROM recipients
		WHERE sender_id = $1 AND is_active = TRUE
		ORDER BY last_name, first_name
	`

	ListRecipientsByIDsQuery = `
		SELECT` + recipientColumns + `
		FROM recipients
		WHERE id = ANY($1)
	`
)
