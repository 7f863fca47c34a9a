// Package repository provides Postgres persistence for leads, call logs,
// and conversation messages.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/devvault2026/revampai/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound        = errors.New("lead not found")
	ErrMessageNotFound = errors.New("message not found")
)

const leadColumns = `id, session_id, name, location, phone, website, category, email,
	psychology, propensity_score, competitors, strategy_doc, site_pages,
	outreach_subject, outreach_body, outreach_sms, deal_value, status, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateBatch inserts the scouted leads in a single transaction. Either all
// leads are committed or none are.
func (r *Repository) CreateBatch(ctx context.Context, leads []domain.Lead) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, lead := range leads {
		competitors, sitePages, err := marshalIntel(lead)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO leads (
				id, session_id, name, location, phone, website, category, email,
				psychology, propensity_score, competitors, strategy_doc, site_pages,
				outreach_subject, outreach_body, outreach_sms, deal_value, status
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		`,
			lead.ID, lead.SessionID, lead.Name, lead.Location, lead.Phone, lead.Website, lead.Category, lead.Email,
			lead.Psychology, lead.PropensityScore, competitors, lead.StrategyDoc, sitePages,
			lead.OutreachSubject, lead.OutreachBody, lead.OutreachSMS, lead.DealValue, lead.Status,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	return scanLead(row)
}

func (r *Repository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE session_id = $1
		ORDER BY created_at ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// Replace overwrites every mutable column of the lead addressed by id in one
// UPDATE. This is the store's only lead mutation path: whole-lead replace,
// last writer wins. Stale completions still land on the right lead because
// patches address leads by id.
func (r *Repository) Replace(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	competitors, sitePages, err := marshalIntel(lead)
	if err != nil {
		return domain.Lead{}, err
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET
			name = $2, location = $3, phone = $4, website = $5, category = $6, email = $7,
			psychology = $8, propensity_score = $9, competitors = $10, strategy_doc = $11,
			site_pages = $12, outreach_subject = $13, outreach_body = $14, outreach_sms = $15,
			deal_value = $16, status = $17, updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns,
		lead.ID, lead.Name, lead.Location, lead.Phone, lead.Website, lead.Category, lead.Email,
		lead.Psychology, lead.PropensityScore, competitors, lead.StrategyDoc,
		sitePages, lead.OutreachSubject, lead.OutreachBody, lead.OutreachSMS,
		lead.DealValue, lead.Status,
	)
	return scanLead(row)
}

// UpdateStatus flips only the status column. Used for side transitions
// (Contacted, Replied, Called) that must not disturb intelligence fields.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE leads SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByEmail returns the most recently created lead with the given contact
// email. Used by the inbox watcher to match inbound replies.
func (r *Repository) FindByEmail(ctx context.Context, email string) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE lower(email) = lower($1)
		ORDER BY created_at DESC
		LIMIT 1
	`, email)
	return scanLead(row)
}

// AppendCallLog appends an immutable call record. The insert is idempotent
// on call_sid: racing poll ticks observing the same terminal status write
// exactly one row. Returns false when the log already existed.
func (r *Repository) AppendCallLog(ctx context.Context, log domain.CallLog) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO call_logs (id, lead_id, call_sid, status, duration_seconds, summary)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (call_sid) DO NOTHING
	`, log.ID, log.LeadID, log.CallSID, log.Status, log.DurationSeconds, log.Summary)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) ListCallLogs(ctx context.Context, leadID uuid.UUID) ([]domain.CallLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, call_sid, status, duration_seconds, summary, created_at
		FROM call_logs
		WHERE lead_id = $1
		ORDER BY created_at ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.CallLog, 0)
	for rows.Next() {
		var log domain.CallLog
		if err := rows.Scan(&log.ID, &log.LeadID, &log.CallSID, &log.Status, &log.DurationSeconds, &log.Summary, &log.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func (r *Repository) AppendMessage(ctx context.Context, msg domain.Message) (domain.Message, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO messages (id, lead_id, direction, sender, content, read)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, msg.ID, msg.LeadID, msg.Direction, msg.Sender, msg.Content, msg.Read).Scan(&msg.CreatedAt)
	if err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

func (r *Repository) ListMessages(ctx context.Context, leadID uuid.UUID) ([]domain.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, direction, sender, content, read, created_at
		FROM messages
		WHERE lead_id = $1
		ORDER BY created_at ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]domain.Message, 0)
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.ID, &msg.LeadID, &msg.Direction, &msg.Sender, &msg.Content, &msg.Read, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (r *Repository) MarkMessageRead(ctx context.Context, messageID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE messages SET read = true WHERE id = $1`, messageID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func marshalIntel(lead domain.Lead) (competitors, sitePages []byte, err error) {
	if lead.Competitors != nil {
		competitors, err = json.Marshal(lead.Competitors)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal competitors: %w", err)
		}
	}
	if lead.SitePages != nil {
		sitePages, err = json.Marshal(lead.SitePages)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal site pages: %w", err)
		}
	}
	return competitors, sitePages, nil
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var (
		lead        domain.Lead
		competitors []byte
		sitePages   []byte
	)

	err := row.Scan(
		&lead.ID, &lead.SessionID, &lead.Name, &lead.Location, &lead.Phone, &lead.Website, &lead.Category, &lead.Email,
		&lead.Psychology, &lead.PropensityScore, &competitors, &lead.StrategyDoc, &sitePages,
		&lead.OutreachSubject, &lead.OutreachBody, &lead.OutreachSMS, &lead.DealValue, &lead.Status,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lead{}, ErrNotFound
		}
		return domain.Lead{}, err
	}

	if len(competitors) > 0 {
		if err := json.Unmarshal(competitors, &lead.Competitors); err != nil {
			return domain.Lead{}, fmt.Errorf("unmarshal competitors: %w", err)
		}
	}
	if len(sitePages) > 0 {
		if err := json.Unmarshal(sitePages, &lead.SitePages); err != nil {
			return domain.Lead{}, fmt.Errorf("unmarshal site pages: %w", err)
		}
	}

	return lead, nil
}
