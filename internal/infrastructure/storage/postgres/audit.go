package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	appctx "slice/internal/core/context"
	"slice/internal/core/id"
	"slice/internal/domain/audit"
)

// CompressionAlgo names the encoding of sys_audit.changes_compressed.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// defaultCompressThreshold is the change-set size above which it is stored zstd-compressed.
const defaultCompressThreshold = 4 * 1024

// AuditLog implements audit.Recorder over sys_audit.
// Large change sets (transfers with many lines) are stored compressed.
type AuditLog struct {
	txm       *TxManager
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	threshold int
}

var _ audit.Recorder = (*AuditLog)(nil)

// NewAuditLog creates an audit recorder.
func NewAuditLog(txm *TxManager) (*AuditLog, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &AuditLog{
		txm:       txm,
		encoder:   encoder,
		decoder:   decoder,
		threshold: defaultCompressThreshold,
	}, nil
}

// Record writes an entry in the caller's transaction. The acting user comes from ctx.
func (a *AuditLog) Record(ctx context.Context, entityType string, entityID id.ID, action audit.Action, changes map[string]any) error {
	raw, err := json.Marshal(changes)
	if err != nil {
		return fmt.Errorf("marshal changes: %w", err)
	}

	var (
		plain      = raw
		compressed []byte
		algo       = CompressionNone
	)
	if len(raw) > a.threshold {
		compressed = a.encoder.EncodeAll(raw, nil)
		plain = nil
		algo = CompressionZstd
	}

	_, err = a.txm.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO sys_audit (id, entity_type, entity_id, action, user_id, changes, changes_compressed, compression_algo, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, id.New(), entityType, entityID, string(action), appctx.GetUserID(ctx), plain, compressed, algo, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// History returns an entity's entries oldest first.
func (a *AuditLog) History(ctx context.Context, entityType string, entityID id.ID) ([]audit.Entry, error) {
	rows, err := a.txm.GetQuerier(ctx).Query(ctx, `
		SELECT id, entity_type, entity_id, action, user_id, changes, changes_compressed, compression_algo, created_at
		FROM sys_audit
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at, id
	`, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("query audit history: %w", err)
	}
	defer rows.Close()

	var out []audit.Entry
	for rows.Next() {
		var (
			e          audit.Entry
			action     string
			changes    []byte
			compressed []byte
			algo       CompressionAlgo
		)
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &action, &e.UserID, &changes, &compressed, &algo, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Action = audit.Action(action)
		if algo == CompressionZstd && len(compressed) > 0 {
			changes, err = a.decoder.DecodeAll(compressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress changes: %w", err)
			}
		}
		e.Changes = changes
		out = append(out, e)
	}
	return out, rows.Err()
}
