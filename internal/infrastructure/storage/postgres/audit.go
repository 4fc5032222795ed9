package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	appctx "stocktake/internal/core/context"
	"stocktake/internal/core/id"
	"stocktake/internal/domain/counting"
)

const auditTable = "audit_log"

// CompressionAlgo specifies the compression algorithm used for a payload.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// AuditService records mutating operations. Payloads above the threshold
// (full reconciliation row sets can run to thousands of lines) are
// zstd-compressed before storage.
type AuditService struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	compressThreshold int
}

var _ counting.Auditor = (*AuditService)(nil)

// NewAuditService creates a new audit service.
func NewAuditService(txManager *TxManager) (*AuditService, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	return &AuditService{
		txManager:         txManager,
		encoder:           encoder,
		compressThreshold: 10 * 1024,
	}, nil
}

// Record implements counting.Auditor.
func (s *AuditService) Record(ctx context.Context, action string, entityID id.ID, payload any) error {
	var (
		raw        []byte
		compressed []byte
		algo       = CompressionNone
	)
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal audit payload: %w", err)
		}
		if len(encoded) > s.compressThreshold {
			compressed = s.encoder.EncodeAll(encoded, nil)
			algo = CompressionZstd
		} else {
			raw = encoded
		}
	}

	username := ""
	if user := appctx.GetUser(ctx); user != nil {
		username = user.Username
	}

	querier := s.txManager.GetQuerier(ctx)
	_, err := querier.Exec(ctx, `
		INSERT INTO `+auditTable+` (
			id, action, entity_id, username,
			payload, payload_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, id.New(), action, entityID, username, raw, compressed, algo, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
