package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/niksmo/catalog-imgcheck/internal/core/domain"
	"github.com/niksmo/catalog-imgcheck/internal/core/port"
)

var _ port.ReportSink = (*RunsRepository)(nil)

const insertRunQuery = `
	INSERT INTO validation_runs (
		run_id, started_at, finished_at, base_url, known_host,
		strict, ok, failure, failure_message, failure_status,
		total, populated, missing, missing_field, empty_field,
		known_storage, inconsistent, probed, accessible, inaccessible,
		target_product_id, target_fetched
	)
	VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
		$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22
	);`

const insertFindingQuery = `
	INSERT INTO validation_findings (
		run_id, product_id, name, image_url, images,
		classification, image_count, known_storage, consistent,
		probe_status, probe_accessible
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`

// A RunsRepository keeps one row per run and one row per checked product.
type RunsRepository struct {
	sqldb sqldb
}

func NewRunsRepository(sqldb sqldb) RunsRepository {
	return RunsRepository{sqldb}
}

func (r RunsRepository) SinkReport(
	ctx context.Context, v domain.Report,
) (storeErr error) {
	const op = "RunsRepository.SinkReport"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tx, err := r.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}

	defer func() {
		if storeErr == nil {
			if err := tx.Commit(); err != nil {
				storeErr = fmt.Errorf("%s: failed to commit %w", op, err)
			}
			return
		}

		err := tx.Rollback()
		if err != nil {
			log.Error("failed to rollback tx", "err", err)
		}
	}()

	var (
		targetID      *int
		targetFetched bool
	)
	if v.Target != nil {
		targetID = &v.Target.ProductID
		targetFetched = v.Target.Fetched
	}

	s := v.Summary
	_, err = tx.ExecContext(ctx, insertRunQuery,
		v.RunID, v.StartedAt, v.FinishedAt, v.BaseURL, v.KnownHost,
		v.Strict, v.OK, string(v.Failure), v.FailureMsg, v.FailureStatus,
		s.Total, s.Populated, s.Missing, s.MissingField, s.EmptyField,
		s.KnownStorage, s.Inconsistent, s.Probed, s.Accessible, s.Inaccessible,
		targetID, targetFetched,
	)
	if err != nil {
		return fmt.Errorf("%s: failed to insert run: %w", op, err)
	}

	if len(v.Findings) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, insertFindingQuery)
	if err != nil {
		return fmt.Errorf("%s: failed to prepare stmt: %w", op, err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			log.Error("failed to close prepared stmt", "err", err)
		}
	}()

	for _, f := range v.Findings {
		imagesB, err := json.Marshal(f.Product.Images)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		var (
			probeStatus     *int
			probeAccessible *bool
		)
		if f.Probe != nil {
			probeStatus = &f.Probe.StatusCode
			probeAccessible = &f.Probe.Accessible
		}

		_, err = stmt.ExecContext(ctx,
			v.RunID, f.Product.ID, f.Product.Name, f.Product.ImageURL,
			string(imagesB), string(f.Classification), f.ImageCount,
			f.KnownStorage, f.Consistent, probeStatus, probeAccessible,
		)
		if err != nil {
			return fmt.Errorf("%s: failed to exec: %w", op, err)
		}
	}

	log.Info("run stored", "runID", v.RunID, "nFindings", len(v.Findings))
	return nil
}
