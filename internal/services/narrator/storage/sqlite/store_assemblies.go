package sqlite

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mistvale/loreweave/internal/services/narrator/storage"
	"github.com/mistvale/loreweave/internal/services/narrator/storage/sqlite/filter"
)

// PutAssembly persists one append-only assembly record.
func (s *Store) PutAssembly(ctx context.Context, record storage.AssemblyRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("assembly id is required")
	}
	if strings.TrimSpace(record.WorldID) == "" {
		return fmt.Errorf("world id is required")
	}
	if record.BudgetTokens <= 0 {
		return fmt.Errorf("budget tokens must be greater than zero")
	}
	if record.InputTokens < 0 {
		return fmt.Errorf("input tokens must not be negative")
	}
	if strings.TrimSpace(record.PromptSHA256) == "" {
		return fmt.Errorf("prompt digest is required")
	}
	if record.CreatedAt.IsZero() {
		return fmt.Errorf("created at is required")
	}

	included, err := encodeIDs(record.Included)
	if err != nil {
		return err
	}
	dropped, err := encodeIDs(record.Dropped)
	if err != nil {
		return err
	}
	policy, err := encodeIDs(record.Policy)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO assemblies (
	assembly_id, world_id, model, budget_tokens, input_tokens, pct, included, dropped, policy, prompt_sha256, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		strings.TrimSpace(record.ID),
		strings.TrimSpace(record.WorldID),
		strings.TrimSpace(record.Model),
		record.BudgetTokens,
		record.InputTokens,
		record.Pct,
		included,
		dropped,
		policy,
		strings.TrimSpace(record.PromptSHA256),
		toMillis(record.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put assembly: %w", err)
	}
	return nil
}

// ListAssemblies returns a page of assembly records in insertion order,
// optionally narrowed by an AIP-160 filter expression.
func (s *Store) ListAssemblies(ctx context.Context, query storage.ListQuery) (storage.AssemblyPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.AssemblyPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.AssemblyPage{}, fmt.Errorf("storage is not configured")
	}
	if query.PageSize <= 0 {
		return storage.AssemblyPage{}, fmt.Errorf("page size must be greater than zero")
	}

	cond, err := filter.ParseAssemblyFilter(query.Filter)
	if err != nil {
		return storage.AssemblyPage{}, fmt.Errorf("assembly filter: %w", err)
	}

	limit := query.PageSize + 1
	var (
		whereParts []string
		args       []any
	)
	if cond.Clause != "" {
		whereParts = append(whereParts, cond.Clause)
		args = append(args, cond.Params...)
	}
	pageToken := strings.TrimSpace(query.PageToken)
	if pageToken != "" {
		tokenValue, parseErr := strconv.ParseInt(pageToken, 10, 64)
		if parseErr != nil || tokenValue < 0 {
			return storage.AssemblyPage{}, fmt.Errorf("invalid page token")
		}
		whereParts = append(whereParts, "id > ?")
		args = append(args, tokenValue)
	}
	args = append(args, limit)

	sqlQuery := `
SELECT id, assembly_id, world_id, model, budget_tokens, input_tokens, pct, included, dropped, policy, prompt_sha256, created_at
FROM assemblies`
	if len(whereParts) > 0 {
		sqlQuery += "\nWHERE " + strings.Join(whereParts, " AND ")
	}
	sqlQuery += "\nORDER BY id\nLIMIT ?"

	rows, err := s.sqlDB.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return storage.AssemblyPage{}, fmt.Errorf("list assemblies: %w", err)
	}
	defer rows.Close()

	page := storage.AssemblyPage{Assemblies: make([]storage.AssemblyRecord, 0, query.PageSize)}
	var rowIDs []int64
	for rows.Next() {
		var (
			rowID       int64
			rec         storage.AssemblyRecord
			includedRaw string
			droppedRaw  string
			policyRaw   string
			createdAt   int64
		)
		if err := rows.Scan(
			&rowID,
			&rec.ID,
			&rec.WorldID,
			&rec.Model,
			&rec.BudgetTokens,
			&rec.InputTokens,
			&rec.Pct,
			&includedRaw,
			&droppedRaw,
			&policyRaw,
			&rec.PromptSHA256,
			&createdAt,
		); err != nil {
			return storage.AssemblyPage{}, fmt.Errorf("scan assembly row: %w", err)
		}
		if rec.Included, err = decodeIDs(includedRaw); err != nil {
			return storage.AssemblyPage{}, err
		}
		if rec.Dropped, err = decodeIDs(droppedRaw); err != nil {
			return storage.AssemblyPage{}, err
		}
		if rec.Policy, err = decodeIDs(policyRaw); err != nil {
			return storage.AssemblyPage{}, err
		}
		rec.CreatedAt = fromMillis(createdAt)
		page.Assemblies = append(page.Assemblies, rec)
		rowIDs = append(rowIDs, rowID)
	}
	if err := rows.Err(); err != nil {
		return storage.AssemblyPage{}, fmt.Errorf("iterate assembly rows: %w", err)
	}
	if len(page.Assemblies) > query.PageSize {
		page.NextPageToken = strconv.FormatInt(rowIDs[query.PageSize-1], 10)
		page.Assemblies = page.Assemblies[:query.PageSize]
	}
	return page, nil
}
