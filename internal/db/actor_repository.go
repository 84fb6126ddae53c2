package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/ranch/internal/model"
	"github.com/udisondev/ranch/internal/path"
)

// ActorRepository хранит популяции ранчо в PostgreSQL.
type ActorRepository struct {
	db *pgxpool.Pool
}

// NewActorRepository создаёт новый ActorRepository.
func NewActorRepository(db *pgxpool.Pool) *ActorRepository {
	return &ActorRepository{db: db}
}

const insertActorSQL = `
	INSERT INTO ranch_actors (
		ranch_id, actor_id, config_id, kind, hp, hunger,
		x, y, z, orientation, scale,
		action, counter, stack, path, target, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, now())
`

// SaveActors replaces the whole population of ranchID in one transaction.
func (r *ActorRepository) SaveActors(ctx context.Context, ranchID string, actors []*model.Actor) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for ranch %s: %w", ranchID, err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			slog.Error("rollback failed", "ranch", ranchID, "error", err)
		}
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM ranch_actors WHERE ranch_id = $1`, ranchID); err != nil {
		return fmt.Errorf("clearing ranch %s: %w", ranchID, err)
	}

	batch := &pgx.Batch{}
	for _, a := range actors {
		stack, err := json.Marshal(a.Stack)
		if err != nil {
			return fmt.Errorf("encoding stack of actor %s: %w", a.ID, err)
		}
		if a.Stack == nil {
			stack = []byte("[]")
		}

		var pathJSON any // NULL без пути
		if a.Path != nil {
			data, err := json.Marshal(path.Encode(a.Path))
			if err != nil {
				return fmt.Errorf("encoding path of actor %s: %w", a.ID, err)
			}
			pathJSON = string(data)
		}

		batch.Queue(insertActorSQL,
			ranchID, a.ID, a.ConfigID, a.Kind.String(), a.HP, a.Hunger,
			a.Position.X, a.Position.Y, a.Position.Z, a.Orientation, a.Scale,
			a.Action.String(), a.Counter, string(stack), pathJSON, a.Target,
		)
	}

	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting actors of ranch %s: %w", ranchID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit ranch %s: %w", ranchID, err)
	}
	return nil
}

// LoadActors загружает всех актёров ранчо, упорядоченных по id.
// Для пустого ранчо возвращает nil без ошибки. Строки, которые не удаётся
// разобрать, пропускаются с предупреждением.
func (r *ActorRepository) LoadActors(ctx context.Context, ranchID string) ([]*model.Actor, error) {
	rows, err := r.db.Query(ctx, `
		SELECT actor_id, config_id, kind, hp, hunger,
		       x, y, z, orientation, scale,
		       action, counter, stack, path, target
		FROM ranch_actors
		WHERE ranch_id = $1
		ORDER BY actor_id
	`, ranchID)
	if err != nil {
		return nil, fmt.Errorf("querying actors of ranch %s: %w", ranchID, err)
	}
	defer rows.Close()

	var actors []*model.Actor
	for rows.Next() {
		var (
			a        model.Actor
			kind     string
			action   string
			stack    []byte
			pathJSON []byte
		)
		if err := rows.Scan(
			&a.ID, &a.ConfigID, &kind, &a.HP, &a.Hunger,
			&a.Position.X, &a.Position.Y, &a.Position.Z, &a.Orientation, &a.Scale,
			&action, &a.Counter, &stack, &pathJSON, &a.Target,
		); err != nil {
			return nil, fmt.Errorf("scanning actor of ranch %s: %w", ranchID, err)
		}

		if err := decodeActor(&a, kind, action, stack, pathJSON); err != nil {
			slog.Warn("skipping malformed actor",
				"ranch", ranchID,
				"actor", a.ID,
				"error", err)
			continue
		}

		actors = append(actors, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating actors of ranch %s: %w", ranchID, err)
	}
	return actors, nil
}

// decodeActor разбирает текстовые и JSON-колонки строки в a.
func decodeActor(a *model.Actor, kind, action string, stack, pathJSON []byte) error {
	var err error
	if a.Kind, err = model.ParseActorKind(kind); err != nil {
		return err
	}
	if err := a.Action.UnmarshalText([]byte(action)); err != nil {
		return err
	}
	if err := json.Unmarshal(stack, &a.Stack); err != nil {
		return fmt.Errorf("decoding stack: %w", err)
	}
	if len(a.Stack) == 0 {
		a.Stack = nil
	}
	if pathJSON == nil {
		return nil
	}
	var states []path.State
	if err := json.Unmarshal(pathJSON, &states); err != nil {
		return fmt.Errorf("decoding path: %w", err)
	}
	if a.Path, err = path.Decode(states); err != nil {
		return fmt.Errorf("decoding path: %w", err)
	}
	return nil
}
