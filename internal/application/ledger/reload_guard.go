package ledger

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/Escandallo-api/internal/domain"
	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
	"github.com/jhoicas/Escandallo-api/pkg/logger"
)

const reloadKey = "snapshot"

// SnapshotSource obtiene un snapshot completo del almacén remoto.
type SnapshotSource interface {
	FetchSnapshot(ctx context.Context) (*entity.Snapshot, error)
}

// RetryPolicy reintentos con backoff exponencial y jitter, solo ante domain.ErrTransient.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// ReloadGuard coordina la recarga del snapshot: una sola petición en vuelo.
// Las llamadas concurrentes reciben el mismo resultado; al terminar (bien o mal)
// la marca se limpia y la siguiente llamada lanza una recarga nueva.
// Una llamada puede unirse a una lectura iniciada antes de su propia escritura
// remota; las escrituras de arrastre hechas durante la lectura se conservan
// sobre el snapshot recibido.
type ReloadGuard struct {
	source SnapshotSource
	ledger *StockLedger
	retry  RetryPolicy
	log    *logger.Logger
	group  singleflight.Group
}

// NewReloadGuard construye el guard sobre la fuente remota y el ledger que rellena.
func NewReloadGuard(source SnapshotSource, ledger *StockLedger, retry RetryPolicy, log *logger.Logger) *ReloadGuard {
	return &ReloadGuard{
		source: source,
		ledger: ledger,
		retry:  retry,
		log:    log.Component("reload"),
	}
}

// Snapshot recarga desde el almacén remoto (compartiendo la recarga en vuelo si la hay)
// y publica el resultado en el ledger.
// La recarga compartida no se cancela si un llamador abandona la espera.
func (g *ReloadGuard) Snapshot(ctx context.Context) (*entity.Snapshot, error) {
	shared := context.WithoutCancel(ctx)
	ch := g.group.DoChan(reloadKey, func() (any, error) {
		return g.fetch(shared)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*entity.Snapshot), nil
	}
}

// Reload alias de Snapshot usado tras las mutaciones.
func (g *ReloadGuard) Reload(ctx context.Context) error {
	_, err := g.Snapshot(ctx)
	return err
}

// Current devuelve el snapshot cacheado; si el ledger aún no se cargó, recarga.
func (g *ReloadGuard) Current(ctx context.Context) (*entity.Snapshot, error) {
	if g.ledger.Loaded() {
		s, _ := g.ledger.Snapshot()
		return s, nil
	}
	return g.Snapshot(ctx)
}

// View como Current pero devuelve también la generación del ledger (clave de caché de costes).
func (g *ReloadGuard) View(ctx context.Context) (*entity.Snapshot, uint64, error) {
	if !g.ledger.Loaded() {
		if _, err := g.Snapshot(ctx); err != nil {
			return nil, 0, err
		}
	}
	s, gen := g.ledger.Snapshot()
	return s, gen, nil
}

func (g *ReloadGuard) fetch(ctx context.Context) (*entity.Snapshot, error) {
	var lastErr error
	for attempt := 0; attempt <= g.retry.MaxRetries; attempt++ {
		mark := g.ledger.WriteMark()
		snap, err := g.source.FetchSnapshot(ctx)
		if err == nil {
			snap = g.ledger.ReplaceSnapshotSince(snap, mark)
			g.log.Debug().
				Int("ingredients", len(snap.Ingredients)).
				Int("recipes", len(snap.Recipes)).
				Int("attempt", attempt+1).
				Msg("snapshot recargado")
			return snap, nil
		}
		lastErr = err
		if !domain.IsRetryable(err) || attempt == g.retry.MaxRetries {
			break
		}
		delay := g.backoff(attempt)
		g.log.Warn().Err(err).Int("attempt", attempt+1).Dur("retry_in", delay).Msg("recarga fallida, reintentando")
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	g.log.Error().Err(lastErr).Msg("recarga de snapshot fallida")
	return nil, fmt.Errorf("recargar snapshot: %w", lastErr)
}

func (g *ReloadGuard) backoff(attempt int) time.Duration {
	delay := g.retry.BaseDelay * time.Duration(1<<uint(attempt))
	if g.retry.BaseDelay > 0 {
		delay += time.Duration(rand.Int64N(int64(g.retry.BaseDelay)/2 + 1))
	}
	return delay
}
