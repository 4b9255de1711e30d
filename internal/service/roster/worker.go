package roster

import (
	"context"
	"sort"
	"sync"
	"time"

	"house_admin/internal/domain"
	"house_admin/internal/metrics"
	"house_admin/internal/model"

	"go.uber.org/zap"
)

const DefaultInterval = 10 * time.Minute

// Worker periodically archives expired members and exports the roster.
type Worker struct {
	logger  *zap.Logger
	Archive domain.ArchiveRepo
	Members domain.MemberRepo
	Houses  domain.HouseRepo
	// Sheet is optional; nil skips the export step.
	Sheet   domain.SheetService
	metrics *metrics.SyncMetrics
	now     func() time.Time
	timeout time.Duration

	ticker        *time.Ticker
	forceUpdateCh chan struct{}
	stopCh        chan struct{}
	doneCh        chan struct{}
	stopOnce      sync.Once
	mu            sync.Mutex
}

type Option func(*Worker)

func WithClock(now func() time.Time) Option {
	return func(w *Worker) { w.now = now }
}

func WithMetrics(m *metrics.SyncMetrics) Option {
	return func(w *Worker) { w.metrics = m }
}

// NewWorker starts the background loop. forceUpdateCh may be shared with
// producers that want an immediate refresh.
func NewWorker(archive domain.ArchiveRepo, members domain.MemberRepo, houses domain.HouseRepo, sheet domain.SheetService,
	interval time.Duration, forceUpdateCh chan struct{}, logger *zap.Logger, opts ...Option) *Worker {
	if forceUpdateCh == nil {
		forceUpdateCh = make(chan struct{}, 1)
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	w := &Worker{
		logger:        logger,
		Archive:       archive,
		Members:       members,
		Houses:        houses,
		Sheet:         sheet,
		now:           time.Now,
		timeout:       time.Minute,
		ticker:        time.NewTicker(interval),
		forceUpdateCh: forceUpdateCh,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	go w.backgroundSync()
	return w
}

func (w *Worker) backgroundSync() {
	defer close(w.doneCh)
	for {
		select {
		case <-w.ticker.C:
			w.run()
		case <-w.forceUpdateCh:
			w.run()
		case <-w.stopCh:
			w.ticker.Stop()
			return
		}
	}
}

func (w *Worker) run() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if _, err := w.Refresh(ctx); err != nil {
		w.logger.Error("roster refresh failed", zap.Error(err))
	}
}

// Refresh archives members that expired before today and exports what is
// left. It returns the number of archived members.
func (w *Worker) Refresh(ctx context.Context) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	today := model.DateOnly(w.now())
	archived, err := w.Archive.ArchiveExpiredMembers(ctx, today, model.ArchiveReasonExpired)
	if err != nil {
		return 0, err
	}
	w.metrics.Archived(archived)
	if archived > 0 {
		w.logger.Info("expired members archived", zap.Int("count", archived), zap.Time("today", today))
	}

	if w.Sheet == nil {
		return archived, nil
	}
	rows, err := w.rosterRows(ctx)
	if err != nil {
		return archived, err
	}
	if err := w.Sheet.ExportRoster(ctx, rows); err != nil {
		return archived, err
	}
	w.logger.Debug("roster exported", zap.Int("rows", len(rows)))
	return archived, nil
}

func (w *Worker) rosterRows(ctx context.Context) ([]domain.RosterRow, error) {
	houses, err := w.Houses.ListHouses(ctx)
	if err != nil {
		return nil, err
	}
	numbers := make(map[uint]string, len(houses))
	for _, h := range houses {
		numbers[h.ID] = h.HouseNumber
	}

	members, err := w.Members.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.RosterRow, 0, len(members))
	for _, m := range members {
		row := domain.RosterRow{
			HouseNumber:    numbers[m.HouseID],
			MemberEmail:    m.MemberEmail,
			ExpirationDate: m.ExpirationDate,
			IsActive:       m.IsActive,
		}
		if m.Note != nil {
			row.Note = *m.Note
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].HouseNumber != rows[j].HouseNumber {
			return rows[i].HouseNumber < rows[j].HouseNumber
		}
		return rows[i].MemberEmail < rows[j].MemberEmail
	})
	return rows, nil
}

// ForceUpdate asks the loop to refresh now without waiting for the ticker.
func (w *Worker) ForceUpdate() {
	select {
	case w.forceUpdateCh <- struct{}{}:
	default:
	}
}

// Stop ends the loop and waits for a refresh in progress to finish.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.doneCh
}
