package analytics

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store is the slice of the repository the pipeline needs. The gorm repo
// implements it; tests may substitute anything that honors per-record
// exclusive writes.
type Store interface {
	GetInquiry(ctx context.Context, id string) (*Inquiry, error)
	PatchInquiry(ctx context.Context, id string, patch *Inquiry) error
}

// Broadcaster receives the full inquiry snapshot after every committed
// mutation. Delivery is best effort; the pipeline never blocks on it.
type Broadcaster interface {
	Broadcast(inq *Inquiry)
}

// Pipeline drives inquiries through the ordered processing phases on a
// fixed pool of workers. Each inquiry is owned by exactly one worker for
// the duration of its run, so per-inquiry commit and broadcast order is
// strict; inquiries on different workers interleave freely.
type Pipeline struct {
	store      Store
	bus        Broadcaster
	classifier Classifier
	log        *zap.Logger

	delayScale float64
	maxRun     time.Duration

	jobs chan string
	wg   sync.WaitGroup

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewPipeline(store Store, bus Broadcaster, cl Classifier, log *zap.Logger, delayScale float64, maxRun time.Duration) *Pipeline {
	return &Pipeline{
		store:      store,
		bus:        bus,
		classifier: cl,
		log:        log,
		delayScale: delayScale,
		maxRun:     maxRun,
		jobs:       make(chan string, 256),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start launches the worker pool. Workers drain until ctx is canceled.
func (p *Pipeline) Start(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 1
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(workerID int) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case id := <-p.jobs:
					p.process(ctx, id)
				}
			}
		}(i)
	}
}

// Wait blocks until all workers have exited.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Enqueue hands an inquiry to the pool. The caller returns immediately;
// processing happens in the background.
func (p *Pipeline) Enqueue(id string) {
	p.jobs <- id
}

func (p *Pipeline) process(ctx context.Context, id string) {
	log := p.log.With(zap.String("inquiry_id", id))

	if p.maxRun > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.maxRun)
		defer cancel()
	}

	inq, err := p.store.GetInquiry(ctx, id)
	if err != nil {
		log.Error("load inquiry failed", zap.Error(err))
		return
	}
	// Announce the accepted inquiry before any mutation so observers see
	// the full created -> done sequence.
	p.bus.Broadcast(inq)
	log.Info("processing started", zap.String("question", inq.Question))

	if _, err := p.commit(ctx, id, &Inquiry{Stage: StageProcessing}); err != nil {
		p.abandoned(log, "enter processing", err)
		return
	}

	// Time-frame resolution.
	if err := p.pause(ctx, 1*time.Second, 2*time.Second); err != nil {
		p.abandoned(log, "time frame", err)
		return
	}
	if _, err := p.commit(ctx, id, &Inquiry{TimeFrame: TimeFrameLabel}); err != nil {
		p.abandoned(log, "time frame", err)
		return
	}

	// Query synthesis. The classifier's verdict also feeds the data,
	// chart and narrative phases so all committed fields agree on the
	// subject table.
	cls := p.classifier.Classify(inq.Question)
	if err := p.pause(ctx, 2*time.Second, 3*time.Second); err != nil {
		p.abandoned(log, "sql synthesis", err)
		return
	}
	if _, err := p.commit(ctx, id, &Inquiry{SQL: SQLFor(cls.Table)}); err != nil {
		p.abandoned(log, "sql synthesis", err)
		return
	}
	log.Info("sql synthesized", zap.String("table", cls.Table))

	// Data retrieval and chart selection.
	if err := p.pause(ctx, 1*time.Second, 2*time.Second); err != nil {
		p.abandoned(log, "data retrieval", err)
		return
	}
	rows, chartType, chartCfg := p.resolveData(log, cls)
	patch := &Inquiry{TableData: rows, ChartType: chartType, ChartConfig: &chartCfg}
	if _, err := p.commit(ctx, id, patch); err != nil {
		p.abandoned(log, "data retrieval", err)
		return
	}
	log.Info("data retrieved", zap.Int("rows", len(rows)), zap.String("chart_type", chartType))

	// Narrative synthesis, terminal commit.
	if err := p.pause(ctx, 2500*time.Millisecond, 3500*time.Millisecond); err != nil {
		p.abandoned(log, "narrative", err)
		return
	}
	done := &Inquiry{TextualAnswer: NarrativeFor(cls.Table), Stage: StageDone}
	if _, err := p.commit(ctx, id, done); err != nil {
		p.abandoned(log, "narrative", err)
		return
	}
	log.Info("inquiry done")
}

// commit applies a patch, reloads the record and broadcasts the snapshot.
// The reload-then-broadcast order is what guarantees observers never see a
// later phase's fields before an earlier phase's broadcast.
func (p *Pipeline) commit(ctx context.Context, id string, patch *Inquiry) (*Inquiry, error) {
	if err := p.store.PatchInquiry(ctx, id, patch); err != nil {
		return nil, err
	}
	inq, err := p.store.GetInquiry(ctx, id)
	if err != nil {
		return nil, err
	}
	p.bus.Broadcast(inq)
	return inq, nil
}

// resolveData fetches the subject dataset and reconciles it with the chart
// recommendation. A failed time-series projection downgrades to the raw
// rows and a safe chart; it never aborts the run.
func (p *Pipeline) resolveData(log *zap.Logger, cls Classification) ([]Row, string, ChartConfig) {
	rows := DatasetFor(cls.Table)
	transformed, err := TransformProductRows(rows, cls.Chart)
	if err != nil {
		log.Warn("time-series projection failed, falling back to raw rows", zap.Error(err))
		return rows, "bar", FallbackChart(cls.Table)
	}
	return transformed, cls.ChartType, cls.Chart
}

func (p *Pipeline) abandoned(log *zap.Logger, phase string, err error) {
	// The inquiry stays at its last committed stage; clients observe the
	// stall as a timeout and apply their own retry policy.
	log.Error("inquiry abandoned", zap.String("phase", phase), zap.Error(err))
}

// pause simulates phase latency. With a zero delay scale it returns
// immediately (still honoring cancellation), preserving ordering only.
func (p *Pipeline) pause(ctx context.Context, min, max time.Duration) error {
	d := p.simDelay(min, max)
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (p *Pipeline) simDelay(min, max time.Duration) time.Duration {
	p.rngMu.Lock()
	defer p.rngMu.Unlock()
	d := min
	if max > min {
		d += time.Duration(p.rng.Int63n(int64(max - min)))
	}
	return time.Duration(float64(d) * p.delayScale)
}
