package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
)

func startTestPipeline(t *testing.T, bus Broadcaster) (*Service, *Repo) {
	t.Helper()
	db := openTestDB(t)
	repo := NewRepo(db)
	cl := NewHeuristicClassifier(1)

	// Zero delay scale: ordering is preserved, latency is not simulated.
	p := NewPipeline(repo, bus, cl, zap.NewNop(), 0, 0)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		p.Wait()
	})
	p.Start(ctx, 2)

	return NewService(repo, p, 0), repo
}

func waitForStage(t *testing.T, svc *Service, id string, stage Stage) *Inquiry {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		inq, err := svc.GetInquiry(context.Background(), id)
		if err != nil {
			t.Fatalf("get inquiry: %v", err)
		}
		if inq.Stage == stage {
			return inq
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("inquiry %s never reached stage %s", id, stage)
	return nil
}

func waitForEvents(t *testing.T, bus *recordingBus, id string, n int) []Inquiry {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if evs := bus.eventsFor(id); len(evs) >= n {
			return evs
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("inquiry %s: expected %d events, got %d", id, n, len(bus.eventsFor(id)))
	return nil
}

func TestPipelineSalesLifecycle(t *testing.T) {
	bus := &recordingBus{}
	svc, _ := startTestPipeline(t, bus)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	inq, err := svc.CreateInquiry(ctx, sess.SessionID, "What are our sales trends?")
	if err != nil {
		t.Fatalf("create inquiry: %v", err)
	}
	if inq.Stage != StageCreated {
		t.Fatalf("fresh inquiry stage = %s, want created", inq.Stage)
	}

	done := waitForStage(t, svc, inq.ID, StageDone)

	if done.TimeFrame != TimeFrameLabel {
		t.Fatalf("timeFrame = %q", done.TimeFrame)
	}
	if done.SQL != SQLFor(TableSales) {
		t.Fatalf("sql = %q, want fixed sales query", done.SQL)
	}
	if done.ChartType != "multiLine" && done.ChartType != "multiBar" {
		t.Fatalf("chartType = %q", done.ChartType)
	}
	if len(done.TableData) != 12 {
		t.Fatalf("tableData rows = %d, want 12", len(done.TableData))
	}
	if done.TextualAnswer != NarrativeFor(TableSales) {
		t.Fatalf("textualAnswer = %q", done.TextualAnswer)
	}
	if done.ChartConfig == nil || done.ChartConfig.XAxis.Key != "month" {
		t.Fatalf("chartConfig = %+v", done.ChartConfig)
	}

	events := waitForEvents(t, bus, inq.ID, 6)
	if len(events) != 6 {
		t.Fatalf("broadcast count = %d, want exactly 6", len(events))
	}

	wantStages := []Stage{StageCreated, StageProcessing, StageProcessing, StageProcessing, StageProcessing, StageDone}
	for i, ev := range events {
		if ev.Stage != wantStages[i] {
			t.Fatalf("event %d stage = %s, want %s", i, ev.Stage, wantStages[i])
		}
	}

	// Fields appear at their phase and are never cleared afterwards.
	if events[1].TimeFrame != "" {
		t.Fatalf("timeFrame set before its phase")
	}
	if events[2].TimeFrame != TimeFrameLabel || events[2].SQL != "" {
		t.Fatalf("event 2 fields: timeFrame=%q sql=%q", events[2].TimeFrame, events[2].SQL)
	}
	if events[3].SQL == "" || len(events[3].TableData) != 0 {
		t.Fatalf("event 3 fields: sql=%q rows=%d", events[3].SQL, len(events[3].TableData))
	}
	if len(events[4].TableData) == 0 || events[4].TextualAnswer != "" {
		t.Fatalf("event 4 fields: rows=%d answer=%q", len(events[4].TableData), events[4].TextualAnswer)
	}
	if events[5].TextualAnswer == "" || events[5].TimeFrame == "" || events[5].SQL == "" {
		t.Fatalf("terminal event lost earlier fields: %+v", events[5])
	}

	for i := 1; i < len(events); i++ {
		if events[i].UpdatedAt.Before(events[i-1].UpdatedAt) {
			t.Fatalf("updated timestamp went backwards between events %d and %d", i-1, i)
		}
	}
}

func TestPipelineConcurrentInquiries(t *testing.T) {
	bus := &recordingBus{}
	svc, _ := startTestPipeline(t, bus)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	questions := []string{
		"sales per region",
		"top customer accounts",
		"product line performance",
		"how did revenue develop",
	}
	ids := make([]string, 0, len(questions))
	for _, q := range questions {
		inq, err := svc.CreateInquiry(ctx, sess.SessionID, q)
		if err != nil {
			t.Fatalf("create inquiry %q: %v", q, err)
		}
		ids = append(ids, inq.ID)
	}

	for _, id := range ids {
		waitForStage(t, svc, id, StageDone)
		events := waitForEvents(t, bus, id, 6)
		if len(events) != 6 {
			t.Fatalf("inquiry %s: %d events", id, len(events))
		}
		// Per-inquiry order holds even with interleaved workers.
		wantStages := []Stage{StageCreated, StageProcessing, StageProcessing, StageProcessing, StageProcessing, StageDone}
		for i, ev := range events {
			if ev.Stage != wantStages[i] {
				t.Fatalf("inquiry %s event %d stage = %s", id, i, ev.Stage)
			}
		}
	}
}

func TestPipelineStageNeverRegresses(t *testing.T) {
	bus := &recordingBus{}
	svc, _ := startTestPipeline(t, bus)
	ctx := context.Background()

	sess, _ := svc.CreateSession(ctx)
	inq, err := svc.CreateInquiry(ctx, sess.SessionID, "client churn")
	if err != nil {
		t.Fatalf("create inquiry: %v", err)
	}

	rank := map[Stage]int{StageCreated: 0, StageProcessing: 1, StageDone: 2}
	last := -1
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		got, err := svc.GetInquiry(ctx, inq.ID)
		if err != nil {
			t.Fatalf("get inquiry: %v", err)
		}
		r, ok := rank[got.Stage]
		if !ok {
			t.Fatalf("undefined stage %q", got.Stage)
		}
		if r < last {
			t.Fatalf("stage regressed from rank %d to %d", last, r)
		}
		last = r
		if got.Stage == StageDone {
			return
		}
	}
	t.Fatalf("inquiry never finished")
}

func TestPipelineManyInquiriesAllFinish(t *testing.T) {
	bus := &nopBus{}
	svc, _ := startTestPipeline(t, bus)
	ctx := context.Background()

	sess, _ := svc.CreateSession(ctx)
	var ids []string
	for i := 0; i < 20; i++ {
		inq, err := svc.CreateInquiry(ctx, sess.SessionID, fmt.Sprintf("question %d about profit", i))
		if err != nil {
			t.Fatalf("create inquiry %d: %v", i, err)
		}
		ids = append(ids, inq.ID)
	}
	for _, id := range ids {
		waitForStage(t, svc, id, StageDone)
	}
}
