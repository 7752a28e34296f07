package runner

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Brandon7CC/MODELFORGE/internal/model"
	"github.com/Brandon7CC/MODELFORGE/internal/pipeline"
)

// stubClient answers every query through a reply function keyed by base
// model and call count.
type stubClient struct {
	mu       sync.Mutex
	reply    func(base string, call int) (string, error)
	calls    map[string]int
	disposes int
}

func newStubClient(reply func(base string, call int) (string, error)) *stubClient {
	return &stubClient{reply: reply, calls: map[string]int{}}
}

func (s *stubClient) Create(ctx context.Context, handle model.Handle) error { return nil }

func (s *stubClient) Query(ctx context.Context, handle model.Handle, prompt string) (string, error) {
	s.mu.Lock()
	s.calls[handle.BaseModel]++
	call := s.calls[handle.BaseModel]
	s.mu.Unlock()
	return s.reply(handle.BaseModel, call)
}

func (s *stubClient) Dispose(ctx context.Context, handle model.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposes++
	return nil
}

func (s *stubClient) callCount(base string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[base]
}

func acceptingReply(base string, call int) (string, error) {
	if base == "wizardcoder" {
		return `{"eval_result": true, "critique": ""}`, nil
	}
	return "int x = 5;", nil
}

func singleTask(name string, runCount int) *pipeline.TaskSet {
	return &pipeline.TaskSet{Tasks: []*pipeline.Task{{
		Name:      name,
		Prompt:    "Write a C statement.",
		RunCount:  runCount,
		Agent:     pipeline.Role{BaseModel: "mistral", Temperature: 0.7},
		Evaluator: pipeline.Role{BaseModel: "wizardcoder", Temperature: 0.2},
		State:     pipeline.StatePending,
	}}}
}

func paramsFor(client *stubClient, outputPath string) Params {
	return Params{
		OutputPath: outputPath,
		Deps: Deps{
			Factory: func(handle model.Handle) (model.Client, error) { return client, nil },
			Namer:   model.NewNamer(),
			RunID:   func() (string, error) { return "test-run", nil },
		},
	}
}

// snapshotProbe checks the snapshot file at every repetition boundary.
type snapshotProbe struct {
	NopRunObserver
	t    *testing.T
	path string

	positivesSeen []int
}

func (p *snapshotProbe) OnRepetitionEnd(task string, repetition int, accepted bool) {
	snaps, err := LoadSnapshot(p.path)
	if err != nil {
		p.t.Errorf("load snapshot after repetition %d: %v", repetition, err)
		return
	}
	if len(snaps) != 1 {
		p.t.Errorf("snapshot has %d tasks, want 1", len(snaps))
		return
	}
	p.positivesSeen = append(p.positivesSeen, len(snaps[0].PositiveResults))
}

func TestRunPersistsSnapshotEveryRepetition(t *testing.T) {
	client := newStubClient(acceptingReply)
	set := singleTask("c-snippet", 3)
	path := filepath.Join(t.TempDir(), "results.yaml")
	params := paramsFor(client, path)
	probe := &snapshotProbe{t: t, path: path}
	params.Deps.Observer = probe

	summary, err := Run(context.Background(), set, params)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Accepted != 3 || summary.Rejected != 0 {
		t.Fatalf("summary = %d accepted, %d rejected, want 3/0", summary.Accepted, summary.Rejected)
	}
	want := []int{1, 2, 3}
	if len(probe.positivesSeen) != len(want) {
		t.Fatalf("snapshot observations = %v, want %v", probe.positivesSeen, want)
	}
	for i := range want {
		if probe.positivesSeen[i] != want[i] {
			t.Fatalf("snapshot observations = %v, want %v", probe.positivesSeen, want)
		}
	}
}

func TestRunSummaryPerTask(t *testing.T) {
	client := newStubClient(func(base string, call int) (string, error) {
		switch base {
		case "mixtral":
			return `{"eval_result": false, "critique": "wrong"}`, nil
		case "llama2":
			return "bad code", nil
		}
		return acceptingReply(base, call)
	})
	bad := &pipeline.Task{
		Name:      "bad",
		Prompt:    "Write a C statement.",
		RunCount:  1,
		Agent:     pipeline.Role{BaseModel: "llama2", Temperature: 0.7},
		Evaluator: pipeline.Role{BaseModel: "mixtral", Temperature: 0.2},
		State:     pipeline.StatePending,
	}
	set := &pipeline.TaskSet{Tasks: append(singleTask("good", 1).Tasks, bad)}
	params := paramsFor(client, "")
	params.Ceiling = 2

	summary, err := Run(context.Background(), set, params)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Tasks) != 2 {
		t.Fatalf("task summaries = %d, want 2", len(summary.Tasks))
	}
	if summary.Tasks[0].Name != "good" || summary.Tasks[0].Accepted != 1 || summary.Tasks[0].Rejected != 0 {
		t.Fatalf("first task summary = %+v", summary.Tasks[0])
	}
	if summary.Tasks[1].Name != "bad" || summary.Tasks[1].Accepted != 0 || summary.Tasks[1].Rejected != 2 {
		t.Fatalf("second task summary = %+v", summary.Tasks[1])
	}
	if rate := summary.AcceptRate(); rate <= 0.33 || rate >= 0.34 {
		t.Fatalf("accept rate = %v, want 1/3", rate)
	}
}

func TestRunInterruptedMidTask(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := newStubClient(nil)
	client.reply = func(base string, call int) (string, error) {
		if base == "mistral" && call == 2 {
			cancel()
			return "", &model.QueryError{Name: "stub", Attempts: 1, Err: ctx.Err()}
		}
		return acceptingReply(base, call)
	}
	set := singleTask("c-snippet", 3)
	path := filepath.Join(t.TempDir(), "results.yaml")
	params := paramsFor(client, path)

	summary, err := Run(ctx, set, params)
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("err = %v, want ErrInterrupted", err)
	}
	if summary.Accepted != 1 {
		t.Fatalf("summary accepted = %d, want the one finished repetition", summary.Accepted)
	}
	snaps, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(snaps[0].PositiveResults) != 1 {
		t.Fatalf("persisted positives = %d, want 1 (aborted repetition must not persist)", len(snaps[0].PositiveResults))
	}
	if got := client.callCount("mistral"); got != 2 {
		t.Fatalf("agent calls = %d, want 2 (no attempts after cancellation)", got)
	}
}

func TestRunWithoutOutputPathSkipsPersistence(t *testing.T) {
	client := newStubClient(acceptingReply)
	set := singleTask("c-snippet", 1)
	params := paramsFor(client, "")

	if _, err := Run(context.Background(), set, params); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunRequiresFactory(t *testing.T) {
	set := singleTask("c-snippet", 1)
	_, err := Run(context.Background(), set, Params{})
	if err == nil {
		t.Fatal("Run succeeded without a factory")
	}
}

func TestRunUsesInjectedClockAndID(t *testing.T) {
	client := newStubClient(acceptingReply)
	set := singleTask("c-snippet", 1)
	params := paramsFor(client, "")
	base := time.Date(2024, 3, 9, 17, 4, 5, 0, time.UTC)
	ticks := 0
	params.Deps.Now = func() time.Time {
		ticks++
		return base.Add(time.Duration(ticks) * time.Second)
	}
	params.Deps.RunID = func() (string, error) { return "fixed-run", nil }

	summary, err := Run(context.Background(), set, params)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.RunID != "fixed-run" {
		t.Fatalf("run id = %q, want injected id", summary.RunID)
	}
	if !summary.FinishedAt.After(summary.StartedAt) {
		t.Fatalf("finished %v not after started %v", summary.FinishedAt, summary.StartedAt)
	}
}

type fakeSweeper struct {
	removed int
	err     error
}

func (f *fakeSweeper) Sweep(ctx context.Context) (int, error) { return f.removed, f.err }

type warningRecorder struct {
	NopRunObserver
	warnings []string
}

func (w *warningRecorder) OnWarning(task string, message string) {
	w.warnings = append(w.warnings, message)
}

func TestCleanupDisposesAndSweeps(t *testing.T) {
	registry := model.NewRegistry()
	client := newStubClient(acceptingReply)
	namer := model.NewNamer()
	for _, base := range []string{"mistral", "llama2"} {
		handle, err := namer.Derive(base, 0.5, "")
		if err != nil {
			t.Fatalf("Derive: %v", err)
		}
		registry.Add(handle, client)
	}
	sweeper := &fakeSweeper{removed: 3}

	disposed, swept := Cleanup(context.Background(), registry, sweeper, nil)
	if disposed != 2 || swept != 3 {
		t.Fatalf("Cleanup = %d disposed, %d swept, want 2 and 3", disposed, swept)
	}
	if client.disposes != 2 {
		t.Fatalf("client disposes = %d, want 2", client.disposes)
	}
}

func TestCleanupSurfacesSweepFailure(t *testing.T) {
	sweeper := &fakeSweeper{err: errors.New("runtime unreachable")}
	recorder := &warningRecorder{}

	disposed, swept := Cleanup(context.Background(), nil, sweeper, recorder)
	if disposed != 0 || swept != 0 {
		t.Fatalf("Cleanup = %d disposed, %d swept, want zeros", disposed, swept)
	}
	if len(recorder.warnings) != 1 {
		t.Fatalf("warnings = %q, want one sweep warning", recorder.warnings)
	}
}
