package usecase

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"ArxivDigest/internal/domain"
	"ArxivDigest/internal/logging"
)

// sections returns the report without its update section.
func sections(content string) string {
	if i := strings.Index(content, "## update"); i >= 0 {
		return content[:i]
	}
	return content
}

func TestProcessDayWritesPartitionedReport(t *testing.T) {
	t.Parallel()

	h := newHarness(&fakeLibrary{known: map[string]bool{"10.48550/arXiv.2511.00002": true}})
	day := dayOf(2025, time.November, 3)
	h.source.records["2025-11-03"] = []domain.Record{rec("arXiv:2511.00002"), rec("arXiv:2511.00001")}

	res, err := h.pipeline.ProcessDay(context.Background(), day, true)
	if err != nil {
		t.Fatalf("ProcessDay: %v", err)
	}

	want := domain.DayResult{
		Day:          day,
		Outcome:      domain.OutcomePersisted,
		Total:        2,
		Collected:    1,
		NotCollected: 1,
		Path:         "quant-ph/2025/11/03.md",
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}

	content := h.store.get(day)
	collected := strings.Index(content, "## collected")
	notCollected := strings.Index(content, "## not collected")
	first := strings.Index(content, "### arXiv:2511.00002")
	second := strings.Index(content, "### arXiv:2511.00001")
	if !(collected < first && first < notCollected && notCollected < second) {
		t.Fatalf("blocks in wrong sections:\n%s", content)
	}
	if !strings.Contains(content, "There are a total of 2 articles today.") {
		t.Fatalf("missing total line:\n%s", content)
	}
	if strings.Contains(content, "## update") {
		t.Fatalf("first run must not have an update section:\n%s", content)
	}
	if len(h.notifier.messages) != 0 {
		t.Fatalf("first run must not notify, got %v", h.notifier.messages)
	}
}

func TestProcessDayRerunIsIdempotent(t *testing.T) {
	t.Parallel()

	h := newHarness(&fakeLibrary{})
	day := dayOf(2025, time.November, 4)
	h.source.records["2025-11-04"] = []domain.Record{rec("arXiv:2511.00001"), rec("arXiv:2511.00002")}

	ctx := context.Background()
	if _, err := h.pipeline.ProcessDay(ctx, day, false); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first := h.store.get(day)

	res, err := h.pipeline.ProcessDay(ctx, day, false)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	second := h.store.get(day)

	if diff := cmp.Diff(sections(first), sections(second)); diff != "" {
		t.Fatalf("sections changed between runs (-first +second):\n%s", diff)
	}
	if strings.Contains(second, "## update") || len(res.New) != 0 {
		t.Fatalf("rerun reported new records: %v\n%s", res.New, second)
	}
}

func TestProcessDayReportsNewRecords(t *testing.T) {
	t.Parallel()

	h := newHarness(&fakeLibrary{})
	day := dayOf(2025, time.November, 5)
	ctx := context.Background()

	h.source.records["2025-11-05"] = []domain.Record{rec("arXiv:2511.00001"), rec("arXiv:2511.00002")}
	if _, err := h.pipeline.ProcessDay(ctx, day, true); err != nil {
		t.Fatalf("first run: %v", err)
	}

	h.source.records["2025-11-05"] = append(h.source.records["2025-11-05"], rec("arXiv:2511.00003"))
	res, err := h.pipeline.ProcessDay(ctx, day, true)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if diff := cmp.Diff([]string{"arXiv:2511.00003"}, res.New); diff != "" {
		t.Fatalf("novelty mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasSuffix(h.store.get(day), "## update\n\n- [ ] [[#arXiv:2511.00003]]\n") {
		t.Fatalf("update section missing:\n%s", h.store.get(day))
	}
	want := []string{"1 new in quant-ph on 2025-11-05\narXiv:2511.00003"}
	if diff := cmp.Diff(want, h.notifier.messages); diff != "" {
		t.Fatalf("notification mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessDayHonoursCompletedChecklist(t *testing.T) {
	t.Parallel()

	h := newHarness(&fakeLibrary{})
	day := dayOf(2025, time.November, 6)
	h.store.files[h.store.Path(day)] = []byte("### arXiv:2511.00001\n\n## update\n\n- [x] [[#arXiv:2511.00002]]\n")
	h.source.records["2025-11-06"] = []domain.Record{rec("arXiv:2511.00001"), rec("arXiv:2511.00002")}

	res, err := h.pipeline.ProcessDay(context.Background(), day, true)
	if err != nil {
		t.Fatalf("ProcessDay: %v", err)
	}
	if len(res.New) != 0 {
		t.Fatalf("checked-off record reported as new: %v", res.New)
	}
}

func TestProcessDayReadsPriorBeforeWriting(t *testing.T) {
	t.Parallel()

	h := newHarness(&fakeLibrary{})
	day := dayOf(2025, time.November, 7)
	h.source.records["2025-11-07"] = []domain.Record{rec("arXiv:2511.00001")}

	if _, err := h.pipeline.ProcessDay(context.Background(), day, true); err != nil {
		t.Fatalf("ProcessDay: %v", err)
	}
	want := []string{"load quant-ph/2025/11/07.md", "save quant-ph/2025/11/07.md"}
	if diff := cmp.Diff(want, h.store.ops); diff != "" {
		t.Fatalf("store operations (-want +got):\n%s", diff)
	}
}

func TestProcessDayUnreadablePriorCountsAsPriorRun(t *testing.T) {
	t.Parallel()

	h := newHarness(&fakeLibrary{})
	h.store.loadErr = errors.New("permission denied")
	day := dayOf(2025, time.November, 8)
	h.source.records["2025-11-08"] = []domain.Record{rec("arXiv:2511.00002"), rec("arXiv:2511.00001")}

	res, err := h.pipeline.ProcessDay(context.Background(), day, true)
	if err != nil {
		t.Fatalf("ProcessDay: %v", err)
	}
	if diff := cmp.Diff([]string{"arXiv:2511.00001", "arXiv:2511.00002"}, res.New); diff != "" {
		t.Fatalf("novelty mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessDayEmptyAndFailedFetchWriteNothing(t *testing.T) {
	t.Parallel()

	const emptyLine = `level=INFO msg="no records listed, nothing written"`
	tests := []struct {
		name    string
		err     error
		single  bool
		logged  string
		omitted string
	}{
		{name: "empty month day is silent", single: false, omitted: "no records listed"},
		{name: "empty single day is logged", single: true, logged: emptyLine},
		{name: "fetch failure", err: errFetch, single: true, logged: "fetch unavailable"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			h := newHarnessWithLogger(&fakeLibrary{}, logging.NewWithWriter(&buf, "info"))
			h.source.err = tt.err
			res, err := h.pipeline.ProcessDay(context.Background(), dayOf(2025, time.November, 9), tt.single)
			if err != nil {
				t.Fatalf("ProcessDay: %v", err)
			}
			if res.Outcome != domain.OutcomeEmpty {
				t.Fatalf("outcome = %s", res.Outcome)
			}
			if len(h.store.ops) != 0 {
				t.Fatalf("store touched: %v", h.store.ops)
			}
			if tt.logged != "" && !strings.Contains(buf.String(), tt.logged) {
				t.Fatalf("log missing %q:\n%s", tt.logged, buf.String())
			}
			if tt.omitted != "" && strings.Contains(buf.String(), tt.omitted) {
				t.Fatalf("log should not contain %q:\n%s", tt.omitted, buf.String())
			}
		})
	}
}

func TestProcessDayTotalCountsRenderedRecords(t *testing.T) {
	t.Parallel()

	h := newHarness(&fakeLibrary{})
	day := dayOf(2025, time.November, 12)
	h.source.records["2025-11-12"] = []domain.Record{rec("arXiv:2511.00001"), rec("arXiv:2511.00001"), rec("")}

	res, err := h.pipeline.ProcessDay(context.Background(), day, true)
	if err != nil {
		t.Fatalf("ProcessDay: %v", err)
	}
	if res.Total != 1 {
		t.Fatalf("Total = %d, want 1", res.Total)
	}
	if content := h.store.get(day); !strings.Contains(content, "There are a total of 1 articles today.") {
		t.Fatalf("header disagrees with body:\n%s", content)
	}
}

func TestProcessDayWithoutUsableIDsWritesNothing(t *testing.T) {
	t.Parallel()

	h := newHarness(&fakeLibrary{})
	h.source.records["2025-11-13"] = []domain.Record{rec(""), rec("")}

	res, err := h.pipeline.ProcessDay(context.Background(), dayOf(2025, time.November, 13), true)
	if err != nil {
		t.Fatalf("ProcessDay: %v", err)
	}
	if res.Outcome != domain.OutcomeEmpty {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	for _, op := range h.store.ops {
		if strings.HasPrefix(op, "save") {
			t.Fatalf("store written: %v", h.store.ops)
		}
	}
}

func TestProcessDaySameDayRunsDoNotInterleave(t *testing.T) {
	t.Parallel()

	h := newHarness(&fakeLibrary{})
	day := dayOf(2025, time.November, 14)
	h.source.records["2025-11-14"] = []domain.Record{rec("arXiv:2511.00001"), rec("arXiv:2511.00002")}

	entered := make(chan struct{})
	release := make(chan struct{})
	h.store.onLoad = func(n int) {
		if n == 1 {
			close(entered)
			<-release
		}
	}

	ctx := context.Background()
	results := make([]domain.DayResult, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	run := func(i int) {
		defer wg.Done()
		results[i], errs[i] = h.pipeline.ProcessDay(ctx, day, true)
	}

	wg.Add(1)
	go run(0)
	<-entered

	wg.Add(1)
	go run(1)
	deadline := time.Now().Add(2 * time.Second)
	for h.source.callCount() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("second run never fetched")
		}
		time.Sleep(time.Millisecond)
	}
	// Give the second run time to reach the store if nothing holds it back.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	path := h.store.Path(day)
	want := []string{"load " + path, "save " + path, "load " + path, "save " + path}
	if diff := cmp.Diff(want, h.store.ops); diff != "" {
		t.Fatalf("store operations interleaved (-want +got):\n%s", diff)
	}
	if len(results[0].New) != 0 || len(results[1].New) != 0 {
		t.Fatalf("same-day reruns reported new records: %v, %v", results[0].New, results[1].New)
	}
	if strings.Contains(h.store.get(day), "## update") {
		t.Fatalf("second run wrote an update section:\n%s", h.store.get(day))
	}
}

func TestProcessDaySaveFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(&fakeLibrary{})
	h.store.saveErr = errors.New("disk full")
	day := dayOf(2025, time.November, 10)
	h.source.records["2025-11-10"] = []domain.Record{rec("arXiv:2511.00001")}

	res, err := h.pipeline.ProcessDay(context.Background(), day, true)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected save error, got %v", err)
	}
	if res.Outcome != domain.OutcomeEmpty {
		t.Fatalf("outcome = %s", res.Outcome)
	}
}

func TestNotificationFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	h := newHarness(&fakeLibrary{})
	h.notifier.err = errors.New("telegram down")
	day := dayOf(2025, time.November, 11)
	h.store.files[h.store.Path(day)] = []byte("### arXiv:2511.00001\n")
	h.source.records["2025-11-11"] = []domain.Record{rec("arXiv:2511.00001"), rec("arXiv:2511.00002")}

	res, err := h.pipeline.ProcessDay(context.Background(), day, true)
	if err != nil {
		t.Fatalf("ProcessDay: %v", err)
	}
	if res.Outcome != domain.OutcomePersisted || len(h.notifier.messages) != 1 {
		t.Fatalf("unexpected result %+v, messages %v", res, h.notifier.messages)
	}
}
