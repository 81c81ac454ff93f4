package notes_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"vaultcapture/internal/jobs"
	"vaultcapture/internal/notes"
	"vaultcapture/internal/publisher"
	"vaultcapture/internal/secrets"
	"vaultcapture/internal/services"
	"vaultcapture/internal/settings"
)

func sampleJob() *jobs.JobWithAssets {
	return &jobs.JobWithAssets{
		Job: jobs.Job{ID: "job-1-1", Title: "Standup", Status: jobs.StatusQueued, AssetCount: 2},
		Assets: []jobs.Asset{
			{OriginalPath: "/inbox/memo.mp3", MediaType: jobs.MediaAudio},
			{OriginalPath: "/inbox/board.png", MediaType: jobs.MediaImage},
		},
	}
}

type fakeFinder struct{ job *jobs.JobWithAssets }

func (f fakeFinder) FindJob(_ context.Context, id string) (*jobs.JobWithAssets, error) {
	if f.job == nil || f.job.ID != id {
		return nil, nil
	}
	return f.job, nil
}

type fakeSettings struct{ s settings.Settings }

func (f fakeSettings) Get(context.Context) (settings.Settings, error) { return f.s, nil }

type fakePublisher struct {
	title    string
	markdown string
}

func (f *fakePublisher) Publish(_ context.Context, _ settings.Settings, title, markdown string) (publisher.Result, error) {
	f.title = title
	f.markdown = markdown
	return publisher.Result{NotePath: "/vault/AI Captures/" + title + ".md", Method: publisher.MethodCLI}, nil
}

type fakeSummarizer struct {
	key   string
	model string
	files []string
}

func (f *fakeSummarizer) GenerateSummary(_ context.Context, apiKey, model string, files []string) (string, error) {
	f.key, f.model, f.files = apiKey, model, files
	return "- alpha\n- beta\n- gamma", nil
}

type fakeKeys struct {
	key    string
	source secrets.Source
}

func (f fakeKeys) Resolve() (string, secrets.Source, error) { return f.key, f.source, nil }

func newService(pub *fakePublisher, sum *fakeSummarizer, keys fakeKeys) *notes.Service {
	return notes.NewService(
		fakeFinder{job: sampleJob()},
		fakeSettings{s: settings.Settings{Model: "gemini-2.5-flash", WriteMode: settings.WriteCLIFallback}},
		pub, sum, keys, nil,
	)
}

func TestRenderWithoutSummary(t *testing.T) {
	got := notes.Render(sampleJob(), "")
	want := "---\n" +
		"title: \"[AI Capture] Standup\"\n" +
		"tags: [ai-capture, obsidian-agent]\n" +
		"---\n\n" +
		"## Key Insights\n" +
		"- No summary was generated for this batch.\n" +
		"- Run `vaultcapture summarize` or publish with --summarize to add one.\n\n" +
		"## Source Files\n" +
		"- /inbox/memo.mp3 (audio)\n" +
		"- /inbox/board.png (image)\n"
	if got != want {
		t.Fatalf("unexpected markdown:\n%s", got)
	}
}

func TestRenderQuotesTitle(t *testing.T) {
	job := sampleJob()
	job.Title = `Say "hi"`
	got := notes.Render(job, "- one")
	if !strings.Contains(got, `title: "[AI Capture] Say \"hi\""`) {
		t.Fatalf("title not escaped:\n%s", got)
	}
	if !strings.Contains(got, "## Key Insights\n- one\n\n") {
		t.Fatalf("summary not rendered:\n%s", got)
	}
}

func TestPublishWithSummary(t *testing.T) {
	pub := &fakePublisher{}
	sum := &fakeSummarizer{}
	svc := newService(pub, sum, fakeKeys{key: "k", source: secrets.SourceKeychain})

	result, err := svc.Publish(context.Background(), " job-1-1 ", true)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if result.Method != publisher.MethodCLI || pub.title != "Standup" {
		t.Fatalf("unexpected publish: %+v title=%q", result, pub.title)
	}
	if !strings.Contains(pub.markdown, "- alpha\n- beta\n- gamma\n") {
		t.Fatalf("summary missing from published note:\n%s", pub.markdown)
	}
	if sum.key != "k" || sum.model != "gemini-2.5-flash" {
		t.Fatalf("unexpected summarizer call: %+v", sum)
	}
	if strings.Join(sum.files, ",") != "memo.mp3,board.png" {
		t.Fatalf("expected base names, got %v", sum.files)
	}
}

func TestPreviewSkipsSummarizerByDefault(t *testing.T) {
	sum := &fakeSummarizer{}
	svc := newService(&fakePublisher{}, sum, fakeKeys{source: secrets.SourceMissing})

	markdown, err := svc.Preview(context.Background(), "job-1-1", false)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if sum.model != "" {
		t.Fatal("summarizer should not be called")
	}
	if !strings.Contains(markdown, "No summary was generated") {
		t.Fatalf("expected placeholder insights:\n%s", markdown)
	}
}

func TestSummarizeRequiresKey(t *testing.T) {
	svc := newService(&fakePublisher{}, &fakeSummarizer{}, fakeKeys{source: secrets.SourceMissing})
	_, err := svc.Summarize(context.Background(), "job-1-1")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestUnknownJobIsNotFound(t *testing.T) {
	svc := newService(&fakePublisher{}, &fakeSummarizer{}, fakeKeys{})
	_, err := svc.Preview(context.Background(), "job-9-9", false)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if services.ExitCode(err) != 2 {
		t.Fatalf("expected exit code 2, got %d", services.ExitCode(err))
	}
}
