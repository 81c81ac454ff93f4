// Package notes renders ingestion jobs into Obsidian markdown and drives the
// summarize and publish collaborators for them.
package notes

import (
	"strconv"
	"strings"

	"vaultcapture/internal/jobs"
)

// TitlePrefix marks notes produced by vaultcapture.
const TitlePrefix = "[AI Capture] "

var placeholderInsights = []string{
	"No summary was generated for this batch.",
	"Run `vaultcapture summarize` or publish with --summarize to add one.",
}

// Render builds the note for job. summary fills the Key Insights section;
// placeholder bullets are used when it is blank.
func Render(job *jobs.JobWithAssets, summary string) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: " + strconv.Quote(TitlePrefix+job.Title) + "\n")
	b.WriteString("tags: [ai-capture, obsidian-agent]\n")
	b.WriteString("---\n\n")

	b.WriteString("## Key Insights\n")
	if summary = strings.TrimSpace(summary); summary != "" {
		b.WriteString(summary + "\n")
	} else {
		for _, line := range placeholderInsights {
			b.WriteString("- " + line + "\n")
		}
	}
	b.WriteString("\n")

	b.WriteString("## Source Files\n")
	for _, asset := range job.Assets {
		b.WriteString("- " + asset.OriginalPath + " (" + string(asset.MediaType) + ")\n")
	}
	return b.String()
}
