package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/LISSConsulting/LISSTech.GeminiHelper/internal/store"
)

// maxCommandWidth bounds command columns in stats tables.
const maxCommandWidth = 60

func (t Theme) newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(t.tableBorder).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return t.accentText.Padding(0, 1)
			}
			return cellStyle
		})
}

func (t Theme) section(title string) string {
	return t.accentText.Render(title)
}

// CompletionStats renders the completion history summary: totals, prefix
// and completion rankings, and the recent entries.
func (t Theme) CompletionStats(stats store.CompletionStats, recent []store.CompletionEntry) string {
	if stats.TotalCompletions == 0 {
		return dimStyle.Render("No completions logged yet.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %d\n\n", t.section("Total completions:"), stats.TotalCompletions)

	prefixes := t.newTable("Prefix", "Count")
	for _, c := range stats.MostCommonPrefixes {
		prefixes.Row(truncate(c.Value, maxCommandWidth), strconv.Itoa(c.Count))
	}
	b.WriteString(t.section("Most Used Command Prefixes") + "\n")
	b.WriteString(prefixes.String() + "\n\n")

	completions := t.newTable("Command", "Count")
	for _, c := range stats.MostCommonCompletions {
		completions.Row(truncate(c.Value, maxCommandWidth), strconv.Itoa(c.Count))
	}
	b.WriteString(t.section("Most Frequently Completed Commands") + "\n")
	b.WriteString(completions.String())

	if len(recent) > 0 {
		rt := t.newTable("Time", "Input", "Completed")
		for _, e := range recent {
			rt.Row(
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(e.Original, maxCommandWidth/2),
				truncate(e.Completed, maxCommandWidth),
			)
		}
		b.WriteString("\n\n" + t.section("Recent Completions") + "\n")
		b.WriteString(rt.String())
	}
	return b.String()
}

// LearningStats renders the question bank summary and the difficulty table
// for the most-asked questions.
func (t Theme) LearningStats(stats store.LearningStats, mostAsked []store.Question) string {
	if stats.TotalQuestions == 0 {
		return dimStyle.Render("No quiz questions yet. Create one with: gch <command> -l")
	}

	overall := t.newTable("Metric", "Value").
		Row("Total questions", strconv.Itoa(stats.TotalQuestions)).
		Row("Total attempts", strconv.Itoa(stats.TotalAttempts)).
		Row("Correct answers", strconv.Itoa(stats.TotalCorrect)).
		Row("Accuracy", fmt.Sprintf("%.1f%%", stats.AccuracyRate*100))

	var b strings.Builder
	b.WriteString(t.section("Learning Statistics") + "\n")
	b.WriteString(overall.String())

	if len(mostAsked) > 0 {
		diff := t.newTable("Command", "Asked", "Correct", "Accuracy")
		for _, q := range mostAsked {
			acc := "N/A"
			if rate, ok := q.Accuracy(); ok {
				acc = fmt.Sprintf("%.1f%%", rate*100)
			}
			diff.Row(truncate(q.CorrectAnswer, maxCommandWidth), strconv.Itoa(q.TimesAsked), strconv.Itoa(q.TimesCorrect), acc)
		}
		b.WriteString("\n\n" + t.section("Question Difficulty") + "\n")
		b.WriteString(diff.String())
	}
	return b.String()
}

// SessionHistory renders past quiz sessions, oldest first.
func (t Theme) SessionHistory(records []store.SessionRecord) string {
	if len(records) == 0 {
		return dimStyle.Render("No quiz sessions recorded yet.")
	}
	tb := t.newTable("Finished", "Score", "Percent", "Duration")
	for _, r := range records {
		tb.Row(
			r.FinishedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d/%d", r.Correct, r.Total),
			fmt.Sprintf("%.1f%%", r.Percent()),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String(),
		)
	}
	return t.section("Quiz History") + "\n" + tb.String()
}
