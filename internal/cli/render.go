package cli

import (
	"fmt"
	"strings"

	"github.com/RevCBH/mergetrain/internal/git"
	"github.com/RevCBH/mergetrain/internal/playbook"
	"github.com/RevCBH/mergetrain/internal/train"
	"github.com/charmbracelet/lipgloss"
)

// Styles contains the lipgloss styles for text reports
type Styles struct {
	Title    lipgloss.Style
	Branch   lipgloss.Style
	Hash     lipgloss.Style
	Label    lipgloss.Style
	Muted    lipgloss.Style
	Conflict lipgloss.Style
	Clean    lipgloss.Style
	Note     lipgloss.Style
}

// DefaultStyles returns the default report styles
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Branch:   lipgloss.NewStyle().Bold(true),
		Hash:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Label:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Conflict: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Clean:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Note:     lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Italic(true),
	}
}

const arrow = " → "

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func (s Styles) commits(b *strings.Builder, indent string, commits []git.Commit) {
	for _, c := range commits {
		fmt.Fprintf(b, "%s%s %s\n", indent, s.Hash.Render(c.Hash), c.Message)
	}
}

// RenderPlan formats a merge plan as a text report
func (s Styles) RenderPlan(plan *train.MergePlan) string {
	var b strings.Builder

	chain := append([]string{plan.SourceBranch}, plan.TargetBranches...)
	fmt.Fprintf(&b, "%s %s\n", s.Title.Render("Merge train:"), strings.Join(chain, arrow))
	fmt.Fprintf(&b, "%s %s\n\n", s.Label.Render("Current branch:"), currentOrDetached(plan.CurrentBranch))

	if len(plan.Merges) == 0 {
		b.WriteString(s.Muted.Render("No target branches; nothing to merge.") + "\n")
		return b.String()
	}

	for i, hop := range plan.Merges {
		fmt.Fprintf(&b, "%2d. %s%s%s  ", i+1,
			s.Branch.Render(hop.FromBranch), arrow, s.Branch.Render(hop.IntoBranch))
		if hop.CommitCount == 0 {
			b.WriteString(s.Clean.Render("up to date") + "\n")
			continue
		}
		b.WriteString(s.Label.Render("("+plural(hop.CommitCount, "commit")+")") + "\n")
		s.commits(&b, "      ", hop.Commits)
	}
	return b.String()
}

// RenderContext formats a merge context as a text report
func (s Styles) RenderContext(mc *train.MergeContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s%s%s\n", s.Title.Render("Merge context:"),
		s.Branch.Render(mc.MergeBranch), arrow, s.Branch.Render(mc.IntoBranch))
	fmt.Fprintf(&b, "%s %s   %s %s\n\n",
		s.Label.Render("Merge base:"), s.Hash.Render(mc.MergeBase),
		s.Label.Render("Current branch:"), currentOrDetached(mc.CurrentBranch))

	sum := mc.Summary
	fmt.Fprintf(&b, "%s source %d, target %d\n", s.Label.Render("Commits since base:"),
		sum.SourceCommitCount, sum.TargetCommitCount)
	fmt.Fprintf(&b, "%s source %d, target %d\n", s.Label.Render("Files changed:     "),
		sum.SourceFilesCount, sum.TargetFilesCount)

	if len(mc.PotentialConflicts) == 0 {
		b.WriteString("\n" + s.Clean.Render("No files changed on both sides.") + "\n")
	} else {
		fmt.Fprintf(&b, "\n%s\n", s.Conflict.Render(
			fmt.Sprintf("Potential conflicts (%d):", sum.ConflictCount)))
		for _, f := range mc.PotentialConflicts {
			fmt.Fprintf(&b, "  %s %s\n", s.Conflict.Render("!"), f)
		}
	}

	if d := mc.ContextDetails; d != nil {
		s.side(&b, "Source", mc.MergeBranch, d.RecentSourceCommits, d.SourceFilesChanged)
		s.side(&b, "Target", mc.IntoBranch, d.RecentTargetCommits, d.TargetFilesChanged)
	}

	if mc.Note != "" {
		fmt.Fprintf(&b, "\n%s\n", s.Note.Render(mc.Note))
	}
	return b.String()
}

func (s Styles) side(b *strings.Builder, label, branch string, commits []git.Commit, files train.FilesChanged) {
	fmt.Fprintf(b, "\n%s %s\n", s.Title.Render(label+":"), s.Branch.Render(branch))
	if len(commits) > 0 {
		b.WriteString(s.Label.Render("  Recent commits:") + "\n")
		s.commits(b, "    ", commits)
	}
	if len(files.NonConflicting) > 0 {
		b.WriteString(s.Label.Render("  Other files:") + "\n")
		for _, f := range files.NonConflicting {
			fmt.Fprintf(b, "    %s\n", f)
		}
	}
	if files.Truncated {
		b.WriteString("    " + s.Muted.Render("(more files not shown)") + "\n")
	}
}

// RenderPlaybook formats the playbook as a text report
func (s Styles) RenderPlaybook(pb *playbook.Playbook) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n\n", s.Title.Render("Conflict resolution playbook"),
		s.Muted.Render("v"+pb.Version))
	if pb.CorePrinciple != "" {
		fmt.Fprintf(&b, "%s\n\n", s.Note.Render(pb.CorePrinciple))
	}

	for _, r := range pb.Rules {
		fmt.Fprintf(&b, "%s\n", s.Branch.Render(fmt.Sprintf("%d. %s", r.Number, r.Name)))
		for _, g := range r.Guidelines {
			fmt.Fprintf(&b, "   - %s\n", g)
		}
		b.WriteString("\n")
	}

	list := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "%s\n", s.Title.Render(title))
		for _, item := range items {
			fmt.Fprintf(&b, "   - %s\n", item)
		}
		b.WriteString("\n")
	}
	list("Validation", pb.ValidationPolicy)
	list("Workflow", pb.WorkflowPolicy)

	if len(pb.Examples) > 0 {
		fmt.Fprintf(&b, "%s\n", s.Title.Render("Examples"))
		for _, ex := range pb.Examples {
			rules := make([]string, len(ex.PlaybookRules))
			for i, n := range ex.PlaybookRules {
				rules[i] = fmt.Sprintf("#%d", n)
			}
			fmt.Fprintf(&b, "   %s %s %s\n", s.Branch.Render(ex.ID), ex.Scenario,
				s.Muted.Render("(rules "+strings.Join(rules, ", ")+")"))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func currentOrDetached(branch string) string {
	if branch == "" {
		return "(detached HEAD)"
	}
	return branch
}
