package ghaction_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/pagesnap/pkg/utils/ghaction"
)

func TestWorkflow_ActionsCommands(t *testing.T) {
	var buf bytes.Buffer
	wf := ghaction.New(ghaction.WithWriter(&buf), ghaction.WithActions(true))

	end := wf.Group("Capture screenshots")
	wf.Warning("pull request files not found\nretrying")
	wf.Error("100% broken")
	end()

	gt.Value(t, buf.String()).Equal(strings.Join([]string{
		"::group::Capture screenshots",
		"::warning::pull request files not found%0Aretrying",
		"::error::100%25 broken",
		"::endgroup::",
		"",
	}, "\n"))
}

func TestWorkflow_Console(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	var buf bytes.Buffer
	wf := ghaction.New(ghaction.WithWriter(&buf), ghaction.WithActions(false))

	end := wf.Group("Upload")
	wf.Warning("slow")
	end()

	gt.Value(t, buf.String()).Equal("==> Upload\nwarning: slow\n")
}

func TestWorkflow_SetOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output")
	wf := ghaction.New(ghaction.WithOutputPath(path), ghaction.WithWriter(&bytes.Buffer{}))

	gt.NoError(t, wf.SetOutput("comment_url", "https://github.com/o/r/pull/1#issuecomment-1"))
	gt.NoError(t, wf.SetOutput("uploaded_count", "2"))
	gt.NoError(t, wf.SetOutput("body", "line1\nline2"))

	raw, err := os.ReadFile(path)
	gt.NoError(t, err)
	gt.Value(t, string(raw)).Equal(
		"comment_url=https://github.com/o/r/pull/1#issuecomment-1\n" +
			"uploaded_count=2\n" +
			"body<<EOF\nline1\nline2\nEOF\n",
	)
}

func TestWorkflow_SetOutputWithoutFile(t *testing.T) {
	wf := ghaction.New(ghaction.WithOutputPath(""))
	gt.NoError(t, wf.SetOutput("uploaded_count", "1"))
}
