package cmd

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskman/taskman-cli/internal/api"
	"github.com/taskman/taskman-cli/internal/dryrun"
	"github.com/taskman/taskman-cli/internal/iocontext"
	"github.com/taskman/taskman-cli/internal/outfmt"
)

// taskOperation is the shape shared by the gateway's task methods.
type taskOperation func(g *api.Gateway, ctx context.Context, creds api.Credentials, rsn string, done api.Handler[*api.Task]) error

// taskOutput is the JSON view of a task; the decoded image is summarized.
type taskOutput struct {
	*api.Task
	Image *imageInfo `json:"image,omitempty"`
}

type imageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func newTaskOutput(task *api.Task) taskOutput {
	out := taskOutput{Task: task}
	if task.HasImage() {
		b := task.Image.Bounds()
		out.Image = &imageInfo{Width: b.Dx(), Height: b.Dy()}
	}
	return out
}

func newCurrentCmd() *cobra.Command {
	return newTaskCmd("current", "Show your current task", (*api.Gateway).CurrentTask, false,
		`  # Show the current task
  taskman current

  # Only the task name
  taskman current -q .name`)
}

func newGenerateCmd() *cobra.Command {
	return newTaskCmd("generate", "Roll a new task", (*api.Gateway).GenerateTask, true,
		`  # Generate a task and save its image
  taskman generate --save-image task.png

  # Show the request without sending it
  taskman generate --dry-run`)
}

func newCompleteCmd() *cobra.Command {
	return newTaskCmd("complete", "Complete the current task and receive the next one", (*api.Gateway).CompleteTask, true,
		`  # Complete the current task for a specific character
  taskman complete --rsn Zezima`)
}

// newTaskCmd builds a task command. Commands that change server state get
// --dry-run and leave credential checks to the server.
func newTaskCmd(use, short string, op taskOperation, mutates bool, example string) *cobra.Command {
	var (
		saveImage string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Example: example,
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			mode := validCredentials
			if mutates {
				mode = forwardCredentials
			}
			sess, err := newSession(cmd, mode)
			if err != nil {
				return err
			}

			if dryRun {
				return previewTask(cmd, sess, use)
			}

			ctx := cmd.Context()
			task, err := api.Await(ctx, func(done api.Handler[*api.Task]) error {
				return op(sess.gateway, ctx, sess.credentials(), sess.rsn, done)
			})
			if err != nil {
				return err
			}

			if saveImage != "" {
				if err := writeTaskImage(cmd, task, saveImage); err != nil {
					return err
				}
			}

			if isJSON(cmd) {
				return printJSON(cmd, newTaskOutput(task))
			}
			return renderTask(cmd, task)
		}),
	}

	cmd.Flags().StringVar(&saveImage, "save-image", "", "Write the task image to this path as PNG")
	flagAlias(cmd.Flags(), "save-image", "si")
	if mutates {
		cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the request instead of sending it")
		flagAlias(cmd.Flags(), "dry-run", "dr")
	}
	return cmd
}

// previewTask prints the request an operation would send, credentials masked.
func previewTask(cmd *cobra.Command, sess *session, name string) error {
	req, err := sess.gateway.PreviewRequest(cmd.Context(), name, sess.credentials(), sess.rsn)
	if err != nil {
		return err
	}
	headers := sess.gateway.Config().Headers
	preview, err := dryrun.FromRequest(name, req, maskSecret, headers.Password, "password")
	if err != nil {
		return err
	}
	if sess.rsn == "" {
		preview.Warnings = append(preview.Warnings, "no RSN set; use --rsn or 'taskman auth login --rsn'")
	}

	if isJSON(cmd) {
		return printJSON(cmd, preview)
	}
	preview.Write(iocontext.GetIO(cmd.Context()).Out)
	return nil
}

// writeTaskImage encodes the enriched image as PNG. A task without an image
// is reported, not treated as a failure.
func writeTaskImage(cmd *cobra.Command, task *api.Task, path string) error {
	if !task.HasImage() {
		statusf(cmd, "No image available for task %q; nothing written to %s", task.Name, path)
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	if err := png.Encode(f, task.Image); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode image: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}
	statusf(cmd, "Saved task image to %s", path)
	return nil
}

func renderTask(cmd *cobra.Command, task *api.Task) error {
	s := outfmt.NewSheet(iocontext.GetIO(cmd.Context()).Out)
	s.Field("Task", task.Name)
	s.Field("ID", task.ID)
	s.Field("Tip", strings.TrimSpace(task.Tip))
	s.Field("Wiki", task.WikiLink)
	switch {
	case task.HasImage():
		b := task.Image.Bounds()
		s.Fieldf("Image", "%dx%d", b.Dx(), b.Dy())
	case task.ImageURL != "":
		s.Field("Image", task.ImageURL+" (not loaded)")
	}
	return s.Flush()
}
