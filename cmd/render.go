package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizdeck/internal/app"
	"github.com/abhisek/quizdeck/internal/backend"
	"github.com/abhisek/quizdeck/internal/fieldstore"
	"github.com/abhisek/quizdeck/internal/interp"
	"github.com/abhisek/quizdeck/internal/layout"
	"github.com/abhisek/quizdeck/internal/layoutfile"
	"github.com/abhisek/quizdeck/internal/matrix"
	"github.com/abhisek/quizdeck/internal/screens/question"
	"github.com/abhisek/quizdeck/internal/ui/draw"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Preview a local layout file (no backend, no database)",
	Long: `Render a question layout from a JSON file.

This is a developer tool for authoring layouts. The file may hold a full
question envelope or a bare layout. Submit and preview are unavailable since
nothing can grade a local file. With --watch the screen reloads whenever the
file changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		view, _ := cmd.Flags().GetString("view")
		plain, _ := cmd.Flags().GetBool("plain")
		width, _ := cmd.Flags().GetInt("width")
		watch, _ := cmd.Flags().GetBool("watch")

		if plain {
			return renderPlain(os.Stdout, path, view, width)
		}

		closeLog, err := setupLogging()
		if err != nil {
			return err
		}
		defer closeLog()

		deps := question.Deps{Client: backend.NewFileClient(path)}
		if watch {
			w, err := layoutfile.Watch(path, layoutfile.DefaultDebounce)
			if err != nil {
				return err
			}
			defer w.Close()
			deps.Watcher = w
		}
		return app.Run(cmd.Context(), question.New(layoutfile.TypeName(path), backend.Settings{}, deps))
	},
}

func init() {
	renderCmd.Flags().StringP("file", "f", "", "Layout JSON file (required)")
	renderCmd.Flags().String("view", "", "View to print with --plain (default: every view)")
	renderCmd.Flags().Bool("watch", false, "Reload when the file changes")
	renderCmd.Flags().Bool("plain", false, "Print the rendered layout to stdout and exit")
	renderCmd.Flags().Int("width", 80, "Width used by --plain")
	_ = renderCmd.MarkFlagRequired("file")
}

// renderPlain prints one view, or every view in step order, of the layout
// at path with no styling.
func renderPlain(w io.Writer, path, view string, width int) error {
	q, err := layoutfile.Load(path)
	if err != nil {
		return err
	}
	l := q.Layout

	views := l.ViewNames()
	if view != "" {
		if !l.Has(view) {
			return fmt.Errorf("view %q not found (have %s)", view, strings.Join(views, ", "))
		}
		views = []string{view}
	}

	st := fieldstore.New()
	var seeder matrix.Seeder
	for i, name := range views {
		interp.Mount(l, name, st, &seeder)
		root := interp.Render(l, name, interp.Env{
			Store:    st,
			ReadOnly: name == layout.LastView,
		})
		if i > 0 {
			root.Text = ""
		}
		fmt.Fprintf(w, "── %s ──\n", name)
		fmt.Fprintln(w, ansi.Strip(draw.Render(root, draw.Options{Width: width})))
		fmt.Fprintln(w)
	}
	return nil
}
