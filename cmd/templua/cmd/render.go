package cmd

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/user"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmarkhas/templua"
)

var renderCmd = &cobra.Command{
	Use:   "render <name>",
	Short: "Render one template to stdout against a static context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cat, fsys := newCatalog()
		descs, err := cat.Discover(cmd.Context())
		if err != nil {
			return err
		}
		var found *templua.Descriptor
		var headerPath string
		for i, d := range descs {
			if d.Name == name {
				found = &descs[i]
			}
			if d.IsHeader() {
				headerPath = d.ScriptPath
			}
		}
		if found == nil {
			return fmt.Errorf("template %q not found", name)
		}
		data, err := fs.ReadFile(fsys, found.ScriptPath)
		if err != nil {
			return fmt.Errorf("%w: %q: %w", templua.ErrScriptRead, found.ScriptPath, err)
		}
		compiler := templua.NewCompiler()
		opts := []templua.BuilderOption{}
		if headerPath != "" && !found.IsHeader() {
			opts = append(opts, templua.WithHeaderSource(func() (string, error) {
				src, err := fs.ReadFile(fsys, headerPath)
				return string(src), err
			}))
		}
		builder := templua.NewEnvironmentBuilder(staticProvider{}, compiler, opts...)
		env, err := builder.Build()
		if err != nil {
			return err
		}
		out, err := compiler.Render(string(data), env)
		if err != nil {
			return err
		}
		target := writerTarget{w: cmd.OutOrStdout()}
		return target.WriteRendered(out)
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
}

// staticProvider stands in for the host's context collaborator when
// rendering from the command line.
type staticProvider struct{}

func (staticProvider) CurrentContext() (map[string]any, error) {
	now := time.Now()
	username := ""
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	wd, _ := os.Getwd()
	return map[string]any{
		"Date":    now.Format("2006-01-02"),
		"Time":    now.Format("15:04:05"),
		"User":    username,
		"WorkDir": wd,
	}, nil
}

// writerTarget writes rendered text to an io.Writer.
type writerTarget struct {
	w io.Writer
}

func (t writerTarget) WriteRendered(text string) error {
	_, err := io.WriteString(t.w, text)
	return err
}
