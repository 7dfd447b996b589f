// Package topics extends Cobra's help system with free-form documentation
// pages loaded from files, so `app help <topic>` works alongside
// `app help <command>`.
package topics

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// Topic is one documentation page loaded from the topics directory.
type Topic struct {
	Name     string
	FilePath string
	Content  string
}

// Options configures a Manager.
type Options struct {
	// Extensions lists the file extensions treated as topic files.
	// Defaults to [".txt", ".md"].
	Extensions []string

	// Renderer formats topic content for display. Defaults to PlainRenderer.
	Renderer Renderer
}

// Manager holds the topics scanned from a directory and hooks them into a
// Cobra command tree.
type Manager struct {
	dir        string
	topics     map[string]*Topic
	fallback   func(*cobra.Command, []string)
	extensions []string
	renderer   Renderer
}

// New creates a Manager for the given directory with default options.
func New(dir string) *Manager {
	return NewWithOptions(dir, Options{})
}

// NewWithOptions creates a Manager with explicit options.
func NewWithOptions(dir string, opts Options) *Manager {
	m := &Manager{
		dir:        dir,
		topics:     make(map[string]*Topic),
		extensions: opts.Extensions,
		renderer:   opts.Renderer,
	}
	if len(m.extensions) == 0 {
		m.extensions = []string{".txt", ".md"}
	}
	if m.renderer == nil {
		m.renderer = &PlainRenderer{}
	}
	return m
}

// Scan loads topic files from the manager's directory. A missing directory
// is not an error, it simply yields no topics.
func (m *Manager) Scan() error {
	if _, err := os.Stat(m.dir); os.IsNotExist(err) {
		return nil
	}

	return filepath.WalkDir(m.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if !m.supported(ext) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		name := strings.TrimSuffix(filepath.Base(path), ext)
		m.topics[name] = &Topic{Name: name, FilePath: path, Content: string(content)}
		return nil
	})
}

func (m *Manager) supported(ext string) bool {
	for _, e := range m.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Get retrieves a topic by name. Leading dashes are stripped so "--frame"
// finds the topic "frame", or failing that a file named "option-frame".
func (m *Manager) Get(name string) (*Topic, bool) {
	name = strings.TrimPrefix(name, "--")
	name = strings.TrimPrefix(name, "-")

	if topic, ok := m.topics[name]; ok {
		return topic, true
	}
	topic, ok := m.topics["option-"+name]
	return topic, ok
}

// List returns all topic names, sorted.
func (m *Manager) List() []string {
	names := make([]string, 0, len(m.topics))
	for name := range m.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Initialize wires topic-aware help into rootCmd with default options.
func Initialize(rootCmd *cobra.Command, dir string) error {
	return InitializeWithOptions(rootCmd, dir, Options{})
}

// InitializeWithOptions replaces rootCmd's help command with one that also
// resolves topics, and teaches the --help handler to do the same. Command
// names still win over topic names when both exist.
func InitializeWithOptions(rootCmd *cobra.Command, dir string, opts Options) error {
	m := NewWithOptions(dir, opts)
	if err := m.Scan(); err != nil {
		return fmt.Errorf("scan help topics: %w", err)
	}

	m.fallback = rootCmd.HelpFunc()

	helpCmd := &cobra.Command{
		Use:   "help [command or topic]",
		Short: "Help about any command or topic",
		Long: fmt.Sprintf(`Help provides help for any command or topic.
Type %[1]s help <command or topic> for full details.

To see all available topics:
  %[1]s help topics`, rootCmd.Name()),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			completions := []string{"topics"}
			for _, c := range rootCmd.Commands() {
				if !c.Hidden {
					completions = append(completions, c.Name())
				}
			}
			completions = append(completions, m.List()...)
			return completions, cobra.ShellCompDirectiveNoFileComp
		},
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				m.fallback(rootCmd, nil)
				return
			}
			if args[0] == "topics" {
				m.writeList(out, rootCmd.Name())
				return
			}
			if target, _, err := rootCmd.Find(args); err == nil && target != rootCmd {
				_ = target.Help()
				return
			}
			if topic, ok := m.Get(args[0]); ok {
				m.writeTopic(out, topic)
				return
			}
			m.fallback(rootCmd, args)
		},
	}

	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == "help" {
			rootCmd.RemoveCommand(cmd)
			break
		}
	}
	rootCmd.AddCommand(helpCmd)

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			if target, _, err := rootCmd.Find(args); err != nil || target == rootCmd {
				if topic, ok := m.Get(args[0]); ok {
					m.writeTopic(cmd.OutOrStdout(), topic)
					return
				}
			}
		}
		m.fallback(cmd, args)
	})

	return nil
}

func (m *Manager) writeTopic(out io.Writer, topic *Topic) {
	fmt.Fprint(out, m.renderer.Render(topic.Content, filepath.Ext(topic.FilePath)))
}

func (m *Manager) writeList(out io.Writer, appName string) {
	names := m.List()
	if len(names) == 0 {
		fmt.Fprintln(out, "No help topics available.")
		return
	}

	var general, options []string
	for _, name := range names {
		if strings.HasPrefix(name, "option-") {
			options = append(options, strings.TrimPrefix(name, "option-"))
		} else {
			general = append(general, name)
		}
	}

	fmt.Fprintln(out, "Available help topics:")
	if len(general) > 0 {
		fmt.Fprintln(out, "\nGeneral topics:")
		for _, name := range general {
			fmt.Fprintf(out, "  %s\n", name)
		}
	}
	if len(options) > 0 {
		fmt.Fprintln(out, "\nOption topics:")
		for _, name := range options {
			fmt.Fprintf(out, "  --%s\n", name)
		}
	}
	fmt.Fprintf(out, "\nUse '%s help <topic>' to read about a specific topic.\n", appName)
}
