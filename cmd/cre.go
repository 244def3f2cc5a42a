package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	opencre "github.com/AlexDev08/OpenCRE-migration"
	"github.com/AlexDev08/OpenCRE-migration/defs"
	"github.com/AlexDev08/OpenCRE-migration/internal/config"
	"github.com/AlexDev08/OpenCRE-migration/internal/jobs"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "get documents",
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "search documents",
}

func init() {
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(exportCmd())

	rootCmd.AddCommand(getCmd)
	getCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	getCmd.AddCommand(getCREsCmd())
	getCmd.AddCommand(getStandardsCmd())
	getCmd.AddCommand(getStandardNamesCmd())

	rootCmd.AddCommand(searchCmd)
	searchCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	searchCmd.AddCommand(searchTextCmd())
	searchCmd.AddCommand(searchTagsCmd())

	rootCmd.AddCommand(gapCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(warmCmd())
}

// withClient opens a client from the environment for the duration of f.
func withClient(cmd *cobra.Command, f func(ctx context.Context, c opencre.Client) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	c, err := opencre.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			logrus.Errorf("failed to close client: %v", err)
		}
	}()

	return f(ctx, c)
}

func printYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func importCmd() *cobra.Command {
	var files []string

	command := &cobra.Command{
		Use:     "import",
		Short:   "import documents from yaml files",
		Example: "opencre import -f cres.yaml -f standards.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(files) == 0 {
				return errors.New("missing: --file")
			}

			return withClient(cmd, func(ctx context.Context, c opencre.Client) error {
				for _, file := range files {
					count, err := importFile(ctx, c, file)
					if err != nil {
						return err
					}
					logrus.Infof("imported %d documents from %s", count, file)
				}
				return nil
			})
		},
	}

	command.Flags().StringSliceVarP(&files, "file", "f", nil, "yaml file with one or more documents")

	return command
}

// importFile imports every yaml document of the file.
func importFile(ctx context.Context, c opencre.Client, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	dec := yaml.NewDecoder(f)
	for {
		var doc defs.Document
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return count, nil
			}
			return count, fmt.Errorf("%s: %w", path, err)
		}

		if err := c.Import(ctx, doc); err != nil {
			return count, fmt.Errorf("%s: %s: %w", path, doc.Name, err)
		}
		count++
	}
}

func exportCmd() *cobra.Command {
	var dir string

	command := &cobra.Command{
		Use:     "export",
		Short:   "export every document as <name>.yaml",
		Example: "opencre export -d ./out",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c opencre.Client) error {
				count, err := exportDir(ctx, c, dir)
				if err != nil {
					return err
				}
				logrus.Infof("exported %d documents to %s", count, dir)
				return nil
			})
		},
	}

	command.Flags().StringVarP(&dir, "dir", "d", ".", "output directory")

	return command
}

// exportDir writes one yaml file per exported document. Standards sharing a
// name share the file, one yaml document each.
func exportDir(ctx context.Context, c opencre.Client, dir string) (int, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return 0, err
	}

	written := make(map[string]bool)
	count := 0
	err := c.Export(ctx, func(doc defs.Document) error {
		path := filepath.Join(dir, exportFileName(doc.Name))

		flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
		if written[path] {
			flags = os.O_WRONLY | os.O_APPEND
		}

		f, err := os.OpenFile(path, flags, 0o644)
		if err != nil {
			return err
		}
		if err := writeDocument(f, doc, written[path]); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}

		written[path] = true
		count++
		return nil
	})

	return count, err
}

// writeDocument writes doc to w, after a "---" separator when w already
// holds a document, and closes w. A failed close fails the write.
func writeDocument(w io.WriteCloser, doc defs.Document, separate bool) (err error) {
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()

	if separate {
		if _, err := io.WriteString(w, "---\n"); err != nil {
			return err
		}
	}
	return printYAML(w, doc)
}

func exportFileName(name string) string {
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(name)
	return name + ".yaml"
}

func getCREsCmd() *cobra.Command {
	var q opencre.CREQuery

	command := &cobra.Command{
		Use:     "cre",
		Short:   "get CREs with their links",
		Example: `opencre get cre -n "gcC%" --partial --include-only ASVS`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c opencre.Client) error {
				docs, err := c.GetCREs(ctx, q)
				if err != nil {
					return err
				}
				if docs == nil {
					return errors.New("no cre found")
				}
				return printYAML(cmd.OutOrStdout(), docs)
			})
		},
	}

	command.Flags().StringVarP(&q.Name, "name", "n", "", "cre name")
	command.Flags().StringVarP(&q.ExternalID, "id", "i", "", "cre external id")
	command.Flags().StringVar(&q.Description, "description", "", "cre description")
	command.Flags().BoolVar(&q.Partial, "partial", false, "treat the filters as LIKE patterns")
	command.Flags().StringSliceVar(&q.IncludeOnly, "include-only", nil, "only list these standards")

	return command
}

func getStandardsCmd() *cobra.Command {
	var q opencre.StandardQuery
	var page int

	command := &cobra.Command{
		Use:     "standard",
		Short:   "get standards with their CREs, one page at a time",
		Example: "opencre get standard -n ASVS -p 2",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c opencre.Client) error {
				_, docs, pagination, err := c.GetStandardsWithPagination(ctx, q, page)
				if err != nil {
					return err
				}
				return printYAML(cmd.OutOrStdout(), map[string]any{
					"standards":  docs,
					"pagination": pagination,
				})
			})
		},
	}

	command.Flags().StringVarP(&q.Name, "name", "n", "", "standard name")
	command.Flags().StringVarP(&q.Section, "section", "s", "", "standard section")
	command.Flags().StringVar(&q.Subsection, "subsection", "", "standard subsection")
	command.Flags().StringVar(&q.Hyperlink, "hyperlink", "", "standard hyperlink")
	command.Flags().StringVar(&q.Version, "version", "", "standard version")
	command.Flags().BoolVar(&q.Partial, "partial", false, "treat the filters as LIKE patterns")
	command.Flags().StringSliceVar(&q.IncludeOnly, "include-only", nil, "only list these CREs")
	command.Flags().IntVarP(&page, "page", "p", 1, "page number")

	return command
}

func getStandardNamesCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "names",
		Short: "list the standard names",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c opencre.Client) error {
				names, err := c.GetStandardsNames(ctx)
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}

	return command
}

func searchTextCmd() *cobra.Command {
	command := &cobra.Command{
		Use:     "text <query>",
		Short:   "free text search",
		Example: `opencre search text "CRE:123-456"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c opencre.Client) error {
				docs, err := c.TextSearch(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				return printYAML(cmd.OutOrStdout(), docs)
			})
		},
	}

	return command
}

func searchTagsCmd() *cobra.Command {
	command := &cobra.Command{
		Use:     "tags <tag>[,<tag>...]",
		Short:   "find documents carrying every tag",
		Example: "opencre search tags crypto,tls",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var tags []string
			for _, arg := range args {
				tags = append(tags, strings.Split(arg, ",")...)
			}

			return withClient(cmd, func(ctx context.Context, c opencre.Client) error {
				docs, err := c.GetByTags(ctx, tags)
				if err != nil {
					return err
				}
				return printYAML(cmd.OutOrStdout(), docs)
			})
		},
	}

	return command
}

func gapCmd() *cobra.Command {
	command := &cobra.Command{
		Use:     "gap <standard name>...",
		Short:   "map standards onto each other through the CRE hierarchy",
		Example: "opencre gap ASVS CWE",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c opencre.Client) error {
				docs, err := c.GapAnalysis(ctx, args)
				if err != nil {
					return err
				}
				return printYAML(cmd.OutOrStdout(), docs)
			})
		},
	}

	return command
}

func statsCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "stats",
		Short: "print graph statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c opencre.Client) error {
				maxConnections, err := c.GetMaxInternalConnections(ctx)
				if err != nil {
					return err
				}
				names, err := c.GetStandardsNames(ctx)
				if err != nil {
					return err
				}
				return printYAML(cmd.OutOrStdout(), map[string]int{
					"max_internal_connections": maxConnections,
					"standard_names":           len(names),
				})
			})
		},
	}

	return command
}

func warmCmd() *cobra.Command {
	var schedule string

	command := &cobra.Command{
		Use:   "warm",
		Short: "precompute the gap analysis of every pair of standards",
		Long:  "without a schedule the analyses run once, with one they rerun on the cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if schedule == "" {
				schedule = cfg.GapWarmSchedule
			}
			if cfg.RedisURL == "" {
				logrus.Warn("REDIS_URL is not set, warmed analyses are not kept")
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c, err := opencre.OpenConfig(ctx, cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			warmer := jobs.NewGapAnalysisWarmer(schedule, c, 0)
			if schedule == "" {
				_, err := warmer.Warm(ctx)
				return err
			}

			executor := jobs.NewTaskExecutor([]jobs.Job{warmer}, []jobs.CronJob{warmer})
			if err := executor.Run(); err != nil {
				return err
			}

			<-ctx.Done()
			executor.Stop()
			return nil
		},
	}

	command.Flags().StringVar(&schedule, "schedule", "", "cron schedule, defaults to GAP_WARM_SCHEDULE")

	return command
}
