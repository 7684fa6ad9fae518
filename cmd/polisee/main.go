package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"polisee/internal/app"
	"polisee/internal/config"
	"polisee/internal/db"
	"polisee/internal/domain"
	"polisee/internal/engine"
	"polisee/internal/export"
	"polisee/internal/gateway"
	"polisee/internal/ledger"
	"polisee/internal/persist"
	"polisee/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "polisee",
	Short: "Polisee CLI",
	Long: `Polisee authors policy-analysis tasks, generates AI memo responses,
grades them against rubrics, and exports the resulting dataset.
Core concepts:
- Workspace: your .polisee directory holding one database with the full dataset snapshot.
- Tasks: policy exercises (domain, jurisdiction, stakeholders, constraints, a prompt).
- Rubrics: grading standards with criteria, score levels, and hard fails.
- Responses: AI-generated deliverables attached to a task; immutable once recorded.
- Reviews: AI evaluations of a response against a rubric; also immutable.
- References: exemplar texts stored against a task.
- Ledger: append-only diary of every mutation, view with 'polisee log tail'.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("POLISEE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func registerCommands() {
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(rubricCmd())
	rootCmd.AddCommand(responseCmd())
	rootCmd.AddCommand(reviewCmd())
	rootCmd.AddCommand(referenceCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(serveCmd())
}

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show workspace status",
		Long:  "See the scoreboard for your workspace: collection counts and schema version.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				counts := a.Store.Counts()
				out := map[string]any{
					"schema_version": domain.SchemaVersion,
					"counts":         counts,
				}
				if viper.GetBool("json") {
					return printJSON(out)
				}
				fmt.Printf("Schema: %s\n", domain.SchemaVersion)
				fmt.Println("Collections:")
				for _, name := range []string{"tasks", "rubrics", "responses", "reviews", "references", "ledger"} {
					fmt.Printf("  %s: %d\n", name, counts[name])
				}
				return nil
			})
		},
	}
	return cmd
}

func configCmd() *cobra.Command {
	config := &cobra.Command{
		Use:   "config",
		Short: "Manage workspace configuration",
	}
	config.AddCommand(configInitCmd())
	return config
}

func configInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default polisee.yml to the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func taskCmd() *cobra.Command {
	task := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
		Long:  "Tasks are policy-analysis exercises. Each names a domain, jurisdiction, stakeholders, constraints, a deliverable type, and the prompt given to the analyst.",
	}
	task.AddCommand(taskCreateCmd())
	task.AddCommand(taskListCmd())
	task.AddCommand(taskGetCmd())
	task.AddCommand(taskEditCmd())
	return task
}

func taskCreateCmd() *cobra.Command {
	var title, dom, jurisdiction, deliverable, prompt, rubricID string
	var difficulty int
	var stakeholders []string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseStakeholders(stakeholders)
			if err != nil {
				return err
			}
			return withApp(func(a *app.App) error {
				t, err := a.Engine.CreateTask(engine.TaskCreateOptions{
					Title:           title,
					Domain:          domain.Domain(dom),
					Jurisdiction:    jurisdiction,
					Stakeholders:    parsed,
					DeliverableType: domain.DeliverableType(deliverable),
					Difficulty:      difficulty,
					PromptText:      prompt,
					RubricID:        rubricID,
				})
				if err := warnSoftSave(err); err != nil {
					return err
				}
				return printJSONOrTable(t)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "task title")
	cmd.Flags().StringVar(&dom, "domain", "", "policy domain (education, housing, health, ...)")
	cmd.Flags().StringVar(&jurisdiction, "jurisdiction", "", "jurisdiction")
	cmd.Flags().StringVar(&deliverable, "deliverable", "", "deliverable type (memo, brief, ...)")
	cmd.Flags().StringVar(&prompt, "prompt", "", "prompt text")
	cmd.Flags().StringVar(&rubricID, "rubric", "", "rubric id")
	cmd.Flags().IntVar(&difficulty, "difficulty", 0, "difficulty 1-5")
	cmd.Flags().StringArrayVar(&stakeholders, "stakeholder", nil, "stakeholder as name=goal (repeatable)")
	return cmd
}

func taskListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				tasks := a.Store.Tasks()
				if viper.GetBool("json") {
					return printJSON(tasks)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Title", "Domain", "Deliverable", "Difficulty"})
				for _, t := range tasks {
					tw.AppendRow(table.Row{t.ID, t.Title, t.Domain, t.DeliverableType, t.Difficulty})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func taskGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				t, err := a.Store.TaskByID(args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(t)
			})
		},
	}
	return cmd
}

func taskEditCmd() *cobra.Command {
	var title, dom, jurisdiction, deliverable, prompt, rubricID string
	var difficulty int
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := engine.TaskEditOptions{ID: args[0]}
			if cmd.Flags().Changed("title") {
				opts.Title = &title
			}
			if cmd.Flags().Changed("domain") {
				d := domain.Domain(dom)
				opts.Domain = &d
			}
			if cmd.Flags().Changed("jurisdiction") {
				opts.Jurisdiction = &jurisdiction
			}
			if cmd.Flags().Changed("deliverable") {
				dt := domain.DeliverableType(deliverable)
				opts.DeliverableType = &dt
			}
			if cmd.Flags().Changed("prompt") {
				opts.PromptText = &prompt
			}
			if cmd.Flags().Changed("rubric") {
				opts.RubricID = &rubricID
			}
			if cmd.Flags().Changed("difficulty") {
				opts.Difficulty = &difficulty
			}
			return withApp(func(a *app.App) error {
				t, err := a.Engine.EditTask(opts)
				if err := warnSoftSave(err); err != nil {
					return err
				}
				return printJSONOrTable(t)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "task title")
	cmd.Flags().StringVar(&dom, "domain", "", "policy domain")
	cmd.Flags().StringVar(&jurisdiction, "jurisdiction", "", "jurisdiction")
	cmd.Flags().StringVar(&deliverable, "deliverable", "", "deliverable type")
	cmd.Flags().StringVar(&prompt, "prompt", "", "prompt text")
	cmd.Flags().StringVar(&rubricID, "rubric", "", "rubric id")
	cmd.Flags().IntVar(&difficulty, "difficulty", 0, "difficulty 1-5")
	return cmd
}

func rubricCmd() *cobra.Command {
	rubric := &cobra.Command{
		Use:   "rubric",
		Short: "Manage rubrics",
		Long:  "Rubrics are grading standards: criteria with score levels, hard fails that zero a submission, and known failure modes.",
	}
	rubric.AddCommand(rubricCreateCmd())
	rubric.AddCommand(rubricListCmd())
	rubric.AddCommand(rubricGetCmd())
	return rubric
}

func rubricCreateCmd() *cobra.Command {
	var name, rubricType, criteriaFile string
	var hardFails []string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a rubric",
		RunE: func(cmd *cobra.Command, args []string) error {
			var criteria []domain.RubricCriteria
			if criteriaFile != "" {
				data, err := os.ReadFile(criteriaFile)
				if err != nil {
					return err
				}
				if err := json.Unmarshal(data, &criteria); err != nil {
					return fmt.Errorf("criteria file: %w", err)
				}
			}
			return withApp(func(a *app.App) error {
				r, err := a.Engine.CreateRubric(engine.RubricCreateOptions{
					Name:      name,
					Type:      rubricType,
					Criteria:  criteria,
					HardFails: hardFails,
				})
				if err := warnSoftSave(err); err != nil {
					return err
				}
				return printJSONOrTable(r)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "rubric name")
	cmd.Flags().StringVar(&rubricType, "type", "", "deliverable type or 'general'")
	cmd.Flags().StringVar(&criteriaFile, "criteria-file", "", "path to JSON criteria list")
	cmd.Flags().StringArrayVar(&hardFails, "hard-fail", nil, "hard fail condition (repeatable)")
	return cmd
}

func rubricListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rubrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				rubrics := a.Store.Rubrics()
				if viper.GetBool("json") {
					return printJSON(rubrics)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Type", "Criteria", "Hard Fails"})
				for _, r := range rubrics {
					tw.AppendRow(table.Row{r.ID, r.Name, r.Type, len(r.Criteria), len(r.HardFails)})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func rubricGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get a rubric",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				r, err := a.Store.RubricByID(args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(r)
			})
		},
	}
	return cmd
}

func responseCmd() *cobra.Command {
	response := &cobra.Command{
		Use:   "response",
		Short: "Manage responses",
		Long:  "Responses are AI-generated deliverables tied to a task. Generate one with 'polisee response generate <task-id>'.",
	}
	response.AddCommand(responseGenerateCmd())
	response.AddCommand(responseListCmd())
	response.AddCommand(responseGetCmd())
	return response
}

func responseGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <task-id>",
		Short: "Generate a response for a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				gw, err := gateway.NewClient(a.Config)
				if err != nil {
					return err
				}
				t, err := a.Store.TaskByID(args[0])
				if err != nil {
					return err
				}
				text, err := gw.Generate(cmd.Context(), t)
				if err != nil {
					return err
				}
				res, err := a.Engine.RecordResponse(engine.ResponseRecordOptions{
					TaskID:    t.ID,
					ModelInfo: gw.ModelInfo(),
					Text:      text,
				})
				if err := warnSoftSave(err); err != nil {
					return err
				}
				return printJSONOrTable(res)
			})
		},
	}
	return cmd
}

func responseListCmd() *cobra.Command {
	var taskID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				items := a.Store.Responses()
				if taskID != "" {
					items = a.Store.ResponsesForTask(taskID)
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Task", "Model", "Created"})
				for _, r := range items {
					tw.AppendRow(table.Row{r.ID, r.TaskID, r.ModelInfo, r.CreatedAt})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&taskID, "task", "", "filter by task id")
	return cmd
}

func responseGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get a response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				r, err := a.Store.ResponseByID(args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(r)
			})
		},
	}
	return cmd
}

func reviewCmd() *cobra.Command {
	review := &cobra.Command{
		Use:   "review",
		Short: "Manage reviews",
		Long:  "Reviews grade a response against a rubric via the evaluation gateway. Duplicates under the same rubric are allowed; each run is its own record.",
	}
	review.AddCommand(reviewRunCmd())
	review.AddCommand(reviewListCmd())
	return review
}

func reviewRunCmd() *cobra.Command {
	var rubricID string
	cmd := &cobra.Command{
		Use:   "run <response-id>",
		Short: "Evaluate a response against a rubric",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				gw, err := gateway.NewClient(a.Config)
				if err != nil {
					return err
				}
				res, err := a.Store.ResponseByID(args[0])
				if err != nil {
					return err
				}
				task, err := a.Store.TaskByID(res.TaskID)
				if err != nil {
					return err
				}
				target := rubricID
				if target == "" {
					target = task.RubricID
				}
				var rubric domain.Rubric
				if target != "" {
					rubric, err = a.Store.RubricByID(target)
					if err != nil {
						return err
					}
				} else if all := a.Store.Rubrics(); len(all) > 0 {
					rubric = all[0]
				} else {
					return fmt.Errorf("no rubric available; create one first")
				}
				result, err := gw.Evaluate(cmd.Context(), task, rubric, res.Text)
				if err != nil {
					return err
				}
				rev, err := a.Engine.RecordReview(engine.ReviewRecordOptions{
					ResponseID: res.ID,
					RubricID:   rubric.ID,
					Result:     result,
				})
				if err := warnSoftSave(err); err != nil {
					return err
				}
				return printJSONOrTable(rev)
			})
		},
	}
	cmd.Flags().StringVar(&rubricID, "rubric", "", "rubric id (defaults to the task's rubric)")
	return cmd
}

func reviewListCmd() *cobra.Command {
	var responseID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reviews",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				items := a.Store.Reviews()
				if responseID != "" {
					items = a.Store.ReviewsForResponse(responseID)
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Response", "Rubric", "Hard Fail", "Created"})
				for _, r := range items {
					tw.AppendRow(table.Row{r.ID, r.ResponseID, r.RubricID, r.HardFailTriggered, r.CreatedAt})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&responseID, "response", "", "filter by response id")
	return cmd
}

func referenceCmd() *cobra.Command {
	reference := &cobra.Command{
		Use:   "reference",
		Short: "Manage references",
	}
	reference.AddCommand(referenceWriteCmd())
	reference.AddCommand(referenceListCmd())
	return reference
}

func referenceWriteCmd() *cobra.Command {
	var text, file, style string
	cmd := &cobra.Command{
		Use:   "write <task-id>",
		Short: "Store a reference text for a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if text == "" && file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				text = string(data)
			}
			return withApp(func(a *app.App) error {
				ref, err := a.Engine.WriteReference(engine.ReferenceWriteOptions{
					TaskID: args[0],
					Text:   text,
					Style:  domain.ReferenceStyle(style),
				})
				if err := warnSoftSave(err); err != nil {
					return err
				}
				return printJSONOrTable(ref)
			})
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "reference text")
	cmd.Flags().StringVar(&file, "file", "", "read reference text from file")
	cmd.Flags().StringVar(&style, "style", "", "style (neutral, staffer, brief, one-pager)")
	return cmd
}

func referenceListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List references",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				items := a.Store.References()
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Task", "Style", "Created"})
				for _, r := range items {
					tw.AppendRow(table.Row{r.ID, r.TaskID, r.Style, r.CreatedAt})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func logCmd() *cobra.Command {
	log := &cobra.Command{
		Use:   "log",
		Short: "Inspect the activity ledger",
	}
	log.AddCommand(logTailCmd())
	return log
}

func logTailCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail ledger events, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				events := ledger.Recent(a.Store.Ledger(), n)
				if viper.GetBool("json") {
					return printJSON(events)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"TS", "Event", "Entity", "Summary"})
				for _, e := range events {
					tw.AppendRow(table.Row{e.TS, e.Type.Label(), e.EntityID, e.Summary})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	return cmd
}

func exportCmd() *cobra.Command {
	var format, dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the dataset as JSON or CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				target := dir
				if target == "" {
					target = a.Config.Export.Dir
				}
				now := time.Now()
				var path string
				var err error
				switch format {
				case "json":
					path, err = export.WriteJSON(target, a.Store.Snapshot(), now)
				case "csv":
					path, err = export.WriteCSV(target, a.Store.Snapshot(), now)
				default:
					return fmt.Errorf("--format must be json or csv")
				}
				if err != nil {
					return err
				}
				evt, err := a.Engine.RecordExport(format)
				if err := warnSoftSave(err); err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]any{"path": path, "event": evt})
				}
				fmt.Printf("Wrote %s\n", path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "export format (json, csv)")
	cmd.Flags().StringVar(&dir, "dir", "", "output directory (defaults to config export.dir)")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			a, err := app.Open(workspace)
			if err != nil {
				return err
			}
			defer a.Close()
			var gw gateway.Gateway
			if client, err := gateway.NewClient(a.Config); err == nil {
				gw = client
			} else {
				fmt.Printf("warning: %v; generate and review endpoints disabled\n", err)
			}
			handler, err := server.New(server.Config{
				Engine:   a.Engine,
				Store:    a.Store,
				Gateway:  gw,
				AppCfg:   a.Config,
				BasePath: basePath,
			})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving Polisee API on http://%s%s\n", addr, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	return cmd
}

// --- helpers ---

func withApp(fn func(*app.App) error) error {
	a, err := app.Open(viper.GetString("workspace"))
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// warnSoftSave downgrades a failed snapshot save to a warning: the
// mutation took effect in memory and the entity is still printed.
func warnSoftSave(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persist.ErrSave) {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		return nil
	}
	return err
}

func parseStakeholders(raw []string) ([]domain.Stakeholder, error) {
	var out []domain.Stakeholder
	for _, s := range raw {
		name, goal, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("invalid stakeholder %q: expected name=goal", s)
		}
		out = append(out, domain.Stakeholder{Name: name, Goal: goal})
	}
	return out, nil
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
