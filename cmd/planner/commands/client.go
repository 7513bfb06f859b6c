package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/arrangemylist/planner/internal/adapters/apiclient"
	"github.com/arrangemylist/planner/internal/adapters/importer"
	"github.com/arrangemylist/planner/internal/adapters/tui"
	"github.com/arrangemylist/planner/internal/application/board"
	"github.com/arrangemylist/planner/internal/application/calendar"
	"github.com/arrangemylist/planner/internal/application/notebook"
	"github.com/arrangemylist/planner/internal/application/notify"
	"github.com/arrangemylist/planner/internal/application/optimistic"
	"github.com/arrangemylist/planner/internal/domain/entities"
	"github.com/arrangemylist/planner/internal/infrastructure/config"
	"github.com/arrangemylist/planner/internal/infrastructure/logger"
	"github.com/arrangemylist/planner/internal/ports"
)

// ClientFlags override the client section of the configuration
type ClientFlags struct {
	ServerURL string
	Username  string
	Password  string
}

// Register adds the flags to cmd as persistent flags
func (f *ClientFlags) Register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&f.ServerURL, "server", "", "Server URL (default from client.server_url)")
	cmd.PersistentFlags().StringVar(&f.Username, "username", "", "Login username or email (default from client.username)")
	cmd.PersistentFlags().StringVar(&f.Password, "password", "", "Login password (default from client.password)")
}

// session is a logged-in client plus the pieces every store needs
type session struct {
	cfg        *config.Config
	logger     *logger.Logger
	client     *apiclient.Client
	controller *optimistic.Controller
	notifier   notify.Notifier
}

func (s *session) close() {
	_ = s.client.Logout(context.Background())
	_ = s.logger.Close()
}

func connect(ctx context.Context, flags *ClientFlags) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if flags.ServerURL != "" {
		cfg.Client.ServerURL = flags.ServerURL
	}
	if flags.Username != "" {
		cfg.Client.Username = flags.Username
	}
	if flags.Password != "" {
		cfg.Client.Password = flags.Password
	}
	if cfg.Client.Username == "" || cfg.Client.Password == "" {
		return nil, errors.New("username and password are required (--username/--password or CLIENT_USERNAME/CLIENT_PASSWORD)")
	}

	// Rendering owns stdout.
	logCfg := cfg.Logger
	logCfg.Output = "stderr"
	logCfg.Format = "console"
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	client, err := apiclient.New(cfg.Client.ServerURL, log, apiclient.WithTimeout(cfg.Client.Timeout))
	if err != nil {
		return nil, err
	}
	if _, err := client.Login(ctx, cfg.Client.Username, cfg.Client.Password); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	notifier := notify.NewLogNotifier(log, func() {
		fmt.Fprintln(os.Stderr, "Session expired, log in again")
	})

	return &session{
		cfg:        cfg,
		logger:     log,
		client:     client,
		controller: optimistic.NewController(nil, log),
		notifier:   notifier,
	}, nil
}

func withSession(cmd *cobra.Command, flags *ClientFlags, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	s, err := connect(ctx, flags)
	if err != nil {
		return err
	}
	defer s.close()
	return fn(ctx, s)
}

// tailPosition is the column length once a task has been appended to it
func tailPosition(groups entities.TaskGroups, to entities.TaskStatus) int {
	return len(groups.Column(to)) + 1
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

// NewBoardCommand creates the board command group
func NewBoardCommand(flags *ClientFlags) *cobra.Command {
	boardCmd := &cobra.Command{
		Use:   "board",
		Short: "Show and change the kanban board",
	}
	flags.Register(boardCmd)

	newBoard := func(s *session) *board.Board {
		return board.New(s.client, s.controller, s.notifier, s.logger)
	}

	boardCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the board columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, flags, func(ctx context.Context, s *session) error {
				groups, err := newBoard(s).Load(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), tui.RenderBoard(groups, calendar.DefaultPalette()))
				return nil
			})
		},
	})

	var position int
	moveCmd := &cobra.Command{
		Use:   "move <task-id> <status>",
		Short: "Move a task to another column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			to := entities.TaskStatus(args[1])
			if !to.IsValid() {
				return fmt.Errorf("invalid status %q (todo, in_progress, done)", args[1])
			}

			return withSession(cmd, flags, func(ctx context.Context, s *session) error {
				b := newBoard(s)
				if _, err := b.Load(ctx); err != nil {
					return err
				}
				task, ok := b.Find(id)
				if !ok {
					return entities.ErrTaskNotFound
				}
				target := position
				if !cmd.Flags().Changed("position") {
					target = tailPosition(b.Snapshot(), to)
				}
				groups, err := b.Drop(ctx, id, task.Status, to, target)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), tui.RenderBoard(groups, calendar.DefaultPalette()))
				return nil
			})
		},
	}
	moveCmd.Flags().IntVar(&position, "position", 0, "Target position in the destination column (default: end of column)")
	boardCmd.AddCommand(moveCmd)

	var priority, due, description string
	addCmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task in the To Do column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ports.CreateTaskRequest{Title: args[0], Priority: entities.Priority(priority)}
			if description != "" {
				req.Description = &description
			}
			if due != "" {
				dueAt, err := ports.ParseFlexTime(due)
				if err != nil {
					return err
				}
				req.DueDate = &dueAt
			}

			return withSession(cmd, flags, func(ctx context.Context, s *session) error {
				b := newBoard(s)
				if _, err := b.Load(ctx); err != nil {
					return err
				}
				task, err := b.CreateTask(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created task #%d\n", task.ID)
				return nil
			})
		},
	}
	addCmd.Flags().StringVar(&priority, "priority", "", "low, medium or high")
	addCmd.Flags().StringVar(&due, "due", "", "Due date, e.g. 2024-03-15")
	addCmd.Flags().StringVar(&description, "description", "", "Task description")
	boardCmd.AddCommand(addCmd)

	boardCmd.AddCommand(&cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, flags, func(ctx context.Context, s *session) error {
				b := newBoard(s)
				if _, err := b.Load(ctx); err != nil {
					return err
				}
				return b.DeleteTask(ctx, id)
			})
		},
	})

	return boardCmd
}

// NewCalendarCommand creates the calendar command group
func NewCalendarCommand(flags *ClientFlags) *cobra.Command {
	calendarCmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show the month calendar",
	}
	flags.Register(calendarCmd)

	var year, month int
	var day string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print a month grid, or one day with --day",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, flags, func(ctx context.Context, s *session) error {
				loc := s.cfg.Calendar.Location()
				cal := calendar.New(s.client, s.client, s.notifier, s.logger, calendar.WithLocation(loc))

				y, m := cal.Month()
				if day != "" {
					date, err := time.ParseInLocation(calendar.DateLayout, day, loc)
					if err != nil {
						return fmt.Errorf("invalid day %q: %w", day, err)
					}
					y, m = date.Year(), date.Month()
				}
				if year != 0 {
					y = year
				}
				if month != 0 {
					if month < 1 || month > 12 {
						return fmt.Errorf("invalid month %d", month)
					}
					m = time.Month(month)
				}

				view, err := cal.GoTo(ctx, y, m)
				if err != nil {
					return err
				}
				if day != "" {
					fmt.Fprintln(cmd.OutOrStdout(), tui.RenderDay(cal.DayView(day)))
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderMonth(view))
				return nil
			})
		},
	}
	showCmd.Flags().IntVar(&year, "year", 0, "Year, defaults to the current one")
	showCmd.Flags().IntVar(&month, "month", 0, "Month 1-12, defaults to the current one")
	showCmd.Flags().StringVar(&day, "day", "", "Show every item of one day (YYYY-MM-DD)")
	calendarCmd.AddCommand(showCmd)

	var color, description string
	var allDay bool
	addCmd := &cobra.Command{
		Use:   "add <title> <start> <end>",
		Short: "Create an event",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := ports.ParseFlexTime(args[1])
			if err != nil {
				return err
			}
			end, err := ports.ParseFlexTime(args[2])
			if err != nil {
				return err
			}
			req := ports.CreateEventRequest{Title: args[0], StartTime: &start, EndTime: &end, Color: color, AllDay: allDay}
			if description != "" {
				req.Description = &description
			}

			return withSession(cmd, flags, func(ctx context.Context, s *session) error {
				cal := calendar.New(s.client, s.client, s.notifier, s.logger, calendar.WithLocation(s.cfg.Calendar.Location()))
				event, err := cal.CreateEvent(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created event #%d\n", event.ID)
				return nil
			})
		},
	}
	addCmd.Flags().StringVar(&color, "color", "", "Event color, e.g. #4285f4")
	addCmd.Flags().StringVar(&description, "description", "", "Event description")
	addCmd.Flags().BoolVar(&allDay, "all-day", false, "Mark as an all-day event")
	calendarCmd.AddCommand(addCmd)

	return calendarCmd
}

// NewNotesCommand creates the notes command group
func NewNotesCommand(flags *ClientFlags) *cobra.Command {
	notesCmd := &cobra.Command{
		Use:   "notes",
		Short: "List and manage notes",
	}
	flags.Register(notesCmd)

	load := func(ctx context.Context, s *session) (*notebook.Notebook, error) {
		nb := notebook.New(s.client, s.controller, s.notifier, s.logger)
		if _, err := nb.Load(ctx); err != nil {
			return nil, err
		}
		return nb, nil
	}

	notesCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print notes, pinned first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, flags, func(ctx context.Context, s *session) error {
				nb, err := load(ctx, s)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), tui.RenderNotes(nb.Notes(), calendar.DefaultPalette()))
				return nil
			})
		},
	})

	var content, color string
	addCmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, flags, func(ctx context.Context, s *session) error {
				nb, err := load(ctx, s)
				if err != nil {
					return err
				}
				note, err := nb.Create(ctx, ports.CreateNoteRequest{Title: args[0], Content: content, Color: color})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created note #%d\n", note.ID)
				return nil
			})
		},
	}
	addCmd.Flags().StringVar(&content, "content", "", "Note body")
	addCmd.Flags().StringVar(&color, "color", "", "default, yellow, green, blue, pink or purple")
	notesCmd.AddCommand(addCmd)

	notesCmd.AddCommand(&cobra.Command{
		Use:   "pin <note-id>",
		Short: "Toggle a note's pin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, flags, func(ctx context.Context, s *session) error {
				nb, err := load(ctx, s)
				if err != nil {
					return err
				}
				_, err = nb.TogglePin(ctx, id)
				return err
			})
		},
	})

	notesCmd.AddCommand(&cobra.Command{
		Use:   "delete <note-id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, flags, func(ctx context.Context, s *session) error {
				nb, err := load(ctx, s)
				if err != nil {
					return err
				}
				return nb.Delete(ctx, id)
			})
		},
	})

	return notesCmd
}

// NewImportCommand creates the YAML seed import command
func NewImportCommand(flags *ClientFlags) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Create tasks, notes and events from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			if dryRun {
				input, err := importer.Parse(data)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Would import %d tasks, %d notes, %d events\n",
					len(input.Tasks), len(input.Notes), len(input.Events))
				return nil
			}

			return withSession(cmd, flags, func(ctx context.Context, s *session) error {
				res, err := importer.Import(ctx, s.client, data)
				if err != nil {
					return fmt.Errorf("import stopped after %d items: %w", res.Total(), err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks, %d notes, %d events\n", res.Tasks, res.Notes, res.Events)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the file without creating anything")
	flags.Register(cmd)
	return cmd
}
