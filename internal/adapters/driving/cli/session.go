package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/arvision/internal/adapters/driven/engine/replay"
	"github.com/custodia-labs/arvision/internal/adapters/driving/tui"
	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/ports/driving"
	"github.com/custodia-labs/arvision/internal/logger"
)

var (
	sessionTargets   string
	sessionUserAgent string
	sessionEvents    string
	sessionFollow    bool
	sessionSpeed     float64
	sessionPlain     bool
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Run AR tracking sessions",
	Long: `Run an AR tracking session fed by engine events.

Events are JSON lines, one per engine callback:
  {"type":"engine-available"}
  {"type":"engine-ready"}
  {"type":"target-found","targetId":"personne"}
  {"type":"target-lost","targetIndex":0}
  {"type":"engine-error","errorName":"NotAllowedError","message":"denied"}

Variants: mindar-image, mindar-face, legacy-ar.`,
}

var sessionRunCmd = &cobra.Command{
	Use:   "run [variant]",
	Short: "Run a session fed from stdin or an event file",
	Long: `Runs a session whose engine events are read from stdin, or from --events.

When the events come from a file and stdout is a terminal, the session is shown
in the terminal UI; otherwise every state change is printed as a line.`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionRun,
}

var sessionReplayCmd = &cobra.Command{
	Use:   "replay [variant] [event-log]",
	Short: "Replay a recorded event log through a session",
	Long: `Replays a recorded JSON-lines event log through a session and prints every
state change. Delays recorded in the log are honoured, scaled by --speed.
With --follow the log is watched and appended events are replayed until interrupted.`,
	Args: cobra.ExactArgs(2),
	RunE: runSessionReplay,
}

func init() {
	for _, c := range []*cobra.Command{sessionRunCmd, sessionReplayCmd} {
		c.Flags().StringVar(&sessionTargets, "targets", "", "comma-separated reference images for selectable variants")
		c.Flags().StringVar(&sessionUserAgent, "user-agent", "", "user agent used to pick error guidance")
		c.Flags().BoolVar(&sessionFollow, "follow", false, "keep replaying events appended to the log")
		c.Flags().Float64Var(&sessionSpeed, "speed", 1, "replay speed multiplier")
	}
	sessionRunCmd.Flags().StringVar(&sessionEvents, "events", "-", "event file, - for stdin")
	sessionRunCmd.Flags().BoolVar(&sessionPlain, "plain", false, "print state lines instead of the terminal UI")

	sessionCmd.AddCommand(sessionRunCmd)
	sessionCmd.AddCommand(sessionReplayCmd)
	rootCmd.AddCommand(sessionCmd)
}

// sessionRun describes one invocation of run or replay.
type sessionRun struct {
	variant string
	events  string
	tui     bool
}

func runSessionRun(cmd *cobra.Command, args []string) error {
	useTUI := !sessionPlain && sessionEvents != "-" && isTerminal(cmd.OutOrStdout())
	return runSession(cmd, sessionRun{variant: args[0], events: sessionEvents, tui: useTUI})
}

func runSessionReplay(cmd *cobra.Command, args []string) error {
	return runSession(cmd, sessionRun{variant: args[0], events: args[1]})
}

func runSession(cmd *cobra.Command, run sessionRun) error {
	if sessionManager == nil {
		return errors.New("session manager not configured")
	}
	if eventRouter == nil {
		return errors.New("event relay not configured")
	}

	sess, err := sessionManager.Create(driving.SessionOptions{
		Variant:   run.variant,
		Targets:   splitTargets(sessionTargets),
		UserAgent: sessionUserAgent,
	})
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	closeSession := func() {
		if err := sessionManager.Close(sess.ID()); err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("closing session %s: %v", sess.ID(), err)
		}
	}
	defer closeSession()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	player, err := newPlayer(cmd, run.events, sess.ID())
	if err != nil {
		return err
	}
	started := startedSignal(sess)

	if run.tui {
		return runSessionTUI(ctx, sess, player, started)
	}

	var mu sync.Mutex
	out := cmd.OutOrStdout()
	unsubscribe := sess.Subscribe(func(st domain.SessionState) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(out, formatState(st)) //nolint:errcheck
	})
	defer unsubscribe()

	startErr := make(chan error, 1)
	go func() { startErr <- sess.Start(ctx) }()

	var playErr error
	select {
	case <-started:
		playErr = player.Run(ctx)
	case <-ctx.Done():
	}

	closeSession()
	if d, ok := sess.(interface{ Done() }); ok {
		d.Done()
	}
	if err := <-startErr; err != nil && !errors.Is(err, domain.ErrSessionClosed) &&
		(ctx.Err() == nil || !errors.Is(err, ctx.Err())) {
		return fmt.Errorf("session failed: %w", err)
	}
	return playErr
}

func runSessionTUI(ctx context.Context, sess driving.SessionController, player *replay.Engine, started <-chan struct{}) error {
	ports := tui.NewPorts(recognitionService, sessionManager, settingsService)
	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(ctx).WithSession(sess, true)

	playCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() {
		select {
		case <-started:
		case <-playCtx.Done():
			return
		}
		if err := player.Run(playCtx); err != nil {
			logger.Warn("event replay stopped: %v", err)
		}
	}()

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// newPlayer builds a replay engine that routes every event to sessionID.
func newPlayer(cmd *cobra.Command, events, sessionID string) (*replay.Engine, error) {
	sink := func(ev domain.EngineEvent) error {
		return eventRouter.Route(sessionID, ev)
	}
	opts := []replay.Option{replay.WithSink(sink), replay.WithSpeed(sessionSpeed), replay.WithFollow(sessionFollow)}
	if events == "-" {
		return replay.NewFromReader(cmd.InOrStdin(), opts...), nil
	}
	if _, err := os.Stat(events); err != nil {
		return nil, fmt.Errorf("event log: %w", err)
	}
	return replay.NewFromFile(events, opts...), nil
}

// startedSignal closes once the session has left the initial phase, so
// events are not routed before the session listens for them.
func startedSignal(sess driving.SessionController) <-chan struct{} {
	ch := make(chan struct{})
	var once sync.Once
	var unsubscribe func()
	var mu sync.Mutex
	mu.Lock()
	unsubscribe = sess.Subscribe(func(st domain.SessionState) {
		if st.Phase == domain.PhaseInitializing {
			return
		}
		once.Do(func() {
			close(ch)
			go func() {
				mu.Lock()
				defer mu.Unlock()
				unsubscribe()
			}()
		})
	})
	mu.Unlock()
	return ch
}

func formatState(st domain.SessionState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-18s loading=%t tracking=%t", st.PhaseName(), st.Loading, st.Tracking)
	if st.DetectedObjectID != "" {
		fmt.Fprintf(&b, " object=%s", st.DetectedObjectID)
		if obj, ok := domain.LookupARObject(st.DetectedObjectID); ok {
			fmt.Fprintf(&b, " (%s)", obj.Name)
		}
	}
	if st.Error != nil {
		fmt.Fprintf(&b, " error=%q", st.Error.Title)
	}
	return b.String()
}

func splitTargets(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
