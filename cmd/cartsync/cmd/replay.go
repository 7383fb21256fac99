package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/cartsync/internal/config"
	"github.com/donaldgifford/cartsync/internal/engine"
	"github.com/donaldgifford/cartsync/internal/events"
	"github.com/donaldgifford/cartsync/internal/view"
	"github.com/donaldgifford/cartsync/pkg/logger"
	domain "github.com/donaldgifford/cartsync/pkg/types"
)

const idlePoll = 10 * time.Millisecond

// Replay step actions.
const (
	actionQuantity = "quantity"
	actionRemove   = "remove"
	actionRefresh  = "refresh"
	actionWait     = "wait"
)

// script is a recorded sequence of shopper actions.
type script struct {
	Timeout time.Duration `yaml:"timeout"`
	Steps   []step        `yaml:"steps"`
}

type step struct {
	Action     string        `yaml:"action"`
	Widget     string        `yaml:"widget"`
	Item       string        `yaml:"item"`
	Value      string        `yaml:"value"`
	MiniCartID string        `yaml:"mini_cart_id"`
	Duration   time.Duration `yaml:"duration"`
}

func loadScript(path string) (*script, error) {
	data, err := os.ReadFile(path) //nolint:gosec // script path from trusted CLI arg
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	s := &script{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing script: %w", err)
	}
	if s.Timeout == 0 {
		s.Timeout = 30 * time.Second
	}
	for i, st := range s.Steps {
		switch st.Action {
		case actionQuantity, actionRemove:
			if st.Widget == "" || st.Item == "" {
				return nil, fmt.Errorf("step %d: %s needs widget and item", i+1, st.Action)
			}
		case actionRefresh, actionWait:
		default:
			return nil, fmt.Errorf("step %d: unknown action %q", i+1, st.Action)
		}
	}
	return s, nil
}

func replayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <page.html> <script.yaml>",
		Short: "Run a script of shopper actions against the cart API and print the resulting page",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			log := logger.NewWithWriter(c.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

			page, err := loadPage(args[0], cfg, log)
			if err != nil {
				return err
			}
			sc, err := loadScript(args[1])
			if err != nil {
				return err
			}
			cs, err := openClientState(cfg.State)
			if err != nil {
				return err
			}

			bridge := events.New(events.WithLogger(log))
			eng := newEngine(cfg, newGateway(cfg.Gateway), page, cs, bridge, log)
			return runReplay(c.Context(), eng, page, sc, c.OutOrStdout())
		},
	}
}

func runReplay(ctx context.Context, eng *engine.Engine, page *view.Page, sc *script, out io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, sc.Timeout)
	defer cancel()

	eng.Start(ctx)
	defer eng.Stop()

	for _, st := range sc.Steps {
		c := domain.Control{WidgetID: st.Widget, LineItemID: st.Item}
		switch st.Action {
		case actionQuantity:
			eng.OnQuantityInput(c, st.Value)
		case actionRemove:
			// a click only lands once the previous mutation settled
			if err := eng.WaitIdle(ctx, idlePoll); err != nil {
				return err
			}
			eng.OnRemoveClick(c)
		case actionRefresh:
			eng.Bridge().Publish(events.Event{Kind: events.RefreshLockState, MiniCartID: st.MiniCartID})
		case actionWait:
			select {
			case <-time.After(st.Duration):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := eng.Flush(ctx); err != nil {
			return err
		}
	}

	if err := eng.WaitIdle(ctx, idlePoll); err != nil {
		return err
	}
	return page.Render(out)
}
