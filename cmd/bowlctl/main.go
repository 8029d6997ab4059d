// Package main provides bowlctl, a command-line client for the bowling
// game server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/bowling/internal/config"
	"github.com/cory-johannsen/bowling/internal/game/bowler"
	"github.com/cory-johannsen/bowling/internal/game/ruleset"
	"github.com/cory-johannsen/bowling/internal/gameserver"
	"github.com/cory-johannsen/bowling/internal/observability"
)

const usage = `usage: bowlctl [flags] <command> [args]

commands:
  create              start a new game
  roll <id> <pins>    record the next roll of a game
  score <id>          compute and store the score of a game
  show <id>           print a game and its frames
  list                list every game
  delete <id>         delete a game
  rules               print the server's ruleset
  status              print the server's version and methods
  play [id]           roll random plausible pins until the game ends
`

func main() {
	addr := flag.String("addr", "", "game server address (default from config)")
	configPath := flag.String("config", "", "optional configuration file for the server address")
	seed := flag.Uint64("seed", 0, "seed for play; 0 uses crypto/rand")
	timeout := flag.Duration("timeout", 10*time.Second, "per-command timeout")
	verbose := flag.Bool("v", false, "log generated rolls")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage); flag.PrintDefaults() }
	flag.Parse()

	target, err := resolveAddr(*addr, *configPath)
	if err != nil {
		log.Fatalf("resolving server address: %v", err)
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger, err := observability.NewLogger(config.LoggingConfig{Level: level, Format: "console"}, "bowlctl")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	client, conn, err := gameserver.Dial(target)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cli := &cli{client: client, out: os.Stdout, bowler: newBowler(*seed, logger)}
	if err := cli.run(ctx, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "bowlctl: %v\n", err)
		os.Exit(1)
	}
}

func resolveAddr(flagAddr, configPath string) (string, error) {
	if flagAddr != "" {
		return flagAddr, nil
	}
	if configPath == "" {
		cfg, err := config.LoadFromViper(config.Defaults())
		if err != nil {
			return "", err
		}
		return cfg.GameServer.Addr(), nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return "", err
	}
	return cfg.GameServer.Addr(), nil
}

func newBowler(seed uint64, logger *zap.Logger) *bowler.Bowler {
	if seed == 0 {
		return bowler.NewLoggedBowler(bowler.NewCryptoSource(), logger)
	}
	return bowler.NewLoggedBowler(bowler.NewSeededSource(seed), logger)
}

type cli struct {
	client *gameserver.Client
	out    io.Writer
	bowler *bowler.Bowler
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command\n%s", usage)
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "create":
		g, err := c.client.CreateGame(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "created game %d\n", g.ID)
		return nil
	case "roll":
		id, pins, err := idAndPins(rest)
		if err != nil {
			return err
		}
		g, err := c.client.Roll(ctx, id, pins)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "game %d: roll %d knocked %d pins\n", g.ID, g.RollCount, pins)
		return nil
	case "score":
		id, err := idArg(rest)
		if err != nil {
			return err
		}
		g, err := c.client.Score(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "game %d: score %d\n", g.ID, g.CurrentScore)
		return nil
	case "show":
		id, err := idArg(rest)
		if err != nil {
			return err
		}
		g, err := c.client.GetGame(ctx, id)
		if err != nil {
			return err
		}
		printGame(c.out, g)
		return nil
	case "list":
		games, err := c.client.ListGames(ctx)
		if err != nil {
			return err
		}
		for _, g := range games {
			fmt.Fprintf(c.out, "%d\trolls=%d\tscore=%d\tcomplete=%v\n", g.ID, g.RollCount, g.CurrentScore, g.Complete)
		}
		return nil
	case "delete":
		id, err := idArg(rest)
		if err != nil {
			return err
		}
		if err := c.client.DeleteGame(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "deleted game %d\n", id)
		return nil
	case "rules":
		rs, err := c.client.Ruleset(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s (%s): %d pins, %d frames, %d bonus rolls, max %d rolls, max score %d\n",
			rs.Name, rs.ID, rs.PinCount, rs.FrameCount, rs.BonusRollCount, rs.MaxRollCount, rs.MaxScore)
		return nil
	case "status":
		st, err := c.client.Status(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s %s up since %s, ruleset %s\n", st.Service, st.Version, st.StartedAt, st.Ruleset)
		for _, m := range st.Methods {
			fmt.Fprintf(c.out, "  %s\n", m)
		}
		return nil
	case "play":
		return c.play(ctx, rest)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func (c *cli) play(ctx context.Context, args []string) error {
	var (
		g   gameserver.GameView
		err error
	)
	if len(args) == 0 {
		g, err = c.client.CreateGame(ctx)
	} else {
		var id int64
		if id, err = idArg(args); err == nil {
			g, err = c.client.GetGame(ctx, id)
		}
	}
	if err != nil {
		return err
	}

	info, err := c.client.Ruleset(ctx)
	if err != nil {
		return err
	}
	rs := &ruleset.Variant{
		VariantID:  info.ID,
		Name:       info.Name,
		Pins:       info.PinCount,
		Frames:     info.FrameCount,
		BonusRolls: info.BonusRollCount,
	}

	_, err = bowler.PlayOut(ctx, c.bowler, rs, g.Rolls, func(ctx context.Context, pins int) ([]int, error) {
		next, err := c.client.Roll(ctx, g.ID, pins)
		if err != nil {
			return nil, err
		}
		return next.Rolls, nil
	})
	if err != nil {
		return err
	}

	scored, err := c.client.Score(ctx, g.ID)
	if err != nil {
		return err
	}
	printGame(c.out, scored)
	return nil
}

func printGame(w io.Writer, g gameserver.GameView) {
	fmt.Fprintf(w, "game %d (%s): %d rolls, score %d, complete=%v\n", g.ID, g.Ruleset, g.RollCount, g.CurrentScore, g.Complete)
	for _, f := range g.Frames {
		running := "-"
		if f.Complete {
			running = strconv.Itoa(f.Running)
		}
		fmt.Fprintf(w, "  frame %2d  %-6s  %-8s  %s\n", f.Index+1, f.Kind, joinInts(f.Rolls), running)
	}
}

func joinInts(in []int) string {
	parts := make([]string, len(in))
	for i, v := range in {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}

func idArg(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid game id %q: %w", args[0], err)
	}
	return id, nil
}

func idAndPins(args []string) (int64, int, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("expected <id> <pins>")
	}
	id, err := idArg(args[:1])
	if err != nil {
		return 0, 0, err
	}
	pins, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid pin count %q: %w", args[1], err)
	}
	return id, pins, nil
}
