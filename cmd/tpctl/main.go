package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/decred/dcrd/dcrutil/v4"

	"teenpatti-client/pkg/client"
	"teenpatti-client/pkg/history"
	"teenpatti-client/pkg/ledger"
	"teenpatti-client/pkg/ledger/natsledger"
	"teenpatti-client/pkg/logging"
)

// Common flags
var (
	dataDir      = flag.String("datadir", "", "Directory to load config file from")
	ledgerURL    = flag.String("url", "", "URL of the ledger NATS endpoint")
	identity     = flag.String("id", "", "Player identity (ledger address)")
	logFile      = flag.String("logfile", "", "Path to log file")
	debug        = flag.String("debug", "", "Debug level for logging")
	syncInterval = flag.Duration("syncinterval", 0, "Periodic refresh interval")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [global flags] <command> [args]\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  id                        Show player identity")
		fmt.Fprintln(os.Stderr, "  create --min-bet N        Create a game; prints game ID")
		fmt.Fprintln(os.Stderr, "  join --game-id ID [--blind] Join a game")
		fmt.Fprintln(os.Stderr, "  state --game-id ID        Print game snapshot (JSON)")
		fmt.Fprintln(os.Stderr, "  watch --game-id ID        Stream snapshot updates (JSON)")
		fmt.Fprintln(os.Stderr, "  bet --game-id ID [N]      Place a bet (default: table current bet)")
		fmt.Fprintln(os.Stderr, "  fold --game-id ID         Fold the current hand")
		fmt.Fprintln(os.Stderr, "  show --game-id ID         Request a showdown")
		fmt.Fprintln(os.Stderr, "  result --game-id ID       Print recorded game result (JSON)")
		fmt.Fprintln(os.Stderr, "\nGlobal flags:")
		flag.PrintDefaults()
	}

	// Suppress default flag errors to avoid noisy usage on subcommands
	flag.CommandLine.SetOutput(io.Discard)
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cmd := flag.Arg(0)

	cfg, err := client.LoadConfig("tpctl", *dataDir, client.ConfigOverrides{
		LedgerURL:    *ledgerURL,
		Identity:     *identity,
		LogFile:      *logFile,
		DebugLevel:   *debug,
		SyncInterval: *syncInterval,
	})
	if err != nil {
		fatal(fmt.Sprintf("Configuration error: %v", err))
	}

	// result only reads the local journal; no ledger connection needed.
	if cmd == "result" {
		if err := handleResult(cfg, flag.Args()[1:]); err != nil {
			fatalErr(err)
		}
		return
	}

	if cfg.LedgerURL == "" {
		fatal("ledger url is required (from config file or -url)")
	}
	if cfg.Identity == "" {
		fatal("identity is required (from config file or -id)")
	}

	cfg.Notifications = client.NewNotificationManager()

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	logBackend, err := logging.NewLogBackend(logging.LogConfig{
		LogFile:    cfg.LogFile,
		DebugLevel: cfg.DebugLevel,
	})
	if err != nil {
		fatalErr(err)
	}
	defer logBackend.Close()

	gw, err := natsledger.Connect(natsledger.Config{
		URL:      cfg.LedgerURL,
		Identity: cfg.Identity,
		Log:      logBackend.Logger("NATS"),
	})
	if err != nil {
		fatal(fmt.Sprintf("Failed to connect to ledger: %v", err))
	}
	defer gw.Close()

	tpc, err := client.NewTeenPattiClient(ctx, cfg, gw)
	if err != nil {
		fatal(fmt.Sprintf("Failed to create client: %v", err))
	}
	defer tpc.Close()

	switch cmd {
	case "id":
		fmt.Println(tpc.ID)
		return

	case "create":
		if err := handleCreate(ctx, tpc, flag.Args()[1:]); err != nil {
			fatalErr(err)
		}
		return

	case "join":
		if err := handleJoin(ctx, tpc, flag.Args()[1:]); err != nil {
			fatalErr(err)
		}
		return

	case "state":
		if err := handleState(ctx, tpc, flag.Args()[1:]); err != nil {
			fatalErr(err)
		}
		return

	case "watch":
		if err := handleWatch(ctx, tpc, flag.Args()[1:]); err != nil {
			fatalErr(err)
		}
		return

	case "bet":
		if err := handleBet(ctx, tpc, flag.Args()[1:]); err != nil {
			fatalErr(err)
		}
		return

	case "fold":
		if err := handleAction(ctx, tpc, "fold", flag.Args()[1:]); err != nil {
			fatalErr(err)
		}
		return

	case "show":
		if err := handleAction(ctx, tpc, "show", flag.Args()[1:]); err != nil {
			fatalErr(err)
		}
		return

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

func fatalErr(err error) {
	if reason, ok := ledger.IsRemoteRejection(err); ok {
		fatal("rejected by ledger: " + reason)
	}
	fatal(err.Error())
}

func gameIDFlag(fs *flag.FlagSet) *uint64 {
	return fs.Uint64("game-id", 0, "Game ID")
}

func handleCreate(ctx context.Context, tpc *client.TeenPattiClient, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	minBet := fs.Int64("min-bet", 0, "Minimum bet in atoms")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("create: %w", err)
	}
	if *minBet <= 0 {
		return errors.New("create: --min-bet is required")
	}

	id, err := tpc.CreateGame(ctx, dcrutil.Amount(*minBet))
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

func handleJoin(ctx context.Context, tpc *client.TeenPattiClient, args []string) error {
	fs := flag.NewFlagSet("join", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	gameID := gameIDFlag(fs)
	blind := fs.Bool("blind", false, "Join without looking at the cards")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("join: %w", err)
	}
	if *gameID == 0 {
		return errors.New("join: --game-id is required")
	}
	return tpc.JoinGame(ctx, ledger.GameID(*gameID), *blind)
}

func handleState(ctx context.Context, tpc *client.TeenPattiClient, args []string) error {
	fs := flag.NewFlagSet("state", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	gameID := gameIDFlag(fs)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("state: %w", err)
	}
	if *gameID == 0 {
		return errors.New("state: --game-id is required")
	}

	if err := tpc.WatchGame(ctx, ledger.GameID(*gameID)); err != nil {
		return err
	}
	return printState(tpc)
}

func printState(tpc *client.TeenPattiClient) error {
	snap := tpc.Snapshot()
	if snap == nil {
		return errors.New("no snapshot available")
	}

	out := struct {
		*client.GameSnapshot
		MyCards []string `json:"myCards,omitempty"`
		MyHand  string   `json:"myHand,omitempty"`
		MyTurn  bool     `json:"myTurn"`
	}{GameSnapshot: snap, MyTurn: tpc.Turn().MyTurn}

	for _, c := range tpc.MyCards() {
		out.MyCards = append(out.MyCards, c.String())
	}
	if hv, ok := tpc.MyHand(); ok {
		out.MyHand = hv.Category.String()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func handleWatch(ctx context.Context, tpc *client.TeenPattiClient, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	gameID := gameIDFlag(fs)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if *gameID == 0 {
		return errors.New("watch: --game-id is required")
	}

	enc := json.NewEncoder(os.Stdout)
	snaps := make(chan *client.GameSnapshot, 16)
	reg := tpc.Notifications().Register(client.OnSnapshotUpdatedNtfn(
		func(snap *client.GameSnapshot, _ time.Time) {
			select {
			case snaps <- snap:
			default:
			}
		}))
	defer reg.Unregister()

	if err := tpc.WatchGame(ctx, ledger.GameID(*gameID)); err != nil {
		return err
	}

	for {
		select {
		case snap := <-snaps:
			if err := enc.Encode(snap); err != nil {
				return err
			}
			if snap.Phase == ledger.PhaseEnded && snap.HasWinner() {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func handleBet(ctx context.Context, tpc *client.TeenPattiClient, args []string) error {
	fs := flag.NewFlagSet("bet", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	gameID := gameIDFlag(fs)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("bet: %w", err)
	}
	if *gameID == 0 {
		return errors.New("bet: --game-id is required")
	}

	if err := tpc.WatchGame(ctx, ledger.GameID(*gameID)); err != nil {
		return err
	}

	amount := tpc.BetAmount()
	if rest := fs.Args(); len(rest) > 0 {
		n, err := strconv.ParseInt(rest[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bet: invalid amount %q: %w", rest[0], err)
		}
		amount = dcrutil.Amount(n)
	}
	if err := tpc.PlaceBet(ctx, amount); err != nil {
		return err
	}
	fmt.Println(amount)
	return nil
}

func handleAction(ctx context.Context, tpc *client.TeenPattiClient, kind string, args []string) error {
	fs := flag.NewFlagSet(kind, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	gameID := gameIDFlag(fs)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%s: %w", kind, err)
	}
	if *gameID == 0 {
		return fmt.Errorf("%s: --game-id is required", kind)
	}

	if err := tpc.WatchGame(ctx, ledger.GameID(*gameID)); err != nil {
		return err
	}

	switch kind {
	case "fold":
		return tpc.Fold(ctx)
	case "show":
		return tpc.Show(ctx)
	default:
		return fmt.Errorf("unknown action: %s", kind)
	}
}

func handleResult(cfg *client.AppConfig, args []string) error {
	fs := flag.NewFlagSet("result", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	gameID := gameIDFlag(fs)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("result: %w", err)
	}
	if *gameID == 0 {
		return errors.New("result: --game-id is required")
	}

	store, err := history.NewStore(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Result(ledger.GameID(*gameID))
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("no recorded result for game %d", *gameID)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}
