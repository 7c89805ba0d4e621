package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/openmargin/marginsdk"
	"github.com/openmargin/marginsdk/clients/paper"
	"github.com/openmargin/marginsdk/clients/replay"
	"github.com/openmargin/marginsdk/strategies"
)

func main() {

	app := &cli.App{
		Name:  "marginhost",
		Usage: "drives a strategy plugin against a simulated or replayed exchange",
		Commands: []*cli.Command{
			runCommand(),
			stateCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "run the template strategy with the given settings file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "path to the YAML settings file",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "show replay progress on the terminal",
			},
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {

	settings, err := marginsdk.ReadSettings(c.String("config"))
	if err != nil {
		return err
	}

	opts, err := marginsdk.FromSettings(settings)
	if err != nil {
		return err
	}

	client, err := buildClient(settings, c.Bool("progress"))
	if err != nil {
		return err
	}

	session := marginsdk.NewSession(opts...).
		SetStrategy(strategies.NewTemplate()).
		SetClient(client)

	handleSignals(session)

	runErr := session.Run()

	session.Summary()

	reason, message := session.ExitStatus()
	log.Infof("session ended: %s %s", reason, message)

	return runErr
}

func buildClient(settings *marginsdk.Settings, progress bool) (marginsdk.ExchangeClient, error) {

	info, err := settings.PairInfo()
	if err != nil {
		return nil, err
	}

	if settings.Replay.File != "" {
		var opts []replay.Option
		if progress {
			opts = append(opts, replay.WithProgressBar())
		}

		return replay.NewClient(info, settings.Replay.File, opts...)
	}

	var opts []paper.Option
	if settings.Paper.Seed != 0 {
		opts = append(opts, paper.Seed(settings.Paper.Seed))
	}
	if settings.Paper.StartPrice > 0 {
		opts = append(opts, paper.StartPrice(settings.Paper.StartPrice))
	}

	return paper.NewClient(info, settings.Funds, opts...), nil
}

// handleSignals maps SIGINT/SIGTERM to a graceful stop and SIGTSTP/SIGCONT to
// suspend/unsuspend. A second interrupt kills the process.
func handleSignals(session *marginsdk.Session) {

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, syscall.SIGINT, syscall.SIGTERM)

	suspends := make(chan os.Signal, 1)
	signal.Notify(suspends, syscall.SIGTSTP, syscall.SIGCONT)

	go func() {
		<-interrupts
		log.Info("stopping session, interrupt again to abort")

		go func() {
			if err := session.Stop(); err != nil {
				log.Warnf("stopping session: %s", err)
			}
		}()

		<-interrupts
		os.Exit(1)
	}()

	go func() {
		suspended := false
		for sig := range suspends {
			var err error

			if sig == syscall.SIGTSTP && !suspended {
				err = session.Suspend()
				suspended = err == nil
			} else if sig == syscall.SIGCONT && suspended {
				err = session.Unsuspend()
				suspended = !(err == nil)
			}

			if err != nil {
				log.Warnf("changing session state: %s", err)
			}
		}
	}()
}

func stateCommand() *cli.Command {
	return &cli.Command{
		Name:  "state",
		Usage: "print the saved strategy state of a pair",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "dir",
				Aliases:  []string{"d"},
				Usage:    "state directory of the session",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "pair",
				Aliases:  []string{"p"},
				Usage:    "currency pair the state belongs to",
				Required: true,
			},
		},
		Action: stateAction,
	}
}

func stateAction(c *cli.Context) error {

	dir := c.String("dir")

	store, err := marginsdk.NewStateStore(&dir)
	if err != nil {
		return err
	}
	defer store.Close()

	state, err := store.Load(c.String("pair"))
	if err != nil {
		return err
	}

	if state == nil {
		fmt.Println("no saved state")
		return nil
	}

	keys := make([]string, 0, len(state))
	for key := range state {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Printf("%s = %s\n", key, state[key])
	}

	return nil
}
