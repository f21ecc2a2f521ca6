package cli

import (
	"errors"
	"log/slog"

	"github.com/havrydotdev/catclient/internal/catclient"
	"github.com/havrydotdev/catclient/internal/discord"
	iutils "github.com/havrydotdev/catclient/internal/utils"
	"github.com/havrydotdev/catclient/pkg/config"
	"github.com/havrydotdev/catclient/pkg/launcher"
	"github.com/havrydotdev/catclient/pkg/utils"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	v        *viper.Viper
	cfg      *config.Config
	log      *slog.Logger
	ctrl     *catclient.Controller
	presence *discord.Presence
}

func NewRootCmd() *cobra.Command {
	a := &app{presence: &discord.Presence{}}

	rootCmd := &cobra.Command{
		Use:   "catclient",
		Short: "Minecraft launcher with offline and Ely.by accounts",
		Long: `catclient installs vanilla Minecraft versions from the official manifest
and starts them with an offline identity or an Ely.by account.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { a.presence.Logout() },
	}

	flags := rootCmd.PersistentFlags()
	flags.String("game-dir", "", "Installation root (default: ~/.catclient/minecraft)")
	flags.String("java-path", "", "Java binary used to start the game")
	flags.String("memory", "", "Maximum heap size, e.g. 2G")
	flags.Bool("verify", false, "Check sha1 sums of cached and downloaded files")
	flags.Bool("dev", false, "Log to stdout at debug level")

	rootCmd.AddCommand(
		a.versionsCmd(),
		a.installCmd(),
		a.uninstallCmd(),
		a.launchCmd(),
		a.javaCmd(),
	)

	return rootCmd
}

// Execute runs the CLI and renders a returned error.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		renderError(err)
	}
	return err
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	gameDir, _ := flags.GetString("game-dir")
	if gameDir == "" {
		var err error
		gameDir, err = utils.GetGameFolderPath()
		if err != nil {
			return err
		}
	}

	a.v = config.New(gameDir)
	_ = a.v.BindPFlag("java_path", flags.Lookup("java-path"))
	_ = a.v.BindPFlag("memory", flags.Lookup("memory"))
	_ = a.v.BindPFlag("verify_downloads", flags.Lookup("verify"))

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	cfg.GameDir = gameDir
	a.cfg = cfg

	dev, _ := flags.GetBool("dev")
	level := slog.LevelInfo
	if dev {
		level = slog.LevelDebug
		pterm.EnableDebugMessages()
	}
	a.log = iutils.BuildLogger(iutils.GetLogWriter(gameDir, dev), level)
	slog.SetDefault(a.log)

	a.ctrl = catclient.NewController(cfg).WithLogger(a.log)

	if cfg.DiscordPresence {
		if err := a.presence.Login(); err != nil {
			a.log.Warn("discord login failed", slog.String("error", err.Error()))
		} else if err := a.presence.SetIdle(); err != nil {
			a.log.Warn("failed to set discord idle activity", slog.String("error", err.Error()))
		}
		a.ctrl.WithPresence(a.presence)
	}

	pterm.Debug.Println("Game directory:", gameDir)
	return nil
}

func renderError(err error) {
	pterm.Error.Println(err.Error())

	var spawnErr *launcher.LaunchSpawnFailed
	if errors.As(err, &spawnErr) && spawnErr.Output != "" {
		pterm.DefaultBox.WithTitle("game output").Println(spawnErr.Output)
	}
}
