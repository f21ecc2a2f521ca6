package cli

import (
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/havrydotdev/catclient/internal/catclient"
	"github.com/havrydotdev/catclient/pkg/auth"
	"github.com/havrydotdev/catclient/pkg/downloader"
	"github.com/havrydotdev/catclient/pkg/mc"
	"github.com/havrydotdev/catclient/pkg/utils"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func (a *app) versionsCmd() *cobra.Command {
	var installed bool

	cmd := &cobra.Command{
		Use:   "versions [category]",
		Short: "List versions from the manifest",
		Long: `Without arguments, prints how many versions each category holds.
With a category (latest-release, latest-snapshot, release, snapshot,
old-beta, old-alpha) prints its version ids, newest first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if installed {
				ids, err := a.ctrl.InstalledVersions()
				if err != nil {
					return err
				}
				if len(ids) == 0 {
					pterm.Info.Println("No versions installed in", a.cfg.GameDir)
				}
				for _, id := range ids {
					pterm.Println(id)
				}
				return nil
			}

			catalogue, err := a.ctrl.LoadCatalogue(cmd.Context())
			if err != nil {
				return err
			}

			if len(args) == 0 {
				return renderCategories(catalogue)
			}

			category, ok := mc.ParseCategory(args[0])
			if !ok {
				return fmt.Errorf("unknown category %q", args[0])
			}

			for _, id := range catalogue.Versions(category) {
				pterm.Println(id)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&installed, "installed", false, "List versions installed locally instead")

	return cmd
}

func renderCategories(catalogue *mc.Catalogue) error {
	data := pterm.TableData{{"Category", "Versions", "Newest"}}
	for _, category := range mc.Categories() {
		ids := catalogue.Versions(category)

		newest := "-"
		if len(ids) > 0 {
			newest = ids[0]
		}
		data = append(data, []string{category.String(), strconv.Itoa(len(ids)), newest})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func (a *app) installCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install <version>",
		Short: "Download a version with its libraries and assets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if err := a.ctrl.Install(ctx, args[0]); err != nil {
				return err
			}

			r := &eventRenderer{}
			return a.ctrl.Wait(r.handle)
		},
	}
}

func (a *app) uninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall <version>",
		Short: "Remove a version's descriptor and client jar",
		Long:  `Libraries and assets are shared between versions and are kept.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ctrl.Uninstall(args[0]); err != nil {
				return err
			}

			pterm.Success.Println("Removed", args[0])
			return nil
		},
	}
}

func (a *app) launchCmd() *cobra.Command {
	var (
		online      bool
		username    string
		password    string
		offlineName string
		installJava bool
		wait        bool
	)

	cmd := &cobra.Command{
		Use:   "launch [version]",
		Short: "Install if needed and start the game",
		Long: `Starts the given version, or the last launched one. Offline by default;
--online signs in to Ely.by and asks for missing credentials.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			req := catclient.LaunchRequest{InstallJava: installJava}
			if len(args) > 0 {
				req.VersionID = args[0]
			}

			if online {
				if username == "" {
					username = a.cfg.Username
				}
				creds, err := promptCredentials(username, password)
				if err != nil {
					return err
				}
				req.Auth = auth.NewElybyAuth(creds.username, creds.password)

				a.cfg.Username = creds.username
			} else {
				seed := offlineName
				if seed == "" {
					seed = utils.DefaultOfflineName
				}
				req.Auth = auth.NewOfflineAuth(seed)
			}

			if err := a.ctrl.Launch(ctx, req); err != nil {
				return err
			}

			r := &eventRenderer{}
			var done catclient.Event
			err := a.ctrl.Wait(func(ev catclient.Event) {
				r.handle(ev)
				if ev.Kind == catclient.EventDone {
					done = ev
				}
			})
			if err != nil {
				return err
			}

			if wait && done.Process != nil {
				pterm.Info.Println("Waiting for the game to exit, log:", done.Process.LogPath)
				if err := done.Process.Wait(); err != nil {
					return fmt.Errorf("game exited: %w", err)
				}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&online, "online", false, "Sign in with an Ely.by account")
	flags.StringVarP(&username, "username", "u", "", "Ely.by username or email")
	flags.StringVarP(&password, "password", "p", "", "Ely.by password")
	flags.StringVar(&offlineName, "offline-name", "", "Player name for offline play (default "+utils.DefaultOfflineName+")")
	flags.BoolVar(&installJava, "install-java", false, "Download the Java runtime the version asks for")
	flags.BoolVar(&wait, "wait", false, "Stay attached until the game exits")

	return cmd
}

type credentials struct {
	username string
	password string
}

func promptCredentials(username, password string) (credentials, error) {
	var err error
	if username == "" {
		username, err = pterm.DefaultInteractiveTextInput.Show("Ely.by username")
		if err != nil {
			return credentials{}, err
		}
	}

	if password == "" {
		password, err = pterm.DefaultInteractiveTextInput.WithMask("*").Show("Ely.by password")
		if err != nil {
			return credentials{}, err
		}
	}

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return credentials{}, &auth.AuthenticationRejected{Message: "username and password are required"}
	}

	return credentials{username: username, password: password}, nil
}

func (a *app) javaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "java <major>",
		Short: "Download a Temurin Java runtime into the game directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			major, err := strconv.Atoi(args[0])
			if err != nil || major <= 0 {
				return fmt.Errorf("invalid java version %q", args[0])
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Installing Java %d...", major))

			d := downloader.New().WithLogger(a.log).WithVerification(a.cfg.VerifyDownloads)
			path, err := downloader.NewJavaInstaller(d, a.cfg.GameDir).EnsureJava(ctx, major)
			if err != nil {
				spinner.Fail(err.Error())
				return err
			}

			spinner.Success(fmt.Sprintf("Java %d is at %s", major, path))
			return nil
		},
	}
}
