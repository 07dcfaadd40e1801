package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wahlprogramm/wahlprogramm/internal/database"
)

// scope holds the --section/--role flags shared by assignment commands.
type scope struct {
	section int
	role    string
}

func (s *scope) bind(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&s.section, "section", "s", 0, "Section number")
	cmd.Flags().StringVarP(&s.role, "role", "r", "", "Role name")
	_ = cmd.MarkFlagRequired("section")
	_ = cmd.MarkFlagRequired("role")
}

func (a *app) initCmd() *cobra.Command {
	var adminName, adminPassword string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create or migrate the database and seed the admin user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			admin := database.User{Name: adminName}
			if adminName != "" {
				admin.Password = a.encoder.Encode(adminPassword)
			}

			if err := a.store.Initialize(admin); err != nil {
				if errors.Is(err, database.ErrMigration) {
					log.Fatal().Err(err).Msg("Failed to run database migrations")
				}
				return err
			}

			log.Info().Str("path", a.store.Path()).Msg("Database ready")
			return nil
		},
	}

	cmd.Flags().StringVar(&adminName, "admin", "", "Admin username created when no users exist")
	cmd.Flags().StringVar(&adminPassword, "password", "", "Admin password")
	return cmd
}

func (a *app) existsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exists",
		Short: "Report whether the database file exists",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), a.store.StoreExists())
		},
	}
}

func (a *app) userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage login users",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <username> <password>",
			Short: "Add a user",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				user := database.User{Name: args[0], Password: a.encoder.Encode(args[1])}
				if err := a.store.InsertUser(user); err != nil {
					return err
				}
				log.Info().Str("username", user.Name).Msg("User created")
				return nil
			},
		},
		&cobra.Command{
			Use:   "confirm <username> <password>",
			Short: "Check a username and password",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				user := database.User{Name: args[0], Password: a.encoder.Encode(args[1])}
				ok, err := a.store.ConfirmUser(user)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("login rejected for %s", user.Name)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "confirmed")
				return nil
			},
		},
	)
	return cmd
}

func (a *app) candidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "candidate",
		Short: "Manage candidates",
	}

	var ensure bool
	addCmd := &cobra.Command{
		Use:   "add <name> <gender>",
		Short: "Add a candidate unless it already exists",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			candidate := database.Candidate{Name: args[0], Gender: args[1]}

			if ensure {
				created, err := a.store.EnsureCandidate(candidate)
				if err != nil {
					return err
				}
				log.Info().Str("name", candidate.Name).Bool("created", created).Msg("Candidate ensured")
				return nil
			}

			exists, err := a.store.CandidateExists(candidate)
			if err != nil {
				return err
			}
			if exists {
				log.Info().Str("name", candidate.Name).Msg("Candidate already exists")
				return nil
			}
			if err := a.store.InsertCandidate(candidate); err != nil {
				return err
			}
			log.Info().Str("name", candidate.Name).Str("gender", candidate.Gender).Msg("Candidate created")
			return nil
		},
	}
	addCmd.Flags().BoolVar(&ensure, "ensure", false, "Insert atomically, ignoring an existing candidate with the same name and gender")

	var listScope scope
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List candidates nominated for a role in a section",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			candidates, err := a.store.ListCandidatesFor(listScope.section, listScope.role)
			for _, c := range candidates {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c.Name, c.Gender)
			}
			return degrade(err)
		},
	}
	listScope.bind(listCmd)

	cmd.AddCommand(
		addCmd,
		listCmd,
		&cobra.Command{
			Use:   "exists <name> <gender>",
			Short: "Report whether a candidate exists",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				exists, err := a.store.CandidateExists(database.Candidate{Name: args[0], Gender: args[1]})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), exists)
				return nil
			},
		},
		&cobra.Command{
			Use:   "sweep",
			Short: "Delete candidates without any nomination",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				removed, err := a.store.SweepOrphanCandidates()
				if err != nil {
					return err
				}
				log.Info().Int64("removed", removed).Msg("Unused candidates deleted")
				return nil
			},
		},
	)
	return cmd
}

func (a *app) assignCmd() *cobra.Command {
	var s scope

	cmd := &cobra.Command{
		Use:   "assign <candidate>...",
		Short: "Nominate candidates for a role in a section",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			candidates := make([]database.Candidate, 0, len(args))
			for _, name := range args {
				candidates = append(candidates, database.Candidate{Name: name})
			}

			if err := a.store.InsertAssignments(candidates, s.role, s.section); err != nil {
				return err
			}
			log.Info().Int("section", s.section).Str("role", s.role).Int("candidates", len(candidates)).Msg("Candidates assigned")
			return nil
		},
	}
	s.bind(cmd)
	return cmd
}

func (a *app) clearCmd() *cobra.Command {
	var s scope

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all nominations for a role in a section",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := a.store.ClearAssignments(s.section, s.role)
			if err != nil {
				return err
			}
			log.Info().Int("section", s.section).Str("role", s.role).Int64("removed", removed).Msg("Assignments cleared")
			return nil
		},
	}
	s.bind(cmd)
	return cmd
}

func (a *app) assignmentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assignments",
		Short: "List all nominations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			assignments, err := a.store.ListAssignments()
			for _, as := range assignments {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", as.Section, as.Role, as.CandidateName)
			}
			return degrade(err)
		},
	}
}

func (a *app) rolesCmd() *cobra.Command {
	list := func() ([]string, error) {
		return a.store.ListRoles()
	}
	return a.referenceCmd("roles", "role", list, func(value string) error {
		return a.store.InsertRole(value)
	})
}

func (a *app) gendersCmd() *cobra.Command {
	list := func() ([]string, error) {
		return a.store.ListGenders()
	}
	return a.referenceCmd("genders", "gender", list, func(value string) error {
		return a.store.InsertGender(value)
	})
}

func (a *app) sectionsCmd() *cobra.Command {
	list := func() ([]string, error) {
		sections, err := a.store.ListSections()
		values := make([]string, 0, len(sections))
		for _, num := range sections {
			values = append(values, strconv.Itoa(num))
		}
		return values, err
	}

	return a.referenceCmd("sections", "section", list, func(value string) error {
		num, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid section number %q: %w", value, err)
		}
		return a.store.InsertSection(num)
	})
}

// referenceCmd builds "<plural>" (list) and "<plural> add <value>" commands.
// list and add must not capture a.store directly; it is built in
// PersistentPreRunE.
func (a *app) referenceCmd(plural, singular string, list func() ([]string, error), add func(string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   plural,
		Short: fmt.Sprintf("List %s", plural),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := list()
			for _, v := range values {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return degrade(err)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <" + singular + ">",
		Short: fmt.Sprintf("Add a %s", singular),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := add(args[0]); err != nil {
				return err
			}
			log.Info().Str(singular, args[0]).Msg("Reference data added")
			return nil
		},
	})
	return cmd
}

func (a *app) settingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setting",
		Short: "Read or change stored settings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get [key]",
			Short: "Show one setting, or all when no key is given",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) == 1 {
					value, err := a.store.GetSetting(args[0])
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), value)
					return nil
				}

				settings, err := a.store.GetAllSettings()
				for key, value := range settings {
					fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", key, value)
				}
				return degrade(err)
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Store a setting",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.store.SetSetting(args[0], args[1])
			},
		},
	)
	return cmd
}

func (a *app) maintenanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "maintenance",
		Short: "Optimize and vacuum the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Optimize(); err != nil {
				return err
			}
			if err := a.store.Vacuum(); err != nil {
				return err
			}
			log.Info().Msg("Database maintenance complete")
			return nil
		},
	}
}
